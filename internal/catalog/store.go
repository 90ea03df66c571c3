package catalog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCatalogSize is the number of generated products beyond the heroes.
const DefaultCatalogSize = 240

// DefaultTTL is how long a catalog snapshot stays fresh before the next
// Products call regenerates it.
const DefaultTTL = 10 * time.Minute

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	Size   int
	TTL    time.Duration
	Now    func() time.Time // injectable clock; defaults to time.Now
	Logger zerolog.Logger
}

// Store owns the cached catalog snapshot. Regeneration is idempotent, so a
// stale check racing a concurrent refresh costs at most one duplicate
// generation; the mutex only guards the snapshot swap.
type Store struct {
	mu       sync.Mutex
	size     int
	ttl      time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	snapshot []Product
	expiry   time.Time
}

// NewStore creates a catalog store. The first Products call generates the
// snapshot.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Size <= 0 {
		cfg.Size = DefaultCatalogSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		size:   cfg.Size,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
}

// Products returns the current catalog snapshot, regenerating it when the
// TTL has lapsed. Callers must not mutate the returned slice.
func (s *Store) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.snapshot == nil || now.After(s.expiry) {
		start := time.Now()
		s.snapshot = Generate(s.size)
		s.expiry = now.Add(s.ttl)
		s.logger.Debug().
			Int("products", len(s.snapshot)).
			Dur("took", time.Since(start)).
			Time("expiry", s.expiry).
			Msg("catalog snapshot regenerated")
	}
	return s.snapshot
}

// ByID finds a product by id in the current snapshot.
func (s *Store) ByID(id string) (Product, bool) {
	for _, p := range s.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Stats holds observability counts over the current snapshot.
type Stats struct {
	Total       int            `json:"total"`
	ByAudience  map[string]int `json:"by_audience"`
	ByScenario  map[string]int `json:"by_scenario"`
	ByCategory  map[string]int `json:"by_category"`
	PriceMin    int            `json:"price_min"`
	PriceMax    int            `json:"price_max"`
	OutOfStock  int            `json:"out_of_stock"`
	HeroCount   int            `json:"hero_count"`
}

// Stats summarizes the current snapshot.
func (s *Store) Stats() Stats {
	products := s.Products()
	st := Stats{
		Total:      len(products),
		ByAudience: map[string]int{},
		ByScenario: map[string]int{},
		ByCategory: map[string]int{},
	}
	for i, p := range products {
		st.ByAudience[string(p.Audience)]++
		st.ByScenario[p.ScenarioID]++
		st.ByCategory[p.Category]++
		if i == 0 || p.Price < st.PriceMin {
			st.PriceMin = p.Price
		}
		if p.Price > st.PriceMax {
			st.PriceMax = p.Price
		}
		if !p.InStock {
			st.OutOfStock++
		}
		if len(p.ID) > 5 && p.ID[:5] == "hero-" {
			st.HeroCount++
		}
	}
	return st
}
