// Package session persists conversational search state so follow-up
// queries like "under $200 instead" refine the previous constraint set
// instead of starting over.
//
// Sessions live in a single SQLite database file. Each row carries the
// last query, the merged constraint set as JSON, and the scenario and
// audience scope of the conversation.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
)

// DefaultDBPath is the default session database location.
const DefaultDBPath = "~/.threadline/sessions.db"

// DefaultRetention is how long an idle session stays resumable.
const DefaultRetention = 24 * time.Hour

// Session is one conversation's persisted search state.
type Session struct {
	ID          string
	Query       string
	ScenarioID  string
	Audience    catalog.Audience
	Constraints search.Constraints
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath    string
	Retention time.Duration
}

// Store persists sessions in SQLite.
type Store struct {
	db        *sql.DB
	retention time.Duration
}

// NewStore opens (or creates) the session database and runs migrations.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating session db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging session database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, retention: cfg.Retention}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running session migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		query       TEXT NOT NULL DEFAULT '',
		scenario_id TEXT NOT NULL DEFAULT '',
		audience    TEXT NOT NULL DEFAULT '',
		constraints TEXT NOT NULL DEFAULT '{}',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`)
	if err != nil {
		return fmt.Errorf("creating sessions index: %w", err)
	}
	return nil
}

// Begin creates a new session and returns it with a fresh ID.
func (s *Store) Begin(ctx context.Context, query, scenarioID string, audience catalog.Audience, c search.Constraints) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:          uuid.NewString(),
		Query:       query,
		ScenarioID:  scenarioID,
		Audience:    audience,
		Constraints: c,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding constraints: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, query, scenario_id, audience, constraints, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Query, sess.ScenarioID, string(sess.Audience), string(raw), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

// Get retrieves a session by ID. Returns nil when the session does not
// exist or has aged past the retention window.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}
	var audience, rawConstraints string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, scenario_id, audience, constraints, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Query, &sess.ScenarioID, &audience, &rawConstraints, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	if time.Since(sess.UpdatedAt) > s.retention {
		return nil, nil
	}
	sess.Audience = catalog.Audience(audience)
	if err := json.Unmarshal([]byte(rawConstraints), &sess.Constraints); err != nil {
		return nil, fmt.Errorf("decoding constraints for session %s: %w", id, err)
	}
	return sess, nil
}

// Update stores a session's current query and constraint set and bumps
// its updated_at timestamp.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess.Constraints)
	if err != nil {
		return fmt.Errorf("encoding constraints: %w", err)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET query = ?, scenario_id = ?, audience = ?, constraints = ?, updated_at = ?
		 WHERE id = ?`,
		sess.Query, sess.ScenarioID, string(sess.Audience), string(raw), now, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", sess.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking session update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s not found", sess.ID)
	}
	sess.UpdatedAt = now
	return nil
}

// Refine merges a follow-up query's extracted constraints into the stored
// session state and persists the result. The merged constraint set is
// returned for immediate use.
func (s *Store) Refine(ctx context.Context, id, followUp string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found or expired", id)
	}

	delta := search.Extract(followUp, sess.Audience)
	sess.Constraints = search.Merge(sess.Constraints, delta)
	sess.Query = followUp
	if delta.Gender != "" && sess.Audience == "" {
		if aud, err := catalog.ParseAudience(delta.Gender); err == nil {
			sess.Audience = aud
		}
	}
	if err := s.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Prune deletes sessions idle past the retention window and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned sessions: %w", err)
	}
	return n, nil
}

// Count returns the number of stored sessions, including expired ones
// not yet pruned.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
