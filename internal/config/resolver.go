// Package config resolves Threadline settings from config file, environment,
// and CLI flags, tracking where each effective value came from so `threadline
// config` can explain itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath     string
	CLIModel       string
	CLISessionDB   string
	CLICatalogSize string
	CLILogLevel    string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	CatalogSize  ResolvedValue `json:"catalog_size"`
	CatalogTTL   ResolvedValue `json:"catalog_ttl"`
	TieThreshold ResolvedValue `json:"tie_threshold"`
	SessionDB    ResolvedValue `json:"session_db"`
	Model        ResolvedValue `json:"model"`
	LogLevel     ResolvedValue `json:"log_level"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

type fileConfig struct {
	Catalog struct {
		Size         int    `yaml:"size"`
		TTL          string `yaml:"ttl"`
		TieThreshold string `yaml:"tie_threshold"`
	} `yaml:"catalog"`
	Session struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"session"`
	LLM struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"api_key"`
	} `yaml:"llm"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".threadline", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		if cfg.Catalog.Size > 0 {
			apply(&out.CatalogSize, strconv.Itoa(cfg.Catalog.Size), SourceConfig, path)
		}
		apply(&out.CatalogTTL, cfg.Catalog.TTL, SourceConfig, path)
		apply(&out.TieThreshold, cfg.Catalog.TieThreshold, SourceConfig, path)
		apply(&out.SessionDB, cfg.Session.DBPath, SourceConfig, path)
		apply(&out.Model, cfg.LLM.Model, SourceConfig, path)
		apply(&out.LogLevel, cfg.LogLevel, SourceConfig, path)

		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := providerOf(cfg.LLM.Model)
			if provider == "" {
				provider = "default"
			}
			out.LLMKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.CatalogSize, "THREADLINE_CATALOG_SIZE")
	applyEnv(&out.CatalogTTL, "THREADLINE_CATALOG_TTL")
	applyEnv(&out.TieThreshold, "THREADLINE_TIE_THRESHOLD")
	applyEnv(&out.SessionDB, "THREADLINE_SESSION_DB")
	applyEnv(&out.Model, "THREADLINE_MODEL")
	applyEnv(&out.LogLevel, "THREADLINE_LOG_LEVEL")

	for env, provider := range map[string]string{
		"OPENROUTER_API_KEY": "openrouter",
		"GEMINI_API_KEY":     "google",
		"GOOGLE_API_KEY":     "google",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.Model, opts.CLIModel, SourceCLI, "--model")
	apply(&out.SessionDB, opts.CLISessionDB, SourceCLI, "--session-db")
	apply(&out.CatalogSize, opts.CLICatalogSize, SourceCLI, "--catalog-size")
	apply(&out.LogLevel, opts.CLILogLevel, SourceCLI, "--log-level")

	if out.SessionDB.Value != "" {
		out.SessionDB.Value = expandUserPath(out.SessionDB.Value)
	}

	return out, nil
}

// EffectiveCatalogSize parses the resolved catalog size, falling back to the
// given default when unset.
func (r ResolvedConfig) EffectiveCatalogSize(fallback int) (int, error) {
	v := strings.TrimSpace(r.CatalogSize.Value)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid catalog size %q (from %s): %w", v, r.CatalogSize.From, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("catalog size must be positive, got %d (from %s)", n, r.CatalogSize.From)
	}
	return n, nil
}

// EffectiveCatalogTTL parses the resolved catalog TTL, falling back to the
// given default when unset.
func (r ResolvedConfig) EffectiveCatalogTTL(fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(r.CatalogTTL.Value)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid catalog ttl %q (from %s): %w", v, r.CatalogTTL.From, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("catalog ttl must be positive, got %s (from %s)", d, r.CatalogTTL.From)
	}
	return d, nil
}

// EffectiveTieThreshold parses the resolved price-sort tie threshold.
func (r ResolvedConfig) EffectiveTieThreshold(fallback float64) (float64, error) {
	v := strings.TrimSpace(r.TieThreshold.Value)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tie threshold %q (from %s): %w", v, r.TieThreshold.From, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("tie threshold must be positive, got %g (from %s)", f, r.TieThreshold.From)
	}
	return f, nil
}

// EffectiveModel returns the resolved provider/model string, falling back to
// the given default.
func (r ResolvedConfig) EffectiveModel(fallback string) ResolvedValue {
	if strings.TrimSpace(r.Model.Value) != "" {
		return r.Model
	}
	if strings.TrimSpace(fallback) != "" {
		return ResolvedValue{Value: fallback, Source: SourceDefault, From: "built-in default"}
	}
	return ResolvedValue{}
}

// APIKeyForProvider returns the key for a "provider" or "provider/model"
// string, preferring a provider-specific key over the config default.
func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
