package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	cfgPath := writeConfig(t, `catalog:
  size: 500
  ttl: 30m
session:
  db_path: ~/.threadline/from-config.db
llm:
  model: openrouter/x-ai/grok-4.1-fast
log_level: debug
`)

	t.Setenv("THREADLINE_SESSION_DB", "~/from-env.db")
	t.Setenv("THREADLINE_MODEL", "google/gemini-2.5-flash")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath:   cfgPath,
		CLIModel:     "openrouter/openai/gpt-4o-mini",
		CLISessionDB: "~/from-cli.db",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.SessionDB.Source != SourceCLI {
		t.Fatalf("expected session db source cli, got %s", resolved.SessionDB.Source)
	}
	if resolved.Model.Source != SourceCLI {
		t.Fatalf("expected model source cli, got %s", resolved.Model.Source)
	}
	if resolved.CatalogSize.Source != SourceConfig {
		t.Fatalf("expected catalog size from config, got %s", resolved.CatalogSize.Source)
	}
	if resolved.LogLevel.Value != "debug" {
		t.Fatalf("log level = %q", resolved.LogLevel.Value)
	}
}

func TestResolveConfig_MissingFileIsFine(t *testing.T) {
	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if resolved.CatalogSize.Value != "" {
		t.Fatalf("unexpected catalog size: %q", resolved.CatalogSize.Value)
	}
}

func TestEffectiveCatalogSize(t *testing.T) {
	cfgPath := writeConfig(t, "catalog:\n  size: 480\n")
	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	n, err := resolved.EffectiveCatalogSize(240)
	if err != nil {
		t.Fatalf("EffectiveCatalogSize: %v", err)
	}
	if n != 480 {
		t.Fatalf("catalog size = %d, want 480", n)
	}

	// Unset falls back.
	empty := ResolvedConfig{}
	n, err = empty.EffectiveCatalogSize(240)
	if err != nil || n != 240 {
		t.Fatalf("fallback size = %d, err %v", n, err)
	}

	// Garbage errors.
	bad := ResolvedConfig{CatalogSize: ResolvedValue{Value: "many", From: "env"}}
	if _, err := bad.EffectiveCatalogSize(240); err == nil {
		t.Fatal("expected error for non-numeric catalog size")
	}
}

func TestEffectiveCatalogTTL(t *testing.T) {
	resolved := ResolvedConfig{CatalogTTL: ResolvedValue{Value: "15m"}}
	d, err := resolved.EffectiveCatalogTTL(10 * time.Minute)
	if err != nil {
		t.Fatalf("EffectiveCatalogTTL: %v", err)
	}
	if d != 15*time.Minute {
		t.Fatalf("ttl = %s", d)
	}

	bad := ResolvedConfig{CatalogTTL: ResolvedValue{Value: "-5m"}}
	if _, err := bad.EffectiveCatalogTTL(10 * time.Minute); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestEffectiveTieThreshold(t *testing.T) {
	resolved := ResolvedConfig{TieThreshold: ResolvedValue{Value: "2.5"}}
	f, err := resolved.EffectiveTieThreshold(5.0)
	if err != nil {
		t.Fatalf("EffectiveTieThreshold: %v", err)
	}
	if f != 2.5 {
		t.Fatalf("threshold = %g", f)
	}

	empty := ResolvedConfig{}
	f, err = empty.EffectiveTieThreshold(5.0)
	if err != nil || f != 5.0 {
		t.Fatalf("fallback threshold = %g, err %v", f, err)
	}
}

func TestEffectiveModelFallback(t *testing.T) {
	empty := ResolvedConfig{}
	m := empty.EffectiveModel("google/gemini-2.5-flash")
	if m.Value != "google/gemini-2.5-flash" || m.Source != SourceDefault {
		t.Fatalf("unexpected effective model: %+v", m)
	}

	set := ResolvedConfig{Model: ResolvedValue{Value: "openrouter/openai/gpt-4o-mini", Source: SourceConfig}}
	m = set.EffectiveModel("google/gemini-2.5-flash")
	if m.Value != "openrouter/openai/gpt-4o-mini" || m.Source != SourceConfig {
		t.Fatalf("configured model should win: %+v", m)
	}
}

func TestAPIKeyForProvider_EnvOverridesConfig(t *testing.T) {
	cfgPath := writeConfig(t, `llm:
  model: openrouter/x-ai/grok-4.1-fast
  api_key: config-key
`)
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	k := resolved.APIKeyForProvider("openrouter/some-model")
	if k.Value != "env-key" {
		t.Fatalf("expected env key, got %q", k.Value)
	}
	if k.Source != SourceEnv {
		t.Fatalf("expected source env, got %s", k.Source)
	}
}
