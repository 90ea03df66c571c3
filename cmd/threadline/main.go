package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/config"
	"github.com/threadline/threadline/internal/search"
)

const version = "0.1.0-dev"

func main() {
	// A local .env is optional; missing is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "search":
		err = runSearch(os.Args[2:])
	case "bundle":
		err = runBundle(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "refine":
		err = runRefine(os.Args[2:])
	case "compare":
		err = runCompare(os.Args[2:])
	case "catalog":
		err = runCatalog(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("threadline %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`threadline - conversational product search and outfit assembly

Usage:
  threadline search <query> [--audience men|women|unisex] [--scenario <id>] [--sort relevance|price_asc|price_desc] [--limit N] [--format json|table]
  threadline bundle <query> [--scenario <id>] [--audience men|women|unisex] [--anchor <product-id>] [--model provider/model]
  threadline extract <text> [--audience men|women|unisex]
  threadline refine <query> [--session <id>] [--limit N]
  threadline compare <product-id-a> <product-id-b> [--model provider/model]
  threadline catalog stats [--format json|table]
  threadline config [--config <path>]
  threadline mcp
  threadline version

Environment:
  THREADLINE_CATALOG_SIZE   catalog size override
  THREADLINE_CATALOG_TTL    catalog snapshot TTL, e.g. 10m
  THREADLINE_SESSION_DB     session database path
  THREADLINE_MODEL          default provider/model for assist features
  THREADLINE_LOG_LEVEL      trace|debug|info|warn|error (default: warn)
  GEMINI_API_KEY / OPENROUTER_API_KEY   assist provider keys`)
}

// stack is the shared runtime: resolved config, logger, catalog, and engine.
type stack struct {
	cfg     config.ResolvedConfig
	logger  zerolog.Logger
	catalog *catalog.Store
	engine  *search.Engine
}

// buildStack resolves configuration and wires the catalog and search engine.
func buildStack(opts config.ResolveOptions) (*stack, error) {
	cfg, err := config.ResolveConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel.Value)

	size, err := cfg.EffectiveCatalogSize(catalog.DefaultCatalogSize)
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.EffectiveCatalogTTL(catalog.DefaultTTL)
	if err != nil {
		return nil, err
	}
	threshold, err := cfg.EffectiveTieThreshold(search.DefaultScoreTieThreshold)
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(catalog.StoreConfig{
		Size:   size,
		TTL:    ttl,
		Logger: logger,
	})
	engine := search.NewEngineWithTieThreshold(store, threshold)

	return &stack{cfg: cfg, logger: logger, catalog: store, engine: engine}, nil
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.WarnLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// isTTY reports whether stdout is a terminal, used to default output format.
func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
