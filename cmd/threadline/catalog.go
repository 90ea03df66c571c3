package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/threadline/threadline/internal/config"
)

func runCatalog(args []string) error {
	if len(args) == 0 || args[0] != "stats" {
		return fmt.Errorf("usage: threadline catalog stats [--format json|table]")
	}

	format := ""
	configPath := ""
	for i := 1; i < len(args); i++ {
		switch {
		case args[i] == "--format" && i+1 < len(args):
			i++
			format = strings.ToLower(args[i])
		case strings.HasPrefix(args[i], "--format="):
			format = strings.ToLower(strings.TrimPrefix(args[i], "--format="))
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		default:
			return fmt.Errorf("unknown argument: %s", args[i])
		}
	}

	st, err := buildStack(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}
	stats := st.catalog.Stats()

	if format == "" {
		if isTTY() {
			format = "table"
		} else {
			format = "json"
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case "table":
		fmt.Printf("products:      %d (%d out of stock, %d hero)\n", stats.Total, stats.OutOfStock, stats.HeroCount)
		fmt.Printf("price range:   $%d to $%d\n", stats.PriceMin, stats.PriceMax)
		fmt.Printf("by audience:   %s\n", countLine(stats.ByAudience))
		fmt.Printf("by scenario:   %s\n", countLine(stats.ByScenario))
		fmt.Printf("categories:    %d\n", len(stats.ByCategory))
		return nil
	default:
		return fmt.Errorf("unknown format %q (json, table)", format)
	}
}

func countLine(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
