package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/config"
	"github.com/threadline/threadline/internal/search"
)

func runSearch(args []string) error {
	var queryParts []string
	opts := search.Options{Limit: 10}
	format := ""
	configPath := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--audience" && i+1 < len(args):
			i++
			aud, err := catalog.ParseAudience(args[i])
			if err != nil {
				return fmt.Errorf("invalid audience %q (men, women, unisex)", args[i])
			}
			opts.Audience = aud
		case strings.HasPrefix(args[i], "--audience="):
			aud, err := catalog.ParseAudience(strings.TrimPrefix(args[i], "--audience="))
			if err != nil {
				return fmt.Errorf("invalid audience (men, women, unisex)")
			}
			opts.Audience = aud
		case args[i] == "--scenario" && i+1 < len(args):
			i++
			opts.ScenarioID = args[i]
		case strings.HasPrefix(args[i], "--scenario="):
			opts.ScenarioID = strings.TrimPrefix(args[i], "--scenario=")
		case args[i] == "--sort" && i+1 < len(args):
			i++
			mode, err := search.ParseSortMode(args[i])
			if err != nil {
				return err
			}
			opts.SortBy = mode
		case strings.HasPrefix(args[i], "--sort="):
			mode, err := search.ParseSortMode(strings.TrimPrefix(args[i], "--sort="))
			if err != nil {
				return err
			}
			opts.SortBy = mode
		case args[i] == "--limit" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid --limit %q", args[i])
			}
			opts.Limit = n
		case strings.HasPrefix(args[i], "--limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(args[i], "--limit="))
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid --limit")
			}
			opts.Limit = n
		case args[i] == "--format" && i+1 < len(args):
			i++
			format = strings.ToLower(args[i])
		case strings.HasPrefix(args[i], "--format="):
			format = strings.ToLower(strings.TrimPrefix(args[i], "--format="))
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			queryParts = append(queryParts, args[i])
		}
	}

	query := strings.TrimSpace(strings.Join(queryParts, " "))
	if query == "" {
		return fmt.Errorf("usage: threadline search <query> [--audience men|women|unisex] [--scenario <id>] [--sort <mode>] [--limit N]")
	}
	if opts.ScenarioID != "" {
		if _, ok := catalog.ScenarioByID(opts.ScenarioID); !ok {
			return fmt.Errorf("unknown scenario %q", opts.ScenarioID)
		}
	}

	st, err := buildStack(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}

	resp, err := st.engine.Search(context.Background(), query, opts)
	if err != nil {
		return err
	}

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
		return enc.Encode(resp)
	case "table":
		printResultsTable(resp)
		return nil
	default:
		return fmt.Errorf("unknown format %q (json, table)", format)
	}
}

func printResultsTable(resp *search.Response) {
	if len(resp.Results) == 0 {
		fmt.Println("No products matched.")
		return
	}
	fmt.Printf("%-18s %-34s %-12s %-8s %7s %7s\n", "ID", "TITLE", "CATEGORY", "COLOR", "PRICE", "SCORE")
	for _, r := range resp.Results {
		fmt.Printf("%-18s %-34s %-12s %-8s %6d$ %7.1f\n",
			r.Product.ID, truncate(r.Product.Title, 34), r.Product.Category, r.Product.Color, r.Product.Price, r.Score)
	}
	if c, err := json.Marshal(resp.Constraints); err == nil {
		fmt.Printf("\nconstraints: %s\n", c)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
