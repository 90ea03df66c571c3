package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/threadline/threadline/internal/assist"
	"github.com/threadline/threadline/internal/bundle"
	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/config"
	"github.com/threadline/threadline/internal/search"
)

// bundlePoolLimit is how many ranked candidates feed the assembler.
const bundlePoolLimit = 80

func runBundle(args []string) error {
	var queryParts []string
	req := bundle.Request{}
	format := ""
	modelFlag := ""
	configPath := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--scenario" && i+1 < len(args):
			i++
			req.ScenarioID = args[i]
		case strings.HasPrefix(args[i], "--scenario="):
			req.ScenarioID = strings.TrimPrefix(args[i], "--scenario=")
		case args[i] == "--audience" && i+1 < len(args):
			i++
			aud, err := catalog.ParseAudience(args[i])
			if err != nil {
				return fmt.Errorf("invalid audience %q (men, women, unisex)", args[i])
			}
			req.Audience = aud
		case strings.HasPrefix(args[i], "--audience="):
			aud, err := catalog.ParseAudience(strings.TrimPrefix(args[i], "--audience="))
			if err != nil {
				return fmt.Errorf("invalid audience (men, women, unisex)")
			}
			req.Audience = aud
		case args[i] == "--anchor" && i+1 < len(args):
			i++
			req.AnchorProductID = args[i]
		case strings.HasPrefix(args[i], "--anchor="):
			req.AnchorProductID = strings.TrimPrefix(args[i], "--anchor=")
		case args[i] == "--model" && i+1 < len(args):
			i++
			modelFlag = args[i]
		case strings.HasPrefix(args[i], "--model="):
			modelFlag = strings.TrimPrefix(args[i], "--model=")
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

	req.Query = strings.TrimSpace(strings.Join(queryParts, " "))
	if req.Query == "" {
		return fmt.Errorf("usage: threadline bundle <query> [--scenario <id>] [--audience men|women|unisex] [--anchor <product-id>]")
	}
	if req.ScenarioID != "" {
		if _, ok := catalog.ScenarioByID(req.ScenarioID); !ok {
			return fmt.Errorf("unknown scenario %q", req.ScenarioID)
		}
	}

	st, err := buildStack(config.ResolveOptions{ConfigPath: configPath, CLIModel: modelFlag})
	if err != nil {
		return err
	}
	ctx := context.Background()

	resp, err := st.engine.Search(ctx, req.Query, search.Options{
		Audience:   req.Audience,
		ScenarioID: req.ScenarioID,
		Limit:      bundlePoolLimit,
	})
	if err != nil {
		return err
	}
	req.Pool = resp.Results

	bundles, err := bundle.Assemble(req)
	if err != nil {
		return err
	}

	assistant := newAssistant(st, modelFlag)
	for i := range bundles {
		lines := assistant.WhyLines(ctx, req.Query, bundles[i])
		if lines.Degraded {
			st.logger.Debug().Str("reason", lines.Reason).Msg("why lines degraded to deterministic fallback")
		}
		for j := range bundles[i].Items {
			bundles[i].Items[j].Why = lines.Lines[j]
		}
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
		return enc.Encode(bundles)
	case "table":
		printBundles(bundles)
		return nil
	default:
		return fmt.Errorf("unknown format %q (json, table)", format)
	}
}

// newAssistant builds the insights engine from the resolved model, degrading
// to deterministic output when no provider is usable.
func newAssistant(st *stack, modelFlag string) *assist.Engine {
	model := st.cfg.EffectiveModel("").Value
	if modelFlag != "" {
		model = modelFlag
	}
	if model == "" {
		return assist.NewEngine(nil)
	}
	key := st.cfg.APIKeyForProvider(model).Value
	provider, reason := assist.ResolveProvider(model, key)
	if provider == nil {
		st.logger.Debug().Str("model", model).Str("reason", reason).Msg("assist provider unavailable")
	}
	return assist.NewEngine(provider)
}

func printBundles(bundles []bundle.Bundle) {
	for _, b := range bundles {
		total := 0
		for _, item := range b.Items {
			total += item.Product.Price
		}
		fmt.Printf("%s bundle ($%d)\n", b.Name, total)
		for _, item := range b.Items {
			fmt.Printf("  [%-8s] %-34s $%-6d %s\n", item.Role, truncate(item.Product.Title, 34), item.Product.Price, item.Why)
		}
		if b.Notes != "" {
			fmt.Printf("  %s\n", b.Notes)
		}
		fmt.Println()
	}
}
