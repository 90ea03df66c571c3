package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/threadline/threadline/internal/config"
)

func runCompare(args []string) error {
	var ids []string
	modelFlag := ""
	configPath := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--model" && i+1 < len(args):
			i++
			modelFlag = args[i]
		case strings.HasPrefix(args[i], "--model="):
			modelFlag = strings.TrimPrefix(args[i], "--model=")
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			ids = append(ids, args[i])
		}
	}

	if len(ids) != 2 {
		return fmt.Errorf("usage: threadline compare <product-id-a> <product-id-b> [--model provider/model]")
	}

	st, err := buildStack(config.ResolveOptions{ConfigPath: configPath, CLIModel: modelFlag})
	if err != nil {
		return err
	}

	a, ok := st.catalog.ByID(ids[0])
	if !ok {
		return fmt.Errorf("product %q not found", ids[0])
	}
	b, ok := st.catalog.ByID(ids[1])
	if !ok {
		return fmt.Errorf("product %q not found", ids[1])
	}

	assistant := newAssistant(st, modelFlag)
	result := assistant.Compare(context.Background(), a, b)

	if isTTY() {
		fmt.Println(result.Verdict)
		if result.Degraded {
			fmt.Printf("(deterministic verdict: %s)\n", result.Reason)
		}
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
