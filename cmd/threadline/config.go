package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/threadline/threadline/internal/config"
)

func runConfig(args []string) error {
	configPath := ""
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		default:
			return fmt.Errorf("unknown argument: %s", args[i])
		}
	}

	resolved, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}

	// Keys are secrets; show sources only.
	redacted := resolved
	redacted.LLMKeys = map[string]config.ResolvedValue{}
	for provider, v := range resolved.LLMKeys {
		redacted.LLMKeys[provider] = config.ResolvedValue{Value: "(set)", Source: v.Source, From: v.From}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(redacted)
}
