package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
)

func runExtract(args []string) error {
	var textParts []string
	var audience catalog.Audience

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--audience" && i+1 < len(args):
			i++
			aud, err := catalog.ParseAudience(args[i])
			if err != nil {
				return fmt.Errorf("invalid audience %q (men, women, unisex)", args[i])
			}
			audience = aud
		case strings.HasPrefix(args[i], "--audience="):
			aud, err := catalog.ParseAudience(strings.TrimPrefix(args[i], "--audience="))
			if err != nil {
				return fmt.Errorf("invalid audience (men, women, unisex)")
			}
			audience = aud
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			textParts = append(textParts, args[i])
		}
	}

	text := strings.TrimSpace(strings.Join(textParts, " "))
	if text == "" {
		return fmt.Errorf("usage: threadline extract <text> [--audience men|women|unisex]")
	}

	constraints := search.Extract(text, audience)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(constraints)
}
