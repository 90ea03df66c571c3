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
	"github.com/threadline/threadline/internal/session"
)

func runRefine(args []string) error {
	var queryParts []string
	sessionID := ""
	sessionDB := ""
	configPath := ""
	limit := 10
	var audience catalog.Audience
	scenarioID := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--session" && i+1 < len(args):
			i++
			sessionID = args[i]
		case strings.HasPrefix(args[i], "--session="):
			sessionID = strings.TrimPrefix(args[i], "--session=")
		case args[i] == "--session-db" && i+1 < len(args):
			i++
			sessionDB = args[i]
		case strings.HasPrefix(args[i], "--session-db="):
			sessionDB = strings.TrimPrefix(args[i], "--session-db=")
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
		case args[i] == "--scenario" && i+1 < len(args):
			i++
			scenarioID = args[i]
		case strings.HasPrefix(args[i], "--scenario="):
			scenarioID = strings.TrimPrefix(args[i], "--scenario=")
		case args[i] == "--limit" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid --limit %q", args[i])
			}
			limit = n
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
		return fmt.Errorf("usage: threadline refine <query> [--session <id>] [--audience men|women|unisex] [--scenario <id>] [--limit N]")
	}
	if scenarioID != "" {
		if _, ok := catalog.ScenarioByID(scenarioID); !ok {
			return fmt.Errorf("unknown scenario %q", scenarioID)
		}
	}

	st, err := buildStack(config.ResolveOptions{ConfigPath: configPath, CLISessionDB: sessionDB})
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(session.StoreConfig{DBPath: st.cfg.SessionDB.Value})
	if err != nil {
		return err
	}
	defer sessions.Close()
	ctx := context.Background()

	var sess *session.Session
	if sessionID != "" {
		sess, err = sessions.Refine(ctx, sessionID, query)
		if err != nil {
			return err
		}
	} else {
		constraints := search.Extract(query, audience)
		sess, err = sessions.Begin(ctx, query, scenarioID, audience, constraints)
		if err != nil {
			return err
		}
	}

	resp, err := st.engine.Search(ctx, sess.Query, search.Options{
		Audience:    sess.Audience,
		ScenarioID:  sess.ScenarioID,
		Limit:       limit,
		Constraints: &sess.Constraints,
	})
	if err != nil {
		return err
	}

	payload := struct {
		SessionID   string             `json:"session_id"`
		Constraints search.Constraints `json:"constraints"`
		Results     []search.Result    `json:"results"`
	}{sess.ID, sess.Constraints, resp.Results}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
