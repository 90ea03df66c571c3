package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/threadline/threadline/internal/config"
	threadmcp "github.com/threadline/threadline/internal/mcp"
	"github.com/threadline/threadline/internal/session"
)

func runMCP(args []string) error {
	configPath := ""
	sessionDB := ""
	modelFlag := ""
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case args[i] == "--session-db" && i+1 < len(args):
			i++
			sessionDB = args[i]
		case strings.HasPrefix(args[i], "--session-db="):
			sessionDB = strings.TrimPrefix(args[i], "--session-db=")
		case args[i] == "--model" && i+1 < len(args):
			i++
			modelFlag = args[i]
		case strings.HasPrefix(args[i], "--model="):
			modelFlag = strings.TrimPrefix(args[i], "--model=")
		default:
			return fmt.Errorf("unknown argument: %s", args[i])
		}
	}

	st, err := buildStack(config.ResolveOptions{
		ConfigPath:   configPath,
		CLISessionDB: sessionDB,
		CLIModel:     modelFlag,
	})
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(session.StoreConfig{DBPath: st.cfg.SessionDB.Value})
	if err != nil {
		return err
	}
	defer sessions.Close()

	srv := threadmcp.NewServer(threadmcp.ServerConfig{
		Catalog:  st.catalog,
		Engine:   st.engine,
		Sessions: sessions,
		Assist:   newAssistant(st, modelFlag),
		Version:  version,
	})

	st.logger.Info().Msg("serving MCP over stdio")
	return server.ServeStdio(srv)
}
