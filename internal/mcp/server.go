// Package mcp provides a Model Context Protocol server for Threadline.
//
// It exposes product search, constraint extraction, bundle assembly,
// session refinement, and product comparison as MCP tools, and catalog
// statistics and scenarios as MCP resources. Supports stdio transport for
// desktop assistant hosts.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/threadline/threadline/internal/assist"
	"github.com/threadline/threadline/internal/bundle"
	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
	"github.com/threadline/threadline/internal/session"
)

// bundlePoolLimit is how many ranked candidates feed the assembler.
const bundlePoolLimit = 80

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Catalog  *catalog.Store
	Engine   *search.Engine
	Sessions *session.Store
	Assist   *assist.Engine
	Version  string
}

// sessionMu serializes tool calls that touch the session database. The
// mcp-go library dispatches handlers concurrently via goroutines, and
// SQLite supports only one writer at a time.
var sessionMu sync.Mutex

// NewServer creates a configured MCP server with all Threadline tools and
// resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Threadline",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	assistant := cfg.Assist
	if assistant == nil {
		assistant = assist.NewEngine(nil)
	}

	registerSearchTool(s, cfg.Engine)
	registerExtractTool(s)
	registerBundleTool(s, cfg.Engine, assistant)
	if cfg.Sessions != nil {
		registerRefineTool(s, cfg.Engine, cfg.Sessions)
	}
	registerCompareTool(s, cfg.Catalog, assistant)

	registerStatsResource(s, cfg.Catalog)
	registerScenariosResource(s)

	return s
}

// --- Tools ---

func registerSearchTool(s *server.MCPServer, engine *search.Engine) {
	tool := mcp.NewTool("threadline_search",
		mcp.WithDescription("Search the product catalog with natural language. Extracts constraints (budget, category, color, occasion, style) from the query, then returns scored products."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language product query, e.g. 'black sneakers under $200'"),
		),
		mcp.WithString("audience",
			mcp.Description("Audience scope: men, women, or unisex. Empty = inferred from the query."),
			mcp.Enum("men", "women", "unisex"),
		),
		mcp.WithString("scenario",
			mcp.Description("Scenario scope, e.g. 'nyc_dinner' or 'summer_wedding'. Empty = all products."),
		),
		mcp.WithString("sort",
			mcp.Description("Sort mode: relevance, price_asc, or price_desc (default: relevance)"),
			mcp.Enum("relevance", "price_asc", "price_desc"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		opts := search.Options{Limit: 10}

		if aud, err := req.RequireString("audience"); err == nil && aud != "" {
			parsed, err := catalog.ParseAudience(aud)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid audience: %q", aud)), nil
			}
			opts.Audience = parsed
		}
		if scenario, err := req.RequireString("scenario"); err == nil && scenario != "" {
			if _, ok := catalog.ScenarioByID(scenario); !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown scenario: %q", scenario)), nil
			}
			opts.ScenarioID = scenario
		}
		if sortStr, err := req.RequireString("sort"); err == nil && sortStr != "" {
			mode, err := search.ParseSortMode(sortStr)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid sort: %v", err)), nil
			}
			opts.SortBy = mode
		}
		if limitVal, err := req.RequireFloat("limit"); err == nil {
			limit := int(limitVal)
			if limit > 50 {
				limit = 50
			}
			if limit > 0 {
				opts.Limit = limit
			}
		}

		resp, err := engine.Search(ctx, query, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(resp, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExtractTool(s *server.MCPServer) {
	tool := mcp.NewTool("threadline_extract",
		mcp.WithDescription("Extract the structured constraint set (budget, category, color, exclusions, occasion, style, gender) from a natural-language shopping query without running a search."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The shopping request to parse"),
		),
		mcp.WithString("audience",
			mcp.Description("Audience scope biasing category vocabulary: men, women, or unisex"),
			mcp.Enum("men", "women", "unisex"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil || strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("text is required"), nil
		}

		var audience catalog.Audience
		if aud, err := req.RequireString("audience"); err == nil && aud != "" {
			parsed, err := catalog.ParseAudience(aud)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid audience: %q", aud)), nil
			}
			audience = parsed
		}

		constraints := search.Extract(text, audience)
		data, _ := json.MarshalIndent(constraints, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerBundleTool(s *server.MCPServer, engine *search.Engine, assistant *assist.Engine) {
	tool := mcp.NewTool("threadline_bundle",
		mcp.WithDescription("Assemble three complete outfit bundles (Budget, Balanced, Premium) for a request. Each bundle holds role-tagged items with per-item reasons. Optionally anchor a specific product into every bundle."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The outfit request, e.g. 'smart dinner look'"),
		),
		mcp.WithString("scenario",
			mcp.Description("Scenario scope, e.g. 'nyc_dinner'"),
		),
		mcp.WithString("audience",
			mcp.Description("Audience scope: men, women, or unisex"),
			mcp.Enum("men", "women", "unisex"),
		),
		mcp.WithString("anchor_product_id",
			mcp.Description("Product ID to pin into all three bundles"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		breq := bundle.Request{Query: query}
		if scenario, err := req.RequireString("scenario"); err == nil && scenario != "" {
			if _, ok := catalog.ScenarioByID(scenario); !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown scenario: %q", scenario)), nil
			}
			breq.ScenarioID = scenario
		}
		if aud, err := req.RequireString("audience"); err == nil && aud != "" {
			parsed, err := catalog.ParseAudience(aud)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid audience: %q", aud)), nil
			}
			breq.Audience = parsed
		}
		if anchor, err := req.RequireString("anchor_product_id"); err == nil && anchor != "" {
			breq.AnchorProductID = anchor
		}

		resp, err := engine.Search(ctx, query, search.Options{
			Audience:   breq.Audience,
			ScenarioID: breq.ScenarioID,
			Limit:      bundlePoolLimit,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}
		breq.Pool = resp.Results

		bundles, err := bundle.Assemble(breq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bundle error: %v", err)), nil
		}

		degraded := false
		reason := ""
		for i := range bundles {
			lines := assistant.WhyLines(ctx, query, bundles[i])
			for j := range bundles[i].Items {
				bundles[i].Items[j].Why = lines.Lines[j]
			}
			if lines.Degraded {
				degraded = true
				reason = lines.Reason
			}
		}

		payload := map[string]interface{}{
			"bundles":  bundles,
			"degraded": degraded,
		}
		if reason != "" {
			payload["reason"] = reason
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRefineTool(s *server.MCPServer, engine *search.Engine, sessions *session.Store) {
	tool := mcp.NewTool("threadline_refine",
		mcp.WithDescription("Start or continue a conversational search session. Without a session_id, starts a session from the query. With one, merges the follow-up into the stored constraints ('under $150 instead', 'no black') and re-runs the search."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The query or follow-up refinement"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to refine. Empty = start a new session."),
		),
		mcp.WithString("audience",
			mcp.Description("Audience scope for a new session: men, women, or unisex"),
			mcp.Enum("men", "women", "unisex"),
		),
		mcp.WithString("scenario",
			mcp.Description("Scenario scope for a new session"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionMu.Lock()
		defer sessionMu.Unlock()

		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		limit := 10
		if limitVal, err := req.RequireFloat("limit"); err == nil {
			l := int(limitVal)
			if l > 50 {
				l = 50
			}
			if l > 0 {
				limit = l
			}
		}

		var sess *session.Session
		if id, err := req.RequireString("session_id"); err == nil && id != "" {
			sess, err = sessions.Refine(ctx, id, query)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("refine error: %v", err)), nil
			}
		} else {
			var audience catalog.Audience
			if aud, err := req.RequireString("audience"); err == nil && aud != "" {
				parsed, err := catalog.ParseAudience(aud)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("invalid audience: %q", aud)), nil
				}
				audience = parsed
			}
			scenarioID := ""
			if scenario, err := req.RequireString("scenario"); err == nil && scenario != "" {
				if _, ok := catalog.ScenarioByID(scenario); !ok {
					return mcp.NewToolResultError(fmt.Sprintf("unknown scenario: %q", scenario)), nil
				}
				scenarioID = scenario
			}
			constraints := search.Extract(query, audience)
			sess, err = sessions.Begin(ctx, query, scenarioID, audience, constraints)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("session error: %v", err)), nil
			}
		}

		resp, err := engine.Search(ctx, sess.Query, search.Options{
			Audience:    sess.Audience,
			ScenarioID:  sess.ScenarioID,
			Limit:       limit,
			Constraints: &sess.Constraints,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}

		payload := map[string]interface{}{
			"session_id":  sess.ID,
			"constraints": sess.Constraints,
			"results":     resp.Results,
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerCompareTool(s *server.MCPServer, store *catalog.Store, assistant *assist.Engine) {
	tool := mcp.NewTool("threadline_compare",
		mcp.WithDescription("Compare two catalog products and deliver a verdict weighing price, formality, occasion fit, and delivery time."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("product_id_a",
			mcp.Required(),
			mcp.Description("First product ID"),
		),
		mcp.WithString("product_id_b",
			mcp.Required(),
			mcp.Description("Second product ID"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idA, err := req.RequireString("product_id_a")
		if err != nil {
			return mcp.NewToolResultError("product_id_a is required"), nil
		}
		idB, err := req.RequireString("product_id_b")
		if err != nil {
			return mcp.NewToolResultError("product_id_b is required"), nil
		}

		a, ok := store.ByID(idA)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("product %q not found", idA)), nil
		}
		b, ok := store.ByID(idB)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("product %q not found", idB)), nil
		}

		result := assistant.Compare(ctx, a, b)
		payload := map[string]interface{}{
			"verdict":  result.Verdict,
			"degraded": result.Degraded,
			"a":        a,
			"b":        b,
		}
		if result.Reason != "" {
			payload["reason"] = result.Reason
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

// --- Resources ---

func registerStatsResource(s *server.MCPServer, store *catalog.Store) {
	resource := mcp.NewResource(
		"threadline://catalog/stats",
		"Catalog Statistics",
		mcp.WithResourceDescription("Product counts by audience and category, price range, and stock coverage of the current catalog snapshot."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stats := store.Stats()
		data, _ := json.MarshalIndent(stats, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

func registerScenariosResource(s *server.MCPServer) {
	resource := mcp.NewResource(
		"threadline://catalog/scenarios",
		"Shopping Scenarios",
		mcp.WithResourceDescription("The scenario vocabulary: IDs, display names, and the keywords that trigger each scenario boost."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload := map[string]interface{}{
			"scenarios": catalog.Scenarios,
			"count":     len(catalog.Scenarios),
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
