package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/threadline/threadline/internal/bundle"
	"github.com/threadline/threadline/internal/catalog"
	"github.com/threadline/threadline/internal/search"
	"github.com/threadline/threadline/internal/session"
)

// newTestServer wires a full stack over an in-memory session db.
func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	store := catalog.NewStore(catalog.StoreConfig{Size: 240, TTL: time.Minute})
	engine := search.NewEngine(store)
	sessions, err := session.NewStore(session.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	return NewServer(ServerConfig{
		Catalog:  store,
		Engine:   engine,
		Sessions: sessions,
		Version:  "test",
	})
}

// callTool invokes an MCP tool through the JSON-RPC surface.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestNewServer(t *testing.T) {
	if srv := newTestServer(t); srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestSearchTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "threadline_search", map[string]interface{}{
		"query": "black shirts under 2000",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var resp search.Response
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &resp); err != nil {
		t.Fatalf("parsing search response: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected search results")
	}
	for _, r := range resp.Results {
		if r.Product.Price > 2000 {
			t.Errorf("product %s over budget at %d", r.Product.ID, r.Product.Price)
		}
	}
	if resp.Constraints.Color != "Black" {
		t.Errorf("extracted color = %q", resp.Constraints.Color)
	}
}

func TestSearchToolRejectsBadScenario(t *testing.T) {
	srv := newTestServer(t)
	result := callTool(t, srv, "threadline_search", map[string]interface{}{
		"query":    "shirts",
		"scenario": "mars_landing",
	})
	if !result.IsError {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestExtractTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "threadline_extract", map[string]interface{}{
		"text":     "white snikers under $150 for men, no pink",
		"audience": "men",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var constraints search.Constraints
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &constraints); err != nil {
		t.Fatalf("parsing constraints: %v", err)
	}
	if constraints.Category != "Sneakers" {
		t.Errorf("category = %q, want Sneakers (typo-corrected)", constraints.Category)
	}
	if constraints.BudgetMax == nil || *constraints.BudgetMax != 150 {
		t.Errorf("budget = %v", constraints.BudgetMax)
	}
	if constraints.ColorExclude != "Pink" {
		t.Errorf("colorExclude = %q", constraints.ColorExclude)
	}
}

func TestBundleTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "threadline_bundle", map[string]interface{}{
		"query":    "smart dinner outfit",
		"scenario": "nyc_dinner",
		"audience": "women",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var payload struct {
		Bundles  []bundle.Bundle `json:"bundles"`
		Degraded bool            `json:"degraded"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("parsing bundle payload: %v", err)
	}
	if len(payload.Bundles) != 3 {
		t.Fatalf("got %d bundles, want 3", len(payload.Bundles))
	}
	// No provider is configured, so why lines come from the fallback.
	if !payload.Degraded {
		t.Error("expected degraded why lines without an LLM")
	}
	for _, b := range payload.Bundles {
		if len(b.Items) != bundle.BundleSize {
			t.Errorf("bundle %s has %d items", b.Name, len(b.Items))
		}
		for _, item := range b.Items {
			if item.Why == "" {
				t.Errorf("bundle %s item %s missing why line", b.Name, item.Product.ID)
			}
		}
	}
}

func TestRefineToolRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	first := callTool(t, srv, "threadline_refine", map[string]interface{}{
		"query":    "black sneakers",
		"audience": "men",
	})
	if first.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, first))
	}

	var firstPayload struct {
		SessionID   string             `json:"session_id"`
		Constraints search.Constraints `json:"constraints"`
		Results     []search.Result    `json:"results"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, first)), &firstPayload); err != nil {
		t.Fatalf("parsing refine payload: %v", err)
	}
	if firstPayload.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if firstPayload.Constraints.Color != "Black" {
		t.Errorf("initial color = %q", firstPayload.Constraints.Color)
	}

	second := callTool(t, srv, "threadline_refine", map[string]interface{}{
		"query":      "under $2500",
		"session_id": firstPayload.SessionID,
	})
	if second.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, second))
	}

	var secondPayload struct {
		SessionID   string             `json:"session_id"`
		Constraints search.Constraints `json:"constraints"`
		Results     []search.Result    `json:"results"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, second)), &secondPayload); err != nil {
		t.Fatalf("parsing refine payload: %v", err)
	}
	if secondPayload.SessionID != firstPayload.SessionID {
		t.Error("refinement should keep the session id")
	}
	if secondPayload.Constraints.BudgetMax == nil || *secondPayload.Constraints.BudgetMax != 2500 {
		t.Errorf("merged budget = %v", secondPayload.Constraints.BudgetMax)
	}
	if secondPayload.Constraints.Category != "Sneakers" {
		t.Errorf("category lost across refinement: %q", secondPayload.Constraints.Category)
	}
	for _, r := range secondPayload.Results {
		if r.Product.Price > 2500 {
			t.Errorf("result %s over merged budget at %d", r.Product.ID, r.Product.Price)
		}
	}
}

func TestCompareTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "threadline_compare", map[string]interface{}{
		"product_id_a": "hero-navy-blazer",
		"product_id_b": "hero-white-sneakers",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var payload struct {
		Verdict  string `json:"verdict"`
		Degraded bool   `json:"degraded"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("parsing compare payload: %v", err)
	}
	if payload.Verdict == "" {
		t.Fatal("expected a verdict")
	}
	if !payload.Degraded {
		t.Error("expected degraded verdict without an LLM")
	}
}

func TestCompareToolUnknownProduct(t *testing.T) {
	srv := newTestServer(t)
	result := callTool(t, srv, "threadline_compare", map[string]interface{}{
		"product_id_a": "hero-navy-blazer",
		"product_id_b": "ghost-404",
	})
	if !result.IsError {
		t.Fatal("expected error for unknown product")
	}
	if !strings.Contains(getTextContent(t, result), "ghost-404") {
		t.Error("error should name the missing product")
	}
}

func TestStatsResource(t *testing.T) {
	srv := newTestServer(t)

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "resources/read",
		"params": map[string]interface{}{
			"uri": "threadline://catalog/stats",
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var resp struct {
		Result struct {
			Contents []struct {
				Text string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("resource error: %s", resp.Error.Message)
	}
	if len(resp.Result.Contents) == 0 {
		t.Fatal("expected resource contents")
	}

	var stats catalog.Stats
	if err := json.Unmarshal([]byte(resp.Result.Contents[0].Text), &stats); err != nil {
		t.Fatalf("parsing stats: %v", err)
	}
	if stats.Total == 0 {
		t.Error("expected a non-empty catalog")
	}
}
