package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/listdock/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubListReader provides deterministic listing responses for MCP tool tests.
type stubListReader struct {
	listing     common.Listing
	found       []common.ItemView
	err         error
	lastRequest common.ListingRequest
	lastQuery   string
}

// Listing records the latest request and returns one fixture result.
func (s *stubListReader) Listing(_ context.Context, req common.ListingRequest) (common.Listing, error) {
	s.lastRequest = req
	if s.err != nil {
		return common.Listing{}, s.err
	}
	return s.listing, nil
}

// Search records the latest query and returns fixture items.
func (s *stubListReader) Search(_ context.Context, query string) ([]common.ItemView, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.ItemView(nil), s.found...), nil
}

// stubUndoReader is a list reader that also serves undo.
type stubUndoReader struct {
	stubListReader
	undos int
}

// Undo counts calls and reports one restored step.
func (s *stubUndoReader) Undo(context.Context) (common.UndoResult, error) {
	s.undos++
	return common.UndoResult{Restored: true}, nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "listdock-test",
				"version": "1.0.0",
			},
		},
	}
}

// listToolNames initializes a session and returns every registered tool name.
func listToolNames(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})
	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	names := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		names = append(names, name)
	}
	return names
}

// callToolResultText decodes the first textual content block from a CallToolResult.
func callToolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result = nil, want non-nil")
	}
	if len(result.Content) == 0 {
		t.Fatalf("result content is empty")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] has unexpected type %T", result.Content[0])
	}
	return text.Text
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubListReader{}, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersReadOnlyToolsWithoutItems verifies a list-only service exposes no mutations.
func TestHandlerRegistersReadOnlyToolsWithoutItems(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubListReader{}, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	names := listToolNames(t, server)
	for _, required := range []string{"listdock.list", "listdock.search"} {
		if !slices.Contains(names, required) {
			t.Fatalf("tool list missing %s: %#v", required, names)
		}
	}
	for _, absent := range []string{"listdock.add", "listdock.undo", "listdock.export", "listdock.doctor"} {
		if slices.Contains(names, absent) {
			t.Fatalf("unexpected %s without backing service: %#v", absent, names)
		}
	}
}

// TestHandlerPicksOptionalServicesFromListReader verifies optional tools resolve from either service.
func TestHandlerPicksOptionalServicesFromListReader(t *testing.T) {
	lists := &stubUndoReader{}
	handler, err := NewHandler(Config{}, lists, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	if names := listToolNames(t, server); !slices.Contains(names, "listdock.undo") {
		t.Fatalf("tool list missing listdock.undo: %#v", names)
	}
	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "listdock.undo", map[string]any{}))
	if got, _ := toolResultStructured(t, callResp.Result)["restored"].(bool); !got {
		t.Fatalf("restored = false, want true: %#v", callResp.Result)
	}
	if lists.undos != 1 {
		t.Fatalf("undos = %d, want 1", lists.undos)
	}
}

// TestHandlerListToolCall verifies listing argument forwarding.
func TestHandlerListToolCall(t *testing.T) {
	lists := &stubListReader{
		listing: common.Listing{
			CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			StateHash:  "abc123",
			View:       "folder",
			FolderID:   "f1",
			Title:      "Groceries",
		},
	}
	handler, err := NewHandler(Config{}, lists, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "listdock.list", map[string]any{
		"folder_id": "f1",
	}))
	result := toolResultStructured(t, callResp.Result)
	if got, _ := result["state_hash"].(string); got != "abc123" {
		t.Fatalf("state_hash = %q, want abc123", got)
	}
	if got, _ := result["title"].(string); got != "Groceries" {
		t.Fatalf("title = %q, want Groceries", got)
	}
	if lists.lastRequest.FolderID != "f1" {
		t.Fatalf("folder_id = %q, want f1", lists.lastRequest.FolderID)
	}
}

// TestHandlerSearchToolCallErrorPaths verifies required-arg and mapped-service errors.
func TestHandlerSearchToolCallErrorPaths(t *testing.T) {
	lists := &stubListReader{err: errors.Join(common.ErrInvalidRequest, errors.New("query too vague"))}
	handler, err := NewHandler(Config{}, lists, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, missingArgResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "listdock.search", map[string]any{}))
	if isError, _ := missingArgResp.Result["isError"].(bool); !isError {
		t.Fatalf("isError = %v, want true", missingArgResp.Result["isError"])
	}
	if got := toolResultText(t, missingArgResp.Result); !strings.Contains(got, `required argument "query" not found`) {
		t.Fatalf("error text = %q, want required query message", got)
	}

	_, mappedResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "listdock.search", map[string]any{"query": "a"}))
	if got := toolResultText(t, mappedResp.Result); !strings.HasPrefix(got, "invalid_request:") {
		t.Fatalf("error text = %q, want prefix invalid_request:", got)
	}
	if lists.lastQuery != "a" {
		t.Fatalf("query = %q, want a", lists.lastQuery)
	}
}

// TestNewHandlerRequiresListReader verifies list dependency enforcement.
func TestNewHandlerRequiresListReader(t *testing.T) {
	handler, err := NewHandler(Config{}, nil, nil)
	if err == nil {
		t.Fatalf("NewHandler() error = nil, want non-nil")
	}
	if handler != nil {
		t.Fatalf("handler = %#v, want nil", handler)
	}
}

// TestNormalizeConfig verifies deterministic config defaults and path normalization.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{ServerName: "listdock", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
		{
			name: "trimmed values and slash prefix",
			in:   Config{ServerName: " listdock-server ", ServerVersion: " v1.2.3 ", EndpointPath: "custom/path"},
			want: Config{ServerName: "listdock-server", ServerVersion: "v1.2.3", EndpointPath: "/custom/path"},
		},
		{
			name: "endpoint trim of repeated slashes",
			in:   Config{ServerName: "listdock", ServerVersion: "dev", EndpointPath: "///mcp///"},
			want: Config{ServerName: "listdock", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeConfig(tt.in); got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestHandlerServeHTTPUnavailable verifies nil handler paths fail closed with 503.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	for name, handler := range map[string]*Handler{
		"nil receiver":               nil,
		"missing inner http handler": {},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
			if !strings.Contains(rec.Body.String(), "mcp handler unavailable") {
				t.Fatalf("body = %q, want mcp handler unavailable", rec.Body.String())
			}
		})
	}
}

// TestToolResultFromErrorMapping verifies deterministic error-to-tool-result mapping.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{"nil error", nil, "unknown error"},
		{"invalid request", errors.Join(common.ErrInvalidRequest, errors.New("bad request")), "invalid_request:"},
		{"not found", errors.Join(common.ErrNotFound, errors.New("missing")), "not_found:"},
		{"unavailable", errors.Join(common.ErrUnavailable, errors.New("disabled")), "not_implemented:"},
		{"internal", errors.New("boom"), "internal_error:"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResultFromError(tt.err)
			if !result.IsError {
				t.Fatalf("IsError = false, want true")
			}
			if got := callToolResultText(t, result); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}
