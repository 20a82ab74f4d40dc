package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/hylla/listdock/internal/adapters/server/common"
)

// stubLists serves a fixed listing.
type stubLists struct{}

func (stubLists) Listing(context.Context, common.ListingRequest) (common.Listing, error) {
	return common.Listing{View: "root", Title: "List Dock", StateHash: "h1"}, nil
}

func (stubLists) Search(context.Context, string) ([]common.ItemView, error) {
	return nil, nil
}

// TestNewHandlerRoutes verifies health, API, and MCP mounts on the composed mux.
func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{APIEndpoint: "api/v1/"}, Dependencies{Lists: stubLists{}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" || cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"ok\"}\n" {
			t.Fatalf("%s = %d %q", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listing", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state_hash":"h1"`) {
		t.Fatalf("listing = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"title":"x"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("items without service = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mcp ping = %d %s", rec.Code, rec.Body.String())
	}
}

// TestNewHandlerValidation verifies dependency and endpoint checks.
func TestNewHandlerValidation(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want missing list dependency")
	}
	if _, _, err := NewHandler(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}, Dependencies{Lists: stubLists{}}); err == nil {
		t.Fatal("NewHandler() error = nil, want endpoint collision")
	}
}

// TestNormalizeEndpoint verifies fallback and slash handling.
func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"":          "/mcp",
		"/":         "/mcp",
		" agents ":  "/agents",
		"//a/b//":   "/a/b",
		"/already/": "/already",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in, "/mcp"); got != want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRequestLogRecordsStatus verifies the logging middleware output.
func TestRequestLogRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})

	handler, _, err := NewHandler(Config{}, Dependencies{Lists: stubLists{}, Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	out := buf.String()
	if !strings.Contains(out, "path=/api/v1/nope") || !strings.Contains(out, "status=404") {
		t.Fatalf("log output = %q", out)
	}
}

// TestRunStopsOnCancel verifies graceful shutdown when the context ends.
func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Lists: stubLists{}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
