// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/listdock/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter with list tools and any
// mutation, history, transfer, or doctor tools the services provide.
func NewHandler(cfg Config, lists common.ListReader, items common.ItemService) (*Handler, error) {
	if lists == nil {
		return nil, fmt.Errorf("list service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerListTools(mcpSrv, lists)
	if items != nil {
		registerItemTools(mcpSrv, items)
	}
	registerHistoryTools(mcpSrv, pickHistoryService(lists, items))
	registerTransferTools(mcpSrv, pickTransferService(lists, items))
	registerDoctorTools(mcpSrv, pickDoctorService(lists, items))

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "listdock"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerListTools registers the read-only `listdock.list` and `listdock.search` tools.
func registerListTools(srv *mcpserver.MCPServer, lists common.ListReader) {
	srv.AddTool(
		mcp.NewTool(
			"listdock.list",
			mcp.WithDescription("Return the root list, or one folder's tasks when folder_id is set."),
			mcp.WithString("folder_id", mcp.Description("Folder id or unique id prefix; omit for the root list")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listing, err := lists.Listing(ctx, common.ListingRequest{
				FolderID: req.GetString("folder_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(listing)
			if err != nil {
				return nil, fmt.Errorf("encode list result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.search",
			mcp.WithDescription("Find items whose title contains the query, ignoring case."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Title substring")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, err := req.RequireString("query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			items, err := lists.Search(ctx, query)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"items": items})
			if err != nil {
				return nil, fmt.Errorf("encode search result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("not_implemented: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

// invalidRequestToolResult reports malformed tool arguments.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("invalid_request: malformed arguments")
	}
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}

// pickHistoryService resolves one undo provider from available services.
func pickHistoryService(lists common.ListReader, items common.ItemService) common.HistoryService {
	if svc, ok := lists.(common.HistoryService); ok {
		return svc
	}
	if svc, ok := items.(common.HistoryService); ok {
		return svc
	}
	return nil
}

// pickTransferService resolves one export/import provider from available services.
func pickTransferService(lists common.ListReader, items common.ItemService) common.TransferService {
	if svc, ok := lists.(common.TransferService); ok {
		return svc
	}
	if svc, ok := items.(common.TransferService); ok {
		return svc
	}
	return nil
}

// pickDoctorService resolves one doctor provider from available services.
func pickDoctorService(lists common.ListReader, items common.ItemService) common.DoctorService {
	if svc, ok := lists.(common.DoctorService); ok {
		return svc
	}
	if svc, ok := items.(common.DoctorService); ok {
		return svc
	}
	return nil
}
