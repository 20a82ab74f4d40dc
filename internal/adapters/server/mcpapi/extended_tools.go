package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hylla/listdock/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerItemTools registers add, paste, move, update, convert, and delete tools.
func registerItemTools(srv *mcpserver.MCPServer, items common.ItemService) {
	srv.AddTool(
		mcp.NewTool(
			"listdock.add",
			mcp.WithDescription("Add one task or folder. Tasks land under parent_id: a folder gives a task, a task or subtask gives a subtask. Folders are root-only and reject parent_id."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
			mcp.WithString("kind", mcp.Description("Item kind"), mcp.Enum(common.ItemKindTask, common.ItemKindFolder)),
			mcp.WithString("parent_id", mcp.Description("Parent folder, task, or subtask id; omit for the root list")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := items.AddItem(ctx, common.AddItemRequest{
				Kind:     req.GetString("kind", common.ItemKindTask),
				Title:    title,
				ParentID: req.GetString("parent_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode add result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.paste",
			mcp.WithDescription("Add items from an indented outline. Indented lines become subtasks of the line above."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Outline text, one item per line")),
			mcp.WithString("parent_id", mcp.Description("Parent folder, task, or subtask id; omit for the root list")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, err := req.RequireString("text")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			created, err := items.Paste(ctx, common.PasteRequest{
				ParentID: req.GetString("parent_id", ""),
				Text:     text,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"items": created})
			if err != nil {
				return nil, fmt.Errorf("encode paste result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.move",
			mcp.WithDescription("Move items into a folder, to the root list, under a task, or reorder root folders."),
			mcp.WithArray("ids", mcp.Required(), mcp.Description("Item ids to move, in order"), mcp.WithStringItems()),
			mcp.WithString("target", mcp.Required(), mcp.Description("Destination kind"), mcp.Enum(common.SupportedMoveTargets()...)),
			mcp.WithString("target_id", mcp.Description("Folder or task id for folder and task targets")),
			mcp.WithString("before_id", mcp.Description("Place the items before this sibling")),
			mcp.WithString("after_id", mcp.Description("Place the items after this sibling")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.MoveRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if len(args.IDs) == 0 {
				return mcp.NewToolResultError(`invalid_request: required argument "ids" not found`), nil
			}
			if strings.TrimSpace(args.Target) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "target" not found`), nil
			}
			moved, err := items.MoveItems(ctx, args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"items": moved})
			if err != nil {
				return nil, fmt.Errorf("encode move result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.update",
			mcp.WithDescription("Rename, complete, expand, or restyle one item. Only provided fields change."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithBoolean("completed", mcp.Description("Completion state")),
			mcp.WithBoolean("expanded", mcp.Description("Whether a task shows its subtasks")),
			mcp.WithString("color", mcp.Description("Folder color as #rrggbb")),
			mcp.WithString("icon", mcp.Description("Folder icon name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.UpdateItemRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.ID) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "id" not found`), nil
			}
			item, err := items.UpdateItem(ctx, args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode update result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.convert_to_folder",
			mcp.WithDescription("Turn one task into a root folder; its subtasks become the folder's tasks."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := items.ConvertToFolder(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode convert_to_folder result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.delete",
			mcp.WithDescription("Delete items in one undo step. Deleting a folder deletes its tasks."),
			mcp.WithArray("ids", mcp.Required(), mcp.Description("Item ids to delete"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ids := req.GetStringSlice("ids", nil)
			if len(ids) == 0 {
				return mcp.NewToolResultError(`invalid_request: required argument "ids" not found`), nil
			}
			deleted, err := items.DeleteItems(ctx, common.DeleteRequest{IDs: ids})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(deleted)
			if err != nil {
				return nil, fmt.Errorf("encode delete result: %w", err)
			}
			return result, nil
		},
	)
}

// registerHistoryTools registers `listdock.undo`.
func registerHistoryTools(srv *mcpserver.MCPServer, history common.HistoryService) {
	if history == nil {
		return
	}
	srv.AddTool(
		mcp.NewTool(
			"listdock.undo",
			mcp.WithDescription("Revert the last tracked change."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out, err := history.Undo(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(out)
			if err != nil {
				return nil, fmt.Errorf("encode undo result: %w", err)
			}
			return result, nil
		},
	)
}

// registerTransferTools registers `listdock.export` and `listdock.import`.
func registerTransferTools(srv *mcpserver.MCPServer, transfer common.TransferService) {
	if transfer == nil {
		return
	}
	srv.AddTool(
		mcp.NewTool(
			"listdock.export",
			mcp.WithDescription("Return every item as the export JSON array."),
			mcp.WithBoolean("exclude_completed", mcp.Description("Leave completed items out")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			data, err := transfer.Export(ctx, req.GetBool("exclude_completed", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"items": json.RawMessage(data)})
			if err != nil {
				return nil, fmt.Errorf("encode export result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"listdock.import",
			mcp.WithDescription("Replace every item with an export JSON array. Undo restores the previous items."),
			mcp.WithString("items_json", mcp.Required(), mcp.Description("Export JSON array as text")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			raw, err := req.RequireString("items_json")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			out, err := transfer.Import(ctx, []byte(raw))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(out)
			if err != nil {
				return nil, fmt.Errorf("encode import result: %w", err)
			}
			return result, nil
		},
	)
}

// registerDoctorTools registers `listdock.doctor`.
func registerDoctorTools(srv *mcpserver.MCPServer, doctor common.DoctorService) {
	if doctor == nil {
		return
	}
	srv.AddTool(
		mcp.NewTool(
			"listdock.doctor",
			mcp.WithDescription("Report orphaned items and other stored-state problems."),
			mcp.WithBoolean("prune", mcp.Description("Delete orphaned items before reporting")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out, err := doctor.Doctor(ctx, req.GetBool("prune", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(out)
			if err != nil {
				return nil, fmt.Errorf("encode doctor result: %w", err)
			}
			return result, nil
		},
	)
}
