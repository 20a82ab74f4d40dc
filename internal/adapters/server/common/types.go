// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ItemKindFolder and related constants define the item kinds accepted by transports.
const (
	ItemKindFolder  = "folder"
	ItemKindTask    = "task"
	ItemKindSubtask = "subtask"
)

// MoveTargetFolder and related constants define where a move request files items.
const (
	MoveTargetFolder      = "folder"
	MoveTargetRoot        = "root"
	MoveTargetTask        = "task"
	MoveTargetFolderOrder = "folder_order"
)

// supportedMoveTargets stores all transport-accepted move targets in canonical order.
var supportedMoveTargets = []string{
	MoveTargetFolder,
	MoveTargetRoot,
	MoveTargetTask,
	MoveTargetFolderOrder,
}

// SupportedMoveTargets returns all move target values accepted by transport adapters.
func SupportedMoveTargets() []string {
	return append([]string(nil), supportedMoveTargets...)
}

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrUnavailable reports a surface the backing service does not provide.
var ErrUnavailable = errors.New("surface unavailable")

// ItemView is the transport form of one item.
type ItemView struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ParentID    string    `json:"parent_id,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	IsExpanded  bool      `json:"is_expanded"`
	OrderIndex  float64   `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

// TaskView is one visible task with its visible subtasks.
type TaskView struct {
	ItemView
	Subtasks       []ItemView `json:"subtasks"`
	HiddenSubtasks int        `json:"hidden_subtasks,omitempty"`
}

// FolderView is one folder row with task counts.
type FolderView struct {
	ItemView
	TaskCount      int `json:"task_count"`
	CompletedCount int `json:"completed_count"`
}

// ListingRequest selects one view. An empty FolderID lists the root view.
type ListingRequest struct {
	FolderID string
}

// Listing is the summary-first state of one view returned to HTTP and MCP callers.
type Listing struct {
	CapturedAt      time.Time    `json:"captured_at"`
	StateHash       string       `json:"state_hash"`
	View            string       `json:"view"`
	FolderID        string       `json:"folder_id,omitempty"`
	Title           string       `json:"title"`
	Folders         []FolderView `json:"folders"`
	Tasks           []TaskView   `json:"tasks"`
	HiddenCompleted int          `json:"hidden_completed,omitempty"`
	UndoAvailable   int          `json:"undo_available"`
}

// AddItemRequest captures input for one new task or folder. ParentID is a
// folder, task, or subtask id; empty means the root list. Folders ignore it.
type AddItemRequest struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	ParentID string `json:"parent_id,omitempty"`
}

// PasteRequest captures one outline paste.
type PasteRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	Text     string `json:"text"`
}

// MoveRequest captures one batch move.
type MoveRequest struct {
	IDs      []string `json:"ids"`
	Target   string   `json:"target"`
	TargetID string   `json:"target_id,omitempty"`
	BeforeID string   `json:"before_id,omitempty"`
	AfterID  string   `json:"after_id,omitempty"`
}

// UpdateItemRequest captures optional patch fields for one item.
type UpdateItemRequest struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Expanded  *bool   `json:"expanded,omitempty"`
	Color     *string `json:"color,omitempty"`
	Icon      *string `json:"icon,omitempty"`
}

// DeleteRequest captures ids to delete in one undo step.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResult reports how many items a delete removed, cascade included.
type DeleteResult struct {
	Deleted int `json:"deleted"`
}

// UndoResult reports whether an undo step was applied.
type UndoResult struct {
	Restored  bool `json:"restored"`
	Remaining int  `json:"remaining"`
}

// ImportResult reports the size of an imported collection.
type ImportResult struct {
	Imported int `json:"imported"`
}

// DoctorIssue is one consistency finding.
type DoctorIssue struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
	ItemID  string `json:"item_id,omitempty"`
}

// DoctorResult reports consistency findings and any pruning performed.
type DoctorResult struct {
	Items  int           `json:"items"`
	Issues []DoctorIssue `json:"issues"`
	Pruned int           `json:"pruned,omitempty"`
}

// ListReader resolves read-only list queries.
type ListReader interface {
	Listing(context.Context, ListingRequest) (Listing, error)
	Search(context.Context, string) ([]ItemView, error)
}

// ItemService captures item mutations.
type ItemService interface {
	AddItem(context.Context, AddItemRequest) (ItemView, error)
	Paste(context.Context, PasteRequest) ([]ItemView, error)
	MoveItems(context.Context, MoveRequest) ([]ItemView, error)
	UpdateItem(context.Context, UpdateItemRequest) (ItemView, error)
	ConvertToFolder(context.Context, string) (ItemView, error)
	DeleteItems(context.Context, DeleteRequest) (DeleteResult, error)
}

// HistoryService captures undo.
type HistoryService interface {
	Undo(context.Context) (UndoResult, error)
}

// TransferService captures whole-collection export and import.
type TransferService interface {
	Export(context.Context, bool) ([]byte, error)
	Import(context.Context, []byte) (ImportResult, error)
}

// DoctorService captures consistency checks.
type DoctorService interface {
	Doctor(context.Context, bool) (DoctorResult, error)
}
