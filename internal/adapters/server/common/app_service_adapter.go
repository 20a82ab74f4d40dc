package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service list operations.
type AppServiceAdapter struct {
	service *app.Service
	now     func() time.Time
}

var (
	_ ListReader      = (*AppServiceAdapter)(nil)
	_ ItemService     = (*AppServiceAdapter)(nil)
	_ HistoryService  = (*AppServiceAdapter)(nil)
	_ TransferService = (*AppServiceAdapter)(nil)
	_ DoctorService   = (*AppServiceAdapter)(nil)
)

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service, now: time.Now}
}

// ready reports a configuration error for nil adapters.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	return nil
}

// Listing resolves one view snapshot.
func (a *AppServiceAdapter) Listing(_ context.Context, in ListingRequest) (Listing, error) {
	if err := a.ready(); err != nil {
		return Listing{}, err
	}

	view := app.RootView()
	if folderID := strings.TrimSpace(in.FolderID); folderID != "" {
		resolved, err := a.service.ResolveID(folderID)
		if err != nil {
			return Listing{}, mapAppError("resolve folder", err)
		}
		view = app.FolderViewOf(resolved)
	}
	listing, err := a.service.Listing(view)
	if err != nil {
		return Listing{}, mapAppError("list", err)
	}

	out := Listing{
		View:            string(listing.View.Kind),
		FolderID:        listing.View.FolderID,
		Title:           listing.Title,
		Folders:         make([]FolderView, 0, len(listing.Folders)),
		Tasks:           make([]TaskView, 0, len(listing.Tasks)),
		HiddenCompleted: listing.HiddenCompleted,
		UndoAvailable:   a.service.UndoLen(),
	}
	for _, f := range listing.Folders {
		out.Folders = append(out.Folders, FolderView{
			ItemView:       mapItem(f.Item),
			TaskCount:      f.Tasks,
			CompletedCount: f.Completed,
		})
	}
	for _, node := range listing.Tasks {
		out.Tasks = append(out.Tasks, TaskView{
			ItemView:       mapItem(node.Item),
			Subtasks:       mapItems(node.Subtasks),
			HiddenSubtasks: node.HiddenSubtasks,
		})
	}
	hash, err := computeListingHash(out)
	if err != nil {
		return Listing{}, err
	}
	out.StateHash = hash
	out.CapturedAt = a.now().UTC()
	return out, nil
}

// Search matches titles across every item.
func (a *AppServiceAdapter) Search(_ context.Context, query string) ([]ItemView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required: %w", ErrInvalidRequest)
	}
	return mapItems(a.service.Search(query)), nil
}

// AddItem creates one task (under ParentID) or one root folder.
func (a *AppServiceAdapter) AddItem(ctx context.Context, in AddItemRequest) (ItemView, error) {
	if err := a.ready(); err != nil {
		return ItemView{}, err
	}

	switch strings.TrimSpace(strings.ToLower(in.Kind)) {
	case ItemKindFolder:
		if strings.TrimSpace(in.ParentID) != "" {
			return ItemView{}, fmt.Errorf("folders live at the root; parent_id must be empty: %w", ErrInvalidRequest)
		}
		folder, err := a.service.AddFolder(ctx, in.Title)
		if err != nil {
			return ItemView{}, mapAppError("add folder", err)
		}
		return mapItem(folder), nil
	case "", ItemKindTask, ItemKindSubtask:
		parentID, err := a.resolveOptional(in.ParentID)
		if err != nil {
			return ItemView{}, mapAppError("resolve parent", err)
		}
		item, err := a.service.AddTaskUnder(ctx, parentID, in.Title)
		if err != nil {
			return ItemView{}, mapAppError("add task", err)
		}
		return mapItem(item), nil
	default:
		return ItemView{}, fmt.Errorf("unsupported kind %q: %w", in.Kind, ErrInvalidRequest)
	}
}

// Paste adds a parsed outline under ParentID.
func (a *AppServiceAdapter) Paste(ctx context.Context, in PasteRequest) ([]ItemView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("paste text is required: %w", ErrInvalidRequest)
	}
	parentID, err := a.resolveOptional(in.ParentID)
	if err != nil {
		return nil, mapAppError("resolve parent", err)
	}
	created, err := a.service.PasteUnder(ctx, parentID, in.Text)
	if err != nil {
		return nil, mapAppError("paste", err)
	}
	return mapItems(created), nil
}

// MoveItems moves ids to the requested target and returns the moved items.
func (a *AppServiceAdapter) MoveItems(ctx context.Context, in MoveRequest) ([]ItemView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if len(in.IDs) == 0 {
		return nil, fmt.Errorf("ids are required: %w", ErrInvalidRequest)
	}
	target := strings.TrimSpace(strings.ToLower(in.Target))
	if !slices.Contains(supportedMoveTargets, target) {
		return nil, fmt.Errorf("unsupported target %q: %w", in.Target, ErrInvalidRequest)
	}
	ids, err := a.resolveAll(in.IDs)
	if err != nil {
		return nil, mapAppError("resolve ids", err)
	}

	var dest app.Destination
	switch target {
	case MoveTargetRoot:
		dest = app.ToRoot()
	case MoveTargetFolderOrder:
		dest = app.FolderOrder()
	case MoveTargetFolder, MoveTargetTask:
		if strings.TrimSpace(in.TargetID) == "" {
			return nil, fmt.Errorf("target_id is required for target %q: %w", in.Target, ErrInvalidRequest)
		}
		targetID, err := a.service.ResolveID(in.TargetID)
		if err != nil {
			return nil, mapAppError("resolve target", err)
		}
		dest = app.ToFolder(targetID)
		if target == MoveTargetTask {
			dest = app.UnderTask(targetID)
		}
	}
	if dest.BeforeID, err = a.resolveOptional(in.BeforeID); err != nil {
		return nil, mapAppError("resolve before_id", err)
	}
	if dest.AfterID, err = a.resolveOptional(in.AfterID); err != nil {
		return nil, mapAppError("resolve after_id", err)
	}

	if err := a.service.MoveMultipleItems(ctx, ids, dest); err != nil {
		return nil, mapAppError("move", err)
	}
	out := make([]ItemView, 0, len(ids))
	for _, id := range ids {
		if it, err := a.service.Item(id); err == nil {
			out = append(out, mapItem(it))
		}
	}
	return out, nil
}

// UpdateItem applies every provided patch field to one item.
func (a *AppServiceAdapter) UpdateItem(ctx context.Context, in UpdateItemRequest) (ItemView, error) {
	if err := a.ready(); err != nil {
		return ItemView{}, err
	}
	if in.Title == nil && in.Completed == nil && in.Expanded == nil && in.Color == nil && in.Icon == nil {
		return ItemView{}, fmt.Errorf("at least one field to update is required: %w", ErrInvalidRequest)
	}
	id, err := a.service.ResolveID(in.ID)
	if err != nil {
		return ItemView{}, mapAppError("resolve id", err)
	}

	item, err := a.service.Item(id)
	if err != nil {
		return ItemView{}, mapAppError("update", err)
	}
	if in.Title != nil {
		if item, err = a.service.Rename(ctx, id, *in.Title); err != nil {
			return ItemView{}, mapAppError("rename", err)
		}
	}
	if in.Completed != nil {
		if item, err = a.service.SetCompleted(ctx, id, *in.Completed); err != nil {
			return ItemView{}, mapAppError("set completed", err)
		}
	}
	if in.Expanded != nil {
		if item, err = a.service.SetExpanded(ctx, id, *in.Expanded); err != nil {
			return ItemView{}, mapAppError("set expanded", err)
		}
	}
	if in.Color != nil || in.Icon != nil {
		color, icon := item.Color, item.Icon
		if in.Color != nil {
			color = *in.Color
		}
		if in.Icon != nil {
			icon = *in.Icon
		}
		if item, err = a.service.StyleFolder(ctx, id, color, icon); err != nil {
			return ItemView{}, mapAppError("style folder", err)
		}
	}
	return mapItem(item), nil
}

// ConvertToFolder promotes one task to a folder.
func (a *AppServiceAdapter) ConvertToFolder(ctx context.Context, rawID string) (ItemView, error) {
	if err := a.ready(); err != nil {
		return ItemView{}, err
	}
	id, err := a.service.ResolveID(rawID)
	if err != nil {
		return ItemView{}, mapAppError("resolve id", err)
	}
	if err := a.service.ConvertTaskToFolder(ctx, id); err != nil {
		return ItemView{}, mapAppError("convert", err)
	}
	item, err := a.service.Item(id)
	if err != nil {
		return ItemView{}, mapAppError("convert", err)
	}
	return mapItem(item), nil
}

// DeleteItems deletes ids in one undo step.
func (a *AppServiceAdapter) DeleteItems(ctx context.Context, in DeleteRequest) (DeleteResult, error) {
	if err := a.ready(); err != nil {
		return DeleteResult{}, err
	}
	if len(in.IDs) == 0 {
		return DeleteResult{}, fmt.Errorf("ids are required: %w", ErrInvalidRequest)
	}
	ids, err := a.resolveAll(in.IDs)
	if err != nil {
		return DeleteResult{}, mapAppError("resolve ids", err)
	}
	n, err := a.service.RemoveMany(ctx, ids)
	if err != nil {
		return DeleteResult{}, mapAppError("delete", err)
	}
	return DeleteResult{Deleted: n}, nil
}

// Undo reverts the last tracked mutation.
func (a *AppServiceAdapter) Undo(ctx context.Context) (UndoResult, error) {
	if err := a.ready(); err != nil {
		return UndoResult{}, err
	}
	restored, err := a.service.Undo(ctx)
	if err != nil {
		return UndoResult{}, mapAppError("undo", err)
	}
	return UndoResult{Restored: restored, Remaining: a.service.UndoLen()}, nil
}

// Export renders the collection as the export JSON array.
func (a *AppServiceAdapter) Export(_ context.Context, excludeCompleted bool) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	data, err := a.service.Export(excludeCompleted)
	if err != nil {
		return nil, mapAppError("export", err)
	}
	return data, nil
}

// Import replaces the collection with an export JSON array.
func (a *AppServiceAdapter) Import(ctx context.Context, data []byte) (ImportResult, error) {
	if err := a.ready(); err != nil {
		return ImportResult{}, err
	}
	n, err := a.service.Import(ctx, data)
	if err != nil {
		return ImportResult{}, mapAppError("import", err)
	}
	return ImportResult{Imported: n}, nil
}

// Doctor reports consistency findings, pruning orphans first when asked.
func (a *AppServiceAdapter) Doctor(ctx context.Context, prune bool) (DoctorResult, error) {
	if err := a.ready(); err != nil {
		return DoctorResult{}, err
	}
	pruned := 0
	if prune {
		n, err := a.service.PruneOrphans(ctx)
		if err != nil {
			return DoctorResult{}, mapAppError("prune", err)
		}
		pruned = n
	}
	report := a.service.Diagnose()
	out := DoctorResult{Items: report.Items, Issues: make([]DoctorIssue, 0, len(report.Issues)), Pruned: pruned}
	for _, issue := range report.Issues {
		out.Issues = append(out.Issues, DoctorIssue{
			Level:   string(issue.Level),
			Code:    issue.Code,
			Message: issue.Message,
			ItemID:  issue.ItemID,
		})
	}
	return out, nil
}

// resolveOptional expands an optional id reference.
func (a *AppServiceAdapter) resolveOptional(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return a.service.ResolveID(raw)
}

// resolveAll expands every id reference, failing on the first unknown one.
func (a *AppServiceAdapter) resolveAll(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, ref := range raw {
		id, err := a.service.ResolveID(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// mapItem converts one domain item.
func mapItem(it domain.Item) ItemView {
	return ItemView{
		ID:          it.ID,
		Type:        string(it.Type),
		Title:       it.Title,
		ParentID:    it.ParentID,
		IsCompleted: it.IsCompleted,
		IsExpanded:  it.IsExpanded,
		OrderIndex:  it.OrderIndex,
		CreatedAt:   it.CreatedAt,
		Color:       it.Color,
		Icon:        it.Icon,
	}
}

// mapItems converts a slice of domain items.
func mapItems(items []domain.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, mapItem(it))
	}
	return out
}

// computeListingHash hashes the listing content so clients can skip unchanged refreshes.
func computeListingHash(l Listing) (string, error) {
	l.CapturedAt = time.Time{}
	l.StateHash = ""
	encoded, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("encode listing hash input: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// mapAppError maps app and domain errors onto transport error classes.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrAmbiguousID),
		errors.Is(err, app.ErrInvalidImport),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrInvalidColor):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
