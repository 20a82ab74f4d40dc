package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/hylla/listdock/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	StorageKey string
	UndoDepth  int
	Defaults   *Settings
	Clipboard  Clipboard
	Jitter     func() float64
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service owns the item collection and applies every mutation to it. Each
// mutation computes its full next collection first, then records undo
// history, swaps the collection in, flushes the state blob, and finally
// dispatches notifications once the lock is released.
type Service struct {
	mu        sync.Mutex
	store     StateStore
	notifier  Notifier
	clipboard Clipboard
	idGen     IDGenerator
	clock     Clock
	jitter    func() float64
	key       string
	defaults  Settings

	items     domain.Items
	settings  Settings
	undo      *UndoStack
	selection *Selection
	view      View
	query     string
	pending   []Notification
}

// NewService constructs a new value for this package.
func NewService(store StateStore, notifier Notifier, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Jitter == nil {
		cfg.Jitter = rand.Float64
	}
	if strings.TrimSpace(cfg.StorageKey) == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	defaults := DefaultSettings()
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}

	return &Service{
		store:     store,
		notifier:  notifier,
		clipboard: cfg.Clipboard,
		idGen:     idGen,
		clock:     clock,
		jitter:    cfg.Jitter,
		key:       strings.TrimSpace(cfg.StorageKey),
		defaults:  defaults,
		items:     domain.Items{},
		settings:  defaults,
		undo:      NewUndoStack(cfg.UndoDepth),
		selection: NewSelection(),
		view:      RootView(),
	}
}

// Load replaces in-memory state with the stored blob, if one exists.
func (s *Service) Load(ctx context.Context) error {
	s.lock()
	defer s.unlock()

	if s.store == nil {
		return nil
	}
	data, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read state %q: %w", s.key, err)
	}
	if !ok {
		return nil
	}
	snap, err := decodeState(data, s.defaults)
	if err != nil {
		return err
	}
	s.items = snap.Items
	s.settings = snap.Settings
	s.undo.Restore(snap.Undo)
	s.view = snap.View
	s.selection.Clear()
	return nil
}

// lock acquires the state lock.
func (s *Service) lock() {
	s.mu.Lock()
}

// unlock releases the state lock and then delivers queued notifications.
func (s *Service) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if s.notifier == nil {
		return
	}
	for _, n := range pending {
		s.notifier.Notify(n)
	}
}

// notifyLocked queues one notification.
func (s *Service) notifyLocked(level NotificationLevel, message string) {
	if message == "" {
		return
	}
	s.pending = append(s.pending, Notification{Level: level, Message: message})
}

// persistLocked flushes the whole state under the storage key.
func (s *Service) persistLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	encoded, err := encodeState(persistedSnapshot{
		Items:    s.items,
		Settings: s.settings,
		Undo:     s.undo.Snapshots(),
		View:     s.view,
	})
	if err == nil {
		err = s.store.Set(ctx, s.key, encoded)
	}
	if err != nil {
		s.notifyLocked(NotificationError, "Could not save changes")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// commitLocked swaps next in as the live collection. Tracked commits record
// the previous collection for undo and attach an undo action to the
// notification. A flush failure is returned but the new state stays applied.
func (s *Service) commitLocked(ctx context.Context, next domain.Items, message string, tracked bool) error {
	if tracked {
		s.undo.Push(s.items)
	}
	s.items = next
	s.reconcileLocked()
	if message != "" {
		note := Notification{Level: NotificationSuccess, Message: message}
		if tracked {
			note.Undo = func(ctx context.Context) error {
				_, err := s.Undo(ctx)
				return err
			}
		}
		s.pending = append(s.pending, note)
	}
	return s.persistLocked(ctx)
}

// reconcileLocked drops selection entries and views that point at removed items.
func (s *Service) reconcileLocked() {
	for _, id := range s.selection.IDs() {
		if _, ok := s.items.Find(id); !ok {
			s.selection.Remove(id)
		}
	}
	if s.view.Kind == ViewFolder {
		if folder, ok := s.items.Find(s.view.FolderID); !ok || folder.Type != domain.ItemTypeFolder {
			s.view = RootView()
		}
	}
}

// Items returns a copy of the live collection.
func (s *Service) Items() domain.Items {
	s.lock()
	defer s.unlock()
	return s.items.Clone()
}

// Item returns one item by id.
func (s *Service) Item(id string) (domain.Item, error) {
	s.lock()
	defer s.unlock()
	it, ok := s.items.Find(strings.TrimSpace(id))
	if !ok {
		return domain.Item{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return it, nil
}

// ResolveID expands an exact id or a unique id prefix.
func (s *Service) ResolveID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.ErrInvalidID
	}
	s.lock()
	defer s.unlock()
	if _, ok := s.items.Find(ref); ok {
		return ref, nil
	}
	match := ""
	for _, it := range s.items {
		if !strings.HasPrefix(it.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%q: %w", ref, ErrAmbiguousID)
		}
		match = it.ID
	}
	if match == "" {
		return "", fmt.Errorf("item %q: %w", ref, ErrNotFound)
	}
	return match, nil
}

// Settings returns the current preferences.
func (s *Service) Settings() Settings {
	s.lock()
	defer s.unlock()
	return s.settings
}

// UpdateSettings applies fn to the preferences and persists them.
func (s *Service) UpdateSettings(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s.lock()
	defer s.unlock()
	next := s.settings
	fn(&next)
	s.settings = next
	return s.settings, s.persistLocked(ctx)
}

// UndoDepth returns the history cap.
func (s *Service) UndoDepth() int {
	s.lock()
	defer s.unlock()
	return s.undo.Depth()
}

// UndoLen returns how many undo steps are available.
func (s *Service) UndoLen() int {
	s.lock()
	defer s.unlock()
	return s.undo.Len()
}

// Select applies a plain click to id.
func (s *Service) Select(id string) {
	s.lock()
	defer s.unlock()
	s.selection.Click(id)
}

// ToggleSelected applies a modifier click to id.
func (s *Service) ToggleSelected(id string) {
	s.lock()
	defer s.unlock()
	s.selection.Toggle(id)
}

// SelectRange toggles a contiguous range as one unit.
func (s *Service) SelectRange(ids []string) {
	s.lock()
	defer s.unlock()
	s.selection.ToggleRange(ids)
}

// SetSelection replaces the selection with the known ids among ids.
func (s *Service) SetSelection(ids []string) {
	s.lock()
	defer s.unlock()
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.items.Find(id); ok {
			known = append(known, id)
		}
	}
	s.selection.Set(known)
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection() {
	s.lock()
	defer s.unlock()
	s.selection.Clear()
}

// SelectedIDs returns the selection in selection order.
func (s *Service) SelectedIDs() []string {
	s.lock()
	defer s.unlock()
	return s.selection.IDs()
}

// targetContextLocked resolves where new top-level items go. A single
// selected task or subtask turns new items into subtasks of that task (or of
// the subtask's parent); otherwise they go into the current view.
func (s *Service) targetContextLocked() (domain.ItemType, string) {
	if id, ok := s.selection.Sole(); ok {
		if sel, found := s.items.Find(id); found {
			switch sel.Type {
			case domain.ItemTypeTask:
				return domain.ItemTypeSubtask, sel.ID
			case domain.ItemTypeSubtask:
				if _, parentOK := s.items.Find(sel.ParentID); parentOK {
					return domain.ItemTypeSubtask, sel.ParentID
				}
			case domain.ItemTypeFolder:
				// Folders never anchor new items.
			}
		}
	}
	if s.view.Kind == ViewFolder {
		return domain.ItemTypeTask, s.view.FolderID
	}
	return domain.ItemTypeTask, ""
}

// appendOrderLocked returns an order key after the last sibling of itemType under parentID.
func (s *Service) appendOrderLocked(parentID string, itemType domain.ItemType) float64 {
	siblings := s.items.ChildrenOfType(parentID, itemType)
	var last *float64
	if len(siblings) > 0 {
		last = domain.Float64Ptr(siblings[len(siblings)-1].OrderIndex)
	}
	return domain.OrderBetween(last, nil, s.clock())
}

// AddTask adds a task to the current context, or a subtask when exactly one
// task or subtask is selected.
func (s *Service) AddTask(ctx context.Context, title string) (domain.Item, error) {
	s.lock()
	defer s.unlock()

	itemType, parentID := s.targetContextLocked()
	return s.addTaskLocked(ctx, title, itemType, parentID)
}

// AddTaskUnder adds a task under an explicit parent, ignoring the selection.
// An empty parentID means the root list.
func (s *Service) AddTaskUnder(ctx context.Context, parentID, title string) (domain.Item, error) {
	s.lock()
	defer s.unlock()

	itemType, parent, err := s.contextForParentLocked(parentID)
	if err != nil {
		return domain.Item{}, err
	}
	return s.addTaskLocked(ctx, title, itemType, parent)
}

// contextForParentLocked maps an explicit parent id to the type and parent
// new items take: tasks in a folder or at root, subtasks under a task, and
// siblings for a subtask.
func (s *Service) contextForParentLocked(parentID string) (domain.ItemType, string, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return domain.ItemTypeTask, "", nil
	}
	parent, ok := s.items.Find(parentID)
	if !ok {
		return "", "", fmt.Errorf("parent %q: %w", parentID, ErrNotFound)
	}
	switch parent.Type {
	case domain.ItemTypeFolder:
		return domain.ItemTypeTask, parent.ID, nil
	case domain.ItemTypeTask:
		return domain.ItemTypeSubtask, parent.ID, nil
	default:
		if _, ok := s.items.Find(parent.ParentID); !ok {
			return "", "", fmt.Errorf("parent %q of %q: %w", parent.ParentID, parent.ID, ErrNotFound)
		}
		return domain.ItemTypeSubtask, parent.ParentID, nil
	}
}

// addTaskLocked creates and commits one task or subtask.
func (s *Service) addTaskLocked(ctx context.Context, title string, itemType domain.ItemType, parentID string) (domain.Item, error) {
	now := s.clock()
	item, err := domain.NewItem(domain.ItemInput{
		ID:         s.idGen(),
		Type:       itemType,
		Title:      title,
		ParentID:   parentID,
		OrderIndex: s.appendOrderLocked(parentID, itemType),
	}, now)
	if err != nil {
		return domain.Item{}, err
	}

	next := addItems(s.items, item)
	if itemType == domain.ItemTypeSubtask {
		next, _ = patchItem(next, parentID, func(p *domain.Item) { p.IsExpanded = true })
	}
	return item, s.commitLocked(ctx, next, fmt.Sprintf("Added %q", item.Title), true)
}

// AddFolder creates a root folder. Any selected tasks and subtasks move into
// it as plain tasks within the same undo step.
func (s *Service) AddFolder(ctx context.Context, title string) (domain.Item, error) {
	s.lock()
	defer s.unlock()

	now := s.clock()
	folder, err := domain.NewItem(domain.ItemInput{
		ID:         s.idGen(),
		Type:       domain.ItemTypeFolder,
		Title:      title,
		OrderIndex: s.appendOrderLocked("", domain.ItemTypeFolder),
		IsExpanded: true,
	}, now)
	if err != nil {
		return domain.Item{}, err
	}

	next := addItems(s.items, folder)
	selected := make([]string, 0, s.selection.Len())
	for _, id := range s.selection.IDs() {
		if it, ok := s.items.Find(id); ok && it.Type != domain.ItemTypeFolder {
			selected = append(selected, id)
		}
	}
	message := fmt.Sprintf("Created folder %q", folder.Title)
	if len(selected) > 0 {
		moved, err := planMove(next, selected, ToFolder(folder.ID), now, s.jitter)
		if err != nil {
			return domain.Item{}, err
		}
		next = moved.items
		message = fmt.Sprintf("Created folder %q with %d task(s)", folder.Title, len(moved.moved))
		s.selection.Clear()
	}
	return folder, s.commitLocked(ctx, next, message, true)
}

// Paste parses text as an outline and adds the result in one undo step.
// Text with no usable lines is ignored.
func (s *Service) Paste(ctx context.Context, text string) ([]domain.Item, error) {
	s.lock()
	defer s.unlock()

	itemType, parentID := s.targetContextLocked()
	return s.pasteLocked(ctx, text, itemType, parentID)
}

// PasteUnder pastes an outline under an explicit parent, ignoring the selection.
func (s *Service) PasteUnder(ctx context.Context, parentID, text string) ([]domain.Item, error) {
	s.lock()
	defer s.unlock()

	itemType, parent, err := s.contextForParentLocked(parentID)
	if err != nil {
		return nil, err
	}
	return s.pasteLocked(ctx, text, itemType, parent)
}

// pasteLocked parses and commits one outline.
func (s *Service) pasteLocked(ctx context.Context, text string, itemType domain.ItemType, parentID string) ([]domain.Item, error) {
	created := ParseOutline(text, PasteBase{Type: itemType, ParentID: parentID}, s.clock(), s.idGen)
	if len(created) == 0 {
		return nil, nil
	}
	for _, it := range created {
		if strings.TrimSpace(it.ID) == "" {
			return nil, domain.ErrInvalidID
		}
	}
	next := addItems(s.items, created...)
	if itemType == domain.ItemTypeSubtask {
		next, _ = patchItem(next, parentID, func(p *domain.Item) { p.IsExpanded = true })
	}
	return created, s.commitLocked(ctx, next, fmt.Sprintf("Pasted %d item(s)", len(created)), true)
}

// PasteFromClipboard pastes the system clipboard contents.
func (s *Service) PasteFromClipboard(ctx context.Context) ([]domain.Item, error) {
	if s.clipboard == nil {
		return nil, ErrClipboard
	}
	text, err := s.clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	return s.Paste(ctx, text)
}

// Copy renders ids (or the selection when ids is empty) for the clipboard and
// writes it there when a clipboard is configured.
func (s *Service) Copy(_ context.Context, ids []string, withSubtasks bool) (string, error) {
	s.lock()
	defer s.unlock()

	if len(ids) == 0 {
		ids = s.selection.IDs()
	}
	text := FormatCopy(s.items, ids, withSubtasks)
	if text == "" {
		return "", nil
	}
	if s.clipboard == nil {
		return text, nil
	}
	if err := s.clipboard.WriteAll(text); err != nil {
		s.notifyLocked(NotificationError, "Could not copy to clipboard")
		return text, fmt.Errorf("%w: %w", ErrClipboard, err)
	}
	s.notifyLocked(NotificationSuccess, fmt.Sprintf("Copied %d item(s)", len(topLevelSelection(s.items, ids))))
	return text, nil
}

// Remove deletes one item. Deleting a folder also deletes its direct
// children. Unknown ids are ignored.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()

	target, ok := s.items.Find(id)
	if !ok {
		return nil
	}
	next, removed := removeItem(s.items, id)
	message := fmt.Sprintf("Deleted %q", target.Title)
	if target.Type == domain.ItemTypeFolder && len(removed) > 1 {
		message = fmt.Sprintf("Deleted folder %q and %d item(s)", target.Title, len(removed)-1)
	}
	return s.commitLocked(ctx, next, message, true)
}

// RemoveMany deletes several items in one undo step and reports how many
// items went, folder children included.
func (s *Service) RemoveMany(ctx context.Context, ids []string) (int, error) {
	s.lock()
	defer s.unlock()

	next, removed := removeItems(s.items, ids)
	if len(removed) == 0 {
		return 0, nil
	}
	return len(removed), s.commitLocked(ctx, next, fmt.Sprintf("Deleted %d item(s)", len(removed)), true)
}

// patchLocked applies an untracked edit to one item.
func (s *Service) patchLocked(ctx context.Context, id string, fn func(*domain.Item) error) (domain.Item, error) {
	idx := s.items.IndexOf(id)
	if idx < 0 {
		return domain.Item{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	updated := s.items[idx]
	if err := fn(&updated); err != nil {
		return domain.Item{}, err
	}
	next, _ := patchItem(s.items, id, func(it *domain.Item) { *it = updated })
	return updated, s.commitLocked(ctx, next, "", false)
}

// SetCompleted marks an item done or not done. Completing an item drops it
// from the selection.
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) (domain.Item, error) {
	s.lock()
	defer s.unlock()
	return s.patchLocked(ctx, id, func(it *domain.Item) error {
		if completed && !it.IsCompleted {
			s.selection.Remove(it.ID)
		}
		it.IsCompleted = completed
		return nil
	})
}

// Rename changes an item title. Blank titles are rejected.
func (s *Service) Rename(ctx context.Context, id, title string) (domain.Item, error) {
	s.lock()
	defer s.unlock()
	return s.patchLocked(ctx, id, func(it *domain.Item) error {
		return it.Rename(title)
	})
}

// SetExpanded opens or collapses a task's subtask list.
func (s *Service) SetExpanded(ctx context.Context, id string, expanded bool) (domain.Item, error) {
	s.lock()
	defer s.unlock()
	return s.patchLocked(ctx, id, func(it *domain.Item) error {
		it.IsExpanded = expanded
		return nil
	})
}

// StyleFolder sets a folder's color and icon.
func (s *Service) StyleFolder(ctx context.Context, id, color, icon string) (domain.Item, error) {
	s.lock()
	defer s.unlock()
	return s.patchLocked(ctx, id, func(it *domain.Item) error {
		return it.SetAppearance(color, icon)
	})
}

// MoveItem moves one item to dest.
func (s *Service) MoveItem(ctx context.Context, id string, dest Destination) error {
	return s.MoveMultipleItems(ctx, []string{id}, dest)
}

// MoveMultipleItems moves ids to dest in one undo step, giving each a
// distinct order key in the given order.
func (s *Service) MoveMultipleItems(ctx context.Context, ids []string, dest Destination) error {
	s.lock()
	defer s.unlock()

	res, err := planMove(s.items, ids, dest, s.clock(), s.jitter)
	if err != nil {
		s.notifyLocked(NotificationError, "Cannot move there")
		return err
	}
	if !res.changed {
		return nil
	}
	return s.commitLocked(ctx, res.items, res.message, true)
}

// ReorderFolder places a folder before or after another root folder.
func (s *Service) ReorderFolder(ctx context.Context, id, beforeID, afterID string) error {
	dest := FolderOrder()
	dest.BeforeID = beforeID
	dest.AfterID = afterID
	return s.MoveItem(ctx, id, dest)
}

// ConvertTaskToFolder promotes a task to a root folder; its subtasks become the folder's tasks.
func (s *Service) ConvertTaskToFolder(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()

	res, err := planConvertToFolder(s.items, id)
	if err != nil {
		s.notifyLocked(NotificationError, "Only tasks can become folders")
		return err
	}
	if !res.changed {
		return nil
	}
	s.selection.Remove(id)
	return s.commitLocked(ctx, res.items, res.message, true)
}

// Undo restores the collection saved before the last tracked mutation. It
// reports false, and queues a failure notification, when history is empty.
func (s *Service) Undo(ctx context.Context) (bool, error) {
	s.lock()
	defer s.unlock()

	prev, ok := s.undo.Pop()
	if !ok {
		s.notifyLocked(NotificationError, "Nothing to undo")
		return false, nil
	}
	s.items = prev
	s.reconcileLocked()
	s.notifyLocked(NotificationInfo, "Undo successful")
	return true, s.persistLocked(ctx)
}

// Export renders the collection as a pretty JSON array.
func (s *Service) Export(excludeCompleted bool) ([]byte, error) {
	s.lock()
	defer s.unlock()
	return EncodeExport(s.items, excludeCompleted)
}

// Import replaces the whole collection with an exported array. Invalid
// payloads leave the collection untouched.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	s.lock()
	defer s.unlock()

	items, err := DecodeImport(data)
	if err != nil {
		s.notifyLocked(NotificationError, "Import failed: invalid file")
		return 0, err
	}
	return len(items), s.commitLocked(ctx, replaceAll(items), fmt.Sprintf("Imported %d item(s)", len(items)), true)
}

// ClearAll deletes every item and the undo history with it.
func (s *Service) ClearAll(ctx context.Context) error {
	s.lock()
	defer s.unlock()

	s.undo.Clear()
	s.selection.Clear()
	return s.commitLocked(ctx, domain.Items{}, "Cleared all items", false)
}
