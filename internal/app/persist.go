package app

import (
	"encoding/json"
	"fmt"

	"github.com/hylla/listdock/internal/domain"
)

// DefaultStorageKey is the key the whole store state is saved under.
const DefaultStorageKey = "list-dock-storage"

// StateVersion is the current stored-state schema version.
const StateVersion = 1

// Settings holds user display and clipboard preferences.
type Settings struct {
	ShowCompleted         bool `json:"showCompleted"`
	HideCompletedSubtasks bool `json:"hideCompletedSubtasks"`
	PersistLastFolder     bool `json:"persistLastFolder"`
	CopyWithSubtasks      bool `json:"copyWithSubtasks"`
}

// DefaultSettings returns the preferences a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{ShowCompleted: true}
}

// ViewKind identifies which list is on screen.
type ViewKind string

// ViewRoot and related constants define view kinds.
const (
	ViewRoot   ViewKind = "root"
	ViewFolder ViewKind = "folder"
)

// View is the list currently being browsed.
type View struct {
	Kind     ViewKind `json:"kind"`
	FolderID string   `json:"folder_id,omitempty"`
}

// RootView returns the default list view.
func RootView() View {
	return View{Kind: ViewRoot}
}

// FolderViewOf returns the view of one folder.
func FolderViewOf(folderID string) View {
	return View{Kind: ViewFolder, FolderID: folderID}
}

// storedEnvelope is the versioned blob written to the StateStore.
type storedEnvelope struct {
	State   storedState `json:"state"`
	Version int         `json:"version"`
}

// storedState holds every persisted field.
type storedState struct {
	Items                 []ItemRecord   `json:"items"`
	ShowCompleted         bool           `json:"showCompleted"`
	HideCompletedSubtasks bool           `json:"hideCompletedSubtasks"`
	PersistLastFolder     bool           `json:"persistLastFolder"`
	CopyWithSubtasks      bool           `json:"copyWithSubtasks"`
	UndoStack             [][]ItemRecord `json:"undoStack"`
	CurrentView           string         `json:"currentView,omitempty"`
	CurrentFolderID       *string        `json:"currentFolderId,omitempty"`
}

// loadedState is the decoded form with optional fields still optional, so
// defaults apply only where a value was never stored.
type loadedState struct {
	Items                 *[]ItemRecord  `json:"items"`
	ShowCompleted         *bool          `json:"showCompleted"`
	HideCompletedSubtasks *bool          `json:"hideCompletedSubtasks"`
	PersistLastFolder     *bool          `json:"persistLastFolder"`
	CopyWithSubtasks      *bool          `json:"copyWithSubtasks"`
	UndoStack             [][]ItemRecord `json:"undoStack"`
	CurrentView           string         `json:"currentView"`
	CurrentFolderID       *string        `json:"currentFolderId"`
}

// persistedSnapshot is the in-memory state the codec reads and writes.
type persistedSnapshot struct {
	Items    domain.Items
	Settings Settings
	Undo     []domain.Items
	View     View
}

// encodeState serializes the snapshot into the versioned envelope. The view
// is written only when the last folder should be remembered.
func encodeState(snap persistedSnapshot) ([]byte, error) {
	state := storedState{
		Items:                 recordsFromDomain(snap.Items),
		ShowCompleted:         snap.Settings.ShowCompleted,
		HideCompletedSubtasks: snap.Settings.HideCompletedSubtasks,
		PersistLastFolder:     snap.Settings.PersistLastFolder,
		CopyWithSubtasks:      snap.Settings.CopyWithSubtasks,
		UndoStack:             make([][]ItemRecord, 0, len(snap.Undo)),
	}
	for _, entry := range snap.Undo {
		state.UndoStack = append(state.UndoStack, recordsFromDomain(entry))
	}
	if snap.Settings.PersistLastFolder {
		state.CurrentView = string(ViewRoot)
		if snap.View.Kind == ViewFolder && snap.View.FolderID != "" {
			folderID := snap.View.FolderID
			state.CurrentView = string(ViewFolder)
			state.CurrentFolderID = &folderID
		}
	}
	encoded, err := json.Marshal(storedEnvelope{State: state, Version: StateVersion})
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return encoded, nil
}

// decodeState parses a stored blob. Blobs without a version wrapper are
// legacy state objects and are migrated as version 0.
func decodeState(data []byte, defaults Settings) (persistedSnapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return persistedSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	rawState := json.RawMessage(data)
	version := 0
	if inner, ok := probe["state"]; ok {
		rawState = inner
		if rawVersion, ok := probe["version"]; ok {
			if err := json.Unmarshal(rawVersion, &version); err != nil {
				return persistedSnapshot{}, fmt.Errorf("%w: version: %v", ErrInvalidState, err)
			}
		}
	}
	if version > StateVersion {
		return persistedSnapshot{}, fmt.Errorf("%w: %d (newest known is %d)", ErrUnsupportedVersion, version, StateVersion)
	}

	var state loadedState
	if err := json.Unmarshal(rawState, &state); err != nil {
		return persistedSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	migrateState(&state, version)
	if state.Items == nil {
		return persistedSnapshot{}, fmt.Errorf("%w: items missing", ErrInvalidState)
	}

	snap := persistedSnapshot{
		Items:    recordsToDomain(*state.Items),
		Settings: defaults,
		View:     RootView(),
	}
	if state.ShowCompleted != nil {
		snap.Settings.ShowCompleted = *state.ShowCompleted
	}
	if state.HideCompletedSubtasks != nil {
		snap.Settings.HideCompletedSubtasks = *state.HideCompletedSubtasks
	}
	if state.PersistLastFolder != nil {
		snap.Settings.PersistLastFolder = *state.PersistLastFolder
	}
	if state.CopyWithSubtasks != nil {
		snap.Settings.CopyWithSubtasks = *state.CopyWithSubtasks
	}
	for _, entry := range state.UndoStack {
		snap.Undo = append(snap.Undo, recordsToDomain(entry))
	}
	if snap.Settings.PersistLastFolder && state.CurrentView == string(ViewFolder) && state.CurrentFolderID != nil {
		if folder, ok := snap.Items.Find(*state.CurrentFolderID); ok && folder.Type == domain.ItemTypeFolder {
			snap.View = FolderViewOf(folder.ID)
		}
	}
	return snap, nil
}

// migrateState upgrades older layouts in place.
func migrateState(state *loadedState, fromVersion int) {
	if fromVersion < 1 && state.Items == nil {
		state.Items = &[]ItemRecord{}
	}
}
