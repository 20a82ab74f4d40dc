package app

import "github.com/hylla/listdock/internal/domain"

// DefaultUndoDepth caps how many snapshots the undo history keeps.
const DefaultUndoDepth = 10

// UndoStack keeps whole-collection snapshots taken before each tracked mutation.
// There is no redo side; popping discards the entry.
type UndoStack struct {
	depth   int
	entries []domain.Items
}

// NewUndoStack constructs an empty stack. depth <= 0 selects DefaultUndoDepth.
func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

// Depth returns the cap.
func (u *UndoStack) Depth() int {
	return u.depth
}

// Len returns the number of recoverable snapshots.
func (u *UndoStack) Len() int {
	return len(u.entries)
}

// Push records a copy of items, evicting the oldest entries past the cap.
func (u *UndoStack) Push(items domain.Items) {
	u.entries = append(u.entries, items.Clone())
	if over := len(u.entries) - u.depth; over > 0 {
		u.entries = append([]domain.Items(nil), u.entries[over:]...)
	}
}

// Pop removes and returns the most recent snapshot.
func (u *UndoStack) Pop() (domain.Items, bool) {
	if len(u.entries) == 0 {
		return nil, false
	}
	last := u.entries[len(u.entries)-1]
	u.entries = u.entries[:len(u.entries)-1]
	return last, true
}

// Clear drops all history.
func (u *UndoStack) Clear() {
	u.entries = nil
}

// Snapshots returns copies of all entries, oldest first.
func (u *UndoStack) Snapshots() []domain.Items {
	out := make([]domain.Items, 0, len(u.entries))
	for _, entry := range u.entries {
		out = append(out, entry.Clone())
	}
	return out
}

// Restore replaces history with entries, keeping only the newest depth of them.
func (u *UndoStack) Restore(entries []domain.Items) {
	u.entries = nil
	for _, entry := range entries {
		u.Push(entry)
	}
}
