package app

import (
	"slices"

	"github.com/hylla/listdock/internal/domain"
)

// The helpers below are the item repository primitives. Each returns a new
// collection and leaves its input untouched so undo snapshots never alias
// live state.

// addItems appends items.
func addItems(items domain.Items, added ...domain.Item) domain.Items {
	out := make(domain.Items, 0, len(items)+len(added))
	out = append(out, items...)
	return append(out, added...)
}

// patchItem applies fn to the item with id. It reports false when id is absent.
func patchItem(items domain.Items, id string, fn func(*domain.Item)) (domain.Items, bool) {
	idx := items.IndexOf(id)
	if idx < 0 {
		return items, false
	}
	out := items.Clone()
	fn(&out[idx])
	return out, true
}

// removeItem deletes id. Deleting a folder also deletes its direct children;
// the cascade stops there, so subtasks of those children are left behind.
func removeItem(items domain.Items, id string) (domain.Items, []domain.Item) {
	return removeItems(items, []string{id})
}

// removeItems deletes every listed id plus the direct children of each listed folder.
func removeItems(items domain.Items, ids []string) (domain.Items, []domain.Item) {
	folders := make(map[string]struct{})
	for _, id := range ids {
		if it, ok := items.Find(id); ok && it.Type == domain.ItemTypeFolder {
			folders[it.ID] = struct{}{}
		}
	}
	kept := make(domain.Items, 0, len(items))
	removed := make([]domain.Item, 0)
	for _, it := range items {
		_, parentIsDeletedFolder := folders[it.ParentID]
		if slices.Contains(ids, it.ID) || (it.ParentID != "" && parentIsDeletedFolder) {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	return kept, removed
}

// replaceAll swaps in a copy of items.
func replaceAll(items domain.Items) domain.Items {
	return items.Clone()
}
