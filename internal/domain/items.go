package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Items is an item collection in storage order.
type Items []Item

// Clone returns a copy that shares no backing array with the receiver.
func (items Items) Clone() Items {
	if items == nil {
		return Items{}
	}
	return slices.Clone(items)
}

// IndexOf returns the position of id, or -1.
func (items Items) IndexOf(id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// Find returns the item with id.
func (items Items) Find(id string) (Item, bool) {
	idx := items.IndexOf(id)
	if idx < 0 {
		return Item{}, false
	}
	return items[idx], true
}

// Children returns the items parented to parentID in sibling order.
// An empty parentID selects root items.
func (items Items) Children(parentID string) Items {
	out := make(Items, 0)
	for _, it := range items {
		if it.ParentID == parentID {
			out = append(out, it)
		}
	}
	SortSiblings(out)
	return out
}

// ChildrenOfType is Children filtered to one item type.
func (items Items) ChildrenOfType(parentID string, t ItemType) Items {
	out := make(Items, 0)
	for _, it := range items {
		if it.ParentID == parentID && it.Type == t {
			out = append(out, it)
		}
	}
	SortSiblings(out)
	return out
}

// Search returns items whose title contains query, case-insensitively.
func (items Items) Search(query string) Items {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make(Items, 0)
	if query == "" {
		return out
	}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), query) {
			out = append(out, it)
		}
	}
	SortSiblings(out)
	return out
}

// CompareOrder orders siblings by order index, then creation time, then id.
func CompareOrder(a, b Item) int {
	if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortSiblings sorts items in place using CompareOrder.
func SortSiblings(items []Item) {
	slices.SortFunc(items, CompareOrder)
}
