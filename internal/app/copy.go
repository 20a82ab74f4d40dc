package app

import (
	"slices"
	"strings"

	"github.com/hylla/listdock/internal/domain"
)

// copyIndent is the per-level indent used in nested outlines.
const copyIndent = "  "

// topLevelSelection returns the selected items whose parent is not also
// selected, in sibling order.
func topLevelSelection(items domain.Items, ids []string) []domain.Item {
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := items.Find(id)
		if !ok || slices.ContainsFunc(out, func(o domain.Item) bool { return o.ID == id }) {
			continue
		}
		if it.ParentID != "" && slices.Contains(ids, it.ParentID) {
			continue
		}
		out = append(out, it)
	}
	domain.SortSiblings(out)
	return out
}

// FormatCopy renders selected items for the clipboard. The flat form is one
// title per line; the nested form is a "- " bullet outline with completed
// items marked "[x]", so pasting it back reproduces the structure.
func FormatCopy(items domain.Items, ids []string, withSubtasks bool) string {
	top := topLevelSelection(items, ids)
	var b strings.Builder
	if !withSubtasks {
		for i, it := range top {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(it.Title)
		}
		return b.String()
	}
	for _, it := range top {
		writeOutline(&b, items, it, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeOutline writes it and its descendants at depth.
func writeOutline(b *strings.Builder, items domain.Items, it domain.Item, depth int) {
	b.WriteString(strings.Repeat(copyIndent, depth))
	b.WriteString("- ")
	if it.IsCompleted {
		b.WriteString("[x] ")
	}
	b.WriteString(it.Title)
	b.WriteByte('\n')
	for _, child := range items.Children(it.ID) {
		writeOutline(b, items, child, depth+1)
	}
}
