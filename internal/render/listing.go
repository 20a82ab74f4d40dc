package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

// ListingOptions tunes listing output.
type ListingOptions struct {
	Selected []string
	ShowIDs  bool
}

// Listing renders one view as styled terminal rows: the title, then folder
// rows (root view only), then tasks with their visible subtasks.
func Listing(l app.Listing, opts ListingOptions) string {
	st := newStyles()
	isSelected := make(map[string]bool, len(opts.Selected))
	for _, id := range opts.Selected {
		isSelected[id] = true
	}

	lines := []string{st.title.Render(l.Title)}
	for _, f := range l.Folders {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(f.Item.DisplayColor())).Render("■")
		name := st.folder.Render(f.Item.Title)
		if isSelected[f.Item.ID] {
			name = st.selected.Render(f.Item.Title)
		}
		row := fmt.Sprintf("%s %s %s", swatch, name, st.count.Render(fmt.Sprintf("%d/%d", f.Completed, f.Tasks)))
		lines = append(lines, withID(st, row, f.Item.ID, opts.ShowIDs))
	}

	for _, node := range l.Tasks {
		lines = append(lines, withID(st, itemRow(st, node.Item, "", isSelected[node.Item.ID]), node.Item.ID, opts.ShowIDs))
		if !node.Item.IsExpanded {
			if n := len(node.Subtasks) + node.HiddenSubtasks; n > 0 {
				lines = append(lines, st.count.Render(fmt.Sprintf("    … %d subtask(s)", n)))
			}
			continue
		}
		for _, sub := range node.Subtasks {
			lines = append(lines, withID(st, itemRow(st, sub, "    ", isSelected[sub.ID]), sub.ID, opts.ShowIDs))
		}
		if node.HiddenSubtasks > 0 {
			lines = append(lines, st.count.Render(fmt.Sprintf("    %d completed subtask(s) hidden", node.HiddenSubtasks)))
		}
	}

	if len(l.Folders) == 0 && len(l.Tasks) == 0 {
		lines = append(lines, st.empty.Render("No tasks yet"))
	}
	if l.HiddenCompleted > 0 {
		lines = append(lines, st.count.Render(fmt.Sprintf("%d completed task(s) hidden", l.HiddenCompleted)))
	}
	return strings.Join(lines, "\n")
}

// itemRow renders one checkbox row.
func itemRow(st styles, it domain.Item, indent string, sel bool) string {
	box := "[ ]"
	style := st.task
	if it.Type == domain.ItemTypeSubtask {
		style = st.subtask
	}
	if it.IsCompleted {
		box = "[x]"
		style = st.done
	}
	if sel {
		style = st.selected
	}
	return indent + box + " " + style.Render(it.Title)
}

// withID appends a dim short id when requested.
func withID(st styles, row, id string, show bool) string {
	if !show {
		return row
	}
	return row + " " + st.id.Render(ShortID(id))
}
