package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

// minWrapWidth is the narrowest wrap width handed to glamour.
const minWrapWidth = 24

// ListingMarkdown writes a listing as a markdown document with task-list checkboxes.
func ListingMarkdown(l app.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.Title)
	if len(l.Folders) > 0 {
		b.WriteString("## Folders\n\n")
		for _, f := range l.Folders {
			fmt.Fprintf(&b, "- **%s** (%d/%d done)\n", f.Item.Title, f.Completed, f.Tasks)
		}
		b.WriteString("\n")
	}
	if len(l.Tasks) > 0 {
		b.WriteString("## Tasks\n\n")
		for _, node := range l.Tasks {
			writeTaskMarkdown(&b, node.Item, "")
			for _, sub := range node.Subtasks {
				writeTaskMarkdown(&b, sub, "  ")
			}
		}
		b.WriteString("\n")
	}
	if l.HiddenCompleted > 0 {
		fmt.Fprintf(&b, "_%d completed task(s) hidden_\n", l.HiddenCompleted)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeTaskMarkdown(b *strings.Builder, it domain.Item, indent string) {
	box := " "
	if it.IsCompleted {
		box = "x"
	}
	fmt.Fprintf(b, "%s- [%s] %s\n", indent, box, it.Title)
}

// MarkdownRenderer renders markdown for the terminal and recreates the
// glamour renderer when the wrap width changes.
type MarkdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// Render converts markdown into ANSI-styled text wrapped at width. On any
// renderer failure the raw markdown is returned.
func (r *MarkdownRenderer) Render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, minWrapWidth)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
