// Package render turns listings, reports, and notifications into terminal text.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors shared by every renderer.
var (
	accent   = lipgloss.Color("62")
	muted    = lipgloss.Color("241")
	dim      = lipgloss.Color("239")
	bright   = lipgloss.Color("252")
	selected = lipgloss.Color("212")
	success  = lipgloss.Color("78")
	warning  = lipgloss.Color("203")
)

// styles groups the lipgloss styles used for listing rows.
type styles struct {
	title     lipgloss.Style
	folder    lipgloss.Style
	task      lipgloss.Style
	done      lipgloss.Style
	subtask   lipgloss.Style
	selected  lipgloss.Style
	id        lipgloss.Style
	count     lipgloss.Style
	empty     lipgloss.Style
	header    lipgloss.Style
	statusOK  lipgloss.Style
	statusErr lipgloss.Style
	statusMsg lipgloss.Style
}

// newStyles builds the default style set.
func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(bright),
		folder:    lipgloss.NewStyle().Bold(true),
		task:      lipgloss.NewStyle().Foreground(bright),
		done:      lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		subtask:   lipgloss.NewStyle().Foreground(muted),
		selected:  lipgloss.NewStyle().Foreground(selected).Bold(true),
		id:        lipgloss.NewStyle().Foreground(dim),
		count:     lipgloss.NewStyle().Foreground(muted),
		empty:     lipgloss.NewStyle().Foreground(dim).Italic(true),
		header:    lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		statusOK:  lipgloss.NewStyle().Foreground(success),
		statusErr: lipgloss.NewStyle().Bold(true).Foreground(warning),
		statusMsg: lipgloss.NewStyle().Foreground(muted),
	}
}

// ShortID trims an id to a prefix long enough to type back on the command line.
func ShortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
