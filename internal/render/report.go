package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

// ItemsTable renders items (search hits, for example) as a bordered table.
func ItemsTable(items domain.Items) string {
	st := newStyles()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("ID", "TYPE", "TITLE", "DONE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, it := range items {
		done := ""
		if it.IsCompleted {
			done = "x"
		}
		t.Row(ShortID(it.ID), string(it.Type), it.Title, done)
	}
	return t.Render()
}

// DoctorReport renders a consistency report, one line per issue.
func DoctorReport(report app.DoctorReport) string {
	st := newStyles()
	if len(report.Issues) == 0 {
		return st.statusOK.Render(fmt.Sprintf("✓ %d item(s) checked, no issues", report.Items))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("LEVEL", "CODE", "ITEM", "MESSAGE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col == 0 && row >= 0 && row < len(report.Issues) && report.Issues[row].Level == app.DoctorIssueLevelError:
				return st.statusErr.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	for _, issue := range report.Issues {
		t.Row(string(issue.Level), issue.Code, ShortID(issue.ItemID), issue.Message)
	}
	return fmt.Sprintf("%d item(s) checked, %d issue(s)\n%s", report.Items, len(report.Issues), t.Render())
}

// ConsoleNotifier prints service notifications as single status lines.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
	st  styles
}

var _ app.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier writes notifications to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, st: newStyles()}
}

// Notify writes one notification.
func (c *ConsoleNotifier) Notify(n app.Notification) {
	if c == nil || c.out == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, formatNotification(c.st, n))
}

// formatNotification renders one notification with its level marker.
func formatNotification(st styles, n app.Notification) string {
	switch n.Level {
	case app.NotificationError:
		return st.statusErr.Render("✗ " + n.Message)
	case app.NotificationInfo:
		return st.statusMsg.Render("• " + n.Message)
	default:
		line := st.statusOK.Render("✓ " + n.Message)
		if n.Undo != nil {
			line += " " + st.count.Render("(listdock undo)")
		}
		return line
	}
}
