package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/domain"
)

func sampleListing() app.Listing {
	task := domain.Item{ID: "task-0001-abcdef", Type: domain.ItemTypeTask, Title: "Groceries", IsExpanded: true}
	return app.Listing{
		View:  app.RootView(),
		Title: app.RootTitle,
		Folders: []app.FolderSummary{{
			Item:      domain.Item{ID: "folder-01", Type: domain.ItemTypeFolder, Title: "Work", Color: "#3b82f6"},
			Tasks:     3,
			Completed: 1,
		}},
		Tasks: []app.TaskNode{{
			Item: task,
			Subtasks: []domain.Item{
				{ID: "sub-1", Type: domain.ItemTypeSubtask, Title: "Milk", ParentID: task.ID, IsCompleted: true},
			},
			HiddenSubtasks: 2,
		}},
		HiddenCompleted: 4,
	}
}

func TestListingRows(t *testing.T) {
	out := Listing(sampleListing(), ListingOptions{ShowIDs: true})
	for _, want := range []string{
		"List Dock",
		"Work",
		"1/3",
		"[ ] ",
		"Groceries",
		"task-000",
		"[x] ",
		"Milk",
		"2 completed subtask(s) hidden",
		"4 completed task(s) hidden",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in listing:\n%s", want, out)
		}
	}
	if strings.Contains(out, "task-0001-abcdef") {
		t.Fatalf("expected ids shortened:\n%s", out)
	}
}

func TestListingCollapsedAndEmpty(t *testing.T) {
	l := sampleListing()
	l.Tasks[0].Item.IsExpanded = false
	out := Listing(l, ListingOptions{})
	if strings.Contains(out, "Milk") || !strings.Contains(out, "3 subtask(s)") {
		t.Fatalf("expected collapsed subtasks summarized:\n%s", out)
	}

	empty := Listing(app.Listing{Title: "Inbox"}, ListingOptions{})
	if !strings.Contains(empty, "No tasks yet") {
		t.Fatalf("expected empty placeholder, got %q", empty)
	}
}

func TestListingMarkdown(t *testing.T) {
	md := ListingMarkdown(sampleListing())
	for _, want := range []string{
		"# List Dock\n",
		"- **Work** (1/3 done)\n",
		"- [ ] Groceries\n",
		"  - [x] Milk\n",
		"_4 completed task(s) hidden_\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var r MarkdownRenderer
	if got := r.Render("  \n", 80); got != "" {
		t.Fatalf("Render(blank) = %q", got)
	}
	out := r.Render("# Title\n\n- [ ] Milk", 10)
	if !strings.Contains(out, "Milk") {
		t.Fatalf("expected rendered content, got %q", out)
	}
	if r.width != minWrapWidth {
		t.Fatalf("wrap width = %d, want %d", r.width, minWrapWidth)
	}
}

func TestItemsTableAndDoctorReport(t *testing.T) {
	table := ItemsTable(domain.Items{{ID: "abc", Type: domain.ItemTypeTask, Title: "Pay rent", IsCompleted: true}})
	for _, want := range []string{"TITLE", "Pay rent", "task"} {
		if !strings.Contains(table, want) {
			t.Fatalf("expected %q in table:\n%s", want, table)
		}
	}

	clean := DoctorReport(app.DoctorReport{Items: 5, Issues: []app.DoctorIssue{}})
	if !strings.Contains(clean, "5 item(s) checked, no issues") {
		t.Fatalf("unexpected clean report %q", clean)
	}
	dirty := DoctorReport(app.DoctorReport{Items: 2, Issues: []app.DoctorIssue{{
		Level: app.DoctorIssueLevelWarn, Code: "orphan", Message: "points at missing parent", ItemID: "x1",
	}}})
	if !strings.Contains(dirty, "orphan") || !strings.Contains(dirty, "1 issue(s)") {
		t.Fatalf("unexpected report:\n%s", dirty)
	}
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)
	n.Notify(app.Notification{Level: app.NotificationSuccess, Message: `Added "x"`, Undo: func(context.Context) error { return nil }})
	n.Notify(app.Notification{Level: app.NotificationError, Message: "Nothing to undo"})
	out := buf.String()
	if !strings.Contains(out, `✓ Added "x"`) || !strings.Contains(out, "listdock undo") {
		t.Fatalf("unexpected success line:\n%s", out)
	}
	if !strings.Contains(out, "✗ Nothing to undo") {
		t.Fatalf("unexpected error line:\n%s", out)
	}
	var nilNotifier *ConsoleNotifier
	nilNotifier.Notify(app.Notification{Message: "ignored"})
}
