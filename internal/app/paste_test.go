package app

import (
	"testing"
	"time"

	"github.com/hylla/listdock/internal/domain"
)

var pasteNow = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

type wantLine struct {
	title     string
	itemType  domain.ItemType
	parentID  string
	completed bool
}

func assertOutline(t *testing.T, got []domain.Item, want []wantLine) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("items = %d, want %d: %#v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Title != w.title || g.Type != w.itemType || g.ParentID != w.parentID || g.IsCompleted != w.completed {
			t.Fatalf("item %d = {%q %s %q %t}, want %+v", i, g.Title, g.Type, g.ParentID, g.IsCompleted, w)
		}
	}
}

func TestParseOutlineFlattensDeepNesting(t *testing.T) {
	text := "Parent\n  - Child\n    - Grandchild\nSibling"
	got := ParseOutline(text, PasteBase{Type: domain.ItemTypeTask}, pasteNow, sequentialIDs())
	assertOutline(t, got, []wantLine{
		{"Parent", domain.ItemTypeTask, "", false},
		{"Child", domain.ItemTypeSubtask, "id-01", false},
		{"Grandchild", domain.ItemTypeSubtask, "id-01", false},
		{"Sibling", domain.ItemTypeTask, "", false},
	})
	for i := 1; i < len(got); i++ {
		if got[i].OrderIndex <= got[i-1].OrderIndex {
			t.Fatalf("order keys not ascending at %d", i)
		}
		if !got[i].IsExpanded {
			t.Fatalf("item %d not expanded", i)
		}
	}
}

func TestParseOutlineMarkers(t *testing.T) {
	text := "# Groceries\n- [x] Milk\n* [ ] Eggs\n1. Bread\n\n   \n-\n- [X] \n+ Jam"
	got := ParseOutline(text, PasteBase{Type: domain.ItemTypeTask, ParentID: "f1"}, pasteNow, sequentialIDs())
	assertOutline(t, got, []wantLine{
		{"Groceries", domain.ItemTypeTask, "f1", false},
		{"Milk", domain.ItemTypeSubtask, "id-01", true},
		{"Eggs", domain.ItemTypeSubtask, "id-01", false},
		{"Bread", domain.ItemTypeSubtask, "id-01", false},
		{"Jam", domain.ItemTypeSubtask, "id-01", false},
	})
}

func TestParseOutlineFlatBulletsStayTopLevel(t *testing.T) {
	got := ParseOutline("- one\n- two\r\n- three", PasteBase{Type: domain.ItemTypeTask}, pasteNow, sequentialIDs())
	assertOutline(t, got, []wantLine{
		{"one", domain.ItemTypeTask, "", false},
		{"two", domain.ItemTypeTask, "", false},
		{"three", domain.ItemTypeTask, "", false},
	})
}

func TestParseOutlineSubtaskBaseFlattensEverything(t *testing.T) {
	got := ParseOutline("a\n  - b\n    - c", PasteBase{Type: domain.ItemTypeSubtask, ParentID: "t1"}, pasteNow, sequentialIDs())
	assertOutline(t, got, []wantLine{
		{"a", domain.ItemTypeSubtask, "t1", false},
		{"b", domain.ItemTypeSubtask, "t1", false},
		{"c", domain.ItemTypeSubtask, "t1", false},
	})
}

func TestParseOutlineEmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n\n", "  -  \n*"} {
		if got := ParseOutline(text, PasteBase{Type: domain.ItemTypeTask}, pasteNow, sequentialIDs()); len(got) != 0 {
			t.Fatalf("ParseOutline(%q) = %#v, want none", text, got)
		}
	}
}

func TestServicePasteIntoSelectedTask(t *testing.T) {
	svc, _, notes := newTestService(t, ServiceConfig{})
	task := mustAddTask(t, svc, "Trip")
	if _, err := svc.SetExpanded(t.Context(), task.ID, false); err != nil {
		t.Fatalf("SetExpanded() error = %v", err)
	}
	svc.Select(task.ID)

	created, err := svc.Paste(t.Context(), "Passport\n  - Visa")
	if err != nil {
		t.Fatalf("Paste() error = %v", err)
	}
	for _, it := range created {
		if it.Type != domain.ItemTypeSubtask || it.ParentID != task.ID {
			t.Fatalf("expected subtask of %q, got %#v", task.ID, it)
		}
	}
	if !mustItem(t, svc, task.ID).IsExpanded {
		t.Fatal("expected parent expanded after paste")
	}
	if got := notes.last().Message; got != "Pasted 2 item(s)" {
		t.Fatalf("notification = %q", got)
	}

	depth := svc.UndoLen()
	created, err = svc.Paste(t.Context(), "  \n")
	if err != nil || created != nil || svc.UndoLen() != depth {
		t.Fatalf("expected blank paste ignored, got %#v, %v", created, err)
	}
}

func TestFormatCopy(t *testing.T) {
	items := domain.Items{
		{ID: "t1", Type: domain.ItemTypeTask, Title: "Groceries", OrderIndex: 1},
		{ID: "s1", Type: domain.ItemTypeSubtask, Title: "Milk", ParentID: "t1", OrderIndex: 1, IsCompleted: true},
		{ID: "s2", Type: domain.ItemTypeSubtask, Title: "Eggs", ParentID: "t1", OrderIndex: 2},
		{ID: "t2", Type: domain.ItemTypeTask, Title: "Laundry", OrderIndex: 2},
	}

	if got := FormatCopy(items, []string{"t2", "t1", "s1"}, false); got != "Groceries\nLaundry" {
		t.Fatalf("flat copy = %q", got)
	}
	want := "- Groceries\n  - [x] Milk\n  - Eggs\n- Laundry"
	if got := FormatCopy(items, []string{"t2", "t1"}, true); got != want {
		t.Fatalf("nested copy = %q, want %q", got, want)
	}
	if got := FormatCopy(items, []string{"missing"}, true); got != "" {
		t.Fatalf("copy of unknown ids = %q", got)
	}

	reparsed := ParseOutline(want, PasteBase{Type: domain.ItemTypeTask}, pasteNow, sequentialIDs())
	assertOutline(t, reparsed, []wantLine{
		{"Groceries", domain.ItemTypeTask, "", false},
		{"Milk", domain.ItemTypeSubtask, "id-01", true},
		{"Eggs", domain.ItemTypeSubtask, "id-01", false},
		{"Laundry", domain.ItemTypeTask, "", false},
	})
}
