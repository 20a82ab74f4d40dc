package app

import (
	"reflect"
	"testing"

	"github.com/hylla/listdock/internal/domain"
)

func TestSelectionClickAndToggle(t *testing.T) {
	s := NewSelection()
	s.Click("a")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("after click = %v", got)
	}
	s.Click("b")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("after second click = %v", got)
	}
	s.Click("b")
	if s.Len() != 0 {
		t.Fatalf("expected clicking the sole selection to clear it, got %v", s.IDs())
	}

	s.Toggle("a")
	s.Toggle("c")
	s.Toggle("a")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("after toggles = %v", got)
	}
	if id, ok := s.Sole(); !ok || id != "c" {
		t.Fatalf("Sole() = %q, %t", id, ok)
	}
}

func TestSelectionToggleRange(t *testing.T) {
	s := NewSelection("b")
	s.ToggleRange([]string{"a", "b", "c"})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("partial range should add all, got %v", got)
	}
	s.ToggleRange([]string{"a", "b", "c"})
	if s.Len() != 0 {
		t.Fatalf("full range should remove all, got %v", s.IDs())
	}
}

func TestSelectionSetDedupes(t *testing.T) {
	s := NewSelection("a", "", "a", "b")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("IDs() = %v", got)
	}
	s.Remove("a", "zz")
	if !s.Contains("b") || s.Contains("a") {
		t.Fatalf("after remove = %v", s.IDs())
	}
	ids := s.IDs()
	ids[0] = "mutated"
	if s.Contains("mutated") {
		t.Fatal("IDs() must return a copy")
	}
	s.Clear()
	if _, ok := s.Sole(); ok {
		t.Fatal("expected no sole selection after clear")
	}
}

func TestServiceSetSelectionSkipsUnknownIDs(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	a := mustAddTask(t, svc, "A")
	svc.SetSelection([]string{"ghost", a.ID})
	if got := svc.SelectedIDs(); !reflect.DeepEqual(got, []string{a.ID}) {
		t.Fatalf("selection = %v", got)
	}
	svc.SelectRange([]string{a.ID})
	if len(svc.SelectedIDs()) != 0 {
		t.Fatalf("expected range toggle to clear, got %v", svc.SelectedIDs())
	}
	svc.ToggleSelected(a.ID)
	if len(svc.SelectedIDs()) != 1 {
		t.Fatalf("expected toggle to select, got %v", svc.SelectedIDs())
	}
}

func TestUndoStackBoundsAndIsolation(t *testing.T) {
	u := NewUndoStack(0)
	if u.Depth() != DefaultUndoDepth {
		t.Fatalf("Depth() = %d, want %d", u.Depth(), DefaultUndoDepth)
	}

	live := domain.Items{{ID: "a", Title: "before"}}
	u.Push(live)
	live[0].Title = "after"
	got, ok := u.Pop()
	if !ok || got[0].Title != "before" {
		t.Fatalf("Pop() = %#v, %t; snapshot must not alias live state", got, ok)
	}
	if _, ok := u.Pop(); ok {
		t.Fatal("expected empty stack")
	}

	small := NewUndoStack(2)
	for _, id := range []string{"1", "2", "3"} {
		small.Push(domain.Items{{ID: id}})
	}
	snaps := small.Snapshots()
	if len(snaps) != 2 || snaps[0][0].ID != "2" || snaps[1][0].ID != "3" {
		t.Fatalf("Snapshots() = %#v", snaps)
	}

	small.Restore([]domain.Items{{{ID: "x"}}, {{ID: "y"}}, {{ID: "z"}}})
	if top, _ := small.Pop(); top[0].ID != "z" || small.Len() != 1 {
		t.Fatalf("Restore() kept wrong entries, top = %#v len = %d", top, small.Len())
	}
	small.Clear()
	if small.Len() != 0 {
		t.Fatal("expected cleared stack")
	}
}

func TestDiagnoseReportsHierarchyProblems(t *testing.T) {
	items := domain.Items{
		{ID: "f", Type: domain.ItemTypeFolder, Title: "F"},
		{ID: "f", Type: domain.ItemTypeFolder, Title: "F again"},
		{ID: "x", Type: "board", Title: "bad"},
		{ID: "t", Type: domain.ItemTypeTask, Title: " "},
		{ID: "s", Type: domain.ItemTypeSubtask, Title: "under folder", ParentID: "f"},
		{ID: "o", Type: domain.ItemTypeSubtask, Title: "orphan", ParentID: "gone"},
		{ID: "oo", Type: domain.ItemTypeSubtask, Title: "orphan child", ParentID: "o"},
	}
	report := Diagnose(items)
	if report.Items != len(items) || !report.HasErrors() {
		t.Fatalf("unexpected report %#v", report)
	}
	codes := map[string]int{}
	for _, issue := range report.Issues {
		codes[issue.Code]++
	}
	want := map[string]int{"duplicate_id": 1, "invalid_type": 1, "blank_title": 1, "invalid_parent": 2, "orphan": 1}
	if !reflect.DeepEqual(codes, want) {
		t.Fatalf("issue codes = %v, want %v", codes, want)
	}

	if got := orphanIDs(items); !reflect.DeepEqual(got, []string{"o", "oo"}) {
		t.Fatalf("orphanIDs() = %v", got)
	}
	if Diagnose(domain.Items{}).HasErrors() {
		t.Fatal("expected empty collection to be clean")
	}
}
