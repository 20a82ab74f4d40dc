package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/listdock/internal/domain"
)

// RootTitle is the heading of the default list.
const RootTitle = "List Dock"

// TaskNode is one visible task with its visible subtasks.
type TaskNode struct {
	Item           domain.Item   `json:"item"`
	Subtasks       []domain.Item `json:"subtasks"`
	HiddenSubtasks int           `json:"hidden_subtasks"`
}

// FolderSummary is one folder row with its task counts.
type FolderSummary struct {
	Item      domain.Item `json:"item"`
	Tasks     int         `json:"tasks"`
	Completed int         `json:"completed"`
}

// Listing is the content of one view after display preferences are applied.
type Listing struct {
	View            View            `json:"view"`
	Title           string          `json:"title"`
	Folders         []FolderSummary `json:"folders"`
	Tasks           []TaskNode      `json:"tasks"`
	HiddenCompleted int             `json:"hidden_completed"`
}

// CurrentView returns the view being browsed.
func (s *Service) CurrentView() View {
	s.lock()
	defer s.unlock()
	return s.view
}

// SetView navigates to view and clears the selection.
func (s *Service) SetView(ctx context.Context, view View) error {
	s.lock()
	defer s.unlock()

	switch view.Kind {
	case ViewRoot:
		view = RootView()
	case ViewFolder:
		folder, ok := s.items.Find(view.FolderID)
		if !ok || folder.Type != domain.ItemTypeFolder {
			return fmt.Errorf("folder %q: %w", view.FolderID, ErrNotFound)
		}
	default:
		return fmt.Errorf("unknown view kind %q", view.Kind)
	}
	s.view = view
	s.selection.Clear()
	if !s.settings.PersistLastFolder {
		return nil
	}
	return s.persistLocked(ctx)
}

// Listing returns what view shows under the current display preferences.
func (s *Service) Listing(view View) (Listing, error) {
	s.lock()
	defer s.unlock()
	return s.listingLocked(view)
}

// CurrentListing returns the listing of the current view.
func (s *Service) CurrentListing() (Listing, error) {
	s.lock()
	defer s.unlock()
	return s.listingLocked(s.view)
}

// listingLocked builds one listing.
func (s *Service) listingLocked(view View) (Listing, error) {
	out := Listing{View: view, Folders: []FolderSummary{}, Tasks: []TaskNode{}}
	parentID := ""
	switch view.Kind {
	case ViewRoot:
		out.Title = RootTitle
		for _, folder := range s.items.ChildrenOfType("", domain.ItemTypeFolder) {
			summary := FolderSummary{Item: folder}
			for _, task := range s.items.ChildrenOfType(folder.ID, domain.ItemTypeTask) {
				summary.Tasks++
				if task.IsCompleted {
					summary.Completed++
				}
			}
			out.Folders = append(out.Folders, summary)
		}
	case ViewFolder:
		folder, ok := s.items.Find(view.FolderID)
		if !ok || folder.Type != domain.ItemTypeFolder {
			return Listing{}, fmt.Errorf("folder %q: %w", view.FolderID, ErrNotFound)
		}
		out.Title = folder.Title
		parentID = folder.ID
	default:
		return Listing{}, fmt.Errorf("unknown view kind %q", view.Kind)
	}

	for _, task := range s.items.ChildrenOfType(parentID, domain.ItemTypeTask) {
		if task.IsCompleted && !s.settings.ShowCompleted {
			out.HiddenCompleted++
			continue
		}
		node := TaskNode{Item: task, Subtasks: []domain.Item{}}
		for _, sub := range s.items.ChildrenOfType(task.ID, domain.ItemTypeSubtask) {
			if sub.IsCompleted && s.settings.HideCompletedSubtasks {
				node.HiddenSubtasks++
				continue
			}
			node.Subtasks = append(node.Subtasks, sub)
		}
		out.Tasks = append(out.Tasks, node)
	}
	return out, nil
}

// Search matches titles case-insensitively across every item and remembers the query.
func (s *Service) Search(query string) domain.Items {
	s.lock()
	defer s.unlock()
	s.query = strings.TrimSpace(query)
	return s.items.Search(s.query)
}

// Query returns the active search query.
func (s *Service) Query() string {
	s.lock()
	defer s.unlock()
	return s.query
}

// Locate jumps to the view that shows id, expanding a subtask's parent task,
// and clears the search query.
func (s *Service) Locate(ctx context.Context, id string) (View, error) {
	s.lock()
	defer s.unlock()

	it, ok := s.items.Find(id)
	if !ok {
		return View{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}

	next := s.items
	view := RootView()
	switch it.Type {
	case domain.ItemTypeFolder:
		view = FolderViewOf(it.ID)
	case domain.ItemTypeTask:
		view = s.viewForParentLocked(it.ParentID)
	case domain.ItemTypeSubtask:
		if parent, found := s.items.Find(it.ParentID); found {
			view = s.viewForParentLocked(parent.ParentID)
			next, _ = patchItem(s.items, parent.ID, func(p *domain.Item) { p.IsExpanded = true })
		}
	}

	s.query = ""
	s.selection.Clear()
	s.view = view
	return view, s.commitLocked(ctx, next, "", false)
}

// viewForParentLocked maps a task's parent id to the view listing it.
func (s *Service) viewForParentLocked(parentID string) View {
	if folder, ok := s.items.Find(parentID); ok && folder.Type == domain.ItemTypeFolder {
		return FolderViewOf(folder.ID)
	}
	return RootView()
}
