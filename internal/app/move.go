package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/listdock/internal/domain"
)

// maxTitlesInMessage bounds how many titles a batch message spells out.
const maxTitlesInMessage = 3

// Destination names where moved items land and which type they take on.
// ParentID is empty for the root context. BeforeID or AfterID pin the
// position next to one destination sibling; with neither set the items are
// appended after the last sibling.
type Destination struct {
	Type     domain.ItemType
	ParentID string
	BeforeID string
	AfterID  string
}

// ToFolder returns a destination that files tasks under folderID.
func ToFolder(folderID string) Destination {
	return Destination{Type: domain.ItemTypeTask, ParentID: folderID}
}

// ToRoot returns a destination that files tasks in the default list.
func ToRoot() Destination {
	return Destination{Type: domain.ItemTypeTask}
}

// UnderTask returns a destination that turns items into subtasks of taskID.
func UnderTask(taskID string) Destination {
	return Destination{Type: domain.ItemTypeSubtask, ParentID: taskID}
}

// FolderOrder returns a destination that only reorders root folders.
func FolderOrder() Destination {
	return Destination{Type: domain.ItemTypeFolder}
}

// moveResult is the outcome of one pure move computation.
type moveResult struct {
	items   domain.Items
	message string
	moved   []string
	changed bool
}

// planMove computes the collection after moving ids to dest. Unknown ids are
// skipped; when nothing known remains, or the destination parent does not
// exist, the result reports changed == false. Structurally impossible moves
// return domain.ErrInvalidMove.
func planMove(items domain.Items, ids []string, dest Destination, now time.Time, jitter func() float64) (moveResult, error) {
	if !dest.Type.Valid() {
		return moveResult{}, fmt.Errorf("%w: unknown destination type %q", domain.ErrInvalidMove, dest.Type)
	}

	moving := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := items.Find(id)
		if !ok || slices.ContainsFunc(moving, func(m domain.Item) bool { return m.ID == id }) {
			continue
		}
		moving = append(moving, it)
	}
	if len(moving) == 0 {
		return moveResult{items: items}, nil
	}
	movingIDs := make([]string, 0, len(moving))
	for _, it := range moving {
		movingIDs = append(movingIDs, it.ID)
	}

	parentID := strings.TrimSpace(dest.ParentID)
	var parent domain.Item
	if parentID != "" {
		p, ok := items.Find(parentID)
		if !ok {
			return moveResult{items: items}, nil
		}
		if dest.Type == domain.ItemTypeSubtask && p.Type == domain.ItemTypeSubtask {
			// A subtask target stands in for its own parent task.
			if p, ok = items.Find(p.ParentID); !ok {
				return moveResult{items: items}, nil
			}
		}
		parent = p
		parentID = p.ID
	}
	if !dest.Type.AllowsParent(parent.Type) {
		return moveResult{}, fmt.Errorf("%w: a %s cannot be placed under %s", domain.ErrInvalidMove, dest.Type, describeParent(parent))
	}
	if slices.Contains(movingIDs, parentID) {
		return moveResult{}, fmt.Errorf("%w: an item cannot be moved under itself", domain.ErrInvalidMove)
	}
	for _, it := range moving {
		if (it.Type == domain.ItemTypeFolder) != (dest.Type == domain.ItemTypeFolder) {
			return moveResult{}, fmt.Errorf("%w: %q cannot become a %s", domain.ErrInvalidMove, it.Title, dest.Type)
		}
	}

	siblings := make(domain.Items, 0)
	for _, it := range items.ChildrenOfType(parentID, dest.Type) {
		if !slices.Contains(movingIDs, it.ID) {
			siblings = append(siblings, it)
		}
	}
	prev, next, err := neighbors(siblings, dest)
	if err != nil {
		return moveResult{}, err
	}
	var rebalanced map[string]float64
	if !domain.HasRoomBetween(prev, next, len(moving)) {
		// Tied or crowded neighbors: respace the siblings, then place again.
		rebalanced = make(map[string]float64, len(siblings))
		for i, key := range domain.RebalanceOrder(siblings[0].OrderIndex, len(siblings)) {
			siblings[i].OrderIndex = key
			rebalanced[siblings[i].ID] = key
		}
		if prev, next, err = neighbors(siblings, dest); err != nil {
			return moveResult{}, err
		}
	}
	keys := domain.SpreadBetween(prev, next, len(moving), now, jitter)

	out := items.Clone()
	for id, key := range rebalanced {
		out[out.IndexOf(id)].OrderIndex = key
	}
	for i, it := range moving {
		idx := out.IndexOf(it.ID)
		out[idx].Type = dest.Type
		out[idx].ParentID = parentID
		out[idx].OrderIndex = keys[i]
		if dest.Type == domain.ItemTypeSubtask && it.Type == domain.ItemTypeTask {
			// Grandchildren are not allowed, so the task's own subtasks
			// follow it onto the new parent.
			for j := range out {
				if out[j].ParentID == it.ID && out[j].Type == domain.ItemTypeSubtask {
					out[j].ParentID = parentID
				}
			}
		}
	}
	if dest.Type == domain.ItemTypeSubtask {
		out[out.IndexOf(parentID)].IsExpanded = true
	}

	return moveResult{
		items:   out,
		message: describeMove(items, moving, dest.Type, parent),
		moved:   movingIDs,
		changed: true,
	}, nil
}

// neighbors resolves the order keys bracketing the insertion point.
func neighbors(siblings domain.Items, dest Destination) (*float64, *float64, error) {
	switch {
	case dest.BeforeID != "":
		idx := siblings.IndexOf(dest.BeforeID)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: %q is not a sibling at the destination", domain.ErrInvalidMove, dest.BeforeID)
		}
		next := domain.Float64Ptr(siblings[idx].OrderIndex)
		if idx == 0 {
			return nil, next, nil
		}
		return domain.Float64Ptr(siblings[idx-1].OrderIndex), next, nil
	case dest.AfterID != "":
		idx := siblings.IndexOf(dest.AfterID)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: %q is not a sibling at the destination", domain.ErrInvalidMove, dest.AfterID)
		}
		prev := domain.Float64Ptr(siblings[idx].OrderIndex)
		if idx == len(siblings)-1 {
			return prev, nil, nil
		}
		return prev, domain.Float64Ptr(siblings[idx+1].OrderIndex), nil
	case len(siblings) > 0:
		return domain.Float64Ptr(siblings[len(siblings)-1].OrderIndex), nil, nil
	default:
		return nil, nil, nil
	}
}

// describeMove builds the one-line summary shown after a move.
func describeMove(before domain.Items, moving []domain.Item, destType domain.ItemType, parent domain.Item) string {
	titles := quoteTitles(moving)
	sameSpot := true
	sourceFolder := ""
	for i, it := range moving {
		if it.ParentID != parent.ID || it.Type != destType {
			sameSpot = false
		}
		folder := ""
		if p, ok := before.Find(it.ParentID); ok && p.Type == domain.ItemTypeFolder {
			folder = p.Title
		}
		if i == 0 {
			sourceFolder = folder
		} else if folder != sourceFolder {
			sourceFolder = ""
		}
	}

	switch {
	case sameSpot:
		return "Reordered " + titles
	case destType == domain.ItemTypeSubtask:
		return fmt.Sprintf("Moved %s as subtask of %q", titles, parent.Title)
	case parent.Type == domain.ItemTypeFolder:
		return fmt.Sprintf("Moved %s to folder %q", titles, parent.Title)
	case sourceFolder != "":
		return fmt.Sprintf("Moved %s out of %q", titles, sourceFolder)
	default:
		return fmt.Sprintf("Moved %s to Default List", titles)
	}
}

// quoteTitles renders up to maxTitlesInMessage quoted titles plus a remainder count.
func quoteTitles(items []domain.Item) string {
	parts := make([]string, 0, maxTitlesInMessage)
	for i, it := range items {
		if i == maxTitlesInMessage {
			break
		}
		parts = append(parts, fmt.Sprintf("%q", it.Title))
	}
	out := strings.Join(parts, ", ")
	if extra := len(items) - maxTitlesInMessage; extra > 0 {
		out += fmt.Sprintf(" +%d more", extra)
	}
	return out
}

// describeParent names a parent for error messages.
func describeParent(parent domain.Item) string {
	if parent.ID == "" {
		return "the root list"
	}
	return fmt.Sprintf("%s %q", parent.Type, parent.Title)
}

// planConvertToFolder promotes a task to a root folder. Its subtasks become
// tasks of the new folder without changing their parent id.
func planConvertToFolder(items domain.Items, id string) (moveResult, error) {
	it, ok := items.Find(id)
	if !ok {
		return moveResult{items: items}, nil
	}
	if it.Type != domain.ItemTypeTask {
		return moveResult{}, fmt.Errorf("%w: only tasks can become folders", domain.ErrInvalidMove)
	}

	var last *float64
	if folders := items.ChildrenOfType("", domain.ItemTypeFolder); len(folders) > 0 {
		last = domain.Float64Ptr(folders[len(folders)-1].OrderIndex)
	}
	order := it.OrderIndex
	if last != nil {
		order = domain.OrderBetween(last, nil, time.Time{})
	}

	out := items.Clone()
	for i := range out {
		switch {
		case out[i].ID == id:
			out[i].Type = domain.ItemTypeFolder
			out[i].ParentID = ""
			out[i].IsExpanded = true
			out[i].OrderIndex = order
		case out[i].ParentID == id && out[i].Type == domain.ItemTypeSubtask:
			out[i].Type = domain.ItemTypeTask
		}
	}
	return moveResult{
		items:   out,
		message: fmt.Sprintf("Converted %q to a folder", it.Title),
		moved:   []string{id},
		changed: true,
	}, nil
}
