package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/listdock/internal/domain"
)

// DoctorIssueLevel grades one consistency finding.
type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

// DoctorIssue is one consistency finding about a stored item.
type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	ItemID  string           `json:"item_id,omitempty"`
}

// DoctorReport lists every finding for one collection.
type DoctorReport struct {
	Items  int           `json:"items"`
	Issues []DoctorIssue `json:"issues"`
}

// HasErrors reports whether any finding is an error.
func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Diagnose checks items against the hierarchy rules. Items whose parent no
// longer exists are reported as orphans; folder deletion leaves these behind
// for the subtasks of the folder's tasks.
func Diagnose(items domain.Items) DoctorReport {
	report := DoctorReport{Items: len(items), Issues: []DoctorIssue{}}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			report.Issues = append(report.Issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "duplicate_id",
				Message: fmt.Sprintf("id %q is used by more than one item", it.ID),
				ItemID:  it.ID,
			})
		}
		seen[it.ID] = struct{}{}

		if !it.Type.Valid() {
			report.Issues = append(report.Issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "invalid_type",
				Message: fmt.Sprintf("%q has unknown type %q", it.Title, it.Type),
				ItemID:  it.ID,
			})
			continue
		}
		if strings.TrimSpace(it.Title) == "" {
			report.Issues = append(report.Issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "blank_title",
				Message: "item has a blank title",
				ItemID:  it.ID,
			})
		}

		var parentType domain.ItemType
		if it.ParentID != "" {
			parent, ok := items.Find(it.ParentID)
			if !ok {
				report.Issues = append(report.Issues, DoctorIssue{
					Level:   DoctorIssueLevelWarn,
					Code:    "orphan",
					Message: fmt.Sprintf("%s %q points at missing parent %q", it.Type, it.Title, it.ParentID),
					ItemID:  it.ID,
				})
				continue
			}
			parentType = parent.Type
		}
		if !it.Type.AllowsParent(parentType) {
			report.Issues = append(report.Issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "invalid_parent",
				Message: fmt.Sprintf("%s %q cannot sit under %s", it.Type, it.Title, describeParentType(parentType)),
				ItemID:  it.ID,
			})
		}
	}
	return report
}

// describeParentType names a parent type for doctor messages.
func describeParentType(t domain.ItemType) string {
	if t == "" {
		return "the root list"
	}
	return "a " + string(t)
}

// orphanIDs returns every item that is unreachable because some ancestor is
// missing.
func orphanIDs(items domain.Items) []string {
	present := make(map[string]struct{}, len(items))
	for _, it := range items {
		present[it.ID] = struct{}{}
	}
	out := make([]string, 0)
	for {
		changed := false
		for _, it := range items {
			if _, ok := present[it.ID]; !ok || it.ParentID == "" {
				continue
			}
			if _, ok := present[it.ParentID]; !ok {
				delete(present, it.ID)
				out = append(out, it.ID)
				changed = true
			}
		}
		if !changed {
			return out
		}
	}
}

// Diagnose runs the consistency checks on the live collection.
func (s *Service) Diagnose() DoctorReport {
	s.lock()
	defer s.unlock()
	return Diagnose(s.items)
}

// PruneOrphans deletes unreachable items in one undo step.
func (s *Service) PruneOrphans(ctx context.Context) (int, error) {
	s.lock()
	defer s.unlock()

	ids := orphanIDs(s.items)
	if len(ids) == 0 {
		return 0, nil
	}
	next, removed := removeItems(s.items, ids)
	return len(removed), s.commitLocked(ctx, next, fmt.Sprintf("Removed %d orphaned item(s)", len(removed)), true)
}
