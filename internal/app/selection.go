package app

import "slices"

// Selection tracks selected task and subtask ids in selection order.
type Selection struct {
	ids []string
}

// NewSelection constructs a selection holding ids.
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	s.Set(ids)
	return s
}

// Click applies a plain click: clicking the sole selected id clears the
// selection, anything else makes id the only selection.
func (s *Selection) Click(id string) {
	if len(s.ids) == 1 && s.ids[0] == id {
		s.ids = nil
		return
	}
	s.ids = []string{id}
}

// Toggle flips membership of id, as a modifier click does.
func (s *Selection) Toggle(id string) {
	if idx := slices.Index(s.ids, id); idx >= 0 {
		s.ids = slices.Delete(s.ids, idx, idx+1)
		return
	}
	s.ids = append(s.ids, id)
}

// ToggleRange removes the whole range when every id in it is already
// selected, otherwise adds every id in it.
func (s *Selection) ToggleRange(ids []string) {
	if len(ids) == 0 {
		return
	}
	allSelected := true
	for _, id := range ids {
		if !s.Contains(id) {
			allSelected = false
			break
		}
	}
	if allSelected {
		s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return slices.Contains(ids, id) })
		return
	}
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
}

// Set replaces the selection, dropping blanks and duplicates.
func (s *Selection) Set(ids []string) {
	s.ids = nil
	for _, id := range ids {
		if id == "" || s.Contains(id) {
			continue
		}
		s.ids = append(s.ids, id)
	}
}

// Remove drops id if present.
func (s *Selection) Remove(ids ...string) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return slices.Contains(ids, id) })
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the selection size.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Sole returns the only selected id when exactly one is selected.
func (s *Selection) Sole() (string, bool) {
	if len(s.ids) != 1 {
		return "", false
	}
	return s.ids[0], true
}

// IDs returns a copy of the selected ids.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}
