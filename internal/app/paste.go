package app

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/hylla/listdock/internal/domain"
)

// bulletIndentBoost is the synthetic indent a list marker adds, so a flat
// bullet list still nests under a preceding plain heading line.
const bulletIndentBoost = 2

var (
	listMarkerPattern = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s+`)
	checkboxPattern   = regexp.MustCompile(`^\[([ xX])\]\s*`)
	headingPattern    = regexp.MustCompile(`^#+\s*`)
)

// PasteBase is the context pasted top-level lines attach to.
type PasteBase struct {
	Type     domain.ItemType
	ParentID string
}

// outlineLine is one parsed, non-empty input line.
type outlineLine struct {
	indent    int
	title     string
	completed bool
}

// parseOutlineLine extracts indent, completion, and title from one raw line.
// ok is false when nothing remains once markers are stripped.
func parseOutlineLine(raw string) (outlineLine, bool) {
	body := strings.TrimLeftFunc(raw, unicode.IsSpace)
	indent := len([]rune(raw)) - len([]rune(body))

	if loc := listMarkerPattern.FindStringIndex(body); loc != nil {
		indent += bulletIndentBoost
		body = body[loc[1]:]
	} else if body == "-" || body == "*" || body == "+" {
		return outlineLine{}, false
	}

	completed := false
	if m := checkboxPattern.FindStringSubmatch(body); m != nil {
		completed = m[1] == "x" || m[1] == "X"
		body = body[len(m[0]):]
	}
	body = headingPattern.ReplaceAllString(body, "")

	title := strings.TrimSpace(body)
	if title == "" {
		return outlineLine{}, false
	}
	return outlineLine{indent: indent, title: title, completed: completed}, true
}

// ParseOutline turns pasted text into new items with at most one level of
// nesting below the base context. Each line at the top of its indentation
// run takes the base type and parent; every deeper line becomes a subtask
// of the outermost open line. When the base itself is a subtask context all
// lines attach to the base task directly.
func ParseOutline(text string, base PasteBase, now time.Time, newID IDGenerator) []domain.Item {
	type frame struct {
		indent int
		id     string
	}

	lines := make([]outlineLine, 0)
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if line, ok := parseOutlineLine(raw); ok {
			lines = append(lines, line)
		}
	}

	start := domain.TimestampOrder(now)
	out := make([]domain.Item, 0, len(lines))
	stack := make([]frame, 0)
	for i, line := range lines {
		for len(stack) > 0 && stack[len(stack)-1].indent >= line.indent {
			stack = stack[:len(stack)-1]
		}

		itemType, parentID := base.Type, base.ParentID
		if len(stack) > 0 && base.Type != domain.ItemTypeSubtask {
			itemType, parentID = domain.ItemTypeSubtask, stack[0].id
		}

		id := newID()
		out = append(out, domain.Item{
			ID:          id,
			Type:        itemType,
			Title:       line.title,
			IsCompleted: line.completed,
			ParentID:    parentID,
			OrderIndex:  start + float64(i),
			IsExpanded:  true,
			CreatedAt:   now.UTC(),
		})
		stack = append(stack, frame{indent: line.indent, id: id})
	}
	return out
}
