package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/listdock/internal/domain"
)

// ExportFilePrefix prefixes dated export file names.
const ExportFilePrefix = "listdock-export"

// ItemRecord is the JSON form of one item used by export files and the stored state.
type ItemRecord struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	IsCompleted bool    `json:"is_completed"`
	ParentID    *string `json:"parent_id"`
	OrderIndex  float64 `json:"order_index"`
	IsExpanded  bool    `json:"is_expanded"`
	CreatedAt   int64   `json:"created_at"`
	Color       string  `json:"color,omitempty"`
	Icon        string  `json:"icon,omitempty"`
}

// importRecord mirrors ItemRecord with optional fields so missing keys can be told apart from zero values.
type importRecord struct {
	ID          *string  `json:"id"`
	Type        *string  `json:"type"`
	Title       *string  `json:"title"`
	IsCompleted bool     `json:"is_completed"`
	ParentID    *string  `json:"parent_id"`
	OrderIndex  *float64 `json:"order_index"`
	IsExpanded  bool     `json:"is_expanded"`
	CreatedAt   *int64   `json:"created_at"`
	Color       string   `json:"color"`
	Icon        string   `json:"icon"`
}

// recordFromDomain converts one item to its JSON form.
func recordFromDomain(it domain.Item) ItemRecord {
	rec := ItemRecord{
		ID:          it.ID,
		Type:        string(it.Type),
		Title:       it.Title,
		IsCompleted: it.IsCompleted,
		OrderIndex:  it.OrderIndex,
		IsExpanded:  it.IsExpanded,
		CreatedAt:   it.CreatedAt.UnixMilli(),
		Color:       it.Color,
		Icon:        it.Icon,
	}
	if it.ParentID != "" {
		parent := it.ParentID
		rec.ParentID = &parent
	}
	return rec
}

// toDomain converts one record back to an item.
func (r ItemRecord) toDomain() domain.Item {
	it := domain.Item{
		ID:          r.ID,
		Type:        domain.ItemType(r.Type),
		Title:       r.Title,
		IsCompleted: r.IsCompleted,
		OrderIndex:  r.OrderIndex,
		IsExpanded:  r.IsExpanded,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		Color:       r.Color,
		Icon:        r.Icon,
	}
	if r.ParentID != nil {
		it.ParentID = *r.ParentID
	}
	return it
}

// recordsFromDomain converts a collection.
func recordsFromDomain(items domain.Items) []ItemRecord {
	out := make([]ItemRecord, 0, len(items))
	for _, it := range items {
		out = append(out, recordFromDomain(it))
	}
	return out
}

// recordsToDomain converts a collection.
func recordsToDomain(records []ItemRecord) domain.Items {
	out := make(domain.Items, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out
}

// ExportFileName returns the dated default export file name.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("%s-%s.json", ExportFilePrefix, now.Format(time.DateOnly))
}

// EncodeExport renders items as a pretty-printed JSON array.
func EncodeExport(items domain.Items, excludeCompleted bool) ([]byte, error) {
	records := make([]ItemRecord, 0, len(items))
	for _, it := range items {
		if excludeCompleted && it.IsCompleted {
			continue
		}
		records = append(records, recordFromDomain(it))
	}
	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export json: %w", err)
	}
	return append(encoded, '\n'), nil
}

// DecodeImport parses and validates an exported item array. Every element
// needs a non-empty id, a known type, and a title key.
func DecodeImport(data []byte) (domain.Items, error) {
	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of items: %v", ErrInvalidImport, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of items", ErrInvalidImport)
	}

	out := make(domain.Items, 0, len(records))
	for i, rec := range records {
		if rec.ID == nil || strings.TrimSpace(*rec.ID) == "" {
			return nil, fmt.Errorf("%w: items[%d].id is required", ErrInvalidImport, i)
		}
		if rec.Type == nil || strings.TrimSpace(*rec.Type) == "" {
			return nil, fmt.Errorf("%w: items[%d].type is required", ErrInvalidImport, i)
		}
		itemType, err := domain.ParseItemType(*rec.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: items[%d].type %q: %w", ErrInvalidImport, i, *rec.Type, err)
		}
		if rec.Title == nil {
			return nil, fmt.Errorf("%w: items[%d].title is required", ErrInvalidImport, i)
		}

		it := domain.Item{
			ID:          strings.TrimSpace(*rec.ID),
			Type:        itemType,
			Title:       *rec.Title,
			IsCompleted: rec.IsCompleted,
			IsExpanded:  rec.IsExpanded,
			Color:       rec.Color,
			Icon:        rec.Icon,
		}
		if rec.ParentID != nil {
			it.ParentID = strings.TrimSpace(*rec.ParentID)
		}
		if rec.OrderIndex != nil {
			it.OrderIndex = *rec.OrderIndex
		}
		if rec.CreatedAt != nil {
			it.CreatedAt = time.UnixMilli(*rec.CreatedAt).UTC()
		}
		out = append(out, it)
	}
	return out, nil
}
