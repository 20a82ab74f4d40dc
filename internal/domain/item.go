package domain

import (
	"regexp"
	"strings"
	"time"
)

// ItemType identifies which level of the hierarchy an item lives on.
type ItemType string

// ItemTypeFolder and related constants define the closed set of item kinds.
const (
	ItemTypeFolder  ItemType = "folder"
	ItemTypeTask    ItemType = "task"
	ItemTypeSubtask ItemType = "subtask"
)

// DefaultFolderIcon is the icon a folder shows until one is chosen.
const DefaultFolderIcon = "Folder"

// FolderColors lists the folder accent palette; the first entry is the default.
var FolderColors = []string{
	"#a855f7",
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#ec4899",
	"#06b6d4",
	"#84cc16",
}

// FolderIcons lists the icon names a folder can carry.
var FolderIcons = []string{
	"Folder", "Hash", "Star", "Layout", "List", "Activity", "Target", "Shield",
	"Zap", "Flame", "Heart", "Smile", "Palette", "Briefcase", "GraduationCap",
	"Home", "Coffee", "Plane", "Music", "Code", "Calendar", "Camera", "Gift", "Rocket",
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseItemType normalizes one raw type string.
func ParseItemType(raw string) (ItemType, error) {
	t := ItemType(strings.TrimSpace(strings.ToLower(raw)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Valid reports whether the type is one of the known kinds.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFolder, ItemTypeTask, ItemTypeSubtask:
		return true
	default:
		return false
	}
}

// AllowsParent reports whether an item of type t may sit under a parent of
// parentType. An empty parentType means the root context.
func (t ItemType) AllowsParent(parentType ItemType) bool {
	switch t {
	case ItemTypeFolder:
		return parentType == ""
	case ItemTypeTask:
		return parentType == "" || parentType == ItemTypeFolder
	case ItemTypeSubtask:
		return parentType == ItemTypeTask
	default:
		return false
	}
}

// Item is one folder, task, or subtask.
type Item struct {
	ID          string
	Type        ItemType
	Title       string
	IsCompleted bool
	ParentID    string
	OrderIndex  float64
	IsExpanded  bool
	CreatedAt   time.Time
	Color       string
	Icon        string
}

// ItemInput holds input values for item construction.
type ItemInput struct {
	ID          string
	Type        ItemType
	Title       string
	ParentID    string
	OrderIndex  float64
	IsCompleted bool
	IsExpanded  bool
}

// NewItem constructs a validated item.
func NewItem(in ItemInput, now time.Time) (Item, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.ParentID = strings.TrimSpace(in.ParentID)
	if in.ID == "" {
		return Item{}, ErrInvalidID
	}
	if in.Title == "" {
		return Item{}, ErrInvalidTitle
	}
	if !in.Type.Valid() {
		return Item{}, ErrInvalidType
	}
	if in.Type == ItemTypeFolder && in.ParentID != "" {
		return Item{}, ErrInvalidParent
	}
	if in.Type == ItemTypeSubtask && in.ParentID == "" {
		return Item{}, ErrInvalidParent
	}
	return Item{
		ID:          in.ID,
		Type:        in.Type,
		Title:       in.Title,
		IsCompleted: in.IsCompleted,
		ParentID:    in.ParentID,
		OrderIndex:  in.OrderIndex,
		IsExpanded:  in.IsExpanded,
		CreatedAt:   now.UTC(),
	}, nil
}

// IsRoot reports whether the item sits in the root context.
func (i Item) IsRoot() bool {
	return i.ParentID == ""
}

// Rename replaces the title, rejecting blank input.
func (i *Item) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	i.Title = title
	return nil
}

// SetAppearance updates folder color and icon. Empty values fall back to defaults.
func (i *Item) SetAppearance(color, icon string) error {
	if i.Type != ItemTypeFolder {
		return ErrInvalidType
	}
	color = strings.TrimSpace(strings.ToLower(color))
	icon = strings.TrimSpace(icon)
	if color == "" {
		color = FolderColors[0]
	}
	if !hexColorPattern.MatchString(color) {
		return ErrInvalidColor
	}
	if icon == "" {
		icon = DefaultFolderIcon
	}
	i.Color = color
	i.Icon = icon
	return nil
}

// DisplayColor returns the folder color or the palette default.
func (i Item) DisplayColor() string {
	if i.Color != "" {
		return i.Color
	}
	return FolderColors[0]
}

// DisplayIcon returns the folder icon or the default icon.
func (i Item) DisplayIcon() string {
	if i.Icon != "" {
		return i.Icon
	}
	return DefaultFolderIcon
}
