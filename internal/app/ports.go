package app

import "context"

// StateStore persists the serialized store state as one blob per key.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// NotificationLevel classifies one user-facing notification.
type NotificationLevel string

// NotificationSuccess and related constants define notification levels.
const (
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
	NotificationError   NotificationLevel = "error"
)

// Notification is one transient message describing a state change or failure.
// Undo is set when the change can be rolled back.
type Notification struct {
	Level   NotificationLevel
	Message string
	Undo    func(context.Context) error
}

// Notifier receives notifications after the state transition that produced them completes.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(string) error
}
