// Package clipboard connects the list service to the system clipboard.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/hylla/listdock/internal/app"
)

// ErrUnavailable reports that no system clipboard tool could be found.
var ErrUnavailable = errors.New("system clipboard unavailable")

// System reads and writes the OS clipboard.
type System struct{}

var _ app.Clipboard = System{}

// ReadAll returns the clipboard text.
func (System) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	return clipboard.ReadAll()
}

// WriteAll replaces the clipboard text.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Memory is a process-local clipboard for headless runs and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

var _ app.Clipboard = (*Memory)(nil)

// ReadAll returns the last written text.
func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteAll stores text.
func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Detect returns the system clipboard when a backend exists, otherwise a Memory clipboard.
func Detect() app.Clipboard {
	if clipboard.Unsupported {
		return &Memory{}
	}
	return System{}
}
