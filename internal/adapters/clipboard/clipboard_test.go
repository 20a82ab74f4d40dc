package clipboard

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
)

func TestMemoryRoundTrip(t *testing.T) {
	var m Memory
	if got, err := m.ReadAll(); err != nil || got != "" {
		t.Fatalf("ReadAll() = %q, %v", got, err)
	}
	if err := m.WriteAll("- a\n  - b"); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if got, _ := m.ReadAll(); got != "- a\n  - b" {
		t.Fatalf("ReadAll() = %q", got)
	}
}

func TestDetectMatchesBackendSupport(t *testing.T) {
	cb := Detect()
	_, isMemory := cb.(*Memory)
	if isMemory != clipboard.Unsupported {
		t.Fatalf("Detect() = %T with Unsupported=%t", cb, clipboard.Unsupported)
	}
}

func TestSystemReportsUnavailable(t *testing.T) {
	if !clipboard.Unsupported {
		t.Skip("system clipboard backend present")
	}
	if _, err := (System{}).ReadAll(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ReadAll() error = %v, want ErrUnavailable", err)
	}
	if err := (System{}).WriteAll("x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("WriteAll() error = %v, want ErrUnavailable", err)
	}
}
