// Package capture turns a hotkey press, a dropped buffer or a file reference
// into exactly one solution or error notification.
package capture

import (
	"context"
	"time"
)

type Source string

const (
	SourceHotkey Source = "hotkey"
	SourceDrop   Source = "drop"
	SourceFile   Source = "file"
)

// Request is one capture in flight. Path is the temp file written for it
// and is removed once the gateway call returns.
type Request struct {
	ID        string
	Source    Source
	Data      []byte
	Path      string
	CreatedAt time.Time
}

type Screen interface {
	Capture(ctx context.Context) ([]byte, error)
}

type Solver interface {
	Solve(ctx context.Context, path string) (string, error)
}

// Host is the desktop shell: global shortcuts and the overlay window.
type Host interface {
	RegisterHotkey(combo string, handler func()) error
	MoveWindow(dx, dy int)
	ToggleVisibility()
}

const (
	ComboCapture = "cmd+h"
	ComboToggle  = "cmd+b"
	ComboUp      = "cmd+up"
	ComboDown    = "cmd+down"
	ComboLeft    = "cmd+left"
	ComboRight   = "cmd+right"

	MoveStep = 50
)

const (
	msgCaptureFailed = "Failed to capture screen"
	msgReadFailed    = "Failed to read image"
	msgEmptyImage    = "No image data"
	msgSaveFailed    = "Failed to save screenshot"
	msgSolveFailed   = "Failed to process screenshot"
	msgTimedOut      = "Request timed out"
)
