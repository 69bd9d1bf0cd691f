package capture

import (
	"context"
	"fmt"
)

// Bind registers the default shortcuts on host. Captures triggered from a
// hotkey run on their own goroutine.
func (t *Trigger) Bind(ctx context.Context, host Host) error {
	bindings := []struct {
		combo   string
		handler func()
	}{
		{ComboCapture, func() { t.Go(func() { t.CaptureAndSubmit(ctx) }) }},
		{ComboToggle, host.ToggleVisibility},
		{ComboUp, func() { host.MoveWindow(0, -MoveStep) }},
		{ComboDown, func() { host.MoveWindow(0, MoveStep) }},
		{ComboLeft, func() { host.MoveWindow(-MoveStep, 0) }},
		{ComboRight, func() { host.MoveWindow(MoveStep, 0) }},
	}

	for _, b := range bindings {
		if err := host.RegisterHotkey(b.combo, b.handler); err != nil {
			return fmt.Errorf("register %s: %w", b.combo, err)
		}
	}

	t.logger.Info("hotkeys registered", "count", len(bindings))
	return nil
}
