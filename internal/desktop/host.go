// Package desktop binds the capture pipeline to the local machine: global
// shortcuts, screen grabs and overlay window commands.
package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eleven-am/snapsolve/internal/delivery"
	"golang.design/x/hotkey"
)

// Host owns the registered global shortcuts. Window commands are published
// as events for the overlay UI to apply.
type Host struct {
	pub    delivery.Publisher
	logger *slog.Logger

	mu     sync.Mutex
	keys   []*hotkey.Hotkey
	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewHost(pub delivery.Publisher, logger *slog.Logger) *Host {
	return &Host{
		pub:    pub,
		logger: logger.With("component", "desktop"),
		done:   make(chan struct{}),
	}
}

func (h *Host) RegisterHotkey(combo string, handler func()) error {
	mods, key, err := parseCombo(combo)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("host closed")
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w", combo, err)
	}
	h.keys = append(h.keys, hk)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.done:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				h.logger.Debug("hotkey pressed", "combo", combo)
				handler()
			}
		}
	}()

	h.logger.Debug("hotkey registered", "combo", combo)
	return nil
}

func (h *Host) MoveWindow(dx, dy int) {
	h.publish(delivery.Event{Type: delivery.EventWindowMove, DX: dx, DY: dy})
}

func (h *Host) ToggleVisibility() {
	h.publish(delivery.Event{Type: delivery.EventWindowToggle})
}

func (h *Host) publish(ev delivery.Event) {
	if err := h.pub.Publish(context.Background(), ev); err != nil {
		h.logger.Error("failed to publish window command", "type", ev.Type, "error", err)
	}
}

// Close unregisters every shortcut and waits for their listeners to stop.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	keys := h.keys
	h.keys = nil
	h.mu.Unlock()

	var firstErr error
	for _, hk := range keys {
		if err := hk.Unregister(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.wg.Wait()
	return firstErr
}
