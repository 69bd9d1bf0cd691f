package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultSubscriberBuffer = 64
	// reservedSlots is extra capacity per subscriber that only request
	// lifecycle events may use.
	reservedSlots       = 16
	defaultTerminalWait = 5 * time.Second
)

var ErrHubClosed = errors.New("hub closed")

// Hub fans events out to in-process subscribers. A slow subscriber loses
// window and file events rather than stalling the publisher. Request
// lifecycle events are never dropped: they use reserved capacity, and a
// subscriber that cannot take a terminal event within terminalWait is
// evicted so its client reconnects.
type Hub struct {
	mu           sync.RWMutex
	subs         map[uint64]chan Event
	nextID       uint64
	buffer       int
	terminalWait time.Duration
	closed       bool
	dropped      atomic.Uint64
	evicted      atomic.Uint64
	logger       *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		subs:         make(map[uint64]chan Event),
		buffer:       buffer,
		terminalWait: defaultTerminalWait,
		logger:       logger.With("component", "hub"),
	}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	ev = stamp(ev)

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}

	var stalled map[uint64]chan Event
	for id, ch := range h.subs {
		if h.send(id, ch, ev) {
			continue
		}
		if stalled == nil {
			stalled = make(map[uint64]chan Event)
		}
		stalled[id] = ch
	}
	h.mu.RUnlock()

	for id, ch := range stalled {
		h.evict(id, ch, ev)
	}
	return nil
}

// send reports false only when a lifecycle event could not be delivered.
func (h *Hub) send(id uint64, ch chan Event, ev Event) bool {
	if !ev.Type.lifecycle() {
		if len(ch) >= h.buffer {
			h.drop(id, ev)
			return true
		}
		select {
		case ch <- ev:
		default:
			h.drop(id, ev)
		}
		return true
	}

	select {
	case ch <- ev:
		return true
	default:
	}

	timer := time.NewTimer(h.terminalWait)
	defer timer.Stop()
	select {
	case ch <- ev:
		return true
	case <-timer.C:
		return false
	}
}

func (h *Hub) drop(id uint64, ev Event) {
	h.dropped.Add(1)
	h.logger.Warn("subscriber buffer full, dropping event",
		"subscriber", id,
		"type", ev.Type,
		"request_id", ev.RequestID)
}

func (h *Hub) evict(id uint64, ch chan Event, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.subs[id]; !ok || cur != ch {
		return
	}
	delete(h.subs, id)
	close(ch)
	h.evicted.Add(1)
	h.logger.Warn("subscriber stalled, evicting",
		"subscriber", id,
		"type", ev.Type,
		"request_id", ev.RequestID)
}

// Subscribe returns a channel of future events and a func that detaches it.
// The channel is closed on unsubscribe or when the hub closes.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer+reservedSlots)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Evicted counts subscribers removed for failing to take a lifecycle event.
func (h *Hub) Evicted() uint64 {
	return h.evicted.Load()
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}
