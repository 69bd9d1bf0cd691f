// Package delivery carries pipeline notifications from the capture side to
// every connected overlay UI.
package delivery

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventScreenshotTaken  EventType = "screenshot-taken"
	EventSolutionReceived EventType = "solution-received"
	EventSolutionError    EventType = "solution-error"
	EventAnswerReceived   EventType = "answer-received"
	EventAnswerError      EventType = "answer-error"
	EventWindowMove       EventType = "window-move"
	EventWindowToggle     EventType = "window-toggle"
	EventFileContent      EventType = "file-content"
)

// Terminal reports whether t ends a request.
func (t EventType) Terminal() bool {
	switch t {
	case EventSolutionReceived, EventSolutionError, EventAnswerReceived, EventAnswerError:
		return true
	}
	return false
}

func (t EventType) lifecycle() bool {
	return t == EventScreenshotTaken || t.Terminal()
}

type Event struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	Path      string    `json:"path,omitempty"`
	Text      string    `json:"text,omitempty"`
	Error     string    `json:"error,omitempty"`
	DX        int       `json:"dx,omitempty"`
	DY        int       `json:"dy,omitempty"`
	Data      string    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Fanout publishes to every member and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stamp(ev Event) Event {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return ev
}
