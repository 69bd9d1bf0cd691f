package delivery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eleven-am/snapsolve/internal/shared"
)

type Kind int

const (
	KindSolve Kind = iota
	KindAnswer
)

const (
	solveAbandoned  = "Failed to process screenshot"
	answerAbandoned = "Failed to get a response"
)

// Tracker publishes the lifecycle of one request. It emits at most one
// terminal event, never emits screenshot-taken after it, and Close turns an
// unresolved request into an error.
type Tracker struct {
	mu       sync.Mutex
	pub      Publisher
	id       string
	kind     Kind
	captured bool
	done     bool
	logger   *slog.Logger
}

func NewTracker(pub Publisher, kind Kind, id string, logger *slog.Logger) *Tracker {
	if id == "" {
		id = shared.NewID("req_")
	}
	return &Tracker{
		pub:    pub,
		id:     id,
		kind:   kind,
		logger: logger.With("request_id", id),
	}
}

func (t *Tracker) ID() string {
	return t.id
}

func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Captured announces the temp file holding the screenshot. It is ignored for
// answer requests, after a terminal event, or when already announced.
func (t *Tracker) Captured(ctx context.Context, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.kind != KindSolve || t.done || t.captured {
		return
	}
	t.captured = true
	t.publish(ctx, Event{Type: EventScreenshotTaken, RequestID: t.id, Path: path})
}

// Resolve publishes the successful result. It returns false if the request
// already ended.
func (t *Tracker) Resolve(ctx context.Context, text string) bool {
	evType := EventSolutionReceived
	if t.kind == KindAnswer {
		evType = EventAnswerReceived
	}
	return t.finish(ctx, Event{Type: evType, RequestID: t.id, Text: text})
}

func (t *Tracker) Fail(ctx context.Context, message string) bool {
	evType := EventSolutionError
	if t.kind == KindAnswer {
		evType = EventAnswerError
	}
	return t.finish(ctx, Event{Type: evType, RequestID: t.id, Error: message})
}

func (t *Tracker) Close(ctx context.Context) {
	msg := solveAbandoned
	if t.kind == KindAnswer {
		msg = answerAbandoned
	}
	if t.Fail(ctx, msg) {
		t.logger.Warn("request closed without a result")
	}
}

func (t *Tracker) finish(ctx context.Context, ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		t.logger.Debug("ignoring second terminal event", "type", ev.Type)
		return false
	}
	t.done = true
	t.publish(ctx, ev)
	return true
}

func (t *Tracker) publish(ctx context.Context, ev Event) {
	if err := t.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		t.logger.Error("failed to publish event", "type", ev.Type, "error", err)
	}
}
