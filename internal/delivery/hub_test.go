package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(4, testLogger())

	a, unsubA := hub.Subscribe()
	defer unsubA()
	b, unsubB := hub.Subscribe()
	defer unsubB()

	if err := hub.Publish(context.Background(), Event{Type: EventSolutionReceived, Text: "42"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ch := range []<-chan Event{a, b} {
		ev := receive(t, ch)
		if ev.Text != "42" {
			t.Errorf("expected 42, got %q", ev.Text)
		}
		if ev.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	}
}

func TestHub_DropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub(1, testLogger())
	_, unsub := hub.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(context.Background(), Event{Type: EventWindowToggle})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if hub.Dropped() != 4 {
		t.Errorf("expected 4 dropped events, got %d", hub.Dropped())
	}
}

func TestHub_KeepsLifecycleEventsWhenFull(t *testing.T) {
	hub := NewHub(2, testLogger())
	ch, unsub := hub.Subscribe()
	defer unsub()

	ctx := context.Background()
	hub.Publish(ctx, Event{Type: EventWindowMove, DX: 50})
	hub.Publish(ctx, Event{Type: EventWindowMove, DX: -50})

	tr := NewTracker(hub, KindSolve, "req-1", testLogger())
	tr.Captured(ctx, "/tmp/snapsolve-1.png")
	tr.Resolve(ctx, "42")
	tr.Close(ctx)
	hub.Publish(ctx, Event{Type: EventWindowToggle})

	want := []EventType{EventWindowMove, EventWindowMove, EventScreenshotTaken, EventSolutionReceived}
	for i, et := range want {
		ev := receive(t, ch)
		if ev.Type != et {
			t.Fatalf("event %d: expected %s, got %s", i, et, ev.Type)
		}
	}
	if hub.Dropped() != 1 {
		t.Errorf("expected only the toggle to be dropped, got %d", hub.Dropped())
	}
}

func TestHub_EvictsStalledSubscriber(t *testing.T) {
	hub := NewHub(1, testLogger())
	hub.terminalWait = 10 * time.Millisecond
	ch, unsub := hub.Subscribe()
	defer unsub()

	for i := 0; i < 1+reservedSlots+1; i++ {
		hub.Publish(context.Background(), Event{Type: EventAnswerReceived, Text: "a"})
	}

	if hub.Evicted() != 1 {
		t.Fatalf("expected 1 eviction, got %d", hub.Evicted())
	}
	if hub.SubscriberCount() != 0 {
		t.Errorf("expected stalled subscriber to be removed, got %d", hub.SubscriberCount())
	}

	n := 0
	for range ch {
		n++
	}
	if n != 1+reservedSlots {
		t.Errorf("expected %d buffered events before close, got %d", 1+reservedSlots, n)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(1, testLogger())
	ch, unsub := hub.Subscribe()

	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	unsub()
	unsub()

	if hub.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(1, testLogger())
	ch, unsub := hub.Subscribe()

	hub.Close()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
	if err := hub.Publish(context.Background(), Event{Type: EventWindowToggle}); !errors.Is(err, ErrHubClosed) {
		t.Errorf("expected ErrHubClosed, got %v", err)
	}

	late, _ := hub.Subscribe()
	if _, ok := <-late; ok {
		t.Error("expected subscription on closed hub to be closed")
	}
}

func TestFanout(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("redis down")}
	f := Fanout{a, nil, b}

	err := f.Publish(context.Background(), Event{Type: EventWindowMove, DX: 50})
	if err == nil || err.Error() != "redis down" {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("expected every publisher to receive the event, got %d and %d", len(a.events), len(b.events))
	}
}

func TestEventType_Terminal(t *testing.T) {
	terminal := []EventType{EventSolutionReceived, EventSolutionError, EventAnswerReceived, EventAnswerError}
	for _, et := range terminal {
		if !et.Terminal() {
			t.Errorf("%s should be terminal", et)
		}
	}
	for _, et := range []EventType{EventScreenshotTaken, EventWindowMove, EventWindowToggle, EventFileContent} {
		if et.Terminal() {
			t.Errorf("%s should not be terminal", et)
		}
	}
}
