package delivery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisPublisher_Publish(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "test:events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := NewRedisPublisher(client, "test:events", testLogger())
	if err := pub.Publish(ctx, Event{Type: EventSolutionReceived, RequestID: "req_1", Text: "42"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != EventSolutionReceived || ev.Text != "42" || ev.RequestID != "req_1" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestRedisPublisher_DefaultChannel(t *testing.T) {
	pub := NewRedisPublisher(newTestRedis(t), "", testLogger())
	if pub.channel != DefaultChannel {
		t.Errorf("expected %s, got %s", DefaultChannel, pub.channel)
	}
}

func TestRedisRelay_ForwardsIntoHub(t *testing.T) {
	client := newTestRedis(t)
	hub := NewHub(8, testLogger())
	events, unsub := hub.Subscribe()
	defer unsub()

	relay := NewRedisRelay(client, "test:events", hub, testLogger())
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start relay: %v", err)
	}
	defer relay.Stop()

	pub := NewRedisPublisher(client, "test:events", testLogger())
	pub.Publish(context.Background(), Event{Type: EventScreenshotTaken, Path: "/tmp/a.png"})
	pub.Publish(context.Background(), Event{Type: EventSolutionError, Error: "Failed to process screenshot"})

	first := receive(t, events)
	second := receive(t, events)
	if first.Type != EventScreenshotTaken || first.Path != "/tmp/a.png" {
		t.Errorf("unexpected first event %+v", first)
	}
	if second.Type != EventSolutionError {
		t.Errorf("unexpected second event %+v", second)
	}
}

func TestRedisRelay_SkipsMalformedPayloads(t *testing.T) {
	client := newTestRedis(t)
	rec := make(chan Event, 4)
	relay := NewRedisRelay(client, "test:events", PublisherFunc(func(_ context.Context, ev Event) error {
		rec <- ev
		return nil
	}), testLogger())

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start relay: %v", err)
	}
	defer relay.Stop()

	client.Publish(context.Background(), "test:events", "not json")
	client.Publish(context.Background(), "test:events", `{"type":"window-toggle"}`)

	ev := receive(t, rec)
	if ev.Type != EventWindowToggle {
		t.Errorf("expected window-toggle, got %s", ev.Type)
	}
}

func TestRedisRelay_StopIsIdempotent(t *testing.T) {
	relay := NewRedisRelay(newTestRedis(t), "", NewHub(1, testLogger()), testLogger())
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start relay: %v", err)
	}
	relay.Stop()
	relay.Stop()
}
