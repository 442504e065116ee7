package sse

import (
	"strings"
	"testing"
	"time"
)

func recvMsg(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("client channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestBroker_PublishFrameEvent(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishFrameEvent("indexed", "/data/m31.fits", map[string]string{"filter": "Ha"})

	msg := recvMsg(t, ch)
	if !strings.Contains(msg, "event: frame.indexed") {
		t.Fatalf("unexpected event: %q", msg)
	}
	if !strings.Contains(msg, `"/data/m31.fits"`) || !strings.Contains(msg, `"Ha"`) {
		t.Fatalf("payload missing fields: %q", msg)
	}

	// The first frame event also triggers the throttled summary.
	summary := recvMsg(t, ch)
	if !strings.Contains(summary, "event: index.updated") {
		t.Fatalf("expected index.updated, got %q", summary)
	}
}

func TestBroker_RemovedEventHasNoFields(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishFrameEvent("removed", "/data/gone.fits", nil)

	msg := recvMsg(t, ch)
	if !strings.Contains(msg, "event: frame.removed") {
		t.Fatalf("unexpected event: %q", msg)
	}
	if strings.Contains(msg, "fields") {
		t.Fatalf("removal should not carry fields: %q", msg)
	}
}

func TestBroker_SummaryThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishFrameEvent("indexed", "/data/a.fits", nil)
	b.PublishFrameEvent("indexed", "/data/b.fits", nil)

	var summaries int
	deadline := time.After(500 * time.Millisecond)
drain:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "index.updated") {
				summaries++
			}
		case <-deadline:
			break drain
		}
	}
	if summaries != 1 {
		t.Fatalf("got %d summaries, want 1 within throttle window", summaries)
	}
}

func TestBroker_ClientCount(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	a := b.Subscribe()
	c := b.Subscribe()

	if n := b.ClientCount(); n != 2 {
		t.Fatalf("ClientCount() = %d, want 2", n)
	}

	b.Unsubscribe(a)
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("ClientCount() = %d after unsubscribe, want 1", n)
	}
	b.Unsubscribe(c)
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("client channel still open after Close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("ClientCount() = %d after Close, want 0", n)
	}
}
