package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/notepad/internal/models"
)

func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countType(msgs []string, typ string) int {
	n := 0
	for _, m := range msgs {
		if strings.HasPrefix(m, "event: "+typ+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishMutation(models.OpAdded, []string{"buy milk"})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.added") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"note":"buy milk"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishMutation(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishMutation(models.OpAdded, []string{"a"})
	b.PublishMutation(models.OpDeleted, []string{"a", "b"})

	msgs := drain(ch)
	if got := countType(msgs, TypeNoteAdded); got != 1 {
		t.Errorf("note.added = %d, want 1", got)
	}
	if got := countType(msgs, TypeNotesDeleted); got != 1 {
		t.Errorf("notes.deleted = %d, want 1", got)
	}
	if got := countType(msgs, TypeNotesChanged); got != 1 {
		t.Errorf("notes.changed = %d, want 1 (throttled)", got)
	}
	for _, m := range msgs {
		if strings.HasPrefix(m, "event: "+TypeNotesDeleted) && !strings.Contains(m, `"count":2`) {
			t.Errorf("deleted payload missing count: %q", m)
		}
	}
}

func TestPublishFileChange_Throttled(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishFileChange("written")
	b.PublishFileChange("written")
	msgs := drain(ch)
	if len(msgs) != 1 || countType(msgs, TypeNotesChanged) != 1 {
		t.Fatalf("messages = %q, want one notes.changed", msgs)
	}
	if !strings.Contains(msgs[0], `"source":"file:written"`) {
		t.Errorf("payload = %q", msgs[0])
	}

	time.Sleep(60 * time.Millisecond)
	b.PublishFileChange("removed")
	if got := countType(drain(ch), TypeNotesChanged); got != 1 {
		t.Errorf("after throttle window: notes.changed = %d, want 1", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishMutation(models.OpAdded, []string{"x"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: note.added") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	notes := make([]string, 70)
	for i := range notes {
		notes[i] = "x"
	}
	b.PublishMutation(models.OpAdded, notes)
	if b.ClientCount() != 1 {
		t.Fatalf("expected broker loop to stay responsive")
	}
}

func TestCloseStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.PublishMutation(models.OpAdded, []string{"x"})
	b.PublishFileChange("written")
	b.Close()
}
