// Package sse implements a Server-Sent Events broker that pushes note changes to clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/notepad/internal/models"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types.
const (
	TypeNoteAdded    = "note.added"
	TypeNotesDeleted = "notes.deleted"
	TypeNotesChanged = "notes.changed"
)

// changeReq is a store mutation (op set) or an external file change (source set).
type changeReq struct {
	op     models.Op
	notes  []string
	source string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the notes.changed
// throttle timestamp; public methods talk to it over channels.
type Broker struct {
	changedMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits notes.changed at most once per throttle.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = time.Second
	}

	b := &Broker{
		changedMin:    throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastChanged time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case req := <-b.changeCh:
			source := req.source
			switch req.op {
			case models.OpAdded:
				source = "store"
				for _, n := range req.notes {
					broadcast(Event{Type: TypeNoteAdded, Data: map[string]string{"note": n}})
				}
			case models.OpDeleted:
				source = "store"
				broadcast(Event{Type: TypeNotesDeleted, Data: map[string]any{
					"notes": req.notes,
					"count": len(req.notes),
				}})
			}

			now := time.Now()
			if now.Sub(lastChanged) >= b.changedMin {
				lastChanged = now
				broadcast(Event{Type: TypeNotesChanged, Data: map[string]string{"source": source}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishMutation publishes a store mutation followed by a throttled
// notes.changed event. Its signature matches notestore.Notifier.
func (b *Broker) PublishMutation(op models.Op, notes []string) {
	b.sendChange(changeReq{op: op, notes: notes})
}

// PublishFileChange publishes only the throttled notes.changed event, for
// changes noticed on disk rather than made through the store.
func (b *Broker) PublishFileChange(kind string) {
	b.sendChange(changeReq{source: "file:" + kind})
}

func (b *Broker) sendChange(req changeReq) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- req:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
