// Package sse implements a Server-Sent Events broker for real-time
// vault updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// fileEventTypes maps watcher callback kinds to SSE event types.
var fileEventTypes = map[string]string{
	"created": "notes.created",
	"updated": "notes.updated",
	"deleted": "notes.deleted",
}

const (
	// clientBuf is the per-subscriber buffer depth; slow clients lose
	// events past it instead of stalling the loop.
	clientBuf = 64
	// pendingBuf absorbs publish bursts ahead of the loop.
	pendingBuf = 256

	defaultStatsThrottle = 2 * time.Second
)

type fileEventReq struct {
	kind string
	path string
}

// Broker fans notes-file change events out to connected SSE clients.
//
// A single loop goroutine owns all mutable state (the client set and the
// stats throttle clock); public methods talk to it over channels, so the
// type needs no mutex.
type Broker struct {
	statsMin time.Duration

	join       chan chan []byte
	leave      chan chan []byte
	events     chan Event
	fileEvents chan fileEventReq
	countReq   chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts the broker loop. statsThrottle caps how often a
// stats.updated event accompanies file changes; zero or negative picks
// the default.
func NewBroker(statsThrottle time.Duration) *Broker {
	if statsThrottle <= 0 {
		statsThrottle = defaultStatsThrottle
	}

	b := &Broker{
		statsMin:   statsThrottle,
		join:       make(chan chan []byte),
		leave:      make(chan chan []byte),
		events:     make(chan Event, pendingBuf),
		fileEvents: make(chan fileEventReq, pendingBuf),
		countReq:   make(chan chan int),
		stopCh:     make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go b.loop()
	return b
}

// clientSet is the loop-owned set of subscriber channels.
type clientSet map[chan []byte]struct{}

func (cs clientSet) send(raw []byte) {
	for ch := range cs {
		select {
		case ch <- raw:
		default:
			// Subscriber buffer is full; drop rather than stall the loop.
		}
	}
}

func (cs clientSet) drop(ch chan []byte) {
	if _, ok := cs[ch]; ok {
		delete(cs, ch)
		close(ch)
	}
}

func (cs clientSet) closeAll() {
	for ch := range cs {
		close(ch)
	}
}

// frame renders an event in SSE wire format.
func frame(event Event) ([]byte, bool) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, false
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload), true
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(clientSet)
	var lastStats time.Time

	emit := func(event Event) {
		if raw, ok := frame(event); ok {
			clients.send(raw)
		}
	}

	for {
		select {
		case <-b.stopCh:
			clients.closeAll()
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			clients.drop(ch)

		case event := <-b.events:
			emit(event)

		case req := <-b.fileEvents:
			if typ, ok := fileEventTypes[req.kind]; ok {
				emit(Event{Type: typ, Data: map[string]string{"path": req.path}})
			}
			if now := time.Now(); now.Sub(lastStats) >= b.statsMin {
				lastStats = now
				emit(Event{Type: "stats.updated", Data: map[string]string{}})
			}

		case resp := <-b.countReq:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every subscriber channel. It blocks
// until the loop has exited and is safe to call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new client and returns its receive channel. The
// channel is closed on Unsubscribe or Close; after Close it comes back
// already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuf)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.join <- ch:
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
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount reports how many clients are connected.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReq <- resp:
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

// Publish broadcasts an arbitrary event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.stopped:
	}
}

// PublishFileEvent broadcasts a notes-file change plus a throttled
// stats.updated event. kind is the watcher callback kind: "created",
// "updated", or "deleted".
func (b *Broker) PublishFileEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.fileEvents <- fileEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams broker events to one client until it disconnects.
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

	for {
		select {
		case <-r.Context().Done():
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
