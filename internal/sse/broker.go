// Package sse streams zone catalog reloads and calculator contract
// violations to dashboards as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types sent to clients.
const (
	EventZonesReloaded     = "zones.reloaded"
	EventContractViolation = "calc.contract_violation"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ReloadData is the payload of a zones.reloaded event.
type ReloadData struct {
	Zones int    `json:"zones"`
	Error string `json:"error,omitempty"`
}

// ViolationData is the payload of a calc.contract_violation event.
// Suppressed counts violations dropped by the throttle since the last event.
type ViolationData struct {
	Op         string `json:"op"`
	Error      string `json:"error"`
	Suppressed int    `json:"suppressed"`
}

const (
	clientBuffer      = 64
	defaultKeepalive  = 30 * time.Second
	defaultViolations = 2 * time.Second
)

// hub is the broker state. Only the loop goroutine touches it.
type hub struct {
	clients    map[chan []byte]struct{}
	lastID     uint64
	lastReload []byte

	violationGap  time.Duration
	lastViolation time.Time
	suppressed    int
}

// deliver queues raw for one client, dropping it if the client is behind.
func (h *hub) deliver(ch chan []byte, raw []byte) {
	select {
	case ch <- raw:
	default:
	}
}

func (h *hub) broadcast(e Event) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return
	}
	h.lastID++
	raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.lastID, e.Type, payload))
	if e.Type == EventZonesReloaded {
		h.lastReload = raw
	}
	for ch := range h.clients {
		h.deliver(ch, raw)
	}
}

func (h *hub) violation(v ViolationData) {
	now := time.Now()
	if !h.lastViolation.IsZero() && now.Sub(h.lastViolation) < h.violationGap {
		h.suppressed++
		return
	}
	h.lastViolation = now
	v.Suppressed, h.suppressed = h.suppressed, 0
	h.broadcast(Event{Type: EventContractViolation, Data: v})
}

func (h *hub) shutdown() {
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// Broker fans events out to subscribers.
//
// Every operation is a closure run by one goroutine against the hub, so the
// subscriber set, the event counter, the last reload frame and the violation
// throttle need no locks. A new subscriber first receives the last reload
// so it knows the catalog state without waiting for the next change.
type Broker struct {
	keepalive time.Duration

	cmds chan func(*hub)
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewBroker creates a broker that sends at most one contract violation
// event per violationThrottle.
func NewBroker(violationThrottle time.Duration) *Broker {
	if violationThrottle <= 0 {
		violationThrottle = defaultViolations
	}
	b := &Broker{
		keepalive: defaultKeepalive,
		cmds:      make(chan func(*hub), 256),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	h := &hub{
		clients:      make(map[chan []byte]struct{}),
		violationGap: violationThrottle,
	}
	go b.loop(h)
	return b
}

func (b *Broker) loop(h *hub) {
	defer close(b.done)
	defer h.shutdown()
	for {
		select {
		case <-b.quit:
			return
		case cmd := <-b.cmds:
			cmd(h)
		}
	}
}

// exec queues cmd for the loop. It reports false once the broker is closed.
func (b *Broker) exec(cmd func(*hub)) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.cmds <- cmd:
		return true
	case <-b.done:
		return false
	}
}

// call runs cmd on the loop and waits for it to finish.
func (b *Broker) call(cmd func(*hub)) bool {
	finished := make(chan struct{})
	if !b.exec(func(h *hub) { cmd(h); close(finished) }) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-b.done:
		// The loop may have run cmd just before stopping.
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	b.once.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe adds a client. The channel is closed when the broker stops.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	ok := b.call(func(h *hub) {
		h.clients[ch] = struct{}{}
		if h.lastReload != nil {
			h.deliver(ch, h.lastReload)
		}
	})
	if !ok {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.call(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := 0
	b.call(func(h *hub) { n = len(h.clients) })
	return n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.exec(func(h *hub) { h.broadcast(event) })
}

// PublishReload announces a zone catalog rescan.
func (b *Broker) PublishReload(zones int, err error) {
	data := ReloadData{Zones: zones}
	if err != nil {
		data.Error = err.Error()
	}
	b.Publish(Event{Type: EventZonesReloaded, Data: data})
}

// PublishViolation reports a calendar or zone contract violation, throttled.
func (b *Broker) PublishViolation(op string, err error) {
	if err == nil {
		return
	}
	v := ViolationData{Op: op, Error: err.Error()}
	b.exec(func(h *hub) { h.violation(v) })
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). Idle streams get
// a comment line every keepalive interval so proxies keep them open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fl, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "response writer cannot stream", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	fl.Flush()

	frames := b.Subscribe()
	defer b.Unsubscribe(frames)

	ticker := time.NewTicker(b.keepalive)
	defer ticker.Stop()

	write := func(p []byte) bool {
		if _, err := w.Write(p); err != nil {
			return false
		}
		fl.Flush()
		return true
	}

	for {
		var ok bool
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			ok = write([]byte(": keepalive\n\n"))
		case frame, open := <-frames:
			ok = open && write(frame)
		}
		if !ok {
			return
		}
	}
}
