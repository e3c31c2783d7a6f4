// Package notify implements the process-wide notification hub: user-facing
// status events with optional progress and auto-dismiss, fanned out to
// subscribers in subscription order.
package notify

import (
	"sync"
	"time"
)

// Type classifies a notification for display purposes.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
)

// DefaultDuration is the auto-dismiss delay for info, success and warning
// notifications. Errors and progress notifications are sticky.
const DefaultDuration = 5 * time.Second

// Notification is a single user-facing status event. Duration 0 means sticky.
// Progress is only meaningful when HasProgress is set.
type Notification struct {
	ID          int64
	Type        Type
	Title       string
	Message     string
	Duration    time.Duration
	Progress    int
	HasProgress bool
}

// EventKind discriminates hub broadcasts. Dismissals are a distinct kind
// rather than an empty-payload notification, so subscribers never have to
// sniff payload shapes.
type EventKind int

const (
	// EventPosted carries a newly shown notification.
	EventPosted EventKind = iota
	// EventProgress carries an updated progress value for an existing
	// notification.
	EventProgress
	// EventDismissed signals that the notification with ID should be removed
	// from any displayed list.
	EventDismissed
)

// Event is what subscribers receive. Notification is populated for
// EventPosted and EventProgress; ID is always set.
type Event struct {
	Kind         EventKind
	ID           int64
	Notification Notification
}

// Callback receives hub events. Callbacks run synchronously on the goroutine
// that triggered the event, in subscription order.
type Callback func(Event)

type subscriber struct {
	id     int64
	fn     Callback
	active bool
}

// Hub is the notification publish/subscribe channel. The zero value is not
// usable; construct with NewHub.
type Hub struct {
	mu     sync.Mutex
	subs   []*subscriber
	queue  []*Notification
	nextID int64
	subID  int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{nextID: 1}
}

// Subscribe registers fn for all future events and returns a function that
// deregisters it. Unsubscribing is idempotent and takes effect immediately:
// fn is never invoked after the returned function returns, even if events are
// mid-dispatch on another goroutine.
func (h *Hub) Subscribe(fn Callback) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subID++
	sub := &subscriber{id: h.subID, fn: fn, active: true}
	h.subs = append(h.subs, sub)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		sub.active = false
		for i, s := range h.subs {
			if s.id == sub.id {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				break
			}
		}
	}
}

// Show assigns a fresh ID to n, appends it to the queue, broadcasts it, and
// schedules auto-dismissal when n.Duration > 0. Returns the assigned ID.
func (h *Hub) Show(n Notification) int64 {
	h.mu.Lock()
	n.ID = h.nextID
	h.nextID++
	stored := n
	h.queue = append(h.queue, &stored)
	subs := h.snapshot()
	h.mu.Unlock()

	h.broadcast(subs, Event{Kind: EventPosted, ID: n.ID, Notification: n})

	if n.Duration > 0 {
		id := n.ID
		time.AfterFunc(n.Duration, func() { h.Dismiss(id) })
	}

	return n.ID
}

// UpdateProgress clamps progress to [0,100] and rebroadcasts the notification
// with the new value. Unknown IDs are ignored: the originating flow may have
// already dismissed the notification.
func (h *Hub) UpdateProgress(id int64, progress int) {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	h.mu.Lock()
	n := h.find(id)
	if n == nil {
		h.mu.Unlock()
		return
	}
	n.Progress = progress
	n.HasProgress = true
	updated := *n
	subs := h.snapshot()
	h.mu.Unlock()

	h.broadcast(subs, Event{Kind: EventProgress, ID: id, Notification: updated})
}

// Dismiss removes the notification with id from the queue and broadcasts an
// EventDismissed. Dismissing an unknown or already-dismissed ID still
// broadcasts, so a late auto-dismiss timer stays harmless for subscribers
// that key their state by ID.
func (h *Hub) Dismiss(id int64) {
	h.mu.Lock()
	for i, n := range h.queue {
		if n.ID == id {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			break
		}
	}
	subs := h.snapshot()
	h.mu.Unlock()

	h.broadcast(subs, Event{Kind: EventDismissed, ID: id})
}

// Active returns a copy of the currently queued (undismissed) notifications.
func (h *Hub) Active() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, len(h.queue))
	for i, n := range h.queue {
		out[i] = *n
	}
	return out
}

// Info shows an info notification with the default auto-dismiss delay.
func (h *Hub) Info(title, message string) int64 {
	return h.Show(Notification{Type: TypeInfo, Title: title, Message: message, Duration: DefaultDuration})
}

// Success shows a success notification with the default auto-dismiss delay.
func (h *Hub) Success(title, message string) int64 {
	return h.Show(Notification{Type: TypeSuccess, Title: title, Message: message, Duration: DefaultDuration})
}

// Warning shows a warning notification with the default auto-dismiss delay.
func (h *Hub) Warning(title, message string) int64 {
	return h.Show(Notification{Type: TypeWarning, Title: title, Message: message, Duration: DefaultDuration})
}

// Error shows a sticky error notification requiring explicit dismissal.
func (h *Hub) Error(title, message string) int64 {
	return h.Show(Notification{Type: TypeError, Title: title, Message: message})
}

// Progress shows a sticky progress-style notification starting at the given
// percentage.
func (h *Hub) Progress(title, message string, initial int) int64 {
	if initial < 0 {
		initial = 0
	} else if initial > 100 {
		initial = 100
	}
	return h.Show(Notification{Type: TypeInfo, Title: title, Message: message, Progress: initial, HasProgress: true})
}

// find returns the queued notification with id. Caller must hold h.mu.
func (h *Hub) find(id int64) *Notification {
	for _, n := range h.queue {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// snapshot copies the subscriber list. Caller must hold h.mu.
func (h *Hub) snapshot() []*subscriber {
	subs := make([]*subscriber, len(h.subs))
	copy(subs, h.subs)
	return subs
}

// broadcast delivers ev to each subscriber that is still active at delivery
// time. The per-subscriber active check runs under the lock so an unsubscribe
// during dispatch is honored; the callback itself runs unlocked so it may
// call back into the hub.
func (h *Hub) broadcast(subs []*subscriber, ev Event) {
	for _, sub := range subs {
		h.mu.Lock()
		ok := sub.active
		h.mu.Unlock()
		if ok {
			sub.fn(ev)
		}
	}
}
