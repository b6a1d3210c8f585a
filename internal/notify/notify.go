// Package notify carries user-facing notifications out of the core.
// Sinks are fire-and-forget: they never block or fail the caller.
package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one user-facing message.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Time        time.Time `json:"time"`
}

type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// LogSink writes notifications to a standard logger.
type LogSink struct {
	Logger *log.Logger
	Prefix string
}

func (s LogSink) Notify(n Notification) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("%snotify [%s] %s: %s", s.Prefix, n.Severity, n.Title, n.Description)
}

type multi []Sink

// Multi fans a notification out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}

// Broadcaster delivers notifications to any number of subscribers. A slow
// subscriber loses its oldest queued notification rather than blocking.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Notification
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Notification)}
}

func (b *Broadcaster) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		push(ch, n)
	}
}

// Subscribe returns a channel that receives notifications until ctx is done,
// after which the channel is closed.
func (b *Broadcaster) Subscribe(ctx context.Context, buffer int) <-chan Notification {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func push(out chan Notification, n Notification) {
	select {
	case out <- n:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- n:
	default:
	}
}
