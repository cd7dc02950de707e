package eventbus

import (
	"context"
	"log"
	"sync"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 5
)

type subscription struct {
	pattern Pattern
	handler Handler
}

type delivery struct {
	env     Envelope
	attempt int
}

// Bus is an in-memory pattern-routed bus for local runs and tests. A single
// dispatcher goroutine drains the queue and invokes every matching
// subscriber. A failed handler re-enqueues the whole envelope, so
// subscribers that already succeeded see it again; that duplication is the
// same at-least-once contract the hosted channel gives.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscription
	queue   chan delivery
	done    chan struct{}
	closed  sync.Once
	maxTry  int
	wg      sync.WaitGroup
	pending sync.WaitGroup
}

func NewBus() *Bus {
	b := &Bus{
		queue:  make(chan delivery, defaultQueueSize),
		done:   make(chan struct{}),
		maxTry: defaultMaxAttempts,
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscribe registers a handler for envelopes matching the pattern.
// Subscriptions must be set up before publishing begins.
func (b *Bus) Subscribe(p Pattern, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: p, handler: h})
}

// Publish enqueues an envelope for delivery. It never blocks on slow
// handlers; it fails only when the bus is closed or the queue is full.
func (b *Bus) Publish(_ context.Context, env Envelope) error {
	return b.enqueue(delivery{env: env, attempt: 1})
}

// Redeliver injects a duplicate delivery of an envelope, simulating a
// visibility-timeout expiry on the hosted channel.
func (b *Bus) Redeliver(env Envelope) error {
	return b.enqueue(delivery{env: env, attempt: 1})
}

func (b *Bus) enqueue(d delivery) error {
	select {
	case <-b.done:
		return context.Canceled
	default:
	}

	b.pending.Add(1)
	select {
	case b.queue <- d:
		return nil
	case <-b.done:
		b.pending.Done()
		return context.Canceled
	}
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case d := <-b.queue:
			b.deliver(d)
			b.pending.Done()
		}
	}
}

func (b *Bus) deliver(d delivery) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	failed := false
	for _, sub := range subs {
		if !sub.pattern.Matches(d.env) {
			continue
		}
		if err := sub.handler(context.Background(), d.env); err != nil {
			log.Printf("handler failed for %s/%s (attempt %d): %v",
				d.env.Source, d.env.DetailType, d.attempt, err)
			failed = true
		}
	}

	if !failed {
		return
	}
	if d.attempt >= b.maxTry {
		log.Printf("dropping %s/%s after %d attempts", d.env.Source, d.env.DetailType, d.attempt)
		return
	}
	// re-enqueue from the dispatcher itself; ignore a full queue rather
	// than deadlock
	b.pending.Add(1)
	select {
	case b.queue <- delivery{env: d.env, attempt: d.attempt + 1}:
	default:
		b.pending.Done()
		log.Printf("queue full, dropping redelivery of %s/%s", d.env.Source, d.env.DetailType)
	}
}

// Drain blocks until every enqueued envelope has been delivered.
func (b *Bus) Drain() {
	b.pending.Wait()
}

// Close stops the dispatcher. Undelivered envelopes are dropped.
func (b *Bus) Close() {
	b.closed.Do(func() {
		close(b.done)
		b.wg.Wait()
	})
}
