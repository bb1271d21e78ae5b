package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/help-beacon/internal/logic"
)

// DefaultQueueSize is the outbound queue depth used by the daemon.
const DefaultQueueSize = 64

var (
	// ErrQueueFull is returned when the outbound queue has no room; the
	// message is dropped.
	ErrQueueFull = errors.New("mqtt: outbound queue full")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("mqtt: publisher closed")
)

// outMsg is one queued publish. Exactly one field is set.
type outMsg struct {
	tr    *logic.Transition
	event *SystemEvent
}

// AsyncPublisher hands messages to a background goroutine that delivers them
// through inner. Publish and PublishSystem never wait on the broker.
type AsyncPublisher struct {
	inner Publisher
	queue chan outMsg
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped      atomic.Int64
	flushTimeout time.Duration
}

// NewAsyncPublisher starts the delivery goroutine. capacity bounds the
// number of messages waiting for inner.
func NewAsyncPublisher(inner Publisher, capacity int) *AsyncPublisher {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	p := &AsyncPublisher{
		inner:        inner,
		queue:        make(chan outMsg, capacity),
		done:         make(chan struct{}),
		flushTimeout: 5 * time.Second,
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for m := range p.queue {
		switch {
		case m.tr != nil:
			if err := p.inner.Publish(*m.tr); err != nil {
				log.Printf("mqtt: publish %s: %v", m.tr.Type(), err)
			}
		case m.event != nil:
			if err := p.inner.PublishSystem(*m.event); err != nil {
				log.Printf("mqtt: publish %s: %v", m.event.Event, err)
			}
		}
	}
}

func (p *AsyncPublisher) enqueue(m outMsg) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- m:
		return nil
	default:
		if n := p.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("mqtt: outbound queue full (%d messages), dropped %d so far", cap(p.queue), n)
		}
		return ErrQueueFull
	}
}

// Publish queues a mode transition.
func (p *AsyncPublisher) Publish(tr logic.Transition) error {
	return p.enqueue(outMsg{tr: &tr})
}

// PublishSystem queues a system lifecycle event.
func (p *AsyncPublisher) PublishSystem(event SystemEvent) error {
	return p.enqueue(outMsg{event: &event})
}

// Dropped returns how many messages were refused because the queue was full.
func (p *AsyncPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting messages, waits for queued ones to be delivered
// (bounded by the flush timeout) and closes inner.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	var errs []error
	select {
	case <-p.done:
	case <-time.After(p.flushTimeout):
		errs = append(errs, fmt.Errorf("flush timeout after %v (%d queued)", p.flushTimeout, len(p.queue)))
	}
	if err := p.inner.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
