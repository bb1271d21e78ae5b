package gpio

import (
	"log"
	"sync/atomic"

	"github.com/sweeney/help-beacon/internal/logic"
)

// edgeQueue hands edges from GPIO event goroutines to the event loop.
// Offer never blocks: an edge arriving while the queue is full is dropped.
type edgeQueue struct {
	ch      chan logic.EdgeEvent
	dropped atomic.Int64
}

func newEdgeQueue(capacity int) *edgeQueue {
	return &edgeQueue{ch: make(chan logic.EdgeEvent, capacity)}
}

func (q *edgeQueue) offer(ev logic.EdgeEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		if q.dropped.Add(1) == 1 {
			log.Printf("gpio: edge queue full (%d events), dropping %s %s", cap(q.ch), ev.Input, ev.Edge)
		}
		return false
	}
}
