package natsbus

import (
	"context"
	"sync"

	"github.com/sweeney/help-beacon/internal/logic"
)

// FakePublisher records messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	Heartbeats  []Heartbeat
	Transitions []logic.Transition

	// PublishError, if set, is returned by both publish methods.
	PublishError error

	Connected bool
	Closed    bool
}

// NewFakePublisher creates a FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishHeartbeat records hb after validation. An empty subject defaults
// to DefaultSubject.
func (f *FakePublisher) PublishHeartbeat(_ context.Context, hb Heartbeat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	if hb.Subject == "" {
		hb.Subject = DefaultSubject
	}
	if err := hb.Validate(); err != nil {
		return err
	}
	f.Heartbeats = append(f.Heartbeats, hb)
	return nil
}

// PublishTransition records tr.
func (f *FakePublisher) PublishTransition(_ context.Context, tr logic.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Transitions = append(f.Transitions, tr)
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
