package gpio

import (
	"sync"
	"time"

	"github.com/sweeney/help-beacon/internal/logic"
)

// FakeWriter is a test double that records output levels.
type FakeWriter struct {
	mu sync.Mutex

	levels logic.Levels

	// History contains the levels sampled after every Set call.
	History []logic.Levels

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set (levels are not changed).
	SetError error
}

// NewFakeWriter creates a FakeWriter with both outputs OFF.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Set records the new level.
func (f *FakeWriter) Set(id logic.OutputID, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SetError != nil {
		return f.SetError
	}

	switch id {
	case logic.OutputGreen:
		f.levels.Green = on
	case logic.OutputRed:
		f.levels.Red = on
	}
	f.History = append(f.History, f.levels)
	return nil
}

// Levels returns the current output levels.
func (f *FakeWriter) Levels() logic.Levels {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels
}

// BothOnSeen reports whether any sample had both outputs ON.
func (f *FakeWriter) BothOnSeen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.History {
		if l.Green && l.Red {
			return true
		}
	}
	return false
}

// Close drives both outputs OFF and marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = logic.Levels{}
	f.Closed = true
	return nil
}

// FakeEdgeSource is a test double whose edges are injected by the test.
type FakeEdgeSource struct {
	ch chan logic.EdgeEvent

	mu sync.Mutex

	// A and B are the levels returned by Pressed.
	A, B bool

	// PressedError, if set, will be returned by Pressed.
	PressedError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeEdgeSource creates a FakeEdgeSource with an unbuffered channel, so
// Press returns only once the consumer has received the edge.
func NewFakeEdgeSource() *FakeEdgeSource {
	return &FakeEdgeSource{ch: make(chan logic.EdgeEvent)}
}

// Edges returns the edge channel.
func (f *FakeEdgeSource) Edges() <-chan logic.EdgeEvent {
	return f.ch
}

// Press delivers a falling edge for input at time at.
func (f *FakeEdgeSource) Press(input logic.InputID, at time.Time) {
	f.ch <- logic.EdgeEvent{Input: input, Edge: logic.EdgeFalling, Time: at}
}

// Send delivers an arbitrary edge event.
func (f *FakeEdgeSource) Send(ev logic.EdgeEvent) {
	f.ch <- ev
}

// Pressed returns the scripted button levels.
func (f *FakeEdgeSource) Pressed() (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PressedError != nil {
		return false, false, f.PressedError
	}
	return f.A, f.B, nil
}

// Close marks the source as closed.
func (f *FakeEdgeSource) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
