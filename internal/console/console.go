// Package console writes the beacon's human-readable status lines, the
// equivalent of a serial console on a microcontroller board.
package console

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Reporter is an append-only line sink.
type Reporter interface {
	WriteLine(text string)
}

// WriterReporter writes each line to an io.Writer (normally os.Stdout).
type WriterReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReporter creates a Reporter writing to w.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// WriteLine writes text followed by a newline. Write errors are logged and
// otherwise ignored; the console is assumed always available.
func (r *WriterReporter) WriteLine(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintln(r.w, text); err != nil {
		log.Printf("console write error: %v", err)
	}
}

// FakeReporter records lines for test assertions.
type FakeReporter struct {
	mu    sync.Mutex
	lines []string
}

// NewFakeReporter creates an empty FakeReporter.
func NewFakeReporter() *FakeReporter {
	return &FakeReporter{}
}

// WriteLine records text.
func (f *FakeReporter) WriteLine(text string) {
	f.mu.Lock()
	f.lines = append(f.lines, text)
	f.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (f *FakeReporter) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// Reset clears recorded lines.
func (f *FakeReporter) Reset() {
	f.mu.Lock()
	f.lines = nil
	f.mu.Unlock()
}
