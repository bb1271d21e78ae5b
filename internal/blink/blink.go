// Package blink provides the cancellable periodic schedule that paces the
// indicator outputs. Ticks are delivered on a channel so a single event loop
// can consume them alongside input edges.
package blink

import (
	"errors"
	"fmt"
	"time"
)

// ErrRunning is returned by Start when a schedule is already live.
var ErrRunning = errors.New("blink: schedule already running")

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// C returns the channel ticks are delivered on.
	C() <-chan time.Time

	// Stop ends the schedule. No tick is sent after Stop returns.
	Stop()
}

// TickerFactory registers a periodic timer firing every interval.
type TickerFactory func(interval time.Duration) (Ticker, error)

// Scheduler owns the single live Ticker. It is not safe for concurrent use;
// callers serialize access.
type Scheduler struct {
	newTicker TickerFactory
	ticker    Ticker
	interval  time.Duration
	starts    int
}

// NewScheduler creates an idle scheduler that registers timers via factory.
func NewScheduler(factory TickerFactory) *Scheduler {
	return &Scheduler{newTicker: factory}
}

// Start installs a schedule firing every interval.
func (s *Scheduler) Start(interval time.Duration) error {
	if s.ticker != nil {
		return ErrRunning
	}
	if interval <= 0 {
		return fmt.Errorf("blink: invalid interval %v", interval)
	}

	t, err := s.newTicker(interval)
	if err != nil {
		return fmt.Errorf("register %v timer: %w", interval, err)
	}

	s.ticker = t
	s.interval = interval
	s.starts++
	return nil
}

// Cancel stops the live schedule, if any. After Cancel returns, C returns
// nil until the next Start, so no tick from the old schedule is observed.
func (s *Scheduler) Cancel() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.interval = 0
}

// Reschedule cancels the live schedule and starts a new one at interval.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	s.Cancel()
	return s.Start(interval)
}

// C returns the tick channel of the live schedule, or nil when cancelled.
// A nil channel blocks forever in a select, which is what an idle loop needs.
func (s *Scheduler) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C()
}

// Running reports whether a schedule is live.
func (s *Scheduler) Running() bool {
	return s.ticker != nil
}

// Interval returns the interval of the live schedule, or 0 when cancelled.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Starts returns how many schedules have been installed.
func (s *Scheduler) Starts() int {
	return s.starts
}
