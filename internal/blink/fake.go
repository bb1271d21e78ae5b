package blink

import (
	"sync"
	"time"
)

// FakeClock is a virtual clock that hands out tickers firing only when the
// clock is advanced. Like time.Ticker, each fake ticker buffers one tick and
// drops ticks the reader has not consumed.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*FakeTicker

	// NewTickerError, if set, will be returned by NewTicker.
	NewTickerError error
}

// FakeTicker is a Ticker created by FakeClock.
type FakeTicker struct {
	clock    *FakeClock
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
	fired    int
}

// NewFakeClock creates a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// NewTicker implements TickerFactory.
func (c *FakeClock) NewTicker(interval time.Duration) (Ticker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.NewTickerError != nil {
		return nil, c.NewTickerError
	}

	t := &FakeTicker{
		clock:    c,
		ch:       make(chan time.Time, 1),
		interval: interval,
		next:     c.now.Add(interval),
	}
	c.tickers = append(c.tickers, t)
	return t, nil
}

// Now returns the virtual time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, firing every tick due on the way.
func (c *FakeClock) Advance(d time.Duration) {
	c.AdvanceTo(c.Now().Add(d))
}

// AdvanceTo moves the clock to t, firing every tick due at or before t.
func (c *FakeClock) AdvanceTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Before(c.now) {
		return
	}
	for _, tk := range c.tickers {
		for !tk.stopped && !tk.next.After(t) {
			select {
			case tk.ch <- tk.next:
				tk.fired++
			default:
			}
			tk.next = tk.next.Add(tk.interval)
		}
	}
	c.now = t
}

// NextTick returns the earliest pending tick time among live tickers.
func (c *FakeClock) NextTick() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next time.Time
	found := false
	for _, tk := range c.tickers {
		if tk.stopped {
			continue
		}
		if !found || tk.next.Before(next) {
			next = tk.next
			found = true
		}
	}
	return next, found
}

// Intervals returns the interval of every ticker created, in order.
func (c *FakeClock) Intervals() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.tickers))
	for i, tk := range c.tickers {
		out[i] = tk.interval
	}
	return out
}

// Live returns the number of tickers that have not been stopped.
func (c *FakeClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, tk := range c.tickers {
		if !tk.stopped {
			n++
		}
	}
	return n
}

// C returns the tick channel.
func (t *FakeTicker) C() <-chan time.Time {
	return t.ch
}

// Stop stops the ticker and discards a buffered tick.
func (t *FakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	t.stopped = true
	select {
	case <-t.ch:
	default:
	}
}

// Interval returns the ticker's period.
func (t *FakeTicker) Interval() time.Duration {
	return t.interval
}
