package blink

import (
	"fmt"
	"time"
)

// RealTicker is a Ticker backed by time.Ticker.
type RealTicker struct {
	t *time.Ticker
}

// NewRealTicker is the TickerFactory used outside of tests.
func NewRealTicker(interval time.Duration) (Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("non-positive interval %v", interval)
	}
	return &RealTicker{t: time.NewTicker(interval)}, nil
}

// C returns the tick channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.t.C
}

// Stop stops the underlying ticker.
func (r *RealTicker) Stop() {
	r.t.Stop()
}
