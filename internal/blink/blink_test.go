package blink

import (
	"errors"
	"testing"
	"time"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSchedulerStart(t *testing.T) {
	clock := NewFakeClock(start)
	s := NewScheduler(clock.NewTicker)

	if s.Running() {
		t.Error("should not be running initially")
	}
	if s.C() != nil {
		t.Error("C should be nil before Start")
	}

	if err := s.Start(time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Running() {
		t.Error("should be running after Start")
	}
	if s.Interval() != time.Second {
		t.Errorf("Interval: got %v, want 1s", s.Interval())
	}

	clock.Advance(time.Second)
	select {
	case at := <-s.C():
		if !at.Equal(start.Add(time.Second)) {
			t.Errorf("tick at %v, want %v", at, start.Add(time.Second))
		}
	default:
		t.Fatal("expected a tick after 1s")
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	clock := NewFakeClock(start)
	s := NewScheduler(clock.NewTicker)

	if err := s.Start(time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(time.Second); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start: got %v, want ErrRunning", err)
	}
	if clock.Live() != 1 {
		t.Errorf("live tickers: got %d, want 1", clock.Live())
	}
}

func TestSchedulerInvalidInterval(t *testing.T) {
	s := NewScheduler(NewFakeClock(start).NewTicker)

	if err := s.Start(0); err == nil {
		t.Error("expected error for zero interval")
	}
	if s.Running() {
		t.Error("should not be running after failed Start")
	}
}

func TestSchedulerRegistrationFailure(t *testing.T) {
	clock := NewFakeClock(start)
	clock.NewTickerError = errors.New("no timer slots")
	s := NewScheduler(clock.NewTicker)

	err := s.Start(time.Second)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, clock.NewTickerError) {
		t.Errorf("error should wrap factory error, got %v", err)
	}
	if s.Running() {
		t.Error("should not be running after failed Start")
	}
}

func TestSchedulerCancelDropsPendingTick(t *testing.T) {
	clock := NewFakeClock(start)
	s := NewScheduler(clock.NewTicker)
	s.Start(time.Second)

	clock.Advance(time.Second) // tick buffered
	old := s.C()
	s.Cancel()

	if s.Running() {
		t.Error("should not be running after Cancel")
	}
	if s.C() != nil {
		t.Error("C should be nil after Cancel")
	}
	if s.Interval() != 0 {
		t.Errorf("Interval after Cancel: got %v, want 0", s.Interval())
	}

	clock.Advance(5 * time.Second)
	select {
	case <-old:
		t.Error("cancelled schedule delivered a tick")
	default:
	}
}

func TestSchedulerCancelIdle(t *testing.T) {
	s := NewScheduler(NewFakeClock(start).NewTicker)
	s.Cancel() // must not panic
	if s.Running() {
		t.Error("idle Cancel should leave scheduler stopped")
	}
}

func TestSchedulerReschedule(t *testing.T) {
	clock := NewFakeClock(start)
	s := NewScheduler(clock.NewTicker)
	s.Start(time.Second)

	clock.Advance(500 * time.Millisecond)
	if err := s.Reschedule(250 * time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Interval() != 250*time.Millisecond {
		t.Errorf("Interval: got %v, want 250ms", s.Interval())
	}
	if clock.Live() != 1 {
		t.Errorf("live tickers: got %d, want 1", clock.Live())
	}
	if s.Starts() != 2 {
		t.Errorf("Starts: got %d, want 2", s.Starts())
	}

	next, ok := clock.NextTick()
	if !ok {
		t.Fatal("expected a pending tick")
	}
	if want := start.Add(750 * time.Millisecond); !next.Equal(want) {
		t.Errorf("next tick: got %v, want %v", next, want)
	}

	want := []time.Duration{time.Second, 250 * time.Millisecond}
	got := clock.Intervals()
	if len(got) != len(want) {
		t.Fatalf("intervals: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSchedulerRescheduleFailureLeavesNoSchedule(t *testing.T) {
	clock := NewFakeClock(start)
	s := NewScheduler(clock.NewTicker)
	s.Start(time.Second)

	clock.NewTickerError = errors.New("boom")
	if err := s.Reschedule(250 * time.Millisecond); err == nil {
		t.Fatal("expected error")
	}
	if s.Running() {
		t.Error("failed Reschedule must not leave the old schedule running")
	}
	if clock.Live() != 0 {
		t.Errorf("live tickers: got %d, want 0", clock.Live())
	}
}

func TestFakeTickerDropsUnreadTicks(t *testing.T) {
	clock := NewFakeClock(start)
	tk, _ := clock.NewTicker(100 * time.Millisecond)

	clock.Advance(time.Second)

	n := 0
	for {
		select {
		case <-tk.C():
			n++
			continue
		default:
		}
		break
	}
	if n != 1 {
		t.Errorf("buffered ticks: got %d, want 1", n)
	}
}

func TestRealTicker(t *testing.T) {
	tk, err := NewRealTicker(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}

func TestRealTickerInvalidInterval(t *testing.T) {
	if _, err := NewRealTicker(0); err == nil {
		t.Error("expected error for zero interval")
	}
}
