package logic

import "time"

// Controller decides what each tick renders and which edges change mode.
// It performs no I/O; the caller applies the returned effects.
type Controller struct {
	state         *ModeState
	phase         bool
	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a controller in STANDBY with the blink phase OFF.
// The startTime is used for calculating uptime in heartbeat events.
func NewController(startTime time.Time) *Controller {
	return &Controller{
		state:         NewModeState(),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.state.Current()
}

// Phase returns the current blink phase.
func (c *Controller) Phase() bool {
	return c.phase
}

// Tick toggles the blink phase and returns the levels and console line for
// the active mode. The inactive output is always OFF.
func (c *Controller) Tick(now time.Time) TickResult {
	c.phase = !c.phase
	mode := c.state.Current()
	c.counts.Ticks++

	var levels Levels
	switch ActiveOutput(mode) {
	case OutputGreen:
		levels.Green = c.phase
	case OutputRed:
		levels.Red = c.phase
	}

	return TickResult{
		Time:   now,
		Mode:   mode,
		Phase:  c.phase,
		Levels: levels,
		Line:   StatusLine(mode),
	}
}

// Edge processes an input event. It returns the accepted transition, or nil
// when the event does not change mode. The phase is deliberately left as is:
// the first tick after a transition renders whatever the phase flips to.
func (c *Controller) Edge(ev EdgeEvent) *Transition {
	if ev.Edge != EdgeFalling {
		c.counts.IgnoredEdges++
		return nil
	}

	mode := c.state.Current()
	var target Mode
	var line string
	switch {
	case ev.Input == InputAlertRequest && mode == ModeStandby:
		target, line = ModeAlert, LineHelpRequested
	case ev.Input == InputCancelAlert && mode == ModeAlert:
		target, line = ModeStandby, LineHelpCancelled
	default:
		c.counts.IgnoredEdges++
		return nil
	}

	if !c.state.TryTransition(target) {
		c.counts.IgnoredEdges++
		return nil
	}

	tr := &Transition{
		Timestamp: ev.Time,
		Input:     ev.Input,
		From:      mode,
		To:        target,
		Interval:  Interval(target),
		ForceOff:  ActiveOutput(mode),
		Line:      line,
	}
	switch tr.Type() {
	case EventHelpRequested:
		c.counts.HelpRequested++
	case EventHelpCancelled:
		c.counts.HelpCancelled++
	}
	return tr
}

// EventCountsSnapshot returns a copy of the activity counters.
func (c *Controller) EventCountsSnapshot() EventCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Mode:      c.state.Current(),
		Counts:    c.counts,
	}
}
