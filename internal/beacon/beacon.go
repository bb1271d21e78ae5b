// Package beacon applies the controller's decisions to the outputs, the blink
// schedule and the console. It owns the single blink schedule.
package beacon

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/help-beacon/internal/blink"
	"github.com/sweeney/help-beacon/internal/console"
	"github.com/sweeney/help-beacon/internal/gpio"
	"github.com/sweeney/help-beacon/internal/logic"
)

// Beacon couples mode, blink phase, outputs and schedule. All methods hold
// one mutex, so a transition's cancel/start pair never interleaves with a
// tick or another edge.
type Beacon struct {
	mu      sync.Mutex
	ctrl    *logic.Controller
	sched   *blink.Scheduler
	outputs gpio.Writer
	console console.Reporter
	levels  logic.Levels
}

// New creates a Beacon in STANDBY. Call Start to begin blinking.
func New(outputs gpio.Writer, reporter console.Reporter, factory blink.TickerFactory, startTime time.Time) *Beacon {
	return &Beacon{
		ctrl:    logic.NewController(startTime),
		sched:   blink.NewScheduler(factory),
		outputs: outputs,
		console: reporter,
	}
}

// Start installs the initial schedule for the current mode and writes the
// initial status line.
func (b *Beacon) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mode := b.ctrl.Mode()
	if err := b.sched.Start(logic.Interval(mode)); err != nil {
		return fmt.Errorf("start blink schedule: %w", err)
	}
	b.console.WriteLine(logic.StatusLine(mode))
	return nil
}

// Stop cancels the schedule and drives both outputs OFF.
func (b *Beacon) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sched.Cancel()
	b.set(logic.OutputGreen, false)
	b.set(logic.OutputRed, false)
}

// Ticks returns the tick channel of the live schedule. The channel changes
// after every transition, so callers must fetch it again each time they
// wait.
func (b *Beacon) Ticks() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sched.C()
}

// HandleTick renders one blink tick.
func (b *Beacon) HandleTick(now time.Time) logic.TickResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := b.ctrl.Tick(now)

	// Clear the inactive output before raising the active one, so no sample
	// ever sees both ON.
	b.set(logic.InactiveOutput(res.Mode), false)
	active := logic.ActiveOutput(res.Mode)
	b.set(active, res.Levels.On(active))

	b.console.WriteLine(res.Line)
	return res
}

// HandleEdge processes a button edge. It returns the accepted transition, or
// nil when the edge was a no-op. A non-nil error means the new schedule could
// not be registered; the beacon is left without a schedule and the caller
// must treat this as fatal.
func (b *Beacon) HandleEdge(ev logic.EdgeEvent) (*logic.Transition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tr := b.ctrl.Edge(ev)
	if tr == nil {
		return nil, nil
	}

	b.sched.Cancel()
	b.set(tr.ForceOff, false)
	if err := b.sched.Start(tr.Interval); err != nil {
		return tr, fmt.Errorf("reschedule blink at %v: %w", tr.Interval, err)
	}
	b.console.WriteLine(tr.Line)
	return tr, nil
}

// set drives an output and remembers the level. Write failures are logged;
// the next tick rewrites both outputs.
func (b *Beacon) set(id logic.OutputID, on bool) {
	if err := b.outputs.Set(id, on); err != nil {
		log.Printf("output %s write error: %v", id, err)
		return
	}
	switch id {
	case logic.OutputGreen:
		b.levels.Green = on
	case logic.OutputRed:
		b.levels.Red = on
	}
}

// State is a point-in-time view of the beacon.
type State struct {
	Mode     logic.Mode
	Phase    bool
	Levels   logic.Levels
	Interval time.Duration
	Starts   int
	Counts   logic.EventCounts
}

// State returns the current beacon state.
func (b *Beacon) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Mode:     b.ctrl.Mode(),
		Phase:    b.ctrl.Phase(),
		Levels:   b.levels,
		Interval: b.sched.Interval(),
		Starts:   b.sched.Starts(),
		Counts:   b.ctrl.EventCountsSnapshot(),
	}
}

// CheckHeartbeat returns heartbeat data if interval has elapsed since the
// last heartbeat. See logic.Controller.CheckHeartbeat.
func (b *Beacon) CheckHeartbeat(now time.Time, interval time.Duration) *logic.HeartbeatData {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.CheckHeartbeat(now, interval)
}
