package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func press(input InputID, at time.Duration) EdgeEvent {
	return EdgeEvent{Input: input, Edge: EdgeFalling, Time: t0.Add(at)}
}

func TestModeStateStartsInStandby(t *testing.T) {
	s := NewModeState()
	if s.Current() != ModeStandby {
		t.Errorf("initial mode: got %s, want STANDBY", s.Current())
	}
}

func TestModeStateTryTransition(t *testing.T) {
	s := NewModeState()

	if s.TryTransition(ModeStandby) {
		t.Error("same-mode transition should return false")
	}
	if s.Current() != ModeStandby {
		t.Errorf("mode after no-op: got %s, want STANDBY", s.Current())
	}

	if !s.TryTransition(ModeAlert) {
		t.Error("STANDBY->ALERT should return true")
	}
	if s.Current() != ModeAlert {
		t.Errorf("mode: got %s, want ALERT", s.Current())
	}

	if s.TryTransition(ModeAlert) {
		t.Error("ALERT->ALERT should return false")
	}

	if !s.TryTransition(ModeStandby) {
		t.Error("ALERT->STANDBY should return true")
	}
}

func TestInterval(t *testing.T) {
	if got := Interval(ModeStandby); got != 1000*time.Millisecond {
		t.Errorf("STANDBY interval: got %v, want 1s", got)
	}
	if got := Interval(ModeAlert); got != 250*time.Millisecond {
		t.Errorf("ALERT interval: got %v, want 250ms", got)
	}
}

func TestIntervalUnknownModePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown mode")
		}
	}()
	Interval(Mode("BOGUS"))
}

func TestOutputsPerMode(t *testing.T) {
	if ActiveOutput(ModeStandby) != OutputGreen || InactiveOutput(ModeStandby) != OutputRed {
		t.Error("STANDBY should blink GREEN and hold RED off")
	}
	if ActiveOutput(ModeAlert) != OutputRed || InactiveOutput(ModeAlert) != OutputGreen {
		t.Error("ALERT should blink RED and hold GREEN off")
	}
}

func TestFirstTickInStandby(t *testing.T) {
	c := NewController(t0)

	res := c.Tick(t0.Add(time.Second))
	if res.Mode != ModeStandby {
		t.Errorf("mode: got %s, want STANDBY", res.Mode)
	}
	if !res.Phase {
		t.Error("first tick should toggle phase ON")
	}
	if !res.Levels.Green || res.Levels.Red {
		t.Errorf("levels: got %+v, want green ON red OFF", res.Levels)
	}
	if res.Line != "Sistema em Standby" {
		t.Errorf("line: got %q", res.Line)
	}
}

func TestTickTogglesPhase(t *testing.T) {
	c := NewController(t0)

	want := []bool{true, false, true, false}
	for i, w := range want {
		res := c.Tick(t0.Add(time.Duration(i+1) * time.Second))
		if res.Phase != w {
			t.Errorf("tick %d: phase got %v, want %v", i, res.Phase, w)
		}
		if res.Levels.Green != w {
			t.Errorf("tick %d: green got %v, want %v", i, res.Levels.Green, w)
		}
		if res.Levels.Red {
			t.Errorf("tick %d: red should stay OFF in STANDBY", i)
		}
	}
	if c.EventCountsSnapshot().Ticks != 4 {
		t.Errorf("ticks: got %d, want 4", c.EventCountsSnapshot().Ticks)
	}
}

func TestAlertRequestFromStandby(t *testing.T) {
	c := NewController(t0)

	tr := c.Edge(press(InputAlertRequest, 1500*time.Millisecond))
	if tr == nil {
		t.Fatal("expected transition")
	}
	if tr.From != ModeStandby || tr.To != ModeAlert {
		t.Errorf("transition: got %s->%s, want STANDBY->ALERT", tr.From, tr.To)
	}
	if tr.Interval != 250*time.Millisecond {
		t.Errorf("interval: got %v, want 250ms", tr.Interval)
	}
	if tr.ForceOff != OutputGreen {
		t.Errorf("force off: got %s, want GREEN", tr.ForceOff)
	}
	if tr.Line != "Botão A pressionado - Ajuda Solicitada" {
		t.Errorf("line: got %q", tr.Line)
	}
	if tr.Type() != EventHelpRequested {
		t.Errorf("type: got %s, want HELP_REQUESTED", tr.Type())
	}
	if c.Mode() != ModeAlert {
		t.Errorf("mode: got %s, want ALERT", c.Mode())
	}
}

func TestCancelAlertFromAlert(t *testing.T) {
	c := NewController(t0)
	c.Edge(press(InputAlertRequest, time.Second))

	tr := c.Edge(press(InputCancelAlert, 2*time.Second))
	if tr == nil {
		t.Fatal("expected transition")
	}
	if tr.From != ModeAlert || tr.To != ModeStandby {
		t.Errorf("transition: got %s->%s, want ALERT->STANDBY", tr.From, tr.To)
	}
	if tr.Interval != time.Second {
		t.Errorf("interval: got %v, want 1s", tr.Interval)
	}
	if tr.ForceOff != OutputRed {
		t.Errorf("force off: got %s, want RED", tr.ForceOff)
	}
	if tr.Line != "Botão B pressionado - Ajuda Cancelada" {
		t.Errorf("line: got %q", tr.Line)
	}
	if tr.Type() != EventHelpCancelled {
		t.Errorf("type: got %s, want HELP_CANCELLED", tr.Type())
	}
}

func TestSameModeEdgesIgnored(t *testing.T) {
	c := NewController(t0)

	if tr := c.Edge(press(InputCancelAlert, time.Second)); tr != nil {
		t.Errorf("cancel while STANDBY should be ignored, got %+v", tr)
	}

	c.Edge(press(InputAlertRequest, 2*time.Second))
	for i := 0; i < 5; i++ {
		if tr := c.Edge(press(InputAlertRequest, 3*time.Second)); tr != nil {
			t.Errorf("repeat alert %d should be ignored", i)
		}
	}
	if c.Mode() != ModeAlert {
		t.Errorf("mode: got %s, want ALERT", c.Mode())
	}

	counts := c.EventCountsSnapshot()
	if counts.HelpRequested != 1 {
		t.Errorf("HelpRequested: got %d, want 1", counts.HelpRequested)
	}
	if counts.IgnoredEdges != 6 {
		t.Errorf("IgnoredEdges: got %d, want 6", counts.IgnoredEdges)
	}
}

func TestRisingEdgeIgnored(t *testing.T) {
	c := NewController(t0)

	ev := press(InputAlertRequest, time.Second)
	ev.Edge = EdgeRising
	if tr := c.Edge(ev); tr != nil {
		t.Error("rising edge should not transition")
	}
	if c.Mode() != ModeStandby {
		t.Errorf("mode: got %s, want STANDBY", c.Mode())
	}
}

func TestUnknownInputIgnored(t *testing.T) {
	c := NewController(t0)

	if tr := c.Edge(press(InputID("BUTTON_Z"), time.Second)); tr != nil {
		t.Error("unknown input should not transition")
	}
}

func TestPhaseNotResetOnTransition(t *testing.T) {
	c := NewController(t0)
	c.Tick(t0.Add(time.Second)) // phase ON

	c.Edge(press(InputAlertRequest, 1500*time.Millisecond))
	if !c.Phase() {
		t.Fatal("transition should not reset phase")
	}

	// Phase flips from ON to OFF, so RED starts OFF.
	res := c.Tick(t0.Add(1750 * time.Millisecond))
	if res.Mode != ModeAlert {
		t.Errorf("mode: got %s, want ALERT", res.Mode)
	}
	if res.Levels.Red || res.Levels.Green {
		t.Errorf("levels: got %+v, want both OFF", res.Levels)
	}
	if res.Line != "Ajuda a Caminho" {
		t.Errorf("line: got %q", res.Line)
	}
}

func TestTickLinesMatchMode(t *testing.T) {
	c := NewController(t0)
	at := time.Duration(0)

	steps := []struct {
		edge *InputID
		want string
	}{
		{nil, LineStandby},
		{ptr(InputAlertRequest), LineAlert},
		{nil, LineAlert},
		{ptr(InputCancelAlert), LineStandby},
		{nil, LineStandby},
	}
	for i, s := range steps {
		at += 100 * time.Millisecond
		if s.edge != nil {
			c.Edge(press(*s.edge, at))
		}
		res := c.Tick(t0.Add(at))
		if res.Line != s.want {
			t.Errorf("step %d: line got %q, want %q", i, res.Line, s.want)
		}
		if res.Levels.Green && res.Levels.Red {
			t.Errorf("step %d: both outputs ON", i)
		}
	}
}

func ptr(id InputID) *InputID { return &id }

func TestHeartbeatDisabled(t *testing.T) {
	c := NewController(t0)
	if hb := c.CheckHeartbeat(t0.Add(time.Hour), 0); hb != nil {
		t.Error("expected nil heartbeat when interval is 0")
	}
}

func TestHeartbeatInterval(t *testing.T) {
	c := NewController(t0)
	interval := 15 * time.Minute

	if hb := c.CheckHeartbeat(t0.Add(14*time.Minute), interval); hb != nil {
		t.Error("heartbeat fired before interval elapsed")
	}

	c.Edge(press(InputAlertRequest, 14*time.Minute))

	hb := c.CheckHeartbeat(t0.Add(15*time.Minute), interval)
	if hb == nil {
		t.Fatal("expected heartbeat at 15m")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("uptime: got %v, want 15m", hb.Uptime)
	}
	if hb.Mode != ModeAlert {
		t.Errorf("mode: got %s, want ALERT", hb.Mode)
	}
	if hb.Counts.HelpRequested != 1 {
		t.Errorf("HelpRequested: got %d, want 1", hb.Counts.HelpRequested)
	}

	if hb := c.CheckHeartbeat(t0.Add(20*time.Minute), interval); hb != nil {
		t.Error("heartbeat fired again too soon")
	}
	if hb := c.CheckHeartbeat(t0.Add(30*time.Minute), interval); hb == nil {
		t.Error("expected second heartbeat at 30m")
	}
}
