// Package logic contains the pure state machine behind the help beacon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Mode is the operating state of the beacon.
type Mode string

const (
	ModeStandby Mode = "STANDBY"
	ModeAlert   Mode = "ALERT"
)

// Blink intervals per mode.
const (
	StandbyInterval = 1000 * time.Millisecond
	AlertInterval   = 250 * time.Millisecond
)

// Console lines.
const (
	LineStandby       = "Sistema em Standby"
	LineAlert         = "Ajuda a Caminho"
	LineHelpRequested = "Botão A pressionado - Ajuda Solicitada"
	LineHelpCancelled = "Botão B pressionado - Ajuda Cancelada"
)

// OutputID identifies an indicator output.
type OutputID string

const (
	OutputGreen OutputID = "GREEN"
	OutputRed   OutputID = "RED"
)

// InputID identifies a momentary input.
type InputID string

const (
	InputAlertRequest InputID = "BUTTON_A"
	InputCancelAlert  InputID = "BUTTON_B"
)

// Edge is the direction of an input transition.
type Edge string

const (
	EdgeFalling Edge = "FALLING"
	EdgeRising  Edge = "RISING"
)

// EventType names a mode transition for publishing.
type EventType string

const (
	EventHelpRequested EventType = "HELP_REQUESTED"
	EventHelpCancelled EventType = "HELP_CANCELLED"
)

// EdgeEvent is one observed input transition.
type EdgeEvent struct {
	Input InputID
	Edge  Edge
	Time  time.Time
}

// Levels is the rendered state of both outputs.
type Levels struct {
	Green bool
	Red   bool
}

// On reports the level of the given output.
func (l Levels) On(id OutputID) bool {
	switch id {
	case OutputGreen:
		return l.Green
	case OutputRed:
		return l.Red
	}
	return false
}

// TickResult describes what a single blink tick must render.
type TickResult struct {
	Time   time.Time
	Mode   Mode
	Phase  bool
	Levels Levels
	Line   string
}

// Transition is an accepted mode change and the effects it requires.
type Transition struct {
	Timestamp time.Time
	Input     InputID
	From      Mode
	To        Mode
	Interval  time.Duration // new blink interval
	ForceOff  OutputID      // previously active output
	Line      string
}

// Type returns the published event type for the transition.
func (t Transition) Type() EventType {
	if t.To == ModeAlert {
		return EventHelpRequested
	}
	return EventHelpCancelled
}

// EventCounts tracks controller activity since startup.
type EventCounts struct {
	Ticks         int
	HelpRequested int
	HelpCancelled int
	IgnoredEdges  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Mode      Mode
	Counts    EventCounts
}

// Interval returns the blink interval mandated by the mode.
func Interval(m Mode) time.Duration {
	switch m {
	case ModeStandby:
		return StandbyInterval
	case ModeAlert:
		return AlertInterval
	}
	panic(fmt.Sprintf("logic: unknown mode %q", m))
}

// ActiveOutput returns the output that blinks in the mode.
func ActiveOutput(m Mode) OutputID {
	switch m {
	case ModeStandby:
		return OutputGreen
	case ModeAlert:
		return OutputRed
	}
	panic(fmt.Sprintf("logic: unknown mode %q", m))
}

// InactiveOutput returns the output that must stay OFF in the mode.
func InactiveOutput(m Mode) OutputID {
	switch m {
	case ModeStandby:
		return OutputRed
	case ModeAlert:
		return OutputGreen
	}
	panic(fmt.Sprintf("logic: unknown mode %q", m))
}

// StatusLine returns the per-tick console line for the mode.
func StatusLine(m Mode) string {
	switch m {
	case ModeStandby:
		return LineStandby
	case ModeAlert:
		return LineAlert
	}
	panic(fmt.Sprintf("logic: unknown mode %q", m))
}
