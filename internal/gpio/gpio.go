// Package gpio provides the indicator outputs and button inputs with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/help-beacon/internal/logic"

// Writer drives the indicator outputs.
type Writer interface {
	// Set drives the output ON (true) or OFF (false).
	Set(id logic.OutputID, on bool) error

	// Close drives both outputs OFF and releases GPIO resources.
	Close() error
}

// EdgeSource delivers button edges.
type EdgeSource interface {
	// Edges returns the channel edge events are delivered on.
	Edges() <-chan logic.EdgeEvent

	// Pressed returns the current logical state of buttons A and B.
	// Inputs idle high with pull-up: raw 0 = pressed.
	Pressed() (a, b bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Default chip and line offsets (BitDogLab board wiring).
const (
	DefaultChip     = "gpiochip0"
	DefaultPinGreen = 11
	DefaultPinRed   = 13
	DefaultPinA     = 5
	DefaultPinB     = 6
)

// EdgeBuffer is the capacity of the edge queue between the GPIO event
// goroutine and the event loop.
const EdgeBuffer = 16
