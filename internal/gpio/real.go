//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/help-beacon/internal/logic"
)

const consumer = "help-beacon"

// RealWriter drives the indicator LEDs through the Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	green *gpiocdev.Line
	red   *gpiocdev.Line
}

// NewRealWriter requests both LED lines as outputs, initially OFF.
func NewRealWriter(chipName string, pinGreen, pinRed int) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	green, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}

	red, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		green.Close()
		chip.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}

	return &RealWriter{chip: chip, green: green, red: red}, nil
}

// Set drives the output ON (1) or OFF (0).
func (w *RealWriter) Set(id logic.OutputID, on bool) error {
	var line *gpiocdev.Line
	switch id {
	case logic.OutputGreen:
		line = w.green
	case logic.OutputRed:
		line = w.red
	default:
		return fmt.Errorf("unknown output %q", id)
	}

	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s: %w", id, err)
	}
	return nil
}

// Close drives both LEDs OFF, returns the lines to inputs (boot default) and
// releases them.
func (w *RealWriter) Close() error {
	var errs []error

	for _, l := range []struct {
		name string
		line *gpiocdev.Line
	}{{"green", w.green}, {"red", w.red}} {
		if l.line == nil {
			continue
		}
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", l.name, err))
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealEdgeSource watches both buttons for falling edges. Inputs use the
// internal pull-up, so idle = high and pressed = low. No debounce is applied.
type RealEdgeSource struct {
	chip  *gpiocdev.Chip
	btnA  *gpiocdev.Line
	btnB  *gpiocdev.Line
	queue *edgeQueue
}

// NewRealEdgeSource requests both button lines with falling-edge detection.
func NewRealEdgeSource(chipName string, pinA, pinB int) (*RealEdgeSource, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealEdgeSource{chip: chip, queue: newEdgeQueue(EdgeBuffer)}

	s.btnA, err = chip.RequestLine(pinA,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(s.handler(logic.InputAlertRequest)))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button A pin %d: %w", pinA, err)
	}

	s.btnB, err = chip.RequestLine(pinB,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(s.handler(logic.InputCancelAlert)))
	if err != nil {
		s.btnA.Close()
		chip.Close()
		return nil, fmt.Errorf("request button B pin %d: %w", pinB, err)
	}

	return s, nil
}

// handler runs on gpiocdev's watcher goroutine and must not block.
func (s *RealEdgeSource) handler(input logic.InputID) func(gpiocdev.LineEvent) {
	return func(evt gpiocdev.LineEvent) {
		edge := logic.EdgeRising
		if evt.Type == gpiocdev.LineEventFallingEdge {
			edge = logic.EdgeFalling
		}
		s.queue.offer(logic.EdgeEvent{Input: input, Edge: edge, Time: time.Now()})
	}
}

// Edges returns the edge channel.
func (s *RealEdgeSource) Edges() <-chan logic.EdgeEvent {
	return s.queue.ch
}

// Pressed returns the logical button states. Raw 0 (pulled low) = pressed.
func (s *RealEdgeSource) Pressed() (bool, bool, error) {
	aRaw, err := s.btnA.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button A: %w", err)
	}
	bRaw, err := s.btnB.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button B: %w", err)
	}
	return aRaw == 0, bRaw == 0, nil
}

// Close stops edge watching and releases the lines.
func (s *RealEdgeSource) Close() error {
	var errs []error
	if s.btnA != nil {
		if err := s.btnA.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button A pin: %w", err))
		}
	}
	if s.btnB != nil {
		if err := s.btnB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button B pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
