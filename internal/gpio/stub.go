//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/help-beacon/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealWriter is not available on non-Linux platforms.
type RealWriter struct{}

// NewRealWriter returns an error on non-Linux platforms.
func NewRealWriter(chipName string, pinGreen, pinRed int) (*RealWriter, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (w *RealWriter) Set(id logic.OutputID, on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (w *RealWriter) Close() error {
	return nil
}

// RealEdgeSource is not available on non-Linux platforms.
type RealEdgeSource struct{}

// NewRealEdgeSource returns an error on non-Linux platforms.
func NewRealEdgeSource(chipName string, pinA, pinB int) (*RealEdgeSource, error) {
	return nil, errUnsupported
}

// Edges returns nil on non-Linux platforms.
func (s *RealEdgeSource) Edges() <-chan logic.EdgeEvent {
	return nil
}

// Pressed is not implemented on non-Linux platforms.
func (s *RealEdgeSource) Pressed() (bool, bool, error) {
	return false, false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (s *RealEdgeSource) Close() error {
	return nil
}
