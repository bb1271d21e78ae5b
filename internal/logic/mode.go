package logic

// ModeState holds the current Mode. It is not safe for concurrent use;
// callers serialize access (see beacon.Beacon).
type ModeState struct {
	mode Mode
}

// NewModeState returns a ModeState in STANDBY.
func NewModeState() *ModeState {
	return &ModeState{mode: ModeStandby}
}

// Current returns the active mode.
func (s *ModeState) Current() Mode {
	return s.mode
}

// TryTransition switches to target and returns true iff target differs from
// the current mode. A same-mode request is a no-op returning false.
func (s *ModeState) TryTransition(target Mode) bool {
	if target == s.mode {
		return false
	}
	s.mode = target
	return true
}
