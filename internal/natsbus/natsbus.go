// Package natsbus announces beacon liveness and mode transitions over NATS.
// Heartbeats use the nats-heartbeat message format, so a heartbeat monitor
// can alert when the beacon goes silent.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sweeney/help-beacon/internal/logic"
)

// DefaultSubject is the heartbeat subject when none is configured.
const DefaultSubject = "heartbeat.help-beacon"

// TransitionSuffix is appended to the heartbeat subject for transitions.
const TransitionSuffix = "transition"

// Publisher sends beacon messages to NATS.
type Publisher interface {
	PublishHeartbeat(ctx context.Context, hb Heartbeat) error
	PublishTransition(ctx context.Context, tr logic.Transition) error
	IsConnected() bool
	Close() error
}

// Heartbeat describes a liveness message.
type Heartbeat struct {
	Subject     string        `json:"subject"`
	GeneratedAt time.Time     `json:"generated_at"`
	Interval    time.Duration `json:"interval"` // expected heartbeat period
	Description string        `json:"description,omitempty"`
	Host        string        `json:"host,omitempty"`
}

// Validate ensures required fields are present and well-formed.
func (h Heartbeat) Validate() error {
	if h.Subject == "" {
		return errors.New("subject is required")
	}
	if h.GeneratedAt.IsZero() {
		return errors.New("generated_at is required")
	}
	if h.Interval <= 0 {
		return fmt.Errorf("interval must be >0, got %s", h.Interval)
	}
	return nil
}

// Marshal renders the heartbeat as JSON for transport.
func (h Heartbeat) Marshal() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(h)
}

// TransitionMessage is the JSON body of a transition announcement.
type TransitionMessage struct {
	Event       string    `json:"event"`
	Input       string    `json:"input"`
	From        string    `json:"from"`
	Mode        string    `json:"mode"`
	IntervalMs  int64     `json:"interval_ms"`
	GeneratedAt time.Time `json:"generated_at"`
	Host        string    `json:"host,omitempty"`
}

// FormatTransition renders a transition as JSON.
func FormatTransition(tr logic.Transition, host string) ([]byte, error) {
	return json.Marshal(TransitionMessage{
		Event:       string(tr.Type()),
		Input:       string(tr.Input),
		From:        string(tr.From),
		Mode:        string(tr.To),
		IntervalMs:  tr.Interval.Milliseconds(),
		GeneratedAt: tr.Timestamp.UTC(),
		Host:        host,
	})
}

// TransitionSubject returns the subject transitions are published on.
func TransitionSubject(heartbeatSubject string) string {
	return strings.TrimSuffix(heartbeatSubject, ".") + "." + TransitionSuffix
}

var hostname = os.Hostname

func applyHostDefault(hb Heartbeat) Heartbeat {
	if hb.Host != "" {
		return hb
	}
	if host, err := hostname(); err == nil && host != "" {
		hb.Host = host
	}
	return hb
}

func localHost() string {
	host, err := hostname()
	if err != nil {
		return ""
	}
	return host
}
