package natsbus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sweeney/help-beacon/internal/logic"
)

// RealPublisher publishes over a NATS connection.
type RealPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewRealPublisher wraps an established connection. Transitions go to
// TransitionSubject(subject).
func NewRealPublisher(nc *nats.Conn, subject string) *RealPublisher {
	return &RealPublisher{nc: nc, subject: subject}
}

// Connect dials url, retrying with exponential backoff until ctx is done.
// An unreachable server is reported as ctx.Err(). Once connected the client
// reconnects forever on its own.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		nc, err := nats.Connect(
			url,
			nats.Name("help-beacon"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					log.Printf("nats: disconnected: %v", err)
					return
				}
				log.Printf("nats: disconnected")
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
			nats.ClosedHandler(func(_ *nats.Conn) {
				log.Printf("nats: connection closed")
			}),
		)
		if err == nil {
			return nc, nil
		}

		log.Printf("nats: connect failed: %v (retry in %v)", err, backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// PublishHeartbeat sends hb on its subject (the configured subject if empty).
func (p *RealPublisher) PublishHeartbeat(ctx context.Context, hb Heartbeat) error {
	if hb.Subject == "" {
		hb.Subject = p.subject
	}
	if hb.GeneratedAt.IsZero() {
		hb.GeneratedAt = time.Now().UTC()
	}
	hb = applyHostDefault(hb)

	payload, err := hb.Marshal()
	if err != nil {
		return fmt.Errorf("format heartbeat: %w", err)
	}
	return p.nc.PublishMsg(&nats.Msg{
		Subject: hb.Subject,
		Data:    payload,
		Header:  headers(ctx),
	})
}

// PublishTransition announces a mode transition.
func (p *RealPublisher) PublishTransition(ctx context.Context, tr logic.Transition) error {
	payload, err := FormatTransition(tr, localHost())
	if err != nil {
		return fmt.Errorf("format transition: %w", err)
	}
	return p.nc.PublishMsg(&nats.Msg{
		Subject: TransitionSubject(p.subject),
		Data:    payload,
		Header:  headers(ctx),
	})
}

// IsConnected reports whether the connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.nc.IsConnected()
}

// Close flushes pending messages and closes the connection.
func (p *RealPublisher) Close() error {
	return p.nc.Drain()
}

// headers carries the context deadline, if any, as message metadata.
func headers(ctx context.Context) nats.Header {
	h := nats.Header{}
	if ctx == nil {
		return h
	}
	if deadline, ok := ctx.Deadline(); ok {
		h.Set("Deadline", deadline.UTC().Format(time.RFC3339Nano))
	}
	return h
}
