// Command help-beacon blinks a standby/alert indicator pair and switches
// between the two modes when its buttons are pressed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sweeney/help-beacon/internal/beacon"
	"github.com/sweeney/help-beacon/internal/blink"
	"github.com/sweeney/help-beacon/internal/console"
	"github.com/sweeney/help-beacon/internal/gpio"
	"github.com/sweeney/help-beacon/internal/logic"
	"github.com/sweeney/help-beacon/internal/mqtt"
	"github.com/sweeney/help-beacon/internal/natsbus"
	"github.com/sweeney/help-beacon/internal/status"
	"github.com/sweeney/help-beacon/internal/web"
)

type config struct {
	Chip        string
	PinGreen    int
	PinRed      int
	PinA        int
	PinB        int
	Broker      string
	WSBroker    string
	NATSURL     string
	NATSSubject string
	Heartbeat   time.Duration
	HTTPAddr    string
	PrintState  bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.Chip, "chip", envDefault("BEACON_CHIP", gpio.DefaultChip), "GPIO chip name")
	flag.IntVar(&cfg.PinGreen, "pin-green", envInt("BEACON_PIN_GREEN", gpio.DefaultPinGreen), "Line offset for the green (standby) LED")
	flag.IntVar(&cfg.PinRed, "pin-red", envInt("BEACON_PIN_RED", gpio.DefaultPinRed), "Line offset for the red (alert) LED")
	flag.IntVar(&cfg.PinA, "pin-a", envInt("BEACON_PIN_A", gpio.DefaultPinA), "Line offset for button A (request help)")
	flag.IntVar(&cfg.PinB, "pin-b", envInt("BEACON_PIN_B", gpio.DefaultPinB), "Line offset for button B (cancel help)")
	flag.StringVar(&cfg.Broker, "broker", envDefault("BEACON_BROKER", ""), "MQTT broker address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	flag.StringVar(&cfg.NATSURL, "nats-url", envDefault("NATS_URL", ""), "NATS server URL (empty to disable)")
	flag.StringVar(&cfg.NATSSubject, "nats-subject", envDefault("NATS_SUBJECT", natsbus.DefaultSubject), "NATS heartbeat subject")
	flag.DurationVar(&cfg.Heartbeat, "heartbeat", envDuration("BEACON_HEARTBEAT", 15*time.Minute), "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.HTTPAddr, "http", envDefault("BEACON_HTTP", ":80"), "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.PrintState, "print-state", false, "Print current button state and exit")

	flag.Parse()

	cfg.WSBroker = resolveWSBroker(*wsBroker, cfg.Broker)
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Initialize GPIO
	edges, err := gpio.NewRealEdgeSource(cfg.Chip, cfg.PinA, cfg.PinB)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer edges.Close()

	// Print state mode
	if cfg.PrintState {
		a, b, err := edges.Pressed()
		if err != nil {
			return fmt.Errorf("read buttons: %w", err)
		}
		fmt.Printf("A: %s, B: %s\n", pressedString(a), pressedString(b))
		return nil
	}

	outputs, err := gpio.NewRealWriter(cfg.Chip, cfg.PinGreen, cfg.PinRed)
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer outputs.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		Chip:        cfg.Chip,
		PinGreen:    cfg.PinGreen,
		PinRed:      cfg.PinRed,
		PinA:        cfg.PinA,
		PinB:        cfg.PinB,
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		NATSURL:     cfg.NATSURL,
		HTTPAddr:    cfg.HTTPAddr,
		WSBroker:    cfg.WSBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		// Delivery waits on broker acks; keep that off the blink loop.
		async := mqtt.NewAsyncPublisher(p, mqtt.DefaultQueueSize)
		defer func() {
			if err := async.Close(); err != nil {
				log.Printf("mqtt close: %v", err)
			}
		}()
		publisher, mqttStatus = async, p
	}

	// Initialize NATS
	var bus natsbus.Publisher
	if cfg.NATSURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		nc, err := natsbus.Connect(ctx, cfg.NATSURL)
		cancel()
		if err != nil {
			return fmt.Errorf("init nats: %w", err)
		}
		p := natsbus.NewRealPublisher(nc, cfg.NATSSubject)
		defer p.Close()
		bus = p
	}

	b := beacon.New(outputs, console.NewWriterReporter(os.Stdout), blink.NewRealTicker, startTime)
	if err := b.Start(); err != nil {
		return fmt.Errorf("init blink: %w", err)
	}
	defer b.Stop()
	tracker.Update(b.State())

	if publisher != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: chip=%s green=%d red=%d a=%d b=%d broker=%q nats=%q heartbeat=%v",
		cfg.Chip, cfg.PinGreen, cfg.PinRed, cfg.PinA, cfg.PinB, cfg.Broker, cfg.NATSURL, cfg.Heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(b, edges.Edges(), publisher, mqttStatus, bus, tracker, cfg.Heartbeat, time.Now, sigCh)
}

// runLoop is the single consumer of ticks and edges. Every state change
// happens here, in order. publisher and bus must not wait on the network:
// run wraps MQTT in an AsyncPublisher, and nats.Conn buffers publishes.
func runLoop(b *beacon.Beacon, edges <-chan logic.EdgeEvent, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, bus natsbus.Publisher, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			b.Stop()
			if publisher == nil {
				return nil
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refreshTracker(tracker, b, mqttStatus, bus)
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case ev := <-edges:
			tr, err := b.HandleEdge(ev)
			if err != nil {
				return fmt.Errorf("handle %s edge: %w", ev.Input, err)
			}
			if tr == nil {
				if tracker != nil {
					tracker.Update(b.State())
				}
				continue
			}

			log.Printf("event: %s (%s -> %s, interval=%v)", tr.Type(), tr.From, tr.To, tr.Interval)
			if publisher != nil {
				if err := publisher.Publish(*tr); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}
			if bus != nil {
				if err := bus.PublishTransition(context.Background(), *tr); err != nil {
					log.Printf("nats publish error: %v", err)
				}
			}
			if tracker != nil {
				refreshTracker(tracker, b, mqttStatus, bus)
			}

		case at := <-b.Ticks():
			b.HandleTick(at)

			t := now()
			if hbData := b.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v mode=%s ticks=%d requested=%d cancelled=%d ignored=%d",
					hbData.Uptime, hbData.Mode, hbData.Counts.Ticks, hbData.Counts.HelpRequested,
					hbData.Counts.HelpCancelled, hbData.Counts.IgnoredEdges)
				publishHeartbeat(hbData, heartbeat, publisher, mqttStatus, bus, tracker, b)
			}

			if tracker != nil {
				refreshTracker(tracker, b, mqttStatus, bus)
			}
		}
	}
}

func publishHeartbeat(hbData *logic.HeartbeatData, interval time.Duration, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, bus natsbus.Publisher, tracker *status.Tracker, b *beacon.Beacon) {
	if publisher != nil {
		hbEvent := mqtt.SystemEvent{
			Timestamp: hbData.Timestamp,
			Event:     "HEARTBEAT",
		}
		if tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			refreshTracker(tracker, b, mqttStatus, bus)
			hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := publisher.PublishSystem(hbEvent); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}

	if bus != nil {
		hb := natsbus.Heartbeat{
			GeneratedAt: hbData.Timestamp.UTC(),
			Interval:    interval,
			Description: fmt.Sprintf("help beacon (%s)", hbData.Mode),
		}
		if err := bus.PublishHeartbeat(context.Background(), hb); err != nil {
			log.Printf("nats heartbeat error: %v", err)
		}
	}
}

func refreshTracker(tracker *status.Tracker, b *beacon.Beacon, mqttStatus mqtt.ConnectionStatus, bus natsbus.Publisher) {
	tracker.Update(b.State())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	if bus != nil {
		tracker.SetNATSConnected(bus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("ignoring %s=%q: not an integer", key, v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
		log.Printf("ignoring %s=%q: not a duration", key, v)
	}
	return fallback
}
