package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Mode            string       `json:"mode"`
	Outputs         OutputsJSON  `json:"outputs"`
	BlinkIntervalMs int64        `json:"blink_interval_ms"`
	Ready           bool         `json:"ready"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            BrokerStatus `json:"mqtt"`
	NATS            BrokerStatus `json:"nats"`
	Counts          CountsJSON   `json:"event_counts"`
	Network         *NetworkJSON `json:"network,omitempty"`
	Config          ConfigJSON   `json:"config"`
}

// OutputsJSON reports the indicator levels.
type OutputsJSON struct {
	Green string `json:"green"`
	Red   string `json:"red"`
}

// BrokerStatus reports a broker connection state.
type BrokerStatus struct {
	Connected bool   `json:"connected"`
	URL       string `json:"url"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Ticks         int `json:"ticks"`
	HelpRequested int `json:"help_requested"`
	HelpCancelled int `json:"help_cancelled"`
	IgnoredEdges  int `json:"ignored_edges"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	PinGreen    int    `json:"pin_green"`
	PinRed      int    `json:"pin_red"`
	PinA        int    `json:"pin_a"`
	PinB        int    `json:"pin_b"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	NATSURL     string `json:"nats_url,omitempty"`
	HTTPAddr    string `json:"http_addr"`
	WSBroker    string `json:"ws_broker,omitempty"`
}

// OnOff renders a level as "ON" or "OFF".
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}

	return StatusInner{
		Mode:            mode,
		Outputs:         OutputsJSON{Green: OnOff(snap.Levels.Green), Red: OnOff(snap.Levels.Red)},
		BlinkIntervalMs: snap.Interval.Milliseconds(),
		Ready:           snap.Running,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            BrokerStatus{Connected: snap.MQTTConnected, URL: snap.Config.Broker},
		NATS:            BrokerStatus{Connected: snap.NATSConnected, URL: snap.Config.NATSURL},
		Counts: CountsJSON{
			Ticks:         snap.Counts.Ticks,
			HelpRequested: snap.Counts.HelpRequested,
			HelpCancelled: snap.Counts.HelpCancelled,
			IgnoredEdges:  snap.Counts.IgnoredEdges,
		},
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			PinGreen:    snap.Config.PinGreen,
			PinRed:      snap.Config.PinRed,
			PinA:        snap.Config.PinA,
			PinB:        snap.Config.PinB,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			NATSURL:     snap.Config.NATSURL,
			HTTPAddr:    snap.Config.HTTPAddr,
			WSBroker:    snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
