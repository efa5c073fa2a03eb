// Package telemetry collects opt-in, anonymous usage events. Collection
// is off unless explicitly enabled, honors DO_NOT_TRACK, and failures
// are swallowed: telemetry must never break the CLI.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"
)

// Event is one usage record.
type Event struct {
	EventType    string        `json:"event_type"`
	Command      string        `json:"command,omitempty"`
	Dialect      string        `json:"dialect,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Error        string        `json:"error,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	Version      string        `json:"version"`
	OS           string        `json:"os"`
	Architecture string        `json:"architecture"`
}

// Collector batches events and posts them in the background.
type Collector struct {
	mu        sync.Mutex
	enabled   bool
	endpoint  string
	version   string
	batchSize int
	events    []Event
	client    *http.Client
}

var (
	collector *Collector
	once      sync.Once
)

// Init sets up the global collector. Enabled is the caller's opt-in
// decision; environment opt-outs still win.
func Init(version string, enabled bool) {
	once.Do(func() {
		collector = &Collector{
			enabled:   enabled && !disabledByEnv(),
			endpoint:  endpoint(),
			version:   version,
			batchSize: 10,
			client:    &http.Client{Timeout: 5 * time.Second},
		}
	})
}

func disabledByEnv() bool {
	return os.Getenv("SQLFORGE_TELEMETRY_DISABLED") != "" || os.Getenv("DO_NOT_TRACK") != ""
}

func endpoint() string {
	if ep := os.Getenv("SQLFORGE_TELEMETRY_ENDPOINT"); ep != "" {
		return ep
	}
	return "https://telemetry.sqlforge.dev/v1/events"
}

// RecordCommand records a command run with its outcome.
func RecordCommand(command, dialect string, duration time.Duration, err error) {
	if collector == nil || !collector.enabled {
		return
	}
	event := Event{
		EventType:    "command",
		Command:      command,
		Dialect:      dialect,
		Duration:     duration,
		Timestamp:    time.Now(),
		Version:      collector.version,
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
	if err != nil {
		event.Error = err.Error()
	}
	collector.record(event)
}

func (c *Collector) record(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	full := len(c.events) >= c.batchSize
	c.mu.Unlock()
	if full {
		go c.Flush()
	}
}

// Flush sends any batched events. Safe to call at process exit.
func (c *Collector) Flush() {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return
	}
	events := make([]Event, len(c.events))
	copy(events, c.events)
	c.events = c.events[:0]
	c.mu.Unlock()

	c.send(events)
}

// Shutdown flushes the global collector.
func Shutdown() {
	if collector != nil && collector.enabled {
		collector.Flush()
	}
}

func (c *Collector) send(events []Event) {
	payload, err := json.Marshal(map[string]interface{}{"events": events})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("sqlforge/%s", c.version))

	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
