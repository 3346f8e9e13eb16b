package runtime

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is an output sink safe to read while the runtime writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// wireMessage is an outbound line decoded without a registry.
type wireMessage struct {
	Src  string         `json:"src"`
	Dest string         `json:"dest"`
	Body map[string]any `json:"body"`
}

func (m wireMessage) typ() string {
	s, _ := m.Body["type"].(string)
	return s
}

func (m wireMessage) num(key string) (int, bool) {
	f, ok := m.Body[key].(float64)
	return int(f), ok
}

func parseOutput(t *testing.T, out string) []wireMessage {
	t.Helper()
	var msgs []wireMessage
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var m wireMessage
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("output line %q is not JSON: %v", line, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// countingMetrics records scheduler events for assertions.
type countingMetrics struct {
	mu       sync.Mutex
	received map[string]int
	sent     map[string]int
	gossip   int
	limited  int
	ticks    int
	dropped  int
	state    int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{received: map[string]int{}, sent: map[string]int{}}
}

func (m *countingMetrics) MessageReceived(typ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received[typ]++
}

func (m *countingMetrics) MessageSent(typ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[typ]++
}

func (m *countingMetrics) ObserveHandle(string, time.Duration) {}

func (m *countingMetrics) RecordGossipSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gossip++
}

func (m *countingMetrics) RecordGossipSuppressed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limited++
}

func (m *countingMetrics) RecordTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
}

func (m *countingMetrics) RecordTickDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *countingMetrics) SetQueueDepth(int) {}

func (m *countingMetrics) SetStateSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = n
}

type metricsSnapshot struct {
	gossip  int
	limited int
	ticks   int
	dropped int
	state   int
}

func (m *countingMetrics) snapshot() metricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return metricsSnapshot{gossip: m.gossip, limited: m.limited, ticks: m.ticks, dropped: m.dropped, state: m.state}
}
