package runtime

import "time"

// Metrics receives scheduler events. Implementations must be safe for
// concurrent use: the producers and the consumer report from different goroutines.
type Metrics interface {
	MessageReceived(msgType string)
	MessageSent(msgType string)
	ObserveHandle(msgType string, d time.Duration)
	RecordGossipSent()
	RecordGossipSuppressed()
	RecordTick()
	RecordTickDropped()
	SetQueueDepth(n int)
	SetStateSize(n int)
}

type nopMetrics struct{}

func (nopMetrics) MessageReceived(string)              {}
func (nopMetrics) MessageSent(string)                  {}
func (nopMetrics) ObserveHandle(string, time.Duration) {}
func (nopMetrics) RecordGossipSent()                   {}
func (nopMetrics) RecordGossipSuppressed()             {}
func (nopMetrics) RecordTick()                         {}
func (nopMetrics) RecordTickDropped()                  {}
func (nopMetrics) SetQueueDepth(int)                   {}
func (nopMetrics) SetStateSize(int)                    {}
