package netplay

import (
	"sync"
	"time"
)

// Health is the connection indicator derived from heartbeat traffic.
type Health string

const (
	HealthConnected    Health = "connected"
	HealthUnstable     Health = "unstable"
	HealthDisconnected Health = "disconnected"
)

// latencyWeight is the share of a new round-trip sample in the smoothed latency.
const latencyWeight = 0.2

// monitor tracks when the peer was last heard from and the smoothed round trip.
type monitor struct {
	unstableAfter     time.Duration
	disconnectedAfter time.Duration
	now               func() time.Time

	mu       sync.Mutex
	lastSeen time.Time
	latency  time.Duration
}

func newMonitor(unstable, disconnected time.Duration, now func() time.Time) *monitor {
	return &monitor{unstableAfter: unstable, disconnectedAfter: disconnected, now: now, lastSeen: now()}
}

// Seen records traffic from the peer.
func (m *monitor) Seen() {
	m.mu.Lock()
	m.lastSeen = m.now()
	m.mu.Unlock()
}

// Pong records a heartbeat answer to a ping sent at sent.
func (m *monitor) Pong(sent time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.lastSeen = now
	rtt := now.Sub(sent)
	if rtt < 0 {
		return
	}
	if m.latency == 0 {
		m.latency = rtt
		return
	}
	m.latency = time.Duration(float64(m.latency)*(1-latencyWeight) + float64(rtt)*latencyWeight)
}

func (m *monitor) Health() Health {
	m.mu.Lock()
	defer m.mu.Unlock()

	silent := m.now().Sub(m.lastSeen)
	switch {
	case silent <= m.unstableAfter:
		return HealthConnected
	case silent <= m.disconnectedAfter:
		return HealthUnstable
	default:
		return HealthDisconnected
	}
}

func (m *monitor) Latency() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latency
}
