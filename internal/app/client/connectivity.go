package client

import (
	"context"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"
)

// Probe checks whether the authority server is reachable right now.
type Probe interface {
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Check(ctx context.Context) error { return f(ctx) }

// Monitor polls the probe and publishes state transitions on a channel.
// Consumers see a notification only when the state actually flips, never on
// every poll, so a device that stays online does not trigger redundant work.
type Monitor struct {
	probe    Probe
	log      *slog.Logger
	interval time.Duration

	mu          gosync.RWMutex
	connected   bool
	transitions chan bool
}

func NewMonitor(probe Probe, log *slog.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		probe:       probe,
		log:         log,
		interval:    interval,
		transitions: make(chan bool, 1),
	}
}

// IsConnected returns the last observed state. The monitor starts offline
// until the first successful probe.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Transitions delivers the new state after each flip. The channel is buffered
// and sends are non-blocking: a slow consumer misses intermediate flips but
// always learns the latest state on its next receive.
func (m *Monitor) Transitions() <-chan bool {
	return m.transitions
}

// Run polls until the context is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	m.setState(m.probe.Check(probeCtx) == nil)
}

func (m *Monitor) setState(connected bool) {
	m.mu.Lock()
	changed := m.connected != connected
	m.connected = connected
	m.mu.Unlock()

	if !changed {
		return
	}

	m.log.Info("connectivity changed", "connected", connected)
	select {
	case m.transitions <- connected:
	default:
		// Consumer is behind; drain the stale notification and replace it.
		select {
		case <-m.transitions:
		default:
		}
		select {
		case m.transitions <- connected:
		default:
		}
	}
}
