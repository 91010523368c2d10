package connectivity

import (
	"context"
	"sync"
	"time"
)

// Prober answers whether the backend is alive right now.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor folds two signals into one reachability value: network presence
// (fed in via SetOnline) and backend liveness (a periodic heartbeat against
// the Prober). Reachable is the AND of both.
//
// Subscribers are told about changes only. A false→true change is the
// reachability edge that triggers a sync; steady-state true produces no
// further notifications, so there are no redundant sync storms.
type Monitor struct {
	mu        sync.Mutex
	prober    Prober
	interval  time.Duration
	online    bool
	alive     bool
	reachable bool
	subs      []func(reachable bool)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMonitor builds a stopped monitor. Network presence starts true, the
// backend starts unknown (not alive), so nothing is reachable until the
// first heartbeat succeeds.
func NewMonitor(p Prober, interval time.Duration) *Monitor {
	return &Monitor{
		prober:   p,
		interval: interval,
		online:   true,
		stop:     make(chan struct{}),
	}
}

// Notify registers a callback invoked whenever the combined signal changes.
// Register before Start.
func (m *Monitor) Notify(fn func(reachable bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Monitor) Reachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

// SetOnline feeds the platform's network-presence signal in.
func (m *Monitor) SetOnline(online bool) {
	m.recompute(func() { m.online = online })
}

// Probe runs one heartbeat cycle immediately.
func (m *Monitor) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.prober.Ping(ctx)
	m.recompute(func() { m.alive = err == nil })
}

// Start begins the heartbeat loop, probing once right away so reachability
// is known at startup. Stop with Stop or by cancelling ctx.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		m.Probe(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Probe(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// recompute applies a signal change and fires subscribers if the combined
// value moved. Callbacks run outside the lock, they are free to call back
// into the monitor.
func (m *Monitor) recompute(apply func()) {
	m.mu.Lock()
	apply()
	combined := m.online && m.alive
	changed := combined != m.reachable
	m.reachable = combined
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(combined)
	}
}
