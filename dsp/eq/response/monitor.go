package response

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/eq"
)

// DefaultInterval is how often a Monitor polls the parameter store.
const DefaultInterval = 60 * time.Millisecond

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithPoints sets the curve resolution.
func WithPoints(n int) MonitorOption {
	return func(m *Monitor) {
		if n >= 2 {
			m.points = n
		}
	}
}

// WithFrequencyRange sets the curve's frequency span.
func WithFrequencyRange(lo, hi float64) MonitorOption {
	return func(m *Monitor) {
		if lo > 0 && hi > lo {
			m.minFreq, m.maxFreq = lo, hi
		}
	}
}

// WithUpdateFunc registers fn to be called on the monitor goroutine after
// each published curve. fn must not retain or modify the curve.
func WithUpdateFunc(fn func(*Curve)) MonitorOption {
	return func(m *Monitor) {
		m.onUpdate = fn
	}
}

// Monitor keeps a display curve in sync with a parameter store. It owns a
// display-only chain, so it never touches the audio path's filter state.
type Monitor struct {
	store      *eq.ParameterStore
	sampleRate float64

	interval         time.Duration
	points           int
	minFreq, maxFreq float64
	onUpdate         func(*Curve)

	chain   *eq.ChannelChain
	current atomic.Pointer[Curve]
	updates atomic.Uint64
	running atomic.Bool
}

// NewMonitor returns a monitor for store at sampleRate.
func NewMonitor(store *eq.ParameterStore, sampleRate float64, opts ...MonitorOption) (*Monitor, error) {
	if store == nil {
		return nil, eq.ErrNilStore
	}
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("response: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	m := &Monitor{
		store:      store,
		sampleRate: sampleRate,
		interval:   DefaultInterval,
		points:     DefaultPoints,
		minFreq:    DefaultMinFreq,
		maxFreq:    DefaultMaxFreq,
		chain:      eq.NewChannelChain(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.chain.Prepare(sampleRate, 1)

	return m, nil
}

// Refresh recomputes the curve from the current store contents and
// publishes it, whether or not anything changed.
func (m *Monitor) Refresh() *Curve {
	m.chain.Update(m.store.Snapshot(), m.sampleRate)

	c := NewCurve(m.points, m.minFreq, m.maxFreq)
	c.Compute(m.chain, m.sampleRate)

	m.current.Store(c)
	m.updates.Add(1)

	if m.onUpdate != nil {
		m.onUpdate(c)
	}

	return c
}

// Poll refreshes the curve if the store changed since the last poll.
func (m *Monitor) Poll() bool {
	if !m.store.ConsumeChange() {
		return false
	}

	m.Refresh()
	return true
}

// Run publishes an initial curve, then polls every interval until ctx is
// done. It returns ctx.Err(). Only one Run may be active per monitor.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	defer m.running.Store(false)

	m.store.MarkClean()
	m.Refresh()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Poll()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Curve returns the last published curve, or nil before the first refresh.
// The returned curve is immutable.
func (m *Monitor) Curve() *Curve {
	return m.current.Load()
}

// Updates returns how many curves have been published.
func (m *Monitor) Updates() uint64 {
	return m.updates.Load()
}

// SampleRate returns the rate the curve is evaluated at.
func (m *Monitor) SampleRate() float64 {
	return m.sampleRate
}
