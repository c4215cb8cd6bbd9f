package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/envwatch/envwatch/internal/config"
	"github.com/envwatch/envwatch/internal/domain/alert"
	"github.com/envwatch/envwatch/internal/domain/check"
	"github.com/envwatch/envwatch/internal/store"
)

type scriptedProber struct {
	mu       sync.Mutex
	outcomes []Outcome
	calls    int
}

func (p *scriptedProber) Probe(_ context.Context, _ string, _ time.Duration) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.outcomes[len(p.outcomes)-1]
	if p.calls < len(p.outcomes) {
		out = p.outcomes[p.calls]
	}
	p.calls++
	out.Timestamp = time.Now().UnixMilli()
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []alert.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev alert.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) all() []alert.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]alert.Event(nil), n.events...)
}

type flakyLog struct {
	mu       sync.Mutex
	failing  bool
	inserted int
}

func (l *flakyLog) Insert(_ context.Context, _ check.Result, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing {
		return errors.New("connection reset")
	}
	l.inserted++
	return nil
}

func (l *flakyLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inserted
}

func testMonitor(name string) config.Monitor {
	return config.Monitor{
		Name:      name,
		Host:      "http://svc.local/health",
		Interval:  time.Millisecond,
		Threshold: 500 * time.Millisecond,
		Channels:  []string{"http://hooks.local/ops"},
	}
}

func runUntil(t *testing.T, r *Runner, done func() bool) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for !done() {
		select {
		case err := <-errCh:
			return err
		case <-deadline:
			t.Fatal("runner did not make progress in time")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	return <-errCh
}

func TestRunner_NotifiesOnEdgesOnly(t *testing.T) {
	outage := Outcome{Success: false, Duration: 50, RawStatus: "500"}
	healthy := Outcome{Success: true, Duration: 50, RawStatus: "200"}

	prober := &scriptedProber{outcomes: []Outcome{outage, healthy, outage, outage}}
	notifier := &recordingNotifier{}
	index := store.NewMemory(0)
	history := &flakyLog{}

	r := NewRunner(zap.NewNop(), testMonitor("api"), prober, index, history,
		notifier, NewMetricsWith(prometheus.NewRegistry()))

	err := runUntil(t, r, func() bool { return index.Len() >= 4 })
	require.ErrorIs(t, err, context.Canceled)

	events := notifier.all()
	require.GreaterOrEqual(t, len(events), 3)
	assert.False(t, events[0].Healthy)
	assert.Equal(t, "api unhealthy: status 500 after 50 ms", events[0].Text())
	assert.True(t, events[1].Healthy)
	assert.Equal(t, "api healthy: status 200 after 50 ms", events[1].Text())
	assert.False(t, events[2].Healthy)
	// the repeated failure after the third probe is not an edge
	assert.Len(t, events, 3)
}

func TestRunner_HistoryFailureDoesNotStopLoop(t *testing.T) {
	prober := &scriptedProber{outcomes: []Outcome{{Success: true, Duration: 10, RawStatus: "200"}}}
	index := store.NewMemory(0)
	history := &flakyLog{failing: true}

	r := NewRunner(zap.NewNop(), testMonitor("api"), prober, index, history,
		&recordingNotifier{}, NewMetricsWith(prometheus.NewRegistry()))

	err := runUntil(t, r, func() bool { return index.Len() >= 3 })
	require.ErrorIs(t, err, context.Canceled)

	assert.GreaterOrEqual(t, index.Len(), 3)
	assert.Zero(t, history.count())
}

func TestRunner_IndexFailureIsFatal(t *testing.T) {
	prober := &scriptedProber{outcomes: []Outcome{{Success: true, Duration: 10, RawStatus: "200"}}}
	index := store.NewMemory(2)
	history := &flakyLog{}

	r := NewRunner(zap.NewNop(), testMonitor("api"), prober, index, history,
		&recordingNotifier{}, NewMetricsWith(prometheus.NewRegistry()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := r.Run(ctx)

	require.ErrorIs(t, err, store.ErrExhausted)
	assert.Equal(t, 2, index.Len())
}

func TestRunner_RecordsCarryMonitorName(t *testing.T) {
	prober := &scriptedProber{outcomes: []Outcome{{Success: true, Duration: 42, RawStatus: "200"}}}
	index := store.NewMemory(0)

	r := NewRunner(zap.NewNop(), testMonitor("staging"), prober, index, &flakyLog{},
		&recordingNotifier{}, NewMetricsWith(prometheus.NewRegistry()))

	err := runUntil(t, r, func() bool { return index.Len() >= 1 })
	require.ErrorIs(t, err, context.Canceled)

	latest, err := index.Latest()
	require.NoError(t, err)
	assert.Equal(t, "staging", latest.Environment)
	assert.Equal(t, int64(42), latest.Duration)
	assert.True(t, latest.Success)
}
