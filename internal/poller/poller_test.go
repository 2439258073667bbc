package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/sensor"
)

type fakeSource struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	fn       func(ctx context.Context, call int, n int) ([]api.SensorSample, error)
}

func (f *fakeSource) LatestSensorData(ctx context.Context, n int) ([]api.SensorSample, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	call := int(f.calls.Add(1))
	return f.fn(ctx, call, n)
}

type recordingObserver struct {
	mu     sync.Mutex
	cycles []error
}

func (r *recordingObserver) PollCompleted(_ string, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	r.cycles = append(r.cycles, err)
	r.mu.Unlock()
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cycles)
}

func temp(v float64) *float64 { return &v }

func sample(id string, at time.Time) api.SensorSample {
	return api.SensorSample{ID: api.ID(id), CreatedAt: api.Timestamp{Time: at}, Temperature: temp(20), Humidity: temp(50)}
}

func TestPoller_FetchesImmediatelyOnStart(t *testing.T) {
	src := &fakeSource{fn: func(context.Context, int, int) ([]api.SensorSample, error) {
		return []api.SensorSample{sample("1", time.Now())}, nil
	}}
	w := sensor.NewWindow(10)
	p := New("dashboard", src, w, WithInterval(time.Hour))
	p.Start(context.Background())
	t.Cleanup(p.Stop)

	require.Eventually(t, func() bool {
		return w.Snapshot().State == sensor.StatePopulated
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Same(t, w, p.Window())
}

func TestPoller_RequestsWindowLimit(t *testing.T) {
	var gotN atomic.Int32
	src := &fakeSource{fn: func(_ context.Context, _ int, n int) ([]api.SensorSample, error) {
		gotN.Store(int32(n))
		return nil, nil
	}}
	p := New("sensor", src, sensor.NewWindow(sensor.SensorViewWindow), WithInterval(time.Hour))
	p.Start(context.Background())
	t.Cleanup(p.Stop)

	require.Eventually(t, func() bool { return gotN.Load() == sensor.SensorViewWindow }, time.Second, 5*time.Millisecond)
}

func TestPoller_SequentialAndSurvivesFailures(t *testing.T) {
	src := &fakeSource{fn: func(_ context.Context, call int, _ int) ([]api.SensorSample, error) {
		time.Sleep(2 * time.Millisecond)
		if call%2 == 1 {
			return nil, errors.New("gateway timeout")
		}
		return []api.SensorSample{sample("ok", time.Now())}, nil
	}}
	obs := &recordingObserver{}
	w := sensor.NewWindow(10)
	p := New("dashboard", src, w, WithInterval(time.Millisecond), WithObserver(obs))
	p.Start(context.Background())

	require.Eventually(t, func() bool { return obs.count() >= 6 }, 2*time.Second, 5*time.Millisecond)
	p.Stop()
	<-p.Done()

	assert.Equal(t, int32(1), src.maxSeen.Load(), "fetches must never overlap")
	snap := w.Snapshot()
	assert.NotEmpty(t, snap.Samples, "a failed cycle must not stop the loop")

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Error(t, obs.cycles[0])
	assert.NoError(t, obs.cycles[1])
}

func TestPoller_StopDiscardsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{fn: func(context.Context, int, int) ([]api.SensorSample, error) {
		close(started)
		<-release // ignores ctx to simulate a response that lands late
		return []api.SensorSample{sample("late", time.Now())}, nil
	}}

	w := sensor.NewWindow(10)
	p := New("dashboard", src, w, WithInterval(time.Hour))
	p.Start(context.Background())

	<-started
	before := w.Snapshot()
	p.Stop()
	close(release)

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller goroutine did not exit after stop")
	}

	after := w.Snapshot()
	assert.Empty(t, after.Samples)
	assert.False(t, after.Loaded)
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPoller_StopCancelsPendingTimer(t *testing.T) {
	src := &fakeSource{fn: func(context.Context, int, int) ([]api.SensorSample, error) {
		return nil, nil
	}}
	p := New("dashboard", src, sensor.NewWindow(10), WithInterval(time.Hour))
	p.Start(context.Background())

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("pending timer kept the poller alive")
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPoller_ParentContextEndsLoop(t *testing.T) {
	src := &fakeSource{fn: func(context.Context, int, int) ([]api.SensorSample, error) {
		return nil, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	p := New("dashboard", src, sensor.NewWindow(10), WithInterval(time.Hour))
	p.Start(ctx)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller ignored parent cancellation")
	}
}

func TestPoller_StartAfterStopIsNoop(t *testing.T) {
	src := &fakeSource{fn: func(context.Context, int, int) ([]api.SensorSample, error) {
		return nil, nil
	}}
	p := New("dashboard", src, sensor.NewWindow(10))
	p.Stop()
	p.Start(context.Background())

	select {
	case <-p.Done():
	default:
		t.Fatal("Done should be closed when stopped before start")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), src.calls.Load())

	p.Stop() // idempotent
}
