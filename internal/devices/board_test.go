package devices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson6926/iotdash/internal/api"
)

type fakeRemote struct {
	mu      sync.Mutex
	devices []api.Device
	listErr error
	calls   []string
	// gates holds one channel per device; SetDeviceStatus blocks on it when present.
	gates   map[api.ID]chan error
	setErrs map[api.ID]error
}

func (f *fakeRemote) ListDevices(context.Context) ([]api.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Device(nil), f.devices...), nil
}

func (f *fakeRemote) SetDeviceStatus(_ context.Context, id api.ID, status api.Status) error {
	f.mu.Lock()
	f.calls = append(f.calls, id.String()+"="+string(status))
	gate := f.gates[id]
	err := f.setErrs[id]
	f.mu.Unlock()
	if gate != nil {
		return <-gate
	}
	return err
}

type recordingObserver struct {
	mu      sync.Mutex
	settled []bool
}

func (r *recordingObserver) ToggleCompleted(_ api.ID, _ api.Status, rolledBack bool, _ error) {
	r.mu.Lock()
	r.settled = append(r.settled, rolledBack)
	r.mu.Unlock()
}

func loadedBoard(t *testing.T, remote *fakeRemote, opts ...Option) *Board {
	t.Helper()
	b := NewBoard(remote, opts...)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func status(t *testing.T, b *Board, id api.ID) Device {
	t.Helper()
	d, ok := b.Snapshot().Find(id)
	require.True(t, ok, "device %s missing", id)
	return d
}

func TestBoard_LoadAndEmpty(t *testing.T) {
	b := NewBoard(&fakeRemote{})
	assert.False(t, b.Snapshot().Empty(), "not loaded yet")

	require.NoError(t, b.Load(context.Background()))
	snap := b.Snapshot()
	assert.True(t, snap.Loaded)
	assert.True(t, snap.Empty())
	assert.NotNil(t, snap.Devices)
}

func TestBoard_LoadFailureKeepsList(t *testing.T) {
	remote := &fakeRemote{devices: []api.Device{{ID: "1", Name: "Fan", Status: api.StatusOff}}}
	b := loadedBoard(t, remote)

	remote.listErr = errors.New("connection refused")
	err := b.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.listErr)

	snap := b.Snapshot()
	require.Len(t, snap.Devices, 1)
	assert.ErrorIs(t, snap.LastError, remote.listErr)
	assert.False(t, snap.Loading)
}

func TestBoard_ToggleAppliesOptimisticallyAndRollsBack(t *testing.T) {
	gate := make(chan error, 1)
	remote := &fakeRemote{
		devices: []api.Device{{ID: "1", Name: "Fan", Status: api.StatusOff}},
		gates:   map[api.ID]chan error{"1": gate},
	}
	obs := &recordingObserver{}
	b := loadedBoard(t, remote, WithObserver(obs))
	before := status(t, b, "1")

	tg, err := b.Begin("1")
	require.NoError(t, err)
	assert.Equal(t, api.StatusOn, tg.Target)

	during := status(t, b, "1")
	assert.Equal(t, api.StatusOn, during.Status, "change must be visible before the remote call")
	assert.True(t, during.Pending)

	_, err = b.Begin("1")
	assert.ErrorIs(t, err, ErrPending)

	boom := errors.New("relay offline")
	gate <- boom
	require.ErrorIs(t, tg.Commit(context.Background()), boom)

	after := status(t, b, "1")
	assert.Equal(t, before, after)
	assert.False(t, after.Pending)
	assert.Equal(t, []bool{true}, obs.settled)
	assert.Equal(t, []string{"1=on"}, remote.calls)

	assert.NoError(t, tg.Commit(context.Background()), "second commit is inert")
	assert.Len(t, remote.calls, 1)
}

func TestBoard_ToggleSuccessKeepsNewStatus(t *testing.T) {
	remote := &fakeRemote{devices: []api.Device{{ID: "7", Name: "Lamp", Status: api.StatusOn}}}
	b := loadedBoard(t, remote)

	require.NoError(t, b.Toggle(context.Background(), "7"))
	d := status(t, b, "7")
	assert.Equal(t, api.StatusOff, d.Status)
	assert.False(t, d.Pending)
	assert.Equal(t, []string{"7=off"}, remote.calls)
}

func TestBoard_ToggleUnknownIsNoop(t *testing.T) {
	remote := &fakeRemote{devices: []api.Device{{ID: "1", Status: api.StatusOff}}}
	b := loadedBoard(t, remote)

	_, err := b.Begin("missing")
	assert.ErrorIs(t, err, ErrUnknownDevice)
	assert.NoError(t, b.Toggle(context.Background(), "missing"))
	assert.Empty(t, remote.calls)
	assert.Equal(t, api.StatusOff, status(t, b, "1").Status)
}

func TestBoard_UnknownStatusTogglesOn(t *testing.T) {
	remote := &fakeRemote{devices: []api.Device{{ID: "1", Status: "standby"}}}
	b := loadedBoard(t, remote)

	require.NoError(t, b.Toggle(context.Background(), "1"))
	assert.Equal(t, api.StatusOn, status(t, b, "1").Status)
}

func TestBoard_ConcurrentTogglesRollBackIndependently(t *testing.T) {
	gateA := make(chan error, 1)
	gateB := make(chan error, 1)
	remote := &fakeRemote{
		devices: []api.Device{
			{ID: "a", Name: "Fan", Status: api.StatusOff},
			{ID: "b", Name: "Lamp", Status: api.StatusOff},
		},
		gates: map[api.ID]chan error{"a": gateA, "b": gateB},
	}
	b := loadedBoard(t, remote)

	ta, err := b.Begin("a")
	require.NoError(t, err)
	tb, err := b.Begin("b")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = ta.Commit(context.Background()) }()
	go func() { defer wg.Done(); _ = tb.Commit(context.Background()) }()

	// B succeeds first, then A fails: A's rollback must not undo B.
	gateB <- nil
	require.Eventually(t, func() bool { return !status(t, b, "b").Pending }, time.Second, 5*time.Millisecond)
	gateA <- errors.New("timeout")
	wg.Wait()

	snap := b.Snapshot()
	a, _ := snap.Find("a")
	bb, _ := snap.Find("b")
	assert.Equal(t, api.StatusOff, a.Status)
	assert.Equal(t, api.StatusOn, bb.Status)
	assert.False(t, a.Pending)
	assert.False(t, bb.Pending)
}

func TestBoard_ReloadSupersedesRollback(t *testing.T) {
	gate := make(chan error, 1)
	remote := &fakeRemote{
		devices: []api.Device{{ID: "1", Status: api.StatusOff}},
		gates:   map[api.ID]chan error{"1": gate},
	}
	b := loadedBoard(t, remote)

	tg, err := b.Begin("1")
	require.NoError(t, err)

	// Someone else switched it on; a reload lands while our toggle is in flight.
	remote.mu.Lock()
	remote.devices = []api.Device{{ID: "1", Status: api.StatusOn}}
	remote.mu.Unlock()
	require.NoError(t, b.Load(context.Background()))

	gate <- errors.New("conflict")
	require.Error(t, tg.Commit(context.Background()))

	d := status(t, b, "1")
	assert.Equal(t, api.StatusOn, d.Status, "rollback must not overwrite newer server state")
	assert.False(t, d.Pending)
}

func TestBoard_SnapshotIsIndependent(t *testing.T) {
	remote := &fakeRemote{devices: []api.Device{{ID: "1", Name: "Fan", Status: api.StatusOff}}}
	b := loadedBoard(t, remote)

	snap := b.Snapshot()
	snap.Devices[0].Name = "changed"
	assert.Equal(t, "Fan", b.Snapshot().Devices[0].Name)

	remote.devices[0].Name = "server changed"
	assert.Equal(t, "Fan", b.Snapshot().Devices[0].Name)
}
