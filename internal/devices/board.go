// Package devices keeps the dashboard's device list and applies on/off
// toggles optimistically.
package devices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
)

var (
	// ErrUnknownDevice is returned by Begin for an id not on the board.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrPending is returned by Begin while a toggle for the device is in flight.
	ErrPending = errors.New("toggle already pending")
)

// Remote is the slice of the API the board needs.
type Remote interface {
	ListDevices(ctx context.Context) ([]api.Device, error)
	SetDeviceStatus(ctx context.Context, id api.ID, status api.Status) error
}

// Observer is notified whenever a toggle settles.
type Observer interface {
	ToggleCompleted(id api.ID, target api.Status, rolledBack bool, err error)
}

// Device is a device row as the UI sees it.
type Device struct {
	api.Device
	Pending bool
}

// Snapshot is an immutable copy of the board.
type Snapshot struct {
	Devices   []Device
	Loading   bool
	Loaded    bool
	LastError error
	Updated   time.Time
}

// Empty reports a successful load that returned no devices.
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Devices) == 0
}

// Find returns the device with id.
func (s Snapshot) Find(id api.ID) (Device, bool) {
	for _, d := range s.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// Board owns the device list of one view. Each toggle snapshots only the
// record it changes and tags it with a per-device version; a failed toggle
// restores that record only if nothing newer has written it since, so
// concurrent toggles of different devices never undo each other.
type Board struct {
	remote   Remote
	log      *zap.Logger
	observer Observer

	mu       sync.Mutex
	devices  []api.Device
	pending  map[api.ID]bool
	versions map[api.ID]uint64
	loading  bool
	loaded   bool
	err      error
	updated  time.Time
}

// Option customizes a Board.
type Option func(*Board)

// WithLogger sets the logger used for failed loads and rollbacks.
func WithLogger(l *zap.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

// WithObserver registers a toggle observer.
func WithObserver(o Observer) Option {
	return func(b *Board) {
		b.observer = o
	}
}

// NewBoard returns an empty board backed by remote.
func NewBoard(remote Remote, opts ...Option) *Board {
	b := &Board{
		remote:   remote,
		log:      zap.NewNop(),
		pending:  make(map[api.ID]bool),
		versions: make(map[api.ID]uint64),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Load fetches the device list. On failure the previous list stays visible
// and the error is recorded.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	devices, err := b.remote.ListDevices(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	b.updated = time.Now()
	if err != nil {
		b.err = err
		b.log.Warn("device list load failed", zap.Error(err))
		return fmt.Errorf("load devices: %w", err)
	}

	b.devices = make([]api.Device, len(devices))
	copy(b.devices, devices)
	for _, d := range b.devices {
		// Server state supersedes any optimistic write still in flight.
		b.versions[d.ID]++
	}
	b.loaded = true
	b.err = nil
	return nil
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Devices: make([]Device, len(b.devices)),
		Loading: b.loading,
		Loaded:  b.loaded,
		Updated: b.updated,
	}
	for i, d := range b.devices {
		snap.Devices[i] = Device{Device: d, Pending: b.pending[d.ID]}
	}
	if b.err != nil {
		snap.LastError = fmt.Errorf("%w", b.err)
	}
	return snap
}

// Toggle is an optimistic status change awaiting remote confirmation.
type Toggle struct {
	board   *Board
	ID      api.ID
	Target  api.Status
	prev    api.Status
	version uint64
	once    sync.Once
}

// Begin applies the complement of the device's status locally and marks it
// pending. The change is visible in Snapshot before the remote call starts.
func (b *Board) Begin(id api.ID) (*Toggle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return nil, ErrUnknownDevice
	}
	if b.pending[id] {
		return nil, ErrPending
	}

	prev := b.devices[idx].Status
	target := prev.Toggled()
	b.versions[id]++
	b.devices[idx].Status = target
	b.pending[id] = true

	return &Toggle{
		board:   b,
		ID:      id,
		Target:  target,
		prev:    prev,
		version: b.versions[id],
	}, nil
}

// Commit sends the command and settles the toggle. On failure the device's
// previous status is restored. Commit is effective once; later calls
// return nil without side effects.
func (t *Toggle) Commit(ctx context.Context) error {
	var err error
	t.once.Do(func() {
		err = t.board.remote.SetDeviceStatus(ctx, t.ID, t.Target)
		t.board.settle(t, err)
	})
	return err
}

// Toggle flips the device and waits for the remote result. Unknown and
// already pending devices are a silent no-op.
func (b *Board) Toggle(ctx context.Context, id api.ID) error {
	t, err := b.Begin(id)
	if errors.Is(err, ErrUnknownDevice) || errors.Is(err, ErrPending) {
		return nil
	}
	if err != nil {
		return err
	}
	return t.Commit(ctx)
}

func (b *Board) settle(t *Toggle, err error) {
	b.mu.Lock()
	rolledBack := false
	func() {
		defer delete(b.pending, t.ID)
		if err == nil {
			return
		}
		if b.versions[t.ID] != t.version {
			return
		}
		if idx := b.indexOf(t.ID); idx >= 0 {
			b.devices[idx].Status = t.prev
			b.versions[t.ID]++
			rolledBack = true
		}
	}()
	b.mu.Unlock()

	if err != nil {
		b.log.Warn("device toggle failed",
			zap.String("device", t.ID.String()),
			zap.String("target", string(t.Target)),
			zap.Bool("rolled_back", rolledBack),
			zap.Error(err),
		)
	}
	if b.observer != nil {
		b.observer.ToggleCompleted(t.ID, t.Target, rolledBack, err)
	}
}

func (b *Board) indexOf(id api.ID) int {
	for i, d := range b.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}
