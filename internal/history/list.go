// Package history keeps one server-paginated table per view: the device
// action log and the voice command log.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/paging"
)

// Fetcher retrieves one page from the server.
type Fetcher[T any] func(ctx context.Context, page, size int) (api.Page[T], error)

// Observer is notified after every page fetch that was applied.
type Observer interface {
	PageFetched(list string, page int, elapsed time.Duration, err error)
}

// Snapshot is an immutable copy of a list.
type Snapshot[T any] struct {
	Items     []T
	Page      paging.State
	Loading   bool
	Loaded    bool
	LastError error
}

// Empty reports a successful load of a collection with no rows.
func (s Snapshot[T]) Empty() bool {
	return s.Loaded && s.Page.Empty() && len(s.Items) == 0
}

// List is the client-side state of one paginated collection. Pages are not
// cached; every page change is a new round trip. Only the response to the
// most recent request is applied.
type List[T any] struct {
	name     string
	fetch    Fetcher[T]
	log      *zap.Logger
	observer Observer

	mu      sync.Mutex
	page    paging.State
	items   []T
	loading bool
	loaded  bool
	err     error
	seq     uint64
	closed  bool
}

// Option customizes a List.
type Option func(*options)

type options struct {
	log      *zap.Logger
	observer Observer
}

// WithLogger sets the logger used for failed fetches.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver registers a fetch observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// NewList returns a list positioned on page 1. name labels logs and metrics.
func NewList[T any](name string, fetch Fetcher[T], pageSize int, opts ...Option) *List[T] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &List[T]{
		name:     name,
		fetch:    fetch,
		log:      o.log,
		observer: o.observer,
		page:     paging.New(pageSize),
	}
}

// Load fetches the current page.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	page, size := l.page.Page, l.page.PageSize
	seq := l.begin()
	l.mu.Unlock()

	return l.run(ctx, seq, page, size)
}

// GoTo moves to page p and fetches it. Out-of-range pages and the current
// page are ignored. The page number changes even if the fetch fails; the
// previous rows stay visible next to the error.
func (l *List[T]) GoTo(ctx context.Context, p int) error {
	return l.move(ctx, func(paging.State) int { return p })
}

// Next moves one page forward from the live page, so calls issued before
// the previous fetch settled still advance.
func (l *List[T]) Next(ctx context.Context) error {
	return l.move(ctx, func(s paging.State) int { return s.Page + 1 })
}

// Prev moves one page back from the live page.
func (l *List[T]) Prev(ctx context.Context) error {
	return l.move(ctx, func(s paging.State) int { return s.Page - 1 })
}

// Last moves to the last known page.
func (l *List[T]) Last(ctx context.Context) error {
	return l.move(ctx, func(s paging.State) int { return s.TotalPages })
}

// move picks the target page and claims it under one lock.
func (l *List[T]) move(ctx context.Context, target func(paging.State) int) error {
	l.mu.Lock()
	p := target(l.page)
	if l.closed || !l.page.CanGo(p) {
		l.mu.Unlock()
		return nil
	}
	l.page.Page = p
	size := l.page.PageSize
	seq := l.begin()
	l.mu.Unlock()

	return l.run(ctx, seq, p, size)
}

// Close discards every response still in flight and turns later calls into
// no-ops. Views call it on unmount.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.seq++
	l.loading = false
	l.mu.Unlock()
}

// Snapshot returns a copy of the list.
func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot[T]{
		Items:   make([]T, len(l.items)),
		Page:    l.page,
		Loading: l.loading,
		Loaded:  l.loaded,
	}
	copy(snap.Items, l.items)
	if l.err != nil {
		snap.LastError = fmt.Errorf("%w", l.err)
	}
	return snap
}

// begin must be called with mu held.
func (l *List[T]) begin() uint64 {
	l.seq++
	l.loading = true
	return l.seq
}

func (l *List[T]) run(ctx context.Context, seq uint64, page, size int) error {
	start := time.Now()
	result, err := l.fetch(ctx, page, size)
	elapsed := time.Since(start)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		l.log.Debug("discarding superseded page",
			zap.String("list", l.name),
			zap.Int("page", page),
		)
		return nil
	}
	l.loading = false
	if err != nil {
		l.err = err
	} else {
		l.err = nil
		l.loaded = true
		l.items = make([]T, len(result.Items))
		copy(l.items, result.Items)
		l.page.TotalPages = result.TotalPages
		l.page.Total = result.Total
		l.page = l.page.Normalize()
		if l.page.Page > l.page.TotalPages {
			l.page.Page = l.page.TotalPages
		}
	}
	l.mu.Unlock()

	if err != nil {
		l.log.Warn("history page fetch failed",
			zap.String("list", l.name),
			zap.Int("page", page),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
	if l.observer != nil {
		l.observer.PageFetched(l.name, page, elapsed, err)
	}
	if err != nil {
		return fmt.Errorf("fetch %s page %d: %w", l.name, page, err)
	}
	return nil
}
