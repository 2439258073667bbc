// Package poller drives a sensor.Window from a remote source on a fixed
// cadence for as long as the owning view is mounted.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/sensor"
)

// DefaultInterval is the pause between the end of one fetch and the start
// of the next.
const DefaultInterval = 5 * time.Second

// Source fetches the newest n samples.
type Source interface {
	LatestSensorData(ctx context.Context, n int) ([]api.SensorSample, error)
}

// Observer is notified after every settled poll cycle.
type Observer interface {
	PollCompleted(view string, samples int, elapsed time.Duration, err error)
}

// Option customizes a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger used for failed cycles.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

// WithObserver registers a cycle observer.
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// Poller is a one-shot cancellable task. Fetches never overlap: the next one
// is scheduled only after the previous has settled. After Stop no result,
// including one already in flight, reaches the window.
type Poller struct {
	view     string
	source   Source
	window   *sensor.Window
	interval time.Duration
	log      *zap.Logger
	observer Observer

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

// New builds a poller feeding window from source. view names the owning
// view in logs and metrics.
func New(view string, source Source, window *sensor.Window, opts ...Option) *Poller {
	p := &Poller{
		view:     view,
		source:   source,
		window:   window,
		interval: DefaultInterval,
		log:      zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start fetches immediately and keeps polling until Stop is called or ctx
// ends. It returns immediately; calling it again, or after Stop, is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	go p.run(runCtx)
}

// Stop cancels the pending timer and the in-flight fetch. Its result, if
// it still arrives, is discarded. Stop does not wait for the goroutine; use
// Done for that.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	if !p.started {
		p.closeDone()
	}
}

// Done is closed once the polling goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Window returns the window this poller feeds.
func (p *Poller) Window() *sensor.Window {
	return p.window
}

func (p *Poller) run(ctx context.Context) {
	defer p.closeDone()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		p.cycle(ctx)
		if ctx.Err() != nil {
			return
		}
		if timer == nil {
			timer = time.NewTimer(p.interval)
		} else {
			timer.Reset(p.interval)
		}
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if !p.apply(ctx, p.window.BeginFetch) {
		return
	}

	start := time.Now()
	samples, err := p.source.LatestSensorData(ctx, p.window.Limit())
	elapsed := time.Since(start)

	applied := p.apply(ctx, func() {
		if err != nil {
			p.window.Fail(err)
			return
		}
		p.window.Apply(samples)
	})
	if !applied {
		p.log.Debug("discarding poll result after stop", zap.String("view", p.view))
		return
	}

	if err != nil {
		p.log.Warn("sensor poll failed",
			zap.String("view", p.view),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
	if p.observer != nil {
		p.observer.PollCompleted(p.view, len(samples), elapsed, err)
	}
}

// apply runs mutate only while the poller is live. The check and the
// mutation happen under the same lock Stop takes.
func (p *Poller) apply(ctx context.Context, mutate func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || ctx.Err() != nil {
		return false
	}
	mutate()
	return true
}

func (p *Poller) closeDone() {
	p.doneOnce.Do(func() { close(p.done) })
}
