package sensor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sson6926/iotdash/internal/api"
)

// Window sizes used by the two sensor views.
const (
	DashboardWindow  = 10
	SensorViewWindow = 100
)

// Metric names a sampled quantity.
type Metric string

const (
	Temperature Metric = "temperature"
	Humidity    Metric = "humidity"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{Temperature, Humidity}

// Unit returns the display unit for m.
func (m Metric) Unit() string {
	switch m {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	default:
		return ""
	}
}

// Value returns the metric's reading in s, or nil when absent.
func (m Metric) Value(s api.SensorSample) *float64 {
	switch m {
	case Temperature:
		return s.Temperature
	case Humidity:
		return s.Humidity
	default:
		return nil
	}
}

// State is the lifecycle of a Window.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	default:
		return "empty"
	}
}

// Point is one charting coordinate.
type Point struct {
	At    time.Time
	Value float64
}

// Snapshot is an immutable copy of a Window.
type Snapshot struct {
	Samples             []api.SensorSample // ascending by CreatedAt
	State               State
	Loaded              bool // at least one fetch succeeded
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
	Limit               int
}

// Window keeps the newest samples of a sensor feed, sorted ascending by
// CreatedAt and capped at a fixed length. Failed fetches never clear it.
type Window struct {
	mu       sync.RWMutex
	limit    int
	samples  []api.SensorSample
	loading  bool
	loaded   bool
	err      error
	updated  time.Time
	failures int
}

// NewWindow returns a window holding at most limit samples.
func NewWindow(limit int) *Window {
	if limit <= 0 {
		limit = DashboardWindow
	}
	return &Window{limit: limit}
}

// Limit returns the window capacity.
func (w *Window) Limit() int {
	return w.limit
}

// BeginFetch marks a fetch as in flight.
func (w *Window) BeginFetch() {
	w.mu.Lock()
	w.loading = true
	w.mu.Unlock()
}

// Apply replaces the window with the newest samples of batch.
func (w *Window) Apply(batch []api.SensorSample) {
	sorted := make([]api.SensorSample, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt.Time)
	})
	if len(sorted) > w.limit {
		sorted = sorted[len(sorted)-w.limit:]
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = sorted
	w.loading = false
	w.loaded = true
	w.err = nil
	w.updated = time.Now()
	w.failures = 0
}

// Fail records a fetch error, keeping the previous samples visible.
func (w *Window) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	w.err = err
	w.updated = time.Now()
	w.failures++
}

// Snapshot returns a copy of the current window.
func (w *Window) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := Snapshot{
		Loaded:              w.loaded,
		LastUpdated:         w.updated,
		ConsecutiveFailures: w.failures,
		Limit:               w.limit,
	}
	if len(w.samples) > 0 {
		snap.Samples = make([]api.SensorSample, len(w.samples))
		copy(snap.Samples, w.samples)
	}
	if w.err != nil {
		snap.LastError = fmt.Errorf("%w", w.err)
	}
	switch {
	case w.loading:
		snap.State = StateLoading
	case len(w.samples) > 0:
		snap.State = StatePopulated
	default:
		snap.State = StateEmpty
	}
	return snap
}

// Latest returns the newest sample.
func (s Snapshot) Latest() (api.SensorSample, bool) {
	if len(s.Samples) == 0 {
		return api.SensorSample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

// Previous returns the second newest sample.
func (s Snapshot) Previous() (api.SensorSample, bool) {
	if len(s.Samples) < 2 {
		return api.SensorSample{}, false
	}
	return s.Samples[len(s.Samples)-2], true
}

// Series returns the metric's readings in ascending time order. Samples
// missing the metric are skipped.
func (s Snapshot) Series(m Metric) []Point {
	points := make([]Point, 0, len(s.Samples))
	for _, sample := range s.Samples {
		v := m.Value(sample)
		if v == nil {
			continue
		}
		points = append(points, Point{At: sample.CreatedAt.Time, Value: *v})
	}
	return points
}

// Trend computes the delta of m between the two newest samples.
func (s Snapshot) Trend(m Metric) Trend {
	latest, ok := s.Latest()
	if !ok {
		return Trend{Direction: Flat}
	}
	prev, ok := s.Previous()
	if !ok {
		return Trend{Direction: Flat}
	}
	value := Delta(m.Value(latest), m.Value(prev), DefaultPrecision)
	return Trend{
		Value:     value,
		Direction: DirectionOf(value),
		Reference: prev.CreatedAt.Time,
	}
}

// Empty reports a successful fetch that returned no samples.
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Samples) == 0
}

// IsOffline returns true when the feed has failed several polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}
