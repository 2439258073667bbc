package sensor

import (
	"math"
	"time"
)

// DefaultPrecision is the number of decimals deltas are rounded to.
const DefaultPrecision = 1

// Direction classifies a delta for the trend arrow.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Trend is the change of one metric between the two newest samples.
type Trend struct {
	Value     *float64 // nil when either sample lacks the metric
	Direction Direction
	Reference time.Time // CreatedAt of the older sample; zero when unknown
}

// maxPrecision keeps the rounding scale finite.
const maxPrecision = 15

// Delta returns current-previous rounded to precision decimals. It returns
// nil when either input is missing or the result is not finite.
func Delta(current, previous *float64, precision int) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	if precision < 0 {
		precision = 0
	}
	if precision > maxPrecision {
		precision = maxPrecision
	}
	scale := math.Pow(10, float64(precision))
	diff := math.Round((*current-*previous)*scale) / scale
	if math.IsNaN(diff) || math.IsInf(diff, 0) {
		return nil
	}
	if diff == 0 {
		diff = 0 // drop negative zero
	}
	return &diff
}

// DirectionOf classifies a delta value.
func DirectionOf(value *float64) Direction {
	switch {
	case value == nil:
		return Flat
	case *value > 0:
		return Up
	case *value < 0:
		return Down
	default:
		return Flat
	}
}
