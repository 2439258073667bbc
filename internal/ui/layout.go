package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panels stack vertically.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width for the full history columns.
	LayoutWideWidth = 130
)

// Sensor card geometry.
const (
	cardMinWidth      = 28
	sparklineMaxWidth = 100
	readingRows       = 15
)

// Gauge scales for the fill bars.
const (
	temperatureScale = 40.0
	humidityScale    = 100.0
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI copies fresh snapshots.
	DefaultUIInterval = 500 * time.Millisecond

	// toggleTimeout bounds a single device command.
	toggleTimeout = 15 * time.Second
)
