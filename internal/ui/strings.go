package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sson6926/iotdash/internal/paging"
	"github.com/sson6926/iotdash/internal/sensor"
)

const placeholder = "—"

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// orPlaceholder returns value, or a dash when it is blank.
func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return strings.TrimSpace(value)
}

func optString(v *string) string {
	if v == nil {
		return placeholder
	}
	return orPlaceholder(*v)
}

// formatReading renders a sensor value with one decimal and its unit.
func formatReading(v *float64, unit string) string {
	if v == nil {
		return placeholder
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + unit
}

// formatDelta renders a signed change, e.g. "+0.5°C".
func formatDelta(v *float64, unit string) string {
	if v == nil {
		return placeholder
	}
	sign := ""
	if *v > 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(*v, 'f', sensor.DefaultPrecision, 64) + unit
}

func trendGlyph(d sensor.Direction) string {
	switch d {
	case sensor.Up:
		return "▲"
	case sensor.Down:
		return "▼"
	default:
		return "▬"
	}
}

// formatClock renders t in local time as HH:MM:SS.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.Local().Format("15:04:05")
}

// formatStamp renders t in local time with the date.
func formatStamp(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func metricLabel(m sensor.Metric) string {
	switch m {
	case sensor.Temperature:
		return "Temperature"
	case sensor.Humidity:
		return "Humidity"
	default:
		return string(m)
	}
}

func metricScale(m sensor.Metric) float64 {
	if m == sensor.Temperature {
		return temperatureScale
	}
	return humidityScale
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the newest width values as block characters scaled
// between their own minimum and maximum.
func sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	top := len(sparkRunes) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// fillBar renders value/scale as a bar of width cells.
func fillBar(value *float64, scale float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if value != nil && scale > 0 {
		ratio := math.Max(0, math.Min(1, *value/scale))
		filled = int(math.Round(ratio * float64(width)))
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// rangeLabel renders the "Showing a - b of total" footer.
func rangeLabel(s paging.State) string {
	start, end := s.Range()
	return fmt.Sprintf("Showing %d - %d of %d", start, end, s.Total)
}

// pageBarLabels renders the page window as plain labels; the current page
// is wrapped in brackets and gaps are an ellipsis.
func pageBarLabels(s paging.State) []string {
	slots := s.Window()
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		switch {
		case slot.Gap:
			out = append(out, "…")
		case slot.Page == s.Page:
			out = append(out, "["+strconv.Itoa(slot.Page)+"]")
		default:
			out = append(out, strconv.Itoa(slot.Page))
		}
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }

// humanizeDuration renders an age such as "4s" or "2m".
func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
