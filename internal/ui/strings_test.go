package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/history"
	"github.com/sson6926/iotdash/internal/paging"
	"github.com/sson6926/iotdash/internal/sensor"
)

func ptr[T any](v T) *T { return &v }

func TestFormatReadingAndDelta(t *testing.T) {
	if got := formatReading(ptr(23.46), "°C"); got != "23.5°C" {
		t.Fatalf("formatReading = %q, want 23.5°C", got)
	}
	if got := formatReading(nil, "%"); got != placeholder {
		t.Fatalf("formatReading(nil) = %q, want placeholder", got)
	}

	cases := []struct {
		in   *float64
		want string
	}{
		{ptr(0.5), "+0.5°C"},
		{ptr(-1.2), "-1.2°C"},
		{ptr(0.0), "0.0°C"},
		{nil, placeholder},
	}
	for _, tc := range cases {
		if got := formatDelta(tc.in, "°C"); got != tc.want {
			t.Fatalf("formatDelta = %q, want %q", got, tc.want)
		}
	}
}

func TestTrendGlyph(t *testing.T) {
	if trendGlyph(sensor.Up) != "▲" || trendGlyph(sensor.Down) != "▼" || trendGlyph(sensor.Flat) != "▬" {
		t.Fatalf("unexpected trend glyphs")
	}
}

func TestFormatClockZero(t *testing.T) {
	if got := formatClock(time.Time{}); got != placeholder {
		t.Fatalf("formatClock(zero) = %q", got)
	}
	if got := formatStamp(time.Time{}); got != placeholder {
		t.Fatalf("formatStamp(zero) = %q", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{1, 2, 3}, 0); got != "" {
		t.Fatalf("zero width sparkline = %q", got)
	}
	if got := sparkline(nil, 10); got != "" {
		t.Fatalf("empty sparkline = %q", got)
	}

	got := []rune(sparkline([]float64{0, 10}, 10))
	if len(got) != 2 || got[0] != '▁' || got[1] != '█' {
		t.Fatalf("sparkline(0,10) = %q", string(got))
	}

	flat := []rune(sparkline([]float64{5, 5, 5}, 10))
	for _, r := range flat {
		if r != sparkRunes[(len(sparkRunes)-1)/2] {
			t.Fatalf("flat sparkline = %q", string(flat))
		}
	}

	// Only the newest width values are drawn.
	tail := []rune(sparkline([]float64{100, 0, 1}, 2))
	if len(tail) != 2 || tail[0] != '▁' || tail[1] != '█' {
		t.Fatalf("sparkline tail = %q", string(tail))
	}
}

func TestFillBar(t *testing.T) {
	if got := fillBar(ptr(50.0), 100, 10); got != "█████░░░░░" {
		t.Fatalf("fillBar(50%%) = %q", got)
	}
	if got := fillBar(ptr(150.0), 100, 4); got != "████" {
		t.Fatalf("fillBar clamps high: %q", got)
	}
	if got := fillBar(ptr(-3.0), 40, 4); got != "░░░░" {
		t.Fatalf("fillBar clamps low: %q", got)
	}
	if got := fillBar(nil, 40, 3); got != "░░░" {
		t.Fatalf("fillBar(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  living room lamp ", 8); got != "livin..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("fan", 8); got != "fan" {
		t.Fatalf("truncate short = %q", got)
	}
}

func TestPageBarLabels(t *testing.T) {
	s := paging.State{Page: 5, PageSize: 10, TotalPages: 9, Total: 90}
	got := strings.Join(pageBarLabels(s), " ")
	if got != "1 … 4 [5] 6 … 9" {
		t.Fatalf("pageBarLabels = %q", got)
	}
	if got := rangeLabel(s); got != "Showing 41 - 50 of 90" {
		t.Fatalf("rangeLabel = %q", got)
	}
}

func TestVoiceRowsNumberAcrossPages(t *testing.T) {
	snap := history.Snapshot[api.VoiceCommand]{
		Items: []api.VoiceCommand{
			{ID: "7", Raw: ptr("turn on the fan"), ActionName: "turn_on", DeviceName: "fan"},
			{ID: "8", ActionName: "turn_off", DeviceNameVN: "Quạt"},
		},
		Page: paging.State{Page: 2, PageSize: 10, TotalPages: 2, Total: 12},
	}
	rows := voiceRows(snap)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "11" || rows[1][0] != "12" {
		t.Fatalf("row numbers = %q, %q; want 11, 12", rows[0][0], rows[1][0])
	}
	if rows[0][1] != "turn on the fan" || rows[1][1] != placeholder {
		t.Fatalf("command cells = %q, %q", rows[0][1], rows[1][1])
	}
	if rows[1][3] != "Quạt" {
		t.Fatalf("device cell = %q, want localized name", rows[1][3])
	}
}

func TestSensorRowsNewestFirst(t *testing.T) {
	snap := sensor.Snapshot{Samples: []api.SensorSample{
		{ID: "1", Temperature: ptr(20.0)},
		{ID: "2", Temperature: ptr(21.0)},
		{ID: "3", Temperature: ptr(22.0)},
	}}
	rows := sensorRows(snap, 2)
	if len(rows) != 2 || rows[0][0] != "3" || rows[1][0] != "2" {
		t.Fatalf("sensorRows = %v", rows)
	}
	if rows[0][2] != "22.0°C" || rows[0][3] != placeholder {
		t.Fatalf("sensor cells = %v", rows[0])
	}
}

func TestParseView(t *testing.T) {
	for _, v := range viewOrder {
		if got := ParseView(" " + strings.ToUpper(v.String())); got != v {
			t.Fatalf("ParseView(%s) = %v", v, got)
		}
	}
	if ParseView("bogus") != ViewDashboard {
		t.Fatalf("ParseView(bogus) should fall back to the dashboard")
	}
}
