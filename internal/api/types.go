package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// ID is a record identifier. The backend emits numeric ids, but string ids
// are accepted so a schema change does not blank the dashboard.
type ID string

// UnmarshalJSON accepts JSON numbers and strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits canonical integer ids as numbers; "007" or "+5" stay
// strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Timestamp is an ISO 8601 instant. The backend omits the zone offset, so
// values are parsed leniently; unparseable values decode to the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = ParseTime(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// ParseTime parses an API timestamp, returning the zero time on failure.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := iso8601.ParseString(value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}

// Status is a device power state.
type Status string

const (
	StatusOn  Status = "on"
	StatusOff Status = "off"
)

// Toggled returns the complement of s. Anything other than "on" is treated
// as off, so the toggle of an unknown state turns the device on.
func (s Status) Toggled() Status {
	if s.IsOn() {
		return StatusOff
	}
	return StatusOn
}

// IsOn reports whether s means powered on.
func (s Status) IsOn() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusOn))
}

// Device mirrors an entry of GET /device/.
type Device struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// SensorSample mirrors an entry of GET /sensordata/latest/{n}.
type SensorSample struct {
	ID          ID        `json:"id"`
	CreatedAt   Timestamp `json:"created_at"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
}

// HistoryEntry mirrors an entry of GET /history/.
type HistoryEntry struct {
	ID          ID        `json:"id"`
	DeviceID    ID        `json:"device_id"`
	ActionType  string    `json:"action_type"`
	ActionValue *string   `json:"action_value"`
	TriggeredBy string    `json:"triggered_by"`
	CreatedAt   Timestamp `json:"created_at"`
}

// VoiceCommand mirrors an entry of GET /voice/history.
type VoiceCommand struct {
	ID           ID        `json:"id"`
	DeviceID     ID        `json:"device_id"`
	Raw          *string   `json:"raw"`
	ActionName   string    `json:"action_name"`
	DeviceName   string    `json:"device_name"`
	DeviceNameVN string    `json:"device_name_vn"`
	CreatedAt    Timestamp `json:"created_at"`
}

// DeviceLabel returns the localized device name, then the plain one.
func (v VoiceCommand) DeviceLabel() string {
	if name := strings.TrimSpace(v.DeviceNameVN); name != "" {
		return name
	}
	return strings.TrimSpace(v.DeviceName)
}

// Page is one page of a paged list endpoint.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
}
