package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/shape"
)

// ListDevices retrieves the device list.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	payload, err := c.Get(ctx, "/device/")
	if err != nil {
		return nil, err
	}
	return decodeRecords[Device](c.records("/device/", payload, shape.DeviceList), c.logger()), nil
}

// SetDeviceStatus sends the on/off command for a device from the dashboard.
func (c *Client) SetDeviceStatus(ctx context.Context, id ID, status Status) error {
	if id == "" {
		return fmt.Errorf("device id required")
	}
	target := StatusOff
	if status.IsOn() {
		target = StatusOn
	}
	path := fmt.Sprintf("/device/%s/%s/dashboard", url.PathEscape(string(id)), target)
	_, err := c.Post(ctx, path, nil)
	return err
}

// LatestSensorData retrieves the n most recent sensor samples in whatever
// order the server returns them.
func (c *Client) LatestSensorData(ctx context.Context, n int) ([]SensorSample, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	payload, err := c.Get(ctx, fmt.Sprintf("/sensordata/latest/%d", n))
	if err != nil {
		return nil, err
	}
	return decodeRecords[SensorSample](c.records("/sensordata/latest", payload, shape.SensorList), c.logger()), nil
}

// DeviceHistory retrieves one page of device actions.
func (c *Client) DeviceHistory(ctx context.Context, page, size int) (Page[HistoryEntry], error) {
	payload, err := c.Get(ctx, pagePath("/history/", page, size))
	if err != nil {
		return Page[HistoryEntry]{}, err
	}
	return decodePage[HistoryEntry](c.records("/history/", payload, shape.DeviceHistory), payload, c.logger()), nil
}

// VoiceHistory retrieves one page of processed voice commands.
func (c *Client) VoiceHistory(ctx context.Context, page, size int) (Page[VoiceCommand], error) {
	payload, err := c.Get(ctx, pagePath("/voice/history", page, size))
	if err != nil {
		return Page[VoiceCommand]{}, err
	}
	return decodePage[VoiceCommand](c.records("/voice/history", payload, shape.VoiceHistory), payload, c.logger()), nil
}

func (c *Client) logger() *zap.Logger {
	if c == nil || c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

// records extracts the record list and logs which envelope matched.
func (c *Client) records(endpoint string, payload any, matchers []shape.Matcher) []any {
	log := c.logger()
	name, ok := shape.Match(payload, matchers)
	if !ok {
		log.Debug("unrecognized response envelope", zap.String("endpoint", endpoint))
		return []any{}
	}
	log.Debug("response envelope", zap.String("endpoint", endpoint), zap.String("shape", name))
	return shape.Records(payload, matchers)
}

// decodePage normalizes a paged payload. Totals fall back to a single page
// holding exactly the returned items when the server omits them.
func decodePage[T any](records []any, payload any, log *zap.Logger) Page[T] {
	items := decodeRecords[T](records, log)
	page := Page[T]{Items: items, TotalPages: 1, Total: len(items)}
	if n, ok := shape.Int(payload, "total_pages"); ok && n > 0 {
		page.TotalPages = n
	} else if n, ok := shape.Int(payload, "data", "total_pages"); ok && n > 0 {
		page.TotalPages = n
	}
	if n, ok := shape.Int(payload, "total"); ok && n > 0 {
		page.Total = n
	} else if n, ok := shape.Int(payload, "data", "total"); ok && n > 0 {
		page.Total = n
	}
	return page
}

// decodeRecords converts generic records into T, dropping entries that do
// not fit the schema.
func decodeRecords[T any](records []any, log *zap.Logger) []T {
	out := make([]T, 0, len(records))
	for i, rec := range records {
		if _, ok := rec.(map[string]any); !ok {
			log.Debug("skipping non-object record", zap.Int("index", i))
			continue
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			log.Debug("skipping unencodable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Debug("skipping malformed record", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
