// Package api provides the HTTP transport for the IoT backend.
//
// # Overview
//
// The backend exposes a small REST surface: the device list, a per-device
// on/off command, the latest sensor samples, and two paged history lists.
// Client wraps net/http with the pieces every request needs and returns the
// decoded JSON body; the endpoint helpers then run the payload through the
// shape package so callers always receive canonical typed slices.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept and Content-Type to application/json
//   - Include User-Agent: iotdash/0.1 and a fresh X-Request-ID
//   - Carry Authorization: Bearer <token> while the session Credential is open
//   - Wait on an optional token-bucket rate limiter
//   - Have a fixed timeout (10 seconds unless WithTimeout overrides it)
//
// # Endpoints
//
//   - GET  /device/                          ListDevices
//   - POST /device/{id}/{on|off}/dashboard   SetDeviceStatus
//   - GET  /sensordata/latest/{n}            LatestSensorData
//   - GET  /history/?page=&page_size=        DeviceHistory
//   - GET  /voice/history?page=&page_size=   VoiceHistory
//
// # Error Handling
//
// Non-2xx responses become *Error, which keeps the method, path, status and
// any message/detail string from the response body. Message(err) returns the
// best human-readable text for a banner. Network and decode failures are
// wrapped with fmt.Errorf context ("execute request: ...", "decode
// response: ...").
//
// Malformed envelopes are not errors: an unrecognized list shape yields an
// empty slice, and individual records that do not fit the schema are
// dropped and logged at debug level.
//
// # Credentials
//
// A Credential is created at session start and passed to NewClient with
// WithCredential. If the token is a JWT its exp claim is read once; past
// that instant requests fail with ErrCredentialExpired without touching the
// network. Close ends the session.
package api
