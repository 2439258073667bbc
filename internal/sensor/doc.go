// Package sensor holds the windowed store of recent sensor samples and the
// trend math derived from it.
//
// A Window is owned by exactly one view. The poller feeds it: BeginFetch
// before each request, then Apply on success or Fail on error. Apply sorts
// the batch ascending by CreatedAt and keeps only the newest Limit samples;
// Fail keeps whatever was shown before and records the error next to it.
//
// Readers never touch the Window directly. Snapshot returns an independent
// copy, and Latest, Previous, Series and Trend are computed from that copy,
// so a trend is always derived from the same two samples the UI renders.
//
// Samples are not deduplicated by id. Overlapping "latest N" batches from
// consecutive polls simply replace each other.
package sensor
