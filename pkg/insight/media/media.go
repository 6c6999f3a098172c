// Package media enriches video file records with container metadata from
// an external probe. Probe failures of any kind are absorbed: a record
// that cannot be probed is returned unchanged and the scan continues.
package media

import (
	"context"
	"time"

	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

const (
	// MinProbeSize is the file size below which probing is skipped
	// entirely. Anything smaller cannot be a valid media container.
	MinProbeSize = 10 * types.KiB

	// DefaultProbeTimeout bounds a single probe invocation. A hung probe
	// on one file must not stall the rest of the scan.
	DefaultProbeTimeout = 30 * time.Second
)

// ProbeResult is the normalized output of a media probe. Every field is
// optional: Duration is nil when unknown, numeric fields use zero for
// unknown (valid values are strictly positive), and codec names use the
// empty string.
type ProbeResult struct {
	Duration   *float64
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	AudioCodec string
}

// Prober extracts container metadata from a media file. Implementations
// must be safe to call on non-media or corrupted files: such inputs
// return an error, never a panic.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// Enricher wraps a Prober and applies its results to file records.
type Enricher struct {
	prober  Prober
	timeout time.Duration
	log     *logging.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTimeout overrides the per-file probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEnricher creates an Enricher around the given prober.
func NewEnricher(p Prober, opts ...Option) *Enricher {
	e := &Enricher{
		prober:  p,
		timeout: DefaultProbeTimeout,
		log:     logging.Get("media"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich probes the record's file and returns a copy carrying video
// metadata. Records that are not videos, are too small to be a valid
// container, or fail to probe are returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, rec types.FileRecord) types.FileRecord {
	if !rec.IsVideo() {
		return rec
	}

	if rec.Size < MinProbeSize {
		e.log.Debug("skipping probe, file too small", "path", rec.Path, "size", rec.Size)
		return rec
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.prober.Probe(probeCtx, rec.Path)
	if err != nil {
		e.log.Debug("probe failed", "path", rec.Path, "error", err)
		return rec
	}

	// Without a duration there is no metadata block at all; the other
	// fields are meaningless on their own.
	if res.Duration == nil || *res.Duration < 0 {
		e.log.Debug("probe returned no duration", "path", rec.Path)
		return rec
	}

	meta := &types.VideoMetadata{
		Duration:   *res.Duration,
		VideoCodec: res.VideoCodec,
		AudioCodec: res.AudioCodec,
	}
	// Non-positive dimensions and frame rates are absent, not zero.
	if res.Width > 0 && res.Height > 0 {
		meta.Width = res.Width
		meta.Height = res.Height
	}
	if res.FPS > 0 {
		meta.FPS = res.FPS
	}

	rec.Video = meta
	e.log.Debug("probe succeeded",
		"path", rec.Path,
		"duration", meta.Duration,
		"resolution", meta.Resolution(),
		"fps", meta.FPS)
	return rec
}
