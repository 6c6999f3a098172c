package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

// fakeProber returns a canned result or error and records whether it
// was called.
type fakeProber struct {
	result ProbeResult
	err    error
	called bool
}

func (f *fakeProber) Probe(_ context.Context, _ string) (ProbeResult, error) {
	f.called = true
	return f.result, f.err
}

func floatPtr(v float64) *float64 { return &v }

func videoRecord(size int64) types.FileRecord {
	return types.FileRecord{
		Path:      "/media/clip.mp4",
		Size:      size,
		Extension: ".mp4",
	}
}

func TestEnrich_FullMetadata(t *testing.T) {
	prober := &fakeProber{result: ProbeResult{
		Duration:   floatPtr(120.5),
		Width:      1920,
		Height:     1080,
		FPS:        29.97,
		VideoCodec: "h264",
		AudioCodec: "aac",
	}}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), videoRecord(5*types.MiB))

	require.NotNil(t, rec.Video)
	assert.Equal(t, 120.5, rec.Video.Duration)
	assert.Equal(t, "1920x1080", rec.Video.Resolution())
	assert.Equal(t, 29.97, rec.Video.FPS)
	assert.Equal(t, "h264", rec.Video.VideoCodec)
	assert.Equal(t, "aac", rec.Video.AudioCodec)
}

func TestEnrich_NonVideoUntouched(t *testing.T) {
	prober := &fakeProber{result: ProbeResult{Duration: floatPtr(10)}}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), types.FileRecord{
		Path:      "/docs/report.pdf",
		Size:      5 * types.MiB,
		Extension: ".pdf",
	})

	assert.Nil(t, rec.Video)
	assert.False(t, prober.called, "non-video files must not be probed")
}

func TestEnrich_SmallFileSkipsProbe(t *testing.T) {
	prober := &fakeProber{result: ProbeResult{Duration: floatPtr(10)}}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), videoRecord(MinProbeSize-1))

	assert.Nil(t, rec.Video)
	assert.False(t, prober.called, "files under the size floor must not be probed")
}

func TestEnrich_ProbeFailureAbsorbed(t *testing.T) {
	prober := &fakeProber{err: errors.New("moov atom not found")}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), videoRecord(5*types.MiB))

	assert.Nil(t, rec.Video)
}

func TestEnrich_NoDurationNoMetadata(t *testing.T) {
	prober := &fakeProber{result: ProbeResult{
		Width:      1920,
		Height:     1080,
		VideoCodec: "h264",
	}}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), videoRecord(5*types.MiB))

	assert.Nil(t, rec.Video, "metadata without a duration never attaches")
}

func TestEnrich_RejectsOutOfRangeFields(t *testing.T) {
	prober := &fakeProber{result: ProbeResult{
		Duration: floatPtr(60),
		Width:    -1,
		Height:   1080,
		FPS:      -5,
	}}
	e := NewEnricher(prober)

	rec := e.Enrich(context.Background(), videoRecord(5*types.MiB))

	require.NotNil(t, rec.Video)
	assert.False(t, rec.Video.HasResolution())
	assert.Zero(t, rec.Video.FPS)
	assert.Equal(t, "", rec.Video.VideoCodec)
}

func TestWithTimeout(t *testing.T) {
	e := NewEnricher(&fakeProber{}, WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, e.timeout)

	// Non-positive overrides are ignored.
	e = NewEnricher(&fakeProber{}, WithTimeout(0))
	assert.Equal(t, DefaultProbeTimeout, e.timeout)
}
