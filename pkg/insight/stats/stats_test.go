package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil, time.Now())

	assert.Equal(t, 0, result.General.TotalFiles)
	assert.Equal(t, int64(0), result.General.TotalSize)
	assert.Equal(t, "N/A", result.General.OldestFile)
	assert.Equal(t, "N/A", result.General.NewestFile)
	assert.Empty(t, result.Extensions)
	assert.Empty(t, result.AgeDistribution)
	assert.Nil(t, result.Video)
}

func TestAggregate_ThreeFileScenario(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	records := []types.FileRecord{
		{Path: "/data/a.txt", Size: 5, Extension: ".txt", Created: now.Add(-10 * 24 * time.Hour)},
		{Path: "/data/b.py", Size: 3, Extension: ".py", Created: now.Add(-2 * 24 * time.Hour)},
		{Path: "/data/c.jpg", Size: 1000, Extension: ".jpg", Created: now.Add(-time.Hour)},
	}

	result := Aggregate(records, now)

	g := result.General
	assert.Equal(t, 3, g.TotalFiles)
	assert.Equal(t, int64(1008), g.TotalSize)
	assert.Equal(t, int64(336), g.AverageSize)
	assert.Equal(t, 1, g.TotalDirectories)
	assert.Equal(t, "a.txt (2026-08-14)", g.OldestFile)
	assert.Equal(t, "c.jpg (2026-08-24)", g.NewestFile)

	// Largest group first.
	require.Len(t, result.Extensions, 3)
	assert.Equal(t, ".jpg", result.Extensions[0].Extension)
	assert.InDelta(t, 99.2, result.Extensions[0].Percentage, 0.05)

	assert.Equal(t, map[string]int{
		BucketDay:   1,
		BucketWeek:  1,
		BucketMonth: 1,
	}, result.AgeDistribution)

	assert.Nil(t, result.Video)
}

func TestAggregate_ExtensionInvariants(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/d/a.go", Size: 100, Extension: ".go", Created: now},
		{Path: "/d/b.go", Size: 300, Extension: ".go", Created: now},
		{Path: "/d/c.md", Size: 400, Extension: ".md", Created: now},
		{Path: "/d/Makefile", Size: 200, Extension: "", Created: now},
	}

	result := Aggregate(records, now)

	totalCount := 0
	totalPct := 0.0
	for _, ext := range result.Extensions {
		totalCount += ext.Count
		totalPct += ext.Percentage
	}
	assert.Equal(t, len(records), totalCount)
	assert.InDelta(t, 100.0, totalPct, 1e-9)

	// Sorted by total size descending.
	for i := 1; i < len(result.Extensions); i++ {
		assert.GreaterOrEqual(t,
			result.Extensions[i-1].TotalSize,
			result.Extensions[i].TotalSize)
	}

	// The extensionless file forms its own group.
	var found bool
	for _, ext := range result.Extensions {
		if ext.Extension == "" {
			found = true
			assert.Equal(t, 1, ext.Count)
		}
	}
	assert.True(t, found)
}

func TestAggregate_ZeroSizePercentages(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/d/a.txt", Size: 0, Extension: ".txt", Created: now},
		{Path: "/d/b.txt", Size: 0, Extension: ".txt", Created: now},
	}

	result := Aggregate(records, now)

	for _, ext := range result.Extensions {
		assert.Zero(t, ext.Percentage)
	}
}

func TestAggregate_AgeBucketsPartition(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/d/a", Created: now.Add(-time.Hour)},
		{Path: "/d/b", Created: now.Add(-3 * 24 * time.Hour)},
		{Path: "/d/c", Created: now.Add(-20 * 24 * time.Hour)},
		{Path: "/d/d", Created: now.Add(-200 * 24 * time.Hour)},
		{Path: "/d/e", Created: now.Add(-2 * 365 * 24 * time.Hour)},
		{Path: "/d/f", Created: now.Add(-25 * time.Hour)},
		{Path: "/d/g", Created: now.Add(-366 * 24 * time.Hour)},
	}

	result := Aggregate(records, now)

	total := 0
	for _, count := range result.AgeDistribution {
		total += count
	}
	assert.Equal(t, len(records), total, "buckets partition the record set")

	assert.Equal(t, 1, result.AgeDistribution[BucketDay])
	assert.Equal(t, 2, result.AgeDistribution[BucketWeek])
	assert.Equal(t, 1, result.AgeDistribution[BucketMonth])
	assert.Equal(t, 1, result.AgeDistribution[BucketYear])
	assert.Equal(t, 2, result.AgeDistribution[BucketOlder])
}

func TestAggregate_EmptyBucketsOmitted(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/d/fresh", Created: now.Add(-time.Minute)},
	}

	result := Aggregate(records, now)

	assert.Equal(t, map[string]int{BucketDay: 1}, result.AgeDistribution)
}

func TestAggregate_OldestNewestTiesKeepFirst(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Hour)
	records := []types.FileRecord{
		{Path: "/d/first.txt", Created: created},
		{Path: "/d/second.txt", Created: created},
	}

	result := Aggregate(records, now)

	label := "first.txt (" + created.Format("2006-01-02") + ")"
	assert.Equal(t, label, result.General.OldestFile)
	assert.Equal(t, label, result.General.NewestFile)
}

func TestAggregate_DistinctDirectories(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/a/x/1.txt", Created: now},
		{Path: "/a/x/2.txt", Created: now},
		{Path: "/a/y/3.txt", Created: now},
		{Path: "/b/4.txt", Created: now},
	}

	result := Aggregate(records, now)
	assert.Equal(t, 3, result.General.TotalDirectories)
}

func TestAggregate_VideoStats(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/v/a.mp4", Size: 1 << 20, Extension: ".mp4", Created: now,
			Video: &types.VideoMetadata{Duration: 100, Width: 1920, Height: 1080, VideoCodec: "h264"}},
		{Path: "/v/b.mkv", Size: 1 << 20, Extension: ".mkv", Created: now,
			Video: &types.VideoMetadata{Duration: 50, Width: 1920, Height: 1080, VideoCodec: "hevc"}},
		{Path: "/v/c.avi", Size: 1 << 20, Extension: ".avi", Created: now}, // no metadata
		{Path: "/v/d.txt", Size: 10, Extension: ".txt", Created: now},
	}

	result := Aggregate(records, now)

	require.NotNil(t, result.Video)
	v := result.Video
	assert.Equal(t, 3, v.TotalVideos)
	assert.Equal(t, 2, v.WithMetadata)
	assert.Equal(t, 150.0, v.TotalDuration)
	assert.Equal(t, 75.0, v.AverageDuration)
	assert.Equal(t, map[string]int{"1920x1080": 2}, v.Resolutions)
	assert.Equal(t, map[string]int{"h264": 1, "hevc": 1}, v.Codecs)
}

func TestAggregate_UnknownCodecNotCounted(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/v/a.mp4", Size: 1 << 20, Extension: ".mp4", Created: now,
			Video: &types.VideoMetadata{Duration: 10}},
	}

	result := Aggregate(records, now)

	require.NotNil(t, result.Video)
	assert.Empty(t, result.Video.Codecs)
	assert.Empty(t, result.Video.Resolutions)
}

func TestAggregate_NoVideosNilStats(t *testing.T) {
	now := time.Now()
	records := []types.FileRecord{
		{Path: "/d/a.txt", Size: 1, Extension: ".txt", Created: now},
	}

	result := Aggregate(records, now)
	assert.Nil(t, result.Video)
}
