// Package stats aggregates a set of file records into summary statistics:
// general totals, a per-extension histogram, an age distribution, a
// hierarchical size tree, and optional video statistics.
//
// Aggregate is a pure function of its inputs. The current time is an
// explicit parameter, never read from a hidden global, so age bucketing
// is deterministic under test.
package stats

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

// Age bucket labels. Buckets with zero count are omitted from the
// distribution map, but the remaining counts always sum to the record
// count: every record lands in exactly one bucket.
const (
	BucketDay   = "last_24_hours"
	BucketWeek  = "last_7_days"
	BucketMonth = "last_30_days"
	BucketYear  = "last_year"
	BucketOlder = "older"
)

// Age bucket thresholds in seconds.
const (
	secondsDay   = 86400
	secondsWeek  = 604800
	secondsMonth = 2592000
	secondsYear  = 31536000
)

// GeneralStats summarizes the whole record set.
type GeneralStats struct {
	TotalFiles  int   `json:"total_files" yaml:"total_files"`
	TotalSize   int64 `json:"total_size" yaml:"total_size"`
	AverageSize int64 `json:"average_size" yaml:"average_size"`

	// OldestFile and NewestFile are display labels of the form
	// "name (2026-01-20)", chosen by creation time with ties broken by
	// input order. "N/A" when the record set is empty.
	OldestFile string `json:"oldest_file" yaml:"oldest_file"`
	NewestFile string `json:"newest_file" yaml:"newest_file"`

	// TotalDirectories is the number of distinct immediate parent
	// directories across all records.
	TotalDirectories int `json:"total_directories" yaml:"total_directories"`
}

// ExtensionStat is one row of the per-extension histogram.
type ExtensionStat struct {
	// Extension is the lowercase extension with leading dot, or "" for
	// files without one. Presentation layers choose a display label for
	// the empty group; the data model keeps it empty.
	Extension  string  `json:"extension" yaml:"extension"`
	Count      int     `json:"count" yaml:"count"`
	TotalSize  int64   `json:"size" yaml:"size"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// VideoStats summarizes the video files in the record set.
type VideoStats struct {
	TotalVideos     int     `json:"total_videos" yaml:"total_videos"`
	WithMetadata    int     `json:"videos_with_metadata" yaml:"videos_with_metadata"`
	TotalDuration   float64 `json:"total_duration" yaml:"total_duration"`
	AverageDuration float64 `json:"average_duration" yaml:"average_duration"`

	// Resolutions maps "WxH" to the number of videos at that resolution.
	Resolutions map[string]int `json:"resolution_counts,omitempty" yaml:"resolution_counts,omitempty"`

	// Codecs maps video codec name to count. Videos whose codec is
	// unknown are not counted here.
	Codecs map[string]int `json:"codec_counts,omitempty" yaml:"codec_counts,omitempty"`
}

// AggregateResult is the full statistical summary over a record set.
type AggregateResult struct {
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	General     GeneralStats    `json:"general_stats" yaml:"general_stats"`
	Extensions  []ExtensionStat `json:"file_types" yaml:"file_types"`

	// AgeDistribution maps bucket label to count; empty buckets are
	// omitted.
	AgeDistribution map[string]int `json:"age_distribution" yaml:"age_distribution"`

	FileTree *Node `json:"file_tree" yaml:"file_tree"`

	// Video is nil when the record set contains no video files.
	Video *VideoStats `json:"video_stats,omitempty" yaml:"video_stats,omitempty"`
}

// Aggregate produces the statistical summary for records. The records
// slice is read-only; now is the reference time for age bucketing.
func Aggregate(records []types.FileRecord, now time.Time) AggregateResult {
	return AggregateResult{
		GeneratedAt:     now,
		General:         generalStats(records),
		Extensions:      extensionStats(records),
		AgeDistribution: ageDistribution(records, now),
		FileTree:        BuildTree(records),
		Video:           videoStats(records),
	}
}

func generalStats(records []types.FileRecord) GeneralStats {
	if len(records) == 0 {
		return GeneralStats{
			OldestFile: "N/A",
			NewestFile: "N/A",
		}
	}

	var totalSize int64
	dirs := make(map[string]struct{})
	oldest := &records[0]
	newest := &records[0]

	for i := range records {
		rec := &records[i]
		totalSize += rec.Size
		dirs[filepath.Dir(rec.Path)] = struct{}{}

		// Strict comparisons keep the first occurrence on ties.
		if rec.Created.Before(oldest.Created) {
			oldest = rec
		}
		if rec.Created.After(newest.Created) {
			newest = rec
		}
	}

	return GeneralStats{
		TotalFiles:       len(records),
		TotalSize:        totalSize,
		AverageSize:      totalSize / int64(len(records)),
		OldestFile:       fileLabel(oldest),
		NewestFile:       fileLabel(newest),
		TotalDirectories: len(dirs),
	}
}

// fileLabel formats a record for the oldest/newest display fields.
func fileLabel(rec *types.FileRecord) string {
	return fmt.Sprintf("%s (%s)", rec.Name(), rec.Created.Format("2006-01-02"))
}

func extensionStats(records []types.FileRecord) []ExtensionStat {
	groups := make(map[string]*ExtensionStat)
	order := make([]string, 0)

	var totalSize int64
	for i := range records {
		rec := &records[i]
		totalSize += rec.Size

		g, ok := groups[rec.Extension]
		if !ok {
			g = &ExtensionStat{Extension: rec.Extension}
			groups[rec.Extension] = g
			order = append(order, rec.Extension)
		}
		g.Count++
		g.TotalSize += rec.Size
	}

	result := make([]ExtensionStat, 0, len(order))
	for _, ext := range order {
		g := groups[ext]
		if totalSize > 0 {
			g.Percentage = float64(g.TotalSize) / float64(totalSize) * 100
		}
		result = append(result, *g)
	}

	// Descending by group size; first-seen order breaks ties.
	slices.SortStableFunc(result, func(a, b ExtensionStat) int {
		switch {
		case a.TotalSize > b.TotalSize:
			return -1
		case a.TotalSize < b.TotalSize:
			return 1
		default:
			return 0
		}
	})

	return result
}

func ageDistribution(records []types.FileRecord, now time.Time) map[string]int {
	dist := make(map[string]int)

	for i := range records {
		age := now.Sub(records[i].Created).Seconds()
		switch {
		case age < secondsDay:
			dist[BucketDay]++
		case age < secondsWeek:
			dist[BucketWeek]++
		case age < secondsMonth:
			dist[BucketMonth]++
		case age < secondsYear:
			dist[BucketYear]++
		default:
			dist[BucketOlder]++
		}
	}

	return dist
}

func videoStats(records []types.FileRecord) *VideoStats {
	var videos []*types.FileRecord
	for i := range records {
		if records[i].IsVideo() {
			videos = append(videos, &records[i])
		}
	}
	if len(videos) == 0 {
		return nil
	}

	vs := &VideoStats{
		TotalVideos: len(videos),
		Resolutions: make(map[string]int),
		Codecs:      make(map[string]int),
	}

	for _, v := range videos {
		if !v.HasVideoMetadata() {
			continue
		}
		vs.WithMetadata++
		vs.TotalDuration += v.Video.Duration

		if v.Video.HasResolution() {
			vs.Resolutions[v.Video.Resolution()]++
		}
		if v.Video.VideoCodec != "" {
			vs.Codecs[v.Video.VideoCodec]++
		}
	}

	if vs.WithMetadata > 0 {
		vs.AverageDuration = vs.TotalDuration / float64(vs.WithMetadata)
	}

	return vs
}
