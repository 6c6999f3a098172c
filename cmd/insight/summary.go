package main

import (
	"time"

	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/stats"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

// topExtensions caps the per-extension rows shown in the summary. Full
// detail goes to the report file.
const topExtensions = 5

// ageBucketOrder lists buckets newest-first for display.
var ageBucketOrder = []string{
	stats.BucketDay,
	stats.BucketWeek,
	stats.BucketMonth,
	stats.BucketYear,
	stats.BucketOlder,
}

// printSummary writes a human-readable digest of the aggregate result
// to stdout. The scan argument is nil when reporting over stored
// records.
func printSummary(r *stats.AggregateResult, scan *types.ScanResult) {
	if getQuiet() {
		return
	}

	g := r.General
	printInfo("Files:        %d (%s total, %s average)",
		g.TotalFiles, types.FormatSize(g.TotalSize), types.FormatSize(g.AverageSize))
	printInfo("Directories:  %d", g.TotalDirectories)
	printInfo("Oldest:       %s", g.OldestFile)
	printInfo("Newest:       %s", g.NewestFile)

	if len(r.Extensions) > 0 {
		printInfo("")
		printInfo("Top file types:")
		for i, ext := range r.Extensions {
			if i >= topExtensions {
				printInfo("  ... and %d more", len(r.Extensions)-topExtensions)
				break
			}
			label := ext.Extension
			if label == "" {
				label = "(none)"
			}
			printInfo("  %-10s %5d files  %10s  %5.1f%%",
				label, ext.Count, types.FormatSize(ext.TotalSize), ext.Percentage)
		}
	}

	if len(r.AgeDistribution) > 0 {
		printInfo("")
		printInfo("Age distribution:")
		for _, bucket := range ageBucketOrder {
			if count, ok := r.AgeDistribution[bucket]; ok {
				printInfo("  %-15s %d", bucket, count)
			}
		}
	}

	if r.Video != nil {
		v := r.Video
		printInfo("")
		printInfo("Videos:       %d (%d with metadata)", v.TotalVideos, v.WithMetadata)
		if v.WithMetadata > 0 {
			printInfo("Duration:     %.1fs total, %.1fs average", v.TotalDuration, v.AverageDuration)
		}
	}

	if scan != nil {
		printInfo("")
		printInfo("Scanned %d files in %d directories in %s",
			scan.FilesScanned, scan.DirsScanned, scan.Elapsed.Round(time.Millisecond))
		if len(scan.SoftFailures) > 0 {
			printInfo("Warnings: %d paths could not be read", len(scan.SoftFailures))
			logger := logging.Get("cli")
			for _, f := range scan.SoftFailures {
				logger.Warn("scan warning", "path", f.Path, "error", f.Error)
			}
		}
	}
}
