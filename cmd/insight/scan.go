package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/insight/pkg/insight/config"
	"github.com/jamesainslie/insight/pkg/insight/filter"
	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/media"
	"github.com/jamesainslie/insight/pkg/insight/output"
	"github.com/jamesainslie/insight/pkg/insight/scanner"
	"github.com/jamesainslie/insight/pkg/insight/stats"
	"github.com/jamesainslie/insight/pkg/insight/store"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory and report file statistics",
	Long: `Scan walks the given directory (current directory by default), builds
a record for every file, and prints aggregate statistics. Use --output
to also write a full report file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("output", "o", "", "write a report file to this path")
	scanCmd.Flags().StringP("format", "f", "", "report format: json or yaml")
	scanCmd.Flags().BoolP("recursive", "r", true, "descend into subdirectories")
	scanCmd.Flags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	scanCmd.Flags().Bool("video-metadata", false, "probe video files with ffprobe")
	scanCmd.Flags().IntP("workers", "w", 0, "record builder worker count (0=default)")
	scanCmd.Flags().Bool("store", false, "persist records to the database")
	scanCmd.Flags().String("store-path", "", "database directory")

	_ = viper.BindPFlag("output.path", scanCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.format", scanCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("scan.recursive", scanCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("scan.exclude", scanCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("scan.video_metadata", scanCmd.Flags().Lookup("video-metadata"))
	_ = viper.BindPFlag("scan.workers", scanCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("store.enabled", scanCmd.Flags().Lookup("store"))
	_ = viper.BindPFlag("store.path", scanCmd.Flags().Lookup("store-path"))

	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	// Determine scan path
	scanPath := viper.GetString("default_path")
	if len(args) > 0 {
		scanPath = args[0]
	}

	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Configuration errors are fatal: nothing has been scanned yet.
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	f := filter.New(viper.GetStringSlice("scan.exclude")...)

	var enricher *media.Enricher
	if viper.GetBool("scan.video_metadata") {
		timeout := time.Duration(viper.GetInt("scan.probe_timeout")) * time.Second
		enricher = media.NewEnricher(media.NewFFProbe(), media.WithTimeout(timeout))
	}

	opts := scanner.Options{
		Root:       absPath,
		Recursive:  viper.GetBool("scan.recursive"),
		Exclude:    f,
		Enricher:   enricher,
		Workers:    viper.GetInt("scan.workers"),
		OnProgress: progressPrinter(),
	}

	// Cancel the scan on SIGINT/SIGTERM; partial results still flow
	// through aggregation below.
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := scanner.New(opts).Scan(ctx)
	if err != nil {
		return err
	}
	if opts.OnProgress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if ctx.Err() != nil {
		printInfo("Scan interrupted; results are partial.")
	}

	logVideoRecords(result.Records)

	if viper.GetBool("store.enabled") {
		// Store failures are reported, never fatal: the report still runs.
		if err := saveRecords(ctx, result.Records); err != nil {
			printError("saving records: %v", err)
		}
	}

	agg := stats.Aggregate(result.Records, time.Now())
	printSummary(&agg, result)

	if outputPath := viper.GetString("output.path"); outputPath != "" {
		if err := output.WriteReport(outputPath, &agg, viper.GetString("output.format")); err != nil {
			return err
		}
		printInfo("Report written to %s", outputPath)
	}

	return nil
}

// progressPrinter returns a progress callback writing to stderr, or nil
// in quiet mode.
func progressPrinter() func(types.ScanProgress) {
	if getQuiet() {
		return nil
	}
	return func(p types.ScanProgress) {
		fmt.Fprintf(os.Stderr, "\rScanning: %d files, %d dirs", p.FilesScanned, p.DirsScanned)
	}
}

// logVideoRecords emits one debug line per enriched video record.
func logVideoRecords(records []types.FileRecord) {
	logger := logging.Get("cli")
	for i := range records {
		rec := &records[i]
		if !rec.HasVideoMetadata() {
			continue
		}
		logger.Debug("video metadata",
			"path", rec.Path,
			"duration", rec.Video.Duration,
			"resolution", rec.Video.Resolution(),
			"codec", rec.Video.VideoCodec)
	}
}

// saveRecords persists the scan results to the database.
func saveRecords(ctx context.Context, records []types.FileRecord) error {
	s, err := store.Open(storePath())
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.Save(ctx, records)
	printInfo("Saved %d records to %s", saved, storePath())
	return err
}

// storePath returns the configured database directory.
func storePath() string {
	if path := viper.GetString("store.path"); path != "" {
		return path
	}
	return config.DefaultStorePath()
}
