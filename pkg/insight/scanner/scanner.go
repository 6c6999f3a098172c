package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Scanner walks a directory tree and builds file records.
type Scanner struct {
	opts Options
	log  *logging.Logger

	// Atomic counters for thread-safe progress reporting.
	dirsScanned  atomic.Int64
	filesScanned atomic.Int64

	// currentPath is the path currently being scanned (for progress).
	currentPath atomic.Value

	// failures collects per-file errors without stopping the scan.
	failures   []types.ScanError
	failuresMu sync.Mutex

	// records collects the built file records.
	records   []types.FileRecord
	recordsMu sync.Mutex

	// lastProgress tracks when we last reported progress to avoid
	// excessive callbacks.
	lastProgress atomic.Int64
}

// New creates a Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) *Scanner {
	opts.Validate()

	s := &Scanner{
		opts:     opts,
		log:      logging.Get("scanner"),
		failures: make([]types.ScanError, 0),
		records:  make([]types.FileRecord, 0),
	}
	s.currentPath.Store("")
	return s
}

// Scan walks the root and returns one record per inventoried file.
// Failures local to one file are absorbed into SoftFailures; only
// root-level failures return an error. Cancelling the context stops
// enqueueing new files and returns the records collected so far.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	startTime := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}

	s.currentPath.Store(root)
	s.reportProgressForce()

	paths := make(chan string, 4*s.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				if ctx.Err() != nil {
					continue // Drain without processing after cancellation.
				}
				s.buildRecord(ctx, path)
			}
		}()
	}

	var walkErr error
	if s.opts.Recursive {
		walkErr = s.walkRecursive(ctx, root, paths)
	} else {
		walkErr = s.walkFlat(ctx, root, paths)
	}
	close(paths)
	wg.Wait()

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return nil, walkErr
	}

	s.reportProgressForce()

	return &types.ScanResult{
		Records:      s.records,
		FilesScanned: s.filesScanned.Load(),
		DirsScanned:  s.dirsScanned.Load(),
		SoftFailures: s.failures,
		Elapsed:      time.Since(startTime),
	}, nil
}

// validateRoot resolves the root path to absolute and verifies it is a
// directory. Failures here are fatal: nothing has been scanned yet.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return root, nil
}

// walkRecursive traverses the tree depth-first with fastwalk, pruning
// excluded directories before descending into them. Symlinks are not
// followed, avoiding traversal cycles.
func (s *Scanner) walkRecursive(ctx context.Context, root string, paths chan<- string) error {
	conf := fastwalk.Config{
		Follow: false,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return context.Canceled
		}

		// Unreadable entries are soft failures; the walk continues.
		if err != nil {
			s.addFailure(path, err)
			return nil
		}

		if path != root && s.opts.Exclude.Exclude(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.dirsScanned.Add(1)
			s.currentPath.Store(path)
			s.reportProgress()
			return nil
		}

		if d.Type().IsRegular() {
			s.enqueue(ctx, path, paths)
		}

		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// walkFlat yields only the direct file children of root.
func (s *Scanner) walkFlat(ctx context.Context, root string, paths chan<- string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	s.dirsScanned.Add(1)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return context.Canceled
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if s.opts.Exclude.Exclude(path) {
			continue
		}
		s.enqueue(ctx, path, paths)
	}

	return nil
}

// enqueue hands a candidate path to the worker pool.
func (s *Scanner) enqueue(ctx context.Context, path string, paths chan<- string) {
	select {
	case paths <- path:
		s.filesScanned.Add(1)
	case <-ctx.Done():
	}
}

// buildRecord stats, classifies, and optionally enriches one file.
// Any failure here is isolated to this record.
func (s *Scanner) buildRecord(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// The file disappeared between enumeration and build.
		s.addFailure(path, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	cls := s.opts.Classifier.Classify(path, info.Size())

	rec := types.FileRecord{
		Path:      path,
		Size:      info.Size(),
		Extension: ext,
		Created:   getCreateTime(info),
		Modified:  info.ModTime(),
		Preview:   cls.Preview,
		MIMEType:  cls.MIMEType,
	}

	if s.opts.Enricher != nil {
		rec = s.opts.Enricher.Enrich(ctx, rec)
	}

	s.recordsMu.Lock()
	s.records = append(s.records, rec)
	s.recordsMu.Unlock()

	s.currentPath.Store(path)
	s.reportProgress()
}

// addFailure records a soft failure thread-safely.
func (s *Scanner) addFailure(path string, err error) {
	s.log.Debug("soft failure", "path", path, "error", err)
	s.failuresMu.Lock()
	s.failures = append(s.failures, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.failuresMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	// Throttle progress updates to every 10ms.
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing
// the throttle. Used for scan start and end.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.ScanProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		CurrentPath:  currentPath,
	})
}
