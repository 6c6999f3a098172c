// Package scanner enumerates files in a directory tree and builds one
// metadata record per file. Traversal uses fastwalk with exclusion
// pruning; record building runs on a bounded worker pool with per-file
// failure isolation.
package scanner

import (
	"github.com/jamesainslie/insight/pkg/insight/classify"
	"github.com/jamesainslie/insight/pkg/insight/filter"
	"github.com/jamesainslie/insight/pkg/insight/media"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

// DefaultWorkers is the default number of record-building workers.
const DefaultWorkers = 8

// Options configures the scanner behavior.
type Options struct {
	// Root is the directory to scan.
	Root string

	// Recursive enables traversal into subdirectories. When false, only
	// direct file children of Root are scanned.
	Recursive bool

	// Exclude decides which paths are pruned from the scan.
	// Nil uses filter.Default().
	Exclude *filter.Filter

	// Classifier determines MIME type, binary verdict, and preview.
	// Nil uses classify.New().
	Classifier *classify.Classifier

	// Enricher adds video metadata to video records. Nil disables
	// enrichment entirely.
	Enricher *media.Enricher

	// Workers is the number of concurrent record builders.
	// Values below 1 use DefaultWorkers.
	Workers int

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// Validate applies defaults for unset options.
func (o *Options) Validate() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Exclude == nil {
		o.Exclude = filter.Default()
	}
	if o.Classifier == nil {
		o.Classifier = classify.New()
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
}
