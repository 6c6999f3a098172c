// Package filter decides whether paths are excluded from a scan based on
// glob-style patterns. Matching follows shell fnmatch semantics: patterns
// are matched against the whole path string and "*" crosses directory
// separators.
package filter

import (
	"github.com/gobwas/glob"
)

// DefaultPatterns is the exclusion set used when a caller supplies none.
// It covers dotfiles and dot-directories, VCS metadata, package and cache
// directories, editor directories, and compiled Python artifacts.
var DefaultPatterns = []string{
	"**/.*",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/node_modules/**",
	"**/venv/**",
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/.vscode/**",
	"**/.idea/**",
}

// Filter holds compiled exclusion patterns.
type Filter struct {
	patterns []glob.Glob
	raw      []string
}

// New compiles the given patterns into a Filter. Invalid patterns are
// skipped. Patterns are compiled without a separator so that "*" matches
// across path segments, mirroring fnmatch.
func New(patterns ...string) *Filter {
	f := &Filter{
		patterns: make([]glob.Glob, 0, len(patterns)),
		raw:      make([]string, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue // Skip invalid patterns.
		}
		f.patterns = append(f.patterns, g)
		f.raw = append(f.raw, p)
	}
	return f
}

// Default returns a Filter compiled from DefaultPatterns.
func Default() *Filter {
	return New(DefaultPatterns...)
}

// Exclude reports whether the path matches any exclusion pattern.
// The same check is applied to directories before descending into them
// and to individual files before a record is built.
func (f *Filter) Exclude(path string) bool {
	for _, g := range f.patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Patterns returns the raw pattern strings that compiled successfully.
func (f *Filter) Patterns() []string {
	return f.raw
}
