// Package config provides configuration management for the insight
// inventory tool.
package config

// Default configuration values for insight.
const (
	// DefaultPath is the default directory to scan when none is specified.
	DefaultPath = "."

	// DefaultWorkers is the default number of record-building workers.
	DefaultWorkers = 8

	// DefaultOutputFormat is the report format used when none is given.
	DefaultOutputFormat = "json"

	// DefaultQueryLimit caps db queries when no limit flag is given.
	// 0 means unlimited.
	DefaultQueryLimit = 0

	// DefaultProbeTimeoutSeconds bounds a single ffprobe invocation.
	DefaultProbeTimeoutSeconds = 30
)
