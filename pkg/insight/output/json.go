package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jamesainslie/insight/pkg/insight/stats"
)

// JSONFormatter formats a report as a single indented JSON object.
// The document mirrors the AggregateResult structure: general stats,
// extension histogram, age distribution, file tree, and video stats.
type JSONFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *stats.AggregateResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// ParseReport decodes a JSON report produced by JSONFormatter back into
// an AggregateResult. Round-tripping a report through ParseReport
// preserves the tree structure, including leaf metadata.
func ParseReport(data []byte) (*stats.AggregateResult, error) {
	var r stats.AggregateResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
