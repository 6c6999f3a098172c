package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/insight/pkg/insight/stats"
)

// YAMLFormatter formats a report as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *stats.AggregateResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
