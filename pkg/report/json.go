package report

import (
	"io"
)

// JSONReporter renders summaries as JSON.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

func (r *JSONReporter) Extension() string { return "json" }

// GenerateSummary creates a JSON document of the summary.
func (r *JSONReporter) GenerateSummary(
	summary *Summary,
) ([]byte, error) {
	if r.pretty {
		return jsonMarshalIndent(summary, "", "  ")
	}
	return jsonMarshal(summary)
}

// WriteSummary writes the JSON document to w.
func (r *JSONReporter) WriteSummary(
	w io.Writer,
	summary *Summary,
) error {
	data, err := r.GenerateSummary(summary)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
