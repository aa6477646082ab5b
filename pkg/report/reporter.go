// Package report records the outcome of every reported case of a
// suite run and renders it as JSON, Markdown or HTML.
package report

import (
	"fmt"
	"io"
	"time"
)

// Case statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// CaseResult is the outcome of one reported case.
type CaseResult struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Assertion bool          `json:"assertion,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Passed reports whether the case passed.
func (r CaseResult) Passed() bool {
	return r.Status == StatusPassed
}

// Reporter defines the interface for rendering a run summary.
type Reporter interface {
	// GenerateSummary renders the summary.
	GenerateSummary(summary *Summary) ([]byte, error)

	// WriteSummary renders the summary to w.
	WriteSummary(w io.Writer, summary *Summary) error

	// Extension is the file extension of the rendered output.
	Extension() string
}

// Formats lists the names accepted by NewReporter.
var Formats = []string{"json", "md", "html"}

// NewReporter returns the reporter for a format name.
func NewReporter(format string) (Reporter, error) {
	switch format {
	case "json":
		return NewJSONReporter(true), nil
	case "md":
		return NewMarkdownReporter(), nil
	case "html":
		return NewHTMLReporter(), nil
	default:
		return nil, fmt.Errorf(
			"unknown report format %q, want one of %v", format, Formats,
		)
	}
}
