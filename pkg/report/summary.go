package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	jsonMarshal       = json.Marshal
	jsonMarshalIndent = json.MarshalIndent
)

// Summary is the aggregated outcome of a suite run.
type Summary struct {
	ID            string        `json:"id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Cases         []CaseResult  `json:"cases"`
	TotalCases    int           `json:"total_cases"`
	PassedCases   int           `json:"passed_cases"`
	FailedCases   int           `json:"failed_cases"`
	ErrorCases    int           `json:"error_cases"`
	TotalDuration time.Duration `json:"total_duration"`
	PassRate      float64       `json:"pass_rate"`
}

// BuildSummary aggregates results. ErrorCases counts failures
// that were not assertion failures.
func BuildSummary(results []CaseResult) *Summary {
	now := time.Now()
	summary := &Summary{
		ID: fmt.Sprintf(
			"summary_%s", now.Format("20060102_150405"),
		),
		GeneratedAt: now,
		Cases:       make([]CaseResult, 0, len(results)),
	}

	for _, r := range results {
		summary.Cases = append(summary.Cases, r)
		summary.TotalCases++
		summary.TotalDuration += r.Duration
		if r.Passed() {
			summary.PassedCases++
			continue
		}
		summary.FailedCases++
		if !r.Assertion {
			summary.ErrorCases++
		}
	}

	if summary.TotalCases > 0 {
		summary.PassRate =
			float64(summary.PassedCases) /
				float64(summary.TotalCases)
	}
	return summary
}

// SaveSummary writes the summary to outputDir with every
// reporter, named summary_<timestamp>.<ext>, and points
// latest_summary.<ext> at each of them.
func SaveSummary(
	summary *Summary,
	outputDir string,
	reporters ...Reporter,
) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}
	if len(reporters) == 0 {
		reporters = []Reporter{
			NewJSONReporter(true), NewMarkdownReporter(),
		}
	}

	ts := summary.GeneratedAt.Format("20060102_150405")
	paths := make([]string, 0, len(reporters))
	for _, rep := range reporters {
		data, err := rep.GenerateSummary(summary)
		if err != nil {
			return paths, fmt.Errorf(
				"failed to render %s summary: %w",
				rep.Extension(), err,
			)
		}
		path := filepath.Join(
			outputDir,
			fmt.Sprintf("summary_%s.%s", ts, rep.Extension()),
		)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf(
				"failed to write %s summary: %w",
				rep.Extension(), err,
			)
		}
		paths = append(paths, path)

		latest := filepath.Join(
			outputDir, "latest_summary."+rep.Extension(),
		)
		_ = os.Remove(latest)
		_ = os.Symlink(filepath.Base(path), latest)
	}
	return paths, nil
}

// MarkdownReporter renders summaries as Markdown.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

func (r *MarkdownReporter) Extension() string { return "md" }

// GenerateSummary renders summary as Markdown.
func (r *MarkdownReporter) GenerateSummary(
	summary *Summary,
) ([]byte, error) {
	return []byte(generateSummaryMarkdown(summary)), nil
}

// WriteSummary writes the Markdown rendering of summary to w.
func (r *MarkdownReporter) WriteSummary(
	w io.Writer,
	summary *Summary,
) error {
	_, err := io.WriteString(w, generateSummaryMarkdown(summary))
	return err
}

func generateSummaryMarkdown(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# livecheck - Run Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(
		&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339),
	)

	sb.WriteString("## Cases\n\n")
	sb.WriteString("| Case | Status | Duration |\n")
	sb.WriteString("|------|--------|----------|\n")
	for _, c := range summary.Cases {
		fmt.Fprintf(
			&sb, "| %s | %s | %v |\n",
			escapeCell(c.Name), strings.ToUpper(c.Status), c.Duration,
		)
	}

	if summary.FailedCases > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, c := range summary.Cases {
			if c.Passed() {
				continue
			}
			fmt.Fprintf(&sb, "- **%s**: %s\n", c.Name, c.Error)
		}
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Cases | %d |\n", summary.TotalCases)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.PassedCases)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.FailedCases)
	fmt.Fprintf(&sb, "| Errors | %d |\n", summary.ErrorCases)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
