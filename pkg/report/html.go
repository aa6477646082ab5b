package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

// HTMLReporter renders summaries as a standalone HTML page.
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

func (r *HTMLReporter) Extension() string { return "html" }

// GenerateSummary creates the HTML page of the summary.
func (r *HTMLReporter) GenerateSummary(
	summary *Summary,
) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteSummary(&buf, summary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSummary writes the HTML page to w.
func (r *HTMLReporter) WriteSummary(
	w io.Writer,
	summary *Summary,
) error {
	r.writeHeader(w, "livecheck - Run Summary")

	fmt.Fprintln(w, "<h1>livecheck - Run Summary</h1>")
	fmt.Fprintf(
		w,
		"<p><strong>Summary ID:</strong> %s</p>\n",
		html.EscapeString(summary.ID),
	)
	fmt.Fprintf(
		w,
		"<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339),
	)

	r.writeOverview(w, summary)
	r.writeStats(w, summary)
	r.writeFailures(w, summary)
	r.writeFooter(w)
	return nil
}

func (r *HTMLReporter) writeOverview(w io.Writer, summary *Summary) {
	fmt.Fprintln(w, "<h2>Cases</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(
		w,
		"<tr><th>Case</th><th>Status</th>"+
			"<th>Duration</th><th>Finished</th></tr>",
	)

	for _, c := range summary.Cases {
		cls := "status-passed"
		if !c.Passed() {
			cls = "status-failed"
		}
		fmt.Fprintf(
			w,
			"<tr><td>%s</td>"+
				"<td class=\"%s\">%s</td>"+
				"<td>%v</td><td>%s</td></tr>\n",
			html.EscapeString(c.Name),
			cls, strings.ToUpper(c.Status),
			c.Duration,
			c.EndTime.Format("2006-01-02 15:04:05"),
		)
	}

	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeStats(w io.Writer, summary *Summary) {
	fmt.Fprintln(w, "<h2>Statistics</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Metric</th><th>Value</th></tr>")
	fmt.Fprintf(
		w, "<tr><td>Total Cases</td><td>%d</td></tr>\n",
		summary.TotalCases,
	)
	fmt.Fprintf(
		w, "<tr><td>Passed</td><td>%d</td></tr>\n",
		summary.PassedCases,
	)
	fmt.Fprintf(
		w, "<tr><td>Failed</td><td>%d</td></tr>\n",
		summary.FailedCases,
	)
	if summary.TotalCases > 0 {
		fmt.Fprintf(
			w, "<tr><td>Pass Rate</td><td>%.0f%%</td></tr>\n",
			summary.PassRate*100,
		)
	}
	fmt.Fprintf(
		w, "<tr><td>Total Duration</td><td>%v</td></tr>\n",
		summary.TotalDuration,
	)
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeFailures(w io.Writer, summary *Summary) {
	if summary.FailedCases == 0 {
		return
	}
	fmt.Fprintln(w, "<h2>Failures</h2>")

	for _, c := range summary.Cases {
		if c.Passed() {
			continue
		}
		fmt.Fprintf(w, "<h3>%s</h3>\n", html.EscapeString(c.Name))
		kind := "error"
		if c.Assertion {
			kind = "assertion"
		}
		fmt.Fprintf(w, "<p><strong>Kind:</strong> %s</p>\n", kind)
		fmt.Fprintf(
			w, "<p><code>%s</code></p>\n",
			html.EscapeString(c.Error),
		)
	}
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
h3 { color: #34495e; }
table {
  border-collapse: collapse;
  width: 100%%;
  margin: 10px 0;
  background: #fff;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px 12px;
  text-align: left;
}
th { background: #3498db; color: #fff; }
tr:nth-child(even) { background: #f2f2f2; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed { color: #e74c3c; font-weight: bold; }
code {
  background: #ecf0f1;
  padding: 2px 6px;
  border-radius: 3px;
  font-size: 0.9em;
}
footer {
  margin-top: 40px;
  padding-top: 10px;
  border-top: 1px solid #ddd;
  color: #7f8c8d;
  font-size: 0.9em;
}
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintln(
		w, "<p>Generated by livecheck</p>",
	)
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
