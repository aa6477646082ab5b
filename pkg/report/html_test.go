package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLReporter_GenerateSummary(t *testing.T) {
	data, err := NewHTMLReporter().GenerateSummary(BuildSummary(makeTestResults()))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<h1>livecheck - Run Summary</h1>")
	assert.Contains(t, content, "Client should connect")
	assert.Contains(t, content, `<td class="status-failed">FAILED</td>`)
	assert.Contains(t, content, "<tr><td>Pass Rate</td><td>50%</td></tr>")
	assert.Contains(t, content, "<h2>Failures</h2>")
	assert.Contains(t, content, "<p><strong>Kind:</strong> assertion</p>")
	assert.Contains(t, content, "Generated by livecheck")
	assert.Equal(t, "html", NewHTMLReporter().Extension())
}

func TestHTMLReporter_EscapesNames(t *testing.T) {
	results := makeTestResults()
	results[1].Name = "<script>alert('xss')</script>"
	results[1].Error = "a < b"

	data, err := NewHTMLReporter().GenerateSummary(BuildSummary(results))
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "<script>")
	assert.Contains(t, content, "&lt;script&gt;")
	assert.Contains(t, content, "a &lt; b")
}

func TestHTMLReporter_EmptySummary(t *testing.T) {
	data, err := NewHTMLReporter().GenerateSummary(BuildSummary(nil))
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "Pass Rate")
	assert.NotContains(t, content, "<h2>Failures</h2>")
	assert.Contains(t, content, "</html>")
}
