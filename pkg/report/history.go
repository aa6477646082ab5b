package report

import (
	"fmt"
	"os"
	"time"
)

// HistoricalEntry represents a single suite run in the
// historical log.
type HistoricalEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	SummaryID   string    `json:"summary_id"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Duration    string    `json:"duration"`
	FailedCases []string  `json:"failed_cases,omitempty"`
}

// AppendToHistory adds an entry for the summary to the
// historical log stored at historyPath. Each entry is a single
// JSON line.
func AppendToHistory(historyPath string, summary *Summary) error {
	entry := HistoricalEntry{
		Timestamp: summary.GeneratedAt,
		SummaryID: summary.ID,
		Total:     summary.TotalCases,
		Passed:    summary.PassedCases,
		Failed:    summary.FailedCases,
		Duration:  summary.TotalDuration.String(),
	}
	for _, c := range summary.Cases {
		if !c.Passed() {
			entry.FailedCases = append(entry.FailedCases, c.Name)
		}
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return fmt.Errorf(
			"failed to marshal history entry: %w", err,
		)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}
