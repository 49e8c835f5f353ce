package report

import (
	"fmt"
	"io"
	"time"

	"github.com/larmaysee/typier-sub002/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// RenderTests prints a table of typing tests.
func RenderTests(w io.Writer, tests []model.TypingTest) error {
	if len(tests) == 0 {
		_, err := fmt.Fprintln(w, "No tests found.")
		return err
	}
	headers := []string{"When", "Mode", "Lang", "WPM", "Accuracy", "Words", "Errors", "ID"}
	rows := make([][]string, 0, len(tests))
	for _, t := range tests {
		rows = append(rows, []string{
			t.Timestamp.Local().Format(timeLayout),
			string(t.Mode),
			t.Language,
			fmt.Sprintf("%d", t.Results.WPM),
			fmt.Sprintf("%.0f%%", t.Results.Accuracy),
			fmt.Sprintf("%d/%d", t.Results.CorrectWords, t.Results.TotalWords),
			fmt.Sprintf("%d", t.Results.Errors),
			t.ID,
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints a ranked leaderboard table.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No leaderboard entries.")
		return err
	}
	headers := []string{"Rank", "User", "WPM", "Accuracy", "Lang", "When"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.UserID,
			fmt.Sprintf("%d", e.WPM),
			fmt.Sprintf("%.0f%%", e.Accuracy),
			e.Language,
			e.Timestamp.Local().Format(timeLayout),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSyncStatus prints the retry queue summary.
func RenderSyncStatus(w io.Writer, status model.SyncStatus) error {
	if _, err := fmt.Fprintf(w, "Pending operations: %d\n", status.Pending); err != nil {
		return err
	}
	if status.LastSync != nil {
		if _, err := fmt.Fprintf(w, "Last sync: %s\n", status.LastSync.Local().Format(time.RFC3339)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "Last sync: never"); err != nil {
			return err
		}
	}
	if status.NextRetry != nil {
		if _, err := fmt.Fprintf(w, "Next retry: %s\n", status.NextRetry.Local().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}
