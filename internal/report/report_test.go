package report

import (
	"strings"
	"testing"
	"time"

	"github.com/larmaysee/typier-sub002/internal/model"
)

func TestRenderTestsEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderTests(&b, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), "No tests found.") {
		t.Fatalf("unexpected output: %q", b.String())
	}
}

func TestRenderTestsColumns(t *testing.T) {
	var b strings.Builder
	tests := []model.TypingTest{{
		ID:        "t-1",
		Mode:      model.ModeNormal,
		Language:  "lisu",
		Timestamp: time.Unix(1000, 0),
		Results: model.TypingResults{
			WPM: 42, Accuracy: 96, CorrectWords: 24, TotalWords: 25, Errors: 3,
		},
	}}
	if err := RenderTests(&b, tests); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	for _, want := range []string{"42", "96%", "24/25", "lisu", "t-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
}

func TestRenderLeaderboardRanks(t *testing.T) {
	var b strings.Builder
	entries := []model.LeaderboardEntry{
		{Rank: 1, UserID: "u1", WPM: 80, Accuracy: 98, Language: "en", Timestamp: time.Unix(1000, 0)},
		{Rank: 2, UserID: "u2", WPM: 75, Accuracy: 95, Language: "en", Timestamp: time.Unix(2000, 0)},
	}
	if err := RenderLeaderboard(&b, entries); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "u1") || !strings.Contains(out, "u2") {
		t.Fatalf("missing users:\n%s", out)
	}
	if strings.Index(out, "u1") > strings.Index(out, "u2") {
		t.Fatalf("expected rank order preserved:\n%s", out)
	}
}

func TestRenderSyncStatus(t *testing.T) {
	var b strings.Builder
	last := time.Unix(5000, 0)
	if err := RenderSyncStatus(&b, model.SyncStatus{Pending: 2, LastSync: &last}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "Pending operations: 2") {
		t.Fatalf("missing pending count:\n%s", out)
	}

	b.Reset()
	if err := RenderSyncStatus(&b, model.SyncStatus{}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(b.String(), "Last sync: never") {
		t.Fatalf("missing never line:\n%s", b.String())
	}
}
