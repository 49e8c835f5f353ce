package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/larmaysee/typier-sub002/internal/model"
)

func snapshotAt(target, typed string, start time.Time, durationSec float64) SessionSnapshot {
	return SessionSnapshot{
		TargetText:  target,
		TypedText:   typed,
		StartTime:   &start,
		CompletedAt: start.Add(time.Duration(durationSec * float64(time.Second))),
	}
}

func TestFinalResultsRequiresStart(t *testing.T) {
	_, err := CalculateFinalResults(SessionSnapshot{TargetText: "abc", TypedText: "abc"})
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestFinalResultsPositionalWords(t *testing.T) {
	start := time.Unix(0, 0)
	res, err := CalculateFinalResults(snapshotAt("the cat sat", "the dog sat", start, 60))
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.CorrectWords != 2 {
		t.Fatalf("expected 2 correct words, got %d", res.CorrectWords)
	}
	if res.IncorrectWords != 1 {
		t.Fatalf("expected 1 incorrect word, got %d", res.IncorrectWords)
	}
	if res.TotalWords != 3 {
		t.Fatalf("expected 3 total words, got %d", res.TotalWords)
	}
	if res.WPM != 2 {
		t.Fatalf("expected 2 WPM, got %d", res.WPM)
	}
}

func TestFinalResultsExtraTypedWords(t *testing.T) {
	start := time.Unix(0, 0)
	res, err := CalculateFinalResults(snapshotAt("one two", "one two three four five", start, 60))
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.CorrectWords != 2 {
		t.Fatalf("expected 2 correct words, got %d", res.CorrectWords)
	}
	if res.IncorrectWords != 3 {
		t.Fatalf("expected 3 incorrect words, got %d", res.IncorrectWords)
	}
}

func TestFinalResultsAccuracyRange(t *testing.T) {
	start := time.Unix(0, 0)
	cases := []struct{ target, typed string }{
		{"", ""},
		{"abc", "xyz"},
		{"hello world", "hello world"},
		{"short", "much longer typed text than the target"},
	}
	for _, tc := range cases {
		res, err := CalculateFinalResults(snapshotAt(tc.target, tc.typed, start, 30))
		if err != nil {
			t.Fatalf("calculate results for %q: %v", tc.typed, err)
		}
		if res.Accuracy < 0 || res.Accuracy > 100 {
			t.Fatalf("accuracy out of range for %q: %v", tc.typed, res.Accuracy)
		}
		if res.Consistency < 0 || res.Consistency > 100 {
			t.Fatalf("consistency out of range for %q: %v", tc.typed, res.Consistency)
		}
	}
}

func TestFinalResultsEmptyTypedAccuracy(t *testing.T) {
	start := time.Unix(0, 0)
	res, err := CalculateFinalResults(snapshotAt("target text", "", start, 10))
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected accuracy 100 on empty typed text, got %v", res.Accuracy)
	}
	if res.WPM != 0 {
		t.Fatalf("expected 0 WPM, got %d", res.WPM)
	}
}

func TestFinalResultsErrorsFromMistakeLog(t *testing.T) {
	start := time.Unix(0, 0)
	snap := snapshotAt("abc", "abd", start, 5)
	snap.Mistakes = []model.Mistake{{Expected: "c", Actual: "d", Position: 2, Timestamp: start}}
	res, err := CalculateFinalResults(snap)
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", res.Errors)
	}
}

func TestConsistencySingleWindow(t *testing.T) {
	start := time.Unix(0, 0)
	res, err := CalculateFinalResults(snapshotAt("abc", "abc", start, 5))
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.Consistency != 100 {
		t.Fatalf("expected consistency 100 for a single window, got %v", res.Consistency)
	}
}

func TestConsistencySteadyTyping(t *testing.T) {
	start := time.Unix(0, 0)
	snap := snapshotAt("aaaa aaaa aaaa", "aaaa aaaa aaaa", start, 30)
	// One keystroke per second: identical throughput in every window.
	for i := 0; i < 30; i++ {
		snap.Keystrokes = append(snap.Keystrokes, start.Add(time.Duration(i)*time.Second))
	}
	res, err := CalculateFinalResults(snap)
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	if res.Consistency < 95 {
		t.Fatalf("expected near-perfect consistency, got %v", res.Consistency)
	}
}

func TestConsistencyBurstyTyping(t *testing.T) {
	start := time.Unix(0, 0)
	snap := snapshotAt("aaaa aaaa aaaa", "aaaa aaaa aaaa", start, 30)
	// All keystrokes land in the first window.
	for i := 0; i < 30; i++ {
		snap.Keystrokes = append(snap.Keystrokes, start.Add(time.Duration(i*100)*time.Millisecond))
	}
	res, err := CalculateFinalResults(snap)
	if err != nil {
		t.Fatalf("calculate results: %v", err)
	}
	steady := snapshotAt("aaaa aaaa aaaa", "aaaa aaaa aaaa", start, 30)
	for i := 0; i < 30; i++ {
		steady.Keystrokes = append(steady.Keystrokes, start.Add(time.Duration(i)*time.Second))
	}
	steadyRes, err := CalculateFinalResults(steady)
	if err != nil {
		t.Fatalf("calculate steady results: %v", err)
	}
	if res.Consistency >= steadyRes.Consistency {
		t.Fatalf("bursty consistency %v should be below steady %v", res.Consistency, steadyRes.Consistency)
	}
}

func TestFingerUtilizationSums(t *testing.T) {
	dist := FingerUtilization("the quick brown fox jumps over the lazy dog 123")
	sum := 0.0
	for _, pct := range dist {
		if pct < 0 {
			t.Fatalf("negative percentage in %v", dist)
		}
		sum += pct
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("expected percentages to sum to 100, got %v", sum)
	}
}

func TestFingerUtilizationEmpty(t *testing.T) {
	dist := FingerUtilization("")
	if len(dist) == 0 {
		t.Fatalf("expected all finger buckets present")
	}
	for name, pct := range dist {
		if pct != 0 {
			t.Fatalf("expected zero for %s, got %v", name, pct)
		}
	}
}

func TestFingerUtilizationUnknownScript(t *testing.T) {
	dist := FingerUtilization("ꓐꓜꓟ")
	if dist[FingerUnknown] != 100 {
		t.Fatalf("expected unmapped script in unknown bucket, got %v", dist)
	}
}
