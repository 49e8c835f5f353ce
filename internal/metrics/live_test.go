package metrics

import (
	"testing"
	"time"
)

func TestLiveMetricsEmptyTyped(t *testing.T) {
	start := time.Unix(100, 0)
	stats := CalculateLiveMetrics("", "the quick brown fox", start, start.Add(5*time.Second))
	if stats.CurrentWPM != 0 {
		t.Fatalf("expected WPM 0, got %d", stats.CurrentWPM)
	}
	if stats.CurrentAccuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", stats.CurrentAccuracy)
	}
	if stats.Progress != 0 {
		t.Fatalf("expected progress 0, got %v", stats.Progress)
	}
}

func TestLiveMetricsZeroElapsed(t *testing.T) {
	start := time.Unix(100, 0)
	stats := CalculateLiveMetrics("the", "the cat", start, start)
	if stats.CurrentWPM != 0 || stats.CurrentAccuracy != 100 || stats.Progress != 0 {
		t.Fatalf("expected empty-state stats, got %+v", stats)
	}
}

func TestLiveMetricsCorrectTyping(t *testing.T) {
	start := time.Unix(0, 0)
	// 25 correct chars in 60s: (25/5)/1min = 5 WPM.
	target := "abcdefghijklmnopqrstuvwxy"
	stats := CalculateLiveMetrics(target, target, start, start.Add(time.Minute))
	if stats.CurrentWPM != 5 {
		t.Fatalf("expected 5 WPM, got %d", stats.CurrentWPM)
	}
	if stats.CurrentAccuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", stats.CurrentAccuracy)
	}
	if stats.Progress != 100 {
		t.Fatalf("expected progress 100, got %v", stats.Progress)
	}
	if stats.ErrorRate != 0 {
		t.Fatalf("expected error rate 0, got %v", stats.ErrorRate)
	}
}

func TestLiveMetricsMistakes(t *testing.T) {
	start := time.Unix(0, 0)
	stats := CalculateLiveMetrics("thx ca", "the cat", start, start.Add(30*time.Second))
	// 5 of 6 typed chars align with the target.
	if stats.CurrentAccuracy != 83 {
		t.Fatalf("expected accuracy 83, got %v", stats.CurrentAccuracy)
	}
	if stats.ErrorRate <= 0 {
		t.Fatalf("expected positive error rate, got %v", stats.ErrorRate)
	}
	if stats.CurrentAccuracy < 0 || stats.CurrentAccuracy > 100 {
		t.Fatalf("accuracy out of range: %v", stats.CurrentAccuracy)
	}
}

func TestLiveMetricsMultiScript(t *testing.T) {
	start := time.Unix(0, 0)
	// Myanmar script: rune-aligned comparison, one glyph per rune.
	target := "မင်္ဂလာပါ"
	stats := CalculateLiveMetrics(target, target, start, start.Add(10*time.Second))
	if stats.CurrentAccuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", stats.CurrentAccuracy)
	}
	if stats.Progress != 100 {
		t.Fatalf("expected progress 100, got %v", stats.Progress)
	}
}
