// Package metrics contains the typing statistics calculations.
package metrics

import (
	"math"
	"time"

	"github.com/larmaysee/typier-sub002/internal/model"
)

// CalculateLiveMetrics computes the in-flight stats snapshot for a
// partially typed text. Comparison is index-aligned over runes so that
// multi-byte scripts (Lisu, Myanmar) count one character per glyph.
// The function is pure; callers pass now explicitly.
func CalculateLiveMetrics(typed, target string, startTime, now time.Time) model.LiveTypingStats {
	elapsed := now.Sub(startTime).Seconds()
	if elapsed <= 0 {
		return model.LiveTypingStats{CurrentAccuracy: 100}
	}

	typedRunes := []rune(typed)
	targetRunes := []rune(target)
	correct := countAlignedMatches(typedRunes, targetRunes)
	typedLen := len(typedRunes)

	stats := model.LiveTypingStats{
		TimeElapsed:     elapsed,
		CurrentAccuracy: 100,
	}
	minutes := elapsed / 60
	wpm := math.Round((float64(correct) / 5.0) / minutes)
	if wpm > 0 {
		stats.CurrentWPM = int(wpm)
	}
	if typedLen > 0 {
		stats.CurrentAccuracy = clamp(math.Round(float64(correct)/float64(typedLen)*100), 0, 100)
		stats.ErrorRate = float64(typedLen-correct) / float64(typedLen) * 100
	}
	stats.CharactersPerSecond = float64(correct) / elapsed
	if len(targetRunes) > 0 {
		stats.Progress = float64(typedLen) / float64(len(targetRunes)) * 100
	}
	return stats
}

func countAlignedMatches(typed, target []rune) int {
	n := len(typed)
	if len(target) < n {
		n = len(target)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if typed[i] == target[i] {
			correct++
		}
	}
	return correct
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
