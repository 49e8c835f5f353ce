package metrics

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/larmaysee/typier-sub002/internal/model"
)

// ErrNotStarted is returned when final results are requested for a
// session that never received a first keystroke.
var ErrNotStarted = errors.New("metrics: session has no start time")

// consistencyWindow is the bucket width used for the consistency score.
const consistencyWindow = 10 * time.Second

// SessionSnapshot is the read-only session state the finalizer consumes.
// Keystrokes is the timestamp of every keystroke in order; it feeds the
// windowed-WPM consistency score.
type SessionSnapshot struct {
	TargetText  string
	TypedText   string
	StartTime   *time.Time
	CompletedAt time.Time
	Mistakes    []model.Mistake
	Keystrokes  []time.Time
}

// CalculateFinalResults turns a completed session snapshot into the
// persisted results record. It fails if the session never started.
func CalculateFinalResults(snap SessionSnapshot) (model.TypingResults, error) {
	if snap.StartTime == nil {
		return model.TypingResults{}, ErrNotStarted
	}
	completed := snap.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	duration := completed.Sub(*snap.StartTime).Seconds()
	if duration < 0 {
		duration = 0
	}

	targetWords := strings.Fields(snap.TargetText)
	typedWords := strings.Fields(snap.TypedText)
	correctWords, incorrectWords := compareWords(targetWords, typedWords)

	typedRunes := []rune(snap.TypedText)
	correctChars := countAlignedMatches(typedRunes, []rune(snap.TargetText))
	charactersTyped := len(typedRunes)

	wpm := 0
	if duration > 0 {
		if v := math.Round(float64(correctWords) / (duration / 60)); v > 0 {
			wpm = int(v)
		}
	}

	accuracy := 100.0
	if charactersTyped > 0 {
		accuracy = clamp(math.Round(float64(correctChars)/float64(charactersTyped)*100), 0, 100)
	}

	return model.TypingResults{
		WPM:               wpm,
		Accuracy:          accuracy,
		CorrectWords:      correctWords,
		IncorrectWords:    incorrectWords,
		TotalWords:        len(targetWords),
		Duration:          duration,
		CharactersTyped:   charactersTyped,
		CorrectChars:      correctChars,
		Errors:            len(snap.Mistakes),
		Consistency:       consistencyScore(*snap.StartTime, duration, snap.Keystrokes),
		FingerUtilization: FingerUtilization(snap.TypedText),
	}, nil
}

// compareWords scores words positionally: word i is correct iff the
// typed and target words at index i match exactly. Typed words beyond
// the target's length count fully as incorrect.
func compareWords(target, typed []string) (correct, incorrect int) {
	n := len(typed)
	if len(target) < n {
		n = len(target)
	}
	for i := 0; i < n; i++ {
		if typed[i] == target[i] {
			correct++
		} else {
			incorrect++
		}
	}
	if len(typed) > len(target) {
		incorrect += len(typed) - len(target)
	}
	return correct, incorrect
}

// consistencyScore buckets the keystroke timeline into fixed windows,
// takes per-window WPM, and maps the coefficient of variation onto
// [0,100]. Fewer than two windows scores a perfect 100.
func consistencyScore(start time.Time, durationSec float64, keystrokes []time.Time) float64 {
	if durationSec <= 0 {
		return 100
	}
	windowSec := consistencyWindow.Seconds()
	buckets := int(math.Ceil(durationSec / windowSec))
	if buckets < 1 {
		buckets = 1
	}
	if buckets < 2 {
		return 100
	}

	counts := make([]float64, buckets)
	for _, ts := range keystrokes {
		offset := ts.Sub(start).Seconds()
		if offset < 0 {
			continue
		}
		idx := int(offset / windowSec)
		if idx >= buckets {
			idx = buckets - 1
		}
		counts[idx]++
	}

	wpms := make([]float64, buckets)
	for i := range counts {
		width := windowSec
		if last := durationSec - float64(i)*windowSec; last < width {
			width = last
		}
		if width <= 0 {
			continue
		}
		wpms[i] = (counts[i] / 5.0) / (width / 60)
	}

	mean := 0.0
	for _, v := range wpms {
		mean += v
	}
	mean /= float64(len(wpms))
	if mean <= 0 {
		return 100
	}
	variance := 0.0
	for _, v := range wpms {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(wpms))
	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		cv = 1
	}
	return clamp(100*(1-cv), 0, 100)
}
