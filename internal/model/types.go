// Package model defines shared data structures.
package model

import "time"

// TestMode identifies how a typing test was run.
type TestMode string

// Test modes.
const (
	ModeNormal      TestMode = "normal"
	ModePractice    TestMode = "practice"
	ModeCompetition TestMode = "competition"
)

// SessionStatus is the lifecycle state of a typing session.
type SessionStatus string

// Session lifecycle states.
const (
	StatusIdle      SessionStatus = "IDLE"
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusAborted   SessionStatus = "ABORTED"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// FocusState tracks whether the typing surface has input focus.
type FocusState string

// Focus states.
const (
	FocusFocused FocusState = "FOCUSED"
	FocusBlurred FocusState = "BLURRED"
)

// TypingTest is the persisted, append-only record of a completed test.
type TypingTest struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	Mode             TestMode      `json:"mode"`
	Difficulty       string        `json:"difficulty"`
	Language         string        `json:"language"`
	KeyboardLayoutID string        `json:"keyboardLayoutId"`
	TextContent      string        `json:"textContent"`
	Results          TypingResults `json:"results"`
	Timestamp        time.Time     `json:"timestamp"`
	CompetitionID    string        `json:"competitionId,omitempty"`
}

// TypingResults is the final outcome snapshot of a completed session.
type TypingResults struct {
	WPM               int                `json:"wpm"`
	Accuracy          float64            `json:"accuracy"`
	CorrectWords      int                `json:"correctWords"`
	IncorrectWords    int                `json:"incorrectWords"`
	TotalWords        int                `json:"totalWords"`
	Duration          float64            `json:"duration"`
	CharactersTyped   int                `json:"charactersTyped"`
	CorrectChars      int                `json:"correctChars"`
	Errors            int                `json:"errors"`
	Consistency       float64            `json:"consistency"`
	FingerUtilization map[string]float64 `json:"fingerUtilization"`
}

// LiveTypingStats is the per-keystroke snapshot shown while typing.
// Recomputed on every keystroke, never persisted.
type LiveTypingStats struct {
	CurrentWPM          int     `json:"currentWpm"`
	CurrentAccuracy     float64 `json:"currentAccuracy"`
	CharactersPerSecond float64 `json:"charactersPerSecond"`
	ErrorRate           float64 `json:"errorRate"`
	TimeElapsed         float64 `json:"timeElapsed"`
	Progress            float64 `json:"progress"`
}

// CursorPosition locates the caret inside the target text.
// IsSpacePosition is true only at the trailing boundary of the current
// word, before the next word starts.
type CursorPosition struct {
	WordIndex       int  `json:"wordIndex"`
	CharIndex       int  `json:"charIndex"`
	IsSpacePosition bool `json:"isSpacePosition"`
}

// Mistake records a single divergence between typed and target text.
type Mistake struct {
	Expected  string    `json:"expectedChar"`
	Actual    string    `json:"actualChar"`
	Position  int       `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}

// OperationType is the kind of a queued sync operation.
type OperationType string

// Queued operation types.
const (
	OpSave   OperationType = "save"
	OpDelete OperationType = "delete"
)

// QueuedOperation is one deferred remote write awaiting retry.
// Timestamp is the earliest moment the operation should run again; the
// processor pushes it forward on each failed attempt.
type QueuedOperation struct {
	ID         string        `json:"id"`
	Type       OperationType `json:"type"`
	Test       *TypingTest   `json:"test,omitempty"`
	UserID     string        `json:"userId,omitempty"`
	TestID     string        `json:"testId,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	RetryCount int           `json:"retryCount"`
}

// TimeFrame restricts leaderboard queries to a recency window.
type TimeFrame string

// Leaderboard time frames.
const (
	TimeFrameDay   TimeFrame = "day"
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameMonth TimeFrame = "month"
	TimeFrameAll   TimeFrame = "all"
)

// Cutoff returns the oldest timestamp admitted by the frame, relative
// to now. The zero time means no cutoff.
func (f TimeFrame) Cutoff(now time.Time) time.Time {
	switch f {
	case TimeFrameDay:
		return now.Add(-24 * time.Hour)
	case TimeFrameWeek:
		return now.Add(-7 * 24 * time.Hour)
	case TimeFrameMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// TestFilter narrows test listings.
type TestFilter struct {
	Mode       TestMode
	Language   string
	Difficulty string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// Matches reports whether the test passes the mode/language/difficulty
// and date-range conditions. Limit and Offset are applied by callers.
func (f TestFilter) Matches(t TypingTest) bool {
	if f.Mode != "" && t.Mode != f.Mode {
		return false
	}
	if f.Language != "" && t.Language != f.Language {
		return false
	}
	if f.Difficulty != "" && t.Difficulty != f.Difficulty {
		return false
	}
	if f.DateFrom != nil && t.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.Timestamp.After(*f.DateTo) {
		return false
	}
	return true
}

// LeaderboardFilter narrows leaderboard queries.
type LeaderboardFilter struct {
	Language  string
	Mode      TestMode
	TimeFrame TimeFrame
	Limit     int
}

// LeaderboardEntry is one ranked best-result row.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    string    `json:"userId"`
	TestID    string    `json:"testId"`
	WPM       int       `json:"wpm"`
	Accuracy  float64   `json:"accuracy"`
	Language  string    `json:"language"`
	Mode      TestMode  `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncStatus summarizes the retry queue for callers.
type SyncStatus struct {
	Pending   int        `json:"pending"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	NextRetry *time.Time `json:"nextRetry,omitempty"`
}
