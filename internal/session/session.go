// Package session owns the typing session lifecycle and keystroke log.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/larmaysee/typier-sub002/internal/metrics"
	"github.com/larmaysee/typier-sub002/internal/model"
)

// Lifecycle errors.
var (
	ErrFinished     = errors.New("session: session already finished")
	ErrNotCompleted = errors.New("session: results only available after completion")
)

// Config controls per-session behavior.
type Config struct {
	// AllowBackspace permits deleting the last typed character.
	AllowBackspace bool
	// TimeLimit ends the session once elapsed time reaches it. Zero
	// means no time limit; the session ends when the target is typed
	// out or on explicit Submit.
	TimeLimit time.Duration
}

// Session is the state machine driving one typing test run. It is not
// safe for concurrent use; a session belongs to a single input loop.
type Session struct {
	id     string
	test   model.TypingTest
	cfg    Config
	now    func() time.Time
	status model.SessionStatus
	focus  model.FocusState

	targetRunes []rune
	typedRunes  []rune
	startTime   *time.Time
	cursor      model.CursorPosition
	mistakes    []model.Mistake
	keystrokes  []time.Time
	live        model.LiveTypingStats
	results     *model.TypingResults
}

// Option customizes session construction.
type Option func(*Session)

// WithClock injects a deterministic time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an idle session for the given test.
func New(test model.TypingTest, cfg Config, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		test:        test,
		cfg:         cfg,
		now:         time.Now,
		status:      model.StatusIdle,
		focus:       model.FocusFocused,
		targetRunes: []rune(test.TextContent),
		live:        model.LiveTypingStats{CurrentAccuracy: 100},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the current lifecycle state.
func (s *Session) Status() model.SessionStatus { return s.status }

// Focus returns the current focus state.
func (s *Session) Focus() model.FocusState { return s.focus }

// TypedText returns the text typed so far.
func (s *Session) TypedText() string { return string(s.typedRunes) }

// Cursor returns the current caret position.
func (s *Session) Cursor() model.CursorPosition { return s.cursor }

// Mistakes returns the mistake log in order of occurrence.
func (s *Session) Mistakes() []model.Mistake { return s.mistakes }

// Live returns the latest per-keystroke stats snapshot.
func (s *Session) Live() model.LiveTypingStats { return s.live }

// HandleKeystroke appends one typed character, advancing the cursor,
// logging any mistake and recomputing live stats. The first keystroke
// activates the session and sets its start time. A keystroke while
// paused resumes the session first.
func (s *Session) HandleKeystroke(r rune) error {
	if s.status.Terminal() {
		return ErrFinished
	}
	now := s.now()
	switch s.status {
	case model.StatusIdle:
		s.status = model.StatusActive
		start := now
		s.startTime = &start
	case model.StatusPaused:
		s.status = model.StatusActive
		s.focus = model.FocusFocused
	}

	pos := len(s.typedRunes)
	s.typedRunes = append(s.typedRunes, r)
	s.keystrokes = append(s.keystrokes, now)

	expected := rune(0)
	if pos < len(s.targetRunes) {
		expected = s.targetRunes[pos]
	}
	if r != expected {
		s.mistakes = append(s.mistakes, model.Mistake{
			Expected:  runeString(expected),
			Actual:    string(r),
			Position:  pos,
			Timestamp: now,
		})
	}

	s.recomputeCursor()
	s.live = metrics.CalculateLiveMetrics(string(s.typedRunes), s.test.TextContent, *s.startTime, now)

	if s.targetReached() || s.timeExpired(now) {
		return s.complete(now)
	}
	return nil
}

// HandleBackspace retreats the cursor by one character when deletion is
// permitted, dropping the most recent mistake if it was logged at the
// removed position.
func (s *Session) HandleBackspace() error {
	if s.status.Terminal() {
		return ErrFinished
	}
	if !s.cfg.AllowBackspace || len(s.typedRunes) == 0 {
		return nil
	}
	pos := len(s.typedRunes) - 1
	s.typedRunes = s.typedRunes[:pos]
	if n := len(s.mistakes); n > 0 && s.mistakes[n-1].Position == pos {
		s.mistakes = s.mistakes[:n-1]
	}
	s.recomputeCursor()
	if s.startTime != nil {
		s.live = metrics.CalculateLiveMetrics(string(s.typedRunes), s.test.TextContent, *s.startTime, s.now())
	}
	return nil
}

// Blur pauses an active session; no-op in any other state.
func (s *Session) Blur() {
	s.focus = model.FocusBlurred
	if s.status == model.StatusActive {
		s.status = model.StatusPaused
	}
}

// Refocus resumes a paused session.
func (s *Session) Refocus() {
	s.focus = model.FocusFocused
	if s.status == model.StatusPaused {
		s.status = model.StatusActive
	}
}

// Submit completes the session explicitly and returns the final
// results. Completing twice returns the frozen first result.
func (s *Session) Submit() (model.TypingResults, error) {
	if s.status == model.StatusCompleted {
		return *s.results, nil
	}
	if s.status == model.StatusAborted {
		return model.TypingResults{}, ErrFinished
	}
	if err := s.complete(s.now()); err != nil {
		return model.TypingResults{}, err
	}
	return *s.results, nil
}

// Abort discards the session without producing results. Aborting a
// completed session is rejected.
func (s *Session) Abort() error {
	if s.status == model.StatusCompleted {
		return ErrFinished
	}
	s.status = model.StatusAborted
	return nil
}

// Results returns the frozen final results of a completed session.
func (s *Session) Results() (model.TypingResults, error) {
	if s.status != model.StatusCompleted || s.results == nil {
		return model.TypingResults{}, ErrNotCompleted
	}
	return *s.results, nil
}

// Snapshot exposes the finalizer input for the current state.
func (s *Session) Snapshot() metrics.SessionSnapshot {
	return metrics.SessionSnapshot{
		TargetText:  s.test.TextContent,
		TypedText:   string(s.typedRunes),
		StartTime:   s.startTime,
		CompletedAt: s.now(),
		Mistakes:    s.mistakes,
		Keystrokes:  s.keystrokes,
	}
}

func (s *Session) complete(now time.Time) error {
	snap := s.Snapshot()
	snap.CompletedAt = now
	results, err := metrics.CalculateFinalResults(snap)
	if err != nil {
		return err
	}
	s.status = model.StatusCompleted
	s.results = &results
	return nil
}

func (s *Session) targetReached() bool {
	return len(s.targetRunes) > 0 && len(s.typedRunes) >= len(s.targetRunes)
}

func (s *Session) timeExpired(now time.Time) bool {
	return s.cfg.TimeLimit > 0 && s.startTime != nil && now.Sub(*s.startTime) >= s.cfg.TimeLimit
}

// recomputeCursor derives the caret position from the typed length.
// The word index counts target word boundaries passed so far; the char
// index is the offset inside the current word. IsSpacePosition is set
// only when the caret sits on the space trailing the current word.
func (s *Session) recomputeCursor() {
	pos := len(s.typedRunes)
	wordIndex := 0
	charIndex := 0
	limit := pos
	if limit > len(s.targetRunes) {
		limit = len(s.targetRunes)
	}
	for i := 0; i < limit; i++ {
		if s.targetRunes[i] == ' ' {
			wordIndex++
			charIndex = 0
		} else {
			charIndex++
		}
	}
	isSpace := pos < len(s.targetRunes) && s.targetRunes[pos] == ' '
	s.cursor = model.CursorPosition{
		WordIndex:       wordIndex,
		CharIndex:       charIndex,
		IsSpacePosition: isSpace,
	}
}

func runeString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}
