// Package session tracks per-upload disambiguation state. Every uploaded
// file gets its own session keyed by the originating chat and message, and
// all transitions on a session are serialized through its mutex so
// concurrent callback taps cannot race each other.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

var (
	// ErrExpired is returned when an event arrives for a session the
	// janitor already timed out.
	ErrExpired = errors.New("session expired")
	// ErrNotActive is returned when an event arrives for a session that
	// already resolved or was cancelled.
	ErrNotActive = errors.New("session is no longer active")
	// ErrInvalidTransition is returned when an event is not valid in the
	// session's current state, e.g. choosing a candidate before a search
	// ran.
	ErrInvalidTransition = errors.New("invalid transition for current state")
	// ErrNoSuchCandidate is returned when a choice index is out of range.
	ErrNoSuchCandidate = errors.New("no candidate at that index")
)

// State is the position of a session in its disambiguation flow.
type State int

const (
	// AwaitingConfirmation means a guess was extracted and the uploader
	// has been asked to search, edit, or cancel.
	AwaitingConfirmation State = iota
	// AwaitingManualTitle means the bot is waiting for the uploader to
	// type a corrected title.
	AwaitingManualTitle
	// AwaitingCandidateChoice means search results were presented and the
	// uploader has been asked to pick one.
	AwaitingCandidateChoice
	// Resolved means a candidate was chosen. Terminal.
	Resolved
	// Cancelled means the uploader abandoned the flow. Terminal.
	Cancelled
	// Expired means the session timed out without a decision. Terminal.
	Expired
)

func (s State) String() string {
	switch s {
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case AwaitingManualTitle:
		return "awaiting_manual_title"
	case AwaitingCandidateChoice:
		return "awaiting_candidate_choice"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Resolved || s == Cancelled || s == Expired
}

// Key identifies a session by the chat and the message that carried the
// uploaded file.
type Key struct {
	ChatID    int64
	MessageID int
}

// Session is the disambiguation state for one uploaded file.
type Session struct {
	mu sync.Mutex

	key        Key
	userID     int64
	fileID     string
	fileName   string
	state      State
	guess      naming.Guess
	candidates []tmdb.Candidate
	chosen     *tmdb.Candidate
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a session in AwaitingConfirmation with the given filename
// guess.
func New(key Key, userID int64, fileID, fileName string, guess naming.Guess) *Session {
	now := time.Now()
	return &Session{
		key:       key,
		userID:    userID,
		fileID:    fileID,
		fileName:  fileName,
		state:     AwaitingConfirmation,
		guess:     guess,
		createdAt: now,
		updatedAt: now,
	}
}

// Key returns the session's identity.
func (s *Session) Key() Key { return s.key }

// UserID returns the uploader's Telegram user id.
func (s *Session) UserID() int64 { return s.userID }

// FileID returns the Telegram file id of the uploaded document.
func (s *Session) FileID() string { return s.fileID }

// FileName returns the original filename of the uploaded document.
func (s *Session) FileName() string { return s.fileName }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Guess returns the current title guess.
func (s *Session) Guess() naming.Guess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guess
}

// Candidates returns the search results last attached to the session.
func (s *Session) Candidates() []tmdb.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// Chosen returns the resolved candidate, or nil before resolution.
func (s *Session) Chosen() *tmdb.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosen
}

// Age returns how long ago the session last transitioned.
func (s *Session) Age() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.updatedAt)
}

// guard returns the error matching a terminal state, or nil when the
// session can still transition. Callers must hold s.mu.
func (s *Session) guard() error {
	switch s.state {
	case Expired:
		return ErrExpired
	case Resolved, Cancelled:
		return ErrNotActive
	default:
		return nil
	}
}

func (s *Session) transition(to State) {
	s.state = to
	s.updatedAt = time.Now()
}

// SetCandidates attaches search results after a successful provider
// search. With one or more candidates the session moves to
// AwaitingCandidateChoice; with zero it moves to AwaitingManualTitle so
// the uploader can try a different title. Valid from
// AwaitingConfirmation and from AwaitingCandidateChoice (re-search after
// an edit).
func (s *Session) SetCandidates(candidates []tmdb.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.state == AwaitingManualTitle {
		return ErrInvalidTransition
	}

	s.candidates = candidates
	if len(candidates) == 0 {
		s.transition(AwaitingManualTitle)
	} else {
		s.transition(AwaitingCandidateChoice)
	}
	return nil
}

// CheckSearch reports whether a provider search may run for the session
// right now. It mirrors the SetCandidates preconditions so callers can
// validate before paying for the provider round trip.
func (s *Session) CheckSearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.state == AwaitingManualTitle {
		return ErrInvalidTransition
	}
	return nil
}

// EditTitle moves the session to AwaitingManualTitle so the uploader can
// type a corrected title. Valid from AwaitingConfirmation and
// AwaitingCandidateChoice.
func (s *Session) EditTitle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.state == AwaitingManualTitle {
		return nil
	}

	s.transition(AwaitingManualTitle)
	return nil
}

// SubmitTitle parses a manually typed title, replaces the guess, and
// returns the session to AwaitingConfirmation for a fresh search. A title
// that parses to nothing leaves the state unchanged and returns the parse
// error so the uploader can be re-prompted.
func (s *Session) SubmitTitle(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.state != AwaitingManualTitle {
		return ErrInvalidTransition
	}

	guess, err := naming.ParseManualTitle(text)
	if err != nil {
		return err
	}

	s.guess = guess
	s.candidates = nil
	s.transition(AwaitingConfirmation)
	return nil
}

// Choose resolves the session to the candidate at the given index and
// returns it. Valid only from AwaitingCandidateChoice.
func (s *Session) Choose(index int) (*tmdb.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.state != AwaitingCandidateChoice {
		return nil, ErrInvalidTransition
	}
	if index < 0 || index >= len(s.candidates) {
		return nil, ErrNoSuchCandidate
	}

	chosen := s.candidates[index]
	s.chosen = &chosen
	s.transition(Resolved)
	return &chosen, nil
}

// ChooseNone rejects all presented candidates and moves the session back
// to AwaitingManualTitle. Valid only from AwaitingCandidateChoice.
func (s *Session) ChooseNone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}
	if s.state != AwaitingCandidateChoice {
		return ErrInvalidTransition
	}

	s.transition(AwaitingManualTitle)
	return nil
}

// Cancel abandons the session. Cancelling a session that already reached a
// terminal state is a no-op: the earlier outcome is kept and nil is
// returned.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return nil
	}

	s.transition(Cancelled)
	return nil
}

// expire marks the session Expired. Terminal states are left untouched so
// an expiry racing a resolution never overwrites the decision.
func (s *Session) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return false
	}
	s.transition(Expired)
	return true
}
