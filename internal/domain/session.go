package domain

import (
	"fmt"
	"strings"
	"time"
)

type SessionID string

type Speaker string

const (
	SpeakerPlayer   Speaker = "player"
	SpeakerNarrator Speaker = "narrator"
)

const (
	DefaultTitle         = "New Story"
	DefaultModel         = "mistral"
	DefaultInitialPrompt = "You are a traveler who just arrived in a mysterious town. What would you like to do?"
)

func (s Speaker) Valid() bool {
	switch s {
	case SpeakerPlayer, SpeakerNarrator:
		return true
	default:
		return false
	}
}

// Label is the name shown in transcripts and prompts.
func (s Speaker) Label() string {
	switch s {
	case SpeakerPlayer:
		return "You"
	case SpeakerNarrator:
		return "Narrator"
	default:
		return string(s)
	}
}

type Turn struct {
	Speaker   Speaker
	Message   string
	Timestamp time.Time
}

type Session struct {
	ID            SessionID
	Title         string
	Description   string
	ModelName     string
	InitialPrompt string
	CreatedAt     time.Time
	LastPlayedAt  time.Time
	Dialogue      []Turn
}

func (s Session) Validate() error {
	if strings.TrimSpace(string(s.ID)) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSessionID)
	}
	for i, turn := range s.Dialogue {
		if !turn.Speaker.Valid() {
			return fmt.Errorf("turn %d: %w %q", i, ErrInvalidSpeaker, turn.Speaker)
		}
	}

	return nil
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	if s.Dialogue != nil {
		dialogue := make([]Turn, len(s.Dialogue))
		copy(dialogue, s.Dialogue)
		s.Dialogue = dialogue
	}

	return s
}

func (s *Session) AppendTurn(speaker Speaker, message string, at time.Time) error {
	if !speaker.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidSpeaker, speaker)
	}

	at = NormalizeTime(at)
	s.Dialogue = append(s.Dialogue, Turn{Speaker: speaker, Message: message, Timestamp: at})
	s.MarkPlayed(at)

	return nil
}

// MarkPlayed moves LastPlayedAt forward. Earlier instants are ignored.
func (s *Session) MarkPlayed(at time.Time) {
	at = NormalizeTime(at)
	if at.After(s.LastPlayedAt) {
		s.LastPlayedAt = at
	}
}

// RecentTurns returns at most n trailing turns. n <= 0 means all of them.
func (s Session) RecentTurns(n int) []Turn {
	if n <= 0 || n >= len(s.Dialogue) {
		return s.Dialogue
	}

	return s.Dialogue[len(s.Dialogue)-n:]
}

// ExtendsDialogue reports whether next keeps every turn of prev, in order, as its prefix.
func ExtendsDialogue(prev, next []Turn) bool {
	if len(next) < len(prev) {
		return false
	}
	for i := range prev {
		if !prev[i].Equal(next[i]) {
			return false
		}
	}

	return true
}

func (t Turn) Equal(other Turn) bool {
	return t.Speaker == other.Speaker && t.Message == other.Message && t.Timestamp.Equal(other.Timestamp)
}

// NormalizeTime drops the monotonic reading and location so values survive a JSON round trip unchanged.
func NormalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Round(0)
}
