// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Status: session lifecycle (playing → won | lost).
//   - PowerUp: limited-use abilities consumable during a session.
//   - Session: state for a single in-progress or finished game.

package game

import "time"

// Verdict represents the evaluation result for a single letter in a guess.
type Verdict string

const (
	VerdictCorrect Verdict = "correct" // right letter, right position
	VerdictPresent Verdict = "present" // right letter, wrong position
	VerdictAbsent  Verdict = "absent"  // letter not left in the word
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// PowerUp names a limited-use ability.
type PowerUp string

const (
	PowerUpLetterReveal PowerUp = "letterReveal"
	PowerUpExtraTime    PowerUp = "extraTime"
	PowerUpWordSkip     PowerUp = "wordSkip"
)

// PowerUps lists every known kind.
var PowerUps = []PowerUp{PowerUpLetterReveal, PowerUpExtraTime, PowerUpWordSkip}

// Valid reports whether p is a known kind.
func (p PowerUp) Valid() bool {
	switch p {
	case PowerUpLetterReveal, PowerUpExtraTime, PowerUpWordSkip:
		return true
	}
	return false
}

const (
	MaxAttempts      = 6  // guesses allowed per word
	ExtraTimeSeconds = 30 // granted by the extraTime power-up
)

// Guess is one submitted word with its verdicts.
type Guess struct {
	Word     string    `json:"word"`
	Verdicts []Verdict `json:"verdicts"`
	At       time.Time `json:"at"`
}

// PowerUpUse records one consumed power-up.
type PowerUpUse struct {
	Kind PowerUp   `json:"kind"`
	At   time.Time `json:"at"`
}

// Session holds the state of a single game session. It is treated as an
// immutable snapshot: commands return a new Session instead of mutating.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Word   string `json:"word"` // secret, always lowercase
	Level  int    `json:"level"`

	Guesses []Guess `json:"guesses"`
	// Skipped holds guesses made against words replaced by wordSkip.
	Skipped []Guess `json:"skipped,omitempty"`

	Status Status `json:"status"`
	Combo  int    `json:"combo"`
	Score  int    `json:"score"`

	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt,omitzero"`
	ElapsedSeconds int       `json:"elapsedSeconds"`

	// PowerUps is the remaining per-kind allowance for this session.
	PowerUps     map[PowerUp]int `json:"powerUps"`
	PowerUpsUsed []PowerUpUse    `json:"powerUpsUsed,omitempty"`
}

// Result is the canonical delta a finished session reports to player stats.
type Result struct {
	SessionID      string `json:"sessionId"`
	Guesses        int    `json:"guesses"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Score          int    `json:"score"`
	Level          int    `json:"level"`
	Combo          int    `json:"combo"`
	Won            bool   `json:"won"`
}

// Clone returns a deep copy so callers never share slices or maps.
func (s Session) Clone() Session {
	c := s
	c.Guesses = cloneGuesses(s.Guesses)
	c.Skipped = cloneGuesses(s.Skipped)
	if s.PowerUps != nil {
		c.PowerUps = make(map[PowerUp]int, len(s.PowerUps))
		for k, v := range s.PowerUps {
			c.PowerUps[k] = v
		}
	}
	if s.PowerUpsUsed != nil {
		c.PowerUpsUsed = append([]PowerUpUse(nil), s.PowerUpsUsed...)
	}
	return c
}

func cloneGuesses(in []Guess) []Guess {
	if in == nil {
		return nil
	}
	out := make([]Guess, len(in))
	for i, g := range in {
		out[i] = g
		out[i].Verdicts = append([]Verdict(nil), g.Verdicts...)
	}
	return out
}
