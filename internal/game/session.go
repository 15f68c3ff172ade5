// internal/game/session.go
//
// GameSession state machine.
//
// States: playing (initial) → won | lost (terminal, entered exactly once).
// Every command takes the current snapshot by value and returns the next
// snapshot plus a description of what changed; the caller persists the new
// snapshot atomically. A command that fails returns the zero Session and the
// caller keeps the old one.

package game

import (
	"strings"
	"time"

	"github.com/robalobadob/wordrush/internal/apperr"
)

// NewSession constructs a playing session. combo carries the player's
// current win streak into the session.
func NewSession(id, userID, word string, level, combo int, now time.Time) Session {
	allowance := make(map[PowerUp]int, len(PowerUps))
	for _, p := range PowerUps {
		allowance[p] = 1
	}
	return Session{
		ID:        id,
		UserID:    userID,
		Word:      strings.ToLower(word),
		Level:     max(level, 1),
		Guesses:   []Guess{},
		Status:    StatusPlaying,
		Combo:     max(combo, 0),
		StartedAt: now.UTC(),
		PowerUps:  allowance,
	}
}

// GuessOutcome describes the effect of one accepted guess.
type GuessOutcome struct {
	Verdicts []Verdict
	Status   Status
	Score    int
	Combo    int
	// Result is set only when the guess ended the session.
	Result *Result
}

// SubmitGuess validates and applies a guess.
//
// Validation rules:
//   - Session must be playing with fewer than MaxAttempts guesses.
//   - Guess must be exactly len(Word) letters a–z.
//
// State transitions:
//   - All verdicts correct → won (combo increments).
//   - Else MaxAttempts guesses reached → lost (combo resets).
func (s Session) SubmitGuess(guess string, now time.Time) (Session, GuessOutcome, error) {
	if s.Status != StatusPlaying {
		return Session{}, GuessOutcome{}, apperr.New(apperr.CodeInvalidGuess, "game finished")
	}
	if len(s.Guesses) >= MaxAttempts {
		return Session{}, GuessOutcome{}, apperr.New(apperr.CodeInvalidGuess, "no attempts left")
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if len(guess) != len(s.Word) || !isAlpha(guess) {
		return Session{}, GuessOutcome{}, apperr.New(apperr.CodeInvalidGuess, "invalid guess")
	}

	verdicts, err := Evaluate(s.Word, guess)
	if err != nil {
		return Session{}, GuessOutcome{}, err
	}

	next := s.Clone()
	next.Guesses = append(next.Guesses, Guess{Word: guess, Verdicts: verdicts, At: now.UTC()})

	var res *Result
	switch {
	case AllCorrect(verdicts):
		next, res = next.Terminate(true, now)
	case len(next.Guesses) >= MaxAttempts:
		next, res = next.Terminate(false, now)
	}

	return next, GuessOutcome{
		Verdicts: verdicts,
		Status:   next.Status,
		Score:    next.Score,
		Combo:    next.Combo,
		Result:   res,
	}, nil
}

// Terminate forces the session into won or lost, stamps the end time and
// computes the score. The score uses the combo carried into the session;
// the combo then increments on a win and resets on a loss. Calling it on a
// terminal session is a no-op and returns a nil Result.
func (s Session) Terminate(won bool, now time.Time) (Session, *Result) {
	if s.Status.Terminal() {
		return s, nil
	}
	next := s.Clone()
	next.EndedAt = now.UTC()
	next.ElapsedSeconds = max(int(next.EndedAt.Sub(next.StartedAt)/time.Second), 0)
	next.Score = GameScore(next.Level, len(next.Guesses), MaxAttempts, next.ElapsedSeconds, next.Combo)
	if won {
		next.Status = StatusWon
		next.Combo++
	} else {
		next.Status = StatusLost
		next.Combo = 0
	}
	return next, &Result{
		SessionID:      next.ID,
		Guesses:        len(next.Guesses),
		ElapsedSeconds: next.ElapsedSeconds,
		Score:          next.Score,
		Level:          next.Level,
		Combo:          next.Combo,
		Won:            won,
	}
}

// PowerUpEnv supplies the randomness power-ups need.
type PowerUpEnv struct {
	Pick func(n int) int                                 // uniform index in [0, n)
	Draw func(level int, except string) (string, error) // fresh word for a level, never except
}

// PowerUpResult is what the caller learns from a power-up.
type PowerUpResult struct {
	Kind PowerUp `json:"kind"`

	// letterReveal
	RevealedIndex *int   `json:"revealedIndex,omitempty"`
	Letter        string `json:"letter,omitempty"`

	// extraTime: the caller extends its time budget by this much.
	TimeAdded int `json:"timeAdded,omitempty"`

	// wordSkip
	WordLength int `json:"wordLength,omitempty"`
}

// ApplyPowerUp consumes one use of kind from the session allowance.
//
//   - letterReveal: uniformly random index of the secret and its letter.
//   - extraTime: signals ExtraTimeSeconds; the session does not track time.
//   - wordSkip: draws a different word of the same level and clears the guesses
//     for the new word. Guesses made so far move to Skipped and stop
//     counting toward MaxAttempts.
func (s Session) ApplyPowerUp(kind PowerUp, env PowerUpEnv, now time.Time) (Session, PowerUpResult, error) {
	if !kind.Valid() {
		return Session{}, PowerUpResult{}, apperr.ErrInvalidPowerUp
	}
	if s.Status != StatusPlaying {
		return Session{}, PowerUpResult{}, apperr.New(apperr.CodeNoActiveSession, "game is not in progress")
	}
	if s.PowerUps[kind] <= 0 {
		return Session{}, PowerUpResult{}, apperr.ErrPowerUpExhausted
	}

	next := s.Clone()
	res := PowerUpResult{Kind: kind}

	switch kind {
	case PowerUpLetterReveal:
		i := env.Pick(len(next.Word))
		res.RevealedIndex = &i
		res.Letter = next.Word[i : i+1]
	case PowerUpExtraTime:
		res.TimeAdded = ExtraTimeSeconds
	case PowerUpWordSkip:
		word, err := env.Draw(next.Level, next.Word)
		if err != nil {
			return Session{}, PowerUpResult{}, err
		}
		word = strings.ToLower(word)
		if word == next.Word {
			return Session{}, PowerUpResult{}, apperr.ErrNoWordsAvailable
		}
		next.Skipped = append(next.Skipped, next.Guesses...)
		next.Guesses = []Guess{}
		next.Word = word
		res.WordLength = len(word)
	}

	next.PowerUps[kind]--
	next.PowerUpsUsed = append(next.PowerUpsUsed, PowerUpUse{Kind: kind, At: now.UTC()})
	return next, res, nil
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
