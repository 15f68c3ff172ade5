// Package challenge implements the shared daily puzzle: one secret word per
// UTC day, an append-only attempt log and a best-score-per-user leaderboard.
package challenge

import (
	"time"

	"github.com/robalobadob/wordrush/internal/game"
)

const (
	MaxAttemptsPerUser = 6
	LeaderboardSize    = 100
	Difficulty         = 3 // mid-range level used to draw the daily word
)

// DayKey returns YYYY-MM-DD in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayStart returns UTC midnight of t's day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Attempt is one logged guess.
type Attempt struct {
	UserID         string         `json:"userId"`
	Guess          string         `json:"guess"`
	Verdicts       []game.Verdict `json:"verdicts"`
	ElapsedSeconds int            `json:"time"`
	Score          int            `json:"score"`
	At             time.Time      `json:"at"`
}

// Entry is a user's personal best.
type Entry struct {
	UserID   string `json:"userId"`
	Score    int    `json:"score"`
	Time     int    `json:"time"`
	Attempts int    `json:"attempts"`
}

// Challenge is one day's puzzle.
type Challenge struct {
	Day         string    `json:"day"` // DayKey
	Date        time.Time `json:"date"`
	Word        string    `json:"word"`
	Difficulty  int       `json:"difficulty"`
	Attempts    []Attempt `json:"attempts"`
	Leaderboard []Entry   `json:"leaderboard"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New constructs the challenge for day.
func New(day time.Time, word string, difficulty int, now time.Time) Challenge {
	return Challenge{
		Day:         DayKey(day),
		Date:        DayStart(day),
		Word:        word,
		Difficulty:  difficulty,
		Attempts:    []Attempt{},
		Leaderboard: []Entry{},
		CreatedAt:   now.UTC(),
	}
}

// Clone returns a deep copy.
func (c Challenge) Clone() Challenge {
	n := c
	n.Attempts = make([]Attempt, len(c.Attempts))
	for i, a := range c.Attempts {
		n.Attempts[i] = a
		n.Attempts[i].Verdicts = append([]game.Verdict(nil), a.Verdicts...)
	}
	n.Leaderboard = append([]Entry{}, c.Leaderboard...)
	return n
}

// UserAttempts returns userID's logged attempts in order.
func (c Challenge) UserAttempts(userID string) []Attempt {
	out := []Attempt{}
	for _, a := range c.Attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// Solved reports whether userID has an all-correct attempt.
func (c Challenge) Solved(userID string) bool {
	for _, a := range c.Attempts {
		if a.UserID == userID && game.AllCorrect(a.Verdicts) {
			return true
		}
	}
	return false
}

// Position returns userID's 1-based leaderboard rank, or 0 when absent.
func (c Challenge) Position(userID string) int {
	for i, e := range c.Leaderboard {
		if e.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// Top returns at most n leading entries.
func (c Challenge) Top(n int) []Entry {
	n = min(max(n, 0), len(c.Leaderboard))
	return append([]Entry{}, c.Leaderboard[:n]...)
}
