// internal/player/player.go
//
// Player record.
// Responsibilities:
//   - Cumulative stats deltas from finished games and challenges.
//   - Reward state: points, badges, power-up inventory, awarded ids.

// Package player holds the per-user record the progression engine owns:
// cumulative statistics plus the rewards granted by achievements.
package player

import (
	"slices"
	"time"

	"github.com/robalobadob/wordrush/internal/game"
)

// Stats are the cumulative counters achievements are evaluated against.
type Stats struct {
	TotalScore          int     `json:"totalScore"`
	GamesPlayed         int     `json:"gamesPlayed"`
	GamesWon            int     `json:"gamesWon"`
	HighestLevel        int     `json:"highestLevel"`
	CurrentStreak       int     `json:"currentStreak"`
	ChallengesCompleted int     `json:"challengesCompleted"`
	PerfectGames        int     `json:"perfectGames"`
	FriendsCount        int     `json:"friendsCount"`
	FastestSolve        *int    `json:"fastestSolve"` // seconds, nil until the first win
	LongestCombo        int     `json:"longestCombo"`
	AverageGuesses      float64 `json:"averageGuesses"`
}

// Player is one user's progression record.
type Player struct {
	UserID string `json:"userId"`
	Stats  Stats  `json:"stats"`

	Points       int                  `json:"points"`
	PowerUps     map[game.PowerUp]int `json:"powerUps"` // inventory beyond the per-session allowance
	Badges       []string             `json:"badges"`
	Achievements []string             `json:"achievements"` // awarded ids, in grant order

	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns the record for a user who has never played.
func New(userID string) Player {
	return Player{
		UserID:       userID,
		Stats:        Stats{HighestLevel: 1},
		PowerUps:     map[game.PowerUp]int{},
		Badges:       []string{},
		Achievements: []string{},
	}
}

// Clone returns a deep copy.
func (p Player) Clone() Player {
	c := p
	if p.Stats.FastestSolve != nil {
		v := *p.Stats.FastestSolve
		c.Stats.FastestSolve = &v
	}
	c.PowerUps = make(map[game.PowerUp]int, len(p.PowerUps))
	for k, v := range p.PowerUps {
		c.PowerUps[k] = v
	}
	c.Badges = append([]string{}, p.Badges...)
	c.Achievements = append([]string{}, p.Achievements...)
	return c
}

// WithGameResult merges a finished session into the stats.
//
// A win unlocks the next level, so HighestLevel is the level a new game
// starts at by default. A perfect game is a win on the first guess.
func (p Player) WithGameResult(r game.Result) Player {
	n := p.Clone()
	s := &n.Stats

	s.GamesPlayed++
	s.TotalScore += r.Score
	s.HighestLevel = max(s.HighestLevel, r.Level)
	if r.Won {
		s.GamesWon++
		s.CurrentStreak++
		s.HighestLevel = max(s.HighestLevel, r.Level+1)
		if r.Guesses == 1 {
			s.PerfectGames++
		}
		if s.FastestSolve == nil || r.ElapsedSeconds < *s.FastestSolve {
			v := r.ElapsedSeconds
			s.FastestSolve = &v
		}
	} else {
		s.CurrentStreak = 0
	}
	s.AverageGuesses = (s.AverageGuesses*float64(s.GamesPlayed-1) + float64(r.Guesses)) / float64(s.GamesPlayed)
	s.LongestCombo = max(s.LongestCombo, r.Combo)
	return n
}

// WithChallengeCompleted counts a first successful solve of a daily challenge.
func (p Player) WithChallengeCompleted() Player {
	n := p.Clone()
	n.Stats.ChallengesCompleted++
	return n
}

// WithFriendsCount records the social graph size reported by the social service.
func (p Player) WithFriendsCount(count int) Player {
	n := p.Clone()
	n.Stats.FriendsCount = max(count, 0)
	return n
}

// HasAchievement reports whether id was already granted.
func (p Player) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// TakePowerUp removes one use of kind from the inventory. It reports false
// when none is left.
func (p Player) TakePowerUp(kind game.PowerUp) (Player, bool) {
	if p.PowerUps[kind] <= 0 {
		return p, false
	}
	n := p.Clone()
	n.PowerUps[kind]--
	return n, true
}
