package player

import (
	"testing"

	"github.com/robalobadob/wordrush/internal/game"
)

func TestWithGameResult(t *testing.T) {
	p := New("u1")

	p = p.WithGameResult(game.Result{Guesses: 1, ElapsedSeconds: 30, Score: 900, Level: 1, Combo: 1, Won: true})
	p = p.WithGameResult(game.Result{Guesses: 3, ElapsedSeconds: 20, Score: 500, Level: 2, Combo: 2, Won: true})
	p = p.WithGameResult(game.Result{Guesses: 6, ElapsedSeconds: 300, Score: 200, Level: 3, Combo: 0, Won: false})

	s := p.Stats
	if s.GamesPlayed != 3 || s.GamesWon != 2 {
		t.Fatalf("played/won = %d/%d, want 3/2", s.GamesPlayed, s.GamesWon)
	}
	if s.TotalScore != 1600 {
		t.Errorf("TotalScore = %d, want 1600", s.TotalScore)
	}
	if s.HighestLevel != 3 {
		t.Errorf("HighestLevel = %d, want 3", s.HighestLevel)
	}
	if s.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", s.CurrentStreak)
	}
	if s.PerfectGames != 1 {
		t.Errorf("PerfectGames = %d, want 1", s.PerfectGames)
	}
	if s.FastestSolve == nil || *s.FastestSolve != 20 {
		t.Errorf("FastestSolve = %v, want 20", s.FastestSolve)
	}
	if s.LongestCombo != 2 {
		t.Errorf("LongestCombo = %d, want 2", s.LongestCombo)
	}
	if s.AverageGuesses != 10.0/3 {
		t.Errorf("AverageGuesses = %v, want %v", s.AverageGuesses, 10.0/3)
	}
}

func TestWithGameResultWinUnlocksNextLevel(t *testing.T) {
	p := New("u1").WithGameResult(game.Result{Guesses: 2, Level: 4, Won: true})
	if p.Stats.HighestLevel != 5 {
		t.Fatalf("HighestLevel = %d, want 5", p.Stats.HighestLevel)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := New("u1").WithGameResult(game.Result{Guesses: 2, ElapsedSeconds: 10, Won: true})
	p.PowerUps[game.PowerUpWordSkip] = 2
	p.Badges = append(p.Badges, "early-bird")

	c := p.Clone()
	*c.Stats.FastestSolve = 99
	c.PowerUps[game.PowerUpWordSkip] = 0
	c.Badges[0] = "changed"

	if *p.Stats.FastestSolve != 10 || p.PowerUps[game.PowerUpWordSkip] != 2 || p.Badges[0] != "early-bird" {
		t.Fatalf("clone shares state with original: %+v", p)
	}
}

func TestTakePowerUp(t *testing.T) {
	p := New("u1")
	if _, ok := p.TakePowerUp(game.PowerUpExtraTime); ok {
		t.Fatal("took a power-up from an empty inventory")
	}
	p.PowerUps[game.PowerUpExtraTime] = 1
	n, ok := p.TakePowerUp(game.PowerUpExtraTime)
	if !ok || n.PowerUps[game.PowerUpExtraTime] != 0 || p.PowerUps[game.PowerUpExtraTime] != 1 {
		t.Fatalf("unexpected inventories: new=%v old=%v", n.PowerUps, p.PowerUps)
	}
}

func TestChallengeAndFriends(t *testing.T) {
	p := New("u1").WithChallengeCompleted().WithChallengeCompleted().WithFriendsCount(-3)
	if p.Stats.ChallengesCompleted != 2 || p.Stats.FriendsCount != 0 {
		t.Fatalf("unexpected stats: %+v", p.Stats)
	}
	if p.HasAchievement("x") {
		t.Fatal("HasAchievement on empty record")
	}
}
