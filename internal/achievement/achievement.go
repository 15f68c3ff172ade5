// Package achievement evaluates declarative achievement rules against a
// player's cumulative statistics and grants their rewards.
//
// Evaluation is a pure comparison per achievement (stat >= threshold) and
// never returns an achievement the player already holds. Granting is a
// separate step that adds the id to the player's awarded set and applies
// exactly one reward; granting twice is a no-op.
package achievement

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
)

// RequirementKind names the stat a requirement is measured against.
type RequirementKind string

const (
	RequireScore      RequirementKind = "score"
	RequireGames      RequirementKind = "games"
	RequireWins       RequirementKind = "wins"
	RequireStreak     RequirementKind = "streak"
	RequireChallenges RequirementKind = "challenges"
	RequirePerfect    RequirementKind = "perfect"
	RequireSocial     RequirementKind = "social"
)

// Current returns the stat value the kind measures, and false for unknown kinds.
func (k RequirementKind) Current(s player.Stats) (int, bool) {
	switch k {
	case RequireScore:
		return s.TotalScore, true
	case RequireGames:
		return s.GamesPlayed, true
	case RequireWins:
		return s.GamesWon, true
	case RequireStreak:
		return s.CurrentStreak, true
	case RequireChallenges:
		return s.ChallengesCompleted, true
	case RequirePerfect:
		return s.PerfectGames, true
	case RequireSocial:
		return s.FriendsCount, true
	}
	return 0, false
}

// RewardKind names what granting an achievement hands out.
type RewardKind string

const (
	RewardPoints  RewardKind = "points"
	RewardPowerUp RewardKind = "powerup"
	RewardBadge   RewardKind = "badge"
)

type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Value int             `json:"value"`
}

// Reward: Value is the points or power-up quantity; Item is the power-up
// kind or badge name.
type Reward struct {
	Kind  RewardKind `json:"kind"`
	Value int        `json:"value,omitempty"`
	Item  string     `json:"item,omitempty"`
}

type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Category    string      `json:"category"` // game | challenge | social | special
	Requirement Requirement `json:"requirement"`
	Reward      Reward      `json:"reward"`
}

// Met reports whether stats satisfy the requirement.
func (a Achievement) Met(s player.Stats) bool {
	cur, ok := a.Requirement.Kind.Current(s)
	return ok && cur >= a.Requirement.Value
}

func (a Achievement) validate() error {
	if a.ID == "" {
		return fmt.Errorf("achievement %q: id is required", a.Name)
	}
	if _, ok := a.Requirement.Kind.Current(player.Stats{}); !ok {
		return fmt.Errorf("achievement %s: unknown requirement kind %q", a.ID, a.Requirement.Kind)
	}
	if a.Requirement.Value <= 0 {
		return fmt.Errorf("achievement %s: requirement value must be positive", a.ID)
	}
	switch a.Reward.Kind {
	case RewardPoints:
		if a.Reward.Value <= 0 {
			return fmt.Errorf("achievement %s: points reward must be positive", a.ID)
		}
	case RewardPowerUp:
		if !game.PowerUp(a.Reward.Item).Valid() {
			return fmt.Errorf("achievement %s: unknown power-up %q", a.ID, a.Reward.Item)
		}
	case RewardBadge:
		if a.Reward.Item == "" {
			return fmt.Errorf("achievement %s: badge name is required", a.ID)
		}
	default:
		return fmt.Errorf("achievement %s: unknown reward kind %q", a.ID, a.Reward.Kind)
	}
	return nil
}

// LoadCatalog reads a JSON array of achievements from path.
func LoadCatalog(path string) ([]Achievement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var out []Achievement
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return out, nil
}
