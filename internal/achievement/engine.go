// internal/achievement/engine.go
//
// Achievement engine over a validated catalog.
// Responsibilities:
//   - Evaluate: catalog entries a player satisfies but does not hold yet.
//   - Grant: record an achievement and apply its reward exactly once.
//   - Progress: current/target/percent per entry for profile screens.

package achievement

import (
	"fmt"

	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
)

// Engine holds a validated catalog. It is stateless beyond the catalog and
// safe for concurrent use.
type Engine struct {
	catalog []Achievement
	byID    map[string]Achievement
}

// NewEngine validates the catalog: ids unique, kinds known, thresholds positive.
func NewEngine(catalog []Achievement) (*Engine, error) {
	e := &Engine{byID: make(map[string]Achievement, len(catalog))}
	for _, a := range catalog {
		if err := a.validate(); err != nil {
			return nil, err
		}
		if _, dup := e.byID[a.ID]; dup {
			return nil, fmt.Errorf("achievement %s: duplicate id", a.ID)
		}
		e.byID[a.ID] = a
		e.catalog = append(e.catalog, a)
	}
	return e, nil
}

// Catalog returns every achievement in declaration order.
func (e *Engine) Catalog() []Achievement {
	return append([]Achievement(nil), e.catalog...)
}

// Lookup finds an achievement by id.
func (e *Engine) Lookup(id string) (Achievement, bool) {
	a, ok := e.byID[id]
	return a, ok
}

// Evaluate returns the achievements p's stats satisfy that p does not
// already hold, in catalog order. It does not change p.
func (e *Engine) Evaluate(p player.Player) []Achievement {
	var out []Achievement
	for _, a := range e.catalog {
		if p.HasAchievement(a.ID) {
			continue
		}
		if a.Met(p.Stats) {
			out = append(out, a)
		}
	}
	return out
}

// Grant awards a to p and applies its reward. It reports false, leaving p
// unchanged, when p already holds a.
func (e *Engine) Grant(p player.Player, a Achievement) (player.Player, bool) {
	if p.HasAchievement(a.ID) {
		return p, false
	}
	n := p.Clone()
	n.Achievements = append(n.Achievements, a.ID)
	switch a.Reward.Kind {
	case RewardPoints:
		n.Points += a.Reward.Value
	case RewardPowerUp:
		n.PowerUps[game.PowerUp(a.Reward.Item)] += max(a.Reward.Value, 1)
	case RewardBadge:
		n.Badges = append(n.Badges, a.Reward.Item)
	}
	return n, true
}

// Progress is how far a player is toward one achievement.
type Progress struct {
	AchievementID string  `json:"achievementId"`
	Name          string  `json:"name"`
	Current       int     `json:"currentValue"`
	Target        int     `json:"targetValue"`
	Percent       float64 `json:"progress"` // capped at 100
	Earned        bool    `json:"hasEarned"`
}

// Progress reports every catalog entry's progress for p.
func (e *Engine) Progress(p player.Player) []Progress {
	out := make([]Progress, 0, len(e.catalog))
	for _, a := range e.catalog {
		cur, _ := a.Requirement.Kind.Current(p.Stats)
		pct := float64(cur) / float64(a.Requirement.Value) * 100
		out = append(out, Progress{
			AchievementID: a.ID,
			Name:          a.Name,
			Current:       cur,
			Target:        a.Requirement.Value,
			Percent:       min(pct, 100),
			Earned:        p.HasAchievement(a.ID),
		})
	}
	return out
}
