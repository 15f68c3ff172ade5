// internal/service/achievements.go
//
// Achievement and profile operations: CheckAchievements, Achievements,
// AchievementProgress, GetPlayer and UpdateFriendsCount. Grants made while
// a game or challenge finishes go through grantDue inside that unit.

package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/achievement"
	"github.com/robalobadob/wordrush/internal/player"
	"github.com/robalobadob/wordrush/internal/store"
)

// grantDue evaluates p and grants every newly satisfied achievement,
// returning what was granted.
func (s *Service) grantDue(p *player.Player) []achievement.Achievement {
	var granted []achievement.Achievement
	for _, a := range s.achievements.Evaluate(*p) {
		next, ok := s.achievements.Grant(*p, a)
		if !ok {
			continue
		}
		*p = next
		granted = append(granted, a)
	}
	return granted
}

func logGranted(userID string, granted []achievement.Achievement) {
	for _, a := range granted {
		log.Info().Str("user", userID).Str("achievement", a.ID).Str("reward", string(a.Reward.Kind)).Msg("achievement granted")
	}
}

// CheckAchievements grants every achievement userID's stats now satisfy and
// returns them. Calling it again without new progress returns nothing.
func (s *Service) CheckAchievements(ctx context.Context, userID string) ([]achievement.Achievement, error) {
	ctx, span := s.start(ctx, "CheckAchievements", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var granted []achievement.Achievement
	_, err = s.store.UpdateUser(ctx, userID, func(st *store.UserState) error {
		granted = s.grantDue(&st.Player)
		if len(granted) > 0 {
			st.Player.UpdatedAt = s.now().UTC()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logGranted(userID, granted)
	if granted == nil {
		granted = []achievement.Achievement{}
	}
	return granted, nil
}

// AchievementView is a catalog entry plus whether the user holds it.
type AchievementView struct {
	achievement.Achievement
	Earned bool `json:"earned"`
}

// Achievements lists the catalog with userID's earned flags.
func (s *Service) Achievements(ctx context.Context, userID string) ([]AchievementView, error) {
	ctx, span := s.start(ctx, "Achievements", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var p player.Player
	p, err = s.loadPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog := s.achievements.Catalog()
	out := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, AchievementView{Achievement: a, Earned: p.HasAchievement(a.ID)})
	}
	return out, nil
}

// AchievementProgress reports userID's progress toward every achievement.
func (s *Service) AchievementProgress(ctx context.Context, userID string) ([]achievement.Progress, error) {
	ctx, span := s.start(ctx, "AchievementProgress", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var p player.Player
	p, err = s.loadPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.achievements.Progress(p), nil
}

// GetPlayer returns userID's record; users who never played get a fresh one.
func (s *Service) GetPlayer(ctx context.Context, userID string) (player.Player, error) {
	ctx, span := s.start(ctx, "GetPlayer", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var p player.Player
	p, err = s.loadPlayer(ctx, userID)
	return p, err
}

// UpdateFriendsCount records the size of userID's social graph, as reported
// by the social service, and grants any social achievements now due.
func (s *Service) UpdateFriendsCount(ctx context.Context, userID string, count int) (player.Player, []achievement.Achievement, error) {
	ctx, span := s.start(ctx, "UpdateFriendsCount", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var granted []achievement.Achievement
	var st store.UserState
	st, err = s.store.UpdateUser(ctx, userID, func(st *store.UserState) error {
		st.Player = st.Player.WithFriendsCount(count)
		st.Player.UpdatedAt = s.now().UTC()
		granted = s.grantDue(&st.Player)
		return nil
	})
	if err != nil {
		return player.Player{}, nil, err
	}
	logGranted(userID, granted)
	return st.Player, granted, nil
}
