// internal/achievement/catalog.go
//
// Built-in achievement catalog; one entry per requirement kind at least.

package achievement

// DefaultCatalog is used when no ACHIEVEMENTS_FILE is configured.
func DefaultCatalog() []Achievement {
	return []Achievement{
		{
			ID: "first-game", Name: "First Steps", Description: "Play your first game",
			Icon: "👣", Category: "game",
			Requirement: Requirement{Kind: RequireGames, Value: 1},
			Reward:      Reward{Kind: RewardPoints, Value: 50},
		},
		{
			ID: "first-win", Name: "First Win", Description: "Win your first game",
			Icon: "🏆", Category: "game",
			Requirement: Requirement{Kind: RequireWins, Value: 1},
			Reward:      Reward{Kind: RewardPoints, Value: 100},
		},
		{
			ID: "veteran", Name: "Veteran", Description: "Play 50 games",
			Icon: "🎖️", Category: "game",
			Requirement: Requirement{Kind: RequireGames, Value: 50},
			Reward:      Reward{Kind: RewardBadge, Item: "veteran"},
		},
		{
			ID: "wordsmith", Name: "Wordsmith", Description: "Win 25 games",
			Icon: "✒️", Category: "game",
			Requirement: Requirement{Kind: RequireWins, Value: 25},
			Reward:      Reward{Kind: RewardPowerUp, Value: 1, Item: "wordSkip"},
		},
		{
			ID: "score-1000", Name: "Point Collector", Description: "Reach 1,000 total points",
			Icon: "💯", Category: "game",
			Requirement: Requirement{Kind: RequireScore, Value: 1000},
			Reward:      Reward{Kind: RewardPowerUp, Value: 1, Item: "letterReveal"},
		},
		{
			ID: "score-5000", Name: "High Roller", Description: "Reach 5,000 total points",
			Icon: "💎", Category: "game",
			Requirement: Requirement{Kind: RequireScore, Value: 5000},
			Reward:      Reward{Kind: RewardBadge, Item: "high-roller"},
		},
		{
			ID: "streak-5", Name: "On Fire", Description: "Win 5 games in a row",
			Icon: "🔥", Category: "game",
			Requirement: Requirement{Kind: RequireStreak, Value: 5},
			Reward:      Reward{Kind: RewardPowerUp, Value: 1, Item: "extraTime"},
		},
		{
			ID: "perfect-game", Name: "Perfect Game", Description: "Solve a word on the first guess",
			Icon: "🎯", Category: "special",
			Requirement: Requirement{Kind: RequirePerfect, Value: 1},
			Reward:      Reward{Kind: RewardPoints, Value: 250},
		},
		{
			ID: "daily-challenger", Name: "Daily Challenger", Description: "Complete 7 daily challenges",
			Icon: "📅", Category: "challenge",
			Requirement: Requirement{Kind: RequireChallenges, Value: 7},
			Reward:      Reward{Kind: RewardBadge, Item: "daily-challenger"},
		},
		{
			ID: "social-butterfly", Name: "Social Butterfly", Description: "Add 5 friends",
			Icon: "🦋", Category: "social",
			Requirement: Requirement{Kind: RequireSocial, Value: 5},
			Reward:      Reward{Kind: RewardPoints, Value: 100},
		},
	}
}
