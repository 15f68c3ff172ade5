// internal/game/score.go
//
// ScoreCalculator for finished games and daily challenge attempts.
// Both share the same capped, linear time bonus with different parameters.

package game

// ScoreRule is the time-bonus shape shared by the game and challenge scores.
type ScoreRule struct {
	TimeCap       int // seconds after which no time bonus is earned
	TimeBonusRate int // points per second under the cap
}

var (
	GameRule      = ScoreRule{TimeCap: 300, TimeBonusRate: 2}
	ChallengeRule = ScoreRule{TimeCap: 60, TimeBonusRate: 10}
)

const (
	pointsPerLevel       = 100
	pointsPerAttemptLeft = 50
	challengeBase        = 1000
	pointsPerCorrect     = 100
)

// TimeBonus returns max(0, cap-elapsed) * rate.
func (r ScoreRule) TimeBonus(elapsedSeconds int) int {
	left := r.TimeCap - elapsedSeconds
	if left < 0 {
		return 0
	}
	return left * r.TimeBonusRate
}

// GameScore is floor((level*100 + attemptsLeft*50 + timeBonus) * (1 + combo*0.1)).
// The multiplier is applied in tenths so the floor is exact.
func GameScore(level, attemptsUsed, maxAttempts, elapsedSeconds, combo int) int {
	level = max(level, 0)
	combo = max(combo, 0)
	attemptsLeft := max(maxAttempts-attemptsUsed, 0)

	total := level*pointsPerLevel + attemptsLeft*pointsPerAttemptLeft + GameRule.TimeBonus(elapsedSeconds)
	return total * (10 + combo) / 10
}

// ChallengeScore is 1000 + timeBonus + 100 per correct letter. Combo does not apply.
// The challenge service measures elapsedSeconds from the user's first
// attempt of the day, so a first attempt earns the full time bonus.
func ChallengeScore(correctLetters, elapsedSeconds int) int {
	return challengeBase + ChallengeRule.TimeBonus(elapsedSeconds) + max(correctLetters, 0)*pointsPerCorrect
}
