// internal/challenge/leaderboard.go
//
// Daily challenge attempts and leaderboard maintenance.
// Responsibilities:
//   - RecordAttempt: cap, validate, evaluate and score one attempt.
//   - Keep each user's best entry, sorted by score, truncated to LeaderboardSize.

package challenge

import (
	"sort"
	"strings"
	"time"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/game"
)

// AttemptResult describes the effect of one recorded attempt.
type AttemptResult struct {
	Verdicts       []game.Verdict `json:"result"`
	Score          int            `json:"score"`
	ElapsedSeconds int            `json:"time"`
	Attempts       int            `json:"attempts"` // the user's logged attempts including this one
	Completed      bool           `json:"isCompleted"`
	// FirstCompletion is true when this attempt is the user's first solve.
	FirstCompletion bool `json:"firstCompletion"`
	Position        int  `json:"position"` // 1-based, 0 when outside the leaderboard
}

// RecordAttempt validates, scores and logs a guess, then updates the
// leaderboard. It returns the new challenge; c is not modified.
//
//  1. Reject once the user has MaxAttemptsPerUser logged attempts.
//  2. Reject words isValid does not recognise.
//  3. Evaluate against the day's word (case-normalised).
//  4. Score with the challenge rule. elapsedSeconds is counted from the
//     user's first attempt of the day, not from the challenge's creation.
//  5. Append to the attempt log.
//  6. Insert or improve the user's entry (strictly higher score only), sort
//     descending with a stable sort so ties keep insertion order, and keep
//     the top LeaderboardSize.
func (c Challenge) RecordAttempt(userID, guess string, elapsedSeconds int, isValid func(string) bool, now time.Time) (Challenge, AttemptResult, error) {
	prior := c.UserAttempts(userID)
	if len(prior) >= MaxAttemptsPerUser {
		return Challenge{}, AttemptResult{}, apperr.ErrAttemptsExhausted
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if isValid != nil && !isValid(guess) {
		return Challenge{}, AttemptResult{}, apperr.ErrInvalidWord
	}
	verdicts, err := game.Evaluate(strings.ToLower(c.Word), guess)
	if err != nil {
		return Challenge{}, AttemptResult{}, err
	}

	elapsedSeconds = max(elapsedSeconds, 0)
	score := game.ChallengeScore(game.CountCorrect(verdicts), elapsedSeconds)
	completed := game.AllCorrect(verdicts)
	first := completed && !c.Solved(userID)

	next := c.Clone()
	next.Attempts = append(next.Attempts, Attempt{
		UserID:         userID,
		Guess:          guess,
		Verdicts:       verdicts,
		ElapsedSeconds: elapsedSeconds,
		Score:          score,
		At:             now.UTC(),
	})
	next.Leaderboard = updateLeaderboard(next.Leaderboard, Entry{
		UserID:   userID,
		Score:    score,
		Time:     elapsedSeconds,
		Attempts: len(prior) + 1,
	})

	return next, AttemptResult{
		Verdicts:        verdicts,
		Score:           score,
		ElapsedSeconds:  elapsedSeconds,
		Attempts:        len(prior) + 1,
		Completed:       completed,
		FirstCompletion: first,
		Position:        next.Position(userID),
	}, nil
}

// updateLeaderboard keeps one entry per user: their best score.
func updateLeaderboard(board []Entry, e Entry) []Entry {
	found := false
	for i := range board {
		if board[i].UserID != e.UserID {
			continue
		}
		found = true
		if e.Score > board[i].Score {
			board[i] = e
		}
		break
	}
	if !found {
		board = append(board, e)
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].Score > board[j].Score })
	if len(board) > LeaderboardSize {
		board = board[:LeaderboardSize]
	}
	return board
}
