// internal/service/challenge.go
//
// Daily challenge operations.
// Responsibilities:
//   - today: fetch or create the UTC day's challenge (one creation wins).
//   - GetTodayChallenge / SubmitChallengeAttempt / ChallengeHistory.
//   - Fold a user's first solve into their stats and achievements atomically.

package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/achievement"
	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/player"
)

// LeaderboardPreview is how many leaderboard entries a view carries.
const LeaderboardPreview = 10

// ChallengeView is a day's challenge from one user's point of view. The
// word itself is never included.
type ChallengeView struct {
	Day          string              `json:"day"`
	Date         time.Time           `json:"date"`
	Difficulty   int                 `json:"difficulty"`
	WordLength   int                 `json:"wordLength"`
	Attempts     []challenge.Attempt `json:"attempts"`
	AttemptsLeft int                 `json:"attemptsLeft"`
	Solved       bool                `json:"solved"`
	Position     *int                `json:"position"` // nil when off the leaderboard
	Leaderboard  []challenge.Entry   `json:"leaderboard"`
}

func newChallengeView(c challenge.Challenge, userID string) ChallengeView {
	v := ChallengeView{
		Day:         c.Day,
		Date:        c.Date,
		Difficulty:  c.Difficulty,
		WordLength:  len(c.Word),
		Attempts:    []challenge.Attempt{},
		Leaderboard: c.Top(LeaderboardPreview),
	}
	if userID != "" {
		v.Attempts = c.UserAttempts(userID)
		v.Solved = c.Solved(userID)
		if pos := c.Position(userID); pos > 0 {
			v.Position = &pos
		}
	}
	v.AttemptsLeft = max(challenge.MaxAttemptsPerUser-len(v.Attempts), 0)
	return v
}

// today returns the current UTC day's challenge, creating it on first use.
// Concurrent first callers in this process share one creation; across
// processes the store's create-if-absent picks the single winner, and every
// process proposes the same deterministic daily word.
func (s *Service) today(ctx context.Context) (challenge.Challenge, error) {
	now := s.now()
	key := challenge.DayKey(now)

	c, err := s.store.GetChallenge(ctx, key)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return challenge.Challenge{}, err
	}

	v, err, _ := s.daily.Do(key, func() (any, error) {
		day := challenge.DayStart(now)
		word, err := s.words.DailyWord(day, s.salt, challenge.Difficulty)
		if err != nil {
			return challenge.Challenge{}, err
		}
		stored, created, err := s.store.CreateChallenge(ctx, challenge.New(day, word, challenge.Difficulty, now))
		if err != nil {
			return challenge.Challenge{}, err
		}
		if created {
			log.Info().Str("day", key).Int("difficulty", challenge.Difficulty).Msg("daily challenge created")
		}
		return stored, nil
	})
	if err != nil {
		return challenge.Challenge{}, err
	}
	return v.(challenge.Challenge), nil
}

// GetTodayChallenge returns today's challenge, creating it if needed. With
// an empty userID the view carries only the shared parts.
func (s *Service) GetTodayChallenge(ctx context.Context, userID string) (ChallengeView, error) {
	ctx, span := s.start(ctx, "GetTodayChallenge", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var c challenge.Challenge
	c, err = s.today(ctx)
	if err != nil {
		return ChallengeView{}, err
	}
	return newChallengeView(c, userID), nil
}

// ChallengeAttemptResult is the outcome of one challenge attempt.
type ChallengeAttemptResult struct {
	challenge.AttemptResult
	Achievements []achievement.Achievement `json:"achievements,omitempty"`
}

// SubmitChallengeAttempt records a guess against today's challenge.
//
// The elapsed time scored is measured from the user's first attempt of the
// day, so a first attempt always scores the full time bonus. A user's first
// solve counts toward ChallengesCompleted and may grant achievements, all
// in the same unit as the leaderboard update.
func (s *Service) SubmitChallengeAttempt(ctx context.Context, userID, guess string) (ChallengeAttemptResult, error) {
	ctx, span := s.start(ctx, "SubmitChallengeAttempt", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	var c challenge.Challenge
	c, err = s.today(ctx)
	if err != nil {
		return ChallengeAttemptResult{}, err
	}

	now := s.now()
	var res ChallengeAttemptResult
	_, _, err = s.store.UpdateChallenge(ctx, c.Day, userID, func(c *challenge.Challenge, p *player.Player) error {
		elapsed := 0
		if prior := c.UserAttempts(userID); len(prior) > 0 {
			elapsed = int(now.Sub(prior[0].At) / time.Second)
		}
		next, r, err := c.RecordAttempt(userID, guess, elapsed, s.words.IsValidWord, now)
		if err != nil {
			return err
		}
		*c = next
		res = ChallengeAttemptResult{AttemptResult: r}
		if r.FirstCompletion {
			*p = p.WithChallengeCompleted()
			res.Achievements = s.grantDue(p)
		}
		p.UpdatedAt = now.UTC()
		return nil
	})
	if err != nil {
		return ChallengeAttemptResult{}, err
	}

	log.Info().
		Str("user", userID).
		Str("day", c.Day).
		Int("score", res.Score).
		Bool("completed", res.Completed).
		Int("position", res.Position).
		Msg("challenge attempt")
	logGranted(userID, res.Achievements)
	return res, nil
}

// ChallengeHistory is one page of past challenges.
type ChallengeHistory struct {
	Challenges  []ChallengeView `json:"challenges"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// ChallengeHistory pages through challenges newest first. page starts at 1
// and a page past the end returns the last page; limit <= 0 means 10 and is
// capped at 50.
func (s *Service) ChallengeHistory(ctx context.Context, userID string, page, limit int) (ChallengeHistory, error) {
	ctx, span := s.start(ctx, "ChallengeHistory", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	page = max(page, 1)
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, 50)

	page = min(page, math.MaxInt32/limit)

	var list []challenge.Challenge
	var total int
	list, total, err = s.store.ListChallenges(ctx, (page-1)*limit, limit)
	if err != nil {
		return ChallengeHistory{}, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	if last := max(totalPages, 1); page > last {
		page = last
		list, total, err = s.store.ListChallenges(ctx, (page-1)*limit, limit)
		if err != nil {
			return ChallengeHistory{}, err
		}
	}
	out := ChallengeHistory{
		Challenges:  make([]ChallengeView, 0, len(list)),
		TotalPages:  totalPages,
		CurrentPage: page,
	}
	for _, c := range list {
		out.Challenges = append(out.Challenges, newChallengeView(c, userID))
	}
	return out, nil
}
