// internal/service/game.go
//
// Game session operations: StartGame, SubmitGuess, UsePowerUp, GameHistory.
// Each mutation runs inside one UpdateUser unit covering the player record
// and their open session.

package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/achievement"
	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/store"
	"github.com/robalobadob/wordrush/internal/words"
)

// SessionView is a session as callers see it. The secret word is only
// included once the session is over.
type SessionView struct {
	ID             string               `json:"id"`
	Level          int                  `json:"level"`
	WordLength     int                  `json:"wordLength"`
	MaxAttempts    int                  `json:"maxAttempts"`
	Guesses        []game.Guess         `json:"guesses"`
	Status         game.Status          `json:"status"`
	Combo          int                  `json:"combo"`
	Score          int                  `json:"score"`
	StartedAt      time.Time            `json:"startedAt"`
	EndedAt        time.Time            `json:"endedAt,omitzero"`
	ElapsedSeconds int                  `json:"elapsedSeconds"`
	PowerUps       map[game.PowerUp]int `json:"powerUps"`
	PowerUpsUsed   []game.PowerUpUse    `json:"powerUpsUsed"`
	Word           string               `json:"word,omitempty"`
}

// NewSessionView hides what the player must not see yet.
func NewSessionView(s game.Session) SessionView {
	s = s.Clone()
	v := SessionView{
		ID:             s.ID,
		Level:          s.Level,
		WordLength:     len(s.Word),
		MaxAttempts:    game.MaxAttempts,
		Guesses:        s.Guesses,
		Status:         s.Status,
		Combo:          s.Combo,
		Score:          s.Score,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
		ElapsedSeconds: s.ElapsedSeconds,
		PowerUps:       s.PowerUps,
		PowerUpsUsed:   s.PowerUpsUsed,
	}
	if v.PowerUpsUsed == nil {
		v.PowerUpsUsed = []game.PowerUpUse{}
	}
	if s.Status.Terminal() {
		v.Word = s.Word
	}
	return v
}

// StartGame opens a session for userID. A user who already has a session in
// progress gets that session back. level <= 0, or a level above the
// player's unlocked HighestLevel, starts at HighestLevel.
func (s *Service) StartGame(ctx context.Context, userID string, level int) (SessionView, error) {
	ctx, span := s.start(ctx, "StartGame", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	now := s.now()
	resumed := false
	var st store.UserState
	st, err = s.store.UpdateUser(ctx, userID, func(st *store.UserState) error {
		if st.Session != nil {
			resumed = true
			return nil
		}
		lvl := level
		if lvl <= 0 || lvl > st.Player.Stats.HighestLevel {
			lvl = st.Player.Stats.HighestLevel
		}
		word, err := s.words.RandomWord(lvl)
		if err != nil {
			return err
		}
		sess := game.NewSession(s.newID(), userID, word, lvl, st.Player.Stats.CurrentStreak, now)
		st.Session = &sess
		st.Player.UpdatedAt = now.UTC()
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}

	log.Info().
		Str("user", userID).
		Str("session", st.Session.ID).
		Int("level", st.Session.Level).
		Bool("resumed", resumed).
		Msg("game started")
	return NewSessionView(*st.Session), nil
}

// GuessResult is what a caller learns from one guess.
type GuessResult struct {
	Verdicts     []game.Verdict `json:"result"`
	Won          bool           `json:"isCorrect"`
	Status       game.Status    `json:"status"`
	Score        int            `json:"newScore"`
	Combo        int            `json:"newCombo"`
	AttemptsLeft int            `json:"attemptsLeft"`
	// Answer is revealed once the session is over.
	Answer       string                    `json:"answer,omitempty"`
	Achievements []achievement.Achievement `json:"achievements,omitempty"`
}

// openSession resolves sessionID to its owner. Unknown ids fail with
// NoActiveSession.
func (s *Service) openSession(ctx context.Context, sessionID string) (game.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return game.Session{}, apperr.ErrNoActiveSession
	}
	return sess, err
}

// SubmitGuess applies a guess to the session. A guess that ends the session
// folds its result into the player's stats and grants any achievements
// that became due, in the same unit.
func (s *Service) SubmitGuess(ctx context.Context, sessionID, guess string) (GuessResult, error) {
	ctx, span := s.start(ctx, "SubmitGuess", sessionAttr(sessionID))
	var err error
	defer func() { end(span, err) }()

	var known game.Session
	known, err = s.openSession(ctx, sessionID)
	if err != nil {
		return GuessResult{}, err
	}
	userID := known.UserID
	span.SetAttributes(userAttr(userID))

	now := s.now()
	var out game.GuessOutcome
	var granted []achievement.Achievement
	var st store.UserState
	st, err = s.store.UpdateUser(ctx, userID, func(st *store.UserState) error {
		granted = nil
		cur := st.Session
		if cur == nil || cur.ID != sessionID {
			return apperr.New(apperr.CodeInvalidGuess, "game finished")
		}
		g := words.Normalize(guess)
		if cur.Status == game.StatusPlaying && len(cur.Guesses) < game.MaxAttempts &&
			len(g) == len(cur.Word) && !s.words.IsValidWord(g) {
			return apperr.ErrInvalidWord
		}

		next, o, err := cur.SubmitGuess(g, now)
		if err != nil {
			return err
		}
		st.Session = &next
		out = o
		if o.Result != nil {
			st.Player = st.Player.WithGameResult(*o.Result)
			granted = s.grantDue(&st.Player)
		}
		st.Player.UpdatedAt = now.UTC()
		return nil
	})
	if err != nil {
		return GuessResult{}, err
	}

	res := GuessResult{
		Verdicts:     out.Verdicts,
		Won:          out.Status == game.StatusWon,
		Status:       out.Status,
		Score:        out.Score,
		Combo:        out.Combo,
		AttemptsLeft: game.MaxAttempts - len(st.Session.Guesses),
		Achievements: granted,
	}
	if out.Result != nil {
		res.Answer = st.Session.Word
		log.Info().
			Str("user", userID).
			Str("session", sessionID).
			Str("status", string(out.Status)).
			Int("score", out.Score).
			Int("guesses", out.Result.Guesses).
			Msg("game finished")
		logGranted(userID, granted)
	}
	return res, nil
}

// UsePowerUp consumes one use of kind in the session. The session allowance
// is spent first; after that a use is taken from the player's inventory.
func (s *Service) UsePowerUp(ctx context.Context, sessionID string, kind game.PowerUp) (game.PowerUpResult, error) {
	ctx, span := s.start(ctx, "UsePowerUp", sessionAttr(sessionID))
	var err error
	defer func() { end(span, err) }()

	if !kind.Valid() {
		err = apperr.ErrInvalidPowerUp
		return game.PowerUpResult{}, err
	}
	var known game.Session
	known, err = s.openSession(ctx, sessionID)
	if err != nil {
		return game.PowerUpResult{}, err
	}

	now := s.now()
	env := game.PowerUpEnv{Pick: s.pick, Draw: s.words.RandomWordExcept}
	var res game.PowerUpResult
	_, err = s.store.UpdateUser(ctx, known.UserID, func(st *store.UserState) error {
		cur := st.Session
		if cur == nil || cur.ID != sessionID {
			return apperr.ErrNoActiveSession
		}
		sess := cur.Clone()
		if sess.Status == game.StatusPlaying && sess.PowerUps[kind] <= 0 {
			if p, ok := st.Player.TakePowerUp(kind); ok {
				st.Player = p
				sess.PowerUps[kind]++
			}
		}
		next, r, err := sess.ApplyPowerUp(kind, env, now)
		if err != nil {
			return err
		}
		st.Session = &next
		res = r
		return nil
	})
	if err != nil {
		return game.PowerUpResult{}, err
	}
	log.Info().Str("session", sessionID).Str("powerup", string(kind)).Msg("power-up used")
	return res, nil
}

// GameHistory lists userID's sessions, most recent first. limit <= 0 means 10.
func (s *Service) GameHistory(ctx context.Context, userID string, limit int) ([]SessionView, error) {
	ctx, span := s.start(ctx, "GameHistory", userAttr(userID))
	var err error
	defer func() { end(span, err) }()

	if limit <= 0 {
		limit = 10
	}
	var list []game.Session
	list, err = s.store.ListSessions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SessionView, 0, len(list))
	for _, sess := range list {
		out = append(out, NewSessionView(sess))
	}
	return out, nil
}
