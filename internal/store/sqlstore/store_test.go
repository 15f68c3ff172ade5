package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
	"github.com/robalobadob/wordrush/internal/store"
)

var now = time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Type: "sqlite", Path: filepath.Join(t.TempDir(), "data", "test.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), Config{Type: "sqlite", Path: path})
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil || n != 1 {
			t.Fatalf("_migrations rows = %d, %v", n, err)
		}
		_ = s.Close()
	}
}

func TestUpdateUserRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if _, err := s.GetPlayer(ctx, "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("GetPlayer before write: %v", err)
	}
	_, err := s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
		sess := game.NewSession("s1", "u1", "lion", 2, 0, now)
		st.Session = &sess
		st.Player.PowerUps[game.PowerUpExtraTime] = 2
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	st, err := s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
		if st.Session == nil || st.Session.ID != "s1" {
			t.Fatalf("open session not loaded: %+v", st.Session)
		}
		next, out, err := st.Session.SubmitGuess("lion", now.Add(30*time.Second))
		if err != nil {
			return err
		}
		st.Session = &next
		st.Player = st.Player.WithGameResult(*out.Result)
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if st.Session.Status != game.StatusWon || st.Player.Stats.GamesWon != 1 {
		t.Fatalf("unexpected state: %s %+v", st.Session.Status, st.Player.Stats)
	}

	p, err := s.GetPlayer(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p.Stats.GamesWon != 1 || p.PowerUps[game.PowerUpExtraTime] != 2 || p.Stats.FastestSolve == nil {
		t.Fatalf("player did not round-trip: %+v", p)
	}
	sess, err := s.GetSession(ctx, "s1")
	if err != nil || sess.Status != game.StatusWon || len(sess.Guesses) != 1 {
		t.Fatalf("GetSession = %+v, %v", sess, err)
	}

	_, _ = s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
		if st.Session != nil {
			t.Errorf("won session still open")
		}
		return nil
	})
}

func TestUpdateUserErrorRollsBack(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
		st.Player.Points = 5
		return apperr.ErrInvalidGuess
	})
	if !errors.Is(err, apperr.ErrInvalidGuess) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.GetPlayer(ctx, "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("player written despite error: %v", err)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		_, err := s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
			sess := game.NewSession(id, "u1", "lion", 1, 0, now.Add(time.Duration(i)*time.Minute))
			sess, _ = sess.Terminate(false, now.Add(time.Duration(i)*time.Minute+time.Second))
			st.Session = &sess
			return nil
		})
		if err != nil {
			t.Fatalf("UpdateUser(%s): %v", id, err)
		}
	}
	list, err := s.ListSessions(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("ListSessions = %+v", list)
	}
	if all, _ := s.ListSessions(ctx, "u1", 0); len(all) != 3 {
		t.Fatalf("unlimited list = %d", len(all))
	}
}

func TestConcurrentUnitsSerialize(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := s.UpdateUser(ctx, "u1", func(st *store.UserState) error {
				st.Player.Points++
				return nil
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	p, _ := s.GetPlayer(ctx, "u1")
	if p.Points != 20 {
		t.Fatalf("points = %d, want 20 (lost update)", p.Points)
	}
}

func TestCreateChallengeOnce(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	day := challenge.DayStart(now)

	var created atomic.Int32
	var g errgroup.Group
	for _, w := range []string{"lion", "bark", "tree"} {
		g.Go(func() error {
			c, ok, err := s.CreateChallenge(ctx, challenge.New(day, w, challenge.Difficulty, now))
			if err != nil {
				return err
			}
			if ok {
				created.Add(1)
			}
			if c.Day != challenge.DayKey(now) {
				t.Errorf("returned day = %s", c.Day)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if created.Load() != 1 {
		t.Fatalf("created = %d, want 1", created.Load())
	}
}

func TestUpdateChallenge(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	key := challenge.DayKey(now)

	_, _, err := s.UpdateChallenge(ctx, key, "u1", func(*challenge.Challenge, *player.Player) error { return nil })
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateChallenge before create: %v", err)
	}
	if _, _, err := s.CreateChallenge(ctx, challenge.New(now, "lion", challenge.Difficulty, now)); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	for _, u := range []string{"u1", "u2"} {
		_, _, err := s.UpdateChallenge(ctx, key, u, func(c *challenge.Challenge, p *player.Player) error {
			next, res, err := c.RecordAttempt(u, "lion", 5, func(string) bool { return true }, now)
			if err != nil {
				return err
			}
			*c = next
			if res.FirstCompletion {
				*p = p.WithChallengeCompleted()
			}
			return nil
		})
		if err != nil {
			t.Fatalf("UpdateChallenge(%s): %v", u, err)
		}
	}

	c, err := s.GetChallenge(ctx, key)
	if err != nil {
		t.Fatalf("GetChallenge: %v", err)
	}
	if len(c.Leaderboard) != 2 || c.Leaderboard[0].UserID != "u1" {
		t.Fatalf("leaderboard = %+v", c.Leaderboard)
	}
	p, _ := s.GetPlayer(ctx, "u2")
	if p.Stats.ChallengesCompleted != 1 {
		t.Fatalf("u2 challenges = %d", p.Stats.ChallengesCompleted)
	}
}

func TestConcurrentChallengeAttemptsSerialize(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	key := challenge.DayKey(now)
	if _, _, err := s.CreateChallenge(ctx, challenge.New(now, "lion", challenge.Difficulty, now)); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			_, _, errs[i] = s.UpdateChallenge(ctx, key, "u1", func(c *challenge.Challenge, p *player.Player) error {
				next, _, err := c.RecordAttempt("u1", "bark", 0, func(string) bool { return true }, now)
				if err != nil {
					return err
				}
				*c = next
				p.Points++
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	accepted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, apperr.ErrAttemptsExhausted):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != challenge.MaxAttemptsPerUser {
		t.Fatalf("accepted = %d, want %d", accepted, challenge.MaxAttemptsPerUser)
	}
	c, err := s.GetChallenge(ctx, key)
	if err != nil {
		t.Fatalf("GetChallenge: %v", err)
	}
	if len(c.Attempts) != challenge.MaxAttemptsPerUser || len(c.Leaderboard) != 1 {
		t.Fatalf("attempts=%d leaderboard=%d", len(c.Attempts), len(c.Leaderboard))
	}
	p, _ := s.GetPlayer(ctx, "u1")
	if p.Points != challenge.MaxAttemptsPerUser {
		t.Fatalf("points = %d, want one per accepted attempt", p.Points)
	}
}

func TestListChallengesPaging(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		d := now.AddDate(0, 0, -i)
		if _, _, err := s.CreateChallenge(ctx, challenge.New(d, "lion", challenge.Difficulty, now)); err != nil {
			t.Fatalf("CreateChallenge: %v", err)
		}
	}
	page, total, err := s.ListChallenges(ctx, 1, 3)
	if err != nil {
		t.Fatalf("ListChallenges: %v", err)
	}
	if total != 5 || len(page) != 3 || page[0].Day != challenge.DayKey(now.AddDate(0, 0, -1)) {
		t.Fatalf("page = %d items starting %v, total %d", len(page), page, total)
	}
	if page, _, _ := s.ListChallenges(ctx, 5, 3); len(page) != 0 {
		t.Fatalf("offset past end returned %d", len(page))
	}
}
