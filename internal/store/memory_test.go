package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
)

var now = time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

func startSession(t *testing.T, s Store, userID, id string) {
	t.Helper()
	_, err := s.UpdateUser(context.Background(), userID, func(st *UserState) error {
		sess := game.NewSession(id, userID, "lion", 1, 0, now)
		st.Session = &sess
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
}

func TestMemoryUpdateUserDefaultsAndPersists(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetPlayer(ctx, "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("GetPlayer before write: err = %v", err)
	}
	st, err := s.UpdateUser(ctx, "u1", func(st *UserState) error {
		if st.Player.Stats.HighestLevel != 1 || st.Session != nil {
			t.Errorf("unexpected fresh state: %+v", st)
		}
		st.Player.Points = 10
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if st.Player.Points != 10 {
		t.Fatalf("returned points = %d", st.Player.Points)
	}
	p, err := s.GetPlayer(ctx, "u1")
	if err != nil || p.Points != 10 {
		t.Fatalf("GetPlayer = %+v, %v", p, err)
	}
}

func TestMemoryUpdateUserErrorDiscardsChanges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")
	_, err := s.UpdateUser(ctx, "u1", func(st *UserState) error {
		st.Player.Points = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := s.GetPlayer(ctx, "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("player persisted after failed unit: %v", err)
	}
}

func TestMemorySessionLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	startSession(t, s, "u1", "s1")

	st, err := s.UpdateUser(ctx, "u1", func(st *UserState) error {
		if st.Session == nil || st.Session.ID != "s1" {
			t.Fatalf("open session not loaded: %+v", st.Session)
		}
		next, _ := st.Session.Terminate(false, now.Add(time.Minute))
		st.Session = &next
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if st.Session.Status != game.StatusLost {
		t.Fatalf("status = %s", st.Session.Status)
	}

	_, _ = s.UpdateUser(ctx, "u1", func(st *UserState) error {
		if st.Session != nil {
			t.Errorf("terminal session still open: %+v", st.Session)
		}
		return nil
	})

	startSession(t, s, "u1", "s2")
	list, err := s.ListSessions(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 || list[0].ID != "s2" || list[1].ID != "s1" {
		t.Fatalf("ListSessions order = %+v", list)
	}
	if list, _ := s.ListSessions(ctx, "u1", 1); len(list) != 1 {
		t.Fatalf("limit ignored: %d", len(list))
	}
	got, err := s.GetSession(ctx, "s1")
	if err != nil || got.Status != game.StatusLost {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}
	if _, err := s.GetSession(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("GetSession(nope) err = %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	startSession(t, s, "u1", "s1")

	got, _ := s.GetSession(ctx, "s1")
	got.Guesses = append(got.Guesses, game.Guess{Word: "oops"})
	got.PowerUps[game.PowerUpWordSkip] = 42

	again, _ := s.GetSession(ctx, "s1")
	if len(again.Guesses) != 0 || again.PowerUps[game.PowerUpWordSkip] != 1 {
		t.Fatalf("stored session mutated through a copy: %+v", again)
	}
}

func TestMemoryConcurrentGuessesSerialize(t *testing.T) {
	s := NewMemoryStore()
	startSession(t, s, "u1", "s1")

	// Five guesses remain after the first; both goroutines race to submit
	// the final two. Each unit sees the other's write.
	for _, w := range []string{"bark", "bark", "bark", "bark"} {
		_, err := s.UpdateUser(context.Background(), "u1", func(st *UserState) error {
			next, _, err := st.Session.SubmitGuess(w, now)
			st.Session = &next
			return err
		})
		if err != nil {
			t.Fatalf("setup guess: %v", err)
		}
	}

	var accepted, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			_, err := s.UpdateUser(context.Background(), "u1", func(st *UserState) error {
				if st.Session == nil {
					return apperr.ErrNoActiveSession
				}
				next, _, err := st.Session.SubmitGuess("bark", now)
				if err != nil {
					return err
				}
				st.Session = &next
				return nil
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, apperr.ErrNoActiveSession), errors.Is(err, apperr.ErrInvalidGuess):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Load() != 2 || rejected.Load() != 1 {
		t.Fatalf("accepted=%d rejected=%d, want 2/1", accepted.Load(), rejected.Load())
	}
	got, _ := s.GetSession(context.Background(), "s1")
	if len(got.Guesses) != game.MaxAttempts || got.Status != game.StatusLost {
		t.Fatalf("final session = %d guesses, %s", len(got.Guesses), got.Status)
	}
}

func TestMemoryCreateChallengeOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := challenge.DayStart(now)

	var created atomic.Int32
	var g errgroup.Group
	for _, w := range []string{"lion", "bark", "tree", "fish"} {
		g.Go(func() error {
			_, ok, err := s.CreateChallenge(ctx, challenge.New(day, w, challenge.Difficulty, now))
			if ok {
				created.Add(1)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if created.Load() != 1 {
		t.Fatalf("created %d challenges, want 1", created.Load())
	}
	list, total, err := s.ListChallenges(ctx, 0, 10)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("ListChallenges = %d/%d, %v", len(list), total, err)
	}
}

func TestMemoryUpdateChallenge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := challenge.DayStart(now)
	key := challenge.DayKey(now)

	_, _, err := s.UpdateChallenge(ctx, key, "u1", func(*challenge.Challenge, *player.Player) error { return nil })
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateChallenge before create: %v", err)
	}

	if _, _, err := s.CreateChallenge(ctx, challenge.New(day, "lion", challenge.Difficulty, now)); err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	c, p, err := s.UpdateChallenge(ctx, key, "u1", func(c *challenge.Challenge, p *player.Player) error {
		next, res, err := c.RecordAttempt("u1", "lion", 10, func(string) bool { return true }, now)
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
		t.Fatalf("UpdateChallenge: %v", err)
	}
	if len(c.Leaderboard) != 1 || p.Stats.ChallengesCompleted != 1 {
		t.Fatalf("challenge=%+v player=%+v", c.Leaderboard, p.Stats)
	}
	stored, _ := s.GetChallenge(ctx, key)
	if len(stored.Attempts) != 1 {
		t.Fatalf("stored attempts = %d", len(stored.Attempts))
	}
}

func TestMemoryListChallengesPaging(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		d := challenge.DayStart(now.AddDate(0, 0, -i))
		if _, _, err := s.CreateChallenge(ctx, challenge.New(d, "lion", challenge.Difficulty, now)); err != nil {
			t.Fatalf("CreateChallenge: %v", err)
		}
	}
	page, total, err := s.ListChallenges(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListChallenges: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("page=%d total=%d", len(page), total)
	}
	if want := challenge.DayKey(now.AddDate(0, 0, -2)); page[0].Day != want {
		t.Fatalf("page[0] = %s, want %s", page[0].Day, want)
	}
	if page, _, _ := s.ListChallenges(ctx, 10, 2); len(page) != 0 {
		t.Fatalf("offset past end returned %d", len(page))
	}
}

func TestMemoryHonorsContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.UpdateUser(ctx, "u1", func(*UserState) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
