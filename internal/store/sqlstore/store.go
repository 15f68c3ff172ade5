// internal/store/sqlstore/store.go
//
// SQL-backed store.
// Responsibilities:
//   - Open: connect, configure the pool and migrate.
//   - UpdateUser / UpdateChallenge units with version compare-and-swap + retry.
//   - CreateChallenge (insert-or-ignore) and read-side queries.

// Package sqlstore implements store.Store on database/sql for SQLite,
// PostgreSQL and MySQL.
//
// Each entity is one row holding its JSON snapshot plus a version column.
// A unit of work reads rows inside a transaction and writes them back with
// compare-and-swap on version (inserts use the dialect's insert-or-ignore),
// so a concurrent writer makes the write touch zero rows. The unit is then
// re-run up to Config.Retries times before ErrConflict is returned.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
	"github.com/robalobadob/wordrush/internal/store"
)

// DefaultRetries bounds how often a conflicting unit is re-run.
const DefaultRetries = 5

// Config selects and addresses the backend.
type Config struct {
	Type    string // sqlite | postgres | mysql
	Path    string // sqlite file
	URL     string // postgres/mysql connection string
	Retries int
}

// Store is the SQL-backed store.Store.
type Store struct {
	db      *sql.DB
	d       Dialect
	retries int
}

var _ store.Store = (*Store)(nil)

// errStale signals a lost compare-and-swap; the unit is retried.
var errStale = errors.New("stale version")

// Open connects, configures the pool and applies migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	dsn, err := d.DSN(cfg.Path, cfg.URL)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := d.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure connection: %w", err)
	}
	if err := migrate(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	retries := cfg.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Store{db: db, d: d, retries: retries}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) q(query string) string { return s.d.RewriteQuery(query) }

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withRetry re-runs attempt while it loses version races.
func (s *Store) withRetry(ctx context.Context, attempt func() error) error {
	for i := 0; i < s.retries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := attempt()
		if !errors.Is(err, errStale) {
			return err
		}
		log.Debug().Int("attempt", i+1).Msg("sqlstore: stale version, retrying")
	}
	return apperr.Wrap(apperr.CodeConflict, "concurrent update conflict", errStale)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// expectOne turns a write that touched no rows into errStale.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errStale
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

/* -------------------------------- players ------------------------------- */

// loadPlayer returns version 0 and a fresh record for unknown users.
func (s *Store) loadPlayer(ctx context.Context, q queryer, userID string) (player.Player, int64, error) {
	var version int64
	var data string
	err := q.QueryRowContext(ctx, s.q(`SELECT version, data FROM players WHERE user_id = ?`), userID).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return player.New(userID), 0, nil
	}
	if err != nil {
		return player.Player{}, 0, fmt.Errorf("load player: %w", err)
	}
	var p player.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return player.Player{}, 0, fmt.Errorf("decode player %s: %w", userID, err)
	}
	return p, version, nil
}

func (s *Store) savePlayer(ctx context.Context, tx *sql.Tx, userID string, p player.Player, version int64) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player: %w", err)
	}
	now := toMillis(time.Now())
	if version == 0 {
		return expectOne(tx.ExecContext(ctx,
			s.q(s.d.InsertIgnore("players", "user_id", "version", "data", "updated_at")),
			userID, 1, string(data), now))
	}
	return expectOne(tx.ExecContext(ctx,
		s.q(`UPDATE players SET version = version + 1, data = ?, updated_at = ? WHERE user_id = ? AND version = ?`),
		string(data), now, userID, version))
}

func (s *Store) GetPlayer(ctx context.Context, userID string) (player.Player, error) {
	p, version, err := s.loadPlayer(ctx, s.db, userID)
	if err != nil {
		return player.Player{}, err
	}
	if version == 0 {
		return player.Player{}, apperr.ErrNotFound
	}
	return p, nil
}

/* ------------------------------- sessions ------------------------------- */

func decodeSession(data string) (game.Session, error) {
	var sess game.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return game.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *Store) loadOpenSession(ctx context.Context, q queryer, userID string) (*game.Session, int64, error) {
	var version int64
	var data string
	err := q.QueryRowContext(ctx,
		s.q(`SELECT version, data FROM sessions WHERE user_id = ? AND status = ? ORDER BY started_at DESC LIMIT 1`),
		userID, string(game.StatusPlaying)).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load open session: %w", err)
	}
	sess, err := decodeSession(data)
	if err != nil {
		return nil, 0, err
	}
	return &sess, version, nil
}

func (s *Store) saveSession(ctx context.Context, tx *sql.Tx, sess game.Session, version int64) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if version == 0 {
		return expectOne(tx.ExecContext(ctx,
			s.q(s.d.InsertIgnore("sessions", "id", "user_id", "status", "version", "data", "started_at")),
			sess.ID, sess.UserID, string(sess.Status), 1, string(data), toMillis(sess.StartedAt)))
	}
	return expectOne(tx.ExecContext(ctx,
		s.q(`UPDATE sessions SET status = ?, version = version + 1, data = ? WHERE id = ? AND version = ?`),
		string(sess.Status), string(data), sess.ID, version))
}

func (s *Store) GetSession(ctx context.Context, id string) (game.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT data FROM sessions WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Session{}, apperr.ErrNotFound
	}
	if err != nil {
		return game.Session{}, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]game.Session, error) {
	query := `SELECT data FROM sessions WHERE user_id = ? ORDER BY started_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []game.Session{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		sess, err := decodeSession(data)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

/* --------------------------------- units -------------------------------- */

func (s *Store) UpdateUser(ctx context.Context, userID string, fn func(*store.UserState) error) (store.UserState, error) {
	var out store.UserState
	err := s.withRetry(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			p, pv, err := s.loadPlayer(ctx, tx, userID)
			if err != nil {
				return err
			}
			open, sv, err := s.loadOpenSession(ctx, tx, userID)
			if err != nil {
				return err
			}

			st := store.UserState{Player: p}
			if open != nil {
				c := open.Clone()
				st.Session = &c
			}
			if err := fn(&st); err != nil {
				return err
			}

			// The player row is written on every unit, so its version
			// serializes all units for this user.
			if err := s.savePlayer(ctx, tx, userID, st.Player, pv); err != nil {
				return err
			}
			if st.Session != nil {
				version := int64(0)
				if open != nil && open.ID == st.Session.ID {
					version = sv
				}
				if err := s.saveSession(ctx, tx, *st.Session, version); err != nil {
					return err
				}
			}
			out = st
			return nil
		})
	})
	if err != nil {
		return store.UserState{}, err
	}
	return out, nil
}

/* ------------------------------ challenges ------------------------------ */

func decodeChallenge(data string) (challenge.Challenge, error) {
	var c challenge.Challenge
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return challenge.Challenge{}, fmt.Errorf("decode challenge: %w", err)
	}
	return c, nil
}

func (s *Store) loadChallenge(ctx context.Context, q queryer, day string) (challenge.Challenge, int64, error) {
	var version int64
	var data string
	err := q.QueryRowContext(ctx, s.q(`SELECT version, data FROM challenges WHERE day = ?`), day).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return challenge.Challenge{}, 0, apperr.ErrNotFound
	}
	if err != nil {
		return challenge.Challenge{}, 0, fmt.Errorf("load challenge: %w", err)
	}
	c, err := decodeChallenge(data)
	return c, version, err
}

func (s *Store) UpdateChallenge(ctx context.Context, day, userID string, fn func(*challenge.Challenge, *player.Player) error) (challenge.Challenge, player.Player, error) {
	var outC challenge.Challenge
	var outP player.Player
	err := s.withRetry(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			c, cv, err := s.loadChallenge(ctx, tx, day)
			if err != nil {
				return err
			}
			p, pv, err := s.loadPlayer(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := fn(&c, &p); err != nil {
				return err
			}

			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode challenge: %w", err)
			}
			if err := expectOne(tx.ExecContext(ctx,
				s.q(`UPDATE challenges SET version = version + 1, data = ? WHERE day = ? AND version = ?`),
				string(data), day, cv)); err != nil {
				return err
			}
			if err := s.savePlayer(ctx, tx, userID, p, pv); err != nil {
				return err
			}
			outC, outP = c, p
			return nil
		})
	})
	if err != nil {
		return challenge.Challenge{}, player.Player{}, err
	}
	return outC, outP, nil
}

func (s *Store) CreateChallenge(ctx context.Context, c challenge.Challenge) (challenge.Challenge, bool, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("encode challenge: %w", err)
	}
	err = expectOne(s.db.ExecContext(ctx,
		s.q(s.d.InsertIgnore("challenges", "day", "version", "data", "created_at")),
		c.Day, 1, string(data), toMillis(c.CreatedAt)))
	switch {
	case err == nil:
		return c.Clone(), true, nil
	case !errors.Is(err, errStale):
		return challenge.Challenge{}, false, fmt.Errorf("create challenge: %w", err)
	}
	existing, err := s.GetChallenge(ctx, c.Day)
	return existing, false, err
}

func (s *Store) GetChallenge(ctx context.Context, day string) (challenge.Challenge, error) {
	c, _, err := s.loadChallenge(ctx, s.db, day)
	return c, err
}

func (s *Store) ListChallenges(ctx context.Context, offset, limit int) ([]challenge.Challenge, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count challenges: %w", err)
	}
	offset = max(offset, 0)
	if limit <= 0 {
		limit = total
	}
	out := []challenge.Challenge{}
	if offset >= total || limit == 0 {
		return out, total, nil
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT data FROM challenges ORDER BY day DESC LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, 0, err
		}
		c, err := decodeChallenge(data)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
