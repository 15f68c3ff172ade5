// internal/store/store.go
//
// Storage collaborator for the progression core.
//
// Every mutation goes through an atomic read-modify-write unit: the store
// loads a snapshot, hands copies to the caller's function and persists the
// result only if the function returns nil. Units are serialized per entity
// (a user, a challenge day), never globally. Implementations own retry
// policy for contention; callers never retry.

package store

import (
	"context"

	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
)

// UserState is the unit of work keyed by user: the player record plus the
// user's open (playing) session, if any.
type UserState struct {
	Player player.Player
	// Session is the open session. A function may replace it with a new
	// session (only when the previous one is nil or terminal) or return it
	// terminated, after which it is no longer open.
	Session *game.Session
}

// Store defines the persistence interface for the core.
// Implementations: memory (this package) and sqlstore (SQLite/Postgres/MySQL).
type Store interface {
	// UpdateUser atomically applies fn to userID's state. A user without a
	// record starts from player.New.
	UpdateUser(ctx context.Context, userID string, fn func(*UserState) error) (UserState, error)

	// UpdateChallenge atomically applies fn to the day's challenge and
	// userID's player record. Returns ErrNotFound if the day has no challenge.
	UpdateChallenge(ctx context.Context, day, userID string, fn func(*challenge.Challenge, *player.Player) error) (challenge.Challenge, player.Player, error)

	// CreateChallenge stores c unless a challenge for c.Day exists. It
	// returns the stored challenge and whether this call created it.
	CreateChallenge(ctx context.Context, c challenge.Challenge) (challenge.Challenge, bool, error)

	GetChallenge(ctx context.Context, day string) (challenge.Challenge, error)
	// ListChallenges returns challenges newest first plus the total count.
	ListChallenges(ctx context.Context, offset, limit int) ([]challenge.Challenge, int, error)

	GetPlayer(ctx context.Context, userID string) (player.Player, error)
	GetSession(ctx context.Context, id string) (game.Session, error)
	// ListSessions returns userID's sessions, most recently started first.
	ListSessions(ctx context.Context, userID string, limit int) ([]game.Session, error)

	Close() error
}
