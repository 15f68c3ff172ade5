// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Records are kept as value snapshots; callers only ever see clones.
//   - Each unit of work holds a per-key mutex (user, challenge day). A
//     challenge unit locks the challenge before the user, and user units
//     only ever lock the user, so the order cannot deadlock.
//   - The maps themselves are guarded by an RWMutex held only briefly.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/challenge"
	"github.com/robalobadob/wordrush/internal/game"
	"github.com/robalobadob/wordrush/internal/player"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	keys keyedMutex

	mu         sync.RWMutex                   // guards the maps below
	players    map[string]player.Player       // keyed by user id
	sessions   map[string]game.Session        // keyed by session id
	open       map[string]string              // user id → open session id
	history    map[string][]string            // user id → session ids, oldest first
	challenges map[string]challenge.Challenge // keyed by day
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		players:    make(map[string]player.Player),
		sessions:   make(map[string]game.Session),
		open:       make(map[string]string),
		history:    make(map[string][]string),
		challenges: make(map[string]challenge.Challenge),
	}
}

// keyedMutex hands out one mutex per key. Entries are never removed.
type keyedMutex struct {
	m sync.Map
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	v, _ := k.m.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (m *memory) loadPlayer(userID string) player.Player {
	if p, ok := m.players[userID]; ok {
		return p.Clone()
	}
	return player.New(userID)
}

func (m *memory) UpdateUser(ctx context.Context, userID string, fn func(*UserState) error) (UserState, error) {
	if err := ctx.Err(); err != nil {
		return UserState{}, err
	}
	defer m.keys.lock("user:" + userID)()

	m.mu.RLock()
	st := UserState{Player: m.loadPlayer(userID)}
	if id, ok := m.open[userID]; ok {
		s := m.sessions[id].Clone()
		st.Session = &s
	}
	m.mu.RUnlock()

	if err := fn(&st); err != nil {
		return UserState{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[userID] = st.Player.Clone()
	if st.Session != nil {
		s := st.Session.Clone()
		if _, known := m.sessions[s.ID]; !known {
			m.history[userID] = append(m.history[userID], s.ID)
		}
		m.sessions[s.ID] = s
		if s.Status == game.StatusPlaying {
			m.open[userID] = s.ID
		} else if m.open[userID] == s.ID {
			delete(m.open, userID)
		}
	}
	return cloneUserState(st), nil
}

func cloneUserState(st UserState) UserState {
	out := UserState{Player: st.Player.Clone()}
	if st.Session != nil {
		s := st.Session.Clone()
		out.Session = &s
	}
	return out
}

func (m *memory) UpdateChallenge(ctx context.Context, day, userID string, fn func(*challenge.Challenge, *player.Player) error) (challenge.Challenge, player.Player, error) {
	if err := ctx.Err(); err != nil {
		return challenge.Challenge{}, player.Player{}, err
	}
	defer m.keys.lock("challenge:" + day)()
	defer m.keys.lock("user:" + userID)()

	m.mu.RLock()
	c, ok := m.challenges[day]
	if ok {
		c = c.Clone()
	}
	p := m.loadPlayer(userID)
	m.mu.RUnlock()
	if !ok {
		return challenge.Challenge{}, player.Player{}, apperr.ErrNotFound
	}

	if err := fn(&c, &p); err != nil {
		return challenge.Challenge{}, player.Player{}, err
	}

	m.mu.Lock()
	m.challenges[day] = c.Clone()
	m.players[userID] = p.Clone()
	m.mu.Unlock()
	return c, p, nil
}

func (m *memory) CreateChallenge(ctx context.Context, c challenge.Challenge) (challenge.Challenge, bool, error) {
	if err := ctx.Err(); err != nil {
		return challenge.Challenge{}, false, err
	}
	defer m.keys.lock("challenge:" + c.Day)()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.challenges[c.Day]; ok {
		return existing.Clone(), false, nil
	}
	m.challenges[c.Day] = c.Clone()
	return c.Clone(), true, nil
}

func (m *memory) GetChallenge(ctx context.Context, day string) (challenge.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return challenge.Challenge{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges[day]
	if !ok {
		return challenge.Challenge{}, apperr.ErrNotFound
	}
	return c.Clone(), nil
}

func (m *memory) ListChallenges(ctx context.Context, offset, limit int) ([]challenge.Challenge, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := make([]string, 0, len(m.challenges))
	for d := range m.challenges {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	total := len(days)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	out := make([]challenge.Challenge, 0, end-offset)
	for _, d := range days[offset:end] {
		out = append(out, m.challenges[d].Clone())
	}
	return out, total, nil
}

func (m *memory) GetPlayer(ctx context.Context, userID string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[userID]
	if !ok {
		return player.Player{}, apperr.ErrNotFound
	}
	return p.Clone(), nil
}

// GetSession looks up a session by ID.
func (m *memory) GetSession(ctx context.Context, id string) (game.Session, error) {
	if err := ctx.Err(); err != nil {
		return game.Session{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.Clone(), nil
	}
	return game.Session{}, apperr.ErrNotFound
}

func (m *memory) ListSessions(ctx context.Context, userID string, limit int) ([]game.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.history[userID]
	out := []game.Session{}
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.sessions[ids[i]].Clone())
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
