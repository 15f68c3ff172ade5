// internal/service/service.go
//
// Service construction, options and shared helpers (tracing spans, player
// lookup).

// Package service is the progression core's façade: it composes the pure
// game, challenge and achievement commands with the word bank, the clock
// and the store, and exposes the operations callers use.
//
// Every mutating operation runs its command inside one store unit, so the
// session, challenge and player record it touches change together or not
// at all. The service itself never retries; contention is the store's job.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/wordrush/internal/achievement"
	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/player"
	"github.com/robalobadob/wordrush/internal/store"
	"github.com/robalobadob/wordrush/internal/words"
)

const tracerName = "github.com/robalobadob/wordrush/internal/service"

// WordSource is the word-lookup collaborator. *words.Bank implements it.
type WordSource interface {
	RandomWord(level int) (string, error)
	RandomWordExcept(level int, except string) (string, error)
	DailyWord(day time.Time, salt string, level int) (string, error)
	IsValidWord(w string) bool
	Stats() map[int]int
}

var _ WordSource = (*words.Bank)(nil)

// Service implements the core operations.
type Service struct {
	store        store.Store
	words        WordSource
	achievements *achievement.Engine

	salt   string
	now    func() time.Time
	newID  func() string
	pick   func(n int) int
	tracer trace.Tracer

	daily singleflight.Group
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the session id generator (random UUIDs by default).
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithPicker replaces the uniform index source used by letterReveal.
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

// WithDailySalt sets the key for the daily word pick.
func WithDailySalt(salt string) Option {
	return func(s *Service) { s.salt = salt }
}

// New builds a Service.
func New(st store.Store, ws WordSource, ach *achievement.Engine, opts ...Option) *Service {
	s := &Service{
		store:        st,
		words:        ws,
		achievements: ach,
		salt:         "wordrush-daily",
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
		pick:         words.CryptoPicker,
		tracer:       otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// start opens a span for op.
func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "service."+op, trace.WithAttributes(attrs...))
}

func userAttr(id string) attribute.KeyValue    { return attribute.String("user.id", id) }
func sessionAttr(id string) attribute.KeyValue { return attribute.String("session.id", id) }

// end records err on span and closes it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.CodeOf(err)))
	}
	span.End()
}

// loadPlayer returns the stored record, or a fresh one for unknown users.
func (s *Service) loadPlayer(ctx context.Context, userID string) (player.Player, error) {
	p, err := s.store.GetPlayer(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return player.New(userID), nil
	}
	return p, err
}

// WordStats reports the dictionary size per word length.
func (s *Service) WordStats() map[int]int { return s.words.Stats() }
