// main.go
//
// Entry point for the wordrush server.
// Wires config → logging → tracing → word bank → achievement catalog →
// store (memory or SQL) → service → HTTP, and shuts down on SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/achievement"
	"github.com/robalobadob/wordrush/internal/config"
	"github.com/robalobadob/wordrush/internal/httpserver"
	"github.com/robalobadob/wordrush/internal/service"
	"github.com/robalobadob/wordrush/internal/store"
	"github.com/robalobadob/wordrush/internal/store/sqlstore"
	"github.com/robalobadob/wordrush/internal/telemetry"
	"github.com/robalobadob/wordrush/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "wordrush", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	bank, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	catalog := achievement.DefaultCatalog()
	if cfg.AchievementsFile != "" {
		if catalog, err = achievement.LoadCatalog(cfg.AchievementsFile); err != nil {
			log.Fatal().Err(err).Msg("failed to load achievements")
		}
	}
	engine, err := achievement.NewEngine(catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid achievement catalog")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_type", cfg.DBType).Msg("failed to open store")
	}
	defer st.Close()

	svc := service.New(st, bank, engine, service.WithDailySalt(cfg.DailySalt))
	api := httpserver.New(svc, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		Secure:       strings.HasPrefix(cfg.ClientOrigin, "https://"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr()).
		Str("db_type", cfg.DBType).
		Interface("words", bank.Stats()).
		Int("achievements", len(catalog)).
		Msg("starting wordrush")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DBType == "memory" {
		return store.NewMemoryStore(), nil
	}
	return sqlstore.Open(ctx, sqlstore.Config{
		Type:    cfg.DBType,
		Path:    cfg.DBPath,
		URL:     cfg.DatabaseURL,
		Retries: cfg.StoreRetries,
	})
}
