package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Osteoporosis/movie-board-backend/internal/config"
	"github.com/Osteoporosis/movie-board-backend/internal/identity"
	"github.com/Osteoporosis/movie-board-backend/internal/repos"
	"github.com/Osteoporosis/movie-board-backend/internal/routes"
	"github.com/Osteoporosis/movie-board-backend/internal/server"
	"github.com/Osteoporosis/movie-board-backend/pkg/cache"
	"github.com/Osteoporosis/movie-board-backend/pkg/digest"
	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := docstore.NewFirestore(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("firestore connect failed")
	}
	defer store.Close()

	verifier, err := identity.NewFirebase(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase auth init failed")
	}

	var c cache.Cache
	if addr := cfg.ValkeyAddr; addr != "" {
		vc, err := cache.NewValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
			c = cache.NewInMemory()
		} else {
			c = vc
		}
	} else {
		c = cache.NewInMemory()
	}

	repository := repos.New(store, c)
	api := server.New(routes.Deps{
		Repo:             repository,
		Auth:             verifier,
		Anonymizer:       digest.New(cfg.DigestSecret),
		AdminUID:         cfg.AdminUID,
		MaxResults:       cfg.MaxResults,
		MinKeywordLength: cfg.MinKeywordLength,
		TimeZone:         cfg.TimeZone,
		Name:             "movie-board-backend",
		StartedAt:        time.Now(),
	}, cfg.CORSOrigins())

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := server.StartHTTP(ctx, addr, api.Router()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
	time.Sleep(200 * time.Millisecond)
}
