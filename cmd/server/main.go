package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamscape/identity-system/internal/api"
	"github.com/dreamscape/identity-system/internal/api/handler"
	"github.com/dreamscape/identity-system/internal/core/ports"
	"github.com/dreamscape/identity-system/internal/core/service"
	"github.com/dreamscape/identity-system/internal/infrastructure/config"
	"github.com/dreamscape/identity-system/internal/infrastructure/db/document"
	mongostore "github.com/dreamscape/identity-system/internal/infrastructure/db/mongo"
	redisstore "github.com/dreamscape/identity-system/internal/infrastructure/db/redis"
	"github.com/dreamscape/identity-system/internal/infrastructure/queue"
	"github.com/dreamscape/identity-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Persistence ---
	var (
		userRepo    ports.UserRepository
		sessionRepo ports.SessionRepository
		probes      []handler.DependencyProbe
	)

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("mongo index creation failed")
		}
		userRepo = mongostore.NewUserRepository(db)
		sessionRepo = mongostore.NewSessionRepository(db)
		probes = append(probes, handler.DependencyProbe{
			Name:  "mongodb",
			Check: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})
	default:
		store, err := document.NewStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("document store init failed")
		}
		userRepo = store.Users()
		sessionRepo = store.Sessions()
		probes = append(probes, handler.DependencyProbe{
			Name:  "document_store",
			Check: func(context.Context) error { return store.Ping() },
		})
	}

	// --- Optional Redis dedup for the activity pipeline ---
	var dedup service.DedupChecker
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = rdb.Close()
		}()
		dedup = redisstore.NewDedupChecker(rdb)
		probes = append(probes, handler.DependencyProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	// --- Services ---
	userService := service.NewUserService(userRepo, log)
	sessionService := service.NewSessionService(sessionRepo, cfg.SessionTTL, log)
	activityService := service.NewActivityService(userRepo, dedup, log)

	dispatcher := queue.NewDispatcher(cfg.Workers, activityService, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Users:      userService,
		Sessions:   sessionService,
		Dispatcher: dispatcher,
		Probes:     probes,
		JWTSecret:  cfg.JWTSecret,
		Log:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("identity service started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("identity service stopped")
}
