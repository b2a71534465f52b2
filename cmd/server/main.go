package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httpapi "github.com/snapmatch/snapmatch/internal/api/http"
	wsapi "github.com/snapmatch/snapmatch/internal/api/ws"
	"github.com/snapmatch/snapmatch/internal/application/broker"
	appDelivery "github.com/snapmatch/snapmatch/internal/application/delivery"
	"github.com/snapmatch/snapmatch/internal/application/expiry"
	"github.com/snapmatch/snapmatch/internal/config"
	"github.com/snapmatch/snapmatch/internal/infrastructure/identity"
	"github.com/snapmatch/snapmatch/internal/infrastructure/postgres"
	"github.com/snapmatch/snapmatch/internal/infrastructure/presence"
	"github.com/snapmatch/snapmatch/internal/migrations"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	requestRepo := postgres.NewRequestRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	photoRepo := postgres.NewPhotoRepository(pool)

	// infrastructure
	registry := presence.NewRegistry()
	verifier := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentitySecret)

	// services
	router := appDelivery.NewRouter(registry, logger)
	brokerSvc := broker.NewService(requestRepo, directoryRepo, photoRepo, router, cfg.RequestExpiry, logger)
	supervisor := expiry.NewSupervisor(requestRepo, brokerSvc, cfg.ExpirySweepInterval, cfg.RequestExpiry, cfg.ExpirySweepLimit, logger)

	// API surface
	apiServer := httpapi.NewServer(brokerSvc, registry, verifier, logger)
	wsHandler := wsapi.NewHandler(brokerSvc, registry, verifier, logger)

	root := chi.NewRouter()
	root.Mount("/", apiServer.Router())
	root.Handle("/v1/ws", wsHandler.HTTPHandler())

	// WriteTimeout stays zero: the SSE and websocket endpoints hold their
	// connections open for the life of a session.
	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           root,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go supervisor.Run(runCtx)

	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancelRun()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
