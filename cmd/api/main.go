package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"github.com/joho/godotenv"

	"boardserver/internal/adapter/credentials"
	"boardserver/internal/adapter/repo"
	"boardserver/internal/adapter/searchcache"
	"boardserver/internal/audit"
	"boardserver/internal/http/handlers"
	"boardserver/internal/http/httpapi"
	"boardserver/internal/infra"
	"boardserver/internal/infra/geoip"
	"boardserver/internal/middleware"
	"boardserver/internal/session"
	"boardserver/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	if geoResolver != nil {
		defer geoResolver.Close()
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize attachment storage")
	}

	// Persistence
	accounts := repo.NewAccountRepository(dbpool)
	posts := repo.NewPostRepository(dbpool)
	comments := repo.NewCommentRepository(dbpool)
	history := repo.NewHistoryRepository(dbpool)
	totals := repo.NewLoginTotalRepository(dbpool)

	// Session accounting
	clock := quartz.NewReal()
	keyStore := session.NewRedisKeyStore(redisClient, cfg.StoreOpTimeout)
	guard := session.NewGuard(keyStore, clock, cfg.SessionWindow, logger)
	tracker := session.NewTracker(keyStore, clock, cfg.RollupTimezone)
	reconciler := session.NewReconciler(tracker, totals, logger)
	scheduler := session.NewScheduler(reconciler, totals, clock, cfg.RollupTimezone, cfg.RollupCron, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start rollup scheduler")
	}
	defer scheduler.Stop()

	recorder := audit.NewAsyncRecorder(history, geoResolver, logger)
	defer recorder.Close()

	app := &handlers.App{
		Logger:      logger,
		Accounts:    accounts,
		Posts:       posts,
		Comments:    comments,
		History:     history,
		Totals:      totals,
		Credentials: credentials.NewVerifier(accounts),
		Guard:       guard,
		Tracker:     tracker,
		Rollup:      scheduler,
		Searches:    searchcache.New(redisClient, clock, cfg.StoreOpTimeout),
		Audit:       recorder,
		Store:       fileStore,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
	}

	var lookup middleware.CountryLookup
	if geoResolver != nil {
		lookup = geoResolver.CountryCode
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
