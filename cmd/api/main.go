package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vidver/internal/adapter/repo"
	"vidver/internal/gateway"
	"vidver/internal/http/handlers"
	httpapi "vidver/internal/http/httpapi"
	"vidver/internal/infra"
	"vidver/internal/infra/credentials"
	"vidver/internal/infra/geoip"
	"vidver/internal/orchestrator"
	"vidver/internal/storage"
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

	runner := infra.NewSQLRunner(dbpool, logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, signup country tagging disabled")
	}

	// The provider key lives in the database so it can be rotated without a
	// redeploy; the environment variable seeds and overrides it.
	apiKey := cfg.KieAPIKey
	if apiKey == "" {
		creds := credentials.NewStore(runner)
		if stored, err := creds.KieAPIKey(ctx); err == nil {
			apiKey = stored
		}
	}
	if apiKey == "" {
		logger.Warn().Msg("no kie api key configured, generation requests will fail")
	}

	gw := gateway.NewClient(gateway.Options{
		BaseURL:      cfg.KieBaseURL,
		APIKey:       apiKey,
		PollInterval: cfg.PollInterval,
		MaxAttempts:  cfg.PollMaxAttempts,
		Logger:       &logger,
	})

	wallets := repo.NewWalletRepository(runner)
	jobs := repo.NewJobRepository(runner)
	assets := repo.NewAssetRepository(runner)

	orch := &orchestrator.Orchestrator{
		Wallets:      wallets,
		Jobs:         jobs,
		Assets:       assets,
		Gateway:      gw,
		AssetBaseURL: cfg.PublicBaseURL + "/static",
		Logger:       logger,
	}

	app := &handlers.App{
		SQL:          runner,
		Logger:       logger,
		Config:       cfg,
		Orchestrator: orch,
		Wallets:      wallets,
		Store:        store,
		Geo:          geoResolver,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
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
