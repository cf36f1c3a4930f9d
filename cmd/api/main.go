package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtomjskim/blog-automation-sub001/internal/adapter/repo"
	"github.com/tomtomjskim/blog-automation-sub001/internal/generate"
	"github.com/tomtomjskim/blog-automation-sub001/internal/http/handlers"
	"github.com/tomtomjskim/blog-automation-sub001/internal/http/httpapi"
	"github.com/tomtomjskim/blog-automation-sub001/internal/imagegen"
	"github.com/tomtomjskim/blog-automation-sub001/internal/infra"
	"github.com/tomtomjskim/blog-automation-sub001/internal/llm"
	"github.com/tomtomjskim/blog-automation-sub001/internal/progress"
	"github.com/tomtomjskim/blog-automation-sub001/internal/uploads"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store := progress.NewStore(0)
	store.StartSweeper(ctx)

	jobs := repo.NewGenerationRepository(dbpool)
	profiles := repo.NewStyleProfileRepository(dbpool)
	invoker := llm.NewCLIInvoker(cfg.ClaudeBin, cfg.ClaudeModel, logger)
	images := imagegen.NewClient(imagegen.Options{
		AccessKey: cfg.KlingAccessKey,
		SecretKey: cfg.KlingSecretKey,
		BaseURL:   cfg.KlingBaseURL,
		Model:     cfg.KlingModel,
		Logger:    logger,
	})
	files := uploads.NewResolver(cfg.UploadDir)

	runner := generate.NewRunner(jobs, profiles, store, invoker, images, files, logger)
	app := handlers.NewApp(cfg, logger, jobs, profiles, store, runner)
	router := httpapi.NewRouter(app)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
