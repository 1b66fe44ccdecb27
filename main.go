package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"riskengine/config"
	rhttp "riskengine/http"
	"riskengine/logging"
	"riskengine/ml"
	"riskengine/monitoring"
	"riskengine/risk"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load the model once; nothing is served without it
	scorer, err := ml.LoadModel(ctx, cfg.Model, logger)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer scorer.Close()

	metrics := monitoring.NewMetricsCollector()
	observer := monitoring.NewAssessmentMetrics(metrics)
	assessor := risk.NewAssessor(scorer, logger, risk.WithObserver(observer))

	// 3. Watch the artifact; changes are reported, not reloaded
	if cfg.Model.Watch && cfg.Model.Path != "" && cfg.Model.Type != ml.TypeRemote {
		watcher, err := ml.NewArtifactWatcher(cfg.Model.Path, logger, func(fsnotify.Event) {
			observer.ArtifactChanged()
		})
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	// 4. Start HTTP server
	server, err := rhttp.NewServer(rhttp.ServerConfigFrom(cfg.Http), rhttp.Deps{
		Assessor:  assessor,
		Formatter: risk.NewFormatter(cfg.Display.Locale),
		Defaults:  risk.SettingsFromConfig(cfg.Decision),
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to create HTTP server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}
