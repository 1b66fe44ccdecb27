package main

import (
	"context"
	"flag"
	"log"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"riskengine/config"
	"riskengine/desktop"
	"riskengine/logging"
	"riskengine/ml"
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

	// 2. Load model; the window never opens without one
	scorer, err := ml.LoadModel(context.Background(), cfg.Model, logger)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer scorer.Close()

	// 3. Run the window until it is closed
	assessor := risk.NewAssessor(scorer, logger)
	form := desktop.NewForm(assessor, risk.NewFormatter(cfg.Display.Locale), risk.SettingsFromConfig(cfg.Decision), logger)

	a := fyneapp.NewWithID(desktop.AppID)
	desktop.NewWindow(a, form).ShowAndRun()
	logger.Info("desktop window closed")
}
