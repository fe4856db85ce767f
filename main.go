package main

import (
	"log/slog"
	"os"

	"github.com/soocke/clickmask-go/app"
	"github.com/soocke/clickmask-go/config"
)

const (
	appName           = "clickmask"
	defaultConfigPath = "clickmask.json"
)

func main() {
	cfgPath := defaultConfigPath
	if len(os.Args) > 1 && os.Args[1] != "" {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(os.Stdout, level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", cfgPath, "error", err)
	}

	application := app.NewApp("Click Mask", cfg, cfgPath, logger)
	application.Start()
}
