package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/app"
	"github.com/ykvlv/checklist-bot/internal/config"
	"github.com/ykvlv/checklist-bot/internal/logger"
)

const (
	exitOK    = 0
	exitRun   = 1
	exitSetup = 2
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred log flushing always happens.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitSetup
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		return exitSetup
	}
	defer func() { _ = log.Sync() }()

	bot, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init failed", zap.Error(err))
		return exitSetup
	}
	if err := bot.Run(context.Background()); err != nil {
		log.Error("app stopped with error", zap.Error(err))
		return exitRun
	}
	log.Info("bye")
	return exitOK
}
