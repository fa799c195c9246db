package main

import (
	"log"
	"os"

	"github.com/MrSnakeDoc/favorg/internal/config"
	"github.com/MrSnakeDoc/favorg/internal/ctl"
	"github.com/MrSnakeDoc/favorg/internal/logger"
)

func main() {
	cfg := config.Load()

	// Keep the terminal for command output unless a level was asked for.
	level := cfg.LogLevel
	if os.Getenv("FAVORG_LOG_LEVEL") == "" {
		level = "warn"
	}
	loggerClient := logger.New(level, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	env := ctl.NewEnv(cfg, loggerClient)
	err := ctl.NewApp(env).Run(os.Args)
	env.Close()
	if err != nil {
		log.Fatalf("❌ favorgctl: %v", err)
	}
}
