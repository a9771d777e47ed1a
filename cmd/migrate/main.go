package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/config"
	"github.com/fdg312/meal-planner/internal/dbmigrate"
	"github.com/fdg312/meal-planner/internal/logging"
)

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dir path] up|status|down|list")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync()

	command := flag.Arg(0)
	switch command {
	case "up", "status", "down":
	case "list":
		names, err := dbmigrate.Migrations()
		if err != nil {
			logger.Fatal("list migrations", zap.Error(err))
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	default:
		logger.Fatal("unsupported command", zap.String("command", command), zap.Strings("allowed", []string{"up", "status", "down", "list"}))
	}

	sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if sel.Warning != "" {
		logger.Warn("migrate", zap.String("warning", sel.Warning))
	}
	logger.Info("migrate", zap.String("command", command), zap.String("using", sel.Source))

	if err := dbmigrate.Run(command, sel.URL, *dir); err != nil {
		logger.Fatal("migrate failed", zap.String("command", command), zap.Error(err))
	}

	logger.Info("migrate completed", zap.String("command", command))
}
