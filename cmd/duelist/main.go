package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"duelist/internal/board"
	"duelist/internal/config"
	"duelist/internal/logging"
	"duelist/internal/prefs"
	"duelist/internal/storage"
	"duelist/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.ResolveConfigPath(), "path to config.toml")
	flag.Parse()
	return start(*configPath)
}

func start(configPath string) error {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logFile.Close()
	logger.WithField("config", configPath).Info("starting")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	store, err := storage.Open(ctx, storeOptions(cfg, logging.Component(logger, "storage")))
	cancel()
	if err != nil {
		logger.WithError(err).Error("open store")
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	prefsPath := config.PrefsPath(configPath)
	theme, err := prefs.Resolve(prefsPath, lipgloss.HasDarkBackground)
	if err != nil {
		logger.WithError(err).Warn("read theme preference")
	}

	err = ui.Run(ui.Options{
		Service:   board.NewService(store, logging.Component(logger, "board")),
		Config:    cfg,
		PrefsPath: prefsPath,
		Theme:     theme,
		Logger:    logging.Component(logger, "ui"),
	})
	if err != nil {
		logger.WithError(err).Error("program exited")
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info("bye")
	return nil
}

func storeOptions(cfg config.Config, logger *log.Entry) storage.Options {
	return storage.Options{
		Backend:               cfg.Backend,
		Collection:            cfg.Collection,
		DBPath:                cfg.DBPath,
		AzureConnectionString: cfg.Azure.ConnectionString,
		RedisURL:              cfg.Redis.URL,
		RedisPrefix:           cfg.Redis.Prefix,
		Logger:                logger,
	}
}
