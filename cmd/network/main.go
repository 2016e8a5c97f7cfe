package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/glabrego/network-cli/internal/app"
	"github.com/glabrego/network-cli/internal/config"
	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/session"
	"github.com/glabrego/network-cli/internal/storage"
	"github.com/glabrego/network-cli/internal/tui"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Fatalf("storage write check failed (%v). Verify NETWORK_DB_PATH is writable: %s", err, cfg.DBPath)
	}

	sess := session.Anonymous()
	if cfg.LoggedIn() {
		sess = session.New(cfg.UserID, cfg.Username)
	}

	client, err := network.NewClient(cfg.BaseURL, network.Credentials{
		SessionID: cfg.SessionID,
		CSRFToken: cfg.CSRFToken,
	}, nil)
	if err != nil {
		log.Fatalf("client init error: %v", err)
	}
	service := app.NewService(client, repo, sess, logger)

	startPath := cfg.StartPath
	if startPath == "" {
		last, err := service.LastPath(ctx)
		if err != nil {
			logger.Warn("could not load last path", zap.Error(err))
		}
		startPath = last
	}
	logger.Info("starting",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("logged_in", sess.LoggedIn),
		zap.String("start_path", startPath))

	model := tui.NewModel(service, tui.Options{
		Session:   sess,
		BaseURL:   cfg.BaseURL,
		StartPath: startPath,
		Logger:    logger,
	})

	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, err := service.LoadUIPreferences(prefCtx)
	prefCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", err)
	} else {
		model.ApplyPreferences(tui.Preferences{
			Compact:     prefs.Compact,
			ShowNumbers: prefs.ShowNumbers,
		})
	}

	model.SetPreferencesSaver(func(p tui.Preferences) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveUIPreferences(saveCtx, app.UIPreferences{
			Compact:     p.Compact,
			ShowNumbers: p.ShowNumbers,
		})
	})
	model.SetLastPathSaver(func(path string) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveLastPath(saveCtx, path)
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}

// newLogger writes to the log file; the terminal belongs to the TUI.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{cfg.LogPath}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath}
	return zcfg.Build()
}
