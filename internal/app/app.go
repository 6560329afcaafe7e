// Package app wires configuration, storage, the editor and its background
// jobs together.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"canvasdoc/internal/config"
	"canvasdoc/internal/scene"
	"canvasdoc/internal/secret"
	"canvasdoc/internal/service"
	"canvasdoc/internal/storage"
)

// App owns the editor and everything it depends on.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	stores *storage.Stores
	canvas *scene.Canvas
	editor *service.Editor

	guard    *service.JobGuard
	cron     *cron.Cron
	readOnly bool
}

// Options adjusts New. Secrets defaults to secret.Default().
type Options struct {
	Secrets secret.Store
	Emitter service.EventEmitter
	// ReadOnly skips the final save on Shutdown.
	ReadOnly bool
}

// New opens the configured store and starts an editor on the saved project.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	secrets := opts.Secrets
	if secrets == nil {
		secrets = secret.Default()
	}

	password, err := secret.ResolvePassword(secrets, cfg.Store.Password, cfg.Store.PasswordKeychainKey)
	if err != nil {
		return nil, err
	}
	stores, err := storage.OpenProjectStore(ctx, storage.Options{
		Backend:  cfg.Store.Driver,
		DSN:      cfg.Store.DSN,
		Addr:     cfg.Store.Addr,
		Password: password,
		RedisDB:  cfg.Store.DB,
		Database: cfg.Store.Database,
		DataDir:  cfg.DataDir,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		stores:   stores,
		canvas:   scene.New(cfg.Page.Width, cfg.Page.Height),
		guard:    &service.JobGuard{},
		readOnly: opts.ReadOnly,
	}
	deps := service.EditorDeps{
		Scene:      a.canvas,
		Store:      stores.Projects,
		Emitter:    opts.Emitter,
		Logger:     logger,
		ProjectKey: cfg.ProjectKey,
	}
	if cfg.History {
		deps.History = stores.History
	}
	a.editor = service.NewEditor(deps)

	a.canvas.MarkReady()
	if err := a.editor.Start(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("start editor: %w", err), stores.Projects.Close())
	}
	logger.Info("editor ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("project", cfg.ProjectKey),
		zap.Int("pages", a.editor.PageInfo().Count),
	)
	return a, nil
}

func (a *App) Editor() *service.Editor {
	return a.editor
}

func (a *App) Config() config.Config {
	return a.cfg
}

// StartBackground schedules autosave and, for the file backend, reloads the
// project when another process rewrites it.
func (a *App) StartBackground(ctx context.Context) error {
	if a.cfg.Autosave != "" {
		saver := &service.Autosaver{Editor: a.editor, Guard: a.guard, Logger: a.logger}
		c := cron.New()
		if _, err := c.AddFunc(a.cfg.Autosave, func() { saver.Run(ctx) }); err != nil {
			return fmt.Errorf("autosave schedule %q: %w", a.cfg.Autosave, err)
		}
		c.Start()
		a.cron = c
		a.logger.Debug("autosave scheduled", zap.String("schedule", a.cfg.Autosave))
	}

	if a.cfg.WatchExternal {
		if a.stores.Files == nil {
			a.logger.Warn("watch_external needs the file store, ignoring", zap.String("store", a.cfg.Store.Driver))
			return nil
		}
		err := a.stores.Files.Watch(ctx, func(key, content string) {
			if key != a.cfg.ProjectKey {
				return
			}
			a.editor.ApplyExternal(ctx, content)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops background jobs, saves the project and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	a.guard.WaitAll(ctx)

	if !a.readOnly {
		if saveErr := a.editor.SaveProject(ctx); saveErr != nil && !errors.Is(saveErr, context.Canceled) {
			err = multierr.Append(err, fmt.Errorf("final save: %w", saveErr))
		}
	}
	a.editor.Close()
	err = multierr.Append(err, a.stores.Projects.Close())
	return err
}
