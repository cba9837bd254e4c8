// Package app wires configuration, the document store and the cleanup
// services together for the commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tianer2820/namecleanup/internal/adapter/scenefile"
	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/adapter/storage/memory"
	"github.com/tianer2820/namecleanup/internal/adapter/storage/sqlite"
	"github.com/tianer2820/namecleanup/internal/config"
	"github.com/tianer2820/namecleanup/internal/logging"
	"github.com/tianer2820/namecleanup/internal/usecase/audit"
	"github.com/tianer2820/namecleanup/internal/usecase/cleanup"
	"github.com/tianer2820/namecleanup/internal/usecase/command"
)

type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    storage.Editor
	Cleanup  *cleanup.Service
	Commands *command.Registry
	Audit    *audit.Service

	close func() error
}

// Open builds an App from cfg, logging to logOut. When cfg.Scene is set the
// scene file is loaded into the store.
func Open(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	log, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, close: func() error { return nil }}
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Store.Path, err)
		}
		a.Store = st
		a.close = st.Close
	default:
		a.Store = memory.New()
	}
	log.Debug("store opened", "driver", cfg.Store.Driver, "path", cfg.Store.Path)

	a.Cleanup = cleanup.New(a.Store, log, cleanup.Config{LegacyReports: cfg.LegacyReports})
	a.Commands = command.New(a.Cleanup, a.Store)
	a.Audit = audit.New(a.Store)

	if cfg.Scene != "" {
		if err := a.LoadScene(ctx, cfg.Scene); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return a, nil
}

// LoadScene adds the objects described by the YAML file at path.
func (a *App) LoadScene(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc, err := scenefile.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := scenefile.Apply(ctx, a.Store, sc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	a.Log.Info("scene loaded", "path", path, "objects", len(sc.Objects))
	return nil
}

func (a *App) Close() error { return a.close() }
