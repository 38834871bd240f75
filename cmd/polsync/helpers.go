package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/policy-sync/internal/cli"
	"github.com/Veraticus/policy-sync/internal/config"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/storage"
	"github.com/spf13/viper"
)

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return settings, nil
}

// openStore opens the configured database and brings its schema up to date.
func openStore(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// engineOptions maps settings to engine options. progress may be nil.
func engineOptions(settings *config.Settings, progress *cli.Progress) reconcile.Options {
	opts := reconcile.Options{
		Logger:           slog.Default(),
		Retry:            service.RetryOptions{MaxAttempts: settings.Import.RetryAttempts},
		DiagnosticsLimit: settings.Import.DiagnosticsLimit,
		DryRun:           settings.Import.DryRun,
		OnSuccess: func() {
			slog.Debug("Import wrote rows, cached views are stale")
		},
	}
	if progress != nil {
		opts.Progress = progress.Tick
	}
	return opts
}

func importContext(ctx context.Context, settings *config.Settings) (reconcile.ImportContext, error) {
	return reconcile.NewImportContext(ctx, service.StaticSession(settings.Import.OperatorID), settings.Import.ClientScope)
}
