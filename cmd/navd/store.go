package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/wayfinder/internal/config"
	"github.com/udisondev/wayfinder/internal/db"
	"github.com/udisondev/wayfinder/internal/world"
)

// locationStore is where the daemon reads its world from.
type locationStore interface {
	LoadAll(ctx context.Context) ([]*world.Location, error)
}

// dirStore reads YAML location files.
type dirStore struct {
	dir string
}

func (s dirStore) LoadAll(context.Context) ([]*world.Location, error) {
	return world.LoadDir(s.dir)
}

// openStore returns the configured store and a close func.
func openStore(ctx context.Context, cfg config.Navigator) (locationStore, func(), error) {
	switch cfg.WorldSource {
	case config.SourceFiles:
		return dirStore{dir: cfg.WorldDir}, func() {}, nil
	case config.SourceDatabase:
		database, err := connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return database.Locations(), database.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown world source %q", cfg.WorldSource)
}

func connect(ctx context.Context, cfg config.Navigator) (*db.DB, error) {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")
	return database, nil
}

// locationSaver persists locations.
type locationSaver interface {
	Save(ctx context.Context, l *world.Location) error
}

func importLocations(ctx context.Context, cfg config.Navigator, dir string) error {
	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := saveAll(ctx, dirStore{dir: dir}, database.Locations())
	if err != nil {
		return err
	}
	slog.Info("locations imported", "dir", dir, "count", n)
	return nil
}

func saveAll(ctx context.Context, from locationStore, to locationSaver) (int, error) {
	locs, err := from.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading locations: %w", err)
	}
	for _, l := range locs {
		if err := to.Save(ctx, l); err != nil {
			return 0, fmt.Errorf("saving location %s: %w", l.Name(), err)
		}
	}
	return len(locs), nil
}
