package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/wayfinder/internal/config"
	"github.com/udisondev/wayfinder/internal/indicator"
	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/overlay"
	"github.com/udisondev/wayfinder/internal/world"
)

const DefaultConfigPath = "config/navd.yaml"

func main() {
	configPath := flag.String("config", DefaultConfigPath, "path to navd config")
	importDir := flag.String("import", "", "save every location file in this directory to the database and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, config.ResolvePath(*configPath), *importDir); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, importDir string) error {
	cfg, err := config.LoadNavigator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("navd starting", "config", cfgPath, "log_level", cfg.LogLevel, "world_source", cfg.WorldSource)

	if importDir != "" {
		return importLocations(ctx, cfg, importDir)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	locs, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}
	w := world.New()
	w.Replace(locs)
	slog.Info("world loaded", "locations", w.Len())

	graph, err := nav.NewWorldGraph(w, w, nav.Options{
		CheckContracts:  cfg.CheckContracts,
		PrewarmWorkers:  cfg.PrewarmWorkers,
		ResolveInterval: cfg.ResolveIntervalTicks,
		Ignore:          cfg.IgnoredLocations,
	})
	if err != nil {
		return fmt.Errorf("creating world graph: %w", err)
	}
	if err := graph.Rebuild(ctx); err != nil {
		return fmt.Errorf("building world graph: %w", err)
	}

	svc := indicator.NewService(graph, w.Subscribe(), indicator.Config{
		Interval: cfg.RefreshInterval,
		Limit:    cfg.QueryLimit,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", overlay.NewHandler(svc, nil))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting indicator service", "interval", cfg.RefreshInterval)
		if err := svc.Run(gctx); err != nil {
			return fmt.Errorf("indicator service: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting overlay server", "address", cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("overlay server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return reloadOnHangup(gctx, store, w, svc)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// reloadOnHangup reloads every location from the store on SIGHUP.
func reloadOnHangup(ctx context.Context, store locationStore, w *world.World, svc *indicator.Service) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := reload(ctx, store, w, svc); err != nil {
				// keep serving the previous world
				slog.Error("reload failed", "error", err)
			}
		}
	}
}

func reload(ctx context.Context, store locationStore, w *world.World, svc *indicator.Service) error {
	locs, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}
	w.Replace(locs)
	if err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding world graph: %w", err)
	}
	slog.Info("world reloaded", "locations", w.Len())
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
