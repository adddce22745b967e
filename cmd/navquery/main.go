package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/udisondev/wayfinder/internal/config"
	"github.com/udisondev/wayfinder/internal/db"
	"github.com/udisondev/wayfinder/internal/indicator"
	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/world"
)

var errUsage = errors.New("usage: navquery [-config path] [-world dir] [-limit n] [-path] Room:x,y Room:x,y")

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("navquery", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "config/navd.yaml", "path to navd config")
	worldDir := fs.String("world", "", "location directory, overrides the config")
	limit := fs.Float64("limit", 0, "distance bound, 0 for none")
	showPath := fs.Bool("path", false, "print the walk to the next hop")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	from, err := parseTarget(fs.Arg(0))
	if err != nil {
		return err
	}
	to, err := parseTarget(fs.Arg(1))
	if err != nil {
		return err
	}

	cfg, err := config.LoadNavigator(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *worldDir != "" {
		cfg.WorldSource = config.SourceFiles
		cfg.WorldDir = *worldDir
	}

	locs, err := loadLocations(ctx, cfg)
	if err != nil {
		return err
	}
	w := world.New()
	w.Replace(locs)

	graph, err := nav.NewWorldGraph(w, w, nav.Options{Ignore: cfg.IgnoredLocations})
	if err != nil {
		return fmt.Errorf("creating world graph: %w", err)
	}
	if err := graph.Rebuild(ctx); err != nil {
		return fmt.Errorf("building world graph: %w", err)
	}

	start, err := graph.Point(from.Location, from.X, from.Y)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := graph.Point(to.Location, to.X, to.Y)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}

	bound := nav.Unreachable
	if *limit > 0 {
		bound = *limit
	}
	hop, ok := graph.TryFindNextHop(start, end, bound)
	if !ok {
		fmt.Fprintf(out, "no route from %s to %s\n", start, end)
		return nil
	}

	fmt.Fprintf(out, "next hop: %s\n", hop.Point)
	if hop.Portal != nil {
		fmt.Fprintf(out, "portal:   %s\n", hop.Portal)
	}
	fmt.Fprintf(out, "distance: %.3f\n", hop.Distance)
	walkFrom := graph.Snap(start)
	fmt.Fprintf(out, "arrow:    %s\n", nav.DirectionTo(walkFrom.X, walkFrom.Y, hop.Point.X, hop.Point.Y))

	if *showPath {
		room, _ := graph.Location(start.Loc)
		tree := room.InteriorTree(hop.Point)
		var steps []string
		for p := range tree.WalkToRoot(walkFrom) {
			steps = append(steps, fmt.Sprintf("(%d,%d)", p.X, p.Y))
		}
		fmt.Fprintf(out, "path:     %s\n", strings.Join(steps, " "))
	}
	return nil
}

func loadLocations(ctx context.Context, cfg config.Navigator) ([]*world.Location, error) {
	if cfg.WorldSource != config.SourceDatabase {
		return world.LoadDir(cfg.WorldDir)
	}
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	defer database.Close()
	return database.Locations().LoadAll(ctx)
}

// parseTarget reads "Room:x,y".
func parseTarget(s string) (indicator.Target, error) {
	name, coords, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return indicator.Target{}, fmt.Errorf("point %q: want Room:x,y", s)
	}
	xs, ys, ok := strings.Cut(coords, ",")
	if !ok {
		return indicator.Target{}, fmt.Errorf("point %q: want Room:x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return indicator.Target{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return indicator.Target{}, fmt.Errorf("point %q: %w", s, err)
	}
	return indicator.Target{Location: name, X: x, Y: y}, nil
}
