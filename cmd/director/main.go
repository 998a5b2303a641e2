package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tankrun/internal/config"
	"github.com/udisondev/tankrun/internal/director"
	"github.com/udisondev/tankrun/internal/journal"
	"github.com/udisondev/tankrun/internal/observer"
	"github.com/udisondev/tankrun/internal/scenario"
	"github.com/udisondev/tankrun/internal/spawn"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("director", flag.ContinueOnError)
	cfgPath := fs.String("config", config.Path(), "path to the director config")
	scenarioPath := fs.String("scenario", "", "scenario file to replay (overrides config)")
	replay := fs.Bool("replay", false, "run ticks back to back instead of in real time")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadDirector(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	if *scenarioPath != "" {
		cfg.Scenario = *scenarioPath
	}
	if cfg.Scenario == "" {
		return fmt.Errorf("no scenario: set scenario in %s or pass -scenario", *cfgPath)
	}

	sc, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}

	tick := cfg.TickInterval
	if sc.Tick() != tick {
		slog.Warn("scenario tick overrides config", "config", tick, "scenario", sc.Tick())
		tick = sc.Tick()
	}

	params, err := director.NewParams(tick, cfg.MotionWindow, cfg.BehaviorWindow)
	if err != nil {
		return fmt.Errorf("director params: %w", err)
	}
	params.GoalFrequency = cfg.Goal()
	params.StressThreshold = float64(cfg.StressThreshold)
	params.SpreadRadius = cfg.SpreadRadius
	params.AntagonistLimit = cfg.AntagonistLimit
	params.Tuning.SafeDistance = cfg.SafeDistance

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	jrun := journal.NewRun(cfg.Scenario, seed)
	slog.Info("director starting",
		"run", jrun.ID,
		"scenario", sc.Name,
		"seed", seed,
		"tick", tick,
		"goal", params.GoalFrequency,
		"stress_threshold", params.StressThreshold,
		"journal", cfg.Journal.Driver)

	var sinks []director.Sink
	sink, closer, err := openJournal(ctx, cfg.Journal, jrun)
	if err != nil {
		return err
	}
	if sink != nil {
		defer closer.Close()
		sinks = append(sinks, sink)
	}

	var hub *observer.Hub
	if cfg.Observer.Listen != "" {
		hub = observer.NewHub()
		sinks = append(sinks, hub)
	}

	host := scenario.NewHost(sc)
	queue := spawn.NewQueue(params.GoalFrequency, params.AntagonistLimit, 0)
	dispatcher := spawn.NewDispatcher(queue, host, rng)
	runner := director.NewRunner(director.NewEngine(params, rng), host, dispatcher, jrun.ID, sinks...)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// observer stops with the run
		defer stop()
		if *replay {
			return runner.Replay(gctx)
		}
		return runner.Start(gctx)
	})
	if hub != nil {
		g.Go(func() error {
			return hub.Serve(gctx, cfg.Observer.Listen)
		})
	}

	err = g.Wait()
	slog.Info("director stopped",
		"run", jrun.ID,
		"ticks", runner.Ticks(),
		"spawned", len(host.Spawned()))
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func openJournal(ctx context.Context, cfg config.Journal, run journal.Run) (director.Sink, io.Closer, error) {
	switch cfg.Driver {
	case config.JournalFile:
		w := journal.NewFileWriter(cfg.Dir, "reports")
		return w, w, nil
	case config.JournalSQLite:
		s, err := journal.OpenSQLite(ctx, cfg.SQLitePath, run)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite journal: %w", err)
		}
		return s, s, nil
	case config.JournalPostgres:
		s, err := journal.OpenPostgres(ctx, cfg.Database.DSN(), run)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres journal: %w", err)
		}
		slog.Info("journal database connected")
		return s, s, nil
	default:
		return nil, nil, nil
	}
}
