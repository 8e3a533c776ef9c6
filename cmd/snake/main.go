package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	termbox "github.com/nsf/termbox-go"
	"golang.org/x/sync/errgroup"

	"github.com/annelo/go-snake/internal/config"
	"github.com/annelo/go-snake/internal/logging"
	"github.com/annelo/go-snake/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	envFile    = flag.String("env", ".env", "Path to a dotenv file with SNAKE_* settings")
	logFile    = flag.String("log", "", "Write logs to this file (overrides config)")
	seed       = flag.Uint64("seed", 0, "Food seed (0 = from config or clock)")
	noWalls    = flag.Bool("no-walls", false, "Wrap around the board edges instead of dying")
)

// errQuit ends the errgroup when the player quits.
var errQuit = errors.New("quit")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if *noWalls {
		cfg.Board.WallCollision = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	svc, err := service.New(cfg, nil, logger)
	if err != nil {
		log.Fatalf("service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc.Start(ctx)
	defer svc.Stop()

	if err := termbox.Init(); err != nil {
		log.Fatalf("termbox init error: %v", err)
	}

	ui := newUI(svc, cfg)
	g, gctx := errgroup.WithContext(ctx)
	keys := make(chan termbox.Event)

	g.Go(func() error { return pollEvents(gctx, keys) })
	g.Go(func() error {
		err := ui.run(gctx, keys, cfg.Game.Tick)
		termbox.Interrupt()
		return err
	})

	err = g.Wait()
	termbox.Close()

	if err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		logger.Errorw("snake: exited with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Infow("snake: bye", "score", svc.Score(), "state", svc.State())
}

// pollEvents pumps terminal events until ctx ends. termbox.Interrupt wakes
// the blocking poll.
func pollEvents(ctx context.Context, out chan<- termbox.Event) error {
	for {
		ev := termbox.PollEvent()
		if ctx.Err() != nil {
			return nil
		}
		switch ev.Type {
		case termbox.EventInterrupt:
			continue
		case termbox.EventError:
			return fmt.Errorf("termbox: %w", ev.Err)
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}
