package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"

	"github.com/annelo/go-snake/internal/config"
	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/logging"
	"github.com/annelo/go-snake/internal/storage"
)

var (
	configPath = flag.String("config", "", "Path to a YAML config file")
	envFile    = flag.String("env", ".env", "Path to a dotenv file with SNAKE_* settings")
	format     = flag.String("format", "text", "Output format: text or yaml")
	file       = flag.String("file", "", "Leaderboard file (overrides config)")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *file != "" {
		cfg.Leaderboard.Path = *file
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "stderr"
		cfg.Log.Level = "warn"
	}
	logger, _, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	board := leaderboard.NewManager(
		leaderboard.NewBoard(cfg.Leaderboard.Size, cfg.NameRules()),
		storage.NewFileStore(cfg.Leaderboard.Path, cfg.Leaderboard.Delimiter),
		logger,
	)

	if err := run(context.Background(), os.Stdout, board, cfg, *format, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

var errUsage = errors.New("usage")

// run executes one subcommand against board.
func run(ctx context.Context, w io.Writer, board *leaderboard.Manager, cfg config.Config, format string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	if args[0] == "config" {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	// a missing file is an empty table for every command
	if err := board.Load(ctx); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	switch args[0] {
	case "show":
		return render(w, format, board.Entries())

	case "rank":
		if len(args) != 2 {
			return errUsage
		}
		score, err := parseScore(args[1])
		if err != nil {
			return err
		}
		rank, ok := board.Rank(score)
		if !ok {
			fmt.Fprintf(w, "Score %d does not reach the top %d\n", score, board.Size())
			return nil
		}
		fmt.Fprintf(w, "Score %d would rank #%d\n", score, rank)
		return nil

	case "submit":
		if len(args) != 3 {
			return errUsage
		}
		score, err := parseScore(args[2])
		if err != nil {
			return err
		}
		rank, err := board.SubmitScore(ctx, args[1], score)
		if errors.Is(err, leaderboard.ErrNotRanked) {
			fmt.Fprintf(w, "Score %d does not reach the top %d\n", score, board.Size())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Added %s with %d at rank #%d\n", args[1], score, rank)
		return nil

	case "reset":
		if err := board.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "Leaderboard cleared")
		return nil
	}
	return errUsage
}

func parseScore(s string) (int, error) {
	score, err := strconv.Atoi(s)
	if err != nil || score < 0 {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return score, nil
}

func render(w io.Writer, format string, entries []storage.Entry) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	case "text":
		fmt.Fprintf(w, "--- Top %d ---\n", len(entries))
		for i, e := range entries {
			name := e.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%d. %s: %d\n", i+1, name, e.Score)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: highscores [flags] <command>")
	fmt.Fprintln(out, "  show                 - Show the leaderboard")
	fmt.Fprintln(out, "  rank <score>         - Show the rank a score would take")
	fmt.Fprintln(out, "  submit <name> <score> - Insert a score if it qualifies")
	fmt.Fprintln(out, "  reset                - Clear every entry")
	fmt.Fprintln(out, "  config               - Print the effective configuration")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}
