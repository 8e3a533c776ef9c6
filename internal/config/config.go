// Package config loads the game settings from defaults, an optional YAML
// file, an optional .env file and SNAKE_* environment variables, in that
// order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/annelo/go-snake/internal/grid"
	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/session"
	"github.com/annelo/go-snake/internal/storage"
)

// Config is the full set of game settings.
type Config struct {
	Board       Board       `yaml:"board"`
	Snake       Snake       `yaml:"snake"`
	Game        Game        `yaml:"game"`
	Leaderboard Leaderboard `yaml:"leaderboard"`
	Log         Log         `yaml:"log"`
}

type Board struct {
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
	CellSize      int  `yaml:"cell_size"`
	WallCollision bool `yaml:"wall_collision"`
}

type Snake struct {
	StartX    int            `yaml:"start_x"`
	StartY    int            `yaml:"start_y"`
	Direction grid.Direction `yaml:"direction"`
}

type Game struct {
	Tick       time.Duration `yaml:"tick"`
	FoodPoints int           `yaml:"food_points"`
	// Seed fixes the food sequence; 0 picks one from the clock.
	Seed uint64 `yaml:"seed"`
}

type Leaderboard struct {
	Path          string `yaml:"path"`
	Size          int    `yaml:"size"`
	Delimiter     string `yaml:"delimiter"`
	MinNameLength int    `yaml:"min_name_length"`
	MaxNameLength int    `yaml:"max_name_length"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	// File receives the log output; empty discards it, since the terminal
	// belongs to the renderer.
	File string `yaml:"file"`
}

// Default returns the stock settings.
func Default() Config {
	return Config{
		Board: Board{Width: 75, Height: 50, CellSize: 10, WallCollision: true},
		Snake: Snake{StartX: 3, StartY: 1, Direction: grid.Right},
		Game:  Game{Tick: 75 * time.Millisecond, FoodPoints: 15},
		Leaderboard: Leaderboard{
			Path:          "highscores.dat",
			Size:          leaderboard.DefaultSize,
			Delimiter:     storage.DefaultDelimiter,
			MinNameLength: leaderboard.DefaultNameRules.MinLength,
			MaxNameLength: leaderboard.DefaultNameRules.MaxLength,
		},
		Log: Log{Level: "info"},
	}
}

// Load builds a Config. path names a YAML file and envFile a dotenv file;
// either may be empty. A missing envFile is not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	env := map[string]string{}
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: read %s: %w", envFile, err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	if err := cfg.applyEnv(env); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Board.CellSize <= 0:
		return fmt.Errorf("config: cell size %d must be positive", c.Board.CellSize)
	case c.Game.Tick <= 0:
		return fmt.Errorf("config: tick %s must be positive", c.Game.Tick)
	case c.Game.FoodPoints <= 0:
		return fmt.Errorf("config: food points %d must be positive", c.Game.FoodPoints)
	case c.Leaderboard.Size <= 0:
		return fmt.Errorf("config: leaderboard size %d must be positive", c.Leaderboard.Size)
	case c.Leaderboard.Delimiter == "" || strings.ContainsAny(c.Leaderboard.Delimiter, "\r\n"):
		return fmt.Errorf("config: leaderboard delimiter %q must be non-empty and single-line", c.Leaderboard.Delimiter)
	case strings.ContainsAny(c.Leaderboard.Delimiter, "0123456789-"):
		return fmt.Errorf("config: leaderboard delimiter %q clashes with scores", c.Leaderboard.Delimiter)
	case c.Leaderboard.MinNameLength < 1 || c.Leaderboard.MaxNameLength < c.Leaderboard.MinNameLength:
		return fmt.Errorf("config: name length bounds %d..%d are invalid",
			c.Leaderboard.MinNameLength, c.Leaderboard.MaxNameLength)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Session().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Session returns the session settings.
func (c Config) Session() session.Config {
	return session.Config{
		Size:             grid.Size{Width: c.Board.Width, Height: c.Board.Height},
		Start:            grid.Point{X: c.Snake.StartX, Y: c.Snake.StartY},
		InitialDirection: c.Snake.Direction,
		WallCollision:    c.Board.WallCollision,
		FoodPoints:       c.Game.FoodPoints,
		Tick:             c.Game.Tick,
	}
}

// NameRules returns the leaderboard name rules.
func (c Config) NameRules() leaderboard.NameRules {
	return leaderboard.NameRules{
		MinLength: c.Leaderboard.MinNameLength,
		MaxLength: c.Leaderboard.MaxNameLength,
		Delimiter: c.Leaderboard.Delimiter,
	}
}

// Seed returns the food seed, drawing one from the clock when unset.
func (c Config) Seed() uint64 {
	if c.Game.Seed != 0 {
		return c.Game.Seed
	}
	return uint64(time.Now().UnixNano())
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

var envKeys = []string{
	"SNAKE_BOARD_WIDTH",
	"SNAKE_BOARD_HEIGHT",
	"SNAKE_CELL_SIZE",
	"SNAKE_WALL_COLLISION",
	"SNAKE_START_X",
	"SNAKE_START_Y",
	"SNAKE_DIRECTION",
	"SNAKE_TICK",
	"SNAKE_FOOD_POINTS",
	"SNAKE_SEED",
	"SNAKE_HIGHSCORES_PATH",
	"SNAKE_HIGHSCORES_SIZE",
	"SNAKE_HIGHSCORES_DELIMITER",
	"SNAKE_LOG_LEVEL",
	"SNAKE_LOG_DEVELOPMENT",
	"SNAKE_LOG_FILE",
}

func (c *Config) applyEnv(env map[string]string) error {
	var err error
	set := func(key string, apply func(string) error) {
		v, ok := env[key]
		if !ok || err != nil {
			return
		}
		if e := apply(v); e != nil {
			err = fmt.Errorf("config: %s=%q: %w", key, v, e)
		}
	}
	setInt := func(key string, dst *int) {
		set(key, func(v string) (e error) { *dst, e = strconv.Atoi(v); return })
	}
	setBool := func(key string, dst *bool) {
		set(key, func(v string) (e error) { *dst, e = strconv.ParseBool(v); return })
	}
	setString := func(key string, dst *string) {
		set(key, func(v string) error { *dst = v; return nil })
	}

	setInt("SNAKE_BOARD_WIDTH", &c.Board.Width)
	setInt("SNAKE_BOARD_HEIGHT", &c.Board.Height)
	setInt("SNAKE_CELL_SIZE", &c.Board.CellSize)
	setBool("SNAKE_WALL_COLLISION", &c.Board.WallCollision)
	setInt("SNAKE_START_X", &c.Snake.StartX)
	setInt("SNAKE_START_Y", &c.Snake.StartY)
	set("SNAKE_DIRECTION", func(v string) error { return c.Snake.Direction.UnmarshalText([]byte(v)) })
	set("SNAKE_TICK", func(v string) (e error) { c.Game.Tick, e = time.ParseDuration(v); return })
	setInt("SNAKE_FOOD_POINTS", &c.Game.FoodPoints)
	set("SNAKE_SEED", func(v string) (e error) { c.Game.Seed, e = strconv.ParseUint(v, 10, 64); return })
	setString("SNAKE_HIGHSCORES_PATH", &c.Leaderboard.Path)
	setInt("SNAKE_HIGHSCORES_SIZE", &c.Leaderboard.Size)
	setString("SNAKE_HIGHSCORES_DELIMITER", &c.Leaderboard.Delimiter)
	setString("SNAKE_LOG_LEVEL", &c.Log.Level)
	setBool("SNAKE_LOG_DEVELOPMENT", &c.Log.Development)
	setString("SNAKE_LOG_FILE", &c.Log.File)
	return err
}
