package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annelo/go-snake/internal/config"
	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/storage"
)

func setup(t *testing.T) (config.Config, func() *leaderboard.Manager) {
	t.Helper()
	cfg := config.Default()
	cfg.Leaderboard.Path = filepath.Join(t.TempDir(), "highscores.dat")
	return cfg, func() *leaderboard.Manager {
		return leaderboard.NewManager(
			leaderboard.NewBoard(cfg.Leaderboard.Size, cfg.NameRules()),
			storage.NewFileStore(cfg.Leaderboard.Path, cfg.Leaderboard.Delimiter),
			zaptest.NewLogger(t).Sugar(),
		)
	}
}

func exec(t *testing.T, cfg config.Config, board *leaderboard.Manager, format string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), &out, board, cfg, format, args)
	return out.String(), err
}

func TestRun_SubmitThenShow(t *testing.T) {
	cfg, newBoard := setup(t)

	out, err := exec(t, cfg, newBoard(), "text", "submit", "ann", "100")
	require.NoError(t, err)
	assert.Equal(t, "Added ann with 100 at rank #1\n", out)

	_, err = exec(t, cfg, newBoard(), "text", "submit", "bob", "80")
	require.NoError(t, err)

	out, err = exec(t, cfg, newBoard(), "text", "show")
	require.NoError(t, err)
	assert.Equal(t, "--- Top 5 ---\n1. ann: 100\n2. bob: 80\n3. -: 0\n4. -: 0\n5. -: 0\n", out)

	out, err = exec(t, cfg, newBoard(), "yaml", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "name: ann")
	assert.Contains(t, out, "score: 100")
}

func TestRun_Rank(t *testing.T) {
	cfg, newBoard := setup(t)
	for _, s := range []string{"100", "80", "60", "40", "20"} {
		_, err := exec(t, cfg, newBoard(), "text", "submit", "p"+s, s)
		require.NoError(t, err)
	}

	out, err := exec(t, cfg, newBoard(), "text", "rank", "70")
	require.NoError(t, err)
	assert.Equal(t, "Score 70 would rank #3\n", out)

	out, err = exec(t, cfg, newBoard(), "text", "rank", "10")
	require.NoError(t, err)
	assert.Equal(t, "Score 10 does not reach the top 5\n", out)

	out, err = exec(t, cfg, newBoard(), "text", "submit", "low", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "does not reach")
}

func TestRun_Reset(t *testing.T) {
	cfg, newBoard := setup(t)
	_, err := exec(t, cfg, newBoard(), "text", "submit", "ann", "5")
	require.NoError(t, err)

	_, err = exec(t, cfg, newBoard(), "text", "reset")
	require.NoError(t, err)

	board := newBoard()
	require.NoError(t, board.Load(context.Background()))
	assert.Equal(t, make([]storage.Entry, 5), board.Entries())
}

func TestRun_Errors(t *testing.T) {
	cfg, newBoard := setup(t)

	_, err := exec(t, cfg, newBoard(), "text")
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, cfg, newBoard(), "text", "rank")
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, cfg, newBoard(), "text", "rank", "-3")
	assert.Error(t, err)

	_, err = exec(t, cfg, newBoard(), "text", "submit", "a|b", "3")
	var verr *leaderboard.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = exec(t, cfg, newBoard(), "xml", "show")
	assert.Error(t, err)
}

func TestRun_Config(t *testing.T) {
	cfg, newBoard := setup(t)
	out, err := exec(t, cfg, newBoard(), "text", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "food_points: 15")
	assert.Contains(t, out, cfg.Leaderboard.Path)
}
