package leaderboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/storage"
)

func board(scores ...int) *leaderboard.Board {
	b := leaderboard.NewBoard(len(scores), leaderboard.DefaultNameRules)
	entries := make([]storage.Entry, len(scores))
	for i, s := range scores {
		entries[i] = storage.Entry{Name: string(rune('a' + i)), Score: s}
	}
	b.Replace(entries)
	return b
}

func scores(b *leaderboard.Board) []int {
	var out []int
	for _, e := range b.Entries() {
		out = append(out, e.Score)
	}
	return out
}

func TestBoard_InsertInTheMiddle(t *testing.T) {
	b := board(100, 80, 60, 40, 20)

	rank, ok := b.Rank(70)
	require.True(t, ok)
	assert.Equal(t, 3, rank)

	require.NoError(t, b.UpdateAtRank(rank, "new", 70))
	assert.Equal(t, []int{100, 80, 70, 60, 40}, scores(b))
	assert.Equal(t, "new", b.Entries()[2].Name)
	assert.Equal(t, "c", b.Entries()[3].Name, "old third place moves down")
}

func TestBoard_RankBoundaries(t *testing.T) {
	b := board(100, 80, 60, 40, 20)

	for score := 0; score <= 120; score++ {
		rank, ok := b.Rank(score)
		assert.Equal(t, score >= 20, ok, "score %d", score)
		if score >= 100 {
			assert.Equal(t, 1, rank)
		}
	}
}

func TestBoard_TieGoesToNewcomer(t *testing.T) {
	b := board(100, 80, 60, 40, 20)

	rank, ok := b.Rank(80)
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	rank, ok = b.Rank(20)
	require.True(t, ok)
	assert.Equal(t, 5, rank)
}

func TestBoard_UpdateKeepsOrderAndSize(t *testing.T) {
	b := board(100, 80, 60, 40, 20)
	for _, s := range []int{5, 90, 100, 61, 20, 1000, 0, 75} {
		if rank, ok := b.Rank(s); ok {
			require.NoError(t, b.UpdateAtRank(rank, "p", s))
		}
		got := scores(b)
		require.Len(t, got, 5)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1], got[i])
		}
	}
	assert.Equal(t, []int{1000, 100, 100, 90, 80}, scores(b))
}

func TestBoard_IllegalRank(t *testing.T) {
	b := board(3, 2, 1)
	for _, rank := range []int{-1, 0, 4} {
		err := b.UpdateAtRank(rank, "x", 1)
		assert.ErrorIs(t, err, leaderboard.ErrIllegalRank)
	}
	assert.Equal(t, []int{3, 2, 1}, scores(b))

	assert.NoError(t, b.UpdateAtRank(3, "x", 1))
}

func TestBoard_EmptyTableRanksAnything(t *testing.T) {
	b := leaderboard.NewBoard(0, leaderboard.DefaultNameRules)
	assert.Equal(t, leaderboard.DefaultSize, b.Size())

	rank, ok := b.Rank(15)
	assert.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestBoard_ReplacePadsAndTruncates(t *testing.T) {
	b := leaderboard.NewBoard(3, leaderboard.DefaultNameRules)
	b.Replace([]storage.Entry{{Name: "a", Score: 1}})
	assert.Equal(t, []storage.Entry{{Name: "a", Score: 1}, {}, {}}, b.Entries())

	b.Replace([]storage.Entry{{Score: 4}, {Score: 3}, {Score: 2}, {Score: 1}})
	assert.Equal(t, []int{4, 3, 2}, scores(b))

	b.Clear()
	assert.Equal(t, []int{0, 0, 0}, scores(b))
}

func TestNameRules_Validate(t *testing.T) {
	rules := leaderboard.DefaultNameRules

	for _, ok := range []string{"a", "Player One", "ünïcødé", strings.Repeat("é", 16)} {
		assert.NoError(t, rules.Validate(ok), ok)
	}

	for _, bad := range []string{"", strings.Repeat("x", 17), "a|b", "line\nbreak"} {
		err := rules.Validate(bad)
		var verr *leaderboard.ValidationError
		if assert.ErrorAs(t, err, &verr, "%q", bad) {
			assert.Equal(t, bad, verr.Name)
		}
	}

	strict := leaderboard.NameRules{MinLength: 3, MaxLength: 4, Delimiter: ";"}
	assert.Error(t, strict.Validate("ab"))
	assert.NoError(t, strict.Validate("a|b"))
	assert.Error(t, strict.Validate("a;b"))
}
