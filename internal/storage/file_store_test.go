package storage_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/go-snake/internal/storage"
)

func TestFileStore_SaveWritesExactFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "highscores.dat")
	st := storage.NewFileStore(path, "")

	err := st.Save(context.Background(), []storage.Entry{
		{Name: "ann", Score: 100},
		{Name: "bob", Score: 80},
		{},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ann|100\nbob|80\n|0", string(raw))
}

func TestFileStore_RoundTrip(t *testing.T) {
	st := storage.NewFileStore(filepath.Join(t.TempDir(), "hs.dat"), ";")
	in := []storage.Entry{
		{Name: "Zoë", Score: 300},
		{Name: "with space", Score: 150},
		{Name: "", Score: 0},
		{Name: "x|y", Score: 5},
	}
	require.NoError(t, st.Save(context.Background(), in))

	out, err := st.Load(context.Background(), len(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFileStore_ShortFileKeepsEmptySlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs.dat")
	require.NoError(t, os.WriteFile(path, []byte("ann|100\r\nbob|80\n"), 0644))

	out, err := storage.NewFileStore(path, "|").Load(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []storage.Entry{{Name: "ann", Score: 100}, {Name: "bob", Score: 80}, {}, {}, {}}, out)
}

func TestFileStore_ExtraLinesIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs.dat")
	require.NoError(t, os.WriteFile(path, []byte("a|3\nb|2\nnot a line"), 0644))

	out, err := storage.NewFileStore(path, "|").Load(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []storage.Entry{{Name: "a", Score: 3}, {Name: "b", Score: 2}}, out)
}

func TestFileStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.dat")
	_, err := storage.NewFileStore(path, "|").Load(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
	assert.Equal(t, path, perr.Path)
}

func TestFileStore_MalformedLines(t *testing.T) {
	cases := map[string]string{
		"no delimiter":   "ann 100",
		"bad score":      "ann|lots",
		"negative score": "ann|-5",
		"blank line":     "ann|1\n\nbob|2",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hs.dat")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := storage.NewFileStore(path, "|").Load(context.Background(), 5)
			assert.ErrorIs(t, err, storage.ErrMalformed)

			var perr *storage.PersistenceError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestFileStore_SaveIntoUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	// a regular file where a directory is expected
	err := storage.NewFileStore(filepath.Join(blocker, "hs.dat"), "|").
		Save(context.Background(), []storage.Entry{{Name: "a", Score: 1}})

	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := storage.NewFileStore(filepath.Join(t.TempDir(), "hs.dat"), "|")
	assert.ErrorIs(t, st.Save(ctx, nil), context.Canceled)
	_, err := st.Load(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_LineNumberInError(t *testing.T) {
	_, err := storage.Decode(strings.NewReader("a|1\nb|x"), 5, "|")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestMemoryStore(t *testing.T) {
	st := storage.NewMemoryStore(storage.Entry{Name: "a", Score: 9})

	out, err := st.Load(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []storage.Entry{{Name: "a", Score: 9}, {}, {}}, out)

	require.NoError(t, st.Save(context.Background(), []storage.Entry{{Name: "b", Score: 1}}))
	assert.Equal(t, []storage.Entry{{Name: "b", Score: 1}}, st.Entries())
	assert.Equal(t, 1, st.Saves())

	boom := errors.New("disk on fire")
	st.SaveErr = boom
	err = st.Save(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []storage.Entry{{Name: "b", Score: 1}}, st.Entries())
}
