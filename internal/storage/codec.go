package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultDelimiter separates name and score on a line.
const DefaultDelimiter = "|"

// ErrMalformed marks a line that is not name<delim>score.
var ErrMalformed = errors.New("malformed leaderboard line")

// Encode renders entries one per line as name<delim>score, without a
// trailing newline.
func Encode(entries []Entry, delim string) []byte {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Name)
		b.WriteString(delim)
		b.WriteString(strconv.Itoa(e.Score))
	}
	return []byte(b.String())
}

// Decode reads at most n lines from r. The result always has n entries;
// missing lines stay zero. Lines past n are ignored. Any malformed line fails
// the whole decode.
func Decode(r io.Reader, n int, delim string) ([]Entry, error) {
	entries := make([]Entry, n)

	sc := bufio.NewScanner(r)
	for i := 0; i < n && sc.Scan(); i++ {
		e, err := decodeLine(strings.TrimSuffix(sc.Text(), "\r"), delim)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries[i] = e
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeLine(line, delim string) (Entry, error) {
	name, score, ok := strings.Cut(line, delim)
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing %q in %q", ErrMalformed, delim, line)
	}
	v, err := strconv.Atoi(score)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: score %q: %v", ErrMalformed, score, err)
	}
	if v < 0 {
		return Entry{}, fmt.Errorf("%w: negative score %d", ErrMalformed, v)
	}
	return Entry{Name: name, Score: v}, nil
}
