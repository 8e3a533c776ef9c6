package main

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	termbox "github.com/nsf/termbox-go"

	"github.com/annelo/go-snake/internal/config"
	"github.com/annelo/go-snake/internal/events"
	"github.com/annelo/go-snake/internal/grid"
	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/service"
	"github.com/annelo/go-snake/internal/session"
)

const (
	// board origin on screen, leaving room for the frame
	originX = 1
	originY = 1
)

type ui struct {
	svc *service.GameService
	cfg config.Config

	showScores bool
	prompt     *service.Qualification
	name       []rune
	message    string
}

func newUI(svc *service.GameService, cfg config.Config) *ui {
	return &ui{svc: svc, cfg: cfg}
}

// run owns the screen: it reacts to keys, game events and high-score offers,
// and redraws at least once per game tick.
func (u *ui) run(ctx context.Context, keys <-chan termbox.Event, tick time.Duration) error {
	redraw := time.NewTicker(tick)
	defer redraw.Stop()

	gameEvents := u.svc.Events(16)
	u.draw()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-keys:
			if ev.Type == termbox.EventKey {
				if err := u.handleKey(ctx, ev); err != nil {
					return err
				}
			}
		case k := <-gameEvents:
			if k == events.Started {
				u.message = ""
			}
		case q := <-u.svc.Qualifications():
			u.prompt = &q
			u.name = u.name[:0]
			u.message = ""
		case <-redraw.C:
		}
		u.draw()
	}
}

func (u *ui) handleKey(ctx context.Context, ev termbox.Event) error {
	if u.prompt != nil {
		u.handleNameKey(ctx, ev)
		return nil
	}

	if d, ok := keyDirection(ev); ok {
		u.svc.SetDirection(d)
		return nil
	}

	switch {
	case ev.Key == termbox.KeyEsc, ev.Key == termbox.KeyCtrlC, ev.Ch == 'q', ev.Ch == 'Q':
		return errQuit
	case ev.Key == termbox.KeySpace:
		if err := u.svc.StartGame(); err != nil && !errors.Is(err, session.ErrAlreadyRunning) {
			u.message = err.Error()
		}
	case ev.Ch == 'p', ev.Ch == 'P':
		u.svc.TogglePause()
	case ev.Ch == 'n', ev.Ch == 'N':
		if err := u.svc.StartNewGame(true); err != nil {
			u.message = err.Error()
		}
	case ev.Ch == 'h', ev.Ch == 'H':
		u.showScores = !u.showScores
	}
	return nil
}

func (u *ui) handleNameKey(ctx context.Context, ev termbox.Event) {
	switch ev.Key {
	case termbox.KeyEsc:
		u.svc.DeclineHighScore()
		u.prompt = nil
	case termbox.KeyEnter:
		rank, err := u.svc.SubmitHighScore(ctx, string(u.name))
		var verr *leaderboard.ValidationError
		switch {
		case errors.As(err, &verr):
			u.message = verr.Reason
			return
		case err != nil:
			u.message = fmt.Sprintf("score kept but not saved: %v", err)
		default:
			u.message = fmt.Sprintf("saved at rank %d", rank)
		}
		u.prompt = nil
		u.showScores = true
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		if len(u.name) > 0 {
			u.name = u.name[:len(u.name)-1]
		}
	case termbox.KeySpace:
		u.name = append(u.name, ' ')
	default:
		if ev.Ch != 0 {
			u.name = append(u.name, ev.Ch)
		}
	}
}

// keyDirection maps arrows and WASD to a direction.
func keyDirection(ev termbox.Event) (grid.Direction, bool) {
	switch ev.Key {
	case termbox.KeyArrowUp:
		return grid.Up, true
	case termbox.KeyArrowDown:
		return grid.Down, true
	case termbox.KeyArrowLeft:
		return grid.Left, true
	case termbox.KeyArrowRight:
		return grid.Right, true
	}
	switch ev.Ch {
	case 'w', 'W':
		return grid.Up, true
	case 's', 'S':
		return grid.Down, true
	case 'a', 'A':
		return grid.Left, true
	case 'd', 'D':
		return grid.Right, true
	}
	return 0, false
}

// statusLine is the one-line summary shown under the board.
func statusLine(snap session.Snapshot) string {
	switch snap.State {
	case session.NotStarted:
		return fmt.Sprintf("Score: %d  [Space] start", snap.Score)
	case session.Paused:
		return fmt.Sprintf("Score: %d  (paused)", snap.Score)
	case session.Over:
		return fmt.Sprintf("Game Over! Final Score: %d  [Space] again", snap.Score)
	case session.Won:
		return fmt.Sprintf("You win! Final Score: %d", snap.Score)
	default:
		return fmt.Sprintf("Score: %d", snap.Score)
	}
}

func (u *ui) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	termbox.HideCursor()

	snap := u.svc.Snapshot()
	size := u.cfg.Session().Size

	u.drawFrame(size)
	setCell(snap.Food, '*', termbox.ColorRed|termbox.AttrBold)
	for i, p := range snap.Snake {
		ch, fg := 'o', termbox.ColorGreen
		if i == 0 {
			ch, fg = '@', termbox.ColorGreen|termbox.AttrBold
		}
		setCell(p, ch, fg)
	}

	y := originY + size.Height + 1
	printLine(0, y, statusLine(snap), termbox.ColorYellow|termbox.AttrBold)
	printLine(0, y+1, "arrows/WASD steer  P pause  N new  H scores  Q quit", termbox.ColorWhite)
	if u.message != "" {
		printLine(0, y+2, u.message, termbox.ColorCyan)
	}

	if u.prompt != nil {
		u.drawPrompt()
	} else if u.showScores {
		u.drawScores()
	}

	termbox.Flush()
}

func (u *ui) drawFrame(size grid.Size) {
	fg := termbox.ColorBlue
	for x := 0; x <= size.Width+1; x++ {
		termbox.SetCell(x, 0, '#', fg, termbox.ColorDefault)
		termbox.SetCell(x, size.Height+1, '#', fg, termbox.ColorDefault)
	}
	for y := 1; y <= size.Height; y++ {
		termbox.SetCell(0, y, '#', fg, termbox.ColorDefault)
		termbox.SetCell(size.Width+1, y, '#', fg, termbox.ColorDefault)
	}
}

func (u *ui) drawScores() {
	x, y := originX+2, originY+1
	printLine(x, y, "High scores", termbox.ColorYellow|termbox.AttrBold)
	for i, e := range u.svc.HighScores() {
		name := e.Name
		if name == "" {
			name = "-"
		}
		printLine(x, y+1+i, fmt.Sprintf("%d. %-16s %6d", i+1, name, e.Score), termbox.ColorWhite)
	}
}

func (u *ui) drawPrompt() {
	x, y := originX+2, originY+1
	printLine(x, y, fmt.Sprintf("New high score %d, rank %d!", u.prompt.Score, u.prompt.Rank),
		termbox.ColorYellow|termbox.AttrBold)
	printLine(x, y+1, "Name: "+string(u.name)+"_", termbox.ColorWhite)
	printLine(x, y+2, "[Enter] save  [Esc] skip", termbox.ColorWhite)
	termbox.SetCursor(x+6+utf8.RuneCountInString(string(u.name)), y+1)
}

func setCell(p grid.Point, ch rune, fg termbox.Attribute) {
	termbox.SetCell(originX+p.X, originY+p.Y, ch, fg, termbox.ColorDefault)
}

func printLine(x, y int, s string, fg termbox.Attribute) {
	width, _ := termbox.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x++
	}
}
