package gameloop

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// System is logic executed on every loop tick.
type System interface {
	// Init is called once, when the loop is built.
	Init(deps Dependencies) error
	// Tick is called on every tick, on the loop goroutine.
	Tick(ctx context.Context, dt time.Duration)
	// Name returns a readable system name.
	Name() string
}

// Dependencies are handed to systems at Init.
type Dependencies struct {
	Logger *zap.SugaredLogger
}
