// Package logging builds the zap logger the binaries hand to every package.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/annelo/go-snake/internal/config"
)

// New returns a sugared logger for cfg together with its level, which can be
// changed at runtime. An empty cfg.File discards all output.
func New(cfg config.Log) (*zap.SugaredLogger, zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: %w", err)
	}
	atom := zap.NewAtomicLevelAt(level)

	if cfg.File == "" {
		return zap.NewNop().Sugar(), atom, nil
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = atom
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}

	logger, err := zc.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: build logger for %s: %w", cfg.File, err)
	}
	return logger.Sugar(), atom, nil
}
