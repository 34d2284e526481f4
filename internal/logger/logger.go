package logger

import (
	"go.uber.org/zap"

	"github.com/windbackhq/windback-bff/internal/config"
)

type Sugared = *zap.SugaredLogger

// New returns a production JSON logger in production and a console
// development logger otherwise.
func New(env string) Sugared {
	var z *zap.Logger
	var err error
	if env == config.EnvProduction || env == "prod" {
		z, err = zap.NewProduction()
	} else {
		z, err = zap.NewDevelopment()
	}
	if err != nil {
		z = zap.NewNop()
	}
	return z.Sugar()
}

// Nop discards everything. Used as the default when no logger is injected.
func Nop() Sugared {
	return zap.NewNop().Sugar()
}
