package session

import (
	"shopterm/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(func(cfg config.Config, logger *zap.Logger) *Store {
			return NewStore(cfg.SessionFile, logger)
		}),
	)
}
