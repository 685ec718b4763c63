package checkout

import (
	"os"

	"shopterm/internal/config"
	"shopterm/internal/shop"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"checkout",
		fx.Provide(func(cfg config.Config) Printer {
			if cfg.PrintCmd != "" {
				return CommandPrinter{Command: cfg.PrintCmd}
			}
			return ConsolePrinter{Out: os.Stdout}
		}),
		fx.Provide(func(client *shop.Client, printer Printer, cfg config.Config, logger *zap.Logger) *Finalizer {
			return NewFinalizer(client, printer, cfg.StoreName, cfg.Currency, logger)
		}),
	)
}
