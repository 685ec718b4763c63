package internal

import (
	"context"

	"shopterm/internal/assistant"
	"shopterm/internal/checkout"
	"shopterm/internal/cli"
	"shopterm/internal/config"
	"shopterm/internal/logging"
	"shopterm/internal/session"
	"shopterm/internal/shop"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		session.Module(),
		shop.Module(),
		checkout.Module(),
		assistant.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
