package shop

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"shop",
		fx.Provide(NewClient),
	)
}
