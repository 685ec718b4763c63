package assistant

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"assistant",
		fx.Provide(NewClient),
		fx.Provide(NewAgent),
	)
}
