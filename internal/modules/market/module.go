package market

import (
	"context"

	"go.uber.org/fx"

	"signal_monitor/internal/modules/market/service"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			service.NewRest,
			service.NewStream,
			service.NewProvider,
		),

		fx.Invoke(func(lc fx.Lifecycle, stream *service.Stream) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go stream.Run(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
