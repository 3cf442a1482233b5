package report

import (
	"context"

	"go.uber.org/fx"

	"signal_monitor/internal/modules/report/service"
)

func Module() fx.Option {
	return fx.Module("report",
		fx.Provide(
			service.NewSnapshots,
			service.NewReporter,
		),

		fx.Invoke(func(lc fx.Lifecycle, r *service.Reporter, ctx context.Context) {
			loopCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					if err := r.Init(startCtx); err != nil {
						return err
					}
					go r.Run(loopCtx)
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
