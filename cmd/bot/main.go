package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/modules/market"
	"signal_monitor/internal/modules/postgres"
	"signal_monitor/internal/modules/report"
	"signal_monitor/internal/modules/telegram"
	"signal_monitor/internal/runner"
	"signal_monitor/pkg/logger"
	"signal_monitor/pkg/tracing"
)

func main() {
	flush, err := logger.Init()
	if err != nil {
		log.Fatal(err)
	}
	defer flush()
	logger.SetServiceName("signal-monitor")
	tracing.SetServiceName("signal-monitor")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		market.Module(),
		telegram.Module(),
		runner.Module(),
		report.Module(),

		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Tracing.Host,
				Port: cfg.Tracing.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
