package runner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/fx"

	"signal_monitor/internal/catalyst"
	"signal_monitor/internal/detectors"
	"signal_monitor/internal/modules/config"
	marketsvc "signal_monitor/internal/modules/market/service"
	"signal_monitor/internal/notify"
	"signal_monitor/pkg/logger"
)

func newCalendar(cfg *config.Config) (*catalyst.Calendar, error) {
	return catalyst.Load(cfg.CatalystsFile)
}

func newStore() detectors.Store { return detectors.NewMemoryStore() }

func asProvider(p *marketsvc.Provider) Provider { return p }

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			newCalendar,
			newStore,
			asProvider,
			NewMonitor,
		),

		fx.Invoke(func(lc fx.Lifecycle, m *Monitor, cfg *config.Config, n notify.Notifier, ctx context.Context) {
			loopCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						n.Sendf("🤖 Мониторинг запущен\n• Детекторы: %s\n• Интервал: %s",
							strings.Join(m.Detectors(), ", "), cfg.CheckInterval)

						t := time.NewTicker(cfg.CheckInterval)
						defer t.Stop()

						m.RunCycle(loopCtx, time.Now())
						for {
							select {
							case <-loopCtx.Done():
								return
							case now := <-t.C:
								m.RunCycle(loopCtx, now)
							}
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					n.Send("⏹ Мониторинг остановлен")
					logger.Info("[MONITOR] остановлен")
					return nil
				},
			})
		}),
	)
}
