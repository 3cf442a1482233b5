package telegram

import (
	"context"

	"go.uber.org/fx"

	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/notify"
	"signal_monitor/internal/runner"
	"signal_monitor/pkg/logger"
)

// newNotifier отдаёт Telegram при наличии токена, иначе лог в stdout.
func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[TG] токен не задан, алерты в stdout")
		return notify.NewStdout(), nil
	}
	return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			newNotifier,
		),

		fx.Invoke(func(lc fx.Lifecycle, n notify.Notifier, m *runner.Monitor, ctx context.Context) {
			tg, ok := n.(*notify.Telegram)
			if !ok {
				return
			}
			tg.SetStatus(m.Status)

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					return tg.Start(ctx)
				},
				OnStop: func(context.Context) error {
					tg.Stop()
					return nil
				},
			})
		}),
	)
}
