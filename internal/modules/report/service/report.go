package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"signal_monitor/internal/detectors"
	"signal_monitor/internal/models"
	"signal_monitor/internal/modules/config"
	marketsvc "signal_monitor/internal/modules/market/service"
	"signal_monitor/internal/notify"
	"signal_monitor/pkg/db"
	"signal_monitor/pkg/logger"
)

// Reporter шлёт утренний и вечерний сводный отчёт и хранит срезы
// рынка для сравнения неделя к неделе.
type Reporter struct {
	cfg   *config.Config
	rest  *marketsvc.Rest
	tx    db.TxManager
	store *Snapshots
	n     notify.Notifier
}

func NewReporter(
	cfg *config.Config,
	rest *marketsvc.Rest,
	tx db.TxManager,
	store *Snapshots,
	n notify.Notifier,
) *Reporter {
	return &Reporter{cfg: cfg, rest: rest, tx: tx, store: store, n: n}
}

// Init готовит схему хранилища.
func (r *Reporter) Init(ctx context.Context) error {
	return r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return r.store.EnsureSchema(ctx, tx)
	})
}

// Run блокируется до отмены контекста, проверяя расписание раз в
// полминуты. Отчёт за конкретную минуту уходит один раз.
func (r *Reporter) Run(ctx context.Context) {
	var lastMorning, lastEvening string

	t := time.NewTicker(30 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			day := now.UTC().Format("2006-01-02")
			hhmm := now.UTC().Format("15:04")

			if hhmm == r.cfg.Report.MorningAt && lastMorning != day {
				lastMorning = day
				r.send(ctx, now, "🌅 <b>MORNING REPORT</b>")
			}
			if hhmm == r.cfg.Report.EveningAt && lastEvening != day {
				lastEvening = day
				r.send(ctx, now, "🌙 <b>EVENING REPORT</b>")
			}
		}
	}
}

func (r *Reporter) send(ctx context.Context, now time.Time, title string) {
	snap, err := r.collect(ctx, now)
	if err != nil {
		logger.Error("[REPORT] срез рынка не собран: %v", err)
		return
	}

	weekAgo := r.load(ctx, now.Add(-7*24*time.Hour))

	var b strings.Builder
	b.WriteString(title + "\n\n")

	btcChg, btcErr := r.dayChange(ctx, "BTC")

	for _, sym := range r.cfg.Report.Watchlist {
		price, ok := snap.Prices[sym]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s: $%.2f", sym, price)
		if chg, err := r.dayChange(ctx, sym); err == nil {
			line += fmt.Sprintf(" (%+.2f%% 24h)", chg)
			if sym != "BTC" && btcErr == nil {
				line += fmt.Sprintf(" | vs BTC: %+.2fpp", chg-btcChg)
			}
		}
		if weekAgo != nil {
			if prev, ok := weekAgo.Prices[sym]; ok && prev > 0 {
				line += fmt.Sprintf(" | неделя: %+.2f%%", (price-prev)/prev*100)
			}
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "\n🌐 BTC dominance: %.2f%%", snap.Dominance)
	if weekAgo != nil && weekAgo.Dominance > 0 {
		fmt.Fprintf(&b, " (%+.2fpp за неделю)", snap.Dominance-weekAgo.Dominance)
	}
	fmt.Fprintf(&b, "\n💸 Funding: %+.3f%%/8h\n", snap.FundingPct)
	fmt.Fprintf(&b, "📊 Open Interest: $%.1fB\n", snap.OIBillions)

	r.n.Send(b.String())

	if err := r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return r.store.Insert(ctx, tx, snap)
	}); err != nil {
		logger.Error("[REPORT] срез не сохранён: %v", err)
	}
}

func (r *Reporter) collect(ctx context.Context, now time.Time) (*models.MarketSnapshot, error) {
	snap := &models.MarketSnapshot{
		TakenAt: now.UTC(),
		Prices:  make(map[string]float64, len(r.cfg.Report.Watchlist)),
	}

	for _, sym := range r.cfg.Report.Watchlist {
		price, err := r.rest.Price(ctx, detectors.SeriesKey{Symbol: sym, Quote: "USD"})
		if err != nil {
			return nil, err
		}
		snap.Prices[sym] = price
	}

	if dom, err := r.rest.Dominance(ctx); err == nil {
		snap.Dominance = dom.Value
	}
	if funding, err := r.rest.Funding(ctx); err == nil {
		snap.FundingPct = funding.Value
	}
	if oi, err := r.rest.OpenInterest(ctx); err == nil {
		snap.OIBillions = oi.Value
	}
	return snap, nil
}

func (r *Reporter) load(ctx context.Context, at time.Time) *models.MarketSnapshot {
	var snap *models.MarketSnapshot
	err := r.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		s, err := r.store.ClosestTo(ctx, tx, at)
		if err == pgx.ErrNoRows {
			return nil
		}
		snap = s
		return err
	})
	if err != nil {
		logger.Error("[REPORT] прошлый срез не прочитан: %v", err)
		return nil
	}
	return snap
}

func (r *Reporter) dayChange(ctx context.Context, sym string) (float64, error) {
	key := detectors.SeriesKey{Symbol: sym, Quote: "USD", Gran: models.GranHour}
	bars, err := r.rest.Candles(ctx, key, 24)
	if err != nil {
		return 0, err
	}
	if len(bars) < 2 || bars[0].Close <= 0 {
		return 0, fmt.Errorf("report: not enough bars for %s", sym)
	}
	first, last := bars[0].Close, bars[len(bars)-1].Close
	return (last - first) / first * 100, nil
}
