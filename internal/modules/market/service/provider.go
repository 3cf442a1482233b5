package service

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"signal_monitor/internal/detectors"
	"signal_monitor/internal/models"
	"signal_monitor/internal/timeseries"
	"signal_monitor/pkg/logger"
)

// Provider собирает снапшот рынка под требования детекторов.
type Provider struct {
	rest   *Rest
	stream *Stream
}

func NewProvider(rest *Rest, stream *Stream) *Provider {
	return &Provider{rest: rest, stream: stream}
}

// Snapshot тянет каждую серию один раз, на максимальную из
// запрошенных длин. Ошибка по серии или скаляру не фатальна: источник
// просто не попадает в снапшот, и цикл пропустят только детекторы,
// которым он нужен.
func (p *Provider) Snapshot(ctx context.Context, reqs []detectors.SeriesReq, scalars []string) (detectors.Snapshot, error) {
	need := make(map[detectors.SeriesKey]int)
	for _, r := range reqs {
		if r.Length > need[r.Key] {
			need[r.Key] = r.Length
		}
	}

	snap := detectors.Snapshot{
		Series:  make(map[detectors.SeriesKey]*timeseries.Window, len(need)),
		Prices:  make(map[detectors.SeriesKey]float64, len(need)),
		Scalars: make(map[string]models.ScalarPoint, len(scalars)),
	}

	for key, length := range need {
		bars, err := p.rest.Candles(ctx, key, length)
		if err != nil {
			logger.Error("[MARKET] series %s: %v", key, err)
			continue
		}
		w, err := timeseries.New(bars)
		if err != nil {
			logger.Error("[MARKET] series %s: %v", key, pkgerrors.Wrap(err, "malformed bars"))
			continue
		}
		snap.Series[key] = w

		if price, ok := p.stream.Price(key.Symbol, key.Quote); ok {
			snap.Prices[key] = price
		}
	}

	for _, name := range scalars {
		if _, ok := snap.Scalars[name]; ok {
			continue
		}
		point, err := p.fetchScalar(ctx, name)
		if err != nil {
			logger.Error("[MARKET] scalar %s: %v", name, err)
			continue
		}
		snap.Scalars[name] = point
	}

	return snap, nil
}

func (p *Provider) fetchScalar(ctx context.Context, name string) (models.ScalarPoint, error) {
	switch name {
	case detectors.ScalarBTCDominance:
		return p.rest.Dominance(ctx)
	case detectors.ScalarFundingRate:
		return p.rest.Funding(ctx)
	case detectors.ScalarOpenInterest:
		return p.rest.OpenInterest(ctx)
	default:
		return models.ScalarPoint{}, pkgerrors.Errorf("market: unknown scalar %q", name)
	}
}
