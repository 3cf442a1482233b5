package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

type SpikeConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Symbol    string        `yaml:"symbol"`
	Quote     string        `yaml:"quote"`
	PeriodMin int           `yaml:"period_min"`
	MinChange float64       `yaml:"min_change"` // |%| за период
	Cooldown  time.Duration `yaml:"cooldown"`
}

// Spike ловит резкое движение за один короткий период.
type Spike struct {
	cfg SpikeConfig
	key SeriesKey
}

func NewSpike(cfg SpikeConfig) *Spike {
	return &Spike{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranMinute},
	}
}

func (d *Spike) ID() string { return "spike" }

func (d *Spike) Requires() Requirement {
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: d.cfg.PeriodMin + 1}}}
}

func (d *Spike) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	w, err := snap.Window(d.key, d.cfg.PeriodMin+1)
	if err != nil {
		return Result{}, err
	}
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}
	from, err := w.At(d.cfg.PeriodMin)
	if err != nil {
		return Result{}, err
	}

	chg := pctChange(from.Close, cur)
	if math.Abs(chg) < d.cfg.MinChange || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{}, nil
	}

	volVsAvg, _ := w.VolumeVsAvg(d.cfg.PeriodMin)

	return Result{Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: direction(chg),
		Magnitude: chg,
		Summary:   fmt.Sprintf("%s spike %+.2f%% in %dmin", d.cfg.Symbol, chg, d.cfg.PeriodMin),
		Details: models.SpikeDetails{
			Symbol:      d.cfg.Symbol,
			From:        from.Close,
			To:          cur,
			Change:      chg,
			PeriodMin:   d.cfg.PeriodMin,
			VolumeVsAvg: volVsAvg,
		},
	}}, nil
}
