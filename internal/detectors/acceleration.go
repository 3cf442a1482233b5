package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

type AccelerationConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Symbol    string        `yaml:"symbol"`
	Quote     string        `yaml:"quote"`
	PeriodMin int           `yaml:"period_min"` // P, длина одного окна в минутах
	MinDiff   float64       `yaml:"min_diff"`   // порог |recent| - |prev|, %
	Cooldown  time.Duration `yaml:"cooldown"`
}

// Acceleration сравнивает два соседних P-минутных окна: срабатывает, когда
// последнее окно двигается заметно резче предыдущего.
type Acceleration struct {
	cfg AccelerationConfig
	key SeriesKey
}

func NewAcceleration(cfg AccelerationConfig) *Acceleration {
	return &Acceleration{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranMinute},
	}
}

func (d *Acceleration) ID() string { return "acceleration" }

func (d *Acceleration) Requires() Requirement {
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: d.cfg.PeriodMin*2 + 1}}}
}

func (d *Acceleration) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	p := d.cfg.PeriodMin
	w, err := snap.Window(d.key, 2*p+1)
	if err != nil {
		return Result{}, err
	}
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}

	twoAgo, err := w.At(2 * p)
	if err != nil {
		return Result{}, err
	}
	oneAgo, err := w.At(p)
	if err != nil {
		return Result{}, err
	}

	prevChg := pctChange(twoAgo.Close, oneAgo.Close)
	recentChg := pctChange(oneAgo.Close, cur)
	diff := math.Abs(recentChg) - math.Abs(prevChg)

	if diff < d.cfg.MinDiff || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{}, nil
	}

	volVsAvg, _ := w.VolumeVsAvg(p)

	return Result{Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: direction(recentChg),
		Magnitude: diff,
		Summary:   fmt.Sprintf("%s acceleration %+.2f%% -> %+.2f%% (diff %+.2f%%)", d.cfg.Symbol, prevChg, recentChg, diff),
		Details: models.AccelerationDetails{
			Symbol:       d.cfg.Symbol,
			Price:        cur,
			PrevChange:   prevChg,
			RecentChange: recentChg,
			Diff:         diff,
			VolumeVsAvg:  volVsAvg,
		},
	}}, nil
}
