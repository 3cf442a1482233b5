package detectors

import (
	"fmt"
	"time"

	"signal_monitor/internal/models"
)

type ExtremumConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Name           string        `yaml:"name"` // instance id, напр. btc_extremum
	Symbol         string        `yaml:"symbol"`
	Quote          string        `yaml:"quote"`
	WindowHours    int           `yaml:"window_hours"`
	MinVolumeVsAvg float64       `yaml:"min_volume_vs_avg"` // отсечка, напр. -50
	Cooldown       time.Duration `yaml:"cooldown"`
}

// Extremum ловит пробой максимума/минимума окна часовых баров.
// Живая цена сравнивается с границей окна (последний бар окна может
// быть недозакрытым, так отдаёт источник); предыдущая точка берётся
// из наблюдения прошлого цикла, так что пробой даёт ровно один
// сигнал, пока цена не откатится под границу.
type Extremum struct {
	cfg ExtremumConfig
	key SeriesKey
}

func NewExtremum(cfg ExtremumConfig) *Extremum {
	return &Extremum{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranHour},
	}
}

func (d *Extremum) ID() string { return d.cfg.Name }

func (d *Extremum) Requires() Requirement {
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: d.cfg.WindowHours}}}
}

func (d *Extremum) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	w, err := snap.Window(d.key, d.cfg.WindowHours)
	if err != nil {
		return Result{}, err
	}
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}

	prev := st.LastObserved
	if !st.HasObserved {
		bar, err := w.At(1)
		if err != nil {
			return Result{}, err
		}
		prev = bar.Close
	}

	high, err := w.MaxClose(0, d.cfg.WindowHours)
	if err != nil {
		return Result{}, err
	}
	low, err := w.MinClose(0, d.cfg.WindowHours)
	if err != nil {
		return Result{}, err
	}

	obs := observe(cur)

	var side models.ExtremumSide
	var bound float64
	switch {
	case prev < high && cur >= high:
		side, bound = models.ExtremumHigh, high
	case prev > low && cur <= low:
		side, bound = models.ExtremumLow, low
	default:
		return Result{Observed: obs}, nil
	}

	volVsAvg, err := w.VolumeVsAvg(1)
	if err == nil && volVsAvg < d.cfg.MinVolumeVsAvg {
		return Result{Observed: obs}, nil // пробой на мёртвом объёме не интересен
	}
	if !st.Cooled(now, d.cfg.Cooldown) {
		return Result{Observed: obs}, nil
	}

	dir := models.DirUp
	if side == models.ExtremumLow {
		dir = models.DirDown
	}

	return Result{Observed: obs, Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: dir,
		Magnitude: pctChange(bound, cur),
		Summary:   fmt.Sprintf("%s broke %dd %s at %.2f", d.cfg.Symbol, d.cfg.WindowHours/24, side, bound),
		Details: models.ExtremumDetails{
			Symbol:      d.cfg.Symbol,
			Side:        side,
			Bound:       bound,
			Current:     cur,
			WindowHours: d.cfg.WindowHours,
			VolumeVsAvg: volVsAvg,
		},
	}}, nil
}
