package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

type DivergenceHorizon struct {
	Hours     int     `yaml:"hours"`
	Threshold float64 `yaml:"threshold"` // минимальная |расхождение| в п.п.
}

type DivergenceConfig struct {
	Enabled        bool                `yaml:"enabled"`
	Base           string              `yaml:"base"` // напр. PAXG
	Ref            string              `yaml:"ref"`  // напр. BTC
	Quote          string              `yaml:"quote"`
	Horizons       []DivergenceHorizon `yaml:"horizons"`
	AvgVolumeHours int                 `yaml:"avg_volume_hours"` // база для среднего объёма
	MinVolumeVsAvg float64             `yaml:"min_volume_vs_avg"`
	Cooldown       time.Duration       `yaml:"cooldown"`
}

// Divergence сравнивает изменение базового актива с эталоном на
// нескольких горизонтах. Чем длиннее горизонт, тем выше порог:
// короткое расхождение шумное, суточное уже режимное.
type Divergence struct {
	cfg     DivergenceConfig
	baseKey SeriesKey
	refKey  SeriesKey
}

func NewDivergence(cfg DivergenceConfig) *Divergence {
	return &Divergence{
		cfg:     cfg,
		baseKey: SeriesKey{Symbol: cfg.Base, Quote: cfg.Quote, Gran: models.GranHour},
		refKey:  SeriesKey{Symbol: cfg.Ref, Quote: cfg.Quote, Gran: models.GranHour},
	}
}

func (d *Divergence) ID() string { return "divergence" }

func (d *Divergence) Requires() Requirement {
	maxH := d.cfg.AvgVolumeHours
	for _, h := range d.cfg.Horizons {
		if h.Hours > maxH {
			maxH = h.Hours
		}
	}
	return Requirement{Series: []SeriesReq{
		{Key: d.baseKey, Length: maxH + 1},
		{Key: d.refKey, Length: maxH + 1},
	}}
}

func (d *Divergence) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	maxH := 0
	for _, h := range d.cfg.Horizons {
		if h.Hours > maxH {
			maxH = h.Hours
		}
	}
	base, err := snap.Window(d.baseKey, maxH+1)
	if err != nil {
		return Result{}, err
	}
	ref, err := snap.Window(d.refKey, maxH+1)
	if err != nil {
		return Result{}, err
	}

	horizons := make([]models.HorizonDivergence, 0, len(d.cfg.Horizons))
	var trigger *models.HorizonDivergence
	for _, h := range d.cfg.Horizons {
		baseChg, err := base.Change(h.Hours)
		if err != nil {
			return Result{}, err
		}
		refChg, err := ref.Change(h.Hours)
		if err != nil {
			return Result{}, err
		}
		hd := models.HorizonDivergence{
			Horizon:   h.Hours,
			BaseChg:   baseChg,
			RefChg:    refChg,
			Diff:      baseChg - refChg,
			Threshold: h.Threshold,
			Hit:       math.Abs(baseChg-refChg) >= h.Threshold,
		}
		horizons = append(horizons, hd)
		if hd.Hit {
			hdCopy := hd
			trigger = &hdCopy // самый длинный сработавший горизонт и есть сигнал
		}
	}
	if trigger == nil {
		return Result{}, nil
	}

	volVsAvg := 0.0
	if d.cfg.AvgVolumeHours > 0 {
		if v, err := base.VolumeVsAvg(trigger.Horizon); err == nil {
			volVsAvg = v
			if v < d.cfg.MinVolumeVsAvg {
				return Result{}, nil
			}
		}
	}
	if !st.Cooled(now, d.cfg.Cooldown) {
		return Result{}, nil
	}

	return Result{Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: direction(trigger.Diff),
		Magnitude: trigger.Diff,
		Summary: fmt.Sprintf("%s vs %s diverged %+.2fpp over %dh",
			d.cfg.Base, d.cfg.Ref, trigger.Diff, trigger.Horizon),
		Details: models.DivergenceDetails{
			Base:        d.cfg.Base,
			Ref:         d.cfg.Ref,
			Horizons:    horizons,
			Trigger:     *trigger,
			VolumeVsAvg: volVsAvg,
		},
	}}, nil
}
