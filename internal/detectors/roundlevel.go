package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

type RoundLevelConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Name      string        `yaml:"name"` // instance id, напр. btc_round
	Symbol    string        `yaml:"symbol"`
	Quote     string        `yaml:"quote"`
	Increment float64       `yaml:"increment"` // шаг круглого уровня в $
	RSIPeriod int           `yaml:"rsi_period"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

// RoundLevel срабатывает при пересечении ценой кратного Increment уровня.
// Пересечение = сменился floor(price/increment) относительно прошлого
// наблюдения. Первый запуск только фиксирует базу, без сигнала.
type RoundLevel struct {
	cfg RoundLevelConfig
	key SeriesKey
}

func NewRoundLevel(cfg RoundLevelConfig) *RoundLevel {
	return &RoundLevel{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranHour},
	}
}

func (d *RoundLevel) ID() string { return d.cfg.Name }

func (d *RoundLevel) Requires() Requirement {
	length := d.cfg.RSIPeriod + 1
	if length < 2 {
		length = 2
	}
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: length}}}
}

func (d *RoundLevel) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}

	if !st.HasObserved {
		return Result{Observed: observe(cur)}, nil
	}

	prevBucket := math.Floor(st.LastObserved / d.cfg.Increment)
	curBucket := math.Floor(cur / d.cfg.Increment)
	if prevBucket == curBucket || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{Observed: observe(cur)}, nil
	}

	var dir models.Direction
	var level float64
	if curBucket > prevBucket {
		dir = models.DirUp
		level = curBucket * d.cfg.Increment
	} else {
		dir = models.DirDown
		level = prevBucket * d.cfg.Increment
	}

	var rsiVal float64
	if w, err := snap.Window(d.key, d.cfg.RSIPeriod+1); err == nil {
		if closes, err := w.Closes(d.cfg.RSIPeriod + 1); err == nil {
			rsiVal = rsi(closes, d.cfg.RSIPeriod)
		}
	}

	return Result{
		Observed: observe(cur),
		Event: &models.Event{
			Detector:  d.ID(),
			FiredAt:   now,
			Direction: dir,
			Magnitude: cur - st.LastObserved,
			Summary:   fmt.Sprintf("%s crossed $%.0f (%s)", d.cfg.Symbol, level, dir),
			Details: models.RoundLevelDetails{
				Symbol:    d.cfg.Symbol,
				Level:     level,
				Increment: d.cfg.Increment,
				Prev:      st.LastObserved,
				Current:   cur,
				RSI:       rsiVal,
			},
		},
	}, nil
}
