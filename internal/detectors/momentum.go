package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

type MomentumDirection string

const (
	MomentumUp   MomentumDirection = "up"
	MomentumDown MomentumDirection = "down"
	MomentumBoth MomentumDirection = "both"
)

type MomentumConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Symbol    string            `yaml:"symbol"`
	Quote     string            `yaml:"quote"`
	PeriodMin int               `yaml:"period_min"` // P, длина блока
	Count     int               `yaml:"count"`      // K, сколько блоков подряд
	MinChange float64           `yaml:"min_change"` // минимум |%| на блок
	Direction MomentumDirection `yaml:"direction"`
	Cooldown  time.Duration     `yaml:"cooldown"`
}

// Momentum требует K последовательных P-минутных блоков в одну сторону,
// каждый не слабее MinChange. Строже Acceleration: движение должно быть
// устойчивым, а не просто ускоряющимся.
type Momentum struct {
	cfg MomentumConfig
	key SeriesKey
}

func NewMomentum(cfg MomentumConfig) *Momentum {
	return &Momentum{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranMinute},
	}
}

func (d *Momentum) ID() string { return "momentum" }

func (d *Momentum) Requires() Requirement {
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: d.cfg.PeriodMin*d.cfg.Count + 1}}}
}

func (d *Momentum) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	p, k := d.cfg.PeriodMin, d.cfg.Count
	w, err := snap.Window(d.key, p*k+1)
	if err != nil {
		return Result{}, err
	}
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}

	allUp, allDown, allMeet := true, true, true
	changes := make([]float64, 0, k)

	// блоки от свежего к старому: блок i заканчивается i*P периодов назад
	for i := 0; i < k; i++ {
		start, err := w.At((i + 1) * p)
		if err != nil {
			return Result{}, err
		}
		end := cur
		if i > 0 {
			bar, err := w.At(i * p)
			if err != nil {
				return Result{}, err
			}
			end = bar.Close
		}
		chg := pctChange(start.Close, end)
		changes = append(changes, chg)

		if math.Abs(chg) < d.cfg.MinChange {
			allMeet = false
		}
		if chg <= 0 {
			allUp = false
		}
		if chg >= 0 {
			allDown = false
		}
	}

	// от старого к новому
	for i, j := 0, len(changes)-1; i < j; i, j = i+1, j-1 {
		changes[i], changes[j] = changes[j], changes[i]
	}

	var dir models.Direction
	switch d.cfg.Direction {
	case MomentumUp:
		if allUp && allMeet {
			dir = models.DirUp
		}
	case MomentumDown:
		if allDown && allMeet {
			dir = models.DirDown
		}
	default: // both
		if allMeet {
			if allUp {
				dir = models.DirUp
			} else if allDown {
				dir = models.DirDown
			}
		}
	}

	if dir == models.DirNone || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{}, nil
	}

	startBar, err := w.At(p * k)
	if err != nil {
		return Result{}, err
	}
	total := pctChange(startBar.Close, cur)
	volVsAvg, _ := w.VolumeVsAvg(p)

	return Result{Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: dir,
		Magnitude: total,
		Summary:   fmt.Sprintf("%s momentum %s: %d x %dmin, total %+.2f%%", d.cfg.Symbol, dir, k, p, total),
		Details: models.MomentumDetails{
			Symbol:      d.cfg.Symbol,
			Price:       cur,
			Changes:     changes,
			TotalChange: total,
			PeriodMin:   p,
			VolumeVsAvg: volVsAvg,
		},
	}}, nil
}
