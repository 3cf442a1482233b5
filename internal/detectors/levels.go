package detectors

import (
	"fmt"
	"time"

	"signal_monitor/internal/models"
)

type LevelCrossConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Name     string        `yaml:"name"` // instance id, напр. ethbtc_levels
	Symbol   string        `yaml:"symbol"`
	Quote    string        `yaml:"quote"`
	Levels   []float64     `yaml:"levels"` // отсортированы по возрастанию
	Cooldown time.Duration `yaml:"cooldown"`
}

// LevelCross следит за явным списком уровней. Сигнал, когда текущее
// значение и прошлое наблюдение лежат по разные стороны уровня.
// При прострелах нескольких уровней за цикл берём ближайший к цене.
type LevelCross struct {
	cfg LevelCrossConfig
	key SeriesKey
}

func NewLevelCross(cfg LevelCrossConfig) *LevelCross {
	return &LevelCross{
		cfg: cfg,
		key: SeriesKey{Symbol: cfg.Symbol, Quote: cfg.Quote, Gran: models.GranHour},
	}
}

func (d *LevelCross) ID() string { return d.cfg.Name }

func (d *LevelCross) Requires() Requirement {
	return Requirement{Series: []SeriesReq{{Key: d.key, Length: 2}}}
}

func (d *LevelCross) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	cur, err := snap.Price(d.key)
	if err != nil {
		return Result{}, err
	}

	if !st.HasObserved {
		return Result{Observed: observe(cur)}, nil
	}

	prev := st.LastObserved
	lo, hi := prev, cur
	if lo > hi {
		lo, hi = hi, lo
	}

	crossed := -1.0
	for _, lvl := range d.cfg.Levels {
		if lo < lvl && hi >= lvl {
			crossed = lvl
			if cur < prev {
				break // вниз: первый (нижний) прострелянный и есть ближайший
			}
		}
	}
	if crossed < 0 || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{Observed: observe(cur)}, nil
	}

	dir := models.DirUp
	if cur < prev {
		dir = models.DirDown
	}

	return Result{
		Observed: observe(cur),
		Event: &models.Event{
			Detector:  d.ID(),
			FiredAt:   now,
			Direction: dir,
			Magnitude: cur - prev,
			Summary:   fmt.Sprintf("%s/%s crossed %.4f (%s)", d.cfg.Symbol, d.cfg.Quote, crossed, dir),
			Details: models.LevelCrossDetails{
				Pair:    d.cfg.Symbol + "/" + d.cfg.Quote,
				Level:   crossed,
				Prev:    prev,
				Current: cur,
			},
		},
	}, nil
}
