package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

const ScalarBTCDominance = "btc_dominance"

// MomentumEstimator оценивает суточное изменение доминации. Прямой
// истории доминации у нас нет, поэтому по умолчанию прокси через цену.
type MomentumEstimator interface {
	Delta24h(snap Snapshot) (float64, error)
}

// ProxyMomentum приближает момент доминации долей суточного изменения
// цены BTC: рост BTC обычно тянет доминацию вверх.
type ProxyMomentum struct {
	Key    SeriesKey
	Factor float64
}

func (p ProxyMomentum) Delta24h(snap Snapshot) (float64, error) {
	w, err := snap.Window(p.Key, 25)
	if err != nil {
		return 0, err
	}
	chg, err := w.Change(24)
	if err != nil {
		return 0, err
	}
	return p.Factor * chg, nil
}

type DominanceConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Thresholds  []float64     `yaml:"thresholds"`   // ровно 4, по возрастанию
	MinMomentum float64       `yaml:"min_momentum"` // |п.п./сутки| для сигнала
	EdgeMargin  float64       `yaml:"edge_margin"`  // близость к порогу, п.п.
	Cooldown    time.Duration `yaml:"cooldown"`
}

// Dominance отслеживает режим рынка по доминации BTC: пять зон,
// границы между которыми задают четыре порога. Сигнал на смене зоны,
// на сильном суточном моменте и на подходе к порогу с моментом в его
// сторону.
type Dominance struct {
	cfg      DominanceConfig
	momentum MomentumEstimator
}

func NewDominance(cfg DominanceConfig, momentum MomentumEstimator) *Dominance {
	return &Dominance{cfg: cfg, momentum: momentum}
}

func (d *Dominance) ID() string { return "dominance" }

func (d *Dominance) Requires() Requirement {
	req := Requirement{Scalars: []string{ScalarBTCDominance}}
	if p, ok := d.momentum.(ProxyMomentum); ok {
		req.Series = []SeriesReq{{Key: p.Key, Length: 25}}
	}
	return req
}

func (d *Dominance) zone(dom float64) models.DominanceZone {
	t := d.cfg.Thresholds
	switch {
	case dom < t[0]:
		return models.ZoneReverse
	case dom < t[1]:
		return models.ZoneAltBuy
	case dom < t[2]:
		return models.ZonePrepareAlts
	case dom < t[3]:
		return models.ZonePrepareBTC
	default:
		return models.ZoneSellAlts
	}
}

// edge возвращает пояснение, если доминация стоит вплотную к порогу и
// момент толкает её через него.
func (d *Dominance) edge(dom, delta float64) string {
	for _, t := range d.cfg.Thresholds {
		gap := t - dom
		if math.Abs(gap) > d.cfg.EdgeMargin || gap == 0 {
			continue
		}
		if gap > 0 && delta > 0 {
			return fmt.Sprintf("%.1f%% в %+.2f п.п. снизу, момент вверх", t, -gap)
		}
		if gap < 0 && delta < 0 {
			return fmt.Sprintf("%.1f%% в %+.2f п.п. сверху, момент вниз", t, -gap)
		}
	}
	return ""
}

func (d *Dominance) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	dom, err := snap.Scalar(ScalarBTCDominance)
	if err != nil {
		return Result{}, err
	}
	cur := dom.Value

	if !st.HasObserved {
		return Result{Observed: observe(cur)}, nil
	}

	delta, err := d.momentum.Delta24h(snap)
	if err != nil {
		return Result{}, err
	}

	curZone := d.zone(cur)
	var reasons []string
	if prevZone := d.zone(st.LastObserved); prevZone != curZone {
		reasons = append(reasons, fmt.Sprintf("зона %s -> %s", prevZone, curZone))
	}
	if math.Abs(delta) >= d.cfg.MinMomentum {
		reasons = append(reasons, fmt.Sprintf("момент %+.2f п.п./сутки", delta))
	}
	edge := d.edge(cur, delta)
	if edge != "" {
		reasons = append(reasons, edge)
	}

	if len(reasons) == 0 || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{Observed: observe(cur)}, nil
	}

	return Result{
		Observed: observe(cur),
		Event: &models.Event{
			Detector:  d.ID(),
			FiredAt:   now,
			Direction: direction(delta),
			Magnitude: cur - st.LastObserved,
			Summary:   fmt.Sprintf("BTC dominance %.2f%% (%s)", cur, curZone),
			Details: models.DominanceDetails{
				Current:  cur,
				Delta24h: delta,
				Zone:     curZone,
				Reasons:  reasons,
				Edge:     edge,
			},
		},
	}, nil
}
