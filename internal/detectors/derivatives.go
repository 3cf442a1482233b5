package detectors

import (
	"fmt"
	"math"
	"time"

	"signal_monitor/internal/models"
)

const (
	ScalarFundingRate  = "funding_rate"  // % за 8ч
	ScalarOpenInterest = "open_interest" // $ млрд
)

type DerivativesConfig struct {
	Enabled            bool          `yaml:"enabled"`
	FundingExtreme     float64       `yaml:"funding_extreme"`      // |%|, напр. 0.08
	FundingVeryExtreme float64       `yaml:"funding_very_extreme"` // |%|, напр. 0.10
	OIHigh             float64       `yaml:"oi_high"`              // $млрд
	OIExtreme          float64       `yaml:"oi_extreme"`
	Cooldown           time.Duration `yaml:"cooldown"`
}

// Derivatives сводит funding rate и открытый интерес в один режимный
// сигнал. Опасен не сам по себе высокий OI, а его сочетание с
// перекошенным funding: переполненная сторона кормит сквиз.
type Derivatives struct {
	cfg DerivativesConfig
}

func NewDerivatives(cfg DerivativesConfig) *Derivatives {
	return &Derivatives{cfg: cfg}
}

func (d *Derivatives) ID() string { return "derivatives" }

func (d *Derivatives) Requires() Requirement {
	return Requirement{Scalars: []string{ScalarFundingRate, ScalarOpenInterest}}
}

func classifyDerivatives(cfg DerivativesConfig, funding, oiB float64) (models.Quadrant, string) {
	absF := math.Abs(funding)
	switch {
	case funding >= cfg.FundingExtreme && oiB >= cfg.OIHigh:
		risk := "HIGH"
		if funding >= cfg.FundingVeryExtreme || oiB >= cfg.OIExtreme {
			risk = "EXTREME"
		}
		return models.QuadDanger, risk
	case funding <= -cfg.FundingExtreme && oiB >= cfg.OIHigh:
		return models.QuadOpportunity, "OPPORTUNITY"
	case absF >= cfg.FundingVeryExtreme:
		return models.QuadCaution, "HIGH"
	case oiB >= cfg.OIHigh:
		return models.QuadWatch, "WATCH"
	default:
		return models.QuadHealthy, ""
	}
}

func (d *Derivatives) Evaluate(snap Snapshot, st State, now time.Time) (Result, error) {
	funding, err := snap.Scalar(ScalarFundingRate)
	if err != nil {
		return Result{}, err
	}
	oi, err := snap.Scalar(ScalarOpenInterest)
	if err != nil {
		return Result{}, err
	}

	quad, risk := classifyDerivatives(d.cfg, funding.Value, oi.Value)
	if quad == models.QuadHealthy || !st.Cooled(now, d.cfg.Cooldown) {
		return Result{}, nil
	}

	dir := models.DirNone
	switch quad {
	case models.QuadDanger:
		dir = models.DirDown // риск сквиза лонгов
	case models.QuadOpportunity:
		dir = models.DirUp
	}

	return Result{Event: &models.Event{
		Detector:  d.ID(),
		FiredAt:   now,
		Direction: dir,
		Magnitude: funding.Value,
		Summary: fmt.Sprintf("derivatives %s: funding %+.3f%%/8h, OI $%.1fB",
			quad, funding.Value, oi.Value),
		Details: models.DerivativesDetails{
			FundingPct:       funding.Value,
			FundingAnnualPct: funding.Value * 3 * 365,
			OIBillions:       oi.Value,
			Quadrant:         quad,
			Risk:             risk,
		},
	}}, nil
}
