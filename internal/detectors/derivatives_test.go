package detectors

import (
	"testing"
	"time"

	"signal_monitor/internal/models"
)

func derivativesConfig() DerivativesConfig {
	return DerivativesConfig{
		Enabled:        true,
		FundingExtreme: 0.08, FundingVeryExtreme: 0.10,
		OIHigh: 30, OIExtreme: 35,
		Cooldown: 6 * time.Hour,
	}
}

func TestClassifyDerivatives(t *testing.T) {
	cfg := derivativesConfig()

	cases := []struct {
		name     string
		funding  float64
		oi       float64
		quadrant models.Quadrant
		risk     string
	}{
		{"crowded long", 0.09, 31, models.QuadDanger, "HIGH"},
		{"crowded long, very extreme funding", 0.11, 31, models.QuadDanger, "EXTREME"},
		{"crowded long, extreme OI", 0.09, 36, models.QuadDanger, "EXTREME"},
		{"crowded short", -0.09, 31, models.QuadOpportunity, "OPPORTUNITY"},
		{"hot funding alone", 0.11, 20, models.QuadCaution, "HIGH"},
		{"hot negative funding alone", -0.11, 20, models.QuadCaution, "HIGH"},
		{"heavy OI, neutral funding", 0.02, 32, models.QuadWatch, "WATCH"},
		{"extreme OI, neutral funding", 0.02, 36, models.QuadWatch, "WATCH"},
		{"calm market", 0.02, 20, models.QuadHealthy, ""},
		{"extreme funding, light OI", 0.09, 20, models.QuadHealthy, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quad, risk := classifyDerivatives(cfg, tc.funding, tc.oi)
			if quad != tc.quadrant {
				t.Errorf("quadrant = %s, want %s", quad, tc.quadrant)
			}
			if risk != tc.risk {
				t.Errorf("risk = %q, want %q", risk, tc.risk)
			}
		})
	}
}

func TestDerivatives_HealthyStaysSilent(t *testing.T) {
	d := NewDerivatives(derivativesConfig())
	snap := scalarSnapshot(map[string]float64{
		ScalarFundingRate:  0.01,
		ScalarOpenInterest: 25,
	})

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("unexpected event on healthy market: %s", res.Event.Summary)
	}
}

func TestDerivatives_CrowdedLongFires(t *testing.T) {
	d := NewDerivatives(derivativesConfig())
	snap := scalarSnapshot(map[string]float64{
		ScalarFundingRate:  0.09,
		ScalarOpenInterest: 32,
	})

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("expected derivatives event")
	}
	details := res.Event.Details.(models.DerivativesDetails)
	if details.Quadrant != models.QuadDanger {
		t.Errorf("quadrant = %s, want danger", details.Quadrant)
	}
	if res.Event.Direction != models.DirDown {
		t.Errorf("direction = %s, want DOWN (long squeeze risk)", res.Event.Direction)
	}
}

func TestDerivatives_MissingScalarSkipsCycle(t *testing.T) {
	d := NewDerivatives(derivativesConfig())
	snap := scalarSnapshot(map[string]float64{ScalarFundingRate: 0.09})

	if _, err := d.Evaluate(snap, State{}, testNow); err == nil {
		t.Error("expected error when open interest is missing")
	}
}

func TestDerivatives_CooldownBlocksRepeat(t *testing.T) {
	d := NewDerivatives(derivativesConfig())
	snap := scalarSnapshot(map[string]float64{
		ScalarFundingRate:  0.09,
		ScalarOpenInterest: 32,
	})
	st := State{LastFiredAt: testNow.Add(-time.Hour)}

	res, err := d.Evaluate(snap, st, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Error("event fired inside cooldown")
	}
}
