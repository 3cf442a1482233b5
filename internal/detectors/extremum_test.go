package detectors

import (
	"testing"
	"time"

	"signal_monitor/internal/models"
)

func extremumConfig() ExtremumConfig {
	return ExtremumConfig{
		Enabled: true, Name: "btc_extremum", Symbol: "BTC", Quote: "USD",
		WindowHours: 5, MinVolumeVsAvg: -50, Cooldown: 4 * time.Hour,
	}
}

func TestExtremum_FiresOnHighBreak(t *testing.T) {
	d := NewExtremum(extremumConfig())

	// максимум закрытых баров 102, цена уходит выше
	snap := testSnapshot(d.key, nil, 100, 101, 102, 101, 100)
	snap.Prices[d.key] = 103

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("expected high break event")
	}
	details := res.Event.Details.(models.ExtremumDetails)
	if details.Side != models.ExtremumHigh {
		t.Errorf("side = %s, want high", details.Side)
	}
	if details.Bound != 102 {
		t.Errorf("bound = %.0f, want 102", details.Bound)
	}
	if res.Observed == nil || *res.Observed != 103 {
		t.Error("fired cycle must still record the observed price")
	}
}

func TestExtremum_MonotoneRiseFires(t *testing.T) {
	d := NewExtremum(extremumConfig())

	snap := testSnapshot(d.key, nil, 100, 101, 102, 103, 104)
	snap.Prices[d.key] = 105

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("steady rise to a new window high must fire")
	}
	if details := res.Event.Details.(models.ExtremumDetails); details.Bound != 104 {
		t.Errorf("bound = %.0f, want 104", details.Bound)
	}
}

func TestExtremum_FiresExactlyOnce(t *testing.T) {
	d := NewExtremum(extremumConfig())

	// пробой случился на прошлом цикле: наблюдение уже на максимуме
	snap := testSnapshot(d.key, nil, 101, 102, 101, 100, 103)
	snap.Prices[d.key] = 103.5
	st := State{HasObserved: true, LastObserved: 103}

	res, err := d.Evaluate(snap, st, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("cycle after a break must be silent: %s", res.Event.Summary)
	}
	if res.Observed == nil || *res.Observed != 103.5 {
		t.Error("observation must refresh on silent cycles")
	}
}

func TestExtremum_LowBreak(t *testing.T) {
	d := NewExtremum(extremumConfig())
	snap := testSnapshot(d.key, nil, 103, 102, 101, 102, 103)
	snap.Prices[d.key] = 100.5

	res, _ := d.Evaluate(snap, State{}, testNow)
	if res.Event == nil {
		t.Fatal("expected low break event")
	}
	details := res.Event.Details.(models.ExtremumDetails)
	if details.Side != models.ExtremumLow {
		t.Errorf("side = %s, want low", details.Side)
	}
	if details.Bound != 101 {
		t.Errorf("bound = %.0f, want 101", details.Bound)
	}
	if res.Event.Direction != models.DirDown {
		t.Errorf("direction = %s, want DOWN", res.Event.Direction)
	}
}

func TestExtremum_DeadVolumeSuppressesBreak(t *testing.T) {
	d := NewExtremum(extremumConfig())

	// пробой есть, но объём последнего бара мёртвый
	volumes := []float64{1000, 1000, 1000, 1000, 10}
	snap := testSnapshot(d.key, volumes, 100, 101, 102, 101, 100)
	snap.Prices[d.key] = 103

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("break on dead volume must be suppressed: %s", res.Event.Summary)
	}
	if res.Observed == nil {
		t.Error("suppressed cycle must still record the observed price")
	}
}
