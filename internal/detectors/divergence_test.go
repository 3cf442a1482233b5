package detectors

import (
	"testing"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/internal/timeseries"
)

func divergenceConfig() DivergenceConfig {
	return DivergenceConfig{
		Enabled: true, Base: "PAXG", Ref: "BTC", Quote: "USD",
		Horizons: []DivergenceHorizon{
			{Hours: 1, Threshold: 1.0},
			{Hours: 4, Threshold: 2.0},
		},
		AvgVolumeHours: 4, MinVolumeVsAvg: -50,
		Cooldown: 2 * time.Hour,
	}
}

func pairSnapshot(d *Divergence, baseVolumes []float64, baseCloses, refCloses []float64) Snapshot {
	baseW, err := timeseries.New(testBars(models.GranHour, baseVolumes, baseCloses...))
	if err != nil {
		panic(err)
	}
	refW, err := timeseries.New(testBars(models.GranHour, nil, refCloses...))
	if err != nil {
		panic(err)
	}
	return Snapshot{
		Series: map[SeriesKey]*timeseries.Window{
			d.baseKey: baseW,
			d.refKey:  refW,
		},
		Prices:  map[SeriesKey]float64{},
		Scalars: map[string]models.ScalarPoint{},
	}
}

func TestDivergence_FiresOnLongestHitHorizon(t *testing.T) {
	d := NewDivergence(divergenceConfig())

	// золото +3% за 4 часа, биткоин на месте: оба горизонта в зачёте
	snap := pairSnapshot(d, nil,
		[]float64{100, 100, 100, 100, 103},
		[]float64{100, 100, 100, 100, 100},
	)

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("expected divergence event")
	}

	details := res.Event.Details.(models.DivergenceDetails)
	if details.Trigger.Horizon != 4 {
		t.Errorf("trigger horizon = %d, want 4 (the longest hit)", details.Trigger.Horizon)
	}
	if details.Trigger.Diff < 2.9 || details.Trigger.Diff > 3.1 {
		t.Errorf("diff = %.2f, want ~3.0", details.Trigger.Diff)
	}
	if res.Event.Direction != models.DirUp {
		t.Errorf("direction = %s, want UP", res.Event.Direction)
	}
}

func TestDivergence_ParallelMovesStaySilent(t *testing.T) {
	d := NewDivergence(divergenceConfig())

	// оба растут одинаково — расхождения нет
	snap := pairSnapshot(d, nil,
		[]float64{100, 100.5, 101, 101.5, 102},
		[]float64{200, 201, 202, 203, 204},
	)

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("unexpected event on parallel moves: %s", res.Event.Summary)
	}
}

func TestDivergence_DeadVolumeSuppresses(t *testing.T) {
	d := NewDivergence(divergenceConfig())

	// расхождение есть, но объём базового актива рухнул
	snap := pairSnapshot(d,
		[]float64{1000, 10, 10, 10, 10},
		[]float64{100, 100, 100, 100, 103},
		[]float64{100, 100, 100, 100, 100},
	)

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("divergence on dead volume must be suppressed: %s", res.Event.Summary)
	}
}

func TestDivergence_NegativeDivergence(t *testing.T) {
	d := NewDivergence(divergenceConfig())

	// золото на месте, биткоин +3%: расхождение отрицательное
	snap := pairSnapshot(d, nil,
		[]float64{100, 100, 100, 100, 100},
		[]float64{100, 100, 100, 100, 103},
	)

	res, _ := d.Evaluate(snap, State{}, testNow)
	if res.Event == nil {
		t.Fatal("expected event on negative divergence")
	}
	if res.Event.Direction != models.DirDown {
		t.Errorf("direction = %s, want DOWN", res.Event.Direction)
	}
}
