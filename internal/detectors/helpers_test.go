package detectors

import (
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/internal/timeseries"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testBars(gran models.Granularity, volumes []float64, closes ...float64) []models.Candle {
	step := time.Minute
	if gran == models.GranHour {
		step = time.Hour
	}
	start := testNow.Add(-time.Duration(len(closes)) * step)

	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		vol := 100.0
		if volumes != nil {
			vol = volumes[i]
		}
		out[i] = models.Candle{Time: start.Add(time.Duration(i) * step), Close: c, Volume: vol}
	}
	return out
}

func testSnapshot(key SeriesKey, volumes []float64, closes ...float64) Snapshot {
	w, err := timeseries.New(testBars(key.Gran, volumes, closes...))
	if err != nil {
		panic(err)
	}
	return Snapshot{
		Series:  map[SeriesKey]*timeseries.Window{key: w},
		Prices:  map[SeriesKey]float64{},
		Scalars: map[string]models.ScalarPoint{},
	}
}

func scalarSnapshot(values map[string]float64) Snapshot {
	snap := Snapshot{
		Series:  map[SeriesKey]*timeseries.Window{},
		Prices:  map[SeriesKey]float64{},
		Scalars: map[string]models.ScalarPoint{},
	}
	for name, v := range values {
		snap.Scalars[name] = models.ScalarPoint{Time: testNow, Value: v}
	}
	return snap
}

// apply повторяет правило координатора: Observed всегда, LastFiredAt
// только при событии.
func apply(st State, res Result, now time.Time) State {
	if res.Observed != nil {
		st.LastObserved = *res.Observed
		st.HasObserved = true
	}
	if res.Event != nil {
		st.LastFiredAt = now
	}
	return st
}
