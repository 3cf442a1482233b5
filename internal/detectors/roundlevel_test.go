package detectors

import (
	"testing"
	"time"

	"signal_monitor/internal/models"
)

func roundConfig() RoundLevelConfig {
	return RoundLevelConfig{
		Enabled: true, Name: "btc_round", Symbol: "BTC", Quote: "USD",
		Increment: 2000, RSIPeriod: 14, Cooldown: 4 * time.Hour,
	}
}

func priceOnly(key SeriesKey, price float64) Snapshot {
	snap := scalarSnapshot(nil)
	snap.Prices[key] = price
	return snap
}

func TestRoundLevel_FirstRunOnlyRecordsBaseline(t *testing.T) {
	d := NewRoundLevel(roundConfig())

	res, err := d.Evaluate(priceOnly(d.key, 99500), State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Error("first run must not fire")
	}
	if res.Observed == nil || *res.Observed != 99500 {
		t.Fatal("first run must record the observed price")
	}
}

func TestRoundLevel_FiresOnBucketChange(t *testing.T) {
	d := NewRoundLevel(roundConfig())
	st := State{LastObserved: 99500, HasObserved: true}

	res, err := d.Evaluate(priceOnly(d.key, 100100), st, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("expected event: 98k bucket -> 100k bucket")
	}
	if res.Event.Direction != models.DirUp {
		t.Errorf("direction = %s, want UP", res.Event.Direction)
	}

	details := res.Event.Details.(models.RoundLevelDetails)
	if details.Level != 100000 {
		t.Errorf("level = %.0f, want 100000", details.Level)
	}
}

func TestRoundLevel_SameBucketIsIdempotent(t *testing.T) {
	d := NewRoundLevel(roundConfig())
	st := State{LastObserved: 100100, HasObserved: true}

	// цена гуляет внутри бакета 100k..102k — тишина
	for _, price := range []float64{100500, 101900, 100001} {
		res, err := d.Evaluate(priceOnly(d.key, price), st, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if res.Event != nil {
			t.Errorf("unexpected event at %.0f: %s", price, res.Event.Summary)
		}
		if res.Observed == nil {
			t.Errorf("observed must refresh even without an event")
		}
		st = apply(st, res, testNow)
	}
}

func TestRoundLevel_CooldownStillRefreshesBaseline(t *testing.T) {
	d := NewRoundLevel(roundConfig())
	st := State{LastObserved: 99500, HasObserved: true, LastFiredAt: testNow.Add(-time.Hour)}

	res, err := d.Evaluate(priceOnly(d.key, 100100), st, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Error("event fired inside cooldown")
	}
	// база сдвинулась: после кулдауна этот же уровень не перекроется заново
	if res.Observed == nil || *res.Observed != 100100 {
		t.Error("baseline must refresh during cooldown")
	}
}

func TestRoundLevel_DownCross(t *testing.T) {
	d := NewRoundLevel(roundConfig())
	st := State{LastObserved: 100100, HasObserved: true}

	res, _ := d.Evaluate(priceOnly(d.key, 99800), st, testNow)
	if res.Event == nil {
		t.Fatal("expected event on down cross")
	}
	if res.Event.Direction != models.DirDown {
		t.Errorf("direction = %s, want DOWN", res.Event.Direction)
	}
	details := res.Event.Details.(models.RoundLevelDetails)
	if details.Level != 100000 {
		t.Errorf("level = %.0f, want 100000", details.Level)
	}
}
