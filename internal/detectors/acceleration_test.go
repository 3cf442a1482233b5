package detectors

import (
	"testing"
	"time"

	"signal_monitor/internal/models"
)

func accelerationConfig() AccelerationConfig {
	return AccelerationConfig{
		Enabled: true, Symbol: "BTC", Quote: "USD",
		PeriodMin: 2, MinDiff: 0.5, Cooldown: 30 * time.Minute,
	}
}

func TestAcceleration_FiresWhenMoveSpeedsUp(t *testing.T) {
	d := NewAcceleration(accelerationConfig())
	// предыдущее окно плоское, последнее +1%
	snap := testSnapshot(d.key, nil, 100, 100, 100, 100.4, 101)

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event == nil {
		t.Fatal("expected acceleration event")
	}
	if res.Event.Direction != models.DirUp {
		t.Errorf("direction = %s, want UP", res.Event.Direction)
	}

	details := res.Event.Details.(models.AccelerationDetails)
	if details.Diff < 0.5 {
		t.Errorf("diff = %.2f, want >= 0.5", details.Diff)
	}
}

func TestAcceleration_SteadyMoveStaysSilent(t *testing.T) {
	d := NewAcceleration(accelerationConfig())
	// оба окна примерно по +0.5%, ускорения нет
	snap := testSnapshot(d.key, nil, 100, 100.25, 100.5, 100.75, 101)

	res, err := d.Evaluate(snap, State{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Event != nil {
		t.Errorf("unexpected event on steady move: %s", res.Event.Summary)
	}
}

func TestAcceleration_DecelerationStaysSilent(t *testing.T) {
	d := NewAcceleration(accelerationConfig())
	// резкое движение было в прошлом окне, не в текущем
	snap := testSnapshot(d.key, nil, 100, 100.5, 101, 101, 101)

	res, _ := d.Evaluate(snap, State{}, testNow)
	if res.Event != nil {
		t.Errorf("unexpected event on deceleration: %s", res.Event.Summary)
	}
}
