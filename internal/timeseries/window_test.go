package timeseries

import (
	"testing"
	"time"

	"signal_monitor/internal/models"

	"github.com/pkg/errors"
)

func bars(closes ...float64) []models.Candle {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Time: start.Add(time.Duration(i) * time.Minute), Close: c, Volume: 100}
	}
	return out
}

func TestWindow_AtCountsFromLatest(t *testing.T) {
	w, err := New(bars(100, 101, 102, 103))
	if err != nil {
		t.Fatal(err)
	}

	latest, _ := w.At(0)
	if latest.Close != 103 {
		t.Errorf("At(0) = %.0f, want 103", latest.Close)
	}
	oldest, _ := w.At(3)
	if oldest.Close != 100 {
		t.Errorf("At(3) = %.0f, want 100", oldest.Close)
	}
	if _, err := w.At(4); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("At(4) error = %v, want insufficient history", err)
	}
}

func TestWindow_RejectsUnorderedBars(t *testing.T) {
	b := bars(100, 101, 102)
	b[1].Time = b[2].Time.Add(time.Hour)

	if _, err := New(b); !errors.Is(err, ErrMalformedData) {
		t.Errorf("New(unordered) error = %v, want malformed data", err)
	}
	if _, err := New(nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("New(empty) error = %v, want insufficient history", err)
	}
}

func TestWindow_Change(t *testing.T) {
	w, _ := New(bars(100, 105, 110))

	chg, err := w.Change(2)
	if err != nil {
		t.Fatal(err)
	}
	if chg != 10 {
		t.Errorf("Change(2) = %.2f, want 10", chg)
	}
}

func TestWindow_MaxCloseExcludesCurrentBar(t *testing.T) {
	w, _ := New(bars(100, 105, 102, 110))

	// окно из трёх баров до текущего: 100, 105, 102
	max, err := w.MaxClose(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if max != 105 {
		t.Errorf("MaxClose(1, 3) = %.0f, want 105", max)
	}

	min, _ := w.MinClose(1, 3)
	if min != 100 {
		t.Errorf("MinClose(1, 3) = %.0f, want 100", min)
	}
}

func TestWindow_VolumeVsAvg(t *testing.T) {
	b := bars(100, 100, 100, 100)
	b[3].Volume = 400 // остальные по 100, среднее 175

	w, _ := New(b)
	got, err := w.VolumeVsAvg(1)
	if err != nil {
		t.Fatal(err)
	}
	// 400 против среднего 175 — примерно +128.6%
	if got < 128 || got > 129 {
		t.Errorf("VolumeVsAvg(1) = %.2f, want ~128.6", got)
	}
}
