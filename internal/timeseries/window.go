package timeseries

import (
	"signal_monitor/internal/models"

	"github.com/pkg/errors"
)

var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrMalformedData       = errors.New("malformed series data")
)

// Window — неизменяемое окно последних баров одного инструмента.
// Живёт один цикл проверки, между циклами не переиспользуется.
// periodsAgo везде считается от свежего бара: At(0) == Latest().
type Window struct {
	candles []models.Candle
}

func New(candles []models.Candle) (*Window, error) {
	if len(candles) == 0 {
		return nil, errors.Wrap(ErrInsufficientHistory, "empty series")
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].Time.Before(candles[i-1].Time) {
			return nil, errors.Wrapf(ErrMalformedData, "bars out of order at %d", i)
		}
	}
	return &Window{candles: candles}, nil
}

func (w *Window) Len() int { return len(w.candles) }

func (w *Window) Latest() models.Candle { return w.candles[len(w.candles)-1] }

func (w *Window) At(periodsAgo int) (models.Candle, error) {
	idx := len(w.candles) - 1 - periodsAgo
	if periodsAgo < 0 || idx < 0 {
		return models.Candle{}, errors.Wrapf(ErrInsufficientHistory, "need %d periods back, have %d bars", periodsAgo, len(w.candles))
	}
	return w.candles[idx], nil
}

// Slice — последние lastK баров, от старого к новому.
func (w *Window) Slice(lastK int) ([]models.Candle, error) {
	if lastK <= 0 || lastK > len(w.candles) {
		return nil, errors.Wrapf(ErrInsufficientHistory, "need %d bars, have %d", lastK, len(w.candles))
	}
	return w.candles[len(w.candles)-lastK:], nil
}

// Change — процентное изменение close за periodsAgo периодов.
func (w *Window) Change(periodsAgo int) (float64, error) {
	from, err := w.At(periodsAgo)
	if err != nil {
		return 0, err
	}
	if from.Close == 0 {
		return 0, errors.Wrap(ErrMalformedData, "zero base price")
	}
	return (w.Latest().Close - from.Close) / from.Close * 100, nil
}

// MaxClose — максимум close среди count баров, начиная с periodsAgo=from.
// MaxClose(1, k) — окно из k баров, не включающее текущий.
func (w *Window) MaxClose(from, count int) (float64, error) {
	bars, err := w.rangeBars(from, count)
	if err != nil {
		return 0, err
	}
	max := bars[0].Close
	for _, c := range bars[1:] {
		if c.Close > max {
			max = c.Close
		}
	}
	return max, nil
}

func (w *Window) MinClose(from, count int) (float64, error) {
	bars, err := w.rangeBars(from, count)
	if err != nil {
		return 0, err
	}
	min := bars[0].Close
	for _, c := range bars[1:] {
		if c.Close < min {
			min = c.Close
		}
	}
	return min, nil
}

func (w *Window) RollingMax(lastK int) (float64, error) { return w.MaxClose(0, lastK) }
func (w *Window) RollingMin(lastK int) (float64, error) { return w.MinClose(0, lastK) }

func (w *Window) SumVolume(lastK int) (float64, error) {
	bars, err := w.Slice(lastK)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range bars {
		sum += c.Volume
	}
	return sum, nil
}

// AvgVolume — средний объём на бар по всему окну.
func (w *Window) AvgVolume() float64 {
	var sum float64
	for _, c := range w.candles {
		sum += c.Volume
	}
	return sum / float64(len(w.candles))
}

// VolumeVsAvg — на сколько процентов суммарный объём последних lastK баров
// отклоняется от среднего объёма такого же размера по всему окну.
func (w *Window) VolumeVsAvg(lastK int) (float64, error) {
	recent, err := w.SumVolume(lastK)
	if err != nil {
		return 0, err
	}
	base := w.AvgVolume() * float64(lastK)
	if base == 0 {
		return 0, nil
	}
	return (recent/base - 1) * 100, nil
}

func (w *Window) Closes(lastK int) ([]float64, error) {
	bars, err := w.Slice(lastK)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(bars))
	for i, c := range bars {
		out[i] = c.Close
	}
	return out, nil
}

func (w *Window) rangeBars(from, count int) ([]models.Candle, error) {
	if from < 0 || count <= 0 {
		return nil, errors.Wrap(ErrInsufficientHistory, "bad range")
	}
	hi := len(w.candles) - from      // экскл.
	lo := hi - count
	if lo < 0 || hi <= lo {
		return nil, errors.Wrapf(ErrInsufficientHistory, "need %d bars ending %d ago, have %d", count, from, len(w.candles))
	}
	return w.candles[lo:hi], nil
}
