package detectors

import (
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/internal/timeseries"

	"github.com/pkg/errors"
)

// Ошибки уровня "этот цикл пропускаем, детектор молчит".
var (
	ErrSeriesUnavailable = errors.New("series unavailable this cycle")
	ErrScalarUnavailable = errors.New("scalar unavailable this cycle")
)

// SeriesKey идентифицирует один ряд данных: инструмент, валюта котировки,
// гранулярность.
type SeriesKey struct {
	Symbol string
	Quote  string
	Gran   models.Granularity
}

func (k SeriesKey) String() string {
	return k.Symbol + "/" + k.Quote + ":" + string(k.Gran)
}

type SeriesReq struct {
	Key    SeriesKey
	Length int
}

// Requirement — что детектору нужно от рынка. Координатор собирает
// требования всех детекторов и ходит за каждым рядом один раз за цикл.
type Requirement struct {
	Series  []SeriesReq
	Scalars []string
}

// Snapshot — всё, что успели скачать в этом цикле. Ряды, которые скачать
// не удалось, в мапах отсутствуют — зависящие от них детекторы молчат,
// остальных это не касается.
type Snapshot struct {
	Series  map[SeriesKey]*timeseries.Window
	Prices  map[SeriesKey]float64 // текущая цена (стрим либо последний close)
	Scalars map[string]models.ScalarPoint
}

func (s Snapshot) Window(key SeriesKey, minLen int) (*timeseries.Window, error) {
	w, ok := s.Series[key]
	if !ok {
		return nil, errors.Wrap(ErrSeriesUnavailable, key.String())
	}
	if w.Len() < minLen {
		return nil, errors.Wrapf(timeseries.ErrInsufficientHistory, "%s: need %d, have %d", key, minLen, w.Len())
	}
	return w, nil
}

func (s Snapshot) Price(key SeriesKey) (float64, error) {
	if p, ok := s.Prices[key]; ok && p > 0 {
		return p, nil
	}
	if w, ok := s.Series[key]; ok {
		return w.Latest().Close, nil
	}
	return 0, errors.Wrap(ErrSeriesUnavailable, key.String())
}

func (s Snapshot) Scalar(name string) (models.ScalarPoint, error) {
	p, ok := s.Scalars[name]
	if !ok {
		return models.ScalarPoint{}, errors.Wrap(ErrScalarUnavailable, name)
	}
	return p, nil
}

// State — память детектора между циклами. LastObserved обновляется каждый
// успешный цикл (база для кроссингов), LastFiredAt — только при срабатывании.
type State struct {
	LastFiredAt  time.Time
	LastObserved float64
	HasObserved  bool
}

func (st State) Cooled(now time.Time, cooldown time.Duration) bool {
	return st.LastFiredAt.IsZero() || now.Sub(st.LastFiredAt) >= cooldown
}

// Result — исход одной оценки. Координатор применяет Observed всегда,
// а LastFiredAt — только если Event != nil.
type Result struct {
	Event    *models.Event
	Observed *float64
}

func observe(v float64) *float64 { return &v }

// Detector — чистая функция над свежими окнами. Никакого I/O, никаких
// побочных эффектов: всю мутацию состояния делает координатор.
type Detector interface {
	ID() string
	Requires() Requirement
	Evaluate(snap Snapshot, st State, now time.Time) (Result, error)
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

func direction(change float64) models.Direction {
	if change > 0 {
		return models.DirUp
	}
	if change < 0 {
		return models.DirDown
	}
	return models.DirNone
}

// rsi — классический RSI по close, 0 если данных мало.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 0
	}
	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}
