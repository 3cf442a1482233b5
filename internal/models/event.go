package models

import "time"

type Direction string

const (
	DirNone Direction = ""
	DirUp   Direction = "UP"
	DirDown Direction = "DOWN"
)

type DetectorKind string

const (
	KindAcceleration DetectorKind = "acceleration"
	KindMomentum     DetectorKind = "momentum"
	KindSpike        DetectorKind = "spike"
	KindRoundLevel   DetectorKind = "round_level"
	KindLevelCross   DetectorKind = "level_cross"
	KindExtremum     DetectorKind = "extremum_break"
	KindDivergence   DetectorKind = "divergence"
	KindDerivatives  DetectorKind = "derivatives"
	KindDominance    DetectorKind = "dominance"
)

// Event — сработавший сигнал. Создаётся детектором, один раз уходит
// в нотифайер и забывается. Details — типизированная нагрузка конкретного
// вида детектора, дискриминатор — Kind().
type Event struct {
	Detector  string // id инстанса, напр. "btc_level"
	FiredAt   time.Time
	Direction Direction
	Magnitude float64 // смысл зависит от вида: % изменения, Δ дивергенции и т.п.
	Summary   string  // короткая строка для логов
	Details   Details
}

type Details interface {
	Kind() DetectorKind
}

type AccelerationDetails struct {
	Symbol       string
	Price        float64
	PrevChange   float64 // % за предыдущий период
	RecentChange float64 // % за последний период
	Diff         float64 // |recent| - |prev|
	VolumeVsAvg  float64 // % к среднему объёму за окно
}

func (AccelerationDetails) Kind() DetectorKind { return KindAcceleration }

type MomentumDetails struct {
	Symbol      string
	Price       float64
	Changes     []float64 // от старого к новому
	TotalChange float64
	PeriodMin   int
	VolumeVsAvg float64
}

func (MomentumDetails) Kind() DetectorKind { return KindMomentum }

type SpikeDetails struct {
	Symbol      string
	From        float64
	To          float64
	Change      float64
	PeriodMin   int
	VolumeVsAvg float64
}

func (SpikeDetails) Kind() DetectorKind { return KindSpike }

type RoundLevelDetails struct {
	Symbol    string
	Level     float64
	Increment float64
	Prev      float64
	Current   float64
	RSI       float64 // 0 если истории не хватило
}

func (RoundLevelDetails) Kind() DetectorKind { return KindRoundLevel }

type LevelCrossDetails struct {
	Pair    string
	Level   float64
	Prev    float64
	Current float64
}

func (LevelCrossDetails) Kind() DetectorKind { return KindLevelCross }

type ExtremumSide string

const (
	ExtremumHigh ExtremumSide = "high"
	ExtremumLow  ExtremumSide = "low"
)

type ExtremumDetails struct {
	Symbol      string
	Side        ExtremumSide
	Bound       float64 // пробитый экстремум
	Current     float64
	WindowHours int
	VolumeVsAvg float64
}

func (ExtremumDetails) Kind() DetectorKind { return KindExtremum }

type HorizonDivergence struct {
	Horizon   int // часы: 1, 4, 8, 24
	BaseChg   float64
	RefChg    float64
	Diff      float64
	Threshold float64
	Hit       bool
}

type DivergenceDetails struct {
	Base        string // "safe-haven" инструмент (PAXG)
	Ref         string // рисковый (BTC)
	Horizons    []HorizonDivergence
	Trigger     HorizonDivergence // горизонт, который сработал
	VolumeVsAvg float64
}

func (DivergenceDetails) Kind() DetectorKind { return KindDivergence }

type Quadrant string

const (
	QuadHealthy     Quadrant = "healthy"
	QuadDanger      Quadrant = "danger"      // переполненный лонг + высокий OI
	QuadOpportunity Quadrant = "opportunity" // переполненный шорт + высокий OI
	QuadCaution     Quadrant = "caution"     // экстремальный funding сам по себе
	QuadWatch       Quadrant = "watch"       // высокий OI при нейтральном funding
)

type DerivativesDetails struct {
	FundingPct       float64 // % за 8 часов
	FundingAnnualPct float64
	OIBillions       float64
	Quadrant         Quadrant
	Risk             string // HIGH/EXTREME/OPPORTUNITY/WATCH
}

func (DerivativesDetails) Kind() DetectorKind { return KindDerivatives }

type DominanceZone string

const (
	ZoneReverse     DominanceZone = "REVERSE"
	ZoneAltBuy      DominanceZone = "ALT_BUY"
	ZonePrepareAlts DominanceZone = "PREPARE_ALTS"
	ZonePrepareBTC  DominanceZone = "PREPARE_BTC"
	ZoneSellAlts    DominanceZone = "SELL_ALTS"
)

type DominanceDetails struct {
	Current  float64
	Delta24h float64 // оценка момента за сутки
	Zone     DominanceZone
	Reasons  []string // что именно сработало
	Edge     string   // пояснение edge-условия, пусто если нет
}

func (DominanceDetails) Kind() DetectorKind { return KindDominance }
