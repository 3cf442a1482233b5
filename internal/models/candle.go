package models

import "time"

type Granularity string

const (
	GranMinute Granularity = "minute"
	GranHour   Granularity = "hour"
)

// Candle — один бар OHLCV. После создания не мутируется.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ScalarPoint — одиночная метрика без OHLCV (funding rate, dominance и т.п.).
type ScalarPoint struct {
	Time  time.Time
	Value float64
}
