package models

import "time"

// MarketSnapshot — срез рынка для утренних/вечерних отчётов и
// сравнения неделя к неделе.
type MarketSnapshot struct {
	ID         int64
	TakenAt    time.Time
	Prices     map[string]float64 // символ -> цена в USD
	Dominance  float64
	FundingPct float64
	OIBillions float64
}
