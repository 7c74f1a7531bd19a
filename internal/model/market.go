package model

import "time"

// Candle represents a single candlestick bar. Time is always expressed in the
// exchange time zone; the fetcher converts at decode time so downstream code
// never compares timestamps across zones.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
