package model

import "time"

// Direction classifies a breakout relative to the opening range.
type Direction string

const (
	DirectionNone    Direction = ""
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
)

// OpeningRange is the high/low band observed during the opening-range window.
// Immutable once computed; one instance per symbol per trading day.
type OpeningRange struct {
	Symbol string
	High   float64
	Low    float64
	Width  float64
	Start  time.Time
	End    time.Time
}

// SignalKey identifies a breakout signal for per-day deduplication. BarUnix is
// the closed candle's timestamp truncated to the minute, stored as Unix
// seconds so keys compare equal regardless of the timestamp's location.
type SignalKey struct {
	Symbol    string
	Timeframe string
	BarUnix   int64
}

// NewSignalKey builds the dedup key for a closed candle.
func NewSignalKey(symbol, timeframe string, bar time.Time) SignalKey {
	return SignalKey{
		Symbol:    symbol,
		Timeframe: timeframe,
		BarUnix:   bar.Truncate(time.Minute).Unix(),
	}
}

// BreakoutSignal is the final output of the detection pipeline. Built once,
// dispatched once, not held in session state.
type BreakoutSignal struct {
	Symbol       string
	Direction    Direction
	Timeframe    string
	TriggerPrice float64
	Range        OpeningRange
	DetectedAt   time.Time
}
