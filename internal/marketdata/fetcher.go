package marketdata

import "github.com/DihyahAdib/ORBS-Trading-bot/internal/model"

// Fetcher defines the interface for fetching market data. An empty candle
// slice is a valid response; errors mean transport failure, which callers
// treat the same way.
type Fetcher interface {
	FetchCandles(symbol, period, interval string) ([]model.Candle, error)
	FetchCurrentPrice(symbol string) (float64, error)
	Name() string
}
