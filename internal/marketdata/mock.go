package marketdata

import (
	"time"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Candles can be set per symbol/interval; unset combinations fall back to a
// generated series around Price.
type MockFetcher struct {
	Price    float64
	Candles  map[string][]model.Candle // keyed by symbol+"/"+interval
	PriceErr error
	FetchErr error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(symbol, _ string, interval string) ([]model.Candle, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.Candles != nil {
		return m.Candles[symbol+"/"+interval], nil
	}
	return generateMockCandles(m.Price, 30), nil
}

func (m *MockFetcher) FetchCurrentPrice(string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func generateMockCandles(basePrice float64, count int) []model.Candle {
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Time:   time.Now().Add(-time.Duration(count-i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 100000,
		}
	}
	return candles
}
