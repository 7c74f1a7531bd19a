package calculator

import (
	"testing"
	"time"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

var nyc, _ = time.LoadLocation("America/New_York")

func candleAt(t time.Time, high, low float64) model.Candle {
	return model.Candle{Time: t, Open: low, High: high, Low: low, Close: high, Volume: 1000}
}

func TestComputeOpeningRange(t *testing.T) {
	open := time.Date(2026, 1, 6, 9, 30, 0, 0, nyc)

	tests := []struct {
		name     string
		candles  []model.Candle
		wantOK   bool
		wantHigh float64
		wantLow  float64
	}{
		{
			name: "basic window",
			candles: []model.Candle{
				candleAt(open, 100.5, 99.8),
				candleAt(open.Add(5*time.Minute), 101.2, 100.1),
				candleAt(open.Add(10*time.Minute), 100.9, 99.5),
			},
			wantOK:   true,
			wantHigh: 101.2,
			wantLow:  99.5,
		},
		{
			name: "window bounds are inclusive",
			candles: []model.Candle{
				candleAt(open, 100, 99),
				candleAt(open.Add(15*time.Minute), 102, 98),
			},
			wantOK:   true,
			wantHigh: 102,
			wantLow:  98,
		},
		{
			name: "candles outside window are ignored",
			candles: []model.Candle{
				candleAt(open.Add(-5*time.Minute), 200, 50),
				candleAt(open.Add(2*time.Minute), 100, 99),
				candleAt(open.Add(16*time.Minute), 300, 10),
			},
			wantOK:   true,
			wantHigh: 100,
			wantLow:  99,
		},
		{
			name: "entirely outside window",
			candles: []model.Candle{
				candleAt(open.Add(-30*time.Minute), 100, 99),
				candleAt(open.Add(20*time.Minute), 101, 100),
			},
			wantOK: false,
		},
		{
			name:    "no candles at all",
			candles: nil,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, ok := ComputeOpeningRange("SPY", tt.candles, open, 15)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if rng.High != tt.wantHigh {
				t.Errorf("high = %.2f, want %.2f", rng.High, tt.wantHigh)
			}
			if rng.Low != tt.wantLow {
				t.Errorf("low = %.2f, want %.2f", rng.Low, tt.wantLow)
			}
			if rng.High < rng.Low {
				t.Errorf("invariant violated: high %.2f < low %.2f", rng.High, rng.Low)
			}
			if got := rng.High - rng.Low; rng.Width != got {
				t.Errorf("width = %.2f, want %.2f", rng.Width, got)
			}
			if !rng.End.Equal(rng.Start.Add(15 * time.Minute)) {
				t.Errorf("end = %v, want start+15m", rng.End)
			}
			if rng.Symbol != "SPY" {
				t.Errorf("symbol = %q", rng.Symbol)
			}
		})
	}
}

func TestComputeOpeningRange_TimestampsFromOtherZones(t *testing.T) {
	// A UTC-stamped candle inside the window must still count.
	open := time.Date(2026, 1, 6, 9, 30, 0, 0, nyc)
	utcCandle := candleAt(open.Add(5*time.Minute).UTC(), 105, 95)

	rng, ok := ComputeOpeningRange("QQQ", []model.Candle{utcCandle}, open, 15)
	if !ok {
		t.Fatal("expected range from UTC-stamped candle inside window")
	}
	if rng.High != 105 || rng.Low != 95 {
		t.Errorf("got high=%.2f low=%.2f", rng.High, rng.Low)
	}
}
