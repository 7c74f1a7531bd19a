package calculator

import (
	"math"
	"time"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

// ComputeOpeningRange builds the opening-range band from intraday candles.
// Only candles inside the closed-closed window [open, open+orbMinutes] count.
// The second return value is false when no candle falls inside the window;
// that is a normal outcome the scheduler handles by skipping the symbol.
func ComputeOpeningRange(symbol string, candles []model.Candle, open time.Time, orbMinutes int) (model.OpeningRange, bool) {
	end := open.Add(time.Duration(orbMinutes) * time.Minute)

	high := math.Inf(-1)
	low := math.Inf(1)
	seen := false
	for _, c := range candles {
		if c.Time.Before(open) || c.Time.After(end) {
			continue
		}
		seen = true
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	if !seen {
		return model.OpeningRange{}, false
	}

	return model.OpeningRange{
		Symbol: symbol,
		High:   high,
		Low:    low,
		Width:  high - low,
		Start:  open,
		End:    end,
	}, true
}
