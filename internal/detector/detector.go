package detector

import (
	"go.uber.org/zap"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/config"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/session"
)

// Detector classifies closed candles against an opening range and enforces
// the per-day fire-once guarantee.
type Detector struct {
	commitOnDetect bool
	log            *zap.Logger
}

// New creates a Detector. commitPolicy is one of the config.Commit* values:
// under fire_once the dedup key is committed inside Check the moment a
// direction is classified; under after_dispatch the caller commits it once
// the dispatcher reports delivery.
func New(commitPolicy string, log *zap.Logger) *Detector {
	return &Detector{
		commitOnDetect: commitPolicy != config.CommitAfterDispatch,
		log:            log,
	}
}

// Check evaluates the last fully closed candle of a timeframe against the
// opening range. The final candle is treated as still forming: only its
// timestamp is read, to gate evaluation until the range window is strictly
// behind us. A repeated key returns DirectionNone without re-evaluating.
func (d *Detector) Check(symbol, timeframe string, candles []model.Candle, rng model.OpeningRange, st *session.State) (model.Direction, model.SignalKey) {
	if len(candles) < 2 {
		return model.DirectionNone, model.SignalKey{}
	}

	latest := candles[len(candles)-1]
	if !latest.Time.After(rng.End) {
		// the range window itself is exempt from breakout checks
		return model.DirectionNone, model.SignalKey{}
	}

	closed := candles[len(candles)-2]
	key := model.NewSignalKey(symbol, timeframe, closed.Time)
	if st.HasFired(key) {
		return model.DirectionNone, key
	}

	var dir model.Direction
	switch {
	case closed.Close > rng.High:
		dir = model.DirectionBullish
	case closed.Close < rng.Low:
		dir = model.DirectionBearish
	default:
		return model.DirectionNone, key
	}

	if d.commitOnDetect {
		st.MarkFired(key)
	}
	d.log.Info("breakout detected",
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe),
		zap.String("direction", string(dir)),
		zap.Float64("close", closed.Close),
		zap.Float64("orb_high", rng.High),
		zap.Float64("orb_low", rng.Low),
	)
	return dir, key
}

// CommitsOnDetect reports whether Check commits the dedup key itself.
func (d *Detector) CommitsOnDetect() bool { return d.commitOnDetect }
