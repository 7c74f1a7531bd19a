package notifier

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/metrics"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

// ErrAllSinksFailed is returned by Notify when no sink delivered the message.
var ErrAllSinksFailed = errors.New("all notification sinks failed")

// Sink delivers a notification over one transport.
type Sink interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

// Dispatcher fans notifications out to all configured sinks. A failing sink
// never prevents the others from being attempted and never propagates to the
// scheduler beyond the all-failed case that the after-dispatch commit policy
// consumes.
type Dispatcher struct {
	sinks []Sink
	log   *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given sinks.
func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, log: log}
}

// BuildSignal constructs a BreakoutSignal. Pure; the caller fetches the
// current price once before calling.
func BuildSignal(symbol string, dir model.Direction, timeframe string, currentPrice float64, rng model.OpeningRange, at time.Time) model.BreakoutSignal {
	return model.BreakoutSignal{
		Symbol:       symbol,
		Direction:    dir,
		Timeframe:    timeframe,
		TriggerPrice: currentPrice,
		Range:        rng,
		DetectedAt:   at,
	}
}

// DispatchSignal formats and fans out a breakout signal.
func (d *Dispatcher) DispatchSignal(ctx context.Context, sig model.BreakoutSignal) error {
	title, body := FormatBreakout(sig)
	return d.Notify(ctx, title, body)
}

// Notify sends title/body through every sink. Returns nil if at least one
// sink delivered (or none are configured), ErrAllSinksFailed otherwise.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) error {
	if len(d.sinks) == 0 {
		d.log.Info("no sinks configured, notification logged only", zap.String("title", title))
		return nil
	}

	delivered := 0
	for _, s := range d.sinks {
		if err := s.Send(ctx, title, body); err != nil {
			metrics.NotifyFailures.WithLabelValues(s.Name()).Inc()
			d.log.Error("sink send failed",
				zap.String("sink", s.Name()),
				zap.String("title", title),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return ErrAllSinksFailed
	}
	return nil
}
