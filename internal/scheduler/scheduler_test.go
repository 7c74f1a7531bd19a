package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/clock"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/config"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/detector"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/marketdata"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/notifier"
)

var nyc, _ = time.LoadLocation("America/New_York")

// tradingDay is a Tuesday.
var tradingDay = time.Date(2026, 1, 6, 0, 0, 0, 0, nyc)

func at(hour, min int) time.Time {
	return time.Date(2026, 1, 6, hour, min, 0, 0, nyc)
}

func flatCandle(t time.Time, price float64) model.Candle {
	return model.Candle{Time: t, Open: price, High: price, Low: price, Close: price, Volume: 1000}
}

// rangeWindowCandles returns 1m candles covering 09:30-09:44 with a
// 101.00/100.00 band.
func rangeWindowCandles() []model.Candle {
	out := []model.Candle{
		{Time: at(9, 30), Open: 100.2, High: 101.0, Low: 100.0, Close: 100.8, Volume: 1000},
	}
	for i := 1; i < 15; i++ {
		out = append(out, model.Candle{
			Time: at(9, 30+i), Open: 100.4, High: 100.9, Low: 100.1, Close: 100.5, Volume: 1000,
		})
	}
	return out
}

// breakoutSeries ends with a closed candle at closedClose and an in-progress
// candle past the range window.
func breakoutSeries(closedClose float64) []model.Candle {
	return []model.Candle{
		flatCandle(at(9, 40), 100.5),
		flatCandle(at(9, 45), closedClose),
		flatCandle(at(9, 50), closedClose),
	}
}

type captureSink struct {
	mu     sync.Mutex
	err    error
	titles []string
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Send(_ context.Context, title, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.titles = append(c.titles, title)
	return nil
}

func (c *captureSink) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.titles...)
}

func (c *captureSink) contains(substr string) bool {
	for _, t := range c.sent() {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

type captureRecorder struct {
	mu      sync.Mutex
	ranges  []model.OpeningRange
	signals []model.BreakoutSignal
}

func (r *captureRecorder) RecordRange(rng model.OpeningRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, rng)
	return nil
}

func (r *captureRecorder) RecordSignal(sig model.BreakoutSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
	return nil
}

func (r *captureRecorder) Close() error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Symbols = []string{"SPY", "MISS"}
	cfg.ORB.Minutes = 15
	cfg.ORB.ExecutionTimeframes = []string{"5m"}
	cfg.Schedule.TickIntervalSeconds = 10
	cfg.Schedule.IdleIntervalSeconds = 300
	cfg.Schedule.StatusSnapshotMinutes = 5
	cfg.Schedule.PremarketReminderMinutes = 30
	cfg.Schedule.RecapCron = "0 10 16 * * 1-5"
	cfg.Alerts.PremarketReminder = true
	cfg.Alerts.MarketOpenNotice = true
	cfg.Alerts.SignalCommit = config.CommitFireOnce
	return cfg
}

func newTestScheduler(t *testing.T, cfg *config.Config, fetcher marketdata.Fetcher, sink notifier.Sink) (*Scheduler, *captureRecorder) {
	t.Helper()
	clk, err := clock.New("America/New_York", "09:30", "16:00", "04:00", "20:00")
	require.NoError(t, err)

	rec := &captureRecorder{}
	log := zap.NewNop()
	det := detector.New(cfg.Alerts.SignalCommit, log)
	dispatch := notifier.NewDispatcher(log, sink)
	return New(cfg, clk, fetcher, det, dispatch, rec, log), rec
}

func TestTick_FullDayFlow(t *testing.T) {
	cfg := testConfig()
	sink := &captureSink{}
	fetcher := &marketdata.MockFetcher{
		Price: 101.80,
		Candles: map[string][]model.Candle{
			"SPY/1m": rangeWindowCandles(),
			"SPY/5m": breakoutSeries(101.50),
			// MISS has no data at all (Scenario D)
		},
	}
	s, rec := newTestScheduler(t, cfg, fetcher, sink)

	// Before the range-ready mark: regular hours but no range yet.
	interval := s.tick(at(9, 40))
	assert.Equal(t, 10*time.Second, interval, "scan interval inside regular hours")
	assert.False(t, s.state.RangeComputed())
	assert.True(t, sink.contains("Market Open"), "one-shot open notice on first regular-hours tick")

	// Range-ready mark passed: compute ranges, then scan.
	s.tick(at(9, 50))
	require.True(t, s.state.RangeComputed(), "computed even though MISS had no data")

	rng, ok := s.state.Range("SPY")
	require.True(t, ok)
	assert.Equal(t, 101.0, rng.High)
	assert.Equal(t, 100.0, rng.Low)
	_, ok = s.state.Range("MISS")
	assert.False(t, ok, "symbol without window data is simply omitted")

	assert.True(t, sink.contains("ORB Levels Calculated"))
	assert.True(t, sink.contains("BULLISH"), "breakout dispatched on the same tick")

	require.Len(t, rec.ranges, 1)
	require.Len(t, rec.signals, 1)
	assert.Equal(t, model.DirectionBullish, rec.signals[0].Direction)
	assert.Equal(t, 101.80, rec.signals[0].TriggerPrice)

	// Same candles next tick: deduplicated, nothing new dispatched.
	before := len(sink.sent())
	s.tick(at(9, 51))
	assert.Len(t, rec.signals, 1)
	assert.Equal(t, before, len(sink.sent()))
}

func TestTick_CalendarRolloverResetsState(t *testing.T) {
	cfg := testConfig()
	sink := &captureSink{}
	fetcher := &marketdata.MockFetcher{
		Price: 101.80,
		Candles: map[string][]model.Candle{
			"SPY/1m": rangeWindowCandles(),
			"SPY/5m": breakoutSeries(99.20),
		},
	}
	s, _ := newTestScheduler(t, cfg, fetcher, sink)

	s.tick(at(10, 0))
	require.True(t, s.state.RangeComputed())
	require.NotZero(t, s.state.FiredCount())

	// Overnight into Wednesday: everything per-day is gone.
	s.tick(time.Date(2026, 1, 7, 2, 0, 0, 0, nyc))
	assert.False(t, s.state.RangeComputed())
	assert.Zero(t, s.state.FiredCount())
	assert.Empty(t, s.state.Ranges())
	assert.False(t, s.state.PreMarketAlertSent())
	assert.False(t, s.state.MarketOpenAlertSent())
}

func TestTick_IdleOutsideRegularHours(t *testing.T) {
	cfg := testConfig()
	sink := &captureSink{}
	s, rec := newTestScheduler(t, cfg, &marketdata.MockFetcher{Price: 100}, sink)

	interval := s.tick(at(2, 0))
	assert.Equal(t, 300*time.Second, interval, "idle interval outside the session")
	assert.False(t, s.state.RangeComputed())
	assert.Empty(t, rec.ranges)
	assert.Empty(t, sink.sent())
}

func TestTick_PreMarketReminderFiresOnce(t *testing.T) {
	cfg := testConfig()
	sink := &captureSink{}
	s, _ := newTestScheduler(t, cfg, &marketdata.MockFetcher{Price: 100}, sink)

	// Too early: 09:30 - 30m lead is 09:00.
	s.tick(at(8, 30))
	assert.False(t, s.state.PreMarketAlertSent())

	s.tick(at(9, 5))
	assert.True(t, s.state.PreMarketAlertSent())
	assert.True(t, sink.contains("Pre-Market Reminder"))

	before := len(sink.sent())
	s.tick(at(9, 10))
	assert.Equal(t, before, len(sink.sent()), "reminder is one-shot")
}

func TestTick_ReminderDisabledByFlag(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.PremarketReminder = false
	sink := &captureSink{}
	s, _ := newTestScheduler(t, cfg, &marketdata.MockFetcher{Price: 100}, sink)

	s.tick(at(9, 5))
	assert.False(t, s.state.PreMarketAlertSent())
	assert.Empty(t, sink.sent())
}

func TestTick_FetchErrorIsNoDataThisTick(t *testing.T) {
	cfg := testConfig()
	cfg.Symbols = []string{"SPY"}
	sink := &captureSink{}
	fetcher := &marketdata.MockFetcher{FetchErr: errors.New("transport down")}
	s, rec := newTestScheduler(t, cfg, fetcher, sink)

	s.tick(at(10, 0))
	assert.True(t, s.state.RangeComputed(), "range pass still counts as done")
	assert.Empty(t, rec.ranges)
	assert.Empty(t, s.state.Ranges())
}

func TestTick_AfterDispatchPolicyRetriesOnSinkFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Symbols = []string{"SPY"}
	cfg.Alerts.SignalCommit = config.CommitAfterDispatch
	cfg.Alerts.MarketOpenNotice = false
	cfg.Alerts.PremarketReminder = false

	sink := &captureSink{err: errors.New("sink offline")}
	fetcher := &marketdata.MockFetcher{
		Price: 99.10,
		Candles: map[string][]model.Candle{
			"SPY/1m": rangeWindowCandles(),
			"SPY/5m": breakoutSeries(99.20),
		},
	}
	s, rec := newTestScheduler(t, cfg, fetcher, sink)

	s.tick(at(9, 50))
	assert.Zero(t, s.state.FiredCount(), "key not committed while every sink fails")
	assert.Len(t, rec.signals, 1, "attempt is still recorded")

	// Sink recovers: the same candle fires again and now commits.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	s.tick(at(9, 51))
	assert.Equal(t, 1, s.state.FiredCount())
	assert.True(t, sink.contains("BEARISH"))

	// And a third tick is a dedup no-op.
	s.tick(at(9, 52))
	assert.Len(t, rec.signals, 2)
}

func TestTick_PriceLookupFailureSkipsSignal(t *testing.T) {
	cfg := testConfig()
	cfg.Symbols = []string{"SPY"}
	cfg.Alerts.MarketOpenNotice = false
	sink := &captureSink{}
	fetcher := &marketdata.MockFetcher{
		PriceErr: errors.New("quote unavailable"),
		Candles: map[string][]model.Candle{
			"SPY/1m": rangeWindowCandles(),
			"SPY/5m": breakoutSeries(101.50),
		},
	}
	s, rec := newTestScheduler(t, cfg, fetcher, sink)

	s.tick(at(9, 50))
	assert.Empty(t, rec.signals, "no signal is built without a current price")
	// Fire-once: the key was consumed at classification time.
	assert.Equal(t, 1, s.state.FiredCount())
}

type panicFetcher struct{}

func (panicFetcher) Name() string { return "panic" }
func (panicFetcher) FetchCandles(string, string, string) ([]model.Candle, error) {
	panic("corrupted decoder state")
}
func (panicFetcher) FetchCurrentPrice(string) (float64, error) { return 0, nil }

func TestSafeTick_PanicIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.MarketOpenNotice = false
	s, _ := newTestScheduler(t, cfg, panicFetcher{}, &captureSink{})
	s.now = func() time.Time { return at(10, 0) }

	_, fatal := s.safeTick()
	assert.True(t, fatal, "a panicking tick stops the loop")
}

func TestStartAndRequestStop(t *testing.T) {
	cfg := testConfig()
	cfg.Schedule.IdleIntervalSeconds = 1
	sink := &captureSink{}
	s, _ := newTestScheduler(t, cfg, &marketdata.MockFetcher{Price: 100}, sink)
	// Park the loop in the idle branch.
	s.now = func() time.Time { return tradingDay.Add(2 * time.Hour) }

	require.NoError(t, s.Start())
	s.RequestStop()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after RequestStop")
	}

	// Status snapshot remains readable after shutdown.
	snap := s.CurrentStatus()
	assert.False(t, snap.RangeComputed)
}
