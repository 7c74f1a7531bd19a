package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/calculator"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/clock"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/config"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/detector"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/marketdata"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/metrics"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/notifier"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/recorder"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/session"
)

// Scheduler drives the daily detection pipeline: wait for market hours,
// compute the opening range once per day, scan for breakouts, reset at
// calendar rollover. The tick loop is the only writer of session state.
type Scheduler struct {
	cfg      *config.Config
	clock    *clock.MarketClock
	fetcher  marketdata.Fetcher
	detector *detector.Detector
	dispatch *notifier.Dispatcher
	rec      recorder.Recorder
	log      *zap.Logger

	cron  *cron.Cron
	state *session.State

	// now is split out so tests can drive the clock.
	now func() time.Time

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	lastTickDay string
}

// New creates a Scheduler. All collaborators are injected; nothing is read
// from ambient globals.
func New(cfg *config.Config, clk *clock.MarketClock, fetcher marketdata.Fetcher,
	det *detector.Detector, dispatch *notifier.Dispatcher, rec recorder.Recorder,
	log *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		clock:    clk,
		fetcher:  fetcher,
		detector: det,
		dispatch: dispatch,
		rec:      rec,
		log:      log,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(clk.Location())),
		state:    session.New(),
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start registers the recap cron job and launches the tick loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.RecapCron, s.sessionRecap); err != nil {
		return fmt.Errorf("register recap task: %w", err)
	}
	s.cron.Start()
	go s.run()
	s.log.Info("scheduler started",
		zap.Strings("symbols", s.cfg.Symbols),
		zap.Int("orb_minutes", s.cfg.ORB.Minutes),
		zap.Strings("timeframes", s.cfg.ORB.ExecutionTimeframes),
	)
	return nil
}

// RequestStop sets the cooperative cancellation flag. The loop exits after
// completing the in-flight tick.
func (s *Scheduler) RequestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed once the tick loop has fully exited.
func (s *Scheduler) Done() <-chan struct{} { return s.doneCh }

// CurrentStatus returns a read-only snapshot of the session state.
func (s *Scheduler) CurrentStatus() session.Snapshot { return s.state.Snapshot() }

func (s *Scheduler) run() {
	defer close(s.doneCh)
	defer s.cron.Stop()

	for {
		select {
		case <-s.stopCh:
			s.log.Info("scheduler stopped")
			return
		default:
		}

		interval, fatal := s.safeTick()
		if fatal {
			return
		}

		select {
		case <-s.stopCh:
			s.log.Info("scheduler stopped")
			return
		case <-time.After(interval):
		}
	}
}

// safeTick runs one tick and converts a panic into a fatal stop: continuing
// with unknown internal state risks corrupting the session.
func (s *Scheduler) safeTick() (interval time.Duration, fatal bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unexpected fault inside tick, stopping loop",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			fatal = true
		}
	}()
	return s.tick(s.now()), false
}

// tick executes one pass of the state machine and returns how long to sleep
// before the next one: the idle interval outside regular hours, the scan
// interval inside them.
func (s *Scheduler) tick(now time.Time) time.Duration {
	now = s.clock.In(now)
	idle := time.Duration(s.cfg.Schedule.IdleIntervalSeconds) * time.Second
	scan := time.Duration(s.cfg.Schedule.TickIntervalSeconds) * time.Second

	day := now.Format("2006-01-02")
	if s.lastTickDay != "" && day != s.lastTickDay {
		s.state.Reset()
		s.log.Info("daily reset completed", zap.String("day", day))
	}
	s.lastTickDay = day

	if !s.clock.IsRegularHours(now) {
		metrics.ScanTicks.WithLabelValues("idle").Inc()
		s.maybePreMarketReminder(now)
		return idle
	}

	metrics.ScanTicks.WithLabelValues("scan").Inc()
	s.maybeMarketOpenNotice()

	if !s.state.RangeComputed() && !now.Before(s.clock.RangeEndAt(now, s.cfg.ORB.Minutes)) {
		s.computeRanges(now)
	}

	if s.state.RangeComputed() {
		s.scanBreakouts(now)
		s.maybeStatusSnapshot(now)
	}
	return scan
}

func (s *Scheduler) maybePreMarketReminder(now time.Time) {
	if !s.cfg.Alerts.PremarketReminder || s.state.PreMarketAlertSent() {
		return
	}
	if s.clock.SessionPhase(now) != clock.PhasePreMarket {
		return
	}
	open := s.clock.OpenAt(now)
	lead := time.Duration(s.cfg.Schedule.PremarketReminderMinutes) * time.Minute
	if now.Before(open.Add(-lead)) {
		return
	}
	s.state.MarkPreMarketAlert()
	title, body := notifier.FormatPreMarketReminder(open, s.cfg.Symbols)
	s.notify(title, body)
}

func (s *Scheduler) maybeMarketOpenNotice() {
	if !s.cfg.Alerts.MarketOpenNotice || s.state.MarketOpenAlertSent() {
		return
	}
	s.state.MarkMarketOpenAlert()
	title, body := notifier.FormatMarketOpenNotice(s.cfg.ORB.Minutes)
	s.notify(title, body)
}

// computeRanges runs the once-per-day range pass. Symbols without window data
// are skipped; the pass still counts as done so they are simply omitted from
// scans for the rest of the day.
func (s *Scheduler) computeRanges(now time.Time) {
	s.log.Info("calculating opening ranges")
	open := s.clock.OpenAt(now)

	var skipped []string
	for _, symbol := range s.cfg.Symbols {
		candles, err := s.fetcher.FetchCandles(symbol, "1d", "1m")
		if err != nil || len(candles) == 0 {
			metrics.DataFetchFailures.WithLabelValues(symbol).Inc()
			s.log.Warn("no intraday data for range window",
				zap.String("symbol", symbol), zap.Error(err))
			skipped = append(skipped, symbol)
			continue
		}

		rng, ok := calculator.ComputeOpeningRange(symbol, candles, open, s.cfg.ORB.Minutes)
		if !ok {
			s.log.Warn("no candles inside range window", zap.String("symbol", symbol))
			skipped = append(skipped, symbol)
			continue
		}

		s.state.SetRange(rng)
		metrics.RangesComputed.Inc()
		s.log.Info("opening range computed",
			zap.String("symbol", symbol),
			zap.Float64("high", rng.High),
			zap.Float64("low", rng.Low),
			zap.Float64("width", rng.Width),
		)
		if err := s.rec.RecordRange(rng); err != nil {
			s.log.Error("record range", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	s.state.MarkRangeComputed()

	ranges := s.state.Ranges()
	if len(ranges) > 0 || len(skipped) > 0 {
		title, body := notifier.FormatRangeSummary(ranges, skipped)
		s.notify(title, body)
	}
}

// scanBreakouts runs the detector for every symbol with a range, on every
// configured timeframe, and dispatches any classified breakout.
func (s *Scheduler) scanBreakouts(now time.Time) {
	for _, symbol := range s.cfg.Symbols {
		rng, ok := s.state.Range(symbol)
		if !ok {
			continue
		}

		for _, timeframe := range s.cfg.ORB.ExecutionTimeframes {
			candles, err := s.fetcher.FetchCandles(symbol, "1d", timeframe)
			if err != nil {
				metrics.DataFetchFailures.WithLabelValues(symbol).Inc()
				s.log.Warn("fetch failed, skipping timeframe this tick",
					zap.String("symbol", symbol),
					zap.String("timeframe", timeframe),
					zap.Error(err))
				continue
			}

			dir, key := s.detector.Check(symbol, timeframe, candles, rng, s.state)
			if dir == model.DirectionNone {
				continue
			}

			price, err := s.fetcher.FetchCurrentPrice(symbol)
			if err != nil {
				// No signal this tick. Under fire_once the key is already
				// consumed; under after_dispatch the next tick retries.
				s.log.Warn("current price unavailable, signal not built",
					zap.String("symbol", symbol), zap.Error(err))
				continue
			}

			sig := notifier.BuildSignal(symbol, dir, timeframe, price, rng, now)
			err = s.dispatchSignal(sig)
			if !s.detector.CommitsOnDetect() && err == nil {
				s.state.MarkFired(key)
			}
		}
	}
}

func (s *Scheduler) dispatchSignal(sig model.BreakoutSignal) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := s.dispatch.DispatchSignal(ctx, sig)
	if err != nil {
		s.log.Error("dispatch signal", zap.String("symbol", sig.Symbol), zap.Error(err))
	}
	metrics.SignalsFired.WithLabelValues(sig.Symbol, string(sig.Direction)).Inc()

	if recErr := s.rec.RecordSignal(sig); recErr != nil {
		s.log.Error("record signal", zap.String("symbol", sig.Symbol), zap.Error(recErr))
	}
	return err
}

// maybeStatusSnapshot logs current price vs. range per symbol at the coarse
// status interval. Advisory only, never a signal.
func (s *Scheduler) maybeStatusSnapshot(now time.Time) {
	interval := time.Duration(s.cfg.Schedule.StatusSnapshotMinutes) * time.Minute
	if last := s.state.LastStatusAt(); !last.IsZero() && now.Sub(last) < interval {
		return
	}
	s.state.TouchStatus(now)

	for symbol, rng := range s.state.Ranges() {
		price, err := s.fetcher.FetchCurrentPrice(symbol)
		if err != nil {
			s.log.Warn("status snapshot price unavailable",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		position := "inside"
		if price > rng.High {
			position = "above"
		} else if price < rng.Low {
			position = "below"
		}
		s.log.Info("status snapshot",
			zap.String("symbol", symbol),
			zap.Float64("price", price),
			zap.Float64("orb_high", rng.High),
			zap.Float64("orb_low", rng.Low),
			zap.String("position", position),
		)
	}
}

// sessionRecap is the cron-driven end-of-session summary.
func (s *Scheduler) sessionRecap() {
	snap := s.state.Snapshot()
	if len(snap.Ranges) == 0 && len(snap.FiredSignals) == 0 {
		return
	}
	title, body := notifier.FormatSessionRecap(snap, s.clock.In(s.now()))
	s.notify(title, body)
}

func (s *Scheduler) notify(title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.dispatch.Notify(ctx, title, body); err != nil {
		s.log.Error("send notification", zap.String("title", title), zap.Error(err))
	}
}
