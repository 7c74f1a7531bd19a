package session

import (
	"sync"
	"time"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

// State holds all per-trading-day state. The scheduler tick loop is the only
// mutator; the cron recap job and CurrentStatus() read copies, so access is
// guarded and live references never escape.
type State struct {
	mu sync.RWMutex

	ranges        map[string]model.OpeningRange
	fired         map[model.SignalKey]struct{}
	rangeComputed bool

	preMarketAlertSent  bool
	marketOpenAlertSent bool
	lastStatusAt        time.Time
}

// Snapshot is a read-only copy of State handed to embedders.
type Snapshot struct {
	Ranges              map[string]model.OpeningRange
	FiredSignals        []model.SignalKey
	RangeComputed       bool
	PreMarketAlertSent  bool
	MarketOpenAlertSent bool
	LastStatusAt        time.Time
}

// New returns an empty session state.
func New() *State {
	return &State{
		ranges: make(map[string]model.OpeningRange),
		fired:  make(map[model.SignalKey]struct{}),
	}
}

// Reset clears everything for a new trading day.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges = make(map[string]model.OpeningRange)
	s.fired = make(map[model.SignalKey]struct{})
	s.rangeComputed = false
	s.preMarketAlertSent = false
	s.marketOpenAlertSent = false
	s.lastStatusAt = time.Time{}
}

// SetRange stores the computed opening range for a symbol.
func (s *State) SetRange(r model.OpeningRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[r.Symbol] = r
}

// Range returns the opening range for symbol, if one was computed today.
func (s *State) Range(symbol string) (model.OpeningRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ranges[symbol]
	return r, ok
}

// Ranges returns a copy of all computed ranges.
func (s *State) Ranges() map[string]model.OpeningRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.OpeningRange, len(s.ranges))
	for k, v := range s.ranges {
		out[k] = v
	}
	return out
}

// MarkFired records a signal key as fired for the rest of the day.
func (s *State) MarkFired(key model.SignalKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired[key] = struct{}{}
}

// HasFired reports whether a signal key already fired today.
func (s *State) HasFired(key model.SignalKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fired[key]
	return ok
}

// FiredCount returns the number of signals fired today.
func (s *State) FiredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fired)
}

// MarkRangeComputed records that today's range pass ran, even if some symbols
// came back empty.
func (s *State) MarkRangeComputed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeComputed = true
}

// RangeComputed reports whether today's range pass already ran.
func (s *State) RangeComputed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rangeComputed
}

// MarkPreMarketAlert records the one-shot pre-market reminder as sent.
func (s *State) MarkPreMarketAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preMarketAlertSent = true
}

// PreMarketAlertSent reports whether the pre-market reminder went out today.
func (s *State) PreMarketAlertSent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preMarketAlertSent
}

// MarkMarketOpenAlert records the one-shot market-open notice as sent.
func (s *State) MarkMarketOpenAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marketOpenAlertSent = true
}

// MarketOpenAlertSent reports whether the open notice went out today.
func (s *State) MarketOpenAlertSent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketOpenAlertSent
}

// TouchStatus records when the last status snapshot was emitted.
func (s *State) TouchStatus(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatusAt = at
}

// LastStatusAt returns when the last status snapshot was emitted.
func (s *State) LastStatusAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStatusAt
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranges := make(map[string]model.OpeningRange, len(s.ranges))
	for k, v := range s.ranges {
		ranges[k] = v
	}
	fired := make([]model.SignalKey, 0, len(s.fired))
	for k := range s.fired {
		fired = append(fired, k)
	}
	return Snapshot{
		Ranges:              ranges,
		FiredSignals:        fired,
		RangeComputed:       s.rangeComputed,
		PreMarketAlertSent:  s.preMarketAlertSent,
		MarketOpenAlertSent: s.marketOpenAlertSent,
		LastStatusAt:        s.lastStatusAt,
	}
}
