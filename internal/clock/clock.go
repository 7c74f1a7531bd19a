package clock

import (
	"fmt"
	"time"
)

// Phase is the current market session phase.
type Phase string

const (
	PhaseWeekend      Phase = "WEEKEND"
	PhasePreMarket    Phase = "PRE_MARKET"
	PhaseRegularHours Phase = "REGULAR_HOURS"
	PhaseAfterHours   Phase = "AFTER_HOURS"
	PhaseClosed       Phase = "CLOSED"
)

// MarketClock answers session-phase questions in a fixed exchange time zone.
// All comparisons go through In(), so callers can hand it timestamps from any
// zone without hitting mixed-zone bugs.
type MarketClock struct {
	loc           *time.Location
	openMin       int // minutes since midnight, exchange-local
	closeMin      int
	premarketMin  int
	afterhoursMin int
}

// New builds a MarketClock from an IANA zone name and HH:MM clock marks.
func New(timezone, open, close, premarketStart, afterhoursEnd string) (*MarketClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	c := &MarketClock{loc: loc}
	for _, m := range []struct {
		value string
		dst   *int
	}{
		{open, &c.openMin},
		{close, &c.closeMin},
		{premarketStart, &c.premarketMin},
		{afterhoursEnd, &c.afterhoursMin},
	} {
		t, err := time.Parse("15:04", m.value)
		if err != nil {
			return nil, fmt.Errorf("parse clock mark %q: %w", m.value, err)
		}
		*m.dst = t.Hour()*60 + t.Minute()
	}
	return c, nil
}

// Location returns the exchange time zone.
func (c *MarketClock) Location() *time.Location { return c.loc }

// In converts t into the exchange time zone.
func (c *MarketClock) In(t time.Time) time.Time { return t.In(c.loc) }

// SessionPhase classifies the instant. Regular hours are inclusive on both
// ends; pre-market runs up to but excluding the open.
func (c *MarketClock) SessionPhase(now time.Time) Phase {
	local := c.In(now)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return PhaseWeekend
	}
	m := local.Hour()*60 + local.Minute()
	switch {
	case m >= c.openMin && m <= c.closeMin:
		return PhaseRegularHours
	case m >= c.premarketMin && m < c.openMin:
		return PhasePreMarket
	case m > c.closeMin && m <= c.afterhoursMin:
		return PhaseAfterHours
	default:
		return PhaseClosed
	}
}

// IsRegularHours reports whether the market is in its regular session.
func (c *MarketClock) IsRegularHours(now time.Time) bool {
	return c.SessionPhase(now) == PhaseRegularHours
}

// OpenAt returns the market-open instant on day's calendar date.
func (c *MarketClock) OpenAt(day time.Time) time.Time {
	local := c.In(day)
	return time.Date(local.Year(), local.Month(), local.Day(),
		c.openMin/60, c.openMin%60, 0, 0, c.loc)
}

// CloseAt returns the market-close instant on day's calendar date.
func (c *MarketClock) CloseAt(day time.Time) time.Time {
	local := c.In(day)
	return time.Date(local.Year(), local.Month(), local.Day(),
		c.closeMin/60, c.closeMin%60, 0, 0, c.loc)
}

// RangeEndAt returns the opening-range end mark on day's calendar date.
func (c *MarketClock) RangeEndAt(day time.Time, orbMinutes int) time.Time {
	return c.OpenAt(day).Add(time.Duration(orbMinutes) * time.Minute)
}
