package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

func TestReset_ClearsEverything(t *testing.T) {
	st := New()
	st.SetRange(model.OpeningRange{Symbol: "SPY", High: 101, Low: 100, Width: 1})
	st.MarkFired(model.NewSignalKey("SPY", "1m", time.Now()))
	st.MarkRangeComputed()
	st.MarkPreMarketAlert()
	st.MarkMarketOpenAlert()
	st.TouchStatus(time.Now())

	st.Reset()

	assert.Empty(t, st.Ranges())
	assert.Zero(t, st.FiredCount())
	assert.False(t, st.RangeComputed())
	assert.False(t, st.PreMarketAlertSent())
	assert.False(t, st.MarketOpenAlertSent())
	assert.True(t, st.LastStatusAt().IsZero())
}

func TestSnapshot_IsACopy(t *testing.T) {
	st := New()
	st.SetRange(model.OpeningRange{Symbol: "SPY", High: 101, Low: 100})

	snap := st.Snapshot()
	require.Len(t, snap.Ranges, 1)

	// Mutating the snapshot must not leak back into live state.
	snap.Ranges["QQQ"] = model.OpeningRange{Symbol: "QQQ"}
	_, ok := st.Range("QQQ")
	assert.False(t, ok)

	// And later mutations are not visible in an old snapshot.
	st.MarkFired(model.NewSignalKey("SPY", "1m", time.Now()))
	assert.Empty(t, snap.FiredSignals)
}

func TestRangeLookup(t *testing.T) {
	st := New()
	_, ok := st.Range("SPY")
	assert.False(t, ok)

	st.SetRange(model.OpeningRange{Symbol: "SPY", High: 101, Low: 100})
	r, ok := st.Range("SPY")
	require.True(t, ok)
	assert.Equal(t, 101.0, r.High)
}

func TestFiredKeys(t *testing.T) {
	st := New()
	key := model.NewSignalKey("SPY", "5m", time.Now())
	assert.False(t, st.HasFired(key))

	st.MarkFired(key)
	assert.True(t, st.HasFired(key))

	// Marking twice stays a single entry.
	st.MarkFired(key)
	assert.Equal(t, 1, st.FiredCount())
}
