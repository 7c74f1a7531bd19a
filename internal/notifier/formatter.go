package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/session"
)

// FormatBreakout formats a breakout signal into a notification title and body.
func FormatBreakout(sig model.BreakoutSignal) (title, body string) {
	side := "🟢 LONG"
	reason := fmt.Sprintf("Price broke above ORB high (%.2f)", sig.Range.High)
	if sig.Direction == model.DirectionBearish {
		side = "🔴 SHORT"
		reason = fmt.Sprintf("Price broke below ORB low (%.2f)", sig.Range.Low)
	}

	var b strings.Builder
	b.WriteString("🎯 ORB BREAKOUT SIGNAL\n\n")
	b.WriteString(fmt.Sprintf("📈 Symbol: %s\n", sig.Symbol))
	b.WriteString(fmt.Sprintf("📊 Direction: %s\n", side))
	b.WriteString(fmt.Sprintf("⏰ Timeframe: %s\n", sig.Timeframe))
	b.WriteString(fmt.Sprintf("💰 Current Price: $%.2f\n\n", sig.TriggerPrice))
	b.WriteString("📋 ORB Details:\n")
	b.WriteString(fmt.Sprintf("  • High: $%.2f\n", sig.Range.High))
	b.WriteString(fmt.Sprintf("  • Low: $%.2f\n", sig.Range.Low))
	b.WriteString(fmt.Sprintf("  • Width: $%.2f\n", sig.Range.Width))
	b.WriteString(fmt.Sprintf("  • Period: %s - %s\n\n",
		sig.Range.Start.Format("15:04"), sig.Range.End.Format("15:04")))
	b.WriteString(fmt.Sprintf("🔍 Entry Reason: %s\n", reason))
	b.WriteString(fmt.Sprintf("⏱️ Signal Time: %s\n", sig.DetectedAt.Format("2006-01-02 15:04:05")))

	title = fmt.Sprintf("🚨 %s %s SIGNAL - ORB Breakout", sig.Symbol, sig.Direction)
	return title, b.String()
}

// FormatRangeSummary formats the per-symbol opening ranges computed today.
// Symbols whose range window came back empty are listed as skipped.
func FormatRangeSummary(ranges map[string]model.OpeningRange, skipped []string) (title, body string) {
	symbols := make([]string, 0, len(ranges))
	for s := range ranges {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("📊 Today's ORB Levels:\n")
	for _, s := range symbols {
		r := ranges[s]
		b.WriteString(fmt.Sprintf("\n%s:\n", s))
		b.WriteString(fmt.Sprintf("  • High: $%.2f\n", r.High))
		b.WriteString(fmt.Sprintf("  • Low: $%.2f\n", r.Low))
		b.WriteString(fmt.Sprintf("  • Width: $%.2f\n", r.Width))
	}
	if len(skipped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No range data: %s\n", strings.Join(skipped, ", ")))
	}
	return "🎯 ORB Levels Calculated", b.String()
}

// FormatPreMarketReminder formats the one-shot pre-market reminder.
func FormatPreMarketReminder(openAt time.Time, symbols []string) (title, body string) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Market opens at %s.\n", openAt.Format("15:04 MST")))
	b.WriteString(fmt.Sprintf("Watching: %s\n", strings.Join(symbols, ", ")))
	return "⏰ Pre-Market Reminder", b.String()
}

// FormatMarketOpenNotice formats the one-shot market-open notice.
func FormatMarketOpenNotice(orbMinutes int) (title, body string) {
	body = fmt.Sprintf("Regular session started. Opening range locks in after %d minutes.", orbMinutes)
	return "🔔 Market Open", body
}

// FormatSessionRecap summarizes the trading day from a state snapshot.
func FormatSessionRecap(snap session.Snapshot, day time.Time) (title, body string) {
	symbols := make([]string, 0, len(snap.Ranges))
	for s := range snap.Ranges {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 Session Recap | %s\n\n", day.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Ranges computed: %d\n", len(snap.Ranges)))
	b.WriteString(fmt.Sprintf("Signals fired: %d\n", len(snap.FiredSignals)))
	for _, s := range symbols {
		r := snap.Ranges[s]
		b.WriteString(fmt.Sprintf("\n%s: high $%.2f / low $%.2f", s, r.High, r.Low))
	}
	return "📊 ORB Session Recap", b.String()
}
