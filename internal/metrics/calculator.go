package metrics

import (
	"fmt"
	"strings"
	"time"
)

// durationWords renders a duration as a short phrase ("2 hours 10 minutes")
// for the long-form `t2 --stats` output.
func durationWords(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}
	hours, minutes, seconds := splitHMS(d)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d hours %d minutes", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d hours", hours)
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%d minutes %d seconds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d minutes", minutes)
	default:
		return fmt.Sprintf("%d seconds", seconds)
	}
}

// durationShort renders the same duration compactly ("2h 10m") for the
// one-line post-session summary.
func durationShort(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	hours, minutes, seconds := splitHMS(d)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func splitHMS(d time.Duration) (hours, minutes, seconds int) {
	return int(d.Hours()), int(d.Minutes()) % 60, int(d.Seconds()) % 60
}

// StatsFormatter renders SessionMetrics/DailyMetrics/TotalMetrics into the
// text printed after each injected session and by `t2 --stats`.
type StatsFormatter struct{}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{}
}

// FormatSessionSummaryLines renders the lines shown right after a session
// completes: words injected, time saved versus typing it by hand, speaking
// rate, and (when today's record has any sessions, the current one
// included) today's running total.
func (sf *StatsFormatter) FormatSessionSummaryLines(s *SessionMetrics, today *DailyMetrics) []string {
	lines := []string{
		fmt.Sprintf("✅ Injected %d words (%s recording)", s.WordCount, durationShort(s.RecordingTime)),
	}

	if s.TimeSaved > 0 {
		lines = append(lines, fmt.Sprintf("💡 Saved %s vs typing", durationShort(s.TimeSaved)))
	}
	if s.SpeakingRate > 0 {
		lines = append(lines, fmt.Sprintf("📊 Session: %d WPM speaking rate", s.SpeakingRate))
	}
	if today != nil && today.SessionCount > 0 {
		lines = append(lines, fmt.Sprintf("📈 Today: %d words, %s saved", today.TotalWords, durationShort(today.TotalSaved)))
	}

	return lines
}

// FormatTotalStats renders the `t2 --stats` lifetime summary.
func (sf *StatsFormatter) FormatTotalStats(m *TotalMetrics) string {
	if m.TotalSessions == 0 {
		return "📊 No usage statistics yet. Hold the hotkey to record your first session!"
	}

	var b strings.Builder
	fmt.Fprintln(&b, "📊 Total Statistics:")
	fmt.Fprintf(&b, "   Words transcribed: %d\n", m.TotalWords)
	fmt.Fprintf(&b, "   Sessions completed: %d\n", m.TotalSessions)
	fmt.Fprintf(&b, "   Time saved: %s\n", durationWords(m.TotalSaved))
	fmt.Fprintf(&b, "   Avg words/session: %d\n", m.AvgWordsPerSession)
	fmt.Fprintf(&b, "   Avg saved/session: %s", durationShort(m.AvgSavedPerSession))
	return b.String()
}

// FormatWeeklyStats renders a rolling window of DailyMetrics, as returned by
// MetricsManager.GetRecentDays, into the `t2 --stats` weekly section.
func (sf *StatsFormatter) FormatWeeklyStats(days []*DailyMetrics) string {
	if len(days) == 0 {
		return "📅 No weekly data available yet."
	}

	var totalWords, totalSessions, activeDays int
	var totalSaved time.Duration
	for _, day := range days {
		if day.SessionCount == 0 {
			continue
		}
		activeDays++
		totalWords += day.TotalWords
		totalSaved += day.TotalSaved
		totalSessions += day.SessionCount
	}
	if activeDays == 0 {
		return "📅 No activity this week yet."
	}

	var b strings.Builder
	fmt.Fprintln(&b, "📅 This Week:")
	fmt.Fprintf(&b, "   Active days: %d/%d\n", activeDays, len(days))
	fmt.Fprintf(&b, "   Total words: %d\n", totalWords)
	fmt.Fprintf(&b, "   Total sessions: %d\n", totalSessions)
	fmt.Fprintf(&b, "   Time saved: %s", durationWords(totalSaved))
	return b.String()
}
