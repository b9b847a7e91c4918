package output

import (
	"fmt"
	"strings"
)

// FormatHMS renders seconds as HH:MM:SS. Hours grow past two digits rather
// than wrapping.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// FormatDuration renders seconds compactly, e.g. "7h 05m" or "42m".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m := seconds/3600, seconds%3600/60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// GoalBar renders progress toward goal as a bar with a marker at
// linePercent, the point at which the dashboard draws its goal line.
// Example: "██████████░░│░░░░ 62%"
func GoalBar(seconds, goal int64, linePercent, width int) string {
	if width <= 0 {
		width = 30
	}
	pct := 0.0
	if goal > 0 {
		pct = float64(seconds) / float64(goal) * 100
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(filled, width))

	marker := -1
	if linePercent > 0 && linePercent < 100 {
		marker = linePercent * width / 100
	}

	var bar strings.Builder
	for i := range width {
		switch {
		case i == marker:
			bar.WriteString("│")
		case i < filled:
			bar.WriteString("█")
		default:
			bar.WriteString("░")
		}
	}

	style := StyleWarning
	switch {
	case pct >= 100:
		style = StyleSuccess
	case linePercent > 0 && pct >= float64(linePercent):
		style = StyleHeader
	}
	return fmt.Sprintf("%s %s", style.Render(bar.String()), StyleMuted.Render(fmt.Sprintf("%.0f%%", pct)))
}

// StatusBadge styles a session status word.
func StatusBadge(status string) string {
	switch status {
	case "active":
		return StyleSuccess.Render("● active")
	case "paused":
		return StyleWarning.Render("❚❚ paused")
	case "completed":
		return StyleMuted.Render("■ completed")
	default:
		return StyleMuted.Render("○ " + status)
	}
}

// Section renders a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 48))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
