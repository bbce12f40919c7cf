package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		inner := StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
		return boxStyle.Render(inner)
	}
	return boxStyle.Render(content)
}

// Timestamp formats epoch milliseconds in local time.
func Timestamp(ms int64) string {
	if ms <= 0 {
		return "--"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// HumanTimestampFrom describes how long before now the epoch-ms instant was.
func HumanTimestampFrom(ms int64, now time.Time) string {
	t := time.UnixMilli(ms)
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return Timestamp(ms)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "Yesterday"
	default:
		return Timestamp(ms)
	}
}

// TruncID shortens a session id for tables. Ids of the form
// session_<ms>_<suffix> keep only the suffix.
func TruncID(id string) string {
	if i := strings.LastIndexByte(id, '_'); i >= 0 && i < len(id)-1 {
		id = id[i+1:]
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatDuration renders whole seconds as 45s, 3m 05s or 1h 02m.
func FormatDuration(sec int) string {
	if sec <= 0 {
		return "0s"
	}
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Truncate cuts s to n visible runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
