package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"ID", "STATUS"}, [][]string{
		{"abc", "Bajo"},
		{"a", "Moderado", "extra ignored"},
		{"only-id"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 5)

	col := strings.Index(lines[0], "STATUS")
	assert.Equal(t, col, strings.Index(lines[2], "Bajo"))
	assert.Equal(t, col, strings.Index(lines[3], "Moderado"))
	assert.NotContains(t, out, "extra ignored")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{-5, "0s"},
		{0, "0s"},
		{45, "45s"},
		{185, "3m 05s"},
		{3720, "1h 02m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.sec))
	}
}

func TestTruncID(t *testing.T) {
	assert.Contains(t, TruncID("session_1718445600000_ab12cd34"), "ab12cd34")
	assert.NotContains(t, TruncID("session_1718445600000_ab12cd34"), "session")
	assert.Contains(t, TruncID("keep"), "keep")
	assert.Equal(t, 8, lipgloss.Width(TruncID("0123456789abcdef")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ms := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	assert.Equal(t, "Just now", HumanTimestampFrom(ms(10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestampFrom(ms(5*time.Minute), now))
	assert.Equal(t, "3h ago", HumanTimestampFrom(ms(3*time.Hour), now))
	assert.Equal(t, "Yesterday", HumanTimestampFrom(ms(30*time.Hour), now))
	assert.Equal(t, Timestamp(ms(72*time.Hour)), HumanTimestampFrom(ms(72*time.Hour), now))
}

func TestIndexGauge(t *testing.T) {
	assert.Contains(t, IndexGauge(0, domain.StatusBajo, 10), strings.Repeat(emptyBlock, 10))
	assert.Contains(t, IndexGauge(100, domain.StatusAlto, 10), strings.Repeat(filledBlock, 10))
	assert.Contains(t, IndexGauge(150, domain.StatusAlto, 4), "100")
	assert.Contains(t, IndexGauge(-3, domain.StatusBajo, 4), "  0")

	half := IndexGauge(50, domain.StatusModerado, 10)
	assert.Equal(t, 5, strings.Count(half, filledBlock))
}

func TestSeverityPill(t *testing.T) {
	assert.Contains(t, SeverityPill(domain.StatusAlto), "Alto")
	assert.Contains(t, SeverityPill(domain.StatusModerado), "Moderado")
	assert.Contains(t, SeverityPill(domain.StatusBajo), "Bajo")
	assert.Contains(t, SeverityPill(""), "--")
}

func TestFormatSessionList(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "No sessions found.\n", FormatSessionList(nil, now))

	out := FormatSessionList([]domain.Session{
		{ID: "session_1_deadbeef", StartTime: now.Add(-2 * time.Hour).UnixMilli(), Duration: 90,
			TremorIndex: 72, TremorStatus: domain.StatusAlto, Notes: "morning"},
	}, now)
	assert.Contains(t, out, "SESSIONS (1)")
	assert.Contains(t, out, "deadbeef")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "1m 30s")
	assert.Contains(t, out, "Alto")
	assert.Contains(t, out, "morning")
}

func TestFormatSessionDetail(t *testing.T) {
	hr := 71
	s := domain.Session{ID: "session_x", StartTime: 1, EndTime: 2, TremorIndex: 40,
		TremorStatus: domain.StatusModerado, HeartRate: &hr, Notes: "after walk"}
	sum := analysis.Summary{TremorIndex: 38, Severity: domain.StatusModerado, Frequency: 4.8,
		IsParkinsonRange: true, ReadingCount: 300, PeakCount: 12}

	out := FormatSessionDetail(s, sum)
	assert.Contains(t, out, "session_x")
	assert.Contains(t, out, "71 bpm")
	assert.Contains(t, out, "after walk")
	assert.Contains(t, out, "4.80 Hz")
	assert.Contains(t, out, "4-6 Hz band")
	assert.Contains(t, out, "300")
}

func TestFormatStatistics(t *testing.T) {
	assert.Equal(t, "No sessions recorded yet.\n", FormatStatistics(domain.SessionStatistics{}))

	out := FormatStatistics(domain.SessionStatistics{
		TotalSessions:      3,
		AverageTremorIndex: 41.666,
		MinTremorIndex:     10,
		MaxTremorIndex:     80,
		TotalDuration:      400,
		SessionsPerStatus:  domain.StatusCounts{Bajo: 1, Moderado: 1, Alto: 1},
	})
	assert.Contains(t, out, "41.7")
	assert.Contains(t, out, "10 - 80")
	assert.Contains(t, out, "6m 40s")
	assert.Contains(t, out, "1 Moderado")
}

func TestFormatLive(t *testing.T) {
	out := FormatLive(domain.StateActive, 70, 120, analysis.LiveMetrics{Ready: true, Frequency: 5.2})
	assert.Contains(t, out, "Recording")
	assert.Contains(t, out, "Alto")
	assert.Contains(t, out, "120 readings")
	assert.Contains(t, out, "5.20 Hz")

	out = FormatLive(domain.StatePaused, 20, 5, analysis.LiveMetrics{})
	assert.Contains(t, out, "Paused")
	assert.NotContains(t, out, "Hz")
}
