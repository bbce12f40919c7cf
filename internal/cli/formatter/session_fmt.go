package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/domain"
)

const gaugeWidth = 10

// FormatSessionList renders stored sessions as a boxed table.
func FormatSessionList(sessions []domain.Session, now time.Time) string {
	if len(sessions) == 0 {
		return "No sessions found.\n"
	}

	headers := []string{"ID", "STARTED", "DURATION", "INDEX", "STATUS", "READINGS", "NOTES"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			TruncID(s.ID),
			HumanTimestampFrom(s.StartTime, now),
			FormatDuration(s.Duration),
			IndexGauge(s.TremorIndex, s.TremorStatus, gaugeWidth),
			SeverityPill(s.TremorStatus),
			fmt.Sprintf("%d", len(s.Readings)),
			Dim(Truncate(s.Notes, 40)),
		})
	}
	title := fmt.Sprintf("Sessions (%d)", len(sessions))
	return RenderBox(title, RenderTable(headers, rows)) + "\n"
}

// FormatSessionDetail renders one session with its analysis summary.
func FormatSessionDetail(s domain.Session, sum analysis.Summary) string {
	var b strings.Builder

	b.WriteString(Header("Session"))
	b.WriteString("\n")
	kv := [][2]string{
		{"ID", s.ID},
		{"Started", Timestamp(s.StartTime)},
		{"Ended", Timestamp(s.EndTime)},
		{"Duration", FormatDuration(s.Duration)},
		{"Tremor index", IndexGauge(s.TremorIndex, s.TremorStatus, gaugeWidth)},
		{"Status", SeverityPill(s.TremorStatus)},
	}
	if s.HeartRate != nil {
		kv = append(kv, [2]string{"Heart rate", fmt.Sprintf("%d bpm", *s.HeartRate)})
	}
	if s.Notes != "" {
		kv = append(kv, [2]string{"Notes", s.Notes})
	}
	writeKV(&b, kv)

	b.WriteString("\n")
	b.WriteString(FormatSummary(sum))
	return b.String()
}

// FormatSummary renders the analysis of a reading sequence.
func FormatSummary(sum analysis.Summary) string {
	var b strings.Builder
	b.WriteString(Header("Analysis"))
	b.WriteString("\n")

	freq := Dim("--")
	if sum.Frequency > 0 {
		freq = fmt.Sprintf("%.2f Hz", sum.Frequency)
		if sum.IsParkinsonRange {
			freq += " " + StyleRed.Render("(4-6 Hz band)")
		}
	}
	writeKV(&b, [][2]string{
		{"Readings", fmt.Sprintf("%d", sum.ReadingCount)},
		{"Recomputed index", IndexGauge(sum.TremorIndex, sum.Severity, gaugeWidth)},
		{"Severity", SeverityPill(sum.Severity)},
		{"Frequency", freq},
		{"Peaks", fmt.Sprintf("%d", sum.PeakCount)},
		{"Anomalies", fmt.Sprintf("%d", sum.AnomalyCount)},
		{"Mean magnitude", fmt.Sprintf("%.3f g", sum.MeanMagnitude)},
	})
	return b.String()
}

// FormatStatistics renders aggregate statistics.
func FormatStatistics(st domain.SessionStatistics) string {
	if st.TotalSessions == 0 {
		return "No sessions recorded yet.\n"
	}

	var b strings.Builder
	writeKV(&b, [][2]string{
		{"Sessions", fmt.Sprintf("%d", st.TotalSessions)},
		{"Average index", fmt.Sprintf("%.1f", st.AverageTremorIndex)},
		{"Range", fmt.Sprintf("%d - %d", st.MinTremorIndex, st.MaxTremorIndex)},
		{"Total time", FormatDuration(st.TotalDuration)},
	})
	b.WriteString("\n")

	counts := st.SessionsPerStatus
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		SeverityStyle(domain.StatusBajo).Render(fmt.Sprintf("%d Bajo", counts.Bajo)),
		SeverityStyle(domain.StatusModerado).Render(fmt.Sprintf("%d Moderado", counts.Moderado)),
		SeverityStyle(domain.StatusAlto).Render(fmt.Sprintf("%d Alto", counts.Alto)),
	))
	return RenderBox("Statistics", strings.TrimRight(b.String(), "\n")) + "\n"
}

// FormatLive renders a one-line status for an in-progress recording.
func FormatLive(state domain.TrackerState, index int, readings int, live analysis.LiveMetrics) string {
	status := analysis.Classify(index)
	line := fmt.Sprintf("%s  index %s  %s  %d readings",
		StatePill(state), IndexGauge(index, status, gaugeWidth), SeverityPill(status), readings)
	if live.Ready && live.Frequency > 0 {
		line += fmt.Sprintf("  %.2f Hz", live.Frequency)
	}
	return line
}

func writeKV(b *strings.Builder, kv [][2]string) {
	width := 0
	for _, p := range kv {
		width = max(width, len(p[0]))
	}
	for _, p := range kv {
		fmt.Fprintf(b, "%s%s  %s\n", Dim(p[0]), strings.Repeat(" ", width-len(p[0])), p[1])
	}
}
