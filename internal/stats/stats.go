package stats

import "github.com/alexanderramin/tremor/internal/domain"

// Compute reduces a session collection to its aggregate statistics. An empty
// collection yields all zeros.
func Compute(sessions []domain.Session) domain.SessionStatistics {
	var st domain.SessionStatistics
	if len(sessions) == 0 {
		return st
	}

	st.TotalSessions = len(sessions)
	st.MinTremorIndex = sessions[0].TremorIndex
	st.MaxTremorIndex = sessions[0].TremorIndex

	var sum int
	for _, s := range sessions {
		sum += s.TremorIndex
		st.TotalDuration += s.Duration
		if s.TremorIndex < st.MinTremorIndex {
			st.MinTremorIndex = s.TremorIndex
		}
		if s.TremorIndex > st.MaxTremorIndex {
			st.MaxTremorIndex = s.TremorIndex
		}

		switch s.TremorStatus {
		case domain.StatusBajo:
			st.SessionsPerStatus.Bajo++
		case domain.StatusModerado:
			st.SessionsPerStatus.Moderado++
		case domain.StatusAlto:
			st.SessionsPerStatus.Alto++
		}
	}
	st.AverageTremorIndex = float64(sum) / float64(len(sessions))
	return st
}
