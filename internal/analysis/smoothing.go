package analysis

import "github.com/alexanderramin/tremor/internal/domain"

// MovingAverage smooths x, y, z and magnitude with a centered window of up to
// `window` readings. The window shrinks at the edges instead of padding.
// Timestamps pass through untouched. Sequences shorter than the window are
// returned unchanged.
func MovingAverage(readings []domain.Reading, window int) []domain.Reading {
	if window <= 1 || len(readings) < window {
		return readings
	}

	back := window / 2
	out := make([]domain.Reading, len(readings))
	for i := range readings {
		lo := i - back
		hi := lo + window - 1
		if lo < 0 {
			lo = 0
		}
		if hi > len(readings)-1 {
			hi = len(readings) - 1
		}

		var sx, sy, sz, sm float64
		for _, r := range readings[lo : hi+1] {
			sx += r.X
			sy += r.Y
			sz += r.Z
			sm += r.Magnitude
		}
		n := float64(hi - lo + 1)
		out[i] = domain.Reading{
			Timestamp: readings[i].Timestamp,
			X:         sx / n,
			Y:         sy / n,
			Z:         sz / n,
			Magnitude: sm / n,
		}
	}
	return out
}
