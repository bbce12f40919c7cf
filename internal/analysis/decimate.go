package analysis

import "github.com/alexanderramin/tremor/internal/domain"

// DefaultTransferReadings caps the readings per session in a transfer payload.
const DefaultTransferReadings = 500

// Decimate keeps at most max readings by taking evenly spaced indices
// floor(i * len/max). It is deterministic and keeps the first reading.
// Inputs at or under the cap come back as-is; the input is never modified.
func Decimate(readings []domain.Reading, max int) []domain.Reading {
	if max <= 0 || len(readings) <= max {
		return readings
	}
	stride := float64(len(readings)) / float64(max)
	out := make([]domain.Reading, max)
	for i := range out {
		out[i] = readings[int(float64(i)*stride)]
	}
	return out
}
