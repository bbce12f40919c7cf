package analysis

import (
	"math"

	"github.com/alexanderramin/tremor/internal/domain"
)

// anomalySigma is how many standard deviations from the mean a magnitude
// must lie to be flagged.
const anomalySigma = 3.0

// DetectAnomalies flags readings whose magnitude lies more than three
// population standard deviations from the mean of the whole input.
// Requires at least 10 readings.
func DetectAnomalies(readings []domain.Reading) []int {
	if len(readings) < MinFrequencyReadings {
		return nil
	}
	mean, std := magnitudeMeanStd(readings)
	limit := anomalySigma * std

	var out []int
	for i, r := range readings {
		if math.Abs(r.Magnitude-mean) > limit {
			out = append(out, i)
		}
	}
	return out
}
