package analysis

import (
	"math"

	"github.com/alexanderramin/tremor/internal/domain"
)

// TremorIndex scores magnitude variability on a 0-100 scale:
// round(clamp(popStdDev(magnitude) * 50, 0, 100)). Empty input scores 0.
func TremorIndex(readings []domain.Reading) int {
	if len(readings) == 0 {
		return 0
	}
	_, std := magnitudeMeanStd(readings)
	scaled := math.Min(MaxIndex, math.Max(0, std*IndexGain))
	if math.IsNaN(scaled) {
		// An int cannot carry NaN; a poisoned window reads as "no signal".
		return 0
	}
	return int(math.Round(scaled))
}

// IndexOver computes the tremor index over the most recent `window` readings.
// A window of zero or less, or one larger than the input, uses everything.
func IndexOver(readings []domain.Reading, window int) int {
	return TremorIndex(Tail(readings, window))
}

// Tail returns the last n readings, or all of them when n <= 0 or n >= len.
func Tail(readings []domain.Reading, n int) []domain.Reading {
	if n <= 0 || n >= len(readings) {
		return readings
	}
	return readings[len(readings)-n:]
}

// Classify maps a tremor index to its severity band. Every stored or displayed
// status goes through here.
func Classify(index int) domain.TremorStatus {
	switch {
	case index > AltoThreshold:
		return domain.StatusAlto
	case index > ModeradoThreshold:
		return domain.StatusModerado
	default:
		return domain.StatusBajo
	}
}

// magnitudeMeanStd returns the mean and population standard deviation of
// the readings' magnitudes. Callers guarantee len > 0.
func magnitudeMeanStd(readings []domain.Reading) (mean, std float64) {
	n := float64(len(readings))
	for _, r := range readings {
		mean += r.Magnitude
	}
	mean /= n

	var variance float64
	for _, r := range readings {
		d := r.Magnitude - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

// MeanMagnitude returns the average magnitude, 0 for empty input.
func MeanMagnitude(readings []domain.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	mean, _ := magnitudeMeanStd(readings)
	return mean
}
