package analysis

import "github.com/alexanderramin/tremor/internal/domain"

// DetectPeaks returns the indices of interior readings whose magnitude is
// strictly greater than both neighbours and than threshold.
func DetectPeaks(readings []domain.Reading, threshold float64) []int {
	if len(readings) < 3 {
		return nil
	}
	var peaks []int
	for i := 1; i < len(readings)-1; i++ {
		m := readings[i].Magnitude
		if m > readings[i-1].Magnitude && m > readings[i+1].Magnitude && m > threshold {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// DominantFrequency estimates the oscillation rate in Hz from the mean
// interval between consecutive peaks. It needs at least 10 readings and two
// peaks; non-positive intervals are discarded. Returns 0 otherwise.
func DominantFrequency(readings []domain.Reading, threshold float64) float64 {
	if len(readings) < MinFrequencyReadings {
		return 0
	}
	return frequencyFromPeaks(readings, DetectPeaks(readings, threshold))
}

func frequencyFromPeaks(readings []domain.Reading, peaks []int) float64 {
	if len(peaks) < 2 {
		return 0
	}

	var total float64
	var count int
	for i := 1; i < len(peaks); i++ {
		dt := float64(readings[peaks[i]].Timestamp-readings[peaks[i-1]].Timestamp) / 1000
		if dt <= 0 {
			continue
		}
		total += dt
		count++
	}
	if count == 0 {
		return 0
	}
	return 1 / (total / float64(count))
}

// InParkinsonRange reports whether freq lies in the 4-6 Hz band, inclusive.
func InParkinsonRange(freq float64) bool {
	return freq >= ParkinsonMinHz && freq <= ParkinsonMaxHz
}
