package analysis

import (
	"encoding/json"
	"math"

	"github.com/alexanderramin/tremor/internal/domain"
)

// Summary bundles every metric derived from one snapshot of readings.
type Summary struct {
	TremorIndex      int                 `json:"tremorIndex"`
	Frequency        float64             `json:"frequency"`
	Severity         domain.TremorStatus `json:"severity"`
	PeakCount        int                 `json:"peakCount"`
	AnomalyCount     int                 `json:"anomalyCount"`
	IsParkinsonRange bool                `json:"isParkinsonRange"`
	ReadingCount     int                 `json:"readingCount"`
	MeanMagnitude    float64             `json:"meanMagnitude"`
}

// MarshalJSON writes a non-finite mean magnitude as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		MeanMagnitude domain.JSONFloat `json:"meanMagnitude"`
	}{plain(s), domain.JSONFloat(s.MeanMagnitude)})
}

// Summarize runs the full analysis over readings. The slice is copied first
// so every metric sees the same data even if the caller keeps appending.
func Summarize(readings []domain.Reading, opts Options) Summary {
	opts = opts.withDefaults()
	snapshot := append([]domain.Reading(nil), readings...)

	index := TremorIndex(snapshot)
	peaks := DetectPeaks(snapshot, opts.PeakThreshold)
	var freq float64
	if len(snapshot) >= MinFrequencyReadings {
		freq = frequencyFromPeaks(snapshot, peaks)
	}

	return Summary{
		TremorIndex:      index,
		Frequency:        round2(freq),
		Severity:         Classify(index),
		PeakCount:        len(peaks),
		AnomalyCount:     len(DetectAnomalies(snapshot)),
		IsParkinsonRange: InParkinsonRange(freq),
		ReadingCount:     len(snapshot),
		MeanMagnitude:    MeanMagnitude(snapshot),
	}
}

// LiveMetrics are the display metrics refreshed while samples stream in.
type LiveMetrics struct {
	TremorIndex int                 `json:"tremorIndex"`
	Frequency   float64             `json:"frequency"`
	Severity    domain.TremorStatus `json:"severity"`
	Ready       bool                `json:"ready"`
}

// Live computes display metrics over the most recent opts.Window readings
// after smoothing. With fewer than 10 readings in the window nothing is
// computed and Ready is false.
func Live(readings []domain.Reading, opts Options) LiveMetrics {
	opts = opts.withDefaults()
	window := Tail(readings, opts.Window)
	if len(window) < MinFrequencyReadings {
		return LiveMetrics{Severity: domain.StatusBajo}
	}

	smoothed := MovingAverage(window, opts.SmoothingWindow)
	index := TremorIndex(smoothed)
	return LiveMetrics{
		TremorIndex: index,
		Frequency:   DominantFrequency(smoothed, opts.PeakThreshold),
		Severity:    Classify(index),
		Ready:       true,
	}
}

// FromSamples turns transport samples of the given kinds into readings,
// preserving order. With no kinds, only accelerometer samples are used.
func FromSamples(samples []domain.Sample, kinds ...domain.SensorKind) []domain.Reading {
	if len(kinds) == 0 {
		kinds = []domain.SensorKind{domain.SensorAccelerometer}
	}
	keep := make(map[domain.SensorKind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	out := make([]domain.Reading, 0, len(samples))
	for _, s := range samples {
		if keep[s.Kind] {
			out = append(out, s.Reading())
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
