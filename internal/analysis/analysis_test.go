package analysis

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// series builds readings whose magnitude equals each value, spaced stepMs apart.
func series(stepMs int64, mags ...float64) []domain.Reading {
	out := make([]domain.Reading, len(mags))
	for i, m := range mags {
		out[i] = domain.NewReading(int64(i)*stepMs, m, 0, 0)
	}
	return out
}

// pulseTrain repeats a 0,0,1,0,0 magnitude pattern: one peak every 5 samples.
func pulseTrain(n int, stepMs int64) []domain.Reading {
	mags := make([]float64, n)
	for i := range mags {
		if i%5 == 2 {
			mags[i] = 1
		}
	}
	return series(stepMs, mags...)
}

func TestTremorIndex(t *testing.T) {
	assert.Equal(t, 0, TremorIndex(nil))
	assert.Equal(t, 0, TremorIndex(series(10, 1, 1, 1)), "constant magnitude has no variability")
	assert.Equal(t, 25, TremorIndex(series(10, 0, 1)))
	assert.Equal(t, 50, TremorIndex(series(10, 0, 2, 0, 2)))
	assert.Equal(t, 100, TremorIndex(series(10, 0, 4)), "clamped at 100")
	assert.Equal(t, 100, TremorIndex(series(10, 0, 40)))
}

func TestTremorIndex_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(50) + 1
		readings := make([]domain.Reading, n)
		for i := range readings {
			readings[i] = domain.NewReading(int64(i), rng.NormFloat64()*3, rng.NormFloat64()*3, rng.NormFloat64()*3)
		}
		idx := TremorIndex(readings)
		assert.GreaterOrEqual(t, idx, 0)
		assert.LessOrEqual(t, idx, 100)
	}
}

func TestTremorIndex_NaNReadsAsZero(t *testing.T) {
	readings := []domain.Reading{domain.NewReading(0, math.NaN(), 0, 0), domain.NewReading(1, 1, 0, 0)}
	assert.Equal(t, 0, TremorIndex(readings))
}

func TestIndexOver(t *testing.T) {
	readings := series(10, 0, 4, 1, 1, 1)
	assert.Equal(t, TremorIndex(readings), IndexOver(readings, 0), "zero window is the whole buffer")
	assert.Equal(t, TremorIndex(readings), IndexOver(readings, 50))
	assert.Equal(t, 0, IndexOver(readings, 3), "last three readings are flat")
}

func TestClassify_Partition(t *testing.T) {
	for i := 0; i <= 100; i++ {
		got := Classify(i)
		switch {
		case i > 66:
			assert.Equal(t, domain.StatusAlto, got, "index %d", i)
		case i > 33:
			assert.Equal(t, domain.StatusModerado, got, "index %d", i)
		default:
			assert.Equal(t, domain.StatusBajo, got, "index %d", i)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	assert.Equal(t, domain.StatusBajo, Classify(33))
	assert.Equal(t, domain.StatusModerado, Classify(34))
	assert.Equal(t, domain.StatusModerado, Classify(66))
	assert.Equal(t, domain.StatusAlto, Classify(67))
}

func TestMovingAverage_ShortInputIsIdentity(t *testing.T) {
	in := series(10, 1, 2, 3, 4)
	out := MovingAverage(in, 5)
	assert.Equal(t, in, out)
}

func TestMovingAverage_CenteredShrinkingWindow(t *testing.T) {
	in := series(10, 1, 2, 3, 4, 5)
	out := MovingAverage(in, 5)
	require.Len(t, out, 5)

	want := []float64{2, 2.5, 3, 3.5, 4}
	for i, w := range want {
		assert.InDelta(t, w, out[i].Magnitude, 1e-12, "magnitude at %d", i)
		assert.InDelta(t, w, out[i].X, 1e-12, "x at %d", i)
		assert.Equal(t, in[i].Timestamp, out[i].Timestamp, "timestamps pass through")
	}
}

func TestMovingAverage_DoesNotMutateInput(t *testing.T) {
	in := series(10, 1, 9, 1, 9, 1, 9)
	before := append([]domain.Reading(nil), in...)
	_ = MovingAverage(in, 3)
	assert.Equal(t, before, in)
}

func TestDetectPeaks(t *testing.T) {
	readings := series(10, 0, 1, 0, 0.4, 0.3, 2, 1)
	assert.Equal(t, []int{1, 5}, DetectPeaks(readings, DefaultPeakThreshold))
}

func TestDetectPeaks_ShortInput(t *testing.T) {
	assert.Empty(t, DetectPeaks(nil, 0.5))
	assert.Empty(t, DetectPeaks(series(10, 0, 5), 0.5))
}

func TestDetectPeaks_NeverFirstOrLast(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(30) + 1
		mags := make([]float64, n)
		for i := range mags {
			mags[i] = rng.Float64() * 3
		}
		for _, p := range DetectPeaks(series(10, mags...), 0.5) {
			assert.NotEqual(t, 0, p)
			assert.NotEqual(t, n-1, p)
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	// 20 Hz sampling, one peak every 250 ms.
	readings := pulseTrain(20, 50)
	freq := DominantFrequency(readings, DefaultPeakThreshold)
	assert.InDelta(t, 4.0, freq, 1e-9)
	assert.True(t, InParkinsonRange(freq))
}

func TestDominantFrequency_InsufficientData(t *testing.T) {
	assert.Equal(t, 0.0, DominantFrequency(pulseTrain(9, 50), DefaultPeakThreshold), "fewer than 10 readings")

	onePeak := series(50, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 0.0, DominantFrequency(onePeak, DefaultPeakThreshold), "fewer than 2 peaks")

	sameTime := pulseTrain(20, 0)
	assert.Equal(t, 0.0, DominantFrequency(sameTime, DefaultPeakThreshold), "all intervals non-positive")
}

func TestInParkinsonRange(t *testing.T) {
	assert.False(t, InParkinsonRange(3.99))
	assert.True(t, InParkinsonRange(4))
	assert.True(t, InParkinsonRange(5.2))
	assert.True(t, InParkinsonRange(6))
	assert.False(t, InParkinsonRange(6.01))
	assert.False(t, InParkinsonRange(0))
}

func TestDetectAnomalies(t *testing.T) {
	mags := make([]float64, 20)
	for i := range mags {
		mags[i] = 1
	}
	mags[10] = 100
	assert.Equal(t, []int{10}, DetectAnomalies(series(10, mags...)))
}

func TestDetectAnomalies_InsufficientOrFlat(t *testing.T) {
	assert.Empty(t, DetectAnomalies(series(10, 1, 1, 100)))
	assert.Empty(t, DetectAnomalies(series(10, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2)))
}

func TestSummarize(t *testing.T) {
	s := Summarize(pulseTrain(20, 50), DefaultOptions())

	assert.Equal(t, 20, s.TremorIndex)
	assert.Equal(t, domain.StatusBajo, s.Severity)
	assert.Equal(t, 4.0, s.Frequency)
	assert.Equal(t, 4, s.PeakCount)
	assert.Equal(t, 0, s.AnomalyCount)
	assert.True(t, s.IsParkinsonRange)
	assert.Equal(t, 20, s.ReadingCount)
	assert.InDelta(t, 0.2, s.MeanMagnitude, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultOptions())
	assert.Equal(t, Summary{Severity: domain.StatusBajo}, s)
}

func TestSummarize_FrequencyRoundedToTwoDecimals(t *testing.T) {
	// Peaks 3 samples apart at 70 ms spacing: 1/0.21 = 4.7619...
	mags := make([]float64, 12)
	for i := range mags {
		if i%3 == 1 {
			mags[i] = 1
		}
	}
	s := Summarize(series(70, mags...), DefaultOptions())
	assert.Equal(t, 4.76, s.Frequency)
}

func TestLive(t *testing.T) {
	notReady := Live(pulseTrain(9, 50), DefaultOptions())
	assert.False(t, notReady.Ready)
	assert.Equal(t, domain.StatusBajo, notReady.Severity)

	live := Live(pulseTrain(40, 50), DefaultOptions())
	assert.True(t, live.Ready)
	assert.Equal(t, Classify(live.TremorIndex), live.Severity)
	assert.Equal(t, TremorIndex(MovingAverage(pulseTrain(40, 50), 5)), live.TremorIndex)
}

func TestLive_UsesMostRecentWindow(t *testing.T) {
	flat := series(10, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	noisy := append(pulseTrain(20, 50), flat...)
	live := Live(noisy, Options{Window: len(flat)})
	assert.True(t, live.Ready)
	assert.Equal(t, 0, live.TremorIndex)
}

func TestFromSamples(t *testing.T) {
	samples := []domain.Sample{
		{Kind: domain.SensorAccelerometer, X: 3, Y: 4, Timestamp: 1},
		{Kind: domain.SensorGyroscope, X: 1, Timestamp: 2},
		{Kind: domain.SensorAccelerometer, Z: 2, Timestamp: 3},
	}

	acc := FromSamples(samples)
	require.Len(t, acc, 2)
	assert.Equal(t, 5.0, acc[0].Magnitude)
	assert.Equal(t, int64(3), acc[1].Timestamp)

	both := FromSamples(samples, domain.SensorAccelerometer, domain.SensorGyroscope)
	assert.Len(t, both, 3)
}

func TestSummarize_NonFiniteEncodesAsJSON(t *testing.T) {
	readings := []domain.Reading{
		domain.NewReading(0, 1e200, 0, 0),
		domain.NewReading(10, 0.1, 0, 0),
	}
	s := Summarize(readings, DefaultOptions())
	require.True(t, math.IsInf(s.MeanMagnitude, 1))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["meanMagnitude"])
	assert.EqualValues(t, 2, decoded["readingCount"])
	assert.EqualValues(t, 0, decoded["tremorIndex"])
}
