package analysis

// Calibration constants. The index gain and the severity thresholds are tuned
// together; changing one without the other shifts every stored status.
const (
	IndexGain = 50.0
	MaxIndex  = 100

	AltoThreshold     = 66
	ModeradoThreshold = 33

	DefaultSmoothingWindow = 5
	DefaultPeakThreshold   = 0.5
	DefaultLiveWindow      = 1000

	// MinFrequencyReadings is also the minimum for anomaly detection and live metrics.
	MinFrequencyReadings = 10

	ParkinsonMinHz = 4.0
	ParkinsonMaxHz = 6.0
)

// Options tunes the analysis passes that have a configurable parameter.
type Options struct {
	SmoothingWindow int
	PeakThreshold   float64
	// Window is the number of most recent readings used for live metrics.
	// Zero or negative means the whole sequence.
	Window int
}

// DefaultOptions returns the calibrated defaults.
func DefaultOptions() Options {
	return Options{
		SmoothingWindow: DefaultSmoothingWindow,
		PeakThreshold:   DefaultPeakThreshold,
		Window:          DefaultLiveWindow,
	}
}

func (o Options) withDefaults() Options {
	if o.SmoothingWindow <= 0 {
		o.SmoothingWindow = DefaultSmoothingWindow
	}
	if o.PeakThreshold <= 0 {
		o.PeakThreshold = DefaultPeakThreshold
	}
	return o
}
