package domain

// TremorStatus is the severity band of a tremor index.
type TremorStatus string

const (
	StatusBajo     TremorStatus = "Bajo"
	StatusModerado TremorStatus = "Moderado"
	StatusAlto     TremorStatus = "Alto"
)

// ValidTremorStatuses is the canonical set of accepted status strings.
var ValidTremorStatuses = map[TremorStatus]bool{
	StatusBajo: true, StatusModerado: true, StatusAlto: true,
}

// SensorKind identifies which motion sensor produced a sample.
type SensorKind string

const (
	SensorAccelerometer SensorKind = "accelerometer"
	SensorGyroscope     SensorKind = "gyroscope"
)

// TrackerState is the lifecycle state of the session tracker.
type TrackerState string

const (
	StateIdle   TrackerState = "idle"
	StateActive TrackerState = "active"
	StatePaused TrackerState = "paused"
)
