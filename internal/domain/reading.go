package domain

import "math"

// Reading is one timestamped 3-axis motion sample. Magnitude is always
// derived from the axes; use NewReading rather than filling it by hand.
type Reading struct {
	Timestamp int64   `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Magnitude float64 `json:"magnitude"`
}

// NewReading builds a Reading with Magnitude set to the Euclidean norm of
// (x, y, z). NaN and Inf inputs propagate into Magnitude.
func NewReading(timestampMs int64, x, y, z float64) Reading {
	return Reading{
		Timestamp: timestampMs,
		X:         x,
		Y:         y,
		Z:         z,
		Magnitude: Magnitude(x, y, z),
	}
}

// Magnitude returns sqrt(x²+y²+z²).
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Sample is a raw packet delivered by the sensor transport.
type Sample struct {
	Kind      SensorKind `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Z         float64    `json:"z"`
	Timestamp int64      `json:"timestamp"`
}

// Reading converts the sample into a Reading stamped with the sample's own timestamp.
func (s Sample) Reading() Reading {
	return NewReading(s.Timestamp, s.X, s.Y, s.Z)
}
