package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// JSONFloat is a float64 whose JSON form is null when the value is NaN or
// ±Inf. encoding/json refuses non-finite floats, and a single overflowing
// axis would otherwise make a whole session unencodable. null decodes as NaN.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = JSONFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// readingJSON is the wire shape of Reading.
type readingJSON struct {
	Timestamp int64     `json:"timestamp"`
	X         JSONFloat `json:"x"`
	Y         JSONFloat `json:"y"`
	Z         JSONFloat `json:"z"`
	Magnitude JSONFloat `json:"magnitude"`
}

// MarshalJSON writes non-finite components as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{
		Timestamp: r.Timestamp,
		X:         JSONFloat(r.X),
		Y:         JSONFloat(r.Y),
		Z:         JSONFloat(r.Z),
		Magnitude: JSONFloat(r.Magnitude),
	})
}

// UnmarshalJSON reads null components back as NaN. Absent fields stay zero.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var w readingJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Reading{
		Timestamp: w.Timestamp,
		X:         float64(w.X),
		Y:         float64(w.Y),
		Z:         float64(w.Z),
		Magnitude: float64(w.Magnitude),
	}
	return nil
}
