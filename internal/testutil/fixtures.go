package testutil

import (
	"math"
	"time"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/google/uuid"
)

// SessionOption customises a fixture session.
type SessionOption func(*domain.Session)

// WithIndex sets the tremor index and the status that matches it.
func WithIndex(index int, status domain.TremorStatus) SessionOption {
	return func(s *domain.Session) {
		s.TremorIndex = index
		s.TremorStatus = status
	}
}

func WithStart(start time.Time) SessionOption {
	return func(s *domain.Session) {
		d := s.EndTime - s.StartTime
		s.StartTime = start.UnixMilli()
		s.EndTime = s.StartTime + d
	}
}

func WithDurationSeconds(sec int) SessionOption {
	return func(s *domain.Session) {
		s.EndTime = s.StartTime + int64(sec)*1000
		s.Duration = sec
	}
}

func WithReadings(readings []domain.Reading) SessionOption {
	return func(s *domain.Session) {
		s.Readings = readings
	}
}

func WithNotes(notes string) SessionOption {
	return func(s *domain.Session) {
		s.Notes = notes
	}
}

func WithHeartRate(bpm int) SessionOption {
	return func(s *domain.Session) {
		s.HeartRate = &bpm
	}
}

func WithID(id string) SessionOption {
	return func(s *domain.Session) {
		s.ID = id
	}
}

// NewTestSession returns a valid low-severity session of 60 seconds with a
// handful of readings.
func NewTestSession(opts ...SessionOption) domain.Session {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC).UnixMilli()
	s := domain.Session{
		ID:           "session_" + uuid.New().String(),
		StartTime:    start,
		EndTime:      start + 60_000,
		Duration:     60,
		Readings:     SineReadings(start, 20, 50, 5, 0.1),
		TremorIndex:  10,
		TremorStatus: domain.StatusBajo,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SineReadings returns n accelerometer readings sampled every stepMs,
// oscillating on x around 1 g at freqHz with the given amplitude.
func SineReadings(start int64, n int, stepMs int64, freqHz, amplitude float64) []domain.Reading {
	out := make([]domain.Reading, n)
	for i := range out {
		ts := start + int64(i)*stepMs
		sec := float64(int64(i)*stepMs) / 1000
		x := 1 + amplitude*math.Sin(2*math.Pi*freqHz*sec)
		out[i] = domain.NewReading(ts, x, 0.02, 0.01)
	}
	return out
}
