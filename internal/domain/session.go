package domain

import (
	"errors"
	"fmt"
)

// Session is one finished monitoring interval. It is assembled once when
// tracking stops and is never mutated afterwards.
type Session struct {
	ID           string       `json:"id"`
	StartTime    int64        `json:"startTime"`
	EndTime      int64        `json:"endTime"`
	Duration     int          `json:"duration"`
	Readings     []Reading    `json:"readings"`
	TremorIndex  int          `json:"tremorIndex"`
	TremorStatus TremorStatus `json:"tremorStatus"`
	HeartRate    *int         `json:"heartRate,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// DurationSeconds returns floor((end-start)/1000), never negative.
func DurationSeconds(startMs, endMs int64) int {
	if endMs <= startMs {
		return 0
	}
	return int((endMs - startMs) / 1000)
}

// Validate checks the structural invariants of a stored session. The status
// check takes the classifier as an argument so the thresholds stay in one place.
func (s Session) Validate(classify func(int) TremorStatus) error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.EndTime < s.StartTime {
		return fmt.Errorf("session %s: endTime %d before startTime %d", s.ID, s.EndTime, s.StartTime)
	}
	if s.TremorIndex < 0 || s.TremorIndex > 100 {
		return fmt.Errorf("session %s: tremorIndex %d out of range", s.ID, s.TremorIndex)
	}
	if !ValidTremorStatuses[s.TremorStatus] {
		return fmt.Errorf("session %s: unknown tremorStatus %q", s.ID, s.TremorStatus)
	}
	if want := classify(s.TremorIndex); want != s.TremorStatus {
		return fmt.Errorf("session %s: tremorStatus %s does not match index %d (want %s)",
			s.ID, s.TremorStatus, s.TremorIndex, want)
	}
	return nil
}

// PartialSession is the suspended, not yet finalized state kept in the resume slot.
type PartialSession struct {
	ID        string    `json:"id"`
	StartTime int64     `json:"startTime"`
	Readings  []Reading `json:"readings"`
}

// Resumable reports whether the snapshot carries enough state to resume.
func (p PartialSession) Resumable() bool {
	return p.ID != "" && p.StartTime > 0
}

// HistoryFilters are optional, conjunctive bounds for querying stored
// sessions. A nil field is unset.
type HistoryFilters struct {
	StartDate      *int64        `json:"startDate,omitempty"`
	EndDate        *int64        `json:"endDate,omitempty"`
	MinTremorIndex *int          `json:"minTremorIndex,omitempty"`
	MaxTremorIndex *int          `json:"maxTremorIndex,omitempty"`
	Status         *TremorStatus `json:"status,omitempty"`
}

// Match reports whether s satisfies every set bound.
func (f HistoryFilters) Match(s Session) bool {
	if f.StartDate != nil && s.StartTime < *f.StartDate {
		return false
	}
	if f.EndDate != nil && s.EndTime > *f.EndDate {
		return false
	}
	if f.MinTremorIndex != nil && s.TremorIndex < *f.MinTremorIndex {
		return false
	}
	if f.MaxTremorIndex != nil && s.TremorIndex > *f.MaxTremorIndex {
		return false
	}
	if f.Status != nil && s.TremorStatus != *f.Status {
		return false
	}
	return true
}

// StatusCounts holds per-severity session counts.
type StatusCounts struct {
	Bajo     int `json:"bajo"`
	Moderado int `json:"moderado"`
	Alto     int `json:"alto"`
}

// SessionStatistics is an aggregate over a session collection. It is always
// recomputed from scratch and never persisted.
type SessionStatistics struct {
	TotalSessions      int          `json:"totalSessions"`
	AverageTremorIndex float64      `json:"averageTremorIndex"`
	MinTremorIndex     int          `json:"minTremorIndex"`
	MaxTremorIndex     int          `json:"maxTremorIndex"`
	TotalDuration      int          `json:"totalDuration"`
	SessionsPerStatus  StatusCounts `json:"sessionsPerStatus"`
}
