// Package tracker owns the lifecycle of one monitoring session: start,
// streaming accumulation, pause and resume through a persisted snapshot,
// and finalisation into an immutable session record.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/domain"
)

var (
	// ErrSaveFailed wraps a store failure while finalising a session. The
	// tracker stays Active with its buffer intact.
	ErrSaveFailed = errors.New("saving finished session")
	// ErrPauseFailed wraps a store failure while writing the resume snapshot.
	ErrPauseFailed = errors.New("saving resume snapshot")
)

// Store is the slice of the session store the tracker needs.
type Store interface {
	Save(ctx context.Context, s domain.Session) error
	SaveCurrent(ctx context.Context, p domain.PartialSession) error
	GetCurrent(ctx context.Context) (domain.PartialSession, bool)
	ClearCurrent(ctx context.Context) error
}

// Tracker is safe for concurrent use. Producers call AddReading or
// AddSample from their own goroutine while a controller drives the
// lifecycle.
type Tracker struct {
	store        Store
	clock        Clock
	ids          IDGenerator
	bufferCap    int
	neutralIndex int
	analysisOpts analysis.Options
	logger       *slog.Logger

	mu        sync.Mutex
	state     domain.TrackerState
	sessionID string
	startTime int64
	lastTs    int64
	buf       []domain.Reading
	index     int
}

// New returns an Idle tracker persisting through store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:        store,
		clock:        systemClock{},
		ids:          defaultIDs{},
		bufferCap:    DefaultBufferCap,
		neutralIndex: DefaultNeutralIndex,
		analysisOpts: analysis.DefaultOptions(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:        domain.StateIdle,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.index = t.neutralIndex
	return t
}

// Start begins a fresh session from Idle or Paused. A paused session that
// was never resumed is abandoned in memory; its snapshot stays in the store.
// While Active it is a no-op returning the current id and false.
func (t *Tracker) Start(ctx context.Context) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == domain.StateActive {
		t.logger.DebugContext(ctx, "start ignored", "state", t.state, "session_id", t.sessionID)
		return t.sessionID, false
	}

	now := t.clock.Now()
	t.sessionID = t.ids.NewID(now)
	t.startTime = now.UnixMilli()
	t.lastTs = 0
	t.buf = make([]domain.Reading, 0, t.bufferCap)
	t.index = t.neutralIndex
	t.state = domain.StateActive

	t.logger.InfoContext(ctx, "session started", "session_id", t.sessionID)
	return t.sessionID, true
}

// AddReading appends an accelerometer reading stamped with the current time.
// It reports false and does nothing unless the tracker is Active.
func (t *Tracker) AddReading(x, y, z float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendLocked(t.clock.Now().UnixMilli(), x, y, z)
}

// AddSample appends a transport sample, keeping its device timestamp when it
// has one. Non-accelerometer samples are ignored.
func (t *Tracker) AddSample(s domain.Sample) bool {
	if s.Kind != domain.SensorAccelerometer {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	ts := s.Timestamp
	if ts <= 0 {
		ts = t.clock.Now().UnixMilli()
	}
	return t.appendLocked(ts, s.X, s.Y, s.Z)
}

func (t *Tracker) appendLocked(ts int64, x, y, z float64) bool {
	if t.state != domain.StateActive {
		t.logger.Debug("reading dropped", "state", t.state)
		return false
	}

	// Timestamps never go backwards within a session.
	if ts < t.lastTs {
		ts = t.lastTs
	}
	t.lastTs = ts

	t.buf = append(t.buf, domain.NewReading(ts, x, y, z))
	if over := len(t.buf) - t.bufferCap; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.index = analysis.IndexOver(t.buf, 0)
	return true
}

// Stop finalises the Active session and saves it. Outside Active it returns
// (nil, nil). When the save fails the tracker keeps its buffer and stays
// Active so the caller can retry.
func (t *Tracker) Stop(ctx context.Context, notes string) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != domain.StateActive {
		t.logger.DebugContext(ctx, "stop ignored", "state", t.state)
		return nil, nil
	}

	end := t.clock.Now().UnixMilli()
	if end < t.startTime {
		end = t.startTime
	}
	session := &domain.Session{
		ID:           t.sessionID,
		StartTime:    t.startTime,
		EndTime:      end,
		Duration:     domain.DurationSeconds(t.startTime, end),
		Readings:     append([]domain.Reading{}, t.buf...),
		TremorIndex:  t.index,
		TremorStatus: analysis.Classify(t.index),
		Notes:        notes,
	}

	if err := t.store.Save(ctx, *session); err != nil {
		t.logger.ErrorContext(ctx, "session save failed", "session_id", t.sessionID, "error", err)
		return nil, fmt.Errorf("%w %s: %w", ErrSaveFailed, t.sessionID, err)
	}

	if p, ok := t.store.GetCurrent(ctx); ok && p.ID == t.sessionID {
		if err := t.store.ClearCurrent(ctx); err != nil {
			t.logger.WarnContext(ctx, "clearing resume snapshot failed", "session_id", t.sessionID, "error", err)
		}
	}

	t.logger.InfoContext(ctx, "session stopped",
		"session_id", session.ID,
		"readings", len(session.Readings),
		"tremor_index", session.TremorIndex,
		"status", session.TremorStatus,
	)
	t.resetLocked()
	return session, nil
}

func (t *Tracker) resetLocked() {
	t.state = domain.StateIdle
	t.sessionID = ""
	t.startTime = 0
	t.lastTs = 0
	t.buf = nil
	t.index = t.neutralIndex
}

// Pause writes the Active session to the resume slot, overwriting any earlier
// snapshot, then moves to Paused. On failure the tracker stays Active.
func (t *Tracker) Pause(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != domain.StateActive {
		t.logger.DebugContext(ctx, "pause ignored", "state", t.state)
		return nil
	}

	snapshot := domain.PartialSession{
		ID:        t.sessionID,
		StartTime: t.startTime,
		Readings:  append([]domain.Reading{}, t.buf...),
	}
	if err := t.store.SaveCurrent(ctx, snapshot); err != nil {
		t.logger.ErrorContext(ctx, "pause failed", "session_id", t.sessionID, "error", err)
		return fmt.Errorf("%w %s: %w", ErrPauseFailed, t.sessionID, err)
	}

	t.state = domain.StatePaused
	t.logger.InfoContext(ctx, "session paused", "session_id", t.sessionID, "readings", len(snapshot.Readings))
	return nil
}

// Resume restores the session held in the resume slot and makes it Active.
// It reports false without error when the slot is empty or unusable, or when
// a session is already Active.
func (t *Tracker) Resume(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == domain.StateActive {
		t.logger.DebugContext(ctx, "resume ignored", "state", t.state)
		return false, nil
	}

	p, ok := t.store.GetCurrent(ctx)
	if !ok {
		t.logger.DebugContext(ctx, "nothing to resume")
		return false, nil
	}

	buf := analysis.Tail(p.Readings, t.bufferCap)
	t.buf = append(make([]domain.Reading, 0, t.bufferCap), buf...)
	t.sessionID = p.ID
	t.startTime = p.StartTime
	t.lastTs = 0
	if n := len(t.buf); n > 0 {
		t.lastTs = t.buf[n-1].Timestamp
		t.index = analysis.IndexOver(t.buf, 0)
	} else {
		t.index = t.neutralIndex
	}
	t.state = domain.StateActive

	t.logger.InfoContext(ctx, "session resumed", "session_id", t.sessionID, "readings", len(t.buf))
	return true, nil
}

func (t *Tracker) State() domain.TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SessionID is empty while Idle.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// TremorIndex is the canonical live index over the whole buffer.
func (t *Tracker) TremorIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

// Readings returns a copy of the buffer, oldest first.
func (t *Tracker) Readings() []domain.Reading {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Reading{}, t.buf...)
}

// Live returns smoothed display metrics over the most recent window.
func (t *Tracker) Live() analysis.LiveMetrics {
	return analysis.Live(t.Readings(), t.analysisOpts)
}

// Summary runs the full analysis over a snapshot of the buffer.
func (t *Tracker) Summary() analysis.Summary {
	return analysis.Summarize(t.Readings(), t.analysisOpts)
}
