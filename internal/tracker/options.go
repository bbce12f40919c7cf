package tracker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/google/uuid"
)

const (
	// DefaultBufferCap bounds the in-memory reading buffer; the oldest reading
	// is evicted first.
	DefaultBufferCap = 1000
	// DefaultNeutralIndex is the live index before any reading arrives.
	DefaultNeutralIndex = 45
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IDGenerator mints session ids.
type IDGenerator interface {
	NewID(start time.Time) string
}

type defaultIDs struct{}

// NewID returns session_<unix ms>_<8 hex chars>. The random suffix keeps two
// sessions started in the same millisecond apart.
func (defaultIDs) NewID(start time.Time) string {
	return fmt.Sprintf("session_%d_%s", start.UnixMilli(), uuid.NewString()[:8])
}

// Option configures a Tracker.
type Option func(*Tracker)

func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(t *Tracker) { t.ids = g }
}

// WithBufferCap sets the reading buffer capacity. Values below 1 are ignored.
func WithBufferCap(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.bufferCap = n
		}
	}
}

func WithNeutralIndex(index int) Option {
	return func(t *Tracker) {
		if index >= 0 && index <= analysis.MaxIndex {
			t.neutralIndex = index
		}
	}
}

func WithAnalysisOptions(opts analysis.Options) Option {
	return func(t *Tracker) { t.analysisOpts = opts }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
