package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/service"
	"github.com/alexanderramin/tremor/internal/source"
	"github.com/alexanderramin/tremor/internal/tracker"
	"github.com/spf13/cobra"
)

// App holds the services and hooks CLI commands run against.
type App struct {
	Sessions service.SessionStore
	Sync     service.SyncService
	Reports  service.ReportService

	// NewTracker builds a tracker persisting through Sessions.
	NewTracker      func() *tracker.Tracker
	AnalysisOptions analysis.Options
	Logger          *slog.Logger

	// Stdin is the default sample stream for record and resume.
	Stdin         io.Reader
	IsInteractive func() bool
	DialSource    func(ctx context.Context, url string) (source.Producer, error)

	// MetricsAddr, when set, serves MetricsHandler on /metrics while recording.
	MetricsAddr    string
	MetricsHandler http.Handler

	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *App) stdin() io.Reader {
	if a.Stdin != nil {
		return a.Stdin
	}
	return os.Stdin
}

func (a *App) dial(ctx context.Context, url string) (source.Producer, error) {
	if a.DialSource != nil {
		return a.DialSource(ctx, url)
	}
	return source.DialWebsocket(ctx, url, source.WebsocketOptions{})
}

// NewRootCmd creates the top-level "tremor" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tremor",
		Short:         "Record, analyse and keep tremor monitoring sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRecordCmd(app),
		newResumeCmd(app),
		newSessionCmd(app),
		newAnalyzeCmd(app),
		newStatsCmd(app),
		newSyncCmd(app),
		newReportCmd(app),
	)

	return root
}
