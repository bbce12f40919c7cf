package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/tremor/internal/cli/formatter"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/source"
	"github.com/alexanderramin/tremor/internal/tracker"
	"github.com/spf13/cobra"
)

type recordOptions struct {
	input            string
	wsURL            string
	notes            string
	pauseOnInterrupt bool
	markForSync      bool
	progress         time.Duration
}

func addRecordFlags(cmd *cobra.Command, o *recordOptions) {
	cmd.Flags().StringVar(&o.input, "input", "-", `JSON-lines sample file, or "-" for stdin`)
	cmd.Flags().StringVar(&o.wsURL, "ws", "", "Read samples from a websocket sensor bridge instead of --input")
	cmd.Flags().StringVar(&o.notes, "notes", "", "Notes stored with the finished session")
	cmd.Flags().BoolVar(&o.pauseOnInterrupt, "pause-on-interrupt", false, "On Ctrl-C save a resumable snapshot instead of finishing")
	cmd.Flags().BoolVar(&o.markForSync, "sync", false, "Queue the finished session for sync")
	cmd.Flags().DurationVar(&o.progress, "progress", 0, "Print live metrics to stderr at this interval (0 disables)")
}

func newRecordCmd(app *App) *cobra.Command {
	var opts recordOptions
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a new session from a sample stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecording(cmd, app, opts, func(ctx context.Context, tr *tracker.Tracker) error {
				id, _ := tr.Start(ctx)
				fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s\n", id)
				return nil
			})
		},
	}
	addRecordFlags(cmd, &opts)
	return cmd
}

func newResumeCmd(app *App) *cobra.Command {
	var opts recordOptions
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session and keep recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecording(cmd, app, opts, func(ctx context.Context, tr *tracker.Tracker) error {
				ok, err := tr.Resume(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errNothingToResume
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Resumed %s with %d readings\n", tr.SessionID(), len(tr.Readings()))
				return nil
			})
		},
	}
	addRecordFlags(cmd, &opts)
	return cmd
}

var errNothingToResume = errors.New("no paused session to resume")

// runRecording drives one tracker from a producer until the stream ends or
// the user interrupts, then finishes or pauses the session.
func runRecording(cmd *cobra.Command, app *App, opts recordOptions, begin func(context.Context, *tracker.Tracker) error) error {
	log := app.logger()
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer, err := openProducer(ctx, app, opts)
	if err != nil {
		return err
	}
	defer producer.Close()

	tr := app.NewTracker()
	if err := begin(ctx, tr); err != nil {
		if errors.Is(err, errNothingToResume) {
			fmt.Fprintln(out, "No paused session to resume.")
			return nil
		}
		return err
	}

	if app.MetricsAddr != "" && app.MetricsHandler != nil {
		shutdown, err := serveMetrics(app.MetricsAddr, app.MetricsHandler)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if opts.progress > 0 {
		done := make(chan struct{})
		defer close(done)
		go reportProgress(cmd.ErrOrStderr(), tr, opts.progress, done)
	}

	stats, err := source.Pump(ctx, producer, tr.AddSample)
	log.Info("sample stream ended",
		"delivered", stats.Delivered,
		"rejected", stats.Rejected,
		"skipped", stats.Skipped,
	)
	if err != nil {
		log.Error("sample stream failed", "error", err)
	}

	// The signal context is done by now; persisting must not inherit it.
	persistCtx := context.WithoutCancel(cmd.Context())
	interrupted := ctx.Err() != nil

	if interrupted && opts.pauseOnInterrupt {
		if perr := tr.Pause(persistCtx); perr != nil {
			return perr
		}
		fmt.Fprintf(out, "Paused %s with %d readings. Run `tremor resume` to continue.\n",
			tr.SessionID(), len(tr.Readings()))
		return err
	}

	session, serr := tr.Stop(persistCtx, opts.notes)
	if serr != nil {
		return serr
	}
	if session == nil {
		return err
	}
	if opts.markForSync && app.Sync != nil {
		if merr := app.Sync.MarkForSync(persistCtx, session.ID); merr != nil {
			log.Warn("queueing session for sync failed", "session_id", session.ID, "error", merr)
		}
	}

	fmt.Fprintf(out, "Saved session %s: %s, index %d, %d readings\n",
		session.ID, formatter.FormatDuration(session.Duration), session.TremorIndex, len(session.Readings))
	fmt.Fprint(out, formatter.SeverityPill(session.TremorStatus)+"\n")
	return err
}

func openProducer(ctx context.Context, app *App, opts recordOptions) (source.Producer, error) {
	if opts.wsURL != "" {
		return app.dial(ctx, opts.wsURL)
	}
	if opts.input == "" || opts.input == "-" {
		if app.IsInteractive != nil && app.IsInteractive() {
			return nil, errors.New("refusing to read samples from an interactive terminal; pipe a JSON-lines stream, or use --input or --ws")
		}
		return source.NewJSONLines(io.NopCloser(app.stdin())), nil
	}
	f, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("opening sample file: %w", err)
	}
	return source.NewJSONLines(f), nil
}

func reportProgress(w io.Writer, tr *tracker.Tracker, every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if tr.State() != domain.StateActive {
				continue
			}
			fmt.Fprintln(w, formatter.FormatLive(tr.State(), tr.TremorIndex(), len(tr.Readings()), tr.Live()))
		}
	}
}

// serveMetrics exposes handler on addr/metrics until the returned func runs.
func serveMetrics(addr string, handler http.Handler) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
