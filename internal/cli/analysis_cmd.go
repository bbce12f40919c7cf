package cli

import (
	"fmt"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/cli/formatter"
	"github.com/alexanderramin/tremor/internal/stats"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var asJSON, smooth bool
	cmd := &cobra.Command{
		Use:   "analyze ID",
		Short: "Re-run the tremor analysis over a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Sessions.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			readings := s.Readings
			if smooth {
				readings = analysis.MovingAverage(readings, app.AnalysisOptions.SmoothingWindow)
			}
			sum := analysis.Summarize(readings, app.AnalysisOptions)
			if asJSON {
				return writeJSON(cmd, sum)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(sum))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "Smooth readings with the moving average first")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	var filters filterFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics over stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.build(cmd)
			if err != nil {
				return err
			}
			st := stats.Compute(app.Sessions.GetFiltered(cmd.Context(), f))
			if asJSON {
				return writeJSON(cmd, st)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStatistics(st))
			return nil
		},
	}
	addFilterFlags(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}
