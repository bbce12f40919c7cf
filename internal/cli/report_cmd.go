package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/tremor/internal/app"
	"github.com/spf13/cobra"
)

func newReportCmd(a *App) *cobra.Command {
	var filters filterFlags
	var ids []string
	var raw, noCharts, noStats bool
	var patient, doctor, outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the JSON bundle a report renderer consumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.build(cmd)
			if err != nil {
				return err
			}
			req := app.NewReportRequest()
			req.SessionIDs = ids
			req.Filters = f
			req.IncludeRawData = raw
			req.IncludeCharts = !noCharts
			req.IncludeStatistics = !noStats
			req.PatientName = patient
			req.DoctorName = doctor

			bundle, err := a.Reports.Build(cmd.Context(), req)
			if err != nil {
				return err
			}
			if outPath == "" {
				return writeJSON(cmd, bundle)
			}
			payload, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
			if err := os.WriteFile(outPath, append(payload, '\n'), 0o600); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report with %d session(s) written to %s\n", len(bundle.Sessions), outPath)
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Session ids to include (overrides filters)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Include full reading series")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Omit decimated chart series")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "Omit aggregate statistics")
	cmd.Flags().StringVar(&patient, "patient", "", "Patient name")
	cmd.Flags().StringVar(&doctor, "doctor", "", "Doctor name")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}
