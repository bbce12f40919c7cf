package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/cli/formatter"
	"github.com/alexanderramin/tremor/internal/service"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionShowCmd(app),
		newSessionRemoveCmd(app),
		newSessionClearCmd(app),
		newSessionExportCmd(app),
		newSessionImportCmd(app),
	)

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var filters filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.build(cmd)
			if err != nil {
				return err
			}
			sessions := app.Sessions.GetFiltered(cmd.Context(), f)
			service.SortNewestFirst(sessions)

			if asJSON {
				for i := range sessions {
					sessions[i].Readings = nil
				}
				return writeJSON(cmd, sessions)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(sessions, app.now()))
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sessions as JSON without readings")
	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one session with its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Sessions.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sum := analysis.Summarize(s.Readings, app.AnalysisOptions)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionDetail(s, sum))
			return nil
		},
	}
}

func newSessionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"remove"},
		Short:   "Remove sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.DeleteMany(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s)\n", len(args))
			return nil
		},
	}
}

func newSessionClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all sessions without --yes")
			}
			if err := app.Sessions.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All sessions deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newSessionExportCmd(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all sessions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := app.Sessions.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), blob)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(blob+"\n"), 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newSessionImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all sessions with the contents of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}
			if err := app.Sessions.ImportJSON(cmd.Context(), string(blob)); err != nil {
				return err
			}
			n := len(app.Sessions.GetAll(cmd.Context()))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d session(s)\n", n)
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
