package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/tremor/internal/app"
	"github.com/alexanderramin/tremor/internal/service"
	"github.com/spf13/cobra"
)

func newSyncCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Track sessions waiting to reach a secondary store",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "mark ID...",
			Short: "Queue sessions for sync",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Sync.MarkForSync(cmd.Context(), args...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) pending\n", len(a.Sync.PendingIDs(cmd.Context())))
				return nil
			},
		},
		&cobra.Command{
			Use:   "done ID...",
			Short: "Mark sessions as synced without deleting them",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Sync.MarkSynced(cmd.Context(), args...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) pending\n", len(a.Sync.PendingIDs(cmd.Context())))
				return nil
			},
		},
		&cobra.Command{
			Use:   "pending",
			Short: "List ids waiting for sync",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ids := a.Sync.PendingIDs(cmd.Context())
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing pending.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "payload",
			Short: "Print the transfer payload for pending sessions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd, a.Sync.PreparePayload(a.Sync.GetSessionsToSync(cmd.Context())))
			},
		},
		&cobra.Command{
			Use:   "cleanup ID...",
			Short: "Delete confirmed-synced sessions locally",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Sync.Cleanup(cmd.Context(), args...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleaned up %d session(s)\n", len(args))
				return nil
			},
		},
		newSyncReceiveCmd(a),
	)

	return cmd
}

func newSyncReceiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "receive FILE",
		Short: "Store the sessions of a payload from another device (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(a.stdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading payload: %w", err)
			}

			var payload app.SyncPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("%w: decoding payload: %w", service.ErrInvalidImport, err)
			}

			received, err := a.Sync.Receive(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Received %d session(s), skipped %d\n",
				len(received), len(payload.Sessions)-len(received))
			return nil
		},
	}
}
