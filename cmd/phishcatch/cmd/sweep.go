package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stoik/phishcatch/internal/app"
)

var listPending bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove notification associations older than the notification TTL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.Alerts.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d stale notification(s)\n", removed)

		if !listPending {
			return nil
		}

		pending, err := a.Alerts.Pending(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d notification(s) awaiting an answer\n", len(pending))
		for _, record := range pending {
			fmt.Printf("  %s  %s  %s\n", record.ID, record.CreatedAt.Format(time.RFC3339), record.URL)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().BoolVarP(&listPending, "list", "l", false, "list notifications still awaiting an answer")
}
