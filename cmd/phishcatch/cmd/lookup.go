package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stoik/phishcatch/internal/app"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Check whether a password is recorded as an enterprise password",
	Long: `Reads a password from the terminal without echo and reports the enterprise
account it was recorded for. The password itself is never printed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		if len(password) == 0 {
			return errors.New("password cannot be empty")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.Hashes.Lookup(ctx, string(password))
		if err != nil {
			return err
		}
		if record == nil {
			fmt.Println("No enterprise record for this password")
			return nil
		}

		fmt.Printf("✓ Enterprise password for %s on %s (recorded %s)\n",
			record.Username, record.Hostname, record.CreatedAt.Format(time.RFC3339))
		return nil
	},
}
