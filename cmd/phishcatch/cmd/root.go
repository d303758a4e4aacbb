package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/config"
	"github.com/stoik/phishcatch/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "phishcatch",
	Short: "PhishCatch - enterprise credential reuse and phishing page detection",
	Long: `PhishCatch receives credential and page events from the browser extension.

It remembers digests of enterprise passwords, alerts when one is typed on a
dangerous host, and flags pages that copy the structure of an enterprise login page.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(lookupCmd)
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log = logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	return nil
}
