package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photodb",
		Short: "Inspect Photo Database containers",
		Long:  "photodb decodes the Photo Database container a portable media device keeps its photo catalogue in.",
		// Errors are reported once by main.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newDecodeCmd(), newStatsCmd(), newMhodCmd())
	return rootCmd
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
