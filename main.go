package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pivolan/ddsummary/config"
)

var (
	verbose bool
	format  string
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ddsummary",
	Short: "Summarize study data against a data dictionary",
	Long: `ddsummary reads the tables of one or more workspaces, matches their columns
against a data dictionary and reports per-variable statistics, unrecognized
columns and tables, unseen variables and enumeration coverage. Workspaces that
share a study are rolled up into one cumulative summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(config.GetConfig().LogLevel)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
		l, err := cfg.Build()
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger = l
		zap.ReplaceGlobals(l)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", FormatText, "Table format: text, markdown or csv")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(dictionaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
