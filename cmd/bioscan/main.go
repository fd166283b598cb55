// Command bioscan analyzes field recordings of animal vocalizations.
//
// Usage:
//
//	bioscan [command] [flags]
//
// Commands:
//
//	split        split recordings into labeled fixed-duration segments
//	spectrogram  compute and cache spectrograms for recordings
//	ribbit       pulse-rate detection over a recording
//	features     extract template-matching feature vectors into the store
//	windows      print spectral properties of the available analysis windows
//
// Examples:
//
//	bioscan split field01.wav --table field01.Table.1.selections.txt --out segments
//	bioscan ribbit pond.wav --config bioscan.yaml
//	bioscan features train/*.wav --description "spring survey"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-bioacoustics/config"
)

var (
	cfgPath string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bioscan",
	Short: "Bioacoustic recording analysis",
	Long: `bioscan processes field recordings of animal vocalizations.

It splits long recordings into labeled training segments, computes cached
spectrograms, detects pulsed vocalizations by repetition rate, and extracts
spectrogram template-matching features for species classification.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded", zap.String("path", cfgPath))
		} else {
			cfg = config.Default()
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(spectrogramCmd)
	rootCmd.AddCommand(ribbitCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(windowsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// label derives the store key for a recording path.
func label(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
