package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-bioacoustics/pipeline"
	"github.com/cwbudde/algo-bioacoustics/store"
)

var spectrogramCmd = &cobra.Command{
	Use:   "spectrogram [recording.wav ...]",
	Short: "Compute and cache spectrograms for recordings",
	Long: `Computes a decibel spectrogram for each recording and caches it in the
store under the recording's base name. Later feature extraction runs reuse
cached spectrograms instead of recomputing them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpectrogram,
}

func runSpectrogram(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	windowType, err := cfg.WindowType()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()

	samples := make([]*pipeline.Sample, len(args))
	for i, path := range args {
		samples[i] = &pipeline.Sample{Path: path}
	}

	runner := pipeline.NewRunner([]pipeline.Action{
		pipeline.LoadAudio{SampleRate: cfg.SampleRate},
		pipeline.ToSpectrogram{
			WindowSamples:  cfg.Spectrogram.WindowSamples,
			OverlapSamples: cfg.Spectrogram.OverlapSamples,
			Window:         windowType,
		},
		pipeline.ToDecibels{},
	}, pipeline.WithWorkers(cfg.Workers), pipeline.WithLogger(logger))

	results, err := runner.Run(ctx, samples)
	if err != nil {
		return err
	}

	cached := 0
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("recording skipped",
				zap.String("path", res.Sample.Path),
				zap.Error(res.Err))
			continue
		}

		if err := db.PutSpectrogram(ctx, label(res.Sample.Path), res.Sample.Spec); err != nil {
			return err
		}
		cached++
	}

	logger.Info("spectrograms cached",
		zap.Int("cached", cached),
		zap.Int("failed", len(results)-cached),
		zap.String("store", db.Path()))
	return nil
}
