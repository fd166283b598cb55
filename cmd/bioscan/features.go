package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-bioacoustics/features"
	"github.com/cwbudde/algo-bioacoustics/pipeline"
	"github.com/cwbudde/algo-bioacoustics/store"
)

var featuresDescription string

var featuresCmd = &cobra.Command{
	Use:   "features [recording.wav ...]",
	Short: "Extract template-matching feature vectors into the store",
	Long: `Runs the full feature extraction over a training set.

Per recording: a decibel spectrogram, high-energy segment boxes, and a
first-order statistics vector over the whole spectrogram, its frequency
bands, and the segment geometry. Across recordings: each recording's segments
are matched as templates against every other recording's spectrogram and
the normalized correlation peaks are stored.

All artifacts land in the store under a fresh run identifier.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().StringVar(&featuresDescription, "description", "", "free-form run description")
}

type fileArtifacts struct {
	label     string
	sample    *pipeline.Sample
	boxes     []features.Box
	templates []features.Template
}

func runFeatures(cmd *cobra.Command, args []string) error {
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

	run, err := db.BeginRun(ctx, featuresDescription)
	if err != nil {
		return err
	}
	logger.Info("extraction run started",
		zap.String("run", run.ID),
		zap.Int("recordings", len(args)))

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

	// Per-file pass: segments, templates, first-order statistics.
	var files []fileArtifacts
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("recording skipped",
				zap.String("path", res.Sample.Path),
				zap.Error(res.Err))
			continue
		}

		art := fileArtifacts{label: label(res.Sample.Path), sample: res.Sample}
		art.boxes = features.FindSegments(res.Sample.Spec,
			features.WithThresholdSigma(cfg.Features.ThresholdSigma))

		art.templates, err = features.ExtractTemplates(res.Sample.Spec, art.boxes)
		if err != nil {
			return err
		}

		vec, err := features.FileVector(res.Sample.Spec, art.boxes, cfg.Features.FrequencyBands)
		if err != nil {
			return err
		}

		if err := db.PutSpectrogram(ctx, art.label, res.Sample.Spec); err != nil {
			return err
		}
		if err := db.PutFileVector(ctx, run.ID, art.label, vec); err != nil {
			return err
		}

		logger.Debug("recording analyzed",
			zap.String("label", art.label),
			zap.Int("segments", len(art.boxes)))
		files = append(files, art)
	}

	// Cross-file pass: every recording's spectrogram against every other
	// recording's templates.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, target := range files {
		g.Go(func() error {
			for _, source := range files {
				if source.label == target.label {
					continue
				}
				if err := gctx.Err(); err != nil {
					return err
				}

				stats := features.CrossStats(target.sample.Spec, source.templates,
					cfg.Features.FrequencyBuffer)
				if err := db.PutCrossStats(gctx, run.ID, target.label, source.label, stats); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("extraction run finished",
		zap.String("run", run.ID),
		zap.Int("recordings", len(files)),
		zap.String("store", db.Path()))
	return nil
}
