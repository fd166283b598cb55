package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-bioacoustics/annotation"
	"github.com/cwbudde/algo-bioacoustics/audio"
)

var (
	splitTable       string
	splitCorrections string
	splitOut         string
)

var splitCmd = &cobra.Command{
	Use:   "split [recording.wav]",
	Short: "Split a recording into labeled fixed-duration segments",
	Long: `Splits a recording into fixed-duration, overlapping WAV segments named
by content digest.

With --table, only segments overlapping a Raven selection table annotation
are kept and each segment record carries the overlapping species. Without a
table every segment is written unlabeled.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVar(&splitTable, "table", "", "Raven selection table (tab-separated)")
	splitCmd.Flags().StringVar(&splitCorrections, "corrections", "", "species label corrections CSV")
	splitCmd.Flags().StringVar(&splitOut, "out", "", "output directory (default from config)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	source := args[0]

	outDir := cfg.Splitter.OutputDir
	if splitOut != "" {
		outDir = splitOut
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	clip, err := audio.FromFile(source, audio.WithSampleRate(cfg.SampleRate))
	if err != nil {
		return err
	}

	var table *annotation.Table
	if splitTable != "" {
		var opts []annotation.ParseOption
		if splitCorrections != "" {
			corrections, err := annotation.LoadCorrections(splitCorrections)
			if err != nil {
				return err
			}
			opts = append(opts, annotation.WithCorrections(corrections))
		}

		table, err = annotation.ParseFile(splitTable, opts...)
		if err != nil {
			return err
		}
		logger.Debug("annotations loaded",
			zap.String("table", splitTable),
			zap.Int("entries", len(table.Entries)))
	}

	splitter := annotation.NewSplitter(outDir)
	splitter.ClipDuration = cfg.Splitter.ClipDuration
	splitter.ClipOverlap = cfg.Splitter.ClipOverlap
	splitter.IncludeLast = cfg.Splitter.IncludeLast

	segments, err := splitter.Split(clip, source, table)
	if err != nil {
		return err
	}

	recordsPath := filepath.Join(outDir, "segments.txt")
	records, err := os.Create(recordsPath)
	if err != nil {
		return fmt.Errorf("create records file: %w", err)
	}
	defer records.Close()

	for _, seg := range segments {
		if _, err := fmt.Fprintln(records, splitter.Record(seg)); err != nil {
			return fmt.Errorf("write records file: %w", err)
		}
	}

	logger.Info("recording split",
		zap.String("source", source),
		zap.Int("segments", len(segments)),
		zap.String("records", recordsPath))
	return nil
}
