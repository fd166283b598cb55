package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bioacoustics/audio"
	"github.com/cwbudde/algo-bioacoustics/ribbit"
	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

var ribbitTop int

var ribbitCmd = &cobra.Command{
	Use:   "ribbit [recording.wav]",
	Short: "Pulse-rate detection over a recording",
	Long: `Scores analysis windows by the strength of amplitude modulation inside
the configured pulse-rate range, within the configured signal band. High
scores mark windows likely to contain the target pulsed vocalization.

Band and pulse-rate settings come from the ribbit section of the
configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRibbit,
}

func init() {
	ribbitCmd.Flags().IntVar(&ribbitTop, "top", 0, "print only the N best-scoring windows (0 = all)")
}

func runRibbit(cmd *cobra.Command, args []string) error {
	windowType, err := cfg.WindowType()
	if err != nil {
		return err
	}

	clip, err := audio.FromFile(args[0], audio.WithSampleRate(cfg.SampleRate))
	if err != nil {
		return err
	}

	spec, err := spectrogram.FromClip(clip,
		spectrogram.WithWindowSamples(cfg.Spectrogram.WindowSamples),
		spectrogram.WithOverlapSamples(cfg.Spectrogram.OverlapSamples),
		spectrogram.WithWindowType(windowType))
	if err != nil {
		return err
	}

	noise := make([]spectrogram.Band, len(cfg.Ribbit.NoiseBands))
	for i, b := range cfg.Ribbit.NoiseBands {
		noise[i] = b.ToSpectrogram()
	}

	result, err := ribbit.Detect(spec, ribbit.Config{
		SignalBand:     cfg.Ribbit.SignalBand.ToSpectrogram(),
		NoiseBands:     noise,
		MinPulseRateHz: cfg.Ribbit.MinPulseRateHz,
		MaxPulseRateHz: cfg.Ribbit.MaxPulseRateHz,
		WindowDuration: cfg.Ribbit.WindowDuration,
		WindowOverlap:  cfg.Ribbit.WindowOverlap,
	})
	if err != nil {
		return err
	}

	scores := result.Scores
	if ribbitTop > 0 && ribbitTop < len(scores) {
		scores = topScores(scores, ribbitTop)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Begin [s]\tEnd [s]\tScore\n")
	fmt.Fprintf(tw, "---------\t-------\t-----\n")
	for _, s := range scores {
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.6g\n", s.Begin, s.End, s.Value)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Printf("\nbest window: %.2f-%.2f s (score %.6g)\n",
		result.Best.Begin, result.Best.End, result.Best.Value)
	return nil
}

// topScores returns the n highest-scoring windows in time order.
func topScores(scores []ribbit.Score, n int) []ribbit.Score {
	top := append([]ribbit.Score(nil), scores...)
	sort.Slice(top, func(i, j int) bool { return top[i].Value > top[j].Value })
	top = top[:n]
	sort.Slice(top, func(i, j int) bool { return top[i].Begin < top[j].Begin })
	return top
}
