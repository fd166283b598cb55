// Package pipeline composes per-file preprocessing steps and runs them over
// a set of recordings with bounded concurrency.
//
// A pipeline is an ordered list of actions applied to a mutable sample. The
// audio actions run before the spectrogram actions; an action that needs
// state an earlier action has not produced fails with a sentinel error
// rather than a panic.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-bioacoustics/audio"
	"github.com/cwbudde/algo-bioacoustics/spectrogram"
	"github.com/cwbudde/algo-bioacoustics/spectrogram/window"
)

var (
	// ErrNoClip indicates an audio action ran before any audio was loaded.
	ErrNoClip = errors.New("pipeline: sample has no audio clip")
	// ErrNoSpectrogram indicates a spectrogram action ran before ToSpectrogram.
	ErrNoSpectrogram = errors.New("pipeline: sample has no spectrogram")
)

// Sample is the mutable state threaded through a pipeline for one recording.
type Sample struct {
	Path   string
	Labels []string

	Clip    audio.Clip
	hasClip bool
	Spec    *spectrogram.Spectrogram
	Vector  []float64
}

// SetClip attaches audio to the sample.
func (s *Sample) SetClip(c audio.Clip) {
	s.Clip = c
	s.hasClip = true
}

// HasClip reports whether audio has been loaded.
func (s *Sample) HasClip() bool {
	return s.hasClip
}

// Action is one preprocessing step.
type Action interface {
	Name() string
	Apply(ctx context.Context, s *Sample) error
}

// LoadAudio reads the sample's file, optionally resampling on load.
type LoadAudio struct {
	SampleRate float64
	Quality    audio.Quality
}

func (a LoadAudio) Name() string { return "load_audio" }

func (a LoadAudio) Apply(_ context.Context, s *Sample) error {
	var opts []audio.Option
	if a.SampleRate > 0 {
		opts = append(opts, audio.WithSampleRate(a.SampleRate), audio.WithQuality(a.Quality))
	}

	clip, err := audio.FromFile(s.Path, opts...)
	if err != nil {
		return err
	}

	s.SetClip(clip)
	return nil
}

// Trim cuts the clip to [Begin, End) seconds.
type Trim struct {
	Begin float64
	End   float64
}

func (a Trim) Name() string { return "trim" }

func (a Trim) Apply(_ context.Context, s *Sample) error {
	if !s.hasClip {
		return ErrNoClip
	}

	clip, err := s.Clip.Trim(a.Begin, a.End)
	if err != nil {
		return err
	}

	s.Clip = clip
	return nil
}

// ExtendShort loops clips shorter than MinDuration out to that duration.
// Longer clips pass through unchanged.
type ExtendShort struct {
	MinDuration float64
}

func (a ExtendShort) Name() string { return "extend_short" }

func (a ExtendShort) Apply(_ context.Context, s *Sample) error {
	if !s.hasClip {
		return ErrNoClip
	}

	clip, err := s.Clip.ExtendTo(a.MinDuration)
	if err != nil {
		return err
	}

	s.Clip = clip
	return nil
}

// Resample converts the clip to TargetRate.
type Resample struct {
	TargetRate float64
	Quality    audio.Quality
}

func (a Resample) Name() string { return "resample" }

func (a Resample) Apply(_ context.Context, s *Sample) error {
	if !s.hasClip {
		return ErrNoClip
	}

	clip, err := s.Clip.Resample(a.TargetRate, audio.WithResampleQuality(a.Quality))
	if err != nil {
		return err
	}

	s.Clip = clip
	return nil
}

// Normalize scales the clip to a target peak. A zero TargetPeak means 1.
type Normalize struct {
	TargetPeak float64
}

func (a Normalize) Name() string { return "normalize" }

func (a Normalize) Apply(_ context.Context, s *Sample) error {
	if !s.hasClip {
		return ErrNoClip
	}

	peak := a.TargetPeak
	if peak == 0 {
		peak = 1
	}

	clip, err := s.Clip.Normalize(peak)
	if err != nil {
		return err
	}

	s.Clip = clip
	return nil
}

// ToSpectrogram computes the sample's spectrogram. Zero-valued fields fall
// back to the spectrogram package defaults; in particular the zero Window
// value selects Hann, not a rectangular window.
type ToSpectrogram struct {
	WindowSamples  int
	OverlapSamples int
	Window         window.Type
}

func (a ToSpectrogram) Name() string { return "to_spectrogram" }

func (a ToSpectrogram) Apply(_ context.Context, s *Sample) error {
	if !s.hasClip {
		return ErrNoClip
	}

	var opts []spectrogram.Option
	if a.WindowSamples > 0 {
		opts = append(opts, spectrogram.WithWindowSamples(a.WindowSamples))
		opts = append(opts, spectrogram.WithOverlapSamples(a.OverlapSamples))
	}
	if a.Window != window.TypeRectangular {
		opts = append(opts, spectrogram.WithWindowType(a.Window))
	}

	spec, err := spectrogram.FromClip(s.Clip, opts...)
	if err != nil {
		return err
	}

	s.Spec = spec
	return nil
}

// Bandpass restricts the spectrogram to a frequency band.
type Bandpass struct {
	LowHz  float64
	HighHz float64
}

func (a Bandpass) Name() string { return "bandpass" }

func (a Bandpass) Apply(_ context.Context, s *Sample) error {
	if s.Spec == nil {
		return ErrNoSpectrogram
	}

	spec, err := s.Spec.Bandpass(a.LowHz, a.HighHz)
	if err != nil {
		return err
	}

	s.Spec = spec
	return nil
}

// ToDecibels converts spectrogram power to dB.
type ToDecibels struct{}

func (a ToDecibels) Name() string { return "to_decibels" }

func (a ToDecibels) Apply(_ context.Context, s *Sample) error {
	if s.Spec == nil {
		return ErrNoSpectrogram
	}

	s.Spec = s.Spec.ToDecibels()
	return nil
}

// LimitRange clamps spectrogram values to [Lo, Hi].
type LimitRange struct {
	Lo float64
	Hi float64
}

func (a LimitRange) Name() string { return "limit_range" }

func (a LimitRange) Apply(_ context.Context, s *Sample) error {
	if s.Spec == nil {
		return ErrNoSpectrogram
	}

	s.Spec = s.Spec.LimitRange(a.Lo, a.Hi)
	return nil
}

// Overlay blends another spectrogram into the sample's, the usual source
// being a recording of a different class. Pick selects the overlay for each
// sample.
type Overlay struct {
	Pick   func(ctx context.Context, s *Sample) (*spectrogram.Spectrogram, error)
	Weight float64
}

func (a Overlay) Name() string { return "overlay" }

func (a Overlay) Apply(ctx context.Context, s *Sample) error {
	if s.Spec == nil {
		return ErrNoSpectrogram
	}
	if a.Pick == nil {
		return fmt.Errorf("pipeline: overlay has no pick function")
	}

	other, err := a.Pick(ctx, s)
	if err != nil {
		return fmt.Errorf("pipeline: overlay pick: %w", err)
	}

	spec, err := s.Spec.Blend(other, a.Weight)
	if err != nil {
		return err
	}

	s.Spec = spec
	return nil
}
