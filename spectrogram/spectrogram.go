package spectrogram

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-bioacoustics/audio"
	"github.com/cwbudde/algo-bioacoustics/spectrogram/window"
)

const (
	defaultWindowSamples  = 512
	defaultOverlapSamples = 256
)

var (
	// ErrClipTooShort indicates the clip holds fewer samples than one window.
	ErrClipTooShort = errors.New("spectrogram: clip shorter than one analysis window")
	// ErrShapeMismatch indicates two spectrograms with different shapes.
	ErrShapeMismatch = errors.New("spectrogram: shape mismatch")
	// ErrEmptyBand indicates a frequency band selecting no bins.
	ErrEmptyBand = errors.New("spectrogram: band selects no frequency bins")
)

// Band is an inclusive frequency interval in Hz.
type Band struct {
	LowHz  float64
	HighHz float64
}

// Contains reports whether f lies inside the band.
func (b Band) Contains(f float64) bool {
	return f >= b.LowHz && f <= b.HighHz
}

// Spectrogram is a power spectrogram with values indexed [frequency][frame].
type Spectrogram struct {
	Values      [][]float64
	Frequencies []float64
	Times       []float64

	SampleRate     float64
	WindowSamples  int
	OverlapSamples int
	Decibel        bool
}

// Option configures spectrogram analysis.
type Option func(*config)

type config struct {
	windowSamples  int
	overlapSamples int
	windowType     window.Type
}

// WithWindowSamples sets the analysis window length in samples.
func WithWindowSamples(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.windowSamples = n
		}
	}
}

// WithOverlapSamples sets the overlap between consecutive windows in samples.
func WithOverlapSamples(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.overlapSamples = n
		}
	}
}

// WithWindowType selects the analysis window function.
func WithWindowType(t window.Type) Option {
	return func(c *config) {
		c.windowType = t
	}
}

// FromClip computes a power spectrogram of the clip.
//
// Defaults follow common bioacoustic practice: 512-sample hann window with
// 256-sample overlap. Frames are zero-padded to the next power of two for
// the FFT. Values are single-sided power-spectrum scaled and normalized by
// the window's coherent gain, so a unit-amplitude sine concentrates ~0.5 of
// power in its bin regardless of the window type.
func FromClip(clip audio.Clip, opts ...Option) (*Spectrogram, error) {
	if clip.SampleRate <= 0 {
		return nil, audio.ErrInvalidRate
	}

	cfg := config{
		windowSamples:  defaultWindowSamples,
		overlapSamples: defaultOverlapSamples,
		windowType:     window.TypeHann,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.overlapSamples >= cfg.windowSamples {
		return nil, fmt.Errorf("spectrogram: overlap %d must be < window %d",
			cfg.overlapSamples, cfg.windowSamples)
	}
	if len(clip.Samples) < cfg.windowSamples {
		return nil, ErrClipTooShort
	}

	coeffs, err := window.Generate(cfg.windowType, cfg.windowSamples, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("spectrogram: window generation: %w", err)
	}

	// Coherent gain normalization keeps bin power independent of the window
	// choice.
	windowSum := 0.0
	for _, c := range coeffs {
		windowSum += c
	}
	if windowSum == 0 {
		return nil, fmt.Errorf("spectrogram: window has zero coherent gain")
	}
	norm := 1 / (windowSum * windowSum)

	fftSize := nextPowerOf2(cfg.windowSamples)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrogram: FFT plan: %w", err)
	}

	hop := cfg.windowSamples - cfg.overlapSamples
	frameCount := 1 + (len(clip.Samples)-cfg.windowSamples)/hop
	binCount := fftSize/2 + 1

	values := make([][]float64, binCount)
	for k := range values {
		values[k] = make([]float64, frameCount)
	}

	frame := make([]float64, cfg.windowSamples)
	fftBuf := make([]complex128, fftSize)
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	power := make([]float64, binCount)

	for f := range frameCount {
		pos := f * hop
		copy(frame, clip.Samples[pos:pos+cfg.windowSamples])
		vecmath.MulBlockInPlace(frame, coeffs)

		for i := range fftBuf {
			if i < len(frame) {
				fftBuf[i] = complex(frame[i], 0)
			} else {
				fftBuf[i] = 0
			}
		}

		if err := plan.Forward(fftBuf, fftBuf); err != nil {
			return nil, fmt.Errorf("spectrogram: forward FFT: %w", err)
		}

		for k := range binCount {
			re[k] = real(fftBuf[k])
			im[k] = imag(fftBuf[k])
		}
		vecmath.Power(power, re, im)

		for k := range binCount {
			p := power[k] * norm
			// Single-sided: interior bins carry the conjugate pair energy.
			if k != 0 && k != binCount-1 {
				p *= 2
			}
			values[k][f] = p
		}
	}

	freqs := make([]float64, binCount)
	binHz := clip.SampleRate / float64(fftSize)
	for k := range freqs {
		freqs[k] = float64(k) * binHz
	}

	times := make([]float64, frameCount)
	for f := range times {
		center := float64(f*hop) + float64(cfg.windowSamples)/2
		times[f] = center / clip.SampleRate
	}

	return &Spectrogram{
		Values:         values,
		Frequencies:    freqs,
		Times:          times,
		SampleRate:     clip.SampleRate,
		WindowSamples:  cfg.windowSamples,
		OverlapSamples: cfg.overlapSamples,
	}, nil
}

// FrameDuration returns the hop interval between frames in seconds.
func (s *Spectrogram) FrameDuration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}

	return float64(s.WindowSamples-s.OverlapSamples) / s.SampleRate
}

// Shape returns (frequency bins, frames).
func (s *Spectrogram) Shape() (bins, frames int) {
	bins = len(s.Values)
	if bins > 0 {
		frames = len(s.Values[0])
	}

	return bins, frames
}

// Clone returns a deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	out := *s
	out.Values = make([][]float64, len(s.Values))
	for k := range s.Values {
		out.Values[k] = append([]float64(nil), s.Values[k]...)
	}
	out.Frequencies = append([]float64(nil), s.Frequencies...)
	out.Times = append([]float64(nil), s.Times...)

	return &out
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
