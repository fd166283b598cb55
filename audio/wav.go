package audio

import (
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const saveBitDepth = 16

// Option configures loading from file.
type Option func(*loadConfig)

type loadConfig struct {
	sampleRate float64
	quality    Quality
}

// WithSampleRate resamples the decoded audio to the given rate on load.
func WithSampleRate(rate float64) Option {
	return func(cfg *loadConfig) {
		if rate > 0 {
			cfg.sampleRate = rate
		}
	}
}

// WithQuality selects the resampling quality used when WithSampleRate
// triggers a rate conversion on load.
func WithQuality(q Quality) Option {
	return func(cfg *loadConfig) {
		cfg.quality = q
	}
}

// FromFile decodes a PCM WAV file into a mono clip. Multichannel input is
// downmixed by channel averaging.
func FromFile(path string, opts ...Option) (Clip, error) {
	cfg := loadConfig{quality: QualityBalanced}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("audio: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return Clip{}, fmt.Errorf("audio: %s has no format information", path)
	}

	clip, err := fromIntBuffer(buf)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: %s: %w", path, err)
	}

	if cfg.sampleRate > 0 && cfg.sampleRate != clip.SampleRate {
		clip, err = clip.Resample(cfg.sampleRate, WithResampleQuality(cfg.quality))
		if err != nil {
			return Clip{}, fmt.Errorf("audio: resample %s: %w", path, err)
		}
	}

	return clip, nil
}

// Save writes the clip as a 16-bit mono PCM WAV file.
func (c Clip) Save(path string) error {
	if len(c.Samples) == 0 {
		return ErrEmptyClip
	}
	if c.SampleRate <= 0 {
		return ErrInvalidRate
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(math.Round(c.SampleRate)), saveBitDepth, 1, 1)

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: int(math.Round(c.SampleRate))},
		Data:           make([]int, len(c.Samples)),
		SourceBitDepth: saveBitDepth,
	}

	scale := float64(int(1) << (saveBitDepth - 1))
	for i, v := range c.Samples {
		s := math.Round(v * scale)
		if s > scale-1 {
			s = scale - 1
		}
		if s < -scale {
			s = -scale
		}
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize %s: %w", path, err)
	}

	return nil
}

func fromIntBuffer(buf *gaudio.IntBuffer) (Clip, error) {
	channels := buf.Format.NumChannels
	if channels <= 0 {
		return Clip{}, fmt.Errorf("invalid channel count %d", channels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = saveBitDepth
	}
	scale := 1 / float64(int(1)<<(bitDepth-1))

	frames := len(buf.Data) / channels
	if frames == 0 {
		return Clip{}, ErrEmptyClip
	}

	samples := make([]float64, frames)
	for i := range samples {
		sum := 0.0
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch])
		}
		samples[i] = sum * scale / float64(channels)
	}

	return Clip{Samples: samples, SampleRate: float64(buf.Format.SampleRate)}, nil
}
