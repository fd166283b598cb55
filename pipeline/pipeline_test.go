package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-bioacoustics/audio"
	"github.com/cwbudde/algo-bioacoustics/internal/testutil"
	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

func toneSample(t *testing.T, freqHz float64) *Sample {
	t.Helper()

	clip, err := audio.New(testutil.Sine(freqHz, 0.5, 8000, 8000), 8000)
	require.NoError(t, err)

	s := &Sample{Path: "synthetic", Labels: []string{"tone"}}
	s.SetClip(clip)
	return s
}

func TestActionsRequireOrder(t *testing.T) {
	ctx := context.Background()
	empty := &Sample{Path: "empty"}

	assert.ErrorIs(t, Trim{End: 1}.Apply(ctx, empty), ErrNoClip)
	assert.ErrorIs(t, Normalize{}.Apply(ctx, empty), ErrNoClip)
	assert.ErrorIs(t, ToSpectrogram{}.Apply(ctx, empty), ErrNoClip)
	assert.ErrorIs(t, Bandpass{HighHz: 1000}.Apply(ctx, empty), ErrNoSpectrogram)
	assert.ErrorIs(t, ToDecibels{}.Apply(ctx, empty), ErrNoSpectrogram)
}

func TestFullChain(t *testing.T) {
	s := toneSample(t, 1000)

	runner := NewRunner([]Action{
		ExtendShort{MinDuration: 2},
		Normalize{},
		ToSpectrogram{WindowSamples: 512, OverlapSamples: 256},
		Bandpass{LowHz: 500, HighHz: 1500},
		ToDecibels{},
		LimitRange{Lo: -100, Hi: 0},
	})

	require.NoError(t, runner.Process(context.Background(), s))

	require.NotNil(t, s.Spec)
	assert.True(t, s.Spec.Decibel)
	assert.GreaterOrEqual(t, s.Spec.Frequencies[0], 500.0)
	assert.LessOrEqual(t, s.Spec.Frequencies[len(s.Spec.Frequencies)-1], 1500.0)
	assert.InDelta(t, 2.0, s.Clip.Duration(), 1e-9)
}

func TestLoadAudioAction(t *testing.T) {
	clip, err := audio.New(testutil.Sine(440, 0.5, 8000, 4000), 8000)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, clip.Save(path))

	s := &Sample{Path: path}
	require.NoError(t, LoadAudio{}.Apply(context.Background(), s))

	assert.True(t, s.HasClip())
	assert.Equal(t, 8000.0, s.Clip.SampleRate)
	assert.Len(t, s.Clip.Samples, 4000)
}

func TestOverlayBlends(t *testing.T) {
	ctx := context.Background()

	s := toneSample(t, 1000)
	other := toneSample(t, 2000)

	require.NoError(t, ToSpectrogram{}.Apply(ctx, s))
	require.NoError(t, ToSpectrogram{}.Apply(ctx, other))

	overlay := Overlay{
		Weight: 0.5,
		Pick: func(context.Context, *Sample) (*spectrogram.Spectrogram, error) {
			return other.Spec, nil
		},
	}
	require.NoError(t, overlay.Apply(ctx, s))

	// Both tone bins should now carry power.
	hzPerBin := s.Spec.Frequencies[1] - s.Spec.Frequencies[0]
	rowAt := func(freq float64) []float64 {
		idx := int(freq/hzPerBin + 0.5)
		return s.Spec.Values[idx]
	}
	assert.Greater(t, testutil.MaxAbs(rowAt(1000)), 0.01)
	assert.Greater(t, testutil.MaxAbs(rowAt(2000)), 0.01)
}

func TestRunnerIsolatesFailures(t *testing.T) {
	dir := t.TempDir()

	clip, err := audio.New(testutil.Sine(700, 0.5, 8000, 8000), 8000)
	require.NoError(t, err)
	goodPath := filepath.Join(dir, "good.wav")
	require.NoError(t, clip.Save(goodPath))

	good := &Sample{Path: goodPath}
	bad := &Sample{Path: filepath.Join(dir, "missing.wav")}

	runner := NewRunner([]Action{
		LoadAudio{},
		ToSpectrogram{},
	}, WithWorkers(2))

	results, err := runner.Run(context.Background(), []*Sample{good, bad})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Sample.Spec)
	assert.Error(t, results[1].Err)
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner([]Action{ToSpectrogram{}})
	samples := []*Sample{toneSample(t, 500), toneSample(t, 600)}

	_, err := runner.Run(ctx, samples)
	assert.ErrorIs(t, err, context.Canceled)
}
