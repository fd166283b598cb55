// Package spectrogram computes and manipulates power spectrograms of audio
// clips.
//
// A Spectrogram holds per-bin power values indexed [frequency][frame]
// together with the bin frequencies and frame center times that produced
// them. Analysis uses short-time Fourier transforms over windowed frames;
// the FFT itself comes from an external backend.
//
// Typical bioacoustic flow:
//
//	spec, _ := spectrogram.FromClip(clip)
//	spec, _ = spec.Bandpass(1000, 4000)
//	spec = spec.ToDecibels().LimitRange(-100, -20)
package spectrogram
