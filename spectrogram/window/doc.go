// Package window generates analysis window coefficients for spectrogram
// framing.
//
// The set is limited to windows that are useful for bioacoustic spectrogram
// work. Symmetric form is the default; use WithPeriodic for STFT framing.
package window
