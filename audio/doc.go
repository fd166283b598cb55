// Package audio provides mono audio clips for bioacoustic analysis.
//
// A Clip pairs a sample slice with its sample rate and offers the time-domain
// operations that recording pipelines need: loading from WAV files (with
// optional resampling on load), trimming by time, looping short clips out to
// a target duration, and peak normalization. Clips are immutable in the sense
// that every operation returns a new Clip.
//
// Common workflows:
//   - FromFile(path, WithSampleRate(22050))
//   - clip.Trim(begin, end)
//   - clip.ExtendTo(seconds)
//   - clip.Resample(rate)
package audio
