// Package features extracts template-matching feature vectors from
// spectrograms for species classification.
//
// The approach follows the classic birdsong recipe: find high-energy
// regions of interest (segments) in each training spectrogram, describe
// every file with first-order statistics of its spectrogram and segment
// geometry, then slide every segment of every other file across the
// spectrogram as a normalized cross-correlation template. The resulting
// per-pair peak correlations and peak locations feed a downstream
// classifier.
package features
