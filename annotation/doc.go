// Package annotation reads Raven selection tables and splits long field
// recordings into fixed-duration labeled clips.
//
// Raven Pro exports selections as tab-separated tables with "Begin Time (s)"
// and "End Time (s)" columns plus an annotation column naming the species.
// The Splitter mirrors the common training-data workflow: slide a window of
// fixed duration (with overlap) across a recording, keep windows that
// intersect at least one annotation, and write each as its own WAV segment
// named by a digest of source and time bounds.
package annotation
