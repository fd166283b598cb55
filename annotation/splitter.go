package annotation

import (
	"crypto/md5"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-bioacoustics/audio"
)

// Segment describes one clip written by the Splitter.
type Segment struct {
	Source      string
	Begin       float64
	End         float64
	Destination string
	Species     []string
}

// Splitter cuts recordings into fixed-duration overlapping clips.
type Splitter struct {
	// ClipDuration is the segment length in seconds.
	ClipDuration float64
	// ClipOverlap is the overlap between consecutive segments in seconds.
	ClipOverlap float64
	// OutputDir receives the segment WAV files.
	OutputDir string
	// IncludeLast re-anchors the final partial window to the end of the
	// recording instead of dropping it.
	IncludeLast bool
	// ColumnSeparator joins Record fields (default tab).
	ColumnSeparator string
	// SpeciesSeparator joins species labels within a Record (default "|").
	SpeciesSeparator string
}

// NewSplitter returns a splitter with the conventional 5s/1s settings.
func NewSplitter(outputDir string) *Splitter {
	return &Splitter{
		ClipDuration:     5,
		ClipOverlap:      1,
		OutputDir:        outputDir,
		ColumnSeparator:  "\t",
		SpeciesSeparator: "|",
	}
}

// SegmentName returns the digest-based base name for a segment of source
// between begin and end seconds.
func SegmentName(source string, begin, end float64) string {
	unique := fmt.Sprintf("%s-%s-%s", source,
		strconv.FormatFloat(begin, 'g', -1, 64),
		strconv.FormatFloat(end, 'g', -1, 64))

	return fmt.Sprintf("%x", md5.Sum([]byte(unique)))
}

// Split cuts the clip into segments and writes each as a WAV file under
// OutputDir. When table is non-nil, only windows overlapping at least one
// annotation are kept, and each segment carries the overlapping species.
func (sp *Splitter) Split(clip audio.Clip, source string, table *Table) ([]Segment, error) {
	if err := sp.validate(); err != nil {
		return nil, err
	}

	duration := clip.Duration()
	if duration < sp.ClipDuration {
		return nil, fmt.Errorf("annotation: recording %s shorter than one segment (%fs < %fs)",
			source, duration, sp.ClipDuration)
	}

	advance := sp.ClipDuration - sp.ClipOverlap
	count := int(math.Ceil((duration - sp.ClipOverlap) / advance))

	var out []Segment
	for idx := range count {
		var begin, end float64
		if idx == count-1 {
			if !sp.IncludeLast {
				continue
			}
			end = duration
			begin = end - sp.ClipDuration
		} else {
			begin = advance * float64(idx)
			end = begin + sp.ClipDuration
		}

		var species []string
		if table != nil {
			overlaps := table.Overlapping(begin, end)
			if len(overlaps) == 0 {
				continue
			}
			species = Classes(overlaps)
		}

		segmentClip, err := clip.Trim(begin, end)
		if err != nil {
			return nil, fmt.Errorf("annotation: segment %d of %s: %w", idx, source, err)
		}

		destination := filepath.Join(sp.OutputDir, SegmentName(source, begin, end)+".wav")
		if err := segmentClip.Save(destination); err != nil {
			return nil, fmt.Errorf("annotation: segment %d of %s: %w", idx, source, err)
		}

		out = append(out, Segment{
			Source:      source,
			Begin:       begin,
			End:         end,
			Destination: destination,
			Species:     species,
		})
	}

	return out, nil
}

// Record renders a segment as one line of the split manifest.
func (sp *Splitter) Record(seg Segment) string {
	fields := []string{
		seg.Source,
		strconv.FormatFloat(seg.Begin, 'g', -1, 64),
		strconv.FormatFloat(seg.End, 'g', -1, 64),
		seg.Destination,
	}
	if len(seg.Species) > 0 {
		fields = append(fields, strings.Join(seg.Species, sp.SpeciesSeparator))
	}

	return strings.Join(fields, sp.ColumnSeparator)
}

func (sp *Splitter) validate() error {
	if sp.ClipDuration <= 0 {
		return fmt.Errorf("annotation: clip duration must be > 0: %f", sp.ClipDuration)
	}
	if sp.ClipOverlap < 0 || sp.ClipOverlap >= sp.ClipDuration {
		return fmt.Errorf("annotation: clip overlap must be in [0, duration): %f", sp.ClipOverlap)
	}
	if sp.OutputDir == "" {
		return fmt.Errorf("annotation: output directory not set")
	}
	if sp.ColumnSeparator == "" {
		sp.ColumnSeparator = "\t"
	}
	if sp.SpeciesSeparator == "" {
		sp.SpeciesSeparator = "|"
	}

	return nil
}
