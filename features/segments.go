package features

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

// Box is a segment bounding box over a spectrogram. X indexes frames (time)
// and Y indexes frequency bins; Max bounds are exclusive.
type Box struct {
	XMin, XMax int
	YMin, YMax int
}

// Width returns the box width in frames.
func (b Box) Width() int { return b.XMax - b.XMin }

// Height returns the box height in bins.
func (b Box) Height() int { return b.YMax - b.YMin }

// Template is a segment cut out of a spectrogram, with its origin box.
type Template struct {
	Box
	Values [][]float64 // [bin][frame], Height() rows by Width() cols
}

// SegmentOption configures segment extraction.
type SegmentOption func(*segmentConfig)

type segmentConfig struct {
	thresholdSigma float64
	minWidth       int
	minHeight      int
}

// WithThresholdSigma sets the binarization threshold to mean + sigma
// standard deviations (default 2).
func WithThresholdSigma(sigma float64) SegmentOption {
	return func(c *segmentConfig) {
		c.thresholdSigma = sigma
	}
}

// WithMinSize discards boxes smaller than the given width (frames) and
// height (bins). Defaults are 2x2.
func WithMinSize(width, height int) SegmentOption {
	return func(c *segmentConfig) {
		if width > 0 {
			c.minWidth = width
		}
		if height > 0 {
			c.minHeight = height
		}
	}
}

// FindSegments binarizes the spectrogram at an adaptive threshold and
// returns the bounding boxes of 4-connected high-energy regions, discarding
// boxes below the minimum size.
func FindSegments(spec *spectrogram.Spectrogram, opts ...SegmentOption) []Box {
	cfg := segmentConfig{thresholdSigma: 2, minWidth: 2, minHeight: 2}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	bins, frames := spec.Shape()
	if bins == 0 || frames == 0 {
		return nil
	}

	st := spec.Describe()
	threshold := st.Mean + cfg.thresholdSigma*math.Sqrt(st.Variance)

	mask := make([][]bool, bins)
	for y := range mask {
		mask[y] = make([]bool, frames)
		for x, v := range spec.Values[y] {
			mask[y][x] = v > threshold
		}
	}

	visited := make([][]bool, bins)
	for y := range visited {
		visited[y] = make([]bool, frames)
	}

	var boxes []Box
	for y := range bins {
		for x := range frames {
			if !mask[y][x] || visited[y][x] {
				continue
			}

			box := floodFill(mask, visited, x, y)
			if box.Width() >= cfg.minWidth && box.Height() >= cfg.minHeight {
				boxes = append(boxes, box)
			}
		}
	}

	return boxes
}

// floodFill marks the 4-connected component containing (x, y) and returns
// its bounding box. Iterative, to stay safe on large components.
func floodFill(mask, visited [][]bool, x, y int) Box {
	box := Box{XMin: x, XMax: x + 1, YMin: y, YMax: y + 1}

	stack := [][2]int{{x, y}}
	visited[y][x] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		px, py := p[0], p[1]
		if px < box.XMin {
			box.XMin = px
		}
		if px+1 > box.XMax {
			box.XMax = px + 1
		}
		if py < box.YMin {
			box.YMin = py
		}
		if py+1 > box.YMax {
			box.YMax = py + 1
		}

		for _, n := range [4][2]int{{px - 1, py}, {px + 1, py}, {px, py - 1}, {px, py + 1}} {
			nx, ny := n[0], n[1]
			if ny < 0 || ny >= len(mask) || nx < 0 || nx >= len(mask[ny]) {
				continue
			}
			if !mask[ny][nx] || visited[ny][nx] {
				continue
			}
			visited[ny][nx] = true
			stack = append(stack, [2]int{nx, ny})
		}
	}

	return box
}

// ExtractTemplates cuts the given boxes out of the spectrogram.
func ExtractTemplates(spec *spectrogram.Spectrogram, boxes []Box) ([]Template, error) {
	bins, frames := spec.Shape()

	out := make([]Template, 0, len(boxes))
	for _, box := range boxes {
		if box.XMin < 0 || box.YMin < 0 || box.XMax > frames || box.YMax > bins ||
			box.Width() <= 0 || box.Height() <= 0 {
			return nil, fmt.Errorf("features: box %+v outside spectrogram %dx%d", box, bins, frames)
		}

		values := make([][]float64, box.Height())
		for y := range values {
			values[y] = append([]float64(nil), spec.Values[box.YMin+y][box.XMin:box.XMax]...)
		}
		out = append(out, Template{Box: box, Values: values})
	}

	return out, nil
}
