package features

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

var (
	// ErrTemplateTooLarge indicates a template larger than the search image.
	ErrTemplateTooLarge = errors.New("features: template larger than search image")
	// ErrEmptyInput indicates an empty image or template.
	ErrEmptyInput = errors.New("features: empty image or template")
)

// MatchResult is the peak of one template match.
type MatchResult struct {
	Peak float64
	X    int // frame offset of the peak
	Y    int // frequency bin offset of the peak
}

// MatchTemplate slides the template over the image and returns the
// normalized correlation coefficient at every offset. Rows index frequency
// bins, columns index frames. Both template and image window are mean
// centered, so the result is in [-1, 1]; degenerate (flat) windows score 0.
func MatchTemplate(image, tmpl [][]float64) ([][]float64, error) {
	ih, iw, err := shapeOf(image)
	if err != nil {
		return nil, err
	}
	th, tw, err := shapeOf(tmpl)
	if err != nil {
		return nil, err
	}
	if th > ih || tw > iw {
		return nil, ErrTemplateTooLarge
	}

	// Mean-centered template and its energy stay fixed across offsets.
	tMean := 0.0
	for _, row := range tmpl {
		for _, v := range row {
			tMean += v
		}
	}
	tMean /= float64(th * tw)

	centered := make([][]float64, th)
	tEnergy := 0.0
	for y := range centered {
		centered[y] = make([]float64, tw)
		for x, v := range tmpl[y] {
			d := v - tMean
			centered[y][x] = d
			tEnergy += d * d
		}
	}

	outH := ih - th + 1
	outW := iw - tw + 1
	out := make([][]float64, outH)
	area := float64(th * tw)

	for oy := range outH {
		out[oy] = make([]float64, outW)
		for ox := range outW {
			wMean := 0.0
			for y := range th {
				for x := range tw {
					wMean += image[oy+y][ox+x]
				}
			}
			wMean /= area

			num := 0.0
			wEnergy := 0.0
			for y := range th {
				for x := range tw {
					d := image[oy+y][ox+x] - wMean
					num += centered[y][x] * d
					wEnergy += d * d
				}
			}

			den := math.Sqrt(tEnergy * wEnergy)
			if den == 0 {
				out[oy][ox] = 0
				continue
			}
			out[oy][ox] = num / den
		}
	}

	return out, nil
}

// MinMaxLoc returns the minimum and maximum of a correlation map with their
// locations.
func MinMaxLoc(m [][]float64) (minVal, maxVal float64, minX, minY, maxX, maxY int) {
	minVal = math.Inf(1)
	maxVal = math.Inf(-1)

	for y := range m {
		for x, v := range m[y] {
			if v < minVal {
				minVal, minX, minY = v, x, y
			}
			if v > maxVal {
				maxVal, maxX, maxY = v, x, y
			}
		}
	}

	return minVal, maxVal, minX, minY, maxX, maxY
}

// MatchInStripe matches the template against the frequency stripe of the
// spectrogram around the template's own frequency position, widened by
// freqBuffer bins on each side. Templates that do not fit the stripe are
// skipped (ok=false), mirroring the size guards of the original recipe.
func MatchInStripe(spec *spectrogram.Spectrogram, tmpl Template, freqBuffer int) (MatchResult, bool) {
	bins, frames := spec.Shape()

	yMinTarget := 0
	if tmpl.YMin > freqBuffer {
		yMinTarget = tmpl.YMin - freqBuffer
	}

	yMaxTarget := bins
	if tmpl.YMax < bins-freqBuffer {
		yMaxTarget = tmpl.YMax + freqBuffer
	}

	if yMaxTarget-yMinTarget > bins || tmpl.Width() > frames {
		return MatchResult{}, false
	}
	if tmpl.Height() > yMaxTarget-yMinTarget {
		return MatchResult{}, false
	}

	stripe := spec.Values[yMinTarget:yMaxTarget]

	corr, err := MatchTemplate(stripe, tmpl.Values)
	if err != nil {
		return MatchResult{}, false
	}

	_, peak, _, _, x, y := MinMaxLoc(corr)

	return MatchResult{Peak: peak, X: x, Y: y + yMinTarget}, true
}

// CrossStats matches every template against the spectrogram and returns one
// result row per template. Skipped templates contribute a zero row, keeping
// row indices aligned with the template list.
func CrossStats(spec *spectrogram.Spectrogram, templates []Template, freqBuffer int) []MatchResult {
	out := make([]MatchResult, len(templates))
	for i, tmpl := range templates {
		if res, ok := MatchInStripe(spec, tmpl, freqBuffer); ok {
			out[i] = res
		}
	}

	return out
}

func shapeOf(m [][]float64) (h, w int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, ErrEmptyInput
	}

	return len(m), len(m[0]), nil
}
