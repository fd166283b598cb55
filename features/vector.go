package features

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

// DefaultFrequencyBands is the band count used by FileVector when none is
// given.
const DefaultFrequencyBands = 16

// VectorLen returns the length of a FileVector built with numBands bands:
// four whole-spectrogram statistics, four per band, and twelve segment
// geometry statistics.
func VectorLen(numBands int) int {
	return 4 + 4*numBands + 12
}

// FileVector builds the first-order feature vector of one file: summary
// statistics of the whole spectrogram, of numBands equal frequency bands,
// and of the segment bounding-box geometry (width, height, low bin). Files
// without segments contribute zeros for the geometry block.
func FileVector(spec *spectrogram.Spectrogram, boxes []Box, numBands int) ([]float64, error) {
	if numBands <= 0 {
		numBands = DefaultFrequencyBands
	}

	bins, _ := spec.Shape()
	if bins < numBands {
		return nil, fmt.Errorf("features: %d bins cannot form %d bands", bins, numBands)
	}

	out := make([]float64, 0, VectorLen(numBands))

	whole := spec.Describe()
	out = append(out, whole.Min, whole.Max, whole.Mean, whole.Variance)

	for _, band := range splitRows(spec.Values, numBands) {
		st := spectrogram.DescribeRows(band)
		out = append(out, st.Min, st.Max, st.Mean, st.Variance)
	}

	out = append(out, geometryStats(boxes)...)

	return out, nil
}

// splitRows divides rows into n consecutive groups; the first len%n groups
// receive one extra row.
func splitRows(rows [][]float64, n int) [][][]float64 {
	out := make([][][]float64, 0, n)

	base := len(rows) / n
	extra := len(rows) % n

	start := 0
	for i := range n {
		size := base
		if i < extra {
			size++
		}
		out = append(out, rows[start:start+size])
		start += size
	}

	return out
}

// geometryStats summarizes box widths, heights, and low bins as
// [min(w,h,y), max(w,h,y), mean(w,h,y), std(w,h,y)].
func geometryStats(boxes []Box) []float64 {
	if len(boxes) == 0 {
		return make([]float64, 12)
	}

	widths := make([]float64, len(boxes))
	heights := make([]float64, len(boxes))
	lows := make([]float64, len(boxes))
	for i, b := range boxes {
		widths[i] = float64(b.Width())
		heights[i] = float64(b.Height())
		lows[i] = float64(b.YMin)
	}

	w := spectrogram.DescribeSlice(widths)
	h := spectrogram.DescribeSlice(heights)
	y := spectrogram.DescribeSlice(lows)

	return []float64{
		w.Min, h.Min, y.Min,
		w.Max, h.Max, y.Max,
		w.Mean, h.Mean, y.Mean,
		math.Sqrt(w.Variance), math.Sqrt(h.Variance), math.Sqrt(y.Variance),
	}
}
