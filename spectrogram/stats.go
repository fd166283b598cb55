package spectrogram

import "math"

// Stats summarizes a set of spectrogram values.
type Stats struct {
	Count    int
	Min      float64
	Max      float64
	Mean     float64
	Variance float64 // sample variance (n-1 denominator)
}

// Describe computes summary statistics over all cells using Welford's online
// algorithm for a numerically stable variance.
func (s *Spectrogram) Describe() Stats {
	return DescribeRows(s.Values)
}

// DescribeRows computes summary statistics over all cells of a row-major
// matrix.
func DescribeRows(rows [][]float64) Stats {
	st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}

	var mean, m2 float64
	for _, row := range rows {
		for _, v := range row {
			st.Count++
			delta := v - mean
			mean += delta / float64(st.Count)
			m2 += delta * (v - mean)

			if v < st.Min {
				st.Min = v
			}
			if v > st.Max {
				st.Max = v
			}
		}
	}

	if st.Count == 0 {
		return Stats{}
	}

	st.Mean = mean
	if st.Count > 1 {
		st.Variance = m2 / float64(st.Count-1)
	}

	return st
}

// DescribeSlice computes summary statistics over a single slice.
func DescribeSlice(values []float64) Stats {
	return DescribeRows([][]float64{values})
}
