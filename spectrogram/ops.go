package spectrogram

import (
	"fmt"
	"math"
)

// decibelFloor avoids log of zero when converting power to dB.
const decibelFloor = 1e-20

// Bandpass returns the spectrogram restricted to frequency bins inside the
// band (inclusive).
func (s *Spectrogram) Bandpass(lowHz, highHz float64) (*Spectrogram, error) {
	if highHz < lowHz {
		return nil, fmt.Errorf("spectrogram: bandpass high %f must be >= low %f", highHz, lowHz)
	}

	band := Band{LowHz: lowHz, HighHz: highHz}
	lo, hi := -1, -1
	for k, f := range s.Frequencies {
		if band.Contains(f) {
			if lo < 0 {
				lo = k
			}
			hi = k
		}
	}
	if lo < 0 {
		return nil, ErrEmptyBand
	}

	out := *s
	out.Values = make([][]float64, hi-lo+1)
	for k := range out.Values {
		out.Values[k] = append([]float64(nil), s.Values[lo+k]...)
	}
	out.Frequencies = append([]float64(nil), s.Frequencies[lo:hi+1]...)
	out.Times = append([]float64(nil), s.Times...)

	return &out, nil
}

// TrimTime returns the spectrogram restricted to frames whose center time
// lies in [begin, end).
func (s *Spectrogram) TrimTime(begin, end float64) (*Spectrogram, error) {
	if end <= begin {
		return nil, fmt.Errorf("spectrogram: trim end %f must be > begin %f", end, begin)
	}

	lo, hi := -1, -1
	for f, tm := range s.Times {
		if tm >= begin && tm < end {
			if lo < 0 {
				lo = f
			}
			hi = f
		}
	}
	if lo < 0 {
		return nil, fmt.Errorf("spectrogram: trim [%f, %f) selects no frames", begin, end)
	}

	out := *s
	out.Values = make([][]float64, len(s.Values))
	for k := range s.Values {
		out.Values[k] = append([]float64(nil), s.Values[k][lo:hi+1]...)
	}
	out.Frequencies = append([]float64(nil), s.Frequencies...)
	out.Times = append([]float64(nil), s.Times[lo:hi+1]...)

	return &out, nil
}

// ToDecibels converts power values to 10*log10 decibels. Calling it on a
// spectrogram already in decibels returns a clone.
func (s *Spectrogram) ToDecibels() *Spectrogram {
	out := s.Clone()
	if s.Decibel {
		return out
	}

	for k := range out.Values {
		for f, v := range out.Values[k] {
			if v < decibelFloor {
				v = decibelFloor
			}
			out.Values[k][f] = 10 * math.Log10(v)
		}
	}
	out.Decibel = true

	return out
}

// LimitRange clamps all values to [lo, hi].
func (s *Spectrogram) LimitRange(lo, hi float64) *Spectrogram {
	out := s.Clone()
	for k := range out.Values {
		for f, v := range out.Values[k] {
			switch {
			case v < lo:
				out.Values[k][f] = lo
			case v > hi:
				out.Values[k][f] = hi
			}
		}
	}

	return out
}

// AmplitudeSeries returns the per-frame total power inside the band.
func (s *Spectrogram) AmplitudeSeries(band Band) ([]float64, error) {
	_, frames := s.Shape()

	rows := make([]int, 0, len(s.Frequencies))
	for k, f := range s.Frequencies {
		if band.Contains(f) {
			rows = append(rows, k)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyBand
	}

	out := make([]float64, frames)
	for _, k := range rows {
		for f, v := range s.Values[k] {
			out[f] += v
		}
	}

	return out, nil
}

// NetAmplitude returns the per-frame power of the signal band with the mean
// of the reject bands subtracted, floored at zero. With no reject bands it
// equals AmplitudeSeries.
func (s *Spectrogram) NetAmplitude(signal Band, reject []Band) ([]float64, error) {
	net, err := s.AmplitudeSeries(signal)
	if err != nil {
		return nil, err
	}
	if len(reject) == 0 {
		return net, nil
	}

	noise := make([]float64, len(net))
	for _, band := range reject {
		series, err := s.AmplitudeSeries(band)
		if err != nil {
			return nil, err
		}
		for f, v := range series {
			noise[f] += v
		}
	}

	scale := 1 / float64(len(reject))
	for f := range net {
		net[f] -= noise[f] * scale
		if net[f] < 0 {
			net[f] = 0
		}
	}

	return net, nil
}

// Blend returns (1-weight)*s + weight*other. Shapes must match.
func (s *Spectrogram) Blend(other *Spectrogram, weight float64) (*Spectrogram, error) {
	if weight < 0 || weight > 1 {
		return nil, fmt.Errorf("spectrogram: blend weight must be in [0, 1]: %f", weight)
	}

	sBins, sFrames := s.Shape()
	oBins, oFrames := other.Shape()
	if sBins != oBins || sFrames != oFrames {
		return nil, ErrShapeMismatch
	}

	out := s.Clone()
	for k := range out.Values {
		for f := range out.Values[k] {
			out.Values[k][f] = (1-weight)*s.Values[k][f] + weight*other.Values[k][f]
		}
	}

	return out, nil
}
