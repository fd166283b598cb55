package features

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

// syntheticSpec builds a spectrogram-shaped matrix directly so segment and
// matching behavior is exact.
func syntheticSpec(bins, frames int) *spectrogram.Spectrogram {
	values := make([][]float64, bins)
	freqs := make([]float64, bins)
	times := make([]float64, frames)
	for y := range values {
		values[y] = make([]float64, frames)
		freqs[y] = float64(y) * 10
	}
	for x := range times {
		times[x] = float64(x) * 0.032
	}

	return &spectrogram.Spectrogram{
		Values:         values,
		Frequencies:    freqs,
		Times:          times,
		SampleRate:     8000,
		WindowSamples:  512,
		OverlapSamples: 256,
	}
}

func paintBlock(spec *spectrogram.Spectrogram, box Box, value float64) {
	for y := box.YMin; y < box.YMax; y++ {
		for x := box.XMin; x < box.XMax; x++ {
			spec.Values[y][x] = value
		}
	}
}

// paintSweep paints a frequency-sweep-like gradient so the resulting
// template has structure for correlation matching.
func paintSweep(spec *spectrogram.Spectrogram, box Box, base, scale float64) {
	for y := box.YMin; y < box.YMax; y++ {
		for x := box.XMin; x < box.XMax; x++ {
			spec.Values[y][x] = base + scale*float64((x-box.XMin)+2*(y-box.YMin))
		}
	}
}

func TestFindSegmentsLocatesBlocks(t *testing.T) {
	spec := syntheticSpec(40, 100)
	paintBlock(spec, Box{XMin: 10, XMax: 20, YMin: 5, YMax: 12}, 10)
	paintBlock(spec, Box{XMin: 60, XMax: 70, YMin: 25, YMax: 30}, 8)

	boxes := FindSegments(spec)
	if len(boxes) != 2 {
		t.Fatalf("segment count %d, want 2: %+v", len(boxes), boxes)
	}

	if boxes[0].XMin != 10 || boxes[0].XMax != 20 || boxes[0].YMin != 5 || boxes[0].YMax != 12 {
		t.Fatalf("unexpected first box: %+v", boxes[0])
	}
}

func TestFindSegmentsMinSizeFilter(t *testing.T) {
	spec := syntheticSpec(40, 100)
	paintBlock(spec, Box{XMin: 10, XMax: 11, YMin: 5, YMax: 6}, 100) // single cell
	paintBlock(spec, Box{XMin: 50, XMax: 60, YMin: 20, YMax: 28}, 100)

	boxes := FindSegments(spec, WithMinSize(3, 3))
	if len(boxes) != 1 {
		t.Fatalf("segment count %d, want 1: %+v", len(boxes), boxes)
	}

	if boxes[0].XMin != 50 {
		t.Fatalf("wrong surviving box: %+v", boxes[0])
	}
}

func TestFindSegmentsEmptyOnFlatInput(t *testing.T) {
	spec := syntheticSpec(20, 50)

	if boxes := FindSegments(spec); len(boxes) != 0 {
		t.Fatalf("flat spectrogram should yield no segments: %+v", boxes)
	}
}

func TestExtractTemplates(t *testing.T) {
	spec := syntheticSpec(40, 100)
	paintBlock(spec, Box{XMin: 10, XMax: 20, YMin: 5, YMax: 12}, 3)

	tmpls, err := ExtractTemplates(spec, []Box{{XMin: 10, XMax: 20, YMin: 5, YMax: 12}})
	if err != nil {
		t.Fatalf("ExtractTemplates failed: %v", err)
	}

	if len(tmpls) != 1 {
		t.Fatalf("template count %d, want 1", len(tmpls))
	}

	tmpl := tmpls[0]
	if tmpl.Height() != 7 || tmpl.Width() != 10 {
		t.Fatalf("template shape %dx%d, want 7x10", tmpl.Height(), tmpl.Width())
	}

	if tmpl.Values[0][0] != 3 {
		t.Fatalf("template not cut from painted region: %v", tmpl.Values[0][0])
	}

	if _, err := ExtractTemplates(spec, []Box{{XMin: 90, XMax: 120, YMin: 0, YMax: 5}}); err == nil {
		t.Fatal("expected error for box outside spectrogram")
	}
}

func TestMatchTemplatePerfectMatch(t *testing.T) {
	image := [][]float64{
		{0, 0, 0, 0, 0},
		{0, 1, 2, 0, 0},
		{0, 3, 4, 0, 0},
		{0, 0, 0, 0, 0},
	}
	tmpl := [][]float64{
		{1, 2},
		{3, 4},
	}

	corr, err := MatchTemplate(image, tmpl)
	if err != nil {
		t.Fatalf("MatchTemplate failed: %v", err)
	}

	_, peak, _, _, x, y := MinMaxLoc(corr)
	if x != 1 || y != 1 {
		t.Fatalf("peak at (%d,%d), want (1,1)", x, y)
	}

	if math.Abs(peak-1) > 1e-12 {
		t.Fatalf("perfect match peak %v, want 1", peak)
	}
}

func TestMatchTemplateFlatWindowScoresZero(t *testing.T) {
	image := [][]float64{
		{5, 5, 5},
		{5, 5, 5},
	}
	tmpl := [][]float64{
		{1, 2},
	}

	corr, err := MatchTemplate(image, tmpl)
	if err != nil {
		t.Fatalf("MatchTemplate failed: %v", err)
	}

	for y := range corr {
		for x, v := range corr[y] {
			if v != 0 {
				t.Fatalf("flat window at (%d,%d) should score 0: %v", x, y, v)
			}
		}
	}
}

func TestMatchTemplateSizeGuard(t *testing.T) {
	image := [][]float64{{1, 2}}
	tmpl := [][]float64{{1, 2, 3}}

	if _, err := MatchTemplate(image, tmpl); err == nil {
		t.Fatal("expected error for oversized template")
	}
}

func TestMatchInStripeFindsShiftedCall(t *testing.T) {
	source := syntheticSpec(60, 120)
	paintSweep(source, Box{XMin: 10, XMax: 22, YMin: 20, YMax: 30}, 7, 1)

	tmpls, err := ExtractTemplates(source, []Box{{XMin: 10, XMax: 22, YMin: 20, YMax: 30}})
	if err != nil {
		t.Fatalf("ExtractTemplates failed: %v", err)
	}

	// Same call later in time, two bins higher, and quieter in another
	// recording. Normalized correlation is scale invariant, so the peak
	// still hits 1.
	target := syntheticSpec(60, 120)
	paintSweep(target, Box{XMin: 70, XMax: 82, YMin: 22, YMax: 32}, 3, 0.5)

	result, ok := MatchInStripe(target, tmpls[0], 5)
	if !ok {
		t.Fatal("match should not be skipped")
	}

	if result.Peak < 0.9 {
		t.Fatalf("peak correlation %v, want > 0.9", result.Peak)
	}

	if result.X != 70 {
		t.Fatalf("peak frame %d, want 70", result.X)
	}

	if result.Y != 22 {
		t.Fatalf("peak bin %d, want 22", result.Y)
	}
}

func TestMatchInStripeSkipsOversized(t *testing.T) {
	source := syntheticSpec(60, 120)
	tmpl := Template{
		Box:    Box{XMin: 0, XMax: 200, YMin: 0, YMax: 10},
		Values: make([][]float64, 10),
	}
	for y := range tmpl.Values {
		tmpl.Values[y] = make([]float64, 200)
	}

	if _, ok := MatchInStripe(source, tmpl, 5); ok {
		t.Fatal("template wider than spectrogram must be skipped")
	}
}

func TestCrossStatsAlignsRows(t *testing.T) {
	source := syntheticSpec(60, 120)
	paintSweep(source, Box{XMin: 10, XMax: 22, YMin: 20, YMax: 30}, 7, 1)

	tmpls, err := ExtractTemplates(source, []Box{{XMin: 10, XMax: 22, YMin: 20, YMax: 30}})
	if err != nil {
		t.Fatalf("ExtractTemplates failed: %v", err)
	}

	oversized := Template{
		Box:    Box{XMin: 0, XMax: 200, YMin: 0, YMax: 10},
		Values: [][]float64{make([]float64, 200)},
	}

	results := CrossStats(source, []Template{tmpls[0], oversized}, 5)
	if len(results) != 2 {
		t.Fatalf("result count %d, want 2", len(results))
	}

	if results[0].Peak < 0.9 {
		t.Fatalf("first template should match its own source: %v", results[0].Peak)
	}

	if results[1] != (MatchResult{}) {
		t.Fatalf("skipped template should leave a zero row: %+v", results[1])
	}
}

func TestFileVectorLayout(t *testing.T) {
	spec := syntheticSpec(40, 100)
	paintBlock(spec, Box{XMin: 10, XMax: 20, YMin: 5, YMax: 12}, 10)

	boxes := []Box{{XMin: 10, XMax: 20, YMin: 5, YMax: 12}}

	vec, err := FileVector(spec, boxes, 8)
	if err != nil {
		t.Fatalf("FileVector failed: %v", err)
	}

	if len(vec) != VectorLen(8) {
		t.Fatalf("vector length %d, want %d", len(vec), VectorLen(8))
	}

	// Whole-spectrogram block: min 0, max 10.
	if vec[0] != 0 || vec[1] != 10 {
		t.Fatalf("whole-spec min/max %v/%v, want 0/10", vec[0], vec[1])
	}

	// Geometry block: single box of width 10, height 7, low bin 5; stddev 0.
	geo := vec[len(vec)-12:]
	want := []float64{10, 7, 5, 10, 7, 5, 10, 7, 5, 0, 0, 0}
	for i := range want {
		if math.Abs(geo[i]-want[i]) > 1e-12 {
			t.Fatalf("geometry[%d] = %v, want %v", i, geo[i], want[i])
		}
	}
}

func TestFileVectorNoSegmentsZeroGeometry(t *testing.T) {
	spec := syntheticSpec(40, 100)

	vec, err := FileVector(spec, nil, 8)
	if err != nil {
		t.Fatalf("FileVector failed: %v", err)
	}

	for _, v := range vec[len(vec)-12:] {
		if v != 0 {
			t.Fatalf("geometry block should be zeros without segments: %v", vec)
		}
	}
}

func TestFileVectorBandCountGuard(t *testing.T) {
	spec := syntheticSpec(4, 10)

	if _, err := FileVector(spec, nil, 8); err == nil {
		t.Fatal("expected error when bins < bands")
	}
}
