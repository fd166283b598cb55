package window

import (
	"math"
	"testing"
)

func TestGenerateHannEndpointsAndPeak(t *testing.T) {
	coeffs, err := Generate(TypeHann, 9)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if math.Abs(coeffs[0]) > 1e-12 || math.Abs(coeffs[8]) > 1e-12 {
		t.Fatalf("symmetric hann edges should be 0: %v %v", coeffs[0], coeffs[8])
	}

	if math.Abs(coeffs[4]-1) > 1e-12 {
		t.Fatalf("hann midpoint should be 1: %v", coeffs[4])
	}
}

func TestGenerateSymmetry(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris, TypeFlatTop, TypeKaiser, TypeTukey, TypeGauss} {
		coeffs, err := Generate(typ, 64)
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", typ, err)
		}

		for i := range coeffs {
			j := len(coeffs) - 1 - i
			if math.Abs(coeffs[i]-coeffs[j]) > 1e-12 {
				t.Fatalf("type %d not symmetric at %d: %v vs %v", typ, i, coeffs[i], coeffs[j])
			}
		}
	}
}

func TestGeneratePeriodicForm(t *testing.T) {
	periodic, err := Generate(TypeHann, 8, WithPeriodic())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Periodic hann of size N equals symmetric hann of size N+1 minus its
	// last sample.
	symmetric, err := Generate(TypeHann, 9)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := range periodic {
		if math.Abs(periodic[i]-symmetric[i]) > 1e-12 {
			t.Fatalf("periodic mismatch at %d: %v vs %v", i, periodic[i], symmetric[i])
		}
	}
}

func TestGenerateRejectsInvalidLength(t *testing.T) {
	if _, err := Generate(TypeHann, 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	if _, err := Apply([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestApplyMultiplies(t *testing.T) {
	out, err := Apply([]float64{1, 2, 3}, []float64{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []float64{0.5, 1, 1.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v want %v", i, out[i], want[i])
		}
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	rect, err := Generate(TypeRectangular, 128)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	enbw, err := EquivalentNoiseBandwidth(rect)
	if err != nil {
		t.Fatalf("ENBW failed: %v", err)
	}

	if math.Abs(enbw-1) > 1e-12 {
		t.Fatalf("rectangular ENBW should be 1 bin: %v", enbw)
	}

	hann, err := Generate(TypeHann, 4096, WithPeriodic())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	enbw, err = EquivalentNoiseBandwidth(hann)
	if err != nil {
		t.Fatalf("ENBW failed: %v", err)
	}

	if math.Abs(enbw-1.5) > 1e-3 {
		t.Fatalf("hann ENBW should be ~1.5 bins: %v", enbw)
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	types := []Type{
		TypeRectangular, TypeHann, TypeHamming, TypeBlackman,
		TypeBlackmanHarris, TypeFlatTop, TypeKaiser, TypeTukey, TypeGauss,
	}

	for _, want := range types {
		got, err := ParseType(want.String())
		if err != nil {
			t.Fatalf("ParseType(%q) failed: %v", want.String(), err)
		}
		if got != want {
			t.Fatalf("ParseType(%q) = %v, want %v", want.String(), got, want)
		}
	}

	if _, err := ParseType("triangular"); err == nil {
		t.Fatal("ParseType should reject unknown names")
	}
}
