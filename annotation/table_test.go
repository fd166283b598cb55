package annotation

import (
	"strings"
	"testing"
)

const sampleTable = "Selection\tBegin Time (s)\tEnd Time (s)\tClass\n" +
	"1\t12.5\t14.0\tHyla versicolor\n" +
	"2\t3.0\t4.5\tPseudacris crucifer\n" +
	"3\t20.0\t21.0\t\n"

func TestParseSortsAndFillsUnknown(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Entries) != 3 {
		t.Fatalf("entry count %d, want 3", len(table.Entries))
	}

	if table.Entries[0].Begin != 3.0 {
		t.Fatalf("entries not sorted by begin time: first begin %v", table.Entries[0].Begin)
	}

	if table.Entries[2].Class != UnknownClass {
		t.Fatalf("empty class should become %q: %q", UnknownClass, table.Entries[2].Class)
	}
}

func TestParseAppliesCorrections(t *testing.T) {
	corrections := map[string]string{"Hyla versicolor": "gray treefrog"}

	table, err := Parse(strings.NewReader(sampleTable), WithCorrections(corrections))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	found := false
	for _, e := range table.Entries {
		if e.Class == "gray treefrog" {
			found = true
		}
		if e.Class == "Hyla versicolor" {
			t.Fatal("raw label should have been corrected")
		}
	}
	if !found {
		t.Fatal("corrected label not present")
	}
}

func TestParseMissingColumn(t *testing.T) {
	bad := "Selection\tBegin Time (s)\tClass\n1\t1.0\tx\n"

	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for missing end time column")
	}
}

func TestParseCustomClassColumn(t *testing.T) {
	src := "Begin Time (s)\tEnd Time (s)\tSpecies\n1.0\t2.0\tfrog\n"

	table, err := Parse(strings.NewReader(src), WithClassColumn("Species"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.Entries[0].Class != "frog" {
		t.Fatalf("class %q, want frog", table.Entries[0].Class)
	}
}

func TestOverlappingWindowSemantics(t *testing.T) {
	table := &Table{Entries: []Entry{
		{Begin: 1.0, End: 2.0, Class: "a"},
		{Begin: 4.0, End: 6.0, Class: "b"},
		{Begin: 9.0, End: 9.5, Class: "c"},
	}}

	// Window [0, 5): "a" begins inside, "b" begins inside.
	got := table.Overlapping(0, 5)
	if len(got) != 2 {
		t.Fatalf("overlap count %d, want 2: %+v", len(got), got)
	}

	// Window [5, 7): "b" ends inside.
	got = table.Overlapping(5, 7)
	if len(got) != 1 || got[0].Class != "b" {
		t.Fatalf("unexpected overlaps: %+v", got)
	}

	// Window [7, 9): nothing. Begin time 9.0 is excluded (half-open).
	if got := table.Overlapping(7, 9); len(got) != 0 {
		t.Fatalf("expected no overlaps, got %+v", got)
	}

	// Window [9, 10): "c" fits entirely.
	got = table.Overlapping(9, 10)
	if len(got) != 1 || got[0].Class != "c" {
		t.Fatalf("unexpected overlaps: %+v", got)
	}
}

func TestClassesUnique(t *testing.T) {
	entries := []Entry{
		{Class: "a"}, {Class: "b"}, {Class: "a"},
	}

	got := Classes(entries)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected classes: %v", got)
	}
}
