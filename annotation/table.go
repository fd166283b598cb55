package annotation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	beginColumn = "begin time (s)"
	endColumn   = "end time (s)"

	// UnknownClass replaces missing class labels, matching common annotation
	// cleanup practice.
	UnknownClass = "unknown"
)

var (
	// ErrMissingColumn indicates a selection table without the required
	// begin/end/class columns.
	ErrMissingColumn = errors.New("annotation: required column missing")
)

// Entry is one annotated selection.
type Entry struct {
	Begin float64
	End   float64
	Class string
}

// Table is a set of selections sorted by begin time.
type Table struct {
	Entries []Entry
}

// ParseOption configures selection table parsing.
type ParseOption func(*parseConfig)

type parseConfig struct {
	classColumn string
	corrections map[string]string
}

// WithClassColumn sets the annotation column name (default "class").
func WithClassColumn(name string) ParseOption {
	return func(c *parseConfig) {
		if name != "" {
			c.classColumn = strings.ToLower(name)
		}
	}
}

// WithCorrections applies a raw-to-corrected label mapping while parsing.
// Labels without a mapping pass through unchanged.
func WithCorrections(corrections map[string]string) ParseOption {
	return func(c *parseConfig) {
		c.corrections = corrections
	}
}

// Parse reads a tab-separated Raven selection table. Column matching is
// case-insensitive; rows are returned sorted by begin time. Empty class
// cells become UnknownClass.
func Parse(r io.Reader, opts ...ParseOption) (*Table, error) {
	cfg := parseConfig{classColumn: "class"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("annotation: read header: %w", err)
	}

	beginIdx, endIdx, classIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case beginColumn:
			beginIdx = i
		case endColumn:
			endIdx = i
		case cfg.classColumn:
			classIdx = i
		}
	}
	if beginIdx < 0 || endIdx < 0 || classIdx < 0 {
		return nil, fmt.Errorf("%w: need %q, %q, %q", ErrMissingColumn,
			beginColumn, endColumn, cfg.classColumn)
	}

	table := &Table{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("annotation: line %d: %w", line, err)
		}
		if beginIdx >= len(record) || endIdx >= len(record) {
			return nil, fmt.Errorf("annotation: line %d: too few columns", line)
		}

		begin, err := strconv.ParseFloat(strings.TrimSpace(record[beginIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("annotation: line %d: begin time: %w", line, err)
		}

		end, err := strconv.ParseFloat(strings.TrimSpace(record[endIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("annotation: line %d: end time: %w", line, err)
		}

		class := ""
		if classIdx < len(record) {
			class = strings.TrimSpace(record[classIdx])
		}
		if class == "" {
			class = UnknownClass
		}
		if corrected, ok := cfg.corrections[class]; ok {
			class = corrected
		}

		table.Entries = append(table.Entries, Entry{Begin: begin, End: end, Class: class})
	}

	sort.SliceStable(table.Entries, func(i, j int) bool {
		return table.Entries[i].Begin < table.Entries[j].Begin
	})

	return table, nil
}

// ParseFile reads a Raven selection table from disk.
func ParseFile(path string, opts ...ParseOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("annotation: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, opts...)
}

// LoadCorrections reads a label correction CSV with "raw" and "corrected"
// header columns.
func LoadCorrections(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("annotation: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("annotation: read corrections header: %w", err)
	}

	rawIdx, correctedIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "raw":
			rawIdx = i
		case "corrected":
			correctedIdx = i
		}
	}
	if rawIdx < 0 || correctedIdx < 0 {
		return nil, fmt.Errorf("%w: need \"raw\", \"corrected\"", ErrMissingColumn)
	}

	out := make(map[string]string)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("annotation: read corrections: %w", err)
		}
		if rawIdx < len(record) && correctedIdx < len(record) {
			out[strings.TrimSpace(record[rawIdx])] = strings.TrimSpace(record[correctedIdx])
		}
	}

	return out, nil
}

// Overlapping returns entries that overlap the window [begin, end): entries
// beginning inside the window or ending inside it.
func (t *Table) Overlapping(begin, end float64) []Entry {
	var out []Entry
	for _, e := range t.Entries {
		beginsInside := e.Begin >= begin && e.Begin < end
		endsInside := e.End > begin && e.End <= end
		if beginsInside || endsInside {
			out = append(out, e)
		}
	}

	return out
}

// Classes returns the unique class labels of the entries in first-seen
// order.
func Classes(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	var out []string
	for _, e := range entries {
		if _, ok := seen[e.Class]; ok {
			continue
		}
		seen[e.Class] = struct{}{}
		out = append(out, e.Class)
	}

	return out
}
