// Package probe inspects the header of a CSV extract before the query
// engine touches it, so that a missing source column fails with a precise
// message (and a near-miss suggestion) instead of a binder error buried in
// a multi-gigabyte scan.
package probe

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"flightprep/internal/dataset"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// MissingColumnsError lists required columns absent from a CSV header.
type MissingColumnsError struct {
	Path    string
	Missing []string
	// Suggestions maps a missing column to the header cell that folds to the
	// same normalized key (different punctuation or accents).
	Suggestions map[string]string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		if s, ok := e.Suggestions[m]; ok {
			parts[i] = fmt.Sprintf("%s (found %q)", m, s)
			continue
		}
		parts[i] = m
	}
	return fmt.Sprintf("%s: missing columns: %s", e.Path, strings.Join(parts, ", "))
}

// ReadHeader returns the first CSV record of path with any BOM removed.
func ReadHeader(path string, delim rune) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readHeader(f, delim)
}

func readHeader(r io.Reader, delim rune) ([]string, error) {
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(bufio.NewReaderSize(r, 64*1024))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	rec, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return stripUTF8BOM(rec), nil
}

func stripUTF8BOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}

// Check reports which of required are absent from header. Matching is
// case-insensitive, like the engine's identifier binding.
func Check(path string, header, required []string) error {
	present := make(map[string]struct{}, len(header))
	byKey := make(map[string]string, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		if k := normalizeFieldName(h); k != "" {
			if _, taken := byKey[k]; !taken {
				byKey[k] = h
			}
		}
	}

	var missing []string
	suggestions := map[string]string{}
	for _, want := range required {
		if _, ok := present[strings.ToLower(want)]; ok {
			continue
		}
		missing = append(missing, want)
		if h, ok := byKey[normalizeFieldName(want)]; ok {
			suggestions[want] = h
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingColumnsError{Path: path, Missing: missing, Suggestions: suggestions}
}

// Preflight checks that path's header carries every column p selects or
// filters on.
func Preflight(path string, p dataset.Projection) error {
	header, err := ReadHeader(path, ',')
	if err != nil {
		return err
	}
	return Check(path, header, Required(p))
}

// Required is the ordered union of p's selected and filtered columns.
func Required(p dataset.Projection) []string {
	seen := make(map[string]struct{}, len(p.Columns))
	out := make([]string, 0, len(p.Columns)+len(p.Filter))
	for _, c := range append(append([]string{}, p.Columns...), p.Filtered()...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// normalizeFieldName folds a header to lowercase ASCII with accents removed
// and punctuation dropped, e.g. "Origin State" and "origin_state" both fold
// to "originstate".
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose, remove nonspacing marks (accents), recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, _ := transform.String(t, s)

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
