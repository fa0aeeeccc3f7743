// Package file discovers the monthly CSV extracts for a year on the local
// filesystem and derives the names of their columnar outputs.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pattern returns the filename glob matched for year, e.g. "2023_*.csv".
func Pattern(year string) string {
	return year + "_*.csv"
}

// Discover lists the regular files directly inside dir whose name matches
// Pattern(year), sorted lexicographically by filename. Month tokens are
// zero-padded, so the order is also chronological.
//
// A missing dir yields an empty result and no error; callers decide whether
// an empty year is fatal.
func Discover(dir, year string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	pattern := Pattern(year)
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// MonthToken extracts the month from an input filename: the segment after
// the first '_' up to its first '.'. "2024_07.csv" yields "07".
func MonthToken(name string) (string, error) {
	base := filepath.Base(name)
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return "", fmt.Errorf("month token: %q has no '_' separator", base)
	}
	month, _, _ := strings.Cut(parts[1], ".")
	if month == "" {
		return "", fmt.Errorf("month token: %q has an empty month segment", base)
	}
	return month, nil
}

// OutputName returns "{year}_{month}.{ext}".
func OutputName(year, month, ext string) string {
	return fmt.Sprintf("%s_%s.%s", year, month, strings.TrimPrefix(ext, "."))
}

// OutputPath maps an input file to its output path inside outDir.
func OutputPath(outDir, year, input, ext string) (string, error) {
	month, err := MonthToken(input)
	if err != nil {
		return "", err
	}
	return filepath.Join(outDir, OutputName(year, month, ext)), nil
}
