// Package verify reads a written Parquet file back and confirms it has the
// shape the converter promised: the projection's columns, in order, and the
// row count the engine reported.
package verify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

var (
	// ErrColumnMismatch is returned when the file's columns differ from the
	// expected list (names or order).
	ErrColumnMismatch = errors.New("verify: column mismatch")
	// ErrRowCountMismatch is returned when the file's row count differs from
	// what the writer reported.
	ErrRowCountMismatch = errors.New("verify: row count mismatch")
)

// Summary describes a Parquet file.
type Summary struct {
	Path     string
	Columns  []string
	Rows     int64
	Size     int64
	Checksum string // xxh3-64 of the file bytes, hex
}

// Inspect opens path and summarizes its schema, row count and content hash.
func Inspect(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Summary{}, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return Summary{}, fmt.Errorf("parquet %s: %w", path, err)
	}

	fields := pf.Schema().Fields()
	cols := make([]string, len(fields))
	for i, fld := range fields {
		cols[i] = fld.Name()
	}

	sum, err := checksumReader(io.NewSectionReader(f, 0, st.Size()))
	if err != nil {
		return Summary{}, fmt.Errorf("checksum %s: %w", path, err)
	}

	return Summary{
		Path:     path,
		Columns:  cols,
		Rows:     pf.NumRows(),
		Size:     st.Size(),
		Checksum: sum,
	}, nil
}

// Expect checks s against the wanted column list and, when wantRows >= 0,
// the wanted row count.
func (s Summary) Expect(columns []string, wantRows int64) error {
	if len(s.Columns) != len(columns) {
		return fmt.Errorf("%w: %s has %d columns, want %d", ErrColumnMismatch, s.Path, len(s.Columns), len(columns))
	}
	for i := range columns {
		if s.Columns[i] != columns[i] {
			return fmt.Errorf("%w: %s column %d is %q, want %q", ErrColumnMismatch, s.Path, i, s.Columns[i], columns[i])
		}
	}
	if wantRows >= 0 && s.Rows != wantRows {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrRowCountMismatch, s.Path, s.Rows, wantRows)
	}
	return nil
}

// Head returns up to n rows of path rendered as strings, in column order.
// NULL values render as the empty string.
func Head(path string, n int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet %s: %w", path, err)
	}

	out := make([][]string, 0, n)
	buf := make([]parquet.Row, 64)
	for _, rg := range pf.RowGroups() {
		if len(out) >= n {
			break
		}
		rows := rg.Rows()
		for len(out) < n {
			k, rerr := rows.ReadRows(buf)
			for _, r := range buf[:k] {
				if len(out) >= n {
					break
				}
				out = append(out, renderRow(r))
			}
			if rerr != nil {
				if errors.Is(rerr, io.EOF) {
					break
				}
				rows.Close()
				return nil, fmt.Errorf("read rows %s: %w", path, rerr)
			}
		}
		rows.Close()
	}
	return out, nil
}

func renderRow(r parquet.Row) []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = renderValue(v)
	}
	return out
}

func renderValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return fmt.Sprint(v)
	}
}
