package engine

import (
	"context"
	"fmt"
	"strings"

	"flightprep/internal/dataset"
)

// Compression codecs accepted by DuckDB's Parquet writer.
var Compressions = map[string]struct{}{
	"snappy":       {},
	"zstd":         {},
	"gzip":         {},
	"lz4":          {},
	"brotli":       {},
	"uncompressed": {},
}

// DefaultCompression matches DuckDB's default Parquet codec.
const DefaultCompression = "snappy"

// CopySQL renders the COPY statement that reads src with full-file schema
// inference (sample_size=-1), applies p and writes dst as Parquet.
func CopySQL(src, dst string, p dataset.Projection, compression string) string {
	if compression == "" {
		compression = DefaultCompression
	}
	var b strings.Builder
	b.WriteString("COPY (\n")
	fmt.Fprintf(&b, "    SELECT %s\n", p.SelectList())
	fmt.Fprintf(&b, "    FROM read_csv_auto(%s, sample_size=-1)\n", dataset.QuoteString(src))
	fmt.Fprintf(&b, "    WHERE %s\n", p.WhereClause())
	fmt.Fprintf(&b, ") TO %s (FORMAT PARQUET, COMPRESSION %s)", dataset.QuoteString(dst), strings.ToUpper(compression))
	return b.String()
}

// CopyToParquet runs the projection over src and writes dst, replacing any
// existing file. It returns the number of rows written.
func (s *Session) CopyToParquet(ctx context.Context, src, dst string, p dataset.Projection, compression string) (int64, error) {
	res, err := s.db.ExecContext(ctx, CopySQL(src, dst, p, compression))
	if err != nil {
		return 0, fmt.Errorf("duckdb: copy %s: %w", src, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("duckdb: rows affected: %w", err)
	}
	return n, nil
}
