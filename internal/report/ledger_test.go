package report

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	_ "flightprep/internal/storage/sqlite"
)

// captureRepo records CopyFrom calls.
type captureRepo struct {
	columns []string
	rows    [][]any
	err     error
	closed  bool
}

func (c *captureRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.columns = columns
	c.rows = append(c.rows, rows...)
	return int64(len(rows)), nil
}
func (c *captureRepo) Exec(ctx context.Context, sql string) error { return nil }
func (c *captureRepo) Close()                                     { c.closed = true }

func TestRecord_StampsRunIDAndTime(t *testing.T) {
	t.Parallel()

	repo := &captureRepo{}
	l := NewLedger(repo, "runs")
	if _, err := uuid.Parse(l.RunID()); err != nil {
		t.Fatalf("RunID %q is not a UUID: %v", l.RunID(), err)
	}

	err := l.Record(context.Background(), Record{
		Job:      "flightprep",
		Year:     "2023",
		Source:   "2023/2023_01.csv",
		Output:   "processed/2023/2023_01.parquet",
		Status:   StatusOK,
		Rows:     2,
		Bytes:    4096,
		Checksum: "00000000deadbeef",
		Duration: 1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d; want 1", len(repo.rows))
	}
	if len(repo.columns) != len(Table("runs").Columns) {
		t.Fatalf("columns = %v", repo.columns)
	}
	row := repo.rows[0]
	if row[0] != l.RunID() {
		t.Fatalf("run_id = %v; want %s", row[0], l.RunID())
	}
	if row[5] != "ok" || row[6] != int64(2) || row[10] != int64(1500) {
		t.Fatalf("row = %v", row)
	}
	if row[9] != nil {
		t.Fatalf("error = %v; want NULL for an empty error", row[9])
	}
	if ts, ok := row[11].(time.Time); !ok || ts.IsZero() {
		t.Fatalf("finished_at = %v; want a timestamp", row[11])
	}

	l.Close()
	if !repo.closed {
		t.Fatalf("Close did not close the repository")
	}
}

func TestRecord_WrapsRepositoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	l := NewLedger(&captureRepo{err: boom}, "runs")
	err := l.Record(context.Background(), Record{Source: "2023_01.csv"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want wrapping %v", err, boom)
	}
}

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "runs.db")

	l, err := Open(ctx, "sqlite", dsn, "conversion_runs")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, rec := range []Record{
		{Job: "flightprep", Year: "2023", Source: "a.csv", Status: StatusOK, Rows: 2},
		{Job: "flightprep", Year: "2023", Source: "b.csv", Status: StatusFailed, Error: "missing column"},
	} {
		if err := l.Record(ctx, rec); err != nil {
			t.Fatalf("Record(%s): %v", rec.Source, err)
		}
	}
	l.Close()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversion_runs WHERE run_id = ? AND status = 'failed' AND error = 'missing column'`,
		l.RunID(),
	).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("failed rows = %d; want 1", n)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversion_runs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d; want 2", n)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "oracle", "x", "runs"); err == nil {
		t.Fatalf("expected an error for an unregistered kind")
	}
}
