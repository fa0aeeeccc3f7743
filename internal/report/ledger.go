// Package report writes the run ledger: one row per processed input file,
// stored through the storage registry so any registered backend can hold it.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flightprep/internal/ddl"
	"flightprep/internal/storage"
)

// Status is the outcome of one file.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Record is one ledger row.
type Record struct {
	RunID      string
	Job        string
	Year       string
	Source     string
	Output     string
	Status     Status
	Rows       int64
	Bytes      int64
	Checksum   string
	Error      string
	Duration   time.Duration
	FinishedAt time.Time
}

// Recorder accepts ledger rows.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Table returns the ledger table definition for fqn.
func Table(fqn string) ddl.TableDef {
	return ddl.TableDef{
		FQN: fqn,
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: ddl.TypeText},
			{Name: "job", Type: ddl.TypeText},
			{Name: "year", Type: ddl.TypeText},
			{Name: "source_file", Type: ddl.TypeText},
			{Name: "output_file", Type: ddl.TypeText},
			{Name: "status", Type: ddl.TypeText},
			{Name: "row_count", Type: ddl.TypeBigInt},
			{Name: "output_bytes", Type: ddl.TypeBigInt},
			{Name: "checksum", Type: ddl.TypeText, Nullable: true},
			{Name: "error", Type: ddl.TypeText, Nullable: true},
			{Name: "duration_ms", Type: ddl.TypeBigInt},
			{Name: "finished_at", Type: ddl.TypeTimestamp},
		},
	}
}

// Values renders rec in Table column order. Empty checksum and error become
// NULL.
func (rec Record) Values() []any {
	return []any{
		rec.RunID,
		rec.Job,
		rec.Year,
		rec.Source,
		rec.Output,
		string(rec.Status),
		rec.Rows,
		rec.Bytes,
		nullable(rec.Checksum),
		nullable(rec.Error),
		rec.Duration.Milliseconds(),
		rec.FinishedAt.UTC(),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Ledger appends Records for a single run.
type Ledger struct {
	repo    storage.Repository
	runID   string
	columns []string
}

// Open connects to the backend for kind, creates table when missing and
// returns a Ledger with a fresh run id.
func Open(ctx context.Context, kind, dsn, table string) (*Ledger, error) {
	def := Table(table)
	repo, err := storage.New(ctx, storage.Config{
		Kind:    kind,
		DSN:     dsn,
		Table:   table,
		Columns: def.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", kind, err)
	}
	if err := storage.EnsureTable(ctx, kind, repo, def); err != nil {
		repo.Close()
		return nil, fmt.Errorf("report: ensure table %s: %w", table, err)
	}
	return NewLedger(repo, table), nil
}

// NewLedger wraps an already-open repository whose table matches Table.
func NewLedger(repo storage.Repository, table string) *Ledger {
	return &Ledger{
		repo:    repo,
		runID:   uuid.NewString(),
		columns: Table(table).Names(),
	}
}

// RunID identifies every row this Ledger writes.
func (l *Ledger) RunID() string { return l.runID }

// Record writes rec, stamping the run id and finish time when unset.
func (l *Ledger) Record(ctx context.Context, rec Record) error {
	if rec.RunID == "" {
		rec.RunID = l.runID
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	if _, err := l.repo.CopyFrom(ctx, l.columns, [][]any{rec.Values()}); err != nil {
		return fmt.Errorf("report: record %s: %w", rec.Source, err)
	}
	return nil
}

// Close releases the underlying repository.
func (l *Ledger) Close() {
	if l.repo != nil {
		l.repo.Close()
	}
}
