package mysql

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"flightprep/internal/ddl"
	"flightprep/internal/storage"
)

func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	cfg := storage.Config{Kind: "mysql", DSN: "u:p@tcp(db:3306)/bts", Table: "conversion_runs"}
	repo, err := storage.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotCfg.DSN != cfg.DSN || gotCfg.Table != cfg.Table {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call the close function")
	}
}

func TestNewRepository_InvalidDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "no-slash-here"}); err == nil {
		t.Fatalf("expected a DSN parse error")
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	q, args, err := insertSQL("bts.runs", []string{"job", "row_count"}, [][]any{
		{"flightprep", int64(1)},
		{"flightprep", int64(2)},
	})
	if err != nil {
		t.Fatalf("insertSQL: %v", err)
	}
	want := "INSERT INTO `bts`.`runs` (`job`, `row_count`) VALUES (?, ?), (?, ?)"
	if q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"flightprep", int64(1), "flightprep", int64(2)}) {
		t.Fatalf("args = %v", args)
	}

	if _, _, err := insertSQL("runs", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected a row length error")
	}
}

func TestChunkRows(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1}, {2}, {3}, {4}, {5}}
	chunks := chunkRows(rows, 2)
	if len(chunks) != 3 || len(chunks[0]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("chunks = %v; want sizes 2,2,1", chunks)
	}
	if got := chunkRows(rows, 0); len(got) != 5 {
		t.Fatalf("size 0 should fall back to 1; got %d chunks", len(got))
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	def := ddl.TableDef{FQN: "runs", Columns: []ddl.ColumnDef{
		{Name: "run_id", Type: ddl.TypeUUID},
		{Name: "finished_at", Type: ddl.TypeTimestamp},
	}}
	got, err := ddl.BuildCreateTableSQL(def, Dialect{})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, frag := range []string{"CREATE TABLE IF NOT EXISTS `runs`", "`run_id` CHAR(36) NOT NULL", "`finished_at` DATETIME(6) NOT NULL"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("SQL %q missing %q", got, frag)
		}
	}
}
