package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"flightprep/internal/ddl"
	"flightprep/internal/storage"
)

// TestPostgresStorageRegistrationUsesNewRepositoryHook swaps the package hook
// so no server is needed; it does not run in parallel for that reason.
func TestPostgresStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

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

	cfg := storage.Config{
		Kind:    "postgres",
		DSN:     "postgres://user@localhost/bts",
		Table:   "public.conversion_runs",
		Columns: []string{"run_id"},
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	want := Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns}
	if !reflect.DeepEqual(gotCfg, want) {
		t.Fatalf("hook cfg = %+v, want %+v", gotCfg, want)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call the close function")
	}
}

func TestPostgresStorageRegistrationPropagatesError(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	boom := errors.New("boom")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return nil, nil, boom
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "postgres"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"public.conversion_runs": {"public", "conversion_runs"},
		"runs":                   {"runs"},
		"a..b":                   {"a", "b"},
	}
	for in, want := range tests {
		if got := splitFQN(in); !reflect.DeepEqual([]string(got), want) {
			t.Errorf("splitFQN(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	def := ddl.TableDef{
		FQN: "public.runs",
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: ddl.TypeUUID, PrimaryKey: true},
			{Name: "finished_at", Type: ddl.TypeTimestamp},
			{Name: "row_count", Type: ddl.TypeBigInt},
			{Name: `we"ird`, Nullable: true},
		},
	}
	got, err := ddl.BuildCreateTableSQL(def, Dialect{})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"runs\" (\n" +
		"  \"run_id\" UUID NOT NULL,\n" +
		"  \"finished_at\" TIMESTAMPTZ NOT NULL,\n" +
		"  \"row_count\" BIGINT NOT NULL,\n" +
		"  \"we\"\"ird\" TEXT,\n" +
		"  PRIMARY KEY (\"run_id\")\n" +
		");"
	if got != want {
		t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, want)
	}
	if !strings.Contains(got, "IF NOT EXISTS") {
		t.Fatalf("statement must be idempotent")
	}
}
