package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"flightprep/internal/ddl"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
	execs  []string
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Close() { f.closed = true }

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}

	// Ensure ListKinds contains the registered kind.
	kinds := ListKinds()
	found := false
	for _, k := range kinds {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, kinds)
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory (useful for tests and dynamic wiring).
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 { // only the second factory should have been used
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot performs a shallow sanity check that ListKinds returns
// a copy (mutations by caller do not affect internal registry).
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	k := "snap"
	Register(k, func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	// Mutate the returned slice; registry should be unaffected.
	a[0] = "mutated"

	b := ListKinds()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factories can return errors that bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	kind := "errkind"
	want := errors.New("boom")

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}

type testDialect struct{}

func (testDialect) Name() string                     { return "test" }
func (testDialect) QuoteIdent(id string) string      { return "`" + id + "`" }
func (testDialect) MapType(string) string            { return "TEXT" }
func (testDialect) CreateTable(fqn, b string) string { return "CREATE " + fqn + " (" + b + ")" }

// TestEnsureTable_UsesRegisteredBootstrapper verifies that EnsureTable routes
// to the bootstrapper registered for the kind and that ExecDDL renders the
// table definition through the dialect before calling Exec.
func TestEnsureTable_UsesRegisteredBootstrapper(t *testing.T) {
	t.Parallel()

	RegisterDDL("ddl-test", ExecDDL(testDialect{}))

	repo := &fakeRepo{}
	def := ddl.TableDef{FQN: "runs", Columns: []ddl.ColumnDef{{Name: "id"}}}
	if err := EnsureTable(context.Background(), "ddl-test", repo, def); err != nil {
		t.Fatalf("EnsureTable error: %v", err)
	}
	if len(repo.execs) != 1 || !strings.HasPrefix(repo.execs[0], "CREATE `runs`") {
		t.Fatalf("execs = %q; want one CREATE for `runs`", repo.execs)
	}
}

func TestEnsureTable_UnknownKind(t *testing.T) {
	t.Parallel()

	err := EnsureTable(context.Background(), "no-ddl", &fakeRepo{}, ddl.TableDef{})
	if err == nil || !strings.Contains(err.Error(), `storage.kind="no-ddl"`) {
		t.Fatalf("err = %v; want a missing bootstrapper error", err)
	}
}

func TestExecDDL_InvalidDefinition(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	if err := ExecDDL(testDialect{})(context.Background(), repo, ddl.TableDef{}); err == nil {
		t.Fatalf("expected an error for an empty table definition")
	}
	if len(repo.execs) != 0 {
		t.Fatalf("Exec called %d times; want 0", len(repo.execs))
	}
}
