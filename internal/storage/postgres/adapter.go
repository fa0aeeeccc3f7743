package postgres

import (
	"context"
	"strings"

	"flightprep/internal/ddl"
	"flightprep/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders ledger DDL for Postgres.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// QuoteIdent quotes a single identifier segment, e.g. `weird"name` becomes
// `"weird""name"`.
func (Dialect) QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func (Dialect) MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeBigInt, "int", "integer":
		return "BIGINT"
	case ddl.TypeTimestamp, "timestamptz":
		return "TIMESTAMPTZ"
	case ddl.TypeUUID:
		return "UUID"
	default:
		return "TEXT"
	}
}

func (Dialect) CreateTable(fqn, body string) string {
	return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n);"
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("postgres", storage.ExecDDL(Dialect{}))
}
