package mysql

import (
	"context"
	"strings"

	"flightprep/internal/ddl"
	"flightprep/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders ledger DDL for MySQL.
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func (Dialect) MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeBigInt, "int", "integer":
		return "BIGINT"
	case ddl.TypeTimestamp, "datetime":
		return "DATETIME(6)"
	case ddl.TypeUUID:
		return "CHAR(36)"
	default:
		return "TEXT"
	}
}

func (Dialect) CreateTable(fqn, body string) string {
	return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n);"
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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
	storage.RegisterDDL("mysql", storage.ExecDDL(Dialect{}))
}
