package mssql

import (
	"context"
	"fmt"
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

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders ledger DDL for SQL Server. T-SQL has no CREATE TABLE IF
// NOT EXISTS, so the statement is guarded by OBJECT_ID.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

// QuoteIdent quotes with [brackets], doubling any closing bracket.
func (Dialect) QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

func (Dialect) MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeBigInt, "int", "integer":
		return "BIGINT"
	case ddl.TypeTimestamp, "datetime":
		return "DATETIME2"
	case ddl.TypeUUID:
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

func (Dialect) CreateTable(fqn, body string) string {
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n  %s\n  );\nEND",
		strings.ReplaceAll(fqn, "'", "''"), fqn, body,
	)
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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
	storage.RegisterDDL("mssql", storage.ExecDDL(Dialect{}))
}
