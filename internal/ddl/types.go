// Package ddl holds a backend-agnostic table model and renders it to CREATE
// TABLE statements through a per-backend Dialect.
package ddl

// Logical column types understood by every Dialect.
const (
	TypeText      = "text"
	TypeBigInt    = "bigint"
	TypeTimestamp = "timestamp"
	TypeUUID      = "uuid"
)

// ColumnDef describes a single column.
//
// Type is a logical type (TypeText, TypeBigInt, ...) that the dialect maps to
// a concrete SQL type. Default is raw SQL and is emitted verbatim.
type ColumnDef struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) in dotted form, e.g.
// "public.conversion_runs", and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Names returns the column names in declaration order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
