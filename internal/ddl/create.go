package ddl

import (
	"fmt"
	"strings"
)

// Dialect adapts the generic model to one SQL backend.
type Dialect interface {
	// Name prefixes error messages, e.g. "postgres".
	Name() string
	// QuoteIdent quotes a single identifier segment.
	QuoteIdent(id string) string
	// MapType turns a logical type into the backend's SQL type.
	MapType(logical string) string
	// CreateTable wraps the rendered column list into a statement that is a
	// no-op when the table already exists.
	CreateTable(quotedFQN, body string) string
}

// QuoteFQN quotes every non-empty segment of a dotted name with d.
func QuoteFQN(d Dialect, fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders t for dialect d.
//
// Rules:
//   - t.FQN must be non-empty and t must have at least one column.
//   - Each column needs a Name; an empty Type maps like TypeText.
//   - Primary-key columns are always NOT NULL and are collected into a
//     trailing PRIMARY KEY clause in declaration order.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name(), fqn)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(d.MapType(c.Type))
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return d.CreateTable(QuoteFQN(d, fqn), strings.Join(cols, ",\n  ")), nil
}
