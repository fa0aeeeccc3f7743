// Package dataset describes which columns and rows a conversion keeps.
//
// A Projection is the single configuration structure behind the converter's
// query: an ordered list of column names plus a conjunction of row
// predicates. It renders itself to SQL for the query engine, so the same
// projection logic serves any year or dataset without code changes.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a predicate operator.
type Op string

const (
	// OpEq keeps rows whose column equals Value.
	OpEq Op = "eq"
	// OpNotNull keeps rows whose column is defined (not NULL / not empty).
	OpNotNull Op = "not_null"
)

// Predicate is a single row condition. Predicates in a Projection are ANDed.
type Predicate struct {
	Column string `json:"column" yaml:"column"`
	Op     Op     `json:"op" yaml:"op"`
	// Value is the literal compared against for OpEq. Numeric strings are
	// emitted as bare numbers, anything else as a quoted string literal.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Projection is an ordered column selection plus a row filter.
type Projection struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Filter  []Predicate `json:"filter" yaml:"filter"`
}

// Validate reports structural problems: no columns, blank or duplicate
// column names, and malformed predicates.
func (p Projection) Validate() error {
	if len(p.Columns) == 0 {
		return fmt.Errorf("projection: no columns")
	}
	seen := make(map[string]struct{}, len(p.Columns))
	for i, c := range p.Columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("projection: column %d is blank", i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("projection: duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, f := range p.Filter {
		if strings.TrimSpace(f.Column) == "" {
			return fmt.Errorf("projection: filter[%d] has no column", i)
		}
		switch f.Op {
		case OpEq:
			if f.Value == "" {
				return fmt.Errorf("projection: filter[%d] (%s eq) has no value", i, f.Column)
			}
		case OpNotNull:
		default:
			return fmt.Errorf("projection: filter[%d] has unknown op %q", i, f.Op)
		}
	}
	return nil
}

// SelectList renders the quoted, comma-separated column list. Each column
// is aliased to itself so the output carries the projection's casing even
// when the source header spells it differently.
func (p Projection) SelectList() string {
	quoted := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		quoted[i] = QuoteIdent(c) + " AS " + QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// WhereClause renders the filter as a boolean SQL expression without the
// WHERE keyword. An empty filter renders as "TRUE".
func (p Projection) WhereClause() string {
	if len(p.Filter) == 0 {
		return "TRUE"
	}
	parts := make([]string, 0, len(p.Filter))
	for _, f := range p.Filter {
		parts = append(parts, f.SQL())
	}
	return strings.Join(parts, " AND ")
}

// SQL renders a single predicate.
func (f Predicate) SQL() string {
	switch f.Op {
	case OpNotNull:
		return QuoteIdent(f.Column) + " IS NOT NULL"
	default:
		return QuoteIdent(f.Column) + " = " + literal(f.Value)
	}
}

// Filtered lists the columns referenced by the filter, in filter order.
func (p Projection) Filtered() []string {
	out := make([]string, 0, len(p.Filter))
	for _, f := range p.Filter {
		out = append(out, f.Column)
	}
	return out
}

// QuoteIdent double-quotes an identifier so its exact casing is preserved.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString renders a single-quoted SQL string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func literal(v string) string {
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return QuoteString(v)
}
