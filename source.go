package main

import (
	"database/sql"
	"fmt"
)

// TypeTag is the closed set of declared column types understood by the
// legacy database format. Anything else maps to TypeUnknown, which is
// propagated into the generated output rather than silently defaulted.
type TypeTag int

const (
	TypeUnknown TypeTag = iota
	TypeText
	TypeMemo
	TypeInteger
	TypeLong
	TypeBoolean
	TypeDateTime
)

// memoLength is the declared length the legacy format reports for
// memo (long text) columns.
const memoLength = 8190

func (t TypeTag) String() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeMemo:
		return "MEMO"
	case TypeInteger:
		return "INT"
	case TypeLong:
		return "LONG"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDateTime:
		return "SHORT_DATE_TIME"
	default:
		return "UNKNOWN"
	}
}

// SourceColumn is one column of a source table. Columns are listed in
// table ordinal order.
type SourceColumn struct {
	Name   string
	Type   TypeTag
	Length int64 // declared max length; memoLength for memo columns
}

// SourceIndex is one index of a source table. Columns are listed in
// index order.
type SourceIndex struct {
	Name      string
	Columns   []string
	Unique    bool
	IsPrimary bool
}

// SourceTable holds the introspected definition of one source table.
type SourceTable struct {
	Name    string
	Columns []SourceColumn
	Indexes []SourceIndex
}

// SourceRelationship is one declared relationship between two tables.
// Only the leading column pair is kept even when the declared
// relationship spans multiple columns.
type SourceRelationship struct {
	ToTable    string // child table (owns the foreign key column)
	ToColumn   string
	FromTable  string // parent table (owns the referenced column)
	FromColumn string
}

// RowCursor iterates a table's rows. A cursor is sequential and not
// re-entrant; obtaining a fresh cursor restarts iteration from the
// first row.
type RowCursor interface {
	Next() bool
	// Values returns the current row's column values in table column order.
	Values() ([]any, error)
	Err() error
	Close() error
}

// Source abstracts the legacy database snapshot reader so mdb2django can
// support multiple snapshot formats (SQLite, MySQL).
type Source interface {
	// Name returns a human-readable name for the source ("SQLite", "MySQL").
	Name() string

	// TableNames lists all user table names.
	TableNames() ([]string, error)

	// Table introspects one table's columns and indexes.
	Table(name string) (*SourceTable, error)

	// Relationships returns the declared relationships between two named
	// tables, in either direction.
	Relationships(a, b string) ([]SourceRelationship, error)

	// RowCount returns the number of rows in a table.
	RowCount(table string) (int, error)

	// Rows opens a fresh cursor over a table's rows.
	Rows(table string) (RowCursor, error)

	Close() error
}

// sqlRowCursor adapts *sql.Rows to RowCursor for both snapshot readers.
type sqlRowCursor struct {
	rows *sql.Rows
	vals []any
	ptrs []any
}

func newSQLRowCursor(rows *sql.Rows) (*sqlRowCursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	c := &sqlRowCursor{
		rows: rows,
		vals: make([]any, len(cols)),
		ptrs: make([]any, len(cols)),
	}
	for i := range c.vals {
		c.ptrs[i] = &c.vals[i]
	}
	return c, nil
}

func (c *sqlRowCursor) Next() bool { return c.rows.Next() }

func (c *sqlRowCursor) Values() ([]any, error) {
	if err := c.rows.Scan(c.ptrs...); err != nil {
		return nil, err
	}
	out := make([]any, len(c.vals))
	copy(out, c.vals)
	return out, nil
}

func (c *sqlRowCursor) Err() error { return c.rows.Err() }

func (c *sqlRowCursor) Close() error { return c.rows.Close() }

// openSource opens a Source implementation for the given snapshot type.
func openSource(sourceType, dsn string) (Source, error) {
	switch sourceType {
	case "sqlite":
		return openSQLiteSource(dsn)
	case "mysql":
		return openMySQLSource(dsn)
	default:
		return nil, fmt.Errorf("unsupported source type %q (must be sqlite or mysql)", sourceType)
	}
}
