package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// sqliteSource reads an SQLite snapshot of the legacy database (the
// usual mdb-export conversion target).
type sqliteSource struct {
	db *sql.DB
}

func openSQLiteSource(dsn string) (Source, error) {
	uri, err := sqliteReadOnlyURI(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	return &sqliteSource{db: db}, nil
}

func (s *sqliteSource) Name() string { return "SQLite" }

func (s *sqliteSource) Close() error { return s.db.Close() }

func (s *sqliteSource) TableNames() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *sqliteSource) Table(name string) (*SourceTable, error) {
	cols, pkCols, err := s.columns(name)
	if err != nil {
		return nil, fmt.Errorf("introspect columns for %s: %w", name, err)
	}
	indexes, err := s.indexes(name, pkCols)
	if err != nil {
		return nil, fmt.Errorf("introspect indexes for %s: %w", name, err)
	}
	return &SourceTable{Name: name, Columns: cols, Indexes: indexes}, nil
}

func (s *sqliteSource) columns(tableName string) ([]SourceColumn, []pkColumn, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var cols []SourceColumn
	var pkCols []pkColumn
	for rows.Next() {
		var cid, notnull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk); err != nil {
			return nil, nil, err
		}
		tag, length := sqliteTypeTag(colType)
		cols = append(cols, SourceColumn{Name: name, Type: tag, Length: length})
		if pk > 0 {
			pkCols = append(pkCols, pkColumn{name: name, pos: pk})
		}
	}
	return cols, pkCols, rows.Err()
}

type pkColumn struct {
	name string
	pos  int
}

func (s *sqliteSource) indexes(tableName string, pkCols []pkColumn) ([]SourceIndex, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA index_list(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []SourceIndex
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		// The implicit PK index is rebuilt from table_info below.
		if origin == "pk" {
			continue
		}
		idx := SourceIndex{Name: name, Unique: unique == 1}

		colRows, err := s.db.Query(fmt.Sprintf("PRAGMA index_info(%s)", sqliteIdent(name)))
		if err != nil {
			return nil, err
		}
		for colRows.Next() {
			var seqno, cid int
			var colName sql.NullString
			if err := colRows.Scan(&seqno, &cid, &colName); err != nil {
				colRows.Close()
				return nil, err
			}
			if colName.Valid {
				idx.Columns = append(idx.Columns, colName.String)
			}
		}
		colRows.Close()

		if len(idx.Columns) > 0 {
			indexes = append(indexes, idx)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pkCols) > 0 {
		slices.SortFunc(pkCols, func(a, b pkColumn) int { return a.pos - b.pos })
		pk := SourceIndex{Name: "PRIMARY", Unique: true, IsPrimary: true}
		for _, pc := range pkCols {
			pk.Columns = append(pk.Columns, pc.name)
		}
		indexes = append(indexes, pk)
	}
	return indexes, nil
}

func (s *sqliteSource) Relationships(a, b string) ([]SourceRelationship, error) {
	toB, err := s.foreignKeys(a, b)
	if err != nil {
		return nil, err
	}
	toA, err := s.foreignKeys(b, a)
	if err != nil {
		return nil, err
	}
	return append(toB, toA...), nil
}

// foreignKeys returns child's declared foreign keys that reference
// parent, leading column pair only.
func (s *sqliteSource) foreignKeys(child, parent string) ([]SourceRelationship, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%s)", sqliteIdent(child)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []SourceRelationship
	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		if seq != 0 || refTable != parent {
			continue
		}
		refColumn := to.String
		if !to.Valid {
			// Reference to the parent's implicit primary key.
			refColumn, err = s.primaryKeyColumn(parent)
			if err != nil {
				return nil, err
			}
			if refColumn == "" {
				continue
			}
		}
		rels = append(rels, SourceRelationship{
			ToTable:    child,
			ToColumn:   from,
			FromTable:  parent,
			FromColumn: refColumn,
		})
	}
	return rels, rows.Err()
}

func (s *sqliteSource) primaryKeyColumn(tableName string) (string, error) {
	_, pkCols, err := s.columns(tableName)
	if err != nil {
		return "", err
	}
	if len(pkCols) != 1 {
		return "", nil
	}
	return pkCols[0].name, nil
}

func (s *sqliteSource) RowCount(table string) (int, error) {
	var n int
	err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", sqliteIdent(table))).Scan(&n)
	return n, err
}

func (s *sqliteSource) Rows(table string) (RowCursor, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %s", sqliteIdent(table)))
	if err != nil {
		return nil, err
	}
	return newSQLRowCursor(rows)
}

func sqliteIdent(name string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(name, "\"", "\"\""))
}

// sqliteReadOnlyURI normalizes a path or file: URI into a read-only
// SQLite connection URI.
func sqliteReadOnlyURI(dsn string) (string, error) {
	if dsn == ":memory:" || dsn == "file::memory:" || strings.Contains(dsn, "mode=memory") {
		return "", fmt.Errorf("in-memory SQLite databases are not supported")
	}
	if !strings.HasPrefix(dsn, "file:") {
		return "file:" + dsn + "?mode=ro", nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse sqlite URI: %w", err)
	}
	q := u.Query()
	q.Set("mode", "ro")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sqliteTypeTag collapses a declared SQLite column type to the legacy
// tag set. Bounded character types map to short text with their declared
// length; unbounded text maps to memo at the sentinel length.
func sqliteTypeTag(declaredType string) (TypeTag, int64) {
	dt := strings.ToUpper(strings.TrimSpace(declaredType))
	base := dt
	var length int64
	if open := strings.IndexByte(dt, '('); open >= 0 {
		base = strings.TrimSpace(dt[:open])
		if close := strings.LastIndexByte(dt, ')'); close > open {
			fmt.Sscanf(dt[open+1:close], "%d", &length)
		}
	}

	switch base {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "CHARACTER":
		if length == 0 {
			length = 255
		}
		if length == memoLength {
			return TypeMemo, memoLength
		}
		return TypeText, length
	case "TEXT", "CLOB", "MEMO", "LONGTEXT":
		return TypeMemo, memoLength
	case "TINYINT":
		if length == 1 {
			return TypeBoolean, 1
		}
		return TypeInteger, 2
	case "SMALLINT":
		return TypeInteger, 2
	case "INT", "INTEGER", "MEDIUMINT", "BIGINT":
		return TypeLong, 4
	case "BOOLEAN", "BOOL", "BIT":
		return TypeBoolean, 1
	case "DATETIME", "TIMESTAMP", "DATE":
		return TypeDateTime, 8
	default:
		return TypeUnknown, length
	}
}
