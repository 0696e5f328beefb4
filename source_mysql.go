package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlSource reads a legacy database snapshot hosted in MySQL.
type mysqlSource struct {
	db     *sql.DB
	dbName string
}

func openMySQLSource(dsn string) (Source, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("mysql dsn has no database name")
	}
	cfg.ParseTime = true
	cfg.InterpolateParams = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &mysqlSource{db: db, dbName: cfg.DBName}, nil
}

func (m *mysqlSource) Name() string { return "MySQL" }

func (m *mysqlSource) Close() error { return m.db.Close() }

func (m *mysqlSource) TableNames() ([]string, error) {
	rows, err := m.db.Query(
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		 ORDER BY TABLE_NAME`,
		m.dbName,
	)
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

func (m *mysqlSource) Table(name string) (*SourceTable, error) {
	cols, err := m.columns(name)
	if err != nil {
		return nil, fmt.Errorf("introspect columns for %s: %w", name, err)
	}
	indexes, err := m.indexes(name)
	if err != nil {
		return nil, fmt.Errorf("introspect indexes for %s: %w", name, err)
	}
	return &SourceTable{Name: name, Columns: cols, Indexes: indexes}, nil
}

func (m *mysqlSource) columns(tableName string) ([]SourceColumn, error) {
	rows, err := m.db.Query(
		`SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE,
		        COALESCE(CHARACTER_MAXIMUM_LENGTH, 0)
		 FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		m.dbName, tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []SourceColumn
	for rows.Next() {
		var name, dataType, columnType string
		var maxLen int64
		if err := rows.Scan(&name, &dataType, &columnType, &maxLen); err != nil {
			return nil, err
		}
		tag, length := mysqlTypeTag(strings.ToLower(dataType), strings.ToLower(columnType), maxLen)
		cols = append(cols, SourceColumn{Name: name, Type: tag, Length: length})
	}
	return cols, rows.Err()
}

func (m *mysqlSource) indexes(tableName string) ([]SourceIndex, error) {
	rows, err := m.db.Query(
		`SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
		 FROM INFORMATION_SCHEMA.STATISTICS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
		m.dbName, tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*SourceIndex)
	var order []string

	for rows.Next() {
		var idxName string
		var colName sql.NullString
		var nonUnique int
		if err := rows.Scan(&idxName, &colName, &nonUnique); err != nil {
			return nil, err
		}
		idx, ok := indexMap[idxName]
		if !ok {
			idx = &SourceIndex{
				Name:      idxName,
				Unique:    nonUnique == 0,
				IsPrimary: idxName == "PRIMARY",
			}
			indexMap[idxName] = idx
			order = append(order, idxName)
		}
		if colName.Valid {
			idx.Columns = append(idx.Columns, colName.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []SourceIndex
	for _, name := range order {
		if len(indexMap[name].Columns) > 0 {
			indexes = append(indexes, *indexMap[name])
		}
	}
	return indexes, nil
}

func (m *mysqlSource) Relationships(a, b string) ([]SourceRelationship, error) {
	rows, err := m.db.Query(
		`SELECT TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		 WHERE TABLE_SCHEMA = ? AND ORDINAL_POSITION = 1
		   AND ((TABLE_NAME = ? AND REFERENCED_TABLE_NAME = ?)
		     OR (TABLE_NAME = ? AND REFERENCED_TABLE_NAME = ?))
		 ORDER BY CONSTRAINT_NAME`,
		m.dbName, a, b, b, a,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []SourceRelationship
	for rows.Next() {
		var child, childCol, parent, parentCol string
		if err := rows.Scan(&child, &childCol, &parent, &parentCol); err != nil {
			return nil, err
		}
		rels = append(rels, SourceRelationship{
			ToTable:    child,
			ToColumn:   childCol,
			FromTable:  parent,
			FromColumn: parentCol,
		})
	}
	return rels, rows.Err()
}

func (m *mysqlSource) RowCount(table string) (int, error) {
	var n int
	err := m.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", mysqlIdent(table))).Scan(&n)
	return n, err
}

func (m *mysqlSource) Rows(table string) (RowCursor, error) {
	rows, err := m.db.Query(fmt.Sprintf("SELECT * FROM %s", mysqlIdent(table)))
	if err != nil {
		return nil, err
	}
	return newSQLRowCursor(rows)
}

func mysqlIdent(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

// mysqlTypeTag collapses a MySQL column type to the legacy tag set.
func mysqlTypeTag(dataType, columnType string, charMaxLen int64) (TypeTag, int64) {
	switch dataType {
	case "varchar", "char":
		if charMaxLen == 0 {
			charMaxLen = 255
		}
		if charMaxLen == memoLength {
			return TypeMemo, memoLength
		}
		return TypeText, charMaxLen
	case "text", "tinytext", "mediumtext", "longtext":
		return TypeMemo, memoLength
	case "tinyint":
		if strings.HasPrefix(columnType, "tinyint(1)") {
			return TypeBoolean, 1
		}
		return TypeInteger, 2
	case "smallint":
		return TypeInteger, 2
	case "int", "mediumint", "bigint":
		return TypeLong, 4
	case "bit":
		return TypeBoolean, 1
	case "datetime", "timestamp", "date":
		return TypeDateTime, 8
	default:
		return TypeUnknown, charMaxLen
	}
}
