package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// loadPostgres pushes the bulk-load output straight into a live
// PostgreSQL database: per-table DELETEs in reverse dependency order,
// then per-table COPY streams in forward order. One shot, no retries;
// the first error aborts the run.
func loadPostgres(ctx context.Context, d *Database, dsn string) error {
	ordered, err := d.OrderedModels()
	if err != nil {
		return err
	}

	log.Printf("connecting to PostgreSQL...")
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	log.Printf("deleting existing rows from %d tables...", len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		m := ordered[i]
		query := fmt.Sprintf("DELETE FROM %s", loadTableIdent(m))
		if _, err := pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("delete from %s: %w\nSQL: %s", m.dbTable(), err, query)
		}
	}

	for _, m := range ordered {
		n, err := copyModelRows(ctx, pool, m)
		if err != nil {
			return fmt.Errorf("copy into %s: %w", m.dbTable(), err)
		}
		log.Printf("  %s: %d rows", m.dbTable(), n)
	}
	return nil
}

// loadTableIdent builds the table identifier for live SQL statements,
// quoting only the parts that are reserved words or need quoting.
func loadTableIdent(m *Model) string {
	ident := pgIdent(m.dbTable())
	if m.db.schema != "" {
		ident = pgIdent(m.db.schema) + "." + ident
	}
	return ident
}

func copyModelRows(ctx context.Context, pool *pgxpool.Pool, m *Model) (int64, error) {
	ident := pgx.Identifier{m.dbTable()}
	if m.db.schema != "" {
		ident = pgx.Identifier{m.db.schema, m.dbTable()}
	}
	columns := make([]string, len(m.table.Columns))
	for i, col := range m.table.Columns {
		columns[i] = col.Name
	}

	cursor, err := m.db.src.Rows(m.table.Name)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	src := &copyRowSource{model: m, cursor: cursor}
	n, err := pool.CopyFrom(ctx, ident, columns, src)
	if err != nil {
		return n, err
	}
	return n, cursor.Err()
}

// copyRowSource adapts a table cursor to pgx.CopyFromSource, converting
// each value on the way through.
type copyRowSource struct {
	model  *Model
	cursor RowCursor
	err    error
}

func (c *copyRowSource) Next() bool {
	if c.err != nil {
		return false
	}
	return c.cursor.Next()
}

func (c *copyRowSource) Values() ([]any, error) {
	values, err := c.cursor.Values()
	if err != nil {
		c.err = err
		return nil, err
	}
	table := c.model.table
	if len(values) != len(table.Columns) {
		c.err = fmt.Errorf("row in %s has %d values, want %d", table.Name, len(values), len(table.Columns))
		return nil, c.err
	}
	out := make([]any, len(values))
	for i := range table.Columns {
		col := &table.Columns[i]
		out[i] = c.model.db.convert.ToDisplay(table.Name, col.Name, col.Type, values[i])
	}
	return out, nil
}

func (c *copyRowSource) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cursor.Err()
}
