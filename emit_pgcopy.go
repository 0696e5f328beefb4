package main

import (
	"fmt"
	"strings"
)

// outputPostgres emits bulk-load text: DELETE statements for all models
// in reverse dependency order, then one COPY ... FROM stdin block per
// model in forward order with tab-delimited rows and a \. terminator.
func (d *Database) outputPostgres(s *sink) error {
	ordered, err := d.OrderedModels()
	if err != nil {
		return err
	}
	dataLines, err := d.totalDataLines()
	if err != nil {
		return err
	}
	counter := len(ordered) + dataLines

	for i := len(ordered) - 1; i >= 0; i-- {
		m := ordered[i]
		s.note(counter, "generating SQL DELETE clauses: "+m.name)
		counter--
		s.line("DELETE FROM %s;", m.pgTable())
	}

	for _, m := range ordered {
		if err := m.writeCopyBlock(s, &counter); err != nil {
			return err
		}
	}
	return s.err
}

// writeCopyBlock emits one COPY block for this model's table. Columns
// are the source columns in stored order; the synthesized surrogate key
// has no backing column and is not part of the data.
func (m *Model) writeCopyBlock(s *sink, counter *int) error {
	table := m.table

	quoted := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		quoted[i] = fmt.Sprintf("%q", col.Name)
	}
	s.line("COPY %s (%s) FROM stdin;", m.pgTable(), strings.Join(quoted, ", "))

	cursor, err := m.db.src.Rows(table.Name)
	if err != nil {
		return fmt.Errorf("read rows from %s: %w", table.Name, err)
	}
	defer cursor.Close()

	tokens := make([]string, len(table.Columns))
	for cursor.Next() {
		s.note(*counter, "generating SQL COPY lines: "+m.name)
		*counter = *counter - 1

		values, err := cursor.Values()
		if err != nil {
			return fmt.Errorf("read row from %s: %w", table.Name, err)
		}
		if len(values) != len(table.Columns) {
			return fmt.Errorf("row in %s has %d values, want %d", table.Name, len(values), len(table.Columns))
		}
		for i := range table.Columns {
			col := &table.Columns[i]
			tokens[i] = m.db.convert.ToCopyToken(table.Name, col.Name, col.Type, values[i])
		}
		s.line("%s", strings.Join(tokens, "\t"))
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	s.line(`\.`)
	s.line("")
	return s.err
}
