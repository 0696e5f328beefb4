package main

import (
	"encoding/json"
	"fmt"
)

// fixtureRecord is one Django fixture entry.
type fixtureRecord struct {
	Pk     any            `json:"pk"`
	Model  string         `json:"model"`
	Fields map[string]any `json:"fields"`
}

// fixtureWriter streams fixture records as one JSON array, buffering a
// single record so the closing bracket can land on the last line.
type fixtureWriter struct {
	s       *sink
	pending string
	first   bool
	started bool
}

func (fw *fixtureWriter) add(record string) {
	fw.flush(",")
	fw.pending = record
	fw.started = true
}

func (fw *fixtureWriter) flush(suffix string) {
	if !fw.started {
		return
	}
	prefix := " "
	if !fw.first {
		prefix = "["
		fw.first = true
	}
	fw.s.line("%s%s%s", prefix, fw.pending, suffix)
	fw.started = false
}

func (fw *fixtureWriter) close() {
	if fw.started {
		fw.flush("]")
		return
	}
	if !fw.first {
		fw.s.line("[]")
	}
}

// outputFixture emits all rows of all models as a single JSON array of
// fixture records, streaming rows straight off each table's cursor.
func (d *Database) outputFixture(s *sink) error {
	ordered, err := d.OrderedModels()
	if err != nil {
		return err
	}
	remaining, err := d.totalDataLines()
	if err != nil {
		return err
	}

	fw := &fixtureWriter{s: s}
	for _, m := range ordered {
		if err := m.writeFixtureRows(fw, &remaining); err != nil {
			return err
		}
	}
	fw.close()
	return s.err
}

func (m *Model) writeFixtureRows(fw *fixtureWriter, remaining *int) error {
	table := m.table
	pk := m.PrimaryKey()

	// The primary key's backing column is carried in "pk", not in the
	// fields map. Tables without one get a zero-based synthetic counter.
	pkColumn := ""
	if pk.column != nil {
		pkColumn = pk.column.Name
	}
	counter := 0

	cursor, err := m.db.src.Rows(table.Name)
	if err != nil {
		return fmt.Errorf("read rows from %s: %w", table.Name, err)
	}
	defer cursor.Close()

	for cursor.Next() {
		fw.s.note(*remaining, "generating JSON fixture: "+m.name)
		*remaining = *remaining - 1

		values, err := cursor.Values()
		if err != nil {
			return fmt.Errorf("read row from %s: %w", table.Name, err)
		}
		if len(values) != len(table.Columns) {
			return fmt.Errorf("row in %s has %d values, want %d", table.Name, len(values), len(table.Columns))
		}

		record := fixtureRecord{Model: m.modelID(), Fields: make(map[string]any)}
		for i := range table.Columns {
			col := &table.Columns[i]
			converted := m.db.convert.ToFixture(table.Name, col.Name, col.Type, values[i])
			if col.Name == pkColumn {
				record.Pk = converted
				continue
			}
			field, err := m.fieldByColumn(col.Name)
			if err != nil {
				return err
			}
			record.Fields[field.name] = converted
		}
		if pkColumn == "" {
			record.Pk = counter
			counter++
		}

		encoded, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode fixture record for %s: %w", table.Name, err)
		}
		fw.add(string(encoded))
	}
	return cursor.Err()
}
