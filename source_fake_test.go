package main

import "fmt"

// fakeSource is an in-memory Source for tests: a fixed table list with
// canned rows and declared relationships.
type fakeSource struct {
	tables []fakeTable
	rels   []SourceRelationship
}

type fakeTable struct {
	def  SourceTable
	rows [][]any
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) TableNames() ([]string, error) {
	names := make([]string, len(f.tables))
	for i := range f.tables {
		names[i] = f.tables[i].def.Name
	}
	return names, nil
}

func (f *fakeSource) Table(name string) (*SourceTable, error) {
	for i := range f.tables {
		if f.tables[i].def.Name == name {
			return &f.tables[i].def, nil
		}
	}
	return nil, fmt.Errorf("no table %q", name)
}

func (f *fakeSource) Relationships(a, b string) ([]SourceRelationship, error) {
	var out []SourceRelationship
	for _, r := range f.rels {
		if (r.ToTable == a && r.FromTable == b) || (r.ToTable == b && r.FromTable == a) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) RowCount(table string) (int, error) {
	for i := range f.tables {
		if f.tables[i].def.Name == table {
			return len(f.tables[i].rows), nil
		}
	}
	return 0, fmt.Errorf("no table %q", table)
}

func (f *fakeSource) Rows(table string) (RowCursor, error) {
	for i := range f.tables {
		if f.tables[i].def.Name == table {
			return &fakeCursor{rows: f.tables[i].rows}, nil
		}
	}
	return nil, fmt.Errorf("no table %q", table)
}

func (f *fakeSource) Close() error { return nil }

type fakeCursor struct {
	rows [][]any
	pos  int
}

func (c *fakeCursor) Next() bool {
	c.pos++
	return c.pos <= len(c.rows)
}

func (c *fakeCursor) Values() ([]any, error) { return c.rows[c.pos-1], nil }

func (c *fakeCursor) Err() error { return nil }

func (c *fakeCursor) Close() error { return nil }

// newsSource builds the canonical two-table fixture: Article references
// Reporter, and Article is listed first so dependency ordering has to
// reorder the pair.
func newsSource() *fakeSource {
	return &fakeSource{
		tables: []fakeTable{
			{
				def: SourceTable{
					Name: "Article",
					Columns: []SourceColumn{
						{Name: "id", Type: TypeLong, Length: 4},
						{Name: "title", Type: TypeText, Length: 80},
						{Name: "reporter_id", Type: TypeLong, Length: 4},
					},
					Indexes: []SourceIndex{
						{Name: "PrimaryKey", Columns: []string{"id"}, Unique: true, IsPrimary: true},
						{Name: "reporter_id", Columns: []string{"reporter_id"}},
					},
				},
				rows: [][]any{{1, "Hello", 1}},
			},
			{
				def: SourceTable{
					Name: "Reporter",
					Columns: []SourceColumn{
						{Name: "id", Type: TypeLong, Length: 4},
						{Name: "name", Type: TypeText, Length: 50},
					},
					Indexes: []SourceIndex{
						{Name: "PrimaryKey", Columns: []string{"id"}, Unique: true, IsPrimary: true},
					},
				},
				rows: [][]any{{1, "John"}},
			},
		},
		rels: []SourceRelationship{
			{ToTable: "Article", ToColumn: "reporter_id", FromTable: "Reporter", FromColumn: "id"},
		},
	}
}

func newsDatabase() *Database {
	return newDatabase(newsSource(), DatabaseOptions{})
}
