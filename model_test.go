package main

import (
	"strings"
	"testing"
)

func TestFieldsPrimaryKeyFirst(t *testing.T) {
	d := newsDatabase()
	m, err := d.modelByTable("Reporter")
	if err != nil {
		t.Fatal(err)
	}
	fields := m.Fields()
	if len(fields) != 2 {
		t.Fatalf("Reporter has %d fields, want 2", len(fields))
	}
	if fields[0].name != "id" || !fields[0].primaryKey {
		t.Errorf("first field = %v, want primary key id", fields[0])
	}
	if fields[1].name != "name" {
		t.Errorf("second field = %v, want name", fields[1])
	}
	if m.PrimaryKey() != fields[0] {
		t.Errorf("PrimaryKey() = %v, want %v", m.PrimaryKey(), fields[0])
	}
}

func TestSurrogatePrimaryKey(t *testing.T) {
	src := &fakeSource{tables: []fakeTable{{
		def: SourceTable{
			Name: "Note",
			Columns: []SourceColumn{
				{Name: "title", Type: TypeText, Length: 80},
				{Name: "body", Type: TypeMemo, Length: memoLength},
			},
		},
	}}}
	d := newDatabase(src, DatabaseOptions{})
	m, err := d.modelByTable("Note")
	if err != nil {
		t.Fatal(err)
	}
	fields := m.Fields()
	if len(fields) != 3 {
		t.Fatalf("Note has %d fields, want 3", len(fields))
	}
	pk := fields[0]
	if pk.name != "id" || !pk.primaryKey || !pk.surrogate || pk.column != nil {
		t.Errorf("synthesized key = %v, want surrogate id with no backing column", pk)
	}
	if fields[1].name != "title" || fields[2].name != "body" {
		t.Errorf("field order = %v, %v, want title, body", fields[1], fields[2])
	}
}

func TestFieldByColumnUnknown(t *testing.T) {
	d := newsDatabase()
	m, err := d.modelByTable("Reporter")
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.fieldByColumn("missing")
	if err == nil {
		t.Fatal("expected error for unknown column")
	}
	if !strings.Contains(err.Error(), `no column "missing"`) {
		t.Errorf("error = %q, want mention of the missing column", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error = %q, want the known field mapping included", err)
	}
}

func TestDbTable(t *testing.T) {
	d := newsDatabase()
	m, err := d.modelByTable("Reporter")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.dbTable(); got != "myapp_reporter" {
		t.Errorf("dbTable() = %q, want myapp_reporter", got)
	}
	if got := m.pgTable(); got != `"myapp_reporter"` {
		t.Errorf("pgTable() = %q, want quoted myapp_reporter", got)
	}
	if got := m.modelID(); got != "myapp.reporter" {
		t.Errorf("modelID() = %q, want myapp.reporter", got)
	}
}

func TestDbTableKeepNamesAndSchema(t *testing.T) {
	d := newDatabase(newsSource(), DatabaseOptions{
		AppName:        "news",
		Schema:         "legacy",
		KeepTableNames: true,
	})
	m, err := d.modelByTable("Reporter")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.dbTable(); got != "Reporter" {
		t.Errorf("dbTable() = %q, want Reporter", got)
	}
	if got := m.pgTable(); got != `"legacy"."Reporter"` {
		t.Errorf("pgTable() = %q, want schema-qualified Reporter", got)
	}
	if got := m.modelID(); got != "news.reporter" {
		t.Errorf("modelID() = %q, want news.reporter", got)
	}
}

func TestVerboseNames(t *testing.T) {
	d := newsDatabase()
	m, err := d.modelByTable("Article")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.verboseName(); got != "Article" {
		t.Errorf("verboseName() = %q, want Article", got)
	}
	if got := m.verboseNamePlural(); got != "Articles" {
		t.Errorf("verboseNamePlural() = %q, want Articles", got)
	}
}

func TestTableExclusion(t *testing.T) {
	d := newDatabase(newsSource(), DatabaseOptions{
		TableName: func(table string) (string, bool) {
			if table == "Article" {
				return "", false
			}
			return table, true
		},
	})
	models, err := d.Models()
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 || models[0].name != "Reporter" {
		t.Fatalf("models = %v, want just Reporter", models)
	}
	// The excluded table must not leak into the relationship index.
	rels, err := d.relationships()
	if err != nil {
		t.Fatal(err)
	}
	if len(rels.forward) != 0 || len(rels.reverse) != 0 {
		t.Errorf("relationship index not empty: forward=%d reverse=%d",
			len(rels.forward), len(rels.reverse))
	}
}

func TestColumnRename(t *testing.T) {
	d := newDatabase(newsSource(), DatabaseOptions{
		ColumnName: func(table, column string, primaryKey bool) string {
			if table == "Reporter" && column == "name" {
				return "full_name"
			}
			return column
		},
	})
	m, err := d.modelByTable("Reporter")
	if err != nil {
		t.Fatal(err)
	}
	f, err := m.fieldByColumn("name")
	if err != nil {
		t.Fatal(err)
	}
	if f.name != "full_name" {
		t.Errorf("renamed field = %q, want full_name", f.name)
	}
	attrs, err := f.Attrs()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, a := range attrs {
		if a == "db_column='name'" {
			found = true
		}
	}
	if !found {
		t.Errorf("attrs = %v, want db_column='name'", attrs)
	}
}

func TestInlineClassName(t *testing.T) {
	d := newsDatabase()
	m, err := d.modelByTable("Article")
	if err != nil {
		t.Fatal(err)
	}
	f, err := m.fieldByColumn("reporter_id")
	if err != nil {
		t.Fatal(err)
	}
	name, err := f.inlineClassName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "ArticleInline" {
		t.Errorf("inlineClassName() = %q, want ArticleInline", name)
	}
}

func TestInlineClassNameMultipleForeignKeys(t *testing.T) {
	src := newsSource()
	src.tables = append(src.tables, fakeTable{
		def: SourceTable{
			Name: "Message",
			Columns: []SourceColumn{
				{Name: "id", Type: TypeLong, Length: 4},
				{Name: "from_id", Type: TypeLong, Length: 4},
				{Name: "to_id", Type: TypeLong, Length: 4},
			},
			Indexes: []SourceIndex{
				{Name: "PrimaryKey", Columns: []string{"id"}, Unique: true, IsPrimary: true},
			},
		},
	})
	src.rels = append(src.rels,
		SourceRelationship{ToTable: "Message", ToColumn: "from_id", FromTable: "Reporter", FromColumn: "id"},
		SourceRelationship{ToTable: "Message", ToColumn: "to_id", FromTable: "Reporter", FromColumn: "id"},
	)
	d := newDatabase(src, DatabaseOptions{})
	m, err := d.modelByTable("Message")
	if err != nil {
		t.Fatal(err)
	}
	f, err := m.fieldByColumn("from_id")
	if err != nil {
		t.Fatal(err)
	}
	name, err := f.inlineClassName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "MessageFromIdInline" {
		t.Errorf("inlineClassName() = %q, want MessageFromIdInline", name)
	}
}
