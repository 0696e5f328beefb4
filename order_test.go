package main

import "testing"

func TestOrderedModelsParentFirst(t *testing.T) {
	d := newsDatabase()
	// Article is listed before Reporter in the source; dependency
	// ordering must put the referenced Reporter first.
	ordered, err := d.OrderedModels()
	if err != nil {
		t.Fatal(err)
	}
	if len(ordered) != 2 {
		t.Fatalf("ordered %d models, want 2", len(ordered))
	}
	if ordered[0].name != "Reporter" || ordered[1].name != "Article" {
		t.Errorf("order = %s, %s, want Reporter, Article", ordered[0].name, ordered[1].name)
	}
}

func TestOrderedModelsChain(t *testing.T) {
	src := &fakeSource{
		tables: []fakeTable{
			{def: chainTable("Comment", "article_id")},
			{def: chainTable("Article", "reporter_id")},
			{def: chainTable("Reporter", "")},
			{def: chainTable("Standalone", "")},
		},
		rels: []SourceRelationship{
			{ToTable: "Comment", ToColumn: "article_id", FromTable: "Article", FromColumn: "id"},
			{ToTable: "Article", ToColumn: "reporter_id", FromTable: "Reporter", FromColumn: "id"},
		},
	}
	d := newDatabase(src, DatabaseOptions{})
	ordered, err := d.OrderedModels()
	if err != nil {
		t.Fatal(err)
	}

	pos := make(map[string]int)
	for i, m := range ordered {
		pos[m.name] = i
	}
	if len(pos) != 4 {
		t.Fatalf("ordered %d models, want 4", len(ordered))
	}
	if pos["Reporter"] > pos["Article"] {
		t.Errorf("Reporter at %d after Article at %d", pos["Reporter"], pos["Article"])
	}
	if pos["Article"] > pos["Comment"] {
		t.Errorf("Article at %d after Comment at %d", pos["Article"], pos["Comment"])
	}
}

// chainTable builds a table with a primary key and, optionally, one
// foreign-key column.
func chainTable(name, fkColumn string) SourceTable {
	tbl := SourceTable{
		Name:    name,
		Columns: []SourceColumn{{Name: "id", Type: TypeLong, Length: 4}},
		Indexes: []SourceIndex{
			{Name: "PrimaryKey", Columns: []string{"id"}, Unique: true, IsPrimary: true},
		},
	}
	if fkColumn != "" {
		tbl.Columns = append(tbl.Columns, SourceColumn{Name: fkColumn, Type: TypeLong, Length: 4})
	}
	return tbl
}
