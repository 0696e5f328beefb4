package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputAdmin(t *testing.T) {
	d := newsDatabase()
	var buf bytes.Buffer
	if err := d.outputAdmin(newSink(&buf, nil)); err != nil {
		t.Fatal(err)
	}

	want := `from django.contrib import admin
from myapp.models import (
    Reporter,
    Article,
)

class ArticleInline(admin.TabularInline):
    model = Article

admin.site.register(
    Reporter,
    list_display=('id', 'name'),
    inlines=[ArticleInline])

admin.site.register(
    Article,
    list_display=('id', 'title', 'reporter_id'))
`
	if got := buf.String(); got != want {
		t.Errorf("outputAdmin mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestOutputAdminMultipleInlines(t *testing.T) {
	// Two foreign keys from Message to Reporter force fk_name lines on
	// the inlines and a multi-line inlines list on the registration.
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
	var buf bytes.Buffer
	if err := d.outputAdmin(newSink(&buf, nil)); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	wantInlines := `
class MessageFromIdInline(admin.TabularInline):
    model = Message
    fk_name = 'from_id'

class MessageToIdInline(admin.TabularInline):
    model = Message
    fk_name = 'to_id'
`
	if !strings.Contains(got, wantInlines) {
		t.Errorf("outputAdmin missing disambiguated inlines:\n%s", got)
	}

	wantRegistration := `admin.site.register(
    Reporter,
    list_display=('id', 'name'),
    inlines=[
        ArticleInline,
        MessageFromIdInline,
        MessageToIdInline])
`
	if !strings.Contains(got, wantRegistration) {
		t.Errorf("outputAdmin missing multi-line inlines list:\n%s", got)
	}
}
