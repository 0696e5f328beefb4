package main

import (
	"fmt"
	"strings"
)

// TableNameFunc maps a source table name to a model name. Returning
// ok=false excludes the table from all output, including the dependency
// graph and the relationship index.
type TableNameFunc func(table string) (name string, ok bool)

// ColumnNameFunc maps a source column name to a field name. The primary
// key flag lets a mapper rename key columns to Django's default "id".
type ColumnNameFunc func(table, column string, primaryKey bool) string

// DatabaseOptions configure a Database wrapper.
type DatabaseOptions struct {
	AppName        string
	Schema         string
	KeepTableNames bool
	TableName      TableNameFunc
	ColumnName     ColumnNameFunc
	Convert        ConversionFunc
}

// Database wraps one opened source snapshot for the lifetime of a run.
// Derived entities (models, fields, the relationship index, the
// dependency order) are constructed lazily on first access and cached;
// nothing is mutated after construction.
type Database struct {
	src            Source
	appName        string
	schema         string
	keepTableNames bool
	tableName      TableNameFunc
	columnName     ColumnNameFunc
	convert        *ValueConverter

	models        []*Model
	modelsByTable map[string]*Model
	rels          *relationshipIndex
	ordered       []*Model
}

func newDatabase(src Source, opts DatabaseOptions) *Database {
	if opts.AppName == "" {
		opts.AppName = "myapp"
	}
	if opts.TableName == nil {
		opts.TableName = func(table string) (string, bool) { return table, true }
	}
	if opts.ColumnName == nil {
		opts.ColumnName = func(_, column string, _ bool) string { return column }
	}
	return &Database{
		src:            src,
		appName:        opts.AppName,
		schema:         opts.Schema,
		keepTableNames: opts.KeepTableNames,
		tableName:      opts.TableName,
		columnName:     opts.ColumnName,
		convert:        newValueConverter(opts.Convert),
	}
}

// Models returns the wrapped models in source table-name order. Tables
// the name mapper excludes are dropped here, in one place, so the
// exclusion cannot leak inconsistently into relationship resolution or
// ordering.
func (d *Database) Models() ([]*Model, error) {
	if d.modelsByTable != nil {
		return d.models, nil
	}
	names, err := d.src.TableNames()
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	byTable := make(map[string]*Model)
	var models []*Model
	for _, tableName := range names {
		modelName, ok := d.tableName(tableName)
		if !ok {
			continue
		}
		table, err := d.src.Table(tableName)
		if err != nil {
			return nil, fmt.Errorf("introspect table %s: %w", tableName, err)
		}
		m := &Model{db: d, table: table, name: modelName}
		models = append(models, m)
		byTable[tableName] = m
	}
	d.models = models
	d.modelsByTable = byTable
	return d.models, nil
}

// modelByTable looks up the model wrapping a source table. An unknown
// (or excluded) table is a hard error.
func (d *Database) modelByTable(tableName string) (*Model, error) {
	if _, err := d.Models(); err != nil {
		return nil, err
	}
	m, ok := d.modelsByTable[tableName]
	if !ok {
		return nil, fmt.Errorf("no model for table %q", tableName)
	}
	return m, nil
}

// relationships returns the memoized relationship index, building it on
// first access.
func (d *Database) relationships() (*relationshipIndex, error) {
	if d.rels != nil {
		return d.rels, nil
	}
	rels, err := buildRelationshipIndex(d)
	if err != nil {
		return nil, err
	}
	d.rels = rels
	return d.rels, nil
}

// OrderedModels returns all models topologically sorted so that every
// model referenced through a foreign key precedes its referrers.
func (d *Database) OrderedModels() ([]*Model, error) {
	if d.ordered != nil {
		return d.ordered, nil
	}
	models, err := d.Models()
	if err != nil {
		return nil, err
	}
	ordered, err := orderModels(models)
	if err != nil {
		return nil, err
	}
	d.ordered = ordered
	return d.ordered, nil
}

// totalDataLines sums the row counts of all models, used for fixture
// and COPY progress estimates.
func (d *Database) totalDataLines() (int, error) {
	models, err := d.Models()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, m := range models {
		n, err := d.src.RowCount(m.table.Name)
		if err != nil {
			return 0, fmt.Errorf("count rows in %s: %w", m.table.Name, err)
		}
		total += n
	}
	return total, nil
}

// Model wraps one source table and owns its ordered field list.
type Model struct {
	db    *Database
	table *SourceTable
	name  string

	fields         []*Field
	fieldsByColumn map[string]*Field
	singleColIdx   map[string]*SourceIndex
}

func (m *Model) Name() string { return m.name }

func (m *Model) String() string { return fmt.Sprintf("<Model %s>", m.name) }

// singleColumnIndexes maps column name to the single-column index
// covering it, if any.
func (m *Model) singleColumnIndexes() map[string]*SourceIndex {
	if m.singleColIdx != nil {
		return m.singleColIdx
	}
	idx := make(map[string]*SourceIndex)
	for i := range m.table.Indexes {
		ix := &m.table.Indexes[i]
		if len(ix.Columns) == 1 {
			idx[ix.Columns[0]] = ix
		}
	}
	m.singleColIdx = idx
	return m.singleColIdx
}

func (m *Model) multiColumnIndexes() []*SourceIndex {
	var multi []*SourceIndex
	for i := range m.table.Indexes {
		if len(m.table.Indexes[i].Columns) > 1 {
			multi = append(multi, &m.table.Indexes[i])
		}
	}
	return multi
}

// Fields returns the model's fields with the primary key first. When the
// table has no single-column primary key a surrogate auto-increment "id"
// field is synthesized at position 0.
func (m *Model) Fields() []*Field {
	if m.fields != nil {
		return m.fields
	}
	var pk []*Field
	var rest []*Field
	for i := range m.table.Columns {
		col := &m.table.Columns[i]
		f := &Field{model: m, column: col}
		f.primaryKey = m.columnIsPrimaryKey(col.Name)
		f.name = m.db.columnName(m.table.Name, col.Name, f.primaryKey)
		if f.primaryKey {
			pk = append(pk, f)
		} else {
			rest = append(rest, f)
		}
	}
	fields := append(pk, rest...)
	if len(fields) == 0 || !fields[0].primaryKey {
		surrogate := &Field{model: m, name: "id", primaryKey: true, surrogate: true}
		fields = append([]*Field{surrogate}, fields...)
	}
	byColumn := make(map[string]*Field)
	for _, f := range fields {
		if f.column != nil {
			byColumn[f.column.Name] = f
		}
	}
	m.fields = fields
	m.fieldsByColumn = byColumn
	return m.fields
}

func (m *Model) columnIsPrimaryKey(columnName string) bool {
	ix, ok := m.singleColumnIndexes()[columnName]
	return ok && ix.IsPrimary
}

// fieldByColumn resolves a source column name to its field. A miss is a
// hard error carrying the full known mapping to aid diagnosis.
func (m *Model) fieldByColumn(columnName string) (*Field, error) {
	m.Fields()
	f, ok := m.fieldsByColumn[columnName]
	if !ok {
		known := make([]string, 0, len(m.fieldsByColumn))
		for col, field := range m.fieldsByColumn {
			known = append(known, fmt.Sprintf("%s=%s", col, field.name))
		}
		return nil, fmt.Errorf("no column %q in table %q; fields = {%s}",
			columnName, m.table.Name, strings.Join(known, ", "))
	}
	return f, nil
}

// PrimaryKey returns the model's primary key field; there is always
// exactly one and it is first in the field list.
func (m *Model) PrimaryKey() *Field {
	return m.Fields()[0]
}

// foreignKeys returns the relationships owned by this model's fields,
// in field order.
func (m *Model) foreignKeys() ([]*Relationship, error) {
	var fks []*Relationship
	for _, f := range m.Fields() {
		rel, err := f.ForeignKey()
		if err != nil {
			return nil, err
		}
		if rel != nil {
			fks = append(fks, rel)
		}
	}
	return fks, nil
}

// foreignKeyFields returns this model's fields that hold a foreign key,
// in field order.
func (m *Model) foreignKeyFields() ([]*Field, error) {
	fks, err := m.foreignKeys()
	if err != nil {
		return nil, err
	}
	fields := make([]*Field, len(fks))
	for i, rel := range fks {
		fields[i] = rel.ToField
	}
	return fields, nil
}

// relatedModels returns the models referenced by this model's foreign
// keys, deduplicated, in field order.
func (m *Model) relatedModels() ([]*Model, error) {
	fks, err := m.foreignKeys()
	if err != nil {
		return nil, err
	}
	seen := make(map[*Model]bool)
	var related []*Model
	for _, rel := range fks {
		parent := rel.FromField.model
		if !seen[parent] {
			seen[parent] = true
			related = append(related, parent)
		}
	}
	return related, nil
}

// reverseForeignKeys returns all relationships pointing at this model's
// fields, in field order.
func (m *Model) reverseForeignKeys() ([]*Relationship, error) {
	rels, err := m.db.relationships()
	if err != nil {
		return nil, err
	}
	var reverse []*Relationship
	for _, f := range m.Fields() {
		reverse = append(reverse, rels.reverse[f]...)
	}
	return reverse, nil
}

func (m *Model) verboseName() string { return camelCaseToEnglish(m.name) }

// verboseNamePlural naively appends "s"; real pluralization is out of scope.
func (m *Model) verboseNamePlural() string { return camelCaseToEnglish(m.name) + "s" }

// dbTable returns the destination table name: the source name verbatim
// when keep-table-names is set, else the Django default app_model form.
func (m *Model) dbTable() string {
	if m.db.keepTableNames {
		return m.table.Name
	}
	return fmt.Sprintf("%s_%s", m.db.appName, strings.ToLower(m.name))
}

// pgTable returns the quoted, optionally schema-qualified table name for
// PostgreSQL statements.
func (m *Model) pgTable() string {
	table := fmt.Sprintf("%q", m.dbTable())
	if m.db.schema != "" {
		return fmt.Sprintf("%q.%s", m.db.schema, table)
	}
	return table
}

// modelID is the fully-qualified lowercase identifier used in fixture
// records ("myapp.article").
func (m *Model) modelID() string {
	return fmt.Sprintf("%s.%s", m.db.appName, strings.ToLower(m.name))
}

// Field is one field of a model, wrapping one source column, or a
// synthesized surrogate primary key with no backing column.
type Field struct {
	model      *Model
	column     *SourceColumn // nil for the synthesized surrogate key
	name       string
	primaryKey bool
	surrogate  bool
}

func (f *Field) Name() string { return f.name }

func (f *Field) String() string { return fmt.Sprintf("<Field %s.%s>", f.model.name, f.name) }

func (f *Field) IsPrimaryKey() bool { return f.primaryKey }

func (f *Field) verboseName() string { return camelCaseToEnglish(f.name) }

// index returns the single-column index on the backing column, or nil.
// A column without such an index is simply unindexed, never an error.
func (f *Field) index() *SourceIndex {
	if f.column == nil {
		return nil
	}
	return f.model.singleColumnIndexes()[f.column.Name]
}

// ForeignKey returns the relationship this field participates in as the
// child endpoint, or nil.
func (f *Field) ForeignKey() (*Relationship, error) {
	if f.surrogate {
		return nil, nil
	}
	rels, err := f.model.db.relationships()
	if err != nil {
		return nil, err
	}
	return rels.forward[f], nil
}

// ReverseForeignKeys returns the relationships pointing at this field as
// the parent endpoint.
func (f *Field) ReverseForeignKeys() ([]*Relationship, error) {
	if f.surrogate {
		return nil, nil
	}
	rels, err := f.model.db.relationships()
	if err != nil {
		return nil, err
	}
	return rels.reverse[f], nil
}

// inlineClassName names the admin inline class generated for this
// foreign key field. The field name is mixed in only when the owning
// model has more than one foreign key field.
func (f *Field) inlineClassName() (string, error) {
	fkFields, err := f.model.foreignKeyFields()
	if err != nil {
		return "", err
	}
	if len(fkFields) > 1 {
		return fmt.Sprintf("%s%sInline", f.model.name, underscoresToCamelCase(f.name)), nil
	}
	return f.model.name + "Inline", nil
}

// Relationship is one resolved foreign-key edge: ToField belongs to the
// child model, FromField to the referenced parent model.
type Relationship struct {
	ToField   *Field
	FromField *Field
}

func (r *Relationship) String() string {
	return fmt.Sprintf("<Relationship from:%s to:%s>", r.FromField, r.ToField)
}
