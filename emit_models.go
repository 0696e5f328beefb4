package main

import "strings"

// outputModels emits the models.py source: one class block per model in
// dependency order, fields in stored order, trailing Meta block.
func (d *Database) outputModels(s *sink) error {
	models, err := d.Models()
	if err != nil {
		return err
	}
	ordered, err := d.OrderedModels()
	if err != nil {
		return err
	}

	s.note(len(models)+2, "generating model imports")
	s.line("from django.db import models")
	s.line("from django.utils.translation import ugettext as _")

	for i, m := range ordered {
		s.note(len(models)-i, "generating models: "+m.name)
		if err := m.writeModel(s); err != nil {
			return err
		}
	}
	return s.err
}

func (m *Model) writeModel(s *sink) error {
	s.line("")
	s.line("class %s(models.Model):", m.name)
	for _, f := range m.Fields() {
		if err := f.writeField(s); err != nil {
			return err
		}
	}
	s.line("")
	s.line("    class Meta:")
	if m.db.keepTableNames || m.db.schema != "" {
		dbTable := m.dbTable()
		if m.db.schema != "" {
			// Django's quoting trick for schema-qualified table names.
			dbTable = m.db.schema + `\".\"` + dbTable
		}
		s.line("        db_table = '%s'", dbTable)
	}
	if multi := m.multiColumnIndexes(); len(multi) > 0 {
		s.line("        unique_together = (")
		for _, ix := range multi {
			names := make([]string, len(ix.Columns))
			for i, col := range ix.Columns {
				f, err := m.fieldByColumn(col)
				if err != nil {
					return err
				}
				names[i] = "'" + f.name + "',"
			}
			s.line("            (%s),", strings.Join(names, " "))
		}
		s.line("        )")
	}
	s.line("        verbose_name = _(u'%s')", m.verboseName())
	s.line("        verbose_name_plural = _(u'%s')", m.verboseNamePlural())
	return s.err
}

// writeField renders one field definition. The synthesized surrogate key
// is implicit in Django and emits nothing. An unrecognized source type
// yields an empty field class, leaving visibly malformed output instead
// of a silent guess.
func (f *Field) writeField(s *sink) error {
	if f.surrogate {
		return nil
	}
	class, err := f.FieldClass()
	if err != nil {
		return err
	}
	attrs, err := f.Attrs()
	if err != nil {
		return err
	}
	s.line("    %s = models.%s(", f.name, class)
	for i, attr := range attrs {
		if i == len(attrs)-1 {
			s.line("        %s)", attr)
		} else {
			s.line("        %s,", attr)
		}
	}
	return s.err
}
