package main

import "strings"

// outputAdmin emits the admin.py source: imports, one TabularInline per
// foreign-key field, and one registration block per model.
func (d *Database) outputAdmin(s *sink) error {
	models, err := d.Models()
	if err != nil {
		return err
	}
	ordered, err := d.OrderedModels()
	if err != nil {
		return err
	}

	s.note(2*len(models)+2, "generating admin imports")
	s.line("from django.contrib import admin")
	s.line("from %s.models import (", d.appName)
	for _, m := range ordered {
		s.note(2*len(models)+1, "generating admin model imports")
		s.line("    %s,", m.name)
	}
	s.line(")")

	for i, m := range ordered {
		s.note(2*len(models)-i, "generating admin inline: "+m.name)
		if err := m.writeInlines(s); err != nil {
			return err
		}
	}
	for i, m := range ordered {
		s.note(len(models)-i, "generating ModelAdmin: "+m.name)
		if err := m.writeRegistration(s); err != nil {
			return err
		}
	}
	return s.err
}

// writeInlines emits one TabularInline class per foreign-key field of
// this model. fk_name disambiguation is only needed when the model has
// more than one foreign-key field.
func (m *Model) writeInlines(s *sink) error {
	fkFields, err := m.foreignKeyFields()
	if err != nil {
		return err
	}
	for _, f := range fkFields {
		name, err := f.inlineClassName()
		if err != nil {
			return err
		}
		s.line("")
		s.line("class %s(admin.TabularInline):", name)
		s.line("    model = %s", m.name)
		if len(fkFields) > 1 {
			s.line("    fk_name = '%s'", f.name)
		}
	}
	return s.err
}

// inlineClassNames lists the inline classes of the models referencing
// this one, in field order.
func (m *Model) inlineClassNames() ([]string, error) {
	reverse, err := m.reverseForeignKeys()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, rel := range reverse {
		name, err := rel.ToField.inlineClassName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (m *Model) writeRegistration(s *sink) error {
	inlines, err := m.inlineClassNames()
	if err != nil {
		return err
	}

	fieldNames := make([]string, 0, len(m.Fields()))
	for _, f := range m.Fields() {
		fieldNames = append(fieldNames, "'"+f.name+"'")
	}

	s.line("")
	s.line("admin.site.register(")
	s.line("    %s,", m.name)
	if len(inlines) == 0 {
		s.line("    list_display=(%s))", strings.Join(fieldNames, ", "))
		return s.err
	}
	s.line("    list_display=(%s),", strings.Join(fieldNames, ", "))
	if len(inlines) == 1 {
		s.line("    inlines=[%s])", inlines[0])
		return s.err
	}
	s.line("    inlines=[")
	for i, name := range inlines {
		if i == len(inlines)-1 {
			s.line("        %s])", name)
		} else {
			s.line("        %s,", name)
		}
	}
	return s.err
}
