package main

import "fmt"

// FieldClass derives the Django field class for this field. An
// unrecognized source type yields an empty class, which is propagated
// into the generated source rather than guessed at.
func (f *Field) FieldClass() (string, error) {
	rel, err := f.ForeignKey()
	if err != nil {
		return "", err
	}
	if rel != nil {
		return "ForeignKey", nil
	}
	if f.surrogate {
		return "AutoField", nil
	}
	switch f.column.Type {
	case TypeText, TypeMemo:
		if f.column.Length == memoLength {
			return "TextField", nil
		}
		return "CharField", nil
	case TypeInteger, TypeLong:
		if f.primaryKey {
			return "AutoField", nil
		}
		return "IntegerField", nil
	case TypeBoolean:
		return "BooleanField", nil
	case TypeDateTime:
		return "DateTimeField", nil
	default:
		return "", nil
	}
}

// Attrs generates the constructor arguments for the generated field, in
// order: the relation target (foreign keys) or verbose name, type
// attributes, key/index markers, and finally a db_column override when
// the field was renamed.
func (f *Field) Attrs() ([]string, error) {
	var attrs []string

	rel, err := f.ForeignKey()
	if err != nil {
		return nil, err
	}
	if rel != nil {
		attrs = append(attrs, rel.FromField.model.name)
		if rel.FromField.name != "id" {
			attrs = append(attrs, fmt.Sprintf("to_field='%s'", rel.FromField.name))
		}
		attrs = append(attrs, fmt.Sprintf("verbose_name=_(u'%s')", f.verboseName()))
	} else {
		attrs = append(attrs, fmt.Sprintf("_(u'%s')", f.verboseName()))
		if f.column != nil && (f.column.Type == TypeText || f.column.Type == TypeMemo) &&
			f.column.Length != memoLength {
			attrs = append(attrs, fmt.Sprintf("max_length=%d", f.column.Length))
		}
	}

	if f.primaryKey {
		attrs = append(attrs, "primary_key=True")
	} else if ix := f.index(); ix != nil {
		attrs = append(attrs, "db_index=True")
		if ix.Unique {
			attrs = append(attrs, "unique=True")
		}
	}

	if f.column != nil && f.name != f.column.Name {
		attrs = append(attrs, fmt.Sprintf("db_column='%s'", f.column.Name))
	}
	return attrs, nil
}
