package main

import (
	"fmt"
	"strings"
	"time"
)

// ConversionFunc is a user-supplied override applied after the built-in
// conversion, keyed by table and column name.
type ConversionFunc func(table, column string, value any) any

// ValueConverter maps raw source column values to display values, JSON
// fixture values, and PostgreSQL COPY tokens.
type ValueConverter struct {
	custom ConversionFunc
}

func newValueConverter(custom ConversionFunc) *ValueConverter {
	if custom == nil {
		custom = func(_, _ string, v any) any { return v }
	}
	return &ValueConverter{custom: custom}
}

var monthAbbrs = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// parseLegacyTimestamp reparses the legacy reader's locale-formatted
// timestamp string ("Thu Dec 10 13:59:15 PST 2009") into
// "2009-12-10 13:59:15". The day is zero-padded.
func parseLegacyTimestamp(s string) (string, bool) {
	parts := strings.Fields(s)
	if len(parts) != 6 {
		return "", false
	}
	month, ok := monthAbbrs[parts[1]]
	if !ok {
		return "", false
	}
	var day int
	if _, err := fmt.Sscanf(parts[2], "%d", &day); err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d %s", parts[5], month, day, parts[3]), true
}

// escapeMemoText replaces embedded CRLF and tab sequences with literal
// backslash escapes, matching the legacy export convention.
func escapeMemoText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", `\r`)
	return strings.ReplaceAll(s, "\t", `\t`)
}

// ToDisplay converts a raw column value to its display form: integers
// unwrap to int64, booleans to bool, timestamps to "YYYY-MM-DD HH:MM:SS",
// memo text gets CRLF/tab escaping, everything else passes through.
func (vc *ValueConverter) ToDisplay(table, column string, tag TypeTag, value any) any {
	switch v := value.(type) {
	case nil:
		return vc.custom(table, column, nil)
	case int:
		value = convertInt(tag, int64(v))
	case int32:
		value = convertInt(tag, int64(v))
	case int64:
		value = convertInt(tag, v)
	case bool:
		value = v
	case time.Time:
		value = v.Format("2006-01-02 15:04:05")
	case []byte:
		value = vc.convertString(tag, string(v))
	case string:
		value = vc.convertString(tag, v)
	}
	return vc.custom(table, column, value)
}

// convertInt widens driver integers to int64 and unwraps boolean
// columns, whichever integer width the driver hands over.
func convertInt(tag TypeTag, n int64) any {
	if tag == TypeBoolean {
		return n != 0
	}
	return n
}

func (vc *ValueConverter) convertString(tag TypeTag, s string) any {
	switch tag {
	case TypeDateTime:
		if formatted, ok := parseLegacyTimestamp(s); ok {
			return formatted
		}
		return s
	case TypeBoolean:
		switch s {
		case "0", "false":
			return false
		case "1", "true":
			return true
		}
		return s
	case TypeMemo:
		return escapeMemoText(s)
	default:
		return s
	}
}

// ToFixture converts a raw column value to its JSON fixture form. Nil
// stays nil so the encoder emits an explicit null token.
func (vc *ValueConverter) ToFixture(table, column string, tag TypeTag, value any) any {
	return vc.ToDisplay(table, column, tag, value)
}

// ToCopyToken formats a raw column value as a PostgreSQL COPY column:
// booleans become t/f, nil becomes \N, everything else UTF-8 text.
// Embedded delimiter characters are not escaped; this mirrors the
// legacy exporter, which has the same limitation.
func (vc *ValueConverter) ToCopyToken(table, column string, tag TypeTag, value any) string {
	converted := vc.ToDisplay(table, column, tag, value)
	switch v := converted.(type) {
	case nil:
		return `\N`
	case bool:
		if v {
			return "t"
		}
		return "f"
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
