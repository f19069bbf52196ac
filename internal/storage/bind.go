package storage

import "strings"

// BindValue converts an extracted value into its SQL bind form.
//
// Blank or whitespace-only strings bind as NULL, never as empty string; that
// rule is applied here, once, so every backend and every table gets it.
// Typed nil pointers also collapse to untyped nil so drivers see plain NULL.
func BindValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return t
	case *string:
		if t == nil {
			return nil
		}
		return BindValue(*t)
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case *int:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}

// BindRow applies BindValue to every value of a row in place and returns it.
func BindRow(row []any) []any {
	for i, v := range row {
		row[i] = BindValue(v)
	}
	return row
}
