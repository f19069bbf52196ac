package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Field accessors for decoded source records.
//
// The scripting origin of this dataset leaves types loose: numeric fields can
// arrive as JSON numbers or as quoted digits (userId in the log files), and
// blank strings mean "absent". These helpers centralize that coercion so the
// extractors stay declarative.

// text returns the trimmed-checked string for key, or nil when the field is
// absent, null, or whitespace-only. Blank fields normalize to nil, never to "".
func text(fields map[string]any, key string) *string {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// integer parses key as an int64. ok is false when the field is absent, null,
// or blank; err is non-nil when a value is present but not integral.
func integer(fields map[string]any, key string) (n int64, ok bool, err error) {
	v, exists := fields[key]
	if !exists || v == nil {
		return 0, false, nil
	}
	s := numericString(v)
	if s == "" {
		return 0, false, nil
	}
	n, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		// Accept float-shaped integers like "1984.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false, fmt.Errorf("field %q: not an integer: %q", key, s)
		}
		n = int64(f)
	}
	return n, true, nil
}

// float parses key as a float64. Semantics mirror integer.
func float(fields map[string]any, key string) (f float64, ok bool, err error) {
	v, exists := fields[key]
	if !exists || v == nil {
		return 0, false, nil
	}
	s := numericString(v)
	if s == "" {
		return 0, false, nil
	}
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, false, fmt.Errorf("field %q: not a number: %q", key, s)
	}
	return f, true, nil
}

func numericString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer: // json.Number
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
