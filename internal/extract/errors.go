package extract

import "fmt"

// ParseError reports a source file that could not be parsed into records:
// malformed JSON, a missing required field, or a value of the wrong type.
//
// A ParseError aborts the current batch; there is no skip-and-continue.
type ParseError struct {
	Path   string
	Record int // 1-based record index within the file; 0 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("parse %s: record %d: %v", e.Path, e.Record, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrf(path string, record int, format string, a ...any) error {
	return &ParseError{Path: path, Record: record, Err: fmt.Errorf(format, a...)}
}
