// Package ndjson reads JSON source files record by record.
//
// The source trees contain two shapes: song-metadata files holding a single
// JSON object, and event-log files holding newline-delimited objects. A root
// JSON array of objects is accepted too, streamed element by element. Numbers
// are decoded as json.Number so callers control integer vs float parsing.
package ndjson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Record is one decoded source record and its 1-based position in the file.
type Record struct {
	Index  int
	Fields map[string]any
}

// Decode streams every record in r to emit, in file order.
//
// Errors:
//   - Malformed JSON or a non-object record stops decoding and returns an
//     error naming the record index.
//   - An error returned by emit stops decoding and is returned unchanged.
func Decode(r io.Reader, emit func(Record) error) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	index := 0

	emitValue := func(v any) error {
		index++
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("record %d: not a JSON object (got %T)", index, v)
		}
		return emit(Record{Index: index, Fields: obj})
	}

	// Peek the first token so a root array can be streamed without buffering.
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("record 1: %w", err)
	}

	if d, ok := tok.(json.Delim); ok && d == '[' {
		for dec.More() {
			var v any
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("record %d: %w", index+1, err)
			}
			if err := emitValue(v); err != nil {
				return err
			}
		}
		if end, err := dec.Token(); err != nil {
			return fmt.Errorf("record %d: read array end: %w", index, err)
		} else if end != json.Delim(']') {
			return fmt.Errorf("record %d: expected array end, got %v", index, end)
		}
		return decodeTrailing(dec, &index, emitValue)
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record 1: unsupported root token %v (want object or array)", tok)
	}

	// First record is an object whose '{' has been consumed; materialize it
	// field by field, then keep decoding trailing objects (the JSONL case).
	obj := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("record 1: read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record 1: object key not a string (got %T)", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record 1: field %q: %w", key, err)
		}
		obj[key] = v
	}
	if end, err := dec.Token(); err != nil {
		return fmt.Errorf("record 1: read object end: %w", err)
	} else if end != json.Delim('}') {
		return fmt.Errorf("record 1: expected object end, got %v", end)
	}
	if err := emitValue(obj); err != nil {
		return err
	}

	return decodeTrailing(dec, &index, emitValue)
}

func decodeTrailing(dec *json.Decoder, index *int, emitValue func(any) error) error {
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("record %d: %w", *index+1, err)
		}
		if err := emitValue(v); err != nil {
			return err
		}
	}
}
