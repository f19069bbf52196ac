// Package schema describes the target star schema as data: table names,
// column lists, and per-table conflict policies. Backends build their SQL from
// these specs, so statement text is never hardcoded in more than one place,
// and the historical variance between schema revisions (fact-table key shape,
// nullability) stays a configuration concern.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Conflict actions.
const (
	// ConflictDoNothing keeps the existing row on a key conflict
	// (first-writer-wins).
	ConflictDoNothing = "do_nothing"
	// ConflictUpdate overwrites the listed columns with the incoming values
	// (last-writer-wins).
	ConflictUpdate = "update"
)

// TableSpec describes one target table.
//
// Edge cases:
//   - SurrogateKey, when set, is generated by the store and never appears in
//     Columns or in insert statements.
//   - A nil Conflict means plain INSERT; duplicates surface as constraint
//     errors from the store if the table enforces uniqueness.
type TableSpec struct {
	Name         string            `json:"name"`
	SurrogateKey *SurrogateKeySpec `json:"surrogate_key,omitempty"`
	Columns      []ColumnSpec      `json:"columns"`
	Conflict     *ConflictSpec     `json:"conflict,omitempty"`
}

// SurrogateKeySpec is a store-generated integer key (SERIAL, IDENTITY, ...).
type SurrogateKeySpec struct {
	Name string `json:"name"`
	Type string `json:"type"` // e.g. "serial"; backends translate
}

// ColumnSpec is one insertable column.
type ColumnSpec struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// ConflictSpec declares what happens when an insert hits the target columns'
// uniqueness constraint.
type ConflictSpec struct {
	TargetColumns []string `json:"target_columns"`
	Action        string   `json:"action"` // do_nothing | update
	// UpdateColumns lists the columns overwritten when Action is update.
	UpdateColumns []string `json:"update_columns,omitempty"`
}

// PlayLookup configures the song/artist resolution query: an exact match on
// (title, artist name, duration) against the loaded dimensions. Resolution
// never guesses; no match means NULL keys on the fact row.
type PlayLookup struct {
	SongTable        string `json:"song_table"`
	ArtistTable      string `json:"artist_table"`
	SongKeyColumn    string `json:"song_key_column"`
	ArtistKeyColumn  string `json:"artist_key_column"`
	TitleColumn      string `json:"title_column"`
	ArtistNameColumn string `json:"artist_name_column"`
	DurationColumn   string `json:"duration_column"`
}

// Schema is the full target schema: one fact table, four dimensions, and the
// resolution rule joining plays back to songs and artists.
type Schema struct {
	Songplays TableSpec  `json:"songplays"`
	Users     TableSpec  `json:"users"`
	Songs     TableSpec  `json:"songs"`
	Artists   TableSpec  `json:"artists"`
	Time      TableSpec  `json:"time"`
	Lookup    PlayLookup `json:"lookup"`
}

// Tables returns every table spec, dimensions before the fact table so
// create order satisfies readers expecting referenced tables first.
func (s *Schema) Tables() []TableSpec {
	return []TableSpec{s.Users, s.Songs, s.Artists, s.Time, s.Songplays}
}

// Load reads a schema override from a JSON file and validates it.
//
// When to use:
//   - Only when targeting a schema revision other than Default (composite
//     fact key, stricter nullability). Fields left out of the file fall back
//     to zero values, so override files should be complete documents.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Schema
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks structural consistency: non-empty names, no duplicate
// columns, and conflict policies referring only to declared columns.
func (s *Schema) Validate() error {
	for _, t := range s.Tables() {
		if err := t.validate(); err != nil {
			return err
		}
	}
	lk := s.Lookup
	for name, v := range map[string]string{
		"song_table":         lk.SongTable,
		"artist_table":       lk.ArtistTable,
		"song_key_column":    lk.SongKeyColumn,
		"artist_key_column":  lk.ArtistKeyColumn,
		"title_column":       lk.TitleColumn,
		"artist_name_column": lk.ArtistNameColumn,
		"duration_column":    lk.DurationColumn,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("lookup: %s must be set", name)
		}
	}
	return nil
}

func (t TableSpec) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name must be set")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("table %s: column with empty name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		seen[c.Name] = true
	}
	if t.SurrogateKey != nil && seen[t.SurrogateKey.Name] {
		return fmt.Errorf("table %s: surrogate key %s collides with a column", t.Name, t.SurrogateKey.Name)
	}
	if c := t.Conflict; c != nil {
		switch c.Action {
		case ConflictDoNothing, ConflictUpdate:
		default:
			return fmt.Errorf("table %s: unknown conflict action %q", t.Name, c.Action)
		}
		if len(c.TargetColumns) == 0 {
			return fmt.Errorf("table %s: conflict without target columns", t.Name)
		}
		for _, col := range c.TargetColumns {
			if !seen[col] {
				return fmt.Errorf("table %s: conflict target %s is not a column", t.Name, col)
			}
		}
		if c.Action == ConflictUpdate && len(c.UpdateColumns) == 0 {
			return fmt.Errorf("table %s: update conflict without update columns", t.Name)
		}
		for _, col := range c.UpdateColumns {
			if !seen[col] {
				return fmt.Errorf("table %s: update column %s is not a column", t.Name, col)
			}
		}
	}
	return nil
}

// ColumnNames returns the insertable column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
