package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefault_Shape(t *testing.T) {
	t.Parallel()

	s := Default()

	if s.Songplays.SurrogateKey == nil || s.Songplays.SurrogateKey.Name != "songplay_id" {
		t.Errorf("fact surrogate key = %+v, want songplay_id", s.Songplays.SurrogateKey)
	}
	if s.Songplays.Conflict != nil {
		t.Errorf("fact table must use plain inserts, got conflict %+v", s.Songplays.Conflict)
	}

	// First-writer-wins dimensions.
	for _, tb := range []TableSpec{s.Songs, s.Time} {
		if tb.Conflict == nil || tb.Conflict.Action != ConflictDoNothing {
			t.Errorf("table %s conflict = %+v, want do_nothing", tb.Name, tb.Conflict)
		}
	}
	// Last-writer-wins dimensions.
	for _, tb := range []TableSpec{s.Users, s.Artists} {
		if tb.Conflict == nil || tb.Conflict.Action != ConflictUpdate {
			t.Errorf("table %s conflict = %+v, want update", tb.Name, tb.Conflict)
		}
	}
	if got := s.Users.Conflict.UpdateColumns; len(got) != 4 {
		t.Errorf("users update columns = %v, want all four non-key columns", got)
	}

	// song_id and artist_id on the fact table must be nullable: unresolved
	// plays still produce rows.
	nullable := map[string]bool{}
	for _, c := range s.Songplays.Columns {
		nullable[c.Name] = c.Nullable
	}
	if !nullable["song_id"] || !nullable["artist_id"] {
		t.Errorf("fact song_id/artist_id nullability = %v, want both nullable", nullable)
	}
}

func TestTables_DimensionsBeforeFact(t *testing.T) {
	t.Parallel()

	tables := Default().Tables()
	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name)
	}
	want := []string{"dim_users", "dim_songs", "dim_artists", "dim_time", "fact_songplays"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("table order = %v, want %v", names, want)
	}
}

func TestColumnNames(t *testing.T) {
	t.Parallel()

	tb := TableSpec{
		Name: "t",
		Columns: []ColumnSpec{
			{Name: "a", Type: "INT"},
			{Name: "b", Type: "VARCHAR(10)"},
		},
	}
	if got := tb.ColumnNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("ColumnNames = %v", got)
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Schema)
		wantSub string
	}{
		{
			name:    "empty table name",
			mutate:  func(s *Schema) { s.Users.Name = " " },
			wantSub: "table name must be set",
		},
		{
			name:    "no columns",
			mutate:  func(s *Schema) { s.Songs.Columns = nil },
			wantSub: "no columns",
		},
		{
			name: "duplicate column",
			mutate: func(s *Schema) {
				s.Artists.Columns = append(s.Artists.Columns, s.Artists.Columns[0])
			},
			wantSub: "duplicate column",
		},
		{
			name: "surrogate collides with column",
			mutate: func(s *Schema) {
				s.Songplays.Columns = append(s.Songplays.Columns, ColumnSpec{Name: "songplay_id", Type: "INT"})
			},
			wantSub: "collides",
		},
		{
			name:    "unknown conflict action",
			mutate:  func(s *Schema) { s.Users.Conflict.Action = "merge" },
			wantSub: "unknown conflict action",
		},
		{
			name:    "conflict target not a column",
			mutate:  func(s *Schema) { s.Time.Conflict.TargetColumns = []string{"no_such"} },
			wantSub: "not a column",
		},
		{
			name:    "update without update columns",
			mutate:  func(s *Schema) { s.Users.Conflict.UpdateColumns = nil },
			wantSub: "without update columns",
		},
		{
			name:    "lookup column unset",
			mutate:  func(s *Schema) { s.Lookup.DurationColumn = "" },
			wantSub: "duration_column must be set",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := Default()
			tc.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatalf("Validate succeeded, want error containing %q", tc.wantSub)
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not contain %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	// A serialized Default must load back identically: override files are
	// written by dumping and editing the default document.
	data, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Fatalf("loaded schema differs from default:\ngot  %+v\nwant %+v", got, Default())
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(`{"users": {"name": "dim_users"}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a schema with empty tables")
	}
}
