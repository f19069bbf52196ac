package schema

// Default returns the documented schema revision: surrogate serial key on the
// fact table, nullable song_id/artist_id there (source data rarely resolves).
// NOT NULL covers keys and the numeric event fields; free-text columns stay
// nullable because blank source strings bind as NULL.
func Default() *Schema {
	return &Schema{
		Songplays: TableSpec{
			Name:         "fact_songplays",
			SurrogateKey: &SurrogateKeySpec{Name: "songplay_id", Type: "serial"},
			Columns: []ColumnSpec{
				{Name: "start_time", Type: "BIGINT"},
				{Name: "user_id", Type: "INT"},
				{Name: "level", Type: "VARCHAR(20)", Nullable: true},
				{Name: "song_id", Type: "VARCHAR(18)", Nullable: true},
				{Name: "artist_id", Type: "VARCHAR(18)", Nullable: true},
				{Name: "session_id", Type: "INT"},
				{Name: "location", Type: "VARCHAR(100)", Nullable: true},
				{Name: "user_agent", Type: "VARCHAR(250)", Nullable: true},
			},
		},
		Users: TableSpec{
			Name: "dim_users",
			Columns: []ColumnSpec{
				{Name: "user_id", Type: "INT", PrimaryKey: true},
				{Name: "first_name", Type: "VARCHAR(20)", Nullable: true},
				{Name: "last_name", Type: "VARCHAR(20)", Nullable: true},
				{Name: "gender", Type: "VARCHAR(1)", Nullable: true},
				{Name: "level", Type: "VARCHAR(20)", Nullable: true},
			},
			Conflict: &ConflictSpec{
				TargetColumns: []string{"user_id"},
				Action:        ConflictUpdate,
				UpdateColumns: []string{"first_name", "last_name", "gender", "level"},
			},
		},
		Songs: TableSpec{
			Name: "dim_songs",
			Columns: []ColumnSpec{
				{Name: "song_id", Type: "VARCHAR(18)", PrimaryKey: true},
				{Name: "artist_id", Type: "VARCHAR(18)"},
				{Name: "title", Type: "VARCHAR(100)", Nullable: true},
				{Name: "year", Type: "INT", Nullable: true},
				{Name: "duration", Type: "FLOAT"},
			},
			Conflict: &ConflictSpec{
				TargetColumns: []string{"song_id"},
				Action:        ConflictDoNothing,
			},
		},
		Artists: TableSpec{
			Name: "dim_artists",
			Columns: []ColumnSpec{
				{Name: "artist_id", Type: "VARCHAR(18)", PrimaryKey: true},
				{Name: "name", Type: "VARCHAR(150)", Nullable: true},
				{Name: "location", Type: "VARCHAR(50)", Nullable: true},
				{Name: "latitude", Type: "FLOAT", Nullable: true},
				{Name: "longitude", Type: "FLOAT", Nullable: true},
			},
			Conflict: &ConflictSpec{
				TargetColumns: []string{"artist_id"},
				Action:        ConflictUpdate,
				UpdateColumns: []string{"name", "location", "latitude", "longitude"},
			},
		},
		Time: TableSpec{
			Name: "dim_time",
			Columns: []ColumnSpec{
				{Name: "start_time", Type: "BIGINT", PrimaryKey: true},
				{Name: "hour", Type: "INT"},
				{Name: "day", Type: "INT"},
				{Name: "week", Type: "INT"},
				{Name: "month", Type: "INT"},
				{Name: "year", Type: "INT"},
				{Name: "weekday", Type: "INT"},
			},
			Conflict: &ConflictSpec{
				TargetColumns: []string{"start_time"},
				Action:        ConflictDoNothing,
			},
		},
		Lookup: PlayLookup{
			SongTable:        "dim_songs",
			ArtistTable:      "dim_artists",
			SongKeyColumn:    "song_id",
			ArtistKeyColumn:  "artist_id",
			TitleColumn:      "title",
			ArtistNameColumn: "name",
			DurationColumn:   "duration",
		},
	}
}
