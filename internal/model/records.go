// Package model defines the value records flowing from the extractors to the
// writer. Records are constructed fresh per source file and discarded once
// written; nothing here holds cross-file state.
package model

// Song is one row of the songs dimension. Year is -1 when the source value is
// below 1000 (the dataset uses 0 for "unknown").
type Song struct {
	ID       string
	ArtistID string
	Title    string
	Year     int
	Duration float64
}

// Artist is one row of the artists dimension. Location and coordinates are
// sparsely populated in the source, so they are nullable.
type Artist struct {
	ID        string
	Name      string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// User is one row of the users dimension as it stood in a single play event.
// Level legitimately changes over time; the writer applies last-write-wins.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Gender    *string
	Level     string
}

// Play is one play event. SongID and ArtistID stay nil until load-time
// resolution; Title, Artist and Duration carry the match inputs for that
// resolution and are not persisted themselves.
type Play struct {
	StartTime int64
	UserID    int
	Level     string
	SongID    *string
	ArtistID  *string
	SessionID int
	Location  string
	UserAgent string

	Title    string
	Artist   string
	Duration float64
}
