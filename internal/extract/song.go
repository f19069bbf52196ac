// Package extract parses source files into typed records. Deduplication is
// not done here; the writer's conflict policies own that.
package extract

import (
	"errors"
	"os"

	"github.com/infinit3labs/udacity-dend-proj1/internal/model"
	"github.com/infinit3labs/udacity-dend-proj1/internal/parser/ndjson"
)

// invalidYear is the sentinel stored when the source year is below 1000.
// The dataset uses 0 for "unknown" and has a handful of 3-digit outliers.
const invalidYear = -1

var errFirstRecordOnly = errors.New("stop after first record")

// SongFile parses one song-metadata file into its Song and Artist pair.
//
// The file holds exactly one JSON record; anything after the first record is
// ignored, matching the original loader which only read row zero.
//
// Errors:
//   - *ParseError on malformed JSON, a missing song_id or artist_id, or a
//     non-numeric year/duration.
func SongFile(path string) (model.Song, model.Artist, error) {
	var song model.Song
	var artist model.Artist

	f, err := os.Open(path)
	if err != nil {
		return song, artist, err
	}
	defer f.Close()

	var rec ndjson.Record
	found := false
	err = ndjson.Decode(f, func(r ndjson.Record) error {
		rec = r
		found = true
		return errFirstRecordOnly
	})
	if err != nil && !errors.Is(err, errFirstRecordOnly) {
		return song, artist, &ParseError{Path: path, Err: err}
	}
	if !found {
		return song, artist, parseErrf(path, 0, "no records in song file")
	}

	songID := text(rec.Fields, "song_id")
	artistID := text(rec.Fields, "artist_id")
	if songID == nil {
		return song, artist, parseErrf(path, rec.Index, "missing song_id")
	}
	if artistID == nil {
		return song, artist, parseErrf(path, rec.Index, "missing artist_id")
	}

	year, _, err := integer(rec.Fields, "year")
	if err != nil {
		return song, artist, &ParseError{Path: path, Record: rec.Index, Err: err}
	}
	if year < 1000 {
		year = invalidYear
	}
	duration, _, err := float(rec.Fields, "duration")
	if err != nil {
		return song, artist, &ParseError{Path: path, Record: rec.Index, Err: err}
	}

	song = model.Song{
		ID:       *songID,
		ArtistID: *artistID,
		Title:    textOr(rec.Fields, "title"),
		Year:     int(year),
		Duration: duration,
	}

	lat, latOK, err := float(rec.Fields, "artist_latitude")
	if err != nil {
		return song, artist, &ParseError{Path: path, Record: rec.Index, Err: err}
	}
	lon, lonOK, err := float(rec.Fields, "artist_longitude")
	if err != nil {
		return song, artist, &ParseError{Path: path, Record: rec.Index, Err: err}
	}

	artist = model.Artist{
		ID:       *artistID,
		Name:     textOr(rec.Fields, "artist_name"),
		Location: text(rec.Fields, "artist_location"),
	}
	if latOK {
		artist.Latitude = &lat
	}
	if lonOK {
		artist.Longitude = &lon
	}

	return song, artist, nil
}

// textOr returns the field value or "" when absent. Blank strings still bind
// as NULL at the writer boundary; "" here only feeds non-nullable columns.
func textOr(fields map[string]any, key string) string {
	if s := text(fields, key); s != nil {
		return *s
	}
	return ""
}
