package extract

import (
	"os"

	"github.com/infinit3labs/udacity-dend-proj1/internal/model"
	"github.com/infinit3labs/udacity-dend-proj1/internal/parser/ndjson"
)

// playAction is the page value identifying a play event. Every other action
// (Home, Login, ...) is discarded silently.
const playAction = "NextSong"

// LogRecords holds everything derived from one event-log file, in file order.
// Times and Users load before Plays: a play event happens at a point in time
// already described by its bucket and user, and the load order preserves that
// even though no foreign key enforces it.
type LogRecords struct {
	Times []model.TimeBucket
	Users []model.User
	Plays []model.Play
}

// LogFile parses one event-log file into time, user, and play records.
//
// Each NextSong record yields one TimeBucket, one User, and one Play; the Play
// carries its title/artist/duration match inputs and stays unresolved until
// load time. Records whose page is missing or not NextSong produce nothing.
//
// Errors:
//   - *ParseError on malformed JSON, or on a NextSong record missing its
//     timestamp, user id, or session id.
func LogFile(path string) (*LogRecords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &LogRecords{}

	err = ndjson.Decode(f, func(r ndjson.Record) error {
		page := text(r.Fields, "page")
		if page == nil || *page != playAction {
			return nil
		}

		ts, ok, err := integer(r.Fields, "ts")
		if err != nil {
			return &ParseError{Path: path, Record: r.Index, Err: err}
		}
		if !ok {
			return parseErrf(path, r.Index, "play event missing ts")
		}
		userID, ok, err := integer(r.Fields, "userId")
		if err != nil {
			return &ParseError{Path: path, Record: r.Index, Err: err}
		}
		if !ok {
			return parseErrf(path, r.Index, "play event missing userId")
		}
		sessionID, ok, err := integer(r.Fields, "sessionId")
		if err != nil {
			return &ParseError{Path: path, Record: r.Index, Err: err}
		}
		if !ok {
			return parseErrf(path, r.Index, "play event missing sessionId")
		}
		length, _, err := float(r.Fields, "length")
		if err != nil {
			return &ParseError{Path: path, Record: r.Index, Err: err}
		}

		level := textOr(r.Fields, "level")

		out.Times = append(out.Times, model.TimeBucketFromMillis(ts))
		out.Users = append(out.Users, model.User{
			ID:        int(userID),
			FirstName: textOr(r.Fields, "firstName"),
			LastName:  textOr(r.Fields, "lastName"),
			Gender:    text(r.Fields, "gender"),
			Level:     level,
		})
		out.Plays = append(out.Plays, model.Play{
			StartTime: ts,
			UserID:    int(userID),
			Level:     level,
			SessionID: int(sessionID),
			Location:  textOr(r.Fields, "location"),
			UserAgent: textOr(r.Fields, "userAgent"),
			Title:     textOr(r.Fields, "song"),
			Artist:    textOr(r.Fields, "artist"),
			Duration:  length,
		})
		return nil
	})
	if err != nil {
		if _, ok := err.(*ParseError); ok {
			return nil, err
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	return out, nil
}
