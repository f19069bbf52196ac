package batch

import (
	"context"
	"fmt"

	"github.com/infinit3labs/udacity-dend-proj1/internal/extract"
	"github.com/infinit3labs/udacity-dend-proj1/internal/metrics"
	"github.com/infinit3labs/udacity-dend-proj1/internal/model"
	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
	"github.com/infinit3labs/udacity-dend-proj1/internal/storage"
)

// SongPipeline returns the ProcessFunc for song-metadata files: one Song and
// its Artist per file, written in that order inside the file's transaction.
func SongPipeline(s *schema.Schema) ProcessFunc {
	return func(ctx context.Context, tx storage.Tx, path string) error {
		song, artist, err := extract.SongFile(path)
		if err != nil {
			return err
		}

		row, err := rowFor(s.Songs, songValues(song))
		if err != nil {
			return err
		}
		if err := tx.Upsert(ctx, s.Songs, row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		metrics.IncCounter("etl_records_total", 1, metrics.Labels{"kind": "songs"})

		row, err = rowFor(s.Artists, artistValues(artist))
		if err != nil {
			return err
		}
		if err := tx.Upsert(ctx, s.Artists, row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		metrics.IncCounter("etl_records_total", 1, metrics.Labels{"kind": "artists"})

		return nil
	}
}

// LogPipeline returns the ProcessFunc for event-log files.
//
// Write order within the transaction is time buckets, then users, then plays:
// a play row describes an event at a point in time already described by its
// bucket and user, and the order preserves that even though no foreign key
// enforces it. Song/artist resolution happens here, per play, against the
// rows loaded so far; a miss writes NULL keys rather than failing.
func LogPipeline(s *schema.Schema) ProcessFunc {
	return func(ctx context.Context, tx storage.Tx, path string) error {
		recs, err := extract.LogFile(path)
		if err != nil {
			return err
		}

		for _, tb := range recs.Times {
			row, err := rowFor(s.Time, timeValues(tb))
			if err != nil {
				return err
			}
			if err := tx.Upsert(ctx, s.Time, row); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		metrics.IncCounter("etl_records_total", float64(len(recs.Times)), metrics.Labels{"kind": "time"})

		for _, u := range recs.Users {
			row, err := rowFor(s.Users, userValues(u))
			if err != nil {
				return err
			}
			if err := tx.Upsert(ctx, s.Users, row); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		metrics.IncCounter("etl_records_total", float64(len(recs.Users)), metrics.Labels{"kind": "users"})

		for _, play := range recs.Plays {
			songID, artistID, err := tx.ResolvePlay(ctx, s.Lookup, play.Title, play.Artist, play.Duration)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", path, err)
			}
			if songID != nil {
				metrics.IncCounter("etl_lookups_total", 1, metrics.Labels{"result": "hit"})
			} else {
				metrics.IncCounter("etl_lookups_total", 1, metrics.Labels{"result": "miss"})
			}
			play.SongID = songID
			play.ArtistID = artistID

			row, err := rowFor(s.Songplays, playValues(play))
			if err != nil {
				return err
			}
			if err := tx.Upsert(ctx, s.Songplays, row); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		metrics.IncCounter("etl_records_total", float64(len(recs.Plays)), metrics.Labels{"kind": "songplays"})

		return nil
	}
}

// rowFor orders a record's values to match the table spec's column list.
// A column with no value is a configuration error and fails loudly rather
// than silently binding NULL.
func rowFor(t schema.TableSpec, values map[string]any) ([]any, error) {
	row := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		v, ok := values[c.Name]
		if !ok {
			return nil, fmt.Errorf("table %s: no value for column %s", t.Name, c.Name)
		}
		row[i] = v
	}
	return row, nil
}

func songValues(s model.Song) map[string]any {
	return map[string]any{
		"song_id":   s.ID,
		"artist_id": s.ArtistID,
		"title":     s.Title,
		"year":      s.Year,
		"duration":  s.Duration,
	}
}

func artistValues(a model.Artist) map[string]any {
	return map[string]any{
		"artist_id": a.ID,
		"name":      a.Name,
		"location":  a.Location,
		"latitude":  a.Latitude,
		"longitude": a.Longitude,
	}
}

func userValues(u model.User) map[string]any {
	return map[string]any{
		"user_id":    u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"gender":     u.Gender,
		"level":      u.Level,
	}
}

func timeValues(t model.TimeBucket) map[string]any {
	return map[string]any{
		"start_time": t.StartTime,
		"hour":       t.Hour,
		"day":        t.Day,
		"week":       t.Week,
		"month":      t.Month,
		"year":       t.Year,
		"weekday":    t.Weekday,
	}
}

func playValues(p model.Play) map[string]any {
	return map[string]any{
		"start_time": p.StartTime,
		"user_id":    p.UserID,
		"level":      p.Level,
		"song_id":    p.SongID,
		"artist_id":  p.ArtistID,
		"session_id": p.SessionID,
		"location":   p.Location,
		"user_agent": p.UserAgent,
	}
}
