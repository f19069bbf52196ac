package sqlite

import (
	"fmt"
	"strings"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
)

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for SQLite.
//
// "INTEGER PRIMARY KEY" is special in SQLite: it aliases the rowid and
// auto-generates values, so serial-style surrogate keys translate to it.
// Declared column types otherwise pass through; SQLite applies affinity.
func buildCreateTableSQL(t schema.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string
	hasSurrogate := t.SurrogateKey != nil
	if hasSurrogate {
		switch strings.ToLower(strings.TrimSpace(t.SurrogateKey.Type)) {
		case "", "serial", "bigserial", "identity":
			parts = append(parts, fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", sqlIdent(t.SurrogateKey.Name)))
		default:
			parts = append(parts, fmt.Sprintf("%s %s PRIMARY KEY", sqlIdent(t.SurrogateKey.Name), t.SurrogateKey.Type))
		}
	}

	single := 0
	for _, c := range t.Columns {
		if c.PrimaryKey {
			single++
		}
	}

	var pkCols []string
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", sqlIdent(c.Name), c.Type)
		if c.PrimaryKey && !hasSurrogate && single == 1 {
			col += " PRIMARY KEY"
		} else {
			if !c.Nullable {
				col += " NOT NULL"
			}
			if c.PrimaryKey {
				pkCols = append(pkCols, sqlIdent(c.Name))
			}
		}
		parts = append(parts, col)
	}

	if len(pkCols) > 0 {
		kind := "PRIMARY KEY"
		if hasSurrogate {
			kind = "UNIQUE"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", kind, strings.Join(pkCols, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

// buildUpsertSQL renders the per-row insert with SQLite's upsert clause.
// SQLite shares Postgres's ON CONFLICT syntax, only the placeholders differ.
func buildUpsertSQL(t schema.TableSpec) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s: no columns", t.Name)
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = sqlIdent(c.Name)
	}
	phs := strings.TrimRight(strings.Repeat("?, ", len(t.Columns)), ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)", sqlIdent(t.Name), strings.Join(cols, ", "), phs)

	if c := t.Conflict; c != nil {
		targets := make([]string, len(c.TargetColumns))
		for i, col := range c.TargetColumns {
			targets[i] = sqlIdent(col)
		}
		switch c.Action {
		case schema.ConflictDoNothing:
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", strings.Join(targets, ", "))
		case schema.ConflictUpdate:
			sets := make([]string, len(c.UpdateColumns))
			for i, col := range c.UpdateColumns {
				sets[i] = fmt.Sprintf("%s = excluded.%s", sqlIdent(col), sqlIdent(col))
			}
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(targets, ", "), strings.Join(sets, ", "))
		default:
			return "", fmt.Errorf("table %s: unknown conflict action %q", t.Name, c.Action)
		}
	}

	return b.String(), nil
}

func buildResolveSQL(lk schema.PlayLookup) string {
	return fmt.Sprintf(
		"SELECT s.%s, s.%s FROM %s s JOIN %s a ON s.%s = a.%s WHERE s.%s = ? AND a.%s = ? AND s.%s = ? LIMIT 1",
		sqlIdent(lk.SongKeyColumn), sqlIdent(lk.ArtistKeyColumn),
		sqlIdent(lk.SongTable), sqlIdent(lk.ArtistTable),
		sqlIdent(lk.ArtistKeyColumn), sqlIdent(lk.ArtistKeyColumn),
		sqlIdent(lk.TitleColumn), sqlIdent(lk.ArtistNameColumn), sqlIdent(lk.DurationColumn),
	)
}
