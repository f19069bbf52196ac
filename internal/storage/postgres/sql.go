package postgres

import (
	"fmt"
	"strings"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
)

// SQL builders are pure and deterministic so conflict-clause behavior and
// placeholder numbering can be unit tested without a database.

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for a table spec.
//
// Edge cases:
//   - A surrogate key renders first; "serial"/"bigserial" map to the native
//     auto-generating types, anything else passes through.
//   - Multiple PrimaryKey columns become a table-level composite key.
func buildCreateTableSQL(t schema.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string
	hasSurrogate := t.SurrogateKey != nil
	if hasSurrogate {
		typ := strings.ToUpper(strings.TrimSpace(t.SurrogateKey.Type))
		if typ == "" {
			typ = "SERIAL"
		}
		parts = append(parts, fmt.Sprintf("%s %s PRIMARY KEY", pgIdent(t.SurrogateKey.Name), typ))
	}

	var pkCols []string
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", pgIdent(c.Name), c.Type)
		if c.PrimaryKey && !hasSurrogate && countPrimaryKeys(t) == 1 {
			col += " PRIMARY KEY"
		} else {
			if !c.Nullable {
				col += " NOT NULL"
			}
			if c.PrimaryKey {
				pkCols = append(pkCols, pgIdent(c.Name))
			}
		}
		parts = append(parts, col)
	}

	if len(pkCols) > 0 {
		// With a surrogate key present, key columns still need uniqueness so
		// they can serve as conflict targets.
		kind := "PRIMARY KEY"
		if hasSurrogate {
			kind = "UNIQUE"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", kind, strings.Join(pkCols, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", pgIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func countPrimaryKeys(t schema.TableSpec) int {
	n := 0
	for _, c := range t.Columns {
		if c.PrimaryKey {
			n++
		}
	}
	return n
}

// buildUpsertSQL renders the insert statement for one row, with the conflict
// clause dictated by the table spec: DO NOTHING (first-writer-wins), DO UPDATE over
// the listed columns (last-writer-wins), or no clause at all (plain insert).
func buildUpsertSQL(t schema.TableSpec) (string, error) {
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s: no columns", t.Name)
	}

	cols := make([]string, len(t.Columns))
	phs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgIdent(c.Name)
		phs[i] = fmt.Sprintf("$%d", i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)", pgIdent(t.Name), strings.Join(cols, ", "), strings.Join(phs, ", "))

	if c := t.Conflict; c != nil {
		targets := make([]string, len(c.TargetColumns))
		for i, col := range c.TargetColumns {
			targets[i] = pgIdent(col)
		}
		switch c.Action {
		case schema.ConflictDoNothing:
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", strings.Join(targets, ", "))
		case schema.ConflictUpdate:
			sets := make([]string, len(c.UpdateColumns))
			for i, col := range c.UpdateColumns {
				sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(col), pgIdent(col))
			}
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(targets, ", "), strings.Join(sets, ", "))
		default:
			return "", fmt.Errorf("table %s: unknown conflict action %q", t.Name, c.Action)
		}
	}

	return b.String(), nil
}

// buildResolveSQL renders the song/artist resolution query: exact match on
// (title, artist name, duration) across the two dimensions.
func buildResolveSQL(lk schema.PlayLookup) string {
	return fmt.Sprintf(
		"SELECT s.%s, s.%s FROM %s s JOIN %s a ON s.%s = a.%s WHERE s.%s = $1 AND a.%s = $2 AND s.%s = $3 LIMIT 1",
		pgIdent(lk.SongKeyColumn), pgIdent(lk.ArtistKeyColumn),
		pgIdent(lk.SongTable), pgIdent(lk.ArtistTable),
		pgIdent(lk.ArtistKeyColumn), pgIdent(lk.ArtistKeyColumn),
		pgIdent(lk.TitleColumn), pgIdent(lk.ArtistNameColumn), pgIdent(lk.DurationColumn),
	)
}
