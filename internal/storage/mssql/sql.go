package mssql

import (
	"fmt"
	"strings"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
)

func msIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// buildCreateTableSQL renders DDL wrapped in an OBJECT_ID guard, since SQL
// Server has no CREATE TABLE IF NOT EXISTS.
func buildCreateTableSQL(t schema.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string
	hasSurrogate := t.SurrogateKey != nil
	if hasSurrogate {
		switch strings.ToLower(strings.TrimSpace(t.SurrogateKey.Type)) {
		case "", "serial", "identity":
			parts = append(parts, fmt.Sprintf("%s INT IDENTITY(1,1) PRIMARY KEY", msIdent(t.SurrogateKey.Name)))
		case "bigserial":
			parts = append(parts, fmt.Sprintf("%s BIGINT IDENTITY(1,1) PRIMARY KEY", msIdent(t.SurrogateKey.Name)))
		default:
			parts = append(parts, fmt.Sprintf("%s %s PRIMARY KEY", msIdent(t.SurrogateKey.Name), t.SurrogateKey.Type))
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
		col := fmt.Sprintf("%s %s", msIdent(c.Name), c.Type)
		if c.PrimaryKey && !hasSurrogate && single == 1 {
			col += " PRIMARY KEY"
		} else {
			if !c.Nullable {
				col += " NOT NULL"
			}
			if c.PrimaryKey {
				pkCols = append(pkCols, msIdent(c.Name))
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

	name := msIdent(t.Name)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
		strings.ReplaceAll(name, "'", "''"), name, strings.Join(parts, ", "),
	), nil
}

// buildUpsertSQL renders the write statement for one row.
//
// Shapes:
//   - no conflict policy: plain INSERT.
//   - do_nothing:        IF NOT EXISTS (<key match>) INSERT.
//   - update:            UPDATE; IF @@ROWCOUNT = 0 INSERT.
//
// Because the same source value can feed more than one placeholder, the
// second return value maps each placeholder (in @p order) to its index in the
// caller's row slice.
func buildUpsertSQL(t schema.TableSpec) (string, []int, error) {
	if len(t.Columns) == 0 {
		return "", nil, fmt.Errorf("table %s: no columns", t.Name)
	}

	colIdx := make(map[string]int, len(t.Columns))
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colIdx[c.Name] = i
		cols[i] = msIdent(c.Name)
	}

	var argOrder []int
	p := 0
	nextPlaceholder := func(col string) string {
		p++
		argOrder = append(argOrder, colIdx[col])
		return fmt.Sprintf("@p%d", p)
	}

	insertStmt := func(b *strings.Builder) {
		fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (", msIdent(t.Name), strings.Join(cols, ", "))
		for i, c := range t.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(nextPlaceholder(c.Name))
		}
		b.WriteString(")")
	}

	var b strings.Builder
	c := t.Conflict
	if c == nil {
		insertStmt(&b)
		return b.String(), argOrder, nil
	}

	keyMatch := func(b *strings.Builder, qualifier string) {
		for i, col := range c.TargetColumns {
			if i > 0 {
				b.WriteString(" AND ")
			}
			fmt.Fprintf(b, "%s%s = %s", qualifier, msIdent(col), nextPlaceholder(col))
		}
	}

	switch c.Action {
	case schema.ConflictDoNothing:
		fmt.Fprintf(&b, "IF NOT EXISTS (SELECT 1 FROM %s WHERE ", msIdent(t.Name))
		keyMatch(&b, "")
		b.WriteString(") ")
		insertStmt(&b)

	case schema.ConflictUpdate:
		fmt.Fprintf(&b, "UPDATE %s SET ", msIdent(t.Name))
		for i, col := range c.UpdateColumns {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = %s", msIdent(col), nextPlaceholder(col))
		}
		b.WriteString(" WHERE ")
		keyMatch(&b, "")
		b.WriteString("; IF @@ROWCOUNT = 0 ")
		insertStmt(&b)

	default:
		return "", nil, fmt.Errorf("table %s: unknown conflict action %q", t.Name, c.Action)
	}

	return b.String(), argOrder, nil
}

func buildResolveSQL(lk schema.PlayLookup) string {
	return fmt.Sprintf(
		"SELECT TOP 1 s.%s, s.%s FROM %s s JOIN %s a ON s.%s = a.%s WHERE s.%s = @p1 AND a.%s = @p2 AND s.%s = @p3",
		msIdent(lk.SongKeyColumn), msIdent(lk.ArtistKeyColumn),
		msIdent(lk.SongTable), msIdent(lk.ArtistTable),
		msIdent(lk.ArtistKeyColumn), msIdent(lk.ArtistKeyColumn),
		msIdent(lk.TitleColumn), msIdent(lk.ArtistNameColumn), msIdent(lk.DurationColumn),
	)
}
