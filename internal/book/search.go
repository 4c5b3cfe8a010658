package book

import (
	"fmt"
	"strings"
	"time"
)

// RepoConfig tunes the SQL repositories.
type RepoConfig struct {
	// QueryTimeout bounds every storage session. Zero disables the bound.
	QueryTimeout time.Duration
	// CaseSensitiveSearch makes title and author filters match case exactly.
	CaseSensitiveSearch bool
}

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// containsClause renders a substring match on column for the next argument.
func (d dialect) containsClause(column string, n int, caseSensitive bool) string {
	ph := d.placeholder(n)
	switch {
	case caseSensitive && d == dialectPostgres:
		return fmt.Sprintf("strpos(%s, %s) > 0", column, ph)
	case caseSensitive:
		return fmt.Sprintf("instr(%s, %s) > 0", column, ph)
	case d == dialectPostgres:
		return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, ph)
	default:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, column, ph)
	}
}

// buildSearch turns a SearchQuery into a WHERE clause and its arguments.
// The clause is empty when no filter is set.
func buildSearch(d dialect, q SearchQuery, caseSensitive bool) (string, []any) {
	var clauses []string
	var args []any
	argn := 1

	addContains := func(column, value string) {
		clauses = append(clauses, d.containsClause(column, argn, caseSensitive))
		if caseSensitive {
			args = append(args, value)
		} else {
			args = append(args, "%"+escapeLike(value)+"%")
		}
		argn++
	}

	if q.Title != "" {
		addContains("title", q.Title)
	}
	if q.Author != "" {
		addContains("author", q.Author)
	}
	if q.Year != nil {
		clauses = append(clauses, fmt.Sprintf("year = %s", d.placeholder(argn)))
		args = append(args, int64(*q.Year))
		argn++
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullableYear(year *int) any {
	if year == nil {
		return nil
	}
	return int64(*year)
}
