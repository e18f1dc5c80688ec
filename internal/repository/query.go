package repository

import (
	"fmt"
	"strings"
	"time"
)

// whereBuilder accumulates conjunctive clauses with positional placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) equals(column string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	w.add(fmt.Sprintf("%s = %s", column, w.arg(strings.TrimSpace(*value))))
}

func (w *whereBuilder) contains(column string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	pattern := "%" + escapeLike(strings.TrimSpace(*value)) + "%"
	w.add(fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, w.arg(pattern)))
}

func (w *whereBuilder) between(column string, from, to *time.Time) {
	if from != nil {
		w.add(fmt.Sprintf("%s >= %s", column, w.arg(*from)))
	}
	if to != nil {
		w.add(fmt.Sprintf("%s <= %s", column, w.arg(*to)))
	}
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// escapeLike neutralises LIKE wildcards so user input matches literally.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// pageClause renders LIMIT/OFFSET. A non-positive limit means unbounded.
func pageClause(limit, skip int) string {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		return fmt.Sprintf(" OFFSET %d", skip)
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, skip)
}
