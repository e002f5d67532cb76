package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
)

// column maps a plan field onto a SQL column and the Go type its filter
// value is bound as.
type column struct {
	name string
	kind query.ValueKind
}

// listSpec describes how one table is listed.
type listSpec struct {
	table   string
	selects string
	pk      string
	fields  map[string]column
}

// build renders the count and page statements for plan. The sort field is
// always followed by the primary key in the same direction so that reversing
// the direction reverses the result exactly.
func (s listSpec) build(plan query.Plan) (countSQL, pageSQL string, args []any, err error) {
	var where string
	for i, c := range plan.Filters {
		col, ok := s.fields[c.Field]
		if !ok {
			return "", "", nil, fmt.Errorf("%s: unknown filter field %q", s.table, c.Field)
		}
		v, err := bindValue(col.kind, c.Value)
		if err != nil {
			return "", "", nil, fmt.Errorf("%s: filter %s: %w", s.table, c.Field, err)
		}
		args = append(args, v)
		if i == 0 {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += col.name + " = $" + strconv.Itoa(len(args))
	}

	order := " ORDER BY " + s.pk + " ASC"
	if plan.Direction != query.DirectionNone {
		col, ok := s.fields[plan.SortField]
		if !ok {
			return "", "", nil, fmt.Errorf("%s: unknown sort field %q", s.table, plan.SortField)
		}
		dir := "ASC"
		if plan.Direction == query.Descending {
			dir = "DESC"
		}
		order = " ORDER BY " + col.name + " " + dir
		if col.name != s.pk {
			order += ", " + s.pk + " " + dir
		}
	}

	countSQL = "SELECT COUNT(*) FROM " + s.table + where
	n := len(args)
	pageSQL = "SELECT " + s.selects + " FROM " + s.table + where + order +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
	return countSQL, pageSQL, args, nil
}

func bindValue(kind query.ValueKind, v string) (any, error) {
	switch kind {
	case query.Date:
		d, err := model.ParseDate(v)
		if err != nil {
			return nil, err
		}
		return d.Time, nil
	case query.Integer:
		return strconv.ParseInt(v, 10, 64)
	case query.Integer32:
		return strconv.ParseInt(v, 10, 32)
	default:
		return v, nil
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// list runs plan against db and scans each row with scan.
func list[T any](ctx context.Context, db DBTX, spec listSpec, plan query.Plan, scan func(scanner) (T, error)) ([]T, int, error) {
	countSQL, pageSQL, args, err := spec.build(plan)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append(make([]any, 0, len(args)+2), args...), plan.Limit(), plan.Offset())
	rows, err := db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// bigintArray renders ids as a Postgres array literal for ANY($n::bigint[]).
func bigintArray(ids []int64) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('}')
	return b.String()
}
