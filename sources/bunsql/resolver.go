package exportbun

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goliatone/go-impact-export/export"
	"github.com/uptrace/bun"
)

// Resolver loads datasets from SQL tables through bun.
type Resolver struct {
	DB       bun.IDB
	Registry *Registry
	// MaxRows caps the rows read per export; zero means no limit.
	MaxRows int
}

var _ export.DatasetResolver = (*Resolver)(nil)

// NewResolver creates a resolver over db.
func NewResolver(db bun.IDB, registry *Registry) *Resolver {
	return &Resolver{DB: db, Registry: registry}
}

// Resolve selects the requested columns of the entity table, filtered by
// the date range and ordered by the table's order column.
func (r *Resolver) Resolve(ctx context.Context, query export.ResolveQuery) (*export.Dataset, error) {
	if r == nil || r.DB == nil {
		return nil, export.NewError(export.KindInternal, "resolver database not configured", nil)
	}
	spec, ok := r.Registry.Resolve(query.EntityType)
	if !ok {
		return nil, export.NewError(export.KindNotImpl, fmt.Sprintf("no table registered for %q", query.EntityType), nil)
	}

	columns, err := selectColumns(spec, query.SelectedFields)
	if err != nil {
		return nil, err
	}

	q := r.DB.NewSelect().TableExpr("?", bun.Ident(spec.Table))
	for _, col := range columns {
		q = q.ColumnExpr("?", bun.Ident(col))
	}
	if spec.DateColumn != "" && !query.DateRange.IsZero() {
		if from := query.DateRange.From; !from.IsZero() {
			q = q.Where("? >= ?", bun.Ident(spec.DateColumn), from.UTC())
		}
		if to := query.DateRange.UpperBound(); !to.IsZero() {
			q = q.Where("? <= ?", bun.Ident(spec.DateColumn), to.UTC())
		}
	}
	if order := spec.orderColumn(); order != "" {
		direction := "ASC"
		if spec.Descending {
			direction = "DESC"
		}
		q = q.OrderExpr("? "+direction, bun.Ident(order))
	}
	if r.MaxRows > 0 {
		q = q.Limit(r.MaxRows)
	}

	rows, err := q.Rows(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds, err := scanDataset(rows, columns)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func selectColumns(spec TableSpec, selected []string) ([]string, error) {
	if len(selected) == 0 {
		return append([]string(nil), spec.Columns...), nil
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		if !spec.hasColumn(name) {
			return nil, export.NewError(export.KindValidation, fmt.Sprintf("unknown field %q", name), nil).
				WithAllowed("selectedFields", spec.Columns)
		}
		wanted[name] = struct{}{}
	}
	columns := make([]string, 0, len(wanted))
	for _, col := range spec.Columns {
		if _, ok := wanted[col]; ok {
			columns = append(columns, col)
		}
	}
	return columns, nil
}

func scanDataset(rows *sql.Rows, columns []string) (*export.Dataset, error) {
	ds := export.NewDataset(columns)
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(export.Row, len(columns))
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[i] = value
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}
