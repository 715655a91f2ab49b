package exportbun

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-impact-export/export"
)

// TableSpec maps an entity type to the table that stores it.
type TableSpec struct {
	Entity export.EntityType
	Table  string
	// DateColumn is filtered by the request date range; empty disables filtering.
	DateColumn string
	// Columns are the exported columns, in dataset order.
	Columns []string
	// OrderBy defaults to DateColumn, then the first column.
	OrderBy    string
	Descending bool
}

func (s TableSpec) orderColumn() string {
	switch {
	case s.OrderBy != "":
		return s.OrderBy
	case s.DateColumn != "":
		return s.DateColumn
	case len(s.Columns) > 0:
		return s.Columns[0]
	default:
		return ""
	}
}

func (s TableSpec) hasColumn(name string) bool {
	for _, col := range s.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Registry stores table specs keyed by entity type.
type Registry struct {
	mu    sync.RWMutex
	specs map[export.EntityType]TableSpec
}

// NewRegistry creates a registry holding specs.
func NewRegistry(specs ...TableSpec) (*Registry, error) {
	r := &Registry{specs: make(map[export.EntityType]TableSpec)}
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a table spec.
func (r *Registry) Register(spec TableSpec) error {
	if !spec.Entity.Valid() {
		return export.NewError(export.KindValidation, fmt.Sprintf("invalid entity type %q", spec.Entity), nil).
			WithAllowed("type", export.EntityTypeNames())
	}
	if spec.Table == "" {
		return export.NewError(export.KindValidation, "table name is required", nil)
	}
	if len(spec.Columns) == 0 {
		return export.NewError(export.KindValidation, fmt.Sprintf("table %q has no columns", spec.Table), nil)
	}
	if spec.DateColumn != "" && !spec.hasColumn(spec.DateColumn) {
		return export.NewError(export.KindValidation, fmt.Sprintf("date column %q is not exported by %q", spec.DateColumn, spec.Table), nil)
	}
	spec.Columns = append([]string(nil), spec.Columns...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Entity]; exists {
		return export.NewError(export.KindValidation, fmt.Sprintf("entity %q already registered", spec.Entity), nil)
	}
	r.specs[spec.Entity] = spec
	return nil
}

// Resolve returns the table spec for entity.
func (r *Registry) Resolve(entity export.EntityType) (TableSpec, bool) {
	if r == nil {
		return TableSpec{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[entity]
	return spec, ok
}
