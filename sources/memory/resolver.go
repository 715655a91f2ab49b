package exportmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/goliatone/go-impact-export/export"
)

// Resolver serves datasets held in memory. Unregistered entities resolve to
// an empty dataset.
type Resolver struct {
	mu   sync.RWMutex
	sets map[export.EntityType]entry
}

type entry struct {
	ds        *export.Dataset
	dateField string
}

var _ export.DatasetResolver = (*Resolver)(nil)

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{sets: make(map[export.EntityType]entry)}
}

// Register stores ds for entity. dateField names the column filtered by
// date ranges; empty disables filtering.
func (r *Resolver) Register(entity export.EntityType, ds *export.Dataset, dateField string) error {
	if !entity.Valid() {
		return export.NewError(export.KindValidation, fmt.Sprintf("invalid entity type %q", entity), nil).
			WithAllowed("type", export.EntityTypeNames())
	}
	if ds == nil {
		ds = export.NewDataset(nil)
	}
	if dateField != "" && len(ds.Fields) > 0 && ds.FieldIndex(dateField) < 0 {
		return export.NewError(export.KindValidation, fmt.Sprintf("date field %q not present", dateField), nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[entity] = entry{ds: ds, dateField: dateField}
	return nil
}

// RegisterRecords stores records for entity; the first record fixes the field order.
func (r *Resolver) RegisterRecords(entity export.EntityType, records []export.Record, dateField string) error {
	return r.Register(entity, export.DatasetFromRecords(records), dateField)
}

// Fixtures is the JSON document accepted by LoadFixtures: entity type to records.
type Fixtures map[export.EntityType][]export.Record

// LoadFixtures decodes a fixtures document and registers every entity in it.
// dateFields maps entity types to their date column.
func (r *Resolver) LoadFixtures(src io.Reader, dateFields map[export.EntityType]string) error {
	var fixtures Fixtures
	if err := json.NewDecoder(src).Decode(&fixtures); err != nil {
		return export.NewError(export.KindValidation, "invalid fixtures document", err)
	}
	for entity, records := range fixtures {
		if err := r.RegisterRecords(entity, records, dateFields[entity]); err != nil {
			return err
		}
	}
	return nil
}

// Resolve filters the stored dataset by date range, then projects the selected fields.
func (r *Resolver) Resolve(ctx context.Context, query export.ResolveQuery) (*export.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	e, ok := r.sets[query.EntityType]
	r.mu.RUnlock()
	if !ok {
		return export.NewDataset(nil), nil
	}

	ds := e.ds
	if e.dateField != "" && !query.DateRange.IsZero() {
		filtered, err := ds.FilterDateRange(e.dateField, query.DateRange)
		if err != nil {
			return nil, err
		}
		ds = filtered
	}
	return ds.Project(query.SelectedFields)
}
