package export

import "context"

// ResolveQuery selects the records for one export.
type ResolveQuery struct {
	EntityType     EntityType
	DateRange      *DateRange
	SelectedFields []string
}

// DatasetResolver loads the records for an entity type.
type DatasetResolver interface {
	Resolve(ctx context.Context, query ResolveQuery) (*Dataset, error)
}

// ResolverFunc adapts a function to a DatasetResolver.
type ResolverFunc func(ctx context.Context, query ResolveQuery) (*Dataset, error)

func (f ResolverFunc) Resolve(ctx context.Context, query ResolveQuery) (*Dataset, error) {
	if f == nil {
		return nil, NewError(KindInternal, "resolver func is nil", nil)
	}
	return f(ctx, query)
}
