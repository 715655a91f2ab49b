package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// ExportCapabilitiesHandler answers with the supported types and formats.
type ExportCapabilitiesHandler struct{}

func NewExportCapabilitiesHandler() *ExportCapabilitiesHandler {
	return &ExportCapabilitiesHandler{}
}

func (h *ExportCapabilitiesHandler) Query(ctx context.Context, msg ExportCapabilities) (Capabilities, error) {
	if err := ctx.Err(); err != nil {
		return Capabilities{}, err
	}
	out := Capabilities{}
	for _, entity := range export.EntityTypes() {
		out.Types = append(out.Types, TypeInfo{Name: string(entity), Label: entity.Label()})
	}
	for _, format := range export.Formats() {
		out.Formats = append(out.Formats, FormatInfo{
			Name:        string(format),
			Extension:   format.Extension(),
			ContentType: format.ContentType(),
		})
	}
	return out, nil
}

// DefaultPreviewLimit caps preview rows when DatasetPreview.Limit is zero.
const DefaultPreviewLimit = 20

// DatasetPreviewHandler resolves datasets for inspection.
type DatasetPreviewHandler struct {
	Resolver export.DatasetResolver
}

func NewDatasetPreviewHandler(resolver export.DatasetResolver) *DatasetPreviewHandler {
	return &DatasetPreviewHandler{Resolver: resolver}
}

func (h *DatasetPreviewHandler) Query(ctx context.Context, msg DatasetPreview) (Preview, error) {
	if h == nil || h.Resolver == nil {
		return Preview{}, errors.New("dataset resolver is required", errors.CategoryInternal).
			WithTextCode("RESOLVER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return Preview{}, err
	}
	entity, err := export.ParseEntityType(string(msg.EntityType))
	if err != nil {
		return Preview{}, err
	}

	ds, err := h.Resolver.Resolve(ctx, export.ResolveQuery{
		EntityType:     entity,
		DateRange:      msg.DateRange,
		SelectedFields: msg.SelectedFields,
	})
	if err != nil {
		return Preview{}, err
	}

	limit := msg.Limit
	if limit == 0 {
		limit = DefaultPreviewLimit
	}
	preview := Preview{EntityType: entity, Total: ds.Len()}
	if ds != nil {
		preview.Fields = append([]string(nil), ds.Fields...)
	}
	for i := 0; i < ds.Len() && i < limit; i++ {
		preview.Records = append(preview.Records, ds.Record(i))
	}
	return preview, nil
}
