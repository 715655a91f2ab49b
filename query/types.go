package query

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// ExportCapabilities lists the entity types and formats the service accepts.
type ExportCapabilities struct{}

func (ExportCapabilities) Type() string { return "export:capabilities" }

func (ExportCapabilities) Validate() error { return nil }

// TypeInfo describes an exportable entity type.
type TypeInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// FormatInfo describes an output format.
type FormatInfo struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
}

// Capabilities is the ExportCapabilities answer.
type Capabilities struct {
	Types   []TypeInfo   `json:"types"`
	Formats []FormatInfo `json:"formats"`
}

// DatasetPreview resolves a dataset without rendering it.
type DatasetPreview struct {
	EntityType     export.EntityType
	DateRange      *export.DateRange
	SelectedFields []string
	Limit          int
}

func (DatasetPreview) Type() string { return "export:preview" }

func (msg DatasetPreview) Validate() error {
	if msg.EntityType == "" {
		return errors.New("export type is required", errors.CategoryValidation).
			WithTextCode("TYPE_REQUIRED")
	}
	if msg.Limit < 0 {
		return errors.New("limit must not be negative", errors.CategoryValidation).
			WithTextCode("LIMIT_INVALID")
	}
	return nil
}

// Preview is the DatasetPreview answer. Records holds at most Limit rows
// while Total counts every resolved row.
type Preview struct {
	EntityType export.EntityType `json:"type"`
	Fields     []string          `json:"fields"`
	Total      int               `json:"total"`
	Records    []export.Record   `json:"records"`
}
