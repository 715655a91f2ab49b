package export

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// JSONRenderer renders the structured-data envelope.
type JSONRenderer struct{}

type jsonEnvelope struct {
	Fallback       bool           `json:"fallback,omitempty"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
	ExportInfo     jsonExportInfo `json:"exportInfo"`
	Data           []Record       `json:"data"`
	Summary        *jsonSummary   `json:"summary,omitempty"`
}

type jsonExportInfo struct {
	Filename     string        `json:"filename"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	TotalRecords int           `json:"totalRecords"`
	Options      ExportOptions `json:"options"`
}

type jsonSummary struct {
	TotalRecords   int      `json:"totalRecords"`
	FieldsExported []string `json:"fieldsExported"`
}

// Render writes the dataset wrapped in export metadata.
func (r JSONRenderer) Render(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error) {
	ds = datasetOrEmpty(ds)
	formatter, err := NewCellFormatter(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{}
	data := make([]Record, 0, ds.Len())
	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, err := formatter.FormatRow(ds.Fields, row); err != nil {
			if err := skipRow(opts, &stats, i, err); err != nil {
				return stats, err
			}
			continue
		}
		data = append(data, ds.Record(i))
		stats.Rows++
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	envelope := jsonEnvelope{
		Fallback:       opts.JSON.Fallback,
		FallbackReason: opts.JSON.FallbackReason,
		ExportInfo: jsonExportInfo{
			Filename:     opts.Filename,
			GeneratedAt:  generatedAt.UTC(),
			TotalRecords: len(data),
			Options:      opts.Export,
		},
		Data: data,
	}
	if !opts.JSON.OmitSummary {
		fields := append([]string{}, ds.Fields...)
		envelope.Summary = &jsonSummary{TotalRecords: len(data), FieldsExported: fields}
	}

	cw := &countingWriter{w: w}
	encoder := json.NewEncoder(cw)
	if opts.JSON.Indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(envelope); err != nil {
		return stats, NewError(KindInternal, "encode structured data", err)
	}

	stats.Bytes = cw.count
	return stats, nil
}
