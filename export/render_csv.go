package export

import (
	"context"
	"encoding/csv"
	"io"
)

// CSVRenderer renders delimited-text output.
type CSVRenderer struct {
	// Delimiter applies when the render options leave it unset.
	Delimiter rune
}

// Render writes the header (when enabled) and one line per row in the
// dataset's field order.
func (r CSVRenderer) Render(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error) {
	ds = datasetOrEmpty(ds)
	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	comma := opts.CSV.Delimiter
	if comma == 0 {
		comma = r.Delimiter
	}
	if comma != 0 {
		writer.Comma = comma
	}

	formatter, err := NewCellFormatter(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	if opts.CSV.IncludeHeaders {
		if err := writer.Write(ds.Fields); err != nil {
			return RenderStats{}, err
		}
	}

	stats := RenderStats{}
	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		record, err := formatter.FormatRow(ds.Fields, row)
		if err != nil {
			if err := skipRow(opts, &stats, i, err); err != nil {
				return stats, err
			}
			continue
		}
		if err := writer.Write(record); err != nil {
			return stats, err
		}
		stats.Rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, err
	}

	stats.Bytes = cw.count
	return stats, nil
}
