package export

import (
	"context"
	"io"
)

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// skipRow records a row that failed to render. Only row_render errors are
// skippable; anything else is returned to abort the export.
func skipRow(opts RenderOptions, stats *RenderStats, index int, err error) error {
	if KindFromError(err) != KindRowRender {
		return err
	}
	stats.Skipped++
	if opts.OnRowError != nil {
		opts.OnRowError(index, err)
	}
	return nil
}

func datasetOrEmpty(ds *Dataset) *Dataset {
	if ds == nil {
		return &Dataset{}
	}
	return ds
}

// FormatDataset formats every row as display text for generators that lay
// out text themselves. Rows failing with a row_render error are skipped and
// counted; any other error aborts.
func FormatDataset(ctx context.Context, ds *Dataset, opts RenderOptions) ([][]string, RenderStats, error) {
	ds = datasetOrEmpty(ds)
	formatter, err := NewCellFormatter(opts.Format)
	if err != nil {
		return nil, RenderStats{}, err
	}

	stats := RenderStats{}
	rows := make([][]string, 0, ds.Len())
	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		cells, err := formatter.FormatRow(ds.Fields, row)
		if err != nil {
			if err := skipRow(opts, &stats, i, err); err != nil {
				return nil, stats, err
			}
			continue
		}
		rows = append(rows, cells)
		stats.Rows++
	}
	return rows, stats, nil
}
