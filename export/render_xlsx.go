package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-impact-export/layout"
	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows      = 1048576
	defaultSheetName  = "Sheet1"
	defaultDateFormat = "yyyy-mm-dd"
	defaultDateTime   = "yyyy-mm-dd hh:mm:ss"
)

// Spreadsheet column widths, in character units, per layout category.
var xlsxColumnWidths = map[layout.Category]float64{
	layout.Narrow:    10,
	layout.Medium:    16,
	layout.Wide:      28,
	layout.ExtraWide: 40,
	layout.Standard:  20,
}

// XLSXRenderer renders spreadsheet output.
type XLSXRenderer struct{}

// Render writes a single sheet: header in row 1, data from row 2.
func (r XLSXRenderer) Render(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error) {
	ds = datasetOrEmpty(ds)
	formatter, err := NewCellFormatter(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheetName := opts.XLSX.SheetName
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		file.SetSheetName(defaultSheet, sheetName)
	}

	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return RenderStats{}, err
	}

	styles, err := buildXLSXStyles(file)
	if err != nil {
		return RenderStats{}, err
	}

	for i, field := range ds.Fields {
		width := xlsxColumnWidths[layout.ClassifyColumn(field)]
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			return RenderStats{}, err
		}
	}

	rowIndex := 1
	if opts.XLSX.IncludeHeaders {
		headers := make([]interface{}, len(ds.Fields))
		for i, field := range ds.Fields {
			headers[i] = excelize.Cell{StyleID: styles.headerID, Value: field}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), headers); err != nil {
			return RenderStats{}, err
		}
		rowIndex++
	}

	maxRows := opts.XLSX.MaxRows
	if maxRows <= 0 || maxRows > excelMaxRows-1 {
		maxRows = excelMaxRows - 1
	}

	stats := RenderStats{}
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

		if stats.Rows >= int64(maxRows) {
			return stats, NewError(KindValidation, "max rows exceeded", nil)
		}

		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = buildXLSXCell(value, formatter, styles)
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
			return stats, err
		}
		rowIndex++
		stats.Rows++
	}

	if err := stream.Flush(); err != nil {
		return stats, err
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}

type xlsxStyles struct {
	headerID int
	dateID   int
	dateTime int
}

func buildXLSXStyles(file *excelize.File) (xlsxStyles, error) {
	headerID, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E8EEF4"}},
	})
	if err != nil {
		return xlsxStyles{}, err
	}
	dateID, err := newCustomStyle(file, defaultDateFormat)
	if err != nil {
		return xlsxStyles{}, err
	}
	dateTimeID, err := newCustomStyle(file, defaultDateTime)
	if err != nil {
		return xlsxStyles{}, err
	}
	return xlsxStyles{headerID: headerID, dateID: dateID, dateTime: dateTimeID}, nil
}

func newCustomStyle(file *excelize.File, format string) (int, error) {
	return file.NewStyle(&excelize.Style{CustomNumFmt: &format})
}

func buildXLSXCell(value any, formatter CellFormatter, styles xlsxStyles) excelize.Cell {
	switch v := value.(type) {
	case nil:
		return excelize.Cell{Value: ""}
	case time.Time:
		return timeCell(formatter.applyTimezone(v), styles)
	case *time.Time:
		if v == nil {
			return excelize.Cell{Value: ""}
		}
		return timeCell(formatter.applyTimezone(*v), styles)
	case json.Number:
		if f, ok := coerceFloat(v); ok {
			return excelize.Cell{Value: f}
		}
		return excelize.Cell{Value: v.String()}
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, string:
		return excelize.Cell{Value: v}
	default:
		text, _ := formatter.FormatValue(value)
		return excelize.Cell{Value: text}
	}
}

func timeCell(value time.Time, styles xlsxStyles) excelize.Cell {
	if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 {
		return excelize.Cell{Value: value, StyleID: styles.dateID}
	}
	return excelize.Cell{Value: value, StyleID: styles.dateTime}
}
