package layout

import (
	"fmt"
	"math"
)

// MinCapacity is the smallest number of data rows a page holds.
const MinCapacity = 3

// Row is one table row of display text, aligned with the header columns.
type Row []string

// Page is one physical page of the table.
type Page struct {
	HeaderRow []ColumnDescriptor `json:"header_row"`
	// DataRows holds the data rows; on a truncated page the last entry is
	// the continuation row.
	DataRows  []Row `json:"data_rows"`
	Truncated bool  `json:"truncated"`
	// Note is the continuation text when Truncated is set.
	Note string `json:"note,omitempty"`
}

// RowCount is the number of rendered rows including the header.
func (p Page) RowCount() int {
	return 1 + len(p.DataRows)
}

// Capacity is the number of data rows that fit on a page once the header,
// footer, title and summary space is reserved. One row is held back for
// the table header. The result is never below MinCapacity.
func Capacity(g Geometry, titleLines, summaryLines int) int {
	g = g.WithDefaults()
	usable := g.PageHeight - g.Reserved(titleLines, summaryLines)
	rows := int(math.Floor(usable/g.RowHeight)) - 1
	return max(rows, MinCapacity)
}

// ContinuationNote reports how many of total rows were shown.
func ContinuationNote(shown, total int) string {
	return fmt.Sprintf("Showing %d of %d records", shown, total)
}

// Paginate materializes the first page. When rows exceed capacity the page
// keeps the first capacity rows and a continuation row whose last cell
// carries ContinuationNote.
func Paginate(header []ColumnDescriptor, rows []Row, capacity int) Page {
	capacity = max(capacity, MinCapacity)
	page := Page{HeaderRow: header}
	if len(rows) <= capacity {
		page.DataRows = append([]Row(nil), rows...)
		return page
	}

	page.DataRows = make([]Row, 0, capacity+1)
	page.DataRows = append(page.DataRows, rows[:capacity]...)
	page.Note = ContinuationNote(capacity, len(rows))
	page.DataRows = append(page.DataRows, continuationRow(len(header), page.Note))
	page.Truncated = true
	return page
}

// PaginateAll splits rows across as many pages as needed. Every page
// repeats the header and none carries a continuation row. An empty table
// still yields one page.
func PaginateAll(header []ColumnDescriptor, rows []Row, capacity int) []Page {
	capacity = max(capacity, MinCapacity)
	if len(rows) == 0 {
		return []Page{{HeaderRow: header}}
	}
	pages := make([]Page, 0, (len(rows)+capacity-1)/capacity)
	for start := 0; start < len(rows); start += capacity {
		end := min(start+capacity, len(rows))
		pages = append(pages, Page{
			HeaderRow: header,
			DataRows:  append([]Row(nil), rows[start:end]...),
		})
	}
	return pages
}

func continuationRow(columns int, note string) Row {
	row := make(Row, max(columns, 1))
	row[len(row)-1] = note
	return row
}
