package layout

// Mode selects how many pages are materialized.
type Mode int

const (
	// FirstPage keeps one page and truncates with a continuation row.
	FirstPage Mode = iota
	// AllPages repeats pagination over the remaining rows.
	AllPages
)

// Options tune a Layout run.
type Options struct {
	Mode Mode
	// TitleLines and SummaryLines reserve vertical space on the page.
	TitleLines   int
	SummaryLines int
	// Capacity overrides the geometry-derived page capacity when positive.
	Capacity int
}

// Table is the laid-out table ready for composition.
type Table struct {
	Columns   []ColumnDescriptor
	Pages     []Page
	Capacity  int
	TotalRows int
}

// Truncated reports whether rows were left out of the table.
func (t Table) Truncated() bool {
	for _, page := range t.Pages {
		if page.Truncated {
			return true
		}
	}
	return false
}

// Layout runs the full pipeline over labels and pre-formatted rows.
func Layout(labels []string, rows []Row, g Geometry, opts Options) Table {
	g = g.WithDefaults()

	columns := AllocateWidths(ClassifyColumns(labels), g.AvailableWidth())
	for i := range columns {
		columns[i].Heading = WrapHeader(columns[i].Label)
	}

	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = Capacity(g, opts.TitleLines, opts.SummaryLines)
	}

	var pages []Page
	if opts.Mode == AllPages {
		pages = PaginateAll(columns, rows, capacity)
	} else {
		pages = []Page{Paginate(columns, rows, capacity)}
	}

	for p := range pages {
		for r, row := range pages[p].DataRows {
			if pages[p].Truncated && r == len(pages[p].DataRows)-1 {
				continue
			}
			pages[p].DataRows[r] = wrapRow(row, columns)
		}
	}

	return Table{
		Columns:   columns,
		Pages:     pages,
		Capacity:  max(capacity, MinCapacity),
		TotalRows: len(rows),
	}
}

func wrapRow(row Row, columns []ColumnDescriptor) Row {
	out := make(Row, len(row))
	for i, cell := range row {
		category := Standard
		if i < len(columns) {
			category = columns[i].Category
		}
		out[i] = WrapCellText(cell, category)
	}
	return out
}
