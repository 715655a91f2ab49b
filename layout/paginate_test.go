package layout

import (
	"fmt"
	"testing"
)

func makeRows(n, cols int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		row := make(Row, cols)
		for j := range row {
			row[j] = fmt.Sprintf("r%dc%d", i, j)
		}
		rows[i] = row
	}
	return rows
}

func TestPaginate_ContinuationRow(t *testing.T) {
	header := ClassifyColumns([]string{"id", "name", "amount"})
	page := Paginate(header, makeRows(60, 3), 40)

	if !page.Truncated {
		t.Fatalf("expected truncated page")
	}
	if page.RowCount() != 42 {
		t.Fatalf("expected 42 rows, got %d", page.RowCount())
	}
	last := page.DataRows[len(page.DataRows)-1]
	if last[2] != "Showing 40 of 60 records" {
		t.Fatalf("unexpected continuation row %q", last)
	}
	if last[0] != "" || last[1] != "" {
		t.Fatalf("expected leading cells empty, got %q", last)
	}
	continuations := 0
	for _, row := range page.DataRows {
		if row[len(row)-1] == page.Note {
			continuations++
		}
	}
	if continuations != 1 {
		t.Fatalf("expected exactly one continuation row, got %d", continuations)
	}
}

func TestPaginate_RowCountProperty(t *testing.T) {
	header := ClassifyColumns([]string{"a", "b"})
	for capacity := MinCapacity; capacity <= 12; capacity++ {
		for n := 0; n <= 30; n++ {
			page := Paginate(header, makeRows(n, 2), capacity)
			if n <= capacity {
				if page.RowCount() != n+1 || page.Truncated {
					t.Fatalf("n=%d c=%d: expected %d rows untruncated, got %d truncated=%v", n, capacity, n+1, page.RowCount(), page.Truncated)
				}
				continue
			}
			if page.RowCount() != capacity+2 || !page.Truncated {
				t.Fatalf("n=%d c=%d: expected %d rows truncated, got %d truncated=%v", n, capacity, capacity+2, page.RowCount(), page.Truncated)
			}
			if len(page.HeaderRow) != 2 {
				t.Fatalf("header dropped")
			}
		}
	}
}

func TestPaginate_CapacityFloor(t *testing.T) {
	page := Paginate(nil, makeRows(5, 1), 1)
	if len(page.DataRows) != MinCapacity+1 {
		t.Fatalf("expected capacity floor of %d, got %d data rows", MinCapacity, len(page.DataRows))
	}
	if page.DataRows[MinCapacity][0] != "Showing 3 of 5 records" {
		t.Fatalf("unexpected note row %q", page.DataRows[MinCapacity])
	}
}

func TestPaginateAll(t *testing.T) {
	header := ClassifyColumns([]string{"id"})
	pages := PaginateAll(header, makeRows(25, 1), 10)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	total := 0
	for _, page := range pages {
		if page.Truncated {
			t.Fatalf("all-pages mode never truncates")
		}
		if len(page.HeaderRow) != 1 {
			t.Fatalf("expected header on every page")
		}
		total += len(page.DataRows)
	}
	if total != 25 {
		t.Fatalf("expected 25 rows, got %d", total)
	}

	if empty := PaginateAll(header, nil, 10); len(empty) != 1 {
		t.Fatalf("expected one empty page, got %d", len(empty))
	}
}

func TestCapacity(t *testing.T) {
	g := A4Landscape()
	// 595 - (36+36+54+24+18) = 427; floor(427/20) - 1 = 20.
	if got := Capacity(g, 1, 0); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	// Two title lines and four summary lines: 427 - 18 - 52 = 357 -> 16.
	if got := Capacity(g, 2, 4); got != 16 {
		t.Fatalf("expected 16, got %d", got)
	}

	tiny := g
	tiny.PageHeight = 200
	if got := Capacity(tiny, 2, 10); got != MinCapacity {
		t.Fatalf("expected floor of %d, got %d", MinCapacity, got)
	}
}
