package compose

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-impact-export/layout"
)

func sampleRows(n int) []layout.Row {
	rows := make([]layout.Row, n)
	for i := range rows {
		rows[i] = layout.Row{fmt.Sprintf("%d", i+1), fmt.Sprintf("Volunteer %d", i+1), "Nairobi"}
	}
	return rows
}

func TestComposer_FirstPage(t *testing.T) {
	composer := NewComposer(DefaultStyle(), layout.A4Landscape())
	doc := composer.Compose(Input{
		Title:       "Volunteer Engagement Export Report for the Eastern Region Community Programs",
		Summary:     []string{"Total volunteers: 60", "", "Active: 52"},
		Fields:      []string{"id", "full_name", "location"},
		Rows:        sampleRows(60),
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Capacity:    40,
	})

	if len(doc.TitleLines) != 2 {
		t.Fatalf("expected title on 2 lines, got %q", doc.TitleLines)
	}
	if len(doc.Summary) != 2 {
		t.Fatalf("expected blank summary lines dropped, got %q", doc.Summary)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("expected one page, got %d", doc.PageCount())
	}
	page := doc.Table.Pages[0]
	if page.Note != "Showing 40 of 60 records" {
		t.Fatalf("unexpected note %q", page.Note)
	}
	if page.HeaderRow[1].Label != "Full Name" {
		t.Fatalf("expected humanized label, got %q", page.HeaderRow[1].Label)
	}
	if doc.Header.GeneratedAt != "2024-03-01 10:00 UTC" {
		t.Fatalf("unexpected generated stamp %q", doc.Header.GeneratedAt)
	}
}

func TestDocument_WalkNumbersPages(t *testing.T) {
	composer := NewComposer(DefaultStyle(), layout.Geometry{})
	doc := composer.Compose(Input{
		Fields:   []string{"id", "full_name", "location"},
		Rows:     sampleRows(25),
		Mode:     layout.AllPages,
		Capacity: 10,
	})

	var numbers []int
	err := doc.Walk(func(number, total int, page layout.Page) error {
		if total != 3 {
			t.Fatalf("expected total 3, got %d", total)
		}
		numbers = append(numbers, number)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if fmt.Sprint(numbers) != "[1 2 3]" {
		t.Fatalf("expected monotonic numbering, got %v", numbers)
	}

	stop := errors.New("stop")
	calls := 0
	err = doc.Walk(func(number, total int, page layout.Page) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected walk to stop at first error, got %v after %d calls", err, calls)
	}
}

func TestRenderHTML(t *testing.T) {
	composer := NewComposer(NewStyle(WithBrand("Helping <Hands>", "")), layout.A4Landscape())
	rows := sampleRows(5)
	rows[0][1] = "<script>alert(1)</script>"
	doc := composer.Compose(Input{
		Title:    "Donations Export Report",
		Summary:  []string{"Total raised: $1,200"},
		Fields:   []string{"id", "Estimated Beneficiaries Count", "location"},
		Rows:     rows,
		Capacity: 3,
	})

	buf := &bytes.Buffer{}
	if err := RenderHTML(buf, doc); err != nil {
		t.Fatalf("render html: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"@page { size: 842pt 595pt; margin: 36pt 36pt 36pt 36pt; }",
		"Donations Export Report",
		"<li>Total raised: $1,200</li>",
		"Estimated<br>Beneficiarie...",
		"Showing 3 of 5 records",
		"Confidential | Page 1 of 1",
		"Helping &lt;Hands&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected cell content escaped")
	}
	if got := strings.Count(out, "<section class=\"page\""); got != 1 {
		t.Fatalf("expected one page section, got %d", got)
	}
	if got := strings.Count(out, "<tr"); got != 5 {
		// header + 3 data rows + continuation row
		t.Fatalf("expected 5 table rows, got %d", got)
	}
}

func TestRenderHTML_AllPages(t *testing.T) {
	composer := NewComposer(DefaultStyle(), layout.A4Landscape())
	doc := composer.Compose(Input{
		Title:    "Projects",
		Fields:   []string{"id", "full_name", "location"},
		Rows:     sampleRows(7),
		Mode:     layout.AllPages,
		Capacity: 3,
	})

	buf := &bytes.Buffer{}
	if err := RenderHTML(buf, doc); err != nil {
		t.Fatalf("render html: %v", err)
	}
	out := buf.String()
	if got := strings.Count(out, "<section class=\"page\""); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if !strings.Contains(out, "Page 3 of 3") {
		t.Fatalf("expected last page footer")
	}
	if got := strings.Count(out, "<h1>"); got != 1 {
		t.Fatalf("expected title on first page only, got %d", got)
	}
}
