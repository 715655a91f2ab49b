package compose

import (
	"time"

	"github.com/goliatone/go-impact-export/layout"
)

// Input is the content of one document.
type Input struct {
	Title string
	// Summary holds precomputed metric lines for the executive summary.
	Summary []string
	// Fields are the dataset field names; headings are derived from them.
	Fields      []string
	Rows        []layout.Row
	GeneratedAt time.Time
	Mode        layout.Mode
	// Capacity overrides the geometry-derived rows per page when positive.
	Capacity int
}

// Header is the branded block at the top of every page.
type Header struct {
	Brand       string
	Tagline     string
	GeneratedAt string
}

// Document is a composed page sequence.
type Document struct {
	Header     Header
	TitleLines []string
	Summary    []string
	Table      layout.Table
	Geometry   layout.Geometry
	Style      StyleConfig
}

// PageCallback is invoked once per physical page, in order. number starts
// at 1.
type PageCallback func(number, total int, page layout.Page) error

// PageCount is the number of physical pages.
func (d Document) PageCount() int {
	return len(d.Table.Pages)
}

// Walk calls cb for every page and stops at the first error.
func (d Document) Walk(cb PageCallback) error {
	total := d.PageCount()
	for i, page := range d.Table.Pages {
		if err := cb(i+1, total, page); err != nil {
			return err
		}
	}
	return nil
}

// Composer builds Documents with a fixed style and geometry.
type Composer struct {
	style    StyleConfig
	geometry layout.Geometry
}

// NewComposer creates a Composer. A zero geometry means A4 landscape.
func NewComposer(style StyleConfig, geometry layout.Geometry) *Composer {
	return &Composer{style: style, geometry: geometry.WithDefaults()}
}

// Style returns the composer's style.
func (c *Composer) Style() StyleConfig {
	return c.style
}

// Geometry returns the composer's page geometry.
func (c *Composer) Geometry() layout.Geometry {
	return c.geometry
}

// Compose lays out the table and assembles the header, title and summary.
func (c *Composer) Compose(in Input) Document {
	titleLines := layout.WrapTitle(in.Title)
	summary := make([]string, 0, len(in.Summary))
	for _, line := range in.Summary {
		if line != "" {
			summary = append(summary, line)
		}
	}

	labels := make([]string, len(in.Fields))
	for i, field := range in.Fields {
		labels[i] = layout.HumanizeLabel(field)
		if labels[i] == "" {
			labels[i] = field
		}
	}

	table := layout.Layout(labels, in.Rows, c.geometry, layout.Options{
		Mode:         in.Mode,
		TitleLines:   len(titleLines),
		SummaryLines: len(summary),
		Capacity:     in.Capacity,
	})

	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	return Document{
		Header: Header{
			Brand:       c.style.Brand(),
			Tagline:     c.style.Tagline(),
			GeneratedAt: generatedAt.UTC().Format("2006-01-02 15:04 MST"),
		},
		TitleLines: titleLines,
		Summary:    summary,
		Table:      table,
		Geometry:   c.geometry,
		Style:      c.style,
	}
}
