package compose

import (
	"io"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-impact-export/layout"
)

var documentTemplate = pongo2.Must(pongo2.FromString(documentHTML))

type columnView struct {
	Category string
	Width    string
	Lines    []string
}

type rowView struct {
	Cells [][]string
	Zebra bool
}

type pageView struct {
	Number  int
	Total   int
	First   bool
	Footer  string
	Columns []columnView
	Rows    []rowView
	Note    string
}

// RenderHTML writes doc as a self-contained HTML page sequence.
func RenderHTML(w io.Writer, doc Document) error {
	g := doc.Geometry.WithDefaults()
	style := doc.Style
	if style == (StyleConfig{}) {
		style = DefaultStyle()
	}

	pages := make([]pageView, 0, doc.PageCount())
	err := doc.Walk(func(number, total int, page layout.Page) error {
		pages = append(pages, newPageView(number, total, page, style))
		return nil
	})
	if err != nil {
		return err
	}

	return documentTemplate.ExecuteWriter(pongo2.Context{
		"header":      doc.Header,
		"title":       strings.Join(doc.TitleLines, " "),
		"title_lines": doc.TitleLines,
		"summary":     doc.Summary,
		"pages":       pages,
		"page_width":  points(g.PageWidth),
		"page_height": points(g.PageHeight),
		"margins": strings.Join([]string{
			points(g.MarginTop), points(g.MarginRight), points(g.MarginBottom), points(g.MarginLeft),
		}, " "),
		"header_height": points(g.HeaderHeight),
		"footer_height": points(g.FooterHeight),
		"row_height":    points(g.RowHeight),
		"font_family":   style.FontFamily(),
		"base_size":     points(style.BaseFontSize()),
		"head_size":     points(style.HeaderFontSize()),
		"primary":       style.PrimaryColor(),
		"accent":        style.AccentColor(),
		"zebra":         style.ZebraColor(),
	}, w)
}

func newPageView(number, total int, page layout.Page, style StyleConfig) pageView {
	view := pageView{
		Number: number,
		Total:  total,
		First:  number == 1,
		Footer: style.Footer(number, total),
		Note:   page.Note,
	}
	for _, col := range page.HeaderRow {
		view.Columns = append(view.Columns, columnView{
			Category: string(col.Category),
			Width:    points(col.Width),
			Lines:    strings.Split(col.Heading, "\n"),
		})
	}

	rows := page.DataRows
	if page.Truncated && len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}
	for i, row := range rows {
		cells := make([][]string, len(row))
		for j, cell := range row {
			cells[j] = strings.Split(cell, "\n")
		}
		view.Rows = append(view.Rows, rowView{Cells: cells, Zebra: i%2 == 1})
	}
	return view
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}

const documentHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ title }}</title>
<style>
@page { size: {{ page_width }} {{ page_height }}; margin: {{ margins }}; }
* { box-sizing: border-box; }
body { margin: 0; font-family: {{ font_family }}; font-size: {{ base_size }}; color: #222; }
.page { page-break-after: always; }
.page:last-child { page-break-after: auto; }
.brand { height: {{ header_height }}; border-bottom: 2px solid {{ primary }}; display: flex; justify-content: space-between; align-items: flex-end; }
.brand-name { color: {{ primary }}; font-size: 14pt; font-weight: bold; }
.tagline, .generated { color: #666; }
h1 { margin: 6pt 0 4pt; font-size: 13pt; color: {{ primary }}; }
.summary { margin: 0 0 6pt; padding: 0; list-style: none; }
table { width: 100%; border-collapse: collapse; table-layout: fixed; }
th { background: {{ accent }}; font-size: {{ head_size }}; text-align: left; vertical-align: bottom; }
th, td { padding: 2pt 3pt; border-bottom: 0.5pt solid #ccc; overflow: hidden; }
td { height: {{ row_height }}; vertical-align: top; }
tr.zebra td { background: {{ zebra }}; }
tr.continuation td { font-style: italic; text-align: right; color: #666; }
.footer { height: {{ footer_height }}; border-top: 1px solid {{ primary }}; color: #666; text-align: right; padding-top: 4pt; }
</style>
</head>
<body>
{% for page in pages %}<section class="page" data-page="{{ page.Number }}">
<div class="brand"><div><span class="brand-name">{{ header.Brand }}</span>{% if header.Tagline %} <span class="tagline">{{ header.Tagline }}</span>{% endif %}</div><span class="generated">{{ header.GeneratedAt }}</span></div>
{% if page.First %}<h1>{% for line in title_lines %}{{ line }}{% if not forloop.Last %}<br>{% endif %}{% endfor %}</h1>
{% if summary %}<ul class="summary">{% for item in summary %}<li>{{ item }}</li>{% endfor %}</ul>{% endif %}{% endif %}
<table>
<colgroup>{% for col in page.Columns %}<col style="width: {{ col.Width }}">{% endfor %}</colgroup>
<thead><tr>{% for col in page.Columns %}<th class="{{ col.Category }}">{% for line in col.Lines %}{{ line }}{% if not forloop.Last %}<br>{% endif %}{% endfor %}</th>{% endfor %}</tr></thead>
<tbody>
{% for row in page.Rows %}<tr{% if row.Zebra %} class="zebra"{% endif %}>{% for cell in row.Cells %}<td>{% for line in cell %}{{ line }}{% if not forloop.Last %}<br>{% endif %}{% endfor %}</td>{% endfor %}</tr>
{% endfor %}{% if page.Note %}<tr class="continuation"><td colspan="{{ page.Columns|length }}">{{ page.Note }}</td></tr>
{% endif %}</tbody>
</table>
<div class="footer">{{ page.Footer }}</div>
</section>
{% endfor %}</body>
</html>
`
