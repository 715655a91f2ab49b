package layout

import "math"

// Geometry describes the printable page in points.
type Geometry struct {
	PageWidth  float64 `json:"page_width" yaml:"page_width"`
	PageHeight float64 `json:"page_height" yaml:"page_height"`

	MarginTop    float64 `json:"margin_top" yaml:"margin_top"`
	MarginRight  float64 `json:"margin_right" yaml:"margin_right"`
	MarginBottom float64 `json:"margin_bottom" yaml:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left" yaml:"margin_left"`

	// HeaderHeight and FooterHeight are the branded blocks on every page.
	HeaderHeight float64 `json:"header_height" yaml:"header_height"`
	FooterHeight float64 `json:"footer_height" yaml:"footer_height"`

	TitleLineHeight   float64 `json:"title_line_height" yaml:"title_line_height"`
	SummaryLineHeight float64 `json:"summary_line_height" yaml:"summary_line_height"`
	RowHeight         float64 `json:"row_height" yaml:"row_height"`
}

// A4Landscape returns the default page geometry.
func A4Landscape() Geometry {
	return Geometry{
		PageWidth:         842,
		PageHeight:        595,
		MarginTop:         36,
		MarginRight:       36,
		MarginBottom:      36,
		MarginLeft:        36,
		HeaderHeight:      54,
		FooterHeight:      24,
		TitleLineHeight:   18,
		SummaryLineHeight: 13,
		RowHeight:         20,
	}
}

// A4Portrait returns the default geometry rotated to portrait.
func A4Portrait() Geometry {
	g := A4Landscape()
	g.PageWidth, g.PageHeight = g.PageHeight, g.PageWidth
	return g
}

// MaxPageDimension is the largest page side accepted, in points. It is the
// 200 inch limit of PDF user space.
const MaxPageDimension = 14400.0

// Valid reports whether both page sides are positive, finite and no larger
// than MaxPageDimension.
func (g Geometry) Valid() bool {
	return validDimension(g.PageWidth) && validDimension(g.PageHeight)
}

func validDimension(v float64) bool {
	return v > 0 && v <= MaxPageDimension
}

// WithDefaults returns A4Landscape for a zero Geometry. Otherwise a page
// size outside (0, MaxPageDimension], a missing row height and any
// negative or oversized spacing is taken from A4Landscape.
func (g Geometry) WithDefaults() Geometry {
	def := A4Landscape()
	if g == (Geometry{}) {
		return def
	}
	if !g.Valid() {
		g.PageWidth, g.PageHeight = def.PageWidth, def.PageHeight
	}
	fill := func(v *float64, fallback float64) {
		if *v < 0 || *v > MaxPageDimension || math.IsNaN(*v) {
			*v = fallback
		}
	}
	fill(&g.MarginTop, def.MarginTop)
	fill(&g.MarginRight, def.MarginRight)
	fill(&g.MarginBottom, def.MarginBottom)
	fill(&g.MarginLeft, def.MarginLeft)
	fill(&g.HeaderHeight, def.HeaderHeight)
	fill(&g.FooterHeight, def.FooterHeight)
	fill(&g.TitleLineHeight, def.TitleLineHeight)
	fill(&g.SummaryLineHeight, def.SummaryLineHeight)
	if !validDimension(g.RowHeight) {
		g.RowHeight = def.RowHeight
	}
	return g
}

// AvailableWidth is the table width between the side margins.
func (g Geometry) AvailableWidth() float64 {
	return math.Max(0, g.PageWidth-g.MarginLeft-g.MarginRight)
}

// Reserved is the vertical space not available to table rows on a page
// carrying titleLines of title and summaryLines of summary.
func (g Geometry) Reserved(titleLines, summaryLines int) float64 {
	return g.MarginTop + g.MarginBottom +
		g.HeaderHeight + g.FooterHeight +
		float64(max(titleLines, 0))*g.TitleLineHeight +
		float64(max(summaryLines, 0))*g.SummaryLineHeight
}
