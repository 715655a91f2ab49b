package layout

import (
	"math"
	"sort"
)

// ColumnDescriptor is the derived layout metadata for one column.
type ColumnDescriptor struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
	// WidthFraction is the share of the available width after normalization.
	WidthFraction float64 `json:"width_fraction"`
	// Width is the column width in points.
	Width float64 `json:"width"`
	// Heading is the wrapped header label, newline separated.
	Heading string `json:"heading,omitempty"`
}

// Normalization thresholds, as a share of the available width.
const (
	scaleDownAbove = 0.95
	scaleUpBelow   = 0.85
)

// unitEpsilon absorbs float error when converting to hundredths.
const unitEpsilon = 1e-6

var widthFractions = map[Category][4]float64{
	Narrow:    {0.20, 0.12, 0.08, 0.05},
	Medium:    {0.30, 0.18, 0.12, 0.08},
	Wide:      {0.40, 0.25, 0.16, 0.11},
	ExtraWide: {0.50, 0.32, 0.22, 0.15},
	Standard:  {0.33, 0.20, 0.13, 0.09},
}

func columnCountBucket(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// WidthFraction returns the table fraction for a category in a table of
// columnCount columns, before normalization.
func WidthFraction(category Category, columnCount int) float64 {
	fractions, ok := widthFractions[category]
	if !ok {
		fractions = widthFractions[Standard]
	}
	return fractions[columnCountBucket(columnCount)]
}

// AllocateWidths assigns a width to every column. When the raw widths
// overflow 95% of available or leave more than 15% unused, they are scaled
// to fill available less one hundredth of a point. Widths are whole
// hundredths of a point and their float sum never exceeds available.
// An available width above MaxPageDimension is capped to it.
func AllocateWidths(columns []ColumnDescriptor, available float64) []ColumnDescriptor {
	out := append([]ColumnDescriptor(nil), columns...)
	if len(out) == 0 || available <= 0 || math.IsNaN(available) {
		for i := range out {
			out[i].Width = 0
			out[i].WidthFraction = 0
		}
		return out
	}

	available = math.Min(available, MaxPageDimension)

	raw := make([]float64, len(out))
	sum := 0.0
	for i, col := range out {
		raw[i] = WidthFraction(col.Category, len(out)) * available
		sum += raw[i]
	}

	scaled := sum > scaleDownAbove*available || sum < scaleUpBelow*available
	if scaled {
		scale := available / sum
		for i := range raw {
			raw[i] *= scale
		}
	}

	// One unit of slack keeps the float sum of units/100 under available.
	budget := max(int64(math.Floor(available*100))-1, 0)
	units := make([]int64, len(raw))
	var total int64
	for i, w := range raw {
		units[i] = int64(math.Floor(w*100 + unitEpsilon))
		total += units[i]
	}

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa := raw[order[a]]*100 - float64(units[order[a]])
		fb := raw[order[b]]*100 - float64(units[order[b]])
		return fa > fb
	})

	// The floored sum is at most a few units off the budget either way;
	// both passes are bounded so a bad input cannot spin.
	passes := 4 * len(order)
	for i := 0; total > budget && i < passes; i++ {
		idx := order[len(order)-1-i%len(order)]
		if units[idx] > 0 {
			units[idx]--
			total--
		}
	}
	if scaled {
		for i := 0; total < budget && i < passes; i++ {
			units[order[i%len(order)]]++
			total++
		}
	}

	for i := range out {
		out[i].Width = float64(units[i]) / 100
		out[i].WidthFraction = out[i].Width / available
	}
	return out
}

// TotalWidth sums the column widths.
func TotalWidth(columns []ColumnDescriptor) float64 {
	var units int64
	for _, col := range columns {
		units += int64(math.Round(col.Width * 100))
	}
	return float64(units) / 100
}
