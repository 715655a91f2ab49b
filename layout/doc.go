// Package layout turns a flat table into fixed-page document geometry.
//
// The pipeline runs ClassifyColumns, AllocateWidths, Paginate and
// WrapCellText in that order. Every stage is a pure function of its input
// and the page Geometry; none of them fail.
package layout
