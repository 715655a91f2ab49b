// Package compose assembles laid-out tables into branded page sequences and
// renders them as print-ready HTML.
package compose
