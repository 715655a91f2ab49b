// Package exportpdf provides the paginated document generator.
//
// Datasets are laid out by the layout package, composed into branded HTML
// pages and converted to PDF by a pluggable Engine (headless Chromium via
// chromedp, or wkhtmltopdf). An engine that cannot run on this host reports
// a degraded error, which the export Coordinator recovers from by falling
// back to structured data.
package exportpdf
