package export

import (
	"fmt"
	"strings"
)

// Format is the export output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
)

// Formats lists every supported format in dispatch order.
func Formats() []Format {
	return []Format{FormatCSV, FormatExcel, FormatJSON, FormatPDF}
}

// FormatNames returns the accepted format names, for error payloads.
func FormatNames() []string {
	formats := Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// NormalizeFormat coerces format aliases into known values.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case string(FormatCSV), "delimited", "delimited-text", "text":
		return FormatCSV
	case string(FormatExcel), "xlsx", "xls", "spreadsheet":
		return FormatExcel
	case string(FormatJSON), "structured", "structured-data":
		return FormatJSON
	case string(FormatPDF), "document":
		return FormatPDF
	default:
		return Format(normalized)
	}
}

// ParseFormat normalizes raw and rejects unknown formats.
func ParseFormat(raw string) (Format, error) {
	format := NormalizeFormat(Format(raw))
	if format.Valid() {
		return format, nil
	}
	return "", NewError(KindValidation, fmt.Sprintf("invalid format %q", raw), nil).
		WithAllowed("format", FormatNames())
}

// Valid reports whether f is an enumerated format.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatExcel, FormatJSON, FormatPDF:
		return true
	default:
		return false
	}
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	case FormatPDF:
		return "pdf"
	default:
		return "bin"
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
