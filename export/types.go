package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Row is a column-aligned record.
type Row []any

// DateRange bounds a dataset by an inclusive date window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DateLayouts are the layouts ParseDate accepts, most precise first.
var DateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// ParseDate parses an RFC 3339 timestamp, a zone-less timestamp or a plain
// yyyy-mm-dd date. Blank input is the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range DateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// UnmarshalJSON accepts any of the DateLayouts for either bound.
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		From *string `json:"from"`
		To   *string `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	var window DateRange
	if raw.From != nil {
		if window.From, err = ParseDate(*raw.From); err != nil {
			return err
		}
	}
	if raw.To != nil {
		if window.To, err = ParseDate(*raw.To); err != nil {
			return err
		}
	}
	*r = window
	return nil
}

// IsZero reports whether no bound is set.
func (r *DateRange) IsZero() bool {
	return r == nil || (r.From.IsZero() && r.To.IsZero())
}

// Contains reports whether t falls inside the range. Unset bounds are open.
func (r *DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(endOfDay(r.To)) {
		return false
	}
	return true
}

// UpperBound returns the inclusive upper bound. A date-only To covers the
// whole day; zero means unbounded.
func (r *DateRange) UpperBound() time.Time {
	if r == nil || r.To.IsZero() {
		return time.Time{}
	}
	return endOfDay(r.To)
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.Add(24*time.Hour - time.Nanosecond)
}

// ExportOptions configures a single export.
type ExportOptions struct {
	Format         Format     `json:"format"`
	Filename       string     `json:"filename,omitempty"`
	DateRange      *DateRange `json:"dateRange,omitempty"`
	SelectedFields []string   `json:"selectedFields,omitempty"`
	IncludeHeaders bool       `json:"includeHeaders"`
	// HeadersSet marks IncludeHeaders as explicit; unset means true.
	HeadersSet bool `json:"-"`
}

// UnmarshalJSON sets HeadersSet when includeHeaders is present, so an
// explicit false survives normalization.
func (o *ExportOptions) UnmarshalJSON(data []byte) error {
	type plain ExportOptions
	var raw struct {
		plain
		IncludeHeaders *bool `json:"includeHeaders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = ExportOptions(raw.plain)
	if raw.IncludeHeaders != nil {
		o.IncludeHeaders = *raw.IncludeHeaders
		o.HeadersSet = true
	}
	return nil
}

// Request is the Coordinator input.
type Request struct {
	EntityType EntityType
	Format     Format
	Filename   string
	Options    ExportOptions
	// Data, when non-nil, is used verbatim instead of resolving the dataset.
	Data    []Record
	Title   string
	Summary []string
	Render  RenderOptions
}

// Result is a completed export payload.
type Result struct {
	ID          string
	EntityType  EntityType
	Format      Format
	Filename    string
	ContentType string
	Body        []byte
	Rows        int64
	Skipped     int64
	Fallback    bool
}

// Generator writes a dataset to the destination in one format.
type Generator interface {
	Render(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error)
}

// GeneratorFunc adapts a function to a Generator.
type GeneratorFunc func(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error)

func (f GeneratorFunc) Render(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error) {
	if f == nil {
		return RenderStats{}, NewError(KindInternal, "generator func is nil", nil)
	}
	return f(ctx, ds, w, opts)
}

// RenderStats capture generator output.
type RenderStats struct {
	Rows    int64
	Skipped int64
	Bytes   int64
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	IncludeHeaders bool
	Delimiter      rune
}

// JSONOptions configures structured-data output.
type JSONOptions struct {
	OmitSummary    bool
	Fallback       bool
	FallbackReason string
	Indent         bool
}

// XLSXOptions configures spreadsheet output.
type XLSXOptions struct {
	IncludeHeaders bool
	SheetName      string
	MaxRows        int
}

// DocumentOptions configures paginated document output.
// The table header row is always rendered in documents.
type DocumentOptions struct {
	Title    string
	Summary  []string
	AllPages bool
}

// FormatOptions configures timezone-aware value formatting.
type FormatOptions struct {
	Timezone string
}

// RenderOptions configures generator behavior.
type RenderOptions struct {
	Filename    string
	GeneratedAt time.Time
	Export      ExportOptions
	CSV         CSVOptions
	JSON        JSONOptions
	XLSX        XLSXOptions
	Document    DocumentOptions
	Format      FormatOptions
	// OnRowError observes rows skipped because they could not be formatted.
	OnRowError func(index int, err error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// MetricsEvent describes export lifecycle metrics.
type MetricsEvent struct {
	Name       string
	ExportID   string
	EntityType EntityType
	Format     Format
	Rows       int64
	Skipped    int64
	Bytes      int64
	Duration   time.Duration
	ErrorKind  ErrorKind
	Timestamp  time.Time
}

// MetricsHook emits metrics-friendly lifecycle observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}
