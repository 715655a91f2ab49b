package exportapi

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-impact-export/export"
)

type stubRequest struct {
	method      string
	path        string
	contentType string
	body        string
	nilBody     bool
}

func (s stubRequest) Context() context.Context { return context.Background() }
func (s stubRequest) Method() string {
	if s.method == "" {
		return "POST"
	}
	return s.method
}
func (s stubRequest) Path() string {
	if s.path == "" {
		return DefaultBasePath
	}
	return s.path
}
func (s stubRequest) Header(name string) string {
	if strings.EqualFold(name, "Content-Type") {
		return s.contentType
	}
	return ""
}
func (s stubRequest) Body() io.ReadCloser {
	if s.nilBody {
		return nil
	}
	return io.NopCloser(strings.NewReader(s.body))
}

func decode(t *testing.T, body string) (export.Request, error) {
	t.Helper()
	return JSONRequestDecoder{}.Decode(stubRequest{body: body, contentType: "application/json"})
}

func TestJSONRequestDecoder_Payload(t *testing.T) {
	payload := `{
		"type": "donations",
		"format": "excel",
		"filename": "q1 report",
		"title": "  Quarterly donations ",
		"summary": ["Total raised: $1,200"],
		"options": {
			"dateRange": {"from": "2024-01-01", "to": "2024-03-31T23:00:00Z"},
			"selectedFields": ["donor_name", "amount"],
			"includeHeaders": false,
			"allPages": true,
			"timezone": "Europe/Madrid"
		}
	}`
	req, err := decode(t, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.EntityType != export.EntityDonations {
		t.Fatalf("expected donations, got %q", req.EntityType)
	}
	if req.Format != "excel" {
		t.Fatalf("expected excel, got %q", req.Format)
	}
	if req.Filename != "q1 report" || req.Options.Filename != "q1 report" {
		t.Fatalf("unexpected filename %q / %q", req.Filename, req.Options.Filename)
	}
	if req.Title != "Quarterly donations" {
		t.Fatalf("expected trimmed title, got %q", req.Title)
	}
	if len(req.Summary) != 1 {
		t.Fatalf("expected summary, got %v", req.Summary)
	}
	if !req.Options.HeadersSet || req.Options.IncludeHeaders {
		t.Fatalf("expected explicit includeHeaders=false, got %+v", req.Options)
	}
	if req.Options.DateRange == nil {
		t.Fatalf("expected date range")
	}
	wantFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !req.Options.DateRange.From.Equal(wantFrom) {
		t.Fatalf("expected from %v, got %v", wantFrom, req.Options.DateRange.From)
	}
	if got := strings.Join(req.Options.SelectedFields, ","); got != "donor_name,amount" {
		t.Fatalf("unexpected fields %q", got)
	}
	if !req.Render.Document.AllPages {
		t.Fatalf("expected all pages")
	}
	if req.Render.Format.Timezone != "Europe/Madrid" {
		t.Fatalf("expected timezone, got %q", req.Render.Format.Timezone)
	}
	if req.Data != nil {
		t.Fatalf("expected nil data, got %v", req.Data)
	}
}

func TestJSONRequestDecoder_HeadersDefaultUnset(t *testing.T) {
	req, err := decode(t, `{"type":"projects","format":"csv"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Options.HeadersSet {
		t.Fatalf("expected includeHeaders to stay unset")
	}
	if req.Options.DateRange != nil {
		t.Fatalf("expected no date range")
	}
}

func TestJSONRequestDecoder_DataKeepsKeyOrder(t *testing.T) {
	req, err := decode(t, `{"type":"projects","format":"json","data":[{"zeta":1,"alpha":"a"},{"alpha":"b"}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(req.Data) != 2 {
		t.Fatalf("expected 2 records, got %d", len(req.Data))
	}
	if got := strings.Join(req.Data[0].Keys(), ","); got != "zeta,alpha" {
		t.Fatalf("expected key order preserved, got %q", got)
	}
}

func TestJSONRequestDecoder_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		req     stubRequest
		message string
	}{
		{
			name:    "empty body",
			req:     stubRequest{body: "  "},
			message: "request body is required",
		},
		{
			name:    "nil body",
			req:     stubRequest{nilBody: true},
			message: "request body is required",
		},
		{
			name:    "content type",
			req:     stubRequest{body: `{}`, contentType: "text/plain"},
			message: "content type must be application/json",
		},
		{
			name:    "malformed",
			req:     stubRequest{body: `{"type":`},
			message: "invalid request payload",
		},
		{
			name:    "unknown field",
			req:     stubRequest{body: `{"type":"donations","definition":"x"}`},
			message: "invalid request payload",
		},
		{
			name:    "bad date",
			req:     stubRequest{body: `{"type":"donations","options":{"dateRange":{"from":"yesterday"}}}`},
			message: "invalid request payload",
		},
		{
			name:    "reversed range",
			req:     stubRequest{body: `{"type":"donations","options":{"dateRange":{"from":"2024-03-01","to":"2024-01-01"}}}`},
			message: "invalid options.dateRange.to: must not be before from",
		},
		{
			name:    "blank field",
			req:     stubRequest{body: `{"type":"donations","options":{"selectedFields":["amount",""]}}`},
			message: "invalid options.selectedFields[1]: value is required",
		},
		{
			name:    "long filename",
			req:     stubRequest{body: `{"type":"donations","filename":"` + strings.Repeat("a", 201) + `"}`},
			message: "invalid filename: exceeds maximum of 200",
		},
		{
			name:    "timezone",
			req:     stubRequest{body: `{"type":"donations","options":{"timezone":"Mars/Olympus"}}`},
			message: "invalid options.timezone: unknown timezone",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := JSONRequestDecoder{}.Decode(tc.req)
			if err == nil {
				t.Fatalf("expected error")
			}
			exportErr, ok := export.AsExportError(err)
			if !ok {
				t.Fatalf("expected export error, got %T", err)
			}
			if exportErr.Kind != export.KindValidation {
				t.Fatalf("expected validation kind, got %s", exportErr.Kind)
			}
			if exportErr.Msg != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, exportErr.Msg)
			}
		})
	}
}

func TestJSONRequestDecoder_MaxBodyBytes(t *testing.T) {
	decoder := JSONRequestDecoder{MaxBodyBytes: 16}
	_, err := decoder.Decode(stubRequest{body: `{"type":"donations","format":"csv"}`})
	if err == nil {
		t.Fatalf("expected error")
	}
	if exportErr, ok := export.AsExportError(err); !ok || exportErr.Msg != "request body too large" {
		t.Fatalf("expected size error, got %v", err)
	}
}
