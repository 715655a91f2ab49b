package exporthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-impact-export/adapters/exportapi"
	"github.com/goliatone/go-impact-export/export"
)

func newTestHandler(ds *export.Dataset) *Handler {
	coordinator := export.NewCoordinator(export.CoordinatorConfig{
		Resolver: export.ResolverFunc(func(ctx context.Context, query export.ResolveQuery) (*export.Dataset, error) {
			return ds, nil
		}),
		Now:         func() time.Time { return time.Date(2024, 4, 5, 9, 30, 0, 0, time.UTC) },
		IDGenerator: func() string { return "exp-http" },
	})
	return NewHandler(Config{Coordinator: coordinator, BasePath: "/exports"})
}

func beneficiaries() *export.Dataset {
	return export.NewDataset(
		[]string{"name", "village", "estimated_beneficiaries"},
		export.Row{"Water point", "Kisumu", 420},
	)
}

func TestHandler_ExportDownload(t *testing.T) {
	handler := newTestHandler(beneficiaries())

	body := `{"type":"beneficiaries","format":"json","filename":"field/report"}`
	req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get(exportapi.HeaderExportID); got != "exp-http" {
		t.Fatalf("unexpected export id %q", got)
	}

	var envelope struct {
		ExportInfo struct {
			TotalRecords int `json:"totalRecords"`
		} `json:"exportInfo"`
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.ExportInfo.TotalRecords != 1 || len(envelope.Data) != 1 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestHandler_ErrorPayload(t *testing.T) {
	handler := newTestHandler(beneficiaries())

	req := httptest.NewRequest(http.MethodPost, "/exports", bytes.NewBufferString(`{"type":"beneficiaries","format":"odt"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json error, got %q", got)
	}
	var payload exportapi.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if len(payload.AvailableFormats) == 0 {
		t.Fatalf("expected available formats, got %+v", payload)
	}
}

func TestHandler_RegisterRoutesOnServeMux(t *testing.T) {
	handler := newTestHandler(export.NewDataset(nil))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/exports/area", strings.NewReader(`{"type":"projects","format":"csv"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "No projects records found for the selected filters") {
		t.Fatalf("expected placeholder message, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/exports", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metadata 200, got %d", rec.Code)
	}
}

func TestHandler_NilHandler(t *testing.T) {
	var handler *Handler
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
