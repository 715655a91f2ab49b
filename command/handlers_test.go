package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
	exportqry "github.com/goliatone/go-impact-export/query"
	exportmemory "github.com/goliatone/go-impact-export/sources/memory"
)

func fixedNow() time.Time {
	return time.Date(2024, 4, 5, 9, 30, 0, 0, time.UTC)
}

func newTestCoordinator(t *testing.T) (*export.Coordinator, *exportmemory.Resolver) {
	t.Helper()
	resolver := exportmemory.NewResolver()
	records := []export.Record{
		export.NewRecord("donor", "Ada", "amount", 25.0),
		export.NewRecord("donor", "Grace", "amount", 40.0),
	}
	if err := resolver.RegisterRecords(export.EntityDonations, records, ""); err != nil {
		t.Fatalf("register records: %v", err)
	}
	coordinator := export.NewCoordinator(export.CoordinatorConfig{
		Resolver:    resolver,
		Now:         fixedNow,
		IDGenerator: func() string { return "exp-1" },
	})
	return coordinator, resolver
}

type stubExporter struct {
	exports int
	areas   int
	result  export.Result
	err     error
}

func (s *stubExporter) Export(ctx context.Context, req export.Request) (export.Result, error) {
	s.exports++
	return s.result, s.err
}

func (s *stubExporter) ExportArea(ctx context.Context, req export.Request) (export.Result, error) {
	s.areas++
	return s.result, s.err
}

func TestGenerateExportHandler_StoresResults(t *testing.T) {
	want := export.Result{ID: "exp-1", Filename: "donations_export_20240405.csv"}
	handler := NewGenerateExportHandler(&stubExporter{result: want})

	var got export.Result
	result := gcmd.NewResult[export.Result]()
	ctx := gcmd.ContextWithResult(context.Background(), result)

	err := handler.Execute(ctx, GenerateExport{
		Request: export.Request{EntityType: export.EntityDonations, Format: export.FormatCSV},
		Result:  &got,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.ID != want.ID {
		t.Fatalf("expected result pointer to be filled, got %+v", got)
	}
	stored, ok := result.Load()
	if !ok || stored.Filename != want.Filename {
		t.Fatalf("expected stored result, got %+v", stored)
	}
}

func TestGenerateExportHandler_AreaUsesAreaEntryPoint(t *testing.T) {
	exporter := &stubExporter{}
	handler := NewGenerateExportHandler(exporter)

	err := handler.Execute(context.Background(), GenerateExport{
		Request: export.Request{EntityType: export.EntityProjects, Format: export.FormatJSON},
		Area:    true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if exporter.areas != 1 || exporter.exports != 0 {
		t.Fatalf("expected one area export, got areas=%d exports=%d", exporter.areas, exporter.exports)
	}
}

func TestGenerateExportHandler_Validation(t *testing.T) {
	cases := []struct {
		name string
		msg  GenerateExport
		code string
	}{
		{name: "missing type", msg: GenerateExport{Request: export.Request{Format: export.FormatCSV}}, code: "TYPE_REQUIRED"},
		{name: "missing format", msg: GenerateExport{Request: export.Request{EntityType: export.EntityDonations}}, code: "FORMAT_REQUIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exporter := &stubExporter{}
			err := NewGenerateExportHandler(exporter).Execute(context.Background(), tc.msg)
			var ge *goerrors.Error
			if !errors.As(err, &ge) {
				t.Fatalf("expected go-errors error, got %v", err)
			}
			if ge.TextCode != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, ge.TextCode)
			}
			if exporter.exports != 0 {
				t.Fatalf("exporter must not run on invalid input")
			}
		})
	}
}

func TestGenerateExportHandler_OptionsFormatSatisfiesValidation(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	var got export.Result
	err := NewGenerateExportHandler(coordinator).Execute(context.Background(), GenerateExport{
		Request: export.Request{
			EntityType: export.EntityDonations,
			Options:    export.ExportOptions{Format: export.FormatJSON},
		},
		Result: &got,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Format != export.FormatJSON {
		t.Fatalf("expected json format, got %s", got.Format)
	}
}

func TestGenerateExportHandler_NilExporter(t *testing.T) {
	var handler *GenerateExportHandler
	if err := handler.Execute(context.Background(), GenerateExport{}); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}

func TestRegisterHandlers_DispatchesThroughCoordinator(t *testing.T) {
	coordinator, resolver := newTestCoordinator(t)

	reg := gcmd.NewRegistry()
	subs, err := RegisterHandlers(reg, coordinator, resolver, nil)
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	result, err := dispatcher.DispatchWithResult[GenerateExport, export.Result](
		context.Background(),
		GenerateExport{Request: export.Request{EntityType: export.EntityDonations, Format: export.FormatCSV}},
	)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result.Filename != "donations_export_20240405.csv" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
	if !strings.HasPrefix(string(result.Body), "donor,amount") {
		t.Fatalf("unexpected body %q", result.Body)
	}

	preview, err := dispatcher.Query[exportqry.DatasetPreview, exportqry.Preview](
		context.Background(),
		exportqry.DatasetPreview{EntityType: export.EntityDonations},
	)
	if err != nil {
		t.Fatalf("query preview: %v", err)
	}
	if preview.Total != 2 {
		t.Fatalf("expected 2 rows, got %d", preview.Total)
	}
}

func TestRegisterHandlers_RequiresCoordinator(t *testing.T) {
	if _, err := RegisterHandlers(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error without coordinator")
	}
}
