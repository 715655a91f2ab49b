package command

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-impact-export/export"
)

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	exporter := &stubExporter{result: export.Result{ID: "exp-1"}}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{
			{Type: "donations", Format: "csv"},
			{Type: "volunteers", Format: "pdf"},
		}, nil
	}

	cmd := NewBatchCommand(exporter, loader, WithBatchLimits(BatchLimits{MaxRequests: 1, MinInterval: time.Millisecond}))
	var slept time.Duration
	cmd.sleep = func(d time.Duration) { slept += d }

	report, err := cmd.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 1 {
		t.Fatalf("expected 1 export, got %d", report.Completed)
	}
	if exporter.exports != 1 {
		t.Fatalf("expected exporter count 1, got %d", exporter.exports)
	}
	if slept != time.Millisecond {
		t.Fatalf("expected interval sleep, got %s", slept)
	}
}

func TestBatchCommand_RoutesAreaRequests(t *testing.T) {
	exporter := &stubExporter{result: export.Result{Fallback: true}}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{{Type: "projects", Format: "pdf", Area: true}}, nil
	}

	report, err := NewBatchCommand(exporter, loader).Run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exporter.areas != 1 {
		t.Fatalf("expected area export, got %d", exporter.areas)
	}
	if report.Fallbacks != 1 {
		t.Fatalf("expected fallback to be counted, got %d", report.Fallbacks)
	}
}

func TestBatchCommand_FileToDirSink(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	dir := t.TempDir()

	batchFile := filepath.Join(dir, "batch.json")
	content := `[
  {"type": "donations", "format": "csv", "filename": "q1-donations"},
  {"type": "volunteers", "format": "json", "area": true}
]`
	if err := os.WriteFile(batchFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	cmd := NewBatchCommand(coordinator, nil, WithBatchSink(DirSink(outDir)))
	report, err := cmd.Run(context.Background(), batchFile)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 2 {
		t.Fatalf("expected 2 exports, got %d", report.Completed)
	}

	for _, result := range report.Results {
		data, err := os.ReadFile(filepath.Join(outDir, result.Filename))
		if err != nil {
			t.Fatalf("read %s: %v", result.Filename, err)
		}
		if len(data) == 0 {
			t.Fatalf("expected %s to have content", result.Filename)
		}
	}
	if report.Results[0].Filename != "q1-donations.csv" {
		t.Fatalf("unexpected filename %q", report.Results[0].Filename)
	}
}

func TestBatchCommand_StopsOnError(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{
			{Type: "donations", Format: "csv"},
			{Type: "volunteers", Format: "csv"},
			{Type: "donations", Format: "json"},
		}, nil
	}

	report, err := NewBatchCommand(coordinator, loader).Run(context.Background(), "")
	if err == nil {
		t.Fatalf("expected not found error for empty volunteers")
	}
	if export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if report.Completed != 1 {
		t.Fatalf("expected 1 completed export, got %d", report.Completed)
	}
}

func TestBatchCommand_RequiresLoaderOrFile(t *testing.T) {
	cmd := NewBatchCommand(&stubExporter{}, nil)
	if _, err := cmd.Run(context.Background(), ""); err == nil {
		t.Fatalf("expected loader error")
	}
	if _, err := cmd.Run(context.Background(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestBatchCommand_CLIAndCronOptions(t *testing.T) {
	cmd := NewBatchCommand(&stubExporter{}, nil, WithBatchCronConfig(gcmd.HandlerConfig{Expression: "*/5 * * * *"}))
	if got := cmd.CLIOptions().Path; len(got) != 1 || got[0] != "exports-batch" {
		t.Fatalf("unexpected CLI path %v", got)
	}
	if cmd.CronOptions().Expression != "*/5 * * * *" {
		t.Fatalf("unexpected cron expression %q", cmd.CronOptions().Expression)
	}
	if _, ok := cmd.CLIHandler().(*batchCLI); !ok {
		t.Fatalf("expected batch CLI handler")
	}
}

func TestRunBatch_ViaDispatcher(t *testing.T) {
	coordinator, resolver := newTestCoordinator(t)
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return []BatchRequest{{Type: "donations", Format: "excel"}}, nil
	}
	batch := NewBatchCommand(coordinator, loader)

	subs, err := RegisterHandlers(nil, coordinator, resolver, batch)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	report, err := dispatcher.DispatchWithResult[RunBatch, BatchReport](context.Background(), RunBatch{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if report.Completed != 1 || report.Results[0].Format != export.FormatExcel {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestLoadBatchFile_HeadersAndPlainDates(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)
	batchFile := filepath.Join(t.TempDir(), "batch.json")
	content := `[{"type": "donations", "format": "csv",
  "options": {"includeHeaders": false, "dateRange": {"from": "2024-01-01", "to": "2024-03-31"}}}]`
	if err := os.WriteFile(batchFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}

	requests, err := LoadBatchFile(batchFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	options := requests[0].Options
	if !options.HeadersSet || options.IncludeHeaders {
		t.Fatalf("expected explicit includeHeaders=false, got %+v", options)
	}
	wantFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if options.DateRange == nil || !options.DateRange.From.Equal(wantFrom) {
		t.Fatalf("unexpected date range %+v", options.DateRange)
	}

	report, err := NewBatchCommand(coordinator, nil).Run(context.Background(), batchFile)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	body := string(report.Results[0].Body)
	if strings.HasPrefix(body, "donor") || !strings.HasPrefix(body, "Ada,") {
		t.Fatalf("expected rows without header, got %q", body)
	}
}
