package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// Exporter runs exports; *export.Coordinator implements it.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
	ExportArea(ctx context.Context, req export.Request) (export.Result, error)
}

var _ Exporter = (*export.Coordinator)(nil)

// GenerateExportHandler runs export generation.
type GenerateExportHandler struct {
	Exporter Exporter
}

func NewGenerateExportHandler(exporter Exporter) *GenerateExportHandler {
	return &GenerateExportHandler{Exporter: exporter}
}

func (h *GenerateExportHandler) Execute(ctx context.Context, msg GenerateExport) error {
	if h == nil || h.Exporter == nil {
		return errors.New("exporter is required", errors.CategoryInternal).
			WithTextCode("EXPORTER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	var (
		result export.Result
		err    error
	)
	if msg.Area {
		result, err = h.Exporter.ExportArea(ctx, msg.Request)
	} else {
		result, err = h.Exporter.Export(ctx, msg.Request)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.Result](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

// RunBatchHandler runs batch files through a BatchCommand.
type RunBatchHandler struct {
	Batch *BatchCommand
}

func NewRunBatchHandler(batch *BatchCommand) *RunBatchHandler {
	return &RunBatchHandler{Batch: batch}
}

func (h *RunBatchHandler) Execute(ctx context.Context, msg RunBatch) error {
	if h == nil || h.Batch == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	report, err := h.Batch.Run(ctx, msg.From)
	if msg.Result != nil {
		*msg.Result = report
	}
	if res := gcmd.ResultFromContext[BatchReport](ctx); res != nil {
		res.Store(report)
	}
	return err
}
