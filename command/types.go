package command

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// GenerateExport renders one export through the coordinator.
type GenerateExport struct {
	Request export.Request
	// Area selects the area entry point, which never fails on empty data.
	Area   bool
	Result *export.Result
}

func (GenerateExport) Type() string { return "export:generate" }

func (msg GenerateExport) Validate() error {
	if msg.Request.EntityType == "" {
		return errors.New("export type is required", errors.CategoryValidation).
			WithTextCode("TYPE_REQUIRED")
	}
	if msg.Request.Format == "" && msg.Request.Options.Format == "" {
		return errors.New("export format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	}
	return nil
}

// RunBatch runs every request of a batch file.
type RunBatch struct {
	From   string
	Result *BatchReport
}

func (RunBatch) Type() string { return "export:batch" }

func (RunBatch) Validate() error { return nil }
