package command

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// BatchRequest describes one export of a batch file.
type BatchRequest struct {
	Type     string               `json:"type"`
	Format   string               `json:"format"`
	Filename string               `json:"filename,omitempty"`
	Title    string               `json:"title,omitempty"`
	Summary  []string             `json:"summary,omitempty"`
	Options  export.ExportOptions `json:"options"`
	Area     bool                 `json:"area,omitempty"`
}

func (b BatchRequest) toRequest() export.Request {
	return export.Request{
		EntityType: export.EntityType(strings.TrimSpace(b.Type)),
		Format:     export.Format(strings.TrimSpace(b.Format)),
		Filename:   b.Filename,
		Title:      b.Title,
		Summary:    b.Summary,
		Options:    b.Options,
	}
}

// BatchLoader loads batch requests from a source.
type BatchLoader func(ctx context.Context) ([]BatchRequest, error)

// ResultSink receives every rendered export of a batch.
type ResultSink interface {
	Store(ctx context.Context, result export.Result) error
}

// ResultSinkFunc adapts a function to a ResultSink.
type ResultSinkFunc func(ctx context.Context, result export.Result) error

func (f ResultSinkFunc) Store(ctx context.Context, result export.Result) error {
	if f == nil {
		return nil
	}
	return f(ctx, result)
}

// DirSink writes each result to dir using its download filename.
func DirSink(dir string) ResultSink {
	return ResultSinkFunc(func(_ context.Context, result export.Result) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CategoryExternal, "create output directory failed").
				WithTextCode("BATCH_OUTPUT_DIR")
		}
		path := filepath.Join(dir, filepath.Base(result.Filename))
		if err := os.WriteFile(path, result.Body, 0o644); err != nil {
			return errors.Wrap(err, errors.CategoryExternal, "write export file failed").
				WithTextCode("BATCH_OUTPUT_WRITE")
		}
		return nil
	})
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	Completed int
	Fallbacks int
	Results   []export.Result
}

// BatchCommand wires CLI/Cron execution for batch exports.
type BatchCommand struct {
	exporter   Exporter
	loader     BatchLoader
	sink       ResultSink
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchSink sets where rendered exports are stored.
func WithBatchSink(sink ResultSink) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.sink = sink
	}
}

// NewBatchCommand creates a batch export CLI/Cron command.
func NewBatchCommand(exporter Exporter, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		exporter: exporter,
		loader:   loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"exports-batch"},
			Description: "Render a batch of exports",
			Group:       "exports",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 0 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes scheduled batch exports.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run renders the requests loaded from path, or from the configured loader
// when path is empty. It stops at the first failing request.
func (c *BatchCommand) Run(ctx context.Context, from string) (BatchReport, error) {
	var report BatchReport
	if c == nil {
		return report, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.exporter == nil {
		return report, errors.New("exporter is required", errors.CategoryValidation).
			WithTextCode("EXPORTER_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return report, err
	}

	for _, item := range requests {
		if c.limits.MaxRequests > 0 && report.Completed >= c.limits.MaxRequests {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		req := item.toRequest()
		var result export.Result
		if item.Area {
			result, err = c.exporter.ExportArea(ctx, req)
		} else {
			result, err = c.exporter.Export(ctx, req)
		}
		if err != nil {
			return report, err
		}
		if c.sink != nil {
			if err := c.sink.Store(ctx, result); err != nil {
				return report, err
			}
		}
		report.Completed++
		if result.Fallback {
			report.Fallbacks++
		}
		report.Results = append(report.Results, result)
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return report, nil
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]BatchRequest, error) {
	if strings.TrimSpace(from) != "" {
		return LoadBatchFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to JSON batch export requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

// LoadBatchFile reads a JSON array of batch requests.
func LoadBatchFile(path string) ([]BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var requests []BatchRequest
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return requests, nil
}
