package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metrics event names emitted by the Coordinator.
const (
	EventExportCompleted = "export.completed"
	EventExportDegraded  = "export.degraded"
	EventExportFailed    = "export.failed"
)

// FallbackHeader is set on responses that were downgraded to structured data.
const FallbackHeader = "X-Export-Fallback"

// NotFoundDetails is the hint attached to empty generic exports.
const NotFoundDetails = "Try adjusting the date range or selected fields"

// CoordinatorConfig supplies dependencies for Coordinator.
type CoordinatorConfig struct {
	Resolver    DatasetResolver
	Generators  GeneratorSet
	Logger      Logger
	Metrics     MetricsHook
	Format      FormatOptions
	Now         func() time.Time
	IDGenerator func() string
}

// Coordinator validates export requests, resolves their dataset and
// dispatches to the generator for the requested format.
type Coordinator struct {
	resolver    DatasetResolver
	generators  GeneratorSet
	logger      Logger
	metrics     MetricsHook
	format      FormatOptions
	now         func() time.Time
	idGenerator func() string
}

// NewCoordinator creates a Coordinator with the provided configuration.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	c := &Coordinator{
		resolver:    cfg.Resolver,
		generators:  cfg.Generators,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		format:      cfg.Format,
		now:         cfg.Now,
		idGenerator: cfg.IDGenerator,
	}
	if c.generators.empty() {
		c.generators = DefaultGenerators()
	}
	if c.logger == nil {
		c.logger = NopLogger{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.idGenerator == nil {
		c.idGenerator = uuid.NewString
	}
	return c
}

type emptyPolicy int

const (
	emptyNotFound emptyPolicy = iota
	emptyPlaceholder
)

// Export produces a generic export. An empty dataset is a not-found error.
func (c *Coordinator) Export(ctx context.Context, req Request) (Result, error) {
	return c.run(ctx, req, emptyNotFound)
}

// ExportArea produces an export for a scoped area. An empty dataset is
// replaced by a single placeholder row so the download is never empty.
func (c *Coordinator) ExportArea(ctx context.Context, req Request) (Result, error) {
	return c.run(ctx, req, emptyPlaceholder)
}

func (c *Coordinator) run(ctx context.Context, req Request, policy emptyPolicy) (result Result, err error) {
	if c == nil {
		return Result{}, NewError(KindInternal, "coordinator is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := c.now()
	id := c.idGenerator()
	result.ID = id

	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("export %s: panic: %v", id, r)
			err = NewError(KindInternal, "export failed", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			c.logger.Warnf("export %s failed: %v", id, err)
			c.emit(ctx, MetricsEvent{
				Name:       EventExportFailed,
				ExportID:   id,
				EntityType: result.EntityType,
				Format:     result.Format,
				Duration:   c.now().Sub(start),
				ErrorKind:  KindFromError(err),
			})
		}
	}()

	entity, err := ParseEntityType(string(req.EntityType))
	if err != nil {
		return result, err
	}
	result.EntityType = entity

	rawFormat := req.Format
	if rawFormat == "" {
		rawFormat = req.Options.Format
	}
	format, err := ParseFormat(string(rawFormat))
	if err != nil {
		return result, err
	}
	result.Format = format

	options := normalizeExportOptions(req.Options, format)
	if req.Filename != "" {
		options.Filename = req.Filename
	}

	ds, err := c.dataset(ctx, entity, req, options)
	if err != nil {
		return result, err
	}
	if ds.Empty() {
		if policy == emptyNotFound {
			msg := fmt.Sprintf("no %s records found", strings.ToLower(entity.Label()))
			return result, NewError(KindNotFound, msg, nil).WithDetails(NotFoundDetails)
		}
		ds = PlaceholderDataset(entity)
	}

	generatedAt := c.now()
	opts := c.renderOptions(req, entity, options, generatedAt)
	opts.OnRowError = func(index int, rowErr error) {
		c.logger.Warnf("export %s: skipped row %d: %v", id, index, rowErr)
		if req.Render.OnRowError != nil {
			req.Render.OnRowError(index, rowErr)
		}
	}

	body, stats, err := c.render(ctx, format, ds, opts)
	if err != nil && format == FormatPDF && IsDegraded(err) {
		reason := err.Error()
		c.logger.Warnf("export %s: document renderer unavailable, falling back to %s: %s", id, FormatJSON, reason)
		c.emit(ctx, MetricsEvent{
			Name:       EventExportDegraded,
			ExportID:   id,
			EntityType: entity,
			Format:     format,
			ErrorKind:  KindDegraded,
		})

		format = FormatJSON
		result.Format = format
		result.Fallback = true
		opts.Filename = BuildFilename(options.Filename, entity, format, generatedAt)
		opts.JSON.Fallback = true
		opts.JSON.FallbackReason = reason
		body, stats, err = c.render(ctx, format, ds, opts)
	}
	if err != nil {
		return result, err
	}

	result.Filename = BuildFilename(options.Filename, entity, format, generatedAt)
	result.ContentType = format.ContentType()
	result.Body = body
	result.Rows = stats.Rows
	result.Skipped = stats.Skipped

	c.logger.Infof("export %s: %s %s rows=%d skipped=%d bytes=%d", id, entity, format, stats.Rows, stats.Skipped, len(body))
	c.emit(ctx, MetricsEvent{
		Name:       EventExportCompleted,
		ExportID:   id,
		EntityType: entity,
		Format:     format,
		Rows:       stats.Rows,
		Skipped:    stats.Skipped,
		Bytes:      int64(len(body)),
		Duration:   c.now().Sub(start),
	})
	return result, nil
}

func (c *Coordinator) dataset(ctx context.Context, entity EntityType, req Request, options ExportOptions) (*Dataset, error) {
	if req.Data != nil {
		return DatasetFromRecords(req.Data), nil
	}
	if c.resolver == nil {
		return nil, NewError(KindInternal, "dataset resolver not configured", nil)
	}

	ds, err := c.resolver.Resolve(ctx, ResolveQuery{
		EntityType:     entity,
		DateRange:      options.DateRange,
		SelectedFields: append([]string(nil), options.SelectedFields...),
	})
	if err != nil {
		if _, ok := AsExportError(err); ok {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewError(KindInternal, "resolve dataset", err)
	}
	return datasetOrEmpty(ds), nil
}

func (c *Coordinator) render(ctx context.Context, format Format, ds *Dataset, opts RenderOptions) ([]byte, RenderStats, error) {
	gen, err := c.generators.For(format)
	if err != nil {
		return nil, RenderStats{}, err
	}

	var buf bytes.Buffer
	stats, err := gen.Render(ctx, ds, &buf, opts)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

func (c *Coordinator) renderOptions(req Request, entity EntityType, options ExportOptions, generatedAt time.Time) RenderOptions {
	opts := req.Render
	opts.Filename = BuildFilename(options.Filename, entity, options.Format, generatedAt)
	opts.GeneratedAt = generatedAt
	opts.Export = options
	if opts.Format.Timezone == "" {
		opts.Format = c.format
	}

	opts.CSV.IncludeHeaders = options.IncludeHeaders
	opts.XLSX.IncludeHeaders = options.IncludeHeaders

	title := req.Title
	if title == "" {
		title = opts.Document.Title
	}
	if title == "" {
		title = entity.Label() + " Export Report"
	}
	opts.Document.Title = title
	if len(req.Summary) > 0 {
		opts.Document.Summary = append([]string(nil), req.Summary...)
	}
	return opts
}

func normalizeExportOptions(options ExportOptions, format Format) ExportOptions {
	options.Format = format
	if !options.HeadersSet {
		options.IncludeHeaders = true
		options.HeadersSet = true
	}
	options.SelectedFields = append([]string(nil), options.SelectedFields...)
	return options
}

func (c *Coordinator) emit(ctx context.Context, evt MetricsEvent) {
	if c.metrics == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = c.now()
	}
	if err := c.metrics.Emit(ctx, evt); err != nil {
		c.logger.Debugf("export %s: metrics emit failed: %v", evt.ExportID, err)
	}
}
