package exportpdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-impact-export/compose"
	"github.com/goliatone/go-impact-export/export"
	"github.com/goliatone/go-impact-export/layout"
)

// DefaultMaxHTMLBytes guards in-memory HTML buffering before PDF conversion.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// RenderRequest contains HTML input and page geometry for PDF engines.
type RenderRequest struct {
	HTML     []byte
	Geometry layout.Geometry
	Options  export.RenderOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// Renderer is the document export.Generator.
type Renderer struct {
	Engine       Engine
	Composer     *compose.Composer
	MaxHTMLBytes int64
	// AllPages renders every page regardless of the request option.
	AllPages bool
}

var _ export.Generator = Renderer{}

// Render lays out ds, composes the page sequence and converts it to PDF.
func (r Renderer) Render(ctx context.Context, ds *export.Dataset, w io.Writer, opts export.RenderOptions) (export.RenderStats, error) {
	if r.Engine == nil {
		return export.RenderStats{}, export.NewError(export.KindDegraded, "pdf engine not configured", nil)
	}
	composer := r.Composer
	if composer == nil {
		composer = compose.NewComposer(compose.DefaultStyle(), layout.A4Landscape())
	}

	cells, stats, err := export.FormatDataset(ctx, ds, opts)
	if err != nil {
		return stats, err
	}
	rows := make([]layout.Row, len(cells))
	for i, row := range cells {
		rows[i] = layout.Row(row)
	}

	var fields []string
	if ds != nil {
		fields = ds.Fields
	}
	mode := layout.FirstPage
	if opts.Document.AllPages || r.AllPages {
		mode = layout.AllPages
	}
	doc := composer.Compose(compose.Input{
		Title:       opts.Document.Title,
		Summary:     opts.Document.Summary,
		Fields:      fields,
		Rows:        rows,
		GeneratedAt: opts.GeneratedAt,
		Mode:        mode,
	})
	stats.Rows = int64(shownRows(doc.Table))

	buffer := newLimitedBuffer(r.MaxHTMLBytes)
	if err := compose.RenderHTML(buffer, doc); err != nil {
		if _, ok := export.AsExportError(err); ok {
			return stats, err
		}
		return stats, export.NewError(export.KindInternal, "render document html", err)
	}

	pdf, err := r.Engine.Render(ctx, RenderRequest{
		HTML:     buffer.Bytes(),
		Geometry: doc.Geometry,
		Options:  opts,
	})
	if err != nil {
		return stats, err
	}

	cw := &countingWriter{w: w}
	if len(pdf) > 0 {
		if _, err := cw.Write(pdf); err != nil {
			stats.Bytes = cw.count
			return stats, err
		}
	}
	stats.Bytes = cw.count
	return stats, nil
}

func shownRows(table layout.Table) int {
	n := 0
	for _, page := range table.Pages {
		n += len(page.DataRows)
		if page.Truncated {
			n--
		}
	}
	return n
}

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Available reports a degraded error when the wkhtmltopdf binary is missing.
func (e WKHTMLTOPDFEngine) Available() error {
	if _, err := exec.LookPath(e.command()); err != nil {
		return export.NewError(export.KindDegraded, "wkhtmltopdf not available", err)
	}
	return nil
}

func (e WKHTMLTOPDFEngine) command() string {
	if cmd := strings.TrimSpace(e.Command); cmd != "" {
		return cmd
	}
	return "wkhtmltopdf"
}

// Render executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if err := e.Available(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append(wkhtmltopdfPageArgs(req.Geometry), e.Args...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(cmdCtx, e.command(), args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(req.HTML)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, export.NewError(export.KindDegraded, "wkhtmltopdf not available", err)
		}
		if ctxErr := cmdCtx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, export.NewError(export.KindInternal, message, err)
	}
	return stdout.Bytes(), nil
}

func wkhtmltopdfPageArgs(g layout.Geometry) []string {
	g = g.WithDefaults()
	return []string{
		"--page-width", millimetres(g.PageWidth),
		"--page-height", millimetres(g.PageHeight),
		"--margin-top", "0",
		"--margin-right", "0",
		"--margin-bottom", "0",
		"--margin-left", "0",
		"--print-media-type",
		"--quiet",
	}
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxHTMLBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.maxSize > 0 && int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, export.NewError(export.KindValidation, "pdf renderer max html bytes exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
