package exportapi

import (
	"fmt"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
)

// DefaultBasePath is the mount point used when Config.BasePath is empty.
const DefaultBasePath = "/api/exports"

// AreaSuffix is appended to the base path for the area export endpoint.
const AreaSuffix = "area"

// Header names set on export responses.
const (
	HeaderExportID = "X-Export-Id"
	HeaderRows     = "X-Export-Rows"
	HeaderSkipped  = "X-Export-Skipped"
)

// Config configures the shared export API controller.
type Config struct {
	Coordinator    *export.Coordinator
	BasePath       string
	Logger         export.Logger
	RequestDecoder RequestDecoder
	MaxBodyBytes   int64
}

// Controller exposes export API handlers for multiple transports.
type Controller struct {
	coordinator    *export.Coordinator
	basePath       string
	logger         export.Logger
	requestDecoder RequestDecoder
}

// NewController creates a shared export API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	decoder := cfg.RequestDecoder
	if decoder == nil {
		decoder = JSONRequestDecoder{MaxBodyBytes: cfg.MaxBodyBytes}
	}
	return &Controller{
		coordinator:    cfg.Coordinator,
		basePath:       basePath,
		logger:         logger,
		requestDecoder: decoder,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// AreaPath returns the path of the area export endpoint.
func (c *Controller) AreaPath() string {
	return c.BasePath() + "/" + AreaSuffix
}

// Serve routes export endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		c.writeError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		c.writeError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}
	pathSuffix := strings.Trim(strings.TrimPrefix(req.Path(), c.basePath), "/")

	switch pathSuffix {
	case "":
		switch req.Method() {
		case http.MethodPost:
			c.handleExport(req, res, false)
		case http.MethodGet:
			c.handleMetadata(res)
		default:
			writeMethodNotAllowed(res, "GET,POST")
		}
	case AreaSuffix:
		if req.Method() != http.MethodPost {
			writeMethodNotAllowed(res, "POST")
			return
		}
		c.handleExport(req, res, true)
	default:
		writeNotFound(res)
	}
}

func (c *Controller) handleExport(req Request, res Response, area bool) {
	if c.coordinator == nil {
		c.writeError(res, export.NewError(export.KindInternal, "export coordinator not configured", nil))
		return
	}
	if c.requestDecoder == nil {
		c.writeError(res, export.NewError(export.KindInternal, "request decoder not configured", nil))
		return
	}
	decoded, err := c.requestDecoder.Decode(req)
	if err != nil {
		c.writeError(res, err)
		return
	}

	var result export.Result
	if area {
		result, err = c.coordinator.ExportArea(req.Context(), decoded)
	} else {
		result, err = c.coordinator.Export(req.Context(), decoded)
	}
	if err != nil {
		c.writeError(res, err)
		return
	}

	setDownloadHeaders(res, result)
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(result.Body); err != nil {
		c.logger.Errorf("export %s: write response: %v", result.ID, err)
	}
}

// MetadataResponse lists the values accepted by the export endpoints.
type MetadataResponse struct {
	Types   []string `json:"types"`
	Formats []string `json:"formats"`
}

func (c *Controller) handleMetadata(res Response) {
	writeJSON(res, http.StatusOK, MetadataResponse{
		Types:   export.EntityTypeNames(),
		Formats: export.FormatNames(),
	})
}

func (c *Controller) writeError(res Response, err error) {
	var logger export.Logger = export.NopLogger{}
	if c != nil && c.logger != nil {
		logger = c.logger
	}
	if status := statusForError(export.AsGoError(err)); status >= http.StatusInternalServerError {
		logger.Errorf("export request failed: %v", err)
	}
	WriteError(res, err)
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

func writeMethodNotAllowed(res Response, allow string) {
	res.SetHeader("Allow", allow)
	res.WriteHeader(http.StatusMethodNotAllowed)
}

// WriteError writes the JSON error payload for err. Client errors carry
// their message and enumerated values; anything else is reported as a
// generic failure.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	status := statusForError(ge)

	payload := ErrorResponse{Error: ge.Message, Code: ge.TextCode}
	if status >= http.StatusInternalServerError {
		payload.Error = genericFailureMessage
	}
	if exportErr, ok := export.AsExportError(err); ok && status < http.StatusInternalServerError {
		payload.Details = exportErr.Details
		switch exportErr.Field {
		case "type":
			payload.AvailableTypes = exportErr.Allowed
		case "format":
			payload.AvailableFormats = exportErr.Allowed
		}
	}
	writeJSON(res, status, payload)
}

const genericFailureMessage = "Failed to generate export"

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func setDownloadHeaders(res Response, result export.Result) {
	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	res.SetHeader("X-Content-Type-Options", "nosniff")
	if result.ID != "" {
		res.SetHeader(HeaderExportID, result.ID)
	}
	res.SetHeader(HeaderRows, fmt.Sprintf("%d", result.Rows))
	if result.Skipped > 0 {
		res.SetHeader(HeaderSkipped, fmt.Sprintf("%d", result.Skipped))
	}
	if result.Fallback {
		res.SetHeader(export.FallbackHeader, "true")
	}
}
