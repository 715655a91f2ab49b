package exportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-impact-export/export"
)

// DefaultMaxBodyBytes bounds decoded request bodies.
const DefaultMaxBodyBytes int64 = 10 * 1024 * 1024

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Body() io.ReadCloser
}

// RequestDecoder parses an HTTP request into an export request.
type RequestDecoder interface {
	Decode(req Request) (export.Request, error)
}

// JSONRequestDecoder decodes JSON bodies into export requests.
type JSONRequestDecoder struct {
	MaxBodyBytes int64
}

// Decode reads, validates and converts a JSON request body.
func (d JSONRequestDecoder) Decode(req Request) (export.Request, error) {
	if req == nil {
		return export.Request{}, export.NewError(export.KindInternal, "request is nil", nil)
	}
	if contentType := req.Header("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || !isJSONMediaType(mediaType) {
			return export.Request{}, export.NewError(export.KindValidation, "content type must be application/json", err)
		}
	}
	body := req.Body()
	if body == nil {
		return export.Request{}, export.NewError(export.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	maxBytes := d.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return export.Request{}, export.NewError(export.KindValidation, "read request body", err)
	}
	if int64(len(raw)) > maxBytes {
		return export.Request{}, export.NewError(export.KindValidation, "request body too large", nil)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return export.Request{}, export.NewError(export.KindValidation, "request body is required", nil)
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return export.Request{}, err
	}
	if err := payloadValidator.Struct(payload); err != nil {
		return export.Request{}, validationError(err)
	}
	return payload.toRequest(), nil
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

type requestPayload struct {
	Type     string          `json:"type"`
	Format   string          `json:"format"`
	Filename string          `json:"filename,omitempty" validate:"max=200"`
	Title    string          `json:"title,omitempty" validate:"max=300"`
	Summary  []string        `json:"summary,omitempty" validate:"max=20,dive,max=300"`
	Options  optionsPayload  `json:"options"`
	Data     []export.Record `json:"data,omitempty"`
}

type optionsPayload struct {
	DateRange      *dateRangePayload `json:"dateRange,omitempty"`
	SelectedFields []string          `json:"selectedFields,omitempty" validate:"max=100,dive,required,max=128"`
	IncludeHeaders *bool             `json:"includeHeaders,omitempty"`
	AllPages       bool              `json:"allPages,omitempty"`
	Timezone       string            `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

type dateRangePayload struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to" validate:"omitempty,gtefield=From"`
}

// UnmarshalJSON accepts RFC 3339 timestamps or plain yyyy-mm-dd dates.
func (p *dateRangePayload) UnmarshalJSON(data []byte) error {
	var window export.DateRange
	if err := json.Unmarshal(data, &window); err != nil {
		return err
	}
	p.From, p.To = window.From, window.To
	return nil
}

func (p requestPayload) toRequest() export.Request {
	req := export.Request{
		EntityType: export.EntityType(p.Type),
		Format:     export.Format(p.Format),
		Filename:   p.Filename,
		Title:      strings.TrimSpace(p.Title),
		Summary:    p.Summary,
		Data:       p.Data,
		Options: export.ExportOptions{
			Filename:       p.Filename,
			SelectedFields: p.Options.SelectedFields,
		},
	}
	if p.Options.IncludeHeaders != nil {
		req.Options.IncludeHeaders = *p.Options.IncludeHeaders
		req.Options.HeadersSet = true
	}
	if p.Options.DateRange != nil {
		window := &export.DateRange{From: p.Options.DateRange.From, To: p.Options.DateRange.To}
		if !window.IsZero() {
			req.Options.DateRange = window
		}
	}
	req.Render.Document.AllPages = p.Options.AllPages
	req.Render.Format.Timezone = p.Options.Timezone
	return req
}

func decodePayload(raw []byte) (requestPayload, error) {
	var payload requestPayload
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return requestPayload{}, export.NewError(export.KindValidation, "invalid request payload", err)
	}
	return payload, nil
}

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return export.NewError(export.KindValidation, "invalid request payload", err)
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return export.NewError(export.KindValidation, fmt.Sprintf("invalid %s: %s", field, describeTag(fe)), err)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return "exceeds maximum of " + fe.Param()
	case "required":
		return "value is required"
	case "gtefield":
		return "must not be before " + strings.ToLower(fe.Param())
	case "timezone":
		return "unknown timezone"
	default:
		return "failed " + fe.Tag()
	}
}
