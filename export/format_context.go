package export

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellFormatter converts scalar row values into display text.
type CellFormatter struct {
	location *time.Location
}

// NewCellFormatter creates a formatter honoring the configured timezone.
func NewCellFormatter(opts FormatOptions) (CellFormatter, error) {
	f := CellFormatter{}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return CellFormatter{}, NewError(KindValidation, "invalid timezone", err)
		}
		f.location = loc
	}
	return f, nil
}

func (f CellFormatter) applyTimezone(value time.Time) time.Time {
	if f.location == nil {
		return value
	}
	return value.In(f.location)
}

// FormatRow formats every cell of row. A row that does not match the field
// count or holds a non-scalar value fails with a row_render error.
func (f CellFormatter) FormatRow(fields []string, row Row) ([]string, error) {
	if len(row) != len(fields) {
		return nil, NewError(KindRowRender, fmt.Sprintf("row has %d values for %d fields", len(row), len(fields)), nil)
	}
	out := make([]string, len(row))
	for i, value := range row {
		text, err := f.FormatValue(value)
		if err != nil {
			return nil, NewError(KindRowRender, fmt.Sprintf("field %q", fields[i]), err)
		}
		out[i] = text
	}
	return out, nil
}

// FormatValue formats a single scalar value.
func (f CellFormatter) FormatValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", NewError(KindRowRender, "non-finite number", nil)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return f.formatTime(v), nil
	case *time.Time:
		if v == nil {
			return "", nil
		}
		return f.formatTime(*v), nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", NewError(KindRowRender, fmt.Sprintf("unsupported value type %T", value), nil)
	}
}

func (f CellFormatter) formatTime(value time.Time) string {
	value = f.applyTimezone(value)
	if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
		return value.Format("2006-01-02")
	}
	return value.Format(time.RFC3339)
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseTimeString(v)
	case int64:
		return time.Unix(v, 0), true
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return time.Unix(parsed, 0), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func parseTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
