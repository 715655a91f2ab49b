package export

import (
	"fmt"
	"strings"
)

// Placeholder field names used for empty area-style exports.
const (
	PlaceholderStatusField  = "status"
	PlaceholderMessageField = "message"
	PlaceholderStatusNoData = "no_data"
)

// Dataset is an ordered sequence of rows sharing the same fields.
type Dataset struct {
	Fields []string
	Rows   []Row
}

// NewDataset creates a dataset with the given field order.
func NewDataset(fields []string, rows ...Row) *Dataset {
	return &Dataset{Fields: append([]string(nil), fields...), Rows: rows}
}

// DatasetFromRecords converts records into a dataset. The first record fixes
// the field order; missing fields become nil and extra fields are dropped.
func DatasetFromRecords(records []Record) *Dataset {
	if len(records) == 0 {
		return &Dataset{}
	}
	fields := records[0].Keys()
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(fields))
		for i, field := range fields {
			row[i], _ = rec.Get(field)
		}
		rows = append(rows, row)
	}
	return &Dataset{Fields: fields, Rows: rows}
}

// PlaceholderDataset returns the single-row dataset used when an area export
// has no data.
func PlaceholderDataset(entity EntityType) *Dataset {
	message := fmt.Sprintf("No %s records found for the selected filters", strings.ToLower(entity.Label()))
	return NewDataset(
		[]string{PlaceholderStatusField, PlaceholderMessageField},
		Row{PlaceholderStatusNoData, message},
	)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// FieldIndex returns the position of name or -1.
func (d *Dataset) FieldIndex(name string) int {
	if d == nil {
		return -1
	}
	for i, field := range d.Fields {
		if field == name {
			return i
		}
	}
	return -1
}

// Record returns row i as an ordered record.
func (d *Dataset) Record(i int) Record {
	rec := Record{}
	if d == nil || i < 0 || i >= len(d.Rows) {
		return rec
	}
	row := d.Rows[i]
	for idx, field := range d.Fields {
		var value any
		if idx < len(row) {
			value = row[idx]
		}
		rec.Set(field, value)
	}
	return rec
}

// Records returns every row as an ordered record.
func (d *Dataset) Records() []Record {
	records := make([]Record, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		records = append(records, d.Record(i))
	}
	return records
}

// Project keeps only the selected fields, in dataset order.
func (d *Dataset) Project(selected []string) (*Dataset, error) {
	if d == nil {
		return &Dataset{}, nil
	}
	if len(selected) == 0 {
		return d, nil
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(d.Fields) > 0 && d.FieldIndex(name) < 0 {
			return nil, NewError(KindValidation, fmt.Sprintf("unknown field %q", name), nil).
				WithAllowed("selectedFields", d.Fields)
		}
		wanted[name] = struct{}{}
	}
	if len(wanted) == 0 {
		return d, nil
	}

	indices := make([]int, 0, len(wanted))
	fields := make([]string, 0, len(wanted))
	for i, field := range d.Fields {
		if _, ok := wanted[field]; ok {
			indices = append(indices, i)
			fields = append(fields, field)
		}
	}

	rows := make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		projected := make(Row, len(indices))
		for j, idx := range indices {
			if idx < len(row) {
				projected[j] = row[idx]
			}
		}
		rows = append(rows, projected)
	}
	return &Dataset{Fields: fields, Rows: rows}, nil
}

// FilterDateRange keeps rows whose field value falls inside r. Rows whose
// value is not a date are dropped when a range is set.
func (d *Dataset) FilterDateRange(field string, r *DateRange) (*Dataset, error) {
	if d == nil || r.IsZero() {
		return d, nil
	}
	idx := d.FieldIndex(field)
	if idx < 0 {
		return nil, NewError(KindValidation, fmt.Sprintf("date field %q not present", field), nil)
	}
	rows := make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		if idx >= len(row) {
			continue
		}
		value, ok := coerceTime(row[idx])
		if !ok {
			continue
		}
		if r.Contains(value) {
			rows = append(rows, row)
		}
	}
	return &Dataset{Fields: d.Fields, Rows: rows}, nil
}
