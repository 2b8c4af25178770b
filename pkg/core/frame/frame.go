// Package frame provides the columnar source table consumed by the treemap
// builder.
//
// A [Frame] wraps a [table.Table] from go-gg and adds what the builder needs
// on top of it: null-aware string extraction for level columns, numeric
// extraction for metric columns, and a first-appearance row index that keeps
// group ordering deterministic.
//
// Frames are immutable once built and safe for concurrent reads.
package frame

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"

	"github.com/matzehuels/tooltree/pkg/errors"
)

// Frame is an ordered, column-oriented table.
type Frame struct {
	t *table.Table
}

// New wraps an existing go-gg table.
func New(t *table.Table) *Frame {
	if t == nil {
		t = new(table.Table)
	}
	return &Frame{t: t}
}

// FromColumns builds a frame from named column slices. Every value must be a
// slice and all slices must have the same length. Columns of type []any may
// hold nil to represent a null cell.
func FromColumns(names []string, cols []any) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d column names for %d columns", len(names), len(cols))
	}
	if err := errors.ValidateColumnNames(names); err != nil {
		return nil, err
	}
	n := -1
	b := table.NewBuilder(nil)
	for i, name := range names {
		v := reflect.ValueOf(cols[i])
		if v.Kind() != reflect.Slice {
			return nil, errors.New(errors.ErrCodeInvalidInput, "column %q is not a slice", name)
		}
		if n >= 0 && v.Len() != n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "column %q has %d rows, want %d", name, v.Len(), n)
		}
		n = v.Len()
		b.Add(name, cols[i])
	}
	return New(b.Done()), nil
}

// FromRecords builds a frame from row-oriented records such as decoded JSON
// objects. Column types are inferred: a column whose non-null values are all
// numbers becomes []float64 unless it contains nulls, in which case it stays
// []any. Keys missing from a record are null.
func FromRecords(columns []string, records []map[string]any) (*Frame, error) {
	cols := make([]any, len(columns))
	for j, name := range columns {
		raw := make([]any, len(records))
		numeric, hasNull := true, false
		for i, rec := range records {
			v, ok := rec[name]
			if !ok || v == nil {
				hasNull = true
				continue
			}
			if _, isStr := v.(string); isStr {
				numeric = false
			} else if _, ok := toFloat(v); !ok {
				numeric = false
			}
			raw[i] = v
		}
		if numeric && !hasNull {
			fs := make([]float64, len(raw))
			for i, v := range raw {
				fs[i], _ = toFloat(v)
			}
			cols[j] = fs
			continue
		}
		cols[j] = raw
	}
	return FromColumns(columns, cols)
}

// Table returns the underlying go-gg table.
func (f *Frame) Table() *table.Table { return f.t }

// Len returns the number of rows.
func (f *Frame) Len() int { return f.t.Len() }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string { return f.t.Columns() }

// Has reports whether the frame has a column named col.
func (f *Frame) Has(col string) bool { return f.t.Column(col) != nil }

// Strings returns the values of col as strings, along with a validity mask.
// valid[i] is false where the cell is null: a nil entry in an []any column or
// an empty string. Non-string values are rendered with fmt.
func (f *Frame) Strings(col string) (values []string, valid []bool, err error) {
	seq := f.t.Column(col)
	if seq == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "unknown column %q", col)
	}
	v := reflect.ValueOf(seq)
	values = make([]string, v.Len())
	valid = make([]bool, v.Len())
	for i := range values {
		x := v.Index(i).Interface()
		switch x := x.(type) {
		case nil:
		case string:
			values[i], valid[i] = x, x != ""
		case float64:
			values[i], valid[i] = strconv.FormatFloat(x, 'f', -1, 64), !math.IsNaN(x)
		default:
			values[i], valid[i] = fmt.Sprint(x), true
		}
	}
	return values, valid, nil
}

// Floats returns the values of col as float64. Null cells are an error.
func (f *Frame) Floats(col string) ([]float64, error) {
	seq := f.t.Column(col)
	if seq == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown column %q", col)
	}
	switch seq := seq.(type) {
	case []float64:
		return seq, nil
	case []string, []any:
		v := reflect.ValueOf(seq)
		out := make([]float64, v.Len())
		for i := range out {
			x, ok := toFloat(v.Index(i).Interface())
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "column %q row %d: %v is not a number", col, i, v.Index(i).Interface())
			}
			out[i] = x
		}
		return out, nil
	}
	if !numericKind(reflect.TypeOf(seq).Elem().Kind()) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "column %q is not numeric", col)
	}
	var out []float64
	slice.Convert(&out, seq)
	return out, nil
}

// Values returns the raw cells of col as a slice of interfaces.
func (f *Frame) Values(col string) ([]any, error) {
	seq := f.t.Column(col)
	if seq == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown column %q", col)
	}
	v := reflect.ValueOf(seq)
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out, nil
}

// IsNumeric reports whether every non-null cell in col is a number.
func (f *Frame) IsNumeric(col string) bool {
	seq := f.t.Column(col)
	if seq == nil {
		return false
	}
	if numericKind(reflect.TypeOf(seq).Elem().Kind()) {
		return true
	}
	v := reflect.ValueOf(seq)
	for i := 0; i < v.Len(); i++ {
		x := v.Index(i).Interface()
		if x == nil {
			continue
		}
		if _, ok := x.(string); ok {
			return false
		}
		if _, ok := toFloat(x); !ok {
			return false
		}
	}
	return true
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(x any) (float64, bool) {
	switch x := x.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
