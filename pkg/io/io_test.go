package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
)

const sampleCSV = `region,item,value
A,x,10
A,y,5
B,x,3
`

func TestReadCSV(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if f.Len() != 3 {
		t.Errorf("Len() = %d, want 3", f.Len())
	}
	if got := strings.Join(f.Columns(), ","); got != "region,item,value" {
		t.Errorf("Columns() = %s, want region,item,value", got)
	}
	if !f.IsNumeric("value") {
		t.Error("value column should be coerced to numbers")
	}
	if f.IsNumeric("region") {
		t.Error("region column should stay strings")
	}
	vals, err := f.Floats("value")
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != 10 || vals[2] != 3 {
		t.Errorf("Floats(value) = %v", vals)
	}
}

func TestReadCSVNullLevel(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("region,value\nA,1\n,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, valid, err := f.Strings("region")
	if err != nil {
		t.Fatal(err)
	}
	if !valid[0] || valid[1] {
		t.Errorf("valid = %v, want [true false]", valid)
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("region,value\n"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 0 || !f.Has("value") {
		t.Errorf("header-only csv: Len() = %d, columns %v", f.Len(), f.Columns())
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"duplicate header", "a,a\n1,2\n"},
		{"ragged", "a,b\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ReadCSV() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestReadRecords(t *testing.T) {
	input := `[
	  {"region": "A", "item": "x", "value": 10},
	  {"region": "A", "item": "y", "value": 5, "note": "late"},
	  {"region": null, "item": "x", "value": 3}
	]`
	f, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if got := strings.Join(f.Columns(), ","); got != "region,item,value,note" {
		t.Errorf("Columns() = %s, want first-appearance order", got)
	}
	if !f.IsNumeric("value") {
		t.Error("value column should be numeric")
	}
	_, valid, _ := f.Strings("region")
	if valid[2] {
		t.Error("JSON null should be a null cell")
	}
	_, valid, _ = f.Strings("note")
	if valid[0] || !valid[1] {
		t.Errorf("missing keys should be null: %v", valid)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	for _, input := range []string{
		`{"a": 1}`,
		`[1, 2]`,
		`[{"a": {"nested": true}}]`,
		`[{"a": 1}`,
	} {
		if _, err := ReadRecords(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ReadRecords(%s) error = %v, want INVALID_INPUT", input, err)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"data.csv", FormatCSV, false},
		{"DATA.CSV", FormatCSV, false},
		{"dir/records.json", FormatJSON, false},
		{"data.parquet", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costs.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Import(path, "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if f.Len() != 3 {
		t.Errorf("Len() = %d, want 3", f.Len())
	}

	_, err = Import(filepath.Join(dir, "missing.csv"), "")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = Import(path, "xlsx")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Import(xlsx) error = %v, want INVALID_FORMAT", err)
	}
}

func TestTreemapJSONRoundTrip(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	d, err := treemap.Build(f, treemap.Options{
		Levels:     []string{"region", "item"},
		Metric:     "value",
		NodeColors: treemap.ColorColumn{Column: "value"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"total_size": 18`) {
		t.Errorf("WriteJSON output missing total_size:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `<b>`) {
		t.Error("WriteJSON should not escape tooltip markup")
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Len() != d.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), d.Len())
	}
	for i := range d.IDs {
		if got.IDs[i] != d.IDs[i] || got.Sizes[i] != d.Sizes[i] || got.Tooltips[i] != d.Tooltips[i] {
			t.Errorf("node %d = %+v, want %+v", i, got.Node(i), d.Node(i))
		}
		if got.Colors[i].String() != d.Colors[i].String() {
			t.Errorf("color %d = %v, want %v", i, got.Colors[i], d.Colors[i])
		}
	}
}

func TestReadJSONInvalid(t *testing.T) {
	input := `{"ids": ["", "a"], "labels": ["root"], "parents": ["", ""], "sizes": [1, 1], "tooltips": ["", ""]}`
	if _, err := ReadJSON(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ReadJSON() error = %v, want INVALID_INPUT", err)
	}
}

func TestExportImportJSON(t *testing.T) {
	f, _ := ReadCSV(strings.NewReader(sampleCSV))
	d, err := treemap.Build(f, treemap.Options{Levels: []string{"region"}, Metric: "value", Root: "all"})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "treemap.json")
	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.Root != "all" || got.TotalSize != 18 {
		t.Errorf("ImportJSON() root = %q total = %v", got.Root, got.TotalSize)
	}
}
