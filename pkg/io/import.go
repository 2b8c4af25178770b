package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-gg/table"

	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
)

// Input formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// DetectFormat returns the input format implied by the extension of path.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer input format from %q (use .csv or .json)", path)
}

// Import reads the table at path. An empty format is inferred from the file
// extension.
func Import(path, format string) (*frame.Frame, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a table in the given format from r.
func Read(r io.Reader, format string) (*frame.Frame, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadRecords(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q (must be csv or json)", format)
}

// ReadCSV decodes a CSV table with a header row.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode csv")
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "csv input has no header row")
	}
	header := rows[0]
	if err := errors.ValidateColumnNames(header); err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		cols := make([]any, len(header))
		for i := range cols {
			cols[i] = []string{}
		}
		return frame.FromColumns(header, cols)
	}
	return frame.New(table.TableFromStrings(header, rows[1:], true)), nil
}

// ReadRecords decodes a JSON array of objects.
func ReadRecords(r io.Reader) (*frame.Frame, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode records")
	}

	var columns []string
	seen := make(map[string]bool)
	records := make([]map[string]any, len(raw))
	for i, msg := range raw {
		keys, err := objectKeys(msg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "record %d", i)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(&records[i]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "record %d", i)
		}
		for k, v := range records[i] {
			switch v.(type) {
			case map[string]any, []any:
				return nil, errors.New(errors.ErrCodeInvalidInput, "record %d: field %q is not a scalar", i, k)
			}
		}
	}
	return frame.FromRecords(columns, records)
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(msg json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// ReadJSON decodes treemap data from r and validates it.
func ReadJSON(r io.Reader) (*treemap.Data, error) {
	var d treemap.Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode treemap")
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid treemap")
	}
	return &d, nil
}

// ImportJSON reads treemap data from the JSON file at path.
func ImportJSON(path string) (*treemap.Data, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "treemap file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
