package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/arloai/reporting/engine/core"
)

// JSONReader reads JSON feeds shaped either as a top-level array of objects
// or as an envelope {"records": [...]}.
type JSONReader struct{}

func (r *JSONReader) Kind() core.SourceKind {
	return core.KindJSON
}

func (r *JSONReader) Read(ctx context.Context, in io.Reader, name string) (*RawRecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "JSON read canceled")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to read JSON source")
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		var envelope struct {
			Records []map[string]any `json:"records"`
		}
		if envErr := json.Unmarshal(data, &envelope); envErr != nil || envelope.Records == nil {
			return nil, &FormatError{Source: name, Expected: "an array of objects or a {records: [...]} envelope"}
		}
		objects = envelope.Records
	}

	seen := make(map[string]bool)
	var header []string
	rows := make([]RawRow, 0, len(objects))
	for _, obj := range objects {
		row := make(RawRow, len(obj))
		for k, v := range obj {
			row[k] = stringify(v)
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}
	sort.Strings(header)

	return &RawRecordSet{
		Kind:   core.KindJSON,
		Source: name,
		Header: header,
		Rows:   rows,
	}, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers arrive as float64; keep integral values clean.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
