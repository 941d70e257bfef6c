// Package bulk loads delimited bulk-add files into structured records.
//
// The first line of a file names the fields; every following line must carry
// exactly that many values. An "attributes" field holds comma-separated
// key=value pairs and is expanded through the attr package for resource
// types that support attributes.
package bulk

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/errs"
)

// DefaultDelimiter separates fields in bulk-add files.
const DefaultDelimiter = ':'

// attributeless lists the resource types that do not themselves carry
// attributes.
var attributeless = map[string]struct{}{
	"attributes": {},
}

// Record is one parsed bulk-file row. Line is the 1-based source line,
// counting the header as line 1. Fields maps header names to values: strings,
// booleans after coercion, or an attr.Map for the attributes field. Records
// are never mutated after a load completes.
type Record struct {
	Line   int
	Fields map[string]any
}

// Load parses a delimited stream into records. The whole load either fully
// succeeds or fails atomically: any malformed row aborts with a FormatError
// citing its line number and no records are returned. Loading is pure
// parsing; nothing is handed downstream here.
//
// String values that case-insensitively equal "true" or "false" are coerced
// to booleans. Detection and evaluation both use the normalized form, so
// "TRUE" and "true" coerce the same way as "True".
func Load(r io.Reader, delimiter rune, resourceType string, log *attr.ParseLog) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Formatf(1, "error parsing file on line 1: %v", err)
	}

	_, noAttrs := attributeless[resourceType]

	var records []Record
	for lineno := 2; ; lineno++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Formatf(lineno, "error parsing file on line %d: %v", lineno, err)
		}
		// Blank lines are skipped by the reader; recover the source line so
		// errors cite the file, not the record index.
		if l, _ := reader.FieldPos(0); l > lineno {
			lineno = l
		}
		if len(row) != len(header) {
			return nil, errs.Formatf(lineno, "file has wrong number of fields on line %d", lineno)
		}

		fields := make(map[string]any, len(header))
		for i, name := range header {
			fields[name] = row[i]
		}

		if raw, ok := fields["attributes"].(string); ok && !noAttrs {
			attrs, err := attr.Parse([]string{raw}, log)
			if err != nil {
				return nil, err
			}
			fields["attributes"] = attrs
		}

		for k, v := range fields {
			s, ok := v.(string)
			if !ok {
				// Already structured (the attributes map); leave untouched.
				continue
			}
			switch strings.ToLower(s) {
			case "true":
				fields[k] = true
			case "false":
				fields[k] = false
			}
		}

		records = append(records, Record{Line: lineno, Fields: fields})
	}
	return records, nil
}
