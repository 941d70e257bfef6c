// Package view renders listing results and builds the invocation logger.
// The human view prints aligned tables; the JSON view emits records as-is
// for scripting.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/resolve"
)

// Human renders listings as a colored table.
type Human struct {
	w io.Writer
}

// NewHuman returns a table renderer writing to w.
func NewHuman(w io.Writer) *Human {
	return &Human{w: w}
}

// RenderList prints one row per object with the requested display fields as
// columns.
func (h *Human) RenderList(objects []resolve.Object, fields []resolve.Field) error {
	headers := make([]any, len(fields))
	for i, f := range fields {
		headers[i] = f.Display
	}

	tbl := table.New(headers...).WithWriter(h.w)
	tbl.WithHeaderFormatter(color.New(color.FgGreen, color.Underline).SprintfFunc())

	for _, obj := range objects {
		row := make([]any, len(fields))
		for i, f := range fields {
			row[i] = cellValue(obj[f.Name])
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
	return nil
}

// cellValue renders one field value for table display. Attribute maps print
// as space-separated key=value pairs in key order.
func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case attr.Map:
		return joinPairs(map[string]string(t))
	case map[string]any:
		pairs := make(map[string]string, len(t))
		for k, av := range t {
			pairs[k] = attr.Stringify(av)
		}
		return joinPairs(pairs)
	case float64:
		return attr.Stringify(t)
	default:
		return fmt.Sprint(t)
	}
}

func joinPairs(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + pairs[k]
	}
	return strings.Join(parts, " ")
}

// JSON renders listings as indented JSON, ignoring display fields.
type JSON struct {
	w io.Writer
}

// NewJSON returns a JSON renderer writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// RenderList emits the objects as a JSON array.
func (j *JSON) RenderList(objects []resolve.Object, fields []resolve.Field) error {
	if objects == nil {
		objects = []resolve.Object{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}
