// Package output renders command results as JSON, YAML, or tables. JSON and
// YAML are lossless renderings of the value; tables are a human-readable
// view of flat documents and lists.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how a value is rendered.
type Format string

const (
	// FormatAuto picks a table for flat data and JSON otherwise.
	FormatAuto Format = "auto"

	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"

	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"

	// FormatTable renders an aligned text table.
	FormatTable Format = "table"
)

// Validate checks if the format is valid.
func (f Format) Validate() error {
	switch f {
	case FormatAuto, FormatJSON, FormatYAML, FormatTable:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", f)
	}
}

// Machine reports whether the format is for machine consumption; commands
// suppress progress narration for machine formats.
func (f Format) Machine() bool {
	return f == FormatJSON || f == FormatYAML
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	f := Format(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Print renders v to w in the requested format.
func Print(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		return printJSON(w, v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatTable, FormatAuto:
		if printed, err := printTable(w, v); printed || err != nil {
			return err
		}
		return printJSON(w, v)
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// printTable renders flat maps as key/value rows and lists of flat maps as
// a columnar table. It reports false for values it cannot lay out flat, so
// Print can fall back to JSON.
func printTable(w io.Writer, v any) (bool, error) {
	switch doc := v.(type) {
	case map[string]any:
		if items, ok := doc["items"].([]any); ok && len(doc) == 1 {
			return printRows(w, items)
		}
		if !flatMap(doc) {
			return false, nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, key := range sortedKeys(doc) {
			fmt.Fprintf(tw, "%s\t%v\n", key, doc[key])
		}
		return true, tw.Flush()
	case []any:
		return printRows(w, doc)
	default:
		return false, nil
	}
}

// printRows renders a list of flat maps as one table with the union of
// their columns.
func printRows(w io.Writer, items []any) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	columnSet := make(map[string]bool)
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok || !flatMap(row) {
			return false, nil
		}
		for key := range row {
			columnSet[key] = true
		}
		rows = append(rows, row)
	}
	columns := make([]string, 0, len(columnSet))
	for key := range columnSet {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, column := range columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, column)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, column := range columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if value, ok := row[column]; ok {
				fmt.Fprintf(tw, "%v", value)
			}
		}
		fmt.Fprintln(tw)
	}
	return true, tw.Flush()
}

// flatMap reports whether every value is a scalar.
func flatMap(doc map[string]any) bool {
	for _, value := range doc {
		switch value.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func sortedKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
