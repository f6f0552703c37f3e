package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tabrefresh/tabrefresh/tableau"
	"gopkg.in/yaml.v3"
)

var outputFormats = []string{"pretty", "json", "yaml"}

func validateOutputFormat(format string) error {
	if slices.Contains(outputFormats, format) {
		return nil
	}
	return Usagef("invalid output format %q: must be one of %s", format, strings.Join(outputFormats, ", "))
}

// RefreshResult is the document written for -o json and -o yaml.
type RefreshResult struct {
	Content tableau.Content `json:"content" yaml:"content"`
	Job     tableau.Job     `json:"job" yaml:"job"`
}

// ListResult is the document written by the list command.
type ListResult struct {
	Items []tableau.Content `json:"items" yaml:"items"`
}

// OutputDocument writes v as JSON or YAML depending on the output format.
// It does nothing for the pretty format.
func OutputDocument(v any) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}
	return nil
}

// PrintArguments shows the resolved invocation parameters. The token
// value is never shown.
func PrintArguments(p Params) {
	if IsQuiet() {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Server", p.Server},
		{"Object Name", p.Name},
		{"Object Type", p.Type},
		{"Project", p.Project},
		{"PAT Name", p.TokenName},
		{"Site URL Name", p.SiteURL},
	})
	t.Render()
}

// PrintContentTable renders content as a table.
func PrintContentTable(items []tableau.Content) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "NAME", "PROJECT", "UPDATED AT"})
	for _, item := range items {
		t.AppendRow(table.Row{item.ID, item.Name, item.ProjectName, item.UpdatedAt})
	}
	t.Render()
}
