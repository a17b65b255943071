package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// printer writes command results in the format picked with --output.
type printer struct {
	format string
	out    io.Writer
}

func newPrinter(format string, out io.Writer) (printer, error) {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return printer{format: format, out: out}, nil
	default:
		return printer{}, fmt.Errorf("unknown output format %q (supported: table, json, yaml)", format)
	}
}

// print renders data as JSON or YAML, or the given rows as a table.
func (p printer) print(data any, headers []string, rows [][]string) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		// through JSON so keys match the API
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.out, "No results")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(p.out, t.String())
	return err
}

// message prints a confirmation line in table mode and data otherwise.
func (p printer) message(data any, text string) error {
	if p.format != formatTable {
		return p.print(data, nil, nil)
	}
	_, err := fmt.Fprintln(p.out, text)
	return err
}

func str(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func dayPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return day(*t)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
