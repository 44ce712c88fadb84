// Package output renders recording details and category reference
// tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/recording"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (known: table, json)", name)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Formatter handles output formatting.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// RenderDetails outputs a recording summary. With rawTimestamps the time
// range is printed as nanosecond values instead of wall-clock times.
func (f *Formatter) RenderDetails(d recording.Details, rawTimestamps bool) error {
	if f.format == FormatJSON {
		return f.renderJSON(d)
	}
	return f.renderDetailsTable(d, rawTimestamps)
}

// renderJSON outputs any payload as indented JSON.
func (f *Formatter) renderJSON(payload any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// renderDetailsTable outputs the recording summary as a styled table.
func (f *Formatter) renderDetailsTable(d recording.Details, rawTimestamps bool) error {
	fmt.Fprintln(f.writer, titleStyle.Render("Recording Details"))

	rows := make([][]string, len(d.Types))
	for i, tc := range d.Types {
		category := tc.Category
		if category == "" {
			category = "-"
		}
		rows[i] = []string{tc.Type, category, fmt.Sprintf("%d", tc.Count)}
	}

	fmt.Fprintln(f.writer, f.table([]string{"EVENT TYPE", "CATEGORY", "COUNT"}, rows))
	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Events: %d\n", d.EventCount)
	if d.EventCount > 0 {
		fmt.Fprintf(f.writer, "Start:  %s\n", formatInstant(d.StartNanos, rawTimestamps))
		fmt.Fprintf(f.writer, "End:    %s\n", formatInstant(d.EndNanos, rawTimestamps))
		fmt.Fprintf(f.writer, "Span:   %s\n", formatSpan(d.Duration()))
	}
	return nil
}

// RenderCategories outputs the category reference.
func (f *Formatter) RenderCategories(categories []event.Category) error {
	if f.format == FormatJSON {
		type entry struct {
			Name     string   `json:"name"`
			WeighedBy string   `json:"weighed_by"`
			Unit     string   `json:"unit"`
			Matches  []string `json:"matches"`
		}
		entries := make([]entry, len(categories))
		for i, c := range categories {
			entries[i] = entry{
				Name:     string(c),
				WeighedBy: string(c.Kind()),
				Unit:     c.Unit(),
				Matches:  c.Aliases(),
			}
		}
		return f.renderJSON(entries)
	}

	fmt.Fprintln(f.writer, titleStyle.Render("Event Categories"))

	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{
			string(c),
			string(c.Kind()),
			c.Unit(),
			strings.Join(c.Aliases(), ", "),
		}
	}

	fmt.Fprintln(f.writer, f.table([]string{"CATEGORY", "WEIGHED BY", "UNIT", "MATCHES"}, rows))
	return nil
}

// table builds a styled table with the shared look.
func (f *Formatter) table(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
}

// formatInstant renders an epoch-nanosecond instant.
func formatInstant(nanos int64, raw bool) string {
	if raw {
		return fmt.Sprintf("%d", nanos)
	}
	return time.Unix(0, nanos).UTC().Format("2006-01-02 15:04:05.000")
}

// formatSpan renders a recording span as "h min s".
func formatSpan(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%d h %d min %d s", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d min %d s", m, s)
	default:
		return fmt.Sprintf("%d s", s)
	}
}
