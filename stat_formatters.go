package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/ddsummary/dictionary"
	"github.com/pivolan/ddsummary/domain/models"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

func render(t table.Writer, format string) string {
	switch format {
	case FormatMarkdown:
		return t.RenderMarkdown()
	case FormatCSV:
		t.SetTitle("")
		return t.RenderCSV()
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

// detail is the variant-specific column of a summary row.
func detail(r models.SummaryResult) string {
	switch {
	case r.Numeric != nil:
		n := r.Numeric
		if n.Mean == nil {
			return fmt.Sprintf("invalid=%d", n.Invalid)
		}
		s := fmt.Sprintf("mean=%s", formatFloat(n.Mean))
		if n.Min != nil && n.Max != nil {
			s += fmt.Sprintf(" range=[%s, %s]", formatFloat(n.Min), formatFloat(n.Max))
		}
		return s + fmt.Sprintf(" invalid=%d", n.Invalid)
	case r.Enum != nil:
		codes := make([]string, 0, len(r.Enum.Observed))
		for code := range r.Enum.Observed {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, fmt.Sprintf("%s=%d", code, r.Enum.Observed[code]))
		}
		return strings.Join(parts, " ")
	}
	parts := make([]string, 0, len(r.TopValues))
	for _, v := range r.TopValues {
		parts = append(parts, fmt.Sprintf("%s=%d", v.Value, v.Count))
	}
	return strings.Join(parts, " ")
}

// GenerateSummaryTable renders one row per variable of a table.
func GenerateSummaryTable(title string, results []models.SummaryResult, format string) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Variable", "Type", "Count", "Missing", "Distinct", "Detail"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Variable, r.Type, r.Count, r.Missing, r.Distinct, detail(r)})
	}
	return render(t, format)
}

// GenerateDiscrepancyTable renders the schema reconciliation of a table.
func GenerateDiscrepancyTable(report models.TableReport, format string) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%d rows from %s)", report.Table, report.RowCount, report.Source))
	t.AppendHeader(table.Row{"Kind", "Names"})
	t.AppendRow(table.Row{"recognized", strings.Join(report.Recognized, ", ")})
	t.AppendRow(table.Row{"unrecognized", strings.Join(report.Unrecognized, ", ")})
	t.AppendRow(table.Row{"unseen", strings.Join(report.Unseen, ", ")})
	if len(report.Duplicates) > 0 {
		t.AppendRow(table.Row{"duplicate", strings.Join(report.Duplicates, ", ")})
	}

	vars := make([]string, 0, len(report.Enums))
	for v := range report.Enums {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		e := report.Enums[v]
		if len(e.Missed) > 0 {
			t.AppendRow(table.Row{v + " missed", strings.Join(e.Missed, ", ")})
		}
		if len(e.Unexpected) > 0 {
			codes := make([]string, 0, len(e.Unexpected))
			for code := range e.Unexpected {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			t.AppendRow(table.Row{v + " unexpected", strings.Join(codes, ", ")})
		}
	}
	return render(t, format)
}

func GenerateUnrecognizedTables(tables []models.UnrecognizedTable, format string) string {
	t := table.NewWriter()
	t.SetTitle("Unrecognized tables")
	t.AppendHeader(table.Row{"Table", "Columns"})
	for _, u := range tables {
		t.AppendRow(table.Row{u.Name, strings.Join(u.Columns, ", ")})
	}
	return render(t, format)
}

// GenerateDictionaryTable lists every declared variable of a dictionary.
func GenerateDictionaryTable(d *dictionary.Dictionary, format string) string {
	t := table.NewWriter()
	t.SetTitle(d.Name)
	t.AppendHeader(table.Row{"Table", "Variable", "Type", "Codes"})
	for _, tbl := range d.Tables() {
		for _, v := range tbl.Variables() {
			codes := ""
			if vocab := v.Vocabulary(); vocab != nil {
				codes = strconv.Itoa(vocab.Len())
			}
			t.AppendRow(table.Row{tbl.Name(), v.Name(), v.Type(), codes})
		}
	}
	return render(t, format)
}
