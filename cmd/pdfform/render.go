package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// report writes styled command output
type report struct {
	w  io.Writer
	st styles
}

func newReport(w io.Writer) *report {
	return &report{w: w, st: newStyles(w)}
}

func (r *report) title(format string, args ...any) {
	fmt.Fprintln(r.w, r.st.title.Render(fmt.Sprintf(format, args...)))
}

func (r *report) kv(key string, value any) {
	fmt.Fprintf(r.w, "%s %v\n", r.st.label.Render(key+":"), value)
}

func (r *report) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *report) output(path string) {
	if path == "" {
		r.line(r.st.dim.Render("no changes; nothing written"))
		return
	}
	r.line(r.st.ok.Render("wrote " + path))
}

func (r *report) diagnostics(d *formerrors.Diagnostics) {
	for _, e := range d.Errors {
		r.line(r.st.err.Render("error: " + e.Error()))
	}
	for _, w := range d.Warnings {
		r.line(r.st.warn.Render("warning: " + w.Error()))
	}
}

// fields renders summaries as a table
func (r *report) fields(fields []pdf.FieldSummary, withPage bool) {
	if len(fields) == 0 {
		r.line(r.st.dim.Render("no fields"))
		return
	}

	headers := []string{"Name", "Type", "Value", "Description", "Flags"}
	if withPage {
		headers = append([]string{"Page", "Position"}, headers...)
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		desc := f.Tooltip
		if desc == "" {
			desc = f.Caption
		}
		row := []string{f.Name, f.Type, f.Value, desc, fieldFlags(f)}
		if withPage {
			pos := ""
			if f.Rect != nil {
				pos = fmt.Sprintf("%.0f,%.0f", f.Rect.Left(), f.Rect.Top())
			}
			row = append([]string{pageLabel(f.Page), pos}, row...)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.header
			}
			return r.st.cell
		})
	r.line(t.Render())
}

func pageLabel(page int) string {
	if page == 0 {
		return "?"
	}
	return fmt.Sprint(page)
}

func fieldFlags(f pdf.FieldSummary) string {
	var flags []string
	if f.ReadOnly {
		flags = append(flags, "read-only")
	}
	if f.Hidden {
		flags = append(flags, "hidden")
	}
	if len(f.States) > 0 {
		flags = append(flags, strings.Join(f.States, "/"))
	}
	return strings.Join(flags, ", ")
}

func (r *report) inspect(res *pdf.PDFFormInspectResult) {
	r.title("%s", res.Path)
	r.kv("Form kind", res.FormKind)
	r.kv("PDF version", res.Version)
	r.kv("Pages", fmt.Sprintf("%d (%d with text)", res.PageCount, res.TextPages))
	r.kv("Fields", fmt.Sprintf("%d%s", res.FieldCount, counts(res.FieldTypes)))
	r.kv("Annotations", fmt.Sprintf("%d (%d widgets)", res.AnnotationCount, res.WidgetCount))
	r.kv("XFA", res.HasXFA)
	r.kv("NeedAppearances", res.NeedAppearances)
	r.kv("Encrypted", res.Encrypted)
	if res.Encrypted {
		r.kv("Permissions", res.Permissions)
	}
	if len(res.JavaScript) > 0 {
		r.kv("JavaScript", strings.Join(res.JavaScript, ", "))
	}
	for _, rec := range res.Recommendations {
		r.line(r.st.warn.Render("• " + rec))
	}
	r.diagnostics(&res.Diagnostics)
}

func counts(m map[string]int) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, m[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func (r *report) fill(res *pdf.PDFFormFillResult) {
	r.title("Filled %d field(s) in %s", res.Changed, res.Path)
	r.output(res.Output)
	for _, key := range res.Unmatched {
		msg := "unmatched: " + key
		if s := res.Suggestions[key]; len(s) > 0 {
			msg += " (did you mean " + strings.Join(s, ", ") + "?)"
		}
		r.line(r.st.warn.Render(msg))
	}
	r.diagnostics(&res.Diagnostics)
}

func (r *report) edit(verb string, names []string, output string, d *formerrors.Diagnostics) {
	r.title("%s %d field(s)", verb, len(names))
	if len(names) > 0 {
		r.line(strings.Join(names, ", "))
	}
	r.output(output)
	r.diagnostics(d)
}
