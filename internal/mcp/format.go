package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// maxListedFiles caps the directory listing in server info
const maxListedFiles = 10

func formatDiagnostics(d *formerrors.Diagnostics) string {
	if d == nil || (len(d.Errors) == 0 && len(d.Warnings) == 0) {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nDiagnostics: " + d.Summary() + "\n")
	for _, e := range d.Errors {
		fmt.Fprintf(&b, "  ❌ %s\n", e.Error())
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(&b, "  ⚠️  %s\n", w.Error())
	}
	return b.String()
}

func formatOutput(output string) string {
	if output == "" {
		return "No changes were made; nothing was written.\n"
	}
	return fmt.Sprintf("Written to: %s\n", output)
}

func formatInspectResult(r *pdf.PDFFormInspectResult) string {
	text := fmt.Sprintf("PDF Form Inspection: %s\n", r.Path)
	text += fmt.Sprintf("Form kind: %s\n", r.FormKind)
	text += fmt.Sprintf("PDF version: %s, pages: %d (%d with a text layer)\n", r.Version, r.PageCount, r.TextPages)
	text += fmt.Sprintf("AcroForm: %t, XFA: %t, NeedAppearances: %t\n", r.HasAcroForm, r.HasXFA, r.NeedAppearances)
	text += fmt.Sprintf("Fields: %d%s\n", r.FieldCount, formatCounts(r.FieldTypes))
	text += fmt.Sprintf("Annotations: %d (%d widgets)%s\n", r.AnnotationCount, r.WidgetCount, formatCounts(r.AnnotationTypes))
	text += fmt.Sprintf("Encrypted: %t, form filling allowed: %t\n", r.Encrypted, r.CanFillForms)
	if r.Encrypted {
		text += fmt.Sprintf("Permissions: %s\n", r.Permissions)
	}
	if len(r.JavaScript) > 0 {
		text += fmt.Sprintf("Document JavaScript (not run): %s\n", strings.Join(r.JavaScript, ", "))
	}
	if len(r.Recommendations) > 0 {
		text += "\n🔍 RECOMMENDATIONS:\n"
		for _, rec := range r.Recommendations {
			text += fmt.Sprintf("  • %s\n", rec)
		}
	}
	return text + formatDiagnostics(&r.Diagnostics)
}

// formatCounts renders a count map as " (a: 1, b: 2)" in key order
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatExportResult(r *pdf.PDFFormExportResult) string {
	text := fmt.Sprintf("Exported %d field value(s) from %s as %s\n", r.FieldCount, r.Path, r.Format)
	if r.Output != "" {
		text += fmt.Sprintf("Written to: %s\n", r.Output)
	}
	text += "\n" + r.Content
	return text + formatDiagnostics(&r.Diagnostics)
}

func formatTemplateResult(r *pdf.PDFFormTemplateResult) string {
	text := fmt.Sprintf("Fill template for %s: %d field(s) as %s\n", r.Path, r.FieldCount, r.Format)
	if r.Output != "" {
		text += fmt.Sprintf("Written to: %s\n", r.Output)
		text += "Fill in the values and pass the file as data_file to pdf_form_fill.\n"
	}
	text += "\n" + r.Content
	return text + formatDiagnostics(&r.Diagnostics)
}

func formatField(f pdf.FieldSummary) string {
	text := fmt.Sprintf("%s [%s]", f.Name, f.Type)
	if f.Value != "" {
		text += fmt.Sprintf(" = %q", f.Value)
	}
	if f.Tooltip != "" {
		text += fmt.Sprintf(" - %s", f.Tooltip)
	} else if f.Caption != "" {
		text += fmt.Sprintf(" - %s", f.Caption)
	}
	var flags []string
	if f.ReadOnly {
		flags = append(flags, "read-only")
	}
	if f.Hidden {
		flags = append(flags, "hidden")
	}
	if len(f.States) > 0 {
		flags = append(flags, "states: "+strings.Join(f.States, "/"))
	}
	if len(flags) > 0 {
		text += " (" + strings.Join(flags, ", ") + ")"
	}
	return text
}

func formatSearchResult(r *pdf.PDFFormSearchResult) string {
	if r.TotalCount == 0 {
		return fmt.Sprintf("No fields matching %q in %s\n", r.Term, r.Path) + formatDiagnostics(&r.Diagnostics)
	}
	text := fmt.Sprintf("Found %d field(s) matching %q in %s\n\n", r.TotalCount, r.Term, r.Path)
	for i, f := range r.Fields {
		text += fmt.Sprintf("%d. %s\n", i+1, formatField(f))
		if f.Page > 0 {
			text += fmt.Sprintf("   Page: %d\n", f.Page)
		}
	}
	return text + formatDiagnostics(&r.Diagnostics)
}

func formatMapResult(r *pdf.PDFFormMapResult) string {
	text := fmt.Sprintf("Field map of %s: %d field(s)\n", r.Path, r.TotalCount)
	for _, p := range r.Pages {
		if p.Page == 0 {
			text += "\nPage unknown:\n"
		} else {
			text += fmt.Sprintf("\nPage %d:\n", p.Page)
		}
		for _, f := range p.Fields {
			pos := "          "
			if f.Rect != nil {
				pos = fmt.Sprintf("@%4.0f,%4.0f", f.Rect.Left(), f.Rect.Top())
			}
			text += fmt.Sprintf("  %s  %s\n", pos, formatField(f))
		}
	}
	return text + formatDiagnostics(&r.Diagnostics)
}

func formatFillResult(r *pdf.PDFFormFillResult) string {
	text := fmt.Sprintf("Filled %d field(s) in %s\n", r.Changed, r.Path)
	text += formatOutput(r.Output)
	if len(r.Unmatched) > 0 {
		text += fmt.Sprintf("\n⚠️  %d key(s) matched no field:\n", len(r.Unmatched))
		for _, key := range r.Unmatched {
			text += fmt.Sprintf("  • %s", key)
			if s := r.Suggestions[key]; len(s) > 0 {
				text += fmt.Sprintf(" (did you mean: %s?)", strings.Join(s, ", "))
			}
			text += "\n"
		}
	}
	return text + formatDiagnostics(&r.Diagnostics)
}

func formatEditResult(verb string, names []string, output string, diags *formerrors.Diagnostics) string {
	text := fmt.Sprintf("%s %d field(s)", verb, len(names))
	if len(names) > 0 {
		text += ": " + strings.Join(names, ", ")
	}
	text += "\n" + formatOutput(output)
	return text + formatDiagnostics(diags)
}

func formatSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}
	return text
}

func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Input Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📤 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= maxListedFiles {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-maxListedFiles)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in input directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		if tool.Usage != "" {
			text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		}
	}

	text += "\n" + result.UsageGuidance
	return text
}
