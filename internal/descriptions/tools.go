package descriptions

import "strings"

// Tool descriptions with practical examples. The first line of each is
// its summary.

const (
	PDFFormExportDescription = `Export the current values of every named form field as a flat JSON or YAML mapping.

**When to use:** Need to read what has been entered in a PDF form, back up form data, or move values into another system.

**Examples:**
• Read a filled application: "Export the values of application.pdf"
• Keep a copy as YAML: "Export intake.pdf to intake_fields.yaml including empty fields"

**Common workflows:**
1. Migration: Export → edit mapping → pdf_form_fill into a new blank form
2. Review: Export → compare with expected values

**Best practices:** Empty fields are left out unless include_empty is set. Checkbox values are state names such as "Yes" or "Off".`

	PDFFormFillDescription = `Fill form fields from a mapping of field name to value and write a new PDF.

**When to use:** Need to populate a fillable PDF from structured data.

**Examples:**
• Inline values: "Fill form.pdf with {"A1": "Jane Doe", "agree": true}"
• From a file: "Fill form.pdf using data.yaml"

**Common workflows:**
1. pdf_form_template → fill in the template → pdf_form_fill with the template as data_file
2. pdf_form_export from an old form → pdf_form_fill into the new revision

**Best practices:** Keys that match no field are returned in "unmatched" together with the closest field names. Checkboxes take true/yes/on/1 for checked; radio groups also accept the name of a state. The input file is never modified.`

	PDFFormClearDescription = `Remove the stored value of named fields, or of every field with ALL, and write a new PDF.

**When to use:** A form ships with pre-filled defaults that must be blank, or a filled form should be reset.

**Examples:**
• "Clear the values of fields A1 and A2 in form.pdf"
• "Clear ALL fields in returned-form.pdf"

**Best practices:** The value is removed, not set to an empty string, so viewers show the field as never filled. Signature fields are never cleared.`

	PDFFormSearchDescription = `Find form fields whose name or tooltip contains a search term (case-insensitive).

**When to use:** The field names are cryptic (A1, Text12) and you need the field that holds, e.g., the last name.

**Examples:**
• "Which field in form.pdf is the date of birth?" → search "birth"
• "List every field of form.pdf" → empty term

**Best practices:** Results include type, current value, tooltip and page so the right field can be picked before filling.`

	PDFFormHideDescription = `Hide named form fields: sets the hidden flag, clears button captions and drops cached appearances, then writes a new PDF.

**When to use:** A button or field must disappear from the printed or displayed form, such as a "Void" stamp button.

**Examples:**
• "Hide btnVoid in form.pdf"

**Best practices:** Captions and appearance streams are cleared together with the flag so that viewers that ignore the flag still show nothing.`

	PDFFormUnlockDescription = `Clear the read-only flag of named fields, or of every read-only field with ALL, and write a new PDF.

**When to use:** A form locks fields that must be edited in a viewer.

**Examples:**
• "Unlock field total in invoice.pdf"
• "Unlock ALL fields in form.pdf"

**Best practices:** Filling does not require unlocking; read-only fields are filled like any other. Unlock only matters for people editing the output by hand.`

	PDFFormTemplateDescription = `Generate a fill template listing every fillable field with its description and type.

**When to use:** Preparing data for pdf_form_fill when the field names do not explain themselves.

**Examples:**
• "Make a JSON template for form.pdf"
• "Make a YAML template for the A and B sections of form.pdf"

**Best practices:** Description and type travel as "// name" keys in JSON and as comments in YAML; pdf_form_fill ignores them, so a completed template can be passed back unchanged.`

	PDFFormMapDescription = `List form fields page by page in reading order (top to bottom, left to right) with their positions.

**When to use:** Need to relate cryptic field names to the visible layout of the form.

**Examples:**
• "Show the layout of fields in form.pdf"

**Best practices:** Fields whose page cannot be determined are listed under page 0.`

	PDFFormInspectDescription = `Classify a PDF's interactive layer: AcroForm, XFA, hybrid, widgets without a form, or static.

**When to use:** Before filling an unknown PDF, to learn whether it can be filled by field name at all.

**Examples:**
• "Is contract.pdf a fillable form?"
• "Why does filling scan.pdf do nothing?"

**Best practices:** Reports field and annotation counts, encryption and permissions, the re-render flag, document-level script names (not run), and how many pages carry a text layer, along with recommendations.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before processing a PDF of unknown origin.

**Examples:**
• "Check that upload.pdf is a valid PDF"

**Best practices:** Run this first in automated workflows.`

	PDFSearchDirectoryDescription = `Find PDF files in the configured directory with fuzzy filename matching.

**When to use:** You know roughly what the form is called but not its exact path.

**Examples:**
• "Find the tax forms" → query "tax"
• "List every PDF" → empty query

**Best practices:** Every word of the query must match the filename, either as a substring or as letters in order.`

	PDFServerInfoDescription = `Show server configuration, available tools, usage guidance and the PDFs in the input directory.

**When to use:** At the start of a session to learn where inputs are read from and outputs written to.

**Best practices:** The directory listing is cached for five minutes and limited to 100 files.`
)

// ToolNames lists the tools in the order they are presented
var ToolNames = []string{
	"pdf_form_inspect",
	"pdf_form_export",
	"pdf_form_map",
	"pdf_form_search",
	"pdf_form_template",
	"pdf_form_fill",
	"pdf_form_clear",
	"pdf_form_hide",
	"pdf_form_unlock",
	"pdf_validate_file",
	"pdf_search_directory",
	"pdf_server_info",
}

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_form_export":      PDFFormExportDescription,
	"pdf_form_fill":        PDFFormFillDescription,
	"pdf_form_clear":       PDFFormClearDescription,
	"pdf_form_search":      PDFFormSearchDescription,
	"pdf_form_hide":        PDFFormHideDescription,
	"pdf_form_unlock":      PDFFormUnlockDescription,
	"pdf_form_template":    PDFFormTemplateDescription,
	"pdf_form_map":         PDFFormMapDescription,
	"pdf_form_inspect":     PDFFormInspectDescription,
	"pdf_validate_file":    PDFValidateFileDescription,
	"pdf_search_directory": PDFSearchDirectoryDescription,
	"pdf_server_info":      PDFServerInfoDescription,
}

// GetToolDescription returns the full description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetToolSummary returns the first line of a tool's description
func GetToolSummary(toolName string) string {
	desc := GetToolDescription(toolName)
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		return desc[:i]
	}
	return desc
}

// GetToolUsage returns the best-practices paragraph of a tool's description
func GetToolUsage(toolName string) string {
	desc := GetToolDescription(toolName)
	const marker = "**Best practices:** "
	if i := strings.LastIndex(desc, marker); i >= 0 {
		return desc[i+len(marker):]
	}
	return ""
}
