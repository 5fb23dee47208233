package pdf

import (
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

// AllFields selects every field in ClearDefaults and Unlock requests
const AllFields = "ALL"

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// FieldSummary is the caller-facing view of one form field
type FieldSummary struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"` // text, checkbox, radio, pushbutton, choice, signature, unknown
	Value    string         `json:"value"`
	Tooltip  string         `json:"tooltip,omitempty"`
	Caption  string         `json:"caption,omitempty"`
	Page     int            `json:"page"` // 0 when the page is unknown
	Rect     *acroform.Rect `json:"rect,omitempty"`
	ReadOnly bool           `json:"read_only,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
	States   []string       `json:"states,omitempty"`
}

// Request Types

// PDFFormExportRequest represents a request to export field values
type PDFFormExportRequest struct {
	Path         string `json:"path"`
	Output       string `json:"output,omitempty"`
	Format       string `json:"format,omitempty"` // json or yaml
	IncludeEmpty bool   `json:"include_empty,omitempty"`
}

// PDFFormFillRequest represents a request to fill fields from a mapping.
// DataFile is a JSON or YAML file, or an inline JSON object; it is used
// when Values is empty.
type PDFFormFillRequest struct {
	Path     string         `json:"path"`
	Output   string         `json:"output,omitempty"`
	Values   map[string]any `json:"values,omitempty"`
	DataFile string         `json:"data_file,omitempty"`
}

// PDFFormClearRequest represents a request to strip field values
type PDFFormClearRequest struct {
	Path   string   `json:"path"`
	Output string   `json:"output,omitempty"`
	Names  []string `json:"names,omitempty"`
	All    bool     `json:"all,omitempty"`
}

// PDFFormSearchRequest represents a request to search fields by name or tooltip
type PDFFormSearchRequest struct {
	Path string `json:"path"`
	Term string `json:"term"`
}

// PDFFormHideRequest represents a request to hide fields
type PDFFormHideRequest struct {
	Path   string   `json:"path"`
	Output string   `json:"output,omitempty"`
	Names  []string `json:"names"`
}

// PDFFormUnlockRequest represents a request to clear the read-only flag
type PDFFormUnlockRequest struct {
	Path   string   `json:"path"`
	Output string   `json:"output,omitempty"`
	Names  []string `json:"names,omitempty"`
	All    bool     `json:"all,omitempty"`
}

// PDFFormTemplateRequest represents a request to generate a fill template
type PDFFormTemplateRequest struct {
	Path     string   `json:"path"`
	Output   string   `json:"output,omitempty"`
	Format   string   `json:"format,omitempty"`
	Sections []string `json:"sections,omitempty"` // field name prefixes
}

// PDFFormMapRequest represents a request for the positional field listing
type PDFFormMapRequest struct {
	Path string `json:"path"`
}

// PDFFormInspectRequest represents a request to classify a document's form
type PDFFormInspectRequest struct {
	Path     string `json:"path"`
	Password string `json:"password,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// Response Types

// PDFFormExportResult represents the result of an export
type PDFFormExportResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output,omitempty"`
	Format      string                 `json:"format"`
	FieldCount  int                    `json:"field_count"`
	Content     string                 `json:"content"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormFillResult represents the result of a fill
type PDFFormFillResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output"`
	Changed     int                    `json:"changed"`
	Unmatched   []string               `json:"unmatched"`
	Suggestions map[string][]string    `json:"suggestions,omitempty"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormClearResult represents the result of clearing defaults
type PDFFormClearResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output"`
	Cleared     []string               `json:"cleared"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormSearchResult represents the result of a field search
type PDFFormSearchResult struct {
	Path        string                 `json:"path"`
	Term        string                 `json:"term"`
	Fields      []FieldSummary         `json:"fields"`
	TotalCount  int                    `json:"total_count"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormHideResult represents the result of hiding fields
type PDFFormHideResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output"`
	Hidden      []string               `json:"hidden"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormUnlockResult represents the result of unlocking fields
type PDFFormUnlockResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output"`
	Unlocked    []string               `json:"unlocked"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PDFFormTemplateResult represents a generated fill template
type PDFFormTemplateResult struct {
	Path        string                 `json:"path"`
	Output      string                 `json:"output,omitempty"`
	Format      string                 `json:"format"`
	FieldCount  int                    `json:"field_count"`
	Content     string                 `json:"content"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// PageFields groups the fields of one page in reading order
type PageFields struct {
	Page   int            `json:"page"`
	Fields []FieldSummary `json:"fields"`
}

// PDFFormMapResult represents the positional field listing
type PDFFormMapResult struct {
	Path        string                 `json:"path"`
	Pages       []PageFields           `json:"pages"`
	TotalCount  int                    `json:"total_count"`
	Diagnostics formerrors.Diagnostics `json:"diagnostics"`
}

// Form kinds reported by Inspect
const (
	FormKindNone        = "none"
	FormKindAcroForm    = "acroform"
	FormKindXFA         = "xfa"
	FormKindHybrid      = "hybrid"       // AcroForm fields plus an XFA packet
	FormKindEmpty       = "empty"        // AcroForm dictionary without fields
	FormKindAnnotations = "widgets_only" // widget annotations but no AcroForm
)

// PDFFormInspectResult describes the interactive layer of a document
type PDFFormInspectResult struct {
	Path            string                 `json:"path"`
	FormKind        string                 `json:"form_kind"`
	HasAcroForm     bool                   `json:"has_acroform"`
	HasXFA          bool                   `json:"has_xfa"`
	FieldCount      int                    `json:"field_count"`
	FieldTypes      map[string]int         `json:"field_types,omitempty"`
	WidgetCount     int                    `json:"widget_count"`
	AnnotationCount int                    `json:"annotation_count"`
	AnnotationTypes map[string]int         `json:"annotation_types,omitempty"`
	NeedAppearances bool                   `json:"need_appearances"`
	Encrypted       bool                   `json:"encrypted"`
	Permissions     security.Permissions   `json:"permissions"`
	CanFillForms    bool                   `json:"can_fill_forms"`
	Version         string                 `json:"version"`
	PageCount       int                    `json:"page_count"`
	TextPages       int                    `json:"text_pages"`
	JavaScript      []string               `json:"javascript,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Diagnostics     formerrors.Diagnostics `json:"diagnostics"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// PDFSearchDirectoryResult represents the result of a directory search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// PDFServerInfoResult describes the running server
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	OutputDirectory   string     `json:"output_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}
