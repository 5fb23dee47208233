package pdf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/dataio"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

// DefaultSuggestions is the number of field names offered per unmatched key
const DefaultSuggestions = 3

// Options configures a Service
type Options struct {
	MaxFileSize     int64
	Directory       string // inputs must live below it
	OutputDirectory string // defaults to Directory
	Suggestions     int
	Debug           bool
}

// Service runs the form workflows. Every workflow opens its own document
// session and closes it before returning, so calls may run concurrently.
type Service struct {
	opts      Options
	validator *Validator
	search    *Search
	inputs    *security.PathValidator
	outputs   *security.PathValidator
}

// NewService creates a new PDF form service
func NewService(opts Options) (*Service, error) {
	if opts.OutputDirectory == "" {
		opts.OutputDirectory = opts.Directory
	}
	if opts.Suggestions <= 0 {
		opts.Suggestions = DefaultSuggestions
	}

	inputs, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	outputs, err := security.NewPathValidator(opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output path validator: %w", err)
	}

	return &Service{
		opts:      opts,
		validator: NewValidator(opts.MaxFileSize),
		search:    NewSearch(opts.MaxFileSize),
		inputs:    inputs,
		outputs:   outputs,
	}, nil
}

// session is one open document with its extracted form
type session struct {
	doc  *graph.Document
	form *acroform.Form
}

func (s *session) Close() error {
	return s.doc.Close()
}

// open validates path and opens a session. The caller must Close it.
func (s *Service) open(path, password string) (*session, error) {
	if err := s.inputs.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.CheckInput(path); err != nil {
		return nil, err
	}

	doc, err := graph.Open(path, graph.OpenOptions{
		MaxFileSize: s.opts.MaxFileSize,
		Password:    password,
		Debug:       s.opts.Debug,
	})
	if err != nil {
		return nil, err
	}
	form, err := acroform.Extract(doc, acroform.Options{Debug: s.opts.Debug})
	if err != nil {
		doc.Close()
		return nil, err
	}
	return &session{doc: doc, form: form}, nil
}

// openForm is open for the writing workflows: a document without a form
// fails fast
func (s *Service) openForm(path string) (*session, error) {
	sess, err := s.open(path, "")
	if err != nil {
		return nil, err
	}
	if !sess.form.HasForm() {
		sess.Close()
		return nil, formerrors.Newf(formerrors.KindMissingForm, "no fillable form fields in %s", path)
	}
	return sess, nil
}

// outputPath resolves where a workflow writes. An empty request yields
// <stem>_<op>_<id><ext> in the output directory; relative requests are
// taken relative to it.
func (s *Service) outputPath(input, requested, op, ext string) (string, error) {
	if requested == "" {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		requested = fmt.Sprintf("%s_%s_%s%s", stem, op, uuid.NewString()[:8], ext)
	}
	if !filepath.IsAbs(requested) {
		requested = filepath.Join(s.opts.OutputDirectory, requested)
	}
	if err := s.outputs.ValidatePath(requested); err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(requested), 0o755); err != nil {
		return "", formerrors.Wrap(formerrors.KindIOFailure, "failed to create output directory", err)
	}
	return requested, nil
}

// save writes a mutated session. A session without changes is not saved
// and yields an empty path.
func (s *Service) save(sess *session, requested, op string) (string, error) {
	if !sess.doc.Dirty() {
		return "", nil
	}
	out, err := s.outputPath(sess.doc.Path(), requested, op, ".pdf")
	if err != nil {
		return "", err
	}
	if err := sess.doc.SaveAs(out); err != nil {
		return "", err
	}
	if s.opts.Debug {
		log.Printf("%s: wrote %s", op, out)
	}
	return out, nil
}

// writeData writes exported content when an output was requested
func (s *Service) writeData(input, requested, op string, format dataio.Format, data []byte) (string, error) {
	if requested == "" {
		return "", nil
	}
	out, err := s.outputPath(input, requested, op, format.Extension())
	if err != nil {
		return "", err
	}
	if err := dataio.WriteFile(out, data); err != nil {
		return "", err
	}
	return out, nil
}

// Export returns the values of every named field as a flat mapping
func (s *Service) Export(req PDFFormExportRequest) (*PDFFormExportResult, error) {
	format, err := dataio.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if format == dataio.FormatAuto {
		format = dataio.FormatFor(req.Output)
	}

	sess, err := s.open(req.Path, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var entries []dataio.Entry
	for _, fld := range sess.form.Fields() {
		if !fld.Addressable() {
			continue
		}
		if fld.Value == "" && !req.IncludeEmpty {
			continue
		}
		entries = append(entries, dataio.Entry{Name: fld.Name, Value: fld.Value})
	}

	data, err := dataio.MarshalEntries(entries, format)
	if err != nil {
		return nil, err
	}
	out, err := s.writeData(req.Path, req.Output, "fields", format, data)
	if err != nil {
		return nil, err
	}

	result := &PDFFormExportResult{
		Path:       req.Path,
		Output:     out,
		Format:     format.String(),
		FieldCount: len(entries),
		Content:    string(data),
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// Fill sets field values from req.Values, or from req.DataFile when no
// values are given, and saves the result. Keys matching no field are
// reported with the closest field names.
func (s *Service) Fill(req PDFFormFillRequest) (*PDFFormFillResult, error) {
	values, err := s.fillValues(req)
	if err != nil {
		return nil, err
	}

	sess, err := s.openForm(req.Path)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	filled, err := sess.form.Fill(values)
	if err != nil {
		return nil, err
	}
	out, err := s.save(sess, req.Output, "filled")
	if err != nil {
		return nil, err
	}

	result := &PDFFormFillResult{
		Path:        req.Path,
		Output:      out,
		Changed:     filled.Changed,
		Unmatched:   filled.Unmatched,
		Suggestions: s.suggest(filled.Unmatched, sess.form.Names()),
	}
	if result.Unmatched == nil {
		result.Unmatched = []string{}
	}
	result.Diagnostics.Merge(&filled.Diagnostics)
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

func (s *Service) fillValues(req PDFFormFillRequest) (map[string]any, error) {
	if len(req.Values) > 0 {
		m := dataio.Mapping(req.Values)
		m.Strip()
		return m, nil
	}
	if req.DataFile == "" {
		return nil, formerrors.New(formerrors.KindInvalidInput, "either values or data_file is required")
	}
	if !strings.HasPrefix(strings.TrimSpace(req.DataFile), "{") {
		if err := s.inputs.ValidatePath(req.DataFile); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	return dataio.Load(req.DataFile)
}

// suggest offers up to Options.Suggestions field names per unmatched key
func (s *Service) suggest(unmatched, names []string) map[string][]string {
	if len(unmatched) == 0 || len(names) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, key := range unmatched {
		matches := fuzzy.Find(key, names)
		for i, m := range matches {
			if i == s.opts.Suggestions {
				break
			}
			out[key] = append(out[key], m.Str)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ClearDefaults removes the value of the named fields, or of every field
// when req.All is set or the only name is "ALL", and saves the result.
// Signature fields are skipped by ALL and reported when named.
func (s *Service) ClearDefaults(req PDFFormClearRequest) (*PDFFormClearResult, error) {
	all := req.All || isAll(req.Names)
	if !all && len(req.Names) == 0 {
		return nil, formerrors.New(formerrors.KindInvalidInput, "field names or ALL are required")
	}

	sess, err := s.openForm(req.Path)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := &PDFFormClearResult{Path: req.Path, Cleared: []string{}}
	for _, fld := range s.targets(sess.form, req.Names, all, &result.Diagnostics) {
		if all && fld.Type == acroform.TypeSignature {
			continue
		}
		cleared, err := sess.form.ClearValue(fld)
		if err != nil {
			result.Diagnostics.AddError(fld.Name, err)
			continue
		}
		if cleared {
			result.Cleared = append(result.Cleared, fld.Name)
		}
	}

	if result.Output, err = s.save(sess, req.Output, "cleared"); err != nil {
		return nil, err
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// Hide sets the hidden bit on the named fields, clears their captions and
// cached appearances, and saves the result
func (s *Service) Hide(req PDFFormHideRequest) (*PDFFormHideResult, error) {
	if len(req.Names) == 0 {
		return nil, formerrors.New(formerrors.KindInvalidInput, "at least one field name is required")
	}

	sess, err := s.openForm(req.Path)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := &PDFFormHideResult{Path: req.Path, Hidden: []string{}}
	for _, fld := range s.targets(sess.form, req.Names, false, &result.Diagnostics) {
		if err := sess.form.Hide(fld); err != nil {
			result.Diagnostics.AddError(fld.Name, err)
			continue
		}
		result.Hidden = append(result.Hidden, fld.Name)
	}

	if result.Output, err = s.save(sess, req.Output, "hidden"); err != nil {
		return nil, err
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// Unlock clears the read-only bit on the named fields, or on every
// read-only field for ALL, and saves the result
func (s *Service) Unlock(req PDFFormUnlockRequest) (*PDFFormUnlockResult, error) {
	all := req.All || isAll(req.Names)
	if !all && len(req.Names) == 0 {
		return nil, formerrors.New(formerrors.KindInvalidInput, "field names or ALL are required")
	}

	sess, err := s.openForm(req.Path)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := &PDFFormUnlockResult{Path: req.Path, Unlocked: []string{}}
	for _, fld := range s.targets(sess.form, req.Names, all, &result.Diagnostics) {
		if !fld.ReadOnly() {
			continue
		}
		if err := sess.form.Unlock(fld); err != nil {
			result.Diagnostics.AddError(fld.Name, err)
			continue
		}
		result.Unlocked = append(result.Unlocked, fld.Name)
	}

	if result.Output, err = s.save(sess, req.Output, "unlocked"); err != nil {
		return nil, err
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// targets resolves a name list, or every addressable field for all.
// Unknown names are recorded as NotFound.
func (s *Service) targets(form *acroform.Form, names []string, all bool, diags *formerrors.Diagnostics) []*acroform.Field {
	var out []*acroform.Field
	if all {
		for _, fld := range form.Fields() {
			if fld.Addressable() {
				out = append(out, fld)
			}
		}
		return out
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fld, err := form.Lookup(name)
		if err != nil {
			diags.AddError(name, err)
			continue
		}
		out = append(out, fld)
	}
	return out
}

func isAll(names []string) bool {
	return len(names) == 1 && strings.TrimSpace(names[0]) == AllFields
}

// Search returns the fields whose name or tooltip contains req.Term
func (s *Service) Search(req PDFFormSearchRequest) (*PDFFormSearchResult, error) {
	sess, err := s.open(req.Path, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := &PDFFormSearchResult{Path: req.Path, Term: req.Term, Fields: []FieldSummary{}}
	for _, fld := range acroform.Search(sess.form.Fields(), req.Term) {
		result.Fields = append(result.Fields, summarize(sess.form, fld))
	}
	result.TotalCount = len(result.Fields)
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// Template generates a fill template for the fillable fields, optionally
// restricted to name prefixes. Signatures and push buttons are left out.
func (s *Service) Template(req PDFFormTemplateRequest) (*PDFFormTemplateResult, error) {
	format, err := dataio.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if format == dataio.FormatAuto {
		format = dataio.FormatFor(req.Output)
	}

	sess, err := s.open(req.Path, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var fields []dataio.TemplateField
	for _, fld := range sess.form.Fields() {
		if !fld.Addressable() || fld.Type == acroform.TypeSignature || fld.Button == acroform.ButtonPush {
			continue
		}
		tf := dataio.TemplateField{
			Name:        fld.Name,
			Type:        typeName(fld),
			Description: fld.Tooltip,
		}
		if tf.Description == "" {
			tf.Description = fld.Caption
		}
		if fld.Type == acroform.TypeToggle {
			tf.Value = acroform.OffState
		}
		fields = append(fields, tf)
	}
	fields = dataio.FilterSections(fields, req.Sections)

	data, err := dataio.MarshalTemplate(fields, format)
	if err != nil {
		return nil, err
	}
	out, err := s.writeData(req.Path, req.Output, "template", format, data)
	if err != nil {
		return nil, err
	}

	result := &PDFFormTemplateResult{
		Path:       req.Path,
		Output:     out,
		Format:     format.String(),
		FieldCount: len(fields),
		Content:    string(data),
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// Map lists the named fields page by page in reading order
func (s *Service) Map(req PDFFormMapRequest) (*PDFFormMapResult, error) {
	sess, err := s.open(req.Path, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := &PDFFormMapResult{Path: req.Path, Pages: []PageFields{}}
	for _, fld := range acroform.SortByPosition(sess.form.Fields(), sess.form.PageOf) {
		if fld.Name == "" {
			continue
		}
		sum := summarize(sess.form, fld)
		if n := len(result.Pages); n == 0 || result.Pages[n-1].Page != sum.Page {
			result.Pages = append(result.Pages, PageFields{Page: sum.Page})
		}
		last := &result.Pages[len(result.Pages)-1]
		last.Fields = append(last.Fields, sum)
		result.TotalCount++
	}
	result.Diagnostics.Merge(sess.form.Diagnostics())
	return result, nil
}

// ValidateFile checks that a file is a readable PDF within bounds
func (s *Service) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if err := s.inputs.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// SearchDirectory searches for PDF files in a directory
func (s *Service) SearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.inputs.Directory()
	}
	if err := s.inputs.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.SearchDirectory(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.opts.MaxFileSize
}

// Directory returns the input directory
func (s *Service) Directory() string {
	return s.inputs.Directory()
}

// OutputDirectory returns the directory outputs are written to
func (s *Service) OutputDirectory() string {
	return s.outputs.Directory()
}

func summarize(form *acroform.Form, fld *acroform.Field) FieldSummary {
	return FieldSummary{
		Name:     fld.Name,
		Type:     typeName(fld),
		Value:    fld.Value,
		Tooltip:  fld.Tooltip,
		Caption:  fld.Caption,
		Page:     form.PageOf(fld),
		Rect:     fld.Rect,
		ReadOnly: fld.ReadOnly(),
		Hidden:   fld.Hidden(),
		States:   fld.States,
	}
}

// typeName refines toggles into checkbox, radio and pushbutton
func typeName(fld *acroform.Field) string {
	if fld.Type == acroform.TypeToggle {
		if k := fld.Button.String(); k != "" {
			return k
		}
		return "checkbox"
	}
	return fld.Type.String()
}
