package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/pdftest"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(Options{MaxFileSize: 10 * 1024 * 1024, Directory: dir})
	require.NoError(t, err)
	return svc, dir
}

func writePDF(t *testing.T, dir, name string, doc pdftest.Doc) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, pdftest.Write(path, doc))
	return path
}

// formDoc is a two-page form: names on page 1, a push button, a
// read-only total and a signature on page 2
func formDoc() pdftest.Doc {
	return pdftest.Doc{
		Pages: 2,
		Text:  "Application form",
		Fields: []pdftest.Field{
			{Name: "A1", Type: "Tx", Tooltip: "First Name", Page: 1, Rect: [4]float64{72, 700, 272, 720}},
			{Name: "A2", Type: "Tx", Tooltip: "Last Name", Value: "Doe", Page: 1, Rect: [4]float64{300, 700, 500, 720}},
			{Name: "agree", Type: "Btn", Caption: "I agree", States: []string{"Yes"}, Page: 1, Rect: [4]float64{72, 650, 90, 668}},
			{Name: "btnVoid", Type: "Btn", Flags: 1 << 16, Caption: "VOID", Page: 2},
			{Name: "total", Type: "Tx", Flags: 1, Value: "42", Default: "0", Page: 2},
			{Name: "sig", Type: "Sig", Page: 2},
		},
	}
}

// reopen extracts the form of a written output
func reopen(t *testing.T, path string) (*graph.Document, *acroform.Form) {
	t.Helper()
	doc, err := graph.Open(path, graph.OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	form, err := acroform.Extract(doc, acroform.Options{})
	require.NoError(t, err)
	return doc, form
}

func lookup(t *testing.T, form *acroform.Form, name string) *acroform.Field {
	t.Helper()
	fld, err := form.Lookup(name)
	require.NoError(t, err)
	return fld
}

func TestNewService(t *testing.T) {
	_, err := NewService(Options{})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)

	dir := t.TempDir()
	svc, err := NewService(Options{Directory: dir, MaxFileSize: 1024})
	require.NoError(t, err)
	assert.Equal(t, dir, svc.Directory())
	assert.Equal(t, dir, svc.OutputDirectory(), "output directory defaults to input directory")
	assert.Equal(t, int64(1024), svc.GetMaxFileSize())
	assert.Equal(t, DefaultSuggestions, svc.opts.Suggestions)
}

func TestService_Fill(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())
	before, err := os.ReadFile(in)
	require.NoError(t, err)

	res, err := svc.Fill(PDFFormFillRequest{
		Path:   in,
		Output: "filled.pdf",
		Values: map[string]any{"A1": "Jane Doe", "agree": true, "ZZZ": "y", "agre": "x"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, []string{"ZZZ", "agre"}, res.Unmatched)
	assert.Equal(t, []string{"agree"}, res.Suggestions["agre"])
	assert.NotContains(t, res.Suggestions, "ZZZ")
	assert.Equal(t, filepath.Join(dir, "filled.pdf"), res.Output)
	assert.False(t, res.Diagnostics.HasErrors())

	after, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, before, after, "input is never modified")

	doc, form := reopen(t, res.Output)
	assert.Equal(t, "Jane Doe", lookup(t, form, "A1").Value)
	assert.Equal(t, "Yes", lookup(t, form, "agree").Value)
	assert.Equal(t, "Doe", lookup(t, form, "A2").Value, "fields absent from the input are untouched")
	assert.True(t, graph.NeedAppearances(doc))
}

func TestService_FillFromDataFile(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())
	data := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(data, []byte("_note: ignored\nA1: Jane\nagree: \"on\"\n"), 0o644))

	res, err := svc.Fill(PDFFormFillRequest{Path: in, DataFile: data})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Changed)
	assert.Empty(t, res.Unmatched)
	assert.Contains(t, filepath.Base(res.Output), "form_filled_")

	res, err = svc.Fill(PDFFormFillRequest{Path: in, DataFile: `{"A2": "Smith"}`})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	_, err = svc.Fill(PDFFormFillRequest{Path: in})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)
}

func TestService_FillYAMLKeepsNumericText(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())
	data := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(data, []byte("A1: 02134\nA2: 12345678901234567890\ntotal: 1e3\n"), 0o644))

	res, err := svc.Fill(PDFFormFillRequest{Path: in, DataFile: data, Output: "numbers.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Changed)
	assert.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Summary())

	_, form := reopen(t, res.Output)
	assert.Equal(t, "02134", lookup(t, form, "A1").Value)
	assert.Equal(t, "12345678901234567890", lookup(t, form, "A2").Value)
	assert.Equal(t, "1e3", lookup(t, form, "total").Value)
}

func TestService_FillPerFieldErrors(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Fill(PDFFormFillRequest{Path: in, Values: map[string]any{"sig": "x", "A1": "ok"}})
	require.NoError(t, err, "per-field failures do not abort the batch")
	assert.Equal(t, 1, res.Changed)
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, formerrors.KindUnsupportedOperation, res.Diagnostics.Errors[0].Kind)
	assert.Equal(t, "sig", res.Diagnostics.Errors[0].Field)
}

func TestService_MissingForm(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "static.pdf", pdftest.Doc{NoForm: true})

	_, err := svc.Fill(PDFFormFillRequest{Path: in, Values: map[string]any{"A1": "x"}})
	assert.ErrorIs(t, err, formerrors.ErrMissingForm)
	_, err = svc.Hide(PDFFormHideRequest{Path: in, Names: []string{"A1"}})
	assert.ErrorIs(t, err, formerrors.ErrMissingForm)
	_, err = svc.ClearDefaults(PDFFormClearRequest{Path: in, All: true})
	assert.ErrorIs(t, err, formerrors.ErrMissingForm)
	_, err = svc.Unlock(PDFFormUnlockRequest{Path: in, All: true})
	assert.ErrorIs(t, err, formerrors.ErrMissingForm)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "nothing saved")

	exp, err := svc.Export(PDFFormExportRequest{Path: in})
	require.NoError(t, err, "reads return empty results")
	assert.Equal(t, 0, exp.FieldCount)
	assert.Equal(t, "{}\n", exp.Content)
}

func TestService_Export(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Export(PDFFormExportRequest{Path: in})
	require.NoError(t, err)
	assert.Equal(t, "json", res.Format)
	assert.Equal(t, "{\n  \"A2\": \"Doe\",\n  \"total\": \"42\"\n}\n", res.Content)
	assert.Empty(t, res.Output)

	res, err = svc.Export(PDFFormExportRequest{Path: in, IncludeEmpty: true, Output: "out.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", res.Format)
	assert.Equal(t, 6, res.FieldCount)
	written, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(written))

	_, err = svc.Export(PDFFormExportRequest{Path: in, Format: "xml"})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)
}

func TestService_ClearDefaults(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.ClearDefaults(PDFFormClearRequest{Path: in, Names: []string{AllFields}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "total"}, res.Cleared)

	_, form := reopen(t, res.Output)
	for _, name := range []string{"A2", "total"} {
		fld := lookup(t, form, name)
		assert.False(t, fld.HasValue, name)
		_, hasV := fld.Dict().Find("V")
		assert.False(t, hasV, "%s: value removed, not emptied", name)
	}

	res, err = svc.ClearDefaults(PDFFormClearRequest{Path: in, Names: []string{"A2", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, res.Cleared)
	require.Len(t, res.Diagnostics.Filter(formerrors.KindNotFound), 1)
	assert.Equal(t, "missing", res.Diagnostics.Filter(formerrors.KindNotFound)[0].Field)

	_, err = svc.ClearDefaults(PDFFormClearRequest{Path: in})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)
}

func TestService_Hide(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Hide(PDFFormHideRequest{Path: in, Names: []string{"btnVoid"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"btnVoid"}, res.Hidden)

	_, form := reopen(t, res.Output)
	fld := lookup(t, form, "btnVoid")
	assert.True(t, fld.Hidden())
	assert.Empty(t, fld.Caption)
	for _, w := range fld.Widgets {
		_, hasAP := w.Dict().Find("AP")
		assert.False(t, hasAP)
	}

	res, err = svc.Hide(PDFFormHideRequest{Path: in, Names: []string{"nope"}})
	require.NoError(t, err)
	assert.Empty(t, res.Hidden)
	assert.Empty(t, res.Output, "unchanged document is not saved")
	assert.Len(t, res.Diagnostics.Filter(formerrors.KindNotFound), 1)
}

func TestService_Unlock(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Unlock(PDFFormUnlockRequest{Path: in, All: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"total"}, res.Unlocked)

	_, form := reopen(t, res.Output)
	assert.False(t, lookup(t, form, "total").ReadOnly())
	assert.Equal(t, "42", lookup(t, form, "total").Value)
}

func TestService_Search(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Search(PDFFormSearchRequest{Path: in, Term: "last"})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	got := res.Fields[0]
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Doe", got.Value)
	assert.Equal(t, 1, got.Page)

	res, err = svc.Search(PDFFormSearchRequest{Path: in, Term: "zz"})
	require.NoError(t, err)
	assert.Empty(t, res.Fields)

	res, err = svc.Search(PDFFormSearchRequest{Path: in})
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalCount)
}

func TestService_Template(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Template(PDFFormTemplateRequest{Path: in, Output: "template.json"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.FieldCount, "signature and push button left out")
	assert.Contains(t, res.Content, `"// A1": "First Name (text)"`)
	assert.Contains(t, res.Content, `"// agree": "I agree (checkbox)"`)
	assert.Contains(t, res.Content, `"agree": "Off"`)
	assert.NotContains(t, res.Content, "btnVoid")

	// a template goes straight back into fill
	fill, err := svc.Fill(PDFFormFillRequest{Path: in, DataFile: res.Output})
	require.NoError(t, err)
	assert.Empty(t, fill.Unmatched)
	assert.Equal(t, 4, fill.Changed)

	res, err = svc.Template(PDFFormTemplateRequest{Path: in, Format: "yaml", Sections: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FieldCount)
	assert.Contains(t, res.Content, "# Last Name (text)")
}

func TestService_Map(t *testing.T) {
	svc, dir := newTestService(t)
	in := writePDF(t, dir, "form.pdf", formDoc())

	res, err := svc.Map(PDFFormMapRequest{Path: in})
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalCount)
	require.Len(t, res.Pages, 2)

	names := func(p PageFields) []string {
		var out []string
		for _, f := range p.Fields {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, 1, res.Pages[0].Page)
	assert.Equal(t, []string{"A1", "A2", "agree"}, names(res.Pages[0]))
	assert.Equal(t, 2, res.Pages[1].Page)
	assert.Equal(t, []string{"btnVoid", "total", "sig"}, names(res.Pages[1]))
	assert.Equal(t, "pushbutton", res.Pages[1].Fields[0].Type)
	assert.True(t, res.Pages[1].Fields[1].ReadOnly)
}

func TestService_PathOutsideDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	outside := writePDF(t, t.TempDir(), "form.pdf", formDoc())

	_, err := svc.Export(PDFFormExportRequest{Path: outside})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)

	in := writePDF(t, svc.Directory(), "form.pdf", formDoc())
	_, err = svc.Fill(PDFFormFillRequest{Path: in, Output: "../escape.pdf", Values: map[string]any{"A1": "x"}})
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)
}

func TestService_SearchDirectory(t *testing.T) {
	svc, dir := newTestService(t)
	writePDF(t, dir, "tax_form_2024.pdf", formDoc())
	writePDF(t, dir, "intake.pdf", formDoc())

	res, err := svc.SearchDirectory(PDFSearchDirectoryRequest{Query: "tax 2024"})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "tax_form_2024.pdf", res.Files[0].Name)

	res, err = svc.SearchDirectory(PDFSearchDirectoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)

	_, err = svc.SearchDirectory(PDFSearchDirectoryRequest{Directory: "/"})
	assert.Error(t, err)
}
