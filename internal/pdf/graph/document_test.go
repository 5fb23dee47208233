package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/pdftest"
)

func writeFixture(t *testing.T, doc pdftest.Doc) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.pdf")
	require.NoError(t, pdftest.Write(path, doc))
	return path
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0o644))
	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf"), 0o644))

	tests := []struct {
		name string
		path string
		opts OpenOptions
	}{
		{"missing file", filepath.Join(dir, "missing.pdf"), OpenOptions{}},
		{"directory", dir, OpenOptions{}},
		{"too large", big, OpenOptions{MaxFileSize: 1024}},
		{"not a pdf", garbage, OpenOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(tt.path, tt.opts)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, formerrors.ErrIOFailure)
		})
	}
}

func TestDocument_ReadAndSave(t *testing.T) {
	path := writeFixture(t, pdftest.Doc{
		Pages: 2,
		Fields: []pdftest.Field{
			{Name: "name", Type: "Tx", Value: "Ada", Page: 2},
		},
	})

	doc, err := Open(path, OpenOptions{})
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, path, doc.Path())
	assert.Equal(t, 2, doc.PageCount())
	assert.NotEmpty(t, doc.Version())
	assert.False(t, doc.Encrypted())

	pages, err := doc.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[1].Number)

	form, found, err := AcroForm(doc)
	require.NoError(t, err)
	require.True(t, found)
	fields, err := Array(doc, form["Fields"])
	require.NoError(t, err)
	assert.Len(t, fields, 1)

	assert.False(t, doc.Dirty())
	require.NoError(t, doc.SetNeedAppearances())
	assert.True(t, doc.Dirty())

	err = doc.SaveAs(path)
	assert.ErrorIs(t, err, formerrors.ErrIOFailure, "input path is never a valid target")

	out := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, doc.SaveAs(out))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	reopened, err := Open(out, OpenOptions{})
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, NeedAppearances(reopened))
}

func TestDocument_Close(t *testing.T) {
	path := writeFixture(t, pdftest.Doc{})

	doc, err := Open(path, OpenOptions{})
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	assert.Equal(t, 0, doc.PageCount())
	_, err = doc.Catalog()
	assert.ErrorIs(t, err, formerrors.ErrIOFailure)
	_, err = doc.Resolve(types.Integer(1))
	assert.Error(t, err)
	assert.Error(t, doc.SaveAs(filepath.Join(t.TempDir(), "x.pdf")))
}
