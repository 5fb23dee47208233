package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	valid := writePDF(t, dir, "valid.pdf", formDoc())
	writeFiles(t, dir, map[string][]byte{
		"garbage.pdf": []byte("this is not a pdf at all"),
		"notes.txt":   []byte("hello"),
		"empty.pdf":   {},
	})

	validator := NewValidator(10 * 1024 * 1024)

	tests := []struct {
		name      string
		path      string
		wantValid bool
		wantMsg   string
	}{
		{name: "valid form", path: valid, wantValid: true},
		{name: "garbage content", path: filepath.Join(dir, "garbage.pdf"), wantMsg: "invalid PDF file"},
		{name: "wrong extension", path: filepath.Join(dir, "notes.txt"), wantMsg: "file is not a PDF"},
		{name: "empty file", path: filepath.Join(dir, "empty.pdf"), wantMsg: "file is empty"},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf"), wantMsg: "file does not exist"},
		{name: "directory", path: dir, wantMsg: "path is a directory"},
		{name: "empty path", path: "", wantMsg: "path cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(PDFValidateFileRequest{Path: tt.path})
			require.NoError(t, err, "problems are reported in the result")
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.path, result.Path)
			if tt.wantMsg != "" {
				assert.Contains(t, result.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidator_CheckInputKinds(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0o644))

	validator := NewValidator(1024)
	assert.ErrorIs(t, validator.CheckInput(big), formerrors.ErrIOFailure)
	assert.ErrorIs(t, validator.CheckInput(""), formerrors.ErrInvalidInput)
	assert.ErrorIs(t, validator.CheckInput(filepath.Join(dir, "nope.pdf")), formerrors.ErrIOFailure)

	assert.NoError(t, NewValidator(0).CheckInput(big), "zero disables the size limit")
}

func TestValidator_IsValidPDF(t *testing.T) {
	dir := t.TempDir()
	valid := writePDF(t, dir, "valid.pdf", pdftest.Doc{NoForm: true})
	writeFiles(t, dir, map[string][]byte{"garbage.pdf": []byte("garbage")})

	validator := NewValidator(0)
	assert.True(t, validator.IsValidPDF(valid))
	assert.False(t, validator.IsValidPDF(filepath.Join(dir, "garbage.pdf")))
}

func TestValidator_TextPagesUnreadable(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{"garbage.pdf": []byte("garbage")})

	_, err := NewValidator(0).TextPages(filepath.Join(dir, "garbage.pdf"))
	assert.Error(t, err)
}
