package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/pdftest"
)

func writeForm(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "form.pdf")
	require.NoError(t, pdftest.Write(path, pdftest.Doc{
		Fields: []pdftest.Field{
			{Name: "A1", Type: "Tx", Tooltip: "First Name", Rect: [4]float64{72, 700, 272, 720}},
			{Name: "A2", Type: "Tx", Tooltip: "Last Name", Value: "Doe", Rect: [4]float64{300, 700, 500, 720}},
			{Name: "total", Type: "Tx", Flags: 1, Value: "42"},
		},
	}))
	return dir, path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: pdfform")

	code, _, stderr = runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)

	code, _, stderr = runCLI(t, "export")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "exactly one PDF file is required")
}

func TestRun_Export(t *testing.T) {
	_, path := writeForm(t)

	code, stdout, stderr := runCLI(t, "export", path)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n  \"A2\": \"Doe\",\n  \"total\": \"42\"\n}\n", stdout)
}

func TestRun_FillJSON(t *testing.T) {
	dir, path := writeForm(t)

	code, stdout, stderr := runCLI(t, "fill", "--json", "--set", "A1=Jane", "--set", "Zzz=1", "--out", "out.pdf", path)
	require.Equal(t, 0, code, stderr)

	var res pdf.PDFFormFillResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, filepath.Join(dir, "out.pdf"), res.Output)
	if diff := cmp.Diff([]string{"Zzz"}, res.Unmatched); diff != "" {
		t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
	}

	code, stdout, stderr = runCLI(t, "export", filepath.Join(dir, "out.pdf"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"A1": "Jane"`)
}

func TestRun_EditsAndListings(t *testing.T) {
	_, path := writeForm(t)

	code, stdout, stderr := runCLI(t, "unlock", "--all", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Unlocked 1 field(s)")
	assert.Contains(t, stdout, "wrote ")

	code, stdout, stderr = runCLI(t, "clear", "--names", "nope", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "no changes; nothing written")
	assert.Contains(t, stdout, "no field with this name")

	code, stdout, stderr = runCLI(t, "search", "-t", "name", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "2 field(s) matching")
	assert.Contains(t, stdout, "First Name")

	code, stdout, stderr = runCLI(t, "map", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "3 field(s)")
	assert.Contains(t, stdout, "read-only")

	code, stdout, stderr = runCLI(t, "inspect", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "acroform")
}

func TestRun_Failures(t *testing.T) {
	dir, path := writeForm(t)

	code, _, stderr := runCLI(t, "fill", "--set", "novalue", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "want name=value")

	code, _, stderr = runCLI(t, "export", filepath.Join(dir, "missing.pdf"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "file does not exist")

	code, _, _ = runCLI(t, "export", "--format", "xml", path)
	assert.Equal(t, 1, code)
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"A1=Jane Doe", " agree =true", "note=a=b"})
	require.NoError(t, err)
	want := map[string]any{"A1": "Jane Doe", "agree": "true", "note": "a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsePairs mismatch (-want +got):\n%s", diff)
	}

	got, err = parsePairs(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
