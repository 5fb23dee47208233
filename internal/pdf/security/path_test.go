package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.ErrorIs(t, err, formerrors.ErrInvalidInput)

	v, err := NewPathValidator("/not/created/yet")
	require.NoError(t, err)
	assert.Equal(t, "/not/created/yet", v.Directory())
	assert.NoError(t, v.ValidatePath("/anywhere/file.pdf"), "missing directory accepts any path")
}

func TestPathValidator_ValidatePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file in directory", filepath.Join(dir, "form.pdf"), false},
		{"nested file", filepath.Join(dir, "sub", "form.pdf"), false},
		{"directory itself", dir, false},
		{"output not created yet", filepath.Join(dir, "out_new.pdf"), false},
		{"traversal", filepath.Join(dir, "..", "escape.pdf"), true},
		{"outside", "/etc/passwd", true},
		{"sibling with shared prefix", dir + "-other/form.pdf", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, formerrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_Symlinks(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF"), 0o644))
	link := filepath.Join(dir, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	v, err := NewPathValidator(dir)
	require.NoError(t, err)
	assert.Error(t, v.ValidatePath(link), "symlink escaping the directory is rejected")
}

func TestPathValidator_NormalizePath(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	got, err := v.NormalizePath("form.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "form.pdf"), got)

	got, err = v.NormalizePath("fo\x00rm.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "form.pdf"), got)

	_, err = v.NormalizePath("../x.pdf")
	assert.Error(t, err)
	_, err = v.NormalizePath("")
	assert.Error(t, err)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "form.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	assert.NoError(t, v.ValidateDirectory(dir))
	assert.NoError(t, v.ValidateDirectory(filepath.Join(dir, "later")))
	assert.ErrorIs(t, v.ValidateDirectory(file), formerrors.ErrInvalidInput)
	assert.Error(t, v.ValidateDirectory(os.TempDir()+"/.."))
}
