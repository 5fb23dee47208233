// Package security confines workflow file access to configured directories
// and interprets document permission bits.
package security

import (
	"os"
	"path/filepath"
	"strings"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// PathValidator confines paths to one configured directory
type PathValidator struct {
	directory string
}

// NewPathValidator creates a validator for directory. The directory does
// not have to exist yet; until it does, every path is accepted.
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, formerrors.New(formerrors.KindInvalidInput, "configured directory cannot be empty")
	}
	return &PathValidator{directory: directory}, nil
}

// Directory returns the configured directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// ValidatePath checks that path lies within the configured directory. The
// path itself may not exist yet, which is the case for output files.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return formerrors.New(formerrors.KindInvalidInput, "path cannot be empty")
	}
	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return formerrors.Wrap(formerrors.KindInvalidInput, "path validation failed", err)
	}
	if !within {
		return formerrors.Newf(formerrors.KindInvalidInput, "path is outside configured directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory reports whether path, after cleaning and symlink
// resolution, is the configured directory or lies below it
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if _, err := os.Stat(v.directory); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	absDir, err := filepath.Abs(v.directory)
	if err != nil {
		return false, err
	}
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}
	realPath := realTarget(cleanPath)

	dirs := []string{cleanDir, realDir}
	return within(cleanPath, dirs) && within(realPath, dirs), nil
}

// realTarget resolves symlinks in path. For a path that does not exist yet
// the parent directory is resolved instead.
func realTarget(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent, base := filepath.Split(path)
	if resolved, err := filepath.EvalSymlinks(parent); err == nil {
		return filepath.Join(resolved, base)
	}
	return path
}

func within(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir {
			return true
		}
		prefix := dir
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NormalizePath returns an absolute, validated path. Relative paths are
// taken relative to the configured directory; null bytes are dropped.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", formerrors.New(formerrors.KindInvalidInput, "path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.directory, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", formerrors.Wrap(formerrors.KindInvalidInput, "failed to resolve path", err)
	}
	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ValidateDirectory checks that dirPath is within bounds and, if it
// exists, is a directory
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return formerrors.Wrap(formerrors.KindIOFailure, "cannot access directory", err)
	}
	if !info.IsDir() {
		return formerrors.Newf(formerrors.KindInvalidInput, "path is not a directory: %s", dirPath)
	}
	return nil
}
