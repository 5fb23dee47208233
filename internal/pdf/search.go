package pdf

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Search handles PDF discovery in a directory tree
type Search struct {
	validator *Validator
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
	}
}

// SearchDirectory lists the PDF files below req.Directory whose names
// fuzzy-match every word of req.Query
func (s *Search) SearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	files, err := s.FindPDFsInDirectoryLimited(req.Directory, 0)
	if err != nil {
		return nil, err
	}

	absDirectory, _ := filepath.Abs(req.Directory)
	files = filterByQuery(files, req.Query)

	return &PDFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

// FindPDFsInDirectoryLimited walks directory and returns up to limit PDF
// files in lexical order. Hidden directories are skipped; limit 0 means
// no limit.
func (s *Search) FindPDFsInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	if directory == "" {
		return nil, formerrors.New(formerrors.KindInvalidInput, "directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, formerrors.Newf(formerrors.KindNotFound, "directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindInvalidInput, "failed to resolve directory path", err)
	}

	files := []FileInfo{}
	err = filepath.WalkDir(absDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if limit > 0 && len(files) >= limit {
			return filepath.SkipAll
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindIOFailure, "error walking directory", err)
	}
	return files, nil
}

// filterByQuery keeps files whose base name matches every word of query,
// either as a substring or as an in-order fuzzy subsequence
func filterByQuery(files []FileInfo, query string) []FileInfo {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return strings.ContainsRune(" _-.()[]", r)
	})
	if len(words) == 0 {
		return files
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = strings.ToLower(strings.TrimSuffix(f.Name, filepath.Ext(f.Name)))
	}

	hits := make([]int, len(files))
	for _, w := range words {
		for _, m := range fuzzy.Find(w, names) {
			hits[m.Index]++
		}
	}

	out := []FileInfo{}
	for i, f := range files {
		if hits[i] == len(words) {
			out = append(out, f)
		}
	}
	return out
}
