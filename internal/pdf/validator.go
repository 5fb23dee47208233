package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Validator checks candidate input files before a session is opened
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs full validation, including a parse with the text
// reader. Problems are reported in the result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if err := v.validatePDFFile(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failures are results
	}

	result.Valid = true
	return result, nil
}

// CheckInput runs the cheap checks: existence, extension, size
func (v *Validator) CheckInput(filePath string) error {
	if filePath == "" {
		return formerrors.New(formerrors.KindInvalidInput, "path cannot be empty")
	}
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return formerrors.Newf(formerrors.KindIOFailure, "file does not exist: %s", filePath)
	}
	if err != nil {
		return formerrors.Wrap(formerrors.KindIOFailure, "cannot access file", err)
	}
	return v.ValidateFileInfo(filePath, fileInfo)
}

func (v *Validator) validatePDFFile(filePath string) error {
	if err := v.CheckInput(filePath); err != nil {
		return err
	}

	f, _, err := pdf.Open(filePath)
	if err != nil {
		return formerrors.Wrap(formerrors.KindIOFailure, "invalid PDF file", err)
	}
	defer f.Close()

	return nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.validatePDFFile(filePath) == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return formerrors.Newf(formerrors.KindIOFailure, "path is a directory, not a file: %s", filePath)
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return formerrors.Newf(formerrors.KindInvalidInput, "file is not a PDF: %s", filePath)
	}
	if fileInfo.Size() == 0 {
		return formerrors.Newf(formerrors.KindIOFailure, "file is empty: %s", filePath)
	}
	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return formerrors.Newf(formerrors.KindIOFailure, "file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}
	return nil
}

// TextPages counts the pages that carry an extractable text layer. Forms
// scanned to images report zero.
func (v *Validator) TextPages(filePath string) (count int, err error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("text extraction failed: %v", rec)
		}
	}()

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(content) != "" {
			count++
		}
	}
	return count, nil
}
