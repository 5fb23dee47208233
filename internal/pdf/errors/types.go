package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes form-layer failures
type Kind int

const (
	KindUnknown Kind = iota
	// KindStructural marks a malformed or cyclic field tree; the subtree is skipped
	KindStructural
	// KindMissingForm means the document has no AcroForm definition
	KindMissingForm
	// KindUnsupportedOperation covers writes the core refuses, e.g. signatures
	KindUnsupportedOperation
	// KindNotFound is a field name absent from the document
	KindNotFound
	// KindIOFailure is an open or save failure on the underlying document
	KindIOFailure
	// KindUnknownType is a field whose type could not be resolved
	KindUnknownType
	// KindDuplicateName is a second field claiming an already used name
	KindDuplicateName
	// KindInvalidInput is a caller-supplied value or argument that cannot be used
	KindInvalidInput
)

// Severity indicates whether a problem aborts the operation it occurred in
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "STRUCTURAL_ERROR"
	case KindMissingForm:
		return "MISSING_FORM"
	case KindUnsupportedOperation:
		return "UNSUPPORTED_OPERATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindIOFailure:
		return "IO_FAILURE"
	case KindUnknownType:
		return "UNKNOWN_TYPE"
	case KindDuplicateName:
		return "DUPLICATE_NAME"
	case KindInvalidInput:
		return "INVALID_INPUT"
	default:
		return "UNKNOWN"
	}
}

// Severity returns the default severity for a kind
func (k Kind) Severity() Severity {
	switch k {
	case KindMissingForm, KindIOFailure:
		return SeverityFatal
	case KindUnknownType, KindDuplicateName:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Sentinels for errors.Is matching by kind
var (
	ErrStructural           = &FormError{Kind: KindStructural}
	ErrMissingForm          = &FormError{Kind: KindMissingForm}
	ErrUnsupportedOperation = &FormError{Kind: KindUnsupportedOperation}
	ErrNotFound             = &FormError{Kind: KindNotFound}
	ErrIOFailure            = &FormError{Kind: KindIOFailure}
	ErrUnknownType          = &FormError{Kind: KindUnknownType}
	ErrDuplicateName        = &FormError{Kind: KindDuplicateName}
	ErrInvalidInput         = &FormError{Kind: KindInvalidInput}
)

// FormError is a form-layer error with the field and object it concerns
type FormError struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	ObjectNum int    `json:"object_num,omitempty"`
	Err       error  `json:"-"`
}

// New creates a FormError of the given kind
func New(kind Kind, message string) *FormError {
	return &FormError{Kind: kind, Message: message}
}

// Newf creates a FormError with a formatted message
func Newf(kind Kind, format string, args ...any) *FormError {
	return &FormError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a lower-level error as a FormError
func Wrap(kind Kind, message string, err error) *FormError {
	return &FormError{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface
func (e *FormError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Kind, e.Field, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause
func (e *FormError) Unwrap() error {
	return e.Err
}

// Is reports kind equality so callers can match against the sentinels
func (e *FormError) Is(target error) bool {
	t, ok := target.(*FormError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithField records the field name the error concerns
func (e *FormError) WithField(name string) *FormError {
	e.Field = name
	return e
}

// WithObject records the indirect object number the error concerns
func (e *FormError) WithObject(objNum int) *FormError {
	e.ObjectNum = objNum
	return e
}

// Severity returns the severity of this error
func (e *FormError) Severity() Severity {
	return e.Kind.Severity()
}

// KindOf extracts the Kind of err, or KindUnknown
func KindOf(err error) Kind {
	var fe *FormError
	if stderrors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Diagnostics collects the non-fatal problems of one batch operation
type Diagnostics struct {
	Errors   []*FormError `json:"errors,omitempty"`
	Warnings []*FormError `json:"warnings,omitempty"`
}

// Add files the error under errors or warnings by severity
func (d *Diagnostics) Add(err *FormError) {
	if err == nil {
		return
	}
	if err.Severity() == SeverityWarning {
		d.Warnings = append(d.Warnings, err)
		return
	}
	d.Errors = append(d.Errors, err)
}

// AddError records an arbitrary error, wrapping it when it is not a FormError
func (d *Diagnostics) AddError(field string, err error) {
	if err == nil {
		return
	}
	var fe *FormError
	if !stderrors.As(err, &fe) {
		fe = Wrap(KindUnknown, "operation failed", err)
	}
	if fe.Field == "" && field != "" {
		fe.Field = field
	}
	d.Add(fe)
}

// Merge appends another collection
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Count returns the number of errors and warnings
func (d *Diagnostics) Count() (errors, warnings int) {
	return len(d.Errors), len(d.Warnings)
}

// HasErrors returns true if any non-warning problem was recorded
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Filter returns every recorded problem of the given kind
func (d *Diagnostics) Filter(kind Kind) []*FormError {
	var out []*FormError
	for _, e := range d.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	for _, e := range d.Warnings {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Summary returns a text summary of all errors and warnings
func (d *Diagnostics) Summary() string {
	errorCount, warningCount := d.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}
	return fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)
}
