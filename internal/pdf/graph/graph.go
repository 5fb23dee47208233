// Package graph provides access to a PDF document's indirect-object space:
// the catalog, object resolution, the ordered page list and the AcroForm
// re-render flag. Parsing and serialization are delegated to pdfcpu.
package graph

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxRefChain bounds indirect-to-indirect resolution
const maxRefChain = 32

// Graph is the object-graph contract the form engine is written against
type Graph interface {
	// Catalog returns the document root dictionary
	Catalog() (types.Dict, error)
	// Resolve follows indirect references until a direct object is reached.
	// A reference to a missing object resolves to nil without error.
	Resolve(obj types.Object) (types.Object, error)
	// Pages returns the page list in document order
	Pages() ([]Page, error)
	// SetNeedAppearances sets /NeedAppearances true on the AcroForm dictionary.
	// It is the only writer of that flag and marks the graph dirty.
	SetNeedAppearances() error
	// MarkDirty records that the graph differs from its source
	MarkDirty()
	// Dirty reports whether any mutation was made since open
	Dirty() bool
}

// Page is one entry of the page list
type Page struct {
	Number int
	Ref    *types.IndirectRef
	Dict   types.Dict
}

// ID identifies an indirect object
type ID struct {
	ObjectNumber     int
	GenerationNumber int
}

// String returns the PDF reference notation
func (id ID) String() string {
	return fmt.Sprintf("%d %d R", id.ObjectNumber, id.GenerationNumber)
}

// Identity returns the object identity of obj if it is an indirect reference
func Identity(obj types.Object) (ID, bool) {
	switch ref := obj.(type) {
	case types.IndirectRef:
		return ID{ObjectNumber: ref.ObjectNumber.Value(), GenerationNumber: ref.GenerationNumber.Value()}, true
	case *types.IndirectRef:
		if ref == nil {
			return ID{}, false
		}
		return ID{ObjectNumber: ref.ObjectNumber.Value(), GenerationNumber: ref.GenerationNumber.Value()}, true
	}
	return ID{}, false
}

// Dict resolves obj to a dictionary. A missing object yields nil, nil.
func Dict(g Graph, obj types.Object) (types.Dict, error) {
	o, err := g.Resolve(obj)
	if err != nil || o == nil {
		return nil, err
	}
	switch d := o.(type) {
	case types.Dict:
		return d, nil
	case types.StreamDict:
		return d.Dict, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %T", o)
}

// Array resolves obj to an array. A missing object yields nil, nil.
func Array(g Graph, obj types.Object) (types.Array, error) {
	o, err := g.Resolve(obj)
	if err != nil || o == nil {
		return nil, err
	}
	a, ok := o.(types.Array)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", o)
	}
	return a, nil
}

// Int resolves obj to an integer
func Int(g Graph, obj types.Object) (int, bool) {
	o, err := g.Resolve(obj)
	if err != nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return v.Value(), true
	case types.Float:
		return int(v.Value()), true
	}
	return 0, false
}

// Number resolves obj to a float
func Number(g Graph, obj types.Object) (float64, bool) {
	o, err := g.Resolve(obj)
	if err != nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}

// Name resolves obj to a name
func Name(g Graph, obj types.Object) (string, bool) {
	o, err := g.Resolve(obj)
	if err != nil {
		return "", false
	}
	if n, ok := o.(types.Name); ok {
		return n.Value(), true
	}
	return "", false
}

// Text resolves obj to a decoded text string. Literal and hex strings are
// unescaped and UTF-16 decoded; names are accepted for lenient readers.
func Text(g Graph, obj types.Object) (string, bool) {
	o, err := g.Resolve(obj)
	if err != nil {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return v.Value(), true
		}
		return s, true
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.Name:
		return v.Value(), true
	}
	return "", false
}

// EncodeText converts s into a string literal ready to be stored
func EncodeText(s string) (types.StringLiteral, error) {
	var (
		esc *string
		err error
	)
	if isASCII(s) {
		esc, err = types.Escape(s)
	} else {
		esc, err = types.EscapedUTF16String(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode text %q: %w", s, err)
	}
	return types.StringLiteral(*esc), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// AcroForm returns the catalog's AcroForm dictionary; found is false when absent
func AcroForm(g Graph) (types.Dict, bool, error) {
	root, err := g.Catalog()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get catalog: %w", err)
	}
	obj, found := root.Find("AcroForm")
	if !found {
		return nil, false, nil
	}
	d, err := Dict(g, obj)
	if err != nil {
		return nil, false, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if d == nil {
		return nil, false, nil
	}
	return d, true, nil
}

// NeedAppearances reports the current value of the AcroForm re-render flag
func NeedAppearances(g Graph) bool {
	form, found, err := AcroForm(g)
	if err != nil || !found {
		return false
	}
	obj, ok := form.Find("NeedAppearances")
	if !ok {
		return false
	}
	o, err := g.Resolve(obj)
	if err != nil {
		return false
	}
	b, ok := o.(types.Boolean)
	return ok && b.Value()
}

func setNeedAppearances(g Graph) error {
	form, found, err := AcroForm(g)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("document has no AcroForm dictionary")
	}
	form.Update("NeedAppearances", types.Boolean(true))
	return nil
}

func resolve(lookup func(ID) (types.Object, bool), obj types.Object) (types.Object, error) {
	for i := 0; i < maxRefChain; i++ {
		id, ok := Identity(obj)
		if !ok {
			return obj, nil
		}
		next, found := lookup(id)
		if !found {
			return nil, nil
		}
		obj = next
	}
	return nil, fmt.Errorf("reference chain longer than %d", maxRefChain)
}
