// Package acroform reads and edits the interactive form of a PDF document.
//
// Extract walks the AcroForm field tree of a graph.Graph once and returns a
// Form holding one Field record per addressable field. Reads come from those
// records; writes go through Form so that the document and the records stay
// in step.
package acroform

import (
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

// Options controls extraction
type Options struct {
	Debug bool
}

// Form is the extracted form of one document session
type Form struct {
	g        graph.Graph
	acroForm types.Dict
	present  bool
	debug    bool

	arena  *arena
	fields []*Field
	byName map[string]*Field

	pages       []graph.Page
	pagesLoaded bool

	diags formerrors.Diagnostics
}

// Extract walks the document's field tree. A document without an AcroForm
// (or with an empty Fields array) yields an empty Form whose writes fail
// with MissingForm. Malformed subtrees are skipped and reported through
// Diagnostics.
func Extract(g graph.Graph, opts Options) (*Form, error) {
	f := &Form{
		g:      g,
		debug:  opts.Debug,
		arena:  &arena{},
		byName: make(map[string]*Field),
	}

	acroForm, found, err := graph.AcroForm(g)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindStructural, "failed to read AcroForm", err)
	}
	if !found {
		return f, nil
	}
	f.acroForm = acroForm

	obj, ok := acroForm.Find("Fields")
	if !ok {
		return f, nil
	}
	roots, err := graph.Array(g, obj)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindStructural, "AcroForm Fields is not an array", err)
	}
	if len(roots) == 0 {
		return f, nil
	}
	f.present = true

	x := newExtractor(g, &f.diags, opts.Debug)
	f.fields = x.extract(roots)
	f.arena = x.arena
	f.index()

	if opts.Debug {
		log.Printf("extracted %d fields (%s)", len(f.fields), f.diags.Summary())
	}
	return f, nil
}

// index builds the name table. The first field to claim a name keeps it;
// later claimants are flagged and reported.
func (f *Form) index() {
	for _, fld := range f.fields {
		if fld.Name == "" {
			continue
		}
		if _, taken := f.byName[fld.Name]; taken {
			fld.Duplicate = true
			f.diags.Add(formerrors.New(formerrors.KindDuplicateName,
				"name already used by an earlier field; this one is not addressable by name").
				WithField(fld.Name))
			continue
		}
		f.byName[fld.Name] = fld
	}
}

// HasForm reports whether the document defines a non-empty AcroForm
func (f *Form) HasForm() bool {
	return f.present
}

// Fields returns every extracted field in document order
func (f *Form) Fields() []*Field {
	return f.fields
}

// Lookup returns the field addressed by name
func (f *Form) Lookup(name string) (*Field, error) {
	if !f.present {
		return nil, formerrors.New(formerrors.KindMissingForm, "document has no form fields")
	}
	fld, ok := f.byName[name]
	if !ok {
		return nil, formerrors.New(formerrors.KindNotFound, "no field with this name").WithField(name)
	}
	return fld, nil
}

// Names returns the addressable field names in document order
func (f *Form) Names() []string {
	names := make([]string, 0, len(f.byName))
	for _, fld := range f.fields {
		if fld.Addressable() {
			names = append(names, fld.Name)
		}
	}
	return names
}

// Diagnostics returns the problems recorded so far
func (f *Form) Diagnostics() *formerrors.Diagnostics {
	return &f.diags
}

// Graph returns the document graph the form was extracted from
func (f *Form) Graph() graph.Graph {
	return f.g
}

// NeedAppearances reports the document's re-render flag
func (f *Form) NeedAppearances() bool {
	return graph.NeedAppearances(f.g)
}
