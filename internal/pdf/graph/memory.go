package graph

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Memory is an in-memory object table. It lets callers assemble a document
// graph from pdfcpu values without a file behind it.
type Memory struct {
	objects map[int]types.Object
	next    int
	root    types.Dict
	pages   []*types.IndirectRef
	dirty   bool
}

// NewMemory creates an empty graph with a bare catalog
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[int]types.Object),
		next:    1,
		root:    types.Dict{"Type": types.Name("Catalog")},
	}
}

// Add stores obj as a new indirect object and returns its reference
func (m *Memory) Add(obj types.Object) types.IndirectRef {
	nr := m.next
	m.next++
	m.objects[nr] = obj
	return *types.NewIndirectRef(nr, 0)
}

// Set replaces the object behind ref
func (m *Memory) Set(ref types.IndirectRef, obj types.Object) {
	m.objects[ref.ObjectNumber.Value()] = obj
}

// Object returns the object stored behind ref
func (m *Memory) Object(ref types.IndirectRef) types.Object {
	return m.objects[ref.ObjectNumber.Value()]
}

// AddPage appends a page dictionary to the page list
func (m *Memory) AddPage(page types.Dict) types.IndirectRef {
	if _, ok := page.Find("Type"); !ok {
		page["Type"] = types.Name("Page")
	}
	ref := m.Add(page)
	r := ref
	m.pages = append(m.pages, &r)
	return ref
}

// SetAcroForm installs an AcroForm dictionary with the given top-level fields
func (m *Memory) SetAcroForm(fields ...types.IndirectRef) types.Dict {
	arr := make(types.Array, 0, len(fields))
	for _, f := range fields {
		arr = append(arr, f)
	}
	form := types.Dict{"Fields": arr}
	m.root["AcroForm"] = m.Add(form)
	return form
}

// Root returns the catalog dictionary for direct manipulation
func (m *Memory) Root() types.Dict {
	return m.root
}

// Catalog implements Graph
func (m *Memory) Catalog() (types.Dict, error) {
	return m.root, nil
}

// Resolve implements Graph
func (m *Memory) Resolve(obj types.Object) (types.Object, error) {
	return resolve(func(id ID) (types.Object, bool) {
		o, ok := m.objects[id.ObjectNumber]
		return o, ok
	}, obj)
}

// Pages implements Graph
func (m *Memory) Pages() ([]Page, error) {
	pages := make([]Page, 0, len(m.pages))
	for i, ref := range m.pages {
		d, ok := m.objects[ref.ObjectNumber.Value()].(types.Dict)
		if !ok {
			return nil, fmt.Errorf("page %d is not a dictionary", i+1)
		}
		pages = append(pages, Page{Number: i + 1, Ref: ref, Dict: d})
	}
	return pages, nil
}

// SetNeedAppearances implements Graph
func (m *Memory) SetNeedAppearances() error {
	if err := setNeedAppearances(m); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

// MarkDirty implements Graph
func (m *Memory) MarkDirty() {
	m.dirty = true
}

// Dirty implements Graph
func (m *Memory) Dirty() bool {
	return m.dirty
}
