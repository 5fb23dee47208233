package acroform

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

func rect(llx, lly, urx, ury float64) types.Array {
	return types.Array{types.Float(llx), types.Float(lly), types.Float(urx), types.Float(ury)}
}

// textField returns a merged field/widget dictionary of type Tx
func textField(name string) types.Dict {
	return types.Dict{
		"T":       types.StringLiteral(name),
		"FT":      types.Name("Tx"),
		"Subtype": types.Name("Widget"),
		"Rect":    rect(0, 0, 100, 20),
	}
}

// appearance returns an /AP dictionary declaring the given normal states
func appearance(states ...string) types.Dict {
	n := types.Dict{}
	for _, st := range states {
		n[st] = types.Dict{}
	}
	return types.Dict{"N": n}
}

func widget(r types.Array) types.Dict {
	return types.Dict{
		"Subtype": types.Name("Widget"),
		"Rect":    r,
	}
}

// extract builds a form over m and fails the test on error
func extract(t *testing.T, m *graph.Memory) *Form {
	t.Helper()
	form, err := Extract(m, Options{})
	require.NoError(t, err)
	return form
}

// newSimpleDoc has text fields A1 and A2 on one page
func newSimpleDoc(t *testing.T) (*graph.Memory, *Form) {
	t.Helper()
	m := graph.NewMemory()

	a1 := textField("A1")
	a1["TU"] = types.StringLiteral("First Name")
	a1["AP"] = appearance()
	a2 := textField("A2")
	a2["TU"] = types.StringLiteral("Last Name")

	r1 := m.Add(a1)
	r2 := m.Add(a2)
	page := m.AddPage(types.Dict{"Annots": types.Array{r1, r2}})
	a1["P"] = page
	a2["P"] = page
	m.SetAcroForm(r1, r2)

	return m, extract(t, m)
}

func mustLookup(t *testing.T, form *Form, name string) *Field {
	t.Helper()
	fld, err := form.Lookup(name)
	require.NoError(t, err)
	return fld
}
