// Package pdftest writes small, valid PDF files with AcroForm fields for
// tests that need a document on disk.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Field describes one merged field/widget
type Field struct {
	Name    string
	Type    string // Tx, Btn, Ch or Sig
	Value   string // text value, or the state name for Btn
	Default string
	Tooltip string
	Caption string
	Flags   int
	Page    int // 1-based; 0 means page 1
	Rect    [4]float64
	States  []string // on states of a Btn appearance dictionary
}

// Doc describes the document to write
type Doc struct {
	Pages      int
	Text       string // text drawn on every page
	Fields     []Field
	NoForm     bool
	XFA        bool
	JavaScript []string // document-level script names
}

type writer struct {
	buf     bytes.Buffer
	offsets []int
}

// reserve hands out object numbers in order
func (w *writer) reserve() int {
	w.offsets = append(w.offsets, 0)
	return len(w.offsets)
}

func (w *writer) object(nr int, body string) {
	w.offsets[nr-1] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", nr, body)
}

func (w *writer) stream(nr int, dict, data string) {
	w.object(nr, fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}

// Bytes renders the document
func Bytes(doc Doc) []byte {
	if doc.Pages < 1 {
		doc.Pages = 1
	}
	w := &writer{}
	w.buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	catalog := w.reserve()
	pageTree := w.reserve()
	font := w.reserve()

	pages := make([]int, doc.Pages)
	contents := make([]int, doc.Pages)
	for i := range pages {
		pages[i] = w.reserve()
		contents[i] = w.reserve()
	}

	fields := make([]int, len(doc.Fields))
	appearances := make([][]int, len(doc.Fields))
	for i, f := range doc.Fields {
		fields[i] = w.reserve()
		for range f.States {
			appearances[i] = append(appearances[i], w.reserve())
		}
		if len(f.States) > 0 {
			appearances[i] = append(appearances[i], w.reserve()) // Off
		}
	}

	var acroForm, names int
	if !doc.NoForm {
		acroForm = w.reserve()
	}
	scripts := make([]int, len(doc.JavaScript))
	if len(doc.JavaScript) > 0 {
		names = w.reserve()
		for i := range scripts {
			scripts[i] = w.reserve()
		}
	}

	// catalog
	var cat strings.Builder
	fmt.Fprintf(&cat, "<< /Type /Catalog /Pages %d 0 R", pageTree)
	if acroForm != 0 {
		fmt.Fprintf(&cat, " /AcroForm %d 0 R", acroForm)
	}
	if names != 0 {
		fmt.Fprintf(&cat, " /Names %d 0 R", names)
	}
	cat.WriteString(" >>")
	w.object(catalog, cat.String())

	kids := make([]string, len(pages))
	for i, p := range pages {
		kids[i] = ref(p)
	}
	w.object(pageTree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	w.object(font, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range pages {
		var annots []string
		for j, f := range doc.Fields {
			if pageOf(f) == i+1 {
				annots = append(annots, ref(fields[j]))
			}
		}
		body := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << /Font << /F1 %s >> >> /Contents %s",
			ref(pageTree), ref(font), ref(contents[i]))
		if len(annots) > 0 {
			body += fmt.Sprintf(" /Annots [%s]", strings.Join(annots, " "))
		}
		w.object(p, body+" >>")

		text := doc.Text
		w.stream(contents[i], "", fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escape(text)))
	}

	for i, f := range doc.Fields {
		w.object(fields[i], fieldDict(f, pages[pageOf(f)-1], appearances[i]))
		for _, ap := range appearances[i] {
			w.stream(ap, "/Type /XObject /Subtype /Form /BBox [0 0 10 10]", "")
		}
	}

	if acroForm != 0 {
		refs := make([]string, len(fields))
		for i, f := range fields {
			refs[i] = ref(f)
		}
		body := fmt.Sprintf("<< /Fields [%s] /DA (/Helv 0 Tf 0 g)", strings.Join(refs, " "))
		if doc.XFA {
			body += " /XFA [(template) (<template/>)]"
		}
		w.object(acroForm, body+" >>")
	}

	if names != 0 {
		var entries []string
		for i, name := range doc.JavaScript {
			entries = append(entries, fmt.Sprintf("(%s) %s", escape(name), ref(scripts[i])))
		}
		w.object(names, fmt.Sprintf("<< /JavaScript << /Names [%s] >> >>", strings.Join(entries, " ")))
		for _, s := range scripts {
			w.object(s, "<< /S /JavaScript /JS (app.alert\\('hi'\\);) >>")
		}
	}

	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", len(w.offsets)+1)
	for _, off := range w.offsets {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n", len(w.offsets)+1, ref(catalog), xref)
	return w.buf.Bytes()
}

// Write renders doc to path
func Write(path string, doc Doc) error {
	return os.WriteFile(path, Bytes(doc), 0o644)
}

func fieldDict(f Field, page int, aps []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<< /Type /Annot /Subtype /Widget /T (%s) /FT /%s /P %s", escape(f.Name), f.Type, ref(page))

	r := f.Rect
	if r == [4]float64{} {
		r = [4]float64{72, 600, 272, 620}
	}
	fmt.Fprintf(&b, " /Rect [%g %g %g %g] /F 4", r[0], r[1], r[2], r[3])

	if f.Flags != 0 {
		fmt.Fprintf(&b, " /Ff %d", f.Flags)
	}
	if f.Tooltip != "" {
		fmt.Fprintf(&b, " /TU (%s)", escape(f.Tooltip))
	}
	if f.Caption != "" {
		fmt.Fprintf(&b, " /MK << /CA (%s) >>", escape(f.Caption))
	}

	if f.Type == "Btn" {
		if f.Value != "" {
			fmt.Fprintf(&b, " /V /%s /AS /%s", f.Value, f.Value)
		} else if len(f.States) > 0 {
			b.WriteString(" /AS /Off")
		}
	} else {
		if f.Value != "" {
			fmt.Fprintf(&b, " /V (%s)", escape(f.Value))
		}
		if f.Default != "" {
			fmt.Fprintf(&b, " /DV (%s)", escape(f.Default))
		}
	}

	if len(aps) > 0 {
		var n []string
		for i, st := range f.States {
			n = append(n, fmt.Sprintf("/%s %s", st, ref(aps[i])))
		}
		n = append(n, fmt.Sprintf("/Off %s", ref(aps[len(aps)-1])))
		fmt.Fprintf(&b, " /AP << /N << %s >> >>", strings.Join(n, " "))
	}
	b.WriteString(" >>")
	return b.String()
}

func pageOf(f Field) int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

func ref(nr int) string {
	return fmt.Sprintf("%d 0 R", nr)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
