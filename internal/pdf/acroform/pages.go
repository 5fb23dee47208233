package acroform

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

// Locate returns the 1-based page number a widget sits on. The widget's
// /P reference is matched against page identities first; when /P is
// missing or matches nothing, each page's /Annots array is scanned for the
// widget itself. Orphaned widgets report false.
func Locate(g graph.Graph, w Widget, pages []graph.Page) (int, bool) {
	if obj, ok := w.dict.Find("P"); ok {
		if id, ok := graph.Identity(obj); ok {
			for _, p := range pages {
				if pid, ok := graph.Identity(p.Ref); ok && pid == id {
					return p.Number, true
				}
			}
		}
	}
	if !w.HasRef {
		return 0, false
	}
	for _, p := range pages {
		if annotsContain(g, p.Dict, w.Ref) {
			return p.Number, true
		}
	}
	return 0, false
}

func annotsContain(g graph.Graph, page types.Dict, id graph.ID) bool {
	obj, ok := page.Find("Annots")
	if !ok {
		return false
	}
	annots, err := graph.Array(g, obj)
	if err != nil {
		return false
	}
	for _, a := range annots {
		if aid, ok := graph.Identity(a); ok && aid == id {
			return true
		}
	}
	return false
}

// Page returns the page of the field's first locatable widget. The result
// is cached on the record.
func (f *Form) Page(fld *Field) (int, bool) {
	if fld.pageKnown {
		return fld.page, fld.page > 0
	}
	fld.pageKnown = true

	pages := f.loadPages()
	for _, w := range fld.Widgets {
		if n, ok := Locate(f.g, w, pages); ok {
			fld.page = n
			return n, true
		}
	}
	return 0, false
}

// PageOf is Page with unknown pages reported as 0
func (f *Form) PageOf(fld *Field) int {
	n, _ := f.Page(fld)
	return n
}

func (f *Form) loadPages() []graph.Page {
	if f.pagesLoaded {
		return f.pages
	}
	f.pagesLoaded = true
	pages, err := f.g.Pages()
	if err != nil {
		f.diags.AddError("", err)
		return nil
	}
	f.pages = pages
	return pages
}
