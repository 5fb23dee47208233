package pdf

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

// maxNameTreeDepth bounds the JavaScript name tree walk
const maxNameTreeDepth = 16

// Inspect classifies the interactive layer of a document: which kind of
// form it carries, its annotations, document-level scripts, permissions
// and whether pages carry a text layer. It never modifies the document.
func (s *Service) Inspect(req PDFFormInspectRequest) (*PDFFormInspectResult, error) {
	sess, err := s.open(req.Path, req.Password)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result := inspectForm(sess.doc, sess.form)
	result.Path = req.Path
	result.Version = sess.doc.Version()
	result.PageCount = sess.doc.PageCount()

	result.Permissions = security.Full()
	if p, ok := sess.doc.Permissions(); ok {
		result.Encrypted = true
		result.Permissions = security.FromP(p)
	}
	result.CanFillForms = result.Permissions.CanFillForms()

	textPages, err := s.validator.TextPages(req.Path)
	if err != nil {
		// an unreadable text layer does not make the form unusable
		result.Diagnostics.Warnings = append(result.Diagnostics.Warnings,
			formerrors.Wrap(formerrors.KindIOFailure, "text layer could not be read", err))
	}
	result.TextPages = textPages

	result.Recommendations = recommend(result)
	return result, nil
}

// inspectForm gathers everything that can be read from the object graph
func inspectForm(g graph.Graph, form *acroform.Form) *PDFFormInspectResult {
	result := &PDFFormInspectResult{
		FieldTypes:      map[string]int{},
		AnnotationTypes: map[string]int{},
	}

	acroForm, found, err := graph.AcroForm(g)
	if err != nil {
		result.Diagnostics.Add(formerrors.Wrap(formerrors.KindStructural, "failed to read AcroForm", err))
	}
	result.HasAcroForm = found
	if found {
		_, result.HasXFA = acroForm.Find("XFA")
	}
	result.NeedAppearances = graph.NeedAppearances(g)

	for _, fld := range form.Fields() {
		result.FieldCount++
		result.FieldTypes[typeName(fld)]++
	}

	countAnnotations(g, result)

	names, err := scriptNames(g)
	if err != nil {
		result.Diagnostics.Add(formerrors.Wrap(formerrors.KindStructural, "failed to read JavaScript name tree", err))
	}
	result.JavaScript = names

	result.FormKind = formKind(result, form.HasForm())
	result.Diagnostics.Merge(form.Diagnostics())
	return result
}

func countAnnotations(g graph.Graph, result *PDFFormInspectResult) {
	pages, err := g.Pages()
	if err != nil {
		result.Diagnostics.Add(formerrors.Wrap(formerrors.KindStructural, "failed to load pages", err))
		return
	}
	for _, page := range pages {
		obj, ok := page.Dict.Find("Annots")
		if !ok {
			continue
		}
		annots, err := graph.Array(g, obj)
		if err != nil {
			result.Diagnostics.Add(formerrors.Wrap(formerrors.KindStructural,
				fmt.Sprintf("page %d: malformed Annots", page.Number), err))
			continue
		}
		for _, a := range annots {
			d, err := graph.Dict(g, a)
			if err != nil || d == nil {
				continue
			}
			subtype := "Unknown"
			if st, ok := d.Find("Subtype"); ok {
				if name, ok := graph.Name(g, st); ok {
					subtype = name
				}
			}
			result.AnnotationCount++
			result.AnnotationTypes[subtype]++
			if subtype == "Widget" {
				result.WidgetCount++
			}
		}
	}
}

func formKind(r *PDFFormInspectResult, hasFields bool) string {
	switch {
	case r.HasXFA && hasFields:
		return FormKindHybrid
	case r.HasXFA:
		return FormKindXFA
	case hasFields:
		return FormKindAcroForm
	case r.HasAcroForm:
		return FormKindEmpty
	case r.WidgetCount > 0:
		return FormKindAnnotations
	default:
		return FormKindNone
	}
}

func recommend(r *PDFFormInspectResult) []string {
	var out []string
	switch r.FormKind {
	case FormKindXFA, FormKindHybrid:
		out = append(out, "XFA data is not edited; only the AcroForm fields are filled and viewers that prefer XFA may ignore them")
	case FormKindEmpty:
		out = append(out, "AcroForm dictionary has no fields; nothing can be filled by name")
	case FormKindAnnotations:
		out = append(out, "widget annotations exist without an AcroForm; fields are not addressable by name")
	case FormKindNone:
		out = append(out, "no interactive form; the document is static")
	}
	if r.Encrypted && !r.CanFillForms {
		out = append(out, "document permissions do not allow form filling")
	}
	if r.PageCount > 0 && r.TextPages == 0 {
		out = append(out, "no page carries a text layer; the document may be a scan")
	}
	if len(r.JavaScript) > 0 {
		out = append(out, "document-level JavaScript is present and is not run")
	}
	return out
}

// scriptNames lists the keys of the catalog's JavaScript name tree, sorted
func scriptNames(g graph.Graph) ([]string, error) {
	root, err := g.Catalog()
	if err != nil {
		return nil, err
	}
	obj, ok := root.Find("Names")
	if !ok {
		return nil, nil
	}
	names, err := graph.Dict(g, obj)
	if err != nil || names == nil {
		return nil, err
	}
	obj, ok = names.Find("JavaScript")
	if !ok {
		return nil, nil
	}

	var out []string
	if err := walkNameTree(g, obj, 0, &out); err != nil {
		return out, err
	}
	sort.Strings(out)
	return out, nil
}

func walkNameTree(g graph.Graph, obj types.Object, depth int, out *[]string) error {
	if depth > maxNameTreeDepth {
		return fmt.Errorf("name tree deeper than %d levels", maxNameTreeDepth)
	}
	node, err := graph.Dict(g, obj)
	if err != nil || node == nil {
		return err
	}

	if o, ok := node.Find("Names"); ok {
		arr, err := graph.Array(g, o)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(arr); i += 2 {
			if key, ok := graph.Text(g, arr[i]); ok {
				*out = append(*out, key)
			}
		}
	}
	if o, ok := node.Find("Kids"); ok {
		kids, err := graph.Array(g, o)
		if err != nil {
			return err
		}
		for _, kid := range kids {
			if err := walkNameTree(g, kid, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}
