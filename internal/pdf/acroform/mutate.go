package acroform

import (
	"log"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

// edit is one reversible dictionary write
type edit struct {
	dict    types.Dict
	key     string
	old     types.Object
	existed bool
}

// journal records writes so a failed mutation can be undone
type journal struct {
	edits []edit
}

func (j *journal) set(d types.Dict, key string, obj types.Object) {
	old, existed := d[key]
	j.edits = append(j.edits, edit{dict: d, key: key, old: old, existed: existed})
	d[key] = obj
}

func (j *journal) del(d types.Dict, key string) bool {
	old, existed := d[key]
	if !existed {
		return false
	}
	j.edits = append(j.edits, edit{dict: d, key: key, old: old, existed: true})
	delete(d, key)
	return true
}

// rollback undoes every recorded write in reverse order
func (j *journal) rollback() {
	for i := len(j.edits) - 1; i >= 0; i-- {
		e := j.edits[i]
		if e.existed {
			e.dict[e.key] = e.old
		} else {
			delete(e.dict, e.key)
		}
	}
	j.edits = nil
}

// commit marks the document for re-rendering. On failure every write in
// the journal is undone and the error is returned.
func (f *Form) commit(j *journal) error {
	if err := f.g.SetNeedAppearances(); err != nil {
		j.rollback()
		return formerrors.Wrap(formerrors.KindStructural, "failed to set NeedAppearances", err)
	}
	return nil
}

func (f *Form) requireForm() error {
	if !f.present {
		return formerrors.New(formerrors.KindMissingForm, "document has no form fields")
	}
	return nil
}

// SetValue encodes input for the field's type and stores it. Toggle
// widgets get their appearance state switched to match; every widget's
// cached appearance is dropped and the document is marked for re-render.
// Read-only fields are written like any other. Returns the number of
// fields changed.
func (f *Form) SetValue(fld *Field, input any) (int, error) {
	if err := f.requireForm(); err != nil {
		return 0, err
	}

	var (
		v   Value
		err error
	)
	switch fld.Type {
	case TypeToggle:
		v = EncodeToggle(input, fld.States)
	case TypeUnknown:
		v, err = Encode(TypeText, input)
		if err == nil {
			f.diags.Add(formerrors.New(formerrors.KindUnknownType, "field type unknown; value written as text").
				WithField(fld.Name))
		}
	default:
		v, err = Encode(fld.Type, input)
	}
	if err != nil {
		return 0, withField(err, fld.Name)
	}

	obj, err := v.Object()
	if err != nil {
		return 0, formerrors.Wrap(formerrors.KindInvalidInput, "failed to encode value", err).WithField(fld.Name)
	}

	j := &journal{}
	j.set(fld.dict, "V", obj)
	for _, w := range fld.Widgets {
		if fld.Type == TypeToggle {
			j.set(w.dict, "AS", types.Name(f.widgetState(w, v.S)))
		}
		j.del(w.dict, "AP")
	}
	if err := f.commit(j); err != nil {
		return 0, withField(err, fld.Name)
	}

	fld.raw = v
	fld.Value = Decode(fld.Type, v)
	fld.HasValue = true

	if f.debug {
		log.Printf("set %s = %s", fld.Name, v)
	}
	return 1, nil
}

// widgetState picks the appearance state for one widget of a toggle.
// Widgets that declare the token, or declare nothing, take it; a radio
// widget whose appearance set lacks the token is switched off.
func (f *Form) widgetState(w Widget, token string) string {
	if token == OffState {
		return OffState
	}
	states := appearanceStates(f.g, w.dict)
	if len(states) == 0 {
		return token
	}
	for _, st := range states {
		if st == token {
			return token
		}
	}
	return OffState
}

// ClearValue removes the field's value and drops cached appearances.
// It returns false, and changes nothing, when the field has no value.
func (f *Form) ClearValue(fld *Field) (bool, error) {
	if err := f.requireForm(); err != nil {
		return false, err
	}
	if fld.Type == TypeSignature {
		return false, formerrors.New(formerrors.KindUnsupportedOperation, "signature fields are read-only").
			WithField(fld.Name)
	}
	if _, ok := fld.dict["V"]; !ok {
		return false, nil
	}

	j := &journal{}
	j.del(fld.dict, "V")
	for _, w := range fld.Widgets {
		j.del(w.dict, "AP")
	}
	if err := f.commit(j); err != nil {
		return false, withField(err, fld.Name)
	}

	fld.raw = Absent
	fld.Value = ""
	fld.HasValue = false
	return true, nil
}

// SetFlag sets or clears one bit of the field flags. Other bits and the
// cached appearances are left alone.
func (f *Form) SetFlag(fld *Field, bit uint, on bool) error {
	if err := f.requireForm(); err != nil {
		return err
	}
	if bit > 31 {
		return formerrors.Newf(formerrors.KindInvalidInput, "flag bit %d out of range", bit).WithField(fld.Name)
	}

	flags := fld.Flags
	if on {
		flags |= 1 << bit
	} else {
		flags &^= 1 << bit
	}
	if flags == fld.Flags {
		return nil
	}
	fld.dict["Ff"] = types.Integer(flags)
	fld.Flags = flags
	f.g.MarkDirty()
	return nil
}

// Hide sets the hidden bit and clears the visuals that could still show
// the field: every widget loses its caption and cached appearance and is
// flagged hidden as an annotation.
func (f *Form) Hide(fld *Field) error {
	if err := f.requireForm(); err != nil {
		return err
	}

	j := &journal{}
	flags := fld.Flags | 1<<BitHidden
	j.set(fld.dict, "Ff", types.Integer(flags))
	for _, w := range fld.Widgets {
		if mk := f.mk(w.dict); mk != nil {
			if _, ok := mk["CA"]; ok {
				j.set(mk, "CA", types.StringLiteral(""))
			}
		}
		annot := 0
		if obj, ok := w.dict.Find("F"); ok {
			annot, _ = graph.Int(f.g, obj)
		}
		j.set(w.dict, "F", types.Integer(annot|annotHidden))
		j.del(w.dict, "AP")
	}
	j.del(fld.dict, "AP")
	if err := f.commit(j); err != nil {
		return withField(err, fld.Name)
	}

	fld.Flags = flags
	fld.Caption = ""
	return nil
}

// Unlock clears the read-only bit
func (f *Form) Unlock(fld *Field) error {
	return f.SetFlag(fld, BitReadOnly, false)
}

func (f *Form) mk(d types.Dict) types.Dict {
	obj, ok := d.Find("MK")
	if !ok {
		return nil
	}
	mk, err := graph.Dict(f.g, obj)
	if err != nil {
		return nil
	}
	return mk
}

// FillResult is the outcome of a batch fill
type FillResult struct {
	Changed     int
	Unmatched   []string
	Diagnostics formerrors.Diagnostics
}

// Fill applies SetValue to every addressable field named in values, in
// document order. Keys that match no field are returned sorted in
// Unmatched; per-field failures are collected and never abort the batch.
func (f *Form) Fill(values map[string]any) (*FillResult, error) {
	if err := f.requireForm(); err != nil {
		return nil, err
	}

	res := &FillResult{}
	matched := make(map[string]bool, len(values))
	for _, fld := range f.fields {
		if !fld.Addressable() {
			continue
		}
		input, ok := values[fld.Name]
		if !ok {
			continue
		}
		matched[fld.Name] = true
		n, err := f.SetValue(fld, input)
		if err != nil {
			res.Diagnostics.AddError(fld.Name, err)
			continue
		}
		res.Changed += n
	}

	for key := range values {
		if !matched[key] {
			res.Unmatched = append(res.Unmatched, key)
		}
	}
	sort.Strings(res.Unmatched)
	return res, nil
}

func withField(err error, name string) error {
	if fe, ok := err.(*formerrors.FormError); ok && fe.Field == "" {
		return fe.WithField(name)
	}
	return err
}
