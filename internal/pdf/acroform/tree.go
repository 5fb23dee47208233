package acroform

import (
	"log"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

// nodeID addresses a node in the arena
type nodeID int

const noNode nodeID = -1

// node is one dictionary of the field tree. Links are arena indices.
type node struct {
	dict   types.Dict
	id     graph.ID
	hasID  bool
	parent nodeID
	kids   []nodeID
	name   string
}

// arena owns every node visited by one extraction pass
type arena struct {
	nodes []node
}

func (a *arena) add(dict types.Dict, id graph.ID, hasID bool, parent nodeID) nodeID {
	nid := nodeID(len(a.nodes))
	a.nodes = append(a.nodes, node{dict: dict, id: id, hasID: hasID, parent: parent})
	if parent != noNode {
		a.nodes[parent].kids = append(a.nodes[parent].kids, nid)
	}
	return nid
}

func (a *arena) get(id nodeID) *node {
	return &a.nodes[id]
}

// kidSet accumulates the children of one named node
type kidSet struct {
	widgets []nodeID
	named   []namedKid
	firstFT string
	seenKid bool
}

type namedKid struct {
	obj    types.Object
	parent nodeID
}

// extractor walks the field tree of one document
type extractor struct {
	g      graph.Graph
	arena  *arena
	onPath map[graph.ID]bool
	diags  *formerrors.Diagnostics
	debug  bool
	index  int
}

func newExtractor(g graph.Graph, diags *formerrors.Diagnostics, debug bool) *extractor {
	return &extractor{
		g:      g,
		arena:  &arena{},
		onPath: make(map[graph.ID]bool),
		diags:  diags,
		debug:  debug,
	}
}

// extract walks every top-level field in document order
func (x *extractor) extract(fields types.Array) []*Field {
	var out []*Field
	for i, obj := range fields {
		found, err := x.walk(obj, noNode, "", "")
		if err != nil {
			x.skip(err, i)
			continue
		}
		out = append(out, found...)
	}
	return out
}

func (x *extractor) skip(err *formerrors.FormError, index int) {
	if x.debug {
		log.Printf("skipping field subtree %d: %v", index, err)
	}
	x.diags.Add(err)
}

// walk visits one field node and its descendants. An error means the node
// is malformed; the caller omits the whole subtree and continues.
func (x *extractor) walk(obj types.Object, parent nodeID, parentName, inheritedFT string) ([]*Field, *formerrors.FormError) {
	id, hasID := graph.Identity(obj)
	if hasID {
		if x.onPath[id] {
			return nil, cycleError(id)
		}
		x.onPath[id] = true
		defer delete(x.onPath, id)
	}

	dict, err := graph.Dict(x.g, obj)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindStructural, "field node is not a dictionary", err).
			WithObject(id.ObjectNumber)
	}
	if dict == nil {
		return nil, formerrors.New(formerrors.KindStructural, "field node references a missing object").
			WithObject(id.ObjectNumber)
	}

	nid := x.arena.add(dict, id, hasID, parent)

	name := parentName
	local, named := x.localName(dict)
	if named {
		name = joinName(parentName, local)
	}
	x.arena.get(nid).name = name

	ownFT, hasFT := x.typeTag(dict)
	childFT := inheritedFT
	if hasFT {
		childFT = ownFT
	}

	kids := &kidSet{}
	if isWidget(x.g, dict) {
		kids.widgets = append(kids.widgets, nid)
	}
	if ferr := x.collectKids(dict, nid, kids); ferr != nil {
		return nil, ferr.WithField(name)
	}

	var out []*Field
	if x.terminal(named, parentName, hasFT, kids) {
		ft := resolveType(ownFT, kids.firstFT, inheritedFT)
		f := x.newField(nid, name, ft, kids.widgets)
		if name == "" {
			x.diags.Add(formerrors.New(formerrors.KindStructural, "field has no name and no named ancestor; it cannot be addressed").
				WithObject(id.ObjectNumber))
		}
		if ft == TypeUnknown {
			x.diags.Add(formerrors.New(formerrors.KindUnknownType, "field type could not be resolved; treating it as text").
				WithField(name))
		}
		out = append(out, f)
	}

	for _, kid := range kids.named {
		found, ferr := x.walk(kid.obj, kid.parent, name, childFT)
		if ferr != nil {
			x.skip(ferr, len(out))
			continue
		}
		out = append(out, found...)
	}
	return out, nil
}

// terminal decides whether a node gets its own record. Typed nodes always
// do; untyped named nodes do unless all of their children are named.
func (x *extractor) terminal(named bool, parentName string, hasFT bool, kids *kidSet) bool {
	if hasFT {
		return true
	}
	if !named && parentName == "" {
		return len(kids.widgets) > 0
	}
	return named && len(kids.named) == 0
}

// collectKids sorts the children of a node into widgets and named fields.
// Unnamed children are widgets of the owner; an unnamed child with its own
// Kids is transparent and its children are sorted the same way.
func (x *extractor) collectKids(dict types.Dict, owner nodeID, acc *kidSet) *formerrors.FormError {
	obj, found := dict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := graph.Array(x.g, obj)
	if err != nil {
		return formerrors.Wrap(formerrors.KindStructural, "Kids is not an array", err)
	}

	for _, kidObj := range kids {
		id, hasID := graph.Identity(kidObj)
		if hasID && x.onPath[id] {
			return cycleError(id)
		}
		kd, err := graph.Dict(x.g, kidObj)
		if err != nil || kd == nil {
			x.diags.Add(formerrors.New(formerrors.KindStructural, "child node is missing or not a dictionary; skipped").
				WithObject(id.ObjectNumber))
			continue
		}
		if !acc.seenKid {
			acc.seenKid = true
			acc.firstFT, _ = x.typeTag(kd)
		}
		if _, named := x.localName(kd); named {
			acc.named = append(acc.named, namedKid{obj: kidObj, parent: owner})
			continue
		}

		kid := x.arena.add(kd, id, hasID, owner)
		if _, nested := kd.Find("Kids"); nested {
			if hasID {
				x.onPath[id] = true
			}
			ferr := x.collectKids(kd, kid, acc)
			if hasID {
				delete(x.onPath, id)
			}
			if ferr != nil {
				return ferr
			}
			if !isWidget(x.g, kd) {
				continue
			}
		}
		acc.widgets = append(acc.widgets, kid)
	}
	return nil
}

// newField builds the record for a terminal node
func (x *extractor) newField(nid nodeID, name string, ft FieldType, widgets []nodeID) *Field {
	n := x.arena.get(nid)
	f := &Field{
		Name:  name,
		Type:  ft,
		Index: x.index,
		node:  nid,
		dict:  n.dict,
	}
	x.index++

	if tu, ok := n.dict.Find("TU"); ok {
		f.Tooltip, _ = graph.Text(x.g, tu)
	}
	if ff, ok := n.dict.Find("Ff"); ok {
		f.Flags, _ = graph.Int(x.g, ff)
	}
	if v, ok := n.dict.Find("V"); ok {
		f.raw = readValue(x.g, v)
	}
	f.Value = Decode(ft, f.raw)
	f.HasValue = !f.raw.IsAbsent()
	if dv, ok := n.dict.Find("DV"); ok {
		f.Default = Decode(ft, readValue(x.g, dv))
	}

	for _, wid := range widgets {
		wn := x.arena.get(wid)
		w := Widget{Ref: wn.id, HasRef: wn.hasID, node: wid, dict: wn.dict}
		if r, ok := readRect(x.g, wn.dict); ok {
			w.Rect = &r
		}
		f.Widgets = append(f.Widgets, w)
	}
	if len(f.Widgets) > 0 {
		f.Rect = f.Widgets[0].Rect
		f.Caption = x.caption(f.Widgets[0].dict)
	}

	if ft == TypeToggle {
		f.Button = buttonKind(f.Flags)
		f.States = x.onStates(f.Widgets)
		f.OnState = onState(f.States)
	}

	if x.debug {
		log.Printf("extracted field: %s (type: %s, widgets: %d)", f.Name, f.Type, len(f.Widgets))
	}
	return f
}

// onStates lists the declared on tokens across all widgets, in order
func (x *extractor) onStates(widgets []Widget) []string {
	var states []string
	seen := make(map[string]bool)
	for _, w := range widgets {
		for _, st := range x.widgetStates(w.dict) {
			if !seen[st] {
				seen[st] = true
				states = append(states, st)
			}
		}
	}
	return states
}

// widgetStates returns the non-Off appearance state names of a widget
func (x *extractor) widgetStates(dict types.Dict) []string {
	return appearanceStates(x.g, dict)
}

func appearanceStates(g graph.Graph, dict types.Dict) []string {
	apObj, ok := dict.Find("AP")
	if !ok {
		return nil
	}
	ap, err := graph.Dict(g, apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, ok := ap.Find("N")
	if !ok {
		return nil
	}
	normal, err := graph.Dict(g, nObj)
	if err != nil || normal == nil {
		return nil
	}
	var states []string
	for _, key := range sortedKeys(normal) {
		if key != OffState {
			states = append(states, key)
		}
	}
	return states
}

func (x *extractor) caption(dict types.Dict) string {
	mkObj, ok := dict.Find("MK")
	if !ok {
		return ""
	}
	mk, err := graph.Dict(x.g, mkObj)
	if err != nil || mk == nil {
		return ""
	}
	if ca, ok := mk.Find("CA"); ok {
		s, _ := graph.Text(x.g, ca)
		return s
	}
	return ""
}

func (x *extractor) localName(dict types.Dict) (string, bool) {
	obj, ok := dict.Find("T")
	if !ok {
		return "", false
	}
	s, ok := graph.Text(x.g, obj)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (x *extractor) typeTag(dict types.Dict) (string, bool) {
	obj, ok := dict.Find("FT")
	if !ok {
		return "", false
	}
	return graph.Name(x.g, obj)
}

// resolveType applies the inheritance order: own tag, first child's tag,
// nearest ancestor's tag.
func resolveType(own, firstKid, inherited string) FieldType {
	switch {
	case own != "":
		return typeFromTag(own)
	case firstKid != "":
		return typeFromTag(firstKid)
	case inherited != "":
		return typeFromTag(inherited)
	}
	return TypeUnknown
}

func buttonKind(flags int) ButtonKind {
	switch {
	case flags&(1<<bitPushButton) != 0:
		return ButtonPush
	case flags&(1<<bitRadio) != 0:
		return ButtonRadio
	default:
		return ButtonCheckbox
	}
}

func isWidget(g graph.Graph, dict types.Dict) bool {
	if st, ok := dict.Find("Subtype"); ok {
		if name, ok := graph.Name(g, st); ok {
			return name == "Widget"
		}
	}
	_, hasRect := dict.Find("Rect")
	return hasRect
}

func readRect(g graph.Graph, dict types.Dict) (Rect, bool) {
	obj, ok := dict.Find("Rect")
	if !ok {
		return Rect{}, false
	}
	arr, err := graph.Array(g, obj)
	if err != nil || len(arr) != 4 {
		return Rect{}, false
	}
	var coords [4]float64
	for i, c := range arr {
		f, ok := graph.Number(g, c)
		if !ok {
			return Rect{}, false
		}
		coords[i] = f
	}
	return Rect{LLX: coords[0], LLY: coords[1], URX: coords[2], URY: coords[3]}, true
}

func sortedKeys(d types.Dict) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinName(parent, local string) string {
	if parent == "" {
		return local
	}
	return parent + "." + local
}

func cycleError(id graph.ID) *formerrors.FormError {
	return formerrors.Newf(formerrors.KindStructural, "field tree revisits ancestor %s", id).
		WithObject(id.ObjectNumber)
}
