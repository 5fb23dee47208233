package acroform

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Search returns the addressable fields whose name or tooltip contains term,
// compared under Unicode case folding. Results keep extraction order; an
// empty term matches every addressable field.
func Search(fields []*Field, term string) []*Field {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))

	var out []*Field
	for _, f := range fields {
		if !f.Addressable() {
			continue
		}
		if needle == "" ||
			strings.Contains(fold.String(f.Name), needle) ||
			strings.Contains(fold.String(f.Tooltip), needle) {
			out = append(out, f)
		}
	}
	return out
}

// SortByPosition returns a copy of fields ordered for reading: page
// ascending (unknown pages first as page 0), then fields without a
// rectangle, then top edge descending and left edge ascending. Ties keep
// extraction order.
func SortByPosition(fields []*Field, pageOf func(*Field) int) []*Field {
	out := make([]*Field, len(fields))
	copy(out, fields)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		pa, pb := pageOf(a), pageOf(b)
		if pa != pb {
			return pa < pb
		}
		if (a.Rect == nil) != (b.Rect == nil) {
			return a.Rect == nil
		}
		if a.Rect == nil {
			return false
		}
		if ta, tb := a.Rect.Top(), b.Rect.Top(); ta != tb {
			return ta > tb
		}
		return a.Rect.Left() < b.Rect.Left()
	})
	return out
}
