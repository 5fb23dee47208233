package acroform

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

// FieldType is the resolved type of a form field
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeText
	TypeToggle
	TypeChoice
	TypeSignature
)

// String returns the lowercase type tag used in exchange formats
func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeToggle:
		return "toggle"
	case TypeChoice:
		return "choice"
	case TypeSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *FieldType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "text":
		*t = TypeText
	case "toggle", "checkbox":
		*t = TypeToggle
	case "choice":
		*t = TypeChoice
	case "signature":
		*t = TypeSignature
	case "unknown", "":
		*t = TypeUnknown
	default:
		return fmt.Errorf("unknown field type %q", string(b))
	}
	return nil
}

// typeFromTag maps an /FT name to a FieldType
func typeFromTag(ft string) FieldType {
	switch ft {
	case "Tx":
		return TypeText
	case "Btn":
		return TypeToggle
	case "Ch":
		return TypeChoice
	case "Sig":
		return TypeSignature
	default:
		return TypeUnknown
	}
}

// ButtonKind distinguishes the /Btn variants
type ButtonKind int

const (
	ButtonNone ButtonKind = iota
	ButtonCheckbox
	ButtonRadio
	ButtonPush
)

// String returns the button kind name
func (k ButtonKind) String() string {
	switch k {
	case ButtonCheckbox:
		return "checkbox"
	case ButtonRadio:
		return "radio"
	case ButtonPush:
		return "pushbutton"
	default:
		return ""
	}
}

// Field flag bits (Ff)
const (
	BitReadOnly uint = 0
	BitHidden   uint = 1

	bitRadio      uint = 15
	bitPushButton uint = 16
)

// annotation flag Hidden (F)
const annotHidden = 1 << 1

// Rect is a widget rectangle in default user space
type Rect struct {
	LLX float64 `json:"llx"`
	LLY float64 `json:"lly"`
	URX float64 `json:"urx"`
	URY float64 `json:"ury"`
}

// Top returns the upper edge
func (r Rect) Top() float64 {
	if r.URY > r.LLY {
		return r.URY
	}
	return r.LLY
}

// Left returns the left edge
func (r Rect) Left() float64 {
	if r.LLX < r.URX {
		return r.LLX
	}
	return r.URX
}

// Widget is one visual instance of a field
type Widget struct {
	Ref    graph.ID `json:"ref"`
	HasRef bool     `json:"-"`
	Rect   *Rect    `json:"rect,omitempty"`

	node nodeID
	dict types.Dict
}

// Dict returns the live widget dictionary
func (w Widget) Dict() types.Dict {
	return w.dict
}

// Field is a resolved, addressable view over one logical form field.
// Mutations go through Form and update both the document and this record.
type Field struct {
	Name      string     `json:"name"`
	Type      FieldType  `json:"type"`
	Button    ButtonKind `json:"-"`
	Value     string     `json:"value"`
	HasValue  bool       `json:"has_value"`
	Default   string     `json:"default,omitempty"`
	Tooltip   string     `json:"tooltip,omitempty"`
	Caption   string     `json:"caption,omitempty"`
	Flags     int        `json:"flags"`
	OnState   string     `json:"on_state,omitempty"`
	States    []string   `json:"states,omitempty"`
	Rect      *Rect      `json:"rect,omitempty"`
	Widgets   []Widget   `json:"widgets"`
	Duplicate bool       `json:"duplicate,omitempty"`
	Index     int        `json:"index"`

	node      nodeID
	dict      types.Dict
	raw       Value
	page      int
	pageKnown bool
}

// ReadOnly reports bit 0 of the field flags
func (f *Field) ReadOnly() bool {
	return f.Flags&(1<<BitReadOnly) != 0
}

// Hidden reports bit 1 of the field flags
func (f *Field) Hidden() bool {
	return f.Flags&(1<<BitHidden) != 0
}

// Addressable reports whether the field can be looked up by name
func (f *Field) Addressable() bool {
	return f.Name != "" && !f.Duplicate
}

// Raw returns the tagged on-disk value
func (f *Field) Raw() Value {
	return f.raw
}

// Dict returns the live field dictionary
func (f *Field) Dict() types.Dict {
	return f.dict
}

// String returns a short description of the field
func (f *Field) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}
