package acroform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/graph"
)

const (
	// DefaultOnState is the toggle on token used when widgets declare none
	DefaultOnState = "Yes"
	// OffState is the toggle off token
	OffState = "Off"
)

// ValueKind tags the on-disk representation of a field value
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueText
	ValueSymbol
)

// Value is the tagged on-disk value of a field: text, a symbolic name, or absent
type Value struct {
	Kind ValueKind
	S    string
}

// Absent is the missing value
var Absent = Value{}

// TextValue returns a text value
func TextValue(s string) Value {
	return Value{Kind: ValueText, S: s}
}

// SymbolValue returns a symbolic name value; marker syntax is stripped
func SymbolValue(s string) Value {
	return Value{Kind: ValueSymbol, S: strings.TrimPrefix(s, "/")}
}

// IsAbsent reports whether the value is missing
func (v Value) IsAbsent() bool {
	return v.Kind == ValueAbsent
}

// String returns the PDF-like rendering of the value
func (v Value) String() string {
	switch v.Kind {
	case ValueText:
		return fmt.Sprintf("(%s)", v.S)
	case ValueSymbol:
		return "/" + v.S
	default:
		return "<absent>"
	}
}

// Object converts the value into the pdfcpu object to store
func (v Value) Object() (types.Object, error) {
	switch v.Kind {
	case ValueText:
		return graph.EncodeText(v.S)
	case ValueSymbol:
		return types.Name(v.S), nil
	default:
		return nil, nil
	}
}

// readValue converts a stored object into a Value
func readValue(g graph.Graph, obj types.Object) Value {
	if obj == nil {
		return Absent
	}
	o, err := g.Resolve(obj)
	if err != nil || o == nil {
		return Absent
	}
	switch v := o.(type) {
	case types.Name:
		return SymbolValue(v.Value())
	case types.StringLiteral, types.HexLiteral:
		s, _ := graph.Text(g, v)
		return TextValue(s)
	case types.Array:
		// multi-select choice
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := graph.Text(g, item); ok {
				parts = append(parts, s)
			}
		}
		return TextValue(strings.Join(parts, ", "))
	case types.Integer:
		return TextValue(strconv.Itoa(v.Value()))
	case types.Float:
		return TextValue(strconv.FormatFloat(v.Value(), 'f', -1, 64))
	}
	return Absent
}

// Decode returns the normalized string for a stored value. Symbolic tokens
// come back bare; an absent value decodes to the empty string.
func Decode(t FieldType, v Value) string {
	switch v.Kind {
	case ValueSymbol:
		return strings.TrimPrefix(v.S, "/")
	case ValueText:
		return v.S
	default:
		return ""
	}
}

// Encode converts caller input into the value to store for a field of type t.
// Toggle inputs map to the default on token; use EncodeToggle when the
// widgets declare their own states. Unknown types are encoded as text.
func Encode(t FieldType, input any) (Value, error) {
	switch t {
	case TypeSignature:
		return Absent, formerrors.New(formerrors.KindUnsupportedOperation, "signature fields are read-only")
	case TypeToggle:
		return EncodeToggle(input, nil), nil
	default:
		s, err := inputText(input)
		if err != nil {
			return Absent, err
		}
		return TextValue(s), nil
	}
}

// EncodeStrict is Encode without the text fallback for unknown types
func EncodeStrict(t FieldType, input any) (Value, error) {
	if t == TypeUnknown {
		return Absent, formerrors.New(formerrors.KindUnsupportedOperation, "cannot encode a value for an unknown field type")
	}
	return Encode(t, input)
}

// EncodeToggle maps input onto one of the declared on states or Off.
// An input naming a declared state selects it; truthy input selects the
// primary on state; everything else is Off.
func EncodeToggle(input any, states []string) Value {
	if s, ok := input.(string); ok {
		for _, st := range states {
			if st != OffState && strings.EqualFold(strings.TrimSpace(s), st) {
				return SymbolValue(st)
			}
		}
	}
	if truthy(input) {
		return SymbolValue(onState(states))
	}
	return SymbolValue(OffState)
}

// onState picks the primary on token from the declared states
func onState(states []string) string {
	for _, st := range states {
		if st != "" && st != OffState {
			return st
		}
	}
	return DefaultOnState
}

func truthy(input any) bool {
	switch v := input.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int32:
		return v == 1
	case int64:
		return v == 1
	case uint:
		return v == 1
	case uint64:
		return v == 1
	case float64:
		return v == 1
	case float32:
		return v == 1
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on", "1":
			return true
		}
	}
	return false
}

// inputText renders caller input as text without numeric reinterpretation
func inputText(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", formerrors.New(formerrors.KindInvalidInput, "value is null")
	}
	return "", formerrors.Newf(formerrors.KindInvalidInput, "unsupported value type %T", input)
}
