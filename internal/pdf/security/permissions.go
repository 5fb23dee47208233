package security

import "strings"

// Permissions are the user access bits of an encrypted document's P entry
type Permissions struct {
	Print            bool `json:"print"`              // bit 3
	Modify           bool `json:"modify"`             // bit 4
	Copy             bool `json:"copy"`               // bit 5
	Annotate         bool `json:"annotate"`           // bit 6, also fill forms
	FillForms        bool `json:"fill_forms"`         // bit 9
	Extract          bool `json:"extract"`            // bit 10
	Assemble         bool `json:"assemble"`           // bit 11
	PrintHighQuality bool `json:"print_high_quality"` // bit 12
}

// FromP decodes a P value
func FromP(p int32) Permissions {
	return Permissions{
		Print:            p&0x04 != 0,
		Modify:           p&0x08 != 0,
		Copy:             p&0x10 != 0,
		Annotate:         p&0x20 != 0,
		FillForms:        p&0x200 != 0,
		Extract:          p&0x400 != 0,
		Assemble:         p&0x800 != 0,
		PrintHighQuality: p&0x1000 != 0,
	}
}

// Full grants everything; it describes an unencrypted document
func Full() Permissions {
	return FromP(-1)
}

// P encodes the permissions with the reserved bits set as required
func (p Permissions) P() int32 {
	perms := int32(-8192) | 0xC0 | 0x03
	for _, b := range p.bits() {
		if b.on {
			perms |= b.mask
		}
	}
	return perms
}

// CanFillForms reports whether interactive fields may be filled. Bit 6
// implies bit 9.
func (p Permissions) CanFillForms() bool {
	return p.FillForms || p.Annotate
}

// Allowed lists granted operations
func (p Permissions) Allowed() []string {
	var out []string
	for _, b := range p.bits() {
		if b.on {
			out = append(out, b.name)
		}
	}
	return out
}

// Denied lists refused operations
func (p Permissions) Denied() []string {
	var out []string
	for _, b := range p.bits() {
		if !b.on {
			out = append(out, b.name)
		}
	}
	return out
}

// String returns a short summary
func (p Permissions) String() string {
	allowed := p.Allowed()
	if len(allowed) == 0 {
		return "No permissions granted"
	}
	return "Allowed: " + strings.Join(allowed, ", ")
}

type permBit struct {
	name string
	mask int32
	on   bool
}

func (p Permissions) bits() []permBit {
	return []permBit{
		{"print", 0x04, p.Print},
		{"modify", 0x08, p.Modify},
		{"copy", 0x10, p.Copy},
		{"annotate", 0x20, p.Annotate},
		{"fill_forms", 0x200, p.FillForms},
		{"extract", 0x400, p.Extract},
		{"assemble", 0x800, p.Assemble},
		{"print_high_quality", 0x1000, p.PrintHighQuality},
	}
}
