package dataio

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template metadata lines. They are stripped again by Parse.
var templateNotes = []Entry{
	{Name: "_instructions", Value: "Fill in the values below. Lines starting with _ or // are ignored."},
	{Name: "_note", Value: "Checkboxes: use Yes/On/true for checked, Off/No/false for unchecked"},
	{Name: "_dates", Value: "Use YYYYMMDD format for dates (e.g., 19850615)"},
}

// TemplateField is one fillable entry of a template
type TemplateField struct {
	Name        string
	Value       string
	Description string
	Type        string
}

func (f TemplateField) comment() string {
	if f.Description == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", f.Description, f.Type)
}

// MarshalTemplate renders a fill template. Each field gets its current
// value; its description and type travel as a sibling metadata key in JSON
// and as a comment in YAML. Fields whose names start with a different
// character than their predecessor are separated by a blank line.
func MarshalTemplate(fields []TemplateField, format Format) ([]byte, error) {
	if format == FormatYAML {
		return marshalYAMLTemplate(fields)
	}

	var (
		items      []string
		breakAfter = make(map[int]bool)
	)
	add := func(key, value string) error {
		var line bytes.Buffer
		if err := writePair(&line, key, value); err != nil {
			return err
		}
		items = append(items, line.String())
		return nil
	}

	for _, n := range templateNotes {
		if err := add(n.Name, n.Value); err != nil {
			return nil, err
		}
	}
	breakAfter[len(items)-1] = true

	for i, f := range fields {
		if c := f.comment(); c != "" {
			if err := add("// "+f.Name, c); err != nil {
				return nil, err
			}
		}
		if err := add(f.Name, f.Value); err != nil {
			return nil, err
		}
		if i < len(fields)-1 && sectionBreak(f.Name, fields[i+1].Name) {
			breakAfter[len(items)-1] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, item := range items {
		buf.WriteString("  ")
		buf.WriteString(item)
		if i < len(items)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
		if breakAfter[i] && i < len(items)-1 {
			buf.WriteString("\n")
		}
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshalYAMLTemplate(fields []TemplateField) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range templateNotes {
		root.Content = append(root.Content, scalar(n.Name), scalar(n.Value))
	}
	for _, f := range fields {
		key := scalar(f.Name)
		if c := f.comment(); c != "" {
			key.HeadComment = "# " + c
		}
		root.Content = append(root.Content, key, scalar(f.Value))
	}
	return encodeYAML(root)
}

func sectionBreak(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a[0] != b[0]
}

// FilterSections keeps the fields whose names start with one of prefixes.
// No prefixes keeps everything.
func FilterSections(fields []TemplateField, prefixes []string) []TemplateField {
	if len(prefixes) == 0 {
		return fields
	}
	var out []TemplateField
	for _, f := range fields {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(f.Name, p) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
