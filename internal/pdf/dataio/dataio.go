// Package dataio reads and writes the flat name → value documents used to
// exchange form data: value mappings for fill, exports, and annotated
// templates. JSON and YAML are supported.
package dataio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Format selects the encoding of a data document
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// ParseFormat maps a user-supplied name onto a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, formerrors.Newf(formerrors.KindInvalidInput, "unknown data format %q", s)
}

// FormatFor picks the format from a file extension, defaulting to JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Extension returns the file extension for a format
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Mapping is a flat field name → input value document
type Mapping map[string]any

// IsMetadataKey reports whether key carries template metadata rather than a
// field value
func IsMetadataKey(key string) bool {
	return strings.HasPrefix(key, "_") || strings.HasPrefix(key, "//")
}

// Strip removes metadata keys and returns the count removed
func (m Mapping) Strip() int {
	removed := 0
	for k := range m {
		if IsMetadataKey(k) {
			delete(m, k)
			removed++
		}
	}
	return removed
}

// Parse decodes a mapping. Metadata keys are stripped. With FormatAuto,
// JSON is tried first and YAML second.
func Parse(data []byte, format Format) (Mapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, formerrors.New(formerrors.KindInvalidInput, "data document is empty")
	}

	var (
		m   Mapping
		err error
	)
	switch format {
	case FormatJSON:
		m, err = parseJSON(data)
	case FormatYAML:
		m, err = parseYAML(data)
	default:
		m, err = parseJSON(data)
		if err != nil {
			m, err = parseYAML(data)
		}
	}
	if err != nil {
		return nil, err
	}
	m.Strip()
	return m, nil
}

func parseJSON(data []byte) (Mapping, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m Mapping
	if err := dec.Decode(&m); err != nil {
		return nil, formerrors.Wrap(formerrors.KindInvalidInput, "invalid JSON data", err)
	}
	if m == nil {
		return nil, formerrors.New(formerrors.KindInvalidInput, "JSON data must be an object")
	}
	return m, nil
}

// parseYAML keeps every plain scalar as its source text so that values
// such as 02134 or 1e3 reach the form unchanged. Only booleans and nulls
// are resolved; nested nodes decode as usual.
func parseYAML(data []byte) (Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, formerrors.Wrap(formerrors.KindInvalidInput, "invalid YAML data", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, formerrors.New(formerrors.KindInvalidInput, "YAML data must be a mapping")
	}

	m := make(Mapping, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.ShortTag() == "!!merge" {
			return nil, formerrors.Newf(formerrors.KindInvalidInput, "unsupported YAML key at line %d", key.Line)
		}
		v, err := yamlValue(val)
		if err != nil {
			return nil, formerrors.Wrap(formerrors.KindInvalidInput, "invalid YAML value for "+key.Value, err)
		}
		m[key.Value] = v
	}
	return m, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		var v any
		err := n.Decode(&v)
		return v, err
	}
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!null":
		return nil, nil
	}
	return n.Value, nil
}

// Load reads a mapping from a file, choosing the format by extension, or
// parses arg itself as inline JSON when it is not an existing file.
func Load(arg string) (Mapping, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, formerrors.New(formerrors.KindInvalidInput, "no data given")
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, formerrors.Wrap(formerrors.KindIOFailure, "failed to read data file", err)
		}
		return Parse(data, FormatFor(arg))
	}
	if strings.HasPrefix(arg, "{") {
		return Parse([]byte(arg), FormatJSON)
	}
	return nil, formerrors.Newf(formerrors.KindIOFailure, "data file not found: %s", arg)
}

// Entry is one exported field value
type Entry struct {
	Name  string
	Value string
}

// MarshalEntries encodes entries as a flat mapping, keeping their order
func MarshalEntries(entries []Entry, format Format) ([]byte, error) {
	if format == FormatYAML {
		root := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range entries {
			root.Content = append(root.Content, scalar(e.Name), scalar(e.Value))
		}
		return encodeYAML(root)
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		if err := writePair(&buf, e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// WriteFile writes data to path
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return formerrors.Wrap(formerrors.KindIOFailure, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

func writePair(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalJSON(key)
	if err != nil {
		return err
	}
	v, err := marshalJSON(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteString(": ")
	buf.Write(v)
	return nil
}

// marshalJSON encodes v without HTML escaping
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %v: %w", v, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func encodeYAML(root *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}
