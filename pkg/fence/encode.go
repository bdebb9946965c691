// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigJSON encodes a fence body as the JSON document embedded in the
// rendered div's data-config attribute.
//
// The output is compatible with Python's json.dumps(..., ensure_ascii=False)
// applied to the decoded YAML, which the original site tooling used: keys
// keep their document order, items are separated by ", " and keys by ": ",
// and non-ASCII text is passed through unescaped. An empty or null body
// encodes as "{}".
func ConfigJSON(body []byte) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("parse fence body: %w", err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return "{}", nil
	}

	var sb strings.Builder
	if err := encodeNode(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// IsMappingBody reports whether the body decodes to a YAML mapping, or to
// nothing at all (which renders as an empty config). Renderers embed only
// mapping configs; anything else gets the invalid-configuration fallback.
func IsMappingBody(body []byte) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return false
	}
	root := documentRoot(&doc)
	return root == nil || root.Kind == yaml.MappingNode
}

// TitleFor returns the display title for a fence body following the
// fallback chain: a top-level "title" value, then "question", then the
// humanized type name. Unparseable bodies fall back to the type name.
func TitleFor(t Type, body []byte) string {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return t.Humanize()
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return t.Humanize()
	}

	for _, key := range []string{"title", "question"} {
		if v := mappingValue(root, key); v != nil {
			return scalarDisplay(v)
		}
	}
	return t.Humanize()
}

// documentRoot unwraps the document node and resolves a null or absent
// body (both mean "empty config") to nil.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	for root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	return root
}

// mappingValue returns the value node for a scalar key of a mapping, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// scalarDisplay renders a node the way Python string interpolation would:
// strings verbatim, booleans as True/False, null as None, numbers in their
// canonical decimal form. Non-scalars fall back to the raw YAML value.
func scalarDisplay(n *yaml.Node) string {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return n.Value
	}
	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			if b {
				return "True"
			}
			return "False"
		}
	case "!!null":
		return "None"
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return strconv.FormatInt(i, 10)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return formatFloat(f)
		}
	}
	return n.Value
}

// encodeNode writes the JSON encoding of a YAML node.
func encodeNode(sb *strings.Builder, n *yaml.Node) error {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.MappingNode:
		return encodeMapping(sb, n)
	case yaml.SequenceNode:
		sb.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := encodeNode(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return encodeScalar(sb, n)
	default:
		return fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

// encodeMapping writes a JSON object. Duplicate keys follow dict
// assignment semantics: the first occurrence fixes the position, the last
// occurrence supplies the value.
func encodeMapping(sb *strings.Builder, m *yaml.Node) error {
	type entry struct {
		key   string
		value *yaml.Node
	}

	var (
		order []entry
		index = make(map[string]int)
	)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		for k.Kind == yaml.AliasNode {
			k = k.Alias
		}
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: non-scalar mapping key", k.Line)
		}
		if at, dup := index[k.Value]; dup {
			order[at].value = v
			continue
		}
		index[k.Value] = len(order)
		order = append(order, entry{key: k.Value, value: v})
	}

	sb.WriteByte('{')
	for i, e := range order {
		if i > 0 {
			sb.WriteString(", ")
		}
		encodeString(sb, e.key)
		sb.WriteString(": ")
		if err := encodeNode(sb, e.value); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

// encodeScalar writes a JSON value for a YAML scalar based on its resolved
// tag. Unrecognized tags (timestamps, binary) are emitted as strings.
func encodeScalar(sb *strings.Builder, n *yaml.Node) error {
	switch n.Tag {
	case "!!null":
		sb.WriteString("null")
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		if b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
		return nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out-of-range integers keep their literal digits.
			sb.WriteString(n.Value)
			return nil
		}
		sb.WriteString(strconv.FormatInt(i, 10))
		return nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		sb.WriteString(formatFloat(f))
		return nil
	default:
		encodeString(sb, n.Value)
		return nil
	}
}

// encodeString writes a JSON string with the original tooling's escaping:
// backslash, double quote, and control characters are escaped; everything
// else — including non-ASCII — passes through as UTF-8.
func encodeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}

// formatFloat renders a float the way Python's repr does for the common
// cases: shortest round-trip form, with ".0" appended to integral values
// and the non-standard Infinity/NaN spellings for the specials.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
