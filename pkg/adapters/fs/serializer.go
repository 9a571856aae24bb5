package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/daxaroodles/ttnexus/pkg/core"
	"gopkg.in/yaml.v3"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads from r and returns the decoded document.
	Parse(r io.Reader) (core.Value, error)
	// Serialize converts the document to bytes.
	Serialize(v core.Value) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers.
func DefaultSerializers(sortKeys bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(sortKeys),
		".yml":  NewYAMLSerializer(sortKeys),
	}
}

// JSONIndent is the fixed indentation of the intermediate artifact.
const JSONIndent = "    "

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON documents.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	v, err := decodeJSON(decoder)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("invalid json: unexpected data after top-level value")
	}
	return v, nil
}

// decodeJSON walks the token stream so that object key order is kept.
func decodeJSON(dec *json.Decoder) (core.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := core.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []any{}
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		if !strings.ContainsAny(t.String(), ".eE") {
			if b, ok := new(big.Int).SetString(t.String(), 10); ok {
				return b, nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", t, err)
		}
		return f, nil
	case string, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func (s *JSONSerializer) Serialize(v core.Value) ([]byte, error) {
	var compact bytes.Buffer
	if err := encodeJSON(&compact, v); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", JSONIndent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v core.Value) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case *big.Int:
		buf.WriteString(val.String())
	case float64:
		s, err := formatFloat(val)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case string:
		return encodeJSONString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *core.Map:
		buf.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			item, _ := val.Get(k)
			if err := encodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func encodeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// formatFloat renders f so that it reads back as a float, never as an int.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("unsupported float value %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML documents in block style.
type YAMLSerializer struct {
	// SortKeys emits mapping keys in lexical order instead of insertion order.
	SortKeys bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(sortKeys bool) *YAMLSerializer {
	return &YAMLSerializer{SortKeys: sortKeys}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	// Empty input decodes to a zero node.
	if root.Kind == 0 {
		return nil, nil
	}
	v, err := nodeToValue(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return v, nil
}

// maxDecodedNodes caps how many nodes alias expansion may produce.
const maxDecodedNodes = 1 << 20

// nodeDecoder converts a yaml.Node tree into a core.Value, expanding
// aliases. Anchors whose value refers back to themselves are rejected.
type nodeDecoder struct {
	active map[*yaml.Node]bool
	nodes  int
}

func nodeToValue(n *yaml.Node) (core.Value, error) {
	d := &nodeDecoder{active: make(map[*yaml.Node]bool)}
	return d.decode(n)
}

func (d *nodeDecoder) decode(n *yaml.Node) (core.Value, error) {
	d.nodes++
	if d.nodes > maxDecodedNodes {
		return nil, fmt.Errorf("line %d: document expands to more than %d nodes", n.Line, maxDecodedNodes)
	}
	if n.Anchor != "" {
		if d.active[n] {
			return nil, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Anchor)
		}
		d.active[n] = true
		defer delete(d.active, n)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
		}
		return d.decode(n.Alias)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.decode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		m := core.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
				keyNode = keyNode.Alias
			}
			if keyNode.ShortTag() == "!!merge" {
				if err := d.mergeInto(m, valNode); err != nil {
					return nil, err
				}
				continue
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			v, err := d.decode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return m, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
	}
}

// mergeInto applies a "<<" merge key: entries already present win.
func (d *nodeDecoder) mergeInto(m *core.Map, src *yaml.Node) error {
	if src.Kind == yaml.AliasNode && src.Alias != nil {
		src = src.Alias
	}
	sources := []*yaml.Node{src}
	if src.Kind == yaml.SequenceNode {
		sources = src.Content
	}
	for _, s := range sources {
		v, err := d.decode(s)
		if err != nil {
			return err
		}
		merged, ok := v.(*core.Map)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", s.Line)
		}
		for _, k := range merged.Keys() {
			if _, exists := m.Get(k); !exists {
				item, _ := merged.Get(k)
				m.Set(k, item)
			}
		}
	}
	return nil
}

func scalarValue(n *yaml.Node) (core.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(strings.TrimPrefix(n.Value, "+"), 0); ok {
			return b, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!float":
		// The resolver tags integer literals beyond uint64 as floats.
		if n.Style&yaml.TaggedStyle == 0 && isDecimalInteger(n.Value) {
			if b, ok := new(big.Int).SetString(strings.TrimPrefix(n.Value, "+"), 0); ok {
				return b, nil
			}
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return n.Value, nil
	}
}

// isDecimalInteger reports whether text is an optionally signed run of
// decimal digits, allowing "_" separators.
func isDecimalInteger(text string) bool {
	text = strings.TrimLeft(text, "+-")
	if text == "" {
		return false
	}
	for _, r := range text {
		if (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func (s *YAMLSerializer) Serialize(v core.Value) ([]byte, error) {
	node, err := s.valueToNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *YAMLSerializer) valueToNode(v core.Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}, nil
	case *big.Int:
		// Untagged so the encoder does not print "!!int" for literals the
		// resolver would read as floats. Parse maps them back to *big.Int.
		return &yaml.Node{Kind: yaml.ScalarNode, Value: val.String()}, nil
	case float64:
		text, err := formatFloat(val)
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}, nil
	case string:
		return stringNode(val)
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := s.valueToNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case *core.Map:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := val.Keys()
		if s.SortKeys {
			sort.Strings(keys)
		}
		for _, k := range keys {
			keyNode, err := stringNode(k)
			if err != nil {
				return nil, err
			}
			item, _ := val.Get(k)
			child, err := s.valueToNode(item)
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, keyNode, child)
		}
		return mapping, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// stringNode lets the encoder pick the quoting style, so strings such as
// "1.0" or "true" are quoted and stay strings.
func stringNode(str string) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(str); err != nil {
		return nil, err
	}
	return &n, nil
}
