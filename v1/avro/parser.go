package avro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Parse parses an Avro schema document.
//
// Parameters:
//   - text: The JSON schema definition
//
// Returns:
//   - *Schema: The root of the parsed schema tree
//   - error: ErrSyntax, ErrUnknownType or ErrDuplicateField, wrapped with the
//     location of the problem
//
// Named types must be declared before they are referenced by name, except
// that a record may reference itself from within its own fields. Names are
// scoped to this call.
//
// Records, enums and fixed types without a name are accepted and simply
// cannot be referenced. Registries in the wild serve such schemas, and
// nothing in the binary encoding depends on the name.
//
// Example:
//
//	schema, err := avro.Parse(`{"type":"array","items":"long"}`)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(schema.Items) // long
func Parse(text string) (*Schema, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes is like Parse but takes the document as bytes.
func ParseBytes(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after schema", ErrSyntax)
	}

	p := &parser{names: make(map[string]*Schema)}
	return p.parse(raw, "")
}

// parser holds the named-type symbol table for one document.
type parser struct {
	names map[string]*Schema
}

func (p *parser) parse(raw any, namespace string) (*Schema, error) {
	switch v := raw.(type) {
	case string:
		return p.reference(v, namespace)
	case []any:
		return p.parseUnion(v, namespace)
	case map[string]any:
		return p.parseObject(v, namespace)
	default:
		return nil, fmt.Errorf("%w: unexpected %T where a schema was expected", ErrSyntax, raw)
	}
}

// reference resolves a primitive or previously declared named type.
func (p *parser) reference(name, namespace string) (*Schema, error) {
	if t, ok := primitives[name]; ok {
		return &Schema{Type: t}, nil
	}
	if s := p.lookup(name, namespace); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func (p *parser) lookup(name, namespace string) *Schema {
	if !strings.Contains(name, ".") && namespace != "" {
		if s, ok := p.names[namespace+"."+name]; ok {
			return s
		}
	}
	return p.names[name]
}

func (p *parser) parseUnion(branches []any, namespace string) (*Schema, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: union has no branches", ErrSyntax)
	}

	s := &Schema{Type: Union, Branches: make([]*Schema, 0, len(branches))}
	for i, b := range branches {
		branch, err := p.parse(b, namespace)
		if err != nil {
			return nil, fmt.Errorf("union branch %d: %w", i, err)
		}
		if branch.Type == Union {
			return nil, fmt.Errorf("%w: union branch %d is itself a union", ErrSyntax, i)
		}
		s.Branches = append(s.Branches, branch)
	}
	return s, nil
}

func (p *parser) parseObject(obj map[string]any, namespace string) (*Schema, error) {
	rawType, ok := obj["type"]
	if !ok {
		return nil, fmt.Errorf("%w: object without \"type\" attribute", ErrSyntax)
	}

	typeName, ok := rawType.(string)
	if !ok {
		// {"type": {"type": "array", ...}} and {"type": [...]} wrap another schema.
		return p.parse(rawType, namespace)
	}

	switch typeName {
	case "record", "error":
		return p.parseRecord(obj, namespace)
	case "enum":
		return p.parseEnum(obj, namespace)
	case "fixed":
		return p.parseFixed(obj, namespace)
	case "array":
		items, ok := obj["items"]
		if !ok {
			return nil, fmt.Errorf("%w: array without \"items\"", ErrSyntax)
		}
		s, err := p.parse(items, namespace)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		return &Schema{Type: Array, Items: s}, nil
	case "map":
		values, ok := obj["values"]
		if !ok {
			return nil, fmt.Errorf("%w: map without \"values\"", ErrSyntax)
		}
		s, err := p.parse(values, namespace)
		if err != nil {
			return nil, fmt.Errorf("map values: %w", err)
		}
		return &Schema{Type: Map, Values: s}, nil
	default:
		// Primitives may carry extra attributes such as logicalType; they do
		// not change the binary encoding.
		return p.reference(typeName, namespace)
	}
}

// declare fills in the name of a named type and registers it.
func (p *parser) declare(s *Schema, obj map[string]any, namespace string) error {
	rawName, ok := obj["name"]
	if !ok {
		s.Namespace = namespace
		return nil
	}
	name, ok := rawName.(string)
	if !ok || name == "" {
		return fmt.Errorf("%w: %s name must be a non-empty string", ErrSyntax, s.Type)
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		s.Namespace, s.Name = name[:i], name[i+1:]
	} else {
		s.Name = name
		s.Namespace = namespace
		if rawNS, ok := obj["namespace"]; ok {
			ns, ok := rawNS.(string)
			if !ok {
				return fmt.Errorf("%w: %s %q namespace must be a string", ErrSyntax, s.Type, name)
			}
			s.Namespace = ns
		}
	}

	if _, ok := primitives[s.Name]; ok && s.Namespace == "" {
		return fmt.Errorf("%w: %s may not be named after primitive %q", ErrSyntax, s.Type, s.Name)
	}

	fullName := s.FullName()
	if _, exists := p.names[fullName]; exists {
		return fmt.Errorf("%w: %q is already defined", ErrSyntax, fullName)
	}
	p.names[fullName] = s
	return nil
}

func (p *parser) parseRecord(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: RecordType}
	if err := p.declare(s, obj, namespace); err != nil {
		return nil, err
	}

	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: record %s: \"fields\" must be an array", ErrSyntax, s)
	}

	seen := make(map[string]struct{}, len(rawFields))
	s.Fields = make([]*Field, 0, len(rawFields))
	for i, rf := range rawFields {
		fobj, ok := rf.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %s: field %d is not an object", ErrSyntax, s, i)
		}
		name, ok := fobj["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: record %s: field %d has no name", ErrSyntax, s, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: record %s: %q", ErrDuplicateField, s, name)
		}
		seen[name] = struct{}{}

		rawType, ok := fobj["type"]
		if !ok {
			return nil, fmt.Errorf("%w: record %s: field %q has no type", ErrSyntax, s, name)
		}
		ft, err := p.parse(rawType, s.Namespace)
		if err != nil {
			return nil, fmt.Errorf("record %s: field %q: %w", s, name, err)
		}

		field := &Field{Name: name, Type: ft}
		if def, ok := fobj["default"]; ok {
			field.Default = def
			field.HasDefault = true
		}
		s.Fields = append(s.Fields, field)
	}
	return s, nil
}

func (p *parser) parseEnum(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: Enum}
	if err := p.declare(s, obj, namespace); err != nil {
		return nil, err
	}

	rawSymbols, ok := obj["symbols"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: enum %s: \"symbols\" must be an array", ErrSyntax, s)
	}

	seen := make(map[string]struct{}, len(rawSymbols))
	s.Symbols = make([]string, 0, len(rawSymbols))
	for i, rs := range rawSymbols {
		sym, ok := rs.(string)
		if !ok {
			return nil, fmt.Errorf("%w: enum %s: symbol %d is not a string", ErrSyntax, s, i)
		}
		if _, dup := seen[sym]; dup {
			return nil, fmt.Errorf("%w: enum %s: duplicate symbol %q", ErrSyntax, s, sym)
		}
		seen[sym] = struct{}{}
		s.Symbols = append(s.Symbols, sym)
	}
	return s, nil
}

func (p *parser) parseFixed(obj map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: Fixed}
	if err := p.declare(s, obj, namespace); err != nil {
		return nil, err
	}

	num, ok := obj["size"].(json.Number)
	if !ok {
		return nil, fmt.Errorf("%w: fixed %s: \"size\" must be a number", ErrSyntax, s)
	}
	size, err := num.Int64()
	if err != nil || size < 0 || size > maxFixedSize {
		return nil, fmt.Errorf("%w: fixed %s: invalid size %s", ErrSyntax, s, num)
	}
	s.Size = int(size)
	return s, nil
}

// maxFixedSize bounds fixed sizes so they always fit an int.
const maxFixedSize = 1<<31 - 1
