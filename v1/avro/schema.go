package avro

// Type identifies the kind of an Avro schema node.
type Type int

const (
	Null Type = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	RecordType
	Enum
	Array
	Map
	Union
	Fixed
)

var typeNames = [...]string{
	Null:       "null",
	Boolean:    "boolean",
	Int:        "int",
	Long:       "long",
	Float:      "float",
	Double:     "double",
	Bytes:      "bytes",
	String:     "string",
	RecordType: "record",
	Enum:       "enum",
	Array:      "array",
	Map:        "map",
	Union:      "union",
	Fixed:      "fixed",
}

// primitives maps primitive type names to their Type.
var primitives = map[string]Type{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

// String returns the Avro name of the type.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Schema is a node of a parsed Avro schema tree. Only the attributes relevant
// to Type are set. Schemas are immutable after Parse returns and may be shared
// between goroutines.
//
// Recursive schemas form cycles: a record field may point back at the record.
type Schema struct {
	Type Type

	// Name and Namespace are set for named types (RecordType, Enum, Fixed).
	Name      string
	Namespace string

	// Fields of a RecordType, in declaration order.
	Fields []*Field

	// Symbols of an Enum, in declaration order.
	Symbols []string

	// Size of a Fixed in bytes.
	Size int

	// Items is the element schema of an Array.
	Items *Schema

	// Values is the value schema of a Map.
	Values *Schema

	// Branches of a Union, in declaration order.
	Branches []*Schema
}

// Field is a single record field.
type Field struct {
	Name string
	Type *Schema

	// Default holds the JSON default value when HasDefault is true. Numbers
	// are kept as json.Number.
	Default    any
	HasDefault bool
}

// FullName returns the namespace-qualified name of a named type, or the empty
// string for unnamed types.
func (s *Schema) FullName() string {
	if s.Name == "" {
		return ""
	}
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// String returns the full name of named types and the type name otherwise.
func (s *Schema) String() string {
	if name := s.FullName(); name != "" {
		return name
	}
	return s.Type.String()
}

// Field returns the record field with the given name, or nil.
func (s *Schema) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
