// Package avro parses Avro schema documents and decodes Avro binary payloads
// into generic Go values.
//
// Only the read path is implemented: a schema is parsed once with Parse, and
// payloads written with that schema are decoded with Decode. There is no
// reader/writer schema resolution; the payload is always decoded with the
// schema it was written with.
//
// Schema Parsing:
//
//	schema, err := avro.Parse(`{
//		"type": "record",
//		"name": "User",
//		"fields": [
//			{"name": "name", "type": "string"},
//			{"name": "age", "type": "int"}
//		]
//	}`)
//
// Named types (record, error, enum, fixed) are collected in a symbol table
// that lives for a single Parse call, so a record may refer to itself or to a
// type declared earlier in the same document:
//
//	{"type": "record", "name": "Node", "fields": [
//		{"name": "value", "type": "long"},
//		{"name": "next", "type": ["null", "Node"]}
//	]}
//
// Decoded Values:
//
// Decode maps Avro types onto Go values as follows:
//
//	null            -> nil
//	boolean         -> bool
//	int             -> int32
//	long            -> int64
//	float           -> float32
//	double          -> float64
//	bytes, fixed    -> []byte (copied, never aliasing the payload)
//	string          -> string
//	enum            -> string (the symbol)
//	array           -> []any
//	map             -> map[string]any
//	record          -> avro.Record
//	union           -> the value of the selected branch
//
// Safety:
//
// Payload bytes are untrusted. Decode never reads past the end of the payload,
// rejects varints that overflow their type, refuses block counts that cannot
// be satisfied by the remaining bytes, and bounds recursion depth so that a
// schema which recurses without consuming input cannot exhaust the stack.
package avro
