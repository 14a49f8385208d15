package avro

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Primitives(t *testing.T) {
	for name, want := range primitives {
		t.Run(name, func(t *testing.T) {
			s, err := Parse(`"` + name + `"`)
			require.NoError(t, err)
			assert.Equal(t, want, s.Type)

			s, err = Parse(`{"type": "` + name + `"}`)
			require.NoError(t, err)
			assert.Equal(t, want, s.Type)
		})
	}
}

func TestParse_LogicalTypeIgnored(t *testing.T) {
	s, err := Parse(`{"type": "long", "logicalType": "timestamp-millis"}`)
	require.NoError(t, err)
	assert.Equal(t, Long, s.Type)
}

func TestParse_AnonymousRecord(t *testing.T) {
	s, err := Parse(`{"type":"record","fields":[{"name":"name","type":"string"},{"name":"age","type":"int"}]}`)
	require.NoError(t, err)

	require.Equal(t, RecordType, s.Type)
	assert.Empty(t, s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "name", s.Fields[0].Name)
	assert.Equal(t, String, s.Fields[0].Type.Type)
	assert.Equal(t, "age", s.Fields[1].Name)
	assert.Equal(t, Int, s.Fields[1].Type.Type)
	assert.Equal(t, "record", s.String())
}

func TestParse_RecordWithDefaults(t *testing.T) {
	s, err := Parse(`{
		"type": "record",
		"name": "Event",
		"namespace": "com.example",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "kind", "type": "string", "default": "click"},
			{"name": "weight", "type": "double", "default": 1.5},
			{"name": "tag", "type": ["null", "string"], "default": null}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "com.example.Event", s.FullName())
	assert.False(t, s.Field("id").HasDefault)

	kind := s.Field("kind")
	require.NotNil(t, kind)
	assert.True(t, kind.HasDefault)
	assert.Equal(t, "click", kind.Default)

	assert.Equal(t, json.Number("1.5"), s.Field("weight").Default)

	tag := s.Field("tag")
	assert.True(t, tag.HasDefault)
	assert.Nil(t, tag.Default)
	assert.Equal(t, Union, tag.Type.Type)
	assert.Nil(t, s.Field("missing"))
}

func TestParse_ComplexTypes(t *testing.T) {
	s, err := Parse(`{
		"type": "record",
		"name": "Complex",
		"fields": [
			{"name": "tags", "type": {"type": "array", "items": "string"}},
			{"name": "attrs", "type": {"type": "map", "values": "long"}},
			{"name": "color", "type": {"type": "enum", "name": "Color", "symbols": ["RED", "GREEN"]}},
			{"name": "hash", "type": {"type": "fixed", "name": "MD5", "size": 16}},
			{"name": "wrapped", "type": {"type": {"type": "array", "items": "int"}}}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, Array, s.Field("tags").Type.Type)
	assert.Equal(t, String, s.Field("tags").Type.Items.Type)
	assert.Equal(t, Map, s.Field("attrs").Type.Type)
	assert.Equal(t, Long, s.Field("attrs").Type.Values.Type)
	assert.Equal(t, []string{"RED", "GREEN"}, s.Field("color").Type.Symbols)
	assert.Equal(t, 16, s.Field("hash").Type.Size)
	assert.Equal(t, Array, s.Field("wrapped").Type.Type)
	assert.Equal(t, Int, s.Field("wrapped").Type.Items.Type)
}

func TestParse_NamedReferences(t *testing.T) {
	s, err := Parse(`{
		"type": "record",
		"name": "Pair",
		"namespace": "com.example",
		"fields": [
			{"name": "left", "type": {"type": "fixed", "name": "Hash", "size": 4}},
			{"name": "right", "type": "Hash"},
			{"name": "full", "type": "com.example.Hash"},
			{"name": "other", "type": {"type": "enum", "name": "Side", "namespace": "org.other", "symbols": ["L", "R"]}},
			{"name": "otherRef", "type": "org.other.Side"}
		]
	}`)
	require.NoError(t, err)

	left := s.Field("left").Type
	assert.Same(t, left, s.Field("right").Type)
	assert.Same(t, left, s.Field("full").Type)
	assert.Equal(t, "com.example.Hash", left.FullName())
	assert.Same(t, s.Field("other").Type, s.Field("otherRef").Type)
	assert.Equal(t, "org.other.Side", s.Field("other").Type.String())
}

func TestParse_RecursiveRecord(t *testing.T) {
	s, err := Parse(`{
		"type": "record",
		"name": "Node",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "Node"]}
		]
	}`)
	require.NoError(t, err)

	next := s.Field("next").Type
	require.Equal(t, Union, next.Type)
	require.Len(t, next.Branches, 2)
	assert.Same(t, s, next.Branches[1])
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		schema string
		want   error
	}{
		{"invalid json", `{"type": `, ErrSyntax},
		{"trailing data", `"int" "long"`, ErrSyntax},
		{"number", `42`, ErrSyntax},
		{"missing type", `{"name": "x"}`, ErrSyntax},
		{"unknown primitive", `"integer"`, ErrUnknownType},
		{"unknown object type", `{"type": "decimal128"}`, ErrUnknownType},
		{"undeclared reference", `{"type":"record","name":"R","fields":[{"name":"a","type":"Missing"}]}`, ErrUnknownType},
		{"empty union", `[]`, ErrSyntax},
		{"nested union", `["null", ["int", "long"]]`, ErrSyntax},
		{"duplicate field", `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"a","type":"long"}]}`, ErrDuplicateField},
		{"fields not array", `{"type":"record","name":"R","fields":{}}`, ErrSyntax},
		{"field without name", `{"type":"record","name":"R","fields":[{"type":"int"}]}`, ErrSyntax},
		{"field without type", `{"type":"record","name":"R","fields":[{"name":"a"}]}`, ErrSyntax},
		{"array without items", `{"type":"array"}`, ErrSyntax},
		{"map without values", `{"type":"map"}`, ErrSyntax},
		{"enum without symbols", `{"type":"enum","name":"E"}`, ErrSyntax},
		{"enum duplicate symbol", `{"type":"enum","name":"E","symbols":["A","A"]}`, ErrSyntax},
		{"fixed without size", `{"type":"fixed","name":"F"}`, ErrSyntax},
		{"fixed negative size", `{"type":"fixed","name":"F","size":-1}`, ErrSyntax},
		{"redefined name", `["null", {"type":"fixed","name":"F","size":1}, {"type":"enum","name":"F","symbols":["A"]}]`, ErrSyntax},
		{"named after primitive", `{"type":"fixed","name":"int","size":1}`, ErrSyntax},
		{"non-string name", `{"type":"fixed","name":5,"size":1}`, ErrSyntax},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.schema)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsSchemaError(err))
		})
	}
}

func TestParse_NamesScopedToCall(t *testing.T) {
	_, err := Parse(`{"type":"fixed","name":"Shared","size":2}`)
	require.NoError(t, err)

	_, err = Parse(`{"type":"record","name":"R","fields":[{"name":"a","type":"Shared"}]}`)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "fixed", Fixed.String())
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "unknown", Type(99).String())
}
