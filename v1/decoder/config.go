package decoder

import "github.com/Aleph-Alpha/avroframe/v1/wire"

// Config holds the framing and assembly settings of a Decoder.
//
// Zero is a legal magic byte and a legal schema id width, so start from
// DefaultConfig rather than a zero value.
type Config struct {
	// RegistryURL is written into every record as schema_source. It should
	// match the URL the schema cache fetches from.
	RegistryURL string `yaml:"registry_url" envconfig:"DECODER_REGISTRY_URL"`

	// MagicByte is the expected first byte of every frame.
	MagicByte byte `yaml:"magic_byte" envconfig:"DECODER_MAGIC_BYTE"`

	// SchemaIDWidth is the number of little-endian schema id bytes after the
	// magic byte. Values outside 0..4 are treated as 4.
	SchemaIDWidth int `yaml:"schema_id_width" envconfig:"DECODER_SCHEMA_ID_WIDTH"`

	// DeriveUnixTime adds a millisecond "unixtime" field computed from a
	// .NET ticks "time" field when the record has none.
	DeriveUnixTime bool `yaml:"derive_unixtime" envconfig:"DECODER_DERIVE_UNIXTIME"`
}

// DefaultConfig returns the conventional framing: magic byte 0xFF followed by
// a 4-byte schema id.
func DefaultConfig() Config {
	return Config{
		MagicByte:     wire.DefaultMagicByte,
		SchemaIDWidth: wire.DefaultSchemaIDWidth,
	}
}
