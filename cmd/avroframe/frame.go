package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/avroframe/v1/wire"
)

func newFrameCommand() *cobra.Command {
	var schemaID uint32

	cmd := &cobra.Command{
		Use:   "frame <payload-file> | -",
		Short: "Wrap a raw Avro payload in a frame header",
		Long: `Frame prefixes an Avro binary payload with the configured magic byte and
schema id and writes the result to standard output. Together with decode it
lets you test a registry setup without a Kafka topic:

	avroframe frame --schema-id 7 person.avro > person.frame
	avroframe decode --registry-url http://registry/schemas/ids/ person.frame`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(newViper(), cmd)
			if err != nil {
				return err
			}
			payload, err := readFrame(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeFrame(cmd.OutOrStdout(), s, schemaID, payload)
		},
	}
	cmd.Flags().Uint32Var(&schemaID, "schema-id", 0, "schema id to put in the header")
	return cmd
}

func writeFrame(w io.Writer, s settings, schemaID uint32, payload []byte) error {
	width := wire.ClampWidth(s.Decoder.SchemaIDWidth)
	if width < wire.MaxSchemaIDWidth && schemaID>>(8*width) != 0 {
		return fmt.Errorf("schema id %d does not fit in %d bytes", schemaID, width)
	}
	_, err := w.Write(wire.Encode(s.Decoder.MagicByte, schemaID, width, payload))
	return err
}
