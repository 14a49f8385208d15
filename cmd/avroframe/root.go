package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "avroframe",
		Short: "Decode schema-registry framed Avro records",
		Long: `avroframe decodes Avro binary records prefixed with a magic byte and a
little-endian schema id. Schemas are fetched from a registry by id and cached.

Every flag can also be set through the environment, e.g. AVROFRAME_REGISTRY_URL
for --registry-url.`,
		SilenceUsage: true,
	}

	addCommonFlags(root.PersistentFlags())
	root.AddCommand(newConsumeCommand(), newDecodeCommand(), newFrameCommand())
	return root
}
