// Command avroframe decodes framed Avro records, either from a Kafka topic or
// from files, and prints them as JSON lines.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
