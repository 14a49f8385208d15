package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/avroframe/v1/decoder"
	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>... | -",
		Short: "Decode framed records stored one per file",
		Long: `Decode reads each file as a single frame and prints the record as a JSON
line. Use - to read one frame from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(newViper(), cmd)
			if err != nil {
				return err
			}

			log := logger.NewLoggerClient(s.Logger)
			defer func() { _ = log.Zap.Sync() }()

			dec, err := newFileDecoder(s, log)
			if err != nil {
				return err
			}
			return decodeFiles(cmd.Context(), dec, args, cmd.InOrStdin(), newRecordWriter(cmd.OutOrStdout()))
		},
	}
}

func newFileDecoder(s settings, log *logger.LoggerClient) (*decoder.Decoder, error) {
	client, err := schema_registry.NewClient(s.Registry)
	if err != nil {
		return nil, err
	}
	cache := schema_registry.NewCache(client).WithLogger(log)
	return decoder.NewDecoder(s.Decoder, cache, log), nil
}

// decodeFiles decodes every named frame. Rejected frames are skipped and
// reported together once all files have been tried.
func decodeFiles(ctx context.Context, dec *decoder.Decoder, paths []string, stdin io.Reader, out *recordWriter) error {
	var failed []error
	for _, path := range paths {
		buf, err := readFrame(path, stdin)
		if err != nil {
			return err
		}

		rec, err := dec.Decode(ctx, buf)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if err := out.Write(rec); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d frames rejected: %w", len(failed), len(paths), errors.Join(failed...))
	}
	return nil
}

func readFrame(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return buf, nil
}
