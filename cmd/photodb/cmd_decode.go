package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jyothri/ipodphotos/photodb"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var (
		output string
		ndjson bool
	)
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Write the decoded container as JSON",
		Long: `Decode a Photo Database and write it as a JSON manifest.

With --ndjson one image is written per line as soon as it is decoded, so the
images before a structural failure are still written.

Examples:
  photodb decode "/Volumes/IPOD/Photos/Photo Database" -o manifest.json
  photodb decode "Photo Database" --ndjson
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			if ndjson {
				return writeImages(out, buf)
			}
			database, err := photodb.Decode(buf)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(database); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			slog.Info("Wrote manifest", "images", len(database.Images), "albums", len(database.Albums))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&ndjson, "ndjson", false, "Write one image per line as it is decoded")
	return cmd
}

func writeImages(out io.Writer, buf []byte) error {
	enc := json.NewEncoder(out)
	count := 0
	for img, err := range photodb.Images(buf) {
		if err != nil {
			return fmt.Errorf("decode failed after %d images: %w", count, err)
		}
		if err := enc.Encode(img); err != nil {
			return fmt.Errorf("write image %d: %w", img.ID(), err)
		}
		count++
	}
	return nil
}
