package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jyothri/ipodphotos/photodb"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print a table of the images in a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			database, err := photodb.Decode(buf)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			printStats(cmd.OutOrStdout(), database, limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most this many images (0 = all)")
	return cmd
}

func printStats(out io.Writer, database *photodb.Database, limit int) {
	fmt.Fprintln(out, "#################   STATS   #################")
	for idx, img := range database.Images {
		if limit > 0 && idx >= limit {
			break
		}
		date := "-"
		if t, err := img.OriginalDate(); err == nil {
			date = t.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "id: %8v fileName: %-45.45v Size: %12v OriginalDate: %20v Thumbnails: %v\n",
			img.ID(), img.Filename(), img.FileSizeHumanReadable(), date, len(img.Thumbnails()))
	}
	for _, album := range database.Albums {
		fmt.Fprintf(out, "album: %8v name: %-30.30v Images: %v\n", album.ID, album.Name, len(album.ImageIDs))
	}
	fmt.Fprintf(out, "Collection size:%d images, %d albums, %d thumbnail files\n",
		len(database.Images), len(database.Albums), len(database.Files))
}
