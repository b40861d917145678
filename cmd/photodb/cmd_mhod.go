package main

import (
	"fmt"
	"strconv"

	"github.com/jyothri/ipodphotos/photodb"
	"github.com/spf13/cobra"
)

func newMhodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mhod <code>",
		Short: "Print the label of a metadata object type code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid type code %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), photodb.DecodeMhodType(uint16(code)))
			return nil
		},
	}
}
