package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const bytesPerRow = 16

func newReadCmd(a *app) *cobra.Command {
	var (
		address uint32
		length  uint32
	)

	cmd := &cobra.Command{
		Use:   "read <file.hex>",
		Short: "Print a range of the image as hex",
		Long: `The read command prints length bytes starting at address. Addresses
without data show the pad byte.

Example:
  ihex read firmware.hex --address 0x08000000 --length 64
  ihex read firmware.hex --address 0x100 --length 16 --pad 0x00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.loadHex(args[0])
			if err != nil {
				return err
			}
			return hexDump(cmd.OutOrStdout(), address, mem.ToBinary(address, length))
		},
	}
	cmd.Flags().Uint32VarP(&address, "address", "a", 0, "Start address")
	cmd.Flags().Uint32VarP(&length, "length", "n", bytesPerRow, "Number of bytes")
	return cmd
}

// hexDump writes rows of bytesPerRow bytes prefixed with their address
func hexDump(w io.Writer, address uint32, data []byte) error {
	for len(data) > 0 {
		n := min(bytesPerRow, len(data))
		if _, err := fmt.Fprintf(w, "%08X  % X\n", address, data[:n]); err != nil {
			return err
		}
		address += uint32(n)
		data = data[n:]
	}
	return nil
}
