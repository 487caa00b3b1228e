package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newHex2BinCmd(a *app) *cobra.Command {
	var (
		address uint32
		length  uint32
	)

	cmd := &cobra.Command{
		Use:   "hex2bin <in.hex> <out.bin>",
		Short: "Flatten an IntelHex file into a raw binary",
		Long: `The hex2bin command writes the image as a raw binary, filling gaps with
the pad byte. Without --address and --length the output spans from the first
to the last byte present in the file.

Example:
  ihex hex2bin firmware.hex firmware.bin
  ihex hex2bin firmware.hex boot.bin --address 0x08000000 --length 0x4000 --pad 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.loadHex(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("address") || !flags.Changed("length") {
				lo, hi, ok := mem.Bounds()
				if !ok {
					return fmt.Errorf("%s contains no data", args[0])
				}
				if !flags.Changed("address") {
					address = lo
				}
				if !flags.Changed("length") {
					end := uint64(hi)
					if end == 0 {
						end = 1 << 32
					}
					if end < uint64(address) {
						return fmt.Errorf("address 0x%08X is past the end of the data", address)
					}
					size := end - uint64(address)
					if size > 1<<32-1 {
						return fmt.Errorf("image does not fit a binary file, use --length")
					}
					length = uint32(size)
				}
			}

			data := mem.ToBinary(address, length)
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return err
			}
			a.logger.Info("written",
				slog.String("file", args[1]),
				slog.String("address", fmt.Sprintf("0x%08X", address)),
				slog.Int("bytes", len(data)))
			return nil
		},
	}
	cmd.Flags().Uint32VarP(&address, "address", "a", 0, "Start address of the binary")
	cmd.Flags().Uint32VarP(&length, "length", "n", 0, "Size of the binary")
	return cmd
}

func newBin2HexCmd(a *app) *cobra.Command {
	var address uint32

	cmd := &cobra.Command{
		Use:   "bin2hex <in.bin> <out.hex>",
		Short: "Convert a raw binary into an IntelHex file",
		Long: `The bin2hex command loads a raw binary at the given address and writes it
as IntelHex records of at most --align bytes.

Example:
  ihex bin2hex firmware.bin firmware.hex --address 0x08000000
  ihex bin2hex firmware.bin firmware.hex --address 0x08000000 --align 32`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			mem := a.config.NewMemory()
			if err := mem.AddBinary(address, data); err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			return a.writeHex(cmd, mem, args[1])
		},
	}
	cmd.Flags().Uint32VarP(&address, "address", "a", 0, "Load address of the binary")
	return cmd
}

func newNormalizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <in.hex> [out.hex]",
		Short: "Rewrite an IntelHex file with merged, aligned records",
		Long: `The normalize command parses an IntelHex file and writes it back in
address order, with adjacent data merged and records split at multiples of
--align bytes. The result goes to standard output when no output file is
given.

Example:
  ihex normalize firmware.hex
  ihex normalize firmware.hex clean.hex --align 32`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.loadHex(args[0])
			if err != nil {
				return err
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			return a.writeHex(cmd, mem, out)
		},
	}
	return cmd
}
