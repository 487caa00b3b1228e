package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type segmentInfo struct {
	Address uint32 `json:"address"`
	End     uint64 `json:"end"`
	Size    int    `json:"size"`
}

type imageInfo struct {
	File     string        `json:"file"`
	Segments []segmentInfo `json:"segments"`
	Bytes    uint64        `json:"bytes"`
}

func newInfoCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "info <file.hex>",
		Short: "List the data segments of an IntelHex file",
		Long: `The info command parses an IntelHex file and prints every contiguous
data segment with its start address, end address (exclusive) and size.

Example:
  ihex info firmware.hex
  ihex info firmware.hex --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.loadHex(args[0])
			if err != nil {
				return err
			}

			info := imageInfo{File: args[0], Segments: []segmentInfo{}, Bytes: mem.Size()}
			for _, s := range mem.GetDataSegments() {
				info.Segments = append(info.Segments, segmentInfo{
					Address: s.Address,
					End:     uint64(s.Address) + uint64(len(s.Data)),
					Size:    len(s.Data),
				})
			}

			if jsonOut {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "START\tEND\tSIZE")
			for _, s := range info.Segments {
				fmt.Fprintf(w, "0x%08X\t0x%08X\t%d\n", s.Address, s.End, s.Size)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d segment(s), %d bytes\n", len(info.Segments), info.Bytes)
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}
