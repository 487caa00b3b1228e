package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/marcinbor85/ihex"
	"github.com/spf13/cobra"
)

// app carries the state shared by the commands of one invocation
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	padByte    uint8
	alignWidth uint8

	config *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		config: DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	cmd := &cobra.Command{
		Use:   "ihex",
		Short: "Inspect and convert IntelHex files",
		Long: `ihex parses IntelHex files into a sparse memory image and converts
between IntelHex and raw binary images.

Numeric arguments accept decimal, 0x hexadecimal and 0 octal notation.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Log errors only")
	flags.Uint8Var(&a.padByte, "pad", ihex.DefaultPadByte, "Value of bytes not present in the image")
	flags.Uint8Var(&a.alignWidth, "align", ihex.DefaultAlignWidth, "Maximum data bytes per written record")

	cmd.AddCommand(
		newInfoCmd(a),
		newReadCmd(a),
		newHex2BinCmd(a),
		newBin2HexCmd(a),
		newNormalizeCmd(a),
	)
	return cmd
}

// setup merges the config file and the command line flags, which take
// precedence, and creates the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		config, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.config = config
	}

	flags := cmd.Flags()
	if flags.Changed("pad") {
		a.config.PadByte = a.padByte
	}
	if flags.Changed("align") {
		if a.alignWidth == 0 {
			return fmt.Errorf("--align must be between 1 and 255")
		}
		a.config.AlignWidth = a.alignWidth
	}
	switch {
	case a.verbose:
		a.config.Logging.Level = "debug"
	case a.quiet:
		a.config.Logging.Level = "error"
	}

	level, err := a.config.LogLevel()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration",
		slog.String("config", a.configPath),
		slog.Int("pad_byte", int(a.config.PadByte)),
		slog.Int("align_width", int(a.config.AlignWidth)))
	return nil
}

// loadHex parses an IntelHex file into a new image
func (a *app) loadHex(path string) (*ihex.Memory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mem := a.config.NewMemory()
	if err := mem.ParseIntelHex(file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	a.logger.Debug("parsed",
		slog.String("file", path),
		slog.Int("segments", mem.SegmentCount()),
		slog.Uint64("bytes", mem.Size()))
	return mem, nil
}

// writeHex dumps mem to path, or to the command output when path is empty
func (a *app) writeHex(cmd *cobra.Command, mem *ihex.Memory, path string) error {
	if path == "" {
		return mem.DumpIntelHex(cmd.OutOrStdout())
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mem.DumpIntelHex(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	a.logger.Info("written", slog.String("file", path), slog.Int("segments", mem.SegmentCount()))
	return nil
}
