package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Alia5/usbdesc/internal/dump"
	"github.com/Alia5/usbdesc/layout"
)

// Build compiles a layout file into a configuration descriptor blob.
type Build struct {
	Layout string `arg:"" name:"layout" help:"Layout file (json/yaml/toml)" type:"existingfile"`

	Output string `short:"o" help:"Destination file; '-' or empty writes to stdout"`
	Format string `help:"Output format" enum:"bin,hex,carray" default:"hex"`
	Symbol string `help:"Array name for carray output" default:"desc_configuration"`

	HighSpeed           bool   `help:"Rewrite endpoint packet sizes for high-speed operation"`
	PacketSizeHighSpeed uint16 `help:"Max packet size applied to non-control endpoints at high speed" default:"512"`

	WithDevice bool `help:"Prepend the 18-byte device descriptor to the blob"`
}

func (b *Build) Run(logger *slog.Logger) error {
	l, err := layout.Load(b.Layout)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	dev, err := l.Build()
	if err != nil {
		return fmt.Errorf("build descriptors: %w", err)
	}

	cfg := dev.Configuration(0)
	if cfg == nil {
		return fmt.Errorf("layout %s defines no configuration", b.Layout)
	}
	blob := cfg.ConfigurationDescriptorExt(b.HighSpeed, b.PacketSizeHighSpeed)
	if b.WithDevice {
		blob = append(append([]byte(nil), dev.DeviceDescriptor()...), blob...)
	}

	logger.Debug("descriptor blob built",
		"layout", b.Layout,
		"bytes", len(blob),
		"interfaces", cfg.NumInterfaces(),
		"highSpeed", b.HighSpeed,
	)

	var out []byte
	switch b.Format {
	case "bin":
		out = blob
	case "hex":
		out = []byte(dump.Hex(blob) + "\n")
	case "carray":
		out = []byte(dump.CArray(b.Symbol, blob))
	}

	if b.Output == "" || b.Output == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.Output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(b.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote descriptor blob", "path", b.Output, "bytes", len(out))
	return nil
}
