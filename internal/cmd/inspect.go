package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Alia5/usbdesc/internal/dump"
	"github.com/Alia5/usbdesc/usb"
)

// Inspect parses a configuration descriptor blob and prints the
// interface/endpoint tree it describes.
type Inspect struct {
	Input string `arg:"" name:"blob" help:"Descriptor blob file; '-' reads stdin"`

	Hex bool `help:"Treat the input as hex text instead of raw bytes"`
	Raw bool `help:"Also print each record's bytes"`
}

func (i *Inspect) Run(logger *slog.Logger) error {
	raw, err := i.readInput()
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty descriptor blob")
	}

	dev := usb.NewDevice().SetDescriptorTotalSize(len(raw))
	cfg, err := dev.SetConfigurationDescriptor(raw, 0, true)
	if err != nil {
		return fmt.Errorf("install descriptor blob: %w", err)
	}

	logger.Debug("parsed descriptor blob",
		"bytes", len(raw),
		"interfaces", cfg.InterfaceCount(),
	)

	// When stdout is a terminal print the per-record hex inline; piped
	// output stays terse unless --raw asks for it.
	showRaw := i.Raw || term.IsTerminal(int(os.Stdout.Fd()))

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration: %d bytes, %d interface(s)\n", len(raw), cfg.InterfaceCount())
	if rec := cfg.Descriptor(); rec != nil && showRaw {
		fmt.Fprintf(&sb, "  header: %s\n", dump.Hex(rec))
	}
	for n := 0; n < cfg.InterfaceCount(); n++ {
		itf := cfg.Interface(n)
		fmt.Fprintf(&sb, "interface %d: class=0x%02x subclass=0x%02x protocol=0x%02x endpoints=%d\n",
			itf.Number(), itf.Class(), itf.SubClass(), itf.Protocol(), itf.NumEndpoints())
		if rec := itf.Descriptor(); rec != nil && showRaw {
			fmt.Fprintf(&sb, "  record: %s\n", dump.Hex(rec))
		}
		for e := 0; e < itf.EndpointCount(); e++ {
			ep := itf.Endpoint(e)
			dir := "out"
			if ep.IsInput() {
				dir = "in"
			}
			fmt.Fprintf(&sb, "  endpoint 0x%02x: %s %s maxpacket=%d interval=%d\n",
				ep.Address(), ep.TransferType(), dir, ep.MaxPacketSize(), ep.Interval())
			if rec := ep.Descriptor(); rec != nil && showRaw {
				fmt.Fprintf(&sb, "    record: %s\n", dump.Hex(rec))
			}
		}
	}
	_, err = os.Stdout.WriteString(sb.String())
	return err
}

func (i *Inspect) readInput() ([]byte, error) {
	var raw []byte
	var err error
	if i.Input == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(i.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if i.Hex {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\n', '\r', ',':
				return -1
			}
			return r
		}, string(raw))
		cleaned = strings.ReplaceAll(cleaned, "0x", "")
		raw, err = hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
	}
	return raw, nil
}
