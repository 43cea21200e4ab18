// Package layout declares a file-friendly description of a USB device tree
// and turns it into a wired descriptor graph. Layout files are the input of
// the usbdesc build command and may be JSON, YAML or TOML.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/usbdesc/usb"
)

// Layout is the root of a device description file.
type Layout struct {
	Device        Device        `json:"device" yaml:"device" toml:"device"`
	Configuration Configuration `json:"configuration" yaml:"configuration" toml:"configuration"`
}

// Device mirrors the device descriptor fields an integrator usually sets.
// Vid/Pid/BcdDevice accept hex ("0x2E8A") or decimal notation.
type Device struct {
	Vid            string `json:"vid" yaml:"vid" toml:"vid"`
	Pid            string `json:"pid" yaml:"pid" toml:"pid"`
	BcdDevice      string `json:"bcdDevice,omitempty" yaml:"bcdDevice,omitempty" toml:"bcdDevice,omitempty"`
	Class          uint8  `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	SubClass       uint8  `json:"subClass,omitempty" yaml:"subClass,omitempty" toml:"subClass,omitempty"`
	Protocol       uint8  `json:"protocol,omitempty" yaml:"protocol,omitempty" toml:"protocol,omitempty"`
	MaxPacketSize0 uint8  `json:"maxPacketSize0,omitempty" yaml:"maxPacketSize0,omitempty" toml:"maxPacketSize0,omitempty"`
	Manufacturer   string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty" toml:"manufacturer,omitempty"`
	Product        string `json:"product,omitempty" yaml:"product,omitempty" toml:"product,omitempty"`
	SerialNumber   string `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty" toml:"serialNumber,omitempty"`
	// BufferSize overrides the descriptor buffer capacity hint when the
	// default is too small for the configuration tree.
	BufferSize int `json:"bufferSize,omitempty" yaml:"bufferSize,omitempty" toml:"bufferSize,omitempty"`
}

// Configuration describes the single configuration of the device.
type Configuration struct {
	Name         string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	MaxPowerMA   uint8       `json:"maxPowerMilliAmps,omitempty" yaml:"maxPowerMilliAmps,omitempty" toml:"maxPowerMilliAmps,omitempty"`
	SelfPowered  bool        `json:"selfPowered,omitempty" yaml:"selfPowered,omitempty" toml:"selfPowered,omitempty"`
	RemoteWakeup bool        `json:"remoteWakeup,omitempty" yaml:"remoteWakeup,omitempty" toml:"remoteWakeup,omitempty"`
	Interfaces   []Interface `json:"interfaces" yaml:"interfaces" toml:"interfaces"`
}

// Interface describes one interface and its endpoints.
type Interface struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Class     uint8      `json:"class" yaml:"class" toml:"class"`
	SubClass  uint8      `json:"subClass,omitempty" yaml:"subClass,omitempty" toml:"subClass,omitempty"`
	Protocol  uint8      `json:"protocol,omitempty" yaml:"protocol,omitempty" toml:"protocol,omitempty"`
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints" toml:"endpoints"`
}

// Endpoint describes one non-control endpoint. Direction is "in" or "out",
// transfer one of "control", "isochronous", "bulk", "interrupt".
type Endpoint struct {
	Direction     string `json:"direction" yaml:"direction" toml:"direction"`
	Transfer      string `json:"transfer" yaml:"transfer" toml:"transfer"`
	MaxPacketSize uint16 `json:"maxPacketSize,omitempty" yaml:"maxPacketSize,omitempty" toml:"maxPacketSize,omitempty"`
	Interval      uint8  `json:"interval,omitempty" yaml:"interval,omitempty" toml:"interval,omitempty"`
}

// Load reads a layout file, dispatching the decoder on the file extension.
func Load(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var l Layout
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, &l)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &l)
	case ".toml":
		err = toml.Unmarshal(raw, &l)
	default:
		return nil, fmt.Errorf("unsupported layout format %q (want .json, .yaml or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", path, err)
	}
	return &l, nil
}

// Build constructs the descriptor tree described by the layout.
func (l *Layout) Build() (*usb.Device, error) {
	dev := usb.NewDevice()
	if l.Device.BufferSize > 0 {
		dev.SetDescriptorTotalSize(l.Device.BufferSize)
	}

	if l.Device.Vid != "" {
		vid, err := parseID(l.Device.Vid)
		if err != nil {
			return nil, fmt.Errorf("vid: %w", err)
		}
		dev.SetVendorID(vid)
	}
	if l.Device.Pid != "" {
		pid, err := parseID(l.Device.Pid)
		if err != nil {
			return nil, fmt.Errorf("pid: %w", err)
		}
		dev.SetProductID(pid)
	}
	if l.Device.BcdDevice != "" {
		bcd, err := parseID(l.Device.BcdDevice)
		if err != nil {
			return nil, fmt.Errorf("bcdDevice: %w", err)
		}
		dev.SetBcdDevice(bcd)
	}
	if l.Device.Class != 0 {
		dev.SetDeviceClass(l.Device.Class)
	}
	if l.Device.SubClass != 0 {
		dev.SetDeviceSubClass(l.Device.SubClass)
	}
	if l.Device.Protocol != 0 {
		dev.SetDeviceProtocol(l.Device.Protocol)
	}
	if l.Device.MaxPacketSize0 != 0 {
		dev.SetMaxPacketSize0(l.Device.MaxPacketSize0)
	}
	if l.Device.Manufacturer != "" {
		dev.SetManufacturer(l.Device.Manufacturer)
	}
	if l.Device.Product != "" {
		dev.SetProduct(l.Device.Product)
	}
	if l.Device.SerialNumber != "" {
		dev.SetSerialNumber(l.Device.SerialNumber)
	}

	cfg := dev.SingleConfiguration()
	cfg.SetAttributes(configAttributes(l.Configuration))
	if l.Configuration.MaxPowerMA != 0 {
		cfg.SetMaxPower(l.Configuration.MaxPowerMA)
	}
	if l.Configuration.Name != "" {
		cfg.SetName(l.Configuration.Name)
	}

	for i, itfSpec := range l.Configuration.Interfaces {
		itf, err := cfg.CreateInterface()
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		itf.SetClass(itfSpec.Class).SetSubClass(itfSpec.SubClass).SetProtocol(itfSpec.Protocol)
		if itfSpec.Name != "" {
			itf.SetName(itfSpec.Name)
		}
		for j, epSpec := range itfSpec.Endpoints {
			isInput, err := parseDirection(epSpec.Direction)
			if err != nil {
				return nil, fmt.Errorf("interface %d endpoint %d: %w", i, j, err)
			}
			xfer, err := parseTransfer(epSpec.Transfer)
			if err != nil {
				return nil, fmt.Errorf("interface %d endpoint %d: %w", i, j, err)
			}
			ep, err := itf.CreateEndpoint(isInput, xfer)
			if err != nil {
				return nil, fmt.Errorf("interface %d endpoint %d: %w", i, j, err)
			}
			if epSpec.MaxPacketSize != 0 {
				ep.SetMaxPacketSize(epSpec.MaxPacketSize)
			}
			if epSpec.Interval != 0 {
				ep.SetInterval(epSpec.Interval)
			}
		}
	}
	return dev, nil
}

// Sample returns a small HID-style layout used by "config init" templates.
func Sample() Layout {
	return Layout{
		Device: Device{
			Vid:            "0x2E8A",
			Pid:            "0x0010",
			BcdDevice:      "0x0100",
			MaxPacketSize0: 64,
			Manufacturer:   "ACME",
			Product:        "Widget",
			SerialNumber:   "0001",
		},
		Configuration: Configuration{
			MaxPowerMA: 100,
			Interfaces: []Interface{
				{
					Name:  "HID Port",
					Class: 0x03,
					Endpoints: []Endpoint{
						{Direction: "in", Transfer: "interrupt", MaxPacketSize: 64, Interval: 5},
						{Direction: "out", Transfer: "interrupt", MaxPacketSize: 8, Interval: 5},
					},
				},
			},
		},
	}
}

func parseID(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return uint16(v), nil
}

func parseDirection(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "in":
		return true, nil
	case "out":
		return false, nil
	}
	return false, fmt.Errorf("unknown direction %q (want in or out)", s)
}

func parseTransfer(s string) (usb.TransferType, error) {
	switch strings.ToLower(s) {
	case "control":
		return usb.TransferControl, nil
	case "isochronous", "iso":
		return usb.TransferIsochronous, nil
	case "bulk":
		return usb.TransferBulk, nil
	case "interrupt", "":
		return usb.TransferInterrupt, nil
	}
	return 0, fmt.Errorf("unknown transfer type %q", s)
}

func configAttributes(c Configuration) byte {
	// D7 is reserved and always one
	attrs := byte(0x80)
	if c.SelfPowered {
		attrs |= 0x40
	}
	if c.RemoteWakeup {
		attrs |= 0x20
	}
	return attrs
}
