package usb

import "fmt"

// Configuration is a typed view over a configuration descriptor record in
// the shared buffer plus the ordered set of Interface nodes under it. The
// record is created lazily: a configuration built from external bytes wraps
// those bytes instead of writing a default header.
type Configuration struct {
	dev        *Device
	off        int
	value      byte
	interfaces []*Interface
}

func newConfiguration(dev *Device, id int) *Configuration {
	// bConfigurationValue is the 1-based SetConfiguration() argument; zero
	// selects the unconfigured state and is never a valid value.
	return &Configuration{dev: dev, off: -1, value: byte(id + 1)}
}

// ensureRecord writes the default configuration header on first use.
func (c *Configuration) ensureRecord() error {
	if c.off >= 0 {
		return nil
	}
	off, err := c.dev.Buffer().AddDescriptor(nil, ConfigDescLen)
	if err != nil {
		return fmt.Errorf("configuration record: %w", err)
	}
	buf := c.dev.Buffer()
	buf.setByte(off+offLength, ConfigDescLen)
	buf.setByte(off+offDescType, ConfigDescType)
	buf.setByte(off+cfgOffConfigurationValue, c.value)
	buf.setByte(off+cfgOffMaxPower, 50) // 100 mA, in 2 mA units
	c.off = off
	return nil
}

// Device returns the owning device node.
func (c *Configuration) Device() *Device { return c.dev }

// Value returns the bConfigurationValue assigned to this configuration.
func (c *Configuration) Value() byte { return c.value }

// Descriptor resolves this configuration's 9-byte header record, or nil if
// it has not been created yet.
func (c *Configuration) Descriptor() []byte {
	if c.off < 0 {
		return nil
	}
	return c.dev.Buffer().Record(c.off)
}

// TotalLength returns the wTotalLength field of the record. It is only
// consistent with the buffer after ConfigurationDescriptorExt has run.
func (c *Configuration) TotalLength() uint16 {
	if c.off < 0 {
		return 0
	}
	return c.dev.Buffer().u16At(c.off + cfgOffTotalLength)
}

// NumInterfaces returns the bNumInterfaces field of the record.
func (c *Configuration) NumInterfaces() int {
	if c.off < 0 {
		return 0
	}
	return int(c.dev.Buffer().byteAt(c.off + cfgOffNumInterfaces))
}

// InterfaceCount returns the number of interface nodes.
func (c *Configuration) InterfaceCount() int { return len(c.interfaces) }

// Interface returns the interface node at idx, or nil when out of range.
func (c *Configuration) Interface(idx int) *Interface {
	if idx < 0 || idx >= len(c.interfaces) {
		return nil
	}
	return c.interfaces[idx]
}

// SetMaxPower sets the maximum bus power draw in milliamps (stored in 2 mA
// units per the USB spec).
func (c *Configuration) SetMaxPower(mA byte) *Configuration {
	if c.ensureRecord() == nil {
		c.dev.Buffer().setByte(c.off+cfgOffMaxPower, mA/2)
	}
	return c
}

// SetAttributes sets bmAttributes (D7 reserved-one, D6 self-powered, D5
// remote wakeup).
func (c *Configuration) SetAttributes(v byte) *Configuration {
	if c.ensureRecord() == nil {
		c.dev.Buffer().setByte(c.off+cfgOffAttributes, v)
	}
	return c
}

// SetName registers a string describing this configuration and records its
// index in iConfiguration.
func (c *Configuration) SetName(s string) *Configuration {
	if c.ensureRecord() == nil {
		c.dev.Buffer().setByte(c.off+cfgOffIConfiguration, c.dev.Strings().Add(s))
	}
	return c
}

// CreateInterface appends a new interface record (with its implicit control
// endpoint) to the shared buffer and increments bNumInterfaces.
func (c *Configuration) CreateInterface() (*Interface, error) {
	if err := c.ensureRecord(); err != nil {
		return nil, err
	}
	itf, err := newInterface(c, len(c.interfaces))
	if err != nil {
		return nil, err
	}
	buf := c.dev.Buffer()
	buf.setByte(c.off+cfgOffNumInterfaces, buf.byteAt(c.off+cfgOffNumInterfaces)+1)
	c.interfaces = append(c.interfaces, itf)
	return itf, nil
}

// SetDescriptor copies an externally prepared configuration descriptor
// stream into the shared buffer and makes this node wrap its header. A zero
// length means "all of raw". With parse set, interface and endpoint records
// in the stream are materialized as child nodes in place.
func (c *Configuration) SetDescriptor(raw []byte, length int, parse bool) error {
	if length == 0 {
		length = len(raw)
	}
	off, err := c.dev.Buffer().AddDescriptor(raw, length)
	if err != nil {
		return fmt.Errorf("set configuration descriptor: %w", err)
	}
	c.off = off
	if parse {
		c.parseDescriptors(off, length)
	}
	return nil
}

// ConfigurationDescriptor returns the shared buffer's full stream. Valid as
// the combined configuration descriptor because record placement order in
// the buffer is exactly construction order.
func (c *Configuration) ConfigurationDescriptor() []byte {
	return c.dev.Buffer().Bytes()
}

// ConfigurationDescriptorExt returns the combined configuration descriptor
// after the one consistency pass this design performs: when the negotiated
// bus speed is high speed, every non-control endpoint's max packet size is
// rewritten to packetSizeHighSpeed, and wTotalLength is recomputed from the
// buffer's current length. Must run after all children exist.
func (c *Configuration) ConfigurationDescriptorExt(highSpeed bool, packetSizeHighSpeed uint16) []byte {
	if highSpeed {
		for _, itf := range c.interfaces {
			for _, ep := range itf.endpoints {
				if ep.TransferType() == TransferControl {
					continue
				}
				ep.SetMaxPacketSize(packetSizeHighSpeed)
			}
		}
	}
	buf := c.dev.Buffer()
	if c.off >= 0 {
		buf.setU16(c.off+cfgOffTotalLength, uint16(buf.TotalSize()))
	}
	return buf.Bytes()
}

// FindDescriptor linearly scans the buffer from its start for the
// occurrence-th record with the given type tag, using the TLV length
// prefixes to hop records. It returns the record's offset, or ok=false when
// there is no such record.
func (c *Configuration) FindDescriptor(typ byte, occurrence int) (int, bool) {
	buf := c.dev.Buffer()
	end := buf.TotalSize()
	found := 0
	for off := 0; off < end; {
		l := int(buf.byteAt(off))
		if l == 0 {
			break
		}
		if buf.byteAt(off+offDescType) == typ {
			if found == occurrence {
				return off, true
			}
			found++
		}
		off += l
	}
	return 0, false
}
