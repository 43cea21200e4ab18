package usb

import "encoding/binary"

// Device is the root of the descriptor tree. It owns the shared descriptor
// Buffer and StringTable and wires them to every Configuration, Interface
// and Endpoint created under it, so there is exactly one buffer per device
// without any global state.
//
// The 18-byte device record lives outside the shared buffer: the buffer
// holds only the configuration descriptor stream.
type Device struct {
	buf       *Buffer
	strs      *StringTable
	rec       []byte
	configs   []*Configuration
	totalSize int
}

// NewDevice creates a device with an empty descriptor tree. The shared
// buffer is allocated on first use with the configured total size hint.
func NewDevice() *Device {
	return &Device{
		strs:      NewStringTable(),
		totalSize: DefaultDescriptorTotalSize,
	}
}

// SetDescriptorTotalSize sets the capacity of the shared descriptor buffer.
// Must be called before any configuration descriptor is built; calling it
// later discards everything already written.
func (d *Device) SetDescriptorTotalSize(size int) *Device {
	d.totalSize = size
	d.buf = nil
	return d
}

// DescriptorTotalSize returns the configured buffer capacity hint.
func (d *Device) DescriptorTotalSize() int { return d.totalSize }

// Buffer returns the shared descriptor buffer, allocating it on first use.
func (d *Device) Buffer() *Buffer {
	if d.buf == nil {
		d.buf = NewBuffer(d.totalSize)
	}
	return d.buf
}

// Strings returns the device's string table.
func (d *Device) Strings() *StringTable { return d.strs }

// record lazily creates the device descriptor with USB 2.0 defaults.
func (d *Device) record() []byte {
	if d.rec == nil {
		d.rec = make([]byte, DeviceDescLen)
		d.rec[offLength] = DeviceDescLen
		d.rec[offDescType] = DeviceDescType
		binary.LittleEndian.PutUint16(d.rec[devOffBcdUSB:], 0x0200)
		d.rec[devOffMaxPacketSize0] = 64
		binary.LittleEndian.PutUint16(d.rec[devOffIDProduct:], 0x0001)
		binary.LittleEndian.PutUint16(d.rec[devOffBcdDevice:], 0x0001)
	}
	return d.rec
}

// DeviceDescriptor returns the live 18-byte device record, the payload for
// a GET_DESCRIPTOR(device) request.
func (d *Device) DeviceDescriptor() []byte { return d.record() }

// ConfigurationDescriptor returns the full configuration descriptor stream
// for the configuration at idx, or nil when no such configuration exists.
// This is the payload for a GET_DESCRIPTOR(configuration) request.
func (d *Device) ConfigurationDescriptor(idx int) []byte {
	if idx < 0 || idx >= len(d.configs) {
		return nil
	}
	return d.configs[idx].ConfigurationDescriptor()
}

// StringDescriptor returns the rendered string descriptor for index, the
// payload for a GET_DESCRIPTOR(string) request. Only the default language
// table is kept, so langid selects nothing beyond it.
func (d *Device) StringDescriptor(index int, langid uint16) []byte {
	_ = langid
	return d.strs.String(index)
}

// SetBcdUSB sets the USB specification release (e.g. 0x0200 for 2.0).
func (d *Device) SetBcdUSB(v uint16) *Device {
	binary.LittleEndian.PutUint16(d.record()[devOffBcdUSB:], v)
	return d
}

// SetDeviceClass sets the class code (0x00 = defined per interface).
func (d *Device) SetDeviceClass(v byte) *Device {
	d.record()[devOffDeviceClass] = v
	return d
}

func (d *Device) SetDeviceSubClass(v byte) *Device {
	d.record()[devOffDeviceSubClass] = v
	return d
}

func (d *Device) SetDeviceProtocol(v byte) *Device {
	d.record()[devOffDeviceProtocol] = v
	return d
}

// SetMaxPacketSize0 sets the control endpoint max packet size (8/16/32/64).
func (d *Device) SetMaxPacketSize0(v byte) *Device {
	d.record()[devOffMaxPacketSize0] = v
	return d
}

func (d *Device) SetVendorID(v uint16) *Device {
	binary.LittleEndian.PutUint16(d.record()[devOffIDVendor:], v)
	return d
}

func (d *Device) SetProductID(v uint16) *Device {
	binary.LittleEndian.PutUint16(d.record()[devOffIDProduct:], v)
	return d
}

func (d *Device) SetBcdDevice(v uint16) *Device {
	binary.LittleEndian.PutUint16(d.record()[devOffBcdDevice:], v)
	return d
}

// SetManufacturer registers the manufacturer string and records its index.
func (d *Device) SetManufacturer(s string) *Device {
	d.record()[devOffIManufacturer] = d.strs.Add(s)
	return d
}

// SetProduct registers the product string and records its index.
func (d *Device) SetProduct(s string) *Device {
	d.record()[devOffIProduct] = d.strs.Add(s)
	return d
}

// SetSerialNumber registers the serial number string and records its index.
func (d *Device) SetSerialNumber(s string) *Device {
	d.record()[devOffISerialNumber] = d.strs.Add(s)
	return d
}

func (d *Device) BcdUSB() uint16 {
	return binary.LittleEndian.Uint16(d.record()[devOffBcdUSB:])
}

func (d *Device) VendorID() uint16 {
	return binary.LittleEndian.Uint16(d.record()[devOffIDVendor:])
}

func (d *Device) ProductID() uint16 {
	return binary.LittleEndian.Uint16(d.record()[devOffIDProduct:])
}

func (d *Device) MaxPacketSize0() byte { return d.record()[devOffMaxPacketSize0] }

// NumConfigurations returns the bNumConfigurations field of the device
// record.
func (d *Device) NumConfigurations() int { return int(d.record()[devOffNumConfigurations]) }

// ConfigurationCount returns the number of configuration nodes.
func (d *Device) ConfigurationCount() int { return len(d.configs) }

// Configuration returns the configuration node at idx, or nil when out of
// range.
func (d *Device) Configuration(idx int) *Configuration {
	if idx < 0 || idx >= len(d.configs) {
		return nil
	}
	return d.configs[idx]
}

// CreateConfiguration adds a new configuration node and increments
// bNumConfigurations. The configuration's record is written to the shared
// buffer lazily, on the first builder call that touches it, so a
// configuration populated from external bytes never leaves an orphan
// default record in the stream.
func (d *Device) CreateConfiguration() *Configuration {
	cfg := newConfiguration(d, len(d.configs))
	d.record()[devOffNumConfigurations]++
	d.configs = append(d.configs, cfg)
	return cfg
}

// SingleConfiguration returns the first configuration, creating it on first
// use. Most devices want exactly one.
func (d *Device) SingleConfiguration() *Configuration {
	if len(d.configs) > 0 {
		return d.configs[0]
	}
	return d.CreateConfiguration()
}

// SetConfigurationDescriptor installs an externally prepared configuration
// descriptor stream (for example the output of another descriptor tool) on
// the single configuration, copying it into the shared buffer. With parse
// set, the interface and endpoint records in the stream are materialized as
// nodes under the configuration.
func (d *Device) SetConfigurationDescriptor(raw []byte, length int, parse bool) (*Configuration, error) {
	cfg := d.SingleConfiguration()
	if err := cfg.SetDescriptor(raw, length, parse); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clear resets the shared buffer and the string table. Configuration,
// interface and endpoint nodes created earlier hold stale offsets and must
// not be used afterwards; that contract is the caller's to keep.
func (d *Device) Clear() {
	d.configs = nil
	if d.rec != nil {
		d.rec[devOffNumConfigurations] = 0
	}
	if d.buf != nil {
		d.buf.Clear()
	}
	d.strs.Clear()
}
