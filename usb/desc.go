// Package usb builds and parses the binary descriptor tree a USB device
// presents to a host during enumeration: a device descriptor plus a flat
// TLV stream of configuration, interface and endpoint descriptors backed by
// a single shared buffer.
package usb

// USB descriptor type constants
const (
	DeviceDescType    = 0x01
	ConfigDescType    = 0x02
	StringDescType    = 0x03
	InterfaceDescType = 0x04
	EndpointDescType  = 0x05
)

// Descriptor lengths in bytes (fixed values from USB spec)
const (
	DeviceDescLen    = 18
	ConfigDescLen    = 9
	InterfaceDescLen = 9
	EndpointDescLen  = 7
)

// DefaultLanguage is the language ID served at string index 0 (US English).
const DefaultLanguage = 0x0409

// DefaultDescriptorTotalSize is the default capacity of the shared
// descriptor buffer. Override with Device.SetDescriptorTotalSize before any
// descriptor is built if the configuration tree needs more room.
const DefaultDescriptorTotalSize = 225

// TransferType selects the endpoint transfer mode (bmAttributes bits 1..0).
type TransferType byte

const (
	TransferControl     TransferType = 0b00
	TransferIsochronous TransferType = 0b01
	TransferBulk        TransferType = 0b10
	TransferInterrupt   TransferType = 0b11
)

func (t TransferType) String() string {
	switch t {
	case TransferControl:
		return "control"
	case TransferIsochronous:
		return "isochronous"
	case TransferBulk:
		return "bulk"
	case TransferInterrupt:
		return "interrupt"
	}
	return "unknown"
}

// SyncType selects isochronous synchronisation (bmAttributes bits 3..2).
type SyncType byte

const (
	NoSynchronisation SyncType = 0b00
	Asynchronous      SyncType = 0b01
	Adaptive          SyncType = 0b10
	Synchronous       SyncType = 0b11
)

// UsageType selects isochronous usage (bmAttributes bits 5..4).
type UsageType byte

const (
	DataEndpoint                 UsageType = 0b00
	FeedbackEndpoint             UsageType = 0b01
	ExplicitFeedbackDataEndpoint UsageType = 0b10
)

// Record field offsets. Every descriptor starts with [bLength][bDescriptorType].
const (
	offLength   = 0
	offDescType = 1

	// device descriptor
	devOffBcdUSB            = 2
	devOffDeviceClass       = 4
	devOffDeviceSubClass    = 5
	devOffDeviceProtocol    = 6
	devOffMaxPacketSize0    = 7
	devOffIDVendor          = 8
	devOffIDProduct         = 10
	devOffBcdDevice         = 12
	devOffIManufacturer     = 14
	devOffIProduct          = 15
	devOffISerialNumber     = 16
	devOffNumConfigurations = 17

	// configuration descriptor
	cfgOffTotalLength        = 2
	cfgOffNumInterfaces      = 4
	cfgOffConfigurationValue = 5
	cfgOffIConfiguration     = 6
	cfgOffAttributes         = 7
	cfgOffMaxPower           = 8

	// interface descriptor
	itfOffInterfaceNumber   = 2
	itfOffAlternateSetting  = 3
	itfOffNumEndpoints      = 4
	itfOffInterfaceClass    = 5
	itfOffInterfaceSubClass = 6
	itfOffInterfaceProtocol = 7
	itfOffIInterface        = 8

	// endpoint descriptor
	epOffEndpointAddress = 2
	epOffAttributes      = 3
	epOffMaxPacketSize   = 4
	epOffInterval        = 6
)

// Endpoint address byte layout: bits 2..0 endpoint number, bit 7 direction
// (1 = IN).
const (
	epAddrNumberMask = 0x07
	epAddrDirIn      = 0x80
)
