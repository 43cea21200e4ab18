package usb

import "fmt"

// Interface is a typed view over an interface descriptor record in the
// shared buffer plus its ordered endpoints. Index 0 always holds the
// implicit control endpoint created at construction; per the USB spec the
// default control pipe is not enumerated, so it is excluded from
// bNumEndpoints.
type Interface struct {
	cfg       *Configuration
	off       int
	endpoints []*Endpoint
}

// newInterface appends a fresh interface record and its implicit control
// endpoint to the shared buffer.
func newInterface(cfg *Configuration, number int) (*Interface, error) {
	buf := cfg.dev.Buffer()
	off, err := buf.AddDescriptor(nil, InterfaceDescLen)
	if err != nil {
		return nil, fmt.Errorf("interface %d record: %w", number, err)
	}
	buf.setByte(off+offLength, InterfaceDescLen)
	buf.setByte(off+offDescType, InterfaceDescType)
	buf.setByte(off+itfOffInterfaceNumber, byte(number))

	itf := &Interface{cfg: cfg, off: off}
	// implicit control endpoint at index 0; not counted in bNumEndpoints
	if _, err := itf.appendEndpoint(0, TransferControl); err != nil {
		return nil, fmt.Errorf("interface %d control endpoint: %w", number, err)
	}
	return itf, nil
}

// overlayInterface wraps an interface record already present in the buffer,
// as produced by the parser. No bytes are written and no implicit control
// endpoint is created.
func overlayInterface(cfg *Configuration, off int) *Interface {
	return &Interface{cfg: cfg, off: off}
}

// Configuration returns the owning configuration node.
func (i *Interface) Configuration() *Configuration { return i.cfg }

// Descriptor resolves this interface's 9-byte record.
func (i *Interface) Descriptor() []byte { return i.cfg.dev.Buffer().Record(i.off) }

// Number returns the bInterfaceNumber field.
func (i *Interface) Number() int {
	return int(i.cfg.dev.Buffer().byteAt(i.off + itfOffInterfaceNumber))
}

// NumEndpoints returns the bNumEndpoints field (excluding the implicit
// control endpoint).
func (i *Interface) NumEndpoints() int {
	return int(i.cfg.dev.Buffer().byteAt(i.off + itfOffNumEndpoints))
}

// EndpointCount returns the number of endpoint nodes, including the
// implicit control endpoint on the builder path.
func (i *Interface) EndpointCount() int { return len(i.endpoints) }

// Endpoint returns the endpoint node at idx, or nil when out of range.
func (i *Interface) Endpoint(idx int) *Endpoint {
	if idx < 0 || idx >= len(i.endpoints) {
		return nil
	}
	return i.endpoints[idx]
}

// ControlEndpoint returns the implicit control endpoint, or nil for
// interfaces materialized by the parser.
func (i *Interface) ControlEndpoint() *Endpoint {
	if len(i.endpoints) == 0 || i.endpoints[0].TransferType() != TransferControl {
		return nil
	}
	return i.endpoints[0]
}

// SetClass sets the interface class code (e.g. 0x03 HID, 0x08 MSC).
func (i *Interface) SetClass(v byte) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffInterfaceClass, v)
	return i
}

func (i *Interface) SetSubClass(v byte) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffInterfaceSubClass, v)
	return i
}

func (i *Interface) SetProtocol(v byte) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffInterfaceProtocol, v)
	return i
}

func (i *Interface) SetAlternateSetting(v byte) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffAlternateSetting, v)
	return i
}

// SetName registers a string describing this interface and records its
// index in iInterface.
func (i *Interface) SetName(s string) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffIInterface, i.cfg.dev.Strings().Add(s))
	return i
}

// SetStringIndex records an externally managed iInterface index.
func (i *Interface) SetStringIndex(idx byte) *Interface {
	i.cfg.dev.Buffer().setByte(i.off+itfOffIInterface, idx)
	return i
}

// Class returns the bInterfaceClass field.
func (i *Interface) Class() byte { return i.cfg.dev.Buffer().byteAt(i.off + itfOffInterfaceClass) }

// SubClass returns the bInterfaceSubClass field.
func (i *Interface) SubClass() byte {
	return i.cfg.dev.Buffer().byteAt(i.off + itfOffInterfaceSubClass)
}

// Protocol returns the bInterfaceProtocol field.
func (i *Interface) Protocol() byte {
	return i.cfg.dev.Buffer().byteAt(i.off + itfOffInterfaceProtocol)
}

// StringIndex returns the iInterface field.
func (i *Interface) StringIndex() byte { return i.cfg.dev.Buffer().byteAt(i.off + itfOffIInterface) }

// CreateEndpoint appends a new endpoint record to the shared buffer and
// increments bNumEndpoints. The endpoint number is assigned monotonically
// from the count of endpoints so far (the implicit control endpoint holds
// number 0); isInput sets the direction bit of the address byte.
func (i *Interface) CreateEndpoint(isInput bool, xfer TransferType) (*Endpoint, error) {
	addr := byte(len(i.endpoints)) & epAddrNumberMask
	if isInput {
		addr |= epAddrDirIn
	}
	ep, err := i.appendEndpoint(addr, xfer)
	if err != nil {
		return nil, err
	}
	buf := i.cfg.dev.Buffer()
	buf.setByte(i.off+itfOffNumEndpoints, buf.byteAt(i.off+itfOffNumEndpoints)+1)
	return ep, nil
}

// appendEndpoint writes a fresh endpoint record with defaults: no
// synchronisation, data usage, 64-byte packets, 1-frame polling interval.
func (i *Interface) appendEndpoint(addr byte, xfer TransferType) (*Endpoint, error) {
	buf := i.cfg.dev.Buffer()
	off, err := buf.AddDescriptor(nil, EndpointDescLen)
	if err != nil {
		return nil, fmt.Errorf("endpoint record: %w", err)
	}
	buf.setByte(off+offLength, EndpointDescLen)
	buf.setByte(off+offDescType, EndpointDescType)
	buf.setByte(off+epOffEndpointAddress, addr)
	buf.setByte(off+epOffAttributes, byte(xfer)|byte(NoSynchronisation)<<2|byte(DataEndpoint)<<4)
	buf.setU16(off+epOffMaxPacketSize, 64)
	buf.setByte(off+epOffInterval, 1)

	ep := &Endpoint{itf: i, off: off}
	i.endpoints = append(i.endpoints, ep)
	return ep, nil
}

// addOverlayEndpoint wraps an endpoint record already present in the
// buffer, as produced by the parser. The parsed record is left untouched;
// in particular bNumEndpoints is not rewritten.
func (i *Interface) addOverlayEndpoint(off int) *Endpoint {
	ep := &Endpoint{itf: i, off: off}
	i.endpoints = append(i.endpoints, ep)
	return ep
}
