package usb

// Endpoint is a leaf view over a 7-byte endpoint descriptor record in the
// shared buffer. Setters write directly into the live record.
type Endpoint struct {
	itf *Interface
	off int
}

// Interface returns the owning interface node.
func (e *Endpoint) Interface() *Interface { return e.itf }

// Descriptor resolves this endpoint's record.
func (e *Endpoint) Descriptor() []byte { return e.itf.cfg.dev.Buffer().Record(e.off) }

// Address returns the bEndpointAddress byte: bits 2..0 endpoint number,
// bit 7 direction (1 = IN).
func (e *Endpoint) Address() byte {
	return e.itf.cfg.dev.Buffer().byteAt(e.off + epOffEndpointAddress)
}

// Number returns the endpoint number encoded in the address byte.
func (e *Endpoint) Number() int { return int(e.Address() & epAddrNumberMask) }

// IsInput reports whether the direction bit marks this an IN endpoint.
func (e *Endpoint) IsInput() bool { return e.Address()&epAddrDirIn != 0 }

// Attributes returns the raw bmAttributes byte.
func (e *Endpoint) Attributes() byte {
	return e.itf.cfg.dev.Buffer().byteAt(e.off + epOffAttributes)
}

// TransferType returns the transfer mode from bmAttributes.
func (e *Endpoint) TransferType() TransferType {
	return TransferType(e.Attributes() & 0b11)
}

// MaxPacketSize returns the wMaxPacketSize field.
func (e *Endpoint) MaxPacketSize() uint16 {
	return e.itf.cfg.dev.Buffer().u16At(e.off + epOffMaxPacketSize)
}

// Interval returns the bInterval polling interval in frame counts.
func (e *Endpoint) Interval() byte {
	return e.itf.cfg.dev.Buffer().byteAt(e.off + epOffInterval)
}

// SetMaxPacketSize sets the maximum packet size this endpoint can send or
// receive (full speed caps at 64, high speed at 512 for bulk).
func (e *Endpoint) SetMaxPacketSize(v uint16) *Endpoint {
	e.itf.cfg.dev.Buffer().setU16(e.off+epOffMaxPacketSize, v)
	return e
}

// SetInterval sets the polling interval in frame counts. Ignored by hosts
// for bulk and control endpoints.
func (e *Endpoint) SetInterval(v byte) *Endpoint {
	e.itf.cfg.dev.Buffer().setByte(e.off+epOffInterval, v)
	return e
}
