package usb

// parseDescriptors walks the concatenated TLV records in [off, off+length)
// of the shared buffer and materializes interface and endpoint nodes over
// them in place. Interface records (0x04) become the current interface for
// the endpoint records (0x05) that follow; endpoints before any interface
// and records of any other type are skipped. A zero length prefix or the
// end of the range terminates the walk; truncated input is treated as
// end-of-stream, not as an error.
//
// Parsed records are never rewritten: counts and field values stay exactly
// as supplied, so a serialize-then-parse round trip preserves the stream.
func (c *Configuration) parseDescriptors(off, length int) {
	buf := c.dev.Buffer()
	end := off + length
	if end > buf.TotalSize() {
		end = buf.TotalSize()
	}

	var current *Interface
	for cur := off; cur < end; {
		l := int(buf.byteAt(cur))
		if l == 0 {
			// defensive stop on malformed input
			break
		}
		switch buf.byteAt(cur + offDescType) {
		case InterfaceDescType:
			current = overlayInterface(c, cur)
			c.interfaces = append(c.interfaces, current)
		case EndpointDescType:
			if current != nil {
				current.addOverlayEndpoint(cur)
			}
		}
		cur += l
	}
}
