package usb

import (
	"encoding/binary"
	"fmt"

	"github.com/Alia5/usbdesc/arena"
)

// Buffer is the single byte arena holding the serialized configuration
// descriptor stream for a whole device. Every configuration, interface and
// endpoint record is appended here in construction order, which makes the
// flat buffer exactly the byte stream a host expects when it issues
// GET_CONFIGURATION_DESCRIPTOR.
//
// Records are addressed by stable offsets, never by slices held across
// appends: descriptor nodes store an offset and resolve bytes at the point
// of use.
type Buffer struct {
	data *arena.Arena[byte]
}

// NewBuffer creates a fixed-capacity descriptor buffer. The capacity must be
// chosen large enough up front; appends past it fail with arena.ErrNoSpace.
func NewBuffer(capacity int) *Buffer {
	a := arena.New[byte](0, capacity, 0)
	_ = a.Resize(capacity)
	return &Buffer{data: a}
}

// AddDescriptor appends a TLV record and returns its offset. A size of zero
// is inferred from the record's own length prefix p[0]. A nil p reserves
// zeroed space for a record that will be filled in place. On capacity
// exhaustion the buffer is unchanged and arena.ErrNoSpace is returned.
func (b *Buffer) AddDescriptor(p []byte, size int) (int, error) {
	if size == 0 {
		if len(p) == 0 {
			return 0, fmt.Errorf("add descriptor: no size and no data")
		}
		size = int(p[0])
	}
	if !b.data.CheckSize(b.data.Len() + size) {
		return 0, fmt.Errorf("add descriptor of %d bytes at %d: %w", size, b.data.Len(), arena.ErrNoSpace)
	}
	off := b.data.Len()
	for i := 0; i < size; i++ {
		var v byte
		if i < len(p) {
			v = p[i]
		}
		// capacity was pre-flighted above
		if err := b.data.Append(v); err != nil {
			return 0, err
		}
	}
	return off, nil
}

// Bytes exposes the live descriptor stream, front to back. The slice is only
// valid until the next append; re-resolve rather than holding it.
func (b *Buffer) Bytes() []byte { return b.data.Data() }

// TotalSize returns the current logical length of the stream.
func (b *Buffer) TotalSize() int { return b.data.Len() }

// CheckSize reports whether n total bytes fit in the buffer's capacity.
func (b *Buffer) CheckSize(n int) bool { return b.data.CheckSize(n) }

// Clear resets the stream length to zero without releasing storage. Nodes
// created before a Clear hold stale offsets and must not be used afterwards.
func (b *Buffer) Clear() { b.data.Clear() }

// Record resolves the TLV record starting at off using its length prefix.
// Returns nil for an out-of-range or truncated record.
func (b *Buffer) Record(off int) []byte {
	if off < 0 || off >= b.data.Len() {
		return nil
	}
	l := int(b.data.Get(off))
	if l == 0 || off+l > b.data.Len() {
		return nil
	}
	return b.data.Data()[off : off+l]
}

func (b *Buffer) byteAt(off int) byte { return b.data.Get(off) }

func (b *Buffer) setByte(off int, v byte) { _ = b.data.Set(off, v) }

func (b *Buffer) u16At(off int) uint16 {
	return uint16(b.data.Get(off)) | uint16(b.data.Get(off+1))<<8
}

func (b *Buffer) setU16(off int, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	_ = b.data.Set(off, tmp[0])
	_ = b.data.Set(off+1, tmp[1])
}
