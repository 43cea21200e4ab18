package usb

import (
	"bytes"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"

	"github.com/Alia5/usbdesc/arena"
)

// maxStringChars caps rendered string descriptors at 31 UTF-16 code units so
// a record always fits in a 64-byte control transfer.
const maxStringChars = 31

// StringTable maps 1-based string indices to USB string descriptors.
// Indices are assigned at insertion, grow monotonically and are never
// reused; duplicate strings get duplicate indices. Index 0 is the language
// ID record and is never an application string.
type StringTable struct {
	entries  *arena.Arena[string]
	language [4]byte
}

// NewStringTable creates a table whose index 0 serves DefaultLanguage.
func NewStringTable() *StringTable {
	t := &StringTable{entries: arena.New("", 5, 5)}
	t.SetLanguage(DefaultLanguage)
	return t
}

// SetLanguage replaces the language ID record served at index 0.
func (t *StringTable) SetLanguage(lang uint16) {
	t.language[0] = 4
	t.language[1] = StringDescType
	t.language[2] = byte(lang)
	t.language[3] = byte(lang >> 8)
}

// Add registers a string and returns its new 1-based index.
func (t *StringTable) Add(s string) uint8 {
	_ = t.entries.Append(s)
	return uint8(t.entries.Len())
}

// Len returns the number of registered strings (excluding the language
// record).
func (t *StringTable) Len() int { return t.entries.Len() }

// Lookup returns the source text for a 1-based index, or "" when the index
// is out of range.
func (t *StringTable) Lookup(index int) string { return t.entries.Get(index - 1) }

// String renders the descriptor record for an index: the language record for
// index 0, a freshly allocated UTF-16LE record otherwise. Out-of-range
// indices return nil.
func (t *StringTable) String(index int) []byte {
	if index == 0 {
		rec := make([]byte, len(t.language))
		copy(rec, t.language[:])
		return rec
	}
	if index < 0 || index > t.entries.Len() {
		return nil
	}
	return encodeString(t.entries.Get(index - 1))
}

// Clear drops all registered strings. Previously returned indices become
// stale; the language record is kept.
func (t *StringTable) Clear() { t.entries.Clear() }

// encodeString renders s as a string descriptor, truncating at
// maxStringChars code units. Length byte is 2*chars + 2.
func encodeString(s string) []byte {
	units := utf16.Encode([]rune(s))
	if len(units) > maxStringChars {
		units = units[:maxStringChars]
	}
	rec := make([]byte, 2+2*len(units))
	rec[0] = byte(len(rec))
	rec[1] = StringDescType
	for i, u := range units {
		rec[2+2*i] = byte(u)
		rec[2+2*i+1] = byte(u >> 8)
	}
	return rec
}

// StringsEqual compares two rendered string descriptor records by declared
// length and raw bytes.
func StringsEqual(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	if a[0] != b[0] {
		return false
	}
	l := int(a[0])
	if l > len(a) || l > len(b) {
		return false
	}
	return bytes.Equal(a[:l], b[:l])
}

// DecodeStringDescriptor converts a string descriptor record back to its
// text, the reverse of StringTable.String.
func DecodeStringDescriptor(rec []byte) (string, error) {
	if len(rec) < 2 {
		return "", fmt.Errorf("string descriptor too short: %d bytes", len(rec))
	}
	if rec[1] != StringDescType {
		return "", fmt.Errorf("not a string descriptor: type 0x%02x", rec[1])
	}
	l := int(rec[0])
	if l < 2 || l > len(rec) {
		return "", fmt.Errorf("string descriptor length %d out of range", l)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(rec[2:l])
	if err != nil {
		return "", fmt.Errorf("decode UTF-16: %w", err)
	}
	return string(out), nil
}
