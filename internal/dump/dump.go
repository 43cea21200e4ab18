// Package dump formats descriptor bytes for humans and for source code.
package dump

import (
	"bytes"
	"fmt"
	"strings"
)

const hexdigits = "0123456789abcdef"

// Hex renders data as space-separated lowercase hex pairs.
func Hex(data []byte) string {
	var buf bytes.Buffer
	for i, b := range data {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteByte(hexdigits[b>>4])
		buf.WriteByte(hexdigits[b&0x0f])
	}
	return buf.String()
}

// CArray renders data as a C byte-array definition, the form firmware
// projects paste straight into their descriptor sources.
func CArray(name string, data []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "uint8_t %s[] = {\n", name)
	for i, b := range data {
		if i%12 == 0 {
			sb.WriteString("    ")
		}
		fmt.Fprintf(&sb, "0x%02x", b)
		if i != len(data)-1 {
			sb.WriteString(",")
			if i%12 == 11 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
	}
	sb.WriteString("\n};\n")
	return sb.String()
}

// Records splits a TLV stream into its length-prefixed records. A record
// with a zero length prefix or one that runs past the stream terminates the
// split; the remaining bytes are returned as a final chunk so nothing is
// silently dropped.
func Records(data []byte) [][]byte {
	var out [][]byte
	off := 0
	for off < len(data) {
		l := int(data[off])
		if l == 0 || off+l > len(data) {
			out = append(out, data[off:])
			break
		}
		out = append(out, data[off:off+l])
		off += l
	}
	return out
}
