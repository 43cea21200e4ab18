package usb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/usbdesc/arena"
	"github.com/Alia5/usbdesc/usb"
)

func TestAddDescriptorConcatenatesInOrder(t *testing.T) {
	b := usb.NewBuffer(32)

	recs := [][]byte{
		{4, 0x03, 0x09, 0x04},
		{3, 0xfe, 0xaa},
		{5, 0x04, 1, 2, 3},
	}
	offs := make([]int, 0, len(recs))
	want := []byte{}
	for _, r := range recs {
		off, err := b.AddDescriptor(r, len(r))
		require.NoError(t, err)
		offs = append(offs, off)
		want = append(want, r...)
	}

	assert.Equal(t, len(want), b.TotalSize())
	assert.Equal(t, want, b.Bytes())
	assert.Equal(t, []int{0, 4, 7}, offs)
}

func TestAddDescriptorInfersSizeFromLengthPrefix(t *testing.T) {
	b := usb.NewBuffer(16)
	rec := []byte{4, 0x03, 0x09, 0x04}

	off, err := b.AddDescriptor(rec, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 4, b.TotalSize())
	assert.Equal(t, rec, b.Record(off))
}

func TestAddDescriptorReservesZeroedSpace(t *testing.T) {
	b := usb.NewBuffer(16)

	off, err := b.AddDescriptor(nil, usb.EndpointDescLen)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, usb.EndpointDescLen, b.TotalSize())
	assert.Equal(t, make([]byte, usb.EndpointDescLen), b.Bytes())
}

func TestAddDescriptorCapacityExhaustion(t *testing.T) {
	b := usb.NewBuffer(8)
	_, err := b.AddDescriptor(nil, 6)
	require.NoError(t, err)

	_, err = b.AddDescriptor(nil, 3)
	assert.ErrorIs(t, err, arena.ErrNoSpace)
	assert.Equal(t, 6, b.TotalSize(), "failed append must not advance length")
}

func TestAddDescriptorRejectsEmptyInput(t *testing.T) {
	b := usb.NewBuffer(8)
	_, err := b.AddDescriptor(nil, 0)
	assert.Error(t, err)
}

func TestRecordResolution(t *testing.T) {
	b := usb.NewBuffer(16)
	off, err := b.AddDescriptor([]byte{3, 0x05, 0x81}, 0)
	require.NoError(t, err)

	assert.Equal(t, []byte{3, 0x05, 0x81}, b.Record(off))
	assert.Nil(t, b.Record(off+3), "offset past end")
	assert.Nil(t, b.Record(-1))
}

func TestClearResetsLength(t *testing.T) {
	b := usb.NewBuffer(16)
	_, err := b.AddDescriptor([]byte{2, 0x01}, 0)
	require.NoError(t, err)

	b.Clear()
	assert.Equal(t, 0, b.TotalSize())
	assert.Empty(t, b.Bytes())

	// storage is kept; the buffer is reusable
	_, err = b.AddDescriptor([]byte{2, 0x02}, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0x02}, b.Bytes())
}
