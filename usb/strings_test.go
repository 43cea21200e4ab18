package usb_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/usbdesc/usb"
)

func TestStringIndicesAreAssignedInOrder(t *testing.T) {
	st := usb.NewStringTable()

	assert.Equal(t, uint8(1), st.Add("Vendor"))
	assert.Equal(t, uint8(2), st.Add("Product"))
	assert.Equal(t, uint8(3), st.Add("0001"))
	assert.Equal(t, 3, st.Len())
}

func TestDuplicateStringsGetDistinctIndices(t *testing.T) {
	st := usb.NewStringTable()

	first := st.Add("same")
	second := st.Add("same")
	assert.Equal(t, uint8(1), first)
	assert.Equal(t, uint8(2), second)
	assert.Equal(t, "same", st.Lookup(int(first)))
	assert.Equal(t, "same", st.Lookup(int(second)))
}

func TestIndexZeroIsLanguageRecord(t *testing.T) {
	st := usb.NewStringTable()
	assert.Equal(t, []byte{4, 0x03, 0x09, 0x04}, st.String(0))

	st.SetLanguage(0x0407) // de-DE
	assert.Equal(t, []byte{4, 0x03, 0x07, 0x04}, st.String(0))
}

func TestStringRendering(t *testing.T) {
	st := usb.NewStringTable()
	idx := st.Add("AB")

	rec := st.String(int(idx))
	require.NotNil(t, rec)
	assert.Equal(t, []byte{6, 0x03, 'A', 0, 'B', 0}, rec)
}

func TestStringRenderingIsIndependentPerCall(t *testing.T) {
	st := usb.NewStringTable()
	a := st.Add("one")
	b := st.Add("two")

	recA := st.String(int(a))
	recB := st.String(int(b))
	gotA, err := usb.DecodeStringDescriptor(recA)
	require.NoError(t, err)
	gotB, err := usb.DecodeStringDescriptor(recB)
	require.NoError(t, err)
	assert.Equal(t, "one", gotA)
	assert.Equal(t, "two", gotB)
}

func TestStringTruncatesAt31Chars(t *testing.T) {
	st := usb.NewStringTable()
	idx := st.Add(strings.Repeat("x", 40))

	rec := st.String(int(idx))
	require.NotNil(t, rec)
	assert.Equal(t, byte(2*31+2), rec[0])
	assert.Len(t, rec, 64)

	got, err := usb.DecodeStringDescriptor(rec)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 31), got)
}

func TestStringOutOfRangeReturnsNil(t *testing.T) {
	st := usb.NewStringTable()
	st.Add("only")

	assert.Nil(t, st.String(2))
	assert.Nil(t, st.String(-1))
	assert.Equal(t, "", st.Lookup(2))
}

func TestStringsEqual(t *testing.T) {
	st := usb.NewStringTable()
	a := st.Add("match")
	b := st.Add("match")
	c := st.Add("other")

	assert.True(t, usb.StringsEqual(st.String(int(a)), st.String(int(b))))
	assert.False(t, usb.StringsEqual(st.String(int(a)), st.String(int(c))))
	assert.False(t, usb.StringsEqual(st.String(int(a)), st.String(0)))
}

func TestDecodeStringDescriptorErrors(t *testing.T) {
	cases := []struct {
		name string
		rec  []byte
	}{
		{name: "too short", rec: []byte{2}},
		{name: "wrong type", rec: []byte{4, 0x04, 0, 0}},
		{name: "length past end", rec: []byte{10, 0x03, 'a', 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := usb.DecodeStringDescriptor(tc.rec)
			assert.Error(t, err)
		})
	}
}

func TestClearDropsStringsButKeepsLanguage(t *testing.T) {
	st := usb.NewStringTable()
	st.Add("gone")
	st.Clear()

	assert.Equal(t, 0, st.Len())
	assert.Nil(t, st.String(1))
	assert.Equal(t, []byte{4, 0x03, 0x09, 0x04}, st.String(0))

	// indices restart from 1
	assert.Equal(t, uint8(1), st.Add("fresh"))
}
