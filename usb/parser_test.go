package usb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/usbdesc/usb"
)

// buildConfigBlob builds a configuration with the given interface/endpoint
// shape through the node API and returns the finished descriptor stream.
func buildConfigBlob(t *testing.T, interfaces, endpointsPer int) []byte {
	t.Helper()
	d := usb.NewDevice()
	cfg := d.SingleConfiguration()
	for i := 0; i < interfaces; i++ {
		itf, err := cfg.CreateInterface()
		require.NoError(t, err)
		itf.SetClass(0x03)
		for j := 0; j < endpointsPer; j++ {
			_, err := itf.CreateEndpoint(j%2 == 0, usb.TransferInterrupt)
			require.NoError(t, err)
		}
	}
	blob := cfg.ConfigurationDescriptorExt(false, 512)
	out := make([]byte, len(blob))
	copy(out, blob)
	return out
}

func TestParseRoundTrip(t *testing.T) {
	blob := buildConfigBlob(t, 2, 2)

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, len(blob), true)
	require.NoError(t, err)

	require.Equal(t, 2, cfg.InterfaceCount())
	for i := 0; i < cfg.InterfaceCount(); i++ {
		itf := cfg.Interface(i)
		assert.Equal(t, i, itf.Number())
		assert.Equal(t, byte(0x03), itf.Class())
		assert.Equal(t, 2, itf.NumEndpoints(), "parsed field values are preserved")
		// parser sees every endpoint record, including the implicit control one
		assert.Equal(t, 3, itf.EndpointCount())
	}

	// the installed bytes are reproduced exactly
	assert.Equal(t, blob, cfg.ConfigurationDescriptor())
	assert.Equal(t, cfg.TotalLength(), uint16(len(blob)))
}

func TestParsePreservesEndpointFields(t *testing.T) {
	src := usb.NewDevice()
	srcCfg := src.SingleConfiguration()
	itf, err := srcCfg.CreateInterface()
	require.NoError(t, err)
	ep, err := itf.CreateEndpoint(true, usb.TransferInterrupt)
	require.NoError(t, err)
	ep.SetMaxPacketSize(16).SetInterval(10)
	blob := srcCfg.ConfigurationDescriptorExt(false, 512)

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, 0, true)
	require.NoError(t, err)

	parsed := cfg.Interface(0)
	require.NotNil(t, parsed)
	// index 0 is the control endpoint record, index 1 the interrupt one
	in := parsed.Endpoint(1)
	require.NotNil(t, in)
	assert.Equal(t, byte(0x81), in.Address())
	assert.Equal(t, uint16(16), in.MaxPacketSize())
	assert.Equal(t, byte(10), in.Interval())
	assert.Equal(t, usb.TransferInterrupt, in.TransferType())
}

func TestParseSkipsUnknownRecords(t *testing.T) {
	blob := []byte{
		9, usb.ConfigDescType, 0, 0, 1, 1, 0, 0x80, 50,
		9, usb.InterfaceDescType, 0, 0, 1, 3, 0, 0, 0,
		9, 0x21, 0x11, 0x01, 0, 1, 0x22, 63, 0, // HID class descriptor, skipped
		7, usb.EndpointDescType, 0x81, 0x03, 64, 0, 5,
	}

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, len(blob), true)
	require.NoError(t, err)

	require.Equal(t, 1, cfg.InterfaceCount())
	itf := cfg.Interface(0)
	require.Equal(t, 1, itf.EndpointCount())
	assert.Equal(t, byte(0x81), itf.Endpoint(0).Address())
	assert.Nil(t, itf.ControlEndpoint(), "overlay interfaces get no implicit control endpoint")
}

func TestParseStopsAtZeroLength(t *testing.T) {
	blob := []byte{
		9, usb.InterfaceDescType, 0, 0, 0, 0, 0, 0, 0,
		0, 0, // zero length terminates the walk
		9, usb.InterfaceDescType, 1, 0, 0, 0, 0, 0, 0,
	}

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, len(blob), true)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.InterfaceCount(), "records after the zero length are unreachable")
}

func TestParseIgnoresEndpointBeforeInterface(t *testing.T) {
	blob := []byte{
		7, usb.EndpointDescType, 0x81, 0x03, 64, 0, 5,
		9, usb.InterfaceDescType, 0, 0, 0, 0, 0, 0, 0,
	}

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, len(blob), true)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.InterfaceCount())
	assert.Equal(t, 0, cfg.Interface(0).EndpointCount())
}

func TestParseTruncatedStreamIsBenign(t *testing.T) {
	blob := []byte{
		9, usb.InterfaceDescType, 0, 0, 0, 0, 0, 0, 0,
		7, usb.EndpointDescType, 0x81, // truncated endpoint record
	}

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, len(blob), true)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.InterfaceCount())
}

func TestSetDescriptorWithoutParse(t *testing.T) {
	blob := buildConfigBlob(t, 1, 1)

	d := usb.NewDevice()
	cfg, err := d.SetConfigurationDescriptor(blob, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.InterfaceCount())
	assert.Equal(t, blob, cfg.ConfigurationDescriptor())
}
