package interfaces

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
)

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"Load.GetLevel", "Load.Ramp", "Load.SetLevel"}, LoadMethods.Methods())
	assert.Equal(t, []Capability{CapabilityLoad}, LoadMethods.Capabilities())

	m, ok := LoadMethods.Lookup(MethodLoadGetLevel)
	require.True(t, ok)
	assert.Equal(t, CapabilityLoad, m.Capability)
}

func TestCompose(t *testing.T) {
	all := Compose(LoadMethods, RGBLoadMethods, ColorTemperatureMethods)

	assert.True(t, all.Has(MethodLoadGetLevel))
	assert.True(t, all.Has(MethodRGBLoadGetHSL))
	assert.True(t, all.Has(MethodColorTemperatureGet))
	assert.False(t, all.Has(MethodIntrospectionGetFirmwareVersion))
	assert.Equal(t, []Capability{CapabilityColorTemperature, CapabilityLoad, CapabilityRGBLoad}, all.Capabilities())
}

func TestComposeLaterWins(t *testing.T) {
	override := NewRegistry(CapabilityLoad, map[string]Parser{"GetLevel": stringResult})
	reg := Compose(LoadMethods, override)

	v, err := reg.Parse(Response{Method: MethodLoadGetLevel, Result: "12.000"})
	require.NoError(t, err)
	assert.Equal(t, "12.000", v)
}

func TestRegistryParse(t *testing.T) {
	v, err := LoadMethods.Parse(Response{VID: 10, Method: MethodLoadGetLevel, Result: "75.000"})
	require.NoError(t, err)
	assert.True(t, v.(decimal.Decimal).Equal(decimal.NewFromInt(75)))
}

func TestRegistryParseMissing(t *testing.T) {
	_, err := LoadMethods.Parse(Response{Method: "Load.Explode"})
	assert.ErrorIs(t, err, ErrMissingParser)
	assert.Contains(t, err.Error(), "Load.Explode")
}

func TestRegistryParseError(t *testing.T) {
	_, err := ColorTemperatureMethods.Parse(Response{Method: MethodColorTemperatureGet, Result: "warm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse ColorTemperature.Get")
	assert.False(t, errors.Is(err, ErrMissingParser))
}

func TestFromStatus(t *testing.T) {
	r, err := FromStatus("118 RGBLoad.GetHSL 240 0")
	require.NoError(t, err)
	assert.Equal(t, Response{VID: 118, Method: "RGBLoad.GetHSL", Result: "240", Args: []string{"0"}}, r)

	v, err := RGBLoadMethods.Parse(r)
	require.NoError(t, err)
	assert.Equal(t, ColorChannel{Channel: 0, Value: 240}, v)
}

func TestFromStatusNoArgs(t *testing.T) {
	r, err := FromStatus("42 Load.GetLevel 100.000")
	require.NoError(t, err)
	assert.Equal(t, 42, r.VID)
	assert.Empty(t, r.Args)
}

func TestFromStatusMalformed(t *testing.T) {
	for _, in := range []string{"", "42 Load.GetLevel", "x Load.GetLevel 1"} {
		_, err := FromStatus(in)
		assert.ErrorIs(t, err, clienterr.ErrProtocol, in)
	}
}

func TestFromInvoke(t *testing.T) {
	r := FromInvoke(&hostcmd.InvokeResponse{VID: 5, Result: "3000", Method: "ColorTemperature.Get"})
	assert.Equal(t, Response{VID: 5, Result: "3000", Method: "ColorTemperature.Get"}, r)
}
