package fitsio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValueZoneString(t *testing.T) {
	v, comment, err := parseValueZone("'SCI     '           / extension name                    ", "EXTNAME")
	require.NoError(t, err)
	require.Equal(t, VString, v.Kind)
	require.Equal(t, "SCI", v.Str)
	require.Equal(t, "extension name", comment)
}

func TestParseValueZoneEmbeddedQuote(t *testing.T) {
	v, _, err := parseValueZone("'O''Brien'                                                  ", "OBJECT")
	require.NoError(t, err)
	require.Equal(t, "O'Brien", v.Str)
}

func TestParseValueZoneLogical(t *testing.T) {
	v, _, err := parseValueZone("                   T                                        ", "SIMPLE")
	require.NoError(t, err)
	require.Equal(t, VLogical, v.Kind)
	require.True(t, v.Bool)
}

func TestParseValueZoneInt(t *testing.T) {
	v, _, err := parseValueZone("                 -32                                        ", "BITPIX")
	require.NoError(t, err)
	n, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, -32, n)
}

func TestParseValueZoneFloatSingleTier(t *testing.T) {
	v, _, err := parseValueZone("       1.0E0                                                ", "BSCALE")
	require.NoError(t, err)
	require.Equal(t, VFloat, v.Kind)
	require.Equal(t, TierSingle, v.Tier)
	f, ok := v.AsFloat64()
	require.True(t, ok)
	require.Equal(t, 1.0, f)
}

func TestParseValueZoneFloatDoubleTier(t *testing.T) {
	v, _, err := parseValueZone("       3.2768D4                                             ", "BZERO")
	require.NoError(t, err)
	require.Equal(t, TierDouble, v.Tier)
	f, _ := v.AsFloat64()
	require.Equal(t, 32768.0, f)
}

func TestParseValueZoneComplexInt(t *testing.T) {
	v, _, err := parseValueZone("(1, 2)                                                      ", "CVAL")
	require.NoError(t, err)
	require.Equal(t, VComplexInt, v.Kind)
	require.Equal(t, 1.0, v.Re)
	require.Equal(t, 2.0, v.Im)
}

func TestParseValueZoneNone(t *testing.T) {
	v, comment, err := parseValueZone("                                                            ", "HISTORY")
	require.NoError(t, err)
	require.Equal(t, VNone, v.Kind)
	require.Equal(t, "", comment)
}

func TestFormatValueZoneRoundTripInt(t *testing.T) {
	s, err := formatValueZone(IntValue(16), "bits per pixel")
	require.NoError(t, err)
	v, comment, err := parseValueZone(s, "BITPIX")
	require.NoError(t, err)
	n, _ := v.AsInt()
	require.Equal(t, 16, n)
	require.Equal(t, "bits per pixel", comment)
}

func TestFormatValueZoneFloatWidthAndExponent(t *testing.T) {
	s, err := formatValueZone(FloatValue(1.0, TierDouble), "")
	require.NoError(t, err)
	require.Len(t, s, 23)
	require.Contains(t, s, "E")
}

func TestParseStringUnterminated(t *testing.T) {
	_, _, err := parseString("'unterminated")
	require.Error(t, err)
}
