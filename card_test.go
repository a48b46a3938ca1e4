package fitsio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCardIntValue(t *testing.T) {
	line := []byte(pad80("BITPIX  =                   16 / bits per pixel"))
	c, err := ParseCard(line)
	require.NoError(t, err)
	require.Equal(t, "BITPIX", c.Keyword)
	require.Equal(t, VInt, c.Value.Kind)
	n, ok := c.Value.AsInt()
	require.True(t, ok)
	require.Equal(t, 16, n)
	require.Equal(t, "bits per pixel", c.Comment)
}

func TestParseCardEnd(t *testing.T) {
	c, err := ParseCard([]byte(pad80("END")))
	require.NoError(t, err)
	require.Equal(t, "END", c.Keyword)
}

func TestParseCardCommentary(t *testing.T) {
	c, err := ParseCard([]byte(pad80("COMMENT this is free text")))
	require.NoError(t, err)
	require.Equal(t, "COMMENT", c.Keyword)
	require.Equal(t, "this is free text", c.Comment)
}

func TestParseCardRejectsControlBytes(t *testing.T) {
	line := []byte(pad80("BITPIX  =                   16"))
	line[20] = 0x07
	_, err := ParseCard(line)
	require.Error(t, err)
	var target *InvalidCardBytesError
	require.ErrorAs(t, err, &target)
	require.Equal(t, 20, target.Offset)
}

func TestParseCardRejectsBadKeyword(t *testing.T) {
	_, err := ParseCard([]byte(pad80("bad key = 1")))
	require.Error(t, err)
}

func TestRenderCardRoundTrip(t *testing.T) {
	c := Card{Keyword: "NAXIS1", Value: IntValue(2), Comment: "length of axis 1"}
	line, err := RenderCard(c)
	require.NoError(t, err)
	require.Len(t, line, CardSize)

	parsed, err := ParseCard(line)
	require.NoError(t, err)
	require.Equal(t, c.Keyword, parsed.Keyword)
	require.Equal(t, c.Comment, parsed.Comment)
	n, _ := parsed.Value.AsInt()
	require.Equal(t, 2, n)
}

func TestRenderCardString(t *testing.T) {
	c := Card{Keyword: "EXTNAME", Value: StringValue("SCI")}
	line, err := RenderCard(c)
	require.NoError(t, err)
	parsed, err := ParseCard(line)
	require.NoError(t, err)
	s, ok := parsed.Value.AsString()
	require.True(t, ok)
	require.Equal(t, "SCI", s)
}

func TestRenderCardStringTooLong(t *testing.T) {
	c := Card{Keyword: "LONGVAL", Value: StringValue(strings.Repeat("x", 69))}
	_, err := RenderCard(c)
	require.Error(t, err)
}

// pad80 right-pads s with spaces to CardSize, for building literal test card
// lines without hand-counting columns.
func pad80(s string) string {
	if len(s) >= CardSize {
		return s[:CardSize]
	}
	return s + strings.Repeat(" ", CardSize-len(s))
}
