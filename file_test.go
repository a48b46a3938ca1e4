package fitsio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFileRejectsNonPrimaryFirst(t *testing.T) {
	cl := buildCardList(Card{Keyword: "XTENSION", Value: StringValue("IMAGE")})
	hdu := &HDU{Kind: KindImageExtension, Cards: cl, Bitpix: 8, Axes: nil}
	_, err := NewFile(hdu)
	require.Error(t, err)
}

func TestAppendHDUAndLookup(t *testing.T) {
	primary, err := WriteImage(8, nil, ImageData{Kind: ImgI8}, nil, nil, nil)
	require.NoError(t, err)

	f, err := NewFile(primary)
	require.NoError(t, err)

	extCards := []Card{{Keyword: "EXTNAME", Value: StringValue("SCI")}, {Keyword: "EXTVER", Value: IntValue(2)}}
	ext, err := WriteImageExtension(16, []int{2, 2}, ImageData{Kind: ImgI16, I16: []int16{1, 2, 3, 4}}, nil, nil, extCards)
	require.NoError(t, err)

	require.NoError(t, f.AppendHDU(ext))
	require.Equal(t, 2, f.Len())
	require.True(t, f.Has("SCI"))
	require.Equal(t, ext, f.Get("SCI"))
	require.Equal(t, ext, f.Version("SCI", 2))
	require.Nil(t, f.Version("SCI", 1))
}

func TestSerializeParseRoundTripIsByteIdentical(t *testing.T) {
	raw := buildScenarioAData(t)
	f, err := Parse(raw)
	require.NoError(t, err)

	out, err := f.Serialize()
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestSerializeAlwaysBlockAligned(t *testing.T) {
	hdu, err := WriteImage(32, []int{3}, ImageData{Kind: ImgI32, I32: []int32{1, 2, 3}}, nil, nil, nil)
	require.NoError(t, err)
	f, err := NewFile(hdu)
	require.NoError(t, err)

	out, err := f.Serialize()
	require.NoError(t, err)
	require.Zero(t, len(out)%BlockSize)
}

func TestMultiHDUParse(t *testing.T) {
	primary, err := WriteImage(8, nil, ImageData{Kind: ImgI8}, nil, nil, nil)
	require.NoError(t, err)
	ext, err := WriteImageExtension(16, []int{2}, ImageData{Kind: ImgI16, I16: []int16{5, 6}}, nil, nil, nil)
	require.NoError(t, err)

	f, err := NewFile(primary, ext)
	require.NoError(t, err)
	blob, err := f.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(blob)
	require.NoError(t, err)
	require.Equal(t, 2, parsed.Len())

	img, err := ReadImageRaw(parsed.HDU(1))
	require.NoError(t, err)
	require.Equal(t, []int16{5, 6}, img.I16)
}
