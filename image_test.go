package fitsio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildScenarioAData assembles the literal 5760-byte file from spec scenario
// A: a minimal 2x2 i16 primary image.
func buildScenarioAData(t *testing.T) []byte {
	t.Helper()
	cl := buildCardList(
		Card{Keyword: "SIMPLE", Value: LogicalValue(true)},
		Card{Keyword: "BITPIX", Value: IntValue(16)},
		Card{Keyword: "NAXIS", Value: IntValue(2)},
		Card{Keyword: "NAXIS1", Value: IntValue(2)},
		Card{Keyword: "NAXIS2", Value: IntValue(2)},
	)
	header, err := cl.RenderHeaderBlocks()
	require.NoError(t, err)
	require.Len(t, header, BlockSize)

	data := []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}
	data = appendPad(data, BlockSize-len(data), padDataByte)
	require.Len(t, data, BlockSize)

	out := append(append([]byte{}, header...), data...)
	require.Len(t, out, 5760)
	return out
}

func TestScenarioAParseAndRawRead(t *testing.T) {
	raw := buildScenarioAData(t)
	f, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())

	h := f.HDU(0)
	require.Equal(t, KindPrimaryImage, h.Kind)
	require.Equal(t, []int{2, 2}, h.Axes)

	img, err := ReadImageRaw(h)
	require.NoError(t, err)
	require.Equal(t, ImgI16, img.Kind)
	require.Equal(t, []int16{1, 2, 3, 4}, img.I16)
}

func TestScenarioBUnsignedRecovery(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "SIMPLE", Value: LogicalValue(true)},
		Card{Keyword: "BITPIX", Value: IntValue(16)},
		Card{Keyword: "NAXIS", Value: IntValue(2)},
		Card{Keyword: "NAXIS1", Value: IntValue(2)},
		Card{Keyword: "NAXIS2", Value: IntValue(2)},
		Card{Keyword: "BSCALE", Value: FloatValue(1.0, TierDouble)},
		Card{Keyword: "BZERO", Value: FloatValue(32768.0, TierDouble)},
	)
	h := &HDU{Kind: KindPrimaryImage, Cards: cl, Bitpix: 16, Axes: []int{2, 2},
		Data: []byte{0x80, 0x00, 0x80, 0x01, 0x7F, 0xFF, 0x00, 0x00}}

	img, err := ReadImagePhysical(h, DefaultPhysicalOptions())
	require.NoError(t, err)
	require.Equal(t, ImgU16, img.Kind)
	require.Equal(t, []uint16{32768, 32769, 32767, 0}, img.U16)
}

func TestPhysicalIdempotenceWhenBscaleOneBzeroZero(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "BSCALE", Value: FloatValue(1.0, TierDouble)},
		Card{Keyword: "BZERO", Value: FloatValue(0.0, TierDouble)},
	)
	h := &HDU{Kind: KindPrimaryImage, Cards: cl, Bitpix: 16, Axes: []int{2, 2},
		Data: []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}}

	raw, err := ReadImageRaw(h)
	require.NoError(t, err)
	phys, err := ReadImagePhysical(h, DefaultPhysicalOptions())
	require.NoError(t, err)
	require.Equal(t, ImgF64, phys.Kind)
	for i, v := range raw.I16 {
		require.Equal(t, float64(v), phys.F64[i])
	}
}

func TestScenarioERegionRead(t *testing.T) {
	h := &HDU{Kind: KindPrimaryImage, Bitpix: 16, Axes: []int{2, 2},
		Cards: buildCardList(),
		Data:  []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}}

	region, err := ReadImageRegion(h, []Range{{Lo: 1, Hi: 2}, {Lo: 0, Hi: 2}})
	require.NoError(t, err)
	require.Equal(t, []int16{2, 4}, region.I16)
}

func TestRegionEquivalenceWithFullRead(t *testing.T) {
	h := &HDU{Kind: KindPrimaryImage, Bitpix: 16, Axes: []int{2, 2},
		Cards: buildCardList(),
		Data:  []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}}

	full, err := ReadImageRaw(h)
	require.NoError(t, err)
	region, err := ReadImageRegion(h, []Range{{Lo: 0, Hi: 2}, {Lo: 0, Hi: 2}})
	require.NoError(t, err)
	require.Equal(t, full.I16, region.I16)
}

func TestRegionOutOfBounds(t *testing.T) {
	h := &HDU{Kind: KindPrimaryImage, Bitpix: 16, Axes: []int{2, 2},
		Cards: buildCardList(),
		Data:  []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}}

	_, err := ReadImageRegion(h, []Range{{Lo: 0, Hi: 3}, {Lo: 0, Hi: 2}})
	require.Error(t, err)
	var target *RegionOutOfBoundsError
	require.ErrorAs(t, err, &target)
}

func TestWriteImageRoundTrip(t *testing.T) {
	data := ImageData{Kind: ImgI16, I16: []int16{1, 2, 3, 4}}
	hdu, err := WriteImage(16, []int{2, 2}, data, nil, nil, nil)
	require.NoError(t, err)

	f, err := NewFile(hdu)
	require.NoError(t, err)
	blob, err := f.Serialize()
	require.NoError(t, err)
	require.Zero(t, len(blob)%BlockSize)

	f2, err := Parse(blob)
	require.NoError(t, err)
	img, err := ReadImageRaw(f2.HDU(0))
	require.NoError(t, err)
	require.Equal(t, []int16{1, 2, 3, 4}, img.I16)
}

func TestScenarioFShortFile(t *testing.T) {
	full := buildScenarioAData(t)
	truncated := full[:2879]

	_, err := Parse(truncated)
	require.Error(t, err)
	var target *UnexpectedEOFError
	require.ErrorAs(t, err, &target)
	require.Equal(t, 5760, target.Expected)
	require.Equal(t, 2879, target.Actual)
}
