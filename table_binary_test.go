package fitsio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTFormScalar(t *testing.T) {
	f, err := ParseTForm("1J")
	require.NoError(t, err)
	require.Equal(t, int64(1), f.Repeat)
	require.Equal(t, byte('J'), f.Type)
	require.Equal(t, 4, f.byteWidth())
}

func TestParseTFormDefaultRepeat(t *testing.T) {
	f, err := ParseTForm("D")
	require.NoError(t, err)
	require.Equal(t, int64(1), f.Repeat)
	require.Equal(t, 8, f.byteWidth())
}

func TestParseTFormHeapDescriptor(t *testing.T) {
	f, err := ParseTForm("1PJ(400)")
	require.NoError(t, err)
	require.Equal(t, byte('P'), f.Type)
	require.Equal(t, byte('J'), f.Elem)
	require.Equal(t, 8, f.byteWidth())
}

func TestParseTFormRejectsGarbage(t *testing.T) {
	_, err := ParseTForm("")
	require.Error(t, err)
	_, err = ParseTForm("3Z")
	require.Error(t, err)
}

// buildScenarioCHDU assembles spec scenario C: a single-column 1J (i32)
// binary table with 3 rows.
func buildScenarioCHDU(t *testing.T) *HDU {
	t.Helper()
	cl := buildCardList(
		Card{Keyword: "XTENSION", Value: StringValue("BINTABLE")},
		Card{Keyword: "BITPIX", Value: IntValue(8)},
		Card{Keyword: "NAXIS", Value: IntValue(2)},
		Card{Keyword: "NAXIS1", Value: IntValue(4)},
		Card{Keyword: "NAXIS2", Value: IntValue(3)},
		Card{Keyword: "PCOUNT", Value: IntValue(0)},
		Card{Keyword: "GCOUNT", Value: IntValue(1)},
		Card{Keyword: "TFIELDS", Value: IntValue(1)},
		Card{Keyword: "TFORM1", Value: StringValue("1J")},
	)
	data := []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}
	return &HDU{Kind: KindBinaryTable, Cards: cl, Bitpix: 8, Axes: []int{4, 3}, Data: data}
}

func TestScenarioCBinaryTableColumn(t *testing.T) {
	h := buildScenarioCHDU(t)
	tbl, err := ReadBinaryTable(h)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NRows)
	require.Len(t, tbl.Columns, 1)

	col, err := tbl.ReadColumn(0)
	require.NoError(t, err)
	require.Equal(t, ColInt32, col.Kind)
	require.Equal(t, []int32{1, 2, 3}, col.Int32)
}

func TestBinaryTableWidthMismatchIsInvalidHeader(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "XTENSION", Value: StringValue("BINTABLE")},
		Card{Keyword: "NAXIS1", Value: IntValue(999)},
		Card{Keyword: "NAXIS2", Value: IntValue(3)},
		Card{Keyword: "TFIELDS", Value: IntValue(1)},
		Card{Keyword: "TFORM1", Value: StringValue("1J")},
	)
	h := &HDU{Kind: KindBinaryTable, Cards: cl, Bitpix: 8, Axes: []int{999, 3}}
	_, err := ReadBinaryTable(h)
	require.Error(t, err)
	var target *InvalidHeaderError
	require.ErrorAs(t, err, &target)
}

func TestBinaryTableHeapDescriptorColumn(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "XTENSION", Value: StringValue("BINTABLE")},
		Card{Keyword: "NAXIS1", Value: IntValue(8)},
		Card{Keyword: "NAXIS2", Value: IntValue(2)},
		Card{Keyword: "TFIELDS", Value: IntValue(1)},
		Card{Keyword: "TFORM1", Value: StringValue("1PJ")},
	)
	// Row 0: nelem=2, offset=0. Row 1: nelem=1, offset=8.
	data := []byte{
		0, 0, 0, 2, 0, 0, 0, 0,
		0, 0, 0, 1, 0, 0, 0, 8,
	}
	heap := []byte{
		0, 0, 0, 10, 0, 0, 0, 20, // row 0's 2 int32s
		0, 0, 0, 30, // row 1's 1 int32
	}
	h := &HDU{Kind: KindBinaryTable, Cards: cl, Bitpix: 8, Axes: []int{8, 2}, Data: append(data, heap...)}

	tbl, err := ReadBinaryTable(h)
	require.NoError(t, err)
	col, err := tbl.ReadColumn(0)
	require.NoError(t, err)
	require.Equal(t, ColArrayInt32, col.Kind)
	require.Equal(t, []int32{10, 20}, col.ArrayInt32[0])
	require.Equal(t, []int32{30}, col.ArrayInt32[1])
}

func TestBinaryTableHeapOutOfRange(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "XTENSION", Value: StringValue("BINTABLE")},
		Card{Keyword: "NAXIS1", Value: IntValue(8)},
		Card{Keyword: "NAXIS2", Value: IntValue(1)},
		Card{Keyword: "TFIELDS", Value: IntValue(1)},
		Card{Keyword: "TFORM1", Value: StringValue("1PJ")},
	)
	data := []byte{0, 0, 0, 5, 0, 0, 0, 0} // nelem=5 but no heap bytes follow
	h := &HDU{Kind: KindBinaryTable, Cards: cl, Bitpix: 8, Axes: []int{8, 1}, Data: data}

	tbl, err := ReadBinaryTable(h)
	require.NoError(t, err)
	_, err = tbl.ReadColumn(0)
	require.Error(t, err)
	var target *HeapOutOfRangeError
	require.ErrorAs(t, err, &target)
}

func TestBinaryTableComplexColumns(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "XTENSION", Value: StringValue("BINTABLE")},
		Card{Keyword: "NAXIS1", Value: IntValue(24)},
		Card{Keyword: "NAXIS2", Value: IntValue(1)},
		Card{Keyword: "TFIELDS", Value: IntValue(2)},
		Card{Keyword: "TFORM1", Value: StringValue("1C")},
		Card{Keyword: "TFORM2", Value: StringValue("1M")},
	)
	data := make([]byte, 24)
	writeF32BulkBE(data[0:4], []float32{1.5})
	writeF32BulkBE(data[4:8], []float32{-2.5})
	writeF64BulkBE(data[8:16], []float64{3.5})
	writeF64BulkBE(data[16:24], []float64{-4.5})
	h := &HDU{Kind: KindBinaryTable, Cards: cl, Bitpix: 8, Axes: []int{24, 1}, Data: data}

	tbl, err := ReadBinaryTable(h)
	require.NoError(t, err)

	col1, err := tbl.ReadColumn(0)
	require.NoError(t, err)
	require.Equal(t, ColComplex64, col1.Kind)
	require.Equal(t, []complex64{complex(float32(1.5), float32(-2.5))}, col1.Complex64)

	col2, err := tbl.ReadColumn(1)
	require.NoError(t, err)
	require.Equal(t, ColComplex128, col2.Kind)
	require.Equal(t, []complex128{complex(3.5, -4.5)}, col2.Complex128)
}

func TestWriteBinaryTableRoundTrip(t *testing.T) {
	cols := []BinaryColumn{{Name: "VAL", Form: TForm{Repeat: 1, Type: 'J'}}}
	rows := [][]byte{
		{0, 0, 0, 1},
		{0, 0, 0, 2},
	}
	hdu, err := WriteBinaryTable(cols, rows, nil)
	require.NoError(t, err)

	f, err := NewFile(
		func() *HDU {
			h, _ := WriteImage(8, nil, ImageData{Kind: ImgI8}, nil, nil, nil)
			return h
		}(),
		hdu,
	)
	require.NoError(t, err)
	blob, err := f.Serialize()
	require.NoError(t, err)

	f2, err := Parse(blob)
	require.NoError(t, err)
	tbl, err := ReadBinaryTable(f2.HDU(1))
	require.NoError(t, err)
	col, err := tbl.ReadColumn(0)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, col.Int32)
}
