package fitsio

import (
	"fmt"

	"github.com/coldforge/fitsio/internal/bufpool"
)

var regionPool = bufpool.New()

// ImageKind discriminates the tagged ImageData variants: the six raw
// BITPIX-driven storage types, plus the three unsigned-recovery types
// produced by physical reads (spec §4.4).
type ImageKind int

const (
	ImgI8 ImageKind = iota
	ImgI16
	ImgI32
	ImgI64
	ImgF32
	ImgF64
	ImgU16
	ImgU32
	ImgU64
)

// ImageData is the tagged union returned by every image read. Exactly one
// of the slices matching Kind is populated.
type ImageData struct {
	Kind ImageKind

	I8  []uint8
	I16 []int16
	I32 []int32
	I64 []int64
	F32 []float32
	F64 []float64
	U16 []uint16
	U32 []uint32
	U64 []uint64
}

// Len returns the number of elements in the populated slice.
func (d ImageData) Len() int {
	switch d.Kind {
	case ImgI8:
		return len(d.I8)
	case ImgI16:
		return len(d.I16)
	case ImgI32:
		return len(d.I32)
	case ImgI64:
		return len(d.I64)
	case ImgF32:
		return len(d.F32)
	case ImgF64:
		return len(d.F64)
	case ImgU16:
		return len(d.U16)
	case ImgU32:
		return len(d.U32)
	case ImgU64:
		return len(d.U64)
	}
	return 0
}

// elemBytes returns |bitpix|/8.
func elemBytes(bitpix int) int {
	if bitpix < 0 {
		bitpix = -bitpix
	}
	return bitpix / 8
}

// axisProduct returns the product of axes, or 0 if axes is empty (a
// zero-dimensional "image", i.e. NAXIS=0).
func axisProduct(axes []int) int64 {
	if len(axes) == 0 {
		return 0
	}
	p := int64(1)
	for _, n := range axes {
		p *= int64(n)
	}
	return p
}

// ReadImageRaw decodes an HDU's data unit into its stored (uncalibrated)
// typed array, dispatching on BITPIX (spec §4.4).
func ReadImageRaw(h *HDU) (ImageData, error) {
	want := elemBytes(h.Bitpix) * int(axisProduct(h.Axes))
	if len(h.Data) < want {
		return ImageData{}, &UnexpectedEOFError{Expected: want, Actual: len(h.Data)}
	}
	raw := h.Data[:want]

	switch h.Bitpix {
	case 8:
		buf := make([]uint8, len(raw))
		copy(buf, raw)
		return ImageData{Kind: ImgI8, I8: buf}, nil
	case 16:
		return ImageData{Kind: ImgI16, I16: swapI16BulkBE(raw)}, nil
	case 32:
		return ImageData{Kind: ImgI32, I32: swapI32BulkBE(raw)}, nil
	case 64:
		return ImageData{Kind: ImgI64, I64: swapI64BulkBE(raw)}, nil
	case -32:
		return ImageData{Kind: ImgF32, F32: swapF32BulkBE(raw)}, nil
	case -64:
		return ImageData{Kind: ImgF64, F64: swapF64BulkBE(raw)}, nil
	default:
		return ImageData{}, &InvalidBitpixError{Value: h.Bitpix}
	}
}

// PhysicalOptions configures how ReadImagePhysical maps stored values to
// physical ones (spec §9 design note: "{apply_bscale_bzero, recover_unsigned}").
type PhysicalOptions struct {
	ApplyBscaleBzero bool
	RecoverUnsigned  bool
}

// DefaultPhysicalOptions returns the spec's default: both options enabled.
func DefaultPhysicalOptions() PhysicalOptions {
	return PhysicalOptions{ApplyBscaleBzero: true, RecoverUnsigned: true}
}

// ReadImagePhysical applies BSCALE/BZERO calibration to the raw array. With
// neither card present, or with ApplyBscaleBzero disabled, it returns the
// same result as ReadImageRaw. With RecoverUnsigned enabled, the three
// BITPIX/BZERO/BSCALE combinations the spec recognizes as unsigned-integer
// storage conventions (16-, 32-, and 64-bit) are recovered as their
// corresponding unsigned type instead of being widened to F64; every other
// combination (including bscale=1,bzero=0, which is an identity transform
// — testable property 3) produces F64.
func ReadImagePhysical(h *HDU, opts PhysicalOptions) (ImageData, error) {
	raw, err := ReadImageRaw(h)
	if err != nil {
		return ImageData{}, err
	}

	if !opts.ApplyBscaleBzero {
		return raw, nil
	}

	bzeroCard, hasZero := h.Cards.Get("BZERO")
	bscaleCard, hasScale := h.Cards.Get("BSCALE")
	if !hasZero && !hasScale {
		return raw, nil
	}

	bzero, bzeroOK := bzeroCard.Value.AsFloat64()
	if hasZero && !bzeroOK {
		return ImageData{}, &InvalidValueError{Key: "BZERO"}
	}
	bscale, bscaleOK := 1.0, true
	if hasScale {
		bscale, bscaleOK = bscaleCard.Value.AsFloat64()
		if !bscaleOK {
			return ImageData{}, &InvalidValueError{Key: "BSCALE"}
		}
	}

	if opts.RecoverUnsigned {
		switch {
		case h.Bitpix == 16 && bzero == 32768 && bscale == 1:
			out := make([]uint16, len(raw.I16))
			for i, v := range raw.I16 {
				out[i] = uint16(v)
			}
			return ImageData{Kind: ImgU16, U16: out}, nil
		case h.Bitpix == 32 && bzero == 2147483648 && bscale == 1:
			out := make([]uint32, len(raw.I32))
			for i, v := range raw.I32 {
				out[i] = uint32(v)
			}
			return ImageData{Kind: ImgU32, U32: out}, nil
		case h.Bitpix == 64 && bzero == 9223372036854775808 && bscale == 1:
			out := make([]uint64, len(raw.I64))
			for i, v := range raw.I64 {
				out[i] = uint64(v)
			}
			return ImageData{Kind: ImgU64, U64: out}, nil
		}
	}

	n := raw.Len()
	out := make([]float64, n)
	switch raw.Kind {
	case ImgI8:
		for i, v := range raw.I8 {
			out[i] = bzero + bscale*float64(v)
		}
	case ImgI16:
		for i, v := range raw.I16 {
			out[i] = bzero + bscale*float64(v)
		}
	case ImgI32:
		for i, v := range raw.I32 {
			out[i] = bzero + bscale*float64(v)
		}
	case ImgI64:
		for i, v := range raw.I64 {
			out[i] = bzero + bscale*float64(v)
		}
	case ImgF32:
		for i, v := range raw.F32 {
			out[i] = bzero + bscale*float64(v)
		}
	case ImgF64:
		for i, v := range raw.F64 {
			out[i] = bzero + bscale*v
		}
	}
	return ImageData{Kind: ImgF64, F64: out}, nil
}

// Range is a half-open, 0-based axis range [Lo, Hi) used by ReadImageRegion.
type Range struct {
	Lo, Hi int
}

// computeStripes validates ranges against axes and returns the element
// offsets and lengths of every contiguous stripe along axis 0 (the
// fastest-varying axis) a region request touches, in the Fortran/
// column-major iteration order the region result must preserve (spec
// §4.4).
func computeStripes(axes []int, ranges []Range) ([][2]int, error) {
	if len(ranges) != len(axes) {
		return nil, fmt.Errorf("fitsio: region has %d range(s), image has %d axes", len(ranges), len(axes))
	}
	for i, r := range ranges {
		if r.Lo < 0 || r.Hi < r.Lo || r.Hi > axes[i] {
			return nil, &RegionOutOfBoundsError{Axis: i, Lo: r.Lo, Hi: r.Hi, Naxis: axes[i]}
		}
	}
	if len(axes) == 0 {
		return [][2]int{{0, 0}}, nil
	}

	n := len(axes)
	strides := make([]int, n)
	strides[0] = 1
	for k := 1; k < n; k++ {
		strides[k] = strides[k-1] * axes[k-1]
	}

	stripeLen := ranges[0].Hi - ranges[0].Lo
	dims := make([]int, n-1)
	total := 1
	for k := 1; k < n; k++ {
		dims[k-1] = ranges[k].Hi - ranges[k].Lo
		total *= dims[k-1]
	}

	stripes := make([][2]int, 0, total)
	idx := make([]int, n-1)
	for it := 0; it < total; it++ {
		offset := ranges[0].Lo
		for k := 1; k < n; k++ {
			offset += (ranges[k].Lo + idx[k-1]) * strides[k]
		}
		stripes = append(stripes, [2]int{offset, stripeLen})
		for k := 0; k < len(idx); k++ {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
		}
	}
	return stripes, nil
}

// ReadImageRegion reads an axis-aligned sub-region of the raw image array,
// copying only the contiguous byte stripes the region touches rather than
// decoding the whole array (spec §4.4). The result equals the
// corresponding slice of ReadImageRaw's output (testable property 6).
func ReadImageRegion(h *HDU, ranges []Range) (ImageData, error) {
	stripes, err := computeStripes(h.Axes, ranges)
	if err != nil {
		return ImageData{}, err
	}

	es := elemBytes(h.Bitpix)
	scratch := regionPool.Get()
	defer regionPool.Put(scratch)
	for _, s := range stripes {
		off, n := s[0]*es, s[1]*es
		if off+n > len(h.Data) {
			return ImageData{}, &UnexpectedEOFError{Expected: off + n, Actual: len(h.Data)}
		}
		scratch.Append(h.Data[off : off+n])
	}
	raw := scratch.B

	switch h.Bitpix {
	case 8:
		buf := make([]uint8, len(raw))
		copy(buf, raw)
		return ImageData{Kind: ImgI8, I8: buf}, nil
	case 16:
		return ImageData{Kind: ImgI16, I16: swapI16BulkBE(raw)}, nil
	case 32:
		return ImageData{Kind: ImgI32, I32: swapI32BulkBE(raw)}, nil
	case 64:
		return ImageData{Kind: ImgI64, I64: swapI64BulkBE(raw)}, nil
	case -32:
		return ImageData{Kind: ImgF32, F32: swapF32BulkBE(raw)}, nil
	case -64:
		return ImageData{Kind: ImgF64, F64: swapF64BulkBE(raw)}, nil
	default:
		return ImageData{}, &InvalidBitpixError{Value: h.Bitpix}
	}
}

// WriteImage builds a primary-HDU image: its header cards are SIMPLE,
// BITPIX, NAXIS, each NAXISn, optional BSCALE/BZERO, then extraCards, and
// its Data is the big-endian data array (spec §4.4). The END card and the
// block padding of both regions are added when the HDU is serialized
// (File.Serialize). data's element count must equal the product of axes.
func WriteImage(bitpix int, axes []int, data ImageData, bzero, bscale *float64, extraCards []Card) (*HDU, error) {
	return buildImageHDU(KindPrimaryImage, bitpix, axes, data, bzero, bscale, extraCards)
}

// WriteImageExtension builds an IMAGE-extension HDU with the same shape as
// WriteImage, except that XTENSION='IMAGE' replaces SIMPLE and PCOUNT=0,
// GCOUNT=1 follow the NAXISn cards.
func WriteImageExtension(bitpix int, axes []int, data ImageData, bzero, bscale *float64, extraCards []Card) (*HDU, error) {
	return buildImageHDU(KindImageExtension, bitpix, axes, data, bzero, bscale, extraCards)
}

func buildImageHDU(kind HDUKind, bitpix int, axes []int, data ImageData, bzero, bscale *float64, extraCards []Card) (*HDU, error) {
	switch bitpix {
	case 8, 16, 32, 64, -32, -64:
	default:
		return nil, &InvalidBitpixError{Value: bitpix}
	}

	n := int(axisProduct(axes))
	if data.Len() != n {
		return nil, fmt.Errorf("fitsio: image data has %d elements, axes require %d", data.Len(), n)
	}

	es := elemBytes(bitpix)
	raw := make([]byte, n*es)
	switch bitpix {
	case 8:
		if data.Kind != ImgI8 {
			return nil, fmt.Errorf("fitsio: BITPIX=8 requires I8 data, got kind %v", data.Kind)
		}
		copy(raw, data.I8)
	case 16:
		if data.Kind != ImgI16 {
			return nil, fmt.Errorf("fitsio: BITPIX=16 requires I16 data, got kind %v", data.Kind)
		}
		writeI16BulkBE(raw, data.I16)
	case 32:
		if data.Kind != ImgI32 {
			return nil, fmt.Errorf("fitsio: BITPIX=32 requires I32 data, got kind %v", data.Kind)
		}
		writeI32BulkBE(raw, data.I32)
	case 64:
		if data.Kind != ImgI64 {
			return nil, fmt.Errorf("fitsio: BITPIX=64 requires I64 data, got kind %v", data.Kind)
		}
		writeI64BulkBE(raw, data.I64)
	case -32:
		if data.Kind != ImgF32 {
			return nil, fmt.Errorf("fitsio: BITPIX=-32 requires F32 data, got kind %v", data.Kind)
		}
		writeF32BulkBE(raw, data.F32)
	case -64:
		if data.Kind != ImgF64 {
			return nil, fmt.Errorf("fitsio: BITPIX=-64 requires F64 data, got kind %v", data.Kind)
		}
		writeF64BulkBE(raw, data.F64)
	}

	cl := &CardList{}
	switch kind {
	case KindPrimaryImage:
		cl.Append(Card{Keyword: "SIMPLE", Value: LogicalValue(true), Comment: "conforms to the FITS standard"})
	case KindImageExtension:
		cl.Append(Card{Keyword: "XTENSION", Value: StringValue("IMAGE"), Comment: "image extension"})
	}
	cl.Append(Card{Keyword: "BITPIX", Value: IntValue(int64(bitpix)), Comment: "number of bits per data pixel"})
	cl.Append(Card{Keyword: "NAXIS", Value: IntValue(int64(len(axes))), Comment: "number of data axes"})
	for i, ax := range axes {
		cl.Append(Card{Keyword: fmt.Sprintf("NAXIS%d", i+1), Value: IntValue(int64(ax)), Comment: fmt.Sprintf("length of data axis %d", i+1)})
	}
	if kind == KindImageExtension {
		cl.Append(Card{Keyword: "PCOUNT", Value: IntValue(0), Comment: "parameter count"})
		cl.Append(Card{Keyword: "GCOUNT", Value: IntValue(1), Comment: "group count"})
	}
	if bscale != nil {
		cl.Append(Card{Keyword: "BSCALE", Value: FloatValue(*bscale, TierDouble), Comment: "linear scaling factor"})
	}
	if bzero != nil {
		cl.Append(Card{Keyword: "BZERO", Value: FloatValue(*bzero, TierDouble), Comment: "zero point of scaling"})
	}
	for _, c := range extraCards {
		cl.Append(c)
	}

	return &HDU{Kind: kind, Cards: cl, Bitpix: bitpix, Axes: append([]int(nil), axes...), Data: raw}, nil
}
