package fitsio

import (
	"fmt"

	"github.com/coldforge/fitsio/internal/bufpool"
)

var serializePool = bufpool.New()

// File is a fully-parsed or assembled sequence of HDUs (spec §4.7: "HDU
// sequence"). It owns no filesystem handle and no I/O resource: Parse and
// Serialize operate entirely on byte slices, matching §1's "no operating
// system services" requirement.
type File struct {
	hdus []*HDU
}

// NewFile assembles a File from caller-constructed HDUs, in order. The
// first HDU must be a primary (image or random-groups) HDU.
func NewFile(hdus ...*HDU) (*File, error) {
	if len(hdus) == 0 {
		return &File{}, nil
	}
	switch hdus[0].Kind {
	case KindPrimaryImage, KindRandomGroups:
	default:
		return nil, fmt.Errorf("fitsio: first HDU must be a primary HDU, got %v", hdus[0].Kind)
	}
	return &File{hdus: append([]*HDU(nil), hdus...)}, nil
}

// Parse decodes a complete FITS byte stream into an ordered HDU sequence.
// Each HDU's header is read card-by-card through END, classified, and used
// to compute the data unit's exact byte extent (spec §4.3, invariant 3);
// the data bytes are then sliced (not copied) from data, and parsing
// resumes at the next block boundary. EOF exactly at an HDU boundary is a
// clean stop. A shortfall after the END card has been read is reported as
// UnexpectedEOFError with the full padded extent this HDU requires and what
// was actually available (spec §8 scenario F); a header cut off before its
// END card reports the bytes needed through the card that is cut off.
func Parse(data []byte) (*File, error) {
	var hdus []*HDU
	pos := 0
	isFirst := true

	for pos < len(data) {
		hduStart := pos

		cards, cardsConsumed, err := readCardsUntilEnd(data, pos)
		if err != nil {
			return nil, err
		}

		cl := NewCardList(cards...)
		hdu, err := newHDUHeader(cl, isFirst)
		if err != nil {
			return nil, err
		}

		dataLen, err := dataUnitLength(cl, hdu.Bitpix, hdu.Axes)
		if err != nil {
			return nil, err
		}

		headerBlockLen := alignBlock(cardsConsumed)
		dataBlockLen := alignBlock(int(dataLen))
		totalExtent := headerBlockLen + dataBlockLen
		available := len(data) - hduStart

		if totalExtent > available {
			return nil, &UnexpectedEOFError{Expected: totalExtent, Actual: available}
		}

		dataStart := hduStart + headerBlockLen
		hdu.Data = data[dataStart : dataStart+int(dataLen)]

		pos = dataStart + dataBlockLen
		hdus = append(hdus, hdu)
		isFirst = false
	}

	return &File{hdus: hdus}, nil
}

// Len returns the number of HDUs in the file.
func (f *File) Len() int { return len(f.hdus) }

// HDUs returns every HDU, in order. Index 0 is always the primary HDU.
func (f *File) HDUs() []*HDU { return f.hdus }

// HDU returns the i-th HDU (0-based; index 0 is the primary HDU). It
// panics if i is out of range, matching the teacher's HDU(i) contract.
func (f *File) HDU(i int) *HDU { return f.hdus[i] }

// Get returns the first HDU whose Name (its EXTNAME, or its HDUNAME when
// EXTNAME is absent) equals name, compared case-sensitively (spec §4.7), or
// nil if none matches.
func (f *File) Get(name string) *HDU {
	for _, h := range f.hdus {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// Version returns the first HDU whose Name equals name and whose
// EXTVER equals version, or nil if none matches. version 1 also matches an
// HDU with no EXTVER card, per the EXTVER-defaults-to-1 convention.
func (f *File) Version(name string, version int) *HDU {
	for _, h := range f.hdus {
		if h.Name() == name && h.Version() == version {
			return h
		}
	}
	return nil
}

// Has reports whether an HDU named name exists.
func (f *File) Has(name string) bool {
	return f.Get(name) != nil
}

// AppendHDU appends hdu to the file. It is the byte-slice-native
// replacement for the teacher's stream-oriented File.Write/CopyHDU: since
// this codec has no encoder/decoder object bound to an io.Writer, building
// a new file (or copying HDUs out of one already-parsed file into another)
// is just list append followed by a single Serialize call.
func (f *File) AppendHDU(hdu *HDU) error {
	if len(f.hdus) == 0 {
		switch hdu.Kind {
		case KindPrimaryImage, KindRandomGroups:
		default:
			return fmt.Errorf("fitsio: first HDU must be a primary HDU, got %v", hdu.Kind)
		}
	}
	f.hdus = append(f.hdus, hdu)
	return nil
}

// Serialize renders every HDU's header and (padded) data unit, in order,
// into a single owned byte slice. Card order and comment text survive
// Parse, but each value card is re-rendered from its parsed value in this
// package's fixed format (RenderCard), so parsing and re-serializing
// reproduces the input byte for byte only when its cards were already
// written in that format. Other spellings of a value (a float written as
// 1.0, a 'D' exponent, different spacing before an inline comment) come
// out in the writer's format.
func (f *File) Serialize() ([]byte, error) {
	scratch := serializePool.Get()
	defer serializePool.Put(scratch)

	for _, hdu := range f.hdus {
		header, err := hdu.Cards.RenderHeaderBlocks()
		if err != nil {
			return nil, err
		}
		scratch.Append(header)
		scratch.Append(hdu.Data)
		scratch.B = appendPad(scratch.B, padBlock(len(hdu.Data)), padDataByte)
	}

	out := make([]byte, len(scratch.B))
	copy(out, scratch.B)
	return out, nil
}
