package fitsio

// HDU is one Header-Data Unit: a classified, validated header plus the
// contiguous data-unit byte range it describes. Data holds exactly the
// logical (pre-padding) data bytes — callers never see the trailing NUL
// pad. On a parsed file, Data aliases the backing byte slice handed to
// Parse; on a constructed HDU it is owned by the HDU.
type HDU struct {
	Kind   HDUKind
	Cards  *CardList
	Bitpix int
	Axes   []int
	Data   []byte
}

// newHDUHeader classifies cl, validates its mandatory keywords (spec §4.3),
// and computes BITPIX/axes. It does not slice a data range; the caller
// (Parse, or a typed constructor such as WriteImage) is responsible for
// populating Data once the data-unit length is known.
func newHDUHeader(cl *CardList, isFirst bool) (*HDU, error) {
	kind, err := classifyHDU(cl, isFirst)
	if err != nil {
		return nil, err
	}
	if issues := validateMandatoryKeywords(cl, kind); len(issues) > 0 {
		return nil, &InvalidHeaderError{Issues: issues}
	}

	var bitpix int
	var axes []int
	switch kind {
	case KindPrimaryImage, KindImageExtension, KindRandomGroups:
		bitpix, axes, err = axesAndBitpix(cl)
		if err != nil {
			return nil, err
		}
	case KindASCIITable, KindBinaryTable:
		bitpix = 8
		naxis1, _ := cl.intValue("NAXIS1")
		naxis2, _ := cl.intValue("NAXIS2")
		axes = []int{naxis1, naxis2}
	case KindOther:
		bitpix, axes, err = axesAndBitpix(cl)
		if err != nil {
			// conforming-but-unclassified headers are preserved verbatim
			// even when they don't carry an image-shaped BITPIX/NAXIS;
			// fall back to an opaque span of GCOUNT*PCOUNT bytes (zero
			// when PCOUNT is absent).
			bitpix = 8
			axes = nil
		}
	}

	return &HDU{Kind: kind, Cards: cl, Bitpix: bitpix, Axes: axes}, nil
}

// Name returns the HDU's EXTNAME, or HDUNAME if EXTNAME is absent, or "" if
// neither is present (spec §4.7: "Lookup by name scans EXTNAME ... and
// HDUNAME (aliased)").
func (h *HDU) Name() string {
	if s, ok := h.Cards.stringValue("EXTNAME"); ok {
		return s
	}
	if s, ok := h.Cards.stringValue("HDUNAME"); ok {
		return s
	}
	return ""
}

// Version returns the HDU's EXTVER, defaulting to 1 when absent, matching
// CFITSIO/teacher convention for disambiguating HDUs that share EXTNAME.
func (h *HDU) Version() int {
	if v, ok := h.Cards.intValue("EXTVER"); ok {
		return v
	}
	return 1
}

// axisOrZero returns the length of axis n (1-based, so n=1 is NAXIS1), or 0
// when the HDU has fewer than n axes.
func (h *HDU) axisOrZero(n int) int {
	if n-1 < 0 || n-1 >= len(h.Axes) {
		return 0
	}
	return h.Axes[n-1]
}
