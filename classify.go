package fitsio

import (
	"fmt"
	"strings"
)

// HDUKind discriminates the six HDU shapes recognized by spec §3.
type HDUKind int

const (
	KindPrimaryImage HDUKind = iota
	KindImageExtension
	KindASCIITable
	KindBinaryTable
	KindRandomGroups
	KindOther
)

func (k HDUKind) String() string {
	switch k {
	case KindPrimaryImage:
		return "PRIMARY"
	case KindImageExtension:
		return "IMAGE"
	case KindASCIITable:
		return "TABLE"
	case KindBinaryTable:
		return "BINTABLE"
	case KindRandomGroups:
		return "RANDOM_GROUPS"
	case KindOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// classifyHDU determines an HDU's kind from its first card, per spec §4.3:
// SIMPLE = T (with GROUPS = T, NAXIS1 = 0, PCOUNT > 0 further narrowing to
// random-groups) identifies a primary HDU; otherwise the first card must be
// XTENSION, whose trimmed string value selects IMAGE, TABLE, BINTABLE, or
// an unrecognized "other" extension.
func classifyHDU(cl *CardList, isFirst bool) (HDUKind, error) {
	if cl.Len() == 0 {
		return 0, &InvalidHeaderError{Issues: []error{fmt.Errorf("fitsio: empty header")}}
	}
	first := cl.cards[0]

	switch first.Keyword {
	case "SIMPLE":
		groups, _ := cl.boolValue("GROUPS")
		naxis1, hasN1 := cl.intValue("NAXIS1")
		pcount, _ := cl.intValue("PCOUNT")
		if groups && hasN1 && naxis1 == 0 && pcount > 0 {
			return KindRandomGroups, nil
		}
		return KindPrimaryImage, nil

	case "XTENSION":
		s, ok := first.Value.AsString()
		if !ok {
			return 0, &InvalidHeaderError{Issues: []error{fmt.Errorf("fitsio: XTENSION value is not a string")}}
		}
		switch strings.TrimRight(s, " ") {
		case "IMAGE":
			return KindImageExtension, nil
		case "TABLE":
			return KindASCIITable, nil
		case "BINTABLE":
			return KindBinaryTable, nil
		default:
			return KindOther, nil
		}

	default:
		return 0, &InvalidHeaderError{Issues: []error{
			fmt.Errorf("fitsio: header does not start with SIMPLE or XTENSION (got %q)", first.Keyword),
		}}
	}
}

// validateMandatoryKeywords checks that kind's required keywords are
// present, accumulating every violation rather than stopping at the first
// (spec §7 propagation policy), and returns them as a slice so the caller
// can wrap them in a single InvalidHeaderError.
func validateMandatoryKeywords(cl *CardList, kind HDUKind) []error {
	var issues []error
	require := func(name string) {
		if _, ok := cl.Get(name); !ok {
			issues = append(issues, &MissingKeywordError{Name: name})
		}
	}

	switch kind {
	case KindPrimaryImage, KindRandomGroups:
		require("SIMPLE")
		require("BITPIX")
		require("NAXIS")
	case KindImageExtension:
		require("XTENSION")
		require("BITPIX")
		require("NAXIS")
		require("PCOUNT")
		require("GCOUNT")
	case KindASCIITable, KindBinaryTable:
		require("XTENSION")
		require("NAXIS")
		require("TFIELDS")
		require("PCOUNT")
		require("GCOUNT")
	case KindOther:
		require("XTENSION")
	}

	if naxis, ok := cl.intValue("NAXIS"); ok {
		if naxis < 0 || naxis > 999 {
			issues = append(issues, fmt.Errorf("fitsio: NAXIS=%d out of range [0,999]", naxis))
		} else {
			for n := 1; n <= naxis; n++ {
				key := fmt.Sprintf("NAXIS%d", n)
				if v, ok := cl.intValue(key); !ok {
					issues = append(issues, &MissingKeywordError{Name: key})
				} else if v < 0 {
					issues = append(issues, fmt.Errorf("fitsio: %s=%d must be >= 0", key, v))
				}
			}
		}
	}

	if kind == KindASCIITable || kind == KindBinaryTable {
		if tf, ok := cl.intValue("TFIELDS"); ok {
			for n := 1; n <= tf; n++ {
				require(fmt.Sprintf("TFORM%d", n))
			}
		}
		if naxis, ok := cl.intValue("NAXIS"); ok && naxis != 2 {
			issues = append(issues, fmt.Errorf("fitsio: table NAXIS must be 2, got %d", naxis))
		}
	}

	return issues
}

// axesAndBitpix reads NAXIS/NAXISn/BITPIX from cl, validating invariant 4
// (BITPIX domain) and invariant 3's axis-range bound. It does not itself
// require SIMPLE/XTENSION/PCOUNT/GCOUNT to be present; callers validate
// those separately via validateMandatoryKeywords.
func axesAndBitpix(cl *CardList) (bitpix int, axes []int, err error) {
	bitpix, ok := cl.intValue("BITPIX")
	if !ok {
		return 0, nil, &MissingKeywordError{Name: "BITPIX"}
	}
	switch bitpix {
	case 8, 16, 32, 64, -32, -64:
	default:
		return 0, nil, &InvalidBitpixError{Value: bitpix}
	}

	naxis, ok := cl.intValue("NAXIS")
	if !ok {
		return 0, nil, &MissingKeywordError{Name: "NAXIS"}
	}
	if naxis < 0 || naxis > 999 {
		return 0, nil, fmt.Errorf("fitsio: NAXIS=%d out of range [0,999]", naxis)
	}

	axes = make([]int, naxis)
	for n := 1; n <= naxis; n++ {
		key := fmt.Sprintf("NAXIS%d", n)
		v, ok := cl.intValue(key)
		if !ok {
			return 0, nil, &MissingKeywordError{Name: key}
		}
		axes[n-1] = v
	}
	return bitpix, axes, nil
}

// dataUnitLength computes the byte length of the data unit preceding any
// block padding, from the generalized formula of spec invariant 3:
// GCOUNT * (PCOUNT + axis-product) * |BITPIX|/8. PCOUNT defaults to 0 and
// GCOUNT to 1 when absent, matching every HDU kind except random-groups
// (where both are mandatory and meaningful) and conforming-but-unclassified
// extensions (where the formula still applies to size the opaque span).
// For random groups (GROUPS = T with NAXIS1 = 0), NAXIS1 is left out of the
// axis product, which then sizes the array of one group.
func dataUnitLength(cl *CardList, bitpix int, axes []int) (int64, error) {
	pcount, _ := cl.intValue("PCOUNT")
	gcount, hasG := cl.intValue("GCOUNT")
	if !hasG {
		gcount = 1
	}
	if gcount < 0 || pcount < 0 {
		return 0, fmt.Errorf("fitsio: PCOUNT/GCOUNT must be non-negative (PCOUNT=%d GCOUNT=%d)", pcount, gcount)
	}

	product := int64(1)
	if len(axes) == 0 {
		product = 0
	}
	groupAxes := axes
	if groups, _ := cl.boolValue("GROUPS"); groups && len(axes) > 0 && axes[0] == 0 {
		groupAxes = axes[1:]
	}
	for _, n := range groupAxes {
		product *= int64(n)
	}

	elemBytes := bitpix
	if elemBytes < 0 {
		elemBytes = -elemBytes
	}
	elemBytes /= 8

	return int64(gcount) * (int64(pcount) + product) * int64(elemBytes), nil
}
