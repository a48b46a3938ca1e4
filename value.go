package fitsio

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the tagged Value type (spec §9: "a single tagged
// value type ... replaces any reliance on caller-side casts").
type ValueKind int

const (
	// VNone marks a commentary card (COMMENT/HISTORY/blank) with no value.
	VNone ValueKind = iota
	VLogical
	VInt
	VFloat
	VString
	VComplexInt
	VComplexFloat
)

// FloatTier records whether a floating-point value round-trips as single or
// double precision, so re-serializing a parsed header keeps the number of
// digits its tier is written with. The exponent letter is not kept: the
// writer always emits 'E'.
type FloatTier int

const (
	TierSingle FloatTier = iota
	TierDouble
)

// Value is the tagged union of every FITS header value variant.
type Value struct {
	Kind ValueKind

	Bool bool
	Int  int64

	Float float64
	Tier  FloatTier

	Str string

	// Re/Im hold complex components. For VComplexInt they are integral
	// (stored as float64 but always have a zero fractional part); for
	// VComplexFloat they carry Tier's precision.
	Re, Im float64
}

func LogicalValue(b bool) Value  { return Value{Kind: VLogical, Bool: b} }
func IntValue(v int64) Value     { return Value{Kind: VInt, Int: v} }
func StringValue(s string) Value { return Value{Kind: VString, Str: s} }

func FloatValue(v float64, tier FloatTier) Value {
	return Value{Kind: VFloat, Float: v, Tier: tier}
}

func ComplexIntValue(re, im int64) Value {
	return Value{Kind: VComplexInt, Re: float64(re), Im: float64(im)}
}

func ComplexFloatValue(re, im float64, tier FloatTier) Value {
	return Value{Kind: VComplexFloat, Re: re, Im: im, Tier: tier}
}

// AsFloat64 returns v's value widened to float64, for callers that accept
// any numeric variant (e.g. BSCALE/BZERO consumers). ok is false for
// non-numeric kinds.
func (v Value) AsFloat64() (f float64, ok bool) {
	switch v.Kind {
	case VInt:
		return float64(v.Int), true
	case VFloat:
		return v.Float, true
	}
	return 0, false
}

// AsInt returns v's value as an int, for callers expecting an integer-valued
// card (NAXIS, BITPIX, TFIELDS, ...). ok is false for non-integer kinds.
func (v Value) AsInt() (n int, ok bool) {
	if v.Kind != VInt {
		return 0, false
	}
	return int(v.Int), true
}

// AsString returns v's value as a string. ok is false for non-string kinds.
func (v Value) AsString() (s string, ok bool) {
	if v.Kind != VString {
		return "", false
	}
	return v.Str, true
}

// parseString consumes a single-quoted FITS string starting at s[0] == '\''
// and returns its unescaped content, the number of input bytes consumed, and
// an error if the string is unterminated. Embedded quotes are doubled
// ('' -> '); trailing spaces inside the quotes are significant only up to
// the last non-blank character (spec §3).
func parseString(s string) (content string, consumed int, err error) {
	if len(s) == 0 || s[0] != '\'' {
		return "", 0, fmt.Errorf("fitsio: string value does not start with a quote")
	}
	var buf strings.Builder
	i := 1
	for i < len(s) {
		if s[i] != '\'' {
			buf.WriteByte(s[i])
			i++
			continue
		}
		// s[i] == '\''
		if i+1 < len(s) && s[i+1] == '\'' {
			buf.WriteByte('\'')
			i += 2
			continue
		}
		// closing quote
		return strings.TrimRight(buf.String(), " "), i + 1, nil
	}
	return "", 0, fmt.Errorf("fitsio: unterminated string value")
}

// parseValueZone parses the value/comment zone (card bytes 10..79) of a
// value card (indicator == "= "). It returns the parsed Value and the
// trailing inline comment, if any.
func parseValueZone(zone string, key string) (Value, string, error) {
	i := 0
	for i < len(zone) && zone[i] == ' ' {
		i++
	}
	if i == len(zone) {
		// no value token: legal, means "value undefined"
		return Value{Kind: VNone}, "", nil
	}

	switch zone[i] {
	case '\'':
		content, n, err := parseString(zone[i:])
		if err != nil {
			return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
		}
		rest := zone[i+n:]
		return StringValue(content), extractComment(rest), nil

	case '(':
		end := strings.IndexByte(zone[i:], ')')
		if end < 0 {
			return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
		}
		inner := zone[i+1 : i+end]
		rest := zone[i+end+1:]
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
		}
		reTok := strings.TrimSpace(parts[0])
		imTok := strings.TrimSpace(parts[1])
		if isFloatToken(reTok) || isFloatToken(imTok) {
			re, err1 := parseFloatToken(reTok)
			im, err2 := parseFloatToken(imTok)
			if err1 != nil || err2 != nil {
				return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
			}
			tier := TierDouble
			if floatTokenTier(reTok) == TierSingle && floatTokenTier(imTok) == TierSingle {
				tier = TierSingle
			}
			return ComplexFloatValue(re, im, tier), extractComment(rest), nil
		}
		reI, err1 := strconv.ParseInt(reTok, 10, 64)
		imI, err2 := strconv.ParseInt(imTok, 10, 64)
		if err1 != nil || err2 != nil {
			return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
		}
		return ComplexIntValue(reI, imI), extractComment(rest), nil

	default:
		tok, rest := splitToken(zone[i:])
		switch {
		case tok == "T":
			return LogicalValue(true), extractComment(rest), nil
		case tok == "F":
			return LogicalValue(false), extractComment(rest), nil
		case isFloatToken(tok):
			f, err := parseFloatToken(tok)
			if err != nil {
				return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
			}
			return FloatValue(f, floatTokenTier(tok)), extractComment(rest), nil
		default:
			n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
			if err != nil {
				return Value{}, "", &InvalidValueError{Key: key, Raw: zone}
			}
			return IntValue(n), extractComment(rest), nil
		}
	}
}

// splitToken splits s at the first " /" (start of a trailing comment) or
// returns all of s as the token when no comment follows.
func splitToken(s string) (token, rest string) {
	if idx := strings.Index(s, " /"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), s[idx+1:]
	}
	return strings.TrimSpace(s), ""
}

// extractComment strips the leading "/" and surrounding space from a
// trailing comment fragment.
func extractComment(rest string) string {
	rest = strings.TrimLeft(rest, " ")
	if len(rest) == 0 {
		return ""
	}
	if rest[0] == '/' {
		rest = rest[1:]
	}
	return strings.TrimSpace(rest)
}

func isFloatToken(tok string) bool {
	return strings.ContainsAny(tok, ".eEdD")
}

// floatTokenTier infers single vs double precision from the exponent
// letter: a 'D' exponent (VAX/Fortran double convention) is double, an 'E'
// exponent is single unless its mantissa has more digits than the single
// tier is written with (1 + 13), and a bare decimal with no exponent
// defaults to double (the common case for FITS header floats).
func floatTokenTier(tok string) FloatTier {
	if strings.ContainsAny(tok, "dD") {
		return TierDouble
	}
	if e := strings.IndexAny(tok, "eE"); e >= 0 {
		digits := 0
		for _, c := range tok[:e] {
			if c >= '0' && c <= '9' {
				digits++
			}
		}
		if digits > 14 {
			return TierDouble
		}
		return TierSingle
	}
	return TierDouble
}

func parseFloatToken(tok string) (float64, error) {
	norm := strings.Map(func(r rune) rune {
		switch r {
		case 'd', 'D':
			return 'E'
		}
		return r
	}, tok)
	return strconv.ParseFloat(norm, 64)
}

// formatValueZone renders v (plus an optional trailing comment) into the
// fixed-format value/comment zone of a card (spec §4.2). The returned
// string is not yet padded or truncated to CardSize; the caller does that.
func formatValueZone(v Value, comment string) (string, error) {
	var field string
	switch v.Kind {
	case VNone:
		field = ""
	case VLogical:
		c := "F"
		if v.Bool {
			c = "T"
		}
		field = fmt.Sprintf("%20s", c)
	case VInt:
		field = fmt.Sprintf("%20d", v.Int)
	case VFloat:
		field = formatFixedFloat(v.Float, v.Tier)
	case VString:
		content := strings.ReplaceAll(v.Str, "'", "''")
		if len(content) > 68 {
			return "", fmt.Errorf("fitsio: string value too long for a single card (CONTINUE cards are not supported): %q", v.Str)
		}
		if len(content) < 8 {
			content = fmt.Sprintf("%-8s", content)
		}
		quoted := "'" + content + "'"
		field = fmt.Sprintf("%-20s", quoted)
	case VComplexInt:
		field = fmt.Sprintf("(%d,%d)", int64(v.Re), int64(v.Im))
	case VComplexFloat:
		field = fmt.Sprintf("(%s,%s)",
			strings.TrimSpace(formatFixedFloat(v.Re, v.Tier)),
			strings.TrimSpace(formatFixedFloat(v.Im, v.Tier)))
	default:
		return "", fmt.Errorf("fitsio: unknown value kind %v", v.Kind)
	}

	if comment == "" {
		return field, nil
	}
	return field + " / " + comment, nil
}

// formatFixedFloat renders f as a right-justified fixed-format exponential
// field at least 20 columns wide: 13 fractional digits for single precision
// (20 columns for a positive value with a two-digit exponent), 17 for double
// (23 columns for the same value) (spec §4.2). The exponent letter is always 'E' on write, per spec
// ("E emitted on write") even for values that were read with a 'D'.
func formatFixedFloat(f float64, tier FloatTier) string {
	prec := 13
	if tier == TierDouble {
		prec = 17
	}
	s := strconv.FormatFloat(f, 'E', prec, 64)
	// Go renders exponents as E+02; FITS fixed format is happy with that,
	// but always wants at least two exponent digits, which FormatFloat
	// already guarantees.
	return fmt.Sprintf("%20s", s)
}
