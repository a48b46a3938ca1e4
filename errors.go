package fitsio

import (
	"fmt"
	"strings"
)

// InvalidCardBytesError reports a header card containing bytes outside the
// legal printable ASCII range 0x20..0x7E.
type InvalidCardBytesError struct {
	Offset int
	Bytes  []byte
}

func (e *InvalidCardBytesError) Error() string {
	return fmt.Sprintf("fitsio: invalid card bytes at offset %d: %q", e.Offset, e.Bytes)
}

// MissingKeywordError reports a mandatory keyword absent from a header.
type MissingKeywordError struct {
	Name string
}

func (e *MissingKeywordError) Error() string {
	return fmt.Sprintf("fitsio: missing mandatory keyword %q", e.Name)
}

// InvalidBitpixError reports a BITPIX value outside {8,16,32,64,-32,-64}.
type InvalidBitpixError struct {
	Value int
}

func (e *InvalidBitpixError) Error() string {
	return fmt.Sprintf("fitsio: invalid BITPIX value %d", e.Value)
}

// InvalidValueError reports a header value that failed to parse under any
// recognized grammar variant.
type InvalidValueError struct {
	Key string
	Raw string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("fitsio: invalid value for keyword %q: %q", e.Key, e.Raw)
}

// UnsupportedTFormError reports a TFORMn string that does not match the
// binary or ASCII table grammar.
type UnsupportedTFormError struct {
	Raw string
}

func (e *UnsupportedTFormError) Error() string {
	return fmt.Sprintf("fitsio: unsupported TFORM %q", e.Raw)
}

// UnsupportedExtensionError reports an unrecognized XTENSION value that
// carries a non-empty data unit this core cannot interpret.
type UnsupportedExtensionError struct {
	XTension string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("fitsio: unsupported extension type %q", e.XTension)
}

// UnexpectedEOFError reports a short read within a block or data unit.
type UnexpectedEOFError struct {
	Expected int
	Actual   int
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("fitsio: unexpected EOF: expected %d bytes, got %d", e.Expected, e.Actual)
}

// HeapOutOfRangeError reports a P/Q descriptor pointing outside the
// binary-table heap.
type HeapOutOfRangeError struct {
	Column int
	Row    int
	Offset int64
	Nelem  int64
	Heap   int
}

func (e *HeapOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"fitsio: heap out of range: column %d row %d wants offset %d nelem %d, heap size %d",
		e.Column, e.Row, e.Offset, e.Nelem, e.Heap,
	)
}

// RegionOutOfBoundsError reports a sub-region request outside an axis's bounds.
type RegionOutOfBoundsError struct {
	Axis  int
	Lo    int
	Hi    int
	Naxis int
}

func (e *RegionOutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"fitsio: region out of bounds on axis %d: [%d,%d) outside [0,%d]",
		e.Axis, e.Lo, e.Hi, e.Naxis,
	)
}

// IntegrityViolationError reports a size inconsistent with the bytes
// actually supplied. WriteBinaryTable and WriteASCIITable return it for a
// row whose length differs from the row width the columns define.
type IntegrityViolationError struct {
	Expected int64
	Actual   int64
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("fitsio: integrity violation: computed size %d, file provides %d", e.Expected, e.Actual)
}

// InvalidHeaderError aggregates every violation found while validating a
// single HDU's header or table layout: missing mandatory keywords,
// out-of-range NAXIS values, and inconsistent table column widths or
// positions. Keyword order is not checked. Validation runs to completion
// and reports the full list rather than aborting on the first violation
// (see spec §7 propagation policy).
type InvalidHeaderError struct {
	Issues []error
}

func (e *InvalidHeaderError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		msgs[i] = iss.Error()
	}
	return fmt.Sprintf("fitsio: invalid header (%d issue(s)): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual issues so callers can use errors.As/errors.Is
// against a specific violation within the aggregate.
func (e *InvalidHeaderError) Unwrap() []error {
	return e.Issues
}
