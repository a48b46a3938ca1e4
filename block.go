package fitsio

// BlockSize is the fixed FITS block size in bytes. Every HDU, header region,
// and data region is a multiple of BlockSize.
const BlockSize = 2880

// CardSize is the fixed width in bytes of a single header card.
const CardSize = 80

// CardsPerBlock is the number of 80-byte cards packed into one 2880-byte block.
const CardsPerBlock = BlockSize / CardSize

// padHeaderByte and padDataByte are the pad-fill bytes mandated for header
// and data regions respectively.
const (
	padHeaderByte byte = 0x20 // ASCII space
	padDataByte   byte = 0x00 // NUL
)

// padBlock returns the number of bytes needed to align sz up to the next
// multiple of BlockSize. It returns 0 if sz is already block-aligned.
func padBlock(sz int) int {
	r := sz % BlockSize
	if r == 0 {
		return 0
	}
	return BlockSize - r
}

// alignBlock returns sz rounded up to the next multiple of BlockSize.
func alignBlock(sz int) int {
	return sz + padBlock(sz)
}

// appendPad appends n copies of fill to buf and returns the result.
func appendPad(buf []byte, n int, fill byte) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, fill)
	}
	return buf
}
