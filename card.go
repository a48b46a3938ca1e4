package fitsio

import (
	"fmt"
	"strings"
)

// Card is a single 80-byte header record: a keyword, its typed value (zero
// value VNone for commentary cards), and a trailing comment.
type Card struct {
	Keyword string
	Value   Value
	Comment string
}

// isCommentaryKeyword reports whether keyword identifies a commentary card
// (COMMENT, HISTORY, or blank) rather than a value card.
func isCommentaryKeyword(keyword string) bool {
	switch keyword {
	case "", "COMMENT", "HISTORY":
		return true
	}
	return false
}

// validateKeyword enforces spec invariant 7: keyword names are uppercase
// [A-Z0-9_-]{1,8}.
func validateKeyword(keyword string) error {
	if len(keyword) == 0 || len(keyword) > 8 {
		return fmt.Errorf("fitsio: keyword %q must be 1-8 characters", keyword)
	}
	for _, c := range keyword {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return fmt.Errorf("fitsio: keyword %q contains illegal character %q", keyword, c)
		}
	}
	return nil
}

// ParseCard decodes one 80-byte line into a Card. Control characters
// outside the printable ASCII range 0x20..0x7E are rejected per spec §4.2.
func ParseCard(line []byte) (Card, error) {
	if len(line) != CardSize {
		return Card{}, fmt.Errorf("fitsio: card line must be %d bytes, got %d", CardSize, len(line))
	}
	for i, b := range line {
		if b < 0x20 || b > 0x7E {
			return Card{}, &InvalidCardBytesError{Offset: i, Bytes: line}
		}
	}

	keyword := strings.TrimRight(string(line[0:8]), " ")

	if keyword == "END" {
		return Card{Keyword: "END"}, nil
	}

	indicator := string(line[8:10])
	if indicator == "= " && !isCommentaryKeyword(keyword) {
		if err := validateKeyword(keyword); err != nil {
			return Card{}, err
		}
		v, comment, err := parseValueZone(string(line[10:80]), keyword)
		if err != nil {
			return Card{}, err
		}
		return Card{Keyword: keyword, Value: v, Comment: comment}, nil
	}

	// Commentary card: COMMENT, HISTORY, blank keyword, or a keyword whose
	// bytes 8-9 are not the value indicator. The whole of bytes 8-79 is
	// free text.
	if keyword != "" {
		if err := validateKeyword(keyword); err != nil {
			return Card{}, err
		}
	}
	comment := strings.TrimRight(string(line[8:80]), " ")
	return Card{Keyword: keyword, Comment: comment}, nil
}

// RenderCard encodes c into a CardSize-byte line, space-padded per spec
// §4.2. It returns an error if the keyword is malformed or the value does
// not fit within a single card (this codec does not write CONTINUE cards;
// see non-goals).
func RenderCard(c Card) ([]byte, error) {
	if c.Keyword == "END" {
		line := make([]byte, CardSize)
		for i := range line {
			line[i] = padHeaderByte
		}
		copy(line, "END")
		return line, nil
	}

	if isCommentaryKeyword(c.Keyword) {
		line := make([]byte, CardSize)
		for i := range line {
			line[i] = padHeaderByte
		}
		copy(line[0:8], fmt.Sprintf("%-8s", c.Keyword))
		text := c.Comment
		if len(text) > CardSize-8 {
			return nil, fmt.Errorf("fitsio: commentary text too long for a single card: %q", text)
		}
		copy(line[8:8+len(text)], text)
		return line, nil
	}

	if err := validateKeyword(c.Keyword); err != nil {
		return nil, err
	}
	field, err := formatValueZone(c.Value, c.Comment)
	if err != nil {
		return nil, err
	}

	line := make([]byte, 0, CardSize)
	line = append(line, []byte(fmt.Sprintf("%-8s= ", c.Keyword))...)
	line = append(line, []byte(field)...)
	if len(line) > CardSize {
		return nil, fmt.Errorf("fitsio: card for keyword %q exceeds %d bytes", c.Keyword, CardSize)
	}
	line = appendPad(line, CardSize-len(line), padHeaderByte)
	return line, nil
}
