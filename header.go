package fitsio

import "github.com/coldforge/fitsio/internal/bufpool"

var headerPool = bufpool.New()

// CardList is the ordered collection of cards making up one HDU's header.
// Lookup is first-match by keyword; insertion order is preserved exactly as
// parsed or appended, since header order is itself meaningful (mandatory
// keywords must appear in the order the HDU kind requires).
type CardList struct {
	cards []Card
}

// NewCardList builds a CardList from an initial set of cards, in order.
func NewCardList(cards ...Card) *CardList {
	cl := &CardList{cards: make([]Card, 0, len(cards))}
	cl.cards = append(cl.cards, cards...)
	return cl
}

// Len returns the number of cards (excluding the implicit END marker).
func (cl *CardList) Len() int { return len(cl.cards) }

// Cards returns the cards in order. The returned slice aliases the
// CardList's backing array and must not be mutated by the caller.
func (cl *CardList) Cards() []Card { return cl.cards }

// Append adds a card to the end of the list.
func (cl *CardList) Append(c Card) {
	cl.cards = append(cl.cards, c)
}

// get returns the index and card of the first card named keyword, or
// (-1, Card{}) if absent.
func (cl *CardList) get(keyword string) (int, Card) {
	for i, c := range cl.cards {
		if c.Keyword == keyword {
			return i, c
		}
	}
	return -1, Card{}
}

// Get returns the first card named keyword and whether it was found.
func (cl *CardList) Get(keyword string) (Card, bool) {
	i, c := cl.get(keyword)
	return c, i >= 0
}

// GetAll returns every card named keyword, in order. Used for COMMENT and
// HISTORY, which may repeat.
func (cl *CardList) GetAll(keyword string) []Card {
	var out []Card
	for _, c := range cl.cards {
		if c.Keyword == keyword {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of the first card named keyword, or -1.
func (cl *CardList) Index(keyword string) int {
	i, _ := cl.get(keyword)
	return i
}

// Set replaces the value and comment of the first card named keyword,
// appending a new card if none exists yet.
func (cl *CardList) Set(keyword string, v Value, comment string) {
	if i := cl.Index(keyword); i >= 0 {
		cl.cards[i].Value = v
		cl.cards[i].Comment = comment
		return
	}
	cl.Append(Card{Keyword: keyword, Value: v, Comment: comment})
}

// Keys returns every non-structural keyword in the list (END, COMMENT,
// HISTORY, and blank cards are excluded), in order of first appearance.
func (cl *CardList) Keys() []string {
	keys := make([]string, 0, len(cl.cards))
	seen := make(map[string]struct{}, len(cl.cards))
	for _, c := range cl.cards {
		switch c.Keyword {
		case "", "END", "COMMENT", "HISTORY":
			continue
		}
		if _, ok := seen[c.Keyword]; ok {
			continue
		}
		seen[c.Keyword] = struct{}{}
		keys = append(keys, c.Keyword)
	}
	return keys
}

// intValue returns the integer value of keyword, or ok=false if it is
// missing or not an integer-kinded value.
func (cl *CardList) intValue(keyword string) (int, bool) {
	c, ok := cl.Get(keyword)
	if !ok {
		return 0, false
	}
	return c.Value.AsInt()
}

// floatValue returns the numeric (int- or float-kinded) value of keyword
// widened to float64, or ok=false if missing or non-numeric.
func (cl *CardList) floatValue(keyword string) (float64, bool) {
	c, ok := cl.Get(keyword)
	if !ok {
		return 0, false
	}
	return c.Value.AsFloat64()
}

// stringValue returns the string value of keyword, or ok=false if missing
// or non-string.
func (cl *CardList) stringValue(keyword string) (string, bool) {
	c, ok := cl.Get(keyword)
	if !ok {
		return "", false
	}
	return c.Value.AsString()
}

// boolValue returns the logical value of keyword, or ok=false if missing or
// non-logical.
func (cl *CardList) boolValue(keyword string) (bool, bool) {
	c, ok := cl.Get(keyword)
	if !ok || c.Value.Kind != VLogical {
		return false, false
	}
	return c.Value.Bool, true
}

// RenderHeaderBlocks serializes the card list to one or more block-aligned,
// space-padded header blocks, terminated by exactly one END card followed
// by blank padding to the block boundary (spec invariant 2).
func (cl *CardList) RenderHeaderBlocks() ([]byte, error) {
	scratch := headerPool.Get()
	defer headerPool.Put(scratch)

	for i := range cl.cards {
		line, err := RenderCard(cl.cards[i])
		if err != nil {
			return nil, err
		}
		scratch.Append(line)
	}
	endLine, err := RenderCard(Card{Keyword: "END"})
	if err != nil {
		return nil, err
	}
	scratch.Append(endLine)
	scratch.B = appendPad(scratch.B, padBlock(len(scratch.B)), padHeaderByte)

	buf := make([]byte, len(scratch.B))
	copy(buf, scratch.B)
	return buf, nil
}

// readCardsUntilEnd reads cards from data starting at offset through the
// END card (exclusive of END itself), stopping as soon as END is seen. It
// does not consume the trailing block padding — that requires knowing the
// HDU's full data-unit length first, so Parse computes the padded extent
// itself once the header is classified (see file.go).
func readCardsUntilEnd(data []byte, offset int) ([]Card, int, error) {
	var cards []Card
	pos := offset

	for {
		if pos+CardSize > len(data) {
			return nil, 0, &UnexpectedEOFError{Expected: pos + CardSize - offset, Actual: len(data) - offset}
		}
		line := data[pos : pos+CardSize]
		card, err := ParseCard(line)
		if err != nil {
			return nil, 0, err
		}
		pos += CardSize
		if card.Keyword == "END" {
			break
		}
		cards = append(cards, card)
	}

	return cards, pos - offset, nil
}
