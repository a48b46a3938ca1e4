package fitsio

import (
	"fmt"
	"strconv"
	"strings"
)

// AsciiTForm is a parsed ASCII-table TFORMn value: a type code (A, I, F, E,
// or D) with an integer field width and, for F/E/D, a decimal-place count
// (spec §4.6: "Aw, Iw, Fw.d, Ew.d, Dw.d").
type AsciiTForm struct {
	Code     byte
	Width    int
	Decimals int
}

// ParseAsciiTForm parses a TFORMn value of shape Aw, Iw, Fw.d, Ew.d, or Dw.d.
func ParseAsciiTForm(raw string) (AsciiTForm, error) {
	s := strings.TrimSpace(raw)
	if len(s) == 0 {
		return AsciiTForm{}, &UnsupportedTFormError{Raw: raw}
	}
	code := s[0]
	switch code {
	case 'A', 'I', 'F', 'E', 'D':
	default:
		return AsciiTForm{}, &UnsupportedTFormError{Raw: raw}
	}
	rest := s[1:]

	switch code {
	case 'A', 'I':
		w, err := strconv.Atoi(rest)
		if err != nil || w <= 0 {
			return AsciiTForm{}, &UnsupportedTFormError{Raw: raw}
		}
		return AsciiTForm{Code: code, Width: w}, nil
	default: // F, E, D
		parts := strings.SplitN(rest, ".", 2)
		if len(parts) != 2 {
			return AsciiTForm{}, &UnsupportedTFormError{Raw: raw}
		}
		w, err1 := strconv.Atoi(parts[0])
		d, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || w <= 0 || d < 0 {
			return AsciiTForm{}, &UnsupportedTFormError{Raw: raw}
		}
		return AsciiTForm{Code: code, Width: w, Decimals: d}, nil
	}
}

// String renders f back to its TFORM representation.
func (f AsciiTForm) String() string {
	switch f.Code {
	case 'A', 'I':
		return string(f.Code) + strconv.Itoa(f.Width)
	default:
		return string(f.Code) + strconv.Itoa(f.Width) + "." + strconv.Itoa(f.Decimals)
	}
}

// AsciiColumn describes one ASCII-table TFIELDS slot: its TBCOLn starting
// position (1-based), TFORMn shape, and optional TTYPE/TUNIT/TNULL cards.
type AsciiColumn struct {
	Name  string
	Form  AsciiTForm
	TBCol int
	Unit  string
	TNull string
}

// AsciiTable is a parsed TABLE (ASCII) HDU: its column descriptors, row
// count, and a reference to the underlying HDU for row access.
type AsciiTable struct {
	hdu     *HDU
	Columns []AsciiColumn
	NRows   int
	rowLen  int
}

// ReadASCIITable parses a TABLE HDU's column descriptors (spec §4.6).
func ReadASCIITable(h *HDU) (*AsciiTable, error) {
	cl := h.Cards
	tfields, _ := cl.intValue("TFIELDS")
	naxis1, _ := cl.intValue("NAXIS1")
	naxis2, _ := cl.intValue("NAXIS2")

	cols := make([]AsciiColumn, tfields)
	for i := 0; i < tfields; i++ {
		n := i + 1
		raw, ok := cl.stringValue(tformKey(n))
		if !ok {
			return nil, &MissingKeywordError{Name: tformKey(n)}
		}
		form, err := ParseAsciiTForm(raw)
		if err != nil {
			return nil, err
		}
		tbcol, ok := cl.intValue(tbcolKey(n))
		if !ok {
			return nil, &MissingKeywordError{Name: tbcolKey(n)}
		}
		col := AsciiColumn{Form: form, TBCol: tbcol}
		if name, ok := cl.stringValue(ttypeKey(n)); ok {
			col.Name = name
		}
		if unit, ok := cl.stringValue(tunitKey(n)); ok {
			col.Unit = unit
		}
		if null, ok := cl.stringValue(tnullKey(n)); ok {
			col.TNull = null
		}
		cols[i] = col
	}

	var issues []error
	type span struct{ lo, hi int }
	var occupied []span
	for i, col := range cols {
		lo := col.TBCol - 1
		hi := lo + col.Form.Width - 1
		if lo < 0 || hi >= naxis1 {
			issues = append(issues, fmt.Errorf(
				"fitsio: %s=%d with width %d exceeds NAXIS1=%d", tbcolKey(i+1), col.TBCol, col.Form.Width, naxis1))
			continue
		}
		for _, o := range occupied {
			if lo <= o.hi && o.lo <= hi {
				issues = append(issues, fmt.Errorf(
					"fitsio: %s field [%d,%d] overlaps another column's field", tbcolKey(i+1), lo, hi))
				break
			}
		}
		occupied = append(occupied, span{lo, hi})
	}
	if len(issues) > 0 {
		return nil, &InvalidHeaderError{Issues: issues}
	}

	return &AsciiTable{hdu: h, Columns: cols, NRows: naxis2, rowLen: naxis1}, nil
}

func tbcolKey(n int) string { return "TBCOL" + strconv.Itoa(n) }

// AsciiColKind discriminates AsciiColumnValue's populated field.
type AsciiColKind int

const (
	AColString AsciiColKind = iota
	AColInt
	AColFloat
)

// AsciiColumnValue is the tagged result of reading one ASCII-table column.
// Null entries (an empty or all-blank field, or a field matching the
// column's TNULL string) are recorded in Null rather than attempting to
// parse them as a number; the corresponding Ints/Floats/Strings slot holds
// the zero value.
type AsciiColumnValue struct {
	Kind    AsciiColKind
	Strings []string
	Ints    []int64
	Floats  []float64
	Null    []bool
}

// ReadColumn decodes column idx across every row, extracting each row's
// fixed-width text field at its TBCOL position and parsing it per the
// column's TFORM code (spec §4.6).
func (t *AsciiTable) ReadColumn(idx int) (AsciiColumnValue, error) {
	col := t.Columns[idx]
	start := col.TBCol - 1
	width := col.Form.Width

	field := func(r int) string {
		base := r*t.rowLen + start
		return string(t.hdu.Data[base : base+width])
	}
	isNull := func(raw string) bool {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return true
		}
		if col.TNull != "" && trimmed == strings.TrimSpace(col.TNull) {
			return true
		}
		return false
	}

	switch col.Form.Code {
	case 'A':
		out := make([]string, t.NRows)
		null := make([]bool, t.NRows)
		for r := 0; r < t.NRows; r++ {
			raw := field(r)
			if isNull(raw) {
				null[r] = true
				continue
			}
			out[r] = strings.TrimRight(raw, " ")
		}
		return AsciiColumnValue{Kind: AColString, Strings: out, Null: null}, nil

	case 'I':
		out := make([]int64, t.NRows)
		null := make([]bool, t.NRows)
		for r := 0; r < t.NRows; r++ {
			raw := field(r)
			if isNull(raw) {
				null[r] = true
				continue
			}
			v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return AsciiColumnValue{}, &InvalidValueError{Key: col.Name, Raw: raw}
			}
			out[r] = v
		}
		return AsciiColumnValue{Kind: AColInt, Ints: out, Null: null}, nil

	default: // F, E, D
		out := make([]float64, t.NRows)
		null := make([]bool, t.NRows)
		for r := 0; r < t.NRows; r++ {
			raw := field(r)
			if isNull(raw) {
				null[r] = true
				continue
			}
			norm := strings.Map(func(rn rune) rune {
				switch rn {
				case 'd', 'D':
					return 'E'
				}
				return rn
			}, strings.TrimSpace(raw))
			v, err := strconv.ParseFloat(norm, 64)
			if err != nil {
				return AsciiColumnValue{}, &InvalidValueError{Key: col.Name, Raw: raw}
			}
			out[r] = v
		}
		return AsciiColumnValue{Kind: AColFloat, Floats: out, Null: null}, nil
	}
}

// WriteASCIITable serializes a TABLE (ASCII) HDU from pre-built row strings
// (one rowLen-byte row per entry in rows, already formatted and space-padded
// to each column's TBCOL/width) and column descriptors (spec §4.6).
func WriteASCIITable(cols []AsciiColumn, rows []string, extraCards []Card) (*HDU, error) {
	rowLen := 0
	for _, c := range cols {
		end := c.TBCol - 1 + c.Form.Width
		if end > rowLen {
			rowLen = end
		}
	}
	scratch := rowPool.Get()
	defer rowPool.Put(scratch)
	for _, r := range rows {
		if len(r) != rowLen {
			return nil, &IntegrityViolationError{Expected: int64(rowLen), Actual: int64(len(r))}
		}
		scratch.Append([]byte(r))
	}
	data := make([]byte, len(scratch.B))
	copy(data, scratch.B)

	cl := &CardList{}
	cl.Append(Card{Keyword: "XTENSION", Value: StringValue("TABLE"), Comment: "ASCII table extension"})
	cl.Append(Card{Keyword: "BITPIX", Value: IntValue(8), Comment: "8-bit bytes"})
	cl.Append(Card{Keyword: "NAXIS", Value: IntValue(2), Comment: "2-dimensional table"})
	cl.Append(Card{Keyword: "NAXIS1", Value: IntValue(int64(rowLen)), Comment: "width of table in bytes"})
	cl.Append(Card{Keyword: "NAXIS2", Value: IntValue(int64(len(rows))), Comment: "number of rows"})
	cl.Append(Card{Keyword: "PCOUNT", Value: IntValue(0), Comment: "size of heap"})
	cl.Append(Card{Keyword: "GCOUNT", Value: IntValue(1), Comment: "group count"})
	cl.Append(Card{Keyword: "TFIELDS", Value: IntValue(int64(len(cols))), Comment: "number of columns"})
	for i, c := range cols {
		n := i + 1
		cl.Append(Card{Keyword: tformKey(n), Value: StringValue(c.Form.String()), Comment: "column format"})
		cl.Append(Card{Keyword: tbcolKey(n), Value: IntValue(int64(c.TBCol)), Comment: "column starting position"})
		if c.Name != "" {
			cl.Append(Card{Keyword: ttypeKey(n), Value: StringValue(c.Name), Comment: "column name"})
		}
		if c.Unit != "" {
			cl.Append(Card{Keyword: tunitKey(n), Value: StringValue(c.Unit), Comment: "column unit"})
		}
	}
	for _, c := range extraCards {
		cl.Append(c)
	}

	axes := []int{rowLen, len(rows)}
	return &HDU{Kind: KindASCIITable, Cards: cl, Bitpix: 8, Axes: axes, Data: data}, nil
}
