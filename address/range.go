package address

import (
	"fmt"
	"strings"
)

// Range is a rectangle of cells, optionally qualified by a sheet name.
// Ranges built by NewRange or ParseRange are normalized so that
// Top <= Bottom and Left <= Right.
type Range struct {
	Sheet         string
	Top, Left     int
	Bottom, Right int
}

// NewRange returns the normalized range spanning both corners.
func NewRange(sheet string, top, left, bottom, right int) Range {
	if bottom < top {
		top, bottom = bottom, top
	}
	if right < left {
		left, right = right, left
	}
	return Range{Sheet: sheet, Top: top, Left: left, Bottom: bottom, Right: right}
}

// CellRange returns the single-cell range at row and col.
func CellRange(sheet string, row, col int) Range {
	return Range{Sheet: sheet, Top: row, Left: col, Bottom: row, Right: col}
}

// ParseRange decodes "A1", "A1:C3", "$A$1:$C$3" and sheet-qualified forms
// such as "Sheet1!A1:C3" or "'My Sheet'!$A$1". The sheet part is split at
// the last "!" so unquoted names containing spaces are accepted too.
func ParseRange(s string) (Range, error) {
	var sheet string
	if i := strings.LastIndexByte(s, '!'); i >= 0 {
		sheet = UnquoteSheet(s[:i])
		s = s[i+1:]
		if sheet == "" {
			return Range{}, fmt.Errorf("%w: empty sheet name", ErrInvalid)
		}
	}
	first, second, isPair := strings.Cut(s, ":")
	tl, err := Decode(first)
	if err != nil {
		return Range{}, err
	}
	if !isPair {
		return CellRange(sheet, tl.Row, tl.Col), nil
	}
	br, err := Decode(second)
	if err != nil {
		return Range{}, err
	}
	return NewRange(sheet, tl.Row, tl.Col, br.Row, br.Col), nil
}

// IsCell reports whether r covers exactly one cell.
func (r Range) IsCell() bool {
	return r.Top == r.Bottom && r.Left == r.Right
}

// Count is the number of cells covered by r.
func (r Range) Count() int {
	return (r.Bottom - r.Top + 1) * (r.Right - r.Left + 1)
}

// Contains reports whether the cell at row and col lies inside r.
func (r Range) Contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// Each calls fn for every cell in row-major order.
func (r Range) Each(fn func(row, col int)) {
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			fn(row, col)
		}
	}
}

// String renders r without sheet or absolute markers, using the single
// cell shorthand when r covers one cell.
func (r Range) String() string {
	tl := Encode(r.Top, r.Left)
	if r.IsCell() {
		return tl
	}
	return tl + ":" + Encode(r.Bottom, r.Right)
}

// Absolute renders r with "$" markers, e.g. "$A$1:$B$2".
func (r Range) Absolute() string {
	tl := Cell{Row: r.Top, Col: r.Left}.Absolute()
	if r.IsCell() {
		return tl
	}
	return tl + ":" + Cell{Row: r.Bottom, Col: r.Right}.Absolute()
}

// Qualified renders r as an absolute reference prefixed by its sheet,
// e.g. "'My Sheet'!$A$1:$B$2". Unqualified ranges render as Absolute.
func (r Range) Qualified() string {
	if r.Sheet == "" {
		return r.Absolute()
	}
	return QuoteSheet(r.Sheet) + "!" + r.Absolute()
}
