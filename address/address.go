// Package address converts between A1-style spreadsheet references and
// numeric row/column coordinates.
//
// Rows and columns are 1-based, matching the numbering used inside the
// package XML ("A1" is row 1, column 1).
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sheet limits imposed by the file format.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// ErrInvalid is returned for references that cannot be decoded.
var ErrInvalid = errors.New("address: invalid reference")

// Cell is a decoded single-cell reference.
type Cell struct {
	Row, Col       int
	AbsRow, AbsCol bool
}

// String encodes c without absolute markers.
func (c Cell) String() string {
	return Encode(c.Row, c.Col)
}

// Absolute encodes c with "$" markers on both parts.
func (c Cell) Absolute() string {
	return "$" + ColumnName(c.Col) + "$" + strconv.Itoa(c.Row)
}

// Encode returns the A1 reference of row and col.
func Encode(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row)
}

// ColumnName converts a 1-based column number to its letters.
// 1=A, 26=Z, 27=AA. Non-positive numbers yield "".
func ColumnName(col int) string {
	if col <= 0 {
		return ""
	}
	var buf [4]byte
	i := len(buf)
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// ColumnNumber converts column letters to a 1-based column number.
// It returns -1 for anything that is not one to three letters.
func ColumnNumber(letters string) int {
	if letters == "" || len(letters) > 3 {
		return -1
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return -1
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// Decode parses a cell reference such as "B7" or "$B$7".
func Decode(ref string) (Cell, error) {
	var c Cell
	s := ref
	if strings.HasPrefix(s, "$") {
		c.AbsCol = true
		s = s[1:]
	}
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 {
		return Cell{}, fmt.Errorf("%w: %q has no column letters", ErrInvalid, ref)
	}
	c.Col = ColumnNumber(s[:i])
	if c.Col < 1 || c.Col > MaxColumns {
		return Cell{}, fmt.Errorf("%w: %q column out of range", ErrInvalid, ref)
	}
	s = s[i:]
	if strings.HasPrefix(s, "$") {
		c.AbsRow = true
		s = s[1:]
	}
	if s == "" {
		return Cell{}, fmt.Errorf("%w: %q has no row number", ErrInvalid, ref)
	}
	for j := 0; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return Cell{}, fmt.Errorf("%w: %q has a malformed row", ErrInvalid, ref)
		}
	}
	row, err := strconv.Atoi(s)
	if err != nil || row < 1 || row > MaxRows {
		return Cell{}, fmt.Errorf("%w: %q row out of range", ErrInvalid, ref)
	}
	c.Row = row
	return c, nil
}

// MustDecode is like Decode but panics on error. It is meant for constants.
func MustDecode(ref string) Cell {
	c, err := Decode(ref)
	if err != nil {
		panic(err)
	}
	return c
}

// QuoteSheet returns name quoted for use in a qualified reference when it
// contains characters other than letters, digits, underscores and dots.
func QuoteSheet(name string) string {
	plain := name != ""
	for i := 0; i < len(name) && plain; i++ {
		c := name[i]
		plain = isLetter(c) || (c >= '0' && c <= '9') || c == '_' || c == '.'
	}
	if plain && !(name[0] >= '0' && name[0] <= '9') {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// UnquoteSheet reverses QuoteSheet.
func UnquoteSheet(name string) string {
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
