package xlsxio

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/logicossoftware/go-xlsxio/address"
)

var (
	cellRefRe = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)$`)
	colRefRe  = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})$`)
	rowRefRe  = regexp.MustCompile(`^(\$?)([0-9]+)$`)
)

const refError = "#REF!"

// shiftFormula moves every relative reference in expr by dRow rows and
// dCol columns, the way a shared formula is copied from its master cell.
// String literals, sheet names, structured references and function names
// are left alone. References pushed off the sheet become #REF!.
func shiftFormula(expr string, dRow, dCol int) string {
	if dRow == 0 && dCol == 0 {
		return expr
	}
	var b strings.Builder
	b.Grow(len(expr))
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '"' || c == '\'':
			j := skipQuoted(expr, i)
			b.WriteString(expr[i:j])
			i = j
		case c == '[':
			j := skipBracket(expr, i)
			b.WriteString(expr[i:j])
			i = j
		case isWordByte(c):
			j := i
			for j < len(expr) && isWordByte(expr[j]) {
				j++
			}
			word := expr[i:j]
			var next byte
			if j < len(expr) {
				next = expr[j]
			}
			if next == '(' || next == '!' || next == '[' {
				b.WriteString(word)
			} else {
				ranged := next == ':' || (i > 0 && expr[i-1] == ':')
				b.WriteString(shiftRef(word, dRow, dCol, ranged))
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '$' || c == '_' || c == '.' || c == '\\' ||
		(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// skipQuoted returns the index after the quoted run starting at i. A
// doubled quote is an escaped quote.
func skipQuoted(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func skipBracket(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// shiftRef shifts one reference token. Whole-column and whole-row forms
// are only recognized next to a range colon.
func shiftRef(word string, dRow, dCol int, ranged bool) string {
	if m := cellRefRe.FindStringSubmatch(word); m != nil {
		col := address.ColumnNumber(m[2])
		row, err := strconv.Atoi(m[4])
		if col < 1 || err != nil || col > address.MaxColumns || row < 1 || row > address.MaxRows {
			return word
		}
		if m[1] == "" {
			col += dCol
		}
		if m[3] == "" {
			row += dRow
		}
		if col < 1 || col > address.MaxColumns || row < 1 || row > address.MaxRows {
			return refError
		}
		return m[1] + address.ColumnName(col) + m[3] + strconv.Itoa(row)
	}
	if !ranged {
		return word
	}
	if m := colRefRe.FindStringSubmatch(word); m != nil {
		col := address.ColumnNumber(m[2])
		if col < 1 || col > address.MaxColumns || m[1] != "" {
			return word
		}
		col += dCol
		if col < 1 || col > address.MaxColumns {
			return refError
		}
		return address.ColumnName(col)
	}
	if m := rowRefRe.FindStringSubmatch(word); m != nil {
		row, err := strconv.Atoi(m[2])
		if err != nil || m[1] != "" {
			return word
		}
		row += dRow
		if row < 1 || row > address.MaxRows {
			return refError
		}
		return strconv.Itoa(row)
	}
	return word
}
