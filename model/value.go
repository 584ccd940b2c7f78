package model

import (
	"strconv"
	"time"
)

// Value is the content of a cell. A nil Value is an empty cell. The
// concrete types are Number, String, Bool, Date, ErrorValue, RichText and
// Formula.
type Value interface {
	// Text renders the value the way a plain-text export would show it.
	Text() string
	isValue()
}

// Number is a numeric cell.
type Number float64

// String is a text cell.
type String string

// Bool is a boolean cell.
type Bool bool

// Date is a numeric cell carrying a date number format.
type Date time.Time

// ErrorValue is an error literal such as "#N/A" or "#DIV/0!".
type ErrorValue string

// RichText is text made of separately formatted runs.
type RichText []RichTextRun

// RichTextRun is one formatted piece of rich text. A nil Font inherits the
// cell font.
type RichTextRun struct {
	Text string
	Font *Font
}

// Formula is a cell computed by an expression. Result is the cached value
// written by the last calculating application, if any.
//
// A shared formula is stored once on its master cell (Ref is the range it
// covers, Expr is set); other cells of the range name the master through
// SharedWith and carry the translated expression in Expr.
type Formula struct {
	Expr       string
	Result     Value
	Ref        string
	SharedWith string
	// Array marks an array (CSE) formula covering Ref.
	Array bool
}

func (n Number) Text() string     { return strconv.FormatFloat(float64(n), 'f', -1, 64) }
func (s String) Text() string     { return string(s) }
func (b Bool) Text() string       { return strconv.FormatBool(bool(b)) }
func (d Date) Text() string       { return time.Time(d).Format(time.RFC3339) }
func (e ErrorValue) Text() string { return string(e) }

func (r RichText) Text() string {
	n := 0
	for _, run := range r {
		n += len(run.Text)
	}
	b := make([]byte, 0, n)
	for _, run := range r {
		b = append(b, run.Text...)
	}
	return string(b)
}

func (f Formula) Text() string {
	if f.Result != nil {
		return f.Result.Text()
	}
	return ""
}

func (Number) isValue()     {}
func (String) isValue()     {}
func (Bool) isValue()       {}
func (Date) isValue()       {}
func (ErrorValue) isValue() {}
func (RichText) isValue()   {}
func (Formula) isValue()    {}

// Known error literals.
var ErrorLiterals = []string{"#NULL!", "#DIV/0!", "#VALUE!", "#REF!", "#NAME?", "#NUM!", "#N/A", "#GETTING_DATA"}
