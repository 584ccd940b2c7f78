// Package xmlstream turns part bytes into a flat sequence of element
// events and renders element trees back into bytes.
package xmlstream

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Namespace URIs whose attributes keep a canonical prefix.
const (
	NSRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSMarkupCompat  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSX14ac         = "http://schemas.microsoft.com/office/spreadsheetml/2009/9/ac"
	NSXML           = "http://www.w3.org/XML/1998/namespace"
)

var attrPrefixes = map[string]string{
	NSRelationships: "r",
	NSMarkupCompat:  "mc",
	NSX14ac:         "x14ac",
	NSXML:           "xml",
	"xml":           "xml",
}

// Kind classifies an Event.
type Kind int

const (
	Open Kind = iota + 1
	Text
	Close
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Text:
		return "text"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Node describes an opening element. Name is the namespace-local element
// name; Depth is 1 for the document root.
type Node struct {
	Name  string
	Attrs map[string]string
	Depth int
}

// Attr returns the named attribute or "".
func (n Node) Attr(name string) string { return n.Attrs[name] }

// Has reports whether the attribute is present.
func (n Node) Has(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// Int returns the named attribute as an int, or def when absent or malformed.
func (n Node) Int(name string, def int) int {
	v, ok := n.Attrs[name]
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Float returns the named attribute as a float64, or def when absent or malformed.
func (n Node) Float(name string, def float64) float64 {
	v, ok := n.Attrs[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Bool interprets the named attribute as an xsd:boolean, or def when absent.
func (n Node) Bool(name string, def bool) bool {
	v, ok := n.Attrs[name]
	if !ok {
		return def
	}
	return ParseBool(v)
}

// ParseBool accepts "1" and "true" as true; everything else is false.
func ParseBool(v string) bool {
	return v == "1" || v == "true"
}

// Event is one item of a Source. Node is set for Open, Name for Close and
// Text for Text.
type Event struct {
	Kind Kind
	Node Node
	Name string
	Text string
}

// SyntaxError reports malformed XML with its input position.
type SyntaxError struct {
	Line, Column int
	Err          error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// SourceOption configures a Source.
type SourceOption func(*xml.Decoder)

// Lenient relaxes well-formedness checks and auto-closes HTML void
// elements. Legacy VML drawings need it.
func Lenient() SourceOption {
	return func(d *xml.Decoder) {
		d.Strict = false
		d.AutoClose = xml.HTMLAutoClose
	}
}

// Source is a lazy, single-pass sequence of element events. Next blocks on
// the underlying reader until enough bytes arrive to produce an event.
type Source struct {
	dec   *xml.Decoder
	depth int
	done  bool
}

// NewSource prepares a Source over r. Byte order marks select UTF-8 or
// UTF-16 decoding; other encodings named in the XML declaration are
// converted through golang.org/x/net/html/charset.
func NewSource(r io.Reader, opts ...SourceOption) *Source {
	br := bufio.NewReader(r)
	transcoded := false
	if head, _ := br.Peek(3); hasBOM(head) {
		r = transform.NewReader(br, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
		transcoded = true
	} else {
		r = br
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(label string, in io.Reader) (io.Reader, error) {
		if transcoded {
			return in, nil
		}
		return charset.NewReaderLabel(label, in)
	}
	for _, opt := range opts {
		opt(dec)
	}
	return &Source{dec: dec}
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE})
}

// Next returns the next event, io.EOF once the input is exhausted, or a
// *SyntaxError for malformed input.
func (s *Source) Next() (Event, error) {
	if s.done {
		return Event{}, io.EOF
	}
	for {
		tok, err := s.dec.Token()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			line, col := s.dec.InputPos()
			return Event{}, &SyntaxError{Line: line, Column: col, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			s.depth++
			return Event{Kind: Open, Node: Node{Name: t.Name.Local, Attrs: attrMap(t.Attr), Depth: s.depth}}, nil
		case xml.EndElement:
			s.depth--
			return Event{Kind: Close, Name: t.Name.Local}, nil
		case xml.CharData:
			return Event{Kind: Text, Text: string(t)}, nil
		}
	}
}

// Events adapts Next to a range-over-func sequence. Iteration stops after
// the first error is yielded.
func (s *Source) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

func attrMap(attrs []xml.Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns"):
			continue
		case a.Name.Space == "":
			m[a.Name.Local] = a.Value
		default:
			if p, ok := attrPrefixes[a.Name.Space]; ok {
				m[p+":"+a.Name.Local] = a.Value
			} else {
				m[a.Name.Local] = a.Value
			}
		}
	}
	return m
}
