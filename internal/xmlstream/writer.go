package xmlstream

import (
	"encoding/xml"
	"errors"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Declaration is the standard part prolog.
const Declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var (
	ErrNoOpenElement = errors.New("xmlstream: no open element")
	ErrNoRollback    = errors.New("xmlstream: no rollback point")
)

// Attr is one rendered attribute. Writers keep attribute order.
type Attr struct {
	Name, Value string
}

// A builds a string attribute.
func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// Int builds an integer attribute.
func Int(name string, v int) Attr { return Attr{Name: name, Value: strconv.Itoa(v)} }

// Float builds a numeric attribute.
func Float(name string, v float64) Attr { return Attr{Name: name, Value: FormatFloat(v)} }

// Bool builds an xsd:boolean attribute rendered as "1" or "0".
func Bool(name string, v bool) Attr {
	if v {
		return Attr{Name: name, Value: "1"}
	}
	return Attr{Name: name, Value: "0"}
}

// FormatFloat renders v the way cell values and dimensions are stored:
// positional notation for ordinary magnitudes, exponent form otherwise.
func FormatFloat(v float64) string {
	a := math.Abs(v)
	if a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'E', -1, 64)
}

type savepoint struct {
	size  int
	stack []string
	leaf  bool
	open  bool
}

// Writer renders XML into a pooled buffer. It tracks the open element
// stack so start tags are closed lazily and empty elements self-close.
//
// Misuse (adding an attribute when no start tag is pending, closing with an
// empty stack) is recorded and reported by Err; later calls still run.
type Writer struct {
	buf       *bytebufferpool.ByteBuffer
	stack     []string
	leaf      bool
	open      bool
	rollbacks []savepoint
	err       error
}

// NewWriter returns a Writer backed by a pooled buffer. Call Release when
// the rendered bytes are no longer needed.
func NewWriter() *Writer {
	return &Writer{buf: bytebufferpool.Get()}
}

// Err returns the first misuse recorded, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Depth is the number of currently open elements.
func (w *Writer) Depth() int { return len(w.stack) }

// OpenXML writes the standard declaration.
func (w *Writer) OpenXML() {
	w.buf.WriteString(Declaration)
}

func (w *Writer) closeStartTag() {
	if w.open {
		w.buf.WriteByte('>')
		w.open = false
	}
}

func (w *Writer) writeAttr(a Attr) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(a.Name)
	w.buf.WriteString(`="`)
	_ = xml.EscapeText(w.buf, []byte(a.Value))
	w.buf.WriteByte('"')
}

// OpenNode starts a new element as a child of the current one.
func (w *Writer) OpenNode(name string, attrs ...Attr) {
	w.closeStartTag()
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.writeAttr(a)
	}
	w.stack = append(w.stack, name)
	w.open = true
	w.leaf = true
}

// AddAttribute appends an attribute to the start tag still being written.
func (w *Writer) AddAttribute(name, value string) {
	if !w.open {
		w.fail(ErrNoOpenElement)
		return
	}
	w.writeAttr(Attr{Name: name, Value: value})
}

// AddAttributes appends several attributes, see AddAttribute.
func (w *Writer) AddAttributes(attrs ...Attr) {
	for _, a := range attrs {
		w.AddAttribute(a.Name, a.Value)
	}
}

// WriteText writes escaped character data into the current element.
func (w *Writer) WriteText(text string) {
	w.closeStartTag()
	_ = xml.EscapeText(w.buf, []byte(text))
	w.leaf = false
}

// WriteRaw writes pre-rendered markup into the current element.
func (w *Writer) WriteRaw(raw string) {
	w.closeStartTag()
	w.buf.WriteString(raw)
	w.leaf = false
}

// CloseNode ends the current element, self-closing it when it got no content.
func (w *Writer) CloseNode() {
	n := len(w.stack)
	if n == 0 {
		w.fail(ErrNoOpenElement)
		return
	}
	name := w.stack[n-1]
	w.stack = w.stack[:n-1]
	if w.open && w.leaf {
		w.buf.WriteString("/>")
	} else {
		w.closeStartTag()
		w.buf.WriteString("</")
		w.buf.WriteString(name)
		w.buf.WriteByte('>')
	}
	w.open = false
	w.leaf = false
}

// LeafNode writes a complete element with optional text content.
func (w *Writer) LeafNode(name string, attrs []Attr, text string) {
	w.OpenNode(name, attrs...)
	if text != "" {
		w.WriteText(text)
	}
	w.CloseNode()
}

// EmptyNode writes a self-closing element.
func (w *Writer) EmptyNode(name string, attrs ...Attr) {
	w.OpenNode(name, attrs...)
	w.CloseNode()
}

// CloseAll closes every open element.
func (w *Writer) CloseAll() {
	for len(w.stack) > 0 {
		w.CloseNode()
	}
}

// AddRollback records a save point. Save points nest.
func (w *Writer) AddRollback() {
	w.rollbacks = append(w.rollbacks, savepoint{
		size:  w.buf.Len(),
		stack: slices.Clone(w.stack),
		leaf:  w.leaf,
		open:  w.open,
	})
}

// Commit drops the most recent save point and keeps the output.
func (w *Writer) Commit() {
	if len(w.rollbacks) == 0 {
		w.fail(ErrNoRollback)
		return
	}
	w.rollbacks = w.rollbacks[:len(w.rollbacks)-1]
}

// Rollback discards everything written since the most recent save point
// and restores the element stack and flags recorded with it.
func (w *Writer) Rollback() {
	n := len(w.rollbacks)
	if n == 0 {
		w.fail(ErrNoRollback)
		return
	}
	sp := w.rollbacks[n-1]
	w.rollbacks = w.rollbacks[:n-1]
	w.buf.B = w.buf.B[:sp.size]
	w.stack = sp.stack
	w.leaf = sp.leaf
	w.open = sp.open
}

// Len is the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the rendered output. The slice is only valid until Release.
func (w *Writer) Bytes() []byte { return w.buf.B }

// String returns a copy of the rendered output.
func (w *Writer) String() string { return w.buf.String() }

// WriteTo copies the rendered output to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.buf.WriteTo(dst)
}

// Release returns the buffer to the pool. The Writer must not be used after.
func (w *Writer) Release() {
	if w.buf != nil {
		bytebufferpool.Put(w.buf)
		w.buf = nil
	}
}
