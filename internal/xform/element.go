package xform

import (
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Element maps one element whose model is built from its attributes and,
// optionally, its text. Child elements are rejected and therefore skipped.
type Element[M any] struct {
	Tag    string
	Decode func(n Node) M
	// Text receives the element's text content on close when set.
	Text func(m *M, text string)
	// Encode returns the attributes and text to render; ok=false renders nothing.
	Encode func(m M) (attrs []xmlstream.Attr, text string, ok bool)

	model  M
	inside bool
	text   strings.Builder
}

// ParseOpen implements Parser.
func (e *Element[M]) ParseOpen(n Node) bool {
	if e.inside || n.Name != e.Tag {
		return false
	}
	e.inside = true
	e.text.Reset()
	e.model = e.Decode(n)
	return true
}

// ParseText implements Parser.
func (e *Element[M]) ParseText(text string) {
	if e.inside && e.Text != nil {
		e.text.WriteString(text)
	}
}

// ParseClose implements Parser.
func (e *Element[M]) ParseClose(name string) bool {
	if !e.inside || name != e.Tag {
		return true
	}
	e.inside = false
	if e.Text != nil {
		e.Text(&e.model, e.text.String())
	}
	return false
}

// Model implements Xform.
func (e *Element[M]) Model() M { return e.model }

// Render implements Xform.
func (e *Element[M]) Render(w *xmlstream.Writer, m M) {
	attrs, text, ok := e.Encode(m)
	if !ok {
		return
	}
	w.LeafNode(e.Tag, attrs, text)
}

// BindEach connects a repeated child: add receives every parsed item, get
// lists the items to render in order.
func BindEach[M, C any](x Xform[C], get func(M) []C, add func(*M, C)) Child[M] {
	return Child[M]{
		Parser: x,
		assign: func(m *M) { add(m, x.Model()) },
		render: func(w *xmlstream.Writer, m M) {
			if get == nil {
				return
			}
			for _, it := range get(m) {
				x.Render(w, it)
			}
		},
	}
}
