package xform

import (
	"strconv"
	"strings"
	"time"

	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Leaf maps one element without children to a scalar. The value lives in
// the attribute named Attr, or in the text content when Attr is empty.
type Leaf[M any] struct {
	Tag  string
	Attr string
	// Default is the model when the attribute is absent.
	Default M
	Decode  func(string) M
	// Encode returns the text to render; ok=false renders nothing. An empty
	// attribute value renders the element without the attribute.
	Encode func(M) (s string, ok bool)
	// Static attributes written before the value attribute.
	Attrs []xmlstream.Attr

	model  M
	inside bool
	text   strings.Builder
}

// ParseOpen implements Parser.
func (l *Leaf[M]) ParseOpen(n Node) bool {
	if l.inside || n.Name != l.Tag {
		return false
	}
	l.inside = true
	l.model = l.Default
	l.text.Reset()
	if l.Attr != "" {
		if v, ok := n.Attrs[l.Attr]; ok {
			l.model = l.Decode(v)
		}
	}
	return true
}

// ParseText implements Parser.
func (l *Leaf[M]) ParseText(text string) {
	if l.inside && l.Attr == "" {
		l.text.WriteString(text)
	}
}

// ParseClose implements Parser.
func (l *Leaf[M]) ParseClose(name string) bool {
	if !l.inside || name != l.Tag {
		return true
	}
	l.inside = false
	if l.Attr == "" {
		l.model = l.Decode(l.text.String())
	}
	return false
}

// Model implements Xform.
func (l *Leaf[M]) Model() M { return l.model }

// Render implements Xform.
func (l *Leaf[M]) Render(w *xmlstream.Writer, m M) {
	s, ok := l.Encode(m)
	if !ok {
		return
	}
	if l.Attr == "" {
		w.LeafNode(l.Tag, l.Attrs, s)
		return
	}
	w.OpenNode(l.Tag, l.Attrs...)
	if s != "" {
		w.AddAttribute(l.Attr, s)
	}
	w.CloseNode()
}

// String maps text or an attribute to a string; empty strings are not rendered.
func String(tag, attr string) *Leaf[string] {
	return &Leaf[string]{
		Tag:    tag,
		Attr:   attr,
		Decode: func(s string) string { return s },
		Encode: func(s string) (string, bool) { return s, s != "" },
	}
}

// Int maps text or an attribute to an int; zero is not rendered.
func Int(tag, attr string) *Leaf[int] {
	return &Leaf[int]{
		Tag:  tag,
		Attr: attr,
		Decode: func(s string) int {
			i, _ := strconv.Atoi(strings.TrimSpace(s))
			return i
		},
		Encode: func(i int) (string, bool) { return strconv.Itoa(i), i != 0 },
	}
}

// Float maps text or an attribute to a float64; zero is not rendered.
func Float(tag, attr string) *Leaf[float64] {
	return &Leaf[float64]{
		Tag:  tag,
		Attr: attr,
		Decode: func(s string) float64 {
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return f
		},
		Encode: func(f float64) (string, bool) { return xmlstream.FormatFloat(f), f != 0 },
	}
}

// Flag maps a presence-style boolean such as <b/> or <b val="0"/>. A
// present element without the attribute is true; false is not rendered.
func Flag(tag string) *Leaf[bool] {
	return &Leaf[bool]{
		Tag:     tag,
		Attr:    "val",
		Default: true,
		Decode:  xmlstream.ParseBool,
		Encode:  func(b bool) (string, bool) { return "", b },
	}
}

// Time maps W3C date-time text; the zero time is not rendered.
func Time(tag string, attrs ...xmlstream.Attr) *Leaf[time.Time] {
	return &Leaf[time.Time]{
		Tag:   tag,
		Attrs: attrs,
		Decode: func(s string) time.Time {
			s = strings.TrimSpace(s)
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC()
				}
			}
			return time.Time{}
		},
		Encode: func(t time.Time) (string, bool) {
			return t.UTC().Format("2006-01-02T15:04:05Z"), !t.IsZero()
		},
	}
}
