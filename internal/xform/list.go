package xform

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// ErrTooManyItems is recorded by List when MaxItems is exceeded.
var ErrTooManyItems = errors.New("xform: too many items")

// List parses a container element holding repeated children of one kind.
type List[M any] struct {
	Tag   string
	Child Xform[M]
	// Count renders a count attribute with the number of items.
	Count bool
	// Empty renders the container even when there are no items.
	Empty bool
	// MaxItems bounds the number of parsed items; zero means no bound.
	MaxItems int
	// Attrs are static start-tag attributes, such as namespace declarations.
	Attrs []xmlstream.Attr

	model  []M
	inside bool
	active Stack[Parser]
	err    error
}

// ParseOpen implements Parser.
func (l *List[M]) ParseOpen(n Node) bool {
	if p, ok := l.active.Top(); ok {
		return p.ParseOpen(n)
	}
	if !l.inside {
		if n.Name != l.Tag {
			return false
		}
		l.inside = true
		l.model = nil
		l.err = nil
		return true
	}
	if !l.Child.ParseOpen(n) {
		return false
	}
	l.active.Push(l.Child)
	return true
}

// ParseText implements Parser.
func (l *List[M]) ParseText(text string) {
	if p, ok := l.active.Top(); ok {
		p.ParseText(text)
	}
}

// ParseClose implements Parser.
func (l *List[M]) ParseClose(name string) bool {
	if p, ok := l.active.Top(); ok {
		if !p.ParseClose(name) {
			l.active.Pop()
			if l.MaxItems > 0 && len(l.model) >= l.MaxItems {
				if l.err == nil {
					l.err = fmt.Errorf("%w: %s holds more than %d", ErrTooManyItems, l.Tag, l.MaxItems)
				}
				return true
			}
			l.model = append(l.model, l.Child.Model())
		}
		return true
	}
	if l.inside && name == l.Tag {
		l.inside = false
		return false
	}
	return true
}

// Model returns the parsed items in document order.
func (l *List[M]) Model() []M { return l.model }

// Err implements Failer.
func (l *List[M]) Err() error { return l.err }

// Render writes the container and every item.
func (l *List[M]) Render(w *xmlstream.Writer, items []M) {
	if len(items) == 0 && !l.Empty {
		return
	}
	w.OpenNode(l.Tag, l.Attrs...)
	if l.Count {
		w.AddAttribute("count", strconv.Itoa(len(items)))
	}
	for _, it := range items {
		l.Child.Render(w, it)
	}
	w.CloseNode()
}
