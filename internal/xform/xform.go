// Package xform provides composable transforms that parse an element
// subtree from a stream of events into a typed model and render the model
// back to XML.
//
// A transform is Idle until ParseOpen accepts its own tag, Open while it
// consumes its subtree (delegating child subtrees to child transforms) and
// Closed once ParseClose sees its own end tag and returns false. Close
// events that match nothing on the active path are swallowed.
package xform

import (
	"errors"
	"io"

	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Node is the opening-element description handed to ParseOpen.
type Node = xmlstream.Node

// ErrNoRoot is returned by Parse when the stream never produced an element
// the parser accepted.
var ErrNoRoot = errors.New("xform: root element not found")

// Parser consumes the events of one element subtree.
//
// ParseOpen reports whether the element was accepted; a rejected element
// and its whole subtree are skipped by the driver. ParseClose returns false
// exactly when the parser's own element closed.
type Parser interface {
	ParseOpen(n Node) bool
	ParseText(text string)
	ParseClose(name string) bool
}

// Xform is a Parser that exposes the model it built and can render a model.
type Xform[M any] interface {
	Parser
	Model() M
	Render(w *xmlstream.Writer, m M)
}

// Failer is implemented by parsers that can fail without a syntax error,
// for example when an item limit is exceeded.
type Failer interface {
	Err() error
}

// Preparer is implemented by transforms that derive fields of a model,
// such as extents, before it is rendered.
type Preparer[M any] interface {
	Prepare(m *M)
}

// Reconciler is implemented by transforms whose parsed model refers to
// sibling parts. Reconcile runs after every part of the package has been
// parsed and returns the references it could not resolve.
type Reconciler[M, S any] interface {
	Reconcile(m *M, siblings S) []string
}

// Parse drives p over src until p's root element closes or the input ends.
// Subtrees p rejects and subtrees whose element name is in ignore are
// skipped without being routed to p.
func Parse(src *xmlstream.Source, p Parser, ignore ...string) error {
	skipped := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		skipped[name] = struct{}{}
	}
	skip := 0
	started := false
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case xmlstream.Open:
			if skip > 0 {
				skip++
				continue
			}
			if _, ok := skipped[ev.Node.Name]; ok {
				skip = 1
				continue
			}
			if p.ParseOpen(ev.Node) {
				started = true
			} else {
				skip = 1
			}
		case xmlstream.Text:
			if skip == 0 && started {
				p.ParseText(ev.Text)
			}
		case xmlstream.Close:
			if skip > 0 {
				skip--
				continue
			}
			if started && !p.ParseClose(ev.Name) {
				return errOf(p)
			}
		}
	}
	if !started {
		return ErrNoRoot
	}
	return errOf(p)
}

func errOf(p Parser) error {
	if f, ok := p.(Failer); ok {
		return f.Err()
	}
	return nil
}

// Stack is the explicit record of which child currently receives events.
type Stack[T any] struct {
	items []T
}

// Push makes v the active delegate.
func (s *Stack[T]) Push(v T) { s.items = append(s.items, v) }

// Pop removes the active delegate.
func (s *Stack[T]) Pop() {
	if len(s.items) > 0 {
		s.items = s.items[:len(s.items)-1]
	}
}

// Top returns the active delegate.
func (s *Stack[T]) Top() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len is the delegation depth.
func (s *Stack[T]) Len() int { return len(s.items) }

// Reset clears the stack.
func (s *Stack[T]) Reset() { s.items = s.items[:0] }
