package xform

import (
	"errors"

	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Child binds a child transform into a parent model of type M.
type Child[M any] struct {
	Parser Parser
	assign func(m *M)
	render func(w *xmlstream.Writer, m M)
}

// Bind connects x to the parent model: set receives the child's model when
// its element closes, get selects what to render.
func Bind[M, C any](x Xform[C], get func(M) C, set func(*M, C)) Child[M] {
	return Child[M]{
		Parser: x,
		assign: func(m *M) { set(m, x.Model()) },
		render: func(w *xmlstream.Writer, m M) {
			if get != nil {
				x.Render(w, get(m))
			}
		},
	}
}

// Composite parses an element with heterogeneous children looked up by tag.
type Composite[M any] struct {
	Tag string
	// Open builds a fresh model from the start tag. The zero M is used when nil.
	Open func(n Node) M
	// Attrs lists start-tag attributes for Render.
	Attrs func(m M) []xmlstream.Attr
	// Children maps child element names to their transforms.
	Children map[string]Child[M]
	// Order is the child render order.
	Order []string
	// Close runs after the element's own end tag.
	Close func(m *M)

	model  M
	inside bool
	active Stack[Child[M]]
}

// ParseOpen implements Parser.
func (c *Composite[M]) ParseOpen(n Node) bool {
	if child, ok := c.active.Top(); ok {
		return child.Parser.ParseOpen(n)
	}
	if !c.inside {
		if n.Name != c.Tag {
			return false
		}
		c.inside = true
		c.active.Reset()
		var zero M
		c.model = zero
		if c.Open != nil {
			c.model = c.Open(n)
		}
		return true
	}
	child, ok := c.Children[n.Name]
	if !ok || !child.Parser.ParseOpen(n) {
		return false
	}
	c.active.Push(child)
	return true
}

// ParseText implements Parser.
func (c *Composite[M]) ParseText(text string) {
	if child, ok := c.active.Top(); ok {
		child.Parser.ParseText(text)
	}
}

// ParseClose implements Parser.
func (c *Composite[M]) ParseClose(name string) bool {
	if child, ok := c.active.Top(); ok {
		if !child.Parser.ParseClose(name) {
			child.assign(&c.model)
			c.active.Pop()
		}
		return true
	}
	if c.inside && name == c.Tag {
		c.inside = false
		if c.Close != nil {
			c.Close(&c.model)
		}
		return false
	}
	return true
}

// Model returns the last parsed model.
func (c *Composite[M]) Model() M { return c.model }

// Render writes the element and its children in Order.
func (c *Composite[M]) Render(w *xmlstream.Writer, m M) {
	var attrs []xmlstream.Attr
	if c.Attrs != nil {
		attrs = c.Attrs(m)
	}
	w.OpenNode(c.Tag, attrs...)
	c.RenderChildren(w, m)
	w.CloseNode()
}

// RenderChildren writes only the children, for wrappers with custom start tags.
func (c *Composite[M]) RenderChildren(w *xmlstream.Writer, m M) {
	for _, name := range c.Order {
		if child, ok := c.Children[name]; ok && child.render != nil {
			child.render(w, m)
		}
	}
}

// Err reports failures recorded by child transforms.
func (c *Composite[M]) Err() error {
	var errs []error
	for _, child := range c.Children {
		if f, ok := child.Parser.(Failer); ok {
			errs = append(errs, f.Err())
		}
	}
	return errors.Join(errs...)
}
