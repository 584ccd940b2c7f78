package parts

import (
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Comments is the raw xl/commentsN.xml model.
type Comments struct {
	Authors []string
	Items   []CommentEntry
}

// CommentEntry is one <comment>; AuthorID indexes Authors.
type CommentEntry struct {
	Ref      string
	AuthorID int
	Text     SharedString
}

// Author returns the author name of c, or "" for a dangling id.
func (cs Comments) Author(c CommentEntry) string {
	if c.AuthorID < 0 || c.AuthorID >= len(cs.Authors) {
		return ""
	}
	return cs.Authors[c.AuthorID]
}

// CommentsXform parses and renders a comments part.
type CommentsXform struct {
	xform.Composite[Comments]
	text *richTextXform
}

// NewCommentsXform returns the transform for a comments part.
func NewCommentsXform() *CommentsXform {
	x := &CommentsXform{text: newRichTextXform("text")}
	comment := &xform.Composite[CommentEntry]{
		Tag: "comment",
		Open: func(n xform.Node) CommentEntry {
			return CommentEntry{Ref: n.Attr("ref"), AuthorID: n.Int("authorId", 0)}
		},
		Children: map[string]xform.Child[CommentEntry]{
			"text": xform.Bind[CommentEntry, SharedString](x.text, nil,
				func(c *CommentEntry, s SharedString) { c.Text = s }),
		},
	}
	x.Composite = xform.Composite[Comments]{
		Tag: "comments",
		Children: map[string]xform.Child[Comments]{
			"authors": xform.Bind(&xform.List[string]{Tag: "authors", Child: xform.String("author", "")}, nil,
				func(cs *Comments, v []string) { cs.Authors = v }),
			"commentList": xform.Bind(&xform.List[CommentEntry]{Tag: "commentList", Child: comment}, nil,
				func(cs *Comments, v []CommentEntry) { cs.Items = v }),
		},
	}
	return x
}

// Render writes the comments part.
func (x *CommentsXform) Render(w *xmlstream.Writer, cs Comments) {
	w.OpenNode("comments", xmlstream.A("xmlns", NSMain))
	w.OpenNode("authors")
	for _, a := range cs.Authors {
		w.LeafNode("author", nil, a)
	}
	w.CloseNode()
	w.OpenNode("commentList")
	for _, c := range cs.Items {
		w.OpenNode("comment", xmlstream.A("ref", c.Ref), xmlstream.Int("authorId", c.AuthorID))
		x.text.Render(w, c.Text)
		w.CloseNode()
	}
	w.CloseNode()
	w.CloseNode()
}
