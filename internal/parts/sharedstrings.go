package parts

import (
	"encoding/json"
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/intern"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// SharedString is plain text or, when Runs is set, rich text.
type SharedString struct {
	Text string
	Runs model.RichText
}

// Value converts s into a cell value.
func (s SharedString) Value() model.Value {
	if s.Runs != nil {
		return s.Runs
	}
	return model.String(s.Text)
}

// Key identifies equal entries for interning.
func (s SharedString) Key() string {
	if s.Runs == nil {
		return s.Text
	}
	b, err := json.Marshal(s.Runs)
	if err != nil {
		return "\x00" + s.Runs.Text()
	}
	return "\x00" + string(b)
}

// SharedStrings is the raw xl/sharedStrings.xml model. Count and
// UniqueCount are the declared attributes; Items are the entries actually
// present.
type SharedStrings struct {
	Count       int
	UniqueCount int
	Items       []SharedString
}

// NewSharedStringsTable returns the interning table used during prepare.
func NewSharedStringsTable() *intern.SharedStrings[SharedString] {
	return intern.NewSharedStrings[SharedString]()
}

func needsPreserve(s string) bool {
	return s != strings.TrimSpace(s) || strings.ContainsAny(s, "\n\t")
}

func newTextXform() *xform.Leaf[string] {
	x := xform.String("t", "")
	x.Encode = func(s string) (string, bool) { return s, true }
	return x
}

func renderText(w *xmlstream.Writer, s string) {
	if needsPreserve(s) {
		w.LeafNode("t", []xmlstream.Attr{xmlstream.A("xml:space", "preserve")}, s)
		return
	}
	w.LeafNode("t", nil, s)
}

func newRichRunXform() *xform.Composite[model.RichTextRun] {
	return &xform.Composite[model.RichTextRun]{
		Tag: "r",
		Children: map[string]xform.Child[model.RichTextRun]{
			"rPr": xform.Bind(newFontXform("rPr", "rFont"), nil,
				func(r *model.RichTextRun, f *model.Font) { r.Font = f }),
			"t": xform.Bind(newTextXform(), nil,
				func(r *model.RichTextRun, s string) { r.Text += s }),
		},
	}
}

// richTextXform parses the content model shared by <si>, <is> and comment
// <text>: one <t>, or a sequence of <r> runs. Phonetic runs are skipped.
type richTextXform struct {
	xform.Composite[SharedString]
	font *xform.Composite[*model.Font]
}

func newRichTextXform(tag string) *richTextXform {
	x := &richTextXform{font: newFontXform("rPr", "rFont")}
	x.Composite = xform.Composite[SharedString]{
		Tag: tag,
		Children: map[string]xform.Child[SharedString]{
			"t": xform.Bind(newTextXform(), nil,
				func(s *SharedString, t string) { s.Text += t }),
			"r": xform.Bind(newRichRunXform(), nil,
				func(s *SharedString, r model.RichTextRun) {
					s.Runs = append(s.Runs, r)
					s.Text += r.Text
				}),
		},
	}
	return x
}

// Render writes tag with either a single <t> or the runs.
func (x *richTextXform) Render(w *xmlstream.Writer, s SharedString) {
	w.OpenNode(x.Tag)
	if s.Runs == nil {
		renderText(w, s.Text)
	} else {
		for _, r := range s.Runs {
			w.OpenNode("r")
			if r.Font != nil {
				x.font.Render(w, r.Font)
			}
			renderText(w, r.Text)
			w.CloseNode()
		}
	}
	w.CloseNode()
}

// NewSharedStringsXform returns the transform for xl/sharedStrings.xml.
func NewSharedStringsXform() *SharedStringsXform {
	x := &SharedStringsXform{si: newRichTextXform("si")}
	x.Composite = xform.Composite[SharedStrings]{
		Tag: "sst",
		Open: func(n xform.Node) SharedStrings {
			return SharedStrings{Count: n.Int("count", 0), UniqueCount: n.Int("uniqueCount", 0)}
		},
		Children: map[string]xform.Child[SharedStrings]{
			"si": xform.BindEach[SharedStrings, SharedString](x.si, nil,
				func(s *SharedStrings, v SharedString) { s.Items = append(s.Items, v) }),
		},
	}
	return x
}

// SharedStringsXform parses and renders the shared string table.
type SharedStringsXform struct {
	xform.Composite[SharedStrings]
	si *richTextXform
}

// Render writes the table; Count is the total number of references.
func (x *SharedStringsXform) Render(w *xmlstream.Writer, s SharedStrings) {
	w.OpenNode("sst",
		xmlstream.A("xmlns", NSMain),
		xmlstream.Int("count", s.Count),
		xmlstream.Int("uniqueCount", len(s.Items)),
	)
	for _, it := range s.Items {
		x.si.Render(w, it)
	}
	w.CloseNode()
}
