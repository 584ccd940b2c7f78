package parts

import (
	"strconv"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

func newColorXform(tag string) *xform.Element[*model.Color] {
	return &xform.Element[*model.Color]{
		Tag: tag,
		Decode: func(n xform.Node) *model.Color {
			c := &model.Color{
				ARGB:    n.Attr("rgb"),
				Theme:   optInt(n, "theme"),
				Indexed: optInt(n, "indexed"),
				Tint:    n.Float("tint", 0),
				Auto:    n.Bool("auto", false),
			}
			if *c == (model.Color{}) {
				return nil
			}
			return c
		},
		Encode: func(c *model.Color) ([]xmlstream.Attr, string, bool) {
			if c == nil {
				return nil, "", false
			}
			return colorAttrs(c), "", true
		},
	}
}

func colorAttrs(c *model.Color) []xmlstream.Attr {
	var attrs []xmlstream.Attr
	attrs = boolAttr(attrs, "auto", c.Auto)
	attrs = strAttr(attrs, "rgb", c.ARGB)
	if c.Theme != nil {
		attrs = append(attrs, xmlstream.Int("theme", *c.Theme))
	}
	if c.Indexed != nil {
		attrs = append(attrs, xmlstream.Int("indexed", *c.Indexed))
	}
	return floatAttr(attrs, "tint", c.Tint)
}

func valString(tag string) *xform.Leaf[string] { return xform.String(tag, "val") }
func valInt(tag string) *xform.Leaf[int]       { return xform.Int(tag, "val") }

// newFontXform handles <font> in styles (nameTag "name") and <rPr> in rich
// text runs (nameTag "rFont").
func newFontXform(tag, nameTag string) *xform.Composite[*model.Font] {
	flag := func(name string, get func(*model.Font) bool, set func(*model.Font, bool)) xform.Child[*model.Font] {
		return xform.Bind(xform.Flag(name),
			func(f *model.Font) bool { return get(f) },
			func(f **model.Font, v bool) { set(*f, v) })
	}
	underline := &xform.Leaf[string]{
		Tag: "u", Attr: "val", Default: "single",
		Decode: func(s string) string { return s },
		Encode: func(s string) (string, bool) {
			if s == "single" {
				return "", true
			}
			return s, s != ""
		},
	}
	return &xform.Composite[*model.Font]{
		Tag:  tag,
		Open: func(xform.Node) *model.Font { return &model.Font{} },
		Children: map[string]xform.Child[*model.Font]{
			"b":       flag("b", func(f *model.Font) bool { return f.Bold }, func(f *model.Font, v bool) { f.Bold = v }),
			"i":       flag("i", func(f *model.Font) bool { return f.Italic }, func(f *model.Font, v bool) { f.Italic = v }),
			"strike":  flag("strike", func(f *model.Font) bool { return f.Strike }, func(f *model.Font, v bool) { f.Strike = v }),
			"outline": flag("outline", func(f *model.Font) bool { return f.Outline }, func(f *model.Font, v bool) { f.Outline = v }),
			"shadow":  flag("shadow", func(f *model.Font) bool { return f.Shadow }, func(f *model.Font, v bool) { f.Shadow = v }),
			"u": xform.Bind(underline, func(f *model.Font) string { return f.Underline },
				func(f **model.Font, v string) { (*f).Underline = v }),
			"vertAlign": xform.Bind(valString("vertAlign"), func(f *model.Font) string { return f.VertAlign },
				func(f **model.Font, v string) { (*f).VertAlign = v }),
			"sz": xform.Bind(xform.Float("sz", "val"), func(f *model.Font) float64 { return f.Size },
				func(f **model.Font, v float64) { (*f).Size = v }),
			"color": xform.Bind(newColorXform("color"), func(f *model.Font) *model.Color { return f.Color },
				func(f **model.Font, v *model.Color) { (*f).Color = v }),
			nameTag: xform.Bind(valString(nameTag), func(f *model.Font) string { return f.Name },
				func(f **model.Font, v string) { (*f).Name = v }),
			"family": xform.Bind(valInt("family"), func(f *model.Font) int { return f.Family },
				func(f **model.Font, v int) { (*f).Family = v }),
			"charset": xform.Bind(valInt("charset"), func(f *model.Font) int { return f.Charset },
				func(f **model.Font, v int) { (*f).Charset = v }),
			"scheme": xform.Bind(valString("scheme"), func(f *model.Font) string { return f.Scheme },
				func(f **model.Font, v string) { (*f).Scheme = v }),
		},
		Order: []string{"b", "i", "strike", "outline", "shadow", "u", "vertAlign", "sz", "color", nameTag, "family", "charset", "scheme"},
	}
}

func newPatternFillXform() *xform.Composite[*model.Fill] {
	return &xform.Composite[*model.Fill]{
		Tag: "patternFill",
		Open: func(n xform.Node) *model.Fill {
			return &model.Fill{Type: model.FillPattern, Pattern: n.Attr("patternType")}
		},
		Attrs: func(f *model.Fill) []xmlstream.Attr {
			return strAttr(nil, "patternType", f.Pattern)
		},
		Children: map[string]xform.Child[*model.Fill]{
			"fgColor": xform.Bind(newColorXform("fgColor"), func(f *model.Fill) *model.Color { return f.FgColor },
				func(f **model.Fill, c *model.Color) { (*f).FgColor = c }),
			"bgColor": xform.Bind(newColorXform("bgColor"), func(f *model.Fill) *model.Color { return f.BgColor },
				func(f **model.Fill, c *model.Color) { (*f).BgColor = c }),
		},
		Order: []string{"fgColor", "bgColor"},
	}
}

func newGradientFillXform() *xform.Composite[*model.Fill] {
	stop := &xform.Composite[model.GradientStop]{
		Tag:  "stop",
		Open: func(n xform.Node) model.GradientStop { return model.GradientStop{Position: n.Float("position", 0)} },
		Attrs: func(s model.GradientStop) []xmlstream.Attr {
			return []xmlstream.Attr{xmlstream.Float("position", s.Position)}
		},
		Children: map[string]xform.Child[model.GradientStop]{
			"color": xform.Bind(newColorXform("color"), func(s model.GradientStop) *model.Color { return &s.Color },
				func(s *model.GradientStop, c *model.Color) {
					if c != nil {
						s.Color = *c
					}
				}),
		},
		Order: []string{"color"},
	}
	return &xform.Composite[*model.Fill]{
		Tag: "gradientFill",
		Open: func(n xform.Node) *model.Fill {
			g := "linear"
			if n.Attr("type") == "path" {
				g = "path"
			}
			return &model.Fill{
				Type: model.FillGradient, Gradient: g, Degree: n.Float("degree", 0),
				Left: n.Float("left", 0), Right: n.Float("right", 0), Top: n.Float("top", 0), Bottom: n.Float("bottom", 0),
			}
		},
		Attrs: func(f *model.Fill) []xmlstream.Attr {
			var attrs []xmlstream.Attr
			if f.Gradient == "path" {
				attrs = append(attrs, xmlstream.A("type", "path"))
				attrs = floatAttr(attrs, "left", f.Left)
				attrs = floatAttr(attrs, "right", f.Right)
				attrs = floatAttr(attrs, "top", f.Top)
				return floatAttr(attrs, "bottom", f.Bottom)
			}
			return floatAttr(attrs, "degree", f.Degree)
		},
		Children: map[string]xform.Child[*model.Fill]{
			"stop": xform.BindEach[*model.Fill, model.GradientStop](stop,
				func(f *model.Fill) []model.GradientStop { return f.Stops },
				func(f **model.Fill, s model.GradientStop) { (*f).Stops = append((*f).Stops, s) }),
		},
		Order: []string{"stop"},
	}
}

// fillXform switches between pattern and gradient fills.
type fillXform struct {
	xform.Composite[*model.Fill]
	pattern  *xform.Composite[*model.Fill]
	gradient *xform.Composite[*model.Fill]
}

func newFillXform() *fillXform {
	x := &fillXform{pattern: newPatternFillXform(), gradient: newGradientFillXform()}
	set := func(f **model.Fill, v *model.Fill) { *f = v }
	x.Composite = xform.Composite[*model.Fill]{
		Tag: "fill",
		Children: map[string]xform.Child[*model.Fill]{
			"patternFill":  xform.Bind(x.pattern, nil, set),
			"gradientFill": xform.Bind(x.gradient, nil, set),
		},
	}
	return x
}

func (x *fillXform) Render(w *xmlstream.Writer, f *model.Fill) {
	w.OpenNode("fill")
	if f != nil && f.Type == model.FillGradient {
		x.gradient.Render(w, f)
	} else if f != nil {
		x.pattern.Render(w, f)
	} else {
		w.EmptyNode("patternFill", xmlstream.A("patternType", "none"))
	}
	w.CloseNode()
}

func newBorderEdgeXform(tag string) *xform.Composite[*model.BorderEdge] {
	return &xform.Composite[*model.BorderEdge]{
		Tag: tag,
		Open: func(n xform.Node) *model.BorderEdge {
			return &model.BorderEdge{Style: n.Attr("style")}
		},
		Attrs: func(e *model.BorderEdge) []xmlstream.Attr {
			if e == nil {
				return nil
			}
			return strAttr(nil, "style", e.Style)
		},
		Children: map[string]xform.Child[*model.BorderEdge]{
			"color": xform.Bind(newColorXform("color"),
				func(e *model.BorderEdge) *model.Color {
					if e == nil {
						return nil
					}
					return e.Color
				},
				func(e **model.BorderEdge, c *model.Color) { (*e).Color = c }),
		},
		Order: []string{"color"},
		Close: func(e **model.BorderEdge) {
			if (*e).Style == "" && (*e).Color == nil {
				*e = nil
			}
		},
	}
}

func newBorderXform() *xform.Composite[*model.Border] {
	edge := func(tag string, get func(*model.Border) *model.BorderEdge, set func(*model.Border, *model.BorderEdge)) xform.Child[*model.Border] {
		return xform.Bind(newBorderEdgeXform(tag), get, func(b **model.Border, e *model.BorderEdge) { set(*b, e) })
	}
	left := func(b *model.Border) *model.BorderEdge { return b.Left }
	setLeft := func(b *model.Border, e *model.BorderEdge) { b.Left = e }
	right := func(b *model.Border) *model.BorderEdge { return b.Right }
	setRight := func(b *model.Border, e *model.BorderEdge) { b.Right = e }
	return &xform.Composite[*model.Border]{
		Tag: "border",
		Open: func(n xform.Node) *model.Border {
			return &model.Border{DiagonalUp: n.Bool("diagonalUp", false), DiagonalDown: n.Bool("diagonalDown", false)}
		},
		Attrs: func(b *model.Border) []xmlstream.Attr {
			attrs := boolAttr(nil, "diagonalUp", b.DiagonalUp)
			return boolAttr(attrs, "diagonalDown", b.DiagonalDown)
		},
		Children: map[string]xform.Child[*model.Border]{
			"left":   edge("left", left, setLeft),
			"start":  edge("start", nil, setLeft),
			"right":  edge("right", right, setRight),
			"end":    edge("end", nil, setRight),
			"top":    edge("top", func(b *model.Border) *model.BorderEdge { return b.Top }, func(b *model.Border, e *model.BorderEdge) { b.Top = e }),
			"bottom": edge("bottom", func(b *model.Border) *model.BorderEdge { return b.Bottom }, func(b *model.Border, e *model.BorderEdge) { b.Bottom = e }),
			"diagonal": edge("diagonal", func(b *model.Border) *model.BorderEdge { return b.Diagonal },
				func(b *model.Border, e *model.BorderEdge) { b.Diagonal = e }),
		},
		Order: []string{"left", "right", "top", "bottom", "diagonal"},
	}
}

func newAlignmentXform() *xform.Element[*model.Alignment] {
	return &xform.Element[*model.Alignment]{
		Tag: "alignment",
		Decode: func(n xform.Node) *model.Alignment {
			return &model.Alignment{
				Horizontal:   n.Attr("horizontal"),
				Vertical:     n.Attr("vertical"),
				WrapText:     n.Bool("wrapText", false),
				ShrinkToFit:  n.Bool("shrinkToFit", false),
				Indent:       n.Int("indent", 0),
				ReadingOrder: n.Int("readingOrder", 0),
				TextRotation: n.Int("textRotation", 0),
			}
		},
		Encode: func(a *model.Alignment) ([]xmlstream.Attr, string, bool) {
			if a == nil {
				return nil, "", false
			}
			attrs := strAttr(nil, "horizontal", a.Horizontal)
			attrs = strAttr(attrs, "vertical", a.Vertical)
			attrs = boolAttr(attrs, "wrapText", a.WrapText)
			attrs = boolAttr(attrs, "shrinkToFit", a.ShrinkToFit)
			attrs = intAttr(attrs, "indent", a.Indent)
			attrs = intAttr(attrs, "readingOrder", a.ReadingOrder)
			attrs = intAttr(attrs, "textRotation", a.TextRotation)
			return attrs, "", true
		},
	}
}

func newProtectionXform() *xform.Element[*model.Protection] {
	return &xform.Element[*model.Protection]{
		Tag: "protection",
		Decode: func(n xform.Node) *model.Protection {
			return &model.Protection{Locked: optBool(n, "locked"), Hidden: n.Bool("hidden", false)}
		},
		Encode: func(p *model.Protection) ([]xmlstream.Attr, string, bool) {
			if p == nil {
				return nil, "", false
			}
			attrs := optBoolAttr(nil, "locked", p.Locked)
			return boolAttr(attrs, "hidden", p.Hidden), "", true
		},
	}
}

// Xf is one cellXfs entry: indices into the font, fill, border and number
// format tables plus inline alignment and protection.
type Xf struct {
	NumFmtID   int
	FontID     int
	FillID     int
	BorderID   int
	XfID       int
	ApplyFont  bool
	Alignment  *model.Alignment
	Protection *model.Protection
}

func newXfXform() *xform.Composite[Xf] {
	return &xform.Composite[Xf]{
		Tag: "xf",
		Open: func(n xform.Node) Xf {
			return Xf{
				NumFmtID: n.Int("numFmtId", 0), FontID: n.Int("fontId", 0), FillID: n.Int("fillId", 0),
				BorderID: n.Int("borderId", 0), XfID: n.Int("xfId", 0),
				ApplyFont: n.Bool("applyFont", false),
			}
		},
		Attrs: func(x Xf) []xmlstream.Attr {
			attrs := []xmlstream.Attr{
				xmlstream.Int("numFmtId", x.NumFmtID), xmlstream.Int("fontId", x.FontID),
				xmlstream.Int("fillId", x.FillID), xmlstream.Int("borderId", x.BorderID),
				xmlstream.Int("xfId", x.XfID),
			}
			attrs = boolAttr(attrs, "applyNumberFormat", x.NumFmtID != 0)
			attrs = boolAttr(attrs, "applyFont", x.ApplyFont || x.FontID != 0)
			attrs = boolAttr(attrs, "applyFill", x.FillID != 0)
			attrs = boolAttr(attrs, "applyBorder", x.BorderID != 0)
			attrs = boolAttr(attrs, "applyAlignment", x.Alignment != nil)
			return boolAttr(attrs, "applyProtection", x.Protection != nil)
		},
		Children: map[string]xform.Child[Xf]{
			"alignment": xform.Bind(newAlignmentXform(), func(x Xf) *model.Alignment { return x.Alignment },
				func(x *Xf, a *model.Alignment) { x.Alignment = a }),
			"protection": xform.Bind(newProtectionXform(), func(x Xf) *model.Protection { return x.Protection },
				func(x *Xf, p *model.Protection) { x.Protection = p }),
		},
		Order: []string{"alignment", "protection"},
	}
}

// NumFmt is one custom number format.
type NumFmt struct {
	ID   int
	Code string
}

func newNumFmtXform() *xform.Element[NumFmt] {
	return &xform.Element[NumFmt]{
		Tag: "numFmt",
		Decode: func(n xform.Node) NumFmt {
			return NumFmt{ID: n.Int("numFmtId", 0), Code: n.Attr("formatCode")}
		},
		Encode: func(f NumFmt) ([]xmlstream.Attr, string, bool) {
			return []xmlstream.Attr{xmlstream.A("numFmtId", strconv.Itoa(f.ID)), xmlstream.A("formatCode", f.Code)}, "", true
		},
	}
}
