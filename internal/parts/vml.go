package parts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// VMLNote is the position and visibility of one note shape. Row and Col
// are 1-based.
type VMLNote struct {
	Row     int
	Col     int
	Visible bool
}

// VMLDrawing is the raw legacy drawing that positions the notes of a sheet.
type VMLDrawing struct {
	Notes []VMLNote
}

// NewVMLXform returns a transform for a legacy VML drawing. Only note
// shapes are read; every other shape is skipped. Parse it from a Source
// built with xmlstream.Lenient, legacy drawings are rarely well formed.
func NewVMLXform(sheetIndex int) *VMLXform {
	clientData := &xform.Composite[VMLNote]{
		Tag:  "ClientData",
		Open: func(xform.Node) VMLNote { return VMLNote{Row: -1, Col: -1} },
		Children: map[string]xform.Child[VMLNote]{
			"Row":     xform.Bind(xform.Int("Row", ""), nil, func(v *VMLNote, i int) { v.Row = i }),
			"Column":  xform.Bind(xform.Int("Column", ""), nil, func(v *VMLNote, i int) { v.Col = i }),
			"Visible": xform.Bind(xform.String("Visible", ""), nil, func(v *VMLNote, _ string) { v.Visible = true }),
		},
	}
	shape := &xform.Composite[VMLNote]{
		Tag:  "shape",
		Open: func(xform.Node) VMLNote { return VMLNote{Row: -1, Col: -1} },
		Children: map[string]xform.Child[VMLNote]{
			"ClientData": xform.Bind(clientData, nil, func(v *VMLNote, c VMLNote) {
				if c.Row >= 0 && c.Col >= 0 {
					*v = VMLNote{Row: c.Row + 1, Col: c.Col + 1, Visible: c.Visible}
				}
			}),
		},
	}
	x := &VMLXform{sheet: sheetIndex}
	x.Composite = xform.Composite[VMLDrawing]{
		Tag: "xml",
		Children: map[string]xform.Child[VMLDrawing]{
			"shape": xform.BindEach[VMLDrawing, VMLNote](shape, nil, func(d *VMLDrawing, v VMLNote) {
				if v.Row > 0 {
					d.Notes = append(d.Notes, v)
				}
			}),
		},
	}
	return x
}

// VMLXform parses and renders a legacy drawing part.
type VMLXform struct {
	xform.Composite[VMLDrawing]
	sheet int
}

// Render writes note shapes anchored next to their cells.
func (x *VMLXform) Render(w *xmlstream.Writer, d VMLDrawing) {
	w.OpenNode("xml",
		xmlstream.A("xmlns:v", "urn:schemas-microsoft-com:vml"),
		xmlstream.A("xmlns:o", "urn:schemas-microsoft-com:office:office"),
		xmlstream.A("xmlns:x", "urn:schemas-microsoft-com:office:excel"),
	)
	w.OpenNode("o:shapelayout", xmlstream.A("v:ext", "edit"))
	w.EmptyNode("o:idmap", xmlstream.A("v:ext", "edit"), xmlstream.Int("data", x.sheet))
	w.CloseNode()

	w.OpenNode("v:shapetype",
		xmlstream.A("id", "_x0000_t202"), xmlstream.A("coordsize", "21600,21600"),
		xmlstream.Int("o:spt", 202), xmlstream.A("path", "m,l,21600r21600,l21600,xe"))
	w.EmptyNode("v:stroke", xmlstream.A("joinstyle", "miter"))
	w.EmptyNode("v:path", xmlstream.A("gradientshapeok", "t"), xmlstream.A("o:connecttype", "rect"))
	w.CloseNode()

	for i, n := range d.Notes {
		visibility := "hidden"
		if n.Visible {
			visibility = "visible"
		}
		w.OpenNode("v:shape",
			xmlstream.A("id", fmt.Sprintf("_x0000_s%d", x.sheet*1024+i+1)),
			xmlstream.A("type", "#_x0000_t202"),
			xmlstream.A("style", "position:absolute;margin-left:105.3pt;margin-top:10.5pt;width:97.8pt;height:59.1pt;z-index:1;visibility:"+visibility),
			xmlstream.A("fillcolor", "infoBackground [80]"),
			xmlstream.A("strokecolor", "none [81]"),
			xmlstream.A("o:insetmode", "auto"),
		)
		w.EmptyNode("v:fill", xmlstream.A("color2", "infoBackground [80]"))
		w.EmptyNode("v:shadow", xmlstream.A("color", "none [81]"), xmlstream.A("obscured", "t"))
		w.EmptyNode("v:path", xmlstream.A("o:connecttype", "none"))
		w.OpenNode("v:textbox", xmlstream.A("style", "mso-direction-alt:auto"))
		w.LeafNode("div", []xmlstream.Attr{xmlstream.A("style", "text-align:left")}, "")
		w.CloseNode()
		w.OpenNode("x:ClientData", xmlstream.A("ObjectType", "Note"))
		w.EmptyNode("x:MoveWithCells")
		w.EmptyNode("x:SizeWithCells")
		w.LeafNode("x:Anchor", nil, noteAnchor(n))
		w.LeafNode("x:AutoFill", nil, "False")
		w.LeafNode("x:Row", nil, strconv.Itoa(n.Row-1))
		w.LeafNode("x:Column", nil, strconv.Itoa(n.Col-1))
		if n.Visible {
			w.EmptyNode("x:Visible")
		}
		w.CloseNode()
		w.CloseNode()
	}
	w.CloseNode()
}

// noteAnchor places the note box one column right of its cell.
func noteAnchor(n VMLNote) string {
	parts := []int{n.Col, 15, n.Row - 1, 10, n.Col + 2, 15, n.Row + 3, 4}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ", ")
}
