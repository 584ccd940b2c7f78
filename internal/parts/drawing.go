package parts

import (
	"strconv"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// Drawing is the raw xl/drawings/drawingN.xml model.
type Drawing struct {
	Anchors []DrawingAnchor
}

// DrawingAnchor places one picture. Kind is the anchor element name.
type DrawingAnchor struct {
	Kind    string
	EditAs  string
	From    model.Anchor
	To      *model.Anchor
	Extent  *model.Extent
	Picture Picture
}

// Picture is the <pic> of an anchor; relationship ids refer to the
// drawing's relationships.
type Picture struct {
	ID        int
	Name      string
	Descr     string
	EmbedID   string
	LinkRelID string
	Tooltip   string

	// Set by Reconcile: the media part name and the hyperlink target.
	Media string
	Link  string
}

func newMarkerXform(tag string) *xform.Composite[model.Anchor] {
	coord := func(tag string, set func(a *model.Anchor, v int64)) xform.Child[model.Anchor] {
		leaf := &xform.Leaf[int64]{
			Tag: tag,
			Decode: func(s string) int64 {
				i, _ := strconv.ParseInt(s, 10, 64)
				return i
			},
		}
		return xform.Bind(leaf, nil, func(a *model.Anchor, v int64) { set(a, v) })
	}
	return &xform.Composite[model.Anchor]{
		Tag: tag,
		Children: map[string]xform.Child[model.Anchor]{
			"col":    coord("col", func(a *model.Anchor, v int64) { a.Col = v }),
			"colOff": coord("colOff", func(a *model.Anchor, v int64) { a.ColOff = v }),
			"row":    coord("row", func(a *model.Anchor, v int64) { a.Row = v }),
			"rowOff": coord("rowOff", func(a *model.Anchor, v int64) { a.RowOff = v }),
		},
	}
}

func newExtentXform() *xform.Element[*model.Extent] {
	return &xform.Element[*model.Extent]{
		Tag: "ext",
		Decode: func(n xform.Node) *model.Extent {
			return &model.Extent{CX: int64Attr(n, "cx"), CY: int64Attr(n, "cy")}
		},
	}
}

func newPictureXform() *xform.Composite[Picture] {
	hlink := &xform.Element[[2]string]{
		Tag:    "hlinkClick",
		Decode: func(n xform.Node) [2]string { return [2]string{n.Attr("r:id"), n.Attr("tooltip")} },
	}
	cNvPr := &xform.Composite[Picture]{
		Tag: "cNvPr",
		Open: func(n xform.Node) Picture {
			return Picture{ID: n.Int("id", 0), Name: n.Attr("name"), Descr: n.Attr("descr")}
		},
		Children: map[string]xform.Child[Picture]{
			"hlinkClick": xform.Bind(hlink, nil, func(p *Picture, v [2]string) { p.LinkRelID, p.Tooltip = v[0], v[1] }),
		},
	}
	nvPicPr := &xform.Composite[Picture]{
		Tag: "nvPicPr",
		Children: map[string]xform.Child[Picture]{
			"cNvPr": xform.Bind(cNvPr, nil, func(p *Picture, v Picture) { *p = v }),
		},
	}
	blip := &xform.Element[string]{
		Tag:    "blip",
		Decode: func(n xform.Node) string { return n.Attr("r:embed") },
	}
	blipFill := &xform.Composite[string]{
		Tag: "blipFill",
		Children: map[string]xform.Child[string]{
			"blip": xform.Bind(blip, nil, func(s *string, v string) { *s = v }),
		},
	}
	return &xform.Composite[Picture]{
		Tag: "pic",
		Children: map[string]xform.Child[Picture]{
			"nvPicPr": xform.Bind(nvPicPr, nil, func(p *Picture, v Picture) {
				v.EmbedID = p.EmbedID
				*p = v
			}),
			"blipFill": xform.Bind(blipFill, nil, func(p *Picture, id string) { p.EmbedID = id }),
		},
	}
}

func newAnchorXform(kind string, pic *xform.Composite[Picture]) *xform.Composite[DrawingAnchor] {
	return &xform.Composite[DrawingAnchor]{
		Tag: kind,
		Open: func(n xform.Node) DrawingAnchor {
			return DrawingAnchor{Kind: kind, EditAs: n.Attr("editAs")}
		},
		Children: map[string]xform.Child[DrawingAnchor]{
			"from": xform.Bind(newMarkerXform("from"), nil, func(a *DrawingAnchor, m model.Anchor) { a.From = m }),
			"to":   xform.Bind(newMarkerXform("to"), nil, func(a *DrawingAnchor, m model.Anchor) { a.To = &m }),
			"ext":  xform.Bind(newExtentXform(), nil, func(a *DrawingAnchor, e *model.Extent) { a.Extent = e }),
			"pic":  xform.Bind(pic, nil, func(a *DrawingAnchor, p Picture) { a.Picture = p }),
		},
	}
}

// DrawingXform parses and renders a drawing part.
type DrawingXform struct {
	xform.Composite[Drawing]
}

// NewDrawingXform returns the transform for a drawing part. Anchors that
// hold something other than a picture are dropped.
func NewDrawingXform() *DrawingXform {
	keep := func(d *Drawing, a DrawingAnchor) {
		if a.Picture.EmbedID != "" {
			d.Anchors = append(d.Anchors, a)
		}
	}
	x := &DrawingXform{}
	children := map[string]xform.Child[Drawing]{}
	for _, kind := range []string{"twoCellAnchor", "oneCellAnchor", "absoluteAnchor"} {
		children[kind] = xform.BindEach[Drawing, DrawingAnchor](newAnchorXform(kind, newPictureXform()), nil, keep)
	}
	x.Composite = xform.Composite[Drawing]{Tag: "wsDr", Children: children}
	return x
}

// DrawingSiblings is what the relationship ids of a drawing resolve against.
type DrawingSiblings struct {
	Part string
	Rels Relationships
}

// Reconcile implements xform.Reconciler. Picture relationship ids are
// resolved into Media and Link; ids missing from the relationships are
// returned.
func (x *DrawingXform) Reconcile(d *Drawing, s DrawingSiblings) []string {
	var missing []string
	for i := range d.Anchors {
		p := &d.Anchors[i].Picture
		if rel, ok := s.Rels.ByID(p.EmbedID); ok {
			p.Media = ResolveTarget(s.Part, rel.Target)
		} else {
			missing = append(missing, p.EmbedID)
		}
		if p.LinkRelID == "" {
			continue
		}
		if rel, ok := s.Rels.ByID(p.LinkRelID); ok {
			p.Link = rel.Target
		} else {
			missing = append(missing, p.LinkRelID)
		}
	}
	return missing
}

func renderMarker(w *xmlstream.Writer, tag string, a model.Anchor) {
	w.OpenNode(tag)
	w.LeafNode("xdr:col", nil, strconv.FormatInt(a.Col, 10))
	w.LeafNode("xdr:colOff", nil, strconv.FormatInt(a.ColOff, 10))
	w.LeafNode("xdr:row", nil, strconv.FormatInt(a.Row, 10))
	w.LeafNode("xdr:rowOff", nil, strconv.FormatInt(a.RowOff, 10))
	w.CloseNode()
}

func extAttrs(e *model.Extent) []xmlstream.Attr {
	var cx, cy int64
	if e != nil {
		cx, cy = e.CX, e.CY
	}
	return []xmlstream.Attr{
		xmlstream.A("cx", strconv.FormatInt(cx, 10)),
		xmlstream.A("cy", strconv.FormatInt(cy, 10)),
	}
}

// Render writes the drawing part.
func (x *DrawingXform) Render(w *xmlstream.Writer, d Drawing) {
	w.OpenNode("xdr:wsDr",
		xmlstream.A("xmlns:xdr", NSDrawing),
		xmlstream.A("xmlns:a", NSDrawingMain),
		xmlstream.A("xmlns:r", NSRelationships),
	)
	for _, a := range d.Anchors {
		kind := a.Kind
		if kind == "" {
			kind = "oneCellAnchor"
			if a.To != nil {
				kind = "twoCellAnchor"
			}
		}
		w.OpenNode("xdr:"+kind, strAttr(nil, "editAs", a.EditAs)...)
		renderMarker(w, "xdr:from", a.From)
		if kind == "twoCellAnchor" && a.To != nil {
			renderMarker(w, "xdr:to", *a.To)
		} else {
			w.EmptyNode("xdr:ext", extAttrs(a.Extent)...)
		}
		p := a.Picture
		w.OpenNode("xdr:pic")
		w.OpenNode("xdr:nvPicPr")
		w.OpenNode("xdr:cNvPr", xmlstream.Int("id", p.ID), xmlstream.A("name", p.Name))
		if p.Descr != "" {
			w.AddAttribute("descr", p.Descr)
		}
		if p.LinkRelID != "" {
			w.EmptyNode("a:hlinkClick", strAttr([]xmlstream.Attr{xmlstream.A("r:id", p.LinkRelID)}, "tooltip", p.Tooltip)...)
		}
		w.CloseNode()
		w.OpenNode("xdr:cNvPicPr")
		w.EmptyNode("a:picLocks", xmlstream.Bool("noChangeAspect", true))
		w.CloseNode()
		w.CloseNode()
		w.OpenNode("xdr:blipFill")
		w.EmptyNode("a:blip", xmlstream.A("r:embed", p.EmbedID))
		w.OpenNode("a:stretch")
		w.EmptyNode("a:fillRect")
		w.CloseNode()
		w.CloseNode()
		w.OpenNode("xdr:spPr")
		w.OpenNode("a:xfrm")
		w.EmptyNode("a:off", xmlstream.Int("x", 0), xmlstream.Int("y", 0))
		w.EmptyNode("a:ext", extAttrs(a.Extent)...)
		w.CloseNode()
		w.OpenNode("a:prstGeom", xmlstream.A("prst", "rect"))
		w.EmptyNode("a:avLst")
		w.CloseNode()
		w.CloseNode()
		w.CloseNode()
		w.EmptyNode("xdr:clientData")
		w.CloseNode()
	}
	w.CloseNode()
}
