package parts

import (
	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// TableEntry is the raw xl/tables/tableN.xml model. ID is unique across
// the package.
type TableEntry struct {
	ID int
	model.Table
}

func newTableColumnXform() *xform.Composite[model.TableColumn] {
	return &xform.Composite[model.TableColumn]{
		Tag: "tableColumn",
		Open: func(n xform.Node) model.TableColumn {
			return model.TableColumn{
				Name:              n.Attr("name"),
				TotalsRowFunction: n.Attr("totalsRowFunction"),
				TotalsRowLabel:    n.Attr("totalsRowLabel"),
			}
		},
		Children: map[string]xform.Child[model.TableColumn]{
			"totalsRowFormula": xform.Bind(xform.String("totalsRowFormula", ""), nil,
				func(c *model.TableColumn, f string) { c.TotalsRowFormula = f }),
		},
	}
}

// TableXform parses and renders a table part.
type TableXform struct {
	xform.Composite[TableEntry]
}

// NewTableXform returns the transform for a table part.
func NewTableXform() *TableXform {
	style := &xform.Element[model.TableStyle]{
		Tag: "tableStyleInfo",
		Decode: func(n xform.Node) model.TableStyle {
			return model.TableStyle{
				Name:              n.Attr("name"),
				ShowFirstColumn:   n.Bool("showFirstColumn", false),
				ShowLastColumn:    n.Bool("showLastColumn", false),
				ShowRowStripes:    n.Bool("showRowStripes", false),
				ShowColumnStripes: n.Bool("showColumnStripes", false),
			}
		},
	}
	x := &TableXform{}
	x.Composite = xform.Composite[TableEntry]{
		Tag: "table",
		Open: func(n xform.Node) TableEntry {
			return TableEntry{
				ID: n.Int("id", 0),
				Table: model.Table{
					Name:        n.Attr("name"),
					DisplayName: n.Attr("displayName"),
					Ref:         n.Attr("ref"),
					HeaderRow:   n.Int("headerRowCount", 1) > 0,
					TotalsRow:   n.Int("totalsRowCount", 0) > 0,
				},
			}
		},
		Children: map[string]xform.Child[TableEntry]{
			"autoFilter": xform.Bind(attrOnly("autoFilter", "ref"), nil,
				func(t *TableEntry, _ string) { t.AutoFilter = true }),
			"tableColumns": xform.Bind(&xform.List[model.TableColumn]{Tag: "tableColumns", Child: newTableColumnXform()}, nil,
				func(t *TableEntry, v []model.TableColumn) { t.Columns = v }),
			"tableStyleInfo": xform.Bind(style, nil, func(t *TableEntry, s model.TableStyle) { t.Style = s }),
		},
	}
	return x
}

// filterRef is the table range without its totals row.
func filterRef(t TableEntry) string {
	r, err := address.ParseRange(t.Ref)
	if err != nil || !t.TotalsRow || r.Bottom == r.Top {
		return t.Ref
	}
	r.Bottom--
	return r.String()
}

// Render writes the table part.
func (x *TableXform) Render(w *xmlstream.Writer, t TableEntry) {
	display := t.DisplayName
	if display == "" {
		display = t.Name
	}
	attrs := []xmlstream.Attr{
		xmlstream.A("xmlns", NSMain),
		xmlstream.Int("id", t.ID),
		xmlstream.A("name", t.Name),
		xmlstream.A("displayName", display),
		xmlstream.A("ref", t.Ref),
	}
	if !t.HeaderRow {
		attrs = append(attrs, xmlstream.Int("headerRowCount", 0))
	}
	if t.TotalsRow {
		attrs = append(attrs, xmlstream.Int("totalsRowCount", 1))
	} else {
		attrs = append(attrs, xmlstream.Bool("totalsRowShown", false))
	}
	w.OpenNode("table", attrs...)
	if t.AutoFilter && t.HeaderRow {
		w.EmptyNode("autoFilter", xmlstream.A("ref", filterRef(t)))
	}
	w.OpenNode("tableColumns", xmlstream.Int("count", len(t.Columns)))
	for i, c := range t.Columns {
		ca := []xmlstream.Attr{xmlstream.Int("id", i+1), xmlstream.A("name", c.Name)}
		ca = strAttr(ca, "totalsRowLabel", c.TotalsRowLabel)
		ca = strAttr(ca, "totalsRowFunction", c.TotalsRowFunction)
		w.OpenNode("tableColumn", ca...)
		if c.TotalsRowFormula != "" {
			w.LeafNode("totalsRowFormula", nil, c.TotalsRowFormula)
		}
		w.CloseNode()
	}
	w.CloseNode()
	s := t.Style
	if s.Name == "" {
		s.Name = "TableStyleMedium2"
	}
	w.EmptyNode("tableStyleInfo",
		xmlstream.A("name", s.Name),
		xmlstream.Bool("showFirstColumn", s.ShowFirstColumn),
		xmlstream.Bool("showLastColumn", s.ShowLastColumn),
		xmlstream.Bool("showRowStripes", s.ShowRowStripes),
		xmlstream.Bool("showColumnStripes", s.ShowColumnStripes),
	)
	w.CloseNode()
}
