package parts

import (
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// PivotCache is the raw pivotCacheDefinition model together with the
// records written next to it.
type PivotCache struct {
	RecordsRelID string
	Sheet        string
	Ref          string
	Fields       []PivotCacheField
	Records      [][]PivotValue
}

// PivotCacheField is one source column. Items lists the distinct values
// of axis fields; value fields are Numeric and carry their bounds.
type PivotCacheField struct {
	Name    string
	Items   []string
	Numeric bool
	Min     float64
	Max     float64
}

// PivotValue kinds.
const (
	PivotIndex   = 'x'
	PivotNumber  = 'n'
	PivotString  = 's'
	PivotMissing = 'm'
)

// PivotValue is one cell of a cache record.
type PivotValue struct {
	Kind   byte
	Index  int
	Number float64
	Text   string
}

// PivotDataField aggregates cache field Field.
type PivotDataField struct {
	Name     string
	Field    int
	Subtotal string
}

// PivotTableDef is the raw pivotTableDefinition model.
type PivotTableDef struct {
	Name       string
	CacheID    int
	Location   string
	RowFields  []int
	ColFields  []int
	DataFields []PivotDataField
	// Fields carries the item count of every cache field; -1 marks fields
	// that are not on an axis.
	Fields []int
}

// PivotCacheXform parses and renders a pivot cache definition.
type PivotCacheXform struct {
	xform.Composite[PivotCache]
}

// NewPivotCacheXform returns the transform for a pivot cache definition.
// Shared items are not read back.
func NewPivotCacheXform() *PivotCacheXform {
	source := &xform.Element[[2]string]{
		Tag:    "worksheetSource",
		Decode: func(n xform.Node) [2]string { return [2]string{n.Attr("sheet"), n.Attr("ref")} },
	}
	cacheSource := &xform.Composite[[2]string]{
		Tag: "cacheSource",
		Children: map[string]xform.Child[[2]string]{
			"worksheetSource": xform.Bind(source, nil, func(v *[2]string, s [2]string) { *v = s }),
		},
	}
	field := &xform.Element[PivotCacheField]{
		Tag:    "cacheField",
		Decode: func(n xform.Node) PivotCacheField { return PivotCacheField{Name: n.Attr("name")} },
	}
	x := &PivotCacheXform{}
	x.Composite = xform.Composite[PivotCache]{
		Tag: "pivotCacheDefinition",
		Open: func(n xform.Node) PivotCache {
			return PivotCache{RecordsRelID: n.Attr("r:id")}
		},
		Children: map[string]xform.Child[PivotCache]{
			"cacheSource": xform.Bind(cacheSource, nil, func(c *PivotCache, s [2]string) { c.Sheet, c.Ref = s[0], s[1] }),
			"cacheFields": xform.Bind(&xform.List[PivotCacheField]{Tag: "cacheFields", Child: field}, nil,
				func(c *PivotCache, v []PivotCacheField) { c.Fields = v }),
		},
	}
	return x
}

// Render writes the cache definition.
func (x *PivotCacheXform) Render(w *xmlstream.Writer, c PivotCache) {
	w.OpenNode("pivotCacheDefinition",
		xmlstream.A("xmlns", NSMain),
		xmlstream.A("xmlns:r", NSRelationships),
		xmlstream.A("r:id", c.RecordsRelID),
		xmlstream.Bool("refreshOnLoad", true),
		xmlstream.Int("createdVersion", 8),
		xmlstream.Int("refreshedVersion", 8),
		xmlstream.Int("minRefreshableVersion", 3),
		xmlstream.Int("recordCount", len(c.Records)),
	)
	w.OpenNode("cacheSource", xmlstream.A("type", "worksheet"))
	w.EmptyNode("worksheetSource", xmlstream.A("ref", c.Ref), xmlstream.A("sheet", c.Sheet))
	w.CloseNode()
	w.OpenNode("cacheFields", xmlstream.Int("count", len(c.Fields)))
	for _, f := range c.Fields {
		w.OpenNode("cacheField", xmlstream.A("name", f.Name), xmlstream.Int("numFmtId", 0))
		switch {
		case f.Items != nil:
			w.OpenNode("sharedItems", xmlstream.Int("count", len(f.Items)))
			for _, it := range f.Items {
				w.EmptyNode("s", xmlstream.A("v", it))
			}
			w.CloseNode()
		case f.Numeric:
			w.EmptyNode("sharedItems",
				xmlstream.Bool("containsSemiMixedTypes", false),
				xmlstream.Bool("containsString", false),
				xmlstream.Bool("containsNumber", true),
				xmlstream.Float("minValue", f.Min),
				xmlstream.Float("maxValue", f.Max),
			)
		default:
			w.EmptyNode("sharedItems")
		}
		w.CloseNode()
	}
	w.CloseNode()
	w.CloseNode()
}

// PivotRecordsXform renders pivot cache records. Records are never read.
type PivotRecordsXform struct {
	xform.Composite[[][]PivotValue]
}

// NewPivotRecordsXform returns the transform for pivot cache records.
func NewPivotRecordsXform() *PivotRecordsXform {
	return &PivotRecordsXform{xform.Composite[[][]PivotValue]{Tag: "pivotCacheRecords"}}
}

// Render writes the records.
func (x *PivotRecordsXform) Render(w *xmlstream.Writer, records [][]PivotValue) {
	w.OpenNode("pivotCacheRecords",
		xmlstream.A("xmlns", NSMain),
		xmlstream.A("xmlns:r", NSRelationships),
		xmlstream.Int("count", len(records)),
	)
	for _, rec := range records {
		w.OpenNode("r")
		for _, v := range rec {
			switch v.Kind {
			case PivotIndex:
				w.EmptyNode("x", xmlstream.Int("v", v.Index))
			case PivotNumber:
				w.EmptyNode("n", xmlstream.Float("v", v.Number))
			case PivotString:
				w.EmptyNode("s", xmlstream.A("v", v.Text))
			default:
				w.EmptyNode("m")
			}
		}
		w.CloseNode()
	}
	w.CloseNode()
}

func newFieldIndexList(tag string) *xform.List[int] {
	return &xform.List[int]{
		Tag:   tag,
		Child: &xform.Element[int]{Tag: "field", Decode: func(n xform.Node) int { return n.Int("x", 0) }},
	}
}

// PivotTableXform parses and renders a pivot table definition.
type PivotTableXform struct {
	xform.Composite[PivotTableDef]
}

// NewPivotTableXform returns the transform for a pivot table definition.
func NewPivotTableXform() *PivotTableXform {
	dataField := &xform.Element[PivotDataField]{
		Tag: "dataField",
		Decode: func(n xform.Node) PivotDataField {
			sub := n.Attr("subtotal")
			if sub == "" {
				sub = "sum"
			}
			return PivotDataField{Name: n.Attr("name"), Field: n.Int("fld", 0), Subtotal: sub}
		},
	}
	x := &PivotTableXform{}
	x.Composite = xform.Composite[PivotTableDef]{
		Tag: "pivotTableDefinition",
		Open: func(n xform.Node) PivotTableDef {
			return PivotTableDef{Name: n.Attr("name"), CacheID: n.Int("cacheId", 0)}
		},
		Children: map[string]xform.Child[PivotTableDef]{
			"location": xform.Bind(attrOnly("location", "ref"), nil, func(p *PivotTableDef, v string) { p.Location = v }),
			"rowFields": xform.Bind(newFieldIndexList("rowFields"), nil,
				func(p *PivotTableDef, v []int) { p.RowFields = v }),
			"colFields": xform.Bind(newFieldIndexList("colFields"), nil,
				func(p *PivotTableDef, v []int) { p.ColFields = v }),
			"dataFields": xform.Bind(&xform.List[PivotDataField]{Tag: "dataFields", Child: dataField}, nil,
				func(p *PivotTableDef, v []PivotDataField) { p.DataFields = v }),
		},
	}
	return x
}

func axisOf(p PivotTableDef, field int) string {
	for _, f := range p.RowFields {
		if f == field {
			return "axisRow"
		}
	}
	for _, f := range p.ColFields {
		if f == field {
			return "axisCol"
		}
	}
	return ""
}

func isDataField(p PivotTableDef, field int) bool {
	for _, d := range p.DataFields {
		if d.Field == field {
			return true
		}
	}
	return false
}

// Render writes the pivot table definition.
func (x *PivotTableXform) Render(w *xmlstream.Writer, p PivotTableDef) {
	w.OpenNode("pivotTableDefinition",
		xmlstream.A("xmlns", NSMain),
		xmlstream.A("name", p.Name),
		xmlstream.Int("cacheId", p.CacheID),
		xmlstream.Bool("applyNumberFormats", false),
		xmlstream.Bool("applyBorderFormats", false),
		xmlstream.Bool("applyFontFormats", false),
		xmlstream.Bool("applyPatternFormats", false),
		xmlstream.Bool("applyAlignmentFormats", false),
		xmlstream.Bool("applyWidthHeightFormats", true),
		xmlstream.A("dataCaption", "Values"),
		xmlstream.Int("updatedVersion", 8),
		xmlstream.Int("minRefreshableVersion", 3),
		xmlstream.Bool("useAutoFormatting", true),
		xmlstream.Bool("itemPrintTitles", true),
		xmlstream.Int("createdVersion", 8),
		xmlstream.Int("indent", 0),
		xmlstream.Bool("outline", true),
		xmlstream.Bool("outlineData", true),
		xmlstream.Bool("multipleFieldFilters", false),
	)
	w.EmptyNode("location", xmlstream.A("ref", p.Location),
		xmlstream.Int("firstHeaderRow", 1), xmlstream.Int("firstDataRow", 2), xmlstream.Int("firstDataCol", 1))

	w.OpenNode("pivotFields", xmlstream.Int("count", len(p.Fields)))
	for i, items := range p.Fields {
		axis := axisOf(p, i)
		attrs := strAttr(nil, "axis", axis)
		if isDataField(p, i) {
			attrs = append(attrs, xmlstream.Bool("dataField", true))
		}
		attrs = append(attrs, xmlstream.Bool("showAll", false))
		if items < 0 || axis == "" {
			w.EmptyNode("pivotField", attrs...)
			continue
		}
		w.OpenNode("pivotField", attrs...)
		w.OpenNode("items", xmlstream.Int("count", items+1))
		for j := range items {
			w.EmptyNode("item", xmlstream.Int("x", j))
		}
		w.EmptyNode("item", xmlstream.A("t", "default"))
		w.CloseNode()
		w.CloseNode()
	}
	w.CloseNode()

	renderFields := func(tag string, fields []int, values bool) {
		if len(fields) == 0 && !values {
			return
		}
		n := len(fields)
		if values {
			n++
		}
		w.OpenNode(tag, xmlstream.Int("count", n))
		for _, f := range fields {
			w.EmptyNode("field", xmlstream.Int("x", f))
		}
		if values {
			w.EmptyNode("field", xmlstream.Int("x", -2))
		}
		w.CloseNode()
	}
	renderFields("rowFields", p.RowFields, false)
	renderFields("colFields", p.ColFields, len(p.DataFields) > 1)

	w.OpenNode("dataFields", xmlstream.Int("count", len(p.DataFields)))
	for _, d := range p.DataFields {
		w.EmptyNode("dataField",
			xmlstream.A("name", d.Name),
			xmlstream.Int("fld", d.Field),
			xmlstream.Int("baseField", 0),
			xmlstream.Int("baseItem", 0),
			xmlstream.A("subtotal", d.Subtotal),
		)
	}
	w.CloseNode()
	w.EmptyNode("pivotTableStyleInfo",
		xmlstream.A("name", "PivotStyleLight16"),
		xmlstream.Bool("showRowHeaders", true),
		xmlstream.Bool("showColHeaders", true),
		xmlstream.Bool("showRowStripes", false),
		xmlstream.Bool("showColStripes", false),
		xmlstream.Bool("showLastColumn", true),
	)
	w.CloseNode()
}

// PivotFieldName is the data field caption for metric over field.
func PivotFieldName(metric, field string) string {
	switch metric {
	case "count":
		return "Count of " + field
	default:
		return "Sum of " + field
	}
}
