package parts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

func TestCommentsRoundTrip(t *testing.T) {
	cs := Comments{
		Authors: []string{"alice", "bob"},
		Items: []CommentEntry{
			{Ref: "A1", AuthorID: 1, Text: SharedString{Text: "note"}},
			{Ref: "B2", AuthorID: 7, Text: SharedString{Text: "x", Runs: model.RichText{{Text: "x", Font: &model.Font{Bold: true}}}}},
		},
	}
	got := roundTrip(t, NewCommentsXform(), cs)
	assert.Equal(t, cs.Authors, got.Authors)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "bob", got.Author(got.Items[0]))
	assert.Equal(t, "", got.Author(got.Items[1]))
	assert.Equal(t, "note", got.Items[0].Text.Text)
	assert.True(t, got.Items[1].Text.Runs[0].Font.Bold)
}

func TestVMLLenientParse(t *testing.T) {
	in := `<xml xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel">
<o:shapelayout v:ext="edit"><o:idmap v:ext="edit" data="1"/></o:shapelayout>
<v:shape id="_x0000_s1025" type="#_x0000_t202"><v:textbox><div style='text-align:left'>hello<br></div></v:textbox>
<x:ClientData ObjectType="Note"><x:MoveWithCells/><x:Row>2</x:Row><x:Column>1</x:Column><x:Visible/></x:ClientData></v:shape>
<v:shape id="_x0000_s1026"><x:ClientData ObjectType="Note"><x:Row>0</x:Row><x:Column>0</x:Column></x:ClientData></v:shape>
<v:shape id="picture"/>
</xml>`
	x := NewVMLXform(1)
	parsePart(t, x, in, xmlstream.Lenient())
	notes := x.Model().Notes
	require.Len(t, notes, 2)
	assert.Equal(t, VMLNote{Row: 3, Col: 2, Visible: true}, notes[0])
	assert.Equal(t, VMLNote{Row: 1, Col: 1}, notes[1])
}

func TestVMLRoundTrip(t *testing.T) {
	d := VMLDrawing{Notes: []VMLNote{{Row: 5, Col: 3}, {Row: 1, Col: 1, Visible: true}}}
	x := NewVMLXform(2)
	out, err := Render[VMLDrawing](x, d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<o:idmap v:ext="edit" data="2"/>`)
	assert.Contains(t, string(out), `id="_x0000_s2049"`)
	parsePart(t, x, string(out), xmlstream.Lenient())
	assert.Equal(t, d.Notes, x.Model().Notes)
}

func TestDrawingRoundTrip(t *testing.T) {
	d := Drawing{Anchors: []DrawingAnchor{
		{
			EditAs:  "oneCell",
			From:    model.Anchor{Col: 1, ColOff: 100, Row: 2},
			To:      &model.Anchor{Col: 4, Row: 8, RowOff: 50},
			Picture: Picture{ID: 2, Name: "Picture 1", EmbedID: "rId1", LinkRelID: "rId2", Tooltip: "open"},
		},
		{
			From:    model.Anchor{Col: 6},
			Extent:  &model.Extent{CX: 9525 * 50, CY: 9525 * 20},
			Picture: Picture{ID: 3, Name: "Picture 2", Descr: "logo", EmbedID: "rId3"},
		},
	}}
	got := roundTrip(t, NewDrawingXform(), d)
	require.Len(t, got.Anchors, 2)
	a := got.Anchors[0]
	assert.Equal(t, "twoCellAnchor", a.Kind)
	assert.Equal(t, "oneCell", a.EditAs)
	assert.Equal(t, d.Anchors[0].From, a.From)
	assert.Equal(t, d.Anchors[0].To, a.To)
	assert.Equal(t, d.Anchors[0].Picture, a.Picture)

	b := got.Anchors[1]
	assert.Equal(t, "oneCellAnchor", b.Kind)
	assert.Nil(t, b.To)
	assert.Equal(t, d.Anchors[1].Extent, b.Extent)
	assert.Equal(t, d.Anchors[1].Picture, b.Picture)
}

func TestDrawingReconcile(t *testing.T) {
	d := Drawing{Anchors: []DrawingAnchor{
		{Picture: Picture{ID: 2, EmbedID: "rId1", LinkRelID: "rId2"}},
		{Picture: Picture{ID: 3, EmbedID: "rId9"}},
	}}
	var rels Relationships
	rels.Add(RelImage, "../media/image1.png", "")
	rels.Add(RelHyperlink, "https://example.com", "External")

	var x xform.Reconciler[Drawing, DrawingSiblings] = NewDrawingXform()
	missing := x.Reconcile(&d, DrawingSiblings{Part: "xl/drawings/drawing1.xml", Rels: rels})
	assert.Equal(t, []string{"rId9"}, missing)
	assert.Equal(t, "xl/media/image1.png", d.Anchors[0].Picture.Media)
	assert.Equal(t, "https://example.com", d.Anchors[0].Picture.Link)
	assert.Empty(t, d.Anchors[1].Picture.Media)
}

func TestDrawingSkipsShapes(t *testing.T) {
	in := `<xdr:wsDr xmlns:xdr="http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<xdr:twoCellAnchor><xdr:from><xdr:col>0</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>0</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>
<xdr:to><xdr:col>1</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>1</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>
<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="2" name="Shape"/></xdr:nvSpPr></xdr:sp><xdr:clientData/></xdr:twoCellAnchor>
</xdr:wsDr>`
	x := NewDrawingXform()
	parsePart(t, x, in)
	assert.Empty(t, x.Model().Anchors)
}

func TestTableRoundTrip(t *testing.T) {
	tbl := TableEntry{ID: 3, Table: model.Table{
		Name: "Sales", DisplayName: "Sales", Ref: "A1:B4",
		HeaderRow: true, TotalsRow: true, AutoFilter: true,
		Columns: []model.TableColumn{
			{Name: "Region", TotalsRowLabel: "Total"},
			{Name: "Amount", TotalsRowFunction: "custom", TotalsRowFormula: "SUBTOTAL(109,[Amount])"},
		},
		Style: model.TableStyle{Name: "TableStyleLight9", ShowRowStripes: true},
	}}
	x := NewTableXform()
	out, err := Render[TableEntry](x, tbl)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<autoFilter ref="A1:B3"/>`)
	parsePart(t, x, string(out))
	assert.Equal(t, tbl, x.Model())
}

func TestPivotRoundTrip(t *testing.T) {
	cache := PivotCache{
		RecordsRelID: "rId1", Sheet: "Data", Ref: "A1:C3",
		Fields: []PivotCacheField{
			{Name: "Region", Items: []string{"east", "west"}},
			{Name: "Product"},
			{Name: "Amount", Numeric: true, Min: 1, Max: 9},
		},
		Records: [][]PivotValue{
			{{Kind: PivotIndex, Index: 0}, {Kind: PivotString, Text: "a"}, {Kind: PivotNumber, Number: 1}},
			{{Kind: PivotIndex, Index: 1}, {Kind: PivotMissing}, {Kind: PivotNumber, Number: 9}},
		},
	}
	gotCache := roundTrip(t, NewPivotCacheXform(), cache)
	assert.Equal(t, "Data", gotCache.Sheet)
	assert.Equal(t, "A1:C3", gotCache.Ref)
	assert.Equal(t, "rId1", gotCache.RecordsRelID)
	require.Len(t, gotCache.Fields, 3)
	assert.Equal(t, "Amount", gotCache.Fields[2].Name)

	records, err := Render[[][]PivotValue](NewPivotRecordsXform(), cache.Records)
	require.NoError(t, err)
	assert.Contains(t, string(records), `<r><x v="0"/><s v="a"/><n v="1"/></r>`)
	assert.Contains(t, string(records), `<m/>`)

	def := PivotTableDef{
		Name: "PivotTable1", CacheID: 10, Location: "A3:C6",
		RowFields:  []int{0},
		DataFields: []PivotDataField{{Name: PivotFieldName("sum", "Amount"), Field: 2, Subtotal: "sum"}},
		Fields:     []int{2, -1, -1},
	}
	x := NewPivotTableXform()
	out, err := Render[PivotTableDef](x, def)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<pivotField axis="axisRow" showAll="0"><items count="3">`)
	assert.Contains(t, string(out), `<pivotField dataField="1" showAll="0"/>`)
	parsePart(t, x, string(out))
	got := x.Model()
	assert.Equal(t, def.Name, got.Name)
	assert.Equal(t, def.CacheID, got.CacheID)
	assert.Equal(t, def.Location, got.Location)
	assert.Equal(t, def.RowFields, got.RowFields)
	assert.Equal(t, def.DataFields, got.DataFields)
	assert.Equal(t, "Sum of Amount", got.DataFields[0].Name)
}

func TestDocPropsRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	core := CoreProperties{Creator: "me", Title: "Report", Keywords: "a b", Revision: 3, Created: created, Modified: created}
	got := roundTrip(t, NewCoreXform(), core)
	assert.Equal(t, core, got)

	app := AppProperties{Company: "ACME", Manager: "boss", SheetNames: []string{"One", "Two"}}
	x := NewAppXform()
	out, err := Render[AppProperties](x, app)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<vt:lpstr>Two</vt:lpstr>`)
	parsePart(t, x, string(out))
	assert.Equal(t, AppProperties{Application: "Microsoft Excel", Company: "ACME", Manager: "boss"}, x.Model())
}
