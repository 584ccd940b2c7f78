// Package parts holds the transforms for every XML part of a spreadsheet
// package. Each transform parses its part into a raw model that still
// carries package-level references (style ids, shared-string indices,
// relationship ids) and renders a prepared raw model back to XML.
package parts

import (
	"strconv"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Namespaces.
const (
	NSMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSRelationships = xmlstream.NSRelationships
	NSPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSMarkupCompat  = xmlstream.NSMarkupCompat
	NSX14ac         = xmlstream.NSX14ac
	NSDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	NSDrawingMain   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	NSExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	NSDocPropsVT    = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"
)

// Relationship types.
const (
	RelOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelCoreProperties     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RelWorksheet          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	RelStyles             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelSharedStrings      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	RelTheme              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelHyperlink          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelDrawing            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/drawing"
	RelImage              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelComments           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RelVMLDrawing         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/vmlDrawing"
	RelTable              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/table"
	RelPivotCacheDef      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/pivotCacheDefinition"
	RelPivotCacheRecords  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/pivotCacheRecords"
	RelPivotTable         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/pivotTable"
)

// Content types.
const (
	CTRelationships  = "application/vnd.openxmlformats-package.relationships+xml"
	CTXML            = "application/xml"
	CTWorkbook       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	CTWorksheet      = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	CTTheme          = "application/vnd.openxmlformats-officedocument.theme+xml"
	CTStyles         = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	CTSharedStrings  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	CTDrawing        = "application/vnd.openxmlformats-officedocument.drawing+xml"
	CTComments       = "application/vnd.openxmlformats-officedocument.spreadsheetml.comments+xml"
	CTVML            = "application/vnd.openxmlformats-officedocument.vmlDrawing"
	CTTable          = "application/vnd.openxmlformats-officedocument.spreadsheetml.table+xml"
	CTPivotCacheDef  = "application/vnd.openxmlformats-officedocument.spreadsheetml.pivotCacheDefinition+xml"
	CTPivotRecords   = "application/vnd.openxmlformats-officedocument.spreadsheetml.pivotCacheRecords+xml"
	CTPivotTable     = "application/vnd.openxmlformats-officedocument.spreadsheetml.pivotTable+xml"
	CTCoreProperties = "application/vnd.openxmlformats-package.core-properties+xml"
	CTExtendedProps  = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Render writes the XML declaration followed by x's rendering of m.
func Render[M any](x xform.Xform[M], m M) ([]byte, error) {
	w := xmlstream.NewWriter()
	defer w.Release()
	w.OpenXML()
	x.Render(w, m)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), w.Bytes()...), nil
}

func boolAttr(attrs []xmlstream.Attr, name string, v bool) []xmlstream.Attr {
	if v {
		return append(attrs, xmlstream.A(name, "1"))
	}
	return attrs
}

func strAttr(attrs []xmlstream.Attr, name, v string) []xmlstream.Attr {
	if v != "" {
		return append(attrs, xmlstream.A(name, v))
	}
	return attrs
}

func intAttr(attrs []xmlstream.Attr, name string, v int) []xmlstream.Attr {
	if v != 0 {
		return append(attrs, xmlstream.Int(name, v))
	}
	return attrs
}

func floatAttr(attrs []xmlstream.Attr, name string, v float64) []xmlstream.Attr {
	if v != 0 {
		return append(attrs, xmlstream.Float(name, v))
	}
	return attrs
}

func optBoolAttr(attrs []xmlstream.Attr, name string, v *bool) []xmlstream.Attr {
	if v != nil {
		return append(attrs, xmlstream.Bool(name, *v))
	}
	return attrs
}

func optBool(n xform.Node, name string) *bool {
	if !n.Has(name) {
		return nil
	}
	b := n.Bool(name, false)
	return &b
}

func optInt(n xform.Node, name string) *int {
	v, ok := n.Attrs[name]
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &i
}

func int64Attr(n xform.Node, name string) int64 {
	i, _ := strconv.ParseInt(n.Attr(name), 10, 64)
	return i
}
