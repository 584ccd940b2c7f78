package parts

import (
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// Workbook is the raw xl/workbook.xml model.
type Workbook struct {
	Sheets         []SheetEntry
	DefinedNames   []DefinedNameEntry
	Views          []model.WorkbookView
	Date1904       bool
	FullCalcOnLoad bool
	PivotCaches    []PivotCacheEntry
}

// SheetEntry lists one worksheet and the relationship that locates it.
type SheetEntry struct {
	Name    string
	SheetID int
	RelID   string
	State   string
}

// DefinedNameEntry is a definedName element; Text is its definition.
type DefinedNameEntry struct {
	Name         string
	Text         string
	LocalSheetID *int
	Hidden       bool
	Comment      string
}

// PivotCacheEntry binds a pivot cache id to its definition part.
type PivotCacheEntry struct {
	CacheID int
	RelID   string
}

// NewWorkbookXform returns the transform for xl/workbook.xml.
func NewWorkbookXform() *xform.Composite[Workbook] {
	workbookPr := &xform.Element[bool]{
		Tag:    "workbookPr",
		Decode: func(n xform.Node) bool { return n.Bool("date1904", false) },
		Encode: func(date1904 bool) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.A("defaultThemeVersion", "164011")}
			return boolAttr(attrs, "date1904", date1904), "", true
		},
	}
	view := &xform.Element[model.WorkbookView]{
		Tag: "workbookView",
		Decode: func(n xform.Node) model.WorkbookView {
			return model.WorkbookView{
				X: n.Int("xWindow", 0), Y: n.Int("yWindow", 0),
				Width: n.Int("windowWidth", 0), Height: n.Int("windowHeight", 0),
				FirstSheet: n.Int("firstSheet", 0), ActiveTab: n.Int("activeTab", 0),
				Visibility: n.Attr("visibility"),
			}
		},
		Encode: func(v model.WorkbookView) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{
				xmlstream.Int("xWindow", v.X), xmlstream.Int("yWindow", v.Y),
				xmlstream.Int("windowWidth", v.Width), xmlstream.Int("windowHeight", v.Height),
			}
			attrs = intAttr(attrs, "firstSheet", v.FirstSheet)
			attrs = intAttr(attrs, "activeTab", v.ActiveTab)
			attrs = strAttr(attrs, "visibility", v.Visibility)
			return attrs, "", true
		},
	}
	sheet := &xform.Element[SheetEntry]{
		Tag: "sheet",
		Decode: func(n xform.Node) SheetEntry {
			return SheetEntry{Name: n.Attr("name"), SheetID: n.Int("sheetId", 0), RelID: n.Attr("r:id"), State: n.Attr("state")}
		},
		Encode: func(s SheetEntry) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.A("name", s.Name), xmlstream.Int("sheetId", s.SheetID)}
			if s.State != "" && s.State != model.SheetVisible {
				attrs = append(attrs, xmlstream.A("state", s.State))
			}
			return append(attrs, xmlstream.A("r:id", s.RelID)), "", true
		},
	}
	definedName := &xform.Element[DefinedNameEntry]{
		Tag: "definedName",
		Decode: func(n xform.Node) DefinedNameEntry {
			return DefinedNameEntry{
				Name:         n.Attr("name"),
				LocalSheetID: optInt(n, "localSheetId"),
				Hidden:       n.Bool("hidden", false),
				Comment:      n.Attr("comment"),
			}
		},
		Text: func(d *DefinedNameEntry, text string) { d.Text = text },
		Encode: func(d DefinedNameEntry) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.A("name", d.Name)}
			if d.LocalSheetID != nil {
				attrs = append(attrs, xmlstream.Int("localSheetId", *d.LocalSheetID))
			}
			attrs = boolAttr(attrs, "hidden", d.Hidden)
			attrs = strAttr(attrs, "comment", d.Comment)
			return attrs, d.Text, true
		},
	}
	calcPr := &xform.Element[bool]{
		Tag:    "calcPr",
		Decode: func(n xform.Node) bool { return n.Bool("fullCalcOnLoad", false) },
		Encode: func(full bool) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.A("calcId", "171027")}
			return boolAttr(attrs, "fullCalcOnLoad", full), "", true
		},
	}
	pivotCache := &xform.Element[PivotCacheEntry]{
		Tag: "pivotCache",
		Decode: func(n xform.Node) PivotCacheEntry {
			return PivotCacheEntry{CacheID: n.Int("cacheId", 0), RelID: n.Attr("r:id")}
		},
		Encode: func(p PivotCacheEntry) ([]xmlstream.Attr, string, bool) {
			return []xmlstream.Attr{xmlstream.Int("cacheId", p.CacheID), xmlstream.A("r:id", p.RelID)}, "", true
		},
	}

	return &xform.Composite[Workbook]{
		Tag: "workbook",
		Attrs: func(Workbook) []xmlstream.Attr {
			return []xmlstream.Attr{
				xmlstream.A("xmlns", NSMain),
				xmlstream.A("xmlns:r", NSRelationships),
			}
		},
		Children: map[string]xform.Child[Workbook]{
			"workbookPr": xform.Bind(workbookPr, func(wb Workbook) bool { return wb.Date1904 },
				func(wb *Workbook, v bool) { wb.Date1904 = v }),
			"bookViews": xform.Bind(&xform.List[model.WorkbookView]{Tag: "bookViews", Child: view},
				func(wb Workbook) []model.WorkbookView { return wb.Views },
				func(wb *Workbook, v []model.WorkbookView) { wb.Views = v }),
			"sheets": xform.Bind(&xform.List[SheetEntry]{Tag: "sheets", Child: sheet, Empty: true},
				func(wb Workbook) []SheetEntry { return wb.Sheets },
				func(wb *Workbook, v []SheetEntry) { wb.Sheets = v }),
			"definedNames": xform.Bind(&xform.List[DefinedNameEntry]{Tag: "definedNames", Child: definedName},
				func(wb Workbook) []DefinedNameEntry { return wb.DefinedNames },
				func(wb *Workbook, v []DefinedNameEntry) { wb.DefinedNames = v }),
			"calcPr": xform.Bind(calcPr, func(wb Workbook) bool { return wb.FullCalcOnLoad },
				func(wb *Workbook, v bool) { wb.FullCalcOnLoad = v }),
			"pivotCaches": xform.Bind(&xform.List[PivotCacheEntry]{Tag: "pivotCaches", Child: pivotCache},
				func(wb Workbook) []PivotCacheEntry { return wb.PivotCaches },
				func(wb *Workbook, v []PivotCacheEntry) { wb.PivotCaches = v }),
		},
		Order: []string{"workbookPr", "bookViews", "sheets", "definedNames", "calcPr", "pivotCaches"},
	}
}
