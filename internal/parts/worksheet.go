package parts

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// ErrTooManyCells is recorded when a row holds more cells than allowed.
var ErrTooManyCells = errors.New("parts: too many cells in row")

// Worksheet is the raw xl/worksheets/sheetN.xml model.
type Worksheet struct {
	Properties      model.SheetProperties
	Dimension       string
	Views           []model.SheetView
	Columns         []ColumnEntry
	Rows            []RowEntry
	AutoFilter      string
	Merges          []string
	DataValidations []DataValidationEntry
	Hyperlinks      []HyperlinkEntry
	PageMargins     *model.PageMargins
	RowBreaks       []int
	DrawingRelID    string
	LegacyDrawingID string
	TableRelIDs     []string
}

// ColumnEntry is a <col> element; StyleID is a cellXfs index (0 = none).
type ColumnEntry struct {
	model.Column
	StyleID int
}

// RowEntry is a <row> element.
type RowEntry struct {
	Number       int
	Spans        string
	StyleID      int
	Height       float64
	CustomHeight bool
	Hidden       bool
	OutlineLevel int
	Collapsed    bool
	DyDescent    float64
	Cells        []CellEntry
}

// Cell types as stored in the t attribute.
const (
	CellTypeNumber       = "n"
	CellTypeSharedString = "s"
	CellTypeInlineString = "inlineStr"
	CellTypeFormulaStr   = "str"
	CellTypeBool         = "b"
	CellTypeError        = "e"
	CellTypeDate         = "d"
)

// CellEntry is a <c> element before reference resolution.
type CellEntry struct {
	Ref     string
	StyleID int
	Type    string
	Value   string
	Formula *FormulaEntry
	Inline  *SharedString
}

// FormulaEntry is an <f> element. SharedIndex is -1 for ordinary formulas.
type FormulaEntry struct {
	Expr        string
	Type        string // "", "shared" or "array"
	Ref         string
	SharedIndex int
}

// HyperlinkEntry is a <hyperlink> element; external targets live in the
// sheet relationships under RelID.
type HyperlinkEntry struct {
	Ref      string
	RelID    string
	Location string
	Tooltip  string
	Display  string
}

// DataValidationEntry is a <dataValidation> covering the Sqref ranges.
type DataValidationEntry struct {
	Sqref string
	Rule  model.DataValidation
}

// WorksheetOptions bound parsing.
type WorksheetOptions struct {
	MaxRows int
	MaxCols int
}

func newSheetPrXform() *xform.Composite[model.SheetProperties] {
	return &xform.Composite[model.SheetProperties]{
		Tag: "sheetPr",
		Children: map[string]xform.Child[model.SheetProperties]{
			"tabColor": xform.Bind(newColorXform("tabColor"), nil,
				func(p *model.SheetProperties, c *model.Color) { p.TabColor = c }),
			"outlinePr": xform.Bind(&xform.Element[[2]*bool]{
				Tag:    "outlinePr",
				Decode: func(n xform.Node) [2]*bool { return [2]*bool{optBool(n, "summaryBelow"), optBool(n, "summaryRight")} },
			}, nil, func(p *model.SheetProperties, v [2]*bool) { p.SummaryBelow, p.SummaryRight = v[0], v[1] }),
			"pageSetUpPr": xform.Bind(&xform.Element[bool]{
				Tag:    "pageSetUpPr",
				Decode: func(n xform.Node) bool { return n.Bool("fitToPage", false) },
			}, nil, func(p *model.SheetProperties, v bool) { p.FitToPage = v }),
		},
	}
}

func renderSheetPr(w *xmlstream.Writer, p model.SheetProperties) {
	if p.TabColor == nil && p.SummaryBelow == nil && p.SummaryRight == nil && !p.FitToPage {
		return
	}
	w.OpenNode("sheetPr")
	if p.TabColor != nil {
		w.EmptyNode("tabColor", colorAttrs(p.TabColor)...)
	}
	if p.SummaryBelow != nil || p.SummaryRight != nil {
		attrs := optBoolAttr(nil, "summaryBelow", p.SummaryBelow)
		w.EmptyNode("outlinePr", optBoolAttr(attrs, "summaryRight", p.SummaryRight)...)
	}
	if p.FitToPage {
		w.EmptyNode("pageSetUpPr", xmlstream.Bool("fitToPage", true))
	}
	w.CloseNode()
}

func newSheetViewXform() *xform.Composite[model.SheetView] {
	pane := &xform.Element[model.SheetView]{
		Tag: "pane",
		Decode: func(n xform.Node) model.SheetView {
			state := n.Attr("state")
			if state == "" {
				state = "split"
			}
			if state == "frozenSplit" {
				state = "frozen"
			}
			return model.SheetView{
				State: state, XSplit: n.Float("xSplit", 0), YSplit: n.Float("ySplit", 0),
				TopLeftCell: n.Attr("topLeftCell"),
			}
		},
	}
	selection := &xform.Element[string]{
		Tag:    "selection",
		Decode: func(n xform.Node) string { return n.Attr("activeCell") },
	}
	return &xform.Composite[model.SheetView]{
		Tag: "sheetView",
		Open: func(n xform.Node) model.SheetView {
			return model.SheetView{
				State:             "normal",
				ShowGridLines:     optBool(n, "showGridLines"),
				ShowRowColHeaders: optBool(n, "showRowColHeaders"),
				RightToLeft:       n.Bool("rightToLeft", false),
				ZoomScale:         n.Int("zoomScale", 0),
				TabSelected:       n.Bool("tabSelected", false),
				View:              n.Attr("view"),
			}
		},
		Children: map[string]xform.Child[model.SheetView]{
			"pane": xform.Bind(pane, nil, func(v *model.SheetView, p model.SheetView) {
				v.State, v.XSplit, v.YSplit, v.TopLeftCell = p.State, p.XSplit, p.YSplit, p.TopLeftCell
			}),
			"selection": xform.Bind(selection, nil, func(v *model.SheetView, cell string) {
				if cell != "" {
					v.ActiveCell = cell
				}
			}),
		},
	}
}

func renderSheetView(w *xmlstream.Writer, v model.SheetView) {
	attrs := boolAttr(nil, "tabSelected", v.TabSelected)
	attrs = optBoolAttr(attrs, "showGridLines", v.ShowGridLines)
	attrs = optBoolAttr(attrs, "showRowColHeaders", v.ShowRowColHeaders)
	attrs = boolAttr(attrs, "rightToLeft", v.RightToLeft)
	attrs = intAttr(attrs, "zoomScale", v.ZoomScale)
	attrs = strAttr(attrs, "view", v.View)
	attrs = append(attrs, xmlstream.Int("workbookViewId", 0))
	w.OpenNode("sheetView", attrs...)
	activePane := ""
	switch v.State {
	case "frozen", "split":
		if v.XSplit > 0 && v.YSplit > 0 {
			activePane = "bottomRight"
		} else if v.XSplit > 0 {
			activePane = "topRight"
		} else if v.YSplit > 0 {
			activePane = "bottomLeft"
		}
		if activePane != "" {
			pa := floatAttr(nil, "xSplit", v.XSplit)
			pa = floatAttr(pa, "ySplit", v.YSplit)
			pa = strAttr(pa, "topLeftCell", v.TopLeftCell)
			pa = append(pa, xmlstream.A("activePane", activePane))
			if v.State == "frozen" {
				pa = append(pa, xmlstream.A("state", "frozen"))
			}
			w.EmptyNode("pane", pa...)
		}
	}
	if v.ActiveCell != "" {
		sa := strAttr(nil, "pane", activePane)
		w.EmptyNode("selection", append(sa, xmlstream.A("activeCell", v.ActiveCell), xmlstream.A("sqref", v.ActiveCell))...)
	}
	w.CloseNode()
}

func newColXform() *xform.Element[ColumnEntry] {
	return &xform.Element[ColumnEntry]{
		Tag: "col",
		Decode: func(n xform.Node) ColumnEntry {
			return ColumnEntry{
				Column: model.Column{
					Min: n.Int("min", 0), Max: n.Int("max", 0), Width: n.Float("width", 0),
					Hidden: n.Bool("hidden", false), BestFit: n.Bool("bestFit", false),
					OutlineLevel: n.Int("outlineLevel", 0), Collapsed: n.Bool("collapsed", false),
				},
				StyleID: n.Int("style", 0),
			}
		},
		Encode: func(c ColumnEntry) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.Int("min", c.Min), xmlstream.Int("max", c.Max)}
			if c.Width > 0 {
				attrs = append(attrs, xmlstream.Float("width", c.Width))
			}
			attrs = intAttr(attrs, "style", c.StyleID)
			attrs = boolAttr(attrs, "hidden", c.Hidden)
			attrs = boolAttr(attrs, "bestFit", c.BestFit)
			if c.Width > 0 {
				attrs = append(attrs, xmlstream.Bool("customWidth", true))
			}
			attrs = intAttr(attrs, "outlineLevel", c.OutlineLevel)
			return boolAttr(attrs, "collapsed", c.Collapsed), "", true
		},
	}
}

func newFormulaXform() *xform.Element[*FormulaEntry] {
	return &xform.Element[*FormulaEntry]{
		Tag: "f",
		Decode: func(n xform.Node) *FormulaEntry {
			return &FormulaEntry{Type: n.Attr("t"), Ref: n.Attr("ref"), SharedIndex: n.Int("si", -1)}
		},
		Text: func(f **FormulaEntry, text string) { (*f).Expr = text },
		Encode: func(f *FormulaEntry) ([]xmlstream.Attr, string, bool) {
			if f == nil {
				return nil, "", false
			}
			attrs := strAttr(nil, "t", f.Type)
			attrs = strAttr(attrs, "ref", f.Ref)
			if f.SharedIndex >= 0 {
				attrs = append(attrs, xmlstream.Int("si", f.SharedIndex))
			}
			return attrs, f.Expr, true
		},
	}
}

type cellXform struct {
	xform.Composite[CellEntry]
	formula *xform.Element[*FormulaEntry]
	inline  *richTextXform
}

func newCellXform() *cellXform {
	x := &cellXform{formula: newFormulaXform(), inline: newRichTextXform("is")}
	x.Composite = xform.Composite[CellEntry]{
		Tag: "c",
		Open: func(n xform.Node) CellEntry {
			return CellEntry{Ref: n.Attr("r"), StyleID: n.Int("s", 0), Type: n.Attr("t")}
		},
		Children: map[string]xform.Child[CellEntry]{
			"f": xform.Bind(x.formula, nil, func(c *CellEntry, f *FormulaEntry) { c.Formula = f }),
			"v": xform.Bind(xform.String("v", ""), nil, func(c *CellEntry, v string) { c.Value = v }),
			"is": xform.Bind[CellEntry, SharedString](x.inline, nil, func(c *CellEntry, s SharedString) {
				c.Inline = &s
			}),
		},
	}
	return x
}

func (x *cellXform) Render(w *xmlstream.Writer, c CellEntry) {
	attrs := []xmlstream.Attr{xmlstream.A("r", c.Ref)}
	attrs = intAttr(attrs, "s", c.StyleID)
	if c.Type != "" && c.Type != CellTypeNumber {
		attrs = append(attrs, xmlstream.A("t", c.Type))
	}
	w.OpenNode("c", attrs...)
	x.formula.Render(w, c.Formula)
	switch {
	case c.Inline != nil:
		x.inline.Render(w, *c.Inline)
	case c.Value != "" || (c.Type == CellTypeFormulaStr && c.Formula != nil):
		w.LeafNode("v", nil, c.Value)
	}
	w.CloseNode()
}

type rowXform struct {
	xform.Composite[RowEntry]
	cell *cellXform
}

func newRowXform(maxCols int, fail func(error)) *rowXform {
	x := &rowXform{cell: newCellXform()}
	x.Composite = xform.Composite[RowEntry]{
		Tag: "row",
		Open: func(n xform.Node) RowEntry {
			return RowEntry{
				Number:       n.Int("r", 0),
				Spans:        n.Attr("spans"),
				StyleID:      n.Int("s", 0),
				Height:       n.Float("ht", 0),
				CustomHeight: n.Bool("customHeight", false),
				Hidden:       n.Bool("hidden", false),
				OutlineLevel: n.Int("outlineLevel", 0),
				Collapsed:    n.Bool("collapsed", false),
				DyDescent:    n.Float("x14ac:dyDescent", 0),
			}
		},
		Children: map[string]xform.Child[RowEntry]{
			"c": xform.BindEach[RowEntry, CellEntry](x.cell, nil, func(r *RowEntry, c CellEntry) {
				if maxCols > 0 && len(r.Cells) >= maxCols {
					fail(fmt.Errorf("%w: row %d exceeds %d cells", ErrTooManyCells, r.Number, maxCols))
					return
				}
				r.Cells = append(r.Cells, c)
			}),
		},
	}
	return x
}

func (x *rowXform) Render(w *xmlstream.Writer, r RowEntry) {
	attrs := []xmlstream.Attr{xmlstream.Int("r", r.Number)}
	attrs = strAttr(attrs, "spans", r.Spans)
	if r.StyleID > 0 {
		attrs = append(attrs, xmlstream.Int("s", r.StyleID), xmlstream.Bool("customFormat", true))
	}
	if r.Height > 0 {
		attrs = append(attrs, xmlstream.Float("ht", r.Height))
		attrs = boolAttr(attrs, "customHeight", r.CustomHeight)
	}
	attrs = boolAttr(attrs, "hidden", r.Hidden)
	attrs = intAttr(attrs, "outlineLevel", r.OutlineLevel)
	attrs = boolAttr(attrs, "collapsed", r.Collapsed)
	attrs = floatAttr(attrs, "x14ac:dyDescent", r.DyDescent)
	w.OpenNode("row", attrs...)
	for _, c := range r.Cells {
		x.cell.Render(w, c)
	}
	w.CloseNode()
}

func newDataValidationXform() *xform.Composite[DataValidationEntry] {
	formula := func(tag string) xform.Child[DataValidationEntry] {
		return xform.Bind(xform.String(tag, ""), nil, func(d *DataValidationEntry, f string) {
			d.Rule.Formulae = append(d.Rule.Formulae, f)
		})
	}
	return &xform.Composite[DataValidationEntry]{
		Tag: "dataValidation",
		Open: func(n xform.Node) DataValidationEntry {
			typ := n.Attr("type")
			if typ == "" {
				typ = "any"
			}
			op := n.Attr("operator")
			if op == "" && typ != "any" && typ != "list" && typ != "custom" {
				op = "between"
			}
			return DataValidationEntry{
				Sqref: n.Attr("sqref"),
				Rule: model.DataValidation{
					Type:             typ,
					Operator:         op,
					AllowBlank:       n.Has("type") && n.Bool("allowBlank", false),
					ShowInputMessage: n.Bool("showInputMessage", false),
					ShowErrorMessage: n.Bool("showErrorMessage", false),
					PromptTitle:      n.Attr("promptTitle"),
					Prompt:           n.Attr("prompt"),
					ErrorStyle:       n.Attr("errorStyle"),
					ErrorTitle:       n.Attr("errorTitle"),
					Error:            n.Attr("error"),
				},
			}
		},
		Children: map[string]xform.Child[DataValidationEntry]{
			"formula1": formula("formula1"),
			"formula2": formula("formula2"),
		},
	}
}

func renderDataValidation(w *xmlstream.Writer, d DataValidationEntry) {
	r := d.Rule
	var attrs []xmlstream.Attr
	typed := r.Type != "" && r.Type != "any"
	if typed {
		attrs = append(attrs, xmlstream.A("type", r.Type))
	}
	if r.Operator != "" && r.Operator != "between" && r.Type != "list" {
		attrs = append(attrs, xmlstream.A("operator", r.Operator))
	}
	// allowBlank only has meaning for typed rules.
	attrs = boolAttr(attrs, "allowBlank", typed && r.AllowBlank)
	attrs = boolAttr(attrs, "showInputMessage", r.ShowInputMessage)
	attrs = strAttr(attrs, "promptTitle", r.PromptTitle)
	attrs = strAttr(attrs, "prompt", r.Prompt)
	attrs = boolAttr(attrs, "showErrorMessage", r.ShowErrorMessage)
	attrs = strAttr(attrs, "errorStyle", r.ErrorStyle)
	attrs = strAttr(attrs, "errorTitle", r.ErrorTitle)
	attrs = strAttr(attrs, "error", r.Error)
	attrs = append(attrs, xmlstream.A("sqref", d.Sqref))
	w.OpenNode("dataValidation", attrs...)
	for i, f := range r.Formulae {
		if i > 1 {
			break
		}
		w.LeafNode("formula"+strconv.Itoa(i+1), nil, f)
	}
	w.CloseNode()
}

func newHyperlinkXform() *xform.Element[HyperlinkEntry] {
	return &xform.Element[HyperlinkEntry]{
		Tag: "hyperlink",
		Decode: func(n xform.Node) HyperlinkEntry {
			return HyperlinkEntry{
				Ref: n.Attr("ref"), RelID: n.Attr("r:id"), Location: n.Attr("location"),
				Tooltip: n.Attr("tooltip"), Display: n.Attr("display"),
			}
		},
		Encode: func(h HyperlinkEntry) ([]xmlstream.Attr, string, bool) {
			attrs := []xmlstream.Attr{xmlstream.A("ref", h.Ref)}
			attrs = strAttr(attrs, "r:id", h.RelID)
			attrs = strAttr(attrs, "location", h.Location)
			attrs = strAttr(attrs, "tooltip", h.Tooltip)
			return strAttr(attrs, "display", h.Display), "", true
		},
	}
}

func attrOnly(tag, attr string) *xform.Element[string] {
	return &xform.Element[string]{
		Tag:    tag,
		Decode: func(n xform.Node) string { return n.Attr(attr) },
		Encode: func(v string) ([]xmlstream.Attr, string, bool) {
			return []xmlstream.Attr{xmlstream.A(attr, v)}, "", v != ""
		},
	}
}

// WorksheetXform parses and renders one worksheet part.
type WorksheetXform struct {
	xform.Composite[Worksheet]
	rows   *xform.List[RowEntry]
	row    *rowXform
	col    *xform.Element[ColumnEntry]
	link   *xform.Element[HyperlinkEntry]
	rowErr error
}

// NewWorksheetXform returns a worksheet transform honoring opts.
func NewWorksheetXform(opts WorksheetOptions) *WorksheetXform {
	x := &WorksheetXform{col: newColXform(), link: newHyperlinkXform()}
	x.row = newRowXform(opts.MaxCols, func(err error) {
		if x.rowErr == nil {
			x.rowErr = err
		}
	})
	x.rows = &xform.List[RowEntry]{Tag: "sheetData", Child: x.row, MaxItems: opts.MaxRows}
	margins := &xform.Element[*model.PageMargins]{
		Tag: "pageMargins",
		Decode: func(n xform.Node) *model.PageMargins {
			return &model.PageMargins{
				Left: n.Float("left", 0), Right: n.Float("right", 0), Top: n.Float("top", 0),
				Bottom: n.Float("bottom", 0), Header: n.Float("header", 0), Footer: n.Float("footer", 0),
			}
		},
	}
	formatPr := &xform.Element[model.SheetProperties]{
		Tag: "sheetFormatPr",
		Decode: func(n xform.Node) model.SheetProperties {
			return model.SheetProperties{
				DefaultRowHeight: n.Float("defaultRowHeight", 0),
				DefaultColWidth:  n.Float("defaultColWidth", 0),
				OutlineLevelRow:  n.Int("outlineLevelRow", 0),
				OutlineLevelCol:  n.Int("outlineLevelCol", 0),
				DyDescent:        n.Float("x14ac:dyDescent", 0),
			}
		},
	}
	brk := &xform.Element[int]{Tag: "brk", Decode: func(n xform.Node) int { return n.Int("id", 0) }}
	x.Composite = xform.Composite[Worksheet]{
		Tag: "worksheet",
		Children: map[string]xform.Child[Worksheet]{
			"sheetPr": xform.Bind(newSheetPrXform(), nil, func(ws *Worksheet, p model.SheetProperties) {
				ws.Properties.TabColor, ws.Properties.SummaryBelow, ws.Properties.SummaryRight = p.TabColor, p.SummaryBelow, p.SummaryRight
				ws.Properties.FitToPage = p.FitToPage
			}),
			"dimension": xform.Bind(attrOnly("dimension", "ref"), nil, func(ws *Worksheet, v string) { ws.Dimension = v }),
			"sheetViews": xform.Bind(&xform.List[model.SheetView]{Tag: "sheetViews", Child: newSheetViewXform()}, nil,
				func(ws *Worksheet, v []model.SheetView) { ws.Views = v }),
			"sheetFormatPr": xform.Bind(formatPr, nil, func(ws *Worksheet, p model.SheetProperties) {
				ws.Properties.DefaultRowHeight, ws.Properties.DefaultColWidth = p.DefaultRowHeight, p.DefaultColWidth
				ws.Properties.OutlineLevelRow, ws.Properties.OutlineLevelCol = p.OutlineLevelRow, p.OutlineLevelCol
				ws.Properties.DyDescent = p.DyDescent
			}),
			"cols": xform.Bind(&xform.List[ColumnEntry]{Tag: "cols", Child: x.col}, nil,
				func(ws *Worksheet, v []ColumnEntry) { ws.Columns = v }),
			"sheetData":  xform.Bind(x.rows, nil, func(ws *Worksheet, v []RowEntry) { ws.Rows = v }),
			"autoFilter": xform.Bind(attrOnly("autoFilter", "ref"), nil, func(ws *Worksheet, v string) { ws.AutoFilter = v }),
			"mergeCells": xform.Bind(&xform.List[string]{Tag: "mergeCells", Child: attrOnly("mergeCell", "ref")}, nil,
				func(ws *Worksheet, v []string) { ws.Merges = v }),
			"dataValidations": xform.Bind(&xform.List[DataValidationEntry]{Tag: "dataValidations", Child: newDataValidationXform()}, nil,
				func(ws *Worksheet, v []DataValidationEntry) { ws.DataValidations = v }),
			"hyperlinks": xform.Bind(&xform.List[HyperlinkEntry]{Tag: "hyperlinks", Child: x.link}, nil,
				func(ws *Worksheet, v []HyperlinkEntry) { ws.Hyperlinks = v }),
			"pageMargins": xform.Bind(margins, nil, func(ws *Worksheet, m *model.PageMargins) { ws.PageMargins = m }),
			"rowBreaks": xform.Bind(&xform.List[int]{Tag: "rowBreaks", Child: brk}, nil,
				func(ws *Worksheet, v []int) { ws.RowBreaks = v }),
			"drawing":       xform.Bind(attrOnly("drawing", "r:id"), nil, func(ws *Worksheet, v string) { ws.DrawingRelID = v }),
			"legacyDrawing": xform.Bind(attrOnly("legacyDrawing", "r:id"), nil, func(ws *Worksheet, v string) { ws.LegacyDrawingID = v }),
			"tableParts": xform.Bind(&xform.List[string]{Tag: "tableParts", Child: attrOnly("tablePart", "r:id")}, nil,
				func(ws *Worksheet, v []string) { ws.TableRelIDs = v }),
		},
	}
	return x
}

// Err reports limit violations seen while parsing.
func (x *WorksheetXform) Err() error {
	return errors.Join(x.Composite.Err(), x.rowErr)
}

// Render writes the worksheet part.
// Prepare implements xform.Preparer. Row spans and the sheet dimension
// are derived from the cell references when unset.
func (x *WorksheetXform) Prepare(ws *Worksheet) {
	var dim address.Range
	for i := range ws.Rows {
		re := &ws.Rows[i]
		lo, hi := 0, 0
		for _, c := range re.Cells {
			a, err := address.Decode(c.Ref)
			if err != nil {
				continue
			}
			if lo == 0 || a.Col < lo {
				lo = a.Col
			}
			hi = max(hi, a.Col)
		}
		if lo == 0 {
			continue
		}
		if re.Spans == "" {
			re.Spans = strconv.Itoa(lo) + ":" + strconv.Itoa(hi)
		}
		if dim.Top == 0 {
			dim = address.NewRange("", re.Number, lo, re.Number, hi)
			continue
		}
		dim = address.NewRange("", min(dim.Top, re.Number), min(dim.Left, lo), max(dim.Bottom, re.Number), max(dim.Right, hi))
	}
	if ws.Dimension != "" {
		return
	}
	ws.Dimension = "A1"
	if dim.Top != 0 {
		ws.Dimension = dim.String()
	}
}

func (x *WorksheetXform) Render(w *xmlstream.Writer, ws Worksheet) {
	w.OpenNode("worksheet",
		xmlstream.A("xmlns", NSMain),
		xmlstream.A("xmlns:r", NSRelationships),
		xmlstream.A("xmlns:mc", NSMarkupCompat),
		xmlstream.A("mc:Ignorable", "x14ac"),
		xmlstream.A("xmlns:x14ac", NSX14ac),
	)
	renderSheetPr(w, ws.Properties)
	if ws.Dimension != "" {
		w.EmptyNode("dimension", xmlstream.A("ref", ws.Dimension))
	}
	views := ws.Views
	if len(views) == 0 {
		views = []model.SheetView{{State: "normal"}}
	}
	w.OpenNode("sheetViews")
	for _, v := range views {
		renderSheetView(w, v)
	}
	w.CloseNode()

	p := ws.Properties
	rowHeight := p.DefaultRowHeight
	if rowHeight == 0 {
		rowHeight = 15
	}
	fa := []xmlstream.Attr{xmlstream.Float("defaultRowHeight", rowHeight)}
	fa = floatAttr(fa, "defaultColWidth", p.DefaultColWidth)
	fa = intAttr(fa, "outlineLevelRow", p.OutlineLevelRow)
	fa = intAttr(fa, "outlineLevelCol", p.OutlineLevelCol)
	fa = floatAttr(fa, "x14ac:dyDescent", p.DyDescent)
	w.EmptyNode("sheetFormatPr", fa...)

	if len(ws.Columns) > 0 {
		w.OpenNode("cols")
		for _, c := range ws.Columns {
			x.col.Render(w, c)
		}
		w.CloseNode()
	}

	w.OpenNode("sheetData")
	for _, r := range ws.Rows {
		x.row.Render(w, r)
	}
	w.CloseNode()

	if ws.AutoFilter != "" {
		w.EmptyNode("autoFilter", xmlstream.A("ref", ws.AutoFilter))
	}
	if len(ws.Merges) > 0 {
		w.OpenNode("mergeCells", xmlstream.Int("count", len(ws.Merges)))
		for _, m := range ws.Merges {
			w.EmptyNode("mergeCell", xmlstream.A("ref", m))
		}
		w.CloseNode()
	}
	if len(ws.DataValidations) > 0 {
		w.OpenNode("dataValidations", xmlstream.Int("count", len(ws.DataValidations)))
		for _, d := range ws.DataValidations {
			renderDataValidation(w, d)
		}
		w.CloseNode()
	}
	if len(ws.Hyperlinks) > 0 {
		w.OpenNode("hyperlinks")
		for _, h := range ws.Hyperlinks {
			x.link.Render(w, h)
		}
		w.CloseNode()
	}
	m := ws.PageMargins
	if m == nil {
		m = &model.PageMargins{Left: 0.7, Right: 0.7, Top: 0.75, Bottom: 0.75, Header: 0.3, Footer: 0.3}
	}
	w.EmptyNode("pageMargins",
		xmlstream.Float("left", m.Left), xmlstream.Float("right", m.Right),
		xmlstream.Float("top", m.Top), xmlstream.Float("bottom", m.Bottom),
		xmlstream.Float("header", m.Header), xmlstream.Float("footer", m.Footer),
	)
	if len(ws.RowBreaks) > 0 {
		w.OpenNode("rowBreaks", xmlstream.Int("count", len(ws.RowBreaks)), xmlstream.Int("manualBreakCount", len(ws.RowBreaks)))
		for _, id := range ws.RowBreaks {
			w.EmptyNode("brk", xmlstream.Int("id", id), xmlstream.Int("max", 16383), xmlstream.Bool("man", true))
		}
		w.CloseNode()
	}
	if ws.DrawingRelID != "" {
		w.EmptyNode("drawing", xmlstream.A("r:id", ws.DrawingRelID))
	}
	if ws.LegacyDrawingID != "" {
		w.EmptyNode("legacyDrawing", xmlstream.A("r:id", ws.LegacyDrawingID))
	}
	if len(ws.TableRelIDs) > 0 {
		w.OpenNode("tableParts", xmlstream.Int("count", len(ws.TableRelIDs)))
		for _, id := range ws.TableRelIDs {
			w.EmptyNode("tablePart", xmlstream.A("r:id", id))
		}
		w.CloseNode()
	}
	w.CloseNode()
}
