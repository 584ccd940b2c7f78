package model

import (
	"slices"

	"github.com/logicossoftware/go-xlsxio/address"
)

// Sheet states.
const (
	SheetVisible    = "visible"
	SheetHidden     = "hidden"
	SheetVeryHidden = "veryHidden"
)

// Worksheet is one grid of cells.
type Worksheet struct {
	ID    int
	Name  string
	State string

	Properties  SheetProperties
	Views       []SheetView
	Columns     []Column
	Rows        []*Row
	Merges      []string
	AutoFilter  string
	RowBreaks   []int
	PageMargins *PageMargins
	// DataValidations maps addresses to their rule. Keys may be cells or
	// ranges such as "A1:B5"; decoding always yields single-cell keys, and
	// cells that share a rule share one pointer.
	DataValidations map[string]*DataValidation
	Images          []Image
	Tables          []*Table
}

// SheetProperties holds sheet-level formatting.
type SheetProperties struct {
	TabColor         *Color
	OutlineLevelRow  int
	OutlineLevelCol  int
	SummaryBelow     *bool
	SummaryRight     *bool
	DefaultRowHeight float64
	DefaultColWidth  float64
	DyDescent        float64
	FitToPage        bool
}

// SheetView describes how the sheet is shown.
type SheetView struct {
	// State is "normal", "frozen" or "split".
	State             string
	XSplit, YSplit    float64
	TopLeftCell       string
	ActiveCell        string
	ShowGridLines     *bool
	ShowRowColHeaders *bool
	RightToLeft       bool
	ZoomScale         int
	TabSelected       bool
	View              string
}

// Column is a run of columns Min..Max sharing one definition.
type Column struct {
	Min, Max     int
	Width        float64
	Hidden       bool
	BestFit      bool
	OutlineLevel int
	Collapsed    bool
	Style        *Style
}

// PageMargins are in inches.
type PageMargins struct {
	Left, Right, Top, Bottom, Header, Footer float64
}

// Row is one sheet row. Cells are kept in column order.
type Row struct {
	Number       int
	Height       float64
	CustomHeight bool
	Hidden       bool
	OutlineLevel int
	Collapsed    bool
	DyDescent    float64
	Style        *Style
	Cells        []*Cell
}

// Cell is one populated or styled cell.
type Cell struct {
	Col       int
	Value     Value
	Style     *Style
	Hyperlink *Hyperlink
	Note      *Note
}

// Address returns the A1 reference of c within row.
func (c *Cell) Address(row int) string {
	return address.Encode(row, c.Col)
}

// Hyperlink is an external target or an internal location.
type Hyperlink struct {
	Target   string
	Location string
	Tooltip  string
	Display  string
}

// Note is a cell comment.
type Note struct {
	Author  string
	Texts   RichText
	Visible bool
}

// DataValidation is an input rule attached to cells.
type DataValidation struct {
	Type             string // "list", "whole", "decimal", "date", "time", "textLength", "custom", "any"
	Operator         string
	AllowBlank       bool
	ShowInputMessage bool
	ShowErrorMessage bool
	PromptTitle      string
	Prompt           string
	ErrorStyle       string
	ErrorTitle       string
	Error            string
	Formulae         []string
}

// Image anchors an entry of Workbook.Media onto the sheet.
type Image struct {
	Media  int
	Name   string
	From   Anchor
	To     *Anchor
	Extent *Extent
	EditAs string
	// Hyperlink and Tooltip are the click-through target of the picture.
	Hyperlink string
	Tooltip   string
}

// Anchor is a cell position plus an offset in EMU. Col and Row are 0-based
// as stored in drawings.
type Anchor struct {
	Col, ColOff int64
	Row, RowOff int64
}

// Extent is a size in EMU.
type Extent struct {
	CX, CY int64
}

// Table is a structured range with a header row.
type Table struct {
	Name        string
	DisplayName string
	Ref         string
	HeaderRow   bool
	TotalsRow   bool
	AutoFilter  bool
	Columns     []TableColumn
	Style       TableStyle
}

// TableColumn is one column of a Table.
type TableColumn struct {
	Name              string
	TotalsRowFunction string
	TotalsRowLabel    string
	TotalsRowFormula  string
}

// TableStyle selects the table's visual theme.
type TableStyle struct {
	Name              string
	ShowFirstColumn   bool
	ShowLastColumn    bool
	ShowRowStripes    bool
	ShowColumnStripes bool
}

// Row returns row n, creating it in order when absent.
func (ws *Worksheet) Row(n int) *Row {
	i, found := slices.BinarySearchFunc(ws.Rows, n, func(r *Row, n int) int { return r.Number - n })
	if found {
		return ws.Rows[i]
	}
	r := &Row{Number: n}
	ws.Rows = slices.Insert(ws.Rows, i, r)
	return r
}

// Cell returns the cell at the A1 reference, creating row and cell when
// absent. It returns nil for malformed references.
func (ws *Worksheet) Cell(ref string) *Cell {
	a, err := address.Decode(ref)
	if err != nil {
		return nil
	}
	return ws.Row(a.Row).Cell(a.Col)
}

// FindCell returns the cell at row and col without creating it.
func (ws *Worksheet) FindCell(row, col int) *Cell {
	i, found := slices.BinarySearchFunc(ws.Rows, row, func(r *Row, n int) int { return r.Number - n })
	if !found {
		return nil
	}
	return ws.Rows[i].Find(col)
}

// Cell returns the cell in column col, creating it in order when absent.
func (r *Row) Cell(col int) *Cell {
	i, found := slices.BinarySearchFunc(r.Cells, col, func(c *Cell, n int) int { return c.Col - n })
	if found {
		return r.Cells[i]
	}
	c := &Cell{Col: col}
	r.Cells = slices.Insert(r.Cells, i, c)
	return c
}

// Find returns the cell in column col or nil.
func (r *Row) Find(col int) *Cell {
	i, found := slices.BinarySearchFunc(r.Cells, col, func(c *Cell, n int) int { return c.Col - n })
	if !found {
		return nil
	}
	return r.Cells[i]
}

// Dimensions returns the range covering every stored cell, or false for an
// empty sheet.
func (ws *Worksheet) Dimensions() (address.Range, bool) {
	var r address.Range
	ok := false
	for _, row := range ws.Rows {
		for _, c := range row.Cells {
			if !ok {
				r = address.CellRange("", row.Number, c.Col)
				ok = true
				continue
			}
			r.Top = min(r.Top, row.Number)
			r.Bottom = max(r.Bottom, row.Number)
			r.Left = min(r.Left, c.Col)
			r.Right = max(r.Right, c.Col)
		}
	}
	return r, ok
}
