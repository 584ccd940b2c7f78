// Package model is the in-memory document graph of a spreadsheet package.
//
// Decoding produces a fully resolved graph: style references are replaced
// by Style values, shared-string indices by text and relationship ids by
// their targets. Encoding accepts the same graph.
package model

import "time"

// Workbook is a spreadsheet document.
type Workbook struct {
	// Core properties.
	Creator        string
	LastModifiedBy string
	Title          string
	Subject        string
	Keywords       string
	Category       string
	Description    string
	Language       string
	Revision       int
	ContentStatus  string
	Created        time.Time
	Modified       time.Time
	LastPrinted    time.Time

	// Extended properties.
	Application string
	Company     string
	Manager     string

	// Date1904 selects the 1904 date epoch for date serials.
	Date1904       bool
	FullCalcOnLoad bool
	Views          []WorkbookView

	Worksheets   []*Worksheet
	DefinedNames []DefinedName
	// Media is referenced by index from Image.Media.
	Media []Media
	// Themes maps a theme part name such as "theme1" to its XML.
	Themes      map[string]string
	PivotTables []*PivotTable
}

// Sheet returns the worksheet with the given name, or nil.
func (wb *Workbook) Sheet(name string) *Worksheet {
	for _, ws := range wb.Worksheets {
		if ws.Name == name {
			return ws
		}
	}
	return nil
}

// AddWorksheet appends a new visible worksheet with the next free id.
func (wb *Workbook) AddWorksheet(name string) *Worksheet {
	id := 1
	for _, ws := range wb.Worksheets {
		if ws.ID >= id {
			id = ws.ID + 1
		}
	}
	ws := &Worksheet{ID: id, Name: name, State: SheetVisible}
	wb.Worksheets = append(wb.Worksheets, ws)
	return ws
}

// WorkbookView is a window onto the workbook.
type WorkbookView struct {
	X, Y          int
	Width, Height int
	FirstSheet    int
	ActiveTab     int
	Visibility    string
}

// DefinedName is a named reference. Ranges holds sheet-qualified absolute
// ranges such as "Sheet1!$A$1:$B$2". Names whose definition is not a plain
// list of ranges keep the definition text in Formula and have no Ranges.
type DefinedName struct {
	Name         string
	Ranges       []string
	Formula      string
	LocalSheetID *int
	Hidden       bool
	Comment      string
}

// Media is an embedded binary such as an image.
type Media struct {
	Name      string // base name without extension, e.g. "image1"
	Extension string // e.g. "png"
	Data      []byte
}

// FileName returns Name.Extension.
func (m Media) FileName() string {
	return m.Name + "." + m.Extension
}

// PivotTable is a summary table computed from a source worksheet.
//
// Rows and Columns name source header cells used as axes, Values the
// header cells that are aggregated with Metric ("sum" or "count").
type PivotTable struct {
	Name        string
	SourceSheet string
	Rows        []string
	Columns     []string
	Values      []string
	Metric      string
	// Location is the target range on the sheet that hosts the pivot.
	Location string
	// Sheet names the worksheet that hosts the pivot.
	Sheet string
}
