// Package summary renders a decoded workbook as a JSON-friendly overview.
// It is shared by the command line tool, the C exports and the programs under examples/.
package summary

import (
	"sort"

	"github.com/logicossoftware/go-xlsxio/model"
)

// Workbook is the overview of one decoded file.
type Workbook struct {
	Title        string   `json:"title,omitempty"`
	Creator      string   `json:"creator,omitempty"`
	Application  string   `json:"application,omitempty"`
	Sheets       []Sheet  `json:"sheets"`
	DefinedNames []string `json:"defined_names,omitempty"`
	Media        []Media  `json:"media,omitempty"`
	PivotTables  []string `json:"pivot_tables,omitempty"`
	Themes       []string `json:"themes,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Sheet summarizes one worksheet.
type Sheet struct {
	Name        string   `json:"name"`
	State       string   `json:"state"`
	Dimension   string   `json:"dimension,omitempty"`
	Rows        int      `json:"rows"`
	Cells       int      `json:"cells"`
	Formulas    int      `json:"formulas,omitempty"`
	Merges      int      `json:"merges,omitempty"`
	Hyperlinks  int      `json:"hyperlinks,omitempty"`
	Notes       int      `json:"notes,omitempty"`
	Validations int      `json:"validations,omitempty"`
	Images      int      `json:"images,omitempty"`
	Tables      []string `json:"tables,omitempty"`
}

// Media describes one embedded file.
type Media struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Of builds the overview of wb. Each warning is rendered with its String
// form.
func Of[W interface{ String() string }](wb *model.Workbook, warns []W) Workbook {
	out := Workbook{
		Title:       wb.Title,
		Creator:     wb.Creator,
		Application: wb.Application,
		Sheets:      make([]Sheet, 0, len(wb.Worksheets)),
	}
	for _, ws := range wb.Worksheets {
		out.Sheets = append(out.Sheets, sheetOf(ws))
	}
	for _, dn := range wb.DefinedNames {
		out.DefinedNames = append(out.DefinedNames, dn.Name)
	}
	for _, m := range wb.Media {
		out.Media = append(out.Media, Media{Name: m.FileName(), Size: len(m.Data)})
	}
	for _, pt := range wb.PivotTables {
		out.PivotTables = append(out.PivotTables, pt.Name)
	}
	for name := range wb.Themes {
		out.Themes = append(out.Themes, name)
	}
	sort.Strings(out.Themes)
	for _, w := range warns {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func sheetOf(ws *model.Worksheet) Sheet {
	s := Sheet{
		Name:        ws.Name,
		State:       ws.State,
		Rows:        len(ws.Rows),
		Merges:      len(ws.Merges),
		Validations: len(ws.DataValidations),
		Images:      len(ws.Images),
	}
	if s.State == "" {
		s.State = model.SheetVisible
	}
	if dim, ok := ws.Dimensions(); ok {
		s.Dimension = dim.String()
	}
	for _, r := range ws.Rows {
		for _, c := range r.Cells {
			if c.Value != nil {
				s.Cells++
			}
			if _, ok := c.Value.(model.Formula); ok {
				s.Formulas++
			}
			if c.Hyperlink != nil {
				s.Hyperlinks++
			}
			if c.Note != nil {
				s.Notes++
			}
		}
	}
	for _, t := range ws.Tables {
		s.Tables = append(s.Tables, t.Name)
	}
	return s
}
