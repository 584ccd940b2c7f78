package main

import (
	"fmt"
	"strings"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/model"
)

type workbookDesc struct {
	Title  string      `json:"title"`
	Sheets []sheetDesc `json:"sheets"`
}

type sheetDesc struct {
	Name string  `json:"name"`
	Rows [][]any `json:"rows"`
}

func (s workbookDesc) build() (*model.Workbook, error) {
	wb := &model.Workbook{Title: s.Title}
	for _, sh := range s.Sheets {
		ws := wb.AddWorksheet(sh.Name)
		for i, row := range sh.Rows {
			for j, v := range row {
				val, err := toValue(v)
				if err != nil {
					return nil, fmt.Errorf("sheet %q %s: %w", sh.Name, address.Encode(i+1, j+1), err)
				}
				if val != nil {
					ws.Row(i + 1).Cell(j + 1).Value = val
				}
			}
		}
	}
	return wb, nil
}

func toValue(v any) (model.Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		if expr, ok := strings.CutPrefix(v, "="); ok && expr != "" {
			return model.Formula{Expr: expr}, nil
		}
		return model.String(v), nil
	case float64:
		return model.Number(v), nil
	case bool:
		return model.Bool(v), nil
	}
	return nil, fmt.Errorf("unsupported cell value %T", v)
}

// sheetRows returns the values of the named sheet as dense rows starting at
// row 1 and column 1.
func sheetRows(wb *model.Workbook, name string) ([][]any, error) {
	var ws *model.Worksheet
	switch {
	case name != "":
		ws = wb.Sheet(name)
	case len(wb.Worksheets) > 0:
		ws = wb.Worksheets[0]
	}
	if ws == nil {
		return nil, fmt.Errorf("sheet not found: %q", name)
	}
	dim, ok := ws.Dimensions()
	if !ok {
		return [][]any{}, nil
	}
	rows := make([][]any, dim.Bottom)
	for i := range rows {
		rows[i] = make([]any, dim.Right)
	}
	for _, r := range ws.Rows {
		for _, c := range r.Cells {
			rows[r.Number-1][c.Col-1] = fromValue(c.Value)
		}
	}
	return rows, nil
}

func fromValue(v model.Value) any {
	switch v := v.(type) {
	case nil:
		return nil
	case model.Number:
		return float64(v)
	case model.Bool:
		return bool(v)
	case model.Formula:
		if v.Result == nil {
			return "=" + v.Expr
		}
		return fromValue(v.Result)
	}
	return v.Text()
}
