package xlsxio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/logicossoftware/go-xlsxio/model"
)

func TestExcelizeReadsEncodedWorkbook(t *testing.T) {
	wb := &model.Workbook{Title: "interop"}
	ws := wb.AddWorksheet("Data")
	ws.Cell("A1").Value = model.String("Header1")
	ws.Cell("B1").Value = model.String("Header2")
	ws.Cell("A2").Value = model.Number(100)
	ws.Cell("B2").Value = model.Number(200.5)
	ws.Cell("C2").Value = model.Formula{Expr: "A2+B2", Result: model.Number(300.5)}
	ws.Cell("D2").Value = model.Bool(true)
	ws.Cell("A3").Value = model.String("Header1")
	ws.Cell("A3").Hyperlink = &model.Hyperlink{Target: "https://example.com/"}
	wb.AddWorksheet("Empty")
	wb.DefinedNames = []model.DefinedName{{Name: "Headers", Ranges: []string{"Data!$A$1:$B$1"}}}

	for _, shared := range []bool{true, false} {
		data := encodeBytes(t, wb, WithSharedStrings(shared))
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)

		require.Equal(t, []string{"Data", "Empty"}, f.GetSheetList())
		for cell, want := range map[string]string{
			"A1": "Header1", "B1": "Header2", "A2": "100", "B2": "200.5", "A3": "Header1",
		} {
			got, err := f.GetCellValue("Data", cell)
			require.NoError(t, err)
			require.Equal(t, want, got, cell)
		}
		formula, err := f.GetCellFormula("Data", "C2")
		require.NoError(t, err)
		require.Equal(t, "A2+B2", formula)

		ok, target, err := f.GetCellHyperLink("Data", "A3")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "https://example.com/", target)

		names := f.GetDefinedName()
		require.Len(t, names, 1)
		require.Equal(t, "Headers", names[0].Name)
		require.Equal(t, "Data!$A$1:$B$1", names[0].RefersTo)
		require.NoError(t, f.Close())
	}
}

func TestDecodeExcelizeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	const sheet = "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Header1"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Header2"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 100))
	require.NoError(t, f.SetCellValue(sheet, "B2", 200.5))
	require.NoError(t, f.SetCellValue(sheet, "C2", true))
	require.NoError(t, f.SetCellFormula(sheet, "D2", "SUM(A2:B2)"))
	require.NoError(t, f.MergeCell(sheet, "A4", "B4"))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{Name: "Block", RefersTo: "Sheet1!$A$1:$B$2"}))

	dv := excelize.NewDataValidation(true)
	dv.SetSqref("E1:E3")
	require.NoError(t, dv.SetDropList([]string{"yes", "no"}))
	require.NoError(t, f.AddDataValidation(sheet, dv))

	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "B5", "far"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	wb, warns, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	for _, w := range warns {
		t.Log(w)
	}
	require.Len(t, wb.Worksheets, 2)
	ws := wb.Sheet(sheet)
	require.NotNil(t, ws)
	require.Equal(t, model.String("Header1"), ws.Cell("A1").Value)
	require.Equal(t, model.String("Header2"), ws.Cell("B1").Value)
	require.Equal(t, model.Number(100), ws.Cell("A2").Value)
	require.Equal(t, model.Number(200.5), ws.Cell("B2").Value)
	require.Equal(t, model.Bool(true), ws.Cell("C2").Value)
	formula, ok := ws.Cell("D2").Value.(model.Formula)
	require.True(t, ok)
	require.Equal(t, "SUM(A2:B2)", formula.Expr)
	require.Equal(t, []string{"A4:B4"}, ws.Merges)
	require.Len(t, ws.DataValidations, 3)
	require.Equal(t, "list", ws.DataValidations["E2"].Type)

	require.Len(t, wb.DefinedNames, 1)
	require.Equal(t, []string{"Sheet1!$A$1:$B$2"}, wb.DefinedNames[0].Ranges)

	second := wb.Sheet("Second")
	require.NotNil(t, second)
	require.Equal(t, model.String("far"), second.Cell("B5").Value)
}
