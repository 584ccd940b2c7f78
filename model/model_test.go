package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/address"
)

func TestRowAndCellStayOrdered(t *testing.T) {
	ws := &Worksheet{}
	ws.Cell("C3").Value = Number(3)
	ws.Cell("A1").Value = Number(1)
	ws.Cell("B3").Value = Number(2)
	ws.Cell("A1").Value = Number(10)

	require.Len(t, ws.Rows, 2)
	require.Equal(t, 1, ws.Rows[0].Number)
	require.Equal(t, 3, ws.Rows[1].Number)
	require.Len(t, ws.Rows[1].Cells, 2)
	require.Equal(t, 2, ws.Rows[1].Cells[0].Col)
	require.Equal(t, Number(10), ws.FindCell(1, 1).Value)
	require.Nil(t, ws.FindCell(2, 1))
	require.Nil(t, ws.Rows[0].Find(5))
	require.Nil(t, ws.Cell("not-a-cell"))
}

func TestDimensions(t *testing.T) {
	ws := &Worksheet{}
	_, ok := ws.Dimensions()
	require.False(t, ok)

	ws.Cell("C2").Value = String("x")
	ws.Cell("A5").Value = String("y")
	ws.Cell("E4").Value = String("z")
	dim, ok := ws.Dimensions()
	require.True(t, ok)
	require.Equal(t, address.NewRange("", 2, 1, 5, 5), dim)
	require.Equal(t, "A2:E5", dim.String())
}

func TestAddWorksheetIDs(t *testing.T) {
	wb := &Workbook{}
	a := wb.AddWorksheet("A")
	a.ID = 7
	b := wb.AddWorksheet("B")
	require.Equal(t, 8, b.ID)
	require.Equal(t, SheetVisible, b.State)
	require.Same(t, b, wb.Sheet("B"))
	require.Nil(t, wb.Sheet("C"))
}

func TestValueText(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		v    Value
		want string
	}{
		{Number(1.25), "1.25"},
		{Number(1e21), "1000000000000000000000"},
		{String("s"), "s"},
		{Bool(false), "false"},
		{Date(day), "2024-02-29T00:00:00Z"},
		{ErrorValue("#DIV/0!"), "#DIV/0!"},
		{RichText{{Text: "a"}, {Text: "b", Font: &Font{Bold: true}}}, "ab"},
		{Formula{Expr: "1+1", Result: Number(2)}, "2"},
		{Formula{Expr: "NOW()"}, ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.v.Text())
	}
}

func TestStyleIsEmpty(t *testing.T) {
	var s *Style
	require.True(t, s.IsEmpty())
	require.True(t, (&Style{}).IsEmpty())
	require.False(t, (&Style{NumFmt: "0.00"}).IsEmpty())
	require.False(t, (&Style{Font: &Font{}}).IsEmpty())
}

func TestMediaFileName(t *testing.T) {
	require.Equal(t, "image1.png", Media{Name: "image1", Extension: "png"}.FileName())
}

func TestCellAddress(t *testing.T) {
	c := &Cell{Col: 28}
	require.Equal(t, "AB9", c.Address(9))
}
