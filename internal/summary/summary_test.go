package summary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/model"
)

type note string

func (n note) String() string { return string(n) }

func TestOf(t *testing.T) {
	wb := &model.Workbook{
		Title:        "Report",
		DefinedNames: []model.DefinedName{{Name: "Totals", Formula: "1"}},
		Media:        []model.Media{{Name: "image1", Extension: "png", Data: []byte{1, 2, 3}}},
		Themes:       map[string]string{"theme2": "", "theme1": ""},
		PivotTables:  []*model.PivotTable{{Name: "Pivot1"}},
	}
	ws := wb.AddWorksheet("Data")
	ws.Cell("B2").Value = model.Number(1)
	ws.Cell("C4").Value = model.Formula{Expr: "B2*2"}
	ws.Cell("C4").Note = &model.Note{Author: "a"}
	ws.Cell("D4").Hyperlink = &model.Hyperlink{Target: "https://example.com/"}
	ws.Merges = []string{"E1:F1"}
	ws.Tables = []*model.Table{{Name: "T1", Ref: "B2:C4"}}
	hidden := wb.AddWorksheet("Hidden")
	hidden.State = model.SheetHidden

	s := Of(wb, []note{"sheet1.xml: dangling style 4"})
	require.Equal(t, "Report", s.Title)
	require.Len(t, s.Sheets, 2)

	data := s.Sheets[0]
	require.Equal(t, "visible", data.State)
	require.Equal(t, "B2:D4", data.Dimension)
	require.Equal(t, 2, data.Rows)
	require.Equal(t, 2, data.Cells)
	require.Equal(t, 1, data.Formulas)
	require.Equal(t, 1, data.Notes)
	require.Equal(t, 1, data.Hyperlinks)
	require.Equal(t, 1, data.Merges)
	require.Equal(t, []string{"T1"}, data.Tables)

	require.Equal(t, "hidden", s.Sheets[1].State)
	require.Empty(t, s.Sheets[1].Dimension)

	require.Equal(t, []string{"Totals"}, s.DefinedNames)
	require.Equal(t, []Media{{Name: "image1.png", Size: 3}}, s.Media)
	require.Equal(t, []string{"theme1", "theme2"}, s.Themes)
	require.Equal(t, []string{"Pivot1"}, s.PivotTables)
	require.Equal(t, []string{"sheet1.xml: dangling style 4"}, s.Warnings)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"dimension":"B2:D4"`)
	require.NotContains(t, string(raw), `"images"`)
}
