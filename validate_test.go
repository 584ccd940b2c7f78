package xlsxio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/model"
)

func TestValidateWorkbook(t *testing.T) {
	bad := -1
	cases := []struct {
		name  string
		build func() *model.Workbook
	}{
		{"nil", func() *model.Workbook { return nil }},
		{"no sheets", func() *model.Workbook { return &model.Workbook{} }},
		{"empty name", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet(" ")
			return wb
		}},
		{"long name", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet(strings.Repeat("x", 32))
			return wb
		}},
		{"forbidden char", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("a/b")
			return wb
		}},
		{"apostrophe", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("'quoted")
			return wb
		}},
		{"duplicate name", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("Data")
			wb.AddWorksheet("DATA")
			return wb
		}},
		{"unknown state", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("S").State = "minimized"
			return wb
		}},
		{"row out of range", func() *model.Workbook {
			wb := &model.Workbook{}
			ws := wb.AddWorksheet("S")
			ws.Rows = append(ws.Rows, &model.Row{Number: 0})
			return wb
		}},
		{"column out of range", func() *model.Workbook {
			wb := &model.Workbook{}
			ws := wb.AddWorksheet("S")
			ws.Row(1).Cells = append(ws.Row(1).Cells, &model.Cell{Col: 20000})
			return wb
		}},
		{"missing media", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("S").Images = []model.Image{{Media: 0}}
			return wb
		}},
		{"media without extension", func() *model.Workbook {
			wb := &model.Workbook{Media: []model.Media{{Name: "image1"}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"duplicate media", func() *model.Workbook {
			wb := &model.Workbook{Media: []model.Media{{Name: "a", Extension: "png"}, {Name: "a", Extension: "PNG"}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"media escapes", func() *model.Workbook {
			wb := &model.Workbook{Media: []model.Media{{Name: "../x", Extension: "png"}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"duplicate table", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("A").Tables = []*model.Table{{Name: "T", Ref: "A1:B2"}}
			wb.AddWorksheet("B").Tables = []*model.Table{{Name: "t", Ref: "A1:B2"}}
			return wb
		}},
		{"table bad ref", func() *model.Workbook {
			wb := &model.Workbook{}
			wb.AddWorksheet("A").Tables = []*model.Table{{Name: "T", Ref: "nowhere"}}
			return wb
		}},
		{"defined name without sheet", func() *model.Workbook {
			wb := &model.Workbook{DefinedNames: []model.DefinedName{{Name: "N", Ranges: []string{"$A$1"}}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"defined name empty", func() *model.Workbook {
			wb := &model.Workbook{DefinedNames: []model.DefinedName{{Name: "N"}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"defined name local sheet", func() *model.Workbook {
			wb := &model.Workbook{DefinedNames: []model.DefinedName{{Name: "N", Formula: "1", LocalSheetID: &bad}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"pivot missing source", func() *model.Workbook {
			wb := &model.Workbook{PivotTables: []*model.PivotTable{{SourceSheet: "Nope", Sheet: "S", Values: []string{"x"}}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"pivot without values", func() *model.Workbook {
			wb := &model.Workbook{PivotTables: []*model.PivotTable{{SourceSheet: "S", Sheet: "S"}}}
			wb.AddWorksheet("S")
			return wb
		}},
		{"pivot metric", func() *model.Workbook {
			wb := &model.Workbook{PivotTables: []*model.PivotTable{{SourceSheet: "S", Sheet: "S", Values: []string{"x"}, Metric: "median"}}}
			wb.AddWorksheet("S")
			return wb
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Encode(&bytes.Buffer{}, tc.build())
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateAcceptsEdgeNames(t *testing.T) {
	wb := &model.Workbook{}
	wb.AddWorksheet(strings.Repeat("é", 31))
	wb.AddWorksheet("It's fine")
	require.NoError(t, validateWorkbook(wb))
}

func TestEncodeLimits(t *testing.T) {
	wb := &model.Workbook{}
	wb.AddWorksheet("Sheet1").Cell("A1").Value = model.String(strings.Repeat("x", 4096))

	err := Encode(&bytes.Buffer{}, wb, WithWriteLimits(Limits{MaxEntries: 3}))
	require.ErrorIs(t, err, ErrLimitExceeded)

	err = Encode(&bytes.Buffer{}, wb, WithWriteLimits(Limits{MaxEntrySize: 1024}))
	require.ErrorIs(t, err, ErrLimitExceeded)
	var pe *PartError
	require.ErrorAs(t, err, &pe)
}

func TestEncodeDefinedNameBudget(t *testing.T) {
	wb := &model.Workbook{DefinedNames: []model.DefinedName{{Name: "Huge", Ranges: []string{"S!A1", "S!A1:Z100"}}}}
	wb.AddWorksheet("S")
	err := Encode(&bytes.Buffer{}, wb, WithWriteLimits(Limits{MaxExpandedCells: 100}))
	require.ErrorIs(t, err, ErrLimitExceeded)
}

func TestEncodeBadValidationAddress(t *testing.T) {
	wb := &model.Workbook{}
	ws := wb.AddWorksheet("S")
	ws.DataValidations = map[string]*model.DataValidation{"not a cell": {Type: "list"}}
	err := Encode(&bytes.Buffer{}, wb)
	require.ErrorIs(t, err, ErrValidation)
}

func TestEncodeFileCreateFailure(t *testing.T) {
	wb := &model.Workbook{}
	wb.AddWorksheet("S")
	err := EncodeFile(t.TempDir()+"/missing-dir/out.xlsx", wb)
	require.Error(t, err)
}
