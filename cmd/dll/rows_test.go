package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio"
	"github.com/logicossoftware/go-xlsxio/model"
)

func TestWorkbookDescRoundTrip(t *testing.T) {
	const in = `{"title":"t","sheets":[{"name":"S","rows":[["a",1,true],[null,"=A1&\"!\"",2.5]]}]}`
	var desc workbookDesc
	require.NoError(t, json.Unmarshal([]byte(in), &desc))
	wb, err := desc.build()
	require.NoError(t, err)

	ws := wb.Sheet("S")
	require.Equal(t, model.String("a"), ws.Cell("A1").Value)
	require.Equal(t, model.Formula{Expr: `A1&"!"`}, ws.Cell("B2").Value)
	require.Nil(t, ws.FindCell(2, 1))

	var buf bytes.Buffer
	require.NoError(t, xlsxio.Encode(&buf, wb))
	back, _, err := xlsxio.Decode(&buf)
	require.NoError(t, err)

	rows, err := sheetRows(back, "")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"a", 1.0, true}, {nil, `=A1&"!"`, 2.5}}, rows)

	_, err = sheetRows(back, "missing")
	require.Error(t, err)
}

func TestWorkbookDescRejectsObjects(t *testing.T) {
	desc := workbookDesc{Sheets: []sheetDesc{{Name: "S", Rows: [][]any{{map[string]any{}}}}}}
	_, err := desc.build()
	require.ErrorContains(t, err, "A1")
}
