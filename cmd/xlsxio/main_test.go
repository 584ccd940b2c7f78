package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio"
	"github.com/logicossoftware/go-xlsxio/internal/summary"
	"github.com/logicossoftware/go-xlsxio/model"
)

func writeSample(t *testing.T) string {
	t.Helper()
	wb := &model.Workbook{Title: "cli"}
	ws := wb.AddWorksheet("Data")
	ws.Cell("A1").Value = model.String("name\tpadded")
	ws.Cell("B1").Value = model.Number(42)
	ws.Cell("B2").Value = model.Formula{Expr: "B1*2", Result: model.Number(84)}
	wb.AddWorksheet("Other").Cell("C3").Value = model.Bool(true)

	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, xlsxio.EncodeFile(path, wb))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	in := writeSample(t)
	out, err := execute(t, "inspect", in)
	require.NoError(t, err)

	var s summary.Workbook
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Equal(t, "cli", s.Title)
	require.Len(t, s.Sheets, 2)
	require.Equal(t, "A1:B2", s.Sheets[0].Dimension)
	require.Equal(t, 1, s.Sheets[0].Formulas)
}

func TestRepack(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")
	_, err := execute(t, "repack", in, out, "--compression", "zstd", "--inline-strings")
	require.NoError(t, err)

	wb, warns, err := xlsxio.DecodeFile(out)
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Equal(t, model.Number(42), wb.Sheet("Data").Cell("B1").Value)

	_, err = execute(t, "repack", in, out, "--compression", "rar")
	require.ErrorIs(t, err, xlsxio.ErrUnsupportedCompression)
}

func TestCells(t *testing.T) {
	in := writeSample(t)
	out, err := execute(t, "cells", in)
	require.NoError(t, err)
	require.Equal(t, "A1\tname padded\nB1\t42\nB2\t84\n", out)

	out, err = execute(t, "cells", in, "--sheet", "Other")
	require.NoError(t, err)
	require.Equal(t, "C3\ttrue\n", out)

	_, err = execute(t, "cells", in, "--sheet", "Missing")
	require.Error(t, err)
}
