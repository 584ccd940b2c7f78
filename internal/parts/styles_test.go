package parts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/model"
)

func boldRed() *model.Style {
	return &model.Style{
		NumFmt: "0.00%",
		Font:   &model.Font{Name: "Arial", Size: 10, Bold: true, Color: &model.Color{ARGB: "FFFF0000"}},
		Fill:   &model.Fill{Type: model.FillPattern, Pattern: "solid", FgColor: &model.Color{ARGB: "FFFFFF00"}},
		Border: &model.Border{Bottom: &model.BorderEdge{Style: "thin"}},
	}
}

func TestStyleRegistryIdempotent(t *testing.T) {
	r := NewStyleRegistry()
	id1, ok := r.Add(boldRed())
	require.True(t, ok)
	id2, ok := r.Add(boldRed())
	require.True(t, ok)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, id1)

	other := boldRed()
	other.Font.Bold = false
	id3, _ := r.Add(other)
	assert.NotEqual(t, id1, id3)

	m := r.Model()
	assert.Len(t, m.CellXfs, 3)
	assert.Len(t, m.Fonts, 3, "default font plus two distinct fonts")
	assert.Len(t, m.Fills, 3, "none, gray125 and the solid fill")
	assert.Len(t, m.Borders, 2)
	assert.Equal(t, m.CellXfs[id1].FillID, m.CellXfs[id3].FillID)
	assert.Equal(t, 10, m.CellXfs[id1].NumFmtID, "built-in percentage")
}

func TestStyleRegistryEmptyAndCustomFormats(t *testing.T) {
	r := NewStyleRegistry()
	_, ok := r.Add(&model.Style{})
	assert.False(t, ok)
	_, ok = r.Add(&model.Style{NumFmt: "General", Alignment: &model.Alignment{}})
	assert.True(t, ok)

	a, _ := r.Add(&model.Style{NumFmt: "0.000"})
	b, _ := r.Add(&model.Style{NumFmt: "yyyy-mm-dd"})
	m := r.Model()
	require.Len(t, m.NumFmts, 2)
	assert.Equal(t, 164, m.NumFmts[0].ID)
	assert.Equal(t, 165, m.CellXfs[b].NumFmtID)
	assert.Equal(t, 164, m.CellXfs[a].NumFmtID)

	var null Styler = NullStyles{}
	_, ok = null.Add(boldRed())
	assert.False(t, ok)
	assert.False(t, null.Enabled())
}

func TestStylesRoundTrip(t *testing.T) {
	r := NewStyleRegistry()
	id, _ := r.Add(boldRed())
	dateID, _ := r.Add(&model.Style{NumFmt: "yyyy-mm-dd", Alignment: &model.Alignment{Horizontal: "center", WrapText: true}})

	x := NewStylesXform()
	got := roundTrip(t, x, r.Model())
	require.Len(t, got.CellXfs, 3)

	st, ok := got.Style(id)
	require.True(t, ok)
	assert.Equal(t, "0.00%", st.NumFmt)
	require.NotNil(t, st.Font)
	assert.Equal(t, "Arial", st.Font.Name)
	assert.True(t, st.Font.Bold)
	require.NotNil(t, st.Fill)
	assert.Equal(t, "solid", st.Fill.Pattern)
	require.NotNil(t, st.Border)
	require.NotNil(t, st.Border.Bottom)
	assert.Equal(t, "thin", st.Border.Bottom.Style)

	again, _ := got.Style(id)
	assert.Same(t, st, again)

	assert.True(t, got.IsDate(dateID))
	assert.False(t, got.IsDate(id))
	ds, _ := got.Style(dateID)
	require.NotNil(t, ds.Alignment)
	assert.Equal(t, "center", ds.Alignment.Horizontal)

	_, ok = got.Style(99)
	assert.False(t, ok)
}

func TestStyleDefaultFontOnlyWhenApplied(t *testing.T) {
	r := NewStyleRegistry()
	plain, _ := r.Add(&model.Style{NumFmt: "0.00"})
	font := DefaultFont()
	applied, _ := r.Add(&model.Style{NumFmt: "0.00", Font: &font})
	require.NotEqual(t, plain, applied)

	got := roundTrip(t, NewStylesXform(), r.Model())
	st, ok := got.Style(plain)
	require.True(t, ok)
	require.Equal(t, &model.Style{NumFmt: "0.00"}, st)

	st, ok = got.Style(applied)
	require.True(t, ok)
	require.Equal(t, &model.Style{NumFmt: "0.00", Font: &font}, st)
}

func TestStyleFontZeroFromForeignFile(t *testing.T) {
	var s Styles
	s.Fonts = []*model.Font{{Name: "Calibri", Size: 11}}
	s.CellXfs = []Xf{{}, {NumFmtID: 2}, {NumFmtID: 2, ApplyFont: true}}

	st, _ := s.Style(1)
	assert.Nil(t, st.Font)
	st, _ = s.Style(2)
	require.NotNil(t, st.Font)
	assert.Equal(t, "Calibri", st.Font.Name)
}

func TestStylesReregisterIsStable(t *testing.T) {
	first := NewStyleRegistry()
	id, _ := first.Add(boldRed())
	parsed := roundTrip(t, NewStylesXform(), first.Model())
	st, _ := parsed.Style(id)

	second := NewStyleRegistry()
	id2, _ := second.Add(st)
	assert.Equal(t, id, id2)
	assert.Equal(t, len(first.Model().Fonts), len(second.Model().Fonts))
}
