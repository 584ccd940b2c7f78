package parts

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/logicossoftware/go-xlsxio/internal/intern"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// Styles is the raw xl/styles.xml model. Cells refer to CellXfs by index.
type Styles struct {
	NumFmts []NumFmt
	Fonts   []*model.Font
	Fills   []*model.Fill
	Borders []*model.Border
	CellXfs []Xf

	numFmtByID map[int]string
	cache      map[int]*model.Style
}

// NumFmt returns the format code of id, consulting the built-in table.
func (s *Styles) NumFmt(id int) string {
	if s.numFmtByID == nil {
		s.numFmtByID = make(map[int]string, len(s.NumFmts))
		for _, f := range s.NumFmts {
			s.numFmtByID[f.ID] = f.Code
		}
	}
	if code, ok := s.numFmtByID[id]; ok {
		return code
	}
	return builtinNumFmts[id]
}

// Style resolves cellXfs entry id into a style. Resolved styles are cached
// so every cell sharing an id shares one *model.Style. ok is false for ids
// outside the table.
func (s *Styles) Style(id int) (*model.Style, bool) {
	if id < 0 || id >= len(s.CellXfs) {
		return nil, false
	}
	if st, ok := s.cache[id]; ok {
		return st, true
	}
	xf := s.CellXfs[id]
	st := &model.Style{Alignment: xf.Alignment, Protection: xf.Protection}
	if xf.NumFmtID != 0 {
		st.NumFmt = s.NumFmt(xf.NumFmtID)
	}
	// Font 0 is the workbook default; it only belongs to the style when applied.
	if (xf.FontID > 0 || xf.ApplyFont) && xf.FontID >= 0 && xf.FontID < len(s.Fonts) {
		st.Font = s.Fonts[xf.FontID]
	}
	if xf.FillID > 0 && xf.FillID < len(s.Fills) {
		st.Fill = s.Fills[xf.FillID]
	}
	if xf.BorderID > 0 && xf.BorderID < len(s.Borders) {
		st.Border = s.Borders[xf.BorderID]
	}
	if s.cache == nil {
		s.cache = make(map[int]*model.Style)
	}
	s.cache[id] = st
	return st, true
}

// IsDate reports whether cellXfs entry id carries a date number format.
func (s *Styles) IsDate(id int) bool {
	if id < 0 || id >= len(s.CellXfs) {
		return false
	}
	return IsDateFormat(s.NumFmt(s.CellXfs[id].NumFmtID))
}

// NewStylesXform returns the transform for xl/styles.xml.
func NewStylesXform() *StylesXform {
	x := &StylesXform{
		numFmts: &xform.List[NumFmt]{Tag: "numFmts", Child: newNumFmtXform(), Count: true},
		fonts:   &xform.List[*model.Font]{Tag: "fonts", Child: newFontXform("font", "name"), Count: true, Attrs: []xmlstream.Attr{xmlstream.A("x14ac:knownFonts", "1")}},
		fills:   &xform.List[*model.Fill]{Tag: "fills", Child: newFillXform(), Count: true},
		borders: &xform.List[*model.Border]{Tag: "borders", Child: newBorderXform(), Count: true},
		cellXfs: &xform.List[Xf]{Tag: "cellXfs", Child: newXfXform(), Count: true},
	}
	x.Composite = xform.Composite[Styles]{
		Tag: "styleSheet",
		Children: map[string]xform.Child[Styles]{
			"numFmts": xform.Bind(x.numFmts, nil, func(s *Styles, v []NumFmt) { s.NumFmts = v }),
			"fonts":   xform.Bind(x.fonts, nil, func(s *Styles, v []*model.Font) { s.Fonts = v }),
			"fills":   xform.Bind(x.fills, nil, func(s *Styles, v []*model.Fill) { s.Fills = v }),
			"borders": xform.Bind(x.borders, nil, func(s *Styles, v []*model.Border) { s.Borders = v }),
			"cellXfs": xform.Bind(x.cellXfs, nil, func(s *Styles, v []Xf) { s.CellXfs = v }),
		},
	}
	return x
}

// StylesXform parses styles.xml and renders the tables of a StyleRegistry.
type StylesXform struct {
	xform.Composite[Styles]
	numFmts *xform.List[NumFmt]
	fonts   *xform.List[*model.Font]
	fills   *xform.List[*model.Fill]
	borders *xform.List[*model.Border]
	cellXfs *xform.List[Xf]
}

// Render writes a complete stylesheet for s.
func (x *StylesXform) Render(w *xmlstream.Writer, s Styles) {
	w.OpenNode("styleSheet",
		xmlstream.A("xmlns", NSMain),
		xmlstream.A("xmlns:mc", NSMarkupCompat),
		xmlstream.A("mc:Ignorable", "x14ac"),
		xmlstream.A("xmlns:x14ac", NSX14ac),
	)
	x.numFmts.Render(w, s.NumFmts)
	x.fonts.Render(w, s.Fonts)
	x.fills.Render(w, s.Fills)
	x.borders.Render(w, s.Borders)
	w.OpenNode("cellStyleXfs", xmlstream.Int("count", 1))
	w.EmptyNode("xf", xmlstream.Int("numFmtId", 0), xmlstream.Int("fontId", 0), xmlstream.Int("fillId", 0), xmlstream.Int("borderId", 0))
	w.CloseNode()
	x.cellXfs.Render(w, s.CellXfs)
	w.OpenNode("cellStyles", xmlstream.Int("count", 1))
	w.EmptyNode("cellStyle", xmlstream.A("name", "Normal"), xmlstream.Int("xfId", 0), xmlstream.Int("builtinId", 0))
	w.CloseNode()
	w.EmptyNode("dxfs", xmlstream.Int("count", 0))
	w.EmptyNode("tableStyles", xmlstream.Int("count", 0),
		xmlstream.A("defaultTableStyle", "TableStyleMedium2"), xmlstream.A("defaultPivotStyle", "PivotStyleLight16"))
	w.CloseNode()
}

// Styler hands out cellXfs ids for styles during prepare.
type Styler interface {
	// Add returns the id for s; ok is false when s needs no id.
	Add(s *model.Style) (id int, ok bool)
	// Enabled reports whether a styles part is written.
	Enabled() bool
}

// NullStyles is the Styler used when styling is switched off.
type NullStyles struct{}

func (NullStyles) Add(*model.Style) (int, bool) { return 0, false }
func (NullStyles) Enabled() bool                { return false }

func intPtr(i int) *int { return &i }

// DefaultFont is font 0 of every written stylesheet.
func DefaultFont() model.Font {
	return model.Font{Name: "Calibri", Size: 11, Family: 2, Scheme: "minor", Color: &model.Color{Theme: intPtr(1)}}
}

// StyleRegistry interns styles into deduplicated stylesheet tables.
type StyleRegistry struct {
	styles  *intern.Table[model.Style]
	styleXf []int
	fonts   *intern.Table[model.Font]
	fills   *intern.Table[model.Fill]
	borders *intern.Table[model.Border]
	xfs     *intern.Table[Xf]
	numFmts map[string]int
	custom  []NumFmt
}

// NewStyleRegistry returns a registry seeded with the mandatory defaults.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{
		styles: intern.NewTable[model.Style](),
		fonts:  intern.NewTable(DefaultFont()),
		fills: intern.NewTable(
			model.Fill{Type: model.FillPattern, Pattern: "none"},
			model.Fill{Type: model.FillPattern, Pattern: "gray125"},
		),
		borders: intern.NewTable(model.Border{}),
		xfs:     intern.NewTable(Xf{}),
		numFmts: make(map[string]int),
	}
}

// Enabled implements Styler.
func (r *StyleRegistry) Enabled() bool { return true }

// Add implements Styler. Equal styles always map to the same id.
func (r *StyleRegistry) Add(s *model.Style) (int, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	norm := normalizeStyle(s)
	i := r.styles.Add(norm)
	if i < len(r.styleXf) {
		return r.styleXf[i], true
	}
	xf := Xf{Alignment: norm.Alignment, Protection: norm.Protection}
	if norm.NumFmt != "" {
		xf.NumFmtID = r.numFmtID(norm.NumFmt)
	}
	if norm.Font != nil {
		xf.FontID = r.fonts.Add(*norm.Font)
		xf.ApplyFont = true
	}
	if norm.Fill != nil {
		xf.FillID = r.fills.Add(*norm.Fill)
	}
	if norm.Border != nil {
		xf.BorderID = r.borders.Add(*norm.Border)
	}
	id := r.xfs.Add(xf)
	r.styleXf = append(r.styleXf, id)
	return id, true
}

func (r *StyleRegistry) numFmtID(code string) int {
	if id, ok := builtinNumFmtIDs[code]; ok {
		return id
	}
	if id, ok := r.numFmts[code]; ok {
		return id
	}
	id := 164 + len(r.custom)
	r.numFmts[code] = id
	r.custom = append(r.custom, NumFmt{ID: id, Code: code})
	return id
}

// Model returns the stylesheet tables collected so far.
func (r *StyleRegistry) Model() Styles {
	s := Styles{NumFmts: r.custom, CellXfs: r.xfs.Values()}
	for _, f := range r.fonts.Values() {
		s.Fonts = append(s.Fonts, &f)
	}
	for _, f := range r.fills.Values() {
		s.Fills = append(s.Fills, &f)
	}
	for _, b := range r.borders.Values() {
		s.Borders = append(s.Borders, &b)
	}
	return s
}

// normalizeStyle deep-copies s and drops members that carry no formatting,
// so equal-looking styles compare equal.
func normalizeStyle(s *model.Style) model.Style {
	var c model.Style
	if err := deepcopy.Copy(&c, s); err != nil {
		c = *s
	}
	if c.NumFmt == "General" {
		c.NumFmt = ""
	}
	if c.Alignment != nil && *c.Alignment == (model.Alignment{}) {
		c.Alignment = nil
	}
	if c.Protection != nil && c.Protection.Locked == nil && !c.Protection.Hidden {
		c.Protection = nil
	}
	return c
}
