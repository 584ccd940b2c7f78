package xlsxio

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/parts"
	"github.com/logicossoftware/go-xlsxio/model"
)

// reconcile resolves the raw parts into the document model. Lookup tables
// are dropped once the model is built.
func (a *aggregate) reconcile(limits Limits) (*model.Workbook, error) {
	if a.workbook == nil {
		return nil, &PartError{Part: a.workbookPart, Err: fmt.Errorf("%w: workbook part missing", ErrInvalidPart)}
	}
	wb := &model.Workbook{
		Date1904:       a.workbook.Date1904,
		FullCalcOnLoad: a.workbook.FullCalcOnLoad,
		Views:          a.workbook.Views,
	}
	if c := a.core; c != nil {
		wb.Creator, wb.LastModifiedBy, wb.Title = c.Creator, c.LastModifiedBy, c.Title
		wb.Subject, wb.Keywords, wb.Category = c.Subject, c.Keywords, c.Category
		wb.Description, wb.Language, wb.Revision = c.Description, c.Language, c.Revision
		wb.ContentStatus = c.ContentStatus
		wb.Created, wb.Modified, wb.LastPrinted = c.Created, c.Modified, c.LastPrinted
	}
	if app := a.app; app != nil {
		wb.Application, wb.Company, wb.Manager = app.Application, app.Company, app.Manager
	}
	if len(a.themes) > 0 {
		wb.Themes = a.themes
	}

	r := &reconciler{
		aggregate: a,
		wb:        wb,
		budget:    newCellBudget(limits.MaxExpandedCells),
		media:     make(map[string]int, len(a.media)),
	}
	for i, m := range a.media {
		base := path.Base(m.part)
		ext := path.Ext(base)
		wb.Media = append(wb.Media, model.Media{
			Name:      strings.TrimSuffix(base, ext),
			Extension: strings.TrimPrefix(ext, "."),
			Data:      m.data,
		})
		r.media[m.part] = i
	}

	wbRels := a.rels[a.workbookPart]
	for _, s := range a.workbook.Sheets {
		ws := &model.Worksheet{ID: s.SheetID, Name: s.Name, State: s.State}
		if ws.State == "" {
			ws.State = model.SheetVisible
		}
		wb.Worksheets = append(wb.Worksheets, ws)
		name, ok := r.target(a.workbookPart, wbRels, s.RelID)
		if !ok {
			continue
		}
		raw := a.worksheets[name]
		if raw == nil {
			a.warn.add(name, "worksheet %q part missing", s.Name)
			continue
		}
		if err := r.worksheet(ws, name, raw); err != nil {
			return nil, err
		}
	}
	for _, dn := range a.workbook.DefinedNames {
		n := model.DefinedName{Name: dn.Name, LocalSheetID: dn.LocalSheetID, Hidden: dn.Hidden, Comment: dn.Comment}
		if ranges, ok := definedNameRanges(dn.Text); ok {
			n.Ranges = ranges
		} else {
			n.Formula = dn.Text
		}
		wb.DefinedNames = append(wb.DefinedNames, n)
	}
	a.release()
	return wb, nil
}

func (a *aggregate) release() {
	a.rels, a.worksheets, a.sharedStrings, a.styles = nil, nil, nil, nil
	a.drawings, a.vml, a.comments, a.tables = nil, nil, nil, nil
	a.pivotTables, a.pivotCaches, a.media = nil, nil, nil
}

type reconciler struct {
	*aggregate
	wb     *model.Workbook
	budget *cellBudget
	media  map[string]int
}

// target resolves relationship id of source to a part name.
func (r *reconciler) target(source string, rels parts.Relationships, id string) (string, bool) {
	rel, ok := rels.ByID(id)
	if !ok {
		r.warn.add(source, "relationship %s not found", id)
		return "", false
	}
	return parts.ResolveTarget(source, rel.Target), true
}

func (r *reconciler) style(part string, id int) *model.Style {
	if id == 0 {
		return nil
	}
	if r.styles == nil {
		r.warn.add(part, "style %d used without a styles part", id)
		return nil
	}
	st, ok := r.styles.Style(id)
	if !ok {
		r.warn.add(part, "style %d out of range", id)
		return nil
	}
	if st.IsEmpty() {
		return nil
	}
	return st
}

func (r *reconciler) isDate(id int) bool {
	return id != 0 && r.styles != nil && r.styles.IsDate(id)
}

func (r *reconciler) worksheet(ws *model.Worksheet, part string, raw *parts.Worksheet) error {
	ws.Properties = raw.Properties
	ws.Views = raw.Views
	ws.Merges = raw.Merges
	ws.AutoFilter = raw.AutoFilter
	ws.RowBreaks = raw.RowBreaks
	ws.PageMargins = raw.PageMargins
	for _, c := range raw.Columns {
		col := c.Column
		col.Style = r.style(part, c.StyleID)
		ws.Columns = append(ws.Columns, col)
	}
	r.rows(ws, part, raw)

	rels := r.rels[part]
	if err := r.hyperlinks(ws, part, raw, rels); err != nil {
		return err
	}
	if err := r.validations(ws, part, raw); err != nil {
		return err
	}
	r.images(ws, part, raw, rels)
	r.notes(ws, part, raw, rels)
	for _, id := range raw.TableRelIDs {
		name, ok := r.target(part, rels, id)
		if !ok {
			continue
		}
		t := r.tables[name]
		if t == nil {
			r.warn.add(name, "table part missing")
			continue
		}
		tbl := t.Table
		ws.Tables = append(ws.Tables, &tbl)
	}
	for _, rel := range rels {
		if rel.Type == parts.RelPivotTable {
			r.pivotTable(ws, part, parts.ResolveTarget(part, rel.Target))
		}
	}
	return nil
}

type sharedMaster struct {
	row, col int
	expr     string
}

func (r *reconciler) rows(ws *model.Worksheet, part string, raw *parts.Worksheet) {
	masters := make(map[int]sharedMaster)
	prevRow := 0
	for _, re := range raw.Rows {
		n := re.Number
		if n <= 0 {
			n = prevRow + 1
		}
		prevRow = n
		prevCol := 0
		for _, c := range re.Cells {
			col := prevCol + 1
			if c.Ref != "" {
				if a, err := address.Decode(c.Ref); err == nil {
					col = a.Col
				}
			}
			prevCol = col
			f := c.Formula
			if f == nil || f.Type != "shared" || f.Expr == "" || f.SharedIndex < 0 {
				continue
			}
			if _, dup := masters[f.SharedIndex]; !dup {
				masters[f.SharedIndex] = sharedMaster{row: n, col: col, expr: f.Expr}
			}
		}
	}

	prevRow = 0
	for _, re := range raw.Rows {
		n := re.Number
		if n <= 0 {
			n = prevRow + 1
		}
		prevRow = n
		row := &model.Row{
			Number:       n,
			Height:       re.Height,
			CustomHeight: re.CustomHeight,
			Hidden:       re.Hidden,
			OutlineLevel: re.OutlineLevel,
			Collapsed:    re.Collapsed,
			DyDescent:    re.DyDescent,
			Style:        r.style(part, re.StyleID),
		}
		prevCol := 0
		for _, c := range re.Cells {
			col := prevCol + 1
			if c.Ref != "" {
				a, err := address.Decode(c.Ref)
				if err != nil {
					r.warn.add(part, "cell reference %q invalid", c.Ref)
					continue
				}
				col = a.Col
			}
			prevCol = col
			row.Cells = append(row.Cells, &model.Cell{
				Col:   col,
				Style: r.style(part, c.StyleID),
				Value: r.cellValue(part, c, n, col, masters),
			})
		}
		slices.SortStableFunc(row.Cells, func(a, b *model.Cell) int { return cmp.Compare(a.Col, b.Col) })
		ws.Rows = append(ws.Rows, row)
	}
	slices.SortStableFunc(ws.Rows, func(a, b *model.Row) int { return cmp.Compare(a.Number, b.Number) })
}

func (r *reconciler) cellValue(part string, c parts.CellEntry, row, col int, masters map[int]sharedMaster) model.Value {
	v := r.plainValue(part, c)
	fe := c.Formula
	if fe == nil {
		return v
	}
	f := model.Formula{Expr: fe.Expr, Result: v}
	switch fe.Type {
	case "array":
		f.Array = true
		f.Ref = fe.Ref
	case "shared":
		m, ok := masters[fe.SharedIndex]
		switch {
		case !ok:
			r.warn.add(part, "shared formula %d has no master", fe.SharedIndex)
		case m.row == row && m.col == col:
			f.Ref = fe.Ref
		case fe.Expr == "":
			f.Expr = shiftFormula(m.expr, row-m.row, col-m.col)
			f.SharedWith = address.Encode(m.row, m.col)
		}
	}
	if f.Expr == "" && !f.Array {
		return v
	}
	return f
}

func (r *reconciler) plainValue(part string, c parts.CellEntry) model.Value {
	switch c.Type {
	case parts.CellTypeSharedString:
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || r.sharedStrings == nil || i < 0 || i >= len(r.sharedStrings.Items) {
			r.warn.add(part, "shared string %q not found", c.Value)
			return nil
		}
		return r.sharedStrings.Items[i].Value()
	case parts.CellTypeInlineString:
		if c.Inline != nil {
			return c.Inline.Value()
		}
		return model.String(c.Value)
	case parts.CellTypeFormulaStr:
		return model.String(c.Value)
	case parts.CellTypeBool:
		return model.Bool(c.Value == "1" || strings.EqualFold(c.Value, "true"))
	case parts.CellTypeError:
		return model.ErrorValue(c.Value)
	case parts.CellTypeDate:
		t, err := parseISODate(c.Value)
		if err != nil {
			r.warn.add(part, "date %q invalid", c.Value)
			return model.String(c.Value)
		}
		return model.Date(t)
	}
	if c.Value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
	if err != nil {
		r.warn.add(part, "number %q invalid", c.Value)
		return model.String(c.Value)
	}
	if r.isDate(c.StyleID) {
		return model.Date(parts.SerialToTime(n, r.wb.Date1904))
	}
	return model.Number(n)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04:05.999999999",
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func (r *reconciler) hyperlinks(ws *model.Worksheet, part string, raw *parts.Worksheet, rels parts.Relationships) error {
	for _, h := range raw.Hyperlinks {
		link := &model.Hyperlink{Location: h.Location, Tooltip: h.Tooltip, Display: h.Display}
		if h.RelID != "" {
			if rel, ok := rels.ByID(h.RelID); ok {
				link.Target = rel.Target
			} else {
				r.warn.add(part, "hyperlink relationship %s not found", h.RelID)
			}
		}
		if link.Target == "" && link.Location == "" {
			continue
		}
		rng, err := address.ParseRange(h.Ref)
		if err != nil {
			r.warn.add(part, "hyperlink reference %q invalid", h.Ref)
			continue
		}
		if !r.budget.spend(rng.Count()) {
			return r.budgetError(part, h.Ref)
		}
		rng.Each(func(row, col int) { ws.Row(row).Cell(col).Hyperlink = link })
	}
	return nil
}

func (r *reconciler) validations(ws *model.Worksheet, part string, raw *parts.Worksheet) error {
	for _, dv := range raw.DataValidations {
		rule := dv.Rule
		for _, ref := range strings.Fields(dv.Sqref) {
			rng, err := address.ParseRange(ref)
			if err != nil {
				r.warn.add(part, "data validation range %q invalid", ref)
				continue
			}
			if !r.budget.spend(rng.Count()) {
				return r.budgetError(part, ref)
			}
			if ws.DataValidations == nil {
				ws.DataValidations = make(map[string]*model.DataValidation)
			}
			rng.Each(func(row, col int) { ws.DataValidations[address.Encode(row, col)] = &rule })
		}
	}
	return nil
}

func (r *reconciler) budgetError(part, ref string) error {
	return &PartError{Part: part, Err: fmt.Errorf("%w: range %s expands past %d cells", ErrLimitExceeded, ref, r.budget.limit)}
}

func (r *reconciler) images(ws *model.Worksheet, part string, raw *parts.Worksheet, rels parts.Relationships) {
	if raw.DrawingRelID == "" {
		return
	}
	name, ok := r.target(part, rels, raw.DrawingRelID)
	if !ok {
		return
	}
	d := r.drawings[name]
	if d == nil {
		r.warn.add(name, "drawing part missing")
		return
	}
	for _, id := range parts.NewDrawingXform().Reconcile(d, parts.DrawingSiblings{Part: name, Rels: r.rels[name]}) {
		r.warn.add(name, "relationship %s not found", id)
	}
	for _, an := range d.Anchors {
		if an.Picture.Media == "" {
			continue
		}
		idx, ok := r.media[an.Picture.Media]
		if !ok {
			r.warn.add(name, "media %s missing", an.Picture.Media)
			continue
		}
		img := model.Image{
			Media:     idx,
			Name:      an.Picture.Name,
			From:      an.From,
			To:        an.To,
			Extent:    an.Extent,
			EditAs:    an.EditAs,
			Tooltip:   an.Picture.Tooltip,
			Hyperlink: an.Picture.Link,
		}
		ws.Images = append(ws.Images, img)
	}
}

func (r *reconciler) notes(ws *model.Worksheet, part string, raw *parts.Worksheet, rels parts.Relationships) {
	rel, ok := rels.ByType(parts.RelComments)
	if !ok {
		return
	}
	name := parts.ResolveTarget(part, rel.Target)
	cs := r.comments[name]
	if cs == nil {
		r.warn.add(name, "comments part missing")
		return
	}
	visible := make(map[[2]int]bool)
	if raw.LegacyDrawingID != "" {
		if vname, ok := r.target(part, rels, raw.LegacyDrawingID); ok {
			if v := r.vml[vname]; v != nil {
				for _, n := range v.Notes {
					visible[[2]int{n.Row, n.Col}] = n.Visible
				}
			}
		}
	}
	for _, it := range cs.Items {
		a, err := address.Decode(it.Ref)
		if err != nil {
			r.warn.add(name, "comment reference %q invalid", it.Ref)
			continue
		}
		if it.AuthorID < 0 || it.AuthorID >= len(cs.Authors) {
			r.warn.add(name, "comment author %d not found", it.AuthorID)
		}
		texts := it.Text.Runs
		if texts == nil {
			texts = model.RichText{{Text: it.Text.Text}}
		}
		ws.Row(a.Row).Cell(a.Col).Note = &model.Note{
			Author:  cs.Author(it),
			Texts:   texts,
			Visible: visible[[2]int{a.Row, a.Col}],
		}
	}
}
