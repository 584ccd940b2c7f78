package xlsxio

import (
	"cmp"
	"fmt"
	"maps"
	"mime"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/cellmatrix"
	"github.com/logicossoftware/go-xlsxio/internal/intern"
	"github.com/logicossoftware/go-xlsxio/internal/parts"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// outPart is one archive entry of the written package. Parts of stage 1
// are rendered only after every stage 0 part has been rendered.
type outPart struct {
	name        string
	contentType string // override; empty when an extension default applies
	stage       int
	render      func() ([]byte, error)
	data        []byte
}

func xmlPart[M any](name, contentType string, x xform.Xform[M], m M) *outPart {
	if p, ok := x.(xform.Preparer[M]); ok {
		p.Prepare(&m)
	}
	return &outPart{name: name, contentType: contentType, render: func() ([]byte, error) { return parts.Render(x, m) }}
}

func rawPart(name, contentType string, data []byte) *outPart {
	return &outPart{name: name, contentType: contentType, render: func() ([]byte, error) { return data, nil }}
}

func relsOut(source string, rels parts.Relationships) *outPart {
	return xmlPart(parts.RelsPath(source), "", parts.NewRelationshipsXform(), []parts.Relationship(rels))
}

var mediaTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"svg":  "image/svg+xml",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

func mediaType(ext string) string {
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// encoder turns a model into the parts of a package. prepare runs on one
// goroutine; the render closures it collects may run concurrently.
type encoder struct {
	cfg    writeConfig
	wb     *model.Workbook
	budget *cellBudget

	sst    *intern.SharedStrings[parts.SharedString]
	styles parts.Styler
	reg    *parts.StyleRegistry

	workbook parts.Workbook
	wbRels   parts.Relationships
	ct       parts.ContentTypes
	media    []string // archive file name of every media entry

	sheets   []*outPart
	drawings []*outPart
	tables   []*outPart
	pivots   []*outPart
	drawingN int
	tableN   int
	notesN   int
}

func newEncoder(wb *model.Workbook, cfg writeConfig) *encoder {
	e := &encoder{cfg: cfg, wb: wb, budget: newCellBudget(cfg.limits.MaxExpandedCells), styles: parts.NullStyles{}}
	if cfg.sharedStrings {
		e.sst = parts.NewSharedStringsTable()
	}
	if cfg.styles {
		e.reg = parts.NewStyleRegistry()
		e.styles = e.reg
	}
	return e
}

// prepare assigns part names, relationship ids, shared-string indices and
// style ids, and returns the parts in archive order.
func (e *encoder) prepare() ([]*outPart, error) {
	wb := e.wb
	e.ct.AddDefault("rels", parts.CTRelationships)
	e.ct.AddDefault("xml", parts.CTXML)

	var media []*outPart
	for _, m := range wb.Media {
		ext := strings.ToLower(m.Extension)
		file := m.Name + "." + ext
		e.media = append(e.media, file)
		e.ct.AddDefault(ext, mediaType(ext))
		media = append(media, rawPart("xl/media/"+file, "", m.Data))
	}

	e.workbook = parts.Workbook{Date1904: wb.Date1904, FullCalcOnLoad: wb.FullCalcOnLoad, Views: wb.Views}
	if len(e.workbook.Views) == 0 {
		e.workbook.Views = []model.WorkbookView{{Width: 28800, Height: 12300}}
	}
	used := make(map[int]bool)
	next := 1
	for _, ws := range wb.Worksheets {
		next = max(next, ws.ID+1)
	}
	for i, ws := range wb.Worksheets {
		id := ws.ID
		if id <= 0 || used[id] {
			id = next
			next++
		}
		used[id] = true
		n := i + 1
		relID := e.wbRels.Add(parts.RelWorksheet, fmt.Sprintf("worksheets/sheet%d.xml", n), "")
		state := ws.State
		if state == model.SheetVisible {
			state = ""
		}
		e.workbook.Sheets = append(e.workbook.Sheets, parts.SheetEntry{Name: ws.Name, SheetID: id, RelID: relID, State: state})
		if err := e.prepareSheet(n, ws); err != nil {
			return nil, err
		}
	}
	for k, p := range wb.PivotTables {
		if err := e.preparePivot(k, p); err != nil {
			return nil, err
		}
	}
	for _, dn := range wb.DefinedNames {
		entry := parts.DefinedNameEntry{Name: dn.Name, Text: dn.Formula, LocalSheetID: dn.LocalSheetID, Hidden: dn.Hidden, Comment: dn.Comment}
		if len(dn.Ranges) > 0 {
			text, err := compactRanges(dn.Ranges, e.budget)
			if err != nil {
				return nil, fmt.Errorf("defined name %q: %w", dn.Name, err)
			}
			entry.Text = text
		}
		e.workbook.DefinedNames = append(e.workbook.DefinedNames, entry)
	}

	var themes []*outPart
	names := make([]string, 0, len(wb.Themes))
	for name := range wb.Themes {
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) == 0 {
		names = []string{"theme1"}
	}
	for _, name := range names {
		data, ok := wb.Themes[name]
		if !ok {
			data = parts.DefaultTheme
		}
		e.wbRels.Add(parts.RelTheme, "theme/"+name+".xml", "")
		themes = append(themes, rawPart("xl/theme/"+name+".xml", parts.CTTheme, []byte(data)))
	}

	var styles []*outPart
	if e.reg != nil {
		e.wbRels.Add(parts.RelStyles, "styles.xml", "")
		styles = append(styles, xmlPart("xl/styles.xml", parts.CTStyles, parts.NewStylesXform(), e.reg.Model()))
	}

	var sst []*outPart
	if e.sst != nil && e.sst.Count() > 0 {
		e.wbRels.Add(parts.RelSharedStrings, "sharedStrings.xml", "")
		table := e.sst
		p := &outPart{name: "xl/sharedStrings.xml", contentType: parts.CTSharedStrings, stage: 1}
		p.render = func() ([]byte, error) {
			return parts.Render(parts.NewSharedStringsXform(), parts.SharedStrings{Count: table.TotalRefs(), Items: table.Values()})
		}
		sst = append(sst, p)
	}

	app := parts.AppProperties{Application: wb.Application, Company: wb.Company, Manager: wb.Manager}
	for _, ws := range wb.Worksheets {
		app.SheetNames = append(app.SheetNames, ws.Name)
	}
	core := parts.CoreProperties{
		Creator: wb.Creator, Title: wb.Title, Subject: wb.Subject, Description: wb.Description,
		Keywords: wb.Keywords, Category: wb.Category, LastModifiedBy: wb.LastModifiedBy,
		Language: wb.Language, Revision: wb.Revision, ContentStatus: wb.ContentStatus,
		Created: wb.Created, Modified: wb.Modified, LastPrinted: wb.LastPrinted,
	}
	tail := []*outPart{
		xmlPart("docProps/app.xml", parts.CTExtendedProps, parts.NewAppXform(), app),
		xmlPart("docProps/core.xml", parts.CTCoreProperties, parts.NewCoreXform(), core),
		xmlPart("xl/workbook.xml", parts.CTWorkbook, parts.NewWorkbookXform(), e.workbook),
	}

	var pkgRels parts.Relationships
	pkgRels.Add(parts.RelOfficeDocument, "xl/workbook.xml", "")
	pkgRels.Add(parts.RelCoreProperties, "docProps/core.xml", "")
	pkgRels.Add(parts.RelExtendedProperties, "docProps/app.xml", "")

	body := slices.Concat(e.sheets, sst, e.drawings, e.tables, e.pivots, themes, styles, media, tail)
	for _, p := range body {
		if p.contentType != "" {
			e.ct.AddOverride(p.name, p.contentType)
		}
	}
	head := []*outPart{
		xmlPart("[Content_Types].xml", "", parts.NewContentTypesXform(), e.ct),
		xmlPart("_rels/.rels", "", parts.NewRelationshipsXform(), []parts.Relationship(pkgRels)),
		relsOut("xl/workbook.xml", e.wbRels),
	}
	return slices.Concat(head, body), nil
}

type noteAt struct {
	row, col int
	note     *model.Note
}

func (e *encoder) prepareSheet(n int, ws *model.Worksheet) error {
	name := fmt.Sprintf("xl/worksheets/sheet%d.xml", n)
	var rels parts.Relationships
	raw := parts.Worksheet{
		Properties:  ws.Properties,
		Views:       ws.Views,
		Merges:      ws.Merges,
		AutoFilter:  ws.AutoFilter,
		RowBreaks:   ws.RowBreaks,
		PageMargins: ws.PageMargins,
	}
	if dim, ok := ws.Dimensions(); ok {
		raw.Dimension = dim.String()
	}
	for _, c := range ws.Columns {
		id, _ := e.styles.Add(c.Style)
		raw.Columns = append(raw.Columns, parts.ColumnEntry{Column: c, StyleID: id})
	}

	rows := slices.Clone(ws.Rows)
	slices.SortStableFunc(rows, func(a, b *model.Row) int { return cmp.Compare(a.Number, b.Number) })

	masters := make(map[string]int)
	for _, row := range rows {
		for _, c := range row.Cells {
			if f, ok := c.Value.(model.Formula); ok && f.Ref != "" && !f.Array && f.SharedWith == "" {
				masters[address.Encode(row.Number, c.Col)] = len(masters)
			}
		}
	}

	links := cellmatrix.New[*model.Hyperlink]()
	var notes []noteAt
	for _, row := range rows {
		re := parts.RowEntry{
			Number:       row.Number,
			Height:       row.Height,
			CustomHeight: row.CustomHeight,
			Hidden:       row.Hidden,
			OutlineLevel: row.OutlineLevel,
			Collapsed:    row.Collapsed,
			DyDescent:    row.DyDescent,
		}
		re.StyleID, _ = e.styles.Add(row.Style)
		cells := slices.Clone(row.Cells)
		slices.SortStableFunc(cells, func(a, b *model.Cell) int { return cmp.Compare(a.Col, b.Col) })
		for _, c := range cells {
			if ce, ok := e.cellEntry(row.Number, c, masters); ok {
				re.Cells = append(re.Cells, ce)
			}
			if c.Hyperlink != nil {
				links.Add("", row.Number, c.Col, c.Hyperlink)
			}
			if c.Note != nil {
				notes = append(notes, noteAt{row: row.Number, col: c.Col, note: c.Note})
			}
		}
		if len(re.Cells) == 0 && re.StyleID == 0 && re.Height == 0 && !re.Hidden && re.OutlineLevel == 0 {
			continue
		}
		raw.Rows = append(raw.Rows, re)
	}

	for _, rng := range links.Merge(func(a, b *model.Hyperlink) bool { return a == b }) {
		h := links.Find("", rng.Top, rng.Left).Value
		entry := parts.HyperlinkEntry{Ref: rng.String(), Location: h.Location, Tooltip: h.Tooltip, Display: h.Display}
		if h.Target != "" {
			entry.RelID = rels.Add(parts.RelHyperlink, h.Target, "External")
		}
		raw.Hyperlinks = append(raw.Hyperlinks, entry)
	}
	if err := e.prepareValidations(&raw, ws); err != nil {
		return err
	}

	var satellites []*outPart
	if len(ws.Images) > 0 {
		satellites = append(satellites, e.prepareDrawing(&raw, &rels, ws)...)
	}
	if len(notes) > 0 {
		satellites = append(satellites, e.prepareNotes(n, &raw, &rels, notes)...)
	}
	for _, t := range ws.Tables {
		e.tableN++
		raw.TableRelIDs = append(raw.TableRelIDs, rels.Add(parts.RelTable, fmt.Sprintf("../tables/table%d.xml", e.tableN), ""))
		tbl := *t
		if tbl.DisplayName == "" {
			tbl.DisplayName = tbl.Name
		}
		e.tables = append(e.tables, xmlPart(fmt.Sprintf("xl/tables/table%d.xml", e.tableN), parts.CTTable,
			parts.NewTableXform(), parts.TableEntry{ID: e.tableN, Table: tbl}))
	}
	for k, p := range e.wb.PivotTables {
		if p.Sheet == ws.Name {
			rels.Add(parts.RelPivotTable, fmt.Sprintf("../pivotTables/pivotTable%d.xml", k+1), "")
		}
	}

	e.sheets = append(e.sheets, xmlPart(name, parts.CTWorksheet, parts.NewWorksheetXform(parts.WorksheetOptions{}), raw))
	if len(rels) > 0 {
		e.sheets = append(e.sheets, relsOut(name, rels))
	}
	e.sheets = append(e.sheets, satellites...)
	return nil
}

// withNumFmt returns a copy of s using format code.
func withNumFmt(s *model.Style, code string) *model.Style {
	var c model.Style
	if s != nil {
		c = *s
	}
	c.NumFmt = code
	return &c
}

func isDateValue(v model.Value) bool {
	switch v := v.(type) {
	case model.Date:
		return true
	case model.Formula:
		return isDateValue(v.Result)
	}
	return false
}

// cellEntry converts one cell. ok is false for cells that carry neither a
// value nor a style.
func (e *encoder) cellEntry(row int, c *model.Cell, masters map[string]int) (parts.CellEntry, bool) {
	ref := address.Encode(row, c.Col)
	ce := parts.CellEntry{Ref: ref}
	style := c.Style
	if isDateValue(c.Value) && (style == nil || style.NumFmt == "") {
		style = withNumFmt(style, parts.DefaultDateFormat)
	}
	ce.StyleID, _ = e.styles.Add(style)

	v := c.Value
	if f, ok := v.(model.Formula); ok {
		fe := &parts.FormulaEntry{Expr: f.Expr, SharedIndex: -1}
		switch {
		case f.Array:
			fe.Type = "array"
			fe.Ref = f.Ref
			if fe.Ref == "" {
				fe.Ref = ref
			}
		case f.SharedWith != "":
			if si, ok := masters[strings.ReplaceAll(f.SharedWith, "$", "")]; ok {
				fe.Type = "shared"
				fe.SharedIndex = si
				fe.Expr = ""
			}
		case f.Ref != "":
			fe.Type = "shared"
			fe.Ref = f.Ref
			fe.SharedIndex = masters[ref]
		}
		ce.Formula = fe
		v = f.Result
		switch r := v.(type) {
		case model.String:
			ce.Type = parts.CellTypeFormulaStr
			ce.Value = string(r)
			return ce, true
		case model.RichText:
			ce.Type = parts.CellTypeFormulaStr
			ce.Value = r.Text()
			return ce, true
		}
	}

	switch v := v.(type) {
	case nil:
		if ce.Formula == nil && ce.StyleID == 0 {
			return ce, false
		}
	case model.Number:
		ce.Value = xmlstream.FormatFloat(float64(v))
	case model.Date:
		ce.Value = xmlstream.FormatFloat(parts.TimeToSerial(time.Time(v), e.wb.Date1904))
	case model.Bool:
		ce.Type = parts.CellTypeBool
		ce.Value = "0"
		if v {
			ce.Value = "1"
		}
	case model.ErrorValue:
		ce.Type = parts.CellTypeError
		ce.Value = string(v)
	case model.String:
		e.text(&ce, parts.SharedString{Text: string(v)})
	case model.RichText:
		e.text(&ce, parts.SharedString{Text: v.Text(), Runs: v})
	}
	return ce, true
}

func (e *encoder) text(ce *parts.CellEntry, s parts.SharedString) {
	if e.sst == nil {
		ce.Type = parts.CellTypeInlineString
		ce.Inline = &s
		return
	}
	ce.Type = parts.CellTypeSharedString
	ce.Value = strconv.Itoa(e.sst.Add(s.Key(), s))
}

func sameRule(a, b *model.DataValidation) bool {
	return a == b || reflect.DeepEqual(*a, *b)
}

// prepareValidations merges cells that carry equal rules into rectangles
// and lists every rectangle of one rule in a single sqref. Keys may be
// single cells or ranges; where keys overlap the first key in sorted order
// wins.
func (e *encoder) prepareValidations(raw *parts.Worksheet, ws *model.Worksheet) error {
	if len(ws.DataValidations) == 0 {
		return nil
	}
	m := cellmatrix.New[*model.DataValidation]()
	for _, ref := range slices.Sorted(maps.Keys(ws.DataValidations)) {
		dv := ws.DataValidations[ref]
		if dv == nil {
			continue
		}
		rng, err := address.ParseRange(ref)
		if err == nil && rng.Sheet != "" {
			err = address.ErrInvalid
		}
		if err != nil {
			return fmt.Errorf("%w: sheet %q: data validation address %q: %w", ErrValidation, ws.Name, ref, err)
		}
		if !e.budget.spend(rng.Count()) {
			return fmt.Errorf("%w: sheet %q: data validation range %s expands past %d cells", ErrLimitExceeded, ws.Name, ref, e.budget.limit)
		}
		m.AddRange(rng, dv)
	}
	for _, rng := range m.Merge(sameRule) {
		dv := m.Find("", rng.Top, rng.Left).Value
		i := slices.IndexFunc(raw.DataValidations, func(d parts.DataValidationEntry) bool {
			return reflect.DeepEqual(d.Rule, *dv)
		})
		if i < 0 {
			raw.DataValidations = append(raw.DataValidations, parts.DataValidationEntry{Sqref: rng.String(), Rule: *dv})
			continue
		}
		raw.DataValidations[i].Sqref += " " + rng.String()
	}
	return nil
}

func (e *encoder) prepareDrawing(raw *parts.Worksheet, rels *parts.Relationships, ws *model.Worksheet) []*outPart {
	e.drawingN++
	name := fmt.Sprintf("xl/drawings/drawing%d.xml", e.drawingN)
	raw.DrawingRelID = rels.Add(parts.RelDrawing, fmt.Sprintf("../drawings/drawing%d.xml", e.drawingN), "")
	var drels parts.Relationships
	embed := make(map[int]string)
	var d parts.Drawing
	for i, img := range ws.Images {
		id, ok := embed[img.Media]
		if !ok {
			id = drels.Add(parts.RelImage, "../media/"+e.media[img.Media], "")
			embed[img.Media] = id
		}
		pic := parts.Picture{ID: i + 2, Name: img.Name, EmbedID: id, Tooltip: img.Tooltip}
		if pic.Name == "" {
			pic.Name = fmt.Sprintf("Picture %d", i+1)
		}
		if img.Hyperlink != "" {
			mode := "External"
			if strings.HasPrefix(img.Hyperlink, "#") {
				mode = ""
			}
			pic.LinkRelID = drels.Add(parts.RelHyperlink, img.Hyperlink, mode)
		}
		d.Anchors = append(d.Anchors, parts.DrawingAnchor{EditAs: img.EditAs, From: img.From, To: img.To, Extent: img.Extent, Picture: pic})
	}
	return []*outPart{
		xmlPart(name, parts.CTDrawing, parts.NewDrawingXform(), d),
		relsOut(name, drels),
	}
}

// prepareNotes writes the comments part and the legacy drawing that
// positions the note boxes.
func (e *encoder) prepareNotes(sheet int, raw *parts.Worksheet, rels *parts.Relationships, notes []noteAt) []*outPart {
	e.notesN++
	k := e.notesN
	rels.Add(parts.RelComments, fmt.Sprintf("../comments%d.xml", k), "")
	raw.LegacyDrawingID = rels.Add(parts.RelVMLDrawing, fmt.Sprintf("../drawings/vmlDrawing%d.vml", k), "")
	e.ct.AddDefault("vml", parts.CTVML)

	var cs parts.Comments
	var vml parts.VMLDrawing
	authors := make(map[string]int)
	for _, n := range notes {
		id, ok := authors[n.note.Author]
		if !ok {
			id = len(cs.Authors)
			authors[n.note.Author] = id
			cs.Authors = append(cs.Authors, n.note.Author)
		}
		text := parts.SharedString{Text: n.note.Texts.Text()}
		if slices.ContainsFunc(n.note.Texts, func(r model.RichTextRun) bool { return r.Font != nil }) {
			text.Runs = n.note.Texts
		}
		cs.Items = append(cs.Items, parts.CommentEntry{Ref: address.Encode(n.row, n.col), AuthorID: id, Text: text})
		vml.Notes = append(vml.Notes, parts.VMLNote{Row: n.row, Col: n.col, Visible: n.note.Visible})
	}
	return []*outPart{
		xmlPart(fmt.Sprintf("xl/comments%d.xml", k), parts.CTComments, parts.NewCommentsXform(), cs),
		xmlPart(fmt.Sprintf("xl/drawings/vmlDrawing%d.vml", k), "", parts.NewVMLXform(sheet), vml),
	}
}
