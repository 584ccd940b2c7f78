package xlsxio

import (
	"path"
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/parts"
)

// part is the parsed form of one archive entry. absorb files it under its
// part name; it runs on one goroutine, in archive order.
type part interface {
	absorb(a *aggregate, name string)
}

type (
	relsPart          parts.Relationships
	workbookPart      parts.Workbook
	worksheetPart     parts.Worksheet
	sharedStringsPart parts.SharedStrings
	stylesPart        parts.Styles
	corePart          parts.CoreProperties
	appPart           parts.AppProperties
	mediaPart         []byte
	themePart         []byte
	drawingPart       parts.Drawing
	vmlPart           parts.VMLDrawing
	commentsPart      parts.Comments
	tablePart         parts.TableEntry
	pivotTablePart    parts.PivotTableDef
	pivotCachePart    parts.PivotCache
)

type mediaEntry struct {
	part string
	data []byte
}

// aggregate collects the raw parts of one package before reconciliation.
// Everything is keyed by part name.
type aggregate struct {
	workbookPart string

	workbook      *parts.Workbook
	rels          map[string]parts.Relationships
	worksheets    map[string]*parts.Worksheet
	sharedStrings *parts.SharedStrings
	styles        *parts.Styles
	core          *parts.CoreProperties
	app           *parts.AppProperties
	media         []mediaEntry
	themes        map[string]string
	drawings      map[string]*parts.Drawing
	vml           map[string]*parts.VMLDrawing
	comments      map[string]*parts.Comments
	tables        map[string]*parts.TableEntry
	pivotTables   map[string]*parts.PivotTableDef
	pivotCaches   map[string]*parts.PivotCache

	warn warnings
}

func newAggregate() *aggregate {
	return &aggregate{
		workbookPart: "xl/workbook.xml",
		rels:         make(map[string]parts.Relationships),
		worksheets:   make(map[string]*parts.Worksheet),
		themes:       make(map[string]string),
		drawings:     make(map[string]*parts.Drawing),
		vml:          make(map[string]*parts.VMLDrawing),
		comments:     make(map[string]*parts.Comments),
		tables:       make(map[string]*parts.TableEntry),
		pivotTables:  make(map[string]*parts.PivotTableDef),
		pivotCaches:  make(map[string]*parts.PivotCache),
	}
}

// relsSource returns the part a .rels entry describes,
// e.g. "xl/worksheets/_rels/sheet1.xml.rels" → "xl/worksheets/sheet1.xml".
// The package relationships map to "".
func relsSource(name string) string {
	dir, file := path.Split(name)
	return strings.TrimSuffix(dir, "_rels/") + strings.TrimSuffix(file, ".rels")
}

func (p relsPart) absorb(a *aggregate, name string) {
	a.rels[relsSource(name)] = parts.Relationships(p)
}

func (p workbookPart) absorb(a *aggregate, _ string) {
	wb := parts.Workbook(p)
	a.workbook = &wb
}

func (p worksheetPart) absorb(a *aggregate, name string) {
	ws := parts.Worksheet(p)
	a.worksheets[name] = &ws
}

func (p sharedStringsPart) absorb(a *aggregate, _ string) {
	sst := parts.SharedStrings(p)
	a.sharedStrings = &sst
}

func (p stylesPart) absorb(a *aggregate, _ string) {
	st := parts.Styles(p)
	a.styles = &st
}

func (p corePart) absorb(a *aggregate, _ string) {
	c := parts.CoreProperties(p)
	a.core = &c
}

func (p appPart) absorb(a *aggregate, _ string) {
	app := parts.AppProperties(p)
	a.app = &app
}

func (p mediaPart) absorb(a *aggregate, name string) {
	a.media = append(a.media, mediaEntry{part: name, data: p})
}

func (p themePart) absorb(a *aggregate, name string) {
	a.themes[strings.TrimSuffix(path.Base(name), ".xml")] = string(p)
}

func (p drawingPart) absorb(a *aggregate, name string) {
	d := parts.Drawing(p)
	a.drawings[name] = &d
}

func (p vmlPart) absorb(a *aggregate, name string) {
	v := parts.VMLDrawing(p)
	a.vml[name] = &v
}

func (p commentsPart) absorb(a *aggregate, name string) {
	c := parts.Comments(p)
	a.comments[name] = &c
}

func (p tablePart) absorb(a *aggregate, name string) {
	t := parts.TableEntry(p)
	a.tables[name] = &t
}

func (p pivotTablePart) absorb(a *aggregate, name string) {
	pt := parts.PivotTableDef(p)
	a.pivotTables[name] = &pt
}

func (p pivotCachePart) absorb(a *aggregate, name string) {
	pc := parts.PivotCache(p)
	a.pivotCaches[name] = &pc
}
