package parts

import (
	"strconv"
	"time"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// CoreProperties is the raw docProps/core.xml model.
type CoreProperties struct {
	Creator        string
	Title          string
	Subject        string
	Description    string
	Keywords       string
	Category       string
	LastModifiedBy string
	Language       string
	Revision       int
	ContentStatus  string
	Created        time.Time
	Modified       time.Time
	LastPrinted    time.Time
}

// CoreXform parses and renders the core properties part.
type CoreXform struct {
	xform.Composite[CoreProperties]
}

// NewCoreXform returns the transform for docProps/core.xml.
func NewCoreXform() *CoreXform {
	text := func(tag string, set func(*CoreProperties, string)) xform.Child[CoreProperties] {
		return xform.Bind(xform.String(tag, ""), nil, set)
	}
	date := func(tag string, set func(*CoreProperties, time.Time)) xform.Child[CoreProperties] {
		return xform.Bind(xform.Time(tag), nil, set)
	}
	x := &CoreXform{}
	x.Composite = xform.Composite[CoreProperties]{
		Tag: "coreProperties",
		Children: map[string]xform.Child[CoreProperties]{
			"creator":        text("creator", func(c *CoreProperties, v string) { c.Creator = v }),
			"title":          text("title", func(c *CoreProperties, v string) { c.Title = v }),
			"subject":        text("subject", func(c *CoreProperties, v string) { c.Subject = v }),
			"description":    text("description", func(c *CoreProperties, v string) { c.Description = v }),
			"keywords":       text("keywords", func(c *CoreProperties, v string) { c.Keywords = v }),
			"category":       text("category", func(c *CoreProperties, v string) { c.Category = v }),
			"lastModifiedBy": text("lastModifiedBy", func(c *CoreProperties, v string) { c.LastModifiedBy = v }),
			"language":       text("language", func(c *CoreProperties, v string) { c.Language = v }),
			"contentStatus":  text("contentStatus", func(c *CoreProperties, v string) { c.ContentStatus = v }),
			"revision": xform.Bind(xform.Int("revision", ""), nil,
				func(c *CoreProperties, v int) { c.Revision = v }),
			"created":     date("created", func(c *CoreProperties, t time.Time) { c.Created = t }),
			"modified":    date("modified", func(c *CoreProperties, t time.Time) { c.Modified = t }),
			"lastPrinted": date("lastPrinted", func(c *CoreProperties, t time.Time) { c.LastPrinted = t }),
		},
	}
	return x
}

// Render writes docProps/core.xml. Element names carry their Dublin Core
// prefixes so they cannot be rendered by the parsing leaves.
func (x *CoreXform) Render(w *xmlstream.Writer, c CoreProperties) {
	w.OpenNode("cp:coreProperties",
		xmlstream.A("xmlns:cp", NSCoreProps),
		xmlstream.A("xmlns:dc", "http://purl.org/dc/elements/1.1/"),
		xmlstream.A("xmlns:dcterms", "http://purl.org/dc/terms/"),
		xmlstream.A("xmlns:dcmitype", "http://purl.org/dc/dcmitype/"),
		xmlstream.A("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance"),
	)
	leaf := func(tag, v string) {
		if v != "" {
			w.LeafNode(tag, nil, v)
		}
	}
	date := func(tag string, t time.Time) {
		if !t.IsZero() {
			w.LeafNode(tag, []xmlstream.Attr{xmlstream.A("xsi:type", "dcterms:W3CDTF")}, t.UTC().Format("2006-01-02T15:04:05Z"))
		}
	}
	leaf("dc:creator", c.Creator)
	leaf("dc:title", c.Title)
	leaf("dc:subject", c.Subject)
	leaf("dc:description", c.Description)
	leaf("cp:keywords", c.Keywords)
	leaf("cp:category", c.Category)
	leaf("cp:lastModifiedBy", c.LastModifiedBy)
	if !c.LastPrinted.IsZero() {
		w.LeafNode("cp:lastPrinted", nil, c.LastPrinted.UTC().Format("2006-01-02T15:04:05Z"))
	}
	leaf("dc:language", c.Language)
	if c.Revision > 0 {
		w.LeafNode("cp:revision", nil, strconv.Itoa(c.Revision))
	}
	leaf("cp:contentStatus", c.ContentStatus)
	date("dcterms:created", c.Created)
	date("dcterms:modified", c.Modified)
	w.CloseNode()
}

// AppProperties is the raw docProps/app.xml model.
type AppProperties struct {
	Application string
	Company     string
	Manager     string
	SheetNames  []string
}

// AppXform parses and renders the extended properties part.
type AppXform struct {
	xform.Composite[AppProperties]
}

// NewAppXform returns the transform for docProps/app.xml. Titles of parts
// are derived from the sheets on render and not read back.
func NewAppXform() *AppXform {
	x := &AppXform{}
	x.Composite = xform.Composite[AppProperties]{
		Tag: "Properties",
		Children: map[string]xform.Child[AppProperties]{
			"Application": xform.Bind(xform.String("Application", ""), nil, func(a *AppProperties, v string) { a.Application = v }),
			"Company":     xform.Bind(xform.String("Company", ""), nil, func(a *AppProperties, v string) { a.Company = v }),
			"Manager":     xform.Bind(xform.String("Manager", ""), nil, func(a *AppProperties, v string) { a.Manager = v }),
		},
	}
	return x
}

// Render writes docProps/app.xml.
func (x *AppXform) Render(w *xmlstream.Writer, a AppProperties) {
	app := a.Application
	if app == "" {
		app = "Microsoft Excel"
	}
	w.OpenNode("Properties", xmlstream.A("xmlns", NSExtendedProps), xmlstream.A("xmlns:vt", NSDocPropsVT))
	w.LeafNode("Application", nil, app)
	w.LeafNode("DocSecurity", nil, "0")
	w.LeafNode("ScaleCrop", nil, "false")

	w.OpenNode("HeadingPairs")
	w.OpenNode("vt:vector", xmlstream.Int("size", 2), xmlstream.A("baseType", "variant"))
	w.OpenNode("vt:variant")
	w.LeafNode("vt:lpstr", nil, "Worksheets")
	w.CloseNode()
	w.OpenNode("vt:variant")
	w.LeafNode("vt:i4", nil, strconv.Itoa(len(a.SheetNames)))
	w.CloseNode()
	w.CloseNode()
	w.CloseNode()

	w.OpenNode("TitlesOfParts")
	w.OpenNode("vt:vector", xmlstream.Int("size", len(a.SheetNames)), xmlstream.A("baseType", "lpstr"))
	for _, name := range a.SheetNames {
		w.LeafNode("vt:lpstr", nil, name)
	}
	w.CloseNode()
	w.CloseNode()

	if a.Manager != "" {
		w.LeafNode("Manager", nil, a.Manager)
	}
	w.LeafNode("Company", nil, a.Company)
	w.LeafNode("LinksUpToDate", nil, "false")
	w.LeafNode("SharedDoc", nil, "false")
	w.LeafNode("HyperlinksChanged", nil, "false")
	w.LeafNode("AppVersion", nil, "16.0300")
	w.CloseNode()
}
