package parts

import (
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// ContentTypes is the [Content_Types].xml part.
type ContentTypes struct {
	Defaults  []ContentDefault
	Overrides []ContentOverride
}

// ContentDefault maps a file extension to a content type.
type ContentDefault struct {
	Extension, ContentType string
}

// ContentOverride maps one part name to a content type.
type ContentOverride struct {
	PartName, ContentType string
}

// AddDefault registers ext unless it is already known.
func (ct *ContentTypes) AddDefault(ext, contentType string) {
	for _, d := range ct.Defaults {
		if d.Extension == ext {
			return
		}
	}
	ct.Defaults = append(ct.Defaults, ContentDefault{Extension: ext, ContentType: contentType})
}

// AddOverride registers a part name; partName has no leading slash.
func (ct *ContentTypes) AddOverride(partName, contentType string) {
	ct.Overrides = append(ct.Overrides, ContentOverride{PartName: "/" + partName, ContentType: contentType})
}

// NewContentTypesXform returns the transform for [Content_Types].xml.
func NewContentTypesXform() *xform.Composite[ContentTypes] {
	def := &xform.Element[ContentDefault]{
		Tag: "Default",
		Decode: func(n xform.Node) ContentDefault {
			return ContentDefault{Extension: n.Attr("Extension"), ContentType: n.Attr("ContentType")}
		},
		Encode: func(d ContentDefault) ([]xmlstream.Attr, string, bool) {
			return []xmlstream.Attr{xmlstream.A("Extension", d.Extension), xmlstream.A("ContentType", d.ContentType)}, "", true
		},
	}
	over := &xform.Element[ContentOverride]{
		Tag: "Override",
		Decode: func(n xform.Node) ContentOverride {
			return ContentOverride{PartName: n.Attr("PartName"), ContentType: n.Attr("ContentType")}
		},
		Encode: func(o ContentOverride) ([]xmlstream.Attr, string, bool) {
			return []xmlstream.Attr{xmlstream.A("PartName", o.PartName), xmlstream.A("ContentType", o.ContentType)}, "", true
		},
	}
	return &xform.Composite[ContentTypes]{
		Tag: "Types",
		Attrs: func(ContentTypes) []xmlstream.Attr {
			return []xmlstream.Attr{xmlstream.A("xmlns", NSContentTypes)}
		},
		Children: map[string]xform.Child[ContentTypes]{
			"Default": xform.BindEach(def, func(ct ContentTypes) []ContentDefault { return ct.Defaults },
				func(ct *ContentTypes, d ContentDefault) { ct.Defaults = append(ct.Defaults, d) }),
			"Override": xform.BindEach(over, func(ct ContentTypes) []ContentOverride { return ct.Overrides },
				func(ct *ContentTypes, o ContentOverride) { ct.Overrides = append(ct.Overrides, o) }),
		},
		Order: []string{"Default", "Override"},
	}
}
