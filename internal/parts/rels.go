package parts

import (
	"path"
	"strconv"
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// External reports whether the target lies outside the package.
func (r Relationship) External() bool { return r.TargetMode == "External" }

// Relationships is the content of a .rels part.
type Relationships []Relationship

// ByID returns the relationship with the given id.
func (rs Relationships) ByID(id string) (Relationship, bool) {
	for _, r := range rs {
		if r.ID == id {
			return r, true
		}
	}
	return Relationship{}, false
}

// ByType returns the first relationship of the given type.
func (rs Relationships) ByType(typ string) (Relationship, bool) {
	for _, r := range rs {
		if r.Type == typ {
			return r, true
		}
	}
	return Relationship{}, false
}

// Add appends a relationship with the next rIdN id and returns that id.
func (rs *Relationships) Add(typ, target, mode string) string {
	id := "rId" + strconv.Itoa(len(*rs)+1)
	*rs = append(*rs, Relationship{ID: id, Type: typ, Target: target, TargetMode: mode})
	return id
}

// NewRelationshipsXform returns the transform for .rels parts.
func NewRelationshipsXform() *xform.List[Relationship] {
	return &xform.List[Relationship]{
		Tag:   "Relationships",
		Attrs: []xmlstream.Attr{xmlstream.A("xmlns", NSPackageRels)},
		Empty: true,
		Child: &xform.Element[Relationship]{
			Tag: "Relationship",
			Decode: func(n xform.Node) Relationship {
				return Relationship{ID: n.Attr("Id"), Type: n.Attr("Type"), Target: n.Attr("Target"), TargetMode: n.Attr("TargetMode")}
			},
			Encode: func(r Relationship) ([]xmlstream.Attr, string, bool) {
				attrs := []xmlstream.Attr{xmlstream.A("Id", r.ID), xmlstream.A("Type", r.Type), xmlstream.A("Target", r.Target)}
				return strAttr(attrs, "TargetMode", r.TargetMode), "", true
			},
		},
	}
}

// RelsPath returns the .rels part name that belongs to partName,
// e.g. "xl/worksheets/sheet1.xml" → "xl/worksheets/_rels/sheet1.xml.rels".
func RelsPath(partName string) string {
	dir, file := path.Split(partName)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget turns a relationship target into a package part name.
// Relative targets are resolved against the directory of the source part;
// absolute targets drop their leading slash.
func ResolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(sourcePart), target), "/")
}
