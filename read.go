package xlsxio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/logicossoftware/go-xlsxio/internal/container"
	"github.com/logicossoftware/go-xlsxio/internal/parts"
	"github.com/logicossoftware/go-xlsxio/internal/xform"
	"github.com/logicossoftware/go-xlsxio/internal/xmlstream"
	"github.com/logicossoftware/go-xlsxio/model"
)

// Function variables for testing injection.
var (
	readAll = io.ReadAll
	osOpen  = os.Open
)

// Decode reads a workbook from r.
//
// The decoding process:
//  1. Opens the zip archive and rejects encrypted or legacy binary files
//  2. Locates the workbook through the package relationships
//  3. Parses every recognized part, several at a time
//  4. Reconciles the parts into one model, resolving styles, shared
//     strings and relationships
//
// Unrecognized parts and elements are skipped. References that cannot be
// resolved are left out and reported as warnings. Decode returns
// ErrInvalidArchive for input that is not a zip archive, ErrEncrypted or
// ErrLegacyFormat for compound documents, ErrInvalidPart (inside a
// *PartError) for malformed XML and ErrLimitExceeded when a limit is hit.
//
// r is read to the end unless it also implements io.ReaderAt and
// Size() int64, as *bytes.Reader does.
func Decode(r io.Reader, opts ...ReadOption) (*model.Workbook, []Warning, error) {
	return DecodeContext(context.Background(), r, opts...)
}

// DecodeContext is Decode with cancellation. Once ctx is done no further
// parts are parsed and ctx.Err() is returned.
func DecodeContext(ctx context.Context, r io.Reader, opts ...ReadOption) (*model.Workbook, []Warning, error) {
	cfg := newReadConfig(opts)
	if ra, ok := r.(sizedReaderAt); ok {
		return decode(ctx, ra, ra.Size(), cfg)
	}
	b, err := readAll(r)
	if err != nil {
		return nil, nil, err
	}
	return decode(ctx, bytes.NewReader(b), int64(len(b)), cfg)
}

type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// DecodeReaderAt reads a workbook of the given size from ra.
func DecodeReaderAt(ra io.ReaderAt, size int64, opts ...ReadOption) (*model.Workbook, []Warning, error) {
	return decode(context.Background(), ra, size, newReadConfig(opts))
}

// DecodeFile reads the workbook stored in the named file.
func DecodeFile(name string, opts ...ReadOption) (*model.Workbook, []Warning, error) {
	f, err := osOpen(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	return decode(context.Background(), f, st.Size(), newReadConfig(opts))
}

func decode(ctx context.Context, ra io.ReaderAt, size int64, cfg readConfig) (*model.Workbook, []Warning, error) {
	arc, err := container.Open(ra, size, cfg.limits.container())
	if err != nil {
		return nil, nil, err
	}
	d := &decoder{cfg: cfg, arc: arc}
	agg, err := d.readParts(ctx)
	if err != nil {
		return nil, nil, err
	}
	wb, err := agg.reconcile(cfg.limits)
	if err != nil {
		return nil, nil, err
	}
	return wb, agg.warn.list, nil
}

type partKind int

const (
	kindUnknown partKind = iota
	kindRels
	kindWorkbook
	kindWorksheet
	kindSharedStrings
	kindStyles
	kindCore
	kindApp
	kindMedia
	kindTheme
	kindDrawing
	kindVML
	kindComments
	kindTable
	kindPivotTable
	kindPivotCache
)

// classify maps a part name onto the transform that reads it.
func classify(name, workbookPart string) partKind {
	dir, base := path.Split(name)
	ext := path.Ext(base)
	switch {
	case name == workbookPart:
		return kindWorkbook
	case ext == ".rels" && strings.HasSuffix(dir, "_rels/"):
		return kindRels
	case name == "xl/sharedStrings.xml":
		return kindSharedStrings
	case name == "xl/styles.xml":
		return kindStyles
	case name == "docProps/core.xml":
		return kindCore
	case name == "docProps/app.xml":
		return kindApp
	case dir == "xl/media/":
		return kindMedia
	case dir == "xl/worksheets/" && ext == ".xml":
		return kindWorksheet
	case dir == "xl/theme/" && ext == ".xml":
		return kindTheme
	case dir == "xl/drawings/" && ext == ".xml":
		return kindDrawing
	case dir == "xl/drawings/" && ext == ".vml":
		return kindVML
	case ext == ".xml" && (dir == "xl/comments/" || (dir == "xl/" && strings.HasPrefix(base, "comments"))):
		return kindComments
	case dir == "xl/tables/" && ext == ".xml":
		return kindTable
	case dir == "xl/pivotTables/" && ext == ".xml":
		return kindPivotTable
	case dir == "xl/pivotCache/" && ext == ".xml" && strings.HasPrefix(base, "pivotCacheDefinition"):
		return kindPivotCache
	}
	return kindUnknown
}

const packageRelsPart = "_rels/.rels"

type decoder struct {
	cfg readConfig
	arc *container.Archive
}

// readParts parses every recognized entry into its slot and absorbs the
// results into one aggregate in archive order.
func (d *decoder) readParts(ctx context.Context) (*aggregate, error) {
	agg := newAggregate()
	if e, ok := d.arc.Entry(packageRelsPart); ok {
		x := parts.NewRelationshipsXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		agg.rels[""] = x.Model()
		if rel, ok := parts.Relationships(x.Model()).ByType(parts.RelOfficeDocument); ok {
			agg.workbookPart = parts.ResolveTarget("", rel.Target)
		}
	}

	entries := d.arc.Entries()
	results := make([]part, len(entries))
	var tasks []func() error
	for i, e := range entries {
		if e.Name == packageRelsPart {
			continue
		}
		kind := classify(e.Name, agg.workbookPart)
		if kind == kindUnknown {
			continue
		}
		tasks = append(tasks, func() error {
			p, err := d.readPart(kind, e)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := runAll(ctx, d.cfg.concurrency, tasks); err != nil {
		return nil, err
	}
	for i, p := range results {
		if p != nil {
			p.absorb(agg, entries[i].Name)
		}
	}
	return agg, nil
}

func (d *decoder) readPart(kind partKind, e *container.Entry) (part, error) {
	switch kind {
	case kindRels:
		x := parts.NewRelationshipsXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return relsPart(x.Model()), nil
	case kindWorkbook:
		x := parts.NewWorkbookXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return workbookPart(x.Model()), nil
	case kindWorksheet:
		x := parts.NewWorksheetXform(parts.WorksheetOptions{MaxRows: d.cfg.maxRows, MaxCols: d.cfg.maxCols})
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return worksheetPart(x.Model()), nil
	case kindSharedStrings:
		x := parts.NewSharedStringsXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return sharedStringsPart(x.Model()), nil
	case kindStyles:
		x := parts.NewStylesXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return stylesPart(x.Model()), nil
	case kindCore:
		x := parts.NewCoreXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return corePart(x.Model()), nil
	case kindApp:
		x := parts.NewAppXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return appPart(x.Model()), nil
	case kindMedia:
		b, err := e.ReadAll()
		if err != nil {
			return nil, &PartError{Part: e.Name, Err: err}
		}
		return mediaPart(b), nil
	case kindTheme:
		b, err := e.ReadAll()
		if err != nil {
			return nil, &PartError{Part: e.Name, Err: err}
		}
		return themePart(b), nil
	case kindDrawing:
		x := parts.NewDrawingXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return drawingPart(x.Model()), nil
	case kindVML:
		x := parts.NewVMLXform(0)
		if err := d.parse(e, x, xmlstream.Lenient()); err != nil {
			return nil, err
		}
		return vmlPart(x.Model()), nil
	case kindComments:
		x := parts.NewCommentsXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return commentsPart(x.Model()), nil
	case kindTable:
		x := parts.NewTableXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return tablePart(x.Model()), nil
	case kindPivotTable:
		x := parts.NewPivotTableXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return pivotTablePart(x.Model()), nil
	case kindPivotCache:
		x := parts.NewPivotCacheXform()
		if err := d.parse(e, x); err != nil {
			return nil, err
		}
		return pivotCachePart(x.Model()), nil
	}
	return nil, nil
}

// parse streams entry e through p.
func (d *decoder) parse(e *container.Entry, p xform.Parser, opts ...xmlstream.SourceOption) error {
	rc, err := e.Open()
	if err != nil {
		return &PartError{Part: e.Name, Err: err}
	}
	defer rc.Close()
	if err := xform.Parse(xmlstream.NewSource(rc, opts...), p, d.cfg.ignoreNodes...); err != nil {
		return &PartError{Part: e.Name, Err: partCause(err)}
	}
	return nil
}

// partCause tags a parse failure with the sentinel callers test for.
func partCause(err error) error {
	switch {
	case errors.Is(err, ErrLimitExceeded), errors.Is(err, ErrInvalidArchive), errors.Is(err, ErrUnsupportedCompression):
		return err
	case errors.Is(err, xform.ErrTooManyItems), errors.Is(err, parts.ErrTooManyCells):
		return fmt.Errorf("%w: %w", ErrLimitExceeded, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidPart, err)
	}
}
