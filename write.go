package xlsxio

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/logicossoftware/go-xlsxio/internal/container"
	"github.com/logicossoftware/go-xlsxio/model"
)

var osCreate = os.Create

// Encode writes wb as a spreadsheet package to w.
//
// The encoding process:
//  1. Validates the model (sheet names, media and pivot references)
//  2. Prepares every part: part names, relationship ids, style ids and
//     shared-string indices are assigned
//  3. Renders the parts, several at a time; the shared string table is
//     rendered after every worksheet
//  4. Writes the archive entries in a fixed order
//
// The same model and options always produce the same bytes.
func Encode(w io.Writer, wb *model.Workbook, opts ...WriteOption) error {
	return EncodeContext(context.Background(), w, wb, opts...)
}

// EncodeContext is Encode with cancellation. Nothing is written to w once
// ctx is done before rendering finished.
func EncodeContext(ctx context.Context, w io.Writer, wb *model.Workbook, opts ...WriteOption) error {
	cfg := newWriteConfig(opts)
	if err := validateWorkbook(wb); err != nil {
		return err
	}
	e := newEncoder(wb, cfg)
	pkg, err := e.prepare()
	if err != nil {
		return err
	}
	if len(pkg) > cfg.limits.MaxEntries {
		return fmt.Errorf("%w: %d parts, limit %d", ErrLimitExceeded, len(pkg), cfg.limits.MaxEntries)
	}
	if err := renderParts(ctx, pkg, cfg); err != nil {
		return err
	}
	zw, err := container.NewWriter(w, cfg.compression, cfg.level)
	if err != nil {
		return err
	}
	for _, p := range pkg {
		if err := zw.Add(p.name, p.data); err != nil {
			return &PartError{Part: p.name, Err: err}
		}
	}
	return zw.Close()
}

// EncodeFile writes wb to the named file, replacing it.
func EncodeFile(name string, wb *model.Workbook, opts ...WriteOption) (err error) {
	f, err := osCreate(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, wb, opts...)
}

// renderParts renders stage 0 parts concurrently, then stage 1.
func renderParts(ctx context.Context, pkg []*outPart, cfg writeConfig) error {
	for stage := range 2 {
		var tasks []func() error
		for _, p := range pkg {
			if p.stage != stage {
				continue
			}
			tasks = append(tasks, func() error {
				data, err := p.render()
				if err != nil {
					return &PartError{Part: p.name, Err: err}
				}
				if uint64(len(data)) > cfg.limits.MaxEntrySize {
					return &PartError{Part: p.name, Err: fmt.Errorf("%w: %d bytes, limit %d", ErrLimitExceeded, len(data), cfg.limits.MaxEntrySize)}
				}
				p.data = data
				return nil
			})
		}
		if err := runAll(ctx, cfg.concurrency, tasks); err != nil {
			return err
		}
	}
	return nil
}
