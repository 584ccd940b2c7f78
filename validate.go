package xlsxio

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/container"
	"github.com/logicossoftware/go-xlsxio/model"
)

const maxSheetName = 31

func validateSheetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty sheet name", ErrValidation)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: sheet name %q is not valid UTF-8", ErrValidation, name)
	case utf8.RuneCountInString(name) > maxSheetName:
		return fmt.Errorf("%w: sheet name %q longer than %d characters", ErrValidation, name, maxSheetName)
	case strings.ContainsAny(name, `[]:*?/\`):
		return fmt.Errorf("%w: sheet name %q contains one of []:*?/\\", ErrValidation, name)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("%w: sheet name %q starts or ends with an apostrophe", ErrValidation, name)
	}
	return nil
}

func validateWorkbook(wb *model.Workbook) error {
	if wb == nil {
		return fmt.Errorf("%w: workbook is nil", ErrValidation)
	}
	if len(wb.Worksheets) == 0 {
		return fmt.Errorf("%w: workbook has no worksheets", ErrValidation)
	}
	sheets := make(map[string]struct{}, len(wb.Worksheets))
	for i, ws := range wb.Worksheets {
		if ws == nil {
			return fmt.Errorf("%w: worksheet %d is nil", ErrValidation, i)
		}
		if err := validateSheetName(ws.Name); err != nil {
			return err
		}
		key := strings.ToLower(ws.Name)
		if _, dup := sheets[key]; dup {
			return fmt.Errorf("%w: duplicate sheet name %q", ErrValidation, ws.Name)
		}
		sheets[key] = struct{}{}
		switch ws.State {
		case "", model.SheetVisible, model.SheetHidden, model.SheetVeryHidden:
		default:
			return fmt.Errorf("%w: sheet %q has unknown state %q", ErrValidation, ws.Name, ws.State)
		}
		if err := validateSheet(ws, len(wb.Media)); err != nil {
			return err
		}
	}

	files := make(map[string]struct{}, len(wb.Media))
	for i, m := range wb.Media {
		if m.Name == "" || m.Extension == "" {
			return fmt.Errorf("%w: media %d needs a name and an extension", ErrValidation, i)
		}
		file := m.Name + "." + strings.ToLower(m.Extension)
		if err := container.ValidName("xl/media/" + file); err != nil {
			return fmt.Errorf("%w: media name %q", ErrValidation, file)
		}
		if _, dup := files[file]; dup {
			return fmt.Errorf("%w: duplicate media %q", ErrValidation, file)
		}
		files[file] = struct{}{}
	}
	for name := range wb.Themes {
		if name == "" || container.ValidName("xl/theme/"+name+".xml") != nil || strings.Contains(name, "/") {
			return fmt.Errorf("%w: theme name %q", ErrValidation, name)
		}
	}

	tables := make(map[string]struct{})
	for _, ws := range wb.Worksheets {
		for _, t := range ws.Tables {
			key := strings.ToLower(t.Name)
			if _, dup := tables[key]; dup {
				return fmt.Errorf("%w: duplicate table name %q", ErrValidation, t.Name)
			}
			tables[key] = struct{}{}
		}
	}

	for i, dn := range wb.DefinedNames {
		if strings.TrimSpace(dn.Name) == "" {
			return fmt.Errorf("%w: defined name %d has no name", ErrValidation, i)
		}
		if len(dn.Ranges) == 0 && dn.Formula == "" {
			return fmt.Errorf("%w: defined name %q has no definition", ErrValidation, dn.Name)
		}
		for _, s := range dn.Ranges {
			r, err := address.ParseRange(s)
			if err != nil {
				return fmt.Errorf("%w: defined name %q: %w", ErrValidation, dn.Name, err)
			}
			if r.Sheet == "" {
				return fmt.Errorf("%w: defined name %q: range %q has no sheet", ErrValidation, dn.Name, s)
			}
		}
		if dn.LocalSheetID != nil && (*dn.LocalSheetID < 0 || *dn.LocalSheetID >= len(wb.Worksheets)) {
			return fmt.Errorf("%w: defined name %q: local sheet %d out of range", ErrValidation, dn.Name, *dn.LocalSheetID)
		}
	}

	for i, p := range wb.PivotTables {
		if p == nil {
			return fmt.Errorf("%w: pivot table %d is nil", ErrValidation, i)
		}
		if wb.Sheet(p.SourceSheet) == nil {
			return fmt.Errorf("%w: pivot table %q: source sheet %q not found", ErrValidation, p.Name, p.SourceSheet)
		}
		if wb.Sheet(p.Sheet) == nil {
			return fmt.Errorf("%w: pivot table %q: host sheet %q not found", ErrValidation, p.Name, p.Sheet)
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("%w: pivot table %q has no value fields", ErrValidation, p.Name)
		}
		switch p.Metric {
		case "", "sum", "count":
		default:
			return fmt.Errorf("%w: pivot table %q: metric %q not supported", ErrValidation, p.Name, p.Metric)
		}
	}
	return nil
}

func validateSheet(ws *model.Worksheet, media int) error {
	for _, row := range ws.Rows {
		if row == nil {
			return fmt.Errorf("%w: sheet %q has a nil row", ErrValidation, ws.Name)
		}
		if row.Number < 1 || row.Number > address.MaxRows {
			return fmt.Errorf("%w: sheet %q: row %d out of range", ErrValidation, ws.Name, row.Number)
		}
		for _, c := range row.Cells {
			if c == nil {
				return fmt.Errorf("%w: sheet %q row %d has a nil cell", ErrValidation, ws.Name, row.Number)
			}
			if c.Col < 1 || c.Col > address.MaxColumns {
				return fmt.Errorf("%w: sheet %q row %d: column %d out of range", ErrValidation, ws.Name, row.Number, c.Col)
			}
		}
	}
	for _, img := range ws.Images {
		if img.Media < 0 || img.Media >= media {
			return fmt.Errorf("%w: sheet %q: image %q refers to missing media %d", ErrValidation, ws.Name, img.Name, img.Media)
		}
	}
	for _, t := range ws.Tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: sheet %q: table without a name", ErrValidation, ws.Name)
		}
		if _, err := address.ParseRange(t.Ref); err != nil {
			return fmt.Errorf("%w: sheet %q: table %q: %w", ErrValidation, ws.Name, t.Name, err)
		}
	}
	return nil
}
