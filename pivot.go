package xlsxio

import (
	"fmt"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/parts"
	"github.com/logicossoftware/go-xlsxio/model"
)

// pivotTable maps the definition part name, hosted on ws, back to a model
// pivot. Field indices are resolved through the cache field names.
func (r *reconciler) pivotTable(ws *model.Worksheet, part, name string) {
	def := r.pivotTables[name]
	if def == nil {
		r.warn.add(name, "pivot table part missing")
		return
	}
	rel, ok := r.rels[name].ByType(parts.RelPivotCacheDef)
	if !ok {
		r.warn.add(name, "pivot cache relationship missing")
		return
	}
	cname := parts.ResolveTarget(name, rel.Target)
	cache := r.pivotCaches[cname]
	if cache == nil {
		r.warn.add(cname, "pivot cache part missing")
		return
	}
	field := func(i int) (string, bool) {
		if i < 0 {
			return "", false
		}
		if i >= len(cache.Fields) {
			r.warn.add(name, "pivot field %d not in cache", i)
			return "", false
		}
		return cache.Fields[i].Name, true
	}
	pt := &model.PivotTable{
		Name:        def.Name,
		SourceSheet: cache.Sheet,
		Location:    def.Location,
		Sheet:       ws.Name,
	}
	for _, i := range def.RowFields {
		if f, ok := field(i); ok {
			pt.Rows = append(pt.Rows, f)
		}
	}
	for _, i := range def.ColFields {
		if f, ok := field(i); ok {
			pt.Columns = append(pt.Columns, f)
		}
	}
	for _, d := range def.DataFields {
		if f, ok := field(d.Field); ok {
			pt.Values = append(pt.Values, f)
			if pt.Metric == "" {
				pt.Metric = d.Subtotal
			}
		}
	}
	if pt.Metric == "" {
		pt.Metric = "sum"
	}
	r.wb.PivotTables = append(r.wb.PivotTables, pt)
}

// numberOf returns the numeric content of v, looking through formula
// results.
func numberOf(v model.Value) (float64, bool) {
	switch v := v.(type) {
	case model.Number:
		return float64(v), true
	case model.Formula:
		return numberOf(v.Result)
	}
	return 0, false
}

// preparePivot builds the cache, its records and the table definition of
// pivot k from the data of its source sheet. The first row of the source
// range holds the field names.
func (e *encoder) preparePivot(k int, p *model.PivotTable) error {
	n := k + 1
	src := e.wb.Sheet(p.SourceSheet)
	dim, ok := src.Dimensions()
	if !ok || dim.Bottom == dim.Top {
		return fmt.Errorf("%w: pivot table %q: source sheet %q has no data rows", ErrValidation, p.Name, p.SourceSheet)
	}
	width := dim.Right - dim.Left + 1
	headers := make([]string, width)
	index := make(map[string]int, width)
	for i := range width {
		if c := src.FindCell(dim.Top, dim.Left+i); c != nil && c.Value != nil {
			headers[i] = c.Value.Text()
		}
		if _, dup := index[headers[i]]; !dup {
			index[headers[i]] = i
		}
	}
	fieldsOf := func(names []string) ([]int, error) {
		out := make([]int, 0, len(names))
		for _, name := range names {
			i, ok := index[name]
			if !ok || name == "" {
				return nil, fmt.Errorf("%w: pivot table %q: field %q not in header row of %q", ErrValidation, p.Name, name, p.SourceSheet)
			}
			out = append(out, i)
		}
		return out, nil
	}
	rows, err := fieldsOf(p.Rows)
	if err != nil {
		return err
	}
	cols, err := fieldsOf(p.Columns)
	if err != nil {
		return err
	}
	values, err := fieldsOf(p.Values)
	if err != nil {
		return err
	}
	axis := make(map[int]bool)
	for _, i := range append(append([]int(nil), rows...), cols...) {
		axis[i] = true
	}
	isValue := make(map[int]bool)
	for _, i := range values {
		isValue[i] = true
	}

	nrec := dim.Bottom - dim.Top
	records := make([][]parts.PivotValue, nrec)
	for j := range records {
		records[j] = make([]parts.PivotValue, width)
	}
	cache := parts.PivotCache{Sheet: p.SourceSheet, Ref: dim.String(), Fields: make([]parts.PivotCacheField, width)}
	for i := range width {
		col := dim.Left + i
		f := parts.PivotCacheField{Name: headers[i]}
		cellAt := func(j int) model.Value {
			if c := src.FindCell(dim.Top+1+j, col); c != nil {
				return c.Value
			}
			return nil
		}
		numeric := isValue[i] && !axis[i]
		for j := 0; numeric && j < nrec; j++ {
			_, numeric = numberOf(cellAt(j))
		}
		if numeric {
			f.Numeric = true
			for j := range nrec {
				x, _ := numberOf(cellAt(j))
				records[j][i] = parts.PivotValue{Kind: parts.PivotNumber, Number: x}
				if j == 0 {
					f.Min, f.Max = x, x
				}
				f.Min, f.Max = min(f.Min, x), max(f.Max, x)
			}
		} else {
			seen := make(map[string]int)
			f.Items = []string{}
			for j := range nrec {
				text := ""
				if v := cellAt(j); v != nil {
					text = v.Text()
				}
				idx, ok := seen[text]
				if !ok {
					idx = len(f.Items)
					seen[text] = idx
					f.Items = append(f.Items, text)
				}
				records[j][i] = parts.PivotValue{Kind: parts.PivotIndex, Index: idx}
			}
		}
		cache.Fields[i] = f
	}
	cache.Records = records

	metric := p.Metric
	if metric == "" {
		metric = "sum"
	}
	def := parts.PivotTableDef{
		Name:      p.Name,
		CacheID:   n,
		Location:  p.Location,
		RowFields: rows,
		ColFields: cols,
		Fields:    make([]int, width),
	}
	if def.Name == "" {
		def.Name = fmt.Sprintf("PivotTable%d", n)
	}
	for i, f := range cache.Fields {
		def.Fields[i] = -1
		if f.Items != nil {
			def.Fields[i] = len(f.Items)
		}
	}
	for _, v := range values {
		def.DataFields = append(def.DataFields, parts.PivotDataField{
			Name:     parts.PivotFieldName(metric, headers[v]),
			Field:    v,
			Subtotal: metric,
		})
	}
	if def.Location == "" {
		def.Location = pivotExtent(cache, rows, cols, len(values)).String()
	}

	tablePart := fmt.Sprintf("xl/pivotTables/pivotTable%d.xml", n)
	cachePart := fmt.Sprintf("xl/pivotCache/pivotCacheDefinition%d.xml", n)
	recordsPart := fmt.Sprintf("xl/pivotCache/pivotCacheRecords%d.xml", n)
	var cacheRels, tableRels parts.Relationships
	cache.RecordsRelID = cacheRels.Add(parts.RelPivotCacheRecords, fmt.Sprintf("pivotCacheRecords%d.xml", n), "")
	tableRels.Add(parts.RelPivotCacheDef, fmt.Sprintf("../pivotCache/pivotCacheDefinition%d.xml", n), "")
	relID := e.wbRels.Add(parts.RelPivotCacheDef, fmt.Sprintf("pivotCache/pivotCacheDefinition%d.xml", n), "")
	e.workbook.PivotCaches = append(e.workbook.PivotCaches, parts.PivotCacheEntry{CacheID: n, RelID: relID})

	e.pivots = append(e.pivots,
		xmlPart(tablePart, parts.CTPivotTable, parts.NewPivotTableXform(), def),
		relsOut(tablePart, tableRels),
		xmlPart(cachePart, parts.CTPivotCacheDef, parts.NewPivotCacheXform(), cache),
		relsOut(cachePart, cacheRels),
		xmlPart(recordsPart, parts.CTPivotRecords, parts.NewPivotRecordsXform(), records),
	)
	return nil
}

// pivotExtent estimates the range a refreshed pivot occupies when placed
// at A3: a header row, one row per item of the first row field and a
// grand total.
func pivotExtent(cache parts.PivotCache, rows, cols []int, values int) address.Range {
	height := 2
	if len(rows) > 0 {
		height += len(cache.Fields[rows[0]].Items)
	}
	if len(cols) > 0 || values > 1 {
		height++
	}
	width := 1 + max(values, 1)
	if len(cols) > 0 {
		width = 2 + len(cache.Fields[cols[0]].Items)
	}
	return address.NewRange("", 3, 1, 2+height, width)
}
