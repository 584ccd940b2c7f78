package xlsxio

import (
	"fmt"
	"strings"

	"github.com/xuri/efp"

	"github.com/logicossoftware/go-xlsxio/address"
	"github.com/logicossoftware/go-xlsxio/internal/cellmatrix"
)

// definedNameRanges splits a definition made only of sheet-qualified
// ranges joined by unions. ok is false for anything else, such as
// constants, functions or references to other names.
func definedNameRanges(text string) (ranges []string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	ps := efp.ExcelParser()
	want := true
	for _, t := range ps.Parse(text) {
		switch {
		case t.TType == efp.TokenTypeWhitespace:
		case want && t.TType == efp.TokenTypeOperand && t.TSubType == efp.TokenSubTypeRange:
			r, err := address.ParseRange(t.TValue)
			if err != nil || r.Sheet == "" {
				return nil, false
			}
			ranges = append(ranges, r.Qualified())
			want = false
		case !want && isUnion(t):
			want = true
		default:
			return nil, false
		}
	}
	if want {
		return nil, false
	}
	return ranges, true
}

func isUnion(t efp.Token) bool {
	return t.TValue == "," && (t.TSubType == efp.TokenSubTypeUnion || t.TType == efp.TokenTypeArgument)
}

// compactRanges renders ranges as one definition. Several ranges are
// registered cell by cell and merged into the fewest rectangles, so
// overlapping or adjacent pieces collapse.
func compactRanges(ranges []string, budget *cellBudget) (string, error) {
	if len(ranges) == 1 {
		r, err := address.ParseRange(ranges[0])
		if err != nil {
			return "", err
		}
		return r.Qualified(), nil
	}
	m := cellmatrix.New[struct{}]()
	for _, s := range ranges {
		r, err := address.ParseRange(s)
		if err != nil {
			return "", err
		}
		if !budget.spend(r.Count()) {
			return "", fmt.Errorf("%w: range %s expands past %d cells", ErrLimitExceeded, s, budget.limit)
		}
		m.AddRange(r, struct{}{})
	}
	merged := m.Merge(cellmatrix.Always[struct{}])
	out := make([]string, len(merged))
	for i, r := range merged {
		out[i] = r.Qualified()
	}
	return strings.Join(out, ","), nil
}
