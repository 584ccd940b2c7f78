package xlsxio

import "testing"

func TestShiftFormula(t *testing.T) {
	cases := []struct {
		expr       string
		dRow, dCol int
		want       string
	}{
		{"A1*2", 1, 0, "A2*2"},
		{"A1*2", 0, 0, "A1*2"},
		{"$A$1+B2", 2, 1, "$A$1+C4"},
		{"A$1+$A1", 1, 1, "B$1+$A2"},
		{"SUM(A1:A3)", 0, 1, "SUM(B1:B3)"},
		{`"A1"&A1`, 1, 0, `"A1"&A2`},
		{`"say ""A1"""&A1`, 1, 0, `"say ""A1"""&A2`},
		{"'My Sheet'!A1", 1, 0, "'My Sheet'!A2"},
		{"Sheet1!B2", 0, 1, "Sheet1!C2"},
		{"A1-1", -1, 0, "#REF!-1"},
		{"SUM(A:A)", 0, 1, "SUM(B:B)"},
		{"SUM(1:1)", 1, 0, "SUM(2:2)"},
		{"SUM($A:$A)", 0, 1, "SUM($A:$A)"},
		{"Table1[Col]+A1", 1, 0, "Table1[Col]+A2"},
		{"LOG10(A1)", 1, 0, "LOG10(A2)"},
		{"A1+1.5", 1, 0, "A2+1.5"},
		{"XFD1+A1", 0, 1, "#REF!+B1"},
		{"a1", 1, 0, "A2"},
		{"IF(TRUE,A1,B1)", 2, 0, "IF(TRUE,A3,B3)"},
	}
	for _, tc := range cases {
		if got := shiftFormula(tc.expr, tc.dRow, tc.dCol); got != tc.want {
			t.Errorf("shiftFormula(%q, %d, %d) = %q, want %q", tc.expr, tc.dRow, tc.dCol, got, tc.want)
		}
	}
}
