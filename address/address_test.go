package address

import (
	"errors"
	"testing"
)

func TestColumnNameRoundTrip(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA", MaxColumns: "XFD"}
	for n, name := range cases {
		if got := ColumnName(n); got != name {
			t.Fatalf("ColumnName(%d)=%q want %q", n, got, name)
		}
		if got := ColumnNumber(name); got != n {
			t.Fatalf("ColumnNumber(%q)=%d want %d", name, got, n)
		}
	}
	if ColumnName(0) != "" || ColumnNumber("A1") != -1 || ColumnNumber("") != -1 {
		t.Fatal("expected invalid input to be rejected")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want Cell
	}{
		{"A1", Cell{Row: 1, Col: 1}},
		{"b7", Cell{Row: 7, Col: 2}},
		{"$C$10", Cell{Row: 10, Col: 3, AbsRow: true, AbsCol: true}},
		{"AA$3", Cell{Row: 3, Col: 27, AbsRow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Decode(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
	for _, bad := range []string{"", "1A", "A", "A0", "A1x", "XFE1", "A1048577"} {
		if _, err := Decode(bad); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Decode(%q) err=%v", bad, err)
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in        string
		want      Range
		str, qual string
	}{
		{"A1", Range{Top: 1, Left: 1, Bottom: 1, Right: 1}, "A1", "$A$1"},
		{"C3:A1", Range{Top: 1, Left: 1, Bottom: 3, Right: 3}, "A1:C3", "$A$1:$C$3"},
		{"Sheet1!$A$1:$B$2", Range{Sheet: "Sheet1", Top: 1, Left: 1, Bottom: 2, Right: 2}, "A1:B2", "Sheet1!$A$1:$B$2"},
		{"'My Sheet'!B2", Range{Sheet: "My Sheet", Top: 2, Left: 2, Bottom: 2, Right: 2}, "B2", "'My Sheet'!$B$2"},
		{"My Sheet!B2", Range{Sheet: "My Sheet", Top: 2, Left: 2, Bottom: 2, Right: 2}, "B2", "'My Sheet'!$B$2"},
		{"'It''s'!A1", Range{Sheet: "It's", Top: 1, Left: 1, Bottom: 1, Right: 1}, "A1", "'It''s'!$A$1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
			if got.String() != tt.str {
				t.Fatalf("String()=%q want %q", got.String(), tt.str)
			}
			if got.Qualified() != tt.qual {
				t.Fatalf("Qualified()=%q want %q", got.Qualified(), tt.qual)
			}
		})
	}
	if _, err := ParseRange("!A1"); err == nil {
		t.Fatal("expected error for empty sheet")
	}
	if _, err := ParseRange("A1:"); err == nil {
		t.Fatal("expected error for open range")
	}
}

func TestRangeEach(t *testing.T) {
	r := NewRange("", 2, 2, 1, 1)
	var got []string
	r.Each(func(row, col int) { got = append(got, Encode(row, col)) })
	want := []string{"A1", "B1", "A2", "B2"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if r.Count() != 4 || !r.Contains(2, 1) || r.Contains(3, 1) {
		t.Fatal("unexpected range geometry")
	}
}
