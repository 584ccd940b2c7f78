package intern

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSharedStringsCounts(t *testing.T) {
	s := NewSharedStrings[string]()
	for range 5 {
		require.Equal(t, 0, s.Add("hello", "hello"))
	}
	require.Equal(t, 1, s.Add("world", "world"))
	require.Equal(t, 2, s.Count())
	require.Equal(t, 6, s.TotalRefs())
	require.Equal(t, []string{"hello", "world"}, s.Values())

	v, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, "world", v)
	_, ok = s.Get(2)
	require.False(t, ok)
}

type font struct {
	Name  string
	Size  float64
	Color *string
}

func TestTableDeepEquality(t *testing.T) {
	red, red2 := "FFFF0000", "FFFF0000"
	tbl := NewTable(font{Name: "Calibri", Size: 11})
	require.Equal(t, 1, tbl.Add(font{Name: "Arial", Size: 10, Color: &red}))
	require.Equal(t, 1, tbl.Add(font{Name: "Arial", Size: 10, Color: &red2}))
	require.Equal(t, 0, tbl.Add(font{Name: "Calibri", Size: 11}))
	require.Equal(t, 2, tbl.Add(font{Name: "Arial", Size: 10}))
	require.Equal(t, 3, tbl.Len())

	i, ok := tbl.Find(font{Name: "Arial", Size: 10})
	require.True(t, ok)
	require.Equal(t, 2, i)
	_, ok = tbl.Find(font{Name: "Nope"})
	require.False(t, ok)
}

func TestTableUnencodableValues(t *testing.T) {
	type withFunc struct {
		F func()
		N int
	}
	tbl := NewTable[withFunc]()
	require.Equal(t, 0, tbl.Add(withFunc{N: 1}))
	require.Equal(t, 0, tbl.Add(withFunc{N: 1}))
	require.Equal(t, 1, tbl.Add(withFunc{N: 2}))
}
