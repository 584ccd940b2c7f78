// Package cellmatrix holds sparse sheet → row → column registrations and
// compacts them into covering rectangles.
package cellmatrix

import (
	"iter"
	"slices"

	"github.com/logicossoftware/go-xlsxio/address"
)

// Cell is one registered address.
type Cell[T any] struct {
	Sheet    string
	Row, Col int
	Value    T

	mark bool
}

// Address returns the unqualified A1 reference of c.
func (c *Cell[T]) Address() string {
	return address.Encode(c.Row, c.Col)
}

type sheet[T any] struct {
	rows map[int]map[int]*Cell[T]
}

// Matrix is a sparse address-indexed store. The zero value is not usable;
// call New.
type Matrix[T any] struct {
	sheets map[string]*sheet[T]
	order  []string
	n      int
}

// New returns an empty matrix.
func New[T any]() *Matrix[T] {
	return &Matrix[T]{sheets: make(map[string]*sheet[T])}
}

// Len is the number of registered cells.
func (m *Matrix[T]) Len() int { return m.n }

// Add registers the cell at row and col. Registering an address twice keeps
// the first slot and its value.
func (m *Matrix[T]) Add(sheetName string, row, col int, v T) *Cell[T] {
	s := m.sheets[sheetName]
	if s == nil {
		s = &sheet[T]{rows: make(map[int]map[int]*Cell[T])}
		m.sheets[sheetName] = s
		m.order = append(m.order, sheetName)
	}
	cols := s.rows[row]
	if cols == nil {
		cols = make(map[int]*Cell[T])
		s.rows[row] = cols
	}
	if c, ok := cols[col]; ok {
		return c
	}
	c := &Cell[T]{Sheet: sheetName, Row: row, Col: col, Value: v}
	cols[col] = c
	m.n++
	return c
}

// AddRange registers every cell of r under r.Sheet.
func (m *Matrix[T]) AddRange(r address.Range, v T) {
	r.Each(func(row, col int) { m.Add(r.Sheet, row, col, v) })
}

// Find returns the registered cell or nil.
func (m *Matrix[T]) Find(sheetName string, row, col int) *Cell[T] {
	s := m.sheets[sheetName]
	if s == nil {
		return nil
	}
	return s.rows[row][col]
}

// Remove unregisters the cell if present.
func (m *Matrix[T]) Remove(sheetName string, row, col int) {
	s := m.sheets[sheetName]
	if s == nil {
		return
	}
	if _, ok := s.rows[row][col]; ok {
		delete(s.rows[row], col)
		m.n--
	}
}

// Sheets returns sheet names in first-registration order.
func (m *Matrix[T]) Sheets() []string {
	return slices.Clone(m.order)
}

// Cells yields every registered cell, sheet by sheet in registration
// order, rows and columns ascending.
func (m *Matrix[T]) Cells() iter.Seq[*Cell[T]] {
	return func(yield func(*Cell[T]) bool) {
		for _, name := range m.order {
			for _, c := range m.sheetCells(name) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func (m *Matrix[T]) sheetCells(name string) []*Cell[T] {
	s := m.sheets[name]
	rows := make([]int, 0, len(s.rows))
	for r := range s.rows {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	var out []*Cell[T]
	for _, r := range rows {
		cols := make([]int, 0, len(s.rows[r]))
		for c := range s.rows[r] {
			cols = append(cols, c)
		}
		slices.Sort(cols)
		for _, c := range cols {
			out = append(out, s.rows[r][c])
		}
	}
	return out
}

// Merge covers the registered cells with disjoint rectangles.
//
// Every cell is marked, then cells are scanned row-major. Each still-marked
// seed grows downward while the cell below is marked and same(seed, below)
// holds, then rightward while the whole next column of that extent is
// marked and same. The rectangle is unmarked and emitted.
func (m *Matrix[T]) Merge(same func(a, b T) bool) []address.Range {
	var out []address.Range
	for _, name := range m.order {
		cells := m.sheetCells(name)
		for _, c := range cells {
			c.mark = true
		}
		for _, seed := range cells {
			if !seed.mark {
				continue
			}
			fits := func(row, col int) bool {
				c := m.Find(name, row, col)
				return c != nil && c.mark && same(seed.Value, c.Value)
			}
			bottom := seed.Row
			for fits(bottom+1, seed.Col) {
				bottom++
			}
			right := seed.Col
		grow:
			for {
				for row := seed.Row; row <= bottom; row++ {
					if !fits(row, right+1) {
						break grow
					}
				}
				right++
			}
			r := address.NewRange(name, seed.Row, seed.Col, bottom, right)
			r.Each(func(row, col int) { m.Find(name, row, col).mark = false })
			out = append(out, r)
		}
	}
	return out
}

// Always is a merge predicate that treats every pair of cells as equal.
func Always[T any](T, T) bool { return true }
