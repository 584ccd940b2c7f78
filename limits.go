package xlsxio

import "github.com/logicossoftware/go-xlsxio/internal/container"

type Limits struct {
	MaxEntries           int    // archive entries
	MaxEntrySize         uint64 // uncompressed bytes of a single part
	MaxTotalUncompressed uint64 // uncompressed bytes of the whole archive
	// MaxExpandedCells caps how many single cells range lists (data
	// validation sqref, hyperlink and defined-name ranges) may expand to.
	MaxExpandedCells int
}

func defaultLimits() Limits {
	return Limits{
		MaxEntries:           100_000,
		MaxEntrySize:         1 << 30, // 1 GiB
		MaxTotalUncompressed: 4 << 30, // 4 GiB
		MaxExpandedCells:     4 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxEntrySize == 0 {
		l.MaxEntrySize = d.MaxEntrySize
	}
	if l.MaxTotalUncompressed == 0 {
		l.MaxTotalUncompressed = d.MaxTotalUncompressed
	}
	if l.MaxExpandedCells == 0 {
		l.MaxExpandedCells = d.MaxExpandedCells
	}
	return l
}

func (l Limits) container() container.Limits {
	return container.Limits{
		MaxEntries:           l.MaxEntries,
		MaxEntrySize:         l.MaxEntrySize,
		MaxTotalUncompressed: l.MaxTotalUncompressed,
	}
}

// cellBudget counts cells expanded from range lists against
// Limits.MaxExpandedCells.
type cellBudget struct {
	limit, left int
}

func newCellBudget(limit int) *cellBudget {
	return &cellBudget{limit: limit, left: limit}
}

func (b *cellBudget) spend(n int) bool {
	if n > b.left {
		b.left = 0
		return false
	}
	b.left -= n
	return true
}
