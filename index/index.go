// Package index provides roaring bitmap indexes over the columns of a trip
// table.
package index

import (
	"fmt"
	"math"
	"sync"
	"time"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/TFMV/bikeshare/trip"
)

// ---------------------------------------------------------------------
// Column: a roaring bitmap index over one column of a trip table
//
//    Maps each distinct value -> roaring.Bitmap of row positions.
// ---------------------------------------------------------------------

type Column[K comparable] struct {
	mu     sync.RWMutex
	name   string
	values map[K]*roaring.Bitmap
	rows   uint32
}

// NewColumn creates an empty index for the named column
func NewColumn[K comparable](name string) *Column[K] {
	return &Column[K]{
		name:   name,
		values: make(map[K]*roaring.Bitmap),
	}
}

// Name returns the indexed column name
func (c *Column[K]) Name() string {
	return c.name
}

// Add records that row holds value
func (c *Column[K]) Add(row uint32, value K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bm, ok := c.values[value]
	if !ok {
		bm = roaring.New()
		c.values[value] = bm
	}
	bm.Add(row)
	if row >= c.rows {
		c.rows = row + 1
	}
}

// Search returns the rows holding value. The result is a copy the caller
// may modify freely; it is empty, never nil, when nothing matches.
func (c *Column[K]) Search(value K) *roaring.Bitmap {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bm, ok := c.values[value]
	if !ok {
		return roaring.New()
	}
	return bm.Clone()
}

// Cardinality returns the number of distinct values in the index
func (c *Column[K]) Cardinality() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Clear removes all entries
func (c *Column[K]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = make(map[K]*roaring.Bitmap)
	c.rows = 0
}

// ---------------------------------------------------------------------
// Temporal: the month and weekday indexes the filter engine needs
// ---------------------------------------------------------------------

// Temporal indexes a derived trip table by month and weekday.
type Temporal struct {
	Month   *Column[time.Month]
	Weekday *Column[time.Weekday]
	rows    uint32
}

// BuildTemporal indexes every record of t. The records must already carry
// derived fields.
func BuildTemporal(t *trip.Table) (*Temporal, error) {
	if uint64(t.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("table too large to index: %d rows", t.Len())
	}
	idx := &Temporal{
		Month:   NewColumn[time.Month]("month"),
		Weekday: NewColumn[time.Weekday]("day_of_week"),
		rows:    uint32(t.Len()),
	}
	for i, rec := range t.Records {
		if !rec.Derived {
			return nil, fmt.Errorf("row %d has no derived temporal fields", i)
		}
		idx.Month.Add(uint32(i), rec.Month)
		idx.Weekday.Add(uint32(i), rec.Weekday)
	}
	return idx, nil
}

// All returns a bitmap selecting every indexed row.
func (t *Temporal) All() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(t.rows))
	return bm
}
