// Package stats computes the descriptive statistics reported for a filtered
// trip table. Every aggregator is a pure function of its input table.
//
// Modes break ties deterministically: among values sharing the highest
// count, the smallest value in ascending order wins (numeric order for
// months, hours and birth years, byte order for names).
package stats

import (
	"cmp"
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyInput is returned by every aggregator asked to summarize a table
// without records.
var ErrEmptyInput = errors.New("empty input")

func emptyInput(aggregator string) error {
	return fmt.Errorf("%s: %w", aggregator, ErrEmptyInput)
}

// Count pairs a categorical value with its number of occurrences.
type Count struct {
	Value string
	Count int
}

// counter tallies occurrences of comparable values.
type counter[K comparable] struct {
	counts map[K]int
	less   func(a, b K) bool
}

func newCounter[K cmp.Ordered]() *counter[K] {
	return newCounterFunc[K](cmp.Less[K])
}

func newCounterFunc[K comparable](less func(a, b K) bool) *counter[K] {
	return &counter[K]{counts: make(map[K]int), less: less}
}

func (c *counter[K]) add(k K) {
	c.counts[k]++
}

func (c *counter[K]) len() int {
	return len(c.counts)
}

// mode returns the most frequent value and its count. ok is false when
// nothing was counted.
func (c *counter[K]) mode() (value K, count int, ok bool) {
	for k, n := range c.counts {
		if !ok || n > count || (n == count && c.less(k, value)) {
			value, count, ok = k, n, true
		}
	}
	return value, count, ok
}

// keys returns the counted values ordered by descending count, ties in
// ascending value order.
func (c *counter[K]) keys() []K {
	keys := make([]K, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, nj := c.counts[keys[i]], c.counts[keys[j]]
		if ni != nj {
			return ni > nj
		}
		return c.less(keys[i], keys[j])
	})
	return keys
}

// valueCounts converts a string counter into Count entries in keys() order.
func valueCounts(c *counter[string]) []Count {
	keys := c.keys()
	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{Value: k, Count: c.counts[k]}
	}
	return out
}
