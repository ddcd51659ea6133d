package query

import (
	"fmt"

	"github.com/TFMV/bikeshare/index"
	"github.com/TFMV/bikeshare/trip"
)

// Filter returns the records of t matching the month and day selectors, in
// their original order. Selectors are "all" or a name from Months/Days,
// case-insensitive; anything else yields ErrInvalidSelector. A filter that
// matches nothing returns an empty table.
//
// Records without derived fields are derived first, so Filter accepts the
// output of the record store as well as the output of Derive.
func Filter(t *trip.Table, month, day string) (*trip.Table, error) {
	plan, err := NewPlan(month, day)
	if err != nil {
		return nil, err
	}
	return plan.Apply(t)
}

// Apply runs the plan against t.
func (p *Plan) Apply(t *trip.Table) (*trip.Table, error) {
	t = ensureDerived(t)
	if p.Passthrough() {
		records := make([]trip.Record, len(t.Records))
		copy(records, t.Records)
		return t.WithRecords(records), nil
	}

	idx, err := index.BuildTemporal(t)
	if err != nil {
		return nil, fmt.Errorf("index trips: %w", err)
	}

	rows := idx.All()
	if !p.Month.Any {
		rows.And(idx.Month.Search(p.Month.Month))
	}
	if !p.Day.Any {
		rows.And(idx.Weekday.Search(p.Day.Weekday))
	}

	// Bitmaps iterate in ascending row order, which keeps source order.
	records := make([]trip.Record, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		records = append(records, t.Records[it.Next()])
	}
	return t.WithRecords(records), nil
}

func ensureDerived(t *trip.Table) *trip.Table {
	for _, rec := range t.Records {
		if !rec.Derived {
			return Derive(t)
		}
	}
	return t
}
