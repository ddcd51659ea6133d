package query

import (
	"github.com/TFMV/bikeshare/trip"
)

// Derive returns a copy of t whose records carry month, weekday and hour
// taken from their start time. t is not modified. Deriving an already
// derived table yields identical fields.
func Derive(t *trip.Table) *trip.Table {
	records := make([]trip.Record, len(t.Records))
	for i, rec := range t.Records {
		records[i] = deriveRecord(rec)
	}
	return t.WithRecords(records)
}

func deriveRecord(rec trip.Record) trip.Record {
	// time.Time uses the proleptic Gregorian calendar for dates before 1582.
	rec.Month = rec.StartTime.Month()
	rec.Weekday = rec.StartTime.Weekday()
	rec.Hour = rec.StartTime.Hour()
	rec.Derived = true
	return rec
}
